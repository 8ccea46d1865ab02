package visibility

import (
	"testing"

	"github.com/dispatchday/dispatchday-backend/pkg/enums"
	"github.com/google/uuid"
)

func TestShouldShowAlwaysMode(t *testing.T) {
	cfg := RuleConfig{Mode: enums.VisibilityModeAlways, Polarity: enums.VisibilityPolarityShowOnMatch}

	if !ShouldShow(cfg, CartSnapshot{}) {
		t.Fatal("always mode must show for an empty cart")
	}
	if !ShouldShow(cfg, CartSnapshot{ProductIDs: []uuid.UUID{uuid.New()}}) {
		t.Fatal("always mode must show for any cart")
	}
}

func TestShouldShowProductMatch(t *testing.T) {
	target := uuid.New()
	cfg := RuleConfig{
		Mode:      enums.VisibilityModeByProducts,
		TargetIDs: []uuid.UUID{target},
		Polarity:  enums.VisibilityPolarityShowOnMatch,
	}

	matching := CartSnapshot{ProductIDs: []uuid.UUID{uuid.New(), target}}
	if !ShouldShow(cfg, matching) {
		t.Fatal("cart containing the target product must show the field")
	}

	other := CartSnapshot{ProductIDs: []uuid.UUID{uuid.New(), uuid.New()}}
	if ShouldShow(cfg, other) {
		t.Fatal("cart without the target product must hide the field")
	}
}

func TestShouldShowCategoryHideOnMatch(t *testing.T) {
	target := uuid.New()
	cfg := RuleConfig{
		Mode:      enums.VisibilityModeByCategories,
		TargetIDs: []uuid.UUID{target},
		Polarity:  enums.VisibilityPolarityHideOnMatch,
	}

	matching := CartSnapshot{
		ProductIDs:  []uuid.UUID{uuid.New()},
		CategoryIDs: []uuid.UUID{target, uuid.New()},
	}
	if ShouldShow(cfg, matching) {
		t.Fatal("category intersection must hide a hide_on_match field")
	}

	other := CartSnapshot{
		ProductIDs:  []uuid.UUID{uuid.New()},
		CategoryIDs: []uuid.UUID{uuid.New()},
	}
	if !ShouldShow(cfg, other) {
		t.Fatal("no intersection must show a hide_on_match field")
	}
}

func TestShouldShowEmptyCart(t *testing.T) {
	target := uuid.New()
	empty := CartSnapshot{}

	show := RuleConfig{
		Mode:      enums.VisibilityModeByProducts,
		TargetIDs: []uuid.UUID{target},
		Polarity:  enums.VisibilityPolarityShowOnMatch,
	}
	if ShouldShow(show, empty) {
		t.Fatal("empty cart must hide a show_on_match field")
	}

	hide := RuleConfig{
		Mode:      enums.VisibilityModeByCategories,
		TargetIDs: []uuid.UUID{target},
		Polarity:  enums.VisibilityPolarityHideOnMatch,
	}
	if !ShouldShow(hide, empty) {
		t.Fatal("empty cart must show a hide_on_match field")
	}
}

func TestShouldShowEmptyTargets(t *testing.T) {
	cart := CartSnapshot{ProductIDs: []uuid.UUID{uuid.New()}}

	show := RuleConfig{Mode: enums.VisibilityModeByProducts, Polarity: enums.VisibilityPolarityShowOnMatch}
	if ShouldShow(show, cart) {
		t.Fatal("empty target set can never match; show_on_match must hide")
	}

	hide := RuleConfig{Mode: enums.VisibilityModeByProducts, Polarity: enums.VisibilityPolarityHideOnMatch}
	if !ShouldShow(hide, cart) {
		t.Fatal("empty target set can never match; hide_on_match must show")
	}
}
