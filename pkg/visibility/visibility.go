// Package visibility decides whether a conditionally-visible checkout field
// should render for a given cart. The evaluator is a pure function: callers
// assemble a CartSnapshot once per resolve pass and hand it in, so the rule
// logic never touches live cart state.
package visibility

import (
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
	"github.com/google/uuid"
)

// RuleConfig is a field's visibility rule.
type RuleConfig struct {
	Mode      enums.VisibilityMode
	TargetIDs []uuid.UUID
	Polarity  enums.VisibilityPolarity
}

// CartSnapshot is a read-only view of the cart at resolve time.
type CartSnapshot struct {
	// ProductIDs holds one entry per cart line; duplicates are harmless.
	ProductIDs []uuid.UUID
	// CategoryIDs is the union of category memberships across all lines.
	CategoryIDs []uuid.UUID
}

// IsEmpty reports whether the cart has no lines.
func (c CartSnapshot) IsEmpty() bool {
	return len(c.ProductIDs) == 0
}

// ShouldShow reports whether a field governed by cfg renders for cart.
// An empty cart cannot match anything, so show_on_match fields default to
// hidden and hide_on_match fields default to shown.
func ShouldShow(cfg RuleConfig, cart CartSnapshot) bool {
	if cfg.Mode == enums.VisibilityModeAlways {
		return true
	}
	if cart.IsEmpty() {
		return cfg.Polarity == enums.VisibilityPolarityHideOnMatch
	}

	var hasMatch bool
	switch cfg.Mode {
	case enums.VisibilityModeByProducts:
		hasMatch = intersects(cart.ProductIDs, cfg.TargetIDs)
	case enums.VisibilityModeByCategories:
		hasMatch = intersects(cart.CategoryIDs, cfg.TargetIDs)
	}

	if cfg.Polarity == enums.VisibilityPolarityHideOnMatch {
		return !hasMatch
	}
	return hasMatch
}

func intersects(haystack, targets []uuid.UUID) bool {
	for _, id := range haystack {
		for _, target := range targets {
			if id == target {
				return true
			}
		}
	}
	return false
}
