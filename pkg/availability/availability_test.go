package availability

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, value string) Date {
	t.Helper()
	d, err := ParseDate(value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return d
}

func TestEligibleDatesFullWindow(t *testing.T) {
	cfg := WindowConfig{MinLeadDays: 2, MaxFutureDays: 9}
	now := mustDate(t, "2025-03-10")

	dates := EligibleDates(cfg, now)
	if len(dates) != 8 {
		t.Fatalf("expected 8 dates, got %d", len(dates))
	}
	if dates[0] != now.AddDays(2) {
		t.Fatalf("expected first date %s, got %s", now.AddDays(2), dates[0])
	}
	if dates[len(dates)-1] != now.AddDays(9) {
		t.Fatalf("expected last date %s, got %s", now.AddDays(9), dates[len(dates)-1])
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i-1].Before(dates[i]) {
			t.Fatalf("dates not strictly ascending at %d: %s then %s", i, dates[i-1], dates[i])
		}
	}
}

func TestEligibleDatesConsistentWithPointCheck(t *testing.T) {
	cfg := WindowConfig{
		MinLeadDays:      1,
		MaxFutureDays:    21,
		DisabledWeekdays: []time.Weekday{time.Sunday, time.Wednesday},
		BlockedDates:     []Date{mustDate(t, "2025-03-14")},
	}
	now := mustDate(t, "2025-03-10")

	for _, d := range EligibleDates(cfg, now) {
		if !IsDateEligible(cfg, d, now) {
			t.Fatalf("enumerated date %s fails the point check", d)
		}
	}
}

func TestEligibleDatesIdempotent(t *testing.T) {
	cfg := WindowConfig{MinLeadDays: 0, MaxFutureDays: 14, DisabledWeekdays: []time.Weekday{time.Monday}}
	now := mustDate(t, "2025-06-01")

	first := EligibleDates(cfg, now)
	second := EligibleDates(cfg, now)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("dates differ at %d: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestIsDateEligibleInclusiveBounds(t *testing.T) {
	cfg := WindowConfig{MinLeadDays: 3, MaxFutureDays: 7}
	now := mustDate(t, "2025-03-10")

	if !IsDateEligible(cfg, now.AddDays(3), now) {
		t.Fatal("lower bound date must be eligible")
	}
	if !IsDateEligible(cfg, now.AddDays(7), now) {
		t.Fatal("upper bound date must be eligible")
	}
	if IsDateEligible(cfg, now.AddDays(2), now) {
		t.Fatal("date before lead time must be ineligible")
	}
	if IsDateEligible(cfg, now.AddDays(8), now) {
		t.Fatal("date past max future days must be ineligible")
	}
}

func TestEligibleDatesInvertedWindowIsEmpty(t *testing.T) {
	cfg := WindowConfig{MinLeadDays: 10, MaxFutureDays: 5}
	if dates := EligibleDates(cfg, mustDate(t, "2025-03-10")); len(dates) != 0 {
		t.Fatalf("expected empty enumeration, got %d dates", len(dates))
	}
}

func TestEligibleDatesExcludesDisabledWeekdays(t *testing.T) {
	// 2025-03-10 is a Monday; the 14-day window contains two Sundays.
	cfg := WindowConfig{
		MinLeadDays:      0,
		MaxFutureDays:    13,
		DisabledWeekdays: []time.Weekday{time.Sunday},
	}
	now := mustDate(t, "2025-03-10")

	dates := EligibleDates(cfg, now)
	if len(dates) != 12 {
		t.Fatalf("expected 12 dates after dropping two Sundays, got %d", len(dates))
	}
	for _, d := range dates {
		if d.Weekday() == time.Sunday {
			t.Fatalf("Sunday %s leaked into the enumeration", d)
		}
	}
}

func TestEligibleDatesExcludesBlockedDates(t *testing.T) {
	blocked := mustDate(t, "2025-03-15")
	cfg := WindowConfig{MinLeadDays: 0, MaxFutureDays: 10, BlockedDates: []Date{blocked}}
	now := mustDate(t, "2025-03-10")

	if IsDateEligible(cfg, blocked, now) {
		t.Fatal("blocked date must be ineligible")
	}
	for _, d := range EligibleDates(cfg, now) {
		if d == blocked {
			t.Fatalf("blocked date %s leaked into the enumeration", d)
		}
	}
}

func TestEarliestEligibleDateCutoff(t *testing.T) {
	cutoff := TimeOfDay{Hour: 14}
	cfg := WindowConfig{MinLeadDays: 2, MaxFutureDays: 30, Cutoff: &cutoff}
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	before := day.Add(13*time.Hour + 59*time.Minute)
	earliest, pastCutoff, ok := EarliestEligibleDate(cfg, before)
	if !ok {
		t.Fatal("expected an eligible date")
	}
	if pastCutoff {
		t.Fatal("13:59 must not be past a 14:00 cutoff")
	}
	if want := DateOf(day).AddDays(2); earliest != want {
		t.Fatalf("expected %s, got %s", want, earliest)
	}

	after := day.Add(14*time.Hour + 1*time.Minute)
	earliest, pastCutoff, ok = EarliestEligibleDate(cfg, after)
	if !ok {
		t.Fatal("expected an eligible date")
	}
	if !pastCutoff {
		t.Fatal("14:01 must be past a 14:00 cutoff")
	}
	if want := DateOf(day).AddDays(3); earliest != want {
		t.Fatalf("expected %s, got %s", want, earliest)
	}
}

func TestEarliestEligibleDateExactCutoffIsPast(t *testing.T) {
	cutoff := TimeOfDay{Hour: 14}
	cfg := WindowConfig{MinLeadDays: 0, MaxFutureDays: 7, Cutoff: &cutoff}
	at := time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)

	earliest, pastCutoff, ok := EarliestEligibleDate(cfg, at)
	if !ok || !pastCutoff {
		t.Fatalf("instant at the cutoff counts as past it, got past=%v ok=%v", pastCutoff, ok)
	}
	if want := NewDate(2025, time.March, 11); earliest != want {
		t.Fatalf("expected %s, got %s", want, earliest)
	}
}

func TestEarliestEligibleDateEmptyWindow(t *testing.T) {
	cfg := WindowConfig{MinLeadDays: 5, MaxFutureDays: 2}
	_, _, ok := EarliestEligibleDate(cfg, time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC))
	if ok {
		t.Fatal("inverted window must yield no date")
	}
}

func TestEarliestEligibleDateNoCutoffIgnoresTimeOfDay(t *testing.T) {
	cfg := WindowConfig{MinLeadDays: 1, MaxFutureDays: 5}
	late := time.Date(2025, time.March, 10, 23, 59, 0, 0, time.UTC)

	earliest, pastCutoff, ok := EarliestEligibleDate(cfg, late)
	if !ok || pastCutoff {
		t.Fatalf("no cutoff configured, got past=%v ok=%v", pastCutoff, ok)
	}
	if want := NewDate(2025, time.March, 11); earliest != want {
		t.Fatalf("expected %s, got %s", want, earliest)
	}
}
