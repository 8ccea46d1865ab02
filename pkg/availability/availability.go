// Package availability decides which calendar dates a delivery or pickup can
// be booked on. Every function is a pure computation over its inputs: callers
// provide the reference "now", the engine never reads a clock.
package availability

import "time"

// WindowConfig describes a store's booking window for one fulfillment method.
type WindowConfig struct {
	// MinLeadDays is the earliest allowed offset from "now" in days.
	MinLeadDays int
	// MaxFutureDays is the latest allowed offset from "now" in days.
	MaxFutureDays int
	// DisabledWeekdays are globally ineligible days of the week.
	DisabledWeekdays []time.Weekday
	// BlockedDates are specific ineligible dates.
	BlockedDates []Date
	// Cutoff, when set, advances the lead-time baseline by one day for
	// instants at or past this time of day.
	Cutoff *TimeOfDay
}

// IsDateEligible reports whether candidate can be booked given the window
// anchored at now. Comparison happens at day granularity.
func IsDateEligible(cfg WindowConfig, candidate, now Date) bool {
	weekday := candidate.Weekday()
	for _, disabled := range cfg.DisabledWeekdays {
		if weekday == disabled {
			return false
		}
	}
	for _, blocked := range cfg.BlockedDates {
		if candidate == blocked {
			return false
		}
	}
	if candidate.Before(now.AddDays(cfg.MinLeadDays)) {
		return false
	}
	if candidate.After(now.AddDays(cfg.MaxFutureDays)) {
		return false
	}
	return true
}

// EligibleDates enumerates every bookable date in the inclusive interval
// [now+MinLeadDays, now+MaxFutureDays] in ascending order. An inverted
// window yields an empty result, not an error.
func EligibleDates(cfg WindowConfig, now Date) []Date {
	var dates []Date
	last := now.AddDays(cfg.MaxFutureDays)
	for d := now.AddDays(cfg.MinLeadDays); !d.After(last); d = d.AddDays(1) {
		if IsDateEligible(cfg, d, now) {
			dates = append(dates, d)
		}
	}
	return dates
}

// EarliestEligibleDate returns the first bookable date relative to the
// provided instant. When a cutoff is configured and the instant's time of
// day is at or past it, the lead-time baseline moves to the next calendar
// day and pastCutoff is true so callers can pick the matching message.
// ok is false when the window holds no eligible date at all.
//
// The baseline shift is exactly one day even if that lands on a disabled
// weekday; the enumeration filters those downstream, so the two layers
// compose without extra skip logic here.
func EarliestEligibleDate(cfg WindowConfig, nowInstant time.Time) (earliest Date, pastCutoff bool, ok bool) {
	now := DateOf(nowInstant)
	if cfg.Cutoff != nil {
		minutes := nowInstant.Hour()*60 + nowInstant.Minute()
		if minutes >= cfg.Cutoff.Minutes() {
			now = now.AddDays(1)
			pastCutoff = true
		}
	}
	dates := EligibleDates(cfg, now)
	if len(dates) == 0 {
		return Date{}, pastCutoff, false
	}
	return dates[0], pastCutoff, true
}
