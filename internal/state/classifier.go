// Package state holds the membership lifecycle states and the rule that
// derives a membership's state and arrears from its expiration date.
package state

import "time"

const (
	Vigente   = "Vigente"
	PorVencer = "Por vencer"
	Vencido   = "Vencido"
)

// ExpiringWindowDays is the last stretch of days, expiration day included,
// during which a membership is reported as "Por vencer".
const ExpiringWindowDays = 5

const day = 24 * time.Hour

// Canonical returns the state names that must exist before any membership
// can be classified.
func Canonical() []string {
	return []string{Vigente, PorVencer, Vencido}
}

// IsCanonical reports whether name is one of the states the classifier
// produces.
func IsCanonical(name string) bool {
	for _, c := range Canonical() {
		if c == name {
			return true
		}
	}
	return false
}

// IsActive reports whether a membership in the named state still grants access.
func IsActive(name string) bool {
	return name == Vigente || name == PorVencer
}

type Classification struct {
	Name    string `json:"name_state"`
	Arrears int    `json:"days_arrears"`
}

// Date truncates t to its calendar date, keeping the year, month and day
// as seen in t's own location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	return Date(now.In(loc))
}

// DaysUntil counts whole calendar days from today to expiration. It is
// negative once expiration has passed.
func DaysUntil(expiration, today time.Time) int {
	return int(Date(expiration).Sub(Date(today)) / day)
}

// Classify maps an expiration date to a state name and arrears count.
func Classify(expiration, today time.Time) Classification {
	days := DaysUntil(expiration, today)
	switch {
	case days > ExpiringWindowDays:
		return Classification{Name: Vigente}
	case days >= 0:
		return Classification{Name: PorVencer}
	default:
		return Classification{Name: Vencido, Arrears: -days}
	}
}

// ExpirationFor returns the last day covered by a plan of durationDays
// starting on start. A one-day plan expires the day it starts.
func ExpirationFor(start time.Time, durationDays int) time.Time {
	return Date(start).AddDate(0, 0, durationDays-1)
}
