// Package clock centralizes the fixed timezone used to define "today"
// consistently for both pricing (birthday rule) and the quota arbiter, so
// a transaction that races midnight sees one coherent calendar day.
package clock

import "time"

const DefaultTimezone = "Asia/Kolkata"

// FixedClock resolves "today" in a single configured timezone.
type FixedClock struct {
	loc *time.Location
}

func NewFixedClock(timezone string) (*FixedClock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &FixedClock{loc: loc}, nil
}

// Today returns the current civil date in the fixed timezone, formatted
// YYYY-MM-DD — the key used throughout the quota counter map.
func (c *FixedClock) Today() string {
	return time.Now().In(c.loc).Format("2006-01-02")
}

// Now returns the current instant expressed in the fixed timezone.
func (c *FixedClock) Now() time.Time {
	return time.Now().In(c.loc)
}
