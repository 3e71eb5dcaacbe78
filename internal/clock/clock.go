// Package clock implements the per-row real-time clock: a small state
// machine that tracks a displayed hour:minute pair under a UTC offset,
// with at most one pending offset transition (a daylight-saving change
// scheduled at a known future instant).
package clock

import "time"

// Clock is either Stable (no pending transition) or Pending (NextOffset
// and ActivatesAt both set). Hour and Minute are what the row should
// currently display. Not safe for concurrent use; ownership follows the
// owning row.
type Clock struct {
	OffsetSeconds     int
	NextOffsetSeconds int
	ActivatesAt       int64 // unix seconds; 0 means no pending transition
	Active            bool
	Hour              int
	Minute            int

	pending bool
}

// New builds a clock at the given offset. If next is non-nil the clock
// starts Pending with the transition scheduled at activates; a transition
// whose instant is already past at construction time is applied
// immediately rather than waiting for the first tick.
func New(offsetSeconds int, next *int, activates time.Time, now time.Time) *Clock {
	c := &Clock{
		OffsetSeconds: offsetSeconds,
		Active:        true,
	}
	if next != nil {
		c.pending = true
		c.NextOffsetSeconds = *next
		c.ActivatesAt = activates.Unix()
	}
	c.Tick(now)
	return c
}

// Tick advances the clock to now. If a pending transition has activated,
// the next offset becomes current and the transition is disarmed; it is
// one-shot and never re-arms until a fresh fetch builds a new clock.
// The displayed hour and minute are recomputed from now plus the active
// offset, so skipped ticks cause no drift. Returns whether the displayed
// hour or minute changed. A no-op when the clock is inactive.
func (c *Clock) Tick(now time.Time) bool {
	if !c.Active {
		return false
	}

	if c.pending && now.Unix() >= c.ActivatesAt {
		c.OffsetSeconds = c.NextOffsetSeconds
		c.NextOffsetSeconds = 0
		c.ActivatesAt = 0
		c.pending = false
	}

	shifted := now.UTC().Add(time.Duration(c.OffsetSeconds) * time.Second)
	oldHour, oldMinute := c.Hour, c.Minute
	c.Hour = shifted.Hour()
	c.Minute = shifted.Minute()
	return oldHour != c.Hour || oldMinute != c.Minute
}

// SetActive enables or disables ticking. Disabling loses no state; the
// display simply stops advancing while the selected day is not today.
func (c *Clock) SetActive(active bool) {
	c.Active = active
}

// Pending reports whether an offset transition is still armed.
func (c *Clock) Pending() bool {
	return c.pending
}
