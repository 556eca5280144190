// Package schedule tracks the per-guild leaderboard polling loops.
package schedule

import "time"

// Window is a polling cadence for the leaderboard tracker
type Window string

const (
	// WindowHourly fires at the top of every hour
	WindowHourly Window = "1h"
	// WindowTwoMin fires on every even-minute boundary
	WindowTwoMin Window = "2min"
)

// Valid reports whether w is a known cadence
func (w Window) Valid() bool {
	return w == WindowHourly || w == WindowTwoMin
}

// Next returns the first aligned boundary strictly after now
func (w Window) Next(now time.Time) time.Time {
	switch w {
	case WindowTwoMin:
		minute := now.Truncate(time.Minute)
		if minute.Minute()%2 == 0 {
			return minute.Add(2 * time.Minute)
		}
		return minute.Add(time.Minute)
	default:
		return now.Truncate(time.Hour).Add(time.Hour)
	}
}
