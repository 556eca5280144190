// Package event resolves which catalog event is live and how far along it is.
package event

import (
	"time"

	"github.com/yorune/t10-bot/internal/bestdori"
)

// Info describes one event's timing for display. PercentOK is false when the
// progress percentage could not be computed (missing or degenerate interval).
type Info struct {
	Name      string
	Start     time.Time
	End       time.Time
	Percent   float64
	PercentOK bool
}

// CurrentEventID returns the first event in catalog order whose
// [start, end) interval on the given server contains now. Events with
// missing or malformed timestamps for that server are skipped.
func CurrentEventID(catalog *bestdori.Catalog, server int, now time.Time) (int, bool) {
	nowMs := now.UnixMilli()
	for _, id := range catalog.IDs() {
		info, ok := catalog.Get(id)
		if !ok {
			continue
		}
		start, end, ok := info.Window(server)
		if !ok {
			continue
		}
		if start <= nowMs && nowMs < end {
			return id, true
		}
	}
	return 0, false
}

// Progress reports an event's name, interval and elapsed percentage at now.
// The second return is false when the event is not in the catalog. A missing
// or zero-length interval yields PercentOK=false instead of an error.
func Progress(catalog *bestdori.Catalog, eventID int, now time.Time) (Info, bool) {
	evt, ok := catalog.Get(eventID)
	if !ok {
		return Info{}, false
	}

	result := Info{Name: evt.Name()}

	start, end, ok := evt.Window(0)
	if !ok {
		return result, true
	}
	result.Start = time.UnixMilli(start).UTC()
	result.End = time.UnixMilli(end).UTC()

	if start == end {
		return result, true
	}

	percent := float64(now.UnixMilli()-start) / float64(end-start) * 100
	result.Percent = min(100, max(0, percent))
	result.PercentOK = true
	return result, true
}
