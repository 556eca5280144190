package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowNext(t *testing.T) {
	base := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		window Window
		now    time.Time
		want   time.Time
	}{
		{"hourly mid-hour", WindowHourly, base.Add(15 * time.Minute), base.Add(time.Hour)},
		{"hourly on the hour", WindowHourly, base, base.Add(time.Hour)},
		{"two-min odd minute", WindowTwoMin, base.Add(3 * time.Minute), base.Add(4 * time.Minute)},
		{"two-min even minute", WindowTwoMin, base.Add(4 * time.Minute), base.Add(6 * time.Minute)},
		{"two-min mid-minute", WindowTwoMin, base.Add(5*time.Minute + 30*time.Second), base.Add(6 * time.Minute)},
		{"two-min hour rollover", WindowTwoMin, base.Add(59 * time.Minute), base.Add(time.Hour)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.window.Next(tc.now)
			assert.Equal(t, tc.want, got)
			assert.True(t, got.After(tc.now), "boundary must be strictly after now")
		})
	}
}

func TestWindowValid(t *testing.T) {
	assert.True(t, WindowHourly.Valid())
	assert.True(t, WindowTwoMin.Valid())
	assert.False(t, Window("daily").Valid())
}

func TestTrackerRejectsDuplicateStart(t *testing.T) {
	tracker := NewTracker()
	defer tracker.StopAll()

	noop := func(context.Context) {}

	require.NoError(t, tracker.Start(context.Background(), "guild-1", WindowHourly, noop))
	assert.ErrorIs(t, tracker.Start(context.Background(), "guild-1", WindowHourly, noop), ErrAlreadyRunning)

	// Same guild, other window is fine; other guild, same window is fine
	require.NoError(t, tracker.Start(context.Background(), "guild-1", WindowTwoMin, noop))
	require.NoError(t, tracker.Start(context.Background(), "guild-2", WindowHourly, noop))
}

func TestTrackerStop(t *testing.T) {
	tracker := NewTracker()

	require.NoError(t, tracker.Start(context.Background(), "guild-1", WindowHourly, func(context.Context) {}))
	assert.True(t, tracker.Running("guild-1", WindowHourly))

	assert.True(t, tracker.Stop("guild-1", WindowHourly))
	assert.False(t, tracker.Running("guild-1", WindowHourly))

	// Stopping again reports nothing was running
	assert.False(t, tracker.Stop("guild-1", WindowHourly))

	// A stopped loop can be started again
	require.NoError(t, tracker.Start(context.Background(), "guild-1", WindowHourly, func(context.Context) {}))
	tracker.StopAll()
	assert.False(t, tracker.Running("guild-1", WindowHourly))
}

func TestTrackerParentContextCancelStopsLoop(t *testing.T) {
	tracker := NewTracker()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, tracker.Start(ctx, "guild-1", WindowTwoMin, func(context.Context) {}))

	cancel()

	// The loop observes cancellation and removes itself
	require.Eventually(t, func() bool {
		return !tracker.Running("guild-1", WindowTwoMin)
	}, time.Second, 10*time.Millisecond)
}
