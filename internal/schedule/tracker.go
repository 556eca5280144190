package schedule

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrAlreadyRunning is returned when a guild already has a loop for the
// requested window
var ErrAlreadyRunning = errors.New("task already running")

type task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Tracker keeps one cancellable polling loop per (guild, window). Stops are
// cooperative: cancellation is observed between cycles, never mid-cycle.
type Tracker struct {
	mu      sync.Mutex
	running map[string]map[Window]*task
}

// NewTracker creates an empty task tracker
func NewTracker() *Tracker {
	return &Tracker{
		running: make(map[string]map[Window]*task),
	}
}

// Start launches a loop that invokes fn at every window boundary until the
// loop is stopped or ctx is cancelled
func (t *Tracker) Start(ctx context.Context, guildID string, w Window, fn func(context.Context)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.running[guildID][w]; ok {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	tk := &task{cancel: cancel, done: make(chan struct{})}
	if t.running[guildID] == nil {
		t.running[guildID] = make(map[Window]*task)
	}
	t.running[guildID][w] = tk

	go t.run(ctx, guildID, w, fn, tk)

	slog.Info("Started tracking loop", "guild", guildID, "window", w)
	return nil
}

func (t *Tracker) run(ctx context.Context, guildID string, w Window, fn func(context.Context), tk *task) {
	defer func() {
		t.remove(guildID, w, tk)
		close(tk.done)
	}()

	for {
		timer := time.NewTimer(time.Until(w.Next(time.Now())))
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("Tracking loop stopped", "guild", guildID, "window", w)
			return
		case <-timer.C:
		}
		fn(ctx)
	}
}

// Stop cancels a guild's loop for one window and waits for it to exit.
// It reports whether a loop was running.
func (t *Tracker) Stop(guildID string, w Window) bool {
	t.mu.Lock()
	tk, ok := t.running[guildID][w]
	t.mu.Unlock()
	if !ok {
		return false
	}

	tk.cancel()
	<-tk.done
	return true
}

// Running reports whether a guild has a loop for the window
func (t *Tracker) Running(guildID string, w Window) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.running[guildID][w]
	return ok
}

// StopAll cancels every running loop and waits for them to exit
func (t *Tracker) StopAll() {
	t.mu.Lock()
	var tasks []*task
	for _, byWindow := range t.running {
		for _, tk := range byWindow {
			tasks = append(tasks, tk)
		}
	}
	t.mu.Unlock()

	for _, tk := range tasks {
		tk.cancel()
		<-tk.done
	}
}

func (t *Tracker) remove(guildID string, w Window, tk *task) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if current, ok := t.running[guildID][w]; ok && current == tk {
		delete(t.running[guildID], w)
		if len(t.running[guildID]) == 0 {
			delete(t.running, guildID)
		}
	}
}
