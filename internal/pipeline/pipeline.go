// Package pipeline runs one compute-and-render cycle: resolve the live
// event, diff the fresh leaderboard against the stored snapshot, render the
// table image and persist the new snapshot.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yorune/t10-bot/internal/bestdori"
	"github.com/yorune/t10-bot/internal/event"
	"github.com/yorune/t10-bot/internal/ranking"
	"github.com/yorune/t10-bot/internal/render"
	"github.com/yorune/t10-bot/internal/schedule"
	"github.com/yorune/t10-bot/internal/storage"
)

var (
	// ErrNoCurrentEvent means no catalog event contains "now" for the server
	ErrNoCurrentEvent = errors.New("no event is currently running")
	// ErrNoEntries means the leaderboard fetch produced no rows
	ErrNoEntries = errors.New("leaderboard returned no entries")
)

// jst is the display timezone for the rendered title line
var jst = time.FixedZone("JST", 9*60*60)

// Runner executes poll cycles against the API and the repository
type Runner struct {
	client *bestdori.Client
	repo   *storage.Repository
}

// New creates a cycle runner
func New(client *bestdori.Client, repo *storage.Repository) *Runner {
	return &Runner{client: client, repo: repo}
}

// Result is one cycle's output for the posting side
type Result struct {
	Image   []byte
	EventID int
}

// RunCycle performs one full cycle for a guild and window. eventID 0 means
// resolve the currently running event from the catalog. Any error skips the
// cycle: nothing is posted and nothing partial is persisted.
func (r *Runner) RunCycle(ctx context.Context, guildID string, w schedule.Window, server, eventID int) (*Result, error) {
	catalog, catalogErr := r.client.FetchCatalog(ctx)

	if eventID == 0 {
		if catalogErr != nil {
			return nil, catalogErr
		}
		id, ok := event.CurrentEventID(catalog, server, time.Now())
		if !ok {
			return nil, fmt.Errorf("%w: server %d", ErrNoCurrentEvent, server)
		}
		eventID = id
	} else if catalogErr != nil {
		// An explicit event id can proceed without the catalog; only the
		// progress line degrades to its placeholder.
		slog.Warn("Catalog fetch failed, progress will be unknown", "error", catalogErr)
	}

	store := r.repo.Snapshots(guildID, string(w))
	previous, err := store.LoadPrevious(eventID)
	if err != nil {
		return nil, err
	}

	top, err := r.client.FetchEventTop(ctx, server, eventID)
	if err != nil {
		return nil, err
	}
	rows := top.Rows()
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: event %d", ErrNoEntries, eventID)
	}

	runner, err := r.repo.GetRunner(guildID)
	if err != nil {
		return nil, err
	}
	var runnerID int64
	var runnerName string
	if runner != nil {
		runnerID = runner.UserID
		runnerName = runner.PlayerName
	}

	entries := ranking.Compute(rows, previous, runnerID)

	table := render.BuildTable(entries, runnerName)
	img, err := render.RenderPNG(table, titleLine(catalog, eventID, time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to render table: %w", err)
	}

	if err := store.Save(entries, eventID); err != nil {
		return nil, err
	}

	slog.Info("Cycle complete", "guild", guildID, "window", w, "event", eventID, "entries", len(entries))
	return &Result{Image: img, EventID: eventID}, nil
}

// titleLine formats the current time and event progress for the image title.
// Progress degrades to a placeholder when it cannot be computed.
func titleLine(catalog *bestdori.Catalog, eventID int, now time.Time) string {
	progress := "不明"
	if catalog != nil {
		if info, ok := event.Progress(catalog, eventID, now); ok && info.PercentOK {
			progress = fmt.Sprintf("%.2f%%", info.Percent)
		}
	}
	return fmt.Sprintf("現在時刻: %s　イベント進行度: %s", now.In(jst).Format("2006/01/02 15:04"), progress)
}
