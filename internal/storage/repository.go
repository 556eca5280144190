package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/yorune/t10-bot/internal/ranking"
)

// ErrStorageUnavailable is returned when the backing database cannot be
// opened or written. Callers treat it as fatal for the current cycle only.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Repository handles all database operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new repository with SQLite
func NewRepository(dbPath string) (*Repository, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create database directory: %v", ErrStorageUnavailable, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", ErrStorageUnavailable, err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to set pragmas: %v", ErrStorageUnavailable, err)
	}

	repo := &Repository{db: db}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to run migrations: %v", ErrStorageUnavailable, err)
	}

	return repo, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the database schema
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			guild_id VARCHAR(20) NOT NULL,
			window VARCHAR(10) NOT NULL,
			event_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			rank INTEGER NOT NULL,
			player_name TEXT NOT NULL,
			previous_points INTEGER NOT NULL,
			points INTEGER NOT NULL,
			speed INTEGER NOT NULL,
			PRIMARY KEY (guild_id, window, event_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS runners (
			guild_id VARCHAR(20) PRIMARY KEY,
			user_id INTEGER NOT NULL,
			player_name TEXT NOT NULL
		)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// Snapshot operations

// SnapshotStore is a view of the snapshots table scoped to one guild and one
// tracking window, so independent cycles never read each other's history
type SnapshotStore struct {
	repo    *Repository
	guildID string
	window  string
}

// Snapshots returns the snapshot store for a guild and tracking window
func (r *Repository) Snapshots(guildID, window string) *SnapshotStore {
	return &SnapshotStore{repo: r, guildID: guildID, window: window}
}

// LoadPrevious returns the most recently stored points for every player with
// a row for this event. Players never stored are simply absent from the map.
func (s *SnapshotStore) LoadPrevious(eventID int) (map[int64]int64, error) {
	rows, err := s.repo.db.Query(
		`SELECT user_id, points FROM snapshots WHERE guild_id = ? AND window = ? AND event_id = ?`,
		s.guildID, s.window, eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load previous snapshot: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	previous := make(map[int64]int64)
	for rows.Next() {
		var userID, points int64
		if err := rows.Scan(&userID, &points); err != nil {
			return nil, fmt.Errorf("%w: failed to scan snapshot row: %v", ErrStorageUnavailable, err)
		}
		previous[userID] = points
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read snapshot rows: %v", ErrStorageUnavailable, err)
	}
	return previous, nil
}

// Save upserts one row per entry keyed by (event_id, user_id) within the
// store's scope. The whole set is written in a single transaction so a
// concurrent reader sees either the old rows or the new ones, never a mix.
func (s *SnapshotStore) Save(entries []ranking.Entry, eventID int) error {
	tx, err := s.repo.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO snapshots (guild_id, window, event_id, user_id, rank, player_name, previous_points, points, speed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(guild_id, window, event_id, user_id) DO UPDATE SET
			rank = excluded.rank,
			player_name = excluded.player_name,
			previous_points = excluded.previous_points,
			points = excluded.points,
			speed = excluded.speed`,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to prepare upsert: %v", ErrStorageUnavailable, err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(s.guildID, s.window, eventID, e.UserID, e.Rank, e.Name, e.PreviousPoints, e.Points, e.Speed); err != nil {
			return fmt.Errorf("%w: failed to upsert snapshot row: %v", ErrStorageUnavailable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit snapshot: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Runner operations

// SetRunner registers or replaces a guild's reference player
func (r *Repository) SetRunner(guildID string, userID int64, playerName string) error {
	_, err := r.db.Exec(
		`INSERT INTO runners (guild_id, user_id, player_name) VALUES (?, ?, ?)
		 ON CONFLICT(guild_id) DO UPDATE SET user_id = excluded.user_id, player_name = excluded.player_name`,
		guildID, userID, playerName,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to set runner: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// GetRunner retrieves a guild's reference player; nil when none is set
func (r *Repository) GetRunner(guildID string) (*Runner, error) {
	runner := &Runner{GuildID: guildID}
	err := r.db.QueryRow(
		`SELECT user_id, player_name FROM runners WHERE guild_id = ?`,
		guildID,
	).Scan(&runner.UserID, &runner.PlayerName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get runner: %v", ErrStorageUnavailable, err)
	}
	return runner, nil
}

// DeleteRunner removes a guild's reference player
func (r *Repository) DeleteRunner(guildID string) error {
	_, err := r.db.Exec(`DELETE FROM runners WHERE guild_id = ?`, guildID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete runner: %v", ErrStorageUnavailable, err)
	}
	return nil
}
