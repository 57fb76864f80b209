package stopstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ovtracker-map/internal/common/db"
	"github.com/ovtracker-map/pkg/ovtrips/models"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS stop_coordinates (
		name  TEXT PRIMARY KEY,
		lat   DOUBLE PRECISION NOT NULL,
		lng   DOUBLE PRECISION NOT NULL,
		label TEXT NOT NULL,
		query TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS unmatched_stops (
		seq  INTEGER NOT NULL,
		name TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS stop_store_meta (
		id           INTEGER PRIMARY KEY,
		generated_at TEXT NOT NULL
	)`,
}

// SQLStore keeps the store in three tables of a SQLite or Postgres database.
type SQLStore struct {
	db *db.DB
}

func NewSQLStore(database *db.DB) *SQLStore {
	return &SQLStore{db: database}
}

// EnsureSchema creates the tables if they do not exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.DB().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context) (models.StopStore, error) {
	store := models.NewStopStore()

	var generatedAt sql.NullString
	err := s.db.DB().QueryRowContext(ctx,
		"SELECT generated_at FROM stop_store_meta WHERE id = 1").Scan(&generatedAt)
	if err != nil && err != sql.ErrNoRows {
		return store, fmt.Errorf("querying store metadata: %w", err)
	}
	if generatedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, generatedAt.String)
		if err != nil {
			return store, fmt.Errorf("parsing generated_at %q: %w", generatedAt.String, err)
		}
		store.GeneratedAt = t
	}

	rows, err := s.db.DB().QueryContext(ctx,
		"SELECT name, lat, lng, label, query FROM stop_coordinates")
	if err != nil {
		return store, fmt.Errorf("querying stop coordinates: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var c models.StopCoordinate
		if err := rows.Scan(&name, &c.Lat, &c.Lng, &c.Label, &c.Query); err != nil {
			return store, fmt.Errorf("scanning stop coordinate: %w", err)
		}
		store.Stops[name] = c
	}
	if err := rows.Err(); err != nil {
		return store, fmt.Errorf("iterating stop coordinates: %w", err)
	}

	unmatched, err := s.db.DB().QueryContext(ctx,
		"SELECT name FROM unmatched_stops ORDER BY seq")
	if err != nil {
		return store, fmt.Errorf("querying unmatched stops: %w", err)
	}
	defer unmatched.Close()
	for unmatched.Next() {
		var name string
		if err := unmatched.Scan(&name); err != nil {
			return store, fmt.Errorf("scanning unmatched stop: %w", err)
		}
		store.Unmatched = append(store.Unmatched, name)
	}
	if err := unmatched.Err(); err != nil {
		return store, fmt.Errorf("iterating unmatched stops: %w", err)
	}

	return normalize(store, s.db.Logger()), nil
}

// Save replaces the stored document in one transaction.
func (s *SQLStore) Save(ctx context.Context, store models.StopStore) error {
	store = normalize(store, s.db.Logger())

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM stop_coordinates",
		"DELETE FROM unmatched_stops",
		"DELETE FROM stop_store_meta",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clearing store: %w", err)
		}
	}

	insertStop := s.db.Rebind("INSERT INTO stop_coordinates (name, lat, lng, label, query) VALUES (?, ?, ?, ?, ?)")
	for name, c := range store.Stops {
		if _, err := tx.ExecContext(ctx, insertStop, name, c.Lat, c.Lng, c.Label, c.Query); err != nil {
			return fmt.Errorf("inserting stop %q: %w", name, err)
		}
	}

	insertUnmatched := s.db.Rebind("INSERT INTO unmatched_stops (seq, name) VALUES (?, ?)")
	for i, name := range store.Unmatched {
		if _, err := tx.ExecContext(ctx, insertUnmatched, i, name); err != nil {
			return fmt.Errorf("inserting unmatched stop %q: %w", name, err)
		}
	}

	insertMeta := s.db.Rebind("INSERT INTO stop_store_meta (id, generated_at) VALUES (1, ?)")
	if _, err := tx.ExecContext(ctx, insertMeta, store.GeneratedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("writing store metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
