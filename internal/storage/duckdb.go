package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joeblew999/plat-style/internal/style"
)

const snapshotsSchema = `CREATE TABLE IF NOT EXISTS style_snapshots (
	id       VARCHAR PRIMARY KEY,
	seq      BIGINT NOT NULL,
	name     VARCHAR,
	saved_at TIMESTAMP NOT NULL,
	document VARCHAR NOT NULL
)`

// Snapshot describes one saved style.
type Snapshot struct {
	ID      string    `json:"id"`
	Seq     int64     `json:"seq"`
	Name    string    `json:"name"`
	SavedAt time.Time `json:"savedAt"`
}

// DuckDBStore appends every saved style to the style_snapshots table and
// loads the most recent one.
type DuckDBStore struct {
	db *sql.DB
}

// NewDuckDBStore creates the snapshot table if needed.
func NewDuckDBStore(ctx context.Context, db *sql.DB) (*DuckDBStore, error) {
	if db == nil {
		return nil, errors.New("duckdb store: nil database")
	}
	if _, err := db.ExecContext(ctx, snapshotsSchema); err != nil {
		return nil, fmt.Errorf("create style_snapshots: %w", err)
	}
	return &DuckDBStore{db: db}, nil
}

// LoadLatestStyle returns the snapshot with the highest sequence number.
func (s *DuckDBStore) LoadLatestStyle(ctx context.Context) (*style.Document, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT document FROM style_snapshots ORDER BY seq DESC LIMIT 1").Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStyleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load style: %w", err)
	}

	doc, err := style.Decode([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return doc, nil
}

// SaveStyle inserts a new snapshot.
func (s *DuckDBStore) SaveStyle(ctx context.Context, doc *style.Document) error {
	data, err := style.Encode(doc)
	if err != nil {
		return fmt.Errorf("encode style: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq), 0) + 1 FROM style_snapshots").Scan(&seq); err != nil {
		return fmt.Errorf("next snapshot seq: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO style_snapshots (id, seq, name, saved_at, document) VALUES (?, ?, ?, ?, ?)",
		uuid.NewString(), seq, doc.Name, time.Now().UTC(), string(data))
	if err != nil {
		return fmt.Errorf("save style: %w", err)
	}
	return tx.Commit()
}

// Snapshots lists saved snapshots, newest first.
func (s *DuckDBStore) Snapshots(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT id, seq, COALESCE(name, ''), saved_at FROM style_snapshots ORDER BY seq DESC LIMIT %d", limit))
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	out := []Snapshot{}
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Seq, &snap.Name, &snap.SavedAt); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}
