package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/iconidentify/mediagrab/internal/domain"
)

// SQLiteHistoryRepository implements HistoryRepository backed by a SQLite
// database file. History is the only state that survives a restart.
type SQLiteHistoryRepository struct {
	db *sql.DB
}

const historySchema = `
CREATE TABLE IF NOT EXISTS download_history (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	url        TEXT NOT NULL,
	platform   TEXT NOT NULL,
	filename   TEXT NOT NULL,
	size_bytes INTEGER NOT NULL,
	audio_only INTEGER NOT NULL,
	outcome    TEXT NOT NULL,
	error      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_owner ON download_history(owner_id, created_at DESC);
`

// NewSQLiteHistoryRepository opens (creating if needed) the history
// database at path.
func NewSQLiteHistoryRepository(path string) (*SQLiteHistoryRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}

	return &SQLiteHistoryRepository{db: db}, nil
}

// Record appends one download outcome.
func (r *SQLiteHistoryRepository) Record(ctx context.Context, rec *domain.DownloadRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO download_history
			(id, owner_id, url, platform, filename, size_bytes, audio_only, outcome, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.OwnerID, rec.URL, string(rec.Platform), rec.Filename,
		rec.SizeBytes, rec.AudioOnly, string(rec.Outcome), rec.Error, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert history record: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's most recent records, newest first.
func (r *SQLiteHistoryRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.DownloadRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, url, platform, filename, size_bytes, audio_only, outcome, error, created_at
		FROM download_history
		WHERE owner_id = ?
		ORDER BY created_at DESC
		LIMIT ?`,
		ownerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []*domain.DownloadRecord
	for rows.Next() {
		rec := &domain.DownloadRecord{}
		var platform, outcome string
		if err := rows.Scan(
			&rec.ID, &rec.OwnerID, &rec.URL, &platform, &rec.Filename,
			&rec.SizeBytes, &rec.AudioOnly, &outcome, &rec.Error, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		rec.Platform = domain.Platform(platform)
		rec.Outcome = domain.DownloadOutcome(outcome)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}

	return records, nil
}

// Close releases the underlying database.
func (r *SQLiteHistoryRepository) Close() error {
	return r.db.Close()
}
