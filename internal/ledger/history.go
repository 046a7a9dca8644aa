package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// StatusCompleted marks a history row written after a successful relocation.
const StatusCompleted = "completed"

// HistoryRecord proves that an identity key was fully relocated.
type HistoryRecord struct {
	ID          int64
	IdentityKey string
	SourcePath  string
	TargetPath  string
	Status      string
	CreatedAt   time.Time
}

const historyColumns = `id, identity_key, src_path, dst_path, created_at, status`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistory(row rowScanner) (*HistoryRecord, error) {
	var (
		rec       HistoryRecord
		createdAt string
	)
	if err := row.Scan(&rec.ID, &rec.IdentityKey, &rec.SourcePath, &rec.TargetPath, &createdAt, &rec.Status); err != nil {
		return nil, err
	}
	rec.CreatedAt = parseTimeString(createdAt)
	return &rec, nil
}

func (s *Store) queryOneHistory(ctx context.Context, where string, arg any) (*HistoryRecord, error) {
	ctx = ensureContext(ctx)
	var rec *HistoryRecord
	err := retryOnBusy(ctx, func() error {
		row := s.db.QueryRowContext(ctx, `SELECT `+historyColumns+` FROM unzip_history WHERE `+where+` ORDER BY id DESC LIMIT 1`, arg)
		var scanErr error
		rec, scanErr = scanHistory(row)
		return scanErr
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// HistoryByKey returns the latest record for key, or nil when none exists.
func (s *Store) HistoryByKey(ctx context.Context, key string) (*HistoryRecord, error) {
	rec, err := s.queryOneHistory(ctx, "identity_key = ?", key)
	if err != nil {
		return nil, statementFailed("history by key", err)
	}
	return rec, nil
}

// HistoryBySourcePath returns the latest record for a source path, or nil.
func (s *Store) HistoryBySourcePath(ctx context.Context, path string) (*HistoryRecord, error) {
	rec, err := s.queryOneHistory(ctx, "src_path = ?", path)
	if err != nil {
		return nil, statementFailed("history by source path", err)
	}
	return rec, nil
}

// SaveHistory appends a completed record for key.
func (s *Store) SaveHistory(ctx context.Context, key, sourcePath, targetPath string) error {
	_, err := s.execWithRetry(ctx,
		`INSERT INTO unzip_history (identity_key, src_path, dst_path, created_at, status) VALUES (?, ?, ?, ?, ?)`,
		key, sourcePath, targetPath, now(), StatusCompleted,
	)
	if err != nil {
		return statementFailed("save history", err)
	}
	return nil
}

// UpdateHistoryStatus sets the status of every record for key and returns the
// number of rows touched.
func (s *Store) UpdateHistoryStatus(ctx context.Context, key, status string) (int64, error) {
	res, err := s.execWithRetry(ctx, `UPDATE unzip_history SET status = ? WHERE identity_key = ?`, status, key)
	if err != nil {
		return 0, statementFailed("update history status", err)
	}
	return res.RowsAffected()
}

// DeleteHistory removes every record for key so the item is processed again.
func (s *Store) DeleteHistory(ctx context.Context, key string) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM unzip_history WHERE identity_key = ?`, key)
	if err != nil {
		return 0, statementFailed("delete history", err)
	}
	return res.RowsAffected()
}

// ListHistory returns records newest first. A limit <= 0 returns everything.
func (s *Store) ListHistory(ctx context.Context, limit int) ([]HistoryRecord, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + historyColumns + ` FROM unzip_history ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, statementFailed("list history", err)
	}
	defer rows.Close()

	var out []HistoryRecord
	for rows.Next() {
		rec, err := scanHistory(rows)
		if err != nil {
			return nil, statementFailed("scan history", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, statementFailed("list history", err)
	}
	return out, nil
}
