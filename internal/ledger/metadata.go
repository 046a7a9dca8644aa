package ledger

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"decant/internal/naming"
)

// Metadata carries the naming and secret fields known for an identity key.
type Metadata struct {
	IdentityKey string
	Title       string
	AltTitle    string
	UnzipKey    string
	OpenKey     string
	UpdatedAt   time.Time
}

// DisplayTitle returns Title, falling back to AltTitle.
func (m *Metadata) DisplayTitle() string {
	if m == nil {
		return ""
	}
	if t := strings.TrimSpace(m.Title); t != "" {
		return t
	}
	return strings.TrimSpace(m.AltTitle)
}

// Password returns UnzipKey, falling back to OpenKey.
func (m *Metadata) Password() string {
	if m == nil {
		return ""
	}
	if m.UnzipKey != "" {
		return m.UnzipKey
	}
	return m.OpenKey
}

// CompletionHints lists the resolution labels named by the item's target
// folder. Services requiring every resolution wait for all of them.
func (m *Metadata) CompletionHints() []string {
	if m == nil {
		return nil
	}
	return naming.ResolutionHints(naming.FolderName(m.IdentityKey, m.DisplayTitle()))
}

const metadataColumns = `identity_key, title, alt_title, unzip_key, open_key, updated_at`

func scanMetadata(row rowScanner) (*Metadata, error) {
	var (
		m                             Metadata
		title, alt, unzipKey, openKey sql.NullString
		updatedAt                     string
	)
	if err := row.Scan(&m.IdentityKey, &title, &alt, &unzipKey, &openKey, &updatedAt); err != nil {
		return nil, err
	}
	m.Title = title.String
	m.AltTitle = alt.String
	m.UnzipKey = unzipKey.String
	m.OpenKey = openKey.String
	m.UpdatedAt = parseTimeString(updatedAt)
	return &m, nil
}

// LookupMetadata returns the metadata for key, or nil when none is stored.
func (s *Store) LookupMetadata(ctx context.Context, key string) (*Metadata, error) {
	ctx = ensureContext(ctx)
	var m *Metadata
	err := retryOnBusy(ctx, func() error {
		row := s.db.QueryRowContext(ctx, `SELECT `+metadataColumns+` FROM pieces WHERE identity_key = ?`, key)
		var scanErr error
		m, scanErr = scanMetadata(row)
		return scanErr
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, statementFailed("lookup metadata", err)
	}
	return m, nil
}

// UpsertMetadata inserts or replaces the metadata row for m.IdentityKey.
func (s *Store) UpsertMetadata(ctx context.Context, m Metadata) error {
	if strings.TrimSpace(m.IdentityKey) == "" {
		return errors.New("metadata identity key is required")
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO pieces (identity_key, title, alt_title, unzip_key, open_key, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(identity_key) DO UPDATE SET
             title = excluded.title,
             alt_title = excluded.alt_title,
             unzip_key = excluded.unzip_key,
             open_key = excluded.open_key,
             updated_at = excluded.updated_at`,
		m.IdentityKey,
		nullableString(m.Title),
		nullableString(m.AltTitle),
		nullableString(m.UnzipKey),
		nullableString(m.OpenKey),
		now(),
	)
	if err != nil {
		return statementFailed("upsert metadata", err)
	}
	return nil
}

// ListMetadata returns every metadata row ordered by key.
func (s *Store) ListMetadata(ctx context.Context) ([]Metadata, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT `+metadataColumns+` FROM pieces ORDER BY identity_key`)
	if err != nil {
		return nil, statementFailed("list metadata", err)
	}
	defer rows.Close()

	var out []Metadata
	for rows.Next() {
		m, err := scanMetadata(rows)
		if err != nil {
			return nil, statementFailed("scan metadata", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, statementFailed("list metadata", err)
	}
	return out, nil
}
