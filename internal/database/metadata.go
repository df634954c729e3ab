package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Metadata keys for run bookkeeping.
const (
	MetadataLastImport        = "last_import_run"
	MetadataLastThumbnailSync = "last_thumbnail_run"
)

// GetMetadata retrieves a metadata value by key.
// Returns sql.ErrNoRows if the key doesn't exist.
func (d *Database) GetMetadata(ctx context.Context, key string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var value sql.NullString
	err := d.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value.String, nil
}

// SetMetadata sets a metadata key-value pair.
func (d *Database) SetMetadata(ctx context.Context, key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// GetLastRun returns the timestamp stored under key, or the zero time if
// the run never happened.
func (d *Database) GetLastRun(ctx context.Context, key string) (time.Time, error) {
	value, err := d.GetMetadata(ctx, key)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && value == "") {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

// SetLastRun stores t under key. The zero time clears the value.
func (d *Database) SetLastRun(ctx context.Context, key string, t time.Time) error {
	if t.IsZero() {
		return d.SetMetadata(ctx, key, "")
	}
	return d.SetMetadata(ctx, key, t.Format(time.RFC3339))
}
