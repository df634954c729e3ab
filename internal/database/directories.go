package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ListDistinctDirectories returns every directory that holds at least one
// picture, sorted.
func (d *Database) ListDistinctDirectories(ctx context.Context) (dirs []string, err error) {
	start := time.Now()
	defer func() { recordQuery("list_distinct_directories", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `SELECT DISTINCT directory FROM pictures ORDER BY directory`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var dir string
		if err := rows.Scan(&dir); err != nil {
			return nil, err
		}
		dirs = append(dirs, dir)
	}
	return dirs, rows.Err()
}

// ResolveOrCreateDirectory returns the id of the directories row for path,
// creating it and any missing ancestors.
func (d *Database) ResolveOrCreateDirectory(ctx context.Context, path string) (id uuid.UUID, err error) {
	start := time.Now()
	defer func() { recordQuery("resolve_directory", start, err) }()

	path = filepath.Clean(path)

	d.mu.Lock()
	defer d.mu.Unlock()

	err = d.withTx(ctx, func(tx *sql.Tx) error {
		var txErr error
		id, txErr = resolveDirectory(ctx, tx, path)
		return txErr
	})
	return id, err
}

// resolveDirectory walks up from path until it finds an existing row, then
// inserts the missing rows on the way back down.
func resolveDirectory(ctx context.Context, tx *sql.Tx, path string) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRowContext(ctx, `SELECT id FROM directories WHERE path = ?`, path).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("lookup directory %s: %w", path, err)
	}

	var parentID uuid.NullUUID
	if parent := filepath.Dir(path); parent != path {
		pid, err := resolveDirectory(ctx, tx, parent)
		if err != nil {
			return uuid.Nil, err
		}
		parentID = uuid.NullUUID{UUID: pid, Valid: true}
	}

	id = uuid.New()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO directories (id, path, parent_id) VALUES (?, ?, ?)`,
		id, path, parentID,
	); err != nil {
		return uuid.Nil, fmt.Errorf("create directory %s: %w", path, err)
	}
	return id, nil
}

// GetDirectory returns the directories row for path.
func (d *Database) GetDirectory(ctx context.Context, path string) (Directory, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var (
		dir      Directory
		parentID uuid.NullUUID
	)
	err := d.db.QueryRowContext(ctx,
		`SELECT id, path, parent_id FROM directories WHERE path = ?`, filepath.Clean(path),
	).Scan(&dir.ID, &dir.Path, &parentID)
	if errors.Is(err, sql.ErrNoRows) {
		return dir, fmt.Errorf("directory %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return dir, err
	}
	if parentID.Valid {
		pid := parentID.UUID
		dir.ParentID = &pid
	}
	return dir, nil
}
