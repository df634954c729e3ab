package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"photo-catalog/internal/logging"
	"photo-catalog/internal/metrics"
	"photo-catalog/internal/workers"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// captureTimeLayout stores capture times as naive wall-clock text so that
// ORDER BY sorts chronologically.
const captureTimeLayout = "2006-01-02 15:04:05"

// Options configures a catalog database.
type Options struct {
	// Path is the full path to the database file. Its directory must exist.
	Path string

	// MaxOpenConns caps the connection pool. It must cover the busiest
	// worker pool plus concurrent readers, otherwise workers that hold a
	// connection wait on readers that wait on a connection. Zero selects
	// workers.ConnectionBudget for the default pools.
	MaxOpenConns int
}

// Database is the SQLite-backed picture catalog.
type Database struct {
	db     *sql.DB
	dbPath string
	// mu serializes writers; SQLite allows a single writer at a time and
	// waiting here is cheaper than spinning on busy_timeout.
	mu sync.RWMutex
}

// New opens (creating if needed) the catalog at opts.Path and applies the schema.
func New(ctx context.Context, opts Options) (*Database, error) {
	logging.Info("Database path: %s", opts.Path)

	if err := diagnoseDatabasePermissions(opts.Path); err != nil {
		logging.Warn("Database permission diagnostics: %v", err)
	}

	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on", opts.Path)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	maxConns := opts.MaxOpenConns
	if maxConns <= 0 {
		maxConns = workers.ConnectionBudget(workers.DefaultTransferConcurrency, workers.ForCPU(0))
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(min(maxConns, 10))
	db.SetConnMaxLifetime(time.Hour)
	logging.Debug("Database pool: max %d connections", maxConns)

	d := &Database{
		db:     db,
		dbPath: opts.Path,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", opts.Path)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS directories (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL UNIQUE,
		parent_id TEXT REFERENCES directories(id)
	);

	CREATE INDEX IF NOT EXISTS idx_directories_parent ON directories(parent_id);

	CREATE TABLE IF NOT EXISTS pictures (
		id TEXT PRIMARY KEY,
		directory TEXT NOT NULL,
		filename TEXT NOT NULL,
		raw_extension TEXT,
		short_hash BLOB,
		full_hash BLOB,
		capture_time TEXT,
		rating INTEGER CHECK (rating IS NULL OR (rating BETWEEN 0 AND 5)),
		flag TEXT CHECK (flag IS NULL OR flag IN ('Red', 'Green', 'Blue', 'Yellow', 'Purple')),
		hidden INTEGER NOT NULL DEFAULT 0,
		selection TEXT NOT NULL DEFAULT 'Ordinary' CHECK (selection IN ('Ignore', 'Ordinary', 'Pick')),
		thumbnail BLOB,
		directory_id TEXT REFERENCES directories(id),
		UNIQUE(directory, filename)
	);

	CREATE INDEX IF NOT EXISTS idx_pictures_directory ON pictures(directory);
	CREATE INDEX IF NOT EXISTS idx_pictures_filename ON pictures(filename);
	CREATE INDEX IF NOT EXISTS idx_pictures_capture ON pictures(directory, capture_time, filename);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT
	);
	`

	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return err
	}

	if err := d.runMigrations(ctx); err != nil {
		return err
	}

	_, err := d.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_pictures_directory_id ON pictures(directory_id)`)
	return err
}

// runMigrations applies schema changes to catalogs created by older builds.
func (d *Database) runMigrations(ctx context.Context) error {
	// Migration 1: directory_id links pictures to the directories table.
	var columnExists bool
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*) > 0
		FROM pragma_table_info('pictures')
		WHERE name='directory_id'
	`).Scan(&columnExists)
	if err != nil {
		return fmt.Errorf("failed to check for directory_id column: %w", err)
	}

	if !columnExists {
		logging.Info("Migrating database: adding directory_id column to pictures table")

		if _, err := d.db.ExecContext(ctx, `
			ALTER TABLE pictures ADD COLUMN directory_id TEXT REFERENCES directories(id)
		`); err != nil {
			return fmt.Errorf("failed to add directory_id column: %w", err)
		}

		logging.Info("Migration complete: directory_id column added")
	}

	return nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// withTx runs fn inside a transaction, committing on success and rolling
// back when fn fails.
func (d *Database) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	start := time.Now()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err = fn(tx); err != nil {
		metrics.DBTransactionDuration.WithLabelValues("rollback").Observe(time.Since(start).Seconds())
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	metrics.DBTransactionDuration.WithLabelValues("commit").Observe(time.Since(start).Seconds())
	return nil
}

// CatalogStats implements metrics.StatsProvider.
func (d *Database) CatalogStats(ctx context.Context) (stats metrics.Stats, err error) {
	start := time.Now()
	defer func() { recordQuery("catalog_stats", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN thumbnail IS NULL THEN 1 ELSE 0 END), 0),
			COUNT(DISTINCT directory)
		FROM pictures
	`).Scan(&stats.Pictures, &stats.PicturesMissingThumbnail, &stats.Directories)
	return stats, err
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// UpdateDBMetrics updates database connection metrics
func (d *Database) UpdateDBMetrics() {
	stats := d.db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
}

// MaxOpenConns reports the configured pool size.
func (d *Database) MaxOpenConns() int {
	return d.db.Stats().MaxOpenConnections
}

// diagnoseDatabasePermissions checks database directory and file permissions
func diagnoseDatabasePermissions(dbPath string) error {
	dir := filepath.Dir(dbPath)

	dirInfo, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot stat database directory: %w", err)
	}

	logging.Debug("Database directory: %s (mode: %v)", dir, dirInfo.Mode())

	testFile := filepath.Join(dir, ".perm-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return fmt.Errorf("database directory not writable: %w", err)
	}
	_ = os.Remove(testFile)
	logging.Debug("Database directory is writable")

	for _, path := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		logging.Debug("Database file exists: %s (mode: %v, size: %d bytes)", path, info.Mode(), info.Size())
		if info.Mode().Perm()&0o200 == 0 {
			logging.Warn("%s is read-only (mode %v), writes will fail", path, info.Mode())
		}
	}

	return nil
}
