package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/kbrag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// DatabaseFile is the file name of the cache database inside the data directory.
const DatabaseFile = "cache.db"

// Store owns the SQLite connection and hands out the stores built on it.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database in dataDir and applies
// pending migrations. If dataDir is empty, defaults to ~/.kbrag/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".kbrag", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL lets the MCP server and a CLI `cache clear` share the file.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ResponseCache returns a response cache with the given TTL backed by this store.
// A non-positive ttl uses the default of one hour.
func (s *Store) ResponseCache(ttl time.Duration, opts ...CacheOption) *ResponseCache {
	if ttl <= 0 {
		ttl = domain.DefaultCacheTTL
	}
	c := &ResponseCache{
		db:  s.db,
		ttl: ttl,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// migrate applies every NNN_name.up.sql above the recorded version,
// each in its own transaction together with its version row.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, stmt string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(stmt); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	return tx.Commit()
}

// Ensure ResponseCache implements the interface.
var _ driven.ResponseCache = (*ResponseCache)(nil)

// CacheOption configures a ResponseCache.
type CacheOption func(*ResponseCache)

// WithClock replaces time.Now. Used by tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *ResponseCache) {
		c.now = now
	}
}

// ResponseCache is a persistent driven.ResponseCache. Entries survive
// restarts and expire with the same TTL rule as the in-memory cache.
type ResponseCache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Get returns the response for key unless it is missing or expired.
// Expired rows are deleted on lookup.
func (c *ResponseCache) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		response  string
		createdAt int64
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT response, created_at FROM response_cache WHERE cache_key = ?", key,
	).Scan(&response, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading cache entry: %w", err)
	}

	entry := domain.CacheEntry{Response: response, CreatedAt: time.Unix(0, createdAt)}
	if entry.Expired(c.now(), c.ttl) {
		if _, err := c.db.ExecContext(ctx,
			"DELETE FROM response_cache WHERE cache_key = ? AND created_at = ?", key, createdAt,
		); err != nil {
			return "", false, fmt.Errorf("evicting cache entry: %w", err)
		}
		return "", false, nil
	}
	return entry.Response, true, nil
}

// Put stores response for key, replacing any previous entry.
func (c *ResponseCache) Put(ctx context.Context, key, response string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO response_cache (cache_key, response, created_at) VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET response = excluded.response, created_at = excluded.created_at
	`, key, response, c.now().UnixNano())
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Clear removes all entries and returns how many were removed.
func (c *ResponseCache) Clear(ctx context.Context) (int, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM response_cache")
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	return int(n), nil
}

// Len returns the number of stored rows, including expired ones not yet evicted.
func (c *ResponseCache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM response_cache").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cache entries: %w", err)
	}
	return n, nil
}

// Prune deletes every expired row and returns how many were removed.
func (c *ResponseCache) Prune(ctx context.Context) (int, error) {
	cutoff := c.now().Add(-c.ttl).UnixNano()
	res, err := c.db.ExecContext(ctx, "DELETE FROM response_cache WHERE created_at <= ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	return int(n), nil
}
