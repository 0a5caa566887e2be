package cache

import (
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Cache remembers the digest of every feed written, so unchanged feeds can be
// told apart from updated ones across builds.
type Cache struct {
	db *sql.DB
}

// CacheStats contains cache statistics
type CacheStats struct {
	Entries     int
	OldestEntry time.Time
}

// NewCache initializes cache database at the given path
func NewCache(dbPath string) (*Cache, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	c, err := NewCacheFromDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// NewCacheFromDB initializes the cache schema on an already open database
func NewCacheFromDB(db *sql.DB) (*Cache, error) {
	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Digest returns the hex encoded SHA-256 of data
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// GetDigest retrieves the digest recorded for path
// Returns: (digest, found, error)
func (c *Cache) GetDigest(path string) (string, bool, error) {
	var digest string

	err := c.db.QueryRow(
		"SELECT digest FROM feed_digest WHERE path = ?",
		path,
	).Scan(&digest)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read digest of '%s': %w", path, err)
	}

	return digest, true, nil
}

// SetDigest records digest for path
func (c *Cache) SetDigest(path, digest string) error {
	now := time.Now().Unix()

	_, err := c.db.Exec(`
		INSERT INTO feed_digest (path, digest, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET digest = excluded.digest, updated_at = excluded.updated_at
	`, path, digest, now, now)

	if err != nil {
		slog.Warn("feed digest write error", "error", err, "path", path)
		return err
	}

	return nil
}

// Changed reports whether data differs from the digest recorded for path.
// A path seen for the first time counts as changed. Nothing is recorded.
func (c *Cache) Changed(path string, data []byte) (bool, error) {
	previous, found, err := c.GetDigest(path)
	if err != nil {
		return false, err
	}
	return !found || previous != Digest(data), nil
}

// Record stores the digest of data for path
func (c *Cache) Record(path string, data []byte) error {
	return c.SetDigest(path, Digest(data))
}

// Clear removes all cache entries
func (c *Cache) Clear() error {
	if _, err := c.db.Exec("DELETE FROM feed_digest"); err != nil {
		return fmt.Errorf("failed to clear feed digests: %w", err)
	}
	return nil
}

// Stats returns cache statistics
func (c *Cache) Stats() (CacheStats, error) {
	var stats CacheStats

	err := c.db.QueryRow("SELECT COUNT(*) FROM feed_digest").Scan(&stats.Entries)
	if err != nil {
		return stats, err
	}

	var oldestUnix sql.NullInt64
	err = c.db.QueryRow("SELECT MIN(created_at) FROM feed_digest").Scan(&oldestUnix)
	if err != nil && err != sql.ErrNoRows {
		return stats, err
	}
	if oldestUnix.Valid && oldestUnix.Int64 > 0 {
		stats.OldestEntry = time.Unix(oldestUnix.Int64, 0)
	}

	return stats, nil
}

// Close closes the cache database
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// DefaultCachePath returns the default cache database path
func DefaultCachePath() string {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		home := os.Getenv("HOME")
		if home == "" {
			return "cache.db" // Fallback to current directory
		}
		cacheDir = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheDir, "linkfeed", "cache.db")
}
