// Package cache remembers how each build artifact was produced.
//
// The incremental check compares modification times, which cannot see a
// change of flags: switching a project from c++17 to c++20 leaves the old
// executable newer than its sources. The cache stores a fingerprint of the
// last successful compiler invocation per artifact in BoltDB so the builder
// can tell that the artifact is stale even when its timestamp is fresh.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	// DBName is the BoltDB file inside the cache directory
	DBName = "builds.db"

	// bucketName is the BoltDB bucket name for fingerprint entries
	bucketName = "builds"
)

// Cache stores build fingerprints using BoltDB
type Cache struct {
	db   *bbolt.DB
	root string
}

// New opens (or creates) the cache in cacheDir
func New(cacheDir string) (*Cache, error) {
	if cacheDir == "" {
		return nil, fmt.Errorf("cache directory not specified")
	}

	// Ensure cache directory exists
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dbPath := filepath.Join(cacheDir, DBName)
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// Create bucket if it doesn't exist
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}

	return &Cache{
		db:   db,
		root: cacheDir,
	}, nil
}

// Close closes the cache database
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}

	return nil
}

// Dir returns the cache directory
func (c *Cache) Dir() string {
	return c.root
}

// Get retrieves the entry for an artifact path.
// Returns nil on a cache miss.
func (c *Cache) Get(output string) (*Entry, error) {
	var entry *Entry

	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		data := b.Get(key(output))
		if data == nil {
			return nil
		}

		entry = &Entry{}
		return json.Unmarshal(data, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	return entry, nil
}

// Put saves or replaces the entry for entry.Output
func (c *Cache) Put(entry *Entry) error {
	if entry.Output == "" {
		return fmt.Errorf("cache entry has no output path")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	err = c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put(key(entry.Output), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	return nil
}

// Delete forgets the entry for an artifact. Missing entries are ignored.
func (c *Cache) Delete(output string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete(key(output))
	})
}

// Clear removes all cache entries
func (c *Cache) Clear() error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return err
		}

		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
}

// Stats returns the number of entries and the database size on disk
func (c *Cache) Stats() (int, int64, error) {
	var count int

	err := c.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket([]byte(bucketName)).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	info, err := os.Stat(filepath.Join(c.root, DBName))
	if err != nil {
		return count, 0, nil
	}

	return count, info.Size(), nil
}

// key normalises an artifact path so the same file always maps to one entry
func key(output string) []byte {
	if abs, err := filepath.Abs(output); err == nil {
		output = abs
	}

	return []byte(filepath.Clean(output))
}
