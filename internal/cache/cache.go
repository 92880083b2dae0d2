// Package cache provides persistent caching of file fingerprints.
package cache

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	bucketName = "fingerprints"
	digestSize = 16 // MD5
)

const keyVersion byte = 1 // Increment when key format changes

// Cache stores file fingerprints in BoltDB keyed by path, size and mtime.
// Implements self-cleaning: each run creates a new database, only entries
// still referenced by existing files survive the run.
type Cache struct {
	readDB  *bolt.DB // Previous run's cache (read-only)
	writeDB *bolt.DB // This run's cache - BoltDB locks this file
	path    string   // Final path (for atomic swap)
	enabled bool
}

// Open opens the existing cache for reading and creates a new cache for
// writing. BoltDB's file lock on the .new file prevents concurrent runs.
// Returns a disabled cache if path is empty.
func Open(path string) (*Cache, error) {
	if path == "" {
		return &Cache{enabled: false}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	c := &Cache{path: path, enabled: true}
	var err error

	if _, statErr := os.Stat(path); statErr == nil {
		c.readDB, err = bolt.Open(path, 0o600, &bolt.Options{
			ReadOnly: true,
			Timeout:  1 * time.Second,
		})
		if err != nil {
			// Can't open previous cache - continue without it
			c.readDB = nil
		}
	}

	newPath := path + ".new"
	c.writeDB, err = bolt.Open(newPath, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("create new cache (locked by another instance?): %w", err)
	}

	if err := c.writeDB.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	}); err != nil {
		_ = c.Close()
		return nil, err
	}

	return c, nil
}

// Close closes both databases and atomically replaces old with new.
// Only replaces if the write database closed successfully.
func (c *Cache) Close() error {
	var errs []error
	if c.readDB != nil {
		if err := c.readDB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.writeDB != nil {
		if err := c.writeDB.Close(); err != nil {
			errs = append(errs, err)
		} else {
			if err := os.Rename(c.path+".new", c.path); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// makeKey builds a deterministic byte key for BoltDB lookup.
// Key = ver(1) + path + NUL + size(8) + mtime(8)
func makeKey(path string, size int64, mtime time.Time) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(keyVersion)
	buf.WriteString(path)
	buf.WriteByte(0) // NUL separator
	_ = binary.Write(buf, binary.BigEndian, size)
	_ = binary.Write(buf, binary.BigEndian, mtime.UnixNano())
	return buf.Bytes()
}

// Lookup retrieves a cached fingerprint. Any change to the file's path, size
// or mtime is a cache miss. On a hit the entry is copied to the new database
// (self-cleaning). Returns "" when not found.
func (c *Cache) Lookup(path string, size int64, mtime time.Time) string {
	if c == nil || !c.enabled || c.readDB == nil {
		return ""
	}

	key := makeKey(path, size, mtime)
	var digest []byte

	err := c.readDB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		data := b.Get(key)
		if len(data) == digestSize {
			digest = make([]byte, digestSize)
			copy(digest, data)
		}
		return nil
	})
	if err != nil || digest == nil {
		return ""
	}

	// Self-cleaning: carry the live entry into the new database
	_ = c.store(key, digest)

	return hex.EncodeToString(digest)
}

// Store saves a fingerprint for a file to the new database.
// Malformed fingerprints are silently not cached.
func (c *Cache) Store(path string, size int64, mtime time.Time, fingerprint string) error {
	digest, err := hex.DecodeString(fingerprint)
	if err != nil || len(digest) != digestSize {
		return nil
	}
	return c.store(makeKey(path, size, mtime), digest)
}

func (c *Cache) store(key, digest []byte) error {
	if c == nil || !c.enabled || c.writeDB == nil || len(digest) != digestSize {
		return nil
	}

	err := c.writeDB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		return b.Put(key, digest)
	})
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}
