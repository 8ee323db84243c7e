// Package file is a PersistentCache backed by a single JSON document on disk.
// Writes replace the document atomically, so a crash never leaves a torn file.
package file

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jsamuelsen/quotify/internal/domain"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// document is the on-disk layout. encoding/json stores each value as base64,
// so arbitrary bytes survive the round trip.
type document struct {
	Entries map[string][]byte `json:"entries"`
}

// Cache stores all keys in one file.
type Cache struct {
	mu   sync.Mutex
	path string
}

// New returns a cache that reads and writes path. The parent directory is
// created on the first write.
func New(path string) (*Cache, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("cache path is required")
	}

	return &Cache{path: filepath.Clean(path)}, nil
}

// Path returns the document location.
func (c *Cache) Path() string {
	return c.path
}

// Get reads key from the document. A missing file is a miss; an unreadable
// or corrupt file is a storage error.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError("get", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.read()
	if err != nil {
		return nil, domain.NewStorageError("get", key, err)
	}

	v, ok := doc.Entries[key]
	if !ok {
		return nil, domain.NewNotFoundError("cache entry", key)
	}

	return v, nil
}

// Set writes key into the document. A corrupt document is replaced.
func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStorageError("set", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.read()
	if err != nil {
		if !isCorrupt(err) {
			return domain.NewStorageError("set", key, err)
		}
		doc = document{Entries: map[string][]byte{}}
	}

	doc.Entries[key] = bytes.Clone(value)

	if err := c.write(doc); err != nil {
		return domain.NewStorageError("set", key, err)
	}

	return nil
}

// Name implements ports.HealthChecker.
func (c *Cache) Name() string { return "cache-file" }

// Check verifies the document's directory exists or can be created.
func (c *Cache) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.path), dirPerm); err != nil {
		return fmt.Errorf("cache directory: %w", err)
	}

	return nil
}

// Close is a no-op; the file is not held open between calls.
func (c *Cache) Close() error { return nil }

func (c *Cache) read() (document, error) {
	doc := document{Entries: map[string][]byte{}}

	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, err
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("decoding %s: %w", c.path, err)
	}

	if doc.Entries == nil {
		doc.Entries = map[string][]byte{}
	}

	return doc, nil
}

// isCorrupt reports whether err came from decoding a malformed document.
func isCorrupt(err error) bool {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		b64Err    base64.CorruptInputError
	)

	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.As(err, &b64Err)
}

// write replaces the document via a temp file in the same directory.
func (c *Cache) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, filePerm); err != nil {
		return err
	}

	return os.Rename(tmpName, c.path)
}
