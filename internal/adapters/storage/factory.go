package storage

import (
	"fmt"

	"github.com/jsamuelsen/quotify/internal/adapters/storage/file"
	"github.com/jsamuelsen/quotify/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quotify/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/quotify/internal/platform/config"
	"github.com/jsamuelsen/quotify/internal/ports"
)

// Backend is a PersistentCache that can report its health and be closed.
type Backend interface {
	ports.PersistentCache
	ports.HealthChecker
	Close() error
}

// Open returns the backend selected by cfg.
func Open(cfg config.CacheConfig) (Backend, error) {
	switch cfg.Backend {
	case config.CacheBackendMemory:
		return memory.New(), nil
	case config.CacheBackendFile:
		c, err := file.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.CacheBackendSQLite:
		s, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
