// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/heliosite/engine/internal/config"
	"github.com/heliosite/engine/internal/database"
	"github.com/heliosite/engine/internal/storage/gormdb"
	"github.com/heliosite/engine/internal/storage/memory"
)

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Backend {
	case "postgres":
		m := database.NewManager(log)
		if err := m.Connect(); err != nil {
			return nil, fmt.Errorf("connecting postgres backend: %w", err)
		}
		return gormdb.New(m.DB, log), nil
	case "sqlite":
		m := database.NewManager(log)
		db, err := m.GetSqliteDB(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite backend: %w", err)
		}
		return gormdb.New(db, log), nil
	case "memory":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
