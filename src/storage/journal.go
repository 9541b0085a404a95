package storage

import (
	"fmt"

	"sales-dashboard/src/config"
	"sales-dashboard/src/interfaces"
	"sales-dashboard/src/logger"
)

// NewJournal returns the journal selected by storage.db_type, or nil for "none".
func NewJournal(cfg *config.Config, log *logger.Logger) (interfaces.IDatabase, error) {
	switch cfg.Storage.DBType {
	case "", "none":
		return nil, nil
	case "sqlite":
		return NewSQLiteJournal(cfg, log), nil
	case "postgres":
		return NewPostgresJournal(cfg, log), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Storage.DBType)
	}
}
