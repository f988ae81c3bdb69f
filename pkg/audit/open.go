package audit

import (
	"fmt"

	"agentic/gateway/pkg/config"
)

// Open creates the store selected by cfg.
func Open(cfg config.AuditConfig) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(cfg.MaxRecords), nil
	case "sqlite":
		return NewSQLiteStore(SQLiteConfig{Path: cfg.Path, Driver: cfg.Driver})
	default:
		return nil, fmt.Errorf("unknown audit backend %q", cfg.Backend)
	}
}
