// Package backend opens the store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log"
	"time"

	"langbot-backend/internal/config"
	"langbot-backend/internal/store"
	"langbot-backend/internal/store/postgres"
	"langbot-backend/internal/store/sqlite"
)

const connectTimeout = 10 * time.Second

// Open connects to PostgreSQL when DatabaseURL is set and to the SQLite file
// at DatabasePath otherwise. Both backends migrate their schema on open.
func Open(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.DatabaseURL != "" {
		dbCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		pg, err := postgres.Connect(dbCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		log.Println("[Store] Postgres connection pool established and migrated.")
		return pg, nil
	}

	s, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite %s: %w", cfg.DatabasePath, err)
	}
	log.Printf("[Store] SQLite database ready at %s", cfg.DatabasePath)
	return s, nil
}
