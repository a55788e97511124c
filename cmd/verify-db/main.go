// verify-db connects to the configured database and applies any pending
// migrations. Run it before starting the server against PostgreSQL.
//
// Usage: go run ./cmd/verify-db
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"warehouse-backend/internal/config"
	"warehouse-backend/internal/db"
	"warehouse-backend/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	connCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	store, err := db.Open(connCtx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("[CONNECT] failed")
	}
	defer store.Close()
	log.Info().Str("database", store.Dialect()).Msg("[CONNECT] success")

	applied, err := store.Migrate(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("[MIGRATE] failed")
	}
	for _, name := range applied {
		log.Info().Str("file", name).Msg("[APPLY]")
	}
	log.Info().Int("applied", len(applied)).Msg("[DONE] All migrations processed.")
}
