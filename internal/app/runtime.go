package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"warehouse-backend/internal/audit"
	"warehouse-backend/internal/config"
	"warehouse-backend/internal/core"
	"warehouse-backend/internal/db"
	"warehouse-backend/internal/store/sqlstore"
)

// Options tunes the services Wire builds.
type Options struct {
	TxTimeout     time.Duration
	DefaultStatus string
	StatusPolicy  core.StatusPolicy
	AuditBuffer   int
}

// Runtime owns the store, the audit dispatcher, and the service built on
// them. Run must be running for audit events to leave the queue.
type Runtime struct {
	Store   *sqlstore.Store
	Audit   *audit.Dispatcher
	Service ApplicationService
	log     zerolog.Logger
}

// Wire builds the services over an open store and an audit publisher.
func Wire(store *sqlstore.Store, pub audit.Publisher, opts Options, log zerolog.Logger) *Runtime {
	dispatcher := audit.NewDispatcher(pub, opts.AuditBuffer, log)
	tx := core.NewTxManager(store, opts.TxTimeout, log)
	catalog := core.NewCatalogService(tx, dispatcher, log)
	orders := core.NewOrderService(tx, dispatcher, core.OrderServiceConfig{
		DefaultStatus: opts.DefaultStatus,
		Policy:        opts.StatusPolicy,
	}, log)
	return &Runtime{
		Store:   store,
		Audit:   dispatcher,
		Service: NewAppService(store, dispatcher, catalog, orders),
		log:     log,
	}
}

// Build opens the configured database and audit publisher and wires the
// services. SQLite databases are migrated on open; PostgreSQL is migrated
// by cmd/verify-db.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Runtime, error) {
	store, err := db.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if cfg.DBDriver == config.DriverSQLite {
		if _, err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	var pub audit.Publisher
	if cfg.RabbitURL != "" {
		rp, err := audit.NewRabbitPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("audit: %w", err)
		}
		pub = rp
		log.Info().Str("exchange", cfg.RabbitExchange).Msg("audit events go to rabbitmq")
	} else {
		pub = audit.NewLogPublisher(log.With().Str("component", "audit").Logger())
		log.Info().Msg("RABBIT_URL not set, audit events go to the log")
	}

	return Wire(store, pub, Options{
		TxTimeout:     cfg.TxTimeout,
		DefaultStatus: cfg.DefaultStatus,
		StatusPolicy:  cfg.StatusPolicy,
		AuditBuffer:   cfg.AuditBuffer,
	}, log), nil
}

// Run delivers audit events until ctx is done.
func (r *Runtime) Run(ctx context.Context) error {
	return r.Audit.Run(ctx)
}

// Close releases the publisher and the store. Call it after Run returns.
func (r *Runtime) Close() {
	if err := r.Audit.Close(); err != nil {
		r.log.Warn().Err(err).Msg("audit publisher close failed")
	}
	r.Store.Close()
}
