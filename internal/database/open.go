package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"ms-events/internal/database/migrations"
	"ms-events/internal/logger"
	"ms-events/internal/metrics"
	"ms-events/internal/store"
	"ms-events/internal/store/bunstore"
	"ms-events/internal/store/mongostore"
)

type OpenOptions struct {
	MongoDatabase string
	// AutoMigrate applies SQL migrations on postgres and creates tables on sqlite/mysql.
	AutoMigrate bool
	Logger      *logger.Logger
}

// Backend reports which store a connection string selects.
func Backend(uri string) (string, error) {
	scheme, _, ok := strings.Cut(uri, ":")
	if !ok {
		return "", fmt.Errorf("%w: %q", store.ErrUnsupportedScheme, uri)
	}
	switch strings.ToLower(scheme) {
	case "mongodb", "mongodb+srv":
		return mongostore.Backend, nil
	case "postgres", "postgresql":
		return bunstore.BackendPostgres, nil
	case "mysql":
		return bunstore.BackendMySQL, nil
	case "sqlite", "file":
		return bunstore.BackendSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", store.ErrUnsupportedScheme, scheme)
	}
}

// Open dials the store selected by the scheme of uri.
func Open(ctx context.Context, uri string, opts OpenOptions) (*store.Handle, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	backend, err := Backend(uri)
	if err != nil {
		return nil, err
	}

	if backend == mongostore.Backend {
		return mongostore.Open(ctx, uri, opts.MongoDatabase)
	}

	var db *bun.DB
	switch backend {
	case bunstore.BackendPostgres:
		db, err = bunstore.OpenPostgres(ctx, uri)
	case bunstore.BackendMySQL:
		db, err = bunstore.OpenMySQL(ctx, uri)
	default:
		db, err = bunstore.OpenSQLite(ctx, uri)
	}
	if err != nil {
		return nil, err
	}

	if opts.AutoMigrate {
		if err := prepareSchema(ctx, backend, db, log); err != nil {
			db.Close()
			return nil, err
		}
	}
	return bunstore.NewHandle(backend, db), nil
}

func prepareSchema(ctx context.Context, backend string, db *bun.DB, log *logger.Logger) error {
	if backend != bunstore.BackendPostgres {
		return bunstore.EnsureSchema(ctx, db)
	}

	runner, err := migrations.NewRunner(ctx, db.DB, log)
	if err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	defer runner.Close()

	if err := runner.MigrateUp(); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	return nil
}

// NewStoreManager builds the manager for uri. An empty uri is rejected immediately.
func NewStoreManager(uri string, openOpts OpenOptions, dialTimeout time.Duration, m *metrics.Metrics) (*Manager[*store.Handle], error) {
	if strings.TrimSpace(uri) == "" {
		return nil, ErrMissingConnectionString
	}
	if _, err := Backend(uri); err != nil {
		return nil, err
	}

	dial := func(ctx context.Context) (*store.Handle, error) {
		return Open(ctx, uri, openOpts)
	}
	closeFn := func(ctx context.Context, h *store.Handle) error {
		return h.Close(ctx)
	}
	return NewManager(dial, closeFn,
		WithDialTimeout(dialTimeout),
		WithLogger(openOpts.Logger),
		WithMetrics(m),
	), nil
}
