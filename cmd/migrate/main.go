package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/uptrace/bun"

	"ms-events/internal/config"
	"ms-events/internal/database"
	"ms-events/internal/database/migrations"
	"ms-events/internal/events"
	"ms-events/internal/logger"
	"ms-events/internal/store"
	"ms-events/internal/store/bunstore"
	"ms-events/internal/store/mongostore"
)

// handleConnector serves one already-open handle.
type handleConnector struct {
	handle *store.Handle
}

func (c handleConnector) Connect(context.Context) (*store.Handle, error) {
	return c.handle, nil
}

func main() {
	down := flag.Bool("down", false, "roll back the schema instead of applying it")
	seed := flag.Bool("seed", false, "insert sample events after migrating")
	flag.Parse()

	log := logger.New(logger.Options{Terminal: os.Stdout, ColorEnabled: true})

	cfg, warning, err := config.Load()
	if err != nil {
		log.Fatal("CONFIG", err.Error())
	}
	if warning != "" {
		log.Warn("CONFIG", warning)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout*3)
	defer cancel()

	if *down {
		if err := migrateDown(ctx, cfg.DatabaseConfig.URL, log); err != nil {
			log.Fatal("MIGRATE", err.Error())
		}
		log.Info("MIGRATE", "Schema rolled back")
		return
	}

	h, err := database.Open(ctx, cfg.DatabaseConfig.URL, database.OpenOptions{
		MongoDatabase: cfg.MongoDatabase,
		AutoMigrate:   true,
		Logger:        log,
	})
	if err != nil {
		log.Fatal("MIGRATE", err.Error())
	}
	defer h.Close(context.Background())
	log.Info("MIGRATE", fmt.Sprintf("Schema ready on %s", h.Backend))

	if *seed {
		svc := events.NewEventService(handleConnector{handle: h}, log)
		created, skipped := seedEvents(ctx, svc, log)
		log.Info("SEED", fmt.Sprintf("Seeded %d events, %d already present", created, skipped))
	}
}

func migrateDown(ctx context.Context, uri string, log *logger.Logger) error {
	backend, err := database.Backend(uri)
	if err != nil {
		return err
	}

	if backend == mongostore.Backend {
		return errors.New("rolling back is not supported for mongodb")
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
		return err
	}
	defer db.Close()

	if backend != bunstore.BackendPostgres {
		return bunstore.DropSchema(ctx, db)
	}

	runner, err := migrations.NewRunner(ctx, db.DB, log)
	if err != nil {
		return err
	}
	defer runner.Close()
	return runner.MigrateDown()
}
