package bunstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"ms-events/internal/models"
)

const bookingsEventIDIndex = "bookings_event_id_idx"

// EnsureSchema creates the events and bookings tables and the booking index when missing.
// Postgres deployments use the SQL migrations instead.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*models.Event)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create events table: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*models.Booking)(nil)).
		IfNotExists().
		ForeignKey("(?) REFERENCES ? (?)", bun.Ident("event_id"), bun.Ident("events"), bun.Ident("id")).
		Exec(ctx); err != nil {
		return fmt.Errorf("create bookings table: %w", err)
	}

	q := db.NewCreateIndex().
		Model((*models.Booking)(nil)).
		Index(bookingsEventIDIndex).
		Column("event_id")
	// MySQL has no IF NOT EXISTS for indexes; a duplicate name is reported instead.
	if db.Dialect().Name() != dialect.MySQL {
		q = q.IfNotExists()
	}
	if _, err := q.Exec(ctx); err != nil && !isDuplicateIndex(err) {
		return fmt.Errorf("create bookings index: %w", err)
	}
	return nil
}

func isDuplicateIndex(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateKeyIdx
}

// DropSchema removes the bookings and events tables.
func DropSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewDropTable().Model((*models.Booking)(nil)).IfExists().Exec(ctx); err != nil {
		return fmt.Errorf("drop bookings table: %w", err)
	}
	if _, err := db.NewDropTable().Model((*models.Event)(nil)).IfExists().Exec(ctx); err != nil {
		return fmt.Errorf("drop events table: %w", err)
	}
	return nil
}
