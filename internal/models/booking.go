package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Booking struct {
	bun.BaseModel `bun:"table:bookings,alias:b"`

	ID        string    `bun:"id,pk,type:varchar(36)" json:"id"`
	EventID   string    `bun:"event_id,type:varchar(36),notnull" json:"eventId"`
	Email     string    `bun:"email,notnull" json:"email"`
	CreatedAt time.Time `bun:"created_at,type:datetime(6),notnull" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,type:datetime(6),notnull" json:"updatedAt"`
}

type BookingInput struct {
	EventID string `json:"eventId" validate:"required"`
	Email   string `json:"email" validate:"required"`
}
