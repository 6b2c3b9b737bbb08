package models

import (
	"time"

	"github.com/uptrace/bun"
)

// MaxSlugLength bounds generated slugs and slug lookups.
const MaxSlugLength = 200

type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID          string    `bun:"id,pk,type:varchar(36)" json:"id"`
	Title       string    `bun:"title,type:text,notnull" json:"title"`
	Slug        string    `bun:"slug,type:varchar(200),notnull,unique" json:"slug"`
	Description string    `bun:"description,type:text,notnull" json:"description"`
	Overview    string    `bun:"overview,type:text,notnull" json:"overview"`
	Image       string    `bun:"image,type:text,notnull" json:"image"`
	Venue       string    `bun:"venue,notnull" json:"venue"`
	Location    string    `bun:"location,notnull" json:"location"`
	Date        string    `bun:"date,notnull" json:"date"`
	Time        string    `bun:"time,notnull" json:"time"`
	Mode        string    `bun:"mode,notnull" json:"mode"`
	Audience    string    `bun:"audience,notnull" json:"audience"`
	Agenda      []string  `bun:"agenda,type:json,notnull" json:"agenda"`
	Organizer   string    `bun:"organizer,notnull" json:"organizer"`
	Tags        []string  `bun:"tags,type:json,notnull" json:"tags"`
	CreatedAt   time.Time `bun:"created_at,type:datetime(6),notnull" json:"createdAt"`
	UpdatedAt   time.Time `bun:"updated_at,type:datetime(6),notnull" json:"updatedAt"`
}

// EventInput is the caller-supplied shape of an event before normalization.
type EventInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Overview    string   `json:"overview" validate:"required"`
	Image       string   `json:"image" validate:"required"`
	Venue       string   `json:"venue" validate:"required"`
	Location    string   `json:"location" validate:"required"`
	Date        string   `json:"date" validate:"required"`
	Time        string   `json:"time" validate:"required"`
	Mode        string   `json:"mode" validate:"required"`
	Audience    string   `json:"audience" validate:"required"`
	Agenda      []string `json:"agenda" validate:"required"`
	Organizer   string   `json:"organizer" validate:"required"`
	Tags        []string `json:"tags" validate:"required"`
}
