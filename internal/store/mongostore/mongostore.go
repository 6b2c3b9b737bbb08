// Package mongostore implements the event and booking stores on MongoDB.
//
// MongoDB is used without multi-document transactions, so the booking
// existence check and insert are two separate operations. Events are never
// deleted, which keeps that window harmless.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ms-events/internal/models"
	"ms-events/internal/store"
)

const (
	Backend = "mongodb"

	eventsCollection   = "events"
	bookingsCollection = "bookings"
)

// Open connects, pings and ensures the indexes on database dbName.
func Open(ctx context.Context, uri, dbName string) (*store.Handle, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	if err := EnsureIndexes(ctx, db); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	return store.NewHandle(Backend, Bind(db), nil, client.Disconnect), nil
}

func Bind(db *mongo.Database) store.Stores {
	return store.Stores{
		Events:   &Events{coll: db.Collection(eventsCollection)},
		Bookings: &Bookings{coll: db.Collection(bookingsCollection)},
	}
}

// EnsureIndexes creates the unique slug index and the booking eventId index.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(eventsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("slug_unique"),
	})
	if err != nil {
		return fmt.Errorf("create events slug index: %w", err)
	}

	_, err = db.Collection(bookingsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "eventId", Value: 1}},
		Options: options.Index().SetName("event_id"),
	})
	if err != nil {
		return fmt.Errorf("create bookings eventId index: %w", err)
	}
	return nil
}

type Events struct {
	coll *mongo.Collection
}

var _ store.EventStore = (*Events)(nil)

func (s *Events) Create(ctx context.Context, e *models.Event) error {
	e.CreatedAt = now()
	e.UpdatedAt = e.CreatedAt

	doc := toEventDocument(e)
	doc.ID = primitive.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert event: %w", mapError(err))
	}
	e.ID = doc.ID.Hex()
	return nil
}

func (s *Events) Update(ctx context.Context, e *models.Event) error {
	id, err := primitive.ObjectIDFromHex(e.ID)
	if err != nil {
		return fmt.Errorf("update event: %w", store.ErrNotFound)
	}
	e.UpdatedAt = now()

	doc := toEventDocument(e)
	set := bson.M{
		"title":       doc.Title,
		"slug":        doc.Slug,
		"description": doc.Description,
		"overview":    doc.Overview,
		"image":       doc.Image,
		"venue":       doc.Venue,
		"location":    doc.Location,
		"date":        doc.Date,
		"time":        doc.Time,
		"mode":        doc.Mode,
		"audience":    doc.Audience,
		"agenda":      doc.Agenda,
		"organizer":   doc.Organizer,
		"tags":        doc.Tags,
		"updatedAt":   doc.UpdatedAt,
	}
	res, err := s.coll.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update event: %w", mapError(err))
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update event: %w", store.ErrNotFound)
	}
	return nil
}

func (s *Events) GetByID(ctx context.Context, id string) (*models.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("get event by id: %w", store.ErrNotFound)
	}
	return s.findOne(ctx, bson.M{"_id": oid}, "get event by id")
}

func (s *Events) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	return s.findOne(ctx, bson.M{"slug": slug}, "get event by slug")
}

func (s *Events) findOne(ctx context.Context, filter bson.M, op string) (*models.Event, error) {
	var doc eventDocument
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	event := doc.toModel()
	return &event, nil
}

func (s *Events) Exists(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check event exists: %w", err)
	}
	return n > 0, nil
}

// List sorts by _id; ObjectIDs grow with insertion time.
func (s *Events) List(ctx context.Context) ([]models.Event, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer cur.Close(ctx)

	var docs []eventDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]models.Event, 0, len(docs))
	for _, d := range docs {
		events = append(events, d.toModel())
	}
	return events, nil
}

type Bookings struct {
	coll *mongo.Collection
}

var _ store.BookingStore = (*Bookings)(nil)

func (s *Bookings) Create(ctx context.Context, b *models.Booking) error {
	eventID, err := primitive.ObjectIDFromHex(b.EventID)
	if err != nil {
		return fmt.Errorf("insert booking: %w", store.ErrEventNotFound)
	}
	b.CreatedAt = now()
	b.UpdatedAt = b.CreatedAt

	doc := bookingDocument{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		Email:     b.Email,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	b.ID = doc.ID.Hex()
	return nil
}

func (s *Bookings) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", store.ErrNotFound)
	}
	var doc bookingDocument
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, fmt.Errorf("get booking: %w", mapError(err))
	}
	booking := doc.toModel()
	return &booking, nil
}

func (s *Bookings) CountByEvent(ctx context.Context, eventID string) (int, error) {
	oid, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return 0, nil
	}
	n, err := s.coll.CountDocuments(ctx, bson.M{"eventId": oid})
	if err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return int(n), nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrSlugConflict
	default:
		return err
	}
}

// BSON dates keep millisecond precision.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
