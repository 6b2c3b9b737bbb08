package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"ms-events/internal/logger"
	"ms-events/internal/models"
)

const (
	TypeEventCreated   = "event.created"
	TypeBookingCreated = "booking.created"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Envelope is the JSON value of every published message.
type Envelope struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Data       interface{} `json:"data"`
}

type Producer struct {
	Writer        messageWriter
	EventsTopic   string
	BookingsTopic string
	Logger        *logger.Logger
}

// NewProducer writes asynchronously: publishing never waits on the brokers,
// and delivery failures are logged when the batch completes.
func NewProducer(brokers []string, eventsTopic, bookingsTopic string, log *logger.Logger) *Producer {
	if log == nil {
		log = logger.NewNop()
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
		Async:                  true,
		Completion:             completion(log),
	}
	return &Producer{
		Writer:        writer,
		EventsTopic:   eventsTopic,
		BookingsTopic: bookingsTopic,
		Logger:        log,
	}
}

func completion(log *logger.Logger) func([]kafka.Message, error) {
	return func(messages []kafka.Message, err error) {
		for _, m := range messages {
			if err != nil {
				log.Error("KAFKA", fmt.Sprintf("Failed to deliver to %s (key %s): %v", m.Topic, m.Key, err))
				continue
			}
			log.LogKafka("delivered", m.Topic, string(m.Key))
		}
	}
}

// PublishEventCreated is keyed by event id.
func (p *Producer) PublishEventCreated(ctx context.Context, event models.Event) error {
	return p.publish(ctx, p.EventsTopic, TypeEventCreated, event.ID, event)
}

// PublishBookingCreated is keyed by event id so bookings of one event stay ordered.
func (p *Producer) PublishBookingCreated(ctx context.Context, booking models.Booking) error {
	return p.publish(ctx, p.BookingsTopic, TypeBookingCreated, booking.EventID, booking)
}

func (p *Producer) publish(ctx context.Context, topic, msgType, key string, data interface{}) error {
	msgBytes, err := json.Marshal(Envelope{Type: msgType, OccurredAt: time.Now().UTC(), Data: data})
	if err != nil {
		return fmt.Errorf("encode %s: %w", msgType, err)
	}

	err = p.Writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: msgBytes,
	})
	if err != nil {
		return fmt.Errorf("publish %s to %s: %w", msgType, topic, err)
	}

	p.Logger.LogKafka("queued", topic, fmt.Sprintf("%s %s", msgType, key))
	return nil
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
