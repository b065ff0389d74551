package publisher

import (
	"context"
	"fmt"
	"time"

	"crewcall/pkg/kafka"
	"crewcall/pkg/logger"
)

const (
	AvailabilityUpserted    = "availability.upserted"
	AvailabilityDeleted     = "availability.deleted"
	EquipmentBookingCreated = "equipment_booking.created"
	EquipmentBookingUpdated = "equipment_booking.updated"
	EquipmentBookingDeleted = "equipment_booking.deleted"
	EventCreated            = "event.created"
	EventUpdated            = "event.updated"
	EventDeleted            = "event.deleted"

	SchemaVersion = "1"
)

type correlationKey struct{}

// WithCorrelationID attaches a correlation id that Publish copies onto the
// outgoing message headers.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// Publisher emits domain change events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}

// MessageWriter is the subset of *kafka.Producer used by KafkaPublisher.
type MessageWriter interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	writer  MessageWriter
	source  string
	timeout time.Duration
	log     *logger.Logger
}

func NewKafkaPublisher(writer MessageWriter, source string, timeout time.Duration, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer:  writer,
		source:  source,
		timeout: timeout,
		log:     log,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	builder := kafka.NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventType(eventType).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source)
	if id := CorrelationID(ctx); id != "" {
		builder = builder.WithCorrelationID(id)
	}

	msg, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to build %s message: %w", eventType, err)
	}

	// Detached from the request so a client disconnect does not drop the event.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.writer.Publish(pubCtx, msg); err != nil {
		return fmt.Errorf("failed to publish %s for %s: %w", eventType, key, err)
	}
	return nil
}

// NopPublisher drops every event. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error {
	return nil
}

// PublishOrLog logs publish failures instead of returning them. Callers use it
// after the write has committed.
func PublishOrLog(ctx context.Context, pub Publisher, log *logger.Logger, eventType, key string, payload any) {
	if err := pub.Publish(ctx, eventType, key, payload); err != nil {
		log.Error("failed to publish domain event",
			"event_type", eventType,
			"key", key,
			"error", err,
		)
	}
}
