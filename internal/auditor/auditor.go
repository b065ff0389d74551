package auditor

import (
	"context"
	equipmenterrors "crewcall/internal/equipment/errors"
	equipmentrepo "crewcall/internal/equipment/repository"
	eventserrors "crewcall/internal/events/errors"
	eventsrepo "crewcall/internal/events/repository"
	"crewcall/pkg/config"
	"crewcall/pkg/engine"
	"crewcall/pkg/kafka"
	"crewcall/pkg/logger"
	"crewcall/pkg/model"
	"crewcall/pkg/publisher"
	"errors"
	"fmt"
)

// Auditor re-checks stored events and equipment bookings for overlaps that
// slipped past write-time checks, e.g. events saved with force or bookings
// written concurrently by two services.
type Auditor struct {
	events   eventsrepo.EventRepository
	bookings equipmentrepo.EquipmentBookingRepository
	cfg      *config.Config
	log      *logger.Logger
}

func NewAuditor(events eventsrepo.EventRepository, bookings equipmentrepo.EquipmentBookingRepository, cfg *config.Config) *Auditor {
	return &Auditor{
		events:   events,
		bookings: bookings,
		cfg:      cfg,
		log:      cfg.Log.Component("conflict-auditor"),
	}
}

type changeRef struct {
	ID string `json:"id"`
}

// HandleMessage is the kafka.MessageHandler for the scheduling topic.
// Deletions and availability changes cannot introduce conflicts and are skipped.
func (a *Auditor) HandleMessage(ctx context.Context, msg kafka.Message) error {
	eventType := msg.GetEventType()
	switch eventType {
	case publisher.EventCreated, publisher.EventUpdated:
		ref, err := decodeRef(msg)
		if err != nil {
			return err
		}
		event, err := a.events.FindByID(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, eventserrors.ErrNotFound) || errors.Is(err, eventserrors.ErrInvalidID) {
				a.log.Debug("Event no longer exists, skipping audit", "event_id", ref.ID)
				return nil
			}
			return kafka.NewTransientError("load event", err)
		}
		_, err = a.AuditEvent(ctx, event)
		return classify(err)

	case publisher.EquipmentBookingCreated, publisher.EquipmentBookingUpdated:
		ref, err := decodeRef(msg)
		if err != nil {
			return err
		}
		booking, err := a.bookings.FindByID(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, equipmenterrors.ErrNotFound) || errors.Is(err, equipmenterrors.ErrInvalidID) {
				a.log.Debug("Equipment booking no longer exists, skipping audit", "booking_id", ref.ID)
				return nil
			}
			return kafka.NewTransientError("load equipment booking", err)
		}
		_, err = a.AuditBooking(ctx, booking)
		return classify(err)

	default:
		a.log.Debug("Ignoring scheduling message", "event_type", eventType, "key", msg.Key)
		return nil
	}
}

func decodeRef(msg kafka.Message) (changeRef, error) {
	var ref changeRef
	if err := msg.DecodeValue(&ref); err != nil {
		return ref, kafka.NewPermanentError(fmt.Sprintf("decode %s payload", msg.GetEventType()), err)
	}
	if ref.ID == "" {
		return ref, kafka.NewPermanentError(fmt.Sprintf("%s payload has no id", msg.GetEventType()), kafka.ErrInvalidMessage)
	}
	return ref, nil
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, engine.ErrInvalidInterval) {
		return kafka.NewPermanentError("audit stored record", err)
	}
	return kafka.NewTransientError("audit stored record", err)
}

// AuditEvent returns the stored events sharing an attendee with event during
// its time range.
func (a *Auditor) AuditEvent(ctx context.Context, event *model.Event) ([]*model.Event, error) {
	if len(event.Attendees) == 0 {
		return nil, nil
	}

	window, err := engine.NewInterval(event.StartTime, event.EndTime)
	if err != nil {
		return nil, err
	}

	candidates, err := a.events.FindOverlapping(ctx, event.Attendees, window, int64(a.cfg.MaxConflictScan)+1)
	if err != nil {
		return nil, err
	}
	if len(candidates) > a.cfg.MaxConflictScan {
		a.log.Warn("Conflict candidates exceed scan limit, audit is partial",
			"event_id", event.ID,
			"limit", a.cfg.MaxConflictScan,
		)
		candidates = candidates[:a.cfg.MaxConflictScan]
	}

	conflicts, err := engine.FindEventConflicts(window.Start, window.End, event.Attendees, candidates, event.ID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		a.log.Warn("Event conflict detected",
			"event_id", event.ID,
			"start_time", window.Start,
			"end_time", window.End,
			"conflicting_event_ids", eventIDs(conflicts),
		)
	}
	return conflicts, nil
}

// AuditBooking returns the active bookings of the same equipment overlapping
// booking. Released bookings never conflict.
func (a *Auditor) AuditBooking(ctx context.Context, booking *model.EquipmentBooking) ([]*model.EquipmentBooking, error) {
	if !booking.Status.Occupies() {
		return nil, nil
	}

	window, err := engine.NewInterval(booking.StartTime, booking.EndTime)
	if err != nil {
		return nil, err
	}

	candidates, err := a.bookings.FindByEquipment(ctx, []string{booking.EquipmentID}, window, int64(a.cfg.MaxConflictScan)+1)
	if err != nil {
		return nil, err
	}
	if len(candidates) > a.cfg.MaxConflictScan {
		a.log.Warn("Conflict candidates exceed scan limit, audit is partial",
			"booking_id", booking.ID,
			"limit", a.cfg.MaxConflictScan,
		)
		candidates = candidates[:a.cfg.MaxConflictScan]
	}

	conflicts, err := engine.FindEquipmentConflicts(booking.EquipmentID, window.Start, window.End, candidates, booking.ID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		a.log.Warn("Equipment double booking detected",
			"booking_id", booking.ID,
			"equipment_id", booking.EquipmentID,
			"start_time", window.Start,
			"end_time", window.End,
			"conflicting_booking_ids", bookingIDs(conflicts),
		)
	}
	return conflicts, nil
}

func eventIDs(events []*model.Event) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}

func bookingIDs(bookings []*model.EquipmentBooking) []string {
	ids := make([]string, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}
	return ids
}
