package service

import (
	"context"
	eventserrors "crewcall/internal/events/errors"
	"crewcall/internal/events/repository"
	"crewcall/internal/events/validator"
	"crewcall/pkg/config"
	"crewcall/pkg/engine"
	apperrors "crewcall/pkg/errors"
	"crewcall/pkg/model"
	"crewcall/pkg/publisher"
	"crewcall/pkg/sanitizer"
	"errors"
	"fmt"
	"sync"
	"time"
)

type EventService interface {
	// Create stores event. Attendee conflicts reject the write with CONFLICT
	// unless force is set.
	Create(ctx context.Context, event *model.Event, force bool) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Event, int64, error)
	Update(ctx context.Context, id string, updates *model.EventUpdate, force bool) error
	Delete(ctx context.Context, id string) error
	Conflicts(ctx context.Context, start, end time.Time, attendees []string, excludeEventID string) ([]*model.Event, error)
}

type eventService struct {
	repo      repository.EventRepository
	validator *validator.EventValidator
	publisher publisher.Publisher
	cfg       *config.Config
}

func NewEventService(
	repo repository.EventRepository,
	validator *validator.EventValidator,
	pub publisher.Publisher,
	cfg *config.Config,
) EventService {
	return &eventService{
		repo:      repo,
		validator: validator,
		publisher: pub,
		cfg:       cfg,
	}
}

func (s *eventService) Create(ctx context.Context, event *model.Event, force bool) error {
	event.ID = ""
	if event.Attendees == nil {
		event.Attendees = []string{}
	}
	s.sanitize(event)
	if err := s.validate(event); err != nil {
		return err
	}

	if err := s.checkConflicts(ctx, event, "", force); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to create event", "title", event.Title, "error", err)
		return apperrors.Internal("Failed to create event", err)
	}

	s.cfg.Log.Info("Event created successfully",
		"id", event.ID,
		"start_time", event.StartTime,
		"end_time", event.EndTime,
		"attendees", len(event.Attendees),
	)
	publisher.PublishOrLog(ctx, s.publisher, s.cfg.Log, publisher.EventCreated, event.ID, event)
	return nil
}

func (s *eventService) GetByID(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Event ID cannot be empty")
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id, "Failed to retrieve event")
	}
	return event, nil
}

func (s *eventService) List(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Event, int64, error) {
	filter.ProjectID = sanitizer.SanitizeText(filter.ProjectID)
	filter.Attendee = sanitizer.SanitizeText(filter.Attendee)
	if filter.From != nil && filter.To != nil {
		if _, err := engine.NewInterval(*filter.From, *filter.To); err != nil {
			return nil, 0, apperrors.FromEngine(err)
		}
	}

	var count int64
	var events []*model.Event
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count events", "error", errCount)
			errCount = apperrors.Internal("Failed to count events", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		events, errFind = s.repo.Find(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list events", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve events", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return events, count, nil
}

func (s *eventService) Update(ctx context.Context, id string, updates *model.EventUpdate, force bool) error {
	if id == "" {
		return apperrors.InvalidInput("Event ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapRepoError(err, id, "Failed to check event existence")
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Event update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := mergeEventUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return err
	}

	if err := s.checkConflicts(ctx, merged, id, force); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		s.cfg.Log.Error("Failed to update event", "id", id, "error", err)
		return mapRepoError(err, id, "Failed to update event")
	}

	s.cfg.Log.Info("Event updated successfully", "id", id)
	publisher.PublishOrLog(ctx, s.publisher, s.cfg.Log, publisher.EventUpdated, id, merged)
	return nil
}

func (s *eventService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Event ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapRepoError(err, id, "Failed to check event existence")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.cfg.Log.Error("Failed to delete event", "id", id, "error", err)
		return mapRepoError(err, id, "Failed to delete event")
	}

	s.cfg.Log.Info("Event deleted successfully", "id", id)
	publisher.PublishOrLog(ctx, s.publisher, s.cfg.Log, publisher.EventDeleted, id, existing)
	return nil
}

func (s *eventService) Conflicts(ctx context.Context, start, end time.Time, attendees []string, excludeEventID string) ([]*model.Event, error) {
	window, err := engine.NewInterval(start, end)
	if err != nil {
		return nil, apperrors.FromEngine(err)
	}
	attendees = sanitizer.SanitizeIDs(attendees)
	if len(attendees) == 0 {
		return []*model.Event{}, nil
	}

	return s.findConflicts(ctx, window, attendees, excludeEventID)
}

func (s *eventService) findConflicts(ctx context.Context, window engine.Interval, attendees []string, excludeEventID string) ([]*model.Event, error) {
	limit := int64(s.cfg.MaxConflictScan)
	candidates, err := s.repo.FindOverlapping(ctx, attendees, window, limit+1)
	if err != nil {
		s.cfg.Log.Error("Failed to load overlapping events", "error", err)
		return nil, apperrors.Internal("Failed to check existing events", err)
	}
	if int64(len(candidates)) > limit {
		return nil, apperrors.InvalidInput(fmt.Sprintf(
			"more than %d overlapping events; narrow the time range", limit,
		))
	}

	conflicts, err := engine.FindEventConflicts(window.Start, window.End, attendees, candidates, excludeEventID)
	if err != nil {
		return nil, apperrors.FromEngine(err)
	}
	return conflicts, nil
}

// checkConflicts rejects event when it double-books an attendee. With force
// the conflicts are only logged.
func (s *eventService) checkConflicts(ctx context.Context, event *model.Event, excludeEventID string, force bool) error {
	if len(event.Attendees) == 0 {
		return nil
	}
	window, err := engine.NewInterval(event.StartTime, event.EndTime)
	if err != nil {
		return apperrors.FromEngine(err)
	}

	conflicts, err := s.findConflicts(ctx, window, event.Attendees, excludeEventID)
	if err != nil {
		return err
	}
	if len(conflicts) == 0 {
		return nil
	}

	ids := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		ids = append(ids, c.ID)
	}
	if force {
		s.cfg.Log.Warn("Event saved despite attendee conflicts", "title", event.Title, "conflicting_event_ids", ids)
		return nil
	}

	s.cfg.Log.Warn("Event rejected due to attendee conflicts", "title", event.Title, "conflicting_event_ids", ids)
	return apperrors.Conflict("Event overlaps other events sharing attendees").WithDetails(map[string]any{
		"conflicting_event_ids": ids,
	})
}

func (s *eventService) sanitize(e *model.Event) {
	e.ProjectID = sanitizer.SanitizeText(e.ProjectID)
	e.Title = sanitizer.SanitizeText(e.Title)
	e.Location = sanitizer.SanitizeText(e.Location)
	e.StartTime = e.StartTime.UTC().Truncate(time.Millisecond)
	e.EndTime = e.EndTime.UTC().Truncate(time.Millisecond)
}

func (s *eventService) validate(event *model.Event) error {
	if err := s.validator.Validate(event); err != nil {
		s.cfg.Log.Warn("Event validation failed", "title", event.Title, "error", err)
		return apperrors.Validation("Event validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func mergeEventUpdates(existing *model.Event, updates *model.EventUpdate) *model.Event {
	merged := *existing

	if updates.ProjectID != nil {
		merged.ProjectID = *updates.ProjectID
	}
	if updates.Title != "" {
		merged.Title = updates.Title
	}
	if updates.Location != nil {
		merged.Location = *updates.Location
	}
	if updates.StartTime != nil {
		merged.StartTime = *updates.StartTime
	}
	if updates.EndTime != nil {
		merged.EndTime = *updates.EndTime
	}
	if updates.Attendees != nil {
		merged.Attendees = *updates.Attendees
	}

	return &merged
}

func mapRepoError(err error, id, message string) error {
	switch {
	case errors.Is(err, eventserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Event", id)
	case errors.Is(err, eventserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid event ID format")
	default:
		return apperrors.Internal(message, err)
	}
}
