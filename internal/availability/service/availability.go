package service

import (
	"context"
	availabilityerrors "crewcall/internal/availability/errors"
	"crewcall/internal/availability/repository"
	"crewcall/internal/availability/validator"
	"crewcall/pkg/config"
	"crewcall/pkg/engine"
	apperrors "crewcall/pkg/errors"
	"crewcall/pkg/model"
	"crewcall/pkg/publisher"
	"crewcall/pkg/sanitizer"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// RosterSource resolves which subject ids are known crew members.
type RosterSource interface {
	FindExistingIDs(ctx context.Context, ids []string) ([]string, error)
	ListActiveIDs(ctx context.Context) ([]string, error)
}

type AvailabilityService interface {
	Create(ctx context.Context, record *model.AvailabilityRecord) error
	BulkUpsert(ctx context.Context, bulk *model.AvailabilityBulkUpsert) (*model.AvailabilityBulkResult, error)
	GetByID(ctx context.Context, id string) (*model.AvailabilityRecord, error)
	List(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.AvailabilityRecord, int64, error)
	Update(ctx context.Context, id string, updates *model.AvailabilityUpdate) error
	Delete(ctx context.Context, id string) error
	CheckAvailability(ctx context.Context, subjectID, start, end string) (*model.AvailabilityResult, error)
	AvailableSubjects(ctx context.Context, start, end string, roster []string, excludeStatuses []model.AvailabilityStatus) ([]string, error)
}

type availabilityService struct {
	repo      repository.AvailabilityRepository
	roster    RosterSource
	validator *validator.AvailabilityValidator
	publisher publisher.Publisher
	cfg       *config.Config
}

func NewAvailabilityService(
	repo repository.AvailabilityRepository,
	roster RosterSource,
	validator *validator.AvailabilityValidator,
	pub publisher.Publisher,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		repo:      repo,
		roster:    roster,
		validator: validator,
		publisher: pub,
		cfg:       cfg,
	}
}

func (s *availabilityService) Create(ctx context.Context, record *model.AvailabilityRecord) error {
	record.ID = ""
	record.SubjectID = sanitizer.SanitizeText(record.SubjectID)
	record.Notes = sanitizer.SanitizeText(record.Notes)

	if err := s.validator.Validate(record); err != nil {
		s.cfg.Log.Warn("Availability record validation failed", "subject_id", record.SubjectID, "error", err)
		return apperrors.Validation("Invalid availability input", map[string]any{"error": err.Error()})
	}
	if err := s.requireKnownSubjects(ctx, []string{record.SubjectID}); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, record); err != nil {
		if errors.Is(err, availabilityerrors.ErrDuplicate) {
			return apperrors.Conflict("Availability already recorded for this subject and date").WithDetails(map[string]any{
				"subject_id": record.SubjectID,
				"date":       record.Date,
			})
		}
		s.cfg.Log.Error("Failed to create availability record", "subject_id", record.SubjectID, "date", record.Date, "error", err)
		return apperrors.Internal("Failed to create availability record", err)
	}

	s.cfg.Log.Info("Availability record created",
		"id", record.ID,
		"subject_id", record.SubjectID,
		"date", record.Date,
		"status", record.Status,
	)
	s.publish(ctx, publisher.AvailabilityUpserted, record.SubjectID, []string{record.Date}, record.Status)
	return nil
}

func (s *availabilityService) BulkUpsert(ctx context.Context, bulk *model.AvailabilityBulkUpsert) (*model.AvailabilityBulkResult, error) {
	bulk.SubjectID = sanitizer.SanitizeText(bulk.SubjectID)
	bulk.Notes = sanitizer.SanitizeText(bulk.Notes)
	bulk.Dates = sanitizer.SanitizeIDs(bulk.Dates)
	sort.Strings(bulk.Dates)

	if err := s.validator.ValidateBulk(bulk); err != nil {
		s.cfg.Log.Warn("Availability bulk upsert validation failed", "subject_id", bulk.SubjectID, "error", err)
		return nil, apperrors.Validation("Invalid availability input", map[string]any{"error": err.Error()})
	}
	if err := s.requireKnownSubjects(ctx, []string{bulk.SubjectID}); err != nil {
		return nil, err
	}

	result, err := s.repo.UpsertMany(ctx, bulk.SubjectID, bulk.Dates, bulk.Status, bulk.Notes)
	if err != nil {
		s.cfg.Log.Error("Failed to upsert availability", "subject_id", bulk.SubjectID, "days", len(bulk.Dates), "error", err)
		return nil, apperrors.Internal("Failed to upsert availability", err)
	}

	s.cfg.Log.Info("Availability upserted",
		"subject_id", bulk.SubjectID,
		"days", len(bulk.Dates),
		"status", bulk.Status,
		"upserted", result.Upserted,
		"updated", result.Updated,
	)
	s.publish(ctx, publisher.AvailabilityUpserted, bulk.SubjectID, bulk.Dates, bulk.Status)
	return result, nil
}

func (s *availabilityService) GetByID(ctx context.Context, id string) (*model.AvailabilityRecord, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Availability record ID cannot be empty")
	}

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve availability record")
	}
	return record, nil
}

func (s *availabilityService) List(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.AvailabilityRecord, int64, error) {
	filter.SubjectID = sanitizer.SanitizeText(filter.SubjectID)
	if err := validateListFilter(filter); err != nil {
		return nil, 0, err
	}

	var count int64
	var records []*model.AvailabilityRecord
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count availability records", "error", errCount)
			errCount = apperrors.Internal("Failed to count availability records", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		records, errFind = s.repo.Find(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list availability records", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve availability records", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return records, count, nil
}

func validateListFilter(filter repository.Filter) error {
	for name, value := range map[string]string{"from": filter.From, "to": filter.To} {
		if value == "" {
			continue
		}
		if _, err := engine.ParseDay(value); err != nil {
			return apperrors.InvalidInput(fmt.Sprintf("invalid %s parameter, must be YYYY-MM-DD", name))
		}
	}
	if filter.From != "" && filter.To != "" {
		if _, err := engine.ParseDayRange(filter.From, filter.To); err != nil {
			return apperrors.FromEngine(err)
		}
	}
	return nil
}

func (s *availabilityService) Update(ctx context.Context, id string, updates *model.AvailabilityUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Availability record ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapRepoError(err, id, "Failed to check availability record existence")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Availability update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := *existing
	if updates.Status != "" {
		merged.Status = updates.Status
	}
	if updates.Notes != nil {
		merged.Notes = sanitizer.SanitizeText(*updates.Notes)
	}

	if err := s.repo.Update(ctx, id, &merged); err != nil {
		s.cfg.Log.Error("Failed to update availability record", "id", id, "error", err)
		return s.mapRepoError(err, id, "Failed to update availability record")
	}

	s.cfg.Log.Info("Availability record updated", "id", id, "status", merged.Status)
	s.publish(ctx, publisher.AvailabilityUpserted, merged.SubjectID, []string{merged.Date}, merged.Status)
	return nil
}

func (s *availabilityService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Availability record ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapRepoError(err, id, "Failed to check availability record existence")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.cfg.Log.Error("Failed to delete availability record", "id", id, "error", err)
		return s.mapRepoError(err, id, "Failed to delete availability record")
	}

	s.cfg.Log.Info("Availability record deleted", "id", id)
	s.publish(ctx, publisher.AvailabilityDeleted, existing.SubjectID, []string{existing.Date}, "")
	return nil
}

func (s *availabilityService) CheckAvailability(ctx context.Context, subjectID, start, end string) (*model.AvailabilityResult, error) {
	subjectID = sanitizer.SanitizeText(subjectID)
	if subjectID == "" {
		return nil, apperrors.InvalidInput("subject_id cannot be empty")
	}

	dayRange, err := s.parseRange(start, end)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.FindBySubject(ctx, dayRange, subjectID)
	if err != nil {
		s.cfg.Log.Error("Failed to load availability", "subject_id", subjectID, "error", err)
		return nil, apperrors.Internal("Failed to load availability", err)
	}

	result, err := engine.CheckAvailability(subjectID, start, end, records)
	if err != nil {
		return nil, apperrors.FromEngine(err)
	}

	s.cfg.Log.Debug("Availability checked",
		"subject_id", subjectID,
		"start", start,
		"end", end,
		"status", result.Status,
		"conflicts", len(result.Conflicts),
	)
	return result, nil
}

func (s *availabilityService) AvailableSubjects(ctx context.Context, start, end string, roster []string, excludeStatuses []model.AvailabilityStatus) ([]string, error) {
	dayRange, err := s.parseRange(start, end)
	if err != nil {
		return nil, err
	}

	for _, status := range excludeStatuses {
		if !status.IsStored() {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid exclude status: %s", status))
		}
	}

	roster = sanitizer.SanitizeIDs(roster)
	if len(roster) > 0 {
		if err := s.requireKnownSubjects(ctx, roster); err != nil {
			return nil, err
		}
	} else {
		roster, err = s.defaultRoster(ctx)
		if err != nil {
			return nil, err
		}
		if len(roster) == 0 {
			return []string{}, nil
		}
	}

	records, err := s.repo.FindBySubject(ctx, dayRange, roster...)
	if err != nil {
		s.cfg.Log.Error("Failed to load availability", "start", start, "end", end, "error", err)
		return nil, apperrors.Internal("Failed to load availability", err)
	}

	available, err := engine.AvailableSubjects(start, end, records, roster, excludeStatuses...)
	if err != nil {
		return nil, apperrors.FromEngine(err)
	}
	return available, nil
}

func (s *availabilityService) parseRange(start, end string) (engine.DayRange, error) {
	dayRange, err := engine.ParseDayRange(start, end)
	if err != nil {
		return engine.DayRange{}, apperrors.FromEngine(err)
	}
	if dayRange.Days() > s.cfg.MaxAvailabilityRangeDays {
		return engine.DayRange{}, apperrors.InvalidInput(fmt.Sprintf(
			"range of %d days exceeds the maximum of %d", dayRange.Days(), s.cfg.MaxAvailabilityRangeDays,
		))
	}
	return dayRange, nil
}

// defaultRoster is the active crew, or every subject that has ever had a
// record when no crew is registered.
func (s *availabilityService) defaultRoster(ctx context.Context) ([]string, error) {
	roster, err := s.roster.ListActiveIDs(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list crew roster", "error", err)
		return nil, apperrors.Internal("Failed to resolve roster", err)
	}
	if len(roster) > 0 {
		return roster, nil
	}

	subjects, err := s.repo.DistinctSubjects(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list availability subjects", "error", err)
		return nil, apperrors.Internal("Failed to resolve roster", err)
	}
	return subjects, nil
}

func (s *availabilityService) requireKnownSubjects(ctx context.Context, ids []string) error {
	known, err := s.roster.FindExistingIDs(ctx, ids)
	if err != nil {
		s.cfg.Log.Error("Failed to resolve roster", "error", err)
		return apperrors.Internal("Failed to resolve roster", err)
	}
	if err := engine.ValidateRoster(ids, known); err != nil {
		s.cfg.Log.Warn("Unknown subjects requested", "error", err)
		return apperrors.FromEngine(err)
	}
	return nil
}

func (s *availabilityService) publish(ctx context.Context, eventType, subjectID string, dates []string, status model.AvailabilityStatus) {
	publisher.PublishOrLog(ctx, s.publisher, s.cfg.Log, eventType, subjectID, model.AvailabilityChange{
		SubjectID: subjectID,
		Dates:     dates,
		Status:    status,
	})
}

func (s *availabilityService) mapRepoError(err error, id, message string) error {
	switch {
	case errors.Is(err, availabilityerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Availability record", id)
	case errors.Is(err, availabilityerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid availability record ID format")
	default:
		return apperrors.Internal(message, err)
	}
}
