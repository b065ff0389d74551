package service

import (
	"context"
	equipmenterrors "crewcall/internal/equipment/errors"
	"crewcall/internal/equipment/repository"
	"crewcall/internal/equipment/validator"
	"crewcall/pkg/config"
	mongodb "crewcall/pkg/db/mongo"
	"crewcall/pkg/engine"
	apperrors "crewcall/pkg/errors"
	"crewcall/pkg/model"
	"crewcall/pkg/publisher"
	"crewcall/pkg/sanitizer"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

const lockPrefix = "equipment:"

type EquipmentBookingService interface {
	Create(ctx context.Context, booking *model.EquipmentBooking) error
	GetByID(ctx context.Context, id string) (*model.EquipmentBooking, error)
	List(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.EquipmentBooking, int64, error)
	Update(ctx context.Context, id string, updates *model.EquipmentBookingUpdate) error
	Delete(ctx context.Context, id string) error
	Conflicts(ctx context.Context, equipmentID string, start, end time.Time, excludeBookingID string) ([]*model.EquipmentBooking, error)
	Available(ctx context.Context, start, end time.Time, equipmentIDs []string) ([]string, error)
}

type equipmentBookingService struct {
	repo      repository.EquipmentBookingRepository
	locks     mongodb.LockRepository
	validator *validator.EquipmentBookingValidator
	publisher publisher.Publisher
	cfg       *config.Config
}

func NewEquipmentBookingService(
	repo repository.EquipmentBookingRepository,
	locks mongodb.LockRepository,
	validator *validator.EquipmentBookingValidator,
	pub publisher.Publisher,
	cfg *config.Config,
) EquipmentBookingService {
	return &equipmentBookingService{
		repo:      repo,
		locks:     locks,
		validator: validator,
		publisher: pub,
		cfg:       cfg,
	}
}

func (s *equipmentBookingService) Create(ctx context.Context, booking *model.EquipmentBooking) error {
	booking.ID = ""
	if booking.Status == "" {
		booking.Status = model.EquipmentReserved
	}
	s.sanitize(booking)
	if err := s.validate(booking); err != nil {
		return err
	}

	err := s.withEquipmentLock(ctx, booking.EquipmentID, func() error {
		return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			if err := s.rejectConflicts(sessCtx, booking, ""); err != nil {
				return err
			}
			if err := s.repo.Create(sessCtx, booking); err != nil {
				return apperrors.Internal("Failed to create equipment booking", err)
			}
			return nil
		})
	})
	if err != nil {
		s.logWriteFailure("Failed to create equipment booking", booking.EquipmentID, err)
		return apperrors.AsAppError(err)
	}

	s.cfg.Log.Info("Equipment booking created successfully",
		"id", booking.ID,
		"equipment_id", booking.EquipmentID,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
	)
	publisher.PublishOrLog(ctx, s.publisher, s.cfg.Log, publisher.EquipmentBookingCreated, booking.EquipmentID, booking)
	return nil
}

func (s *equipmentBookingService) GetByID(ctx context.Context, id string) (*model.EquipmentBooking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Equipment booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id, "Failed to retrieve equipment booking")
	}
	return booking, nil
}

func (s *equipmentBookingService) List(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.EquipmentBooking, int64, error) {
	filter.EquipmentID = sanitizer.SanitizeText(filter.EquipmentID)
	filter.EventID = sanitizer.SanitizeText(filter.EventID)
	if filter.Status != "" && !isKnownStatus(filter.Status) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid status: %s", filter.Status))
	}
	if filter.From != nil && filter.To != nil {
		if _, err := engine.NewInterval(*filter.From, *filter.To); err != nil {
			return nil, 0, apperrors.FromEngine(err)
		}
	}

	var count int64
	var bookings []*model.EquipmentBooking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count equipment bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count equipment bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.Find(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list equipment bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve equipment bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return bookings, count, nil
}

func (s *equipmentBookingService) Update(ctx context.Context, id string, updates *model.EquipmentBookingUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Equipment booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapRepoError(err, id, "Failed to check equipment booking existence")
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Equipment booking update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := mergeBookingUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return err
	}

	write := func(ctx context.Context) error {
		if err := s.repo.Update(ctx, id, merged); err != nil {
			return mapRepoError(err, id, "Failed to update equipment booking")
		}
		return nil
	}

	// Releasing equipment never creates a conflict.
	if !merged.Status.Occupies() {
		err = write(ctx)
	} else {
		err = s.withEquipmentLock(ctx, merged.EquipmentID, func() error {
			return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
				if err := s.rejectConflicts(sessCtx, merged, id); err != nil {
					return err
				}
				return write(sessCtx)
			})
		})
	}
	if err != nil {
		s.logWriteFailure("Failed to update equipment booking", merged.EquipmentID, err)
		return apperrors.AsAppError(err)
	}

	s.cfg.Log.Info("Equipment booking updated successfully", "id", id, "status", merged.Status)
	publisher.PublishOrLog(ctx, s.publisher, s.cfg.Log, publisher.EquipmentBookingUpdated, merged.EquipmentID, merged)
	return nil
}

func (s *equipmentBookingService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Equipment booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapRepoError(err, id, "Failed to check equipment booking existence")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.cfg.Log.Error("Failed to delete equipment booking", "id", id, "error", err)
		return mapRepoError(err, id, "Failed to delete equipment booking")
	}

	s.cfg.Log.Info("Equipment booking deleted successfully", "id", id)
	publisher.PublishOrLog(ctx, s.publisher, s.cfg.Log, publisher.EquipmentBookingDeleted, existing.EquipmentID, existing)
	return nil
}

func (s *equipmentBookingService) Conflicts(ctx context.Context, equipmentID string, start, end time.Time, excludeBookingID string) ([]*model.EquipmentBooking, error) {
	equipmentID = sanitizer.SanitizeText(equipmentID)
	if equipmentID == "" {
		return nil, apperrors.InvalidInput("equipment_id cannot be empty")
	}
	window, err := engine.NewInterval(start, end)
	if err != nil {
		return nil, apperrors.FromEngine(err)
	}

	candidates, err := s.scan(ctx, []string{equipmentID}, window)
	if err != nil {
		return nil, err
	}

	conflicts, err := engine.FindEquipmentConflicts(equipmentID, window.Start, window.End, candidates, excludeBookingID)
	if err != nil {
		return nil, apperrors.FromEngine(err)
	}
	return conflicts, nil
}

func (s *equipmentBookingService) Available(ctx context.Context, start, end time.Time, equipmentIDs []string) ([]string, error) {
	equipmentIDs = sanitizer.SanitizeIDs(equipmentIDs)
	if len(equipmentIDs) == 0 {
		return nil, apperrors.InvalidInput("equipment_ids cannot be empty")
	}
	window, err := engine.NewInterval(start, end)
	if err != nil {
		return nil, apperrors.FromEngine(err)
	}

	candidates, err := s.scan(ctx, equipmentIDs, window)
	if err != nil {
		return nil, err
	}

	available, err := engine.AvailableEquipment(window.Start, window.End, equipmentIDs, candidates)
	if err != nil {
		return nil, apperrors.FromEngine(err)
	}
	return available, nil
}

// scan loads the occupying bookings overlapping window. Loading more than
// MaxConflictScan candidates is refused rather than silently truncated.
func (s *equipmentBookingService) scan(ctx context.Context, equipmentIDs []string, window engine.Interval) ([]*model.EquipmentBooking, error) {
	limit := int64(s.cfg.MaxConflictScan)
	candidates, err := s.repo.FindByEquipment(ctx, equipmentIDs, window, limit+1)
	if err != nil {
		s.cfg.Log.Error("Failed to load equipment bookings", "equipment_ids", equipmentIDs, "error", err)
		return nil, apperrors.Internal("Failed to check existing equipment bookings", err)
	}
	if int64(len(candidates)) > limit {
		return nil, apperrors.InvalidInput(fmt.Sprintf(
			"more than %d overlapping bookings; narrow the time range", limit,
		))
	}
	return candidates, nil
}

func (s *equipmentBookingService) rejectConflicts(ctx context.Context, booking *model.EquipmentBooking, excludeBookingID string) error {
	window, err := engine.NewInterval(booking.StartTime, booking.EndTime)
	if err != nil {
		return apperrors.FromEngine(err)
	}

	candidates, err := s.scan(ctx, []string{booking.EquipmentID}, window)
	if err != nil {
		return err
	}

	conflicts, err := engine.FindEquipmentConflicts(booking.EquipmentID, window.Start, window.End, candidates, excludeBookingID)
	if err != nil {
		return apperrors.FromEngine(err)
	}
	if len(conflicts) == 0 {
		return nil
	}

	ids := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		ids = append(ids, c.ID)
	}
	first := conflicts[0]
	return apperrors.Conflict(fmt.Sprintf(
		"Equipment %s is already booked (%s - %s)",
		booking.EquipmentID,
		first.StartTime.Format(time.RFC3339),
		first.EndTime.Format(time.RFC3339),
	)).WithDetails(map[string]any{
		"equipment_id":            booking.EquipmentID,
		"conflicting_booking_ids": ids,
	})
}

// withEquipmentLock runs fn while holding the advisory lock of equipmentID.
func (s *equipmentBookingService) withEquipmentLock(ctx context.Context, equipmentID string, fn func() error) error {
	lockID := lockPrefix + equipmentID
	token, err := s.locks.Acquire(ctx, lockID, s.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, mongodb.ErrLockHeld) {
			return apperrors.Conflict("This equipment is currently being booked by another request. Please try again.")
		}
		return apperrors.Internal("Failed to acquire equipment lock", err)
	}
	defer func() {
		if err := s.locks.Release(context.WithoutCancel(ctx), lockID, token); err != nil {
			s.cfg.Log.Warn("Failed to release equipment lock", "lock_id", lockID, "error", err)
		}
	}()

	return fn()
}

func (s *equipmentBookingService) logWriteFailure(msg, equipmentID string, err error) {
	appErr := apperrors.AsAppError(err)
	if appErr.Code == apperrors.CodeInternal {
		s.cfg.Log.Error(msg, "equipment_id", equipmentID, "error", err)
		return
	}
	s.cfg.Log.Warn(msg, "equipment_id", equipmentID, "code", appErr.Code, "error", appErr.Message)
}

func (s *equipmentBookingService) sanitize(b *model.EquipmentBooking) {
	b.EquipmentID = sanitizer.SanitizeText(b.EquipmentID)
	b.EventID = sanitizer.SanitizeText(b.EventID)
	b.Notes = sanitizer.SanitizeText(b.Notes)
	b.StartTime = b.StartTime.UTC().Truncate(time.Millisecond)
	b.EndTime = b.EndTime.UTC().Truncate(time.Millisecond)
}

func (s *equipmentBookingService) validate(booking *model.EquipmentBooking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Equipment booking validation failed", "equipment_id", booking.EquipmentID, "error", err)
		return apperrors.Validation("Equipment booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func mergeBookingUpdates(existing *model.EquipmentBooking, updates *model.EquipmentBookingUpdate) *model.EquipmentBooking {
	merged := *existing

	if updates.EventID != nil {
		merged.EventID = *updates.EventID
	}
	if updates.StartTime != nil {
		merged.StartTime = *updates.StartTime
	}
	if updates.EndTime != nil {
		merged.EndTime = *updates.EndTime
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}
	if updates.Notes != nil {
		merged.Notes = *updates.Notes
	}

	return &merged
}

func isKnownStatus(s model.EquipmentBookingStatus) bool {
	switch s {
	case model.EquipmentReserved, model.EquipmentInUse, model.EquipmentReturned, model.EquipmentCancelled:
		return true
	default:
		return false
	}
}

func mapRepoError(err error, id, message string) error {
	switch {
	case errors.Is(err, equipmenterrors.ErrNotFound):
		return apperrors.NotFoundWithID("Equipment booking", id)
	case errors.Is(err, equipmenterrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid equipment booking ID format")
	default:
		return apperrors.Internal(message, err)
	}
}
