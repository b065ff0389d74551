package service

import (
	"context"
	crewerrors "crewcall/internal/crew/errors"
	"crewcall/internal/crew/repository"
	"crewcall/internal/crew/validator"
	"crewcall/pkg/config"
	apperrors "crewcall/pkg/errors"
	"crewcall/pkg/model"
	"crewcall/pkg/sanitizer"
	"errors"
	"sync"
)

type CrewService interface {
	Create(ctx context.Context, member *model.CrewMember) error
	GetByID(ctx context.Context, id string) (*model.CrewMember, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.CrewMember, int64, error)
	Update(ctx context.Context, id string, updates *model.CrewMemberUpdate) error
	Delete(ctx context.Context, id string) error
}

type crewService struct {
	repo      repository.CrewRepository
	validator *validator.CrewValidator
	cfg       *config.Config
}

func NewCrewService(repo repository.CrewRepository, validator *validator.CrewValidator, cfg *config.Config) CrewService {
	return &crewService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *crewService) Create(ctx context.Context, member *model.CrewMember) error {
	member.ID = ""
	s.sanitize(member)
	if err := s.validator.Validate(member); err != nil {
		s.cfg.Log.Warn("Crew member validation failed", "name", member.Name, "error", err)
		return apperrors.Validation("Invalid crew member input", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, member); err != nil {
		s.cfg.Log.Error("Failed to create crew member", "error", err)
		return apperrors.Internal("Failed to create crew member", err)
	}

	s.cfg.Log.Info("Crew member created successfully", "id", member.ID, "role", member.Role)
	return nil
}

func (s *crewService) GetByID(ctx context.Context, id string) (*model.CrewMember, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Crew member ID cannot be empty")
	}

	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve crew member")
	}
	return member, nil
}

func (s *crewService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.CrewMember, int64, error) {
	var count int64
	var members []*model.CrewMember
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count crew members", "error", errCount)
			errCount = apperrors.Internal("Failed to count crew members", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		members, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list crew members", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve crew members", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return members, count, nil
}

func (s *crewService) Update(ctx context.Context, id string, updates *model.CrewMemberUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Crew member ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapRepoError(err, id, "Failed to check crew member existence")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Crew member update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := mergeCrewUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Merged crew member failed validation", "id", id, "error", err)
		return apperrors.Validation("Invalid crew member input", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		s.cfg.Log.Error("Failed to update crew member", "id", id, "error", err)
		return s.mapRepoError(err, id, "Failed to update crew member")
	}

	s.cfg.Log.Info("Crew member updated successfully", "id", id)
	return nil
}

func (s *crewService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Crew member ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.cfg.Log.Error("Failed to delete crew member", "id", id, "error", err)
		return s.mapRepoError(err, id, "Failed to delete crew member")
	}

	s.cfg.Log.Info("Crew member deleted successfully", "id", id)
	return nil
}

func (s *crewService) mapRepoError(err error, id, message string) error {
	switch {
	case errors.Is(err, crewerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Crew member", id)
	case errors.Is(err, crewerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid crew member ID format")
	default:
		return apperrors.Internal(message, err)
	}
}

func (s *crewService) sanitize(member *model.CrewMember) {
	member.Name = sanitizer.SanitizeText(member.Name)
	member.Role = sanitizer.SanitizeRole(member.Role)
	member.Phone = sanitizer.SanitizePhone(member.Phone)
	member.Email = sanitizer.SanitizeEmail(member.Email)
}

func mergeCrewUpdates(existing *model.CrewMember, updates *model.CrewMemberUpdate) *model.CrewMember {
	merged := *existing
	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Role != "" {
		merged.Role = updates.Role
	}
	if updates.Phone != "" {
		merged.Phone = updates.Phone
	}
	if updates.Email != "" {
		merged.Email = updates.Email
	}
	if updates.Active != nil {
		merged.Active = *updates.Active
	}
	return &merged
}
