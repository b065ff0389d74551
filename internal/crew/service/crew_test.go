package service

import (
	"context"
	crewerrors "crewcall/internal/crew/errors"
	"crewcall/internal/crew/validator"
	"crewcall/pkg/config"
	apperrors "crewcall/pkg/errors"
	"crewcall/pkg/logger"
	"crewcall/pkg/model"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCrewRepository struct {
	createFunc   func(ctx context.Context, member *model.CrewMember) error
	findByIDFunc func(ctx context.Context, id string) (*model.CrewMember, error)
	findAllFunc  func(ctx context.Context, limit int, offset int64) ([]*model.CrewMember, error)
	countFunc    func(ctx context.Context) (int64, error)
	updateFunc   func(ctx context.Context, id string, member *model.CrewMember) error
	deleteFunc   func(ctx context.Context, id string) error
}

func (m *mockCrewRepository) Create(ctx context.Context, member *model.CrewMember) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, member)
	}
	member.ID = "65f000000000000000000001"
	return nil
}

func (m *mockCrewRepository) FindByID(ctx context.Context, id string) (*model.CrewMember, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, crewerrors.ErrNotFound
}

func (m *mockCrewRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.CrewMember, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.CrewMember{}, nil
}

func (m *mockCrewRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockCrewRepository) Update(ctx context.Context, id string, member *model.CrewMember) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, member)
	}
	return nil
}

func (m *mockCrewRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockCrewRepository) FindExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	return ids, nil
}

func (m *mockCrewRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	return []string{}, nil
}

func newTestService(repo *mockCrewRepository) CrewService {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	cfg := &config.Config{Log: log}
	return NewCrewService(repo, validator.NewCrewValidator(log), cfg)
}

func requireAppError(t *testing.T, err error, code string, status int) {
	t.Helper()
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr, "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	assert.Equal(t, status, appErr.StatusCode())
}

func TestCreate_SanitizesAndStores(t *testing.T) {
	var stored *model.CrewMember
	svc := newTestService(&mockCrewRepository{
		createFunc: func(ctx context.Context, member *model.CrewMember) error {
			stored = member
			member.ID = "65f000000000000000000002"
			return nil
		},
	})

	member := &model.CrewMember{
		ID:    "client-supplied",
		Name:  "  Dana   Levi ",
		Role:  "Gaffer",
		Phone: "+1 (650) 253-0000",
		Email: " Dana@Example.COM ",
	}
	require.NoError(t, svc.Create(context.Background(), member))

	require.NotNil(t, stored)
	assert.Equal(t, "Dana Levi", stored.Name)
	assert.Equal(t, "gaffer", stored.Role)
	assert.Equal(t, "+16502530000", stored.Phone)
	assert.Equal(t, "dana@example.com", stored.Email)
	assert.Equal(t, "65f000000000000000000002", member.ID)
}

func TestCreate_ValidationFailure(t *testing.T) {
	called := false
	svc := newTestService(&mockCrewRepository{
		createFunc: func(context.Context, *model.CrewMember) error {
			called = true
			return nil
		},
	})

	err := svc.Create(context.Background(), &model.CrewMember{Name: "X", Role: "grip"})
	requireAppError(t, err, apperrors.CodeValidation, http.StatusUnprocessableEntity)
	assert.False(t, called, "repository must not be called for invalid input")
}

func TestCreate_RepositoryFailure(t *testing.T) {
	svc := newTestService(&mockCrewRepository{
		createFunc: func(context.Context, *model.CrewMember) error { return errors.New("socket closed") },
	})

	err := svc.Create(context.Background(), &model.CrewMember{Name: "Avi Cohen", Role: "grip"})
	requireAppError(t, err, apperrors.CodeInternal, http.StatusInternalServerError)
}

func TestGetByID_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		repoErr  error
		wantCode string
	}{
		{"empty id", "", nil, apperrors.CodeInvalidInput},
		{"not found", "65f000000000000000000003", crewerrors.ErrNotFound, apperrors.CodeNotFound},
		{"malformed id", "nope", crewerrors.ErrInvalidID, apperrors.CodeInvalidInput},
		{"store failure", "65f000000000000000000003", errors.New("timeout"), apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&mockCrewRepository{
				findByIDFunc: func(context.Context, string) (*model.CrewMember, error) { return nil, tt.repoErr },
			})
			_, err := svc.GetByID(context.Background(), tt.id)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.AsAppError(err).Code)
		})
	}
}

func TestGetAll_ReturnsCountAndPage(t *testing.T) {
	svc := newTestService(&mockCrewRepository{
		countFunc: func(context.Context) (int64, error) { return 7, nil },
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.CrewMember, error) {
			assert.Equal(t, 2, limit)
			assert.Equal(t, int64(4), offset)
			return []*model.CrewMember{{Name: "A"}, {Name: "B"}}, nil
		},
	})

	members, total, err := svc.GetAll(context.Background(), 2, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	assert.Len(t, members, 2)
}

func TestGetAll_CountFailure(t *testing.T) {
	svc := newTestService(&mockCrewRepository{
		countFunc: func(context.Context) (int64, error) { return 0, errors.New("down") },
	})

	_, _, err := svc.GetAll(context.Background(), 10, 0)
	requireAppError(t, err, apperrors.CodeInternal, http.StatusInternalServerError)
}

func TestUpdate_MergesPartialFields(t *testing.T) {
	existing := &model.CrewMember{ID: "65f000000000000000000004", Name: "Noa Bar", Role: "camera", Active: true}
	var saved *model.CrewMember

	svc := newTestService(&mockCrewRepository{
		findByIDFunc: func(context.Context, string) (*model.CrewMember, error) {
			clone := *existing
			return &clone, nil
		},
		updateFunc: func(ctx context.Context, id string, member *model.CrewMember) error {
			saved = member
			return nil
		},
	})

	inactive := false
	err := svc.Update(context.Background(), existing.ID, &model.CrewMemberUpdate{Role: "Director", Active: &inactive})
	require.NoError(t, err)

	require.NotNil(t, saved)
	assert.Equal(t, "Noa Bar", saved.Name)
	assert.Equal(t, "director", saved.Role)
	assert.False(t, saved.Active)
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newTestService(&mockCrewRepository{})
	err := svc.Update(context.Background(), "65f000000000000000000005", &model.CrewMemberUpdate{Name: "New Name"})
	requireAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestUpdate_InvalidPhone(t *testing.T) {
	svc := newTestService(&mockCrewRepository{
		findByIDFunc: func(context.Context, string) (*model.CrewMember, error) {
			return &model.CrewMember{Name: "Noa Bar", Role: "camera"}, nil
		},
	})
	err := svc.Update(context.Background(), "65f000000000000000000004", &model.CrewMemberUpdate{Phone: "call me maybe"})
	requireAppError(t, err, apperrors.CodeValidation, http.StatusUnprocessableEntity)
}

func TestDelete(t *testing.T) {
	svc := newTestService(&mockCrewRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			if id == "65f000000000000000000006" {
				return nil
			}
			return crewerrors.ErrNotFound
		},
	})

	assert.NoError(t, svc.Delete(context.Background(), "65f000000000000000000006"))
	requireAppError(t, svc.Delete(context.Background(), "65f000000000000000000007"), apperrors.CodeNotFound, http.StatusNotFound)
	requireAppError(t, svc.Delete(context.Background(), ""), apperrors.CodeInvalidInput, http.StatusBadRequest)
}
