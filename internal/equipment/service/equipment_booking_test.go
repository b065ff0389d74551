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
	"crewcall/pkg/logger"
	"crewcall/pkg/model"
	"crewcall/pkg/publisher"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

type mockBookingRepository struct {
	bookings []*model.EquipmentBooking

	createFunc   func(ctx context.Context, booking *model.EquipmentBooking) error
	findByIDFunc func(ctx context.Context, id string) (*model.EquipmentBooking, error)
	updateFunc   func(ctx context.Context, id string, booking *model.EquipmentBooking) error
	deleteFunc   func(ctx context.Context, id string) error
	scanErr      error
	transactions int
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.EquipmentBooking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	booking.ID = fmt.Sprintf("65f0000000000000000002%02d", len(m.bookings))
	m.bookings = append(m.bookings, booking)
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.EquipmentBooking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	for _, b := range m.bookings {
		if b.ID == id {
			clone := *b
			return &clone, nil
		}
	}
	return nil, equipmenterrors.ErrNotFound
}

func (m *mockBookingRepository) Find(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.EquipmentBooking, error) {
	return m.bookings, nil
}

func (m *mockBookingRepository) Count(ctx context.Context, filter repository.Filter) (int64, error) {
	return int64(len(m.bookings)), nil
}

// FindByEquipment mirrors the Mongo query: same equipment, occupying status,
// overlapping window.
func (m *mockBookingRepository) FindByEquipment(ctx context.Context, equipmentIDs []string, window engine.Interval, limit int64) ([]*model.EquipmentBooking, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	wanted := make(map[string]bool, len(equipmentIDs))
	for _, id := range equipmentIDs {
		wanted[id] = true
	}
	out := make([]*model.EquipmentBooking, 0)
	for _, b := range m.bookings {
		if len(wanted) > 0 && !wanted[b.EquipmentID] {
			continue
		}
		if !b.Status.Occupies() || !engine.Overlaps(window.Start, window.End, b.StartTime, b.EndTime) {
			continue
		}
		if int64(len(out)) == limit {
			break
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *mockBookingRepository) Update(ctx context.Context, id string, booking *model.EquipmentBooking) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, booking)
	}
	for i, b := range m.bookings {
		if b.ID == id {
			m.bookings[i] = booking
			return nil
		}
	}
	return equipmenterrors.ErrNotFound
}

func (m *mockBookingRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error {
	m.transactions++
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockLocks struct {
	held     map[string]bool
	acquired []string
	released []string
	tokens   []string
	err      error
}

func (m *mockLocks) Acquire(ctx context.Context, resourceID string, ttl time.Duration) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.held[resourceID] {
		return "", fmt.Errorf("%w: %s", mongodb.ErrLockHeld, resourceID)
	}
	m.acquired = append(m.acquired, resourceID)
	return fmt.Sprintf("token-%d", len(m.acquired)), nil
}

func (m *mockLocks) Release(ctx context.Context, resourceID, token string) error {
	m.released = append(m.released, resourceID)
	m.tokens = append(m.tokens, token)
	return nil
}

type recordingPublisher struct {
	eventTypes []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType, _ string, _ any) error {
	p.eventTypes = append(p.eventTypes, eventType)
	return nil
}

func newTestService(repo *mockBookingRepository, locks *mockLocks, pub publisher.Publisher) EquipmentBookingService {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	cfg := &config.Config{Log: log, MaxConflictScan: 5, LockTTL: 10 * time.Second}
	if locks == nil {
		locks = &mockLocks{}
	}
	if pub == nil {
		pub = publisher.NopPublisher{}
	}
	return NewEquipmentBookingService(repo, locks, validator.NewEquipmentBookingValidator(log), pub, cfg)
}

func requireAppError(t *testing.T, err error, code string, status int) {
	t.Helper()
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr, "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	assert.Equal(t, status, appErr.StatusCode())
}

func at(hour int) time.Time {
	return time.Date(2026, 3, 10, hour, 0, 0, 0, time.UTC)
}

func booking(id, equipmentID string, start, end int, status model.EquipmentBookingStatus) *model.EquipmentBooking {
	return &model.EquipmentBooking{ID: id, EquipmentID: equipmentID, StartTime: at(start), EndTime: at(end), Status: status}
}

func TestCreate_DefaultsStatusAndLocks(t *testing.T) {
	repo := &mockBookingRepository{}
	locks := &mockLocks{}
	pub := &recordingPublisher{}
	svc := newTestService(repo, locks, pub)

	b := &model.EquipmentBooking{EquipmentID: " cam-a ", StartTime: at(9), EndTime: at(12)}
	require.NoError(t, svc.Create(context.Background(), b))

	assert.Equal(t, model.EquipmentReserved, b.Status)
	assert.Equal(t, "cam-a", b.EquipmentID)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, []string{"equipment:cam-a"}, locks.acquired)
	assert.Equal(t, []string{"equipment:cam-a"}, locks.released)
	assert.Equal(t, []string{"token-1"}, locks.tokens, "release must present the acquired token")
	assert.Equal(t, 1, repo.transactions)
	assert.Equal(t, []string{publisher.EquipmentBookingCreated}, pub.eventTypes)
}

func TestCreate_RejectsOverlap(t *testing.T) {
	repo := &mockBookingRepository{bookings: []*model.EquipmentBooking{
		booking("65f000000000000000000201", "cam-a", 10, 14, model.EquipmentReserved),
	}}
	locks := &mockLocks{}
	svc := newTestService(repo, locks, nil)

	err := svc.Create(context.Background(), &model.EquipmentBooking{EquipmentID: "cam-a", StartTime: at(13), EndTime: at(15)})
	requireAppError(t, err, apperrors.CodeConflict, http.StatusConflict)
	assert.Equal(t, []string{"65f000000000000000000201"}, apperrors.AsAppError(err).Details["conflicting_booking_ids"])
	assert.Len(t, repo.bookings, 1)
	assert.Equal(t, []string{"equipment:cam-a"}, locks.released, "lock must be released on conflict")
}

func TestCreate_IgnoresReleasedAndAdjacentBookings(t *testing.T) {
	repo := &mockBookingRepository{bookings: []*model.EquipmentBooking{
		booking("65f000000000000000000201", "cam-a", 9, 12, model.EquipmentCancelled),
		booking("65f000000000000000000202", "cam-a", 9, 12, model.EquipmentReturned),
		booking("65f000000000000000000203", "cam-a", 12, 14, model.EquipmentInUse),
		booking("65f000000000000000000204", "cam-b", 9, 12, model.EquipmentInUse),
	}}
	svc := newTestService(repo, nil, nil)

	require.NoError(t, svc.Create(context.Background(), &model.EquipmentBooking{EquipmentID: "cam-a", StartTime: at(9), EndTime: at(12)}))
}

func TestCreate_LockHeld(t *testing.T) {
	repo := &mockBookingRepository{}
	svc := newTestService(repo, &mockLocks{held: map[string]bool{"equipment:cam-a": true}}, nil)

	err := svc.Create(context.Background(), &model.EquipmentBooking{EquipmentID: "cam-a", StartTime: at(9), EndTime: at(12)})
	requireAppError(t, err, apperrors.CodeConflict, http.StatusConflict)
	assert.Zero(t, repo.transactions)
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, nil, nil)

	err := svc.Create(context.Background(), &model.EquipmentBooking{EquipmentID: "cam-a", StartTime: at(12), EndTime: at(12)})
	requireAppError(t, err, apperrors.CodeValidation, http.StatusUnprocessableEntity)
}

func TestCreate_ScanLimit(t *testing.T) {
	repo := &mockBookingRepository{}
	for i := 0; i < 6; i++ {
		repo.bookings = append(repo.bookings, booking(fmt.Sprintf("b%d", i), "cam-a", 0, 23, model.EquipmentReserved))
	}
	svc := newTestService(repo, nil, nil)

	err := svc.Create(context.Background(), &model.EquipmentBooking{EquipmentID: "cam-a", StartTime: at(9), EndTime: at(12)})
	requireAppError(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)
}

func TestUpdate_ExcludesItself(t *testing.T) {
	repo := &mockBookingRepository{bookings: []*model.EquipmentBooking{
		booking("65f000000000000000000201", "cam-a", 9, 12, model.EquipmentReserved),
	}}
	pub := &recordingPublisher{}
	svc := newTestService(repo, nil, pub)

	end := at(13)
	require.NoError(t, svc.Update(context.Background(), "65f000000000000000000201", &model.EquipmentBookingUpdate{EndTime: &end}))
	assert.Equal(t, at(13), repo.bookings[0].EndTime)
	assert.Equal(t, []string{publisher.EquipmentBookingUpdated}, pub.eventTypes)
}

func TestUpdate_ConflictWithOther(t *testing.T) {
	repo := &mockBookingRepository{bookings: []*model.EquipmentBooking{
		booking("65f000000000000000000201", "cam-a", 9, 12, model.EquipmentReserved),
		booking("65f000000000000000000202", "cam-a", 13, 15, model.EquipmentReserved),
	}}
	svc := newTestService(repo, nil, nil)

	end := at(14)
	err := svc.Update(context.Background(), "65f000000000000000000201", &model.EquipmentBookingUpdate{EndTime: &end})
	requireAppError(t, err, apperrors.CodeConflict, http.StatusConflict)
}

func TestUpdate_CancelSkipsLock(t *testing.T) {
	repo := &mockBookingRepository{bookings: []*model.EquipmentBooking{
		booking("65f000000000000000000201", "cam-a", 9, 12, model.EquipmentReserved),
	}}
	locks := &mockLocks{err: errors.New("must not lock")}
	svc := newTestService(repo, locks, nil)

	require.NoError(t, svc.Update(context.Background(), "65f000000000000000000201", &model.EquipmentBookingUpdate{Status: model.EquipmentCancelled}))
	assert.Equal(t, model.EquipmentCancelled, repo.bookings[0].Status)
	assert.Zero(t, repo.transactions)
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, nil, nil)

	err := svc.Update(context.Background(), "65f000000000000000000299", &model.EquipmentBookingUpdate{Status: model.EquipmentInUse})
	requireAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestDelete_PublishesAfterRemoval(t *testing.T) {
	repo := &mockBookingRepository{bookings: []*model.EquipmentBooking{
		booking("65f000000000000000000201", "cam-a", 9, 12, model.EquipmentReserved),
	}}
	pub := &recordingPublisher{}
	svc := newTestService(repo, nil, pub)

	require.NoError(t, svc.Delete(context.Background(), "65f000000000000000000201"))
	assert.Equal(t, []string{publisher.EquipmentBookingDeleted}, pub.eventTypes)
}

func TestConflicts(t *testing.T) {
	repo := &mockBookingRepository{bookings: []*model.EquipmentBooking{
		booking("65f000000000000000000201", "cam-a", 9, 12, model.EquipmentReserved),
		booking("65f000000000000000000202", "cam-a", 11, 13, model.EquipmentInUse),
		booking("65f000000000000000000203", "cam-a", 10, 11, model.EquipmentCancelled),
	}}
	svc := newTestService(repo, nil, nil)

	conflicts, err := svc.Conflicts(context.Background(), "cam-a", at(10), at(12), "65f000000000000000000201")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "65f000000000000000000202", conflicts[0].ID)

	_, err = svc.Conflicts(context.Background(), "cam-a", at(12), at(10), "")
	requireAppError(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)

	_, err = svc.Conflicts(context.Background(), "", at(10), at(12), "")
	requireAppError(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)
}

func TestAvailable(t *testing.T) {
	repo := &mockBookingRepository{bookings: []*model.EquipmentBooking{
		booking("65f000000000000000000201", "cam-a", 9, 12, model.EquipmentReserved),
		booking("65f000000000000000000202", "light-1", 9, 12, model.EquipmentReturned),
	}}
	svc := newTestService(repo, nil, nil)

	available, err := svc.Available(context.Background(), at(10), at(11), []string{"cam-a", "light-1", "cam-b", "cam-b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"light-1", "cam-b"}, available)
}

func TestAvailable_StoreFailure(t *testing.T) {
	svc := newTestService(&mockBookingRepository{scanErr: errors.New("mongo down")}, nil, nil)

	_, err := svc.Available(context.Background(), at(10), at(11), []string{"cam-a"})
	requireAppError(t, err, apperrors.CodeInternal, http.StatusInternalServerError)
}
