package service

import (
	"context"
	eventserrors "crewcall/internal/events/errors"
	"crewcall/internal/events/repository"
	"crewcall/internal/events/validator"
	"crewcall/pkg/config"
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
)

// mockEventRepository keeps events in memory and answers FindOverlapping the
// way the Mongo query does.
type mockEventRepository struct {
	events     []*model.Event
	overlapErr error
	updateFunc func(ctx context.Context, id string, event *model.Event) error
}

func (m *mockEventRepository) Create(ctx context.Context, event *model.Event) error {
	event.ID = fmt.Sprintf("65f0000000000000000003%02d", len(m.events))
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventRepository) FindByID(ctx context.Context, id string) (*model.Event, error) {
	for _, e := range m.events {
		if e.ID == id {
			clone := *e
			return &clone, nil
		}
	}
	return nil, eventserrors.ErrNotFound
}

func (m *mockEventRepository) Find(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Event, error) {
	return m.events, nil
}

func (m *mockEventRepository) Count(ctx context.Context, filter repository.Filter) (int64, error) {
	return int64(len(m.events)), nil
}

func (m *mockEventRepository) FindOverlapping(ctx context.Context, attendees []string, window engine.Interval, limit int64) ([]*model.Event, error) {
	if m.overlapErr != nil {
		return nil, m.overlapErr
	}
	wanted := make(map[string]bool, len(attendees))
	for _, a := range attendees {
		wanted[a] = true
	}
	out := make([]*model.Event, 0)
	for _, e := range m.events {
		if !engine.Overlaps(window.Start, window.End, e.StartTime, e.EndTime) {
			continue
		}
		for _, a := range e.Attendees {
			if wanted[a] {
				out = append(out, e)
				break
			}
		}
		if int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockEventRepository) Update(ctx context.Context, id string, event *model.Event) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, event)
	}
	for i, e := range m.events {
		if e.ID == id {
			m.events[i] = event
			return nil
		}
	}
	return eventserrors.ErrNotFound
}

func (m *mockEventRepository) Delete(ctx context.Context, id string) error {
	for i, e := range m.events {
		if e.ID == id {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return nil
		}
	}
	return eventserrors.ErrNotFound
}

type recordingPublisher struct {
	eventTypes []string
	keys       []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType, key string, _ any) error {
	p.eventTypes = append(p.eventTypes, eventType)
	p.keys = append(p.keys, key)
	return nil
}

func newTestService(repo *mockEventRepository, pub publisher.Publisher) EventService {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	cfg := &config.Config{Log: log, MaxConflictScan: 3}
	if pub == nil {
		pub = publisher.NopPublisher{}
	}
	return NewEventService(repo, validator.NewEventValidator(log), pub, cfg)
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

func event(id string, start, end int, attendees ...string) *model.Event {
	return &model.Event{ID: id, Title: "Shoot " + id, StartTime: at(start), EndTime: at(end), Attendees: attendees}
}

func TestCreate_NoConflict(t *testing.T) {
	repo := &mockEventRepository{events: []*model.Event{event("e1", 9, 12, "dana")}}
	pub := &recordingPublisher{}
	svc := newTestService(repo, pub)

	e := &model.Event{Title: " Location  scout ", StartTime: at(10), EndTime: at(11), Attendees: []string{"avi"}}
	require.NoError(t, svc.Create(context.Background(), e, false))

	assert.Equal(t, "Location scout", e.Title)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, []string{publisher.EventCreated}, pub.eventTypes)
	assert.Equal(t, []string{e.ID}, pub.keys)
}

func TestCreate_ConflictRejectedUnlessForced(t *testing.T) {
	repo := &mockEventRepository{events: []*model.Event{
		event("e1", 9, 12, "dana", "noa"),
		event("e2", 11, 13, "avi"),
		event("e3", 12, 14, "dana"),
	}}
	svc := newTestService(repo, nil)

	candidate := func() *model.Event {
		return &model.Event{Title: "Reshoot", StartTime: at(10), EndTime: at(12), Attendees: []string{"dana", "avi"}}
	}

	err := svc.Create(context.Background(), candidate(), false)
	requireAppError(t, err, apperrors.CodeConflict, http.StatusConflict)
	assert.Equal(t, []string{"e1", "e2"}, apperrors.AsAppError(err).Details["conflicting_event_ids"])
	assert.Len(t, repo.events, 3)

	require.NoError(t, svc.Create(context.Background(), candidate(), true))
	assert.Len(t, repo.events, 4)
}

func TestCreate_EmptyAttendeesNeverConflict(t *testing.T) {
	repo := &mockEventRepository{
		events:     []*model.Event{event("e1", 9, 12, "dana")},
		overlapErr: errors.New("must not query"),
	}
	svc := newTestService(repo, nil)

	e := &model.Event{Title: "Tech scout", StartTime: at(9), EndTime: at(12)}
	require.NoError(t, svc.Create(context.Background(), e, false))
	assert.NotNil(t, e.Attendees)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name  string
		event *model.Event
	}{
		{"end before start", &model.Event{Title: "Shoot", StartTime: at(12), EndTime: at(10)}},
		{"duplicate attendee", &model.Event{Title: "Shoot", StartTime: at(9), EndTime: at(10), Attendees: []string{"dana", "dana"}}},
		{"blank attendee", &model.Event{Title: "Shoot", StartTime: at(9), EndTime: at(10), Attendees: []string{""}}},
		{"missing title", &model.Event{StartTime: at(9), EndTime: at(10)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&mockEventRepository{}, nil)
			err := svc.Create(context.Background(), tt.event, false)
			requireAppError(t, err, apperrors.CodeValidation, http.StatusUnprocessableEntity)
		})
	}
}

func TestCreate_ScanLimit(t *testing.T) {
	repo := &mockEventRepository{}
	for i := 0; i < 4; i++ {
		repo.events = append(repo.events, event(fmt.Sprintf("e%d", i), 0, 23, "dana"))
	}
	svc := newTestService(repo, nil)

	err := svc.Create(context.Background(), &model.Event{Title: "Shoot", StartTime: at(9), EndTime: at(10), Attendees: []string{"dana"}}, true)
	requireAppError(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)
}

func TestUpdate_IgnoresOwnStoredCopy(t *testing.T) {
	repo := &mockEventRepository{events: []*model.Event{event("65f000000000000000000301", 9, 12, "dana")}}
	pub := &recordingPublisher{}
	svc := newTestService(repo, pub)

	end := at(13)
	require.NoError(t, svc.Update(context.Background(), "65f000000000000000000301", &model.EventUpdate{EndTime: &end}, false))
	assert.Equal(t, at(13), repo.events[0].EndTime)
	assert.Equal(t, []string{publisher.EventUpdated}, pub.eventTypes)
}

func TestUpdate_AttendeeChangeConflicts(t *testing.T) {
	repo := &mockEventRepository{events: []*model.Event{
		event("65f000000000000000000301", 9, 12, "dana"),
		event("65f000000000000000000302", 10, 11, "avi"),
	}}
	svc := newTestService(repo, nil)

	attendees := []string{"dana", "avi"}
	err := svc.Update(context.Background(), "65f000000000000000000301", &model.EventUpdate{Attendees: &attendees}, false)
	requireAppError(t, err, apperrors.CodeConflict, http.StatusConflict)
	assert.Equal(t, []string{"dana"}, repo.events[0].Attendees)
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newTestService(&mockEventRepository{}, nil)

	err := svc.Update(context.Background(), "65f000000000000000000399", &model.EventUpdate{Title: "New"}, false)
	requireAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestDelete(t *testing.T) {
	repo := &mockEventRepository{events: []*model.Event{event("65f000000000000000000301", 9, 12, "dana")}}
	pub := &recordingPublisher{}
	svc := newTestService(repo, pub)

	require.NoError(t, svc.Delete(context.Background(), "65f000000000000000000301"))
	assert.Empty(t, repo.events)
	assert.Equal(t, []string{publisher.EventDeleted}, pub.eventTypes)

	err := svc.Delete(context.Background(), "65f000000000000000000301")
	requireAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestConflicts(t *testing.T) {
	repo := &mockEventRepository{events: []*model.Event{
		event("e1", 9, 12, "dana"),
		event("e2", 12, 14, "dana"),
		event("e3", 10, 11, "avi"),
	}}
	svc := newTestService(repo, nil)

	conflicts, err := svc.Conflicts(context.Background(), at(10), at(12), []string{" dana ", "noa"}, "")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "e1", conflicts[0].ID)

	conflicts, err = svc.Conflicts(context.Background(), at(10), at(12), []string{"dana"}, "e1")
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	conflicts, err = svc.Conflicts(context.Background(), at(10), at(12), nil, "")
	require.NoError(t, err)
	assert.NotNil(t, conflicts)
	assert.Empty(t, conflicts)

	_, err = svc.Conflicts(context.Background(), at(12), at(12), []string{"dana"}, "")
	requireAppError(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)
}
