package handler

import (
	"context"
	"crewcall/internal/availability/repository"
	apperrors "crewcall/pkg/errors"
	"crewcall/pkg/logger"
	"crewcall/pkg/model"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
)

type mockAvailabilityService struct {
	createFunc            func(ctx context.Context, record *model.AvailabilityRecord) error
	bulkUpsertFunc        func(ctx context.Context, bulk *model.AvailabilityBulkUpsert) (*model.AvailabilityBulkResult, error)
	getByIDFunc           func(ctx context.Context, id string) (*model.AvailabilityRecord, error)
	listFunc              func(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.AvailabilityRecord, int64, error)
	updateFunc            func(ctx context.Context, id string, updates *model.AvailabilityUpdate) error
	deleteFunc            func(ctx context.Context, id string) error
	checkFunc             func(ctx context.Context, subjectID, start, end string) (*model.AvailabilityResult, error)
	availableSubjectsFunc func(ctx context.Context, start, end string, roster []string, exclude []model.AvailabilityStatus) ([]string, error)
}

func (m *mockAvailabilityService) Create(ctx context.Context, record *model.AvailabilityRecord) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, record)
	}
	return nil
}

func (m *mockAvailabilityService) BulkUpsert(ctx context.Context, bulk *model.AvailabilityBulkUpsert) (*model.AvailabilityBulkResult, error) {
	if m.bulkUpsertFunc != nil {
		return m.bulkUpsertFunc(ctx, bulk)
	}
	return &model.AvailabilityBulkResult{SubjectID: bulk.SubjectID}, nil
}

func (m *mockAvailabilityService) GetByID(ctx context.Context, id string) (*model.AvailabilityRecord, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.AvailabilityRecord{ID: id}, nil
}

func (m *mockAvailabilityService) List(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.AvailabilityRecord, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter, limit, offset)
	}
	return []*model.AvailabilityRecord{}, 0, nil
}

func (m *mockAvailabilityService) Update(ctx context.Context, id string, updates *model.AvailabilityUpdate) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, updates)
	}
	return nil
}

func (m *mockAvailabilityService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockAvailabilityService) CheckAvailability(ctx context.Context, subjectID, start, end string) (*model.AvailabilityResult, error) {
	if m.checkFunc != nil {
		return m.checkFunc(ctx, subjectID, start, end)
	}
	return &model.AvailabilityResult{SubjectID: subjectID, IsAvailable: true, Status: model.StatusAvailable}, nil
}

func (m *mockAvailabilityService) AvailableSubjects(ctx context.Context, start, end string, roster []string, exclude []model.AvailabilityStatus) ([]string, error) {
	if m.availableSubjectsFunc != nil {
		return m.availableSubjectsFunc(ctx, start, end, roster, exclude)
	}
	return nil, nil
}

func newTestRouter(svc *mockAvailabilityService) *httprouter.Router {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	router := httprouter.New()
	NewAvailabilityHandler(svc, log).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreate(t *testing.T) {
	router := newTestRouter(&mockAvailabilityService{
		createFunc: func(ctx context.Context, record *model.AvailabilityRecord) error {
			record.ID = "65f000000000000000000101"
			return nil
		},
	})

	w := serve(router, http.MethodPost, "/api/v1/availability", `{"subject_id":"dana","date":"2026-03-10","status":"Booked"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Data model.AvailabilityRecord `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.ID != "65f000000000000000000101" || body.Data.Status != model.StatusBooked {
		t.Errorf("unexpected body: %+v", body.Data)
	}
}

func TestCreate_Conflict(t *testing.T) {
	router := newTestRouter(&mockAvailabilityService{
		createFunc: func(context.Context, *model.AvailabilityRecord) error {
			return apperrors.Conflict("Availability already recorded for this subject and date")
		},
	})

	w := serve(router, http.MethodPost, "/api/v1/availability", `{"subject_id":"dana","date":"2026-03-10","status":"Booked"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestBulkUpsert_MalformedBody(t *testing.T) {
	router := newTestRouter(&mockAvailabilityService{
		bulkUpsertFunc: func(context.Context, *model.AvailabilityBulkUpsert) (*model.AvailabilityBulkResult, error) {
			t.Error("service must not be called")
			return nil, nil
		},
	})

	w := serve(router, http.MethodPost, "/api/v1/availability/bulk", `{"dates":[`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestList_PassesFilter(t *testing.T) {
	var got repository.Filter
	router := newTestRouter(&mockAvailabilityService{
		listFunc: func(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.AvailabilityRecord, int64, error) {
			got = filter
			return []*model.AvailabilityRecord{}, 0, nil
		},
	})

	w := serve(router, http.MethodGet, "/api/v1/availability?subject_id=noa&from=2026-03-01&to=2026-03-31", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	want := repository.Filter{SubjectID: "noa", From: "2026-03-01", To: "2026-03-31"}
	if got != want {
		t.Errorf("filter = %+v, want %+v", got, want)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"all params", "?subject_id=dana&start=2026-03-10&end=2026-03-12", http.StatusOK},
		{"missing end", "?subject_id=dana&start=2026-03-10", http.StatusBadRequest},
		{"missing subject", "?start=2026-03-10&end=2026-03-12", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&mockAvailabilityService{})
			w := serve(router, http.MethodGet, "/api/v1/availability/check"+tt.query, "")
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestCheck_ServiceError(t *testing.T) {
	router := newTestRouter(&mockAvailabilityService{
		checkFunc: func(context.Context, string, string, string) (*model.AvailabilityResult, error) {
			return nil, apperrors.NotFound("Subject")
		},
	})

	w := serve(router, http.MethodGet, "/api/v1/availability/check?subject_id=ghost&start=2026-03-10&end=2026-03-12", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestAvailableSubjects_ParsesLists(t *testing.T) {
	var gotRoster []string
	var gotExclude []model.AvailabilityStatus
	router := newTestRouter(&mockAvailabilityService{
		availableSubjectsFunc: func(ctx context.Context, start, end string, roster []string, exclude []model.AvailabilityStatus) ([]string, error) {
			gotRoster = roster
			gotExclude = exclude
			return nil, nil
		},
	})

	w := serve(router, http.MethodGet,
		"/api/v1/availability/available-subjects?start=2026-03-10&end=2026-03-12&roster=dana,%20avi,,noa&exclude_statuses=Booked,Tentative", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !reflect.DeepEqual(gotRoster, []string{"dana", "avi", "noa"}) {
		t.Errorf("roster = %v", gotRoster)
	}
	if !reflect.DeepEqual(gotExclude, []model.AvailabilityStatus{model.StatusBooked, model.StatusTentative}) {
		t.Errorf("exclude = %v", gotExclude)
	}

	var body struct {
		Data []string `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data == nil {
		t.Error("empty result must encode as [] not null")
	}
}

func TestUpdateAndDelete(t *testing.T) {
	var updatedID, deletedID string
	router := newTestRouter(&mockAvailabilityService{
		updateFunc: func(ctx context.Context, id string, updates *model.AvailabilityUpdate) error {
			updatedID = id
			if updates.Status != model.StatusUnavailable {
				t.Errorf("status = %s", updates.Status)
			}
			return nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			deletedID = id
			return nil
		},
	})

	w := serve(router, http.MethodPatch, "/api/v1/availability/id/abc", `{"status":"Unavailable"}`)
	if w.Code != http.StatusNoContent || updatedID != "abc" {
		t.Errorf("update: status = %d, id = %q", w.Code, updatedID)
	}

	w = serve(router, http.MethodDelete, "/api/v1/availability/id/abc", "")
	if w.Code != http.StatusNoContent || deletedID != "abc" {
		t.Errorf("delete: status = %d, id = %q", w.Code, deletedID)
	}
}
