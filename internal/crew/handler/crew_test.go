package handler

import (
	"context"
	apperrors "crewcall/pkg/errors"
	"crewcall/pkg/logger"
	"crewcall/pkg/model"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
)

type mockCrewService struct {
	createFunc  func(ctx context.Context, member *model.CrewMember) error
	getByIDFunc func(ctx context.Context, id string) (*model.CrewMember, error)
	getAllFunc  func(ctx context.Context, limit int, offset int64) ([]*model.CrewMember, int64, error)
	updateFunc  func(ctx context.Context, id string, updates *model.CrewMemberUpdate) error
	deleteFunc  func(ctx context.Context, id string) error
}

func (m *mockCrewService) Create(ctx context.Context, member *model.CrewMember) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, member)
	}
	return nil
}

func (m *mockCrewService) GetByID(ctx context.Context, id string) (*model.CrewMember, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.CrewMember{ID: id}, nil
}

func (m *mockCrewService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.CrewMember, int64, error) {
	if m.getAllFunc != nil {
		return m.getAllFunc(ctx, limit, offset)
	}
	return []*model.CrewMember{}, 0, nil
}

func (m *mockCrewService) Update(ctx context.Context, id string, updates *model.CrewMemberUpdate) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, updates)
	}
	return nil
}

func (m *mockCrewService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func newTestRouter(svc *mockCrewService) *httprouter.Router {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	router := httprouter.New()
	NewCrewHandler(svc, log).RegisterRoutes(router)
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
	router := newTestRouter(&mockCrewService{
		createFunc: func(ctx context.Context, member *model.CrewMember) error {
			member.ID = "65f000000000000000000001"
			return nil
		},
	})

	w := serve(router, http.MethodPost, "/api/v1/crew", `{"name":"Dana Levi","role":"gaffer"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Data model.CrewMember `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.ID != "65f000000000000000000001" || body.Data.Name != "Dana Levi" {
		t.Errorf("unexpected body: %+v", body.Data)
	}
}

func TestCreate_MalformedBody(t *testing.T) {
	router := newTestRouter(&mockCrewService{
		createFunc: func(context.Context, *model.CrewMember) error {
			t.Error("service must not be called")
			return nil
		},
	})

	w := serve(router, http.MethodPost, "/api/v1/crew", `{"name":`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	router := newTestRouter(&mockCrewService{
		getByIDFunc: func(ctx context.Context, id string) (*model.CrewMember, error) {
			return nil, apperrors.NotFoundWithID("Crew member", id)
		},
	})

	w := serve(router, http.MethodGet, "/api/v1/crew/id/65f000000000000000000009", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetAll_Pagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantLimit  int
		wantOffset int64
	}{
		{"defaults", "", http.StatusOK, 10, 0},
		{"limit capped", "?limit=500", http.StatusOK, 100, 0},
		{"explicit", "?limit=5&offset=10", http.StatusOK, 5, 10},
		{"negative offset normalised", "?limit=5&offset=-3", http.StatusOK, 5, 0},
		{"alphabetic limit", "?limit=abc", http.StatusBadRequest, 0, 0},
		{"alphabetic offset", "?offset=xyz", http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLimit int
			var gotOffset int64
			router := newTestRouter(&mockCrewService{
				getAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.CrewMember, int64, error) {
					gotLimit, gotOffset = limit, offset
					return []*model.CrewMember{}, 0, nil
				},
			})

			w := serve(router, http.MethodGet, "/api/v1/crew"+tt.query, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && (gotLimit != tt.wantLimit || gotOffset != tt.wantOffset) {
				t.Errorf("service got limit=%d offset=%d, want %d/%d", gotLimit, gotOffset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestUpdateAndDelete(t *testing.T) {
	var updatedID, deletedID string
	router := newTestRouter(&mockCrewService{
		updateFunc: func(ctx context.Context, id string, updates *model.CrewMemberUpdate) error {
			updatedID = id
			if updates.Role != "grip" {
				t.Errorf("role = %q", updates.Role)
			}
			return nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			deletedID = id
			return nil
		},
	})

	if w := serve(router, http.MethodPatch, "/api/v1/crew/id/abc", `{"role":"grip"}`); w.Code != http.StatusNoContent {
		t.Errorf("PATCH status = %d", w.Code)
	}
	if w := serve(router, http.MethodDelete, "/api/v1/crew/id/def", ""); w.Code != http.StatusNoContent {
		t.Errorf("DELETE status = %d", w.Code)
	}
	if updatedID != "abc" || deletedID != "def" {
		t.Errorf("ids = %q, %q", updatedID, deletedID)
	}
}
