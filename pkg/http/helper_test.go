package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "crewcall/pkg/errors"
)

func TestExtractLimitOffset(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int64
		wantErr    bool
	}{
		{"defaults", "", 10, 0, false},
		{"explicit", "?limit=25&offset=50", 25, 50, false},
		{"clamped", "?limit=1000&offset=-4", 100, 0, false},
		{"bad limit", "?limit=abc", 0, 0, true},
		{"bad offset", "?offset=xyz", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/crew"+tt.query, nil)
			limit, offset, err := ExtractLimitOffset(req)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("got limit=%d offset=%d, want limit=%d offset=%d", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestSplitCSV(t *testing.T) {
	got := SplitCSV(" a, ,b,c ,")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("unexpected split: %v", got)
	}
	if SplitCSV("   ") != nil {
		t.Error("blank input should yield nil")
	}
}

func TestRequiredQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?start=2025-01-01&end=", nil)
	if _, err := RequiredQuery(req, "start", "end"); err == nil {
		t.Fatal("expected missing end to fail")
	}
	values, err := RequiredQuery(req, "start")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if values["start"] != "2025-01-01" {
		t.Errorf("unexpected value: %v", values)
	}
}

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"conflict", apperrors.Conflict("overlap"), http.StatusConflict, apperrors.CodeConflict},
		{"invalid input", apperrors.InvalidInput("bad"), http.StatusBadRequest, apperrors.CodeInvalidInput},
		{"not found", apperrors.NotFound("Event"), http.StatusNotFound, apperrors.CodeNotFound},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, apperrors.CodeInternal},
		{"zero status falls back to code", &apperrors.AppError{Code: apperrors.CodeConflict, Message: "x"}, http.StatusConflict, apperrors.CodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			if err := WriteError(w, tt.err); err != nil {
				t.Fatalf("unexpected write error: %v", err)
			}
			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			var body ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid body: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, body.Code)
			}
		})
	}
}

func TestWriteError_HidesInternalMessages(t *testing.T) {
	w := httptest.NewRecorder()
	_ = WriteError(w, apperrors.Internal("mongo exploded at 10.0.0.3", errors.New("boom")))

	var body ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Error != "Internal server error" {
		t.Errorf("internal details leaked: %q", body.Error)
	}
}
