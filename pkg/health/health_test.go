package health

import (
	"context"
	"crewcall/pkg/logger"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
)

func newRouter(checks ...Check) *httprouter.Router {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	router := httprouter.New()
	NewHandler(log, checks...).RegisterRoutes(router)
	return router
}

func get(router http.Handler, path string) (*httptest.ResponseRecorder, Response) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var resp Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestHealth_AlwaysOK(t *testing.T) {
	router := newRouter(Check{Name: "mongodb", Ping: func(context.Context) error { return errors.New("down") }})

	w, resp := get(router, "/health")
	if w.Code != http.StatusOK || resp.Status != "ok" {
		t.Errorf("status = %d, body = %+v", w.Code, resp)
	}
}

func TestReady(t *testing.T) {
	ok := Check{Name: "mongodb", Ping: func(context.Context) error { return nil }}
	failing := Check{Name: "redis", Ping: func(context.Context) error { return errors.New("refused") }}

	tests := []struct {
		name       string
		checks     []Check
		wantStatus int
		wantDeps   map[string]string
	}{
		{"all healthy", []Check{ok}, http.StatusOK, map[string]string{"mongodb": "ok"}},
		{"one failing", []Check{ok, failing}, http.StatusServiceUnavailable, map[string]string{"mongodb": "ok", "redis": "error"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := get(newRouter(tt.checks...), "/ready")
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			for name, want := range tt.wantDeps {
				if resp.Dependencies[name] != want {
					t.Errorf("%s = %q, want %q", name, resp.Dependencies[name], want)
				}
			}
		})
	}
}

func TestReady_UnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	w, resp := get(newRouter(RedisCheck(client)), "/ready")
	if w.Code != http.StatusServiceUnavailable || resp.Dependencies["redis"] != "error" {
		t.Errorf("status = %d, body = %+v", w.Code, resp)
	}
}
