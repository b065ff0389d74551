package common

import (
	"crewcall/pkg/client"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"testing"
	"time"
)

// ServerURL returns TEST_SERVER_URL, skipping the test when it is unset so the
// suite only runs against a live service.
func ServerURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("TEST_SERVER_URL")
	if url == "" {
		t.Skip("TEST_SERVER_URL not set, skipping integration tests")
	}
	if err := client.NewHttpClient(url).WaitForHealthy(30 * time.Second); err != nil {
		t.Fatalf("service at %s is not healthy: %v", url, err)
	}
	return url
}

// Suffix makes test data unique across runs against the same database.
func Suffix() string {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return fmt.Sprintf("%d", r.Intn(1_000_000))
}

func RequireStatus(t *testing.T, resp *client.Response, err error, want int) {
	t.Helper()
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %s", want, resp.ToString())
	}
}

func RequireCode(t *testing.T, resp *client.Response, err error, wantStatus int, wantCode string) {
	t.Helper()
	RequireStatus(t, resp, err, wantStatus)
	body, err := client.DecodeError(resp)
	if err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Code != wantCode {
		t.Fatalf("expected code %s, got %s", wantCode, resp.ToString())
	}
}

func Cleanup(t *testing.T, del func(id string) (*client.Response, error), ids ...string) {
	t.Helper()
	for _, id := range ids {
		resp, err := del(id)
		if err != nil || (resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound) {
			t.Logf("cleanup of %s failed: %v", id, err)
		}
	}
}
