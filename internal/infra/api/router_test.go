//go:build !integration

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hirehub-ranking/internal/infra/api/apiv1"
	"hirehub-ranking/internal/infra/api/auth"
	"hirehub-ranking/internal/infra/logging"
	"hirehub-ranking/internal/infra/metrics"
)

func TestRouter(t *testing.T) {
	srv := apiv1.NewServer(nil, nil, nil, logging.Nop())
	h := NewRouter(srv, auth.NewManager("s", "", time.Hour, false), time.Second, logging.Nop())

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusOK || rec.Header().Get("X-Request-ID") == "" {
			t.Fatalf("code=%d headers=%v", rec.Code, rec.Header())
		}
	})

	t.Run("request id is echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		metrics.MustRegister()
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("code=%d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `http_request_duration_seconds_count{code="200",method="GET",route="/health"}`) {
			t.Fatal("request histogram not exported")
		}
	})

	t.Run("api requires auth", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/J1/ranking/status", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("code=%d", rec.Code)
		}
	})
}

func TestRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }), Recover(logging.Nop()))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code=%d", rec.Code)
	}
}
