package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"hirehub-ranking/internal/infra/api/apiv1"
	"hirehub-ranking/internal/infra/api/auth"
)

// NewRouter mounts health, metrics and the v1 API behind the common middlewares.
func NewRouter(srv *apiv1.Server, am *auth.Manager, timeout time.Duration, logger *zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(), Recover(logger), RequestLog(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if timeout > 0 {
			r.Use(Timeout(timeout))
		}
		apiv1.RegisterAPIV1(r, srv, am)
	})
	return r
}
