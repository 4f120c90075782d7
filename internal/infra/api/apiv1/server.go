package apiv1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"hirehub-ranking/internal/domain"
	"hirehub-ranking/internal/domain/model"
	"hirehub-ranking/internal/infra/api/auth"
	"hirehub-ranking/internal/infra/export"
	"hirehub-ranking/internal/infra/logging"
	"hirehub-ranking/internal/infra/redis"
	"hirehub-ranking/internal/usecase"
)

// RateLimiter is satisfied by redis.RateLimiter.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Server struct {
	ranking usecase.RankingUseCase
	status  usecase.StatusUseCase
	resumes usecase.ResumeUseCase
	log     *zerolog.Logger

	limiter    RateLimiter
	rankLimit  int
	rankWindow time.Duration
}

type Option func(*Server)

// WithRateLimit caps ranking triggers per recruiter. A limit of 0 disables it.
func WithRateLimit(l RateLimiter, limit int, window time.Duration) Option {
	return func(s *Server) {
		s.limiter, s.rankLimit, s.rankWindow = l, limit, window
	}
}

func NewServer(ranking usecase.RankingUseCase, status usecase.StatusUseCase, resumes usecase.ResumeUseCase,
	logger *zerolog.Logger, opts ...Option) *Server {
	l := logger.With().Str("component", "APIv1").Logger()
	s := &Server{ranking: ranking, status: status, resumes: resumes, log: &l}
	for _, o := range opts {
		o(s)
	}
	return s
}

// RegisterAPIV1 mounts the authenticated /api/v1 routes on r.
func RegisterAPIV1(r chi.Router, s *Server, am *auth.Manager) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(am.Middleware)

		r.Route("/jobs/{jobID}/ranking", func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleRecruiter))
			r.Post("/", s.startRanking)
			r.Get("/status", s.rankingStatus)
			r.Get("/results", s.rankingResults)
			r.Get("/export", s.exportResults)
		})

		r.Route("/resumes/{resumeID}", func(r chi.Router) {
			r.With(auth.RequireRole(auth.RoleCandidate)).Post("/process", s.processResume)
			r.Get("/status", s.resumeStatus)
		})
	})
}

type startRankingRequest struct {
	ForceRefresh bool `json:"force_refresh"`
}

type startRankingResponse struct {
	TaskID   string              `json:"taskId"`
	Status   model.RankingStatus `json:"status"`
	Priority int                 `json:"priority"`
	CacheHit bool                `json:"cacheHit"`
	Message  string              `json:"message"`
	Task     *model.RankingTask  `json:"task,omitempty"`
}

func (s *Server) startRanking(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	jobID := chi.URLParam(r, "jobID")
	ctx := logging.WithJobID(r.Context(), jobID)

	var req startRankingRequest
	if body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16)); err == nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
	}
	if v := r.URL.Query().Get("force"); v != "" {
		f, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "force must be a boolean")
			return
		}
		req.ForceRefresh = req.ForceRefresh || f
	}

	if s.limiter != nil && s.rankLimit > 0 {
		ok, err := s.limiter.Allow(ctx, redis.RecruiterActionKey(p.ID, "rank"), s.rankLimit, s.rankWindow)
		if err != nil {
			logging.With(ctx, s.log).Warn().Err(err).Msg("rate limiter unavailable")
		} else if !ok {
			writeError(w, http.StatusTooManyRequests, "too many ranking requests")
			return
		}
	}

	res, err := s.ranking.StartRanking(ctx, p.ID, jobID, usecase.RankingOptions{Force: req.ForceRefresh})
	if err != nil {
		s.fail(ctx, w, err)
		return
	}

	resp := startRankingResponse{
		TaskID:   res.TaskID,
		Priority: res.Priority,
		CacheHit: res.CacheHit,
		Task:     res.Task,
	}
	if res.Task != nil {
		resp.Status = res.Task.Status
	}
	code := http.StatusAccepted
	switch {
	case res.CacheHit:
		code, resp.Message = http.StatusOK, "recent ranking results reused"
	case res.Completed:
		code, resp.Message = http.StatusOK, "ranking completed"
	default:
		resp.Message = "ranking started"
	}
	writeJSON(w, code, resp)
}

func (s *Server) rankingStatus(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	jobID := chi.URLParam(r, "jobID")
	ctx := logging.WithJobID(r.Context(), jobID)
	task, err := s.status.GetRankingStatus(ctx, p.ID, jobID, strings.TrimSpace(r.URL.Query().Get("taskId")))
	if err != nil {
		s.fail(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) rankingResults(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	jobID := chi.URLParam(r, "jobID")
	ctx := logging.WithJobID(r.Context(), jobID)
	res, err := s.status.GetResults(ctx, p.ID, jobID)
	if err != nil {
		s.fail(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) exportResults(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	jobID := chi.URLParam(r, "jobID")
	ctx := logging.WithJobID(r.Context(), jobID)
	res, err := s.status.GetResults(ctx, p.ID, jobID)
	if err != nil {
		s.fail(ctx, w, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteResults(&buf, res); err != nil {
		s.fail(ctx, w, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(res)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) processResume(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	taskID, err := s.resumes.QueueResume(r.Context(), p.ID, chi.URLParam(r, "resumeID"))
	if err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"taskId": taskID})
}

func (s *Server) resumeStatus(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	st, err := s.status.GetResumeStatus(r.Context(), p.ID, chi.URLParam(r, "resumeID"))
	if err != nil {
		s.fail(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) fail(ctx context.Context, w http.ResponseWriter, err error) {
	code, msg := statusFor(err)
	if code >= http.StatusInternalServerError && !errors.Is(err, domain.ErrQueueFull) {
		logging.With(ctx, s.log).Error().Err(err).Msg("request failed")
	}
	writeError(w, code, msg)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
