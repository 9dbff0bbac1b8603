package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/backlinkmonitor/internal/domain"
	apimw "github.com/hamed0406/backlinkmonitor/internal/httpapi/middleware"
	"github.com/hamed0406/backlinkmonitor/internal/probe"
	"github.com/hamed0406/backlinkmonitor/internal/repo"
)

type Server struct {
	Logger  *zap.Logger
	Results repo.ResultStore
	Checker probe.Checker
	// Metrics serves /metrics when non-nil.
	Metrics http.Handler

	// CheckKeys guards POST /api/check; empty leaves it open.
	CheckKeys []string
	// CheckPerMin limits ad-hoc checks per client IP; 0 disables.
	CheckPerMin int
	CheckBurst  int
	// TrustProxy takes the client IP from X-Real-IP / X-Forwarded-For.
	// Only set it behind a proxy that overwrites those headers.
	TrustProxy bool
}

func NewServer(l *zap.Logger, rs repo.ResultStore, c probe.Checker, metrics http.Handler) *Server {
	return &Server{Logger: l, Results: rs, Checker: c, Metrics: metrics}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if s.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/api/results/latest", s.handleLatest)
	r.With(
		apimw.RequireKey(s.CheckKeys),
		apimw.RateLimit(s.CheckPerMin, s.CheckBurst),
	).Post("/api/check", s.handleCheck)

	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}
	return r
}

type latestResponse struct {
	Results  domain.ResultSet `json:"results"`
	Problems int              `json:"problems"`
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	rs, err := s.Results.Latest(r.Context())
	if errors.Is(err, repo.ErrNoResults) {
		writeError(w, http.StatusNotFound, "no results yet")
		return
	}
	if err != nil {
		s.Logger.Error("latest_results_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load results")
		return
	}
	writeJSON(w, http.StatusOK, latestResponse{Results: rs, Problems: len(rs.Problems())})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var p domain.Target
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	p.Backlink = strings.TrimSpace(p.Backlink)
	p.Reference = strings.TrimSpace(p.Reference)
	if p.Backlink == "" || p.Reference == "" {
		writeError(w, http.StatusBadRequest, "backlink and reference are required")
		return
	}

	// Run a single check synchronously for immediate feedback
	res := s.Checker.Check(r.Context(), p)

	s.Logger.Info("adhoc_check",
		zap.String("backlink", p.Backlink),
		zap.String("reference", p.Reference),
		zap.String("status", res.Status.String()),
		zap.Intp("response_code", res.ResponseCode),
		zap.Float64("latency_ms", res.LatencyMS),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	)
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
