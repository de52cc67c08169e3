package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/example/squash-scheduler/internal/jobs"
)

// Server is the JSON surface for submitting and inspecting booking jobs.
// Deliberately not a UI: no HTML, no sessions; it exists so something other
// than the CLI can enqueue jobs for the scheduler.
type Server struct {
	Jobs   *jobs.Repo
	Site   *time.Location
	Logger zerolog.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Route("/api/jobs", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
	})

	return r
}

type jobRequest struct {
	Name            string `json:"name"`
	Court           int    `json:"court"`
	Hour            int    `json:"hour"`
	PlayDate        string `json:"play_date"` // YYYY-MM-DD, site-local
	Duration        int    `json:"duration_minutes"`
	WindowStart     string `json:"window_start"` // RFC3339
	WindowEnd       string `json:"window_end"`
	IntervalSeconds int    `json:"interval_seconds"`
}

type jobResponse struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Court         int        `json:"court"`
	Hour          int        `json:"hour"`
	PlayDate      string     `json:"play_date"`
	Duration      int        `json:"duration_minutes"`
	WindowStartAt time.Time  `json:"window_start"`
	WindowEndAt   time.Time  `json:"window_end"`
	Status        string     `json:"status"`
	BookedAt      *time.Time `json:"booked_at,omitempty"`
	BookedBy      *string    `json:"booked_by,omitempty"`
	LastError     *string    `json:"last_error,omitempty"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	js, err := s.Jobs.List(r.Context())
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	out := make([]jobResponse, 0, len(js))
	for _, j := range js {
		out = append(out, toResponse(j))
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, err, http.StatusBadRequest)
		return
	}

	playDate, err := time.ParseInLocation("2006-01-02", req.PlayDate, s.Site)
	if err != nil {
		http.Error(w, `invalid play_date (want YYYY-MM-DD)`, http.StatusBadRequest)
		return
	}
	windowStart, err := time.Parse(time.RFC3339, req.WindowStart)
	if err != nil {
		http.Error(w, `invalid window_start (want RFC3339)`, http.StatusBadRequest)
		return
	}
	windowEnd, err := time.Parse(time.RFC3339, req.WindowEnd)
	if err != nil {
		http.Error(w, `invalid window_end (want RFC3339)`, http.StatusBadRequest)
		return
	}

	j := jobs.Job{
		Name:          req.Name,
		Court:         req.Court,
		Hour:          req.Hour,
		PlayDate:      playDate,
		Duration:      req.Duration,
		WindowStartAt: windowStart,
		WindowEndAt:   windowEnd,
		IntervalSec:   req.IntervalSeconds,
	}
	if err := j.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.Jobs.Create(r.Context(), j)
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	j.ID = id
	j.Status = "active"
	s.respond(w, http.StatusCreated, toResponse(j))
}

func toResponse(j jobs.Job) jobResponse {
	return jobResponse{
		ID:            j.ID,
		Name:          j.Name,
		Court:         j.Court,
		Hour:          j.Hour,
		PlayDate:      j.PlayDate.Format("2006-01-02"),
		Duration:      j.Duration,
		WindowStartAt: j.WindowStartAt,
		WindowEndAt:   j.WindowEndAt,
		Status:        j.Status,
		BookedAt:      j.BookedAt,
		BookedBy:      j.BookedBy,
		LastError:     j.LastError,
	}
}

func (s *Server) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.Logger.Error().Err(err).Msg("encoding response failed")
	}
}

func (s *Server) fail(w http.ResponseWriter, err error, status int) {
	s.Logger.Error().Err(err).Msg("request failed")
	http.Error(w, http.StatusText(status), status)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, addr string, h http.Handler, logger zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Info().Str("addr", addr).Msg("listening")
	return srv.ListenAndServe()
}
