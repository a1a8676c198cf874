// Package server exposes the ranking pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/julienpequegnot/topicrank/internal/metrics"
	"github.com/julienpequegnot/topicrank/internal/page"
	"github.com/julienpequegnot/topicrank/internal/pipeline"
	"github.com/julienpequegnot/topicrank/internal/summary"
)

// Runner runs one query end to end.
type Runner interface {
	Run(ctx context.Context, query string) (*pipeline.Result, error)
}

// Saver persists a finished run.
type Saver interface {
	Save(res *pipeline.Result) (int64, error)
}

type SearchResponse struct {
	Query           string          `json:"query"`
	Results         []*page.Page    `json:"results"`
	RelatedKeywords []string        `json:"related_keywords"`
	Summary         summary.Summary `json:"summary"`
	RunID           int64           `json:"run_id,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Server struct {
	runner  Runner
	history Saver
	logger  zerolog.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

type Option func(*Server)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithHistory saves every successful run.
func WithHistory(h Saver) Option {
	return func(s *Server) { s.history = h }
}

// WithTimeout bounds a single /api/search request.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

func New(runner Runner, opts ...Option) *Server {
	s := &Server{
		runner:  runner,
		logger:  zerolog.Nop(),
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing query parameter q"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	res, err := s.runner.Run(ctx, q)
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyQuery) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		s.logger.Error().Err(err).Str("query", q).Msg("search failed")
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	resp := SearchResponse{
		Query:           res.Query,
		Results:         res.Pages,
		RelatedKeywords: res.Suggestions,
		Summary:         res.Summary,
	}
	if resp.Results == nil {
		resp.Results = []*page.Page{}
	}
	if resp.RelatedKeywords == nil {
		resp.RelatedKeywords = []string{}
	}

	if s.history != nil {
		id, err := s.history.Save(res)
		if err != nil {
			s.logger.Warn().Err(err).Str("query", q).Msg("failed to save run")
		} else {
			resp.RunID = id
		}
	}

	s.logger.Info().Str("query", q).Int("results", len(res.Pages)).Dur("elapsed", res.Elapsed).Msg("served search")
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
