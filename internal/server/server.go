// Package server exposes the food assistant over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/askiada/food-assistant/pkg/pipeline"
)

const (
	maxBodyBytes    = 1 << 16
	shutdownTimeout = 10 * time.Second
)

var ErrRunnerMustBeSet = errors.New("runner must be set")

// Runner executes one query. *pipeline.Pipeline implements it.
type Runner interface {
	Run(ctx context.Context, query string) (*pipeline.Run, error)
}

type AskRequest struct {
	Query string `json:"query"`
}

type AskResponse struct {
	RunID    string `json:"run_id,omitempty"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Server serves POST /v1/ask, GET /healthz and GET /metrics.
type Server struct {
	runner   Runner
	log      *slog.Logger
	gatherer prometheus.Gatherer
	mux      *http.ServeMux
}

// New creates a server. A nil gatherer serves the default prometheus registry.
func New(runner Runner, gatherer prometheus.Gatherer, log *slog.Logger) (*Server, error) {
	if runner == nil {
		return nil, ErrRunnerMustBeSet
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		runner:   runner,
		log:      log,
		gatherer: gatherer,
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /v1/ask", s.handleAsk)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server started", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return errors.Wrap(err, "unable to serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		return errors.Wrap(err, "unable to shut down HTTP server")
	}
	s.log.Info("HTTP server stopped")

	return nil
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if err != nil {
		s.write(w, http.StatusBadRequest, AskResponse{Error: "invalid request body"})

		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		s.write(w, http.StatusBadRequest, AskResponse{Error: "query must be set"})

		return
	}

	run, err := s.runner.Run(r.Context(), query)
	resp := AskResponse{}
	if run != nil {
		resp.RunID = run.ID()
	}
	if err != nil {
		s.log.Error("ask failed", "run_id", resp.RunID, "error", err)
		resp.Error = err.Error()
		s.write(w, statusOf(err), resp)

		return
	}

	resp.Response, _ = run.Output()
	s.write(w, http.StatusOK, resp)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) write(w http.ResponseWriter, status int, body AskResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		s.log.Warn("unable to write response", "error", err)
	}
}
