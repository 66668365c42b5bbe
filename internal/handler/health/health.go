// Package health serves the /healthz endpoint.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

// Checker verifies that a dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a plain function to Checker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

// Handler runs every check concurrently and reports 503 if any fails.
// Checks listed in optional only degrade the report.
type Handler struct {
	checks   map[string]Checker
	optional map[string]bool
	timeout  time.Duration
	logger   *slog.Logger
}

func NewHandler(logger *slog.Logger, checks map[string]Checker, optional ...string) *Handler {
	h := &Handler{
		checks:   checks,
		optional: make(map[string]bool, len(optional)),
		timeout:  3 * time.Second,
		logger:   logger,
	}
	for _, name := range optional {
		h.optional[name] = true
	}
	return h
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.check)
	return r
}

type Result struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

type Report struct {
	Status string            `json:"status"`
	Checks map[string]Result `json:"checks"`
}

func (h *Handler) run(ctx context.Context) (Report, int) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var mu sync.Mutex
	rep := Report{Status: "ok", Checks: make(map[string]Result, len(h.checks))}
	status := http.StatusOK

	var g errgroup.Group
	for name, c := range h.checks {
		g.Go(func() error {
			start := time.Now()
			err := c.Check(ctx)
			res := Result{Status: "ok", LatencyMS: time.Since(start).Milliseconds()}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				h.logger.Error("health check failed", "name", name, "error", err)
				res.Status, res.Error = "error", err.Error()
				if h.optional[name] {
					if rep.Status == "ok" {
						rep.Status = "degraded"
					}
				} else {
					rep.Status = "error"
					status = http.StatusServiceUnavailable
				}
			}
			rep.Checks[name] = res
			return nil
		})
	}
	g.Wait()
	return rep, status
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	rep, status := h.run(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(rep)
}
