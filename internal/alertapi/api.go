// Package alertapi is the HTTP surface the presentation layer consumes:
// alert reads, the four mutation operations, and the dashboard feeds.
package alertapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/sentinel/internal/alert"
	"github.com/linnemanlabs/sentinel/internal/analysis"
	"github.com/linnemanlabs/sentinel/internal/telemetry"
)

// Analyzer defines the analysis operations alertapi needs.
type Analyzer interface {
	Reanalyze(ctx context.Context, id string) *analysis.SubmitResult
}

// Dashboard defines the telemetry feed alertapi needs.
type Dashboard interface {
	Traffic() []telemetry.TrafficPoint
	Stats() telemetry.SystemStats
	IncBlocked()
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger    log.Logger
	store     *alert.Store
	analyzer  Analyzer
	dashboard Dashboard
}

// New creates a new API handler. store and analyzer are required; a nil
// logger falls back to a no-op logger and a nil dashboard disables the
// dashboard routes.
func New(logger log.Logger, store *alert.Store, analyzer Analyzer, dashboard Dashboard) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if store == nil {
		panic(xerrors.New("alert store is required"))
	}
	if analyzer == nil {
		panic(xerrors.New("analyzer is required"))
	}
	return &API{
		logger:    logger,
		store:     store,
		analyzer:  analyzer,
		dashboard: dashboard,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/alerts", a.handleListAlerts)
		r.Post("/alerts", a.handleIngestAlert)
		r.Get("/alerts/{id}", a.handleGetAlert)
		r.Post("/alerts/{id}/resolve", a.handleResolveAlert)
		r.Post("/alerts/{id}/snooze", a.handleSnoozeAlert)
		r.Post("/alerts/{id}/analyze", a.handleAnalyzeAlert)

		if a.dashboard != nil {
			r.Get("/dashboard/traffic", a.handleDashboardTraffic)
			r.Get("/dashboard/stats", a.handleDashboardStats)
		}
	})
}

func (a *API) handleDashboardTraffic(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"traffic": a.dashboard.Traffic()})
}

func (a *API) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.dashboard.Stats())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// nothing to do with encode errors here
	_ = json.NewEncoder(w).Encode(v)
}
