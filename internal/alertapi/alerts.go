package alertapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/sentinel/internal/alert"
)

func (a *API) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	var alerts []*alert.Alert
	if r.URL.Query().Get("visible") == "true" {
		alerts = a.store.Visible(time.Now())
	} else {
		alerts = a.store.List()
	}
	if alerts == nil {
		alerts = []*alert.Alert{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// handleIngestAlert accepts one alert record from an external detection
// source. Field formats are not validated; the record is taken as-is
// with workflow fields reset.
func (a *API) handleIngestAlert(w http.ResponseWriter, r *http.Request) {
	var al alert.Alert
	if err := json.NewDecoder(r.Body).Decode(&al); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}

	if al.ID == "" {
		al.ID = fmt.Sprintf("TX-%s", ulid.Make())
	}
	if al.Timestamp.IsZero() {
		al.Timestamp = time.Now()
	}
	al.Status = alert.StatusNew
	al.Analysis = ""
	al.SnoozedUntil = time.Time{}

	if err := a.store.Insert(&al); err != nil {
		a.logger.Warn(r.Context(), "rejected ingest", "alert_id", al.ID, "error", err)
		http.Error(w, `{"error":"duplicate id"}`, http.StatusConflict)
		return
	}

	a.logger.Info(r.Context(), "alert ingested", "alert_id", al.ID, "type", al.Type)
	writeJSON(w, http.StatusAccepted, map[string]any{"id": al.ID})
}

func (a *API) handleGetAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("sentinel.alert.id", id))

	al, ok := a.store.Get(id)
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	span.SetAttributes(attribute.String("sentinel.alert.status", string(al.Status)))
	writeJSON(w, http.StatusOK, al)
}

// handleResolveAlert removes the alert. Resolving an unknown id is not an
// error; the operation is idempotent.
func (a *API) handleResolveAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	removed := a.store.Resolve(id)
	if removed {
		a.logger.Info(r.Context(), "alert resolved", "alert_id", id)
		if a.dashboard != nil {
			a.dashboard.IncBlocked()
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"resolved": removed})
}

type snoozeRequest struct {
	Minutes int `json:"minutes"`
}

func (a *API) handleSnoozeAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req snoozeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}
	if req.Minutes <= 0 {
		http.Error(w, `{"error":"minutes must be positive"}`, http.StatusBadRequest)
		return
	}

	if !a.store.Snooze(id, time.Duration(req.Minutes)*time.Minute) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	a.logger.Info(r.Context(), "alert snoozed", "alert_id", id, "minutes", req.Minutes)
	writeJSON(w, http.StatusOK, map[string]any{"snoozed": true})
}

func (a *API) handleAnalyzeAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("sentinel.alert.id", id))

	sr := a.analyzer.Reanalyze(r.Context(), id)
	if !sr.Started && sr.Reason == "not found" {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	a.logger.Info(r.Context(), "manual analysis requested",
		"alert_id", id,
		"started", sr.Started,
		"reason", sr.Reason,
	)
	writeJSON(w, http.StatusAccepted, sr)
}
