package analysis

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/sentinel/internal/alert"
)

var tracer = otel.Tracer("sentinel/analysis")

// Notifier is called after an analysis attempt settles and the result is
// written back to the store.
type Notifier interface {
	Notify(ctx context.Context, al *alert.Alert) error
}

// SubmitResult is the outcome of a manual re-analysis request.
type SubmitResult struct {
	Started bool   `json:"started"`
	Reason  string `json:"reason,omitempty"`
}

// Service orchestrates analysis runs over the alert store. It owns the
// in-flight set: the sole gate preventing duplicate concurrent calls for
// the same alert id. Membership is checked and updated atomically with
// the decision to dispatch.
type Service struct {
	store    *alert.Store
	client   *Client
	logger   log.Logger
	metrics  *Metrics
	notifier Notifier

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewService creates the analysis orchestrator. metrics and notifier may
// be nil.
func NewService(store *alert.Store, client *Client, logger log.Logger, metrics *Metrics, notifier Notifier) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		store:    store,
		client:   client,
		logger:   logger,
		metrics:  metrics,
		notifier: notifier,
		inFlight: make(map[string]struct{}),
	}
}

// Run scans once, then rescans on every store change notification until
// ctx is done. Dispatched runs are not cancelled by ctx; an in-flight
// call settles on its own.
func (s *Service) Run(ctx context.Context) {
	s.Scan(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.store.Changed():
			s.Scan(ctx)
		}
	}
}

// Scan dispatches one analysis run per candidate: alerts with no analysis
// that are not already in flight. It never blocks on call completion;
// alerts appearing mid-batch are picked up on the next change
// notification. Returns the number of runs dispatched.
func (s *Service) Scan(ctx context.Context) int {
	dispatched := 0
	for _, al := range s.store.List() {
		if al.Analysis != "" {
			continue
		}
		if !s.begin(al.ID) {
			continue
		}
		dispatched++
		go s.run(context.WithoutCancel(ctx), al)
	}

	if s.metrics != nil {
		s.metrics.ScansTotal.Inc()
	}
	if dispatched > 0 {
		s.logger.Info(ctx, "analysis scan dispatched", "count", dispatched)
	}
	return dispatched
}

// Reanalyze is the manual trigger. It bypasses the has-analysis check but
// still respects the in-flight gate: a request for an alert already being
// analyzed is a no-op.
func (s *Service) Reanalyze(ctx context.Context, id string) *SubmitResult {
	al, ok := s.store.Get(id)
	if !ok {
		s.countManual("not_found")
		return &SubmitResult{Reason: "not found"}
	}
	if !s.begin(id) {
		s.countManual("in_flight")
		return &SubmitResult{Reason: "in flight"}
	}
	s.countManual("started")
	go s.run(context.WithoutCancel(ctx), al)
	return &SubmitResult{Started: true}
}

// InFlight reports whether an analysis call for the given id is currently
// in flight.
func (s *Service) InFlight(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[id]
	return ok
}

// begin claims the in-flight slot for id. The check and the insert happen
// under one lock so two callers can never both observe "not in flight".
func (s *Service) begin(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inFlight[id]; ok {
		return false
	}
	s.inFlight[id] = struct{}{}
	if s.metrics != nil {
		s.metrics.InFlight.Inc()
	}
	return true
}

func (s *Service) finish(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
	if s.metrics != nil {
		s.metrics.InFlight.Dec()
	}
}

func (s *Service) run(ctx context.Context, al *alert.Alert) {
	// The slot is released no matter how the run ends, even if the store
	// update fails; otherwise the alert would be stuck gated forever.
	defer s.finish(al.ID)

	ctx, span := tracer.Start(ctx, "analysis.run")
	defer span.End()
	span.SetAttributes(attribute.String("sentinel.alert.id", al.ID))

	start := time.Now()
	L := s.logger.With("alert_id", al.ID, "alert_type", al.Type)

	al.Status = alert.StatusAnalyzing
	if !s.store.Update(al) {
		// Resolved between dispatch and start; nothing to analyze.
		L.Info(ctx, "alert gone before analysis started")
		return
	}

	out := s.client.Assess(ctx, al)
	span.SetAttributes(attribute.String("sentinel.analysis.outcome", string(out.Kind)))

	// Status reverts to NEW regardless of outcome; completion is signaled
	// by the analysis text, failure by its sentinel shape.
	al.Analysis = out.Text
	al.Status = alert.StatusNew
	updated := s.store.Update(al)
	if !updated {
		L.Warn(ctx, "alert removed during analysis, result dropped")
	}

	duration := time.Since(start).Seconds()
	if s.metrics != nil {
		s.metrics.AnalysesTotal.WithLabelValues(string(out.Kind)).Inc()
		s.metrics.AnalysisDuration.WithLabelValues(string(out.Kind)).Observe(duration)
	}

	L.Info(ctx, "analysis complete",
		"outcome", string(out.Kind),
		"duration", duration,
	)

	if updated && s.notifier != nil {
		if err := s.notifier.Notify(ctx, al); err != nil {
			L.Error(ctx, err, "notifier failed")
		}
	}
}

func (s *Service) countManual(result string) {
	if s.metrics != nil {
		s.metrics.ManualTriggersTotal.WithLabelValues(result).Inc()
	}
}
