// Package detect fabricates intrusion alerts. There is no real capture or
// inspection anywhere in Sentinel; this generator is the detection source
// the rest of the system consumes.
package detect

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/sentinel/internal/alert"
)

// sourcePrefixes are /24s synthetic attackers originate from.
var sourcePrefixes = []string{"192.168.1", "172.16.0", "45.33.22", "203.0.113", "198.51.100"}

// Generator inserts synthetic alerts into the store: a seed batch at
// startup, then one random alert per tick.
type Generator struct {
	store    *alert.Store
	catalog  []Signature
	interval time.Duration
	seeds    int
	logger   log.Logger
}

// NewGenerator creates a generator over the given catalog. interval <= 0
// disables the ticker (only the seed batch is emitted); seeds is the
// number of alerts inserted immediately on Run.
func NewGenerator(store *alert.Store, catalog []Signature, interval time.Duration, seeds int, logger log.Logger) *Generator {
	if logger == nil {
		logger = log.Nop()
	}
	return &Generator{
		store:    store,
		catalog:  catalog,
		interval: interval,
		seeds:    seeds,
		logger:   logger,
	}
}

// Run seeds the store and then emits on the configured interval until ctx
// is done.
func (g *Generator) Run(ctx context.Context) {
	for range g.seeds {
		g.emit(ctx)
	}

	if g.interval <= 0 {
		return
	}

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.emit(ctx)
		}
	}
}

func (g *Generator) emit(ctx context.Context) {
	al := g.newAlert()
	if err := g.store.Insert(al); err != nil {
		g.logger.Error(ctx, err, "failed to insert synthetic alert", "alert_id", al.ID)
		return
	}
	g.logger.Info(ctx, "synthetic alert detected",
		"alert_id", al.ID,
		"type", al.Type,
		"severity", string(al.Severity),
		"source_ip", al.SourceIP,
	)
}

// newAlert draws a random signature and fabricates endpoints for it.
func (g *Generator) newAlert() *alert.Alert {
	sig := g.catalog[rand.IntN(len(g.catalog))]
	prefix := sourcePrefixes[rand.IntN(len(sourcePrefixes))]

	return &alert.Alert{
		ID:            fmt.Sprintf("TX-%s", ulid.Make()),
		Timestamp:     time.Now(),
		SourceIP:      fmt.Sprintf("%s.%d", prefix, rand.IntN(254)+1),
		DestinationIP: fmt.Sprintf("10.0.0.%d", rand.IntN(254)+1),
		Protocol:      sig.Protocol,
		Severity:      sig.Severity,
		Type:          sig.Type,
		Payload:       sig.Payload,
		Status:        alert.StatusNew,
	}
}
