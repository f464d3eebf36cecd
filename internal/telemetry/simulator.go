// Package telemetry fabricates the dashboard's network traffic and system
// stats. All values are random walks; nothing here measures anything real.
package telemetry

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Window is how many traffic points the feed retains, one per tick.
const Window = 21

// TrafficPoint is one sample of simulated network throughput.
type TrafficPoint struct {
	Time       time.Time `json:"time"`
	InboundMb  int       `json:"inboundMb"`
	OutboundMb int       `json:"outboundMb"`
	Packets    int       `json:"packets"`
}

// SystemStats is the simulated host snapshot shown on the dashboard.
type SystemStats struct {
	CPU               int `json:"cpu"`
	Memory            int `json:"memory"`
	ActiveConnections int `json:"activeConnections"`
	BlockedToday      int `json:"blockedToday"`
}

// Simulator maintains a sliding window of traffic points and a stats
// random walk, advanced once per tick.
type Simulator struct {
	mu     sync.RWMutex
	points []TrafficPoint
	stats  SystemStats
}

// NewSimulator seeds a full window of historical points and the initial
// stats.
func NewSimulator() *Simulator {
	s := &Simulator{
		stats: SystemStats{
			CPU:               12,
			Memory:            45,
			ActiveConnections: 124,
			BlockedToday:      89,
		},
	}

	now := time.Now()
	for i := Window - 1; i >= 0; i-- {
		s.points = append(s.points, TrafficPoint{
			Time:       now.Add(-time.Duration(i) * time.Second),
			InboundMb:  rand.IntN(50) + 10,
			OutboundMb: rand.IntN(30) + 5,
			Packets:    rand.IntN(1000),
		})
	}
	return s
}

// Run advances the feed once per second until ctx is done.
func (s *Simulator) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			s.advance(t)
		}
	}
}

func (s *Simulator) advance(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.points = append(s.points[1:], TrafficPoint{
		Time:       now,
		InboundMb:  rand.IntN(60) + 20,
		OutboundMb: rand.IntN(40) + 10,
		Packets:    rand.IntN(1000),
	})

	s.stats.CPU = clamp(s.stats.CPU+rand.IntN(5)-2, 5, 100)
	s.stats.Memory = clamp(s.stats.Memory+rand.IntN(3)-1, 10, 100)
	s.stats.ActiveConnections = max(50, s.stats.ActiveConnections+rand.IntN(10)-5)
}

// Traffic returns a copy of the current window, oldest first.
func (s *Simulator) Traffic() []TrafficPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]TrafficPoint, len(s.points))
	copy(out, s.points)
	return out
}

// Stats returns the current stats snapshot.
func (s *Simulator) Stats() SystemStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// IncBlocked bumps the blocked-today counter; called when an operator
// resolves an alert.
func (s *Simulator) IncBlocked() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.BlockedToday++
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
