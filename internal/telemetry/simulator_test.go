package telemetry

import (
	"testing"
	"time"
)

func TestNewSimulator_SeedsFullWindow(t *testing.T) {
	t.Parallel()

	s := NewSimulator()

	points := s.Traffic()
	if len(points) != Window {
		t.Fatalf("len = %d, want %d", len(points), Window)
	}
	for i := 1; i < len(points); i++ {
		if points[i].Time.Before(points[i-1].Time) {
			t.Fatal("points not ordered oldest first")
		}
	}
	for _, p := range points {
		if p.InboundMb < 10 || p.InboundMb > 59 {
			t.Errorf("seed inbound %d out of range", p.InboundMb)
		}
		if p.OutboundMb < 5 || p.OutboundMb > 34 {
			t.Errorf("seed outbound %d out of range", p.OutboundMb)
		}
	}
}

func TestAdvance_SlidesWindow(t *testing.T) {
	t.Parallel()

	s := NewSimulator()
	before := s.Traffic()

	tick := time.Now().Add(time.Second)
	s.advance(tick)

	after := s.Traffic()
	if len(after) != Window {
		t.Fatalf("len = %d, want %d", len(after), Window)
	}
	if !after[Window-1].Time.Equal(tick) {
		t.Error("newest point is not the advanced tick")
	}
	if !after[0].Time.Equal(before[1].Time) {
		t.Error("oldest point was not dropped")
	}
	p := after[Window-1]
	if p.InboundMb < 20 || p.InboundMb > 79 {
		t.Errorf("inbound %d out of range", p.InboundMb)
	}
	if p.OutboundMb < 10 || p.OutboundMb > 49 {
		t.Errorf("outbound %d out of range", p.OutboundMb)
	}
}

func TestAdvance_StatsStayClamped(t *testing.T) {
	t.Parallel()

	s := NewSimulator()
	for i := range 500 {
		s.advance(time.Now().Add(time.Duration(i) * time.Second))
	}

	stats := s.Stats()
	if stats.CPU < 5 || stats.CPU > 100 {
		t.Errorf("cpu %d out of [5,100]", stats.CPU)
	}
	if stats.Memory < 10 || stats.Memory > 100 {
		t.Errorf("memory %d out of [10,100]", stats.Memory)
	}
	if stats.ActiveConnections < 50 {
		t.Errorf("connections %d below floor 50", stats.ActiveConnections)
	}
}

func TestIncBlocked(t *testing.T) {
	t.Parallel()

	s := NewSimulator()
	start := s.Stats().BlockedToday

	s.IncBlocked()
	s.IncBlocked()

	if got := s.Stats().BlockedToday; got != start+2 {
		t.Errorf("blocked = %d, want %d", got, start+2)
	}
}
