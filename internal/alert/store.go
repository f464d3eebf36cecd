package alert

import (
	"sync"
	"time"

	"github.com/linnemanlabs/go-core/xerrors"
)

// Store holds the active alert collection in memory, in insertion order.
// All alerts are copied on the way in and out so callers can never mutate
// stored state except through the operations defined here.
//
// Every successful mutation fires a coalesced notification on Changed so
// the analysis service can rescan for new candidates.
type Store struct {
	mu      sync.RWMutex
	alerts  []*Alert // insertion order preserved
	changed chan struct{}
}

// NewStore initializes an empty Store.
func NewStore() *Store {
	return &Store{
		changed: make(chan struct{}, 1),
	}
}

// Changed returns the change-notification channel. Notifications are
// coalesced: a receive means "one or more mutations happened since the
// last receive", not one event per mutation.
func (s *Store) Changed() <-chan struct{} {
	return s.changed
}

func (s *Store) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// Insert adds a new alert. It returns an error if an alert with the same
// ID already exists; IDs are unique for the alert's lifetime.
func (s *Store) Insert(al *Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.alerts {
		if existing.ID == al.ID {
			return xerrors.New("alert: duplicate id " + al.ID)
		}
	}

	cp := *al
	s.alerts = append(s.alerts, &cp)
	s.notify()
	return nil
}

// Get retrieves an alert by ID. Returns a copy.
func (s *Store) Get(id string) (*Alert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, al := range s.alerts {
		if al.ID == id {
			cp := *al
			return &cp, true
		}
	}
	return nil, false
}

// List returns copies of all alerts in insertion order.
func (s *Store) List() []*Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Alert, 0, len(s.alerts))
	for _, al := range s.alerts {
		cp := *al
		out = append(out, &cp)
	}
	return out
}

// Visible returns copies of the alerts visible at the given time.
// Visibility is derived against now on every call, never cached.
func (s *Store) Visible(now time.Time) []*Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Alert
	for _, al := range s.alerts {
		if al.Visible(now) {
			cp := *al
			out = append(out, &cp)
		}
	}
	return out
}

// Len reports the number of alerts currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

// Resolve removes the alert with the given ID from the active collection.
// Idempotent: resolving an unknown ID is a no-op and returns false.
func (s *Store) Resolve(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, al := range s.alerts {
		if al.ID == id {
			s.alerts = append(s.alerts[:i], s.alerts[i+1:]...)
			s.notify()
			return true
		}
	}
	return false
}

// Snooze hides the alert from Visible until now + d. Returns false if the
// ID is not found.
func (s *Store) Snooze(id string, d time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, al := range s.alerts {
		if al.ID == id {
			al.SnoozedUntil = time.Now().Add(d)
			s.notify()
			return true
		}
	}
	return false
}

// Update replaces the stored alert with the matching ID by full value,
// preserving its position. Unrelated alerts are untouched. Returns false
// if the ID is not found.
func (s *Store) Update(al *Alert) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.alerts {
		if existing.ID == al.ID {
			cp := *al
			s.alerts[i] = &cp
			s.notify()
			return true
		}
	}
	return false
}
