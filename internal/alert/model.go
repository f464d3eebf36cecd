// Package alert defines the intrusion alert model and the in-memory store
// that is the single source of truth for the rest of the system.
package alert

import "time"

// Severity orders how dangerous an alert is considered.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Rank maps a severity onto an ordinal so severities can be compared.
// Unknown severities rank below LOW.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// Protocol is the transport protocol an alert was observed on.
type Protocol string

const (
	ProtocolTCP  Protocol = "TCP"
	ProtocolUDP  Protocol = "UDP"
	ProtocolICMP Protocol = "ICMP"
	ProtocolHTTP Protocol = "HTTP"
)

// Status tracks where an alert is in its workflow.
type Status string

const (
	// StatusNew means active and awaiting attention. Alerts also revert
	// here after an analysis attempt settles, successful or not;
	// completion is signaled by a non-empty Analysis, not by status.
	StatusNew Status = "NEW"

	// StatusAnalyzing means an analysis call is currently in flight.
	StatusAnalyzing Status = "ANALYZING"

	// StatusResolved means handled by an operator.
	StatusResolved Status = "RESOLVED"

	// StatusIgnored means dismissed without action.
	StatusIgnored Status = "IGNORED"
)

// Alert is one simulated security event.
//
// ID, Timestamp, SourceIP, DestinationIP, Protocol, Severity, Type and
// Payload are immutable for the alert's lifetime. Status, Analysis and
// SnoozedUntil are workflow fields owned by the analysis service and the
// store mutation operations.
type Alert struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	SourceIP      string    `json:"sourceIp"`
	DestinationIP string    `json:"destinationIp"`
	Protocol      Protocol  `json:"protocol"`
	Severity      Severity  `json:"severity"`
	Type          string    `json:"type"`
	Payload       string    `json:"payload"`

	Status       Status    `json:"status"`
	Analysis     string    `json:"analysis,omitempty"`
	SnoozedUntil time.Time `json:"snoozedUntil,omitzero"`
}

// Visible reports whether the alert should be shown to consumers at the
// given time: either it was never snoozed or the snooze has expired.
func (a *Alert) Visible(now time.Time) bool {
	return a.SnoozedUntil.IsZero() || now.After(a.SnoozedUntil)
}
