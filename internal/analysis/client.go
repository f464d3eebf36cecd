package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/sentinel/internal/alert"
)

// ResponseTokens caps the provider response; the prompt itself asks for
// roughly 150 words, this is headroom for markdown structure.
const ResponseTokens = 1024

// Sentinel texts returned through the normal result channel instead of
// errors. Consumers detect failure by inspecting these, so their exact
// shape is part of the contract.
const (
	// TextMissingKey is returned when no provider credential is
	// configured; no call is attempted.
	TextMissingKey = "API Key missing. Cannot analyze threat."

	// TextEmpty is returned when the provider produced no content.
	TextEmpty = "No analysis could be generated."

	// TextProviderError is returned for any transport or service
	// failure. It carries the recognizable "Error" failure marker.
	TextProviderError = "Error contacting AI analysis service. Please try again later."
)

// IsFailure reports whether a stored analysis string is one of the
// failure sentinels rather than a real assessment.
func IsFailure(text string) bool {
	if text == "" {
		return false
	}
	return strings.HasPrefix(text, "Error") ||
		strings.Contains(text, "API Key missing") ||
		strings.Contains(text, "No analysis")
}

// Request is the input to an AI provider call.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int64
}

// Completion is the provider's response plus token usage.
type Completion struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
}

// Provider is the interface for any text-generation backend.
type Provider interface {
	Generate(ctx context.Context, req *Request) (*Completion, error)
}

// OutcomeKind tags how an assessment attempt settled.
type OutcomeKind string

const (
	OutcomeSuccess       OutcomeKind = "success"
	OutcomeNoCredential  OutcomeKind = "credential_missing"
	OutcomeProviderError OutcomeKind = "provider_error"
	OutcomeEmpty         OutcomeKind = "empty"
)

// Outcome is the settled result of one assessment attempt. Text is always
// non-empty: either the assessment or a failure sentinel.
type Outcome struct {
	Text string
	Kind OutcomeKind
}

// Failed reports whether the outcome carries a sentinel rather than an
// assessment.
func (o Outcome) Failed() bool {
	return o.Kind != OutcomeSuccess
}

// Client produces threat assessments for single alerts. It is stateless
// and never lets a provider failure escape as an error or panic; callers
// key failure detection off the returned text.
type Client struct {
	provider Provider
	logger   log.Logger
	metrics  *Metrics
}

// NewClient creates an assessment client. A nil provider means no
// credential is configured; Assess will short-circuit to the missing-key
// sentinel without attempting a call.
func NewClient(provider Provider, logger log.Logger, metrics *Metrics) *Client {
	if logger == nil {
		logger = log.Nop()
	}
	return &Client{
		provider: provider,
		logger:   logger,
		metrics:  metrics,
	}
}

// Assess asks the provider for an assessment of the alert's immutable
// fields and settles to an Outcome. It does not retry; retry is the
// caller's decision.
func (c *Client) Assess(ctx context.Context, al *alert.Alert) Outcome {
	if c.provider == nil {
		return Outcome{Text: TextMissingKey, Kind: OutcomeNoCredential}
	}

	start := time.Now()
	comp, err := c.provider.Generate(ctx, &Request{
		System:    buildSystemPrompt(),
		Prompt:    buildUserPrompt(al),
		MaxTokens: ResponseTokens,
	})
	if err != nil {
		c.logger.Error(ctx, err, "provider call failed", "alert_id", al.ID)
		if c.metrics != nil {
			c.metrics.ProviderErrorsTotal.Inc()
		}
		return Outcome{Text: TextProviderError, Kind: OutcomeProviderError}
	}

	if c.metrics != nil {
		c.metrics.ProviderCallsTotal.Inc()
		c.metrics.ProviderDuration.Observe(time.Since(start).Seconds())
		c.metrics.ProviderTokensIn.Add(float64(comp.InputTokens))
		c.metrics.ProviderTokensOut.Add(float64(comp.OutputTokens))
	}

	if strings.TrimSpace(comp.Text) == "" {
		c.logger.Warn(ctx, "provider returned empty content", "alert_id", al.ID)
		return Outcome{Text: TextEmpty, Kind: OutcomeEmpty}
	}

	return Outcome{Text: comp.Text, Kind: OutcomeSuccess}
}

func buildSystemPrompt() string {
	return `You are a senior SOC analyst. You assess Intrusion Detection System alerts for operators watching a live dashboard. Be concise and operational.`
}

// buildUserPrompt renders the alert's immutable fields into a
// deterministic prompt. Mutable workflow fields never appear here.
func buildUserPrompt(al *alert.Alert) string {
	return fmt.Sprintf(`Analyze the following Intrusion Detection System (IDS) alert.

Alert Details:
- Type: %s
- Severity: %s
- Protocol: %s
- Source IP: %s
- Payload/Signature: %q

Provide a concise response (max 150 words) covering:
1. What is this attack attempting to do?
2. How dangerous is it realistically?
3. Recommended immediate mitigation step (e.g., block IP, patch service).

Format as Markdown.`,
		al.Type,
		al.Severity,
		al.Protocol,
		al.SourceIP,
		al.Payload,
	)
}
