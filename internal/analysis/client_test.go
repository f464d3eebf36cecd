package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/sentinel/internal/alert"
)

// stubProvider returns a fixed completion or error.
type stubProvider struct {
	text string
	err  error
}

func (p *stubProvider) Generate(_ context.Context, _ *Request) (*Completion, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &Completion{Text: p.text, InputTokens: 100, OutputTokens: 50}, nil
}

func portScanAlert() *alert.Alert {
	return &alert.Alert{
		ID:            "TX-2234",
		SourceIP:      "172.16.0.4",
		DestinationIP: "10.0.0.8",
		Protocol:      alert.ProtocolUDP,
		Severity:      alert.SeverityMedium,
		Type:          "Port Scan",
		Payload:       "NMAP SCAN [Ports 20-443]",
		Status:        alert.StatusNew,
	}
}

func TestAssess_MissingCredential(t *testing.T) {
	t.Parallel()

	c := NewClient(nil, log.Nop(), nil)

	out := c.Assess(context.Background(), portScanAlert())
	if out.Kind != OutcomeNoCredential {
		t.Errorf("kind = %q, want %q", out.Kind, OutcomeNoCredential)
	}
	if out.Text != TextMissingKey {
		t.Errorf("text = %q, want %q", out.Text, TextMissingKey)
	}
	if !out.Failed() {
		t.Error("expected failed outcome")
	}
}

func TestAssess_Success(t *testing.T) {
	t.Parallel()

	c := NewClient(&stubProvider{text: "**Reconnaissance sweep.** Low realistic danger. Block 172.16.0.4 at the edge."}, log.Nop(), nil)

	out := c.Assess(context.Background(), portScanAlert())
	if out.Kind != OutcomeSuccess {
		t.Fatalf("kind = %q, want %q", out.Kind, OutcomeSuccess)
	}
	if out.Failed() {
		t.Error("success outcome reported failed")
	}
	if !strings.Contains(out.Text, "Reconnaissance") {
		t.Errorf("text = %q, want provider text verbatim", out.Text)
	}
	if IsFailure(out.Text) {
		t.Error("real assessment misclassified as failure sentinel")
	}
}

func TestAssess_ProviderError(t *testing.T) {
	t.Parallel()

	c := NewClient(&stubProvider{err: errors.New("connection refused")}, log.Nop(), nil)

	out := c.Assess(context.Background(), portScanAlert())
	if out.Kind != OutcomeProviderError {
		t.Errorf("kind = %q, want %q", out.Kind, OutcomeProviderError)
	}
	if !strings.HasPrefix(out.Text, "Error") {
		t.Errorf("text = %q, want failure marker prefix", out.Text)
	}
}

func TestAssess_EmptyResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{"empty string", ""},
		{"whitespace only", "  \n\t "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewClient(&stubProvider{text: tt.text}, log.Nop(), nil)
			out := c.Assess(context.Background(), portScanAlert())
			if out.Kind != OutcomeEmpty {
				t.Errorf("kind = %q, want %q", out.Kind, OutcomeEmpty)
			}
			if out.Text != TextEmpty {
				t.Errorf("text = %q, want %q", out.Text, TextEmpty)
			}
		})
	}
}

func TestIsFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty means no analysis yet", "", false},
		{"missing key sentinel", TextMissingKey, true},
		{"empty-content sentinel", TextEmpty, true},
		{"provider error sentinel", TextProviderError, true},
		{"other error-prefixed text", "Error: analysis sequence failed.", true},
		{"real assessment", "This is a port scan probing common services.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsFailure(tt.text); got != tt.want {
				t.Errorf("IsFailure(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestBuildUserPrompt_Deterministic(t *testing.T) {
	t.Parallel()

	al := portScanAlert()
	first := buildUserPrompt(al)
	second := buildUserPrompt(al)
	if first != second {
		t.Error("prompt must be deterministic for the same alert")
	}

	for _, want := range []string{"Port Scan", "MEDIUM", "UDP", "172.16.0.4", "NMAP SCAN [Ports 20-443]", "max 150 words", "Markdown"} {
		if !strings.Contains(first, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildUserPrompt_IgnoresWorkflowFields(t *testing.T) {
	t.Parallel()

	al := portScanAlert()
	base := buildUserPrompt(al)

	al.Status = alert.StatusAnalyzing
	al.Analysis = "previous run output"
	if got := buildUserPrompt(al); got != base {
		t.Error("prompt must depend only on immutable fields")
	}
}
