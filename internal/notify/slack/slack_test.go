package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/sentinel/internal/alert"
	"github.com/linnemanlabs/sentinel/internal/analysis"
)

func sampleAlert() *alert.Alert {
	return &alert.Alert{
		ID:            "TX-2234",
		Timestamp:     time.Date(2026, 2, 26, 14, 23, 0, 0, time.UTC),
		SourceIP:      "172.16.0.4",
		DestinationIP: "10.0.0.12",
		Protocol:      alert.ProtocolUDP,
		Severity:      alert.SeverityCritical,
		Type:          "Port Scan Detected",
		Payload:       "NMAP SCAN [Ports 20-443]",
		Status:        alert.StatusNew,
		Analysis:      "Reconnaissance sweep across low ports.",
	}
}

func TestNotify_PostsToWebhook(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content-type = %q, want application/json", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL, log.Nop())
	if err := n.Notify(context.Background(), sampleAlert()); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	blocks, ok := got["blocks"].([]any)
	if !ok {
		t.Fatal("expected blocks array in payload")
	}

	// header, divider, fields, divider, analysis, divider, context = 7 blocks
	if len(blocks) != 7 {
		t.Errorf("blocks count = %d, want 7", len(blocks))
	}

	header := blocks[0].(map[string]any)
	headerText := header["text"].(map[string]any)["text"].(string)
	if !strings.Contains(headerText, "Port Scan Detected") {
		t.Errorf("header text = %q, want to contain alert type", headerText)
	}
	if !strings.Contains(headerText, "\U0001f534") {
		t.Errorf("header should contain red circle for critical severity")
	}
	if !strings.Contains(headerText, "Threat Analysis Complete") {
		t.Errorf("header text = %q, want completion title", headerText)
	}
}

func TestNotify_FailedAnalysisHeader(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	al := sampleAlert()
	al.Severity = alert.SeverityLow
	al.Analysis = analysis.TextProviderError

	n := New(srv.URL, log.Nop())
	if err := n.Notify(context.Background(), al); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	blocks := got["blocks"].([]any)
	headerText := blocks[0].(map[string]any)["text"].(map[string]any)["text"].(string)
	if !strings.Contains(headerText, "Threat Analysis Failed") {
		t.Errorf("header text = %q, want failure title", headerText)
	}
	if !strings.Contains(headerText, "\U0001f534") {
		t.Error("failed analysis should carry the red circle regardless of severity")
	}
}

func TestNotify_NoOpWithoutURL(t *testing.T) {
	t.Parallel()

	n := New("", log.Nop())
	if err := n.Notify(context.Background(), sampleAlert()); err != nil {
		t.Fatalf("Notify with empty URL should be no-op, got: %v", err)
	}
}

func TestNotify_TruncatesLongAnalysis(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	al := sampleAlert()
	al.Analysis = strings.Repeat("x", 4000)

	n := New(srv.URL, log.Nop())
	if err := n.Notify(context.Background(), al); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	blocks := got["blocks"].([]any)
	analysisSection := blocks[4].(map[string]any)
	text := analysisSection["text"].(map[string]any)["text"].(string)

	// Text includes the "*Analysis*\n\n" prefix, so the analysis portion is what follows.
	if len(text) > maxAnalysisLen+len("*Analysis*\n\n") {
		t.Errorf("analysis text length = %d, expected <= %d", len(text), maxAnalysisLen+len("*Analysis*\n\n"))
	}
	if !strings.HasSuffix(text, "...") {
		t.Error("expected truncated analysis to end with ...")
	}
}

func TestSeverityEmoji(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		failed   bool
		severity alert.Severity
		want     string
	}{
		{"failed", true, alert.SeverityLow, "\U0001f534"},
		{"critical", false, alert.SeverityCritical, "\U0001f534"},
		{"high", false, alert.SeverityHigh, "\U0001f534"},
		{"medium", false, alert.SeverityMedium, "\U0001f7e1"},
		{"low", false, alert.SeverityLow, "\U0001f7e2"},
		{"empty", false, "", "\U0001f7e2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := severityEmoji(tt.failed, tt.severity)
			if got != tt.want {
				t.Errorf("severityEmoji(%v, %q) = %q, want %q", tt.failed, tt.severity, got, tt.want)
			}
		})
	}
}

func FuzzSlackBuild(f *testing.F) {
	f.Add("Port Scan Detected", "CRITICAL", "Reconnaissance sweep.", "NMAP SCAN [Ports 20-443]")
	f.Add("", "", "", "")
	f.Add("<@U123> mention", "MEDIUM", "*bold* _italic_ ~strike~", "payload")
	f.Add("alert\x00\x01\x02", "sev\nline", "analysis\ttab", "p\x00yload")
	f.Add(strings.Repeat("A", 5000), "HIGH", strings.Repeat("x", 10000), "x")
	f.Add("test", "LOW", "```code block``` and <http://example.com|link>", "' OR '1'='1' --")

	f.Fuzz(func(t *testing.T, typ, severity, analysisText, payload string) {
		al := &alert.Alert{
			ID:        "TX-fuzz",
			Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			Type:      typ,
			Severity:  alert.Severity(severity),
			Analysis:  analysisText,
			Payload:   payload,
		}

		// Must not panic
		msg := buildMessage(al)

		// Must produce valid JSON
		data, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("buildMessage produced non-marshalable output: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("buildMessage JSON does not round-trip: %v", err)
		}

		blocks, ok := decoded["blocks"].([]any)
		if !ok {
			t.Fatal("expected blocks array")
		}
		if len(blocks) != 7 {
			t.Fatalf("blocks count = %d, want 7", len(blocks))
		}
	})
}

func TestNotify_NonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal error"))
	}))
	defer srv.Close()

	n := New(srv.URL, log.Nop())
	err := n.Notify(context.Background(), sampleAlert())
	if err == nil {
		t.Fatal("expected error on non-OK status")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error = %q, want to contain status code 500", err.Error())
	}
}
