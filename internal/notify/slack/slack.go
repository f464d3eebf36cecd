// Package slack sends threat analysis notifications to Slack via
// incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/sentinel/internal/alert"
	"github.com/linnemanlabs/sentinel/internal/analysis"
)

const (
	maxAnalysisLen = 3000
	httpTimeout    = 10 * time.Second
)

// Notifier posts finished analyses to a Slack webhook.
type Notifier struct {
	webhookURL string
	logger     log.Logger
	client     *http.Client
}

// New creates a new Slack notifier. If webhookURL is empty, Notify is a no-op.
func New(webhookURL string, logger log.Logger) *Notifier {
	if logger == nil {
		logger = log.Nop()
	}
	return &Notifier{
		webhookURL: webhookURL,
		logger:     logger,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// Notify posts the alert's analysis to the configured Slack webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) Notify(ctx context.Context, al *alert.Alert) error {
	if n.webhookURL == "" {
		return nil
	}

	msg := buildMessage(al)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}

	n.logger.Info(ctx, "slack notification sent", "alert_id", al.ID)
	return nil
}

func buildMessage(al *alert.Alert) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(al),
			{"type": "divider"},
			fieldsBlock(al),
			{"type": "divider"},
			analysisBlock(al),
			{"type": "divider"},
			contextBlock(al),
		},
	}
}

func headerBlock(al *alert.Alert) map[string]any {
	failed := analysis.IsFailure(al.Analysis)
	emoji := severityEmoji(failed, al.Severity)
	title := "Threat Analysis Complete"
	if failed {
		title = "Threat Analysis Failed"
	}
	text := fmt.Sprintf("%s %s: %s", emoji, title, al.Type)

	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": text,
		},
	}
}

func fieldsBlock(al *alert.Alert) map[string]any {
	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Severity:* %s", al.Severity),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Protocol:* %s", al.Protocol),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Source:* %s", al.SourceIP),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Destination:* %s", al.DestinationIP),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Status:* %s", al.Status),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Payload:* `%s`", al.Payload),
		},
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func analysisBlock(al *alert.Alert) map[string]any {
	text := truncate(al.Analysis, maxAnalysisLen)
	if text == "" {
		text = "_No analysis available._"
	}

	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Analysis*\n\n%s", text),
		},
	}
}

func contextBlock(al *alert.Alert) map[string]any {
	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("sentinel • alert %s • %s", al.ID, al.Timestamp.UTC().Format("2006-01-02 15:04 UTC")),
		},
	}

	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}

func severityEmoji(failed bool, severity alert.Severity) string {
	if failed {
		return "\U0001f534" // red circle
	}
	switch severity {
	case alert.SeverityCritical, alert.SeverityHigh:
		return "\U0001f534" // red circle
	case alert.SeverityMedium:
		return "\U0001f7e1" // yellow circle
	default:
		return "\U0001f7e2" // green circle
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
