// Package slack posts scan digests to Slack via incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/purnamedha/sirascan/internal/scan"
	"github.com/purnamedha/sirascan/internal/sira"
)

const (
	maxBriefingLen = 3000
	maxTopEvents   = 5
	httpTimeout    = 10 * time.Second
)

// Notifier sends scan results to a Slack webhook.
type Notifier struct {
	webhookURL string
	logger     log.Logger
	client     *http.Client
}

// New creates a Slack notifier. If webhookURL is empty, Send is a no-op.
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

// Send posts a scan digest to the configured Slack webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) Send(ctx context.Context, result *scan.Result) error {
	if n.webhookURL == "" {
		return nil
	}

	msg := buildMessage(result)

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

	n.logger.Info(ctx, "posted scan digest to slack", "scan_id", result.ID)
	return nil
}

func buildMessage(r *scan.Result) map[string]any {
	blocks := []map[string]any{
		headerBlock(r),
		{"type": "divider"},
		fieldsBlock(r),
		{"type": "divider"},
		eventsBlock(r),
	}
	if b := briefingBlock(r); b != nil {
		blocks = append(blocks, b)
	}
	blocks = append(blocks,
		map[string]any{"type": "divider"},
		contextBlock(r),
	)
	return map[string]any{"blocks": blocks}
}

func headerBlock(r *scan.Result) map[string]any {
	if r.Status == scan.StatusFailed {
		return map[string]any{
			"type": "header",
			"text": map[string]any{
				"type": "plain_text",
				"text": "\U0001f534 Scan Failed",
			},
		}
	}

	text := fmt.Sprintf("%s AI Incident Scan: %d events in last %dd",
		digestEmoji(r), eventCount(r), r.Days)

	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": text,
		},
	}
}

func fieldsBlock(r *scan.Result) map[string]any {
	if r.Status == scan.StatusFailed {
		msg := r.Error
		if msg == "" {
			msg = "unknown error"
		}
		return map[string]any{
			"type": "section",
			"text": map[string]any{
				"type": "mrkdwn",
				"text": fmt.Sprintf("*Error:* %s", msg),
			},
		}
	}

	var critical, high int
	if r.Report != nil {
		critical = r.Report.Summary.BySeverity[string(sira.SeverityCritical)]
		high = r.Report.Summary.BySeverity[string(sira.SeverityHigh)]
	}

	fields := []map[string]any{
		{"type": "mrkdwn", "text": fmt.Sprintf("*Events:* %d", eventCount(r))},
		{"type": "mrkdwn", "text": fmt.Sprintf("*Critical:* %d", critical)},
		{"type": "mrkdwn", "text": fmt.Sprintf("*High:* %d", high)},
		{"type": "mrkdwn", "text": fmt.Sprintf("*Raw items:* %d", r.RawCount)},
		{"type": "mrkdwn", "text": fmt.Sprintf("*Merged:* %d", r.MergedAway)},
		{"type": "mrkdwn", "text": fmt.Sprintf("*Duration:* %.1fs", r.Duration)},
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

// eventsBlock lists the top severity-ranked events, one line each.
func eventsBlock(r *scan.Result) map[string]any {
	if r.Report == nil || len(r.Report.Events) == 0 {
		return map[string]any{
			"type": "section",
			"text": map[string]any{
				"type": "mrkdwn",
				"text": "_No events found._",
			},
		}
	}

	events := r.Report.Events
	if len(events) > maxTopEvents {
		events = events[:maxTopEvents]
	}

	var b strings.Builder
	b.WriteString("*Top events*\n")
	for _, ev := range events {
		line := fmt.Sprintf("%s *%s* — %s, %s",
			severityEmoji(ev.Severity), ev.Title, ev.Severity, ev.Sector)
		if len(ev.Sources) > 0 && ev.Sources[0].URL != "" {
			line += fmt.Sprintf(" (<%s|%s>)", ev.Sources[0].URL, ev.Sources[0].Name)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if rest := len(r.Report.Events) - len(events); rest > 0 {
		fmt.Fprintf(&b, "_…and %d more._\n", rest)
	}

	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": b.String(),
		},
	}
}

// briefingBlock is nil when the scan produced no briefing.
func briefingBlock(r *scan.Result) map[string]any {
	if r.Briefing == "" {
		return nil
	}
	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Briefing*\n\n%s", truncate(r.Briefing, maxBriefingLen)),
		},
	}
}

func contextBlock(r *scan.Result) map[string]any {
	ts := r.CompletedAt
	if ts.IsZero() {
		ts = r.CreatedAt
	}

	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("sirascan • scan %s • %s", r.ID, ts.UTC().Format("2006-01-02 15:04 UTC")),
		},
	}

	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}

// digestEmoji reflects the worst severity present in the report.
func digestEmoji(r *scan.Result) string {
	if r.Report == nil {
		return "\U0001f7e2" // green circle
	}
	for _, sev := range []sira.Severity{sira.SeverityCritical, sira.SeverityHigh} {
		if r.Report.Summary.BySeverity[string(sev)] > 0 {
			return severityEmoji(sev)
		}
	}
	return "\U0001f7e2"
}

func severityEmoji(sev sira.Severity) string {
	switch sev {
	case sira.SeverityCritical, sira.SeverityHigh:
		return "\U0001f534" // red circle
	case sira.SeverityMedium:
		return "\U0001f7e1" // yellow circle
	default:
		return "\U0001f7e2" // green circle
	}
}

func eventCount(r *scan.Result) int {
	if r.Report == nil {
		return 0
	}
	return r.Report.Summary.Total
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
