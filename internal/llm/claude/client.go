// Package claude produces scan briefings via the Anthropic API. It is the
// single LLM touchpoint in the scanner: classification stays deterministic,
// and the briefing only narrates an already-built report.
package claude

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/purnamedha/sirascan/internal/report"
	"github.com/purnamedha/sirascan/internal/sira"
)

const (
	responseTokens = 1024

	// maxBriefEvents bounds the prompt. Events arrive severity-ranked, so
	// the cut tail is the least interesting part of the report.
	maxBriefEvents = 10
)

const systemPrompt = `You are the analyst behind The Medha Audit, a weekly review of AI failures and risk events.
You receive a classified, deduplicated scan of recent AI incidents, each tagged with SIRA risk layers, severity, sector, and an audit angle.
Write a briefing of at most three short paragraphs: the dominant risk pattern of the period, the single most consequential event and why, and one takeaway a CTO could repeat in a board meeting.
Do not invent events, numbers, or sources. Plain prose, no headings.`

// Client asks Claude for a narrative digest of a finished scan report.
// It implements scan.Briefer.
type Client struct {
	client anthropic.Client
	model  anthropic.Model
}

// New creates a Claude briefing client. Extra request options are for tests.
func New(apiKey, model string, opts ...option.RequestOption) *Client {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Client{
		client: anthropic.NewClient(opts...),
		model:  anthropic.Model(model),
	}
}

// Brief sends the report digest to the model and returns the briefing text.
func (c *Client) Brief(ctx context.Context, rep *report.Report) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: responseTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(rep))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("send briefing request: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("briefing response had no text content")
	}
	return out, nil
}

// BuildPrompt renders the report for the model: a summary line, then the top
// severity-ranked events with their classification and audit angle.
func BuildPrompt(rep *report.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Scan of %s: %d events", rep.GeneratedAt.Format("2006-01-02"), rep.Summary.Total)
	for _, sev := range sira.Severities {
		if n := rep.Summary.BySeverity[string(sev)]; n > 0 {
			fmt.Fprintf(&b, ", %d %s", n, strings.ToLower(string(sev)))
		}
	}
	b.WriteString(".\n\n")

	events := rep.Events
	if len(events) > maxBriefEvents {
		events = events[:maxBriefEvents]
	}
	for i, ev := range events {
		date := "date unknown"
		if ev.PublishedAt != nil {
			date = ev.PublishedAt.Format("2006-01-02")
		}
		fmt.Fprintf(&b, "%d. [%s] %s (%s, %s, layers %s)\n",
			i+1, ev.Severity, ev.Title, date, ev.Sector, strings.Join(ev.Layers, "/"))
		if ev.Summary != "" {
			fmt.Fprintf(&b, "   %s\n", ev.Summary)
		}
		fmt.Fprintf(&b, "   Audit angle: %s\n", ev.AuditAngle)
	}
	if len(rep.Events) > maxBriefEvents {
		fmt.Fprintf(&b, "(%d further lower-severity events omitted)\n", len(rep.Events)-maxBriefEvents)
	}

	return b.String()
}
