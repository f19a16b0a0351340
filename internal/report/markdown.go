package report

import (
	"fmt"
	"strings"

	"github.com/purnamedha/sirascan/internal/event"
	"github.com/purnamedha/sirascan/internal/sira"
)

var severityEmoji = map[sira.Severity]string{
	sira.SeverityCritical: "\U0001f534", // red circle
	sira.SeverityHigh:     "\U0001f7e0", // orange circle
	sira.SeverityMedium:   "\U0001f7e1", // yellow circle
	sira.SeverityLow:      "\U0001f7e2", // green circle
}

// Markdown renders a report in the scanner's report format: severity
// summary, layer distribution, then one block per event, severity-ranked.
func Markdown(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# The Medha Audit — AI Disaster Scan\n")
	fmt.Fprintf(&b, "**Scan Date:** %s\n", r.GeneratedAt.Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&b, "**Events Found:** %d\n\n---\n\n", r.Summary.Total)

	b.WriteString("## Severity Summary\n")
	for _, sev := range sira.Severities {
		if n := r.Summary.BySeverity[string(sev)]; n > 0 {
			fmt.Fprintf(&b, "- %s **%s:** %d events\n", severityEmoji[sev], sev, n)
		}
	}
	b.WriteString("\n## SIRA Layer Distribution\n")
	for _, layer := range sira.LayerCodes {
		if n := r.Summary.ByLayer[layer]; n > 0 {
			fmt.Fprintf(&b, "- **%s (%s):** %d events\n", layer, sira.LayerNames[layer], n)
		}
	}

	b.WriteString("\n---\n\n## Events\n\n")
	for i, ev := range r.Events {
		writeEvent(&b, i+1, ev)
	}

	b.WriteString("## How to Use These for The Medha Audit\n\n")
	b.WriteString("For each event above, ask:\n\n")
	b.WriteString("1. **What was the gross multiplier?** What productivity/cost savings were being reported?\n")
	b.WriteString("2. **What was the unpriced risk?** Which SIRA layers were exposed but unmeasured?\n")
	b.WriteString("3. **What would the Medha Grade have been?** Based on CRR, β-AI, Vendor HHI, and Hallucination Rate.\n")
	b.WriteString("4. **What's the one-line takeaway?** A sentence a CTO could repeat in a board meeting.\n")

	return b.String()
}

func writeEvent(b *strings.Builder, n int, ev *event.Event) {
	emoji, ok := severityEmoji[ev.Severity]
	if !ok {
		emoji = "⚪" // white circle
	}

	fmt.Fprintf(b, "### %d. %s %s\n\n", n, emoji, ev.Title)

	date := "Unknown"
	if ev.PublishedAt != nil {
		date = ev.PublishedAt.Format("2006-01-02")
	}
	names := make([]string, 0, len(ev.Sources))
	for _, s := range ev.Sources {
		names = append(names, s.Name)
	}
	fmt.Fprintf(b, "**Sources:** %s | **Date:** %s | **Sector:** %s\n",
		strings.Join(names, ", "), date, ev.Sector)
	fmt.Fprintf(b, "**SIRA Layers:** %s\n", tagList(ev.Layers))
	fmt.Fprintf(b, "**Key Metrics:** %s\n", tagList(ev.Metrics))
	fmt.Fprintf(b, "**Severity:** %s\n", ev.Severity)
	if len(ev.Sources) > 0 && ev.Sources[0].URL != "" {
		fmt.Fprintf(b, "**URL:** %s\n", ev.Sources[0].URL)
	}
	if ev.Summary != "" {
		fmt.Fprintf(b, "\n> %s\n", ev.Summary)
	}
	fmt.Fprintf(b, "\n**Medha Audit Angle:** %s\n\n---\n\n", ev.AuditAngle)
}

func tagList(tags []string) string {
	quoted := make([]string, 0, len(tags))
	for _, t := range tags {
		quoted = append(quoted, "`"+t+"`")
	}
	return strings.Join(quoted, " · ")
}
