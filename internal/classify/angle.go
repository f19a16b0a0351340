package classify

import (
	"fmt"
	"strings"

	"github.com/purnamedha/sirascan/internal/event"
)

// angleRule maps a layer or metric membership to its angle sentence.
// Rules are ordered by analytical priority; the first two that apply make
// the angle.
var angleRules = []struct {
	layer, metric string
	text          string
}{
	{layer: "L7", text: "Human cognitive dependency was the unexamined risk"},
	{metric: "HR", text: "Unverified AI output was carried as completed work — phantom value"},
	{metric: "HHI", text: "Single-vendor concentration created fragility"},
	{layer: "L6", text: "AI was integrated into critical decisions without adequate human override"},
	{metric: "BAI", text: "High beta-AI: productivity collapsed when AI failed"},
	{metric: "CRR", text: "CRR was never measured — nobody knew if the team could function without AI"},
	{metric: "MY", text: "Gross multiplier looked impressive; risk-adjusted return tells a different story"},
}

const maxAngles = 2

// Angle derives the audit-angle prompt from an already-classified event.
// It is a pure function of the classified fields, does no pattern matching
// of its own, and always returns non-empty text.
func Angle(ev *event.Event) string {
	var angles []string
	for _, rule := range angleRules {
		if len(angles) == maxAngles {
			break
		}
		if rule.layer != "" && ev.HasLayer(rule.layer) {
			angles = append(angles, rule.text)
			continue
		}
		if rule.metric != "" && hasMetric(ev, rule.metric) {
			angles = append(angles, rule.text)
		}
	}
	if len(angles) == 0 {
		angles = append(angles, fmt.Sprintf(
			"SIRA layers %s exposed — standard risk assessment missed this",
			strings.Join(ev.Layers, ", "),
		))
	}
	return strings.Join(angles, ". ") + "."
}

func hasMetric(ev *event.Event, metric string) bool {
	for _, m := range ev.Metrics {
		if m == metric {
			return true
		}
	}
	return false
}
