// Package classify applies the SIRA signal tables to events: layer and
// metric assignment, severity and sector resolution, and the derived audit
// angle. Classification is a pure table lookup — every decision is traceable
// to a specific pattern, and it never fails: absent matches resolve to the
// documented fallbacks.
package classify

import (
	"regexp"
	"sort"
	"strings"

	"github.com/purnamedha/sirascan/internal/event"
	"github.com/purnamedha/sirascan/internal/sira"
)

// Classifier evaluates compiled signal tables over event text.
type Classifier struct {
	tables *sira.Compiled
}

// New creates a Classifier from compiled tables.
func New(tables *sira.Compiled) *Classifier {
	return &Classifier{tables: tables}
}

// Classify populates the event's Layers, Metrics, Severity, Sector and
// AuditAngle in place. After it returns, all of them are non-empty.
func (c *Classifier) Classify(ev *event.Event) {
	text := strings.ToLower(ev.Text())

	ev.Layers = c.layers(text)
	ev.Metrics = c.metrics(text)
	ev.Severity = c.severity(text)
	ev.Sector = c.sector(text)
	ev.AuditAngle = Angle(ev)
}

// layers returns every layer with at least one matching pattern, sorted by
// layer code for run-to-run determinism. Multiple layers are legitimate
// (an outage with downstream model failures sits in both L2 and L4).
func (c *Classifier) layers(text string) []string {
	var matched []string
	for layer, patterns := range c.tables.Layers {
		if anyMatch(patterns, text) {
			matched = append(matched, layer)
		}
	}
	if len(matched) == 0 {
		return []string{sira.FallbackLayer}
	}
	sort.Strings(matched)
	return matched
}

func (c *Classifier) metrics(text string) []string {
	var matched []string
	for metric, patterns := range c.tables.Metrics {
		if anyMatch(patterns, text) {
			matched = append(matched, metric)
		}
	}
	if len(matched) == 0 {
		return []string{sira.FallbackMetric}
	}
	sort.Strings(matched)
	return matched
}

// severity walks the rules most-severe-first and stops at the first match,
// so an event matching both Critical and Low signals is Critical.
func (c *Classifier) severity(text string) sira.Severity {
	for _, rule := range c.tables.Severity {
		if anyMatch(rule.Patterns, text) {
			return rule.Level
		}
	}
	return sira.SeverityLow
}

func (c *Classifier) sector(text string) string {
	for _, rule := range c.tables.Sectors {
		if anyMatch(rule.Patterns, text) {
			return rule.Sector
		}
	}
	return sira.SectorUnspecified
}

func anyMatch(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
