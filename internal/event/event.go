// Package event defines the canonical event record produced from raw news
// items and the normalizer that creates it. An Event is created from exactly
// one RawItem, enriched by the classifier, and may absorb the sources of
// near-duplicate peers during deduplication.
package event

import (
	"time"

	"github.com/purnamedha/sirascan/internal/sira"
)

// RawItem is one item as handed over by an acquisition source. Title is the
// only required field; the published timestamp may be missing.
type RawItem struct {
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	PublishedAt *time.Time `json:"published_at"`
}

// SourceRef is one source reporting an event.
type SourceRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Event is the canonical record flowing through the pipeline.
//
// Layers, Metrics, Severity, Sector and AuditAngle are empty until the
// classifier runs; after classification they are always populated, with
// documented fallbacks when no signal matched. Sources starts with the one
// source the event was normalized from and only ever grows (dedup merges).
type Event struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Summary     string        `json:"summary"`
	PublishedAt *time.Time    `json:"published_at"`
	Sources     []SourceRef   `json:"sources"`
	Layers      []string      `json:"sira_layers,omitempty"`
	Metrics     []string      `json:"sira_metrics,omitempty"`
	Severity    sira.Severity `json:"severity,omitempty"`
	Sector      string        `json:"sector,omitempty"`
	AuditAngle  string        `json:"audit_angle,omitempty"`
}

// HasLayer reports whether the event carries the given layer code.
func (e *Event) HasLayer(layer string) bool {
	for _, l := range e.Layers {
		if l == layer {
			return true
		}
	}
	return false
}

// Text returns the combined title and summary the classifier matches against.
func (e *Event) Text() string {
	if e.Summary == "" {
		return e.Title
	}
	return e.Title + " " + e.Summary
}
