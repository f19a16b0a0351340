// Package report ranks deduplicated events and computes the summary
// statistics downstream renderers depend on. It drops nothing: filtering is
// a collaborator concern, and a duplicate id reaching this point is an
// internal defect, not recoverable input.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/purnamedha/sirascan/internal/event"
)

// Summary is the aggregate view over a ranked event list.
type Summary struct {
	Total      int            `json:"total"`
	BySeverity map[string]int `json:"by_severity"`
	ByLayer    map[string]int `json:"by_layer"`
	BySector   map[string]int `json:"by_sector"`
	ByMetric   map[string]int `json:"by_metric"`
}

// Report is the ranked, summarized output of one pipeline run.
type Report struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Events      []*event.Event `json:"events"`
	Summary     Summary        `json:"summary"`
}

// Build sorts events by severity descending, then published date descending
// (unknown dates last, ties broken by id for stable output), and computes
// the summary counts. It returns an error if two events share an id — the
// deduplicator's invariant was broken and the run must not be trusted.
func Build(events []*event.Event, now time.Time) (*Report, error) {
	seen := make(map[string]struct{}, len(events))
	for _, ev := range events {
		if _, dup := seen[ev.ID]; dup {
			return nil, fmt.Errorf("report: duplicate event id %s reached the aggregator", ev.ID)
		}
		seen[ev.ID] = struct{}{}
	}

	ranked := append([]*event.Event(nil), events...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		switch {
		case a.PublishedAt == nil && b.PublishedAt == nil:
			return a.ID < b.ID
		case a.PublishedAt == nil:
			return false
		case b.PublishedAt == nil:
			return true
		case !a.PublishedAt.Equal(*b.PublishedAt):
			return a.PublishedAt.After(*b.PublishedAt)
		}
		return a.ID < b.ID
	})

	s := Summary{
		Total:      len(ranked),
		BySeverity: make(map[string]int),
		ByLayer:    make(map[string]int),
		BySector:   make(map[string]int),
		ByMetric:   make(map[string]int),
	}
	for _, ev := range ranked {
		s.BySeverity[string(ev.Severity)]++
		s.BySector[ev.Sector]++
		for _, l := range ev.Layers {
			s.ByLayer[l]++
		}
		for _, m := range ev.Metrics {
			s.ByMetric[m]++
		}
	}

	return &Report{GeneratedAt: now.UTC(), Events: ranked, Summary: s}, nil
}
