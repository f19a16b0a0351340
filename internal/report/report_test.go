package report

import (
	"strings"
	"testing"
	"time"

	"github.com/purnamedha/sirascan/internal/event"
	"github.com/purnamedha/sirascan/internal/sira"
)

func ts(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func mk(id, title string, sev sira.Severity, date string) *event.Event {
	ev := &event.Event{
		ID:       id,
		Title:    title,
		Severity: sev,
		Sector:   sira.SectorUnspecified,
		Layers:   []string{"L4"},
		Metrics:  []string{"MG"},
		Sources:  []event.SourceRef{{Name: "src", URL: "https://example.com/" + id}},
	}
	if date != "" {
		ev.PublishedAt = ts(date)
	}
	return ev
}

func TestBuild_RanksBySeverityThenDate(t *testing.T) {
	t.Parallel()

	events := []*event.Event{
		mk("a", "old low", sira.SeverityLow, "2026-08-01"),
		mk("b", "new medium", sira.SeverityMedium, "2026-08-20"),
		mk("c", "old critical", sira.SeverityCritical, "2026-07-01"),
		mk("d", "new critical", sira.SeverityCritical, "2026-08-22"),
		mk("e", "undated high", sira.SeverityHigh, ""),
		mk("f", "dated high", sira.SeverityHigh, "2026-08-10"),
	}

	r, err := Build(events, time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var got []string
	for _, ev := range r.Events {
		got = append(got, ev.ID)
	}
	want := []string{"d", "c", "f", "e", "b", "a"}
	if strings.Join(got, "") != strings.Join(want, "") {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestBuild_FiveDistinctStayFive(t *testing.T) {
	t.Parallel()

	events := []*event.Event{
		mk("1", "one", sira.SeverityLow, "2026-01-01"),
		mk("2", "two", sira.SeverityLow, "2026-02-01"),
		mk("3", "three", sira.SeverityMedium, "2026-03-01"),
		mk("4", "four", sira.SeverityHigh, "2026-04-01"),
		mk("5", "five", sira.SeverityCritical, "2026-05-01"),
	}
	r, err := Build(events, time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if r.Summary.Total != 5 || len(r.Events) != 5 {
		t.Fatalf("total = %d (%d events), want 5", r.Summary.Total, len(r.Events))
	}
	for i := 1; i < len(r.Events); i++ {
		if r.Events[i-1].Severity.Rank() < r.Events[i].Severity.Rank() {
			t.Fatalf("events not sorted by severity at %d", i)
		}
	}
}

func TestBuild_DuplicateIDIsFatal(t *testing.T) {
	t.Parallel()

	events := []*event.Event{
		mk("same", "one", sira.SeverityLow, "2026-01-01"),
		mk("same", "two", sira.SeverityLow, "2026-01-02"),
	}
	if _, err := Build(events, time.Now()); err == nil {
		t.Fatal("Build accepted duplicate ids")
	}
}

func TestBuild_SummaryCounts(t *testing.T) {
	t.Parallel()

	events := []*event.Event{
		mk("a", "one", sira.SeverityCritical, "2026-08-01"),
		mk("b", "two", sira.SeverityCritical, "2026-08-02"),
		mk("c", "three", sira.SeverityLow, "2026-08-03"),
	}
	events[0].Layers = []string{"L2", "L4"}
	events[0].Sector = "Healthcare"

	r, err := Build(events, time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if r.Summary.BySeverity["Critical"] != 2 || r.Summary.BySeverity["Low"] != 1 {
		t.Errorf("by_severity = %v", r.Summary.BySeverity)
	}
	if r.Summary.ByLayer["L4"] != 3 || r.Summary.ByLayer["L2"] != 1 {
		t.Errorf("by_layer = %v", r.Summary.ByLayer)
	}
	if r.Summary.BySector["Healthcare"] != 1 || r.Summary.BySector[sira.SectorUnspecified] != 2 {
		t.Errorf("by_sector = %v", r.Summary.BySector)
	}
	if r.Summary.ByMetric["MG"] != 3 {
		t.Errorf("by_metric = %v", r.Summary.ByMetric)
	}
}

func TestMarkdown(t *testing.T) {
	t.Parallel()

	ev := mk("a", "Chatbot leaks user data", sira.SeverityCritical, "2026-08-20")
	ev.Layers = []string{"L5"}
	ev.Summary = "Records were exposed."
	ev.AuditAngle = "Single-vendor concentration created fragility."
	r, err := Build([]*event.Event{ev}, time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	md := Markdown(r)
	for _, want := range []string{
		"**Scan Date:** 2026-08-26 12:00 UTC",
		"**Events Found:** 1",
		"**Critical:** 1 events",
		"**L5 (Application):** 1 events",
		"Chatbot leaks user data",
		"**Date:** 2026-08-20",
		"`L5`",
		"> Records were exposed.",
		"**Medha Audit Angle:** Single-vendor concentration created fragility.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestMarkdown_UnknownDate(t *testing.T) {
	t.Parallel()

	ev := mk("a", "Undated story", sira.SeverityLow, "")
	r, err := Build([]*event.Event{ev}, time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(Markdown(r), "**Date:** Unknown") {
		t.Error("markdown should render Unknown for missing dates")
	}
}
