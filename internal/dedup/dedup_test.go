package dedup

import (
	"reflect"
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

func mk(t *testing.T, title, source, date string, layers ...string) *event.Event {
	t.Helper()
	raw := event.RawItem{Title: title, Source: source, URL: "https://" + source + "/x"}
	if date != "" {
		raw.PublishedAt = ts(date)
	}
	ev, err := event.Normalize(raw)
	if err != nil {
		t.Fatalf("normalize %q: %v", title, err)
	}
	if len(layers) == 0 {
		layers = []string{"L4"}
	}
	ev.Layers = layers
	ev.Metrics = []string{"MG"}
	ev.Severity = sira.SeverityMedium
	ev.Sector = sira.SectorUnspecified
	return ev
}

func TestDedup_ExactID(t *testing.T) {
	t.Parallel()

	a := mk(t, "OpenAI model leaks user data", "source-a", "2026-08-20")
	b := mk(t, "OpenAI Model Leaks User Data!", "source-b", "2026-08-20")
	if a.ID != b.ID {
		t.Fatalf("precondition: ids differ (%s vs %s)", a.ID, b.ID)
	}

	out := New(0, 0).Dedup([]*event.Event{a, b})
	if len(out) != 1 {
		t.Fatalf("events = %d, want 1", len(out))
	}
	if len(out[0].Sources) != 2 {
		t.Errorf("sources = %d, want 2", len(out[0].Sources))
	}
}

func TestDedup_FuzzyCrossSource(t *testing.T) {
	t.Parallel()

	a := mk(t, "OpenAI model leaks user data", "source-a", "2026-08-20", "L5")
	b := mk(t, "ChatGPT leaked user data, OpenAI confirms", "source-b", "2026-08-20", "L5")

	out := New(0.5, 0).Dedup([]*event.Event{a, b})
	if len(out) != 1 {
		t.Fatalf("events = %d, want 1", len(out))
	}
	got := out[0]
	if got.Title != a.Title {
		t.Errorf("canonical title = %q, want first-seen %q", got.Title, a.Title)
	}
	if len(got.Sources) != 2 {
		t.Fatalf("sources = %d, want 2", len(got.Sources))
	}
	if got.Sources[0].Name != "source-a" || got.Sources[1].Name != "source-b" {
		t.Errorf("sources = %+v, want batch order preserved", got.Sources)
	}
}

func TestDedup_LayerGate(t *testing.T) {
	t.Parallel()

	// Similar wording, disjoint layers: must not merge.
	a := mk(t, "AI system failure hits major provider", "source-a", "2026-08-20", "L2")
	b := mk(t, "AI system failure hits major hospital", "source-b", "2026-08-20", "L6")

	out := New(0.5, 0).Dedup([]*event.Event{a, b})
	if len(out) != 2 {
		t.Fatalf("events = %d, want 2 (layer gate)", len(out))
	}
}

func TestDedup_TimeWindow(t *testing.T) {
	t.Parallel()

	a := mk(t, "Chatbot gives dangerous advice again", "source-a", "2026-05-01", "L5")
	b := mk(t, "Chatbot gives dangerous advice again", "source-b", "2026-08-20", "L5")
	if a.ID == b.ID {
		t.Fatal("precondition: ids should differ across dates")
	}

	out := New(0.5, 72*time.Hour).Dedup([]*event.Event{a, b})
	if len(out) != 2 {
		t.Fatalf("events = %d, want 2 (outside window)", len(out))
	}

	// Same pair within the window merges.
	c := mk(t, "Chatbot gives dangerous advice again", "source-b", "2026-05-02", "L5")
	out = New(0.5, 72*time.Hour).Dedup([]*event.Event{a, c})
	if len(out) != 1 {
		t.Fatalf("events = %d, want 1 (inside window)", len(out))
	}
}

func TestDedup_Transitive(t *testing.T) {
	t.Parallel()

	a := mk(t, "Acme chatbot leaks customer records", "source-a", "2026-08-20", "L5")
	b := mk(t, "Acme chatbot leaks customer data trove", "source-b", "2026-08-21", "L5")
	c := mk(t, "Data trove leaks from Acme chatbot systems", "source-c", "2026-08-22", "L5")

	out := New(0.6, 96*time.Hour).Dedup([]*event.Event{a, b, c})
	if len(out) != 1 {
		t.Fatalf("events = %d, want 1 (transitive merge)", len(out))
	}
	if len(out[0].Sources) != 3 {
		t.Errorf("sources = %d, want 3", len(out[0].Sources))
	}
	if out[0].PublishedAt == nil || !out[0].PublishedAt.Equal(*ts("2026-08-20")) {
		t.Errorf("published_at = %v, want earliest 2026-08-20", out[0].PublishedAt)
	}
}

func TestDedup_MergeKeepsMaxSeverity(t *testing.T) {
	t.Parallel()

	a := mk(t, "Assistant outage disrupts operations", "source-a", "2026-08-20", "L2")
	a.Severity = sira.SeverityMedium
	b := mk(t, "Assistant outage disrupts operations nationwide", "source-b", "2026-08-20", "L2")
	b.Severity = sira.SeverityCritical

	out := New(0.6, 0).Dedup([]*event.Event{a, b})
	if len(out) != 1 {
		t.Fatalf("events = %d, want 1", len(out))
	}
	if out[0].Severity != sira.SeverityCritical {
		t.Errorf("severity = %s, want Critical (max of candidates)", out[0].Severity)
	}
}

func TestDedup_MergeUnionsLayersAndMetrics(t *testing.T) {
	t.Parallel()

	a := mk(t, "Vendor outage cripples AI tooling", "source-a", "2026-08-20", "L2")
	a.Metrics = []string{"BAI"}
	b := mk(t, "Vendor outage cripples AI tooling stack", "source-b", "2026-08-20", "L2", "L5")
	b.Metrics = []string{"HHI"}

	out := New(0.6, 0).Dedup([]*event.Event{a, b})
	if len(out) != 1 {
		t.Fatalf("events = %d, want 1", len(out))
	}
	if want := []string{"L2", "L5"}; !reflect.DeepEqual(out[0].Layers, want) {
		t.Errorf("layers = %v, want %v", out[0].Layers, want)
	}
	if want := []string{"BAI", "HHI"}; !reflect.DeepEqual(out[0].Metrics, want) {
		t.Errorf("metrics = %v, want %v", out[0].Metrics, want)
	}
}

func TestDedup_Idempotent(t *testing.T) {
	t.Parallel()

	batch := []*event.Event{
		mk(t, "OpenAI model leaks user data", "source-a", "2026-08-20", "L5"),
		mk(t, "ChatGPT leaked user data, OpenAI confirms", "source-b", "2026-08-20", "L5"),
		mk(t, "Self-driving recall after crash", "source-c", "2026-08-19", "L6"),
	}
	d := New(0.5, 0)

	once := d.Dedup(batch)
	twice := d.Dedup(once)
	if len(once) != len(twice) {
		t.Fatalf("second pass changed count: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID || len(once[i].Sources) != len(twice[i].Sources) {
			t.Errorf("event %d changed on second pass", i)
		}
	}
}

func TestDedup_LayerUnionConverges(t *testing.T) {
	t.Parallel()

	// a and c overlap above the threshold but disagree on layers; b bridges
	// them: merging a+b unions L4 into the survivor, which then agrees with
	// c. A single Dedup call must already settle on the final partition.
	a := mk(t, "Outage cripples clinic AI scheduling", "source-a", "2026-08-20", "L2")
	b := mk(t, "Outage cripples clinic billing portal", "source-b", "2026-08-20", "L2", "L4")
	c := mk(t, "AI scheduling errors hit clinic", "source-c", "2026-08-20", "L4")

	d := New(0.55, 0)
	out := d.Dedup([]*event.Event{a, b, c})
	if len(out) != 1 {
		t.Fatalf("events = %d, want 1 (merge must run to a fixpoint)", len(out))
	}
	if len(out[0].Sources) != 3 {
		t.Errorf("sources = %d, want 3", len(out[0].Sources))
	}
	if want := []string{"L2", "L4"}; !reflect.DeepEqual(out[0].Layers, want) {
		t.Errorf("layers = %v, want %v", out[0].Layers, want)
	}

	again := d.Dedup(out)
	if len(again) != len(out) {
		t.Errorf("second pass changed count: %d -> %d", len(out), len(again))
	}
}

func TestDedup_DistinctStaysDistinct(t *testing.T) {
	t.Parallel()

	batch := []*event.Event{
		mk(t, "GPU shortage delays training runs", "source-a", "2026-08-01", "L2"),
		mk(t, "Hospital AI misdiagnoses patients", "source-b", "2026-07-15", "L6"),
		mk(t, "Chatbot sued over travel advice", "source-c", "2026-06-30", "L5"),
		mk(t, "Deepfake scandal hits election", "source-d", "2026-06-01", "L4"),
		mk(t, "Workers replaced by automation suite", "source-e", "2026-05-10", "L7"),
	}

	out := New(0, 0).Dedup(batch)
	if len(out) != 5 {
		t.Fatalf("events = %d, want 5", len(out))
	}
}

func TestDedup_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	a := mk(t, "OpenAI model leaks user data", "source-a", "2026-08-20", "L5")
	b := mk(t, "OpenAI model leaks user data", "source-b", "2026-08-20", "L5")
	New(0, 0).Dedup([]*event.Event{a, b})

	if len(a.Sources) != 1 {
		t.Errorf("input event mutated: sources = %d, want 1", len(a.Sources))
	}
}

func TestOverlapRatio(t *testing.T) {
	t.Parallel()

	a := event.TitleTokens("openai model leaks user data")
	b := event.TitleTokens("chatgpt leaked user data openai confirms")
	got := overlapRatio(a, b)
	// shared: openai, user, data = 3; min set size = 5
	if got != 0.6 {
		t.Errorf("overlapRatio = %v, want 0.6", got)
	}
	if overlapRatio(nil, b) != 0 {
		t.Error("empty set should score 0")
	}
}
