package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/purnamedha/sirascan/internal/event"
	"github.com/purnamedha/sirascan/internal/report"
	"github.com/purnamedha/sirascan/internal/scan"
	"github.com/purnamedha/sirascan/internal/sira"
)

func completedResult(t *testing.T) *scan.Result {
	t.Helper()

	d := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	rep, err := report.Build([]*event.Event{
		{
			ID:          "aaaa1111",
			Title:       "Autopilot failure causes fatal crash",
			PublishedAt: &d,
			Sources:     []event.SourceRef{{Name: "TechCrunch AI", URL: "https://example.com/a"}},
			Layers:      []string{"L6"},
			Metrics:     []string{"HR"},
			Severity:    sira.SeverityCritical,
			Sector:      "Automotive",
		},
		{
			ID:       "bbbb2222",
			Title:    "Chatbot leaks internal prompts",
			Sources:  []event.SourceRef{{Name: "The Verge AI", URL: "https://example.com/b"}},
			Layers:   []string{"L2", "L4"},
			Metrics:  []string{"MG"},
			Severity: sira.SeverityMedium,
			Sector:   "Unspecified",
		},
	}, time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	return &scan.Result{
		ID:          "01JN123",
		Status:      scan.StatusComplete,
		Days:        7,
		RawCount:    40,
		MergedAway:  3,
		Report:      rep,
		Duration:    12.4,
		CompletedAt: time.Date(2026, 3, 12, 9, 0, 5, 0, time.UTC),
	}
}

func TestSend_PostsToWebhook(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content-type = %q, want application/json", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL, log.Nop())
	if err := n.Send(context.Background(), completedResult(t)); err != nil {
		t.Fatalf("Send: %v", err)
	}

	blocks, ok := got["blocks"].([]any)
	if !ok {
		t.Fatal("expected blocks array in payload")
	}

	// header, divider, fields, divider, events, divider, context = 7 blocks
	// (no briefing on this result)
	if len(blocks) != 7 {
		t.Errorf("blocks count = %d, want 7", len(blocks))
	}

	header := blocks[0].(map[string]any)
	headerText := header["text"].(map[string]any)["text"].(string)
	if !strings.Contains(headerText, "2 events in last 7d") {
		t.Errorf("header text = %q, want event and day counts", headerText)
	}
	if !strings.Contains(headerText, "\U0001f534") {
		t.Error("header should carry red circle when a critical event is present")
	}

	events := blocks[4].(map[string]any)
	eventsText := events["text"].(map[string]any)["text"].(string)
	if !strings.Contains(eventsText, "Autopilot failure causes fatal crash") {
		t.Errorf("events text = %q, want top event title", eventsText)
	}
	if !strings.Contains(eventsText, "<https://example.com/a|TechCrunch AI>") {
		t.Errorf("events text = %q, want linked source", eventsText)
	}
}

func TestSend_NoOpWithoutURL(t *testing.T) {
	t.Parallel()

	n := New("", log.Nop())
	if err := n.Send(context.Background(), &scan.Result{}); err != nil {
		t.Fatalf("Send with empty URL should be no-op, got: %v", err)
	}
}

func TestBuildMessage_BriefingBlock(t *testing.T) {
	t.Parallel()

	r := completedResult(t)
	r.Briefing = strings.Repeat("x", 4000)

	msg := buildMessage(r)
	blocks := msg["blocks"].([]map[string]any)

	// briefing inserted after the events block
	if len(blocks) != 8 {
		t.Fatalf("blocks count = %d, want 8 with briefing", len(blocks))
	}
	text := blocks[5]["text"].(map[string]any)["text"].(string)
	if !strings.HasPrefix(text, "*Briefing*") {
		t.Errorf("block 5 = %q, want briefing section", text)
	}
	if len(text) > maxBriefingLen+len("*Briefing*\n\n") {
		t.Errorf("briefing length = %d, expected <= %d", len(text), maxBriefingLen+len("*Briefing*\n\n"))
	}
	if !strings.HasSuffix(text, "...") {
		t.Error("expected truncated briefing to end with ...")
	}
}

func TestBuildMessage_FailedScan(t *testing.T) {
	t.Parallel()

	msg := buildMessage(&scan.Result{
		ID:     "01JN456",
		Status: scan.StatusFailed,
		Error:  "all sources unreachable",
	})
	blocks := msg["blocks"].([]map[string]any)

	headerText := blocks[0]["text"].(map[string]any)["text"].(string)
	if !strings.Contains(headerText, "Scan Failed") {
		t.Errorf("header = %q, want failure title", headerText)
	}
	fieldsText := blocks[2]["text"].(map[string]any)["text"].(string)
	if !strings.Contains(fieldsText, "all sources unreachable") {
		t.Errorf("fields = %q, want error message", fieldsText)
	}
}

func TestBuildMessage_EmptyReport(t *testing.T) {
	t.Parallel()

	rep, err := report.Build(nil, time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	msg := buildMessage(&scan.Result{
		ID:     "01JN789",
		Status: scan.StatusComplete,
		Days:   7,
		Report: rep,
	})
	blocks := msg["blocks"].([]map[string]any)

	eventsText := blocks[4]["text"].(map[string]any)["text"].(string)
	if eventsText != "_No events found._" {
		t.Errorf("events text = %q, want empty-report placeholder", eventsText)
	}
	headerText := blocks[0]["text"].(map[string]any)["text"].(string)
	if !strings.Contains(headerText, "\U0001f7e2") {
		t.Error("empty report should carry green circle")
	}
}

func TestSeverityEmoji(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sev  sira.Severity
		want string
	}{
		{"critical", sira.SeverityCritical, "\U0001f534"},
		{"high", sira.SeverityHigh, "\U0001f534"},
		{"medium", sira.SeverityMedium, "\U0001f7e1"},
		{"low", sira.SeverityLow, "\U0001f7e2"},
		{"empty", sira.Severity(""), "\U0001f7e2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := severityEmoji(tt.sev); got != tt.want {
				t.Errorf("severityEmoji(%q) = %q, want %q", tt.sev, got, tt.want)
			}
		})
	}
}

func FuzzSlackBuild(f *testing.F) {
	f.Add("Model leaks user data", "critical text", 7)
	f.Add("", "", 0)
	f.Add("<@U123> mention *bold* _italic_", "```code``` and <http://example.com|link>", 30)
	f.Add("title\x00\x01\x02", "briefing\ttab\nline", 90)
	f.Add(strings.Repeat("A", 5000), strings.Repeat("x", 10000), 365)

	f.Fuzz(func(t *testing.T, title, briefing string, days int) {
		rep, err := report.Build([]*event.Event{{
			ID:       "fuzz0001",
			Title:    title,
			Layers:   []string{"L4"},
			Metrics:  []string{"MG"},
			Severity: sira.SeverityLow,
			Sector:   "Unspecified",
		}}, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("Build: %v", err)
		}

		result := &scan.Result{
			ID:          "fuzz-id",
			Status:      scan.StatusComplete,
			Days:        days,
			Report:      rep,
			Briefing:    briefing,
			Duration:    1.0,
			CompletedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		}

		// Must not panic
		msg := buildMessage(result)

		// Must produce valid JSON
		data, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("buildMessage produced non-marshalable output: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("buildMessage JSON does not round-trip: %v", err)
		}

		blocks, ok := decoded["blocks"].([]any)
		if !ok {
			t.Fatal("expected blocks array")
		}
		want := 7
		if briefing != "" {
			want = 8
		}
		if len(blocks) != want {
			t.Fatalf("blocks count = %d, want %d", len(blocks), want)
		}
	})
}

func TestSend_NonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal error"))
	}))
	defer srv.Close()

	n := New(srv.URL, log.Nop())
	err := n.Send(context.Background(), completedResult(t))
	if err == nil {
		t.Fatal("expected error on non-OK status")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error = %q, want to contain status code 500", err.Error())
	}
}
