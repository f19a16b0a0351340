// Package feeds acquires raw news items for the scan pipeline. Each Source
// fetches one upstream (an RSS feed, the Google News search endpoint, the
// AI Incident Database API) and yields RawItems; the pipeline core never
// performs I/O itself and consumes only the materialized batch.
package feeds

import (
	"context"
	"regexp"
	"time"

	"github.com/purnamedha/sirascan/internal/event"
)

// UserAgent identifies the scanner to upstream feed servers.
const UserAgent = "MedhaAudit/1.0 (AI Risk Research; contact@purna-medha.ai)"

// Source is one upstream the scanner can pull raw items from. Fetch returns
// items published at or after cutoff (items with unknown dates are kept —
// the pipeline degrades their date to unknown rather than dropping them).
type Source interface {
	Name() string
	Fetch(ctx context.Context, cutoff time.Time) ([]event.RawItem, error)
}

// Registry holds the registered sources in registration order, so a scan
// always visits them in the same sequence.
type Registry struct {
	sources []Source
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a source.
func (r *Registry) Register(s Source) {
	r.sources = append(r.sources, s)
}

// Sources returns the registered sources in registration order.
func (r *Registry) Sources() []Source {
	return r.sources
}

// aiRe and disasterRe implement the relevance gate: an item must read as
// both AI-related and failure-related to enter the pipeline.
var aiRe = regexp.MustCompile(`(?i)\b(ai|artificial\s+intelligence|machine\s+learn|deep\s+learn|` +
	`chatbot|llm|gpt|gemini|claude|copilot|openai|anthropic|` +
	`automat(ed|ion)|algorithm|neural\s+net|generat(ive|or)|` +
	`self.driv|autonom(ous|y)|robot(ic)?)\b`)

var disasterRe = regexp.MustCompile(`(?i)fail|error|wrong|lawsuit|sued|ban|` +
	`recall|crash|bias|discriminat|hallucin|` +
	`leak|breach|harm|death|kill|injur|` +
	`fired|laid\s*off|replac|mislead|scam|` +
	`fraud|fake|deepfake|backtrack|revers|` +
	`abandon|shut\s*down|apologize|apologise|` +
	`controversy|backlash|outrage|investigate|` +
	`probe|fine[ds]?\b|penalt|violat|` +
	`inaccura|fabricat|misinform|dangerous|` +
	`unsafe|risk|vulnerab|exploit`)

// relevant reports whether combined item text passes the AI + failure gate.
func relevant(text string) bool {
	return aiRe.MatchString(text) && disasterRe.MatchString(text)
}
