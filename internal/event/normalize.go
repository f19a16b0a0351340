package event

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrNoTitle marks a raw item that cannot become an event. Without a title
// there is nothing to classify or deduplicate against, so the item is
// skipped (and counted) rather than carried through the pipeline.
var ErrNoTitle = errors.New("raw item has no title")

const maxSummaryLen = 500

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9\s]`)

// Normalize converts a RawItem into a canonical Event. The title and summary
// are whitespace-trimmed, the summary is capped, and the ID is derived from
// the normalized title plus the published date, so re-running a batch yields
// the same IDs and textually identical reports collapse on the exact path.
// A missing date degrades to a nil PublishedAt, never to an error.
func Normalize(raw RawItem) (*Event, error) {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return nil, ErrNoTitle
	}

	summary := strings.TrimSpace(raw.Summary)
	if len(summary) > maxSummaryLen {
		summary = strings.TrimSpace(Truncate(summary, maxSummaryLen))
	}

	return &Event{
		ID:          ID(title, raw),
		Title:       title,
		Summary:     summary,
		PublishedAt: raw.PublishedAt,
		Sources: []SourceRef{
			{Name: strings.TrimSpace(raw.Source), URL: strings.TrimSpace(raw.URL)},
		},
	}, nil
}

// ID computes the stable event identifier: a short hash over the normalized
// title and the publication day (when known). Day granularity keeps the same
// story stable across same-day re-fetches without gluing together distinct
// stories that reuse a headline weeks apart.
func ID(title string, raw RawItem) string {
	key := NormalizeTitle(title)
	if raw.PublishedAt != nil {
		key += "|" + raw.PublishedAt.UTC().Format("2006-01-02")
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

// NormalizeTitle lowercases a title, strips punctuation and collapses runs
// of whitespace. Both the ID and the fuzzy dedup tokenizer build on it.
func NormalizeTitle(title string) string {
	t := nonAlnumRe.ReplaceAllString(strings.ToLower(title), "")
	return strings.Join(strings.Fields(t), " ")
}

// Truncate cuts s to at most n bytes without splitting a multi-byte rune,
// so truncated summaries stay valid UTF-8 in JSON and markdown output.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// TitleTokens returns the set of normalized title words.
func TitleTokens(title string) map[string]struct{} {
	fields := strings.Fields(NormalizeTitle(title))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
