package feeds

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/purnamedha/sirascan/internal/event"
)

const (
	rssTimeout     = 8 * time.Second
	maxItemsList   = 15
	maxSummaryHTML = 500
)

// Feed names one RSS feed to scan.
type Feed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// DefaultFeeds returns the built-in feed list.
func DefaultFeeds() []Feed {
	return []Feed{
		{Name: "AI Incident Database", URL: "https://incidentdatabase.ai/rss.xml"},
		{Name: "TechCrunch AI", URL: "https://techcrunch.com/category/artificial-intelligence/feed/"},
		{Name: "Ars Technica AI", URL: "https://feeds.arstechnica.com/arstechnica/technology-lab"},
		{Name: "The Register AI", URL: "https://www.theregister.com/software/ai_ml/headlines.atom"},
		{Name: "MIT Tech Review", URL: "https://www.technologyreview.com/feed/"},
		{Name: "Wired AI", URL: "https://www.wired.com/feed/tag/ai/latest/rss"},
		{Name: "The Verge AI", URL: "https://www.theverge.com/rss/ai-artificial-intelligence/index.xml"},
		{Name: "Reuters Tech", URL: "https://www.reutersagency.com/feed/?best-topics=tech"},
		{Name: "BBC Tech", URL: "http://feeds.bbci.co.uk/news/technology/rss.xml"},
	}
}

// FeedsFromYAML parses an operator feeds file: a YAML list of {name, url}.
// The file replaces the default list entirely.
func FeedsFromYAML(data []byte) ([]Feed, error) {
	var out []Feed
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse feeds file: %w", err)
	}
	for i, f := range out {
		if f.Name == "" || f.URL == "" {
			return nil, fmt.Errorf("feeds file: entry %d missing name or url", i)
		}
	}
	return out, nil
}

// RSS fetches and filters one RSS/Atom feed.
type RSS struct {
	feed   Feed
	parser *gofeed.Parser
}

// NewRSS creates an RSS source for the given feed.
func NewRSS(feed Feed) *RSS {
	p := gofeed.NewParser()
	p.UserAgent = UserAgent
	p.Client = &http.Client{Timeout: rssTimeout}
	return &RSS{feed: feed, parser: p}
}

// Name returns the feed's display name, which becomes the source name on
// every raw item.
func (r *RSS) Name() string { return r.feed.Name }

// Fetch parses the feed and returns relevant items published since cutoff.
func (r *RSS) Fetch(ctx context.Context, cutoff time.Time) ([]event.RawItem, error) {
	feed, err := r.parser.ParseURLWithContext(r.feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", r.feed.Name, err)
	}

	items := feed.Items
	if len(items) > maxItemsList {
		items = items[:maxItemsList]
	}

	var out []event.RawItem
	for _, it := range items {
		raw, ok := convertItem(it, r.feed.Name, cutoff)
		if !ok {
			continue
		}
		out = append(out, raw)
	}
	return out, nil
}

// convertItem turns one feed entry into a RawItem, applying the relevance
// gate and the cutoff. ok is false when the entry should be skipped.
func convertItem(it *gofeed.Item, source string, cutoff time.Time) (event.RawItem, bool) {
	summary := event.Truncate(stripHTML(firstNonEmpty(it.Description, it.Content)), maxSummaryHTML)

	if !relevant(it.Title + " " + summary) {
		return event.RawItem{}, false
	}

	published := it.PublishedParsed
	if published == nil {
		published = it.UpdatedParsed
	}
	if published != nil && published.Before(cutoff) {
		return event.RawItem{}, false
	}

	return event.RawItem{
		Title:       it.Title,
		Summary:     summary,
		URL:         it.Link,
		Source:      source,
		PublishedAt: published,
	}, true
}

// stripHTML reduces feed summary markup to plain text.
func stripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(strings.Join(strings.Fields(doc.Text()), " "))
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
