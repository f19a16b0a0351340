package feeds

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/purnamedha/sirascan/internal/event"
)

const (
	googleNewsEndpoint = "https://news.google.com/rss/search"
	maxItemsPerQuery   = 10
)

// defaultQueries are the incident search queries issued against the news
// search endpoint.
var defaultQueries = []string{
	"AI failure disaster",
	"AI lawsuit sued bias",
	"AI chatbot wrong misleading",
	"AI workers replaced rehire",
	"AI hallucination company error",
	"AI data breach leak",
	"AI patient harm healthcare",
	"autonomous vehicle crash recall",
}

// GoogleNews issues incident search queries against the Google News RSS
// search endpoint and merges the results into one item batch.
type GoogleNews struct {
	endpoint string
	queries  []string
	parser   *gofeed.Parser
}

// NewGoogleNews creates the source. Empty endpoint or queries use the
// defaults; a custom endpoint is mainly for tests.
func NewGoogleNews(endpoint string, queries []string) *GoogleNews {
	if endpoint == "" {
		endpoint = googleNewsEndpoint
	}
	if len(queries) == 0 {
		queries = defaultQueries
	}
	p := gofeed.NewParser()
	p.UserAgent = UserAgent
	p.Client = &http.Client{Timeout: rssTimeout}
	return &GoogleNews{endpoint: endpoint, queries: queries, parser: p}
}

func (g *GoogleNews) Name() string { return "Google News" }

// Fetch runs every query and concatenates the relevant items. A failing
// query does not abort the rest; the joined error is returned alongside
// whatever was fetched.
func (g *GoogleNews) Fetch(ctx context.Context, cutoff time.Time) ([]event.RawItem, error) {
	var out []event.RawItem
	var errs []error

	for _, query := range g.queries {
		feed, err := g.parser.ParseURLWithContext(g.queryURL(query), ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("query %q: %w", query, err))
			continue
		}
		items := feed.Items
		if len(items) > maxItemsPerQuery {
			items = items[:maxItemsPerQuery]
		}
		for _, it := range items {
			raw, ok := convertItem(it, g.Name(), cutoff)
			if !ok {
				continue
			}
			out = append(out, raw)
		}
	}
	return out, errors.Join(errs...)
}

func (g *GoogleNews) queryURL(query string) string {
	q := url.Values{}
	q.Set("q", query)
	q.Set("hl", "en")
	q.Set("gl", "US")
	q.Set("ceid", "US:en")
	return g.endpoint + "?" + q.Encode()
}
