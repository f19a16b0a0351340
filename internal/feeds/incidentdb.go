package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/purnamedha/sirascan/internal/event"
)

const (
	incidentDBEndpoint = "https://incidentdatabase.ai"
	incidentDBLimit    = 20
	incidentDBTimeout  = 8 * time.Second
)

// IncidentDB pulls recent incidents from the AI Incident Database JSON API.
// Unlike the RSS sources its items are curated incidents, so the relevance
// gate does not apply; dates arrive as plain strings and degrade to unknown
// when unparseable.
type IncidentDB struct {
	endpoint   string
	httpClient *http.Client
}

// NewIncidentDB creates the source. Empty endpoint uses the public API.
func NewIncidentDB(endpoint string) *IncidentDB {
	if endpoint == "" {
		endpoint = incidentDBEndpoint
	}
	return &IncidentDB{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: incidentDBTimeout},
	}
}

func (s *IncidentDB) Name() string { return "AI Incident Database" }

type incidentDBResponse struct {
	Incidents []struct {
		IncidentID  int    `json:"incident_id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Date        string `json:"date"`
	} `json:"incidents"`
}

// Fetch queries the incidents API. The cutoff is not applied here: the
// database reports historical incidents whose value does not expire with
// the scan window.
func (s *IncidentDB) Fetch(ctx context.Context, _ time.Time) ([]event.RawItem, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	u.Path = path.Join(u.Path, "api/incidents")
	q := u.Query()
	q.Set("limit", fmt.Sprintf("%d", incidentDBLimit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.httpClient.Do(req) //nolint:gosec // G704: endpoint is from trusted config, not user input
	if err != nil {
		return nil, fmt.Errorf("incidentdb query failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20)) // 5 MB
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("incidentdb returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed incidentDBResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	out := make([]event.RawItem, 0, len(parsed.Incidents))
	for _, inc := range parsed.Incidents {
		var published *time.Time
		if t, err := time.Parse("2006-01-02", inc.Date); err == nil {
			published = &t
		}
		out = append(out, event.RawItem{
			Title:       inc.Title,
			Summary:     inc.Description,
			URL:         fmt.Sprintf("https://incidentdatabase.ai/cite/%d", inc.IncidentID),
			Source:      s.Name(),
			PublishedAt: published,
		})
	}
	return out, nil
}
