package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultQlooBaseURL = "https://hackathon.api.qloo.com"
	defaultQlooTimeout = 15 * time.Second

	qlooInsightsPath = "/v2/insights/"
	qlooSearchPath   = "/search"

	// videogameEntityType constrains every taste-graph call to games.
	videogameEntityType = "urn:entity:videogame"

	// explainabilitySignal is the explainability section keyed by seed
	// entities.
	explainabilitySignal = "signal.interests.entities"
)

// QlooClient talks to the taste-graph API: insights for recommendations
// and search for entity resolution.
type QlooClient struct {
	apiKey        string
	baseURL       string
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
	httpClient    *http.Client
}

// QlooOption is a functional option for QlooClient.
type QlooOption func(*QlooClient)

// WithQlooBaseURL sets a custom API base URL.
func WithQlooBaseURL(u string) QlooOption {
	return func(c *QlooClient) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithQlooMaxRetries sets the maximum retry count.
func WithQlooMaxRetries(n int) QlooOption {
	return func(c *QlooClient) { c.maxRetries = n }
}

// WithQlooTimeout sets the HTTP client timeout.
func WithQlooTimeout(d time.Duration) QlooOption {
	return func(c *QlooClient) { c.httpClient.Timeout = d }
}

// WithQlooHTTPClient sets a custom HTTP client. Pass a client whose
// transport is a CachingTransport to get response caching.
func WithQlooHTTPClient(hc *http.Client) QlooOption {
	return func(c *QlooClient) { c.httpClient = hc }
}

// NewQlooClient creates a new taste-graph client.
func NewQlooClient(apiKey string, opts ...QlooOption) *QlooClient {
	c := &QlooClient{
		apiKey:        apiKey,
		baseURL:       defaultQlooBaseURL,
		maxRetries:    0,
		initialDelay:  time.Second,
		backoffFactor: 2.0,
		httpClient:    &http.Client{Timeout: defaultQlooTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// QlooConfig holds configuration for the taste-graph client.
type QlooConfig struct {
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	MaxRetries    int
	InitialDelay  time.Duration
	BackoffFactor float64

	// CacheDir enables on-disk response caching when non-empty.
	CacheDir string
	// CacheTTL bounds cache entry age; zero selects the default.
	CacheTTL time.Duration
}

// DefaultInsightsCacheTTL bounds how long an insights response may be
// served from the cache.
const DefaultInsightsCacheTTL = 15 * time.Minute

// NewQlooClientFromConfig creates a client from configuration.
// Calls are made once by default; MaxRetries > 0 opts in to retries.
func NewQlooClientFromConfig(cfg QlooConfig) *QlooClient {
	opts := []QlooOption{}
	if cfg.BaseURL != "" {
		opts = append(opts, WithQlooBaseURL(cfg.BaseURL))
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, WithQlooMaxRetries(cfg.MaxRetries))
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultQlooTimeout
	}

	hc := &http.Client{Timeout: timeout}
	if cfg.CacheDir != "" {
		ttl := cfg.CacheTTL
		if ttl == 0 {
			ttl = DefaultInsightsCacheTTL
		}
		hc.Transport = NewCachingTransport(cfg.CacheDir, ttl, nil)
	}
	opts = append(opts, WithQlooHTTPClient(hc))

	c := NewQlooClient(cfg.APIKey, opts...)
	if cfg.InitialDelay > 0 {
		c.initialDelay = cfg.InitialDelay
	}
	if cfg.BackoffFactor > 0 {
		c.backoffFactor = cfg.BackoffFactor
	}
	return c
}

// InsightsQuery describes one recommendation lookup.
type InsightsQuery struct {
	EntityIDs     []string
	TagIDs        []string
	ExcludeTagIDs []string
	Take          int
	Page          int
}

// Candidate is the simplified shape of one taste-graph entity.
type Candidate struct {
	Name           string
	EntityID       string
	Description    string
	Affinity       float64
	Explainability map[string]float64
	SteamAppID     int64
	Metacritic     float64
	Raw            json.RawMessage
}

// Insights fetches ranked candidates for a set of seed entities, with
// per-seed explainability weights included.
func (c *QlooClient) Insights(ctx context.Context, q InsightsQuery) ([]Candidate, error) {
	params := url.Values{}
	params.Set("filter.type", videogameEntityType)
	params.Set("signal.interests.entities", strings.Join(q.EntityIDs, ","))
	params.Set("feature.explainability", "true")
	params.Set("take", strconv.Itoa(q.Take))
	params.Set("page", strconv.Itoa(q.Page))
	if len(q.TagIDs) > 0 {
		params.Set("filter.tags", strings.Join(q.TagIDs, ","))
	}
	if len(q.ExcludeTagIDs) > 0 {
		params.Set("filter.exclude.tags", strings.Join(q.ExcludeTagIDs, ","))
	}

	var resp struct {
		Results struct {
			Entities []json.RawMessage `json:"entities"`
		} `json:"results"`
	}
	if err := c.get(ctx, "insights", qlooInsightsPath, params, &resp); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(resp.Results.Entities))
	for _, raw := range resp.Results.Entities {
		candidates = append(candidates, simplifyEntity(raw))
	}
	return candidates, nil
}

// Search resolves free-text game titles to taste-graph entities.
func (c *QlooClient) Search(ctx context.Context, query string) ([]Candidate, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("types", videogameEntityType)

	var resp struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := c.get(ctx, "search", qlooSearchPath, params, &resp); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(resp.Results))
	for _, raw := range resp.Results {
		candidates = append(candidates, simplifyEntity(raw))
	}
	return candidates, nil
}

func (c *QlooClient) get(ctx context.Context, operation, path string, params url.Values, out any) error {
	return c.withRetry(ctx, func() error {
		u := c.baseURL + path + "?" + params.Encode()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Api-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("execute request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return NewProviderError(operation, resp.StatusCode, strings.TrimSpace(string(raw)), nil)
		}

		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
		return nil
	})
}

// withRetry executes the function with exponential backoff retry.
func (c *QlooClient) withRetry(ctx context.Context, fn func() error) error {
	delay := c.initialDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !isRetryableStatus(lastErr) {
			return lastErr
		}

		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * c.backoffFactor)
			}
		}
	}

	if c.maxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// qlooEntity is the upstream entity shape. External store references
// arrive either as an object or as a one-element array of objects, so
// they stay raw until flattened.
type qlooEntity struct {
	Name       string `json:"name"`
	EntityID   string `json:"entity_id"`
	Properties struct {
		Description string                     `json:"description"`
		External    map[string]json.RawMessage `json:"external"`
	} `json:"properties"`
	Query struct {
		Affinity       float64                    `json:"affinity"`
		Explainability map[string]json.RawMessage `json:"explainability"`
	} `json:"query"`
}

// simplifyEntity flattens one raw entity into a Candidate. Parsing is
// forgiving: missing or malformed sections leave zero values rather
// than failing the whole response.
func simplifyEntity(raw json.RawMessage) Candidate {
	var e qlooEntity
	_ = json.Unmarshal(raw, &e)

	cand := Candidate{
		Name:           e.Name,
		EntityID:       e.EntityID,
		Description:    e.Properties.Description,
		Affinity:       e.Query.Affinity,
		Explainability: map[string]float64{},
		Raw:            raw,
	}

	if steam, ok := firstExternal(e.Properties.External["steam"]); ok {
		cand.SteamAppID = parseExternalID(steam["id"])
	}
	if meta, ok := firstExternal(e.Properties.External["metacritic"]); ok {
		if rating, ok := meta["critic_rating"].(float64); ok {
			cand.Metacritic = rating
		}
	}

	if rawSignals, ok := e.Query.Explainability[explainabilitySignal]; ok {
		var signals []struct {
			EntityID string  `json:"entity_id"`
			Score    float64 `json:"score"`
		}
		if err := json.Unmarshal(rawSignals, &signals); err == nil {
			for _, s := range signals {
				cand.Explainability[s.EntityID] = s.Score
			}
		}
	}

	return cand
}

// firstExternal returns the first object of an external reference that
// may be either a single object or an array of objects.
func firstExternal(raw json.RawMessage) (map[string]any, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj, true
	}

	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0], true
	}

	return nil, false
}

// parseExternalID coerces an external store ID, which arrives as either
// a JSON string or number, into an int64. Returns 0 when unparseable.
func parseExternalID(v any) int64 {
	switch t := v.(type) {
	case string:
		id, _ := strconv.ParseInt(t, 10, 64)
		return id
	case float64:
		return int64(t)
	default:
		return 0
	}
}
