package govstat

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.data.gov/stats/v1"

// Client searches government statistical publications.
type Client interface {
	Search(ctx context.Context, query string, limit int) (*SearchResponse, error)
}

// SearchResponse is the response from GET /publications/search.
type SearchResponse struct {
	Publications []Publication `json:"publications"`
	Total        int           `json:"total"`
}

// Publication is one statistical publication hit.
type Publication struct {
	Title       string     `json:"title"`
	Agency      string     `json:"agency"`
	Abstract    string     `json:"abstract"`
	URL         string     `json:"url"`
	PublishedAt *time.Time `json:"published_at"`
	Dataset     string     `json:"dataset,omitempty"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a government statistics search client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/publications/search?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "govstat: create request")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "govstat: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "govstat: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("govstat: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "govstat: unmarshal response")
	}

	return &result, nil
}
