package scholar

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

const defaultBaseURL = "https://api.semanticscholar.org/graph/v1"

// Client searches academic literature.
type Client interface {
	SearchPapers(ctx context.Context, query string, limit int) (*SearchResponse, error)
}

// SearchResponse is the response from GET /paper/search.
type SearchResponse struct {
	Total int     `json:"total"`
	Data  []Paper `json:"data"`
}

// Paper is one academic paper hit.
type Paper struct {
	PaperID       string `json:"paperId"`
	Title         string `json:"title"`
	Abstract      string `json:"abstract"`
	URL           string `json:"url"`
	Venue         string `json:"venue"`
	Year          int    `json:"year"`
	CitationCount int    `json:"citationCount"`
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

// NewClient creates an academic search client. The API key is optional.
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

func (c *httpClient) SearchPapers(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("fields", "title,abstract,url,venue,year,citationCount")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/paper/search?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "scholar: create request")
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "scholar: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "scholar: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("scholar: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "scholar: unmarshal response")
	}

	return &result, nil
}
