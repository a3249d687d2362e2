package newsapi

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

const defaultBaseURL = "https://newsapi.org/v2"

// Client searches news coverage.
type Client interface {
	SearchEverything(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchRequest parameterizes GET /everything.
type SearchRequest struct {
	Query    string
	Language string
	SortBy   string // relevancy | publishedAt | popularity
	PageSize int
}

// SearchResponse is the response from GET /everything.
type SearchResponse struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

// Article is one news article hit.
type Article struct {
	Source      ArticleSource `json:"source"`
	Author      string        `json:"author"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	PublishedAt *time.Time    `json:"publishedAt"`
	Content     string        `json:"content"`
}

// ArticleSource identifies the outlet behind an article.
type ArticleSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
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

// NewClient creates a news search client.
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

func (c *httpClient) SearchEverything(ctx context.Context, sr SearchRequest) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", sr.Query)
	if sr.Language != "" {
		params.Set("language", sr.Language)
	}
	if sr.SortBy != "" {
		params.Set("sortBy", sr.SortBy)
	}
	if sr.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(sr.PageSize))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "newsapi: create request")
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "newsapi: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "newsapi: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("newsapi: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "newsapi: unmarshal response")
	}

	return &result, nil
}
