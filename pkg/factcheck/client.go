package factcheck

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

const defaultBaseURL = "https://factchecktools.googleapis.com/v1alpha1"

// Client searches a claim-review directory for professional fact checks.
type Client interface {
	SearchClaims(ctx context.Context, query, languageCode string, pageSize int) (*SearchResponse, error)
}

// SearchResponse is the response from GET /claims:search.
type SearchResponse struct {
	Claims []ReviewedClaim `json:"claims"`
}

// ReviewedClaim is a claim known to the directory, with its published reviews.
type ReviewedClaim struct {
	Text        string        `json:"text"`
	Claimant    string        `json:"claimant"`
	ClaimDate   string        `json:"claimDate"`
	ClaimReview []ClaimReview `json:"claimReview"`
}

// ClaimReview is one fact-checker's published review of a claim.
type ClaimReview struct {
	Publisher     ReviewPublisher `json:"publisher"`
	URL           string          `json:"url"`
	Title         string          `json:"title"`
	ReviewDate    string          `json:"reviewDate"`
	TextualRating string          `json:"textualRating"`
	LanguageCode  string          `json:"languageCode"`
}

// ReviewPublisher identifies the organization behind a review.
type ReviewPublisher struct {
	Name string `json:"name"`
	Site string `json:"site"`
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

// NewClient creates a claim-review directory client.
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

func (c *httpClient) SearchClaims(ctx context.Context, query, languageCode string, pageSize int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)
	if languageCode != "" {
		params.Set("languageCode", languageCode)
	}
	if pageSize > 0 {
		params.Set("pageSize", strconv.Itoa(pageSize))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/claims:search?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "factcheck: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "factcheck: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "factcheck: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("factcheck: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "factcheck: unmarshal response")
	}

	return &result, nil
}
