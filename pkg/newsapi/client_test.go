package newsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchEverything(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/everything", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
			assert.Equal(t, "vaccine efficacy", r.URL.Query().Get("q"))
			assert.Equal(t, "en", r.URL.Query().Get("language"))
			assert.Equal(t, "relevancy", r.URL.Query().Get("sortBy"))
			assert.Equal(t, "5", r.URL.Query().Get("pageSize"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"status": "ok",
				"totalResults": 1,
				"articles": [{
					"source": {"id": "reuters", "name": "Reuters"},
					"title": "Study confirms vaccine efficacy",
					"description": "A large trial found the vaccine effective.",
					"url": "https://reuters.example/vaccine",
					"publishedAt": "2026-01-15T08:00:00Z"
				}]
			}`))
		}))
		defer srv.Close()

		client := NewClient("test-key", WithBaseURL(srv.URL))
		resp, err := client.SearchEverything(context.Background(), SearchRequest{
			Query:    "vaccine efficacy",
			Language: "en",
			SortBy:   "relevancy",
			PageSize: 5,
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Status)
		require.Len(t, resp.Articles, 1)
		assert.Equal(t, "Reuters", resp.Articles[0].Source.Name)
		require.NotNil(t, resp.Articles[0].PublishedAt)
		assert.Equal(t, 2026, resp.Articles[0].PublishedAt.Year())
	})

	t.Run("optional params omitted", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.False(t, r.URL.Query().Has("language"))
			assert.False(t, r.URL.Query().Has("sortBy"))
			assert.False(t, r.URL.Query().Has("pageSize"))
			w.Write([]byte(`{"status": "ok", "totalResults": 0, "articles": []}`))
		}))
		defer srv.Close()

		client := NewClient("test-key", WithBaseURL(srv.URL))
		resp, err := client.SearchEverything(context.Background(), SearchRequest{Query: "anything"})
		require.NoError(t, err)
		assert.Empty(t, resp.Articles)
	})

	t.Run("non-200 status errors", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"status": "error", "code": "rateLimited"}`))
		}))
		defer srv.Close()

		client := NewClient("test-key", WithBaseURL(srv.URL))
		_, err := client.SearchEverything(context.Background(), SearchRequest{Query: "anything"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})
}
