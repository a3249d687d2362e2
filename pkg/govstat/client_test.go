package govstat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/publications/search", r.URL.Path)
			assert.Equal(t, "unemployment rate", r.URL.Query().Get("q"))
			assert.Equal(t, "4", r.URL.Query().Get("limit"))
			assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

			w.Write([]byte(`{
				"total": 1,
				"publications": [{
					"title": "Employment Situation Summary",
					"agency": "Bureau of Labor Statistics",
					"abstract": "Monthly unemployment statistics.",
					"url": "https://bls.example/empsit"
				}]
			}`))
		}))
		defer srv.Close()

		client := NewClient("test-key", WithBaseURL(srv.URL))
		resp, err := client.Search(context.Background(), "unemployment rate", 4)
		require.NoError(t, err)
		require.Len(t, resp.Publications, 1)
		assert.Equal(t, "Bureau of Labor Statistics", resp.Publications[0].Agency)
	})

	t.Run("no key omits header", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("X-Api-Key"))
			w.Write([]byte(`{"total": 0, "publications": []}`))
		}))
		defer srv.Close()

		client := NewClient("", WithBaseURL(srv.URL))
		_, err := client.Search(context.Background(), "anything", 0)
		require.NoError(t, err)
	})

	t.Run("non-200 status errors", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewClient("test-key", WithBaseURL(srv.URL))
		_, err := client.Search(context.Background(), "anything", 4)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
	})
}
