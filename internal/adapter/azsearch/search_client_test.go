package azsearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"manuals-rag/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, "test-key", "manuals-index", "2023-11-01", &http.Client{Timeout: 5 * time.Second})
}

func TestSearchClient_Search_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/indexes/manuals-index/docs/search", r.URL.Path)
		assert.Equal(t, "2023-11-01", r.URL.Query().Get("api-version"))
		assert.Equal(t, "test-key", r.Header.Get("api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "calibración del monitor", req.Search)
		assert.Equal(t, 3, req.Top)

		page := 42
		resp := searchResponse{
			Value: []searchHit{
				{Score: 0.95, Content: "Pasos de calibración...", MetadataStorageName: "monitor-x100.pdf", MetadataStoragePath: "docs/monitor-x100.pdf", PageNumber: &page},
				{Score: 0.61, Content: "Tabla de mantenimiento...", MetadataStorageName: "mantenimiento.pdf"},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	passages, err := client.Search(context.Background(), "calibración del monitor", 3)
	require.NoError(t, err)

	require.Len(t, passages, 2)
	assert.Equal(t, "monitor-x100.pdf", passages[0].Source)
	assert.Equal(t, "Pasos de calibración...", passages[0].Content)
	assert.Equal(t, 0.95, passages[0].Score)
	assert.Equal(t, "docs/monitor-x100.pdf", passages[0].Path)
	require.NotNil(t, passages[0].PageNumber)
	assert.Equal(t, 42, *passages[0].PageNumber)

	assert.Nil(t, passages[1].PageNumber)
	assert.Empty(t, passages[1].Path)
	// Relevance order is the server's order, untouched.
	assert.Greater(t, passages[0].Score, passages[1].Score)
}

func TestSearchClient_Search_EmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value":[]}`))
	}))
	defer server.Close()

	passages, err := newTestClient(server.URL).Search(context.Background(), "nada", 3)
	require.NoError(t, err)
	assert.Empty(t, passages)
}

func TestSearchClient_Search_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Search(context.Background(), "q", 3)
	require.Error(t, err)

	var gwErr *domain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, domain.GatewayErrorRateLimited, gwErr.Kind)
	assert.True(t, domain.IsRateLimited(err))
}

func TestSearchClient_Search_AuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Search(context.Background(), "q", 3)
	require.Error(t, err)

	var gwErr *domain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, domain.GatewayErrorAuth, gwErr.Kind)
}

func TestSearchClient_Search_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("index unavailable"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Search(context.Background(), "q", 3)
	require.Error(t, err)

	var gwErr *domain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, domain.GatewayErrorUnavailable, gwErr.Kind)
	assert.Contains(t, err.Error(), "index unavailable")
}

func TestSearchClient_Search_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Search(context.Background(), "q", 3)
	require.Error(t, err)

	var gwErr *domain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, domain.GatewayErrorBadResponse, gwErr.Kind)
}

func TestSearchClient_Search_ConnectionRefused(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "key", "idx", "2023-11-01", &http.Client{Timeout: time.Second})

	_, err := client.Search(context.Background(), "q", 3)
	require.Error(t, err)

	var gwErr *domain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, domain.GatewayErrorUnavailable, gwErr.Kind)
}
