package azsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"manuals-rag/internal/domain"
)

// selectFields are the index fields the pipeline consumes; everything else
// stays server-side to keep responses small.
const selectFields = "content,metadata_storage_name,metadata_storage_path,pageNumber"

// Client queries an Azure AI Search index over its REST interface.
type Client struct {
	endpoint   string
	apiKey     string
	indexName  string
	apiVersion string
	httpClient *http.Client
}

// NewClient constructs a search client for one index. The http.Client should
// come from the shared pool so connections are reused across requests.
func NewClient(endpoint, apiKey, indexName, apiVersion string, httpClient *http.Client) *Client {
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		indexName:  indexName,
		apiVersion: apiVersion,
		httpClient: httpClient,
	}
}

type searchRequest struct {
	Search string `json:"search"`
	Top    int    `json:"top"`
	Select string `json:"select"`
}

type searchResponse struct {
	Value []searchHit `json:"value"`
}

type searchHit struct {
	Score               float64 `json:"@search.score"`
	Content             string  `json:"content"`
	MetadataStorageName string  `json:"metadata_storage_name"`
	MetadataStoragePath string  `json:"metadata_storage_path"`
	PageNumber          *int    `json:"pageNumber"`
}

// Search runs a full-text query and returns at most topK passages, ranked
// descending by relevance. Backend failures come back as classified gateway
// errors, never as silent empty results.
func (c *Client) Search(ctx context.Context, query string, topK int) ([]domain.RetrievedPassage, error) {
	const op = "azsearch.search"

	payload, err := json.Marshal(searchRequest{
		Search: query,
		Top:    topK,
		Select: selectFields,
	})
	if err != nil {
		return nil, domain.NewGatewayError(domain.GatewayErrorBadResponse, op, fmt.Errorf("failed to marshal search request: %w", err))
	}

	endpoint := fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s",
		c.endpoint, url.PathEscape(c.indexName), url.QueryEscape(c.apiVersion))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, domain.NewGatewayError(domain.GatewayErrorUnavailable, op, fmt.Errorf("failed to create search request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewGatewayError(domain.GatewayErrorUnavailable, op, fmt.Errorf("search request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, domain.NewGatewayError(domain.GatewayErrorRateLimited, op,
			fmt.Errorf("search returned status %d (rate limit)", resp.StatusCode))
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, domain.NewGatewayError(domain.GatewayErrorAuth, op,
			fmt.Errorf("search returned status %d: check endpoint and api key", resp.StatusCode))
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, domain.NewGatewayError(domain.GatewayErrorUnavailable, op,
			fmt.Errorf("search returned status %d: %s", resp.StatusCode, string(body)))
	}

	var sResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sResp); err != nil {
		return nil, domain.NewGatewayError(domain.GatewayErrorBadResponse, op, fmt.Errorf("failed to decode search response: %w", err))
	}

	passages := make([]domain.RetrievedPassage, len(sResp.Value))
	for i, hit := range sResp.Value {
		passages[i] = domain.RetrievedPassage{
			Content:    hit.Content,
			Source:     hit.MetadataStorageName,
			PageNumber: hit.PageNumber,
			Score:      hit.Score,
			Path:       hit.MetadataStoragePath,
		}
	}

	return passages, nil
}

var _ domain.SearchClient = (*Client)(nil)
