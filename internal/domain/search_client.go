package domain

import "context"

// RetrievedPassage represents a single ranked hit from the manual index.
type RetrievedPassage struct {
	// Content is the extracted text of the passage.
	Content string
	// Source is the display name of the originating manual (PDF file name).
	Source string
	// PageNumber is the page the passage came from, when the index knows it.
	PageNumber *int
	// Score is the relevance score assigned by the search backend, higher = more relevant.
	Score float64
	// Path is the storage path of the source document, when available.
	Path string
}

// SearchClient defines the interface for querying the external manual index
// (e.g. Azure AI Search). Implementations return hits ordered by descending
// relevance, at most topK of them, and must surface backend failures as
// errors so callers can tell "no matches" apart from "backend down".
type SearchClient interface {
	Search(ctx context.Context, query string, topK int) ([]RetrievedPassage, error)
}
