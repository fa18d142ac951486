// Package papersources provides the interface and shared plumbing for the
// external academic paper APIs the search service falls back across.
//
// Each provider (OpenAlex, arXiv) implements PaperSource and maps its own
// response format onto domain.Paper. Sources are registered in priority order
// in a Registry; the search orchestrator walks that order until one succeeds.
//
// Example usage:
//
//	source := openalex.New(cfg, logger, metrics)
//	result, err := source.Search(ctx, papersources.SearchParams{
//		Query:      "CRISPR gene editing",
//		MaxResults: 10,
//	})
package papersources

import (
	"context"

	"github.com/helixir/paper-search-service/internal/domain"
)

// SearchParams defines the parameters for a single-page paper search.
type SearchParams struct {
	// Query is the search query string (required).
	Query string

	// MaxResults is the page size requested from the provider.
	// The value is forwarded as-is; callers are responsible for clamping.
	MaxResults int
}

// PaperSource defines the interface that all paper source clients must implement.
type PaperSource interface {
	// Search issues exactly one request to the provider and returns the
	// normalized result. Any failure is reported as a *domain.ProviderError.
	Search(ctx context.Context, params SearchParams) (*domain.SearchResult, error)

	// SourceType returns the type identifier for this paper source.
	SourceType() domain.SourceType

	// Name returns a human-readable name for logging.
	Name() string

	// IsEnabled reports whether the source takes part in searches.
	IsEnabled() bool
}
