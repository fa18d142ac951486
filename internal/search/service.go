// Package search orchestrates a paper search: it answers from the cache when it
// can and otherwise walks the configured sources in priority order until one
// of them succeeds.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/helixir/paper-search-service/internal/cache"
	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/observability"
	"github.com/helixir/paper-search-service/internal/papersources"
)

// Service is the search orchestrator. It is safe for concurrent use.
type Service struct {
	cache   *cache.Cache
	sources []papersources.PaperSource
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewService creates a search service. sources are tried in the given order,
// typically papersources.Registry.EnabledSources. metrics may be nil.
func NewService(c *cache.Cache, sources []papersources.PaperSource, logger zerolog.Logger, metrics *observability.Metrics) *Service {
	ordered := make([]papersources.PaperSource, len(sources))
	copy(ordered, sources)

	return &Service{
		cache:   c,
		sources: ordered,
		logger:  logger.With().Str("component", "search").Logger(),
		metrics: metrics,
	}
}

// Search returns papers for query from the first source that succeeds.
//
// A fresh cached result is returned without contacting any source. When every
// source fails, the diagnostic failure result is returned together with a
// *domain.AllProvidersFailedError. Failures are never cached.
func (s *Service) Search(ctx context.Context, query string, limit int) (*domain.SearchResult, error) {
	logger := observability.WithSearchContext(observability.LoggerWithContext(ctx, s.logger), query, limit)

	if cached, ok := s.cache.Get(query, limit); ok {
		if s.metrics != nil {
			s.metrics.RecordCacheHit()
		}
		logger.Debug().Str("source", cached.Source.String()).Msg("serving cached result")
		return cached, nil
	}
	if s.metrics != nil {
		s.metrics.RecordCacheMiss()
	}

	params := papersources.SearchParams{Query: query, MaxResults: limit}

	var errs []error
	for _, src := range s.sources {
		name := src.SourceType().String()
		srcLogger := observability.WithSourceContext(logger, name, src.Name())

		result, err := s.searchSource(ctx, src, params)
		if err == nil {
			s.cache.Put(query, limit, result)
			srcLogger.Info().Int("count", result.Count).Msg("search succeeded")
			return result, nil
		}

		srcLogger.Warn().Err(err).Msg("source search failed, trying next source")
		if s.metrics != nil {
			s.metrics.RecordFallback(name)
		}
		errs = append(errs, err)

		if ctx.Err() != nil {
			break
		}
	}

	if s.metrics != nil {
		s.metrics.RecordAllProvidersFailed()
	}
	allErr := domain.NewAllProvidersFailedError(errs)
	logger.Error().Err(allErr).Msg("all search methods failed")

	return domain.NewAllProvidersFailedResult(), allErr
}

// searchSource runs a single source and converts an unsuccessful result into
// an error so the caller only has one failure path.
func (s *Service) searchSource(ctx context.Context, src papersources.PaperSource, params papersources.SearchParams) (*domain.SearchResult, error) {
	name := src.SourceType().String()
	if s.metrics != nil {
		s.metrics.RecordSearchStarted(name)
	}

	start := time.Now()
	result, err := src.Search(ctx, params)
	elapsed := time.Since(start).Seconds()

	if err == nil {
		switch {
		case result == nil:
			err = domain.NewProviderError(src.SourceType(), 0, "empty result", nil)
		case !result.Success:
			err = domain.NewProviderError(src.SourceType(), 0, fmt.Sprintf("unsuccessful result: %s", result.Error), nil)
		}
	}
	if err != nil {
		var provErr *domain.ProviderError
		if !errors.As(err, &provErr) {
			err = domain.NewProviderError(src.SourceType(), 0, "", err)
		}
		if s.metrics != nil {
			s.metrics.RecordSearchFailed(name, elapsed)
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordSearchCompleted(name, result.Count, elapsed)
	}
	return result, nil
}

// Sources returns the source types in the order they are tried.
func (s *Service) Sources() []string {
	names := make([]string, 0, len(s.sources))
	for _, src := range s.sources {
		names = append(names, src.SourceType().String())
	}
	return names
}
