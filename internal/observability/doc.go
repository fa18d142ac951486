// Package observability provides logging and metrics support for the paper
// search service.
//
// # Logging
//
// Create a logger from configuration:
//
//	logger := observability.NewLogger(cfg.Logging)
//	logger = observability.WithSearchContext(logger, "crispr", 10)
//
// # Metrics
//
//	metrics := observability.NewMetrics("paper_search")
//	metrics.RecordCacheHit()
//	metrics.RecordSearchCompleted("openalex", 10, 0.42)
//
// Metrics also implements papersources.RequestObserver, so it can be handed to
// the provider HTTP clients directly.
//
// # Context Helpers
//
//	ctx = observability.WithRequestID(ctx, requestID)
//	reqID := observability.RequestIDFromContext(ctx)
//
// # Standard Fields
//
//   - service: always paper-search-service
//   - request_id: correlation ID of the inbound request
//   - query: normalized search query
//   - limit: requested page size
//   - source: paper source (openalex, arxiv)
//   - provider: display name of the paper source
//
// All components are safe for concurrent use from multiple goroutines.
package observability
