package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/helixir/paper-search-service/internal/domain"
)

const msgInternalError = "Internal server error"

// searchRequest holds the validated query parameters of a search.
type searchRequest struct {
	Query string
	Limit int
}

// searchPapers handles GET /api/search/papers.
func (s *Server) searchPapers(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseSearchRequest(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	// A client that disconnects does not cancel the provider calls, so a
	// result still completes and lands in the cache.
	ctx := context.WithoutCancel(r.Context())

	result, err := s.searcher.Search(ctx, req.Query, req.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrAllProvidersFailed) && result != nil {
			writeJSON(w, http.StatusInternalServerError, newSearchResponse(result))
			return
		}
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newSearchResponse(result))
}

// parseSearchRequest resolves the limit, then trims and validates the query.
// A limit above MaxLimit is clamped; a limit below 1 is passed through. A
// limit that is not an integer is an internal error, not a validation error.
func (s *Server) parseSearchRequest(r *http.Request) (searchRequest, error) {
	params := r.URL.Query()

	limit := s.limits.DefaultLimit
	if raw := params.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return searchRequest{}, fmt.Errorf("parsing limit: %w", err)
		}
		limit = parsed
	}
	if limit > s.limits.MaxLimit {
		limit = s.limits.MaxLimit
	}

	query := strings.TrimSpace(params.Get("query"))
	tag := fmt.Sprintf("required,min=%d", s.limits.MinQueryLength)
	if err := s.validate.Var(query, tag); err != nil {
		return searchRequest{}, domain.NewValidationError("query",
			fmt.Sprintf("Query must be at least %d characters long", s.limits.MinQueryLength))
	}

	return searchRequest{Query: query, Limit: limit}, nil
}

// writeDomainError maps domain errors to HTTP status codes and writes a JSON
// error response. Internal error details are logged, never sent to clients.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Message)
		} else {
			writeError(w, http.StatusBadRequest, "Invalid input")
		}
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("search request failed")
		writeError(w, http.StatusInternalServerError, msgInternalError)
	}
}
