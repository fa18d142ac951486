package httpserver

import (
	"github.com/helixir/paper-search-service/internal/domain"
)

// searchResponse is the JSON body of GET /api/search/papers.
//
// Successful bodies carry source and count; failure bodies carry error and,
// after a total provider failure, suggestions. papers is always present.
type searchResponse struct {
	Success     bool           `json:"success"`
	Source      string         `json:"source,omitempty"`
	Count       *int           `json:"count,omitempty"`
	Papers      []domain.Paper `json:"papers"`
	Error       string         `json:"error,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
}

// healthResponse is the JSON body of GET /health.
type healthResponse struct {
	Status    string  `json:"status"`
	Timestamp float64 `json:"timestamp"`
}

// newSearchResponse converts a domain result into its wire form.
func newSearchResponse(result *domain.SearchResult) searchResponse {
	papers := result.Papers
	if papers == nil {
		papers = []domain.Paper{}
	}

	resp := searchResponse{
		Success:     result.Success,
		Papers:      papers,
		Error:       result.Error,
		Suggestions: result.Suggestions,
	}
	if result.Success {
		count := result.Count
		resp.Source = result.Source.String()
		resp.Count = &count
	}
	return resp
}

// newErrorResponse builds a failure body with no suggestions.
func newErrorResponse(message string) searchResponse {
	return searchResponse{
		Success: false,
		Papers:  []domain.Paper{},
		Error:   message,
	}
}
