package domain

// AllProvidersFailedMessage is the error reported when every source failed.
const AllProvidersFailedMessage = "All search methods failed"

// allProvidersFailedSuggestions is returned to clients after a total failure.
var allProvidersFailedSuggestions = []string{
	"Check your internet connection",
	"Try more specific search terms",
	"Verify search services are available",
}

// SearchResult is the outcome of a paper search.
//
// On success Source, Count and Papers are set and Count always equals
// len(Papers). On failure Error and Suggestions are set and Papers is empty.
type SearchResult struct {
	Success     bool
	Source      SourceType
	Count       int
	Papers      []Paper
	Error       string
	Suggestions []string
}

// NewSearchResult builds a successful result for the given source.
func NewSearchResult(source SourceType, papers []Paper) *SearchResult {
	if papers == nil {
		papers = []Paper{}
	}
	return &SearchResult{
		Success: true,
		Source:  source,
		Count:   len(papers),
		Papers:  papers,
	}
}

// NewAllProvidersFailedResult builds the diagnostic result returned when no
// source produced a successful search.
func NewAllProvidersFailedResult() *SearchResult {
	suggestions := make([]string, len(allProvidersFailedSuggestions))
	copy(suggestions, allProvidersFailedSuggestions)
	return &SearchResult{
		Success:     false,
		Error:       AllProvidersFailedMessage,
		Suggestions: suggestions,
		Papers:      []Paper{},
	}
}

// Clone returns a copy of r that shares no slices with it.
func (r *SearchResult) Clone() *SearchResult {
	if r == nil {
		return nil
	}
	out := *r
	if r.Papers != nil {
		out.Papers = make([]Paper, len(r.Papers))
		for i, p := range r.Papers {
			if p.Authors != nil {
				p.Authors = append([]string(nil), p.Authors...)
			}
			out.Papers[i] = p
		}
	}
	if r.Suggestions != nil {
		out.Suggestions = append([]string(nil), r.Suggestions...)
	}
	return &out
}
