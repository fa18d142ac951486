// Package domain provides the domain model shared by the paper search service:
// normalized paper records, search results, source identifiers, and errors.
package domain

// SourceType identifies the external API that produced a search result.
type SourceType string

const (
	SourceTypeOpenAlex SourceType = "openalex"
	SourceTypeArXiv    SourceType = "arxiv"
)

// String returns the wire value of the source type.
func (s SourceType) String() string {
	return string(s)
}

// Placeholder values used when a provider omits a field.
const (
	// PlaceholderTitle is used when a paper has no title.
	PlaceholderTitle = "No title"

	// PlaceholderAbstract is used when an arXiv entry has no summary.
	PlaceholderAbstract = "No abstract"

	// AbstractUnavailable is used when an OpenAlex work has no inverted index.
	AbstractUnavailable = "No abstract available"

	// AbstractReconstructionFailed is used when an inverted index cannot be
	// turned back into text.
	AbstractReconstructionFailed = "Abstract processing failed"

	// ArXivJournal is the journal name reported for every arXiv paper.
	ArXivJournal = "arXiv"
)
