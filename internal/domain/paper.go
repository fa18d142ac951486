package domain

// Paper is the normalized record returned for every search hit, regardless of
// which provider produced it.
type Paper struct {
	// ID is the provider-specific identifier, usually a URL.
	ID string `json:"id"`

	Title string `json:"title"`

	// Authors holds display names in authorship order.
	Authors []string `json:"authors"`

	Abstract string `json:"abstract"`

	// Year is the four-digit publication year, or empty when unknown.
	Year string `json:"year"`

	Journal string `json:"journal"`

	// URL is a DOI when available, otherwise the provider identifier.
	URL string `json:"url"`

	Citations int `json:"citations"`

	Source SourceType `json:"source"`
}

// Normalize fills the zero-value fields that must never be serialized as null
// or negative.
func (p *Paper) Normalize() {
	if p.Authors == nil {
		p.Authors = []string{}
	}
	if p.Title == "" {
		p.Title = PlaceholderTitle
	}
	if p.Citations < 0 {
		p.Citations = 0
	}
}
