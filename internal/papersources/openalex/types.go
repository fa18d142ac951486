// Package openalex provides a client for the OpenAlex API.
//
// OpenAlex is a free, open catalog of scholarly works. It is the primary
// source of the search service: every search is tried here first.
//
// API Documentation: https://docs.openalex.org/
package openalex

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SearchResponse represents the top-level response from the OpenAlex works search endpoint.
type SearchResponse struct {
	Meta    Meta   `json:"meta"`
	Results []Work `json:"results"`
}

// Meta contains metadata about the search results.
type Meta struct {
	Count   int `json:"count"`
	DBTime  int `json:"db_response_time_ms"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// Work represents an academic work (paper) in OpenAlex.
// Only the fields the service maps are decoded.
type Work struct {
	ID              string       `json:"id"`
	DOI             string       `json:"doi"`
	Title           string       `json:"title"`
	PublicationYear int          `json:"publication_year"`
	CitedByCount    int          `json:"cited_by_count"`
	Authorships     []Authorship `json:"authorships"`
	PrimaryLocation *Location    `json:"primary_location"`

	// AbstractInvertedIndex maps each word to the positions it occupies.
	AbstractInvertedIndex InvertedIndex `json:"abstract_inverted_index"`
}

// Authorship represents an author's contribution to a work.
type Authorship struct {
	AuthorPosition string     `json:"author_position"`
	Author         AuthorInfo `json:"author"`
}

// AuthorInfo contains basic author information.
type AuthorInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Location represents where a work is available.
type Location struct {
	Source *Source `json:"source"`
}

// Source represents a publication venue (journal, repository, etc.).
type Source struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// IndexEntry is one word of an inverted index and the positions it occupies.
type IndexEntry struct {
	Word      string
	Positions []int
}

// InvertedIndex is an abstract inverted index in document key order.
type InvertedIndex []IndexEntry

// UnmarshalJSON decodes the index object keeping its keys in the order they
// appear. null decodes to an empty index.
func (idx *InvertedIndex) UnmarshalJSON(data []byte) error {
	*idx = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("inverted index: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		word, ok := tok.(string)
		if !ok {
			return fmt.Errorf("inverted index: unexpected key %v", tok)
		}
		var positions []int
		if err := dec.Decode(&positions); err != nil {
			return fmt.Errorf("inverted index: positions of %q: %w", word, err)
		}
		*idx = append(*idx, IndexEntry{Word: word, Positions: positions})
	}

	_, err = dec.Token()
	return err
}
