package openalex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/papersources"
)

// newTestClient creates a client configured for testing with the given server URL.
func newTestClient(serverURL string, logger zerolog.Logger) *Client {
	cfg := Config{
		BaseURL:   serverURL,
		Email:     "test@example.com",
		Timeout:   5 * time.Second,
		RateLimit: 100,
		BurstSize: 100,
		Enabled:   true,
	}

	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Source:    "openalex",
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		UserAgent: "TestClient/1.0",
	})

	return NewWithHTTPClient(cfg, httpClient, logger)
}

const sampleSearchJSON = `{
  "meta": {"count": 2, "db_response_time_ms": 42, "page": 1, "per_page": 10},
  "results": [
    {
      "id": "https://openalex.org/W2741809807",
      "doi": "https://doi.org/10.1038/nature12373",
      "title": "CRISPR-Cas Systems for Editing",
      "display_name": "CRISPR-Cas Systems for Editing",
      "publication_year": 2014,
      "cited_by_count": 5000,
      "authorships": [
        {"author_position": "first", "author": {"id": "https://openalex.org/A1", "display_name": "John Smith"}},
        {"author_position": "last", "author": {"id": "https://openalex.org/A2", "display_name": "Jane Doe"}}
      ],
      "primary_location": {"source": {"id": "https://openalex.org/S123", "display_name": "Nature Biotechnology"}},
      "abstract_inverted_index": {"CRISPR": [0], "is": [1], "a": [2], "powerful": [3], "tool.": [4]}
    },
    {
      "id": "https://openalex.org/W2741809808",
      "doi": null,
      "title": null,
      "publication_year": null,
      "cited_by_count": 0,
      "authorships": [{"author": {}}],
      "primary_location": {"source": null},
      "abstract_inverted_index": null
    }
  ]
}`

func TestClient_Search(t *testing.T) {
	t.Run("successful search", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/works", r.URL.Path)
			assert.Equal(t, "CRISPR", r.URL.Query().Get("search"))
			assert.Equal(t, "10", r.URL.Query().Get("per-page"))
			assert.Equal(t, "test@example.com", r.URL.Query().Get("mailto"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(sampleSearchJSON))
		}))
		defer server.Close()

		client := newTestClient(server.URL, zerolog.Nop())
		result, err := client.Search(context.Background(), papersources.SearchParams{
			Query:      "CRISPR",
			MaxResults: 10,
		})
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.True(t, result.Success)
		assert.Equal(t, domain.SourceTypeOpenAlex, result.Source)
		assert.Equal(t, 2, result.Count)
		require.Len(t, result.Papers, 2)

		paper1 := result.Papers[0]
		assert.Equal(t, domain.Paper{
			ID:        "https://openalex.org/W2741809807",
			Title:     "CRISPR-Cas Systems for Editing",
			Authors:   []string{"John Smith", "Jane Doe"},
			Abstract:  "CRISPR is a powerful tool.",
			Year:      "2014",
			Journal:   "Nature Biotechnology",
			URL:       "https://doi.org/10.1038/nature12373",
			Citations: 5000,
			Source:    domain.SourceTypeOpenAlex,
		}, paper1)

		paper2 := result.Papers[1]
		assert.Equal(t, "No title", paper2.Title)
		assert.Equal(t, []string{""}, paper2.Authors)
		assert.Equal(t, "No abstract available", paper2.Abstract)
		assert.Equal(t, "", paper2.Year)
		assert.Equal(t, "", paper2.Journal)
		assert.Equal(t, "https://openalex.org/W2741809808", paper2.URL, "falls back to the work id")
		assert.Equal(t, 0, paper2.Citations)
	})

	t.Run("null title is a placeholder even with display_name", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"results":[{"id":"W9","title":null,"display_name":"Shadow Name"}]}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, zerolog.Nop())
		result, err := client.Search(context.Background(), papersources.SearchParams{Query: "shadow", MaxResults: 1})
		require.NoError(t, err)
		require.Len(t, result.Papers, 1)
		assert.Equal(t, "No title", result.Papers[0].Title)
	})

	t.Run("empty search results", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"meta":{"count":0},"results":[]}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, zerolog.Nop())
		result, err := client.Search(context.Background(), papersources.SearchParams{Query: "zzzz", MaxResults: 10})
		require.NoError(t, err)

		assert.True(t, result.Success)
		assert.Equal(t, 0, result.Count)
		assert.NotNil(t, result.Papers)
		assert.Empty(t, result.Papers)
	})

	t.Run("per-page is forwarded unchanged", func(t *testing.T) {
		var perPage string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			perPage = r.URL.Query().Get("per-page")
			_, _ = w.Write([]byte(`{"results":[]}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, zerolog.Nop())
		_, err := client.Search(context.Background(), papersources.SearchParams{Query: "graphs", MaxResults: 0})
		require.NoError(t, err)
		assert.Equal(t, "0", perPage)
	})

	t.Run("server error returns provider error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("upstream exploded"))
		}))
		defer server.Close()

		client := newTestClient(server.URL, zerolog.Nop())
		result, err := client.Search(context.Background(), papersources.SearchParams{Query: "CRISPR", MaxResults: 10})
		require.Error(t, err)
		assert.Nil(t, result)

		var provErr *domain.ProviderError
		require.True(t, errors.As(err, &provErr))
		assert.Equal(t, domain.SourceTypeOpenAlex, provErr.Provider)
		assert.Equal(t, http.StatusInternalServerError, provErr.StatusCode)
		assert.Equal(t, "upstream exploded", provErr.Message)
		assert.True(t, errors.Is(err, domain.ErrProviderUnavailable))
	})

	t.Run("malformed JSON returns provider error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"results": [`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, zerolog.Nop())
		_, err := client.Search(context.Background(), papersources.SearchParams{Query: "CRISPR", MaxResults: 10})
		require.Error(t, err)

		var provErr *domain.ProviderError
		require.True(t, errors.As(err, &provErr))
		assert.Equal(t, "decoding response", provErr.Message)
		assert.NotNil(t, provErr.Cause)
	})

	t.Run("unreachable server returns provider error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := server.URL
		server.Close()

		client := newTestClient(url, zerolog.Nop())
		_, err := client.Search(context.Background(), papersources.SearchParams{Query: "CRISPR", MaxResults: 10})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrProviderUnavailable))
	})

	t.Run("invalid inverted index is logged and replaced", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"results":[{"id":"W1","title":"T","abstract_inverted_index":{"bad":[-1]}}]}`))
		}))
		defer server.Close()

		var buf bytes.Buffer
		client := newTestClient(server.URL, zerolog.New(&buf))
		result, err := client.Search(context.Background(), papersources.SearchParams{Query: "CRISPR", MaxResults: 10})
		require.NoError(t, err)
		require.Len(t, result.Papers, 1)

		assert.Equal(t, "Abstract processing failed", result.Papers[0].Abstract)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "warn", entry["level"])
		assert.Equal(t, "W1", entry["work_id"])
		assert.Equal(t, "openalex", entry["source"])
	})
}

func TestReconstructAbstract(t *testing.T) {
	tests := []struct {
		name     string
		index    InvertedIndex
		expected string
	}{
		{"nil index", nil, "No abstract available"},
		{"empty index", InvertedIndex{}, "No abstract available"},
		{"two words", InvertedIndex{{"quick", []int{0}}, {"fox", []int{1}}}, "quick fox"},
		{"repeated word", InvertedIndex{{"the", []int{0, 2}}, {"cat", []int{1}}, {"sat.", []int{3}}}, "the cat the sat."},
		{"gaps are skipped", InvertedIndex{{"a", []int{0}}, {"b", []int{5}}}, "a b"},
		{"later entry wins a shared position", InvertedIndex{{"alpha", []int{0}}, {"zeta", []int{0}}, {"end", []int{1}}}, "zeta end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReconstructAbstract(tt.index)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("negative position", func(t *testing.T) {
		_, err := ReconstructAbstract(InvertedIndex{{"x", []int{-3}}})
		assert.ErrorIs(t, err, ErrNegativePosition)
	})

	t.Run("too many positions", func(t *testing.T) {
		positions := make([]int, maxAbstractPositions+1)
		for i := range positions {
			positions[i] = i
		}
		_, err := ReconstructAbstract(InvertedIndex{{"w", positions}})
		assert.ErrorIs(t, err, ErrIndexTooLarge)
	})
}

func TestInvertedIndex_UnmarshalJSON(t *testing.T) {
	t.Run("keeps document order", func(t *testing.T) {
		var idx InvertedIndex
		require.NoError(t, json.Unmarshal([]byte(`{"zeta":[0],"alpha":[0,2],"end":[1]}`), &idx))

		assert.Equal(t, InvertedIndex{
			{Word: "zeta", Positions: []int{0}},
			{Word: "alpha", Positions: []int{0, 2}},
			{Word: "end", Positions: []int{1}},
		}, idx)
	})

	t.Run("last key wins a shared position", func(t *testing.T) {
		tests := []struct {
			raw      string
			expected string
		}{
			{`{"zeta":[0],"alpha":[0],"end":[1]}`, "alpha end"},
			{`{"alpha":[0],"zeta":[0],"end":[1]}`, "zeta end"},
		}
		for _, tt := range tests {
			var idx InvertedIndex
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &idx))
			got, err := ReconstructAbstract(idx)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got, tt.raw)
		}
	})

	t.Run("null is empty", func(t *testing.T) {
		idx := InvertedIndex{{Word: "stale", Positions: []int{0}}}
		require.NoError(t, json.Unmarshal([]byte(`null`), &idx))
		assert.Empty(t, idx)
	})

	t.Run("rejects non-object", func(t *testing.T) {
		var idx InvertedIndex
		assert.Error(t, json.Unmarshal([]byte(`["quick","fox"]`), &idx))
		assert.Error(t, json.Unmarshal([]byte(`{"quick":"zero"}`), &idx))
	})
}

func TestClient_Metadata(t *testing.T) {
	client := New(Config{Enabled: true}, zerolog.Nop(), nil)

	assert.Equal(t, domain.SourceTypeOpenAlex, client.SourceType())
	assert.Equal(t, "OpenAlex", client.Name())
	assert.True(t, client.IsEnabled())
	assert.False(t, New(Config{}, zerolog.Nop(), nil).IsEnabled())

	var _ papersources.PaperSource = client
}

func TestConfig_applyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.applyDefaults()

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultEmail, cfg.Email)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultRateLimit, cfg.RateLimit)
	assert.Equal(t, DefaultBurstSize, cfg.BurstSize)

	custom := Config{BaseURL: "http://localhost", Timeout: time.Second}
	custom.applyDefaults()
	assert.Equal(t, "http://localhost", custom.BaseURL)
	assert.Equal(t, time.Second, custom.Timeout)
}

func TestClient_buildSearchURL(t *testing.T) {
	client := New(Config{BaseURL: "https://api.example.org/v1/", Email: "me@example.org"}, zerolog.Nop(), nil)

	got, err := client.buildSearchURL(papersources.SearchParams{Query: "graph neural networks & more", MaxResults: 7})
	require.NoError(t, err)
	assert.Equal(t,
		"https://api.example.org/v1/works?mailto=me%40example.org&per-page=7&search=graph+neural+networks+%26+more",
		got)
}
