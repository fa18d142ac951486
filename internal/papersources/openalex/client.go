package openalex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/papersources"
)

const (
	// DefaultBaseURL is the default OpenAlex API base URL.
	DefaultBaseURL = "https://api.openalex.org"

	// DefaultEmail is sent as mailto to join the OpenAlex polite pool.
	DefaultEmail = "research@example.com"

	// DefaultRateLimit is the default rate limit for requests per second.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// maxAbstractPositions bounds the size of an inverted index we will rebuild.
	maxAbstractPositions = 100_000

	// maxResponseBytes limits how much of a response body is decoded.
	maxResponseBytes = 10 << 20
)

// Errors returned by ReconstructAbstract.
var (
	ErrNegativePosition = errors.New("negative word position")
	ErrIndexTooLarge    = errors.New("inverted index too large")
)

// Config holds configuration for the OpenAlex client.
type Config struct {
	// BaseURL is the OpenAlex API base URL.
	// Defaults to https://api.openalex.org
	BaseURL string

	// Email is the contact email for the polite pool.
	// See: https://docs.openalex.org/how-to-use-the-api/rate-limits-and-authentication
	Email string

	// Timeout is the request timeout.
	// Defaults to 30 seconds.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// Enabled indicates whether this source is enabled for searches.
	Enabled bool
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Email == "" {
		c.Email = DefaultEmail
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
}

// Client implements the papersources.PaperSource interface for OpenAlex.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
	logger     zerolog.Logger
}

var _ papersources.PaperSource = (*Client)(nil)

// New creates a new OpenAlex client. observer may be nil.
func New(cfg Config, logger zerolog.Logger, observer papersources.RequestObserver) *Client {
	cfg.applyDefaults()

	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Source:    domain.SourceTypeOpenAlex.String(),
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		UserAgent: papersources.DefaultUserAgent + " (mailto:" + cfg.Email + ")",
		Observer:  observer,
	})

	return NewWithHTTPClient(cfg, httpClient, logger)
}

// NewWithHTTPClient creates a new OpenAlex client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *papersources.HTTPClient, logger zerolog.Logger) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
		logger:     logger.With().Str("source", domain.SourceTypeOpenAlex.String()).Logger(),
	}
}

// Search issues one works query to OpenAlex and maps every returned work.
func (c *Client) Search(ctx context.Context, params papersources.SearchParams) (*domain.SearchResult, error) {
	searchURL, err := c.buildSearchURL(params)
	if err != nil {
		return nil, c.providerError(0, "building search URL", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, c.providerError(0, "creating request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.providerError(0, "executing request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return nil, c.providerError(resp.StatusCode, strings.TrimSpace(string(body)), nil)
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&searchResp); err != nil {
		return nil, c.providerError(resp.StatusCode, "decoding response", err)
	}

	papers := make([]domain.Paper, 0, len(searchResp.Results))
	for i := range searchResp.Results {
		papers = append(papers, c.workToPaper(&searchResp.Results[i]))
	}

	return domain.NewSearchResult(domain.SourceTypeOpenAlex, papers), nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeOpenAlex
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return "OpenAlex"
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

func (c *Client) providerError(status int, msg string, cause error) *domain.ProviderError {
	return domain.NewProviderError(domain.SourceTypeOpenAlex, status, msg, cause)
}

// buildSearchURL constructs the works search URL.
// The page size is forwarded exactly as requested.
func (c *Client) buildSearchURL(params papersources.SearchParams) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + "/works"

	query := url.Values{}
	query.Set("search", params.Query)
	query.Set("per-page", strconv.Itoa(params.MaxResults))
	query.Set("mailto", c.config.Email)

	baseURL.RawQuery = query.Encode()
	return baseURL.String(), nil
}

// workToPaper converts an OpenAlex Work to a domain Paper.
func (c *Client) workToPaper(work *Work) domain.Paper {
	authors := make([]string, 0, len(work.Authorships))
	for _, authorship := range work.Authorships {
		authors = append(authors, authorship.Author.DisplayName)
	}

	var journal string
	if work.PrimaryLocation != nil && work.PrimaryLocation.Source != nil {
		journal = work.PrimaryLocation.Source.DisplayName
	}

	var year string
	if work.PublicationYear != 0 {
		year = strconv.Itoa(work.PublicationYear)
	}

	link := work.DOI
	if link == "" {
		link = work.ID
	}

	abstract, err := ReconstructAbstract(work.AbstractInvertedIndex)
	if err != nil {
		c.logger.Warn().Err(err).Str("work_id", work.ID).Msg("abstract reconstruction failed")
		abstract = domain.AbstractReconstructionFailed
	}

	paper := domain.Paper{
		ID:        work.ID,
		Title:     work.Title,
		Authors:   authors,
		Abstract:  abstract,
		Year:      year,
		Journal:   journal,
		URL:       link,
		Citations: work.CitedByCount,
		Source:    domain.SourceTypeOpenAlex,
	}
	paper.Normalize()
	return paper
}

// ReconstructAbstract rebuilds abstract text from OpenAlex's inverted index,
// which maps each word to the positions it occupies. Words are emitted in
// ascending position order, separated by single spaces. When two words claim
// the same position the one appearing later in the index wins.
//
// An empty index yields domain.AbstractUnavailable.
func ReconstructAbstract(index InvertedIndex) (string, error) {
	if len(index) == 0 {
		return domain.AbstractUnavailable, nil
	}

	total := 0
	for _, entry := range index {
		total += len(entry.Positions)
	}
	if total > maxAbstractPositions {
		return "", fmt.Errorf("%w: %d positions", ErrIndexTooLarge, total)
	}

	byPos := make(map[int]string, total)
	for _, entry := range index {
		for _, pos := range entry.Positions {
			if pos < 0 {
				return "", fmt.Errorf("%w: %q at %d", ErrNegativePosition, entry.Word, pos)
			}
			byPos[pos] = entry.Word
		}
	}

	order := make([]int, 0, len(byPos))
	for pos := range byPos {
		order = append(order, pos)
	}
	sort.Ints(order)

	var builder strings.Builder
	builder.Grow(total * 7)
	for i, pos := range order {
		if i > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(byPos[pos])
	}

	return builder.String(), nil
}
