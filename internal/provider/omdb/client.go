package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/anon381/Movie-Search-App/internal/errs"
	"github.com/anon381/Movie-Search-App/internal/models"
)

// Placeholder value shipped in .env templates; treated the same as no key.
const placeholderKey = "YOUR_KEY_HERE"

// Client is the OMDb API client.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new OMDb API client.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ID returns the provider identifier.
func (c *Client) ID() string { return "omdb" }

// ---- OMDb Response Types (internal, not exposed to consumers) ----

type searchResponse struct {
	Search       []searchItem `json:"Search"`
	TotalResults string       `json:"totalResults"`
	Response     string       `json:"Response"`
	Error        string       `json:"Error"`
}

type searchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	ImdbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

type detailResponse struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Plot       string `json:"Plot"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	Runtime    string `json:"Runtime"`
	Poster     string `json:"Poster"`
	Type       string `json:"Type"`
	ImdbID     string `json:"imdbID"`
	ImdbRating string `json:"imdbRating"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

// ---- Client Methods ----

// Search queries OMDb and normalizes the response. Queries shorter than
// the minimum length return an empty result without a network call.
func (c *Client) Search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}
	text := q.NormalizedText()
	if len(text) < models.MinQueryLen {
		return &models.SearchResult{Items: []models.SearchResultItem{}}, nil
	}

	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("s", text)
	params.Set("page", strconv.Itoa(q.Page))
	// OMDb has no "all" type; omitting the parameter spans every kind.
	if q.Type == models.TypeMovie || q.Type == models.TypeSeries {
		params.Set("type", q.Type)
	}
	if q.Year != "" {
		params.Set("y", q.Year)
	}

	var result searchResponse
	if err := c.doGet(ctx, c.baseURL+"?"+params.Encode(), &result); err != nil {
		return nil, err
	}

	if result.Response == "False" {
		// "Movie not found!" and "Too many results." are empty states,
		// not failures.
		switch result.Error {
		case "Movie not found!", "Too many results.":
			return &models.SearchResult{Items: []models.SearchResultItem{}}, nil
		}
		if keyError(result.Error) {
			return nil, fmt.Errorf("omdb search: %s: %w", result.Error, errs.ErrMissingAPIKey)
		}
		return nil, fmt.Errorf("omdb search failed: %s", result.Error)
	}

	total, _ := strconv.Atoi(result.TotalResults)
	items := make([]models.SearchResultItem, 0, len(result.Search))
	for _, m := range result.Search {
		items = append(items, models.SearchResultItem{
			ID:        m.ImdbID,
			Title:     m.Title,
			Year:      m.Year,
			PosterURL: posterURL(m.Poster),
			MediaType: mediaType(m.Type),
		})
	}
	return &models.SearchResult{Items: items, Total: total}, nil
}

// Details fetches the full record for an id obtained from Search.
func (c *Client) Details(ctx context.Context, id string) (*models.MovieDetails, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("i", id)
	params.Set("plot", "full")

	var result detailResponse
	if err := c.doGet(ctx, c.baseURL+"?"+params.Encode(), &result); err != nil {
		return nil, err
	}

	if result.Response == "False" {
		if keyError(result.Error) {
			return nil, fmt.Errorf("omdb details: %s: %w", result.Error, errs.ErrMissingAPIKey)
		}
		return nil, fmt.Errorf("omdb details %q: %w", id, errs.ErrNotFound)
	}

	return &models.MovieDetails{
		SearchResultItem: models.SearchResultItem{
			ID:        result.ImdbID,
			Title:     result.Title,
			Year:      result.Year,
			PosterURL: posterURL(result.Poster),
			MediaType: mediaType(result.Type),
		},
		Plot:     result.Plot,
		Genre:    result.Genre,
		Director: result.Director,
		Actors:   result.Actors,
		Runtime:  result.Runtime,
		Rating:   result.ImdbRating,
	}, nil
}

func (c *Client) requireKey() error {
	if c.apiKey == "" || c.apiKey == placeholderKey {
		return errs.ErrMissingAPIKey
	}
	return nil
}

func (c *Client) doGet(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		// Surface cancellation unwrapped so callers can discard it.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("OMDb API returned status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode OMDb response: %w", err)
	}
	return nil
}

// keyError reports whether an OMDb error string indicates a key
// problem ("Invalid API key!", "No API key provided.") rather than a
// bad lookup.
func keyError(msg string) bool {
	return strings.Contains(msg, "API key")
}

func posterURL(poster string) string {
	if poster == "" || poster == "N/A" {
		return ""
	}
	return poster
}

func mediaType(t string) string {
	if t == "" {
		return models.TypeMovie
	}
	return t
}
