package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/anon381/Movie-Search-App/internal/errs"
	"github.com/anon381/Movie-Search-App/internal/models"
)

// Client is the TMDB API client.
type Client struct {
	apiKey  string
	baseURL string
	imgBase string
	http    *http.Client
}

// NewClient creates a new TMDB API client.
func NewClient(apiKey, baseURL, imgBase string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		imgBase: imgBase,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ID returns the provider identifier.
func (c *Client) ID() string { return "tmdb" }

// ---- TMDB Response Types (internal, not exposed to consumers) ----

type searchResponse struct {
	Page         int          `json:"page"`
	Results      []searchItem `json:"results"`
	TotalResults int          `json:"total_results"`
}

type searchItem struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Name         string `json:"name"`
	ReleaseDate  string `json:"release_date"`
	FirstAirDate string `json:"first_air_date"`
	PosterPath   string `json:"poster_path"`
	MediaType    string `json:"media_type"`
}

type detailResponse struct {
	ID             int     `json:"id"`
	Title          string  `json:"title"`
	Name           string  `json:"name"`
	Overview       string  `json:"overview"`
	ReleaseDate    string  `json:"release_date"`
	FirstAirDate   string  `json:"first_air_date"`
	PosterPath     string  `json:"poster_path"`
	Runtime        int     `json:"runtime"`
	EpisodeRunTime []int   `json:"episode_run_time"`
	VoteAverage    float64 `json:"vote_average"`
	Genres         []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Credits struct {
		Cast []struct {
			Name string `json:"name"`
		} `json:"cast"`
		Crew []struct {
			Name string `json:"name"`
			Job  string `json:"job"`
		} `json:"crew"`
	} `json:"credits"`
}

// ---- Client Methods ----

// Search queries TMDB and normalizes the response. The type filter picks
// the endpoint: movie, tv, or multi for "all" (person hits filtered out).
func (c *Client) Search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}
	text := q.NormalizedText()
	if len(text) < models.MinQueryLen {
		return &models.SearchResult{Items: []models.SearchResultItem{}}, nil
	}

	endpoint := "search/movie"
	switch q.Type {
	case models.TypeSeries:
		endpoint = "search/tv"
	case models.TypeAll:
		endpoint = "search/multi"
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", text)
	params.Set("page", strconv.Itoa(q.Page))
	if q.Year != "" {
		switch endpoint {
		case "search/movie":
			params.Set("year", q.Year)
		case "search/tv":
			params.Set("first_air_date_year", q.Year)
		}
	}

	var result searchResponse
	status, err := c.doGet(ctx, fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode()), &result)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("TMDB API returned status %d", status)
	}

	items := make([]models.SearchResultItem, 0, len(result.Results))
	for _, r := range result.Results {
		if r.MediaType == "person" {
			continue
		}
		items = append(items, c.normalizeItem(r, endpoint))
	}
	return &models.SearchResult{Items: items, Total: result.TotalResults}, nil
}

// Details fetches the full record for an id obtained from Search. IDs are
// not kind-tagged, so a movie miss falls back to the tv endpoint.
func (c *Client) Details(ctx context.Context, id string) (*models.MovieDetails, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("append_to_response", "credits")

	var result detailResponse
	status, err := c.doGet(ctx, fmt.Sprintf("%s/movie/%s?%s", c.baseURL, url.PathEscape(id), params.Encode()), &result)
	if err != nil {
		return nil, err
	}
	mediaType := models.TypeMovie
	if status == http.StatusNotFound {
		status, err = c.doGet(ctx, fmt.Sprintf("%s/tv/%s?%s", c.baseURL, url.PathEscape(id), params.Encode()), &result)
		if err != nil {
			return nil, err
		}
		mediaType = models.TypeSeries
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("tmdb details %q: %w", id, errs.ErrNotFound)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("TMDB API returned status %d", status)
	}

	title := result.Title
	if title == "" {
		title = result.Name
	}
	date := result.ReleaseDate
	if date == "" {
		date = result.FirstAirDate
	}

	director := ""
	for _, crew := range result.Credits.Crew {
		if crew.Job == "Director" {
			director = crew.Name
			break
		}
	}
	actors := ""
	for i, cast := range result.Credits.Cast {
		if i == 5 {
			break
		}
		if i > 0 {
			actors += ", "
		}
		actors += cast.Name
	}
	genre := ""
	for i, g := range result.Genres {
		if i > 0 {
			genre += ", "
		}
		genre += g.Name
	}
	runtime := result.Runtime
	if runtime == 0 && len(result.EpisodeRunTime) > 0 {
		runtime = result.EpisodeRunTime[0]
	}
	runtimeStr := ""
	if runtime > 0 {
		runtimeStr = fmt.Sprintf("%d min", runtime)
	}
	rating := ""
	if result.VoteAverage > 0 {
		rating = strconv.FormatFloat(result.VoteAverage, 'f', 1, 64)
	}

	return &models.MovieDetails{
		SearchResultItem: models.SearchResultItem{
			ID:        strconv.Itoa(result.ID),
			Title:     title,
			Year:      year(date),
			PosterURL: c.posterURL(result.PosterPath, "w500"),
			MediaType: mediaType,
		},
		Plot:     result.Overview,
		Genre:    genre,
		Director: director,
		Actors:   actors,
		Runtime:  runtimeStr,
		Rating:   rating,
	}, nil
}

func (c *Client) normalizeItem(r searchItem, endpoint string) models.SearchResultItem {
	title := r.Title
	if title == "" {
		title = r.Name
	}
	if title == "" {
		title = "Untitled"
	}
	date := r.ReleaseDate
	if date == "" {
		date = r.FirstAirDate
	}
	mediaType := models.TypeMovie
	if r.MediaType == "tv" || endpoint == "search/tv" {
		mediaType = models.TypeSeries
	}
	return models.SearchResultItem{
		ID:        strconv.Itoa(r.ID),
		Title:     title,
		Year:      year(date),
		PosterURL: c.posterURL(r.PosterPath, "w342"),
		MediaType: mediaType,
	}
}

func (c *Client) requireKey() error {
	if c.apiKey == "" {
		return errs.ErrMissingAPIKey
	}
	return nil
}

// doGet returns the response status alongside the decode so Details can
// handle the movie->tv 404 fallback without treating it as a failure.
func (c *Client) doGet(ctx context.Context, rawURL string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode TMDB response: %w", err)
		}
		return resp.StatusCode, nil
	}
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// year extracts the year from a TMDB release date ("1999-03-31").
func year(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return ""
}

func (c *Client) posterURL(path, size string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s%s", c.imgBase, size, path)
}
