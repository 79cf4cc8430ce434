package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	// PageSize is the fixed result page size exposed to consumers.
	PageSize = 20

	// MinQueryLen is the minimum trimmed query length that triggers a search.
	MinQueryLen = 2

	// HistoryLimit caps the number of history entries kept per user.
	HistoryLimit = 30

	// HistoryDedupeWindow suppresses duplicate history tuples logged
	// within this interval.
	HistoryDedupeWindow = 20 * time.Second
)

// Media type filter values accepted by search.
const (
	TypeMovie  = "movie"
	TypeSeries = "series"
	TypeAll    = "all"
)

// SearchQuery holds the parameters of a single search request.
type SearchQuery struct {
	Text string `json:"query" query:"query"`
	Page int    `json:"page" query:"page"`
	Year string `json:"year" query:"year"`
	Type string `json:"type" query:"type"`
}

// Validate sets defaults and normalizes parameter values.
func (q *SearchQuery) Validate() {
	if q.Page < 1 {
		q.Page = 1
	}
	switch q.Type {
	case TypeMovie, TypeSeries, TypeAll:
	default:
		q.Type = TypeMovie
	}
}

// NormalizedText returns the query text lowercased and trimmed.
func (q SearchQuery) NormalizedText() string {
	return strings.ToLower(strings.TrimSpace(q.Text))
}

// Key returns the composite cache key. It incorporates every dimension
// that affects the result set so distinct inputs never collide.
func (q SearchQuery) Key() string {
	return fmt.Sprintf("%s|%d|%s|%s", q.NormalizedText(), q.Page, q.Year, q.Type)
}

// SearchResultItem is the normalized item shape emitted by every provider.
type SearchResultItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Year      string `json:"year"`
	PosterURL string `json:"poster_url,omitempty"`
	MediaType string `json:"media_type"`
}

// SearchResult is a page of normalized results plus the upstream total.
type SearchResult struct {
	Items []SearchResultItem `json:"items"`
	Total int                `json:"total"`
}

// TotalPages returns the page count for the fixed page size.
func (r SearchResult) TotalPages() int {
	if r.Total <= 0 {
		return 0
	}
	return (r.Total + PageSize - 1) / PageSize
}

// MovieDetails is the full detail record for a single title.
type MovieDetails struct {
	SearchResultItem
	Plot     string `json:"plot"`
	Genre    string `json:"genre"`
	Director string `json:"director"`
	Actors   string `json:"actors"`
	Runtime  string `json:"runtime"`
	Rating   string `json:"rating"`
}

// FavoriteEntry is a saved title; membership is a set keyed by ID.
type FavoriteEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	PosterURL string `json:"poster_url,omitempty"`
}

// HistoryEntry records one executed search.
type HistoryEntry struct {
	ID          int64     `json:"id"`
	Query       string    `json:"query"`
	YearFilter  string    `json:"year_filter,omitempty"`
	TypeFilter  string    `json:"type_filter,omitempty"`
	ResultCount int       `json:"result_count"`
	ExecutedAt  time.Time `json:"executed_at"`
}

// DedupeKey identifies a history tuple for duplicate suppression.
func (h HistoryEntry) DedupeKey() string {
	return fmt.Sprintf("%s|%s|%s|%d", h.Query, h.YearFilter, h.TypeFilter, h.ResultCount)
}

// User is a registered account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the authenticated-user context. Its presence switches the
// app from local-only to cloud-synced persistence.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}
