package omdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anon381/Movie-Search-App/internal/errs"
	"github.com/anon381/Movie-Search-App/internal/models"
)

func TestSearchMissingKey(t *testing.T) {
	for _, key := range []string{"", placeholderKey} {
		c := NewClient(key, "http://example.invalid")
		_, err := c.Search(context.Background(), models.SearchQuery{Text: "matrix", Page: 1})
		if !errors.Is(err, errs.ErrMissingAPIKey) {
			t.Fatalf("key %q: expected ErrMissingAPIKey, got %v", key, err)
		}
		_, err = c.Details(context.Background(), "tt0133093")
		if !errors.Is(err, errs.ErrMissingAPIKey) {
			t.Fatalf("key %q: expected ErrMissingAPIKey from details, got %v", key, err)
		}
	}
}

func TestSearchShortQuerySkipsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("no request expected for a short query")
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL)
	res, err := c.Search(context.Background(), models.SearchQuery{Text: " a ", Page: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 0 || res.Total != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestSearchNormalizesResponse(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"s":    r.URL.Query().Get("s"),
			"page": r.URL.Query().Get("page"),
			"type": r.URL.Query().Get("type"),
			"y":    r.URL.Query().Get("y"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"Search": [
				{"Title": "The Matrix", "Year": "1999", "imdbID": "tt0133093", "Type": "movie", "Poster": "https://img/poster.jpg"},
				{"Title": "The Matrix Reloaded", "Year": "2003", "imdbID": "tt0234215", "Type": "movie", "Poster": "N/A"}
			],
			"totalResults": "45",
			"Response": "True"
		}`))
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL)
	res, err := c.Search(context.Background(), models.SearchQuery{Text: " The Matrix ", Page: 2, Year: "1999", Type: models.TypeMovie})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if gotQuery["s"] != "the matrix" {
		t.Fatalf("query text must be normalized, sent %q", gotQuery["s"])
	}
	if gotQuery["page"] != "2" || gotQuery["type"] != "movie" || gotQuery["y"] != "1999" {
		t.Fatalf("unexpected request params: %+v", gotQuery)
	}

	if res.Total != 45 || res.TotalPages() != 3 {
		t.Fatalf("expected total=45 pages=3, got total=%d pages=%d", res.Total, res.TotalPages())
	}
	if len(res.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(res.Items))
	}
	first := res.Items[0]
	if first.ID != "tt0133093" || first.Title != "The Matrix" || first.Year != "1999" || first.MediaType != "movie" {
		t.Fatalf("unexpected first item: %+v", first)
	}
	if res.Items[1].PosterURL != "" {
		t.Fatalf(`"N/A" poster must map to empty, got %q`, res.Items[1].PosterURL)
	}
}

func TestSearchOmitsTypeParamForAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("type") {
			t.Errorf("type=all must omit the type parameter, sent %q", r.URL.Query().Get("type"))
		}
		w.Write([]byte(`{"Search": [], "totalResults": "0", "Response": "True"}`))
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL)
	if _, err := c.Search(context.Background(), models.SearchQuery{Text: "anything", Page: 1, Type: models.TypeAll}); err != nil {
		t.Fatalf("search failed: %v", err)
	}
}

func TestSearchEmptyStates(t *testing.T) {
	for _, apiError := range []string{"Movie not found!", "Too many results."} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"Response": "False", "Error": "` + apiError + `"}`))
		}))
		c := NewClient("k", srv.URL)
		res, err := c.Search(context.Background(), models.SearchQuery{Text: "zz", Page: 1})
		srv.Close()
		if err != nil {
			t.Fatalf("%q must be an empty state, got error %v", apiError, err)
		}
		if len(res.Items) != 0 || res.Total != 0 {
			t.Fatalf("%q must yield an empty result, got %+v", apiError, res)
		}
	}
}

func TestSearchOtherAPIErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response": "False", "Error": "Something went wrong."}`))
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL)
	if _, err := c.Search(context.Background(), models.SearchQuery{Text: "zz", Page: 1}); err == nil {
		t.Fatalf("expected an error for a non-empty-state failure")
	}
}

func TestRejectedKeyMapsToMissingAPIKey(t *testing.T) {
	for _, apiError := range []string{"Invalid API key!", "No API key provided."} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"Response": "False", "Error": "` + apiError + `"}`))
		}))

		c := NewClient("k", srv.URL)
		_, err := c.Search(context.Background(), models.SearchQuery{Text: "zz", Page: 1})
		if !errors.Is(err, errs.ErrMissingAPIKey) {
			t.Fatalf("search with %q: expected ErrMissingAPIKey, got %v", apiError, err)
		}

		// A rejected key on details must not masquerade as a missing
		// title.
		_, err = c.Details(context.Background(), "tt0133093")
		if !errors.Is(err, errs.ErrMissingAPIKey) {
			t.Fatalf("details with %q: expected ErrMissingAPIKey, got %v", apiError, err)
		}
		if errors.Is(err, errs.ErrNotFound) {
			t.Fatalf("details with %q must not map to ErrNotFound", apiError)
		}
		srv.Close()
	}
}

func TestSearchCancellationUnwrapped(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	c := NewClient("k", srv.URL)
	go func() {
		_, err := c.Search(ctx, models.SearchQuery{Text: "matrix", Page: 1})
		done <- err
	}()
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDetailsNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("i") != "tt0133093" || r.URL.Query().Get("plot") != "full" {
			t.Errorf("unexpected detail params: %v", r.URL.Query())
		}
		w.Write([]byte(`{
			"Title": "The Matrix", "Year": "1999", "Plot": "A hacker learns the truth.",
			"Genre": "Action, Sci-Fi", "Director": "Lana Wachowski, Lilly Wachowski",
			"Actors": "Keanu Reeves", "Runtime": "136 min", "Poster": "N/A",
			"Type": "movie", "imdbID": "tt0133093", "imdbRating": "8.7", "Response": "True"
		}`))
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL)
	d, err := c.Details(context.Background(), "tt0133093")
	if err != nil {
		t.Fatalf("details failed: %v", err)
	}
	if d.Title != "The Matrix" || d.Rating != "8.7" || d.Runtime != "136 min" {
		t.Fatalf("unexpected details: %+v", d)
	}
	if d.PosterURL != "" {
		t.Fatalf(`"N/A" poster must map to empty`)
	}
}

func TestDetailsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response": "False", "Error": "Incorrect IMDb ID."}`))
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL)
	if _, err := c.Details(context.Background(), "bogus"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
