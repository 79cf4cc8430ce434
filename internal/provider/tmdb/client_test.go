package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anon381/Movie-Search-App/internal/errs"
	"github.com/anon381/Movie-Search-App/internal/models"
)

const imgBase = "https://image.tmdb.org/t/p"

func TestSearchEndpointSelection(t *testing.T) {
	cases := []struct {
		mediaType string
		endpoint  string
		yearParam string
	}{
		{models.TypeMovie, "/search/movie", "year"},
		{models.TypeSeries, "/search/tv", "first_air_date_year"},
		{models.TypeAll, "/search/multi", ""},
	}
	for _, tc := range cases {
		var gotPath string
		var gotParams map[string][]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotParams = r.URL.Query()
			w.Write([]byte(`{"page": 1, "results": [], "total_results": 0}`))
		}))

		c := NewClient("k", srv.URL, imgBase)
		_, err := c.Search(context.Background(), models.SearchQuery{Text: "dune", Page: 1, Year: "2021", Type: tc.mediaType})
		srv.Close()
		if err != nil {
			t.Fatalf("type %s: search failed: %v", tc.mediaType, err)
		}
		if gotPath != tc.endpoint {
			t.Fatalf("type %s: expected endpoint %s, got %s", tc.mediaType, tc.endpoint, gotPath)
		}
		if tc.yearParam == "" {
			if len(gotParams["year"]) > 0 || len(gotParams["first_air_date_year"]) > 0 {
				t.Fatalf("type all must not send a year parameter, got %v", gotParams)
			}
		} else if len(gotParams[tc.yearParam]) == 0 {
			t.Fatalf("type %s: expected %s parameter, got %v", tc.mediaType, tc.yearParam, gotParams)
		}
	}
}

func TestSearchFiltersPersonsAndNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"page": 1,
			"results": [
				{"id": 603, "title": "The Matrix", "release_date": "1999-03-31", "poster_path": "/matrix.jpg", "media_type": "movie"},
				{"id": 6384, "name": "Keanu Reeves", "media_type": "person"},
				{"id": 1396, "name": "Breaking Bad", "first_air_date": "2008-01-20", "media_type": "tv"}
			],
			"total_results": 3
		}`))
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL, imgBase)
	res, err := c.Search(context.Background(), models.SearchQuery{Text: "test", Page: 1, Type: models.TypeAll})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(res.Items) != 2 {
		t.Fatalf("person results must be filtered, got %d items", len(res.Items))
	}
	movie := res.Items[0]
	if movie.ID != "603" || movie.Title != "The Matrix" || movie.Year != "1999" || movie.MediaType != models.TypeMovie {
		t.Fatalf("unexpected movie item: %+v", movie)
	}
	if movie.PosterURL != imgBase+"/w342/matrix.jpg" {
		t.Fatalf("unexpected poster url %q", movie.PosterURL)
	}
	tv := res.Items[1]
	if tv.Title != "Breaking Bad" || tv.Year != "2008" || tv.MediaType != models.TypeSeries {
		t.Fatalf("unexpected tv item: %+v", tv)
	}
	// The upstream total is reported as-is even after filtering.
	if res.Total != 3 {
		t.Fatalf("expected total 3, got %d", res.Total)
	}
}

func TestSearchMissingKey(t *testing.T) {
	c := NewClient("", "http://example.invalid", imgBase)
	if _, err := c.Search(context.Background(), models.SearchQuery{Text: "dune", Page: 1}); !errors.Is(err, errs.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestDetailsMovie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/movie/") {
			t.Errorf("expected movie endpoint first, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("append_to_response") != "credits" {
			t.Errorf("expected credits appended, got %v", r.URL.Query())
		}
		w.Write([]byte(`{
			"id": 603, "title": "The Matrix", "overview": "A hacker learns the truth.",
			"release_date": "1999-03-31", "poster_path": "/matrix.jpg", "runtime": 136,
			"vote_average": 8.22,
			"genres": [{"name": "Action"}, {"name": "Science Fiction"}],
			"credits": {
				"cast": [{"name": "Keanu Reeves"}, {"name": "Laurence Fishburne"}, {"name": "Carrie-Anne Moss"},
					{"name": "Hugo Weaving"}, {"name": "Gloria Foster"}, {"name": "Joe Pantoliano"}],
				"crew": [{"name": "Joel Silver", "job": "Producer"}, {"name": "Lana Wachowski", "job": "Director"}]
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL, imgBase)
	d, err := c.Details(context.Background(), "603")
	if err != nil {
		t.Fatalf("details failed: %v", err)
	}

	if d.Title != "The Matrix" || d.Year != "1999" || d.MediaType != models.TypeMovie {
		t.Fatalf("unexpected details: %+v", d)
	}
	if d.Director != "Lana Wachowski" {
		t.Fatalf("expected the Director crew member, got %q", d.Director)
	}
	if strings.Count(d.Actors, ",") != 4 {
		t.Fatalf("cast must be capped at five names, got %q", d.Actors)
	}
	if d.Genre != "Action, Science Fiction" {
		t.Fatalf("unexpected genre %q", d.Genre)
	}
	if d.Runtime != "136 min" {
		t.Fatalf("unexpected runtime %q", d.Runtime)
	}
	if d.Rating != "8.2" {
		t.Fatalf("rating must be formatted to one decimal, got %q", d.Rating)
	}
	if d.PosterURL != imgBase+"/w500/matrix.jpg" {
		t.Fatalf("detail posters use the larger size, got %q", d.PosterURL)
	}
}

func TestDetailsFallsBackToTV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/movie/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{
			"id": 1396, "name": "Breaking Bad", "overview": "A chemistry teacher turns to crime.",
			"first_air_date": "2008-01-20", "episode_run_time": [47], "vote_average": 8.9,
			"genres": [{"name": "Drama"}],
			"credits": {"cast": [], "crew": []}
		}`))
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL, imgBase)
	d, err := c.Details(context.Background(), "1396")
	if err != nil {
		t.Fatalf("details failed: %v", err)
	}
	if d.Title != "Breaking Bad" || d.MediaType != models.TypeSeries {
		t.Fatalf("unexpected details: %+v", d)
	}
	if d.Runtime != "47 min" {
		t.Fatalf("series runtime must come from episode_run_time, got %q", d.Runtime)
	}
	if d.Year != "2008" {
		t.Fatalf("series year must come from first_air_date, got %q", d.Year)
	}
}

func TestDetailsNotFoundOnBothEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL, imgBase)
	if _, err := c.Details(context.Background(), "0"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
