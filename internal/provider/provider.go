// Package provider defines the uniform search/details contract over
// interchangeable movie metadata backends.
package provider

import (
	"context"
	"fmt"

	"github.com/anon381/Movie-Search-App/internal/config"
	"github.com/anon381/Movie-Search-App/internal/models"
	"github.com/anon381/Movie-Search-App/internal/provider/omdb"
	"github.com/anon381/Movie-Search-App/internal/provider/tmdb"
)

// Provider is an interchangeable backend adapter over a metadata API.
// Implementations must emit the normalized item shape regardless of
// upstream field names, and surface context cancellation unwrapped so
// callers can treat it as a no-op.
type Provider interface {
	ID() string
	Search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error)
	Details(ctx context.Context, id string) (*models.MovieDetails, error)
}

// New returns the provider selected by configuration.
func New(cfg config.ProviderConfig) (Provider, error) {
	switch cfg.Active {
	case "omdb":
		return omdb.NewClient(cfg.OMDbAPIKey, cfg.OMDbBaseURL), nil
	case "tmdb":
		return tmdb.NewClient(cfg.TMDBAPIKey, cfg.TMDBBaseURL, cfg.TMDBImgBase), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Active)
	}
}
