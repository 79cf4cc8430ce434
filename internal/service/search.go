package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anon381/Movie-Search-App/internal/models"
	"github.com/anon381/Movie-Search-App/internal/provider"
	"github.com/anon381/Movie-Search-App/internal/search"
)

const detailCacheTTL = 30 * time.Minute

// SearchService answers search and details requests, memoizing search
// pages in process memory by composite key and detail records in Redis.
type SearchService struct {
	provider provider.Provider
	cache    *search.Cache
	redis    *redis.Client
}

// NewSearchService creates a SearchService. rdb may be nil; details are
// then fetched from the provider every time.
func NewSearchService(p provider.Provider, cache *search.Cache, rdb *redis.Client) *SearchService {
	return &SearchService{provider: p, cache: cache, redis: rdb}
}

// Provider exposes the active provider (the CLI shares it with its
// search session).
func (s *SearchService) Provider() provider.Provider { return s.provider }

// Search returns one page of results. Repeated calls with the same
// composite key are served from the cache without a network call.
func (s *SearchService) Search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error) {
	q.Validate()
	if len(q.NormalizedText()) < models.MinQueryLen {
		return &models.SearchResult{Items: []models.SearchResultItem{}}, nil
	}

	key := q.Key()
	if res, ok := s.cache.Get(key); ok {
		slog.Debug("search cache hit", "key", key)
		return &res, nil
	}

	res, err := s.provider.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	s.cache.Put(key, *res)
	return res, nil
}

// Details returns the full record for an id obtained from Search.
func (s *SearchService) Details(ctx context.Context, id string) (*models.MovieDetails, error) {
	cacheKey := fmt.Sprintf("movie:detail:%s:%s", s.provider.ID(), id)

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		var result models.MovieDetails
		if json.Unmarshal([]byte(cached), &result) == nil {
			slog.Debug("cache hit", "key", cacheKey)
			return &result, nil
		}
	}

	detail, err := s.provider.Details(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(detail); err == nil {
		s.setCache(ctx, cacheKey, string(data), detailCacheTTL)
	}

	return detail, nil
}

// ---- Redis Helpers ----

func (s *SearchService) getFromCache(ctx context.Context, key string) (string, error) {
	if s.redis == nil {
		return "", fmt.Errorf("redis not available")
	}
	return s.redis.Get(ctx, key).Result()
}

func (s *SearchService) setCache(ctx context.Context, key, value string, ttl time.Duration) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Error("failed to set cache", "key", key, "error", err)
	}
}
