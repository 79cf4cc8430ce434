package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anon381/Movie-Search-App/internal/models"
	"github.com/anon381/Movie-Search-App/internal/service"
)

type memFavorites struct {
	mu      sync.Mutex
	entries map[string]models.FavoriteEntry
	toggles int
}

func newMemFavorites() *memFavorites {
	return &memFavorites{entries: make(map[string]models.FavoriteEntry)}
}

func (m *memFavorites) List() []models.FavoriteEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.FavoriteEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	return out
}

func (m *memFavorites) Contains(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[id]
	return ok
}

func (m *memFavorites) Toggle(item models.FavoriteEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toggles++
	if _, ok := m.entries[item.ID]; ok {
		delete(m.entries, item.ID)
	} else {
		m.entries[item.ID] = item
	}
	return nil
}

type memBackend struct {
	mu      sync.Mutex
	rows    map[string]map[string]models.FavoriteEntry // userID -> movieID -> entry
	listErr error
	upserts int
}

func newMemBackend() *memBackend {
	return &memBackend{rows: make(map[string]map[string]models.FavoriteEntry)}
}

func (b *memBackend) ListByUser(userID string) ([]models.FavoriteEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listErr != nil {
		return nil, b.listErr
	}
	out := make([]models.FavoriteEntry, 0, len(b.rows[userID]))
	for _, e := range b.rows[userID] {
		out = append(out, e)
	}
	return out, nil
}

func (b *memBackend) Upsert(userID string, e models.FavoriteEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.upserts++
	if b.rows[userID] == nil {
		b.rows[userID] = make(map[string]models.FavoriteEntry)
	}
	b.rows[userID][e.ID] = e
	return nil
}

func (b *memBackend) Delete(userID, movieID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.rows[userID], movieID)
	return nil
}

func TestFavoritesAnonymousRoutesToLocal(t *testing.T) {
	local := newMemFavorites()
	backend := newMemBackend()
	svc := service.NewFavoritesService(local, backend)

	entry := models.FavoriteEntry{ID: "tt0133093", Title: "The Matrix"}
	require.NoError(t, svc.Toggle(context.Background(), "", entry))

	assert.True(t, local.Contains("tt0133093"))
	assert.Equal(t, 0, backend.upserts)

	list, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, svc.Contains("", "tt0133093"))
}

func TestFavoritesAuthenticatedRoutesToCloud(t *testing.T) {
	local := newMemFavorites()
	backend := newMemBackend()
	svc := service.NewFavoritesService(local, backend)

	entry := models.FavoriteEntry{ID: "tt0068646", Title: "The Godfather"}
	require.NoError(t, svc.Toggle(context.Background(), "user-1", entry))

	assert.False(t, local.Contains("tt0068646"))
	b := backend.rows["user-1"]
	require.NotNil(t, b)
	assert.Contains(t, b, "tt0068646")
}

func TestFavoritesPerUserIsolation(t *testing.T) {
	local := newMemFavorites()
	backend := newMemBackend()
	svc := service.NewFavoritesService(local, backend)

	require.NoError(t, svc.Toggle(context.Background(), "user-1", models.FavoriteEntry{ID: "tt0068646", Title: "The Godfather"}))
	require.NoError(t, svc.Toggle(context.Background(), "user-2", models.FavoriteEntry{ID: "tt0110912", Title: "Pulp Fiction"}))

	// Each caller sees only their own set.
	listOne, err := svc.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, listOne, 1)
	assert.Equal(t, "tt0068646", listOne[0].ID)

	listTwo, err := svc.List(context.Background(), "user-2")
	require.NoError(t, err)
	require.Len(t, listTwo, 1)
	assert.Equal(t, "tt0110912", listTwo[0].ID)

	assert.True(t, svc.Contains("user-1", "tt0068646"))
	assert.False(t, svc.Contains("user-1", "tt0110912"))
	assert.False(t, svc.Contains("user-2", "tt0068646"))
}

func TestFavoritesMigrationRunsOncePerUser(t *testing.T) {
	local := newMemFavorites()
	require.NoError(t, local.Toggle(models.FavoriteEntry{ID: "tt0111161", Title: "The Shawshank Redemption"}))
	backend := newMemBackend()
	svc := service.NewFavoritesService(local, backend)

	// First authenticated touch with an empty cloud set: the local
	// favorite migrates.
	list, err := svc.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "tt0111161", list[0].ID)
	assert.Contains(t, backend.rows["user-1"], "tt0111161")
	firstUpserts := backend.upserts

	// New local favorites added after the check do not migrate for the
	// same user.
	require.NoError(t, local.Toggle(models.FavoriteEntry{ID: "tt0137523", Title: "Fight Club"}))
	_, err = svc.List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, firstUpserts, backend.upserts)
	assert.NotContains(t, backend.rows["user-1"], "tt0137523")
}

func TestFavoritesMigrationSkippedWhenCloudNonEmpty(t *testing.T) {
	local := newMemFavorites()
	require.NoError(t, local.Toggle(models.FavoriteEntry{ID: "local-1", Title: "Local Only"}))
	backend := newMemBackend()
	backend.rows["user-1"] = map[string]models.FavoriteEntry{
		"cloud-1": {ID: "cloud-1", Title: "Cloud Pick"},
	}
	svc := service.NewFavoritesService(local, backend)

	list, err := svc.List(context.Background(), "user-1")
	require.NoError(t, err)

	// Cloud wins and the local entry was never copied up.
	require.Len(t, list, 1)
	assert.Equal(t, "cloud-1", list[0].ID)
	assert.Equal(t, 0, backend.upserts)
	assert.NotContains(t, backend.rows["user-1"], "local-1")
}

func TestFavoritesCloudFetchFailureShowsLocal(t *testing.T) {
	local := newMemFavorites()
	require.NoError(t, local.Toggle(models.FavoriteEntry{ID: "local-1", Title: "Local Only"}))
	backend := newMemBackend()
	backend.listErr = errors.New("network down")
	svc := service.NewFavoritesService(local, backend)

	list, err := svc.List(context.Background(), "user-1")

	// The fetch failed: local entries are still shown and the error is
	// surfaced alongside them.
	require.Error(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "local-1", list[0].ID)
	assert.Equal(t, 0, backend.upserts)
}

func TestFavoritesSignOutFallsBackToLocal(t *testing.T) {
	local := newMemFavorites()
	require.NoError(t, local.Toggle(models.FavoriteEntry{ID: "local-1", Title: "Local Pick"}))
	backend := newMemBackend()
	svc := service.NewFavoritesService(local, backend)

	require.NoError(t, svc.Toggle(context.Background(), "user-1", models.FavoriteEntry{ID: "cloud-only", Title: "Cloud Pick"}))

	// An anonymous call sees the untouched local set; cloud entries are
	// not visible.
	list, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, e := range list {
		ids = append(ids, e.ID)
	}
	assert.NotContains(t, ids, "cloud-only")
	assert.True(t, local.Contains("local-1"))
}
