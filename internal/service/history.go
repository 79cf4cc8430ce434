package service

import (
	"context"
	"sync"

	"github.com/anon381/Movie-Search-App/internal/errs"
	"github.com/anon381/Movie-Search-App/internal/models"
	"github.com/anon381/Movie-Search-App/internal/store"
)

// HistoryService exposes search history for authenticated users.
// History is cloud-only and keyed by the caller's user id; logging
// while anonymous is a silent no-op and never blocks the search flow.
type HistoryService struct {
	repo store.HistoryBackend

	mu     sync.Mutex
	clouds map[string]*store.CloudHistory
}

// NewHistoryService creates the history service.
func NewHistoryService(repo store.HistoryBackend) *HistoryService {
	return &HistoryService{repo: repo, clouds: make(map[string]*store.CloudHistory)}
}

// List returns the caller's most recent entries, newest first. An empty
// userID means the caller is anonymous.
func (s *HistoryService) List(ctx context.Context, userID string) ([]models.HistoryEntry, error) {
	cloud := s.active(userID)
	if cloud == nil {
		return nil, errs.ErrUnauthorized
	}
	if err := cloud.Load(); err != nil {
		return nil, err
	}
	return cloud.List(), nil
}

// Log records an executed search for userID, best-effort.
func (s *HistoryService) Log(userID string, entry models.HistoryEntry) {
	cloud := s.active(userID)
	if cloud == nil {
		return
	}
	// Suppression and persistence are handled by the store; failures
	// are logged there and deliberately not propagated.
	_ = cloud.Log(entry)
}

func (s *HistoryService) active(userID string) *store.CloudHistory {
	if userID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cloud, ok := s.clouds[userID]
	if !ok {
		cloud = store.NewCloudHistory(s.repo, userID)
		s.clouds[userID] = cloud
	}
	return cloud
}
