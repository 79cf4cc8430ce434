// Package search implements the debounced, cancellable, cached search
// pipeline that sits between user input and the metadata provider.
package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/anon381/Movie-Search-App/internal/models"
	"github.com/anon381/Movie-Search-App/internal/provider"
)

// DefaultDebounce is the settle delay applied to query text changes.
const DefaultDebounce = 500 * time.Millisecond

// State is a snapshot of the session visible to consumers.
type State struct {
	Query      models.SearchQuery
	Items      []models.SearchResultItem
	Total      int
	TotalPages int
	Loading    bool
	Err        error
}

// LogFunc receives a history entry after each successful network search.
// It is invoked best-effort on its own goroutine and never blocks the
// search flow.
type LogFunc func(entry models.HistoryEntry)

// Session orchestrates one search input: text changes are debounced,
// results are served from the cache when possible, and at most one
// network request is live at a time. A newer request invalidates the
// previous one; late resolutions are discarded by generation identity.
type Session struct {
	provider provider.Provider
	cache    *Cache
	debounce *Debouncer
	logFn    LogFunc

	mu      sync.Mutex
	state   State
	gen     uint64
	cancel  context.CancelFunc
	subs    map[int]chan State
	nextSub int
}

// NewSession creates a search session. cache may be shared between
// sessions; logFn may be nil.
func NewSession(p provider.Provider, cache *Cache, debounce time.Duration, logFn LogFunc) *Session {
	if cache == nil {
		cache = NewCache()
	}
	s := &Session{
		provider: p,
		cache:    cache,
		debounce: NewDebouncer(debounce),
		logFn:    logFn,
		subs:     make(map[int]chan State),
	}
	s.state.Query.Validate()
	return s
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers for state snapshots. The channel is buffered and
// coalescing: a slow consumer sees the latest state, not every step.
// The returned func unsubscribes.
func (s *Session) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan State, 1)
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// SetText updates the query text. The search itself runs only after the
// text has been stable for the debounce delay. Changing the text resets
// the page to 1.
func (s *Session) SetText(text string) {
	s.mu.Lock()
	s.state.Query.Text = text
	s.state.Query.Page = 1
	s.mu.Unlock()
	s.debounce.Trigger(s.run)
}

// SetYear updates the year filter and searches immediately, resetting
// the page to 1.
func (s *Session) SetYear(year string) {
	s.mu.Lock()
	s.state.Query.Year = year
	s.state.Query.Page = 1
	s.mu.Unlock()
	s.run()
}

// SetType updates the type filter and searches immediately, resetting
// the page to 1.
func (s *Session) SetType(mediaType string) {
	s.mu.Lock()
	s.state.Query.Type = mediaType
	s.state.Query.Validate()
	s.state.Query.Page = 1
	s.mu.Unlock()
	s.run()
}

// SetPage moves to another page of the current query, preserving all
// other filters. Each page is its own cache key.
func (s *Session) SetPage(page int) {
	s.mu.Lock()
	if page < 1 {
		page = 1
	}
	s.state.Query.Page = page
	s.mu.Unlock()
	s.run()
}

// Close cancels any pending debounce and in-flight request.
func (s *Session) Close() {
	s.debounce.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateLocked()
}

// run executes the pipeline for the current effective query.
func (s *Session) run() {
	s.mu.Lock()
	q := s.state.Query

	// Too short: clear results and error, no cache or network.
	if len(q.NormalizedText()) < models.MinQueryLen {
		s.invalidateLocked()
		s.state.Items = nil
		s.state.Total = 0
		s.state.TotalPages = 0
		s.state.Err = nil
		s.state.Loading = false
		s.notifyLocked()
		s.mu.Unlock()
		return
	}

	// Cache hit: serve synchronously, no loading state, no network.
	key := q.Key()
	if res, ok := s.cache.Get(key); ok {
		s.invalidateLocked()
		s.applyLocked(res)
		s.notifyLocked()
		s.mu.Unlock()
		return
	}

	// Miss: cancel the previous in-flight request and issue a new one.
	s.invalidateLocked()
	gen := s.gen
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.state.Loading = true
	s.state.Err = nil
	s.notifyLocked()
	s.mu.Unlock()

	go func() {
		res, err := s.provider.Search(ctx, q)

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen {
			// Superseded: only the most recently issued request may
			// update state.
			return
		}
		s.cancel = nil
		s.state.Loading = false
		switch {
		case err == nil:
			s.cache.Put(key, *res)
			s.applyLocked(*res)
			if s.logFn != nil {
				entry := models.HistoryEntry{
					Query:       q.NormalizedText(),
					YearFilter:  q.Year,
					TypeFilter:  q.Type,
					ResultCount: res.Total,
					ExecutedAt:  time.Now(),
				}
				go s.logFn(entry)
			}
		case errors.Is(err, context.Canceled):
			// Swallowed: prior results and error stay untouched.
		default:
			s.state.Items = nil
			s.state.Total = 0
			s.state.TotalPages = 0
			s.state.Err = err
		}
		s.notifyLocked()
	}()
}

// invalidateLocked cancels the in-flight request, if any, and bumps the
// generation so its late resolution is discarded.
func (s *Session) invalidateLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
}

func (s *Session) applyLocked(res models.SearchResult) {
	s.state.Items = res.Items
	s.state.Total = res.Total
	s.state.TotalPages = res.TotalPages()
	s.state.Loading = false
	s.state.Err = nil
}

func (s *Session) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s.state:
		default:
		}
	}
}
