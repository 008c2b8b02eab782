package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/archivemed/dedup-cli/internal/core/domain"
	"github.com/archivemed/dedup-cli/internal/core/ports/driven"
)

// Ensure PageStore implements the interface.
var _ driven.PageStore = (*PageStore)(nil)

// PageStore is an in-memory implementation of driven.PageStore.
type PageStore struct {
	mu    sync.RWMutex
	pages map[string]domain.Page
}

// NewPageStore creates a new in-memory page store.
func NewPageStore() *PageStore {
	return &PageStore{
		pages: make(map[string]domain.Page),
	}
}

// SavePage stores or updates a page.
func (s *PageStore) SavePage(_ context.Context, page *domain.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[page.ID] = *page
	return nil
}

// GetPage retrieves a page by ID.
func (s *PageStore) GetPage(_ context.Context, id string) (*domain.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	page, ok := s.pages[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &page, nil
}

// GetFirstByHash returns the earliest-created page with the hash,
// excluding the page itself.
func (s *PageStore) GetFirstByHash(_ context.Context, hash, excludePageID string) (*domain.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var first *domain.Page
	for id := range s.pages {
		page := s.pages[id]
		if page.Hash != hash || page.ID == excludePageID {
			continue
		}
		if first == nil || earlier(page, *first) {
			p := page
			first = &p
		}
	}
	if first == nil {
		return nil, domain.ErrNotFound
	}
	return first, nil
}

// ListByHash returns every page carrying the hash, ordered by creation time.
func (s *PageStore) ListByHash(_ context.Context, hash string) ([]domain.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pages []domain.Page
	for _, page := range s.pages {
		if page.Hash == hash {
			pages = append(pages, page)
		}
	}
	sort.Slice(pages, func(i, j int) bool { return earlier(pages[i], pages[j]) })
	return pages, nil
}

// ListByDocument returns a document's pages ordered by page number.
func (s *PageStore) ListByDocument(_ context.Context, documentID string) ([]domain.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pages []domain.Page
	for _, page := range s.pages {
		if page.DocumentID == documentID {
			pages = append(pages, page)
		}
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].PageNumber < pages[j].PageNumber })
	return pages, nil
}

// UpdateReview records a page's review status, reviewer and note.
func (s *PageStore) UpdateReview(_ context.Context, pageID string, status domain.PageStatus, reviewer, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	page, ok := s.pages[pageID]
	if !ok {
		return domain.ErrNotFound
	}
	page.Status = status
	page.Reviewer = reviewer
	page.ReviewNote = note
	page.ReviewedAt = time.Now()
	s.pages[pageID] = page
	return nil
}

// earlier orders pages by creation time, breaking ties by ID.
func earlier(a, b domain.Page) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID < b.ID
	}
	return a.CreatedAt.Before(b.CreatedAt)
}
