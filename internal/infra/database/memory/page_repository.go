package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gogo-imperial/gogo-web/internal/entity"
)

type PageRepository struct {
	mu           sync.RWMutex
	pages        map[string]entity.Page
	translations map[string]entity.PageTranslation
	history      map[string][]entity.ContentHistory
	now          func() time.Time
}

func NewPageRepository() *PageRepository {
	return &PageRepository{
		pages:        make(map[string]entity.Page),
		translations: make(map[string]entity.PageTranslation),
		history:      make(map[string][]entity.ContentHistory),
		now:          time.Now,
	}
}

func (r *PageRepository) List(_ context.Context) ([]*entity.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Page, 0, len(r.pages))
	for id := range r.pages {
		out = append(out, r.assemble(id))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *PageRepository) FindByID(_ context.Context, id string) (*entity.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.pages[id]; !ok {
		return nil, entity.ErrNotFound
	}
	return r.assemble(id), nil
}

func (r *PageRepository) Create(_ context.Context, page *entity.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pages {
		if p.Slug == page.Slug {
			return entity.ErrConflict
		}
	}

	now := r.now().UTC()
	page.ID = uuid.New().String()
	page.CreatedAt = now
	page.UpdatedAt = now
	page.Translations = nil
	for _, loc := range []entity.Locale{entity.LocaleEN, entity.LocaleFR} {
		t := entity.PageTranslation{
			ID:        uuid.New().String(),
			PageID:    page.ID,
			Locale:    loc,
			Body:      map[string]any{},
			Version:   1,
			UpdatedAt: now,
		}
		r.translations[t.ID] = t
		page.Translations = append(page.Translations, copyTranslation(t))
	}
	stored := *page
	stored.Translations = nil
	r.pages[page.ID] = stored
	return nil
}

func (r *PageRepository) UpdateFrRequired(_ context.Context, id string, frRequired bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pages[id]
	if !ok {
		return entity.ErrNotFound
	}
	p.FrRequired = frRequired
	p.UpdatedAt = r.now().UTC()
	r.pages[id] = p
	return nil
}

func (r *PageRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pages[id]; !ok {
		return entity.ErrNotFound
	}
	delete(r.pages, id)
	for tid, t := range r.translations {
		if t.PageID == id {
			delete(r.translations, tid)
			delete(r.history, tid)
		}
	}
	return nil
}

func (r *PageRepository) FindTranslation(_ context.Context, id string) (*entity.PageTranslation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.translations[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return copyTranslation(t), nil
}

func (r *PageRepository) UpdateTranslation(_ context.Context, t *entity.PageTranslation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.translations[t.ID]
	if !ok {
		return entity.ErrNotFound
	}
	cur.Title = t.Title
	cur.Body = maps.Clone(t.Body)
	cur.SEOTitle = t.SEOTitle
	cur.SEODescription = t.SEODescription
	cur.Version = t.Version
	cur.UpdatedAt = t.UpdatedAt
	r.translations[t.ID] = cur
	r.touch(cur.PageID)
	return nil
}

func (r *PageRepository) SetPublished(_ context.Context, translationID string, published bool, at *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.translations[translationID]
	if !ok {
		return entity.ErrNotFound
	}
	t.IsPublished = published
	t.PublishedAt = at
	r.translations[translationID] = t
	r.touch(t.PageID)
	return nil
}

func (r *PageRepository) FindPublished(_ context.Context, slug string, locale entity.Locale) (*entity.PublishedContent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.pages {
		if p.Slug != slug {
			continue
		}
		for _, t := range r.translations {
			if t.PageID == p.ID && t.Locale == locale && t.IsPublished {
				return &entity.PublishedContent{
					Slug:           p.Slug,
					Locale:         t.Locale,
					Title:          t.Title,
					Body:           maps.Clone(t.Body),
					SEOTitle:       t.SEOTitle,
					SEODescription: t.SEODescription,
					FrRequired:     p.FrRequired,
					PublishedAt:    t.PublishedAt,
				}, nil
			}
		}
	}
	return nil, entity.ErrNotFound
}

func (r *PageRepository) SaveHistory(_ context.Context, h *entity.ContentHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h.ID = uuid.New().String()
	stored := *h
	stored.Body = maps.Clone(h.Body)
	r.history[h.TranslationID] = append(r.history[h.TranslationID], stored)
	return nil
}

// ListHistory returns the newest snapshots first.
func (r *PageRepository) ListHistory(_ context.Context, translationID string, limit int) ([]*entity.ContentHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := r.history[translationID]
	out := make([]*entity.ContentHistory, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		h := entries[i]
		out = append(out, &h)
	}
	return paginate(out, limit, 0), nil
}

// assemble must be called with the lock held.
func (r *PageRepository) assemble(id string) *entity.Page {
	p := r.pages[id]
	p.Translations = nil
	for _, t := range r.translations {
		if t.PageID == id {
			p.Translations = append(p.Translations, copyTranslation(t))
		}
	}
	sort.Slice(p.Translations, func(i, j int) bool { return p.Translations[i].Locale < p.Translations[j].Locale })
	return &p
}

func (r *PageRepository) touch(pageID string) {
	if p, ok := r.pages[pageID]; ok {
		p.UpdatedAt = r.now().UTC()
		r.pages[pageID] = p
	}
}

func copyTranslation(t entity.PageTranslation) *entity.PageTranslation {
	t.Body = maps.Clone(t.Body)
	return &t
}
