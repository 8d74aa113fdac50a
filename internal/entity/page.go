package entity

import (
	"context"
	"time"
)

type Locale string

const (
	LocaleEN Locale = "en"
	LocaleFR Locale = "fr"
)

func (l Locale) Valid() bool {
	return l == LocaleEN || l == LocaleFR
}

type Page struct {
	ID           string             `json:"id"`
	Slug         string             `json:"slug"`
	PageType     string             `json:"page_type"`
	FrRequired   bool               `json:"fr_required"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	Translations []*PageTranslation `json:"page_translations,omitempty"`
}

// Translation returns the page's translation for locale, or nil.
func (p *Page) Translation(locale Locale) *PageTranslation {
	for _, t := range p.Translations {
		if t.Locale == locale {
			return t
		}
	}
	return nil
}

type PageTranslation struct {
	ID             string         `json:"id"`
	PageID         string         `json:"page_id"`
	Locale         Locale         `json:"locale"`
	Title          string         `json:"title"`
	Body           map[string]any `json:"body"`
	SEOTitle       string         `json:"seo_title,omitempty"`
	SEODescription string         `json:"seo_description,omitempty"`
	Version        int            `json:"version"`
	IsPublished    bool           `json:"is_published"`
	PublishedAt    *time.Time     `json:"published_at,omitempty"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// HasContent reports whether both a title and a non-empty body are present.
func (t *PageTranslation) HasContent() bool {
	return t != nil && t.Title != "" && len(t.Body) > 0
}

type ContentHistory struct {
	ID            string         `json:"id"`
	TranslationID string         `json:"translation_id"`
	Version       int            `json:"version"`
	Title         string         `json:"title"`
	Body          map[string]any `json:"body"`
	ChangedBy     string         `json:"changed_by"`
	CreatedAt     time.Time      `json:"created_at"`
}

// PublishedContent is what the public site reads for one slug and locale.
type PublishedContent struct {
	Slug           string         `json:"slug"`
	Locale         Locale         `json:"locale"`
	Title          string         `json:"title"`
	Body           map[string]any `json:"body"`
	SEOTitle       string         `json:"seo_title,omitempty"`
	SEODescription string         `json:"seo_description,omitempty"`
	FrRequired     bool           `json:"fr_required"`
	PublishedAt    *time.Time     `json:"published_at,omitempty"`
}

type PageRepositoryInterface interface {
	List(ctx context.Context) ([]*Page, error)
	FindByID(ctx context.Context, id string) (*Page, error)
	// Create inserts the page and its empty EN and FR translations together.
	// Returns ErrConflict when the slug is taken.
	Create(ctx context.Context, page *Page) error
	UpdateFrRequired(ctx context.Context, id string, frRequired bool) error
	Delete(ctx context.Context, id string) error

	FindTranslation(ctx context.Context, id string) (*PageTranslation, error)
	UpdateTranslation(ctx context.Context, t *PageTranslation) error
	SetPublished(ctx context.Context, translationID string, published bool, at *time.Time) error
	FindPublished(ctx context.Context, slug string, locale Locale) (*PublishedContent, error)

	SaveHistory(ctx context.Context, h *ContentHistory) error
	ListHistory(ctx context.Context, translationID string, limit int) ([]*ContentHistory, error)
}
