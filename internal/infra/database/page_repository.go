package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gogo-imperial/gogo-web/internal/entity"
)

type PageRepository struct {
	DB *sqlx.DB
}

func NewPageRepository(db *sqlx.DB) *PageRepository {
	return &PageRepository{DB: db}
}

type pageRow struct {
	ID         string    `db:"id"`
	Slug       string    `db:"slug"`
	PageType   string    `db:"page_type"`
	FrRequired bool      `db:"fr_required"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r pageRow) toEntity() *entity.Page {
	return &entity.Page{
		ID:         r.ID,
		Slug:       r.Slug,
		PageType:   r.PageType,
		FrRequired: r.FrRequired,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type translationRow struct {
	ID             string         `db:"id"`
	PageID         string         `db:"page_id"`
	Locale         string         `db:"locale"`
	Title          string         `db:"title"`
	Body           jsonObject     `db:"body"`
	SEOTitle       sql.NullString `db:"seo_title"`
	SEODescription sql.NullString `db:"seo_description"`
	Version        int            `db:"version"`
	IsPublished    bool           `db:"is_published"`
	PublishedAt    sql.NullTime   `db:"published_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r translationRow) toEntity() *entity.PageTranslation {
	t := &entity.PageTranslation{
		ID:             r.ID,
		PageID:         r.PageID,
		Locale:         entity.Locale(r.Locale),
		Title:          r.Title,
		Body:           r.Body,
		SEOTitle:       r.SEOTitle.String,
		SEODescription: r.SEODescription.String,
		Version:        r.Version,
		IsPublished:    r.IsPublished,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.PublishedAt.Valid {
		at := r.PublishedAt.Time
		t.PublishedAt = &at
	}
	return t
}

const (
	pageColumns        = `id, slug, page_type, fr_required, created_at, updated_at`
	translationColumns = `id, page_id, locale, title, body, seo_title, seo_description, version, is_published, published_at, updated_at`
)

func (r *PageRepository) List(ctx context.Context) ([]*entity.Page, error) {
	var rows []pageRow
	if err := r.DB.SelectContext(ctx, &rows, `SELECT `+pageColumns+` FROM pages ORDER BY updated_at DESC`); err != nil {
		return nil, mapError(err)
	}
	var trows []translationRow
	if err := r.DB.SelectContext(ctx, &trows, `SELECT `+translationColumns+` FROM page_translations ORDER BY locale`); err != nil {
		return nil, mapError(err)
	}

	byPage := make(map[string][]*entity.PageTranslation, len(rows))
	for _, t := range trows {
		byPage[t.PageID] = append(byPage[t.PageID], t.toEntity())
	}
	pages := make([]*entity.Page, 0, len(rows))
	for _, row := range rows {
		p := row.toEntity()
		p.Translations = byPage[p.ID]
		pages = append(pages, p)
	}
	return pages, nil
}

func (r *PageRepository) FindByID(ctx context.Context, id string) (*entity.Page, error) {
	var row pageRow
	if err := r.DB.GetContext(ctx, &row, `SELECT `+pageColumns+` FROM pages WHERE id = $1`, id); err != nil {
		return nil, mapError(err)
	}
	var trows []translationRow
	if err := r.DB.SelectContext(ctx, &trows, `SELECT `+translationColumns+` FROM page_translations WHERE page_id = $1 ORDER BY locale`, id); err != nil {
		return nil, mapError(err)
	}
	p := row.toEntity()
	for _, t := range trows {
		p.Translations = append(p.Translations, t.toEntity())
	}
	return p, nil
}

// Create inserts the page and both locale rows in one transaction.
func (r *PageRepository) Create(ctx context.Context, page *entity.Page) (err error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO pages (slug, page_type, fr_required)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		page.Slug, page.PageType, page.FrRequired,
	).Scan(&page.ID, &page.CreatedAt, &page.UpdatedAt)
	if err != nil {
		return mapError(err)
	}

	page.Translations = nil
	for _, locale := range []entity.Locale{entity.LocaleEN, entity.LocaleFR} {
		var row translationRow
		err = tx.GetContext(ctx, &row, `
			INSERT INTO page_translations (page_id, locale)
			VALUES ($1, $2)
			RETURNING `+translationColumns,
			page.ID, string(locale))
		if err != nil {
			return mapError(err)
		}
		page.Translations = append(page.Translations, row.toEntity())
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit page: %w", err)
	}
	return nil
}

func (r *PageRepository) UpdateFrRequired(ctx context.Context, id string, frRequired bool) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE pages SET fr_required = $1, updated_at = NOW() WHERE id = $2`, frRequired, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

func (r *PageRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

func (r *PageRepository) FindTranslation(ctx context.Context, id string) (*entity.PageTranslation, error) {
	var row translationRow
	if err := r.DB.GetContext(ctx, &row, `SELECT `+translationColumns+` FROM page_translations WHERE id = $1`, id); err != nil {
		return nil, mapError(err)
	}
	return row.toEntity(), nil
}

func (r *PageRepository) UpdateTranslation(ctx context.Context, t *entity.PageTranslation) error {
	query := `
		UPDATE page_translations
		SET title = $1, body = $2, seo_title = $3, seo_description = $4, version = $5, updated_at = $6
		WHERE id = $7`
	res, err := r.DB.ExecContext(ctx, query,
		t.Title,
		jsonObject(t.Body),
		nullString(t.SEOTitle),
		nullString(t.SEODescription),
		t.Version,
		t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		return mapError(err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `UPDATE pages SET updated_at = NOW() WHERE id = $1`, t.PageID)
	return mapError(err)
}

func (r *PageRepository) SetPublished(ctx context.Context, translationID string, published bool, at *time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE page_translations SET is_published = $1, published_at = $2, updated_at = NOW() WHERE id = $3`,
		published, at, translationID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

func (r *PageRepository) FindPublished(ctx context.Context, slug string, locale entity.Locale) (*entity.PublishedContent, error) {
	var row struct {
		Slug           string         `db:"slug"`
		FrRequired     bool           `db:"fr_required"`
		Locale         string         `db:"locale"`
		Title          string         `db:"title"`
		Body           jsonObject     `db:"body"`
		SEOTitle       sql.NullString `db:"seo_title"`
		SEODescription sql.NullString `db:"seo_description"`
		PublishedAt    sql.NullTime   `db:"published_at"`
	}
	query := `
		SELECT p.slug, p.fr_required, t.locale, t.title, t.body, t.seo_title, t.seo_description, t.published_at
		FROM pages p
		JOIN page_translations t ON t.page_id = p.id
		WHERE p.slug = $1 AND t.locale = $2 AND t.is_published`
	if err := r.DB.GetContext(ctx, &row, query, slug, string(locale)); err != nil {
		return nil, mapError(err)
	}

	content := &entity.PublishedContent{
		Slug:           row.Slug,
		Locale:         entity.Locale(row.Locale),
		Title:          row.Title,
		Body:           row.Body,
		SEOTitle:       row.SEOTitle.String,
		SEODescription: row.SEODescription.String,
		FrRequired:     row.FrRequired,
	}
	if row.PublishedAt.Valid {
		at := row.PublishedAt.Time
		content.PublishedAt = &at
	}
	return content, nil
}

func (r *PageRepository) SaveHistory(ctx context.Context, h *entity.ContentHistory) error {
	query := `
		INSERT INTO content_history (translation_id, version, title, body, changed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.DB.QueryRowxContext(ctx, query,
		h.TranslationID, h.Version, h.Title, jsonObject(h.Body), nullString(h.ChangedBy), h.CreatedAt,
	).Scan(&h.ID)
	return mapError(err)
}

func (r *PageRepository) ListHistory(ctx context.Context, translationID string, limit int) ([]*entity.ContentHistory, error) {
	var rows []struct {
		ID            string         `db:"id"`
		TranslationID string         `db:"translation_id"`
		Version       int            `db:"version"`
		Title         string         `db:"title"`
		Body          jsonObject     `db:"body"`
		ChangedBy     sql.NullString `db:"changed_by"`
		CreatedAt     time.Time      `db:"created_at"`
	}
	query := `
		SELECT id, translation_id, version, title, body, changed_by, created_at
		FROM content_history
		WHERE translation_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	if err := r.DB.SelectContext(ctx, &rows, query, translationID, limit); err != nil {
		return nil, mapError(err)
	}
	history := make([]*entity.ContentHistory, 0, len(rows))
	for _, row := range rows {
		history = append(history, &entity.ContentHistory{
			ID:            row.ID,
			TranslationID: row.TranslationID,
			Version:       row.Version,
			Title:         row.Title,
			Body:          row.Body,
			ChangedBy:     row.ChangedBy.String,
			CreatedAt:     row.CreatedAt,
		})
	}
	return history, nil
}
