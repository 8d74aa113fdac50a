package usecase

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gogo-imperial/gogo-web/internal/entity"
)

const historyPerTranslation = 3

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9\-/]*$`)

type PageUseCase struct {
	Repo   entity.PageRepositoryInterface
	Audit  *AuditLogger
	Logger *zap.Logger
	now    Clock
}

func NewPageUseCase(repo entity.PageRepositoryInterface, audit *AuditLogger, logger *zap.Logger) *PageUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageUseCase{Repo: repo, Audit: audit, Logger: logger, now: time.Now}
}

func (uc *PageUseCase) List(ctx context.Context) ([]*entity.Page, error) {
	pages, err := uc.Repo.List(ctx)
	if err != nil {
		return nil, storageError("failed to list pages", err)
	}
	return pages, nil
}

func (uc *PageUseCase) Get(ctx context.Context, id string) (*PageDetail, error) {
	page, err := uc.findPage(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &PageDetail{Page: page, Histories: make([]TranslationHistory, 0, len(page.Translations))}
	for _, t := range page.Translations {
		history, err := uc.Repo.ListHistory(ctx, t.ID, historyPerTranslation)
		if err != nil {
			return nil, storageError("failed to load history", err)
		}
		if history == nil {
			history = []*entity.ContentHistory{}
		}
		detail.Histories = append(detail.Histories, TranslationHistory{TranslationID: t.ID, History: history})
	}
	return detail, nil
}

func (uc *PageUseCase) Create(ctx context.Context, actor Actor, in CreatePageInput) (*entity.Page, error) {
	slug := strings.Trim(strings.TrimSpace(in.Slug), "/")
	if slug == "" {
		return nil, &DomainError{Code: CodeValidation, Message: "Slug is required"}
	}
	if !slugPattern.MatchString(slug) {
		return nil, &DomainError{Code: CodeValidation, Message: "Slug may only contain lowercase letters, digits, '-' and '/'"}
	}
	pageType := strings.TrimSpace(in.PageType)
	if pageType == "" {
		pageType = "page"
	}
	frRequired := true
	if in.FrRequired != nil {
		frRequired = *in.FrRequired
	}

	page := &entity.Page{Slug: slug, PageType: pageType, FrRequired: frRequired}
	if err := uc.Repo.Create(ctx, page); err != nil {
		if errors.Is(err, entity.ErrConflict) {
			return nil, &DomainError{Code: CodeConflict, Message: "A page with this slug already exists"}
		}
		return nil, storageError("failed to create page", err)
	}

	uc.Audit.Log(ctx, actor, entity.AuditCreate, entity.ItemPage, page.ID, nil, pageState(page))
	return page, nil
}

// Update changes page metadata and, when TranslationID is set, one translation.
// A translation edit snapshots the previous version into history first.
func (uc *PageUseCase) Update(ctx context.Context, actor Actor, id string, in UpdatePageInput) (*entity.Page, error) {
	page, err := uc.findPage(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.FrRequired != nil && *in.FrRequired != page.FrRequired {
		before := pageState(page)
		if err := uc.Repo.UpdateFrRequired(ctx, id, *in.FrRequired); err != nil {
			return nil, storageError("failed to update page", err)
		}
		page.FrRequired = *in.FrRequired
		uc.Audit.Log(ctx, actor, entity.AuditUpdate, entity.ItemPage, id, before, pageState(page))
	}

	if in.TranslationID != "" {
		if err := uc.updateTranslation(ctx, actor, page, in); err != nil {
			return nil, err
		}
	}

	return uc.findPage(ctx, id)
}

func (uc *PageUseCase) updateTranslation(ctx context.Context, actor Actor, page *entity.Page, in UpdatePageInput) error {
	t, err := uc.findTranslation(ctx, page.ID, in.TranslationID)
	if err != nil {
		return err
	}
	before := translationState(t)

	history := &entity.ContentHistory{
		TranslationID: t.ID,
		Version:       t.Version,
		Title:         t.Title,
		Body:          t.Body,
		ChangedBy:     actor.Email,
		CreatedAt:     uc.now().UTC(),
	}
	if err := uc.Repo.SaveHistory(ctx, history); err != nil {
		return storageError("failed to save history", err)
	}

	if in.Title != nil {
		t.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		t.Body = *in.Content
	}
	if in.SEOTitle != nil {
		t.SEOTitle = *in.SEOTitle
	}
	if in.SEODescription != nil {
		t.SEODescription = *in.SEODescription
	}
	t.Version++
	t.UpdatedAt = uc.now().UTC()

	if err := uc.Repo.UpdateTranslation(ctx, t); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return notFound("Translation not found")
		}
		return storageError("failed to update translation", err)
	}
	uc.Audit.Log(ctx, actor, entity.AuditUpdate, entity.ItemPageTranslation, t.ID, before, translationState(t))
	return nil
}

func (uc *PageUseCase) Delete(ctx context.Context, actor Actor, id string) error {
	page, err := uc.findPage(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return notFound("Page not found")
		}
		return storageError("failed to delete page", err)
	}
	uc.Audit.Log(ctx, actor, entity.AuditDelete, entity.ItemPage, id, pageState(page), nil)
	return nil
}

func (uc *PageUseCase) findPage(ctx context.Context, id string) (*entity.Page, error) {
	page, err := uc.Repo.FindByID(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, notFound("Page not found")
	}
	if err != nil {
		return nil, storageError("failed to load page", err)
	}
	return page, nil
}

// findTranslation loads a translation and checks it belongs to pageID.
func (uc *PageUseCase) findTranslation(ctx context.Context, pageID, translationID string) (*entity.PageTranslation, error) {
	t, err := uc.Repo.FindTranslation(ctx, translationID)
	if errors.Is(err, entity.ErrNotFound) || (err == nil && t.PageID != pageID) {
		return nil, notFound("Translation not found")
	}
	if err != nil {
		return nil, storageError("failed to load translation", err)
	}
	return t, nil
}

func pageState(p *entity.Page) map[string]any {
	return map[string]any{
		"slug":        p.Slug,
		"page_type":   p.PageType,
		"fr_required": p.FrRequired,
	}
}

func translationState(t *entity.PageTranslation) map[string]any {
	return map[string]any{
		"locale":       string(t.Locale),
		"title":        t.Title,
		"version":      t.Version,
		"is_published": t.IsPublished,
	}
}
