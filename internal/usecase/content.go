package usecase

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/language"

	"github.com/gogo-imperial/gogo-web/internal/entity"
)

var localeMatcher = language.NewMatcher([]language.Tag{language.English, language.French})

// ResolveLocale picks en or fr from an explicit value, falling back to an
// Accept-Language header and then to English.
func ResolveLocale(explicit, acceptLanguage string) entity.Locale {
	if l := entity.Locale(strings.ToLower(strings.TrimSpace(explicit))); l.Valid() {
		return l
	}
	if acceptLanguage == "" {
		return entity.LocaleEN
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return entity.LocaleEN
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return entity.LocaleEN
	}
	if idx == 1 {
		return entity.LocaleFR
	}
	return entity.LocaleEN
}

type ContentUseCase struct {
	Repo entity.PageRepositoryInterface
}

func NewContentUseCase(repo entity.PageRepositoryInterface) *ContentUseCase {
	return &ContentUseCase{Repo: repo}
}

// GetPublished returns the published translation of slug in locale.
func (uc *ContentUseCase) GetPublished(ctx context.Context, slug string, locale entity.Locale) (*entity.PublishedContent, error) {
	content, err := uc.Repo.FindPublished(ctx, strings.Trim(slug, "/"), locale)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, notFound("Page not found")
	}
	if err != nil {
		return nil, storageError("failed to load content", err)
	}
	return content, nil
}
