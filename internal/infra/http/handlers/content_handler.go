package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gogo-imperial/gogo-web/internal/entity"
	"github.com/gogo-imperial/gogo-web/internal/usecase"
)

type ContentReader interface {
	GetPublished(ctx context.Context, slug string, locale entity.Locale) (*entity.PublishedContent, error)
}

type ContentHandler struct {
	content ContentReader
	logger  *zap.Logger
}

func NewContentHandler(content ContentReader, logger *zap.Logger) *ContentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentHandler{content: content, logger: logger}
}

// GetPage serves GET /pages/{slug}.
func (h *ContentHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	locale := usecase.ResolveLocale(r.URL.Query().Get("locale"), r.Header.Get("Accept-Language"))
	content, err := h.content.GetPublished(r.Context(), chi.URLParam(r, "*"), locale)
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Language", string(locale))
	writeJSON(w, http.StatusOK, content)
}
