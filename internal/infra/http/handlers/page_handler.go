package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gogo-imperial/gogo-web/internal/entity"
	"github.com/gogo-imperial/gogo-web/internal/usecase"
)

type PageManager interface {
	List(ctx context.Context) ([]*entity.Page, error)
	Get(ctx context.Context, id string) (*usecase.PageDetail, error)
	Create(ctx context.Context, actor usecase.Actor, in usecase.CreatePageInput) (*entity.Page, error)
	Update(ctx context.Context, actor usecase.Actor, id string, in usecase.UpdatePageInput) (*entity.Page, error)
	Delete(ctx context.Context, actor usecase.Actor, id string) error
	Publish(ctx context.Context, actor usecase.Actor, pageID string, in usecase.PublishInput) (*usecase.PublishOutput, error)
}

type PageHandler struct {
	pages  PageManager
	logger *zap.Logger
}

func NewPageHandler(pages PageManager, logger *zap.Logger) *PageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandler{pages: pages, logger: logger}
}

func (h *PageHandler) List(w http.ResponseWriter, r *http.Request) {
	pages, err := h.pages.List(r.Context())
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}
	if pages == nil {
		pages = []*entity.Page{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": pages})
}

func (h *PageHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.pages.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *PageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in usecase.CreatePageInput
	if !decodeJSON(w, r, &in) {
		return
	}
	page, err := h.pages.Create(r.Context(), actorFrom(r), in)
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"page": page})
}

func (h *PageHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in usecase.UpdatePageInput
	if !decodeJSON(w, r, &in) {
		return
	}
	page, err := h.pages.Update(r.Context(), actorFrom(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"page": page})
}

func (h *PageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.pages.Delete(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *PageHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var in usecase.PublishInput
	if !decodeJSON(w, r, &in) {
		return
	}
	out, err := h.pages.Publish(r.Context(), actorFrom(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
