package handlers

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/gogo-imperial/gogo-web/internal/entity"
)

type LeadLister interface {
	Execute(ctx context.Context, filter entity.ListLeadsFilter) ([]*entity.Lead, error)
}

type AuditLister interface {
	List(ctx context.Context, limit, offset int) ([]*entity.AuditEntry, error)
}

// AdminHandler serves the read-only admin listings.
type AdminHandler struct {
	leads  LeadLister
	audit  AuditLister
	logger *zap.Logger
}

func NewAdminHandler(leads LeadLister, audit AuditLister, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{leads: leads, audit: audit, logger: logger}
}

func (h *AdminHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	leads, err := h.leads.Execute(r.Context(), entity.ListLeadsFilter{
		Status: entity.DeliveryStatus(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}
	if leads == nil {
		leads = []*entity.Lead{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads})
}

func (h *AdminHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	entries, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}
	if entries == nil {
		entries = []*entity.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// pagination reads limit and offset; malformed values fall back to zero.
func pagination(r *http.Request) (int, int) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	return limit, offset
}
