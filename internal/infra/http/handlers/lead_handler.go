package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/gogo-imperial/gogo-web/internal/infra/http/middleware"
	"github.com/gogo-imperial/gogo-web/internal/infra/ratelimit"
	"github.com/gogo-imperial/gogo-web/internal/usecase"
)

const maxLeadBody = 64 << 10

type LeadSubmitter interface {
	Execute(ctx context.Context, req usecase.SubmitLeadRequest) usecase.SubmitLeadOutput
}

type LeadHandler struct {
	submitter LeadSubmitter
	timeout   time.Duration
	logger    *zap.Logger
}

func NewLeadHandler(submitter LeadSubmitter, timeout time.Duration, logger *zap.Logger) *LeadHandler {
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadHandler{submitter: submitter, timeout: timeout, logger: logger}
}

type submitLeadResponse struct {
	Success   bool   `json:"success"`
	LeadID    string `json:"leadId,omitempty"`
	EmailSent *bool  `json:"emailSent,omitempty"`
}

// Handle serves POST /leads. The pipeline runs detached from the request so a
// slow notification still completes and records its status after the caller
// has been told to wait.
func (h *LeadHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxLeadBody))
	if err != nil {
		body = nil
	}
	req := usecase.SubmitLeadRequest{ClientIP: middleware.ClientIP(r), Body: body}

	done := make(chan usecase.SubmitLeadOutput, 1)
	ctx := context.WithoutCancel(r.Context())
	go func() {
		done <- h.submitter.Execute(ctx, req)
	}()

	timer := time.NewTimer(h.timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		h.respond(w, out)
	case <-timer.C:
		h.logger.Warn("lead pipeline exceeded response timeout", zap.String("client_ip", req.ClientIP))
		writeError(w, http.StatusServiceUnavailable, "Request is still being processed")
	}
}

func (h *LeadHandler) respond(w http.ResponseWriter, out usecase.SubmitLeadOutput) {
	setRateLimitHeaders(w, out.RateLimit, out.Outcome == usecase.OutcomeRateLimited)

	switch out.Outcome {
	case usecase.OutcomeRateLimited:
		msg := "Too many requests"
		if out.RateLimit.Banned {
			msg = "IP temporarily banned"
		}
		writeError(w, http.StatusTooManyRequests, msg)
	case usecase.OutcomeMalformed:
		writeError(w, http.StatusBadRequest, "Invalid JSON")
	case usecase.OutcomeInvalid:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Validation failed", Details: out.Details})
	case usecase.OutcomeHoneypot:
		writeJSON(w, http.StatusOK, submitLeadResponse{Success: true})
	case usecase.OutcomeCaptchaRejected:
		writeError(w, http.StatusBadRequest, "CAPTCHA verification failed")
	case usecase.OutcomeCaptchaUnavailable:
		writeError(w, http.StatusBadRequest, "CAPTCHA verification unavailable")
	case usecase.OutcomeStoreFailed:
		writeError(w, http.StatusInternalServerError, "Failed to save lead")
	case usecase.OutcomeAccepted:
		sent := out.EmailSent
		writeJSON(w, http.StatusCreated, submitLeadResponse{Success: true, LeadID: out.LeadID, EmailSent: &sent})
	default:
		h.logger.Error("unknown lead outcome", zap.String("outcome", string(out.Outcome)))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func setRateLimitHeaders(w http.ResponseWriter, d ratelimit.Decision, rejected bool) {
	if d.Limit <= 0 {
		return
	}
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
	if rejected {
		h.Set("Retry-After", strconv.Itoa(d.RetryAfterSeconds()))
	}
}
