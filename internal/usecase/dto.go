package usecase

import (
	"time"

	"github.com/gogo-imperial/gogo-web/internal/entity"
	"github.com/gogo-imperial/gogo-web/internal/infra/ratelimit"
)

type SubmitLeadInput struct {
	CompanyName  string `json:"companyName"`
	FleetSize    string `json:"fleetSize"`
	FuelType     string `json:"fuelType"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	CaptchaToken string `json:"captchaToken,omitempty"`
	Honeypot     string `json:"honeypot,omitempty"`
}

// SubmitLeadRequest is one raw submission. Body is parsed only after the rate limit admits it.
type SubmitLeadRequest struct {
	ClientIP string
	Body     []byte
}

type LeadOutcome string

const (
	OutcomeRateLimited        LeadOutcome = "rate_limited"
	OutcomeMalformed          LeadOutcome = "malformed"
	OutcomeInvalid            LeadOutcome = "invalid"
	OutcomeHoneypot           LeadOutcome = "honeypot"
	OutcomeCaptchaRejected    LeadOutcome = "captcha_rejected"
	OutcomeCaptchaUnavailable LeadOutcome = "captcha_unavailable"
	OutcomeStoreFailed        LeadOutcome = "store_failed"
	OutcomeAccepted           LeadOutcome = "accepted"
)

type SubmitLeadOutput struct {
	Outcome   LeadOutcome
	RateLimit ratelimit.Decision
	LeadID    string
	EmailSent bool
	Details   FieldErrors
	Reason    string
}

// Actor identifies who performed an admin mutation.
type Actor struct {
	Email     string
	IP        string
	UserAgent string
}

type LoginInput struct {
	Token     string
	IP        string
	UserAgent string
}

type LoginOutput struct {
	Email        string
	SessionToken string
	ExpiresAt    time.Time
}

type CreatePageInput struct {
	Slug       string `json:"slug"`
	PageType   string `json:"page_type"`
	FrRequired *bool  `json:"fr_required"`
}

type UpdatePageInput struct {
	FrRequired     *bool           `json:"fr_required"`
	TranslationID  string          `json:"translation_id"`
	Title          *string         `json:"title"`
	Content        *map[string]any `json:"content"`
	SEOTitle       *string         `json:"seo_title"`
	SEODescription *string         `json:"seo_description"`
}

type PublishAction string

const (
	ActionPublish   PublishAction = "publish"
	ActionUnpublish PublishAction = "unpublish"
)

type PublishInput struct {
	TranslationID string        `json:"translation_id"`
	Action        PublishAction `json:"action"`
	Force         bool          `json:"force"`
}

type PublishOutput struct {
	Success    bool          `json:"success"`
	Action     PublishAction `json:"action"`
	Published  bool          `json:"published"`
	Warning    string        `json:"warning,omitempty"`
	FrMissing  bool          `json:"fr_missing,omitempty"`
	CanProceed bool          `json:"can_proceed,omitempty"`
}

type TranslationHistory struct {
	TranslationID string                   `json:"translation_id"`
	History       []*entity.ContentHistory `json:"history"`
}

type PageDetail struct {
	Page      *entity.Page         `json:"page"`
	Histories []TranslationHistory `json:"histories"`
}
