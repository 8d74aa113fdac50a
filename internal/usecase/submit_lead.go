package usecase

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/gogo-imperial/gogo-web/internal/entity"
	"github.com/gogo-imperial/gogo-web/internal/infra/metrics"
)

// LeadRouteKey scopes rate-limit counters to the submission endpoint.
const LeadRouteKey = "/leads"

type SubmitLeadUseCase struct {
	Limiter     RateLimiter
	Captcha     CaptchaVerifier
	Repo        entity.LeadRepositoryInterface
	Notifier    LeadNotifier
	MaxAttempts int
	Logger      *zap.Logger
}

func NewSubmitLeadUseCase(
	limiter RateLimiter,
	captcha CaptchaVerifier,
	repo entity.LeadRepositoryInterface,
	notifier LeadNotifier,
	maxAttempts int,
	logger *zap.Logger,
) *SubmitLeadUseCase {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmitLeadUseCase{
		Limiter:     limiter,
		Captcha:     captcha,
		Repo:        repo,
		Notifier:    notifier,
		MaxAttempts: maxAttempts,
		Logger:      logger,
	}
}

// Execute runs one submission through rate limiting, validation, bot filtering,
// storage and notification. Steps after a rejection are never reached.
func (uc *SubmitLeadUseCase) Execute(ctx context.Context, req SubmitLeadRequest) SubmitLeadOutput {
	out := uc.execute(ctx, req)
	metrics.RecordLeadOutcome(string(out.Outcome))
	return out
}

func (uc *SubmitLeadUseCase) execute(ctx context.Context, req SubmitLeadRequest) SubmitLeadOutput {
	log := uc.Logger.With(zap.String("client_ip", req.ClientIP))

	decision := uc.Limiter.Check(ctx, req.ClientIP, LeadRouteKey)
	out := SubmitLeadOutput{RateLimit: decision}
	if !decision.Allowed {
		metrics.RecordRateLimitRejection(LeadRouteKey, decision.Banned)
		log.Warn("lead submission rate limited", zap.Bool("banned", decision.Banned))
		out.Outcome = OutcomeRateLimited
		return out
	}

	var input SubmitLeadInput
	if err := json.Unmarshal(req.Body, &input); err != nil {
		out.Outcome = OutcomeMalformed
		return out
	}

	lead, fieldErrs := ValidateLeadInput(input)
	if fieldErrs != nil {
		out.Outcome = OutcomeInvalid
		out.Details = fieldErrs
		return out
	}

	if !CheckHoneypot(lead.Honeypot) {
		log.Info("honeypot triggered, discarding submission")
		out.Outcome = OutcomeHoneypot
		return out
	}

	if lead.CaptchaToken != "" {
		verdict := uc.Captcha.Verify(ctx, lead.CaptchaToken, req.ClientIP)
		if !verdict.Valid {
			log.Warn("captcha rejected",
				zap.String("reason", verdict.Error),
				zap.Float64("score", verdict.Score),
				zap.Bool("unavailable", verdict.Unavailable),
			)
			out.Reason = verdict.Error
			out.Outcome = OutcomeCaptchaRejected
			if verdict.Unavailable {
				out.Outcome = OutcomeCaptchaUnavailable
			}
			return out
		}
	}

	record := &entity.Lead{
		CompanyName:    lead.CompanyName,
		FleetSize:      lead.FleetSize,
		FuelType:       lead.FuelType,
		Email:          lead.Email,
		Phone:          lead.Phone,
		DeliveryStatus: entity.DeliveryPending,
		ClientIP:       req.ClientIP,
	}
	if err := uc.Repo.Insert(ctx, record); err != nil {
		log.Error("failed to save lead", zap.Error(err))
		out.Outcome = OutcomeStoreFailed
		return out
	}
	log = log.With(zap.String("lead_id", record.ID))
	log.Info("lead stored")

	result := uc.Notifier.SendLeadNotification(ctx, record, uc.MaxAttempts)
	status := result.DeliveryStatus()
	if err := uc.Repo.UpdateDeliveryStatus(ctx, record.ID, status, result.Error, result.Attempts); err != nil {
		log.Error("failed to update delivery status", zap.String("status", string(status)), zap.Error(err))
	} else {
		log.Info("lead delivery status updated",
			zap.String("status", string(status)),
			zap.Int("attempts", result.Attempts),
		)
	}

	out.Outcome = OutcomeAccepted
	out.LeadID = record.ID
	out.EmailSent = result.Success
	return out
}
