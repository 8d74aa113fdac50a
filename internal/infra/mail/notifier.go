package mail

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gogo-imperial/gogo-web/internal/entity"
	"github.com/gogo-imperial/gogo-web/internal/infra/metrics"
)

type NotifierOptions struct {
	From           string
	SalesEmail     string
	BackoffBase    time.Duration
	AttemptTimeout time.Duration
}

// LeadNotifier emails the sales mailbox about new leads, retrying with
// exponential backoff (base, 2*base, 4*base, ...) between attempts.
type LeadNotifier struct {
	transport Transport
	opts      NotifierOptions
	logger    *zap.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewLeadNotifier(transport Transport, opts NotifierOptions, logger *zap.Logger) *LeadNotifier {
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadNotifier{
		transport: transport,
		opts:      opts,
		logger:    logger,
		sleep:     sleepContext,
	}
}

// SendLeadNotification stops at the first successful attempt. After maxAttempts
// failures it returns the last error.
func (n *LeadNotifier) SendLeadNotification(ctx context.Context, lead *entity.Lead, maxAttempts int) entity.NotificationResult {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	msg, err := n.buildMessage(lead)
	if err != nil {
		n.logger.Error("render lead notification", zap.String("lead_id", lead.ID), zap.Error(err))
		return entity.NotificationResult{Success: false, Error: err.Error(), Attempts: 0}
	}

	var lastErr error
	attempts := 0
	for attempts < maxAttempts {
		attempts++

		lastErr = n.attempt(ctx, msg)
		if lastErr == nil {
			metrics.RecordNotification(true, attempts)
			n.logger.Info("lead notification sent", zap.String("lead_id", lead.ID), zap.Int("attempt", attempts))
			return entity.NotificationResult{Success: true, Attempts: attempts}
		}
		n.logger.Warn("lead notification attempt failed",
			zap.String("lead_id", lead.ID),
			zap.Int("attempt", attempts),
			zap.Error(lastErr),
		)

		if attempts < maxAttempts {
			delay := n.opts.BackoffBase * time.Duration(1<<(attempts-1))
			if err := n.sleep(ctx, delay); err != nil {
				lastErr = err
				break
			}
		}
	}

	metrics.RecordNotification(false, attempts)
	n.logger.Error("lead notification failed",
		zap.String("lead_id", lead.ID),
		zap.Int("attempts", attempts),
		zap.Error(lastErr),
	)
	return entity.NotificationResult{Success: false, Error: lastErr.Error(), Attempts: attempts}
}

func (n *LeadNotifier) attempt(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, n.opts.AttemptTimeout)
	defer cancel()
	return n.transport.Send(ctx, msg)
}

func (n *LeadNotifier) buildMessage(lead *entity.Lead) (Message, error) {
	data := LeadEmailData{
		CompanyName: lead.CompanyName,
		FleetSize:   lead.FleetSize.Label(),
		FuelType:    lead.FuelType.Label(),
		Email:       lead.Email,
		Phone:       lead.Phone,
		LeadID:      lead.ID,
	}

	var body bytes.Buffer
	if err := leadTemplate.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("execute lead template: %w", err)
	}

	return Message{
		From:     n.opts.From,
		To:       n.opts.SalesEmail,
		ReplyTo:  lead.Email,
		Subject:  "New B2B Lead: " + lead.CompanyName,
		HTMLBody: body.String(),
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
