package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gogo-imperial/gogo-web/internal/entity"
	"github.com/gogo-imperial/gogo-web/internal/infra/captcha"
	"github.com/gogo-imperial/gogo-web/internal/infra/ratelimit"
)

type submitDeps struct {
	limiter  *MockRateLimiter
	captcha  *MockCaptcha
	repo     *MockLeadRepository
	notifier *MockNotifier
	uc       *SubmitLeadUseCase
}

func newSubmitDeps() *submitDeps {
	d := &submitDeps{
		limiter:  new(MockRateLimiter),
		captcha:  new(MockCaptcha),
		repo:     new(MockLeadRepository),
		notifier: new(MockNotifier),
	}
	d.uc = NewSubmitLeadUseCase(d.limiter, d.captcha, d.repo, d.notifier, 3, nil)
	return d
}

func body(t *testing.T, in SubmitLeadInput) []byte {
	t.Helper()
	b, err := json.Marshal(in)
	require.NoError(t, err)
	return b
}

func TestSubmitLead_HappyPath(t *testing.T) {
	d := newSubmitDeps()
	d.limiter.On("Check", mock.Anything, "1.2.3.4", LeadRouteKey).Return(allowed())
	d.repo.On("Insert", mock.Anything, mock.MatchedBy(func(l *entity.Lead) bool {
		return l.DeliveryStatus == entity.DeliveryPending && l.CompanyName == "Acme Logistics" && l.ClientIP == "1.2.3.4"
	})).Return(nil)
	d.notifier.On("SendLeadNotification", mock.Anything, mock.Anything, 3).
		Return(entity.NotificationResult{Success: true, Attempts: 1})
	d.repo.On("UpdateDeliveryStatus", mock.Anything, "lead-123", entity.DeliverySent, "", 1).Return(nil)

	out := d.uc.Execute(context.Background(), SubmitLeadRequest{ClientIP: "1.2.3.4", Body: body(t, validInput())})

	assert.Equal(t, OutcomeAccepted, out.Outcome)
	assert.Equal(t, "lead-123", out.LeadID)
	assert.True(t, out.EmailSent)
	d.captcha.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything)
	d.repo.AssertExpectations(t)
}

func TestSubmitLead_NotificationFailureStillAccepted(t *testing.T) {
	d := newSubmitDeps()
	d.limiter.On("Check", mock.Anything, mock.Anything, mock.Anything).Return(allowed())
	d.repo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	d.notifier.On("SendLeadNotification", mock.Anything, mock.Anything, 3).
		Return(entity.NotificationResult{Success: false, Attempts: 3, Error: "smtp down"})
	d.repo.On("UpdateDeliveryStatus", mock.Anything, "lead-123", entity.DeliveryFailed, "smtp down", 3).
		Return(errors.New("db gone"))

	out := d.uc.Execute(context.Background(), SubmitLeadRequest{ClientIP: "1.2.3.4", Body: body(t, validInput())})

	assert.Equal(t, OutcomeAccepted, out.Outcome)
	assert.Equal(t, "lead-123", out.LeadID)
	assert.False(t, out.EmailSent)
}

func TestSubmitLead_RateLimitedStopsEverything(t *testing.T) {
	d := newSubmitDeps()
	d.limiter.On("Check", mock.Anything, mock.Anything, mock.Anything).
		Return(ratelimit.Decision{Allowed: false, Limit: 5, RetryAfter: 30 * time.Second})

	out := d.uc.Execute(context.Background(), SubmitLeadRequest{ClientIP: "1.2.3.4", Body: []byte("{not json")})

	assert.Equal(t, OutcomeRateLimited, out.Outcome)
	assert.Equal(t, 5, out.RateLimit.Limit)
	d.repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestSubmitLead_Rejections(t *testing.T) {
	withToken := validInput()
	withToken.CaptchaToken = "tok"
	honeypot := validInput()
	honeypot.Honeypot = "bot"
	invalid := validInput()
	invalid.Email = "nope"

	tests := []struct {
		name    string
		body    []byte
		verdict *captcha.Verdict
		want    LeadOutcome
		reason  string
	}{
		{name: "malformed json", body: []byte("{"), want: OutcomeMalformed},
		{name: "invalid fields", body: body(t, invalid), want: OutcomeInvalid},
		{name: "honeypot", body: body(t, honeypot), want: OutcomeHoneypot},
		{
			name:    "low score",
			body:    body(t, withToken),
			verdict: &captcha.Verdict{Valid: false, Score: 0.2, HasScore: true, Error: captcha.ErrScoreTooLow},
			want:    OutcomeCaptchaRejected,
			reason:  captcha.ErrScoreTooLow,
		},
		{
			name:    "captcha network",
			body:    body(t, withToken),
			verdict: &captcha.Verdict{Error: captcha.ErrNetwork, Unavailable: true},
			want:    OutcomeCaptchaUnavailable,
			reason:  captcha.ErrNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newSubmitDeps()
			d.limiter.On("Check", mock.Anything, mock.Anything, mock.Anything).Return(allowed())
			if tt.verdict != nil {
				d.captcha.On("Verify", mock.Anything, "tok", "9.9.9.9").Return(*tt.verdict)
			}

			out := d.uc.Execute(context.Background(), SubmitLeadRequest{ClientIP: "9.9.9.9", Body: tt.body})

			assert.Equal(t, tt.want, out.Outcome)
			assert.Equal(t, tt.reason, out.Reason)
			d.repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
			d.notifier.AssertNotCalled(t, "SendLeadNotification", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitLead_InvalidReturnsDetails(t *testing.T) {
	d := newSubmitDeps()
	d.limiter.On("Check", mock.Anything, mock.Anything, mock.Anything).Return(allowed())

	in := validInput()
	in.Phone = "1"
	out := d.uc.Execute(context.Background(), SubmitLeadRequest{Body: body(t, in)})

	require.Equal(t, OutcomeInvalid, out.Outcome)
	assert.Contains(t, out.Details, "phone")
}

func TestSubmitLead_StoreFailureSkipsNotification(t *testing.T) {
	d := newSubmitDeps()
	d.limiter.On("Check", mock.Anything, mock.Anything, mock.Anything).Return(allowed())
	d.repo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	out := d.uc.Execute(context.Background(), SubmitLeadRequest{Body: body(t, validInput())})

	assert.Equal(t, OutcomeStoreFailed, out.Outcome)
	d.notifier.AssertNotCalled(t, "SendLeadNotification", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitLead_ValidCaptchaProceeds(t *testing.T) {
	d := newSubmitDeps()
	in := validInput()
	in.CaptchaToken = "tok"
	d.limiter.On("Check", mock.Anything, mock.Anything, mock.Anything).Return(allowed())
	d.captcha.On("Verify", mock.Anything, "tok", "").Return(captcha.Verdict{Valid: true, Score: 0.9, HasScore: true})
	d.repo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	d.notifier.On("SendLeadNotification", mock.Anything, mock.Anything, 3).Return(entity.NotificationResult{Success: true, Attempts: 1})
	d.repo.On("UpdateDeliveryStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	out := d.uc.Execute(context.Background(), SubmitLeadRequest{Body: body(t, in)})
	assert.Equal(t, OutcomeAccepted, out.Outcome)
	d.captcha.AssertExpectations(t)
}
