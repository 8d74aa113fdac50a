package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/gogo-imperial/gogo-web/internal/entity"
	"github.com/gogo-imperial/gogo-web/internal/infra/auth"
	"github.com/gogo-imperial/gogo-web/internal/infra/captcha"
	"github.com/gogo-imperial/gogo-web/internal/infra/ratelimit"
)

type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) Check(ctx context.Context, clientID, routeKey string) ratelimit.Decision {
	args := m.Called(ctx, clientID, routeKey)
	return args.Get(0).(ratelimit.Decision)
}

type MockCaptcha struct {
	mock.Mock
}

func (m *MockCaptcha) Verify(ctx context.Context, token, remoteIP string) captcha.Verdict {
	args := m.Called(ctx, token, remoteIP)
	return args.Get(0).(captcha.Verdict)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendLeadNotification(ctx context.Context, lead *entity.Lead, maxAttempts int) entity.NotificationResult {
	args := m.Called(ctx, lead, maxAttempts)
	return args.Get(0).(entity.NotificationResult)
}

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Insert(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	if args.Error(0) == nil {
		lead.ID = "lead-123"
	}
	return args.Error(0)
}

func (m *MockLeadRepository) UpdateDeliveryStatus(ctx context.Context, id string, status entity.DeliveryStatus, deliveryError string, attempts int) error {
	args := m.Called(ctx, id, status, deliveryError, attempts)
	return args.Error(0)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) List(ctx context.Context, filter entity.ListLeadsFilter) ([]*entity.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) Verify(ctx context.Context, raw string) (auth.Identity, error) {
	args := m.Called(ctx, raw)
	return args.Get(0).(auth.Identity), args.Error(1)
}

type failingAuditRepo struct{}

func (failingAuditRepo) Append(context.Context, *entity.AuditEntry) error {
	return context.DeadlineExceeded
}

func (failingAuditRepo) List(context.Context, int, int) ([]*entity.AuditEntry, error) {
	return nil, context.DeadlineExceeded
}

func allowed() ratelimit.Decision {
	return ratelimit.Decision{Allowed: true, Limit: 5, Remaining: 4, ResetAt: time.Now().Add(time.Minute)}
}
