// Package captcha verifies reCAPTCHA v3 tokens.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	DefaultMinScore  = 0.5

	ErrScoreTooLow        = "Score too low"
	ErrVerificationFailed = "Verification failed"
	ErrNetwork            = "Network error"
	ErrNotConfigured      = "Not configured"
)

// Verdict is produced per submission and never persisted.
type Verdict struct {
	Valid    bool
	Score    float64
	HasScore bool
	Error    string
	// Unavailable marks verdicts caused by the service rather than the token.
	Unavailable bool
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Score      *float64 `json:"score"`
	Action     string   `json:"action"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

type Client struct {
	secret     string
	verifyURL  string
	minScore   float64
	failOpen   bool
	httpClient *http.Client
	logger     *zap.Logger
}

type Options struct {
	Secret    string
	VerifyURL string
	MinScore  float64
	Timeout   time.Duration
	// FailOpen treats transport failures as a pass.
	FailOpen bool
}

func NewClient(opts Options, logger *zap.Logger) *Client {
	if opts.VerifyURL == "" {
		opts.VerifyURL = DefaultVerifyURL
	}
	if opts.MinScore <= 0 {
		opts.MinScore = DefaultMinScore
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		secret:     opts.Secret,
		verifyURL:  opts.VerifyURL,
		minScore:   opts.MinScore,
		failOpen:   opts.FailOpen,
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     logger,
	}
}

func (c *Client) Verify(ctx context.Context, token, remoteIP string) Verdict {
	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return c.networkFailure(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.networkFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.networkFailure(fmt.Errorf("siteverify status %d", resp.StatusCode))
	}

	var body siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return c.networkFailure(fmt.Errorf("decode siteverify response: %w", err))
	}

	if !body.Success {
		msg := ErrVerificationFailed
		if len(body.ErrorCodes) > 0 {
			msg = strings.Join(body.ErrorCodes, ", ")
		}
		return Verdict{Valid: false, Error: msg}
	}

	var score float64
	if body.Score != nil {
		score = *body.Score
	}
	if score < c.minScore {
		return Verdict{Valid: false, Score: score, HasScore: true, Error: ErrScoreTooLow}
	}
	return Verdict{Valid: true, Score: score, HasScore: true}
}

func (c *Client) networkFailure(err error) Verdict {
	if c.failOpen {
		c.logger.Warn("captcha verification unreachable, failing open", zap.Error(err))
		return Verdict{Valid: true, Error: ErrNetwork}
	}
	c.logger.Error("captcha verification unreachable", zap.Error(err))
	return Verdict{Valid: false, Error: ErrNetwork, Unavailable: true}
}

// Bypass is used when no secret is configured and the deployment explicitly allows it.
type Bypass struct{}

func (Bypass) Verify(context.Context, string, string) Verdict {
	return Verdict{Valid: true, Score: 1.0, HasScore: true}
}

// Reject is used when no secret is configured and bypassing is disabled.
type Reject struct{}

func (Reject) Verify(context.Context, string, string) Verdict {
	return Verdict{Valid: false, Error: ErrNotConfigured, Unavailable: true}
}
