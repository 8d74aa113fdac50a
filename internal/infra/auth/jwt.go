// Package auth verifies admin identity tokens and mints session tokens.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingEmail = errors.New("token has no email claim")
)

// Identity is what a verified login token asserts about the caller.
type Identity struct {
	Subject string
	Email   string
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type JWTVerifier struct {
	secret []byte
	opts   []jwt.ParserOption
}

// NewJWTVerifier accepts HS256 tokens signed with secret. Issuer and audience
// are enforced only when non-empty.
func NewJWTVerifier(secret, issuer, audience string) *JWTVerifier {
	return &JWTVerifier{
		secret: []byte(secret),
		opts:   parserOptions(jwt.SigningMethodHS256, issuer, audience),
	}
}

func parserOptions(method jwt.SigningMethod, issuer, audience string) []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return opts
}

func (v *JWTVerifier) Verify(_ context.Context, raw string) (Identity, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(raw, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, v.opts...)
	return identityFrom(token, c, err)
}

func identityFrom(token *jwt.Token, c *claims, err error) (Identity, error) {
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	email := strings.ToLower(strings.TrimSpace(c.Email))
	if email == "" {
		return Identity{}, ErrMissingEmail
	}
	return Identity{Subject: c.Subject, Email: email}, nil
}

const sessionTokenLength = 32

// NewSessionToken returns a random URL-safe token for the admin cookie.
func NewSessionToken() (string, error) {
	token, err := gonanoid.New(sessionTokenLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return token, nil
}

// HashToken is the form in which session tokens are stored.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
