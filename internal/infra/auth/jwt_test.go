package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, c jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, c).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestJWTVerifier(t *testing.T) {
	v := NewJWTVerifier(testSecret, "gogo-idp", "")
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name    string
		token   string
		wantErr error
		email   string
	}{
		{
			name:  "valid",
			token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"email": " Admin@Gogo.bj ", "sub": "u1", "iss": "gogo-idp", "exp": exp}),
			email: "admin@gogo.bj",
		},
		{
			name:    "wrong secret",
			token:   sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"email": "a@gogo.bj", "iss": "gogo-idp", "exp": exp}),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "expired",
			token:   sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"email": "a@gogo.bj", "iss": "gogo-idp", "exp": time.Now().Add(-time.Minute).Unix()}),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "missing exp",
			token:   sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"email": "a@gogo.bj", "iss": "gogo-idp"}),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "wrong issuer",
			token:   sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"email": "a@gogo.bj", "iss": "evil", "exp": exp}),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "no email",
			token:   sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"iss": "gogo-idp", "exp": exp}),
			wantErr: ErrMissingEmail,
		},
		{
			name:    "garbage",
			token:   "not-a-jwt",
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := v.Verify(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.email, id.Email)
		})
	}
}

func TestSessionToken(t *testing.T) {
	a, err := NewSessionToken()
	require.NoError(t, err)
	b, err := NewSessionToken()
	require.NoError(t, err)

	assert.Len(t, a, sessionTokenLength)
	assert.NotEqual(t, a, b)
	assert.Len(t, HashToken(a), 64)
	assert.Equal(t, HashToken(a), HashToken(a))
	assert.NotEqual(t, a, HashToken(a))
}
