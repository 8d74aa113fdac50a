package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func jwksServer(t *testing.T, kid string, pub *rsa.PublicKey) *httptest.Server {
	t.Helper()
	doc := map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": kid,
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func signRS256(t *testing.T, key *rsa.PrivateKey, kid string, c jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, c)
	if kid != "" {
		tok.Header["kid"] = kid
	}
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func TestJWKSVerifier(t *testing.T) {
	key := newRSAKey(t)
	srv := jwksServer(t, "pool-key-1", &key.PublicKey)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	v, err := NewJWKSVerifier(ctx, srv.URL, "https://idp.gogo.bj", "")
	require.NoError(t, err)

	exp := time.Now().Add(time.Hour).Unix()
	valid := jwt.MapClaims{"email": "Admin@Gogo.bj", "sub": "u1", "iss": "https://idp.gogo.bj", "exp": exp}

	tests := []struct {
		name    string
		token   string
		wantErr error
		email   string
	}{
		{
			name:  "valid rs256 with known kid",
			token: signRS256(t, key, "pool-key-1", valid),
			email: "admin@gogo.bj",
		},
		{
			name:    "unknown kid",
			token:   signRS256(t, key, "rotated-away", valid),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "missing kid",
			token:   signRS256(t, key, "", valid),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "signed by another key",
			token:   signRS256(t, newRSAKey(t), "pool-key-1", valid),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "hs256 rejected",
			token:   sign(t, jwt.SigningMethodHS256, []byte(testSecret), valid),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "expired",
			token:   signRS256(t, key, "pool-key-1", jwt.MapClaims{"email": "a@gogo.bj", "iss": "https://idp.gogo.bj", "exp": time.Now().Add(-time.Minute).Unix()}),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "wrong issuer",
			token:   signRS256(t, key, "pool-key-1", jwt.MapClaims{"email": "a@gogo.bj", "iss": "https://evil", "exp": exp}),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "no email",
			token:   signRS256(t, key, "pool-key-1", jwt.MapClaims{"iss": "https://idp.gogo.bj", "exp": exp}),
			wantErr: ErrMissingEmail,
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
			assert.Equal(t, "u1", id.Subject)
		})
	}
}

func TestCognitoURLs(t *testing.T) {
	assert.Equal(t,
		"https://cognito-idp.eu-west-1.amazonaws.com/eu-west-1_abc/.well-known/jwks.json",
		CognitoJWKSURL("eu-west-1", "eu-west-1_abc"))
	assert.Equal(t,
		"https://cognito-idp.eu-west-1.amazonaws.com/eu-west-1_abc",
		CognitoIssuer("eu-west-1", "eu-west-1_abc"))
}
