package server

import (
	"maps"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/config"
)

const testSupabaseSecret = "supabase-test-secret-with-at-least-32-bytes"

func newTestJWTService(hours int) *JWTService {
	return NewJWTService(&config.JWTConfig{Secret: testJWTSecret, ExpirationHours: hours})
}

func signClaims(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func signSupabaseToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	return signClaims(t, jwt.SigningMethodHS256, secret, claims)
}

func TestJWTService_RoundTrip(t *testing.T) {
	for _, hours := range []int{1, 24, 72} {
		service := newTestJWTService(hours)
		userID := uuid.New()

		token, err := service.GenerateToken(userID)
		require.NoError(t, err)

		claims, err := service.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, userID.String(), claims.Subject)
		assert.Equal(t, tokenIssuer, claims.Issuer)
		assert.WithinDuration(t, time.Now().Add(time.Duration(hours)*time.Hour), claims.ExpiresAt.Time, 5*time.Second)

		id, err := service.Authenticate(token)
		require.NoError(t, err)
		assert.Equal(t, userID, id)
	}
}

func TestJWTService_TokensAreUserSpecific(t *testing.T) {
	service := newTestJWTService(24)
	a, b := uuid.New(), uuid.New()

	tokA, err := service.GenerateToken(a)
	require.NoError(t, err)
	tokB, err := service.GenerateToken(b)
	require.NoError(t, err)
	assert.NotEqual(t, tokA, tokB)

	idA, err := service.Authenticate(tokA)
	require.NoError(t, err)
	idB, err := service.Authenticate(tokB)
	require.NoError(t, err)
	assert.Equal(t, a, idA)
	assert.Equal(t, b, idB)
}

func TestJWTService_Rejects(t *testing.T) {
	service := newTestJWTService(24)
	userID := uuid.New()
	now := time.Now()

	base := func() *Claims {
		return &Claims{
			UserID: userID,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    tokenIssuer,
				Subject:   userID.String(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
	}
	expired := base()
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
	foreign := base()
	foreign.Issuer = "someone-else"

	tests := []struct {
		name    string
		token   string
		wantErr string
	}{
		{"empty", "", "empty"},
		{"garbage", "not.a.token", "malformed"},
		{"two segments", "abc.def", "malformed"},
		{"other secret", signClaims(t, jwt.SigningMethodHS256, "a-different-secret-of-32-bytes!!!", base()), "signature"},
		{"expired", signClaims(t, jwt.SigningMethodHS256, testJWTSecret, expired), "expired"},
		{"wrong issuer", signClaims(t, jwt.SigningMethodHS256, testJWTSecret, foreign), ""},
		{"hs512", signClaims(t, jwt.SigningMethodHS512, testJWTSecret, base()), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateToken(tt.token)
			require.Error(t, err)
			assert.Nil(t, claims)
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}

			_, err = service.Authenticate(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestSupabaseValidator(t *testing.T) {
	v := NewSupabaseValidator(testSupabaseSecret)
	userID := uuid.New()
	valid := jwt.MapClaims{
		"sub":   userID.String(),
		"aud":   "authenticated",
		"role":  "authenticated",
		"email": "jane@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}

	t.Run("valid token", func(t *testing.T) {
		token := signSupabaseToken(t, testSupabaseSecret, valid)
		claims, err := v.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "jane@example.com", claims.Email)

		id, err := v.Authenticate(token)
		require.NoError(t, err)
		assert.Equal(t, userID, id)
	})

	tests := []struct {
		name   string
		secret string
		mutate func(jwt.MapClaims)
	}{
		{"wrong secret", "another-secret-with-at-least-32-bytes!!", func(jwt.MapClaims) {}},
		{"wrong audience", testSupabaseSecret, func(c jwt.MapClaims) { c["aud"] = "anon" }},
		{"expired", testSupabaseSecret, func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Hour).Unix() }},
		{"missing expiry", testSupabaseSecret, func(c jwt.MapClaims) { delete(c, "exp") }},
		{"subject not a uuid", testSupabaseSecret, func(c jwt.MapClaims) { c["sub"] = "user-1" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := maps.Clone(valid)
			tt.mutate(claims)
			_, err := v.Authenticate(signSupabaseToken(t, tt.secret, claims))
			assert.Error(t, err)
		})
	}

	t.Run("empty token", func(t *testing.T) {
		_, err := v.ValidateToken("")
		assert.ErrorIs(t, err, errEmptyToken)
	})
}
