package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/config"
)

const (
	tokenIssuer      = "resume-builder"
	supabaseAudience = "authenticated"
)

var errEmptyToken = errors.New("token string is empty")

// Claims are the claims of a locally issued access token.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies HS256 tokens for local accounts.
type JWTService struct {
	config *config.JWTConfig
}

// NewJWTService creates a JWTService signing with cfg.Secret.
func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{config: cfg}
}

// GenerateToken issues a token for userID valid for the configured TTL.
func (s *JWTService) GenerateToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL())),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies tokenString and returns its claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := parseHS256(tokenString, claims, []byte(s.config.Secret), jwt.WithIssuer(tokenIssuer)); err != nil {
		return nil, err
	}
	return claims, nil
}

// Authenticate implements middleware.Authenticator.
func (s *JWTService) Authenticate(tokenString string) (uuid.UUID, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID, nil
}

// SupabaseClaims are the claims of an access token issued by Supabase Auth.
type SupabaseClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims

	// UserID is the parsed subject.
	UserID uuid.UUID `json:"-"`
}

// SupabaseValidator verifies access tokens signed with the project's JWT
// secret. No local user row is required.
type SupabaseValidator struct {
	secret []byte
}

// NewSupabaseValidator creates a validator for tokens signed with secret.
func NewSupabaseValidator(secret string) *SupabaseValidator {
	return &SupabaseValidator{secret: []byte(secret)}
}

// ValidateToken verifies tokenString and parses its subject as a user ID.
func (v *SupabaseValidator) ValidateToken(tokenString string) (*SupabaseClaims, error) {
	claims := &SupabaseClaims{}
	err := parseHS256(tokenString, claims, v.secret,
		jwt.WithAudience(supabaseAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.UserID, err = uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("token subject is not a user id: %w", err)
	}
	return claims, nil
}

// Authenticate implements middleware.Authenticator.
func (v *SupabaseValidator) Authenticate(tokenString string) (uuid.UUID, error) {
	claims, err := v.ValidateToken(tokenString)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID, nil
}

func parseHS256(tokenString string, claims jwt.Claims, secret []byte, opts ...jwt.ParserOption) error {
	if tokenString == "" {
		return errEmptyToken
	}
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return tokenError(err)
	}
	if !token.Valid {
		return errors.New("token is not valid")
	}
	return nil
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("invalid token signature: %w", err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("token expired: %w", err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("malformed token: %w", err)
	default:
		return fmt.Errorf("failed to parse token: %w", err)
	}
}
