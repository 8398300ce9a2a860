package config

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Bounds for PasswordConfig.BcryptCost.
const (
	MinBcryptCost = 10
	MaxBcryptCost = 14
)

// ErrPasswordTooLong is returned for an unpeppered password longer than
// bcrypt's 72 byte input.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// JWTConfig holds the signing secret and lifetime of locally issued tokens.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// TTL is the token lifetime.
func (c *JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}

func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return errors.New("'jwt_secret' is required when auth_mode is local")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("'jwt_expiration_hours' must be at least 1, got %d", c.ExpirationHours)
	}
	return nil
}

// PasswordConfig holds the bcrypt cost and optional pepper for local
// accounts.
type PasswordConfig struct {
	BcryptCost int
	Pepper     string
}

func (c *PasswordConfig) normalize() error {
	if c.BcryptCost < MinBcryptCost || c.BcryptCost > MaxBcryptCost {
		return fmt.Errorf("'bcrypt_cost' must be between %d and %d, got %d", MinBcryptCost, MaxBcryptCost, c.BcryptCost)
	}
	return nil
}

// secret returns the bytes handed to bcrypt. With a pepper the password is
// first keyed through HMAC-SHA256, which also keeps long passwords within
// bcrypt's limit.
func (c *PasswordConfig) secret(pw string) ([]byte, error) {
	if c.Pepper == "" {
		if len(pw) > 72 {
			return nil, ErrPasswordTooLong
		}
		return []byte(pw), nil
	}
	mac := hmac.New(sha256.New, []byte(c.Pepper))
	mac.Write([]byte(pw))
	return []byte(base64.StdEncoding.EncodeToString(mac.Sum(nil))), nil
}

// HashPassword returns the bcrypt hash of pw.
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	secret, err := c.secret(pw)
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword(secret, c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether pw matches storedHash.
func (c *PasswordConfig) VerifyPassword(pw, storedHash string) bool {
	secret, err := c.secret(pw)
	if err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), secret) == nil
}
