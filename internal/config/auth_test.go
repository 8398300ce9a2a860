package config

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestJWTConfig_Normalize(t *testing.T) {
	tests := []struct {
		name    string
		cfg     JWTConfig
		wantErr string
	}{
		{"valid", JWTConfig{Secret: "s", ExpirationHours: 24}, ""},
		{"missing secret", JWTConfig{ExpirationHours: 24}, "jwt_secret"},
		{"zero expiry", JWTConfig{Secret: "s"}, "at least 1"},
		{"negative expiry", JWTConfig{Secret: "s", ExpirationHours: -2}, "at least 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.normalize()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestJWTConfig_TTL(t *testing.T) {
	assert.Equal(t, 48*time.Hour, (&JWTConfig{ExpirationHours: 48}).TTL())
}

func TestPasswordConfig_CostBounds(t *testing.T) {
	for cost, ok := range map[int]bool{9: false, 10: true, 12: true, 14: true, 15: false} {
		err := (&PasswordConfig{BcryptCost: cost}).normalize()
		if ok {
			assert.NoError(t, err, cost)
		} else {
			assert.Error(t, err, cost)
		}
	}
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	pc := &PasswordConfig{BcryptCost: bcrypt.MinCost}

	hash, err := pc.HashPassword("correct-horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))
	assert.True(t, pc.VerifyPassword("correct-horse", hash))
	assert.False(t, pc.VerifyPassword("wrong-horse", hash))
	assert.False(t, pc.VerifyPassword("correct-horse", "not-a-hash"))

	again, err := pc.HashPassword("correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salts differ")
}

func TestPasswordConfig_Pepper(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: bcrypt.MinCost, Pepper: "pepper-one"}
	hash, err := peppered.HashPassword("correct-horse")
	require.NoError(t, err)
	assert.True(t, peppered.VerifyPassword("correct-horse", hash))

	rotated := &PasswordConfig{BcryptCost: bcrypt.MinCost, Pepper: "pepper-two"}
	assert.False(t, rotated.VerifyPassword("correct-horse", hash))

	plain := &PasswordConfig{BcryptCost: bcrypt.MinCost}
	assert.False(t, plain.VerifyPassword("correct-horse", hash))
}

func TestPasswordConfig_LongPasswords(t *testing.T) {
	long := strings.Repeat("a", 100)

	plain := &PasswordConfig{BcryptCost: bcrypt.MinCost}
	_, err := plain.HashPassword(long)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.False(t, plain.VerifyPassword(long, "x"))

	peppered := &PasswordConfig{BcryptCost: bcrypt.MinCost, Pepper: "p"}
	hash, err := peppered.HashPassword(long)
	require.NoError(t, err)
	assert.True(t, peppered.VerifyPassword(long, hash))
	assert.False(t, peppered.VerifyPassword(long[:99]+"b", hash))
}

func TestPasswordConfig_ConcurrentUse(t *testing.T) {
	pc := &PasswordConfig{BcryptCost: bcrypt.MinCost, Pepper: "p"}
	hash, err := pc.HashPassword("shared-secret")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = pc.VerifyPassword("shared-secret", hash)
		}(i)
	}
	wg.Wait()
	for _, ok := range results {
		assert.True(t, ok)
	}
}
