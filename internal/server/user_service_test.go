package server

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/types"
)

// testPasswordConfig skips normalize so tests hash at the cheapest cost.
func testPasswordConfig() *config.PasswordConfig {
	return &config.PasswordConfig{BcryptCost: bcrypt.MinCost}
}

func newTestUserService() *UserService {
	return NewUserService(db.NewMemoryStore(), testPasswordConfig())
}

func TestConvertDBUserToTypesUser(t *testing.T) {
	t.Run("valid user", func(t *testing.T) {
		now := time.Now()
		dbUser := &db.User{
			ID:           uuid.New(),
			Username:     "jdoe",
			Email:        "john@example.com",
			PasswordHash: "hashed-password",
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		typesUser := convertDBUserToTypesUser(dbUser)
		require.NotNil(t, typesUser)
		assert.Equal(t, dbUser.ID, typesUser.ID)
		assert.Equal(t, dbUser.Username, typesUser.Username)
		assert.Equal(t, dbUser.Email, typesUser.Email)
		assert.Equal(t, dbUser.CreatedAt, typesUser.CreatedAt)
	})

	t.Run("nil user", func(t *testing.T) {
		assert.Nil(t, convertDBUserToTypesUser(nil))
	})
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	svc := newTestUserService()

	user, err := svc.Register(ctx, &types.CreateUserRequest{Username: " jane ", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "jane", user.Username)
	assert.NotEqual(t, uuid.Nil, user.ID)

	_, err = svc.Register(ctx, &types.CreateUserRequest{Username: "JANE", Password: "password123"})
	var taken *ErrUsernameTaken
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, "JANE", taken.Username)
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	svc := newTestUserService()
	registered, err := svc.Register(ctx, &types.CreateUserRequest{Username: "jane", Password: "password123"})
	require.NoError(t, err)

	user, err := svc.Login(ctx, &types.LoginRequest{Username: "Jane", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = svc.Login(ctx, &types.LoginRequest{Username: "jane", Password: "wrong-password"})
	assert.IsType(t, &ErrInvalidCredentials{}, err)

	_, err = svc.Login(ctx, &types.LoginRequest{Username: "nobody", Password: "password123"})
	assert.IsType(t, &ErrInvalidCredentials{}, err)
}

func TestUserService_UpdatePassword(t *testing.T) {
	ctx := context.Background()
	svc := newTestUserService()
	user, err := svc.Register(ctx, &types.CreateUserRequest{Username: "jane", Password: "password123"})
	require.NoError(t, err)

	err = svc.UpdatePassword(ctx, user.ID, "wrong-password", "newpassword456")
	assert.IsType(t, &ErrPasswordMismatch{}, err)

	require.NoError(t, svc.UpdatePassword(ctx, user.ID, "password123", "newpassword456"))

	_, err = svc.Login(ctx, &types.LoginRequest{Username: "jane", Password: "password123"})
	assert.Error(t, err)
	_, err = svc.Login(ctx, &types.LoginRequest{Username: "jane", Password: "newpassword456"})
	assert.NoError(t, err)

	err = svc.UpdatePassword(ctx, uuid.New(), "password123", "newpassword456")
	assert.ErrorIs(t, err, db.ErrNotFound)
}
