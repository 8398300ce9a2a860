// Package db persists resumes, optimization records, chat conversations and
// users. Backends: in-memory, a JSON snapshot file, or PostgreSQL.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/types"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique field is already taken.
	ErrConflict = errors.New("record already exists")
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// User is a stored account. The password hash never leaves this package
// through the API types.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store is the persistence contract shared by every backend.
//
// List methods return the most recently updated (or created, for append-only
// records) first; ListConversations omits messages. Get methods return
// ErrNotFound for unknown IDs.
type Store interface {
	CreateResume(ctx context.Context, r *types.Resume) error
	GetResume(ctx context.Context, id uuid.UUID) (*types.Resume, error)
	ListResumes(ctx context.Context, userID uuid.UUID) ([]types.Resume, error)
	UpdateResume(ctx context.Context, r *types.Resume) error
	DeleteResume(ctx context.Context, id uuid.UUID) error

	AddOptimization(ctx context.Context, rec *types.OptimizationRecord) error
	ListOptimizations(ctx context.Context, resumeID uuid.UUID) ([]types.OptimizationRecord, error)

	CreateConversation(ctx context.Context, c *types.ChatConversation) error
	GetConversation(ctx context.Context, id uuid.UUID) (*types.ChatConversation, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]types.ChatConversation, error)
	AppendMessages(ctx context.Context, id uuid.UUID, msgs ...types.ChatMessage) error
	DeleteConversation(ctx context.Context, id uuid.UUID) error

	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend     string
	DataFile    string
	DatabaseURL string
}

// Open returns the Store for opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		return OpenFileStore(opts.DataFile)
	case BackendPostgres:
		return Connect(ctx, opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
