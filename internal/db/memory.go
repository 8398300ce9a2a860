package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/types"
)

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu            sync.RWMutex
	resumes       map[uuid.UUID]*types.Resume
	optimizations []types.OptimizationRecord
	conversations map[uuid.UUID]*types.ChatConversation
	users         map[uuid.UUID]*User
	usernames     map[string]uuid.UUID
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		resumes:       make(map[uuid.UUID]*types.Resume),
		conversations: make(map[uuid.UUID]*types.ChatConversation),
		users:         make(map[uuid.UUID]*User),
		usernames:     make(map[string]uuid.UUID),
	}
}

func usernameKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// CreateResume stores a new resume, assigning an ID when it has none.
func (m *MemoryStore) CreateResume(ctx context.Context, r *types.Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.CreatedAt = orNow(r.CreatedAt)
	r.UpdatedAt = orNow(r.UpdatedAt)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.resumes[r.ID]; exists {
		return ErrConflict
	}
	m.resumes[r.ID] = cloneResume(r)
	return nil
}

// GetResume returns a copy of a resume.
func (m *MemoryStore) GetResume(ctx context.Context, id uuid.UUID) (*types.Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.resumes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneResume(r), nil
}

// ListResumes returns a user's resumes, most recently updated first.
func (m *MemoryStore) ListResumes(ctx context.Context, userID uuid.UUID) ([]types.Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := []types.Resume{}
	for _, r := range m.resumes {
		if r.UserID == userID {
			out = append(out, *cloneResume(r))
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// UpdateResume replaces a stored resume wholesale.
func (m *MemoryStore) UpdateResume(ctx context.Context, r *types.Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.resumes[r.ID]; !ok {
		return ErrNotFound
	}
	m.resumes[r.ID] = cloneResume(r)
	return nil
}

// DeleteResume removes a resume and its optimization records.
func (m *MemoryStore) DeleteResume(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.resumes[id]; !ok {
		return ErrNotFound
	}
	delete(m.resumes, id)

	kept := m.optimizations[:0]
	for _, rec := range m.optimizations {
		if rec.ResumeID != id {
			kept = append(kept, rec)
		}
	}
	m.optimizations = kept
	return nil
}

// AddOptimization appends an optimization record.
func (m *MemoryStore) AddOptimization(ctx context.Context, rec *types.OptimizationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = orNow(rec.CreatedAt)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.resumes[rec.ResumeID]; !ok {
		return ErrNotFound
	}
	m.optimizations = append(m.optimizations, *rec)
	return nil
}

// ListOptimizations returns a resume's records, newest first.
func (m *MemoryStore) ListOptimizations(ctx context.Context, resumeID uuid.UUID) ([]types.OptimizationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := []types.OptimizationRecord{}
	for i := len(m.optimizations) - 1; i >= 0; i-- {
		if m.optimizations[i].ResumeID == resumeID {
			out = append(out, m.optimizations[i])
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// CreateConversation stores a new conversation.
func (m *MemoryStore) CreateConversation(ctx context.Context, c *types.ChatConversation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = orNow(c.CreatedAt)
	c.UpdatedAt = orNow(c.UpdatedAt)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.conversations[c.ID]; exists {
		return ErrConflict
	}
	m.conversations[c.ID] = cloneConversation(c)
	return nil
}

// GetConversation returns a copy of a conversation with its messages.
func (m *MemoryStore) GetConversation(ctx context.Context, id uuid.UUID) (*types.ChatConversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneConversation(c), nil
}

// ListConversations returns a user's conversations, most recent first,
// without their messages.
func (m *MemoryStore) ListConversations(ctx context.Context, userID uuid.UUID) ([]types.ChatConversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := []types.ChatConversation{}
	for _, c := range m.conversations {
		if c.UserID == userID {
			summary := *c
			summary.Messages = []types.ChatMessage{}
			out = append(out, summary)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// AppendMessages adds messages to the end of a conversation.
func (m *MemoryStore) AppendMessages(ctx context.Context, id uuid.UUID, msgs ...types.ChatMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[id]
	if !ok {
		return ErrNotFound
	}
	for _, msg := range msgs {
		msg.CreatedAt = orNow(msg.CreatedAt)
		c.Messages = append(c.Messages, msg)
	}
	c.UpdatedAt = lastMessageTime(msgs, c.UpdatedAt)
	return nil
}

// DeleteConversation removes a conversation.
func (m *MemoryStore) DeleteConversation(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.conversations[id]; !ok {
		return ErrNotFound
	}
	delete(m.conversations, id)
	return nil
}

// CreateUser stores a user; usernames are unique case-insensitively.
func (m *MemoryStore) CreateUser(ctx context.Context, u *User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = orNow(u.CreatedAt)
	u.UpdatedAt = orNow(u.UpdatedAt)
	key := usernameKey(u.Username)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.usernames[key]; taken {
		return ErrConflict
	}
	if _, exists := m.users[u.ID]; exists {
		return ErrConflict
	}
	m.users[u.ID] = cloneUser(u)
	m.usernames[key] = u.ID
	return nil
}

// GetUser returns a user by ID.
func (m *MemoryStore) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

// GetUserByUsername returns a user by case-insensitive username.
func (m *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.usernames[usernameKey(username)]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(m.users[id]), nil
}

// UpdatePassword replaces a user's password hash.
func (m *MemoryStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

func lastMessageTime(msgs []types.ChatMessage, fallback time.Time) time.Time {
	latest := fallback
	for _, msg := range msgs {
		if msg.CreatedAt.After(latest) {
			latest = msg.CreatedAt
		}
	}
	return latest
}

var _ Store = (*MemoryStore)(nil)
