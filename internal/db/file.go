package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/types"
)

const snapshotVersion = 1

// snapshot is the on-disk layout of a FileStore.
type snapshot struct {
	Version       int                        `json:"version"`
	Resumes       []types.Resume             `json:"resumes"`
	Optimizations []types.OptimizationRecord `json:"optimizations"`
	Conversations []types.ChatConversation   `json:"conversations"`
	Users         []User                     `json:"users"`
}

// FileStore is a MemoryStore that writes a full JSON snapshot to disk after
// every mutation. The file is replaced atomically via a temp file and rename.
type FileStore struct {
	*MemoryStore
	path   string
	saveMu sync.Mutex
}

// OpenFileStore loads path if it exists and returns a store backed by it.
func OpenFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("data file path is required")
	}
	mem := NewMemoryStore()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read data file: %w", err)
	case len(data) > 0:
		var snap snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("failed to parse data file %s: %w", path, err)
		}
		mem.restore(&snap)
	}
	return &FileStore{MemoryStore: mem, path: path}, nil
}

// Path returns the snapshot file location.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) save() error {
	f.saveMu.Lock()
	defer f.saveMu.Unlock()

	data, err := json.MarshalIndent(f.MemoryStore.snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace data file: %w", err)
	}
	return nil
}

// CreateResume implements Store.
func (f *FileStore) CreateResume(ctx context.Context, r *types.Resume) error {
	if err := f.MemoryStore.CreateResume(ctx, r); err != nil {
		return err
	}
	return f.save()
}

// UpdateResume implements Store.
func (f *FileStore) UpdateResume(ctx context.Context, r *types.Resume) error {
	if err := f.MemoryStore.UpdateResume(ctx, r); err != nil {
		return err
	}
	return f.save()
}

// DeleteResume implements Store.
func (f *FileStore) DeleteResume(ctx context.Context, id uuid.UUID) error {
	if err := f.MemoryStore.DeleteResume(ctx, id); err != nil {
		return err
	}
	return f.save()
}

// AddOptimization implements Store.
func (f *FileStore) AddOptimization(ctx context.Context, rec *types.OptimizationRecord) error {
	if err := f.MemoryStore.AddOptimization(ctx, rec); err != nil {
		return err
	}
	return f.save()
}

// CreateConversation implements Store.
func (f *FileStore) CreateConversation(ctx context.Context, c *types.ChatConversation) error {
	if err := f.MemoryStore.CreateConversation(ctx, c); err != nil {
		return err
	}
	return f.save()
}

// AppendMessages implements Store.
func (f *FileStore) AppendMessages(ctx context.Context, id uuid.UUID, msgs ...types.ChatMessage) error {
	if err := f.MemoryStore.AppendMessages(ctx, id, msgs...); err != nil {
		return err
	}
	return f.save()
}

// DeleteConversation implements Store.
func (f *FileStore) DeleteConversation(ctx context.Context, id uuid.UUID) error {
	if err := f.MemoryStore.DeleteConversation(ctx, id); err != nil {
		return err
	}
	return f.save()
}

// CreateUser implements Store.
func (f *FileStore) CreateUser(ctx context.Context, u *User) error {
	if err := f.MemoryStore.CreateUser(ctx, u); err != nil {
		return err
	}
	return f.save()
}

// UpdatePassword implements Store.
func (f *FileStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	if err := f.MemoryStore.UpdatePassword(ctx, id, passwordHash); err != nil {
		return err
	}
	return f.save()
}

// snapshot copies the store contents in a stable order.
func (m *MemoryStore) snapshot() *snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := &snapshot{
		Version:       snapshotVersion,
		Resumes:       make([]types.Resume, 0, len(m.resumes)),
		Optimizations: append([]types.OptimizationRecord{}, m.optimizations...),
		Conversations: make([]types.ChatConversation, 0, len(m.conversations)),
		Users:         make([]User, 0, len(m.users)),
	}
	for _, r := range m.resumes {
		snap.Resumes = append(snap.Resumes, *cloneResume(r))
	}
	for _, c := range m.conversations {
		snap.Conversations = append(snap.Conversations, *cloneConversation(c))
	}
	for _, u := range m.users {
		snap.Users = append(snap.Users, *u)
	}

	sort.Slice(snap.Resumes, func(i, j int) bool {
		return snap.Resumes[i].ID.String() < snap.Resumes[j].ID.String()
	})
	sort.Slice(snap.Conversations, func(i, j int) bool {
		return snap.Conversations[i].ID.String() < snap.Conversations[j].ID.String()
	})
	sort.Slice(snap.Users, func(i, j int) bool {
		return snap.Users[i].ID.String() < snap.Users[j].ID.String()
	})
	return snap
}

func (m *MemoryStore) restore(snap *snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range snap.Resumes {
		m.resumes[snap.Resumes[i].ID] = cloneResume(&snap.Resumes[i])
	}
	m.optimizations = append(m.optimizations[:0], snap.Optimizations...)
	for i := range snap.Conversations {
		m.conversations[snap.Conversations[i].ID] = cloneConversation(&snap.Conversations[i])
	}
	for i := range snap.Users {
		u := snap.Users[i]
		m.users[u.ID] = &u
		m.usernames[usernameKey(u.Username)] = u.ID
	}
}

var _ Store = (*FileStore)(nil)
