package db

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/resume-builder/internal/types"
)

const uniqueViolation = "23505"

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	if databaseURL == "" {
		return nil, errors.New("database URL is required")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// sectionList stores resume sections as a JSONB array.
type sectionList []types.ResumeSection

// Scan implements the Scanner interface
func (s *sectionList) Scan(src any) error {
	if src == nil {
		*s = sectionList{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into sections", src)
	}
	return json.Unmarshal(raw, s)
}

// Value implements the Valuer interface
func (s sectionList) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}

// CreateResume inserts a resume, assigning an ID when it has none.
func (db *DB) CreateResume(ctx context.Context, r *types.Resume) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.CreatedAt = orNow(r.CreatedAt)
	r.UpdatedAt = orNow(r.UpdatedAt)
	_, err := db.pool.Exec(ctx,
		`INSERT INTO resumes (id, user_id, name, latex, pdf_path, template, sections, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.UserID, r.Name, r.LaTeX, r.PDFPath, r.Template, sectionList(r.Sections), r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create resume: %w", mapError(err))
	}
	return nil
}

const resumeColumns = `id, user_id, name, latex, pdf_path, template, sections, created_at, updated_at`

func scanResume(row pgx.Row) (*types.Resume, error) {
	var r types.Resume
	var sections sectionList
	if err := row.Scan(&r.ID, &r.UserID, &r.Name, &r.LaTeX, &r.PDFPath, &r.Template, &sections, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Sections = []types.ResumeSection(sections)
	if r.Sections == nil {
		r.Sections = []types.ResumeSection{}
	}
	return &r, nil
}

// GetResume retrieves a resume by ID
func (db *DB) GetResume(ctx context.Context, id uuid.UUID) (*types.Resume, error) {
	r, err := scanResume(db.pool.QueryRow(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	return r, nil
}

// ListResumes returns a user's resumes, most recently updated first.
func (db *DB) ListResumes(ctx context.Context, userID uuid.UUID) ([]types.Resume, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE user_id = $1 ORDER BY updated_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	out := []types.Resume{}
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// UpdateResume replaces a stored resume.
func (db *DB) UpdateResume(ctx context.Context, r *types.Resume) error {
	r.UpdatedAt = orNow(r.UpdatedAt)
	tag, err := db.pool.Exec(ctx,
		`UPDATE resumes SET name = $2, latex = $3, pdf_path = $4, template = $5, sections = $6, updated_at = $7
		 WHERE id = $1`,
		r.ID, r.Name, r.LaTeX, r.PDFPath, r.Template, sectionList(r.Sections), r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update resume: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteResume deletes a resume and its optimization records (via cascade)
func (db *DB) DeleteResume(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete resume: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddOptimization appends an optimization record for an existing resume.
func (db *DB) AddOptimization(ctx context.Context, rec *types.OptimizationRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = orNow(rec.CreatedAt)
	tag, err := db.pool.Exec(ctx,
		`INSERT INTO optimization_records
		   (id, resume_id, section_name, original_content, optimized_content, job_description, created_at)
		 SELECT $1, id, $3, $4, $5, $6, $7 FROM resumes WHERE id = $2`,
		rec.ID, rec.ResumeID, rec.SectionName, rec.OriginalContent, rec.OptimizedContent, rec.JobDescription, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add optimization: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListOptimizations returns a resume's optimization records, newest first.
func (db *DB) ListOptimizations(ctx context.Context, resumeID uuid.UUID) ([]types.OptimizationRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, resume_id, section_name, original_content, optimized_content, job_description, created_at
		 FROM optimization_records WHERE resume_id = $1 ORDER BY created_at DESC, id`, resumeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list optimizations: %w", err)
	}
	defer rows.Close()

	out := []types.OptimizationRecord{}
	for rows.Next() {
		var rec types.OptimizationRecord
		if err := rows.Scan(&rec.ID, &rec.ResumeID, &rec.SectionName, &rec.OriginalContent,
			&rec.OptimizedContent, &rec.JobDescription, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan optimization: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CreateConversation inserts a conversation and any initial messages.
func (db *DB) CreateConversation(ctx context.Context, c *types.ChatConversation) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = orNow(c.CreatedAt)
	c.UpdatedAt = orNow(c.UpdatedAt)

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO chat_conversations (id, user_id, persona, title, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.UserID, c.Persona, c.Title, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", mapError(err))
	}
	if err := insertMessages(ctx, tx, c.ID, c.Messages); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertMessages(ctx context.Context, tx pgx.Tx, conversationID uuid.UUID, msgs []types.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range msgs {
		batch.Queue(
			`INSERT INTO chat_messages (conversation_id, role, content, created_at) VALUES ($1, $2, $3, $4)`,
			conversationID, string(m.Role), m.Content, orNow(m.CreatedAt),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert chat messages: %w", err)
	}
	return nil
}

// GetConversation retrieves a conversation with its messages in order.
func (db *DB) GetConversation(ctx context.Context, id uuid.UUID) (*types.ChatConversation, error) {
	var c types.ChatConversation
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, persona, title, created_at, updated_at FROM chat_conversations WHERE id = $1`, id,
	).Scan(&c.ID, &c.UserID, &c.Persona, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT role, content, created_at FROM chat_messages WHERE conversation_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat messages: %w", err)
	}
	defer rows.Close()

	c.Messages = []types.ChatMessage{}
	for rows.Next() {
		var m types.ChatMessage
		var role string
		if err := rows.Scan(&role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		m.Role = types.ChatRole(role)
		c.Messages = append(c.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListConversations returns a user's conversations without messages.
func (db *DB) ListConversations(ctx context.Context, userID uuid.UUID) ([]types.ChatConversation, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, persona, title, created_at, updated_at
		 FROM chat_conversations WHERE user_id = $1 ORDER BY updated_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	out := []types.ChatConversation{}
	for rows.Next() {
		c := types.ChatConversation{Messages: []types.ChatMessage{}}
		if err := rows.Scan(&c.ID, &c.UserID, &c.Persona, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AppendMessages adds messages to the end of a conversation.
func (db *DB) AppendMessages(ctx context.Context, id uuid.UUID, msgs ...types.ChatMessage) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`UPDATE chat_conversations SET updated_at = GREATEST(updated_at, $2) WHERE id = $1`,
		id, lastMessageTime(msgs, time.Time{}),
	)
	if err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if err := insertMessages(ctx, tx, id, msgs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DeleteConversation deletes a conversation and its messages (via cascade)
func (db *DB) DeleteConversation(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM chat_conversations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateUser inserts a user; usernames are unique case-insensitively.
func (db *DB) CreateUser(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = orNow(u.CreatedAt)
	u.UpdatedAt = orNow(u.UpdatedAt)
	_, err := db.pool.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapError(err))
	}
	return nil
}

const userColumns = `id, username, email, password_hash, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// GetUser retrieves a user by ID
func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(db.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetUserByUsername retrieves a user by case-insensitive username
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(username) = LOWER($1)`, username))
}

// UpdatePassword replaces a user's password hash.
func (db *DB) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Store = (*DB)(nil)
