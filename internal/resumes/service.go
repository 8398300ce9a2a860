// Package resumes implements the resume document workflow: CRUD with
// ownership checks, section editing, compilation to PDF, DOCX export,
// file import and AI section rewrites with an audit trail.
package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/compiler"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/latex"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/optimizer"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/storage"
	"github.com/jonathan/resume-builder/internal/types"
)

const maxNameLength = 200

// Compiler typesets LaTeX into PDF.
type Compiler interface {
	Compile(ctx context.Context, source string) (*compiler.Result, error)
}

// Converter converts between LaTeX and DOCX.
type Converter interface {
	Available() bool
	ToDocx(ctx context.Context, source string) ([]byte, error)
	DocxToLaTeX(ctx context.Context, docx []byte) (string, error)
}

// SectionOptimizer rewrites a resume section.
type SectionOptimizer interface {
	OptimizeSection(ctx context.Context, req optimizer.Request) (*types.OptimizationResult, error)
}

// Deps are the collaborators of a Service. Converter and Optimizer may be nil.
type Deps struct {
	Store     db.Store
	Objects   storage.ObjectStore
	Compiler  Compiler
	Converter Converter
	Optimizer SectionOptimizer
	Logger    *zap.Logger
}

// Service manages resumes on behalf of users.
type Service struct {
	store     db.Store
	objects   storage.ObjectStore
	compiler  Compiler
	converter Converter
	optimizer SectionOptimizer
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a Service.
func New(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     deps.Store,
		objects:   deps.Objects,
		compiler:  deps.Compiler,
		converter: deps.Converter,
		optimizer: deps.Optimizer,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateInput describes a new resume. An empty LaTeX renders the template
// with Contact.
type CreateInput struct {
	Name     string
	Template string
	LaTeX    string
	Contact  types.Contact
}

// UpdateInput replaces a resume wholesale.
type UpdateInput struct {
	Name     string
	Template string
	LaTeX    string
}

// Create stores a new resume for userID.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*types.Resume, error) {
	name, err := validateName(in.Name)
	if err != nil {
		return nil, err
	}
	tmpl, err := validateTemplate(in.Template)
	if err != nil {
		return nil, err
	}

	source := in.LaTeX
	if strings.TrimSpace(source) == "" {
		source, err = rendering.RenderStarter(tmpl, in.Contact)
		if err != nil {
			return nil, fmt.Errorf("failed to render template: %w", err)
		}
	}

	now := s.now()
	r := &types.Resume{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		LaTeX:     source,
		Template:  tmpl,
		Sections:  latex.ParseSections(source),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateResume(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to create resume: %w", err)
	}
	s.logger.Info("resume created", zap.String("resume_id", r.ID.String()), zap.String("template", tmpl))
	return r, nil
}

// Get returns a resume owned by userID. Resumes owned by someone else read
// as db.ErrNotFound.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*types.Resume, error) {
	r, err := s.store.GetResume(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, db.ErrNotFound
	}
	return r, nil
}

// List returns userID's resumes, most recently updated first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]types.Resume, error) {
	return s.store.ListResumes(ctx, userID)
}

// Update replaces name, template and source and re-derives sections. The
// last write wins.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, in UpdateInput) (*types.Resume, error) {
	name, err := validateName(in.Name)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.LaTeX) == "" {
		return nil, &ValidationError{Field: "latex", Message: "is required"}
	}
	r, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	tmpl := r.Template
	if in.Template != "" {
		if tmpl, err = validateTemplate(in.Template); err != nil {
			return nil, err
		}
	}

	r.Name = name
	r.Template = tmpl
	return s.saveSource(ctx, r, in.LaTeX)
}

func (s *Service) saveSource(ctx context.Context, r *types.Resume, source string) (*types.Resume, error) {
	r.LaTeX = source
	r.Sections = latex.ParseSections(source)
	r.UpdatedAt = s.now()
	if err := s.store.UpdateResume(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to update resume: %w", err)
	}
	return r, nil
}

// Delete removes a resume and, best effort, its compiled PDF.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	r, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteResume(ctx, id); err != nil {
		return err
	}
	if r.PDFPath != "" && s.objects != nil {
		if err := s.objects.Delete(ctx, r.PDFPath); err != nil {
			s.logger.Warn("failed to delete stored PDF", zap.String("key", r.PDFPath), zap.Error(err))
		}
	}
	return nil
}

// Sections returns the sections derived from the resume source.
func (s *Service) Sections(ctx context.Context, userID, id uuid.UUID) ([]types.ResumeSection, error) {
	r, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return r.Sections, nil
}

// UpdateSection replaces the body of one section, matched case-insensitively,
// leaving every other line of the source untouched.
func (s *Service) UpdateSection(ctx context.Context, userID, id uuid.UUID, name, content string) (*types.Resume, error) {
	r, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	source, err := latex.ReplaceSection(r.LaTeX, name, content)
	if err != nil {
		return nil, fmt.Errorf("section %q: %w", name, err)
	}
	return s.saveSource(ctx, r, source)
}

// Compile typesets the resume and stores the PDF. A compilation failure
// leaves the stored resume unchanged.
func (s *Service) Compile(ctx context.Context, userID, id uuid.UUID) (*types.CompileResponse, error) {
	r, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	res, err := s.CompileLaTeX(ctx, r.LaTeX)
	if err != nil {
		return nil, err
	}

	key := storage.PDFKey(r.ID.String())
	if _, err := s.objects.Put(ctx, key, "application/pdf", bytes.NewReader(res.PDF)); err != nil {
		return nil, fmt.Errorf("failed to store PDF: %w", err)
	}
	r.PDFPath = key
	if err := s.store.UpdateResume(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to record PDF path: %w", err)
	}

	s.logger.Info("resume compiled",
		zap.String("resume_id", r.ID.String()),
		zap.Int("pages", res.Pages),
		zap.Bool("placeholder", res.Placeholder),
		zap.Duration("duration", res.Duration))

	return &types.CompileResponse{
		ResumeID:    r.ID,
		PDFPath:     key,
		Pages:       res.Pages,
		Placeholder: res.Placeholder,
		Warnings:    res.Warnings,
	}, nil
}

// CompileLaTeX typesets arbitrary source without storing anything.
func (s *Service) CompileLaTeX(ctx context.Context, source string) (*compiler.Result, error) {
	if s.compiler == nil {
		return nil, &compiler.ToolUnavailableError{Tool: "pdflatex"}
	}
	return s.compiler.Compile(ctx, source)
}

// OpenPDF opens the last compiled PDF of a resume.
func (s *Service) OpenPDF(ctx context.Context, userID, id uuid.UUID) (io.ReadCloser, error) {
	r, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if r.PDFPath == "" {
		return nil, &NotCompiledError{ResumeID: r.ID.String()}
	}
	rc, err := s.objects.Open(ctx, r.PDFPath)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &NotCompiledError{ResumeID: r.ID.String()}
	}
	return rc, err
}

// ExportDocx converts the resume to DOCX with pandoc.
func (s *Service) ExportDocx(ctx context.Context, userID, id uuid.UUID) ([]byte, error) {
	r, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if s.converter == nil || !s.converter.Available() {
		return nil, &compiler.ToolUnavailableError{Tool: "pandoc"}
	}
	return s.converter.ToDocx(ctx, r.LaTeX)
}

// PlainText returns the readable text of a resume for matching and checks.
func (s *Service) PlainText(r *types.Resume) string {
	return latex.PlainText(r.LaTeX)
}

// OptimizeInput asks for an AI rewrite of one section.
type OptimizeInput struct {
	Section        string
	JobDescription string
	Instructions   string
	Apply          bool
}

// Optimize rewrites one section, records the rewrite and, when Apply is
// set, writes it back into the resume.
func (s *Service) Optimize(ctx context.Context, userID, id uuid.UUID, in OptimizeInput) (*types.OptimizeResponse, error) {
	r, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	sec := r.Section(in.Section)
	if sec == nil {
		return nil, fmt.Errorf("section %q: %w", in.Section, latex.ErrSectionNotFound)
	}
	if s.optimizer == nil {
		return nil, fmt.Errorf("failed to optimize section: %w", llm.ErrNotConfigured)
	}

	result, err := s.optimizer.OptimizeSection(ctx, optimizer.Request{
		SectionName:    sec.Name,
		Content:        sec.Content,
		JobDescription: in.JobDescription,
		Instructions:   in.Instructions,
	})
	if err != nil {
		return nil, err
	}

	rec := &types.OptimizationRecord{
		ResumeID:         r.ID,
		SectionName:      sec.Name,
		OriginalContent:  sec.Content,
		OptimizedContent: result.OptimizedContent,
		JobDescription:   in.JobDescription,
		CreatedAt:        s.now(),
	}
	if err := s.store.AddOptimization(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to record optimization: %w", err)
	}

	resp := &types.OptimizeResponse{Result: result, Record: rec}
	if in.Apply {
		updated, err := s.UpdateSection(ctx, userID, id, sec.Name, result.OptimizedContent)
		if err != nil {
			return nil, err
		}
		resp.Applied = true
		resp.Resume = updated
	}
	return resp, nil
}

// ListOptimizations returns the rewrite audit log of a resume, newest first.
func (s *Service) ListOptimizations(ctx context.Context, userID, id uuid.UUID) ([]types.OptimizationRecord, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.store.ListOptimizations(ctx, id)
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Field: "name", Message: "is required"}
	}
	if len([]rune(name)) > maxNameLength {
		return "", &ValidationError{Field: "name", Message: fmt.Sprintf("must be at most %d characters", maxNameLength)}
	}
	return name, nil
}

func validateTemplate(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return rendering.DefaultTemplate, nil
	}
	if !rendering.HasTemplate(id) {
		return "", &ValidationError{Field: "template", Message: fmt.Sprintf("unknown template %q", id)}
	}
	return id, nil
}
