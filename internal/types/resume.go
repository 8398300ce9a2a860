package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Resume is a user's LaTeX resume document. Sections are derived from the
// LaTeX source and recomputed on every save.
type Resume struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Name      string          `json:"name"`
	LaTeX     string          `json:"latex"`
	PDFPath   string          `json:"pdf_path,omitempty"`
	Template  string          `json:"template"`
	Sections  []ResumeSection `json:"sections"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ResumeSection is a `\section{...}` block of a resume. Line numbers are
// 1-based and inclusive; StartLine is the heading line.
type ResumeSection struct {
	Name      string `json:"name"`
	Content   string `json:"content"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// Section returns the section with the given name, or nil.
func (r *Resume) Section(name string) *ResumeSection {
	for i := range r.Sections {
		if strings.EqualFold(strings.TrimSpace(r.Sections[i].Name), strings.TrimSpace(name)) {
			return &r.Sections[i]
		}
	}
	return nil
}

// Contact holds the identity block used when a resume is rendered from a template.
type Contact struct {
	FullName string `json:"full_name" validate:"omitempty,max=200"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
}

// CreateResumeRequest is the body of POST /api/resumes.
type CreateResumeRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=200"`
	Template string  `json:"template,omitempty"`
	LaTeX    string  `json:"latex,omitempty"`
	Contact  Contact `json:"contact,omitempty"`
}

// UpdateResumeRequest is the body of PUT /api/resumes/{id}. The whole
// document is replaced.
type UpdateResumeRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Template string `json:"template,omitempty"`
	LaTeX    string `json:"latex" validate:"required"`
}

// UpdateSectionRequest is the body of PUT /api/resumes/{id}/sections/{name}.
type UpdateSectionRequest struct {
	Content string `json:"content"`
}

// CompileResponse describes a successful compilation.
type CompileResponse struct {
	ResumeID    uuid.UUID `json:"resume_id,omitempty"`
	PDFPath     string    `json:"pdf_path,omitempty"`
	Pages       int       `json:"pages"`
	Placeholder bool      `json:"placeholder"`
	Warnings    []string  `json:"warnings,omitempty"`
}

// CompileErrorResponse describes a failed compilation.
type CompileErrorResponse struct {
	Error   string `json:"error"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
	Log     string `json:"log,omitempty"`
}

// Template describes a LaTeX resume template.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CompileRequest is the body of POST /api/compile.
type CompileRequest struct {
	LaTeX string `json:"latex" validate:"required"`
}
