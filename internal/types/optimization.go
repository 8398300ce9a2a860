package types

import (
	"time"

	"github.com/google/uuid"
)

// OptimizationRecord is an append-only audit entry for an AI section rewrite.
type OptimizationRecord struct {
	ID               uuid.UUID `json:"id"`
	ResumeID         uuid.UUID `json:"resume_id"`
	SectionName      string    `json:"section_name"`
	OriginalContent  string    `json:"original_content"`
	OptimizedContent string    `json:"optimized_content"`
	JobDescription   string    `json:"job_description,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// OptimizationResult is the structured rewrite returned by the AI proxy.
type OptimizationResult struct {
	OptimizedContent string   `json:"optimized_content"`
	Explanation      string   `json:"explanation"`
	KeywordsAdded    []string `json:"keywords_added"`
	Changes          []string `json:"changes"`
}

// OptimizeSectionRequest is the body of POST /api/resumes/{id}/optimize.
type OptimizeSectionRequest struct {
	Section        string `json:"section" validate:"required"`
	JobDescription string `json:"job_description,omitempty" validate:"max=20000"`
	Instructions   string `json:"instructions,omitempty" validate:"max=2000"`
	Apply          bool   `json:"apply,omitempty"`
}

// OptimizeTextRequest is the body of POST /api/optimize.
type OptimizeTextRequest struct {
	Section        string `json:"section" validate:"required"`
	Content        string `json:"content" validate:"required,max=20000"`
	JobDescription string `json:"job_description,omitempty" validate:"max=20000"`
	Instructions   string `json:"instructions,omitempty" validate:"max=2000"`
}

// OptimizeResponse pairs the rewrite with its audit record, when one was kept.
type OptimizeResponse struct {
	Result  *OptimizationResult `json:"result"`
	Record  *OptimizationRecord `json:"record,omitempty"`
	Applied bool                `json:"applied"`
	Resume  *Resume             `json:"resume,omitempty"`
}
