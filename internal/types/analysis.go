package types

// SkillGap is a required skill missing from the resume.
type SkillGap struct {
	Skill    string `json:"skill"`
	Category string `json:"category"`
	// RoleRequired is set when the skill comes from the role table rather
	// than the job description text.
	RoleRequired bool `json:"role_required"`
	InJobText    bool `json:"in_job_text"`
}

// MatchResult is the outcome of comparing a resume against a job description.
type MatchResult struct {
	Score            int        `json:"score"`
	Level            string     `json:"level"`
	Role             string     `json:"role,omitempty"`
	SkillCoverage    float64    `json:"skill_coverage"`
	KeywordCoverage  float64    `json:"keyword_coverage"`
	RequiredSkills   []string   `json:"required_skills"`
	MatchedSkills    []string   `json:"matched_skills"`
	Gaps             []SkillGap `json:"gaps"`
	AdditionalSkills []string   `json:"additional_skills"`
	MatchedKeywords  []string   `json:"matched_keywords"`
	MissingKeywords  []string   `json:"missing_keywords"`
	Recommendations  []string   `json:"recommendations"`
}

// Severity ranks an ATS issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// ATSCheck is the outcome of one scored ATS rule.
type ATSCheck struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Score    int    `json:"score"`
	MaxScore int    `json:"max_score"`
	Detail   string `json:"detail,omitempty"`
}

// ATSIssue is a problem an applicant tracking system is likely to trip on.
type ATSIssue struct {
	ID         string   `json:"id"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion"`
}

// ATSReport is the ATS compatibility feedback for a resume.
type ATSReport struct {
	Score        int          `json:"score"`
	Grade        string       `json:"grade"`
	WordCount    int          `json:"word_count"`
	Checks       []ATSCheck   `json:"checks"`
	Issues       []ATSIssue   `json:"issues"`
	Suggestions  []string     `json:"suggestions"`
	KeywordMatch *MatchResult `json:"keyword_match,omitempty"`
}

// AnalysisRequest is the shared body of the match, ATS and analysis
// endpoints. Either ResumeText or ResumeID identifies the resume; either
// JobDescription or JobURL identifies the posting.
type AnalysisRequest struct {
	ResumeText     string `json:"resume_text,omitempty" validate:"max=100000"`
	ResumeID       string `json:"resume_id,omitempty" validate:"omitempty,uuid"`
	JobDescription string `json:"job_description,omitempty" validate:"max=50000"`
	JobURL         string `json:"job_url,omitempty" validate:"omitempty,url"`
	Role           string `json:"role,omitempty"`
	IncludeAI      bool   `json:"include_ai,omitempty"`
}

// AnalysisResponse combines match scoring, ATS feedback and an optional AI insight.
type AnalysisResponse struct {
	Match   *MatchResult `json:"match,omitempty"`
	ATS     *ATSReport   `json:"ats"`
	Insight *Insight     `json:"insight,omitempty"`
}

// Insight is the AI-written summary attached to an analysis.
type Insight struct {
	Summary   string   `json:"summary"`
	Strengths []string `json:"strengths"`
	NextSteps []string `json:"next_steps"`
}

// FetchJobRequest is the body of POST /api/job-description/fetch.
type FetchJobRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// FetchJobResponse returns the extracted posting text.
type FetchJobResponse struct {
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	Text     string `json:"text"`
	Rendered bool   `json:"rendered"`
}
