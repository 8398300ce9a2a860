// Package optimizer rewrites resume sections and writes analysis insights
// with a generative-AI model.
package optimizer

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/matching"
	"github.com/jonathan/resume-builder/internal/prompts"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

const (
	maxSectionChars = 20000
	maxJobChars     = 20000
	maxResumeChars  = 30000
	insightListCap  = 4
)

var (
	sectionHeading = regexp.MustCompile(`^\s*\\section\*?\{[^}]*\}\s*\n?`)
	// fragments that would break the surrounding document or start a new section
	documentLevel = regexp.MustCompile(`\\documentclass|\\begin\{document\}|\\end\{document\}|\\section\*?\s*\{`)
)

// Optimizer calls the model for section rewrites and insights.
type Optimizer struct {
	client llm.Client
	logger *zap.Logger
}

// New creates an Optimizer. client may be nil, in which case every call
// fails with llm.ErrNotConfigured.
func New(client llm.Client, logger *zap.Logger) *Optimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{client: client, logger: logger}
}

// Available reports whether a model client is configured.
func (o *Optimizer) Available() bool {
	return o != nil && o.client != nil
}

// Request is a section rewrite request.
type Request struct {
	SectionName    string
	Content        string
	JobDescription string
	Instructions   string
}

type optimizationResponse struct {
	OptimizedContent string   `json:"optimized_content"`
	Explanation      string   `json:"explanation"`
	KeywordsAdded    []string `json:"keywords_added"`
	Changes          []string `json:"changes"`
}

// OptimizeSection rewrites one LaTeX section for a job description. The
// model reply must satisfy the optimization schema and may not contain
// document-level LaTeX.
func (o *Optimizer) OptimizeSection(ctx context.Context, req Request) (*types.OptimizationResult, error) {
	if !o.Available() {
		return nil, fmt.Errorf("failed to optimize section: %w", llm.ErrNotConfigured)
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, &InputError{Message: "section content is empty"}
	}
	if len(req.Content) > maxSectionChars {
		return nil, &InputError{Message: fmt.Sprintf("section content exceeds %d characters", maxSectionChars)}
	}

	system, err := prompts.Get(prompts.OptimizeFile, "optimize-section-system")
	if err != nil {
		return nil, err
	}
	prompt, err := prompts.Render(prompts.OptimizeFile, "optimize-section-user", map[string]string{
		"Section":        orDefault(req.SectionName, "Unnamed section"),
		"JobDescription": orDefault(truncate(req.JobDescription, maxJobChars), "(none provided)"),
		"Instructions":   orDefault(req.Instructions, "(none)"),
		"Content":        req.Content,
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := o.client.GenerateJSON(ctx, system, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &APICallError{Message: "failed to optimize section", Cause: err}
	}
	o.logger.Debug("section optimized",
		zap.String("section", req.SectionName),
		zap.String("model", o.client.GetModel(llm.TierAdvanced)),
		zap.Duration("duration", time.Since(start)))

	if err := schemas.Validate(schemas.Optimization, raw); err != nil {
		return nil, &ResponseError{Message: "optimization does not match schema", Cause: err}
	}
	var resp optimizationResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, &ResponseError{Message: "failed to parse optimization", Cause: err}
	}

	content, err := sanitizeSection(resp.OptimizedContent)
	if err != nil {
		return nil, err
	}

	keywords := dedupe(resp.KeywordsAdded)
	if len(keywords) == 0 {
		keywords = addedSkills(req.Content, content, req.JobDescription)
	}
	changes := dedupe(resp.Changes)
	if changes == nil {
		changes = []string{}
	}

	return &types.OptimizationResult{
		OptimizedContent: content,
		Explanation:      strings.TrimSpace(resp.Explanation),
		KeywordsAdded:    keywords,
		Changes:          changes,
	}, nil
}

type insightResponse struct {
	Summary   string   `json:"summary"`
	Strengths []string `json:"strengths"`
	NextSteps []string `json:"next_steps"`
}

// Summarize writes a short career insight from a resume, a job description
// and the rule-based match result.
func (o *Optimizer) Summarize(ctx context.Context, resumeText, jobText string, match *types.MatchResult) (*types.Insight, error) {
	if !o.Available() {
		return nil, fmt.Errorf("failed to summarize analysis: %w", llm.ErrNotConfigured)
	}
	if strings.TrimSpace(resumeText) == "" {
		return nil, &InputError{Message: "resume text is empty"}
	}

	data := map[string]string{
		"Score":          "n/a",
		"Level":          "n/a",
		"Matched":        "(none)",
		"Missing":        "(none)",
		"JobDescription": orDefault(truncate(jobText, maxJobChars), "(none provided)"),
		"Resume":         truncate(resumeText, maxResumeChars),
	}
	if match != nil {
		data["Score"] = strconv.Itoa(match.Score)
		data["Level"] = match.Level
		if len(match.MatchedSkills) > 0 {
			data["Matched"] = strings.Join(match.MatchedSkills, ", ")
		}
		if len(match.Gaps) > 0 {
			missing := make([]string, 0, len(match.Gaps))
			for _, g := range match.Gaps {
				missing = append(missing, g.Skill)
			}
			data["Missing"] = strings.Join(missing, ", ")
		}
	}

	system, err := prompts.Get(prompts.InsightFile, "insight-system")
	if err != nil {
		return nil, err
	}
	prompt, err := prompts.Render(prompts.InsightFile, "insight-user", data)
	if err != nil {
		return nil, err
	}

	raw, err := o.client.GenerateJSON(ctx, system, prompt, llm.TierLite)
	if err != nil {
		return nil, &APICallError{Message: "failed to summarize analysis", Cause: err}
	}
	if err := schemas.Validate(schemas.Insight, raw); err != nil {
		return nil, &ResponseError{Message: "insight does not match schema", Cause: err}
	}
	var resp insightResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, &ResponseError{Message: "failed to parse insight", Cause: err}
	}

	return &types.Insight{
		Summary:   strings.TrimSpace(resp.Summary),
		Strengths: capList(dedupe(resp.Strengths), insightListCap),
		NextSteps: capList(dedupe(resp.NextSteps), insightListCap),
	}, nil
}

// sanitizeSection removes a repeated \section heading and rejects content
// that cannot be spliced back into a document.
func sanitizeSection(content string) (string, error) {
	content = strings.TrimSpace(llm.StripCodeFence(content))
	content = strings.TrimSpace(sectionHeading.ReplaceAllString(content, ""))
	if content == "" {
		return "", &ResponseError{Message: "optimized content is empty"}
	}
	if documentLevel.MatchString(content) {
		return "", &ResponseError{Message: "optimized content contains document-level commands or a new section"}
	}
	if !balancedBraces(content) {
		return "", &ResponseError{Message: "optimized content has unbalanced braces"}
	}
	return content, nil
}

func balancedBraces(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++ // skip the escaped character
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// addedSkills lists job skills that appear in the rewrite but not in the
// original.
func addedSkills(original, optimized, job string) []string {
	before := map[string]bool{}
	for _, s := range matching.ExtractSkills(original) {
		before[s] = true
	}
	wanted := map[string]bool{}
	for _, s := range matching.ExtractSkills(job) {
		wanted[s] = true
	}
	added := []string{}
	for _, s := range matching.ExtractSkills(optimized) {
		if !before[s] && (len(wanted) == 0 || wanted[s]) {
			added = append(added, s)
		}
	}
	sort.Strings(added)
	return added
}

func dedupe(items []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, item := range items {
		item = strings.TrimSpace(item)
		key := strings.ToLower(item)
		if item == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

func capList(items []string, n int) []string {
	if items == nil {
		return []string{}
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
