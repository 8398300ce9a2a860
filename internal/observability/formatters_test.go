package observability

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-builder/internal/types"
)

func TestPrintMatchResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintMatchResult(&types.MatchResult{
		Score:           72,
		Level:           "good",
		Role:            "backend",
		SkillCoverage:   0.75,
		KeywordCoverage: 0.5,
		MatchedSkills:   []string{"Go", "PostgreSQL"},
		Gaps:            []types.SkillGap{{Skill: "Kubernetes", Category: "devops"}},
		Recommendations: []string{"Add Kubernetes experience"},
	})
	output := buf.String()

	assert.Contains(t, output, "SKILL MATCH")
	assert.Contains(t, output, "72/100 (good)")
	assert.Contains(t, output, "backend")
	assert.Contains(t, output, "75% covered")
	assert.Contains(t, output, "✓ Go")
	assert.Contains(t, output, "✗ Kubernetes")
}

func TestPrintMatchResult_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintMatchResult(nil)
	assert.Empty(t, buf.String())
}

func TestPrintMatchResult_TruncatesLongLists(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintMatchResult(&types.MatchResult{
		MatchedSkills: []string{"Go", "SQL", "Docker", "Git", "REST", "gRPC", "Redis"},
	})

	assert.Contains(t, buf.String(), "... and 2 more")
	assert.NotContains(t, buf.String(), "Redis")
}

func TestPrintATSReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintATSReport(&types.ATSReport{
		Score:     64,
		Grade:     "C",
		WordCount: 320,
		Checks: []types.ATSCheck{
			{ID: "contact", Name: "Contact info", Passed: true, Score: 15, MaxScore: 15},
			{ID: "sections", Name: "Standard sections", Passed: false, Score: 10, MaxScore: 20},
		},
		Issues: []types.ATSIssue{
			{ID: "missing_section", Severity: types.SeverityWarning, Message: "No Education section"},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "ATS COMPATIBILITY")
	assert.Contains(t, output, "Grade: C")
	assert.Contains(t, output, "✓ Contact info")
	assert.Contains(t, output, "✗ Standard sections")
	assert.Contains(t, output, "No Education section")
}

func TestPrintCompileResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCompileResult("out/resume.pdf", &types.CompileResponse{
		Pages:       2,
		Placeholder: true,
		Warnings:    []string{"Overfull \\hbox"},
	})
	output := buf.String()

	assert.Contains(t, output, "out/resume.pdf")
	assert.Contains(t, output, "Pages:  2")
	assert.Contains(t, output, "placeholder")
	assert.Contains(t, output, "Overfull")
}

func TestPrintCompileError(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintCompileError(&types.CompileErrorResponse{Line: 12, Message: "Undefined control sequence."})

	assert.Contains(t, buf.String(), "COMPILATION FAILED")
	assert.Contains(t, buf.String(), "Line 12")
}

func TestPrintBox_FixedWidth(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", "short\n"+strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
	assert.Contains(t, buf.String(), "...")
}
