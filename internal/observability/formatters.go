// Package observability provides formatted output for the CLI's human
// readable mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads s to exactly width runes.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		runes := []rune(s)
		return string(runes[:width-3]) + "..."
	}
	return s + strings.Repeat(" ", width-n)
}

// writeList writes up to maxItemsToShow items under a heading.
func writeList(sb *strings.Builder, heading, bullet string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s\n", heading)
	count := min(len(items), maxItemsToShow)
	for _, item := range items[:count] {
		fmt.Fprintf(sb, "  %s %s\n", bullet, item)
	}
	if len(items) > maxItemsToShow {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-maxItemsToShow)
	}
	sb.WriteString("\n")
}

// PrintMatchResult outputs the skill match score with matched and missing
// skills.
func (p *Printer) PrintMatchResult(m *types.MatchResult) {
	if m == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Score:    %d/100 (%s)\n", m.Score, m.Level)
	if m.Role != "" {
		fmt.Fprintf(&sb, "Role:     %s\n", m.Role)
	}
	fmt.Fprintf(&sb, "Skills:   %.0f%% covered\n", m.SkillCoverage*100)
	fmt.Fprintf(&sb, "Keywords: %.0f%% covered\n", m.KeywordCoverage*100)
	sb.WriteString("\n")

	writeList(&sb, "Matched:", "✓", m.MatchedSkills)

	missing := make([]string, 0, len(m.Gaps))
	for _, g := range m.Gaps {
		missing = append(missing, g.Skill)
	}
	writeList(&sb, "Missing:", "✗", missing)
	writeList(&sb, "Recommendations:", "•", m.Recommendations)

	p.printBox("SKILL MATCH", sb.String())
}

// PrintATSReport outputs the ATS score, the per-check breakdown and the
// issues found.
func (p *Printer) PrintATSReport(r *types.ATSReport) {
	if r == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Score: %d/100  Grade: %s  Words: %d\n\n", r.Score, r.Grade, r.WordCount)

	for _, c := range r.Checks {
		mark := "✓"
		if !c.Passed {
			mark = "✗"
		}
		fmt.Fprintf(&sb, "%s %-24s %3d/%d\n", mark, c.Name, c.Score, c.MaxScore)
	}

	if len(r.Issues) > 0 {
		sb.WriteString("\n")
		issues := make([]string, 0, len(r.Issues))
		for _, issue := range r.Issues {
			issues = append(issues, fmt.Sprintf("[%s] %s", issue.Severity, issue.Message))
		}
		writeList(&sb, "Issues:", "⚠", issues)
	}

	p.printBox("ATS COMPATIBILITY", sb.String())
}

// PrintCompileResult outputs where a compiled PDF was written.
func (p *Printer) PrintCompileResult(path string, res *types.CompileResponse) {
	if res == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Output: %s\n", path)
	fmt.Fprintf(&sb, "Pages:  %d\n", res.Pages)
	if res.Placeholder {
		sb.WriteString("Note:   pdflatex unavailable, placeholder written\n")
	}
	if len(res.Warnings) > 0 {
		sb.WriteString("\n")
		writeList(&sb, "Warnings:", "⚠", res.Warnings)
	}

	p.printBox("COMPILED", sb.String())
}

// PrintCompileError outputs a LaTeX failure with its line.
func (p *Printer) PrintCompileError(e *types.CompileErrorResponse) {
	if e == nil {
		return
	}

	var sb strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&sb, "Line %d\n", e.Line)
	}
	sb.WriteString(e.Message)

	p.printBox("COMPILATION FAILED", sb.String())
}
