// Package latex scans LaTeX resume sources: section boundaries, section
// replacement and plain-text extraction.
package latex

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

// ErrSectionNotFound is returned when a named section is absent from the source.
var ErrSectionNotFound = errors.New("section not found")

var (
	sectionPattern = regexp.MustCompile(`^\s*\\section\*?\s*\{(.*)\}`)
	endDocPattern  = regexp.MustCompile(`^\s*\\end\{document\}`)
	commentPattern = regexp.MustCompile(`(^|[^\\])%.*$`)
)

// ParseSections derives the resume sections from `\section{...}` markers.
// A section runs from its heading line to the line before the next heading,
// or the line before `\end{document}` when it is the last one.
func ParseSections(source string) []types.ResumeSection {
	lines := splitLines(source)
	sections := []types.ResumeSection{}

	end := len(lines)
	for i, line := range lines {
		if endDocPattern.MatchString(stripComment(line)) {
			end = i
			break
		}
	}

	for i := 0; i < end; i++ {
		name, ok := sectionName(lines[i])
		if !ok {
			continue
		}
		if n := len(sections); n > 0 {
			sections[n-1].EndLine = i
		}
		sections = append(sections, types.ResumeSection{
			Name:      name,
			StartLine: i + 1,
			EndLine:   end,
		})
	}

	for i := range sections {
		body := lines[sections[i].StartLine:sections[i].EndLine]
		sections[i].Content = strings.TrimSpace(strings.Join(body, "\n"))
	}
	return sections
}

// ReplaceSection swaps the body of the named section (case-insensitive) for
// content, keeping the heading line and every other line untouched.
func ReplaceSection(source, name, content string) (string, error) {
	lines := splitLines(source)
	for _, sec := range ParseSections(source) {
		if !strings.EqualFold(sec.Name, strings.TrimSpace(name)) {
			continue
		}

		body := []string{}
		if trimmed := strings.Trim(content, "\n"); trimmed != "" {
			body = strings.Split(trimmed, "\n")
		}

		out := make([]string, 0, len(lines)+len(body))
		out = append(out, lines[:sec.StartLine]...)
		out = append(out, body...)
		// keep a blank separator before the next heading
		if sec.EndLine < len(lines) && len(body) > 0 {
			out = append(out, "")
		}
		out = append(out, lines[sec.EndLine:]...)
		return strings.Join(out, "\n"), nil
	}
	return "", ErrSectionNotFound
}

// SectionNames lists section names in document order.
func SectionNames(source string) []string {
	sections := ParseSections(source)
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.Name
	}
	return names
}

func sectionName(line string) (string, bool) {
	m := sectionPattern.FindStringSubmatch(stripComment(line))
	if m == nil {
		return "", false
	}
	name := m[1]
	// \section{A}\label{b}: cut at the first unbalanced closing brace
	depth := 0
	for i, r := range name {
		switch r {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				name = name[:i]
				return cleanHeading(name), true
			}
			depth--
		}
	}
	return cleanHeading(name), true
}

func cleanHeading(name string) string {
	return strings.TrimSpace(PlainText(name))
}

func stripComment(line string) string {
	return commentPattern.ReplaceAllString(line, "$1")
}

func splitLines(source string) []string {
	return strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
}
