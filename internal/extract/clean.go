package extract

import (
	"regexp"
	"strings"
)

var (
	innerSpace   = regexp.MustCompile(`[ \t\x{00a0}]+`)
	excessBlanks = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes extracted text while keeping its line structure:
// CRLF becomes LF, runs of spaces collapse, bullet glyphs become "- " and
// blank lines are capped at one.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\f", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := strings.Join(lines, "\n")
	result = excessBlanks.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	line = strings.TrimSpace(innerSpace.ReplaceAllString(line, " "))
	if line == "" {
		return ""
	}
	for _, glyph := range []string{"•", "·", "▪", "●", "◦", "‣", "*"} {
		if strings.HasPrefix(line, glyph) {
			return "- " + strings.TrimSpace(strings.TrimPrefix(line, glyph))
		}
	}
	return line
}
