package latex

import (
	"regexp"
	"strings"
)

var (
	beginDocument = regexp.MustCompile(`\\begin\{document\}`)
	endDocument   = regexp.MustCompile(`\\end\{document\}`)
	// commands whose arguments carry no readable text
	droppedCommands = regexp.MustCompile(`\\(?:usepackage|documentclass|geometry|setlength|addtolength|vspace|hspace|pagestyle|thispagestyle|titleformat|titlespacing|newcommand|renewcommand|definecolor|color|label|includegraphics|input|include|setcounter|fontsize|linespread)\*?(?:\[[^\]]*\])?(?:\{[^{}]*\})*`)
	environments    = regexp.MustCompile(`\\(?:begin|end)\{[^}]*\}(?:\{[^}]*\})*(?:\[[^\]]*\])?`)
	hrefCommand     = regexp.MustCompile(`\\href\{([^}]*)\}\{([^}]*)\}`)
	itemCommand     = regexp.MustCompile(`\\item(?:\[[^\]]*\])?\s*`)
	lineBreaks      = regexp.MustCompile(`\\\\(?:\[[^\]]*\])?|\\newline|\\linebreak`)
	commandName     = regexp.MustCompile(`\\[a-zA-Z@]+\*?(?:\[[^\]]*\])?`)
	multiSpace      = regexp.MustCompile(`[ \t]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

var symbolReplacer = strings.NewReplacer(
	`\textbackslash{}`, `\`,
	`\textasciitilde{}`, "~",
	`\textasciicircum{}`, "^",
	`\textbar{}`, "|",
	`\textbullet{}`, "-",
	`\textbullet`, "-",
	`\LaTeX{}`, "LaTeX",
	`\LaTeX`, "LaTeX",
	"---", "-",
	"--", "-",
	"~", " ",
	"``", `"`,
	"''", `"`,
)

// PlainText reduces LaTeX source to readable text for keyword matching and
// ATS checks. Only the document body is kept when one is present.
func PlainText(source string) string {
	text := strings.ReplaceAll(source, "\r\n", "\n")
	if loc := beginDocument.FindStringIndex(text); loc != nil {
		text = text[loc[1]:]
	}
	if loc := endDocument.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = stripComment(line)
	}
	text = strings.Join(lines, "\n")

	text = symbolReplacer.Replace(text)
	text = droppedCommands.ReplaceAllString(text, "")
	text = environments.ReplaceAllString(text, "")
	text = hrefCommand.ReplaceAllString(text, "$2")
	text = itemCommand.ReplaceAllString(text, "- ")
	text = lineBreaks.ReplaceAllString(text, "\n")
	text = commandName.ReplaceAllString(text, "")
	text = unescape(text)

	lines = strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(multiSpace.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	return strings.TrimSpace(blankLines.ReplaceAllString(text, "\n\n"))
}

// unescape keeps escaped special characters and drops the grouping
// characters that remain once commands are gone.
func unescape(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	escaped := false
	for _, r := range text {
		if escaped {
			escaped = false
			switch r {
			case '&', '%', '$', '#', '_', '{', '}':
				b.WriteRune(r)
				continue
			}
		}
		switch r {
		case '\\':
			escaped = true
		case '{', '}', '$':
		case '&':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
