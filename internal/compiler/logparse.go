package compiler

import (
	"regexp"
	"strconv"
	"strings"
)

// LogError is one error reported in a pdflatex log.
type LogError struct {
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
}

var (
	bangPattern     = regexp.MustCompile(`^! (.+)$`)
	lineRefPattern  = regexp.MustCompile(`^l\.(\d+)\s?(.*)$`)
	fileLinePattern = regexp.MustCompile(`^(?:\./)?[^:\s]+\.tex:(\d+): (.+)$`)
	warningPattern  = regexp.MustCompile(`^(?:LaTeX|Package [A-Za-z0-9_-]+) Warning: (.+)$`)
	rerunPattern    = regexp.MustCompile(`Rerun to get|Label\(s\) may have changed`)
)

// terminal messages pdflatex adds after the real error
var followUps = map[string]bool{
	"Emergency stop.": true,
	"==> Fatal error occurred, no output PDF file produced!": true,
}

// ParseLog extracts errors from pdflatex output. Both the classic format
// ("! message" followed by "l.NN") and -file-line-error format
// ("./file.tex:NN: message") are recognised.
func ParseLog(log string) []LogError {
	var (
		errs    []LogError
		pending *LogError
	)

	flush := func() {
		if pending != nil {
			errs = appendUnique(errs, *pending)
			pending = nil
		}
	}

	for _, raw := range strings.Split(strings.ReplaceAll(log, "\r\n", "\n"), "\n") {
		line := strings.TrimRight(raw, " ")

		if m := fileLinePattern.FindStringSubmatch(line); m != nil {
			flush()
			n, _ := strconv.Atoi(m[1])
			pending = &LogError{Line: n, Message: strings.TrimSpace(m[2])}
			continue
		}
		if m := bangPattern.FindStringSubmatch(line); m != nil {
			flush()
			pending = &LogError{Message: strings.TrimSpace(m[1])}
			continue
		}
		if m := lineRefPattern.FindStringSubmatch(line); m != nil && pending != nil {
			if pending.Line == 0 {
				pending.Line, _ = strconv.Atoi(m[1])
			}
			pending.Context = strings.TrimSpace(m[2])
			flush()
		}
	}
	flush()

	if len(errs) > 1 {
		kept := errs[:0]
		for _, e := range errs {
			if !followUps[e.Message] {
				kept = append(kept, e)
			}
		}
		if len(kept) > 0 {
			errs = kept
		}
	}
	return errs
}

// FirstError returns the first error in the log, or nil when there is none.
func FirstError(log string) *LogError {
	errs := ParseLog(log)
	if len(errs) == 0 {
		return nil
	}
	return &errs[0]
}

// ParseWarnings returns the LaTeX and package warnings in the log.
func ParseWarnings(log string) []string {
	var warnings []string
	seen := map[string]bool{}
	for _, line := range strings.Split(log, "\n") {
		m := warningPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil || seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		warnings = append(warnings, m[1])
	}
	return warnings
}

func needsRerun(log string) bool {
	return rerunPattern.MatchString(log)
}

func appendUnique(errs []LogError, e LogError) []LogError {
	for _, existing := range errs {
		if existing.Line == e.Line && existing.Message == e.Message {
			return errs
		}
	}
	return append(errs, e)
}
