package ats

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/jonathan/resume-builder/internal/extract"
	"github.com/jonathan/resume-builder/internal/latex"
	"github.com/jonathan/resume-builder/internal/matching"
	"github.com/jonathan/resume-builder/internal/types"
)

// Check IDs.
const (
	CheckContact    = "contact_info"
	CheckSections   = "sections"
	CheckSummary    = "summary"
	CheckVerbs      = "action_verbs"
	CheckQuantified = "quantified_achievements"
	CheckLength     = "length"
	CheckFormatting = "formatting"
	CheckKeywords   = "keywords"
)

// Maximum points per check. They sum to 100.
const (
	contactPoints    = 10
	sectionPoints    = 20
	summaryPoints    = 5
	verbPoints       = 15
	quantifiedPoints = 15
	lengthPoints     = 10
	formattingPoints = 15
	keywordPoints    = 10
)

const (
	minWords         = 300
	maxWords         = 900
	targetVerbRatio  = 0.6
	targetQuantified = 3
	hazardPenalty    = 5
)

// Input is the resume material to check. Text is plain text; when it is
// empty and LaTeX is set, the text is derived from the LaTeX body.
type Input struct {
	Text           string
	LaTeX          string
	JobDescription string
	Role           string
}

var (
	numberPattern  = regexp.MustCompile(`\d|%|\$|€|£`)
	yearPattern    = regexp.MustCompile(`\b(19|20)\d{2}\b|\bpresent\b`)
	pronounPattern = regexp.MustCompile(`(?i)\b(i|me|my|mine|myself)\b`)
	bulletPrefix   = regexp.MustCompile(`^\s*(?:[-*•·▪‣◦]|\d+[.)])\s+`)

	graphicsPattern  = regexp.MustCompile(`\\includegraphics`)
	multicolPattern  = regexp.MustCompile(`\\begin\{multicols?\*?\}|\\usepackage(?:\[[^\]]*\])?\{multicol\}|\\twocolumn`)
	iconPattern      = regexp.MustCompile(`\\usepackage(?:\[[^\]]*\])?\{fontawesome5?\}|\\fa[A-Z][A-Za-z]*`)
	fancyhdrPattern  = regexp.MustCompile(`\\usepackage(?:\[[^\]]*\])?\{fancyhdr\}|\\fancyhead|\\fancyfoot`)
	tabularPattern   = regexp.MustCompile(`\\begin\{tabular[x*]?\}(?:\{[^}]*\})?\{([^}]*)\}`)
	columnSpecLetter = regexp.MustCompile(`[lcrpmbXLCR]`)
)

type hazard struct {
	id         string
	message    string
	suggestion string
	found      func(src string) bool
}

var hazards = []hazard{
	{
		id:         "ATS_FORMATTING_IMAGES",
		message:    "Images are not read by applicant tracking systems.",
		suggestion: "Remove \\includegraphics and keep all information as text.",
		found:      graphicsPattern.MatchString,
	},
	{
		id:         "ATS_FORMATTING_TABLES",
		message:    "Tables with more than two columns are often parsed out of order.",
		suggestion: "Use a single-column layout or a two-column tabular at most.",
		found:      hasWideTabular,
	},
	{
		id:         "ATS_FORMATTING_COLUMNS",
		message:    "Multi-column layouts can interleave text from different sections.",
		suggestion: "Switch to a single-column layout.",
		found:      multicolPattern.MatchString,
	},
	{
		id:         "ATS_FORMATTING_ICONS",
		message:    "Icon fonts render as unreadable glyphs in parsed text.",
		suggestion: "Replace icons with plain labels such as \"Email:\" or \"Phone:\".",
		found:      iconPattern.MatchString,
	},
	{
		id:         "ATS_FORMATTING_HEADERS",
		message:    "Content in page headers or footers is frequently skipped.",
		suggestion: "Move contact details out of fancyhdr headers into the document body.",
		found:      fancyhdrPattern.MatchString,
	},
}

// Check scores a resume for ATS compatibility. Checks are evaluated in a
// fixed order so the report is deterministic. Without a job description the
// keyword check is skipped and the score is scaled to 100.
func Check(in Input) *types.ATSReport {
	source := stripComments(in.LaTeX)
	text := in.Text
	if strings.TrimSpace(text) == "" && source != "" {
		text = latex.PlainText(source)
	}

	r := &report{ATSReport: &types.ATSReport{
		Checks:      []types.ATSCheck{},
		Issues:      []types.ATSIssue{},
		Suggestions: []string{},
	}}
	r.WordCount = countWords(text)

	headings := headingSet(text, source)
	bullets := bulletLines(text)

	r.checkContact(text)
	r.checkSections(headings)
	r.checkSummary(headings)
	r.checkVerbs(bullets)
	r.checkQuantified(bullets)
	r.checkLength()
	r.checkFormatting(source)
	if strings.TrimSpace(in.JobDescription) != "" {
		r.checkKeywords(text, in.JobDescription, in.Role)
	}
	r.checkStyle(text, headings)

	earned, possible := 0, 0
	for _, c := range r.Checks {
		earned += c.Score
		possible += c.MaxScore
	}
	if possible > 0 {
		r.Score = int(math.Round(100 * float64(earned) / float64(possible)))
	}
	r.Grade = Grade(r.Score)
	return r.ATSReport
}

// Grade maps a score to a letter grade.
func Grade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

type report struct {
	*types.ATSReport
}

func (r *report) add(id, name string, score, limit int, detail string) {
	if score < 0 {
		score = 0
	}
	if score > limit {
		score = limit
	}
	r.Checks = append(r.Checks, types.ATSCheck{
		ID:       id,
		Name:     name,
		Passed:   score == limit,
		Score:    score,
		MaxScore: limit,
		Detail:   detail,
	})
}

func (r *report) issue(id string, severity types.Severity, message, suggestion string) {
	r.Issues = append(r.Issues, types.ATSIssue{
		ID:         id,
		Severity:   severity,
		Message:    message,
		Suggestion: suggestion,
	})
	if suggestion == "" {
		return
	}
	for _, s := range r.Suggestions {
		if s == suggestion {
			return
		}
	}
	r.Suggestions = append(r.Suggestions, suggestion)
}

func (r *report) checkContact(text string) {
	score := 0
	var found []string
	if extract.FindEmail(text) != "" {
		score += 5
		found = append(found, "email")
	} else {
		r.issue("ATS_MISSING_EMAIL", types.SeverityCritical,
			"No email address was found.",
			"Add a professional email address near your name.")
	}
	if extract.FindPhone(text) != "" {
		score += 3
		found = append(found, "phone")
	} else {
		r.issue("ATS_MISSING_PHONE", types.SeverityWarning,
			"No phone number was found.",
			"Add a phone number with country or area code.")
	}
	if extract.FindLinkedIn(text) != "" || hasProfileLink(text) {
		score += 2
		found = append(found, "profile link")
	} else {
		r.issue("ATS_MISSING_PROFILE_LINK", types.SeverityInfo,
			"No LinkedIn or portfolio link was found.",
			"Add a LinkedIn, GitHub or portfolio URL.")
	}
	detail := "none found"
	if len(found) > 0 {
		detail = "found " + strings.Join(found, ", ")
	}
	r.add(CheckContact, "Contact information", score, contactPoints, detail)
}

func (r *report) checkSections(headings map[string]bool) {
	required := []struct {
		key    string
		points int
	}{
		{"experience", 8},
		{"education", 6},
		{"skills", 6},
	}
	score := 0
	var missing []string
	for _, s := range required {
		if headings[s.key] {
			score += s.points
			continue
		}
		missing = append(missing, extract.CanonicalTitle(s.key))
	}
	detail := "all standard sections present"
	if len(missing) > 0 {
		detail = "missing " + strings.Join(missing, ", ")
		r.issue("ATS_FORMATTING_SECTIONS", types.SeverityCritical,
			fmt.Sprintf("Standard section headings are missing: %s.", strings.Join(missing, ", ")),
			"Use conventional headings such as Experience, Education and Skills so parsers can map your content.")
	}
	r.add(CheckSections, "Standard sections", score, sectionPoints, detail)
}

func (r *report) checkSummary(headings map[string]bool) {
	if headings["summary"] {
		r.add(CheckSummary, "Summary", summaryPoints, summaryPoints, "summary section present")
		return
	}
	r.add(CheckSummary, "Summary", 0, summaryPoints, "no summary section")
	r.issue("ATS_MISSING_SUMMARY", types.SeverityInfo,
		"There is no summary section.",
		"Open with a two or three line summary targeted at the role.")
}

func (r *report) checkVerbs(bullets []string) {
	if len(bullets) == 0 {
		r.add(CheckVerbs, "Action verbs", 0, verbPoints, "no bullet points found")
		r.issue("ATS_FORMATTING_BULLETS", types.SeverityWarning,
			"No bullet points were found.",
			"Describe each role with bullet points that start with an action verb.")
		return
	}
	strong, weak := 0, 0
	for _, b := range bullets {
		first := firstWord(b)
		switch {
		case actionVerbs[first]:
			strong++
		case weakOpeners[first]:
			weak++
		}
	}
	ratio := float64(strong) / float64(len(bullets))
	score := int(math.Round(float64(verbPoints) * math.Min(1, ratio/targetVerbRatio)))
	r.add(CheckVerbs, "Action verbs", score, verbPoints,
		fmt.Sprintf("%d of %d bullets start with an action verb", strong, len(bullets)))
	if ratio < targetVerbRatio {
		r.issue("ATS_WEAK_ACTION_VERBS", types.SeverityWarning,
			fmt.Sprintf("Only %d of %d bullets start with a strong action verb.", strong, len(bullets)),
			"Start bullets with verbs like Led, Built, Reduced or Launched.")
	}
	if weak > 0 {
		r.issue("ATS_PASSIVE_PHRASING", types.SeverityInfo,
			fmt.Sprintf("%d bullets open with duty phrasing such as \"Responsible for\".", weak),
			"Rewrite duty statements as outcomes you drove.")
	}
}

func (r *report) checkQuantified(bullets []string) {
	n := 0
	for _, b := range bullets {
		if numberPattern.MatchString(b) {
			n++
		}
	}
	score := quantifiedPoints * minInt(n, targetQuantified) / targetQuantified
	r.add(CheckQuantified, "Quantified achievements", score, quantifiedPoints,
		fmt.Sprintf("%d bullets contain numbers", n))
	if n < targetQuantified {
		r.issue("ATS_FEW_METRICS", types.SeverityWarning,
			fmt.Sprintf("Only %d bullets include measurable results.", n),
			"Quantify impact with numbers, percentages or amounts.")
	}
}

func (r *report) checkLength() {
	words := r.WordCount
	var score int
	switch {
	case words >= minWords && words <= maxWords:
		score = lengthPoints
	case words >= minWords-100 && words < minWords,
		words > maxWords && words <= maxWords+300:
		score = lengthPoints / 2
	}
	r.add(CheckLength, "Length", score, lengthPoints, fmt.Sprintf("%d words", words))
	switch {
	case words < minWords:
		r.issue("ATS_TOO_SHORT", types.SeverityWarning,
			fmt.Sprintf("The resume has %d words, which reads as thin.", words),
			fmt.Sprintf("Aim for %d to %d words with concrete detail.", minWords, maxWords))
	case words > maxWords:
		r.issue("ATS_TOO_LONG", types.SeverityWarning,
			fmt.Sprintf("The resume has %d words, which is long for a screener.", words),
			fmt.Sprintf("Trim to %d to %d words, keeping the most relevant work.", minWords, maxWords))
	}
}

func (r *report) checkFormatting(source string) {
	if source == "" {
		r.add(CheckFormatting, "Formatting", formattingPoints, formattingPoints, "no source to inspect")
		return
	}
	score := formattingPoints
	var found []string
	for _, h := range hazards {
		if !h.found(source) {
			continue
		}
		score -= hazardPenalty
		found = append(found, strings.ToLower(strings.TrimPrefix(h.id, "ATS_FORMATTING_")))
		r.issue(h.id, types.SeverityWarning, h.message, h.suggestion)
	}
	detail := "no layout hazards"
	if len(found) > 0 {
		detail = "hazards: " + strings.Join(found, ", ")
	}
	r.add(CheckFormatting, "Formatting", score, formattingPoints, detail)
}

func (r *report) checkKeywords(text, jobDescription, role string) {
	match := matching.Match(text, jobDescription, role)
	r.KeywordMatch = match
	score := int(math.Round(float64(keywordPoints) * float64(match.Score) / 100))
	r.add(CheckKeywords, "Job keywords", score, keywordPoints,
		fmt.Sprintf("match score %d (%s)", match.Score, match.Level))
	if len(match.Gaps) > 0 || len(match.MissingKeywords) > 0 {
		missing := make([]string, 0, 5)
		for _, g := range match.Gaps {
			if len(missing) == cap(missing) {
				break
			}
			missing = append(missing, g.Skill)
		}
		for _, k := range match.MissingKeywords {
			if len(missing) == cap(missing) {
				break
			}
			missing = append(missing, k)
		}
		r.issue("ATS_MISSING_JD_KEYWORDS", severityForMatch(match.Score),
			fmt.Sprintf("Job description terms missing from the resume: %s.", strings.Join(missing, ", ")),
			"Mirror the job description's wording for skills you actually have.")
	}
}

// checkStyle adds unscored informational issues.
func (r *report) checkStyle(text string, headings map[string]bool) {
	if n := len(pronounPattern.FindAllString(text, -1)); n > 2 {
		r.issue("ATS_FIRST_PERSON", types.SeverityInfo,
			fmt.Sprintf("First-person pronouns appear %d times.", n),
			"Drop pronouns like \"I\" and \"my\"; start lines with the verb.")
	}
	if headings["experience"] && !yearPattern.MatchString(strings.ToLower(text)) {
		r.issue("ATS_MISSING_DATES", types.SeverityWarning,
			"Experience entries have no recognisable dates.",
			"Add start and end dates (e.g. Jan 2021 - Present) to each role.")
	}
}

func severityForMatch(score int) types.Severity {
	if score < 40 {
		return types.SeverityCritical
	}
	return types.SeverityWarning
}

// headingSet collects canonical section keys from text lines and LaTeX
// \section headings.
func headingSet(text, source string) map[string]bool {
	set := map[string]bool{}
	for _, k := range extract.HeadingKeys(text) {
		set[k] = true
	}
	if source != "" {
		for _, name := range latex.SectionNames(source) {
			if k := extract.HeadingKey(name); k != "" {
				set[k] = true
			}
		}
	}
	return set
}

// bulletLines returns bullet text with the marker removed.
func bulletLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if loc := bulletPrefix.FindStringIndex(line); loc != nil {
			if b := strings.TrimSpace(line[loc[1]:]); b != "" {
				out = append(out, b)
			}
		}
	}
	return out
}

func firstWord(s string) string {
	word := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(word) == 0 {
		return ""
	}
	return strings.ToLower(word[0])
}

func countWords(text string) int {
	n := 0
	for _, f := range strings.Fields(text) {
		if strings.IndexFunc(f, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) >= 0 {
			n++
		}
	}
	return n
}

func hasProfileLink(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "github.com/") ||
		strings.Contains(lower, "gitlab.com/") ||
		strings.Contains(lower, "http://") ||
		strings.Contains(lower, "https://")
}

func hasWideTabular(src string) bool {
	for _, m := range tabularPattern.FindAllStringSubmatch(src, -1) {
		if len(columnSpecLetter.FindAllString(m[1], -1)) > 2 {
			return true
		}
	}
	return false
}

func stripComments(source string) string {
	if source == "" {
		return ""
	}
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		for j := 0; j < len(line); j++ {
			if line[j] == '%' && (j == 0 || line[j-1] != '\\') {
				lines[i] = line[:j]
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
