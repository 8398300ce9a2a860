package extract

import (
	"strings"
)

// Section is a run of lines under a recognised resume heading.
type Section struct {
	// Key is the canonical heading ("experience", "skills", ...); empty for
	// text before the first heading.
	Key   string
	Title string
	Lines []string
}

// headingAliases maps lower-cased heading text to a canonical key.
var headingAliases = map[string]string{
	"summary":                     "summary",
	"professional summary":        "summary",
	"profile":                     "summary",
	"professional profile":        "summary",
	"objective":                   "summary",
	"career objective":            "summary",
	"about me":                    "summary",
	"experience":                  "experience",
	"work experience":             "experience",
	"professional experience":     "experience",
	"employment history":          "experience",
	"employment":                  "experience",
	"work history":                "experience",
	"relevant experience":         "experience",
	"education":                   "education",
	"academic background":         "education",
	"education and training":      "education",
	"skills":                      "skills",
	"technical skills":            "skills",
	"core competencies":           "skills",
	"competencies":                "skills",
	"skills and abilities":        "skills",
	"technologies":                "skills",
	"tech stack":                  "skills",
	"projects":                    "projects",
	"personal projects":           "projects",
	"selected projects":           "projects",
	"certifications":              "certifications",
	"licenses and certifications": "certifications",
	"certificates":                "certifications",
	"awards":                      "awards",
	"honors and awards":           "awards",
	"achievements":                "awards",
	"publications":                "publications",
	"volunteer experience":        "volunteer",
	"volunteering":                "volunteer",
	"languages":                   "languages",
	"interests":                   "interests",
}

// canonicalTitles is the display title used for each key.
var canonicalTitles = map[string]string{
	"summary":        "Summary",
	"experience":     "Experience",
	"education":      "Education",
	"skills":         "Skills",
	"projects":       "Projects",
	"certifications": "Certifications",
	"awards":         "Awards",
	"publications":   "Publications",
	"volunteer":      "Volunteer Experience",
	"languages":      "Languages",
	"interests":      "Interests",
}

// HeadingKey returns the canonical key of a heading line, or "" when the
// line is not a known heading.
func HeadingKey(line string) string {
	s := strings.TrimSpace(line)
	s = strings.TrimLeft(s, "#")
	s = strings.TrimRight(s, ":")
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "&", "and")
	if len(strings.Fields(s)) > 4 {
		return ""
	}
	return headingAliases[strings.Join(strings.Fields(s), " ")]
}

// CanonicalTitle returns the display title for a heading key.
func CanonicalTitle(key string) string {
	return canonicalTitles[key]
}

// SplitSections groups cleaned text into sections by heading lines.
func SplitSections(text string) []Section {
	var sections []Section
	current := Section{}

	for _, line := range strings.Split(text, "\n") {
		if key := HeadingKey(line); key != "" {
			if current.Key != "" || len(current.Lines) > 0 {
				sections = append(sections, current)
			}
			current = Section{Key: key, Title: canonicalTitles[key]}
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		current.Lines = append(current.Lines, strings.TrimSpace(line))
	}
	if current.Key != "" || len(current.Lines) > 0 {
		sections = append(sections, current)
	}
	return sections
}

// HeadingKeys lists the canonical headings present in text, in order.
func HeadingKeys(text string) []string {
	var keys []string
	seen := map[string]bool{}
	for _, line := range strings.Split(text, "\n") {
		if key := HeadingKey(line); key != "" && !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}
