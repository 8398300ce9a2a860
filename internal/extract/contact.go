package extract

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

var (
	emailPattern    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern    = regexp.MustCompile(`(?:\+?\d{1,3}[\s.\-]?)?(?:\(\d{2,4}\)|\d{2,4})[\s.\-]?\d{3,4}[\s.\-]?\d{3,4}`)
	linkedInPattern = regexp.MustCompile(`(?i)(?:https?://)?(?:[a-z]{2,3}\.)?linkedin\.com/in/[A-Za-z0-9_\-%]+/?`)
	urlPattern      = regexp.MustCompile(`(?i)\bhttps?://[^\s)]+|\b(?:github\.com|gitlab\.com)/[A-Za-z0-9_\-]+`)
)

// FindEmail returns the first email address in text.
func FindEmail(text string) string {
	return emailPattern.FindString(text)
}

// FindPhone returns the first phone number in text.
func FindPhone(text string) string {
	for _, candidate := range phonePattern.FindAllString(text, -1) {
		digits := 0
		for _, r := range candidate {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits >= 10 && digits <= 15 {
			return strings.TrimSpace(candidate)
		}
	}
	return ""
}

// FindLinkedIn returns the first LinkedIn profile URL in text.
func FindLinkedIn(text string) string {
	return linkedInPattern.FindString(text)
}

// ContactFromText guesses the contact block of a plain-text resume. The
// name is the first short line that is not itself contact data or a heading.
func ContactFromText(text string) types.Contact {
	contact := types.Contact{
		Email:    FindEmail(text),
		Phone:    FindPhone(text),
		LinkedIn: FindLinkedIn(text),
	}
	for _, u := range urlPattern.FindAllString(text, -1) {
		if !strings.Contains(strings.ToLower(u), "linkedin.com") {
			contact.Website = u
			break
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if HeadingKey(line) != "" || emailPattern.MatchString(line) || len(strings.Fields(line)) > 5 {
			break
		}
		if phonePattern.MatchString(line) {
			continue
		}
		contact.FullName = line
		break
	}
	return contact
}
