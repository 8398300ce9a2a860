package matching

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// tokens keep the punctuation that is part of technology names:
	// c++, c#, node.js, ci/cd, scikit-learn
	tokenPattern = regexp.MustCompile(`[a-z0-9.#+][a-z0-9+#.\-/]*`)
	trimChars    = ".-/,"
)

// fold lower-cases s and strips diacritics.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.ToLower(result)
}

// tokenize splits folded text into technology-aware tokens.
func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(fold(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if tok == ".net" || strings.HasPrefix(tok, ".net") && len(strings.Trim(tok, trimChars)) == 3 {
			tokens = append(tokens, ".net")
			continue
		}
		tok = strings.Trim(tok, trimChars)
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// phrases returns every 1- to 3-token phrase of text. Slash-joined tokens
// also contribute their parts so "go/python" yields "go" and "python".
func phrases(text string) map[string]bool {
	tokens := tokenize(text)
	set := make(map[string]bool, len(tokens)*3)
	for i := range tokens {
		for n := 1; n <= 3 && i+n <= len(tokens); n++ {
			set[strings.Join(tokens[i:i+n], " ")] = true
		}
		if strings.Contains(tokens[i], "/") {
			for _, part := range strings.Split(tokens[i], "/") {
				if part = strings.Trim(part, trimChars); part != "" {
					set[part] = true
				}
			}
		}
	}
	return set
}

// normalizePhrase folds a table entry the same way document text is folded.
func normalizePhrase(s string) string {
	return strings.Join(tokenize(s), " ")
}

// NormalizeSkillName maps a skill spelling to its canonical name. Unknown
// skills are returned trimmed, with a single lower-case word capitalized.
func NormalizeSkillName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if skill, ok := defaultIndex.byAlias[normalizePhrase(name)]; ok {
		return skill.Name
	}
	if name == strings.ToLower(name) && !strings.Contains(name, " ") {
		return strings.ToUpper(name[:1]) + name[1:]
	}
	return name
}

// stem drops a plural "s" so "services" and "service" compare equal.
func stem(tok string) string {
	if len(tok) > 4 && strings.HasSuffix(tok, "s") && !strings.HasSuffix(tok, "ss") {
		return strings.TrimSuffix(tok, "s")
	}
	return tok
}
