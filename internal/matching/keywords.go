package matching

import (
	"sort"
	"strings"
	"unicode"
)

// stopwords are dropped from keyword extraction: English function words plus
// the boilerplate every job posting carries.
var stopwords = toSet(`
a about above across after again against all also am an and any are as at be because been before being
below between both but by can could did do does doing down during each either else etc ever every few for
from further get got had has have having he her here hers him his how however i if in into is it its itself
just least less like made make many may me might more most much must my no nor not now of off on once only
or other our ours out over own per please same she should since so some such than that the their theirs them
then there these they this those through thus to too under until up upon us very via was we well were what
when where whether which while who whom why will with within without would yet you your yours
ability able apply applicant applicants benefits bonus candidate candidates company closely day days degree
demonstrated desired duties employer environment equal etc excellent experience experienced familiarity
field good great help ideal including job join knowledge level looking new nice opportunity organization
plus position preferred proficiency proficient qualifications related required requirement requirements
responsibilities responsible role salary seeking skills solid strong successful team teams understanding
using work working world year years
`)

func toSet(words string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}

// ExtractKeywords returns up to limit of the most frequent meaningful
// tokens of text, most frequent first, ties alphabetical. A limit of zero
// or less returns all of them.
func ExtractKeywords(text string, limit int) []string {
	counts := make(map[string]int)
	for _, tok := range tokenize(text) {
		if !isKeyword(tok) {
			continue
		}
		counts[tok]++
	}

	keywords := make([]string, 0, len(counts))
	for tok := range counts {
		keywords = append(keywords, tok)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})

	if limit > 0 && len(keywords) > limit {
		keywords = keywords[:limit]
	}
	return keywords
}

func isKeyword(tok string) bool {
	if stopwords[tok] {
		return false
	}
	if _, ok := defaultIndex.byAlias[tok]; ok {
		return true
	}
	if len(tok) < 3 {
		return false
	}
	letters := 0
	for _, r := range tok {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= 2
}

// keywordSet is the stemmed token set of a document with canonical skill
// names folded in, so a keyword matches through its aliases.
type keywordSet struct {
	tokens map[string]bool
	skills map[string]bool
}

func newKeywordSet(text string) keywordSet {
	set := keywordSet{tokens: make(map[string]bool), skills: defaultIndex.extract(text)}
	for _, tok := range tokenize(text) {
		set.tokens[stem(tok)] = true
	}
	return set
}

func (s keywordSet) contains(keyword string) bool {
	if s.tokens[stem(keyword)] {
		return true
	}
	if skill, ok := defaultIndex.byAlias[keyword]; ok {
		return s.skills[skill.Name]
	}
	return false
}
