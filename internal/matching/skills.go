package matching

import (
	"regexp"
	"sort"
)

type skillIndex struct {
	byAlias map[string]skillDef
	byName  map[string]skillDef
	// exact holds case-sensitive patterns for ambiguous canonical names
	exact map[string]*regexp.Regexp
}

var defaultIndex = buildIndex(skillTable)

func buildIndex(table []skillDef) *skillIndex {
	idx := &skillIndex{
		byAlias: make(map[string]skillDef),
		byName:  make(map[string]skillDef),
		exact:   make(map[string]*regexp.Regexp),
	}
	for _, skill := range table {
		idx.byName[skill.Name] = skill
		if caseSensitive[skill.Name] {
			idx.exact[skill.Name] = regexp.MustCompile(`(^|[^A-Za-z0-9_])` + regexp.QuoteMeta(skill.Name) + `($|[^A-Za-z0-9_+#])`)
		} else {
			idx.byAlias[normalizePhrase(skill.Name)] = skill
		}
		for _, alias := range skill.Aliases {
			idx.byAlias[normalizePhrase(alias)] = skill
		}
	}
	return idx
}

// ExtractSkills returns the canonical skills mentioned in text, sorted by name.
func ExtractSkills(text string) []string {
	found := defaultIndex.extract(text)
	out := make([]string, 0, len(found))
	for name := range found {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SkillCategory returns the category of a canonical skill, or "" when unknown.
func SkillCategory(name string) string {
	return defaultIndex.byName[name].Category
}

func (idx *skillIndex) extract(text string) map[string]bool {
	found := make(map[string]bool)
	for phrase := range phrases(text) {
		if skill, ok := idx.byAlias[phrase]; ok {
			found[skill.Name] = true
		}
	}
	for name, pattern := range idx.exact {
		if pattern.MatchString(text) {
			found[name] = true
		}
	}
	return found
}
