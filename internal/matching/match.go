package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

const (
	// KeywordLimit is the number of job keywords considered for coverage.
	KeywordLimit = 25

	skillWeight   = 0.7
	keywordWeight = 0.3

	maxGapRecommendations = 5
)

// Score levels.
const (
	LevelExcellent = "excellent"
	LevelGood      = "good"
	LevelFair      = "fair"
	LevelPoor      = "poor"
)

// Match compares resume text with a job description. role optionally names
// a role-table entry; when empty the role is detected from the job text.
//
// The score is 100 × (0.7 × skill coverage + 0.3 × keyword coverage), or
// keyword coverage alone when no skills are required.
func Match(resumeText, jobText, role string) *types.MatchResult {
	resumeSkills := defaultIndex.extract(resumeText)
	jobSkills := defaultIndex.extract(jobText)

	var (
		resolved Role
		hasRole  bool
	)
	if strings.TrimSpace(role) != "" {
		resolved, hasRole = LookupRole(role)
	} else {
		resolved, hasRole = DetectRole(jobText)
	}

	roleSkills := map[string]bool{}
	if hasRole {
		for _, s := range resolved.RequiredSkills {
			roleSkills[s] = true
		}
	}

	required := map[string]bool{}
	for s := range jobSkills {
		required[s] = true
	}
	for s := range roleSkills {
		required[s] = true
	}

	result := &types.MatchResult{
		RequiredSkills:   sortedKeys(required),
		MatchedSkills:    []string{},
		Gaps:             []types.SkillGap{},
		AdditionalSkills: []string{},
		MatchedKeywords:  []string{},
		MissingKeywords:  []string{},
	}
	if hasRole {
		result.Role = resolved.Key
	}

	for _, s := range result.RequiredSkills {
		if resumeSkills[s] {
			result.MatchedSkills = append(result.MatchedSkills, s)
			continue
		}
		result.Gaps = append(result.Gaps, types.SkillGap{
			Skill:        s,
			Category:     SkillCategory(s),
			RoleRequired: roleSkills[s],
			InJobText:    jobSkills[s],
		})
	}
	sortGaps(result.Gaps)

	for _, s := range sortedKeys(resumeSkills) {
		if !required[s] {
			result.AdditionalSkills = append(result.AdditionalSkills, s)
		}
	}

	resumeWords := newKeywordSet(resumeText)
	keywords := ExtractKeywords(jobText, KeywordLimit)
	for _, kw := range keywords {
		if resumeWords.contains(kw) {
			result.MatchedKeywords = append(result.MatchedKeywords, kw)
		} else {
			result.MissingKeywords = append(result.MissingKeywords, kw)
		}
	}

	if len(required) > 0 {
		result.SkillCoverage = ratio(len(result.MatchedSkills), len(required))
	}
	if len(keywords) > 0 {
		result.KeywordCoverage = ratio(len(result.MatchedKeywords), len(keywords))
	}

	var score float64
	switch {
	case len(required) > 0:
		score = skillWeight*result.SkillCoverage + keywordWeight*result.KeywordCoverage
		if len(keywords) == 0 {
			score = result.SkillCoverage
		}
	case len(keywords) > 0:
		score = result.KeywordCoverage
	}
	result.Score = int(math.Round(score * 100))
	result.Level = Level(result.Score)
	result.Recommendations = recommendations(result, len(resumeSkills))
	return result
}

// Level buckets a 0-100 score.
func Level(score int) string {
	switch {
	case score >= 80:
		return LevelExcellent
	case score >= 60:
		return LevelGood
	case score >= 40:
		return LevelFair
	default:
		return LevelPoor
	}
}

// sortGaps puts skills both the role and the posting ask for first, then
// posting-only, then role-only; names break ties.
func sortGaps(gaps []types.SkillGap) {
	rank := func(g types.SkillGap) int {
		switch {
		case g.RoleRequired && g.InJobText:
			return 0
		case g.InJobText:
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		ri, rj := rank(gaps[i]), rank(gaps[j])
		if ri != rj {
			return ri < rj
		}
		return gaps[i].Skill < gaps[j].Skill
	})
}

func recommendations(r *types.MatchResult, resumeSkillCount int) []string {
	recs := []string{}

	if resumeSkillCount == 0 {
		recs = append(recs, "List your technical skills in a dedicated Skills section so they can be recognised.")
	}

	for i, gap := range r.Gaps {
		if i == maxGapRecommendations {
			recs = append(recs, fmt.Sprintf("%d more required skills are missing; prioritise the ones you have real experience with.", len(r.Gaps)-i))
			break
		}
		recs = append(recs, fmt.Sprintf("Add evidence of %s (%s) if you have used it, ideally in an experience bullet with a measurable result.", gap.Skill, categoryLabel(gap.Category)))
	}

	if len(r.MissingKeywords) > 0 && r.KeywordCoverage < 0.5 {
		missing := r.MissingKeywords
		if len(missing) > 5 {
			missing = missing[:5]
		}
		recs = append(recs, "Mirror the wording of the posting; missing terms include: "+strings.Join(missing, ", ")+".")
	}

	if r.Score >= 80 {
		recs = append(recs, "Strong match. Tailor your summary to the exact role title before applying.")
	}
	return recs
}

func categoryLabel(category string) string {
	if category == "" {
		return "skill"
	}
	return category
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(d)*1000) / 1000
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
