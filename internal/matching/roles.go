package matching

import (
	"sort"
	"strings"
)

// Role is an entry of the role table.
type Role struct {
	Key            string   `json:"key"`
	Title          string   `json:"title"`
	Aliases        []string `json:"aliases"`
	RequiredSkills []string `json:"required_skills"`
}

var roleTable = []Role{
	{
		Key:            "backend_engineer",
		Title:          "Backend Engineer",
		Aliases:        []string{"backend engineer", "backend developer", "back-end engineer", "back end developer", "server-side engineer", "api engineer"},
		RequiredSkills: []string{"SQL", "REST", "Git", "Docker", "Microservices", "PostgreSQL"},
	},
	{
		Key:            "frontend_engineer",
		Title:          "Frontend Engineer",
		Aliases:        []string{"frontend engineer", "frontend developer", "front-end engineer", "front end developer", "ui engineer", "web developer"},
		RequiredSkills: []string{"JavaScript", "TypeScript", "HTML", "CSS", "React", "Git"},
	},
	{
		Key:            "full_stack_engineer",
		Title:          "Full Stack Engineer",
		Aliases:        []string{"full stack engineer", "full stack developer", "fullstack engineer", "fullstack developer", "full-stack engineer", "full-stack developer"},
		RequiredSkills: []string{"JavaScript", "TypeScript", "React", "Node.js", "SQL", "REST", "Git"},
	},
	{
		Key:            "devops_engineer",
		Title:          "DevOps Engineer",
		Aliases:        []string{"devops engineer", "site reliability engineer", "sre", "platform engineer", "infrastructure engineer", "cloud engineer"},
		RequiredSkills: []string{"Linux", "Docker", "Kubernetes", "Terraform", "CI/CD", "AWS", "Observability", "Bash"},
	},
	{
		Key:            "data_scientist",
		Title:          "Data Scientist",
		Aliases:        []string{"data scientist", "applied scientist", "research scientist"},
		RequiredSkills: []string{"Python", "SQL", "Statistics", "Machine Learning", "Pandas", "Data Analysis"},
	},
	{
		Key:            "data_engineer",
		Title:          "Data Engineer",
		Aliases:        []string{"data engineer", "analytics engineer", "big data engineer"},
		RequiredSkills: []string{"Python", "SQL", "ETL", "Spark", "Airflow", "AWS"},
	},
	{
		Key:            "ml_engineer",
		Title:          "Machine Learning Engineer",
		Aliases:        []string{"machine learning engineer", "ml engineer", "ai engineer", "mlops engineer"},
		RequiredSkills: []string{"Python", "Machine Learning", "PyTorch", "TensorFlow", "Docker", "SQL"},
	},
	{
		Key:            "mobile_developer",
		Title:          "Mobile Developer",
		Aliases:        []string{"mobile developer", "mobile engineer", "ios developer", "ios engineer", "android developer", "android engineer"},
		RequiredSkills: []string{"Mobile Development", "Swift", "Kotlin", "REST", "Git"},
	},
	{
		Key:            "data_analyst",
		Title:          "Data Analyst",
		Aliases:        []string{"data analyst", "business analyst", "bi analyst", "business intelligence analyst"},
		RequiredSkills: []string{"SQL", "Excel", "Data Analysis", "Tableau", "Statistics", "Communication"},
	},
	{
		Key:            "product_manager",
		Title:          "Product Manager",
		Aliases:        []string{"product manager", "product owner", "technical product manager"},
		RequiredSkills: []string{"Product Management", "Agile", "Communication", "Leadership", "Data Analysis", "Jira"},
	},
	{
		Key:            "software_engineer",
		Title:          "Software Engineer",
		Aliases:        []string{"software engineer", "software developer", "software development engineer", "sde", "programmer"},
		RequiredSkills: []string{"Git", "SQL", "System Design", "TDD", "Problem Solving"},
	},
}

var roleAliases = buildRoleAliases()

func buildRoleAliases() map[string]Role {
	m := make(map[string]Role)
	for _, role := range roleTable {
		m[normalizePhrase(role.Key)] = role
		m[normalizePhrase(role.Title)] = role
		for _, alias := range role.Aliases {
			m[normalizePhrase(alias)] = role
		}
	}
	return m
}

// Roles lists the role table sorted by key.
func Roles() []Role {
	out := make([]Role, len(roleTable))
	copy(out, roleTable)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// LookupRole resolves a role key, title or alias.
func LookupRole(name string) (Role, bool) {
	role, ok := roleAliases[normalizePhrase(name)]
	return role, ok
}

// DetectRole finds the role whose title appears in text. The longest
// matching alias wins so "full stack developer" beats "developer" titles;
// earlier mentions break ties.
func DetectRole(text string) (Role, bool) {
	folded := " " + normalizePhrase(text) + " "
	var (
		best      Role
		bestLen   int
		bestIndex = -1
	)
	for alias, role := range roleAliases {
		pos := strings.Index(folded, " "+alias+" ")
		if pos < 0 {
			continue
		}
		if len(alias) > bestLen || (len(alias) == bestLen && pos < bestIndex) {
			best, bestLen, bestIndex = role, len(alias), pos
		}
	}
	return best, bestLen > 0
}
