package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plainResume = `Jane Doe
jane.doe@example.com | (555) 123-4567 | linkedin.com/in/janedoe
github.com/janedoe

PROFESSIONAL SUMMARY
Backend engineer with 6 years of experience.

Work Experience:
- Built payment APIs in Go
- Reduced latency by 40%

Education
B.S. Computer Science, State University

Technical Skills
Go, PostgreSQL, Kubernetes
`

func TestHeadingKey(t *testing.T) {
	assert.Equal(t, "experience", HeadingKey("Work Experience:"))
	assert.Equal(t, "skills", HeadingKey("  TECHNICAL SKILLS "))
	assert.Equal(t, "awards", HeadingKey("Honors & Awards"))
	assert.Equal(t, "summary", HeadingKey("## Profile"))
	assert.Empty(t, HeadingKey("Built payment APIs in Go"))
	assert.Empty(t, HeadingKey("Skills I picked up while leading the migration"))
}

func TestSplitSections(t *testing.T) {
	sections := SplitSections(CleanText(plainResume))
	require.Len(t, sections, 5)

	assert.Equal(t, "", sections[0].Key, "preamble before the first heading")
	assert.Equal(t, "Jane Doe", sections[0].Lines[0])

	assert.Equal(t, "summary", sections[1].Key)
	assert.Equal(t, "Summary", sections[1].Title)
	assert.Equal(t, "experience", sections[2].Key)
	assert.Equal(t, []string{"- Built payment APIs in Go", "- Reduced latency by 40%"}, sections[2].Lines)
	assert.Equal(t, "skills", sections[4].Key)
}

func TestHeadingKeys(t *testing.T) {
	assert.Equal(t, []string{"summary", "experience", "education", "skills"}, HeadingKeys(plainResume))
}

func TestContactFromText(t *testing.T) {
	c := ContactFromText(plainResume)
	assert.Equal(t, "Jane Doe", c.FullName)
	assert.Equal(t, "jane.doe@example.com", c.Email)
	assert.Equal(t, "(555) 123-4567", c.Phone)
	assert.Equal(t, "linkedin.com/in/janedoe", c.LinkedIn)
	assert.Equal(t, "github.com/janedoe", c.Website)
}

func TestFindPhone_IgnoresShortNumbers(t *testing.T) {
	assert.Empty(t, FindPhone("Reduced latency by 40% across 2019-2021"))
	assert.Equal(t, "+1 415 555 0100", FindPhone("call +1 415 555 0100"))
}
