package fetch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url  string
		want Platform
	}{
		{"https://boards.greenhouse.io/acme/jobs/123", PlatformGreenhouse},
		{"https://job-boards.greenhouse.io/acme/jobs/123", PlatformGreenhouse},
		{"https://jobs.lever.co/acme/abc", PlatformLever},
		{"https://acme.wd5.myworkdayjobs.com/en-US/careers/job/1", PlatformWorkday},
		{"https://jobs.ashbyhq.com/acme/1", PlatformAshby},
		{"https://www.linkedin.com/jobs/view/123", PlatformLinkedIn},
		{"https://www.linkedin.com/in/someone", PlatformUnknown},
		{"https://notgreenhouse.io/jobs/1", PlatformUnknown},
		{"https://greenhouse.io.evil.test/jobs/1", PlatformUnknown},
		{"https://careers.example.com/jobs/1", PlatformUnknown},
		{"::not a url", PlatformUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectPlatform(tt.url))
		})
	}
}

func TestRulesFor_NoiseIncludesApplicationForms(t *testing.T) {
	for _, u := range []string{"https://jobs.lever.co/acme/1", "https://careers.example.com/1"} {
		noise := rulesFor(u).noiseSelector()
		assert.Contains(t, noise, "form")
		assert.Contains(t, noise, ".eeo-statement")
	}
	assert.Contains(t, rulesFor("https://jobs.lever.co/acme/1").noiseSelector(), ".posting-apply")
}

func TestRulesFor_DoesNotMutateSharedNoise(t *testing.T) {
	before := len(applicationNoise)
	for range 3 {
		_ = rulesFor("https://boards.greenhouse.io/acme/1").noiseSelector()
	}
	assert.Len(t, applicationNoise, before)
}

func TestLooksClientRendered(t *testing.T) {
	assert.True(t, looksClientRendered("Loading..."))
	assert.True(t, looksClientRendered(strings.Repeat("é", minStaticChars-1)))
	assert.False(t, looksClientRendered(strings.Repeat("a", minStaticChars)))
}
