package fetch

import (
	"net/url"
	"strings"
)

// Platform is a recognised job board.
type Platform string

const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformAshby      Platform = "ashby"
	PlatformLinkedIn   Platform = "linkedin"
	PlatformUnknown    Platform = "unknown"
)

// platformRules says where a board keeps the posting body and what
// surrounding markup to drop.
type platformRules struct {
	platform   Platform
	domains    []string
	pathPrefix string
	content    []string
	noise      []string
}

func (r *platformRules) noiseSelector() string {
	return strings.Join(append(append([]string(nil), applicationNoise...), r.noise...), ", ")
}

// Apply forms, EEO questionnaires and share widgets appear on most boards.
var applicationNoise = []string{
	"form", "#application-form", ".application-form", ".application--container",
	".apply-button-container", "[data-testid='application-form']",
	".voluntary-disclosure", ".eeo-statement", ".eeo-section", "[data-testid='eeo']",
	".legal-disclosure", ".self-identification",
	".social-share", ".share-buttons", ".social-links",
	".cookie-consent", ".gdpr-notice",
}

var boards = []platformRules{
	{
		platform: PlatformGreenhouse,
		domains:  []string{"greenhouse.io"},
		content:  []string{".job__description", ".job-description__content", "#content", ".job-post-container"},
		noise:    []string{".application--wrapper", ".voluntary-self-id-wrapper", "#usa_self_id_section", ".post-apply"},
	},
	{
		platform: PlatformLever,
		domains:  []string{"lever.co"},
		content:  []string{".posting-page", ".posting-description", ".content"},
		noise:    []string{".apply-section", ".posting-apply", ".lever-application-form"},
	},
	{
		platform: PlatformWorkday,
		domains:  []string{"myworkdayjobs.com", "workday.com"},
		content:  []string{"[data-automation-id='jobPostingDescription']", "[data-automation-id='jobDescription']", ".job-description"},
		noise:    []string{"[data-automation-id='applyButton']", "[data-automation-id='similarJobs']"},
	},
	{
		platform: PlatformAshby,
		domains:  []string{"ashbyhq.com"},
		content:  []string{"[class*='descriptionText']", "[class*='jobPostingDescription']", "main"},
	},
	{
		platform:   PlatformLinkedIn,
		domains:    []string{"linkedin.com"},
		pathPrefix: "/jobs",
		content:    []string{".show-more-less-html__markup", ".description__text", ".jobs-description"},
		noise:      []string{".show-more-less-html__button", ".sign-up-modal", ".similar-jobs"},
	},
}

var genericBoard = platformRules{
	platform: PlatformUnknown,
	content: []string{
		".job-description", "#job-description", ".job-content", "#job-content",
		".posting-content", ".job-details", "[data-testid='job-description']",
		"main", "article", ".content", "#content",
	},
}

// DetectPlatform identifies the job board hosting rawURL.
func DetectPlatform(rawURL string) Platform {
	return rulesFor(rawURL).platform
}

func rulesFor(rawURL string) *platformRules {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return &genericBoard
	}
	host := strings.ToLower(u.Hostname())
	for i := range boards {
		b := &boards[i]
		if !onDomain(host, b.domains) {
			continue
		}
		if b.pathPrefix != "" && !strings.HasPrefix(u.Path, b.pathPrefix) {
			continue
		}
		return b
	}
	return &genericBoard
}

// onDomain reports whether host is one of domains or a subdomain of one.
func onDomain(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
