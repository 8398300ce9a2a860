package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule limits one route group to Limit requests per Window, allowing bursts
// of Burst. A Path ending in "/" covers every path below it. A Limit of
// zero or less leaves the group unlimited.
type Rule struct {
	Method string
	Path   string
	Limit  int
	Window time.Duration
	Burst  int
}

// Unlimited reports whether the rule applies no limit.
func (r Rule) Unlimited() bool {
	return r.Limit <= 0 || r.Window <= 0
}

func (r Rule) burst() int {
	if r.Burst > 0 {
		return r.Burst
	}
	return r.Limit
}

func (r Rule) key() string {
	if r.Path == "" {
		return "*"
	}
	return r.Method + " " + r.Path
}

func (r Rule) matches(method, path string) bool {
	if r.Method != method {
		return false
	}
	if strings.HasSuffix(r.Path, "/") {
		return strings.HasPrefix(path, r.Path)
	}
	return path == r.Path
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	Rules           []Rule
}

// exempt routes are never limited.
var exempt = []Rule{
	{Method: "GET", Path: "/health"},
	{Method: "GET", Path: "/metrics"},
	{Method: "OPTIONS", Path: "/"},
}

// ruleFor returns the most specific rule for a request, falling back to the
// default limit.
func (c *Config) ruleFor(method, path string) Rule {
	for _, r := range exempt {
		if r.matches(method, path) {
			return r
		}
	}
	best, found := Rule{}, false
	for _, r := range c.Rules {
		if r.matches(method, path) && (!found || len(r.Path) > len(best.Path)) {
			best, found = r, true
		}
	}
	if found {
		return best
	}
	return Rule{Limit: c.DefaultLimit, Window: c.DefaultWindow}
}

// DefaultConfig is the configuration used when none is given.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		Rules:           DefaultRules(),
	}
}

// DefaultRules are the per-route limits. AI calls and compiles are the
// expensive ones.
func DefaultRules() []Rule {
	return []Rule{
		{Method: "POST", Path: "/api/optimize", Limit: 30, Window: time.Hour, Burst: 5},
		{Method: "POST", Path: "/api/analyze", Limit: 60, Window: time.Hour, Burst: 5},
		{Method: "POST", Path: "/api/chat", Limit: 120, Window: time.Hour, Burst: 10},
		{Method: "POST", Path: "/api/compile", Limit: 60, Window: time.Hour, Burst: 5},
		{Method: "POST", Path: "/api/resumes/", Limit: 60, Window: time.Hour, Burst: 5},
		{Method: "POST", Path: "/api/job-description/fetch", Limit: 30, Window: time.Hour, Burst: 3},

		{Method: "POST", Path: "/api/auth/login", Limit: 20, Window: time.Minute, Burst: 5},
		{Method: "POST", Path: "/api/auth/register", Limit: 10, Window: time.Minute, Burst: 3},
		{Method: "PUT", Path: "/api/auth/password", Limit: 10, Window: time.Minute, Burst: 3},
		{Method: "POST", Path: "/api/resumes", Limit: 100, Window: time.Minute, Burst: 10},
		{Method: "PUT", Path: "/api/resumes/", Limit: 100, Window: time.Minute, Burst: 10},
		{Method: "DELETE", Path: "/api/resumes/", Limit: 100, Window: time.Minute, Burst: 10},
		{Method: "DELETE", Path: "/api/chat/conversations/", Limit: 100, Window: time.Minute, Burst: 10},
	}
}

// LoadConfig reads RATE_LIMIT_* environment variables over DefaultConfig.
// Malformed values keep their default.
func LoadConfig() *Config {
	return loadConfig(os.LookupEnv)
}

func loadConfig(lookup func(string) (string, bool)) *Config {
	cfg := DefaultConfig()
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("RATE_LIMIT_ENABLED"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = b
		}
	}
	if v, ok := get("RATE_LIMIT_DEFAULT_LIMIT"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DefaultLimit = n
		}
	}
	if v, ok := get("RATE_LIMIT_DEFAULT_WINDOW"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.DefaultWindow = d
		}
	}
	if v, ok := get("RATE_LIMIT_CLEANUP_INTERVAL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CleanupInterval = d
		}
	}
	if v, ok := get("RATE_LIMIT_WHITELIST"); ok {
		cfg.Whitelist = ipSet(v)
	}
	if v, ok := get("RATE_LIMIT_BLACKLIST"); ok {
		cfg.Blacklist = ipSet(v)
	}
	return cfg
}

// ipSet parses a comma-separated address list.
func ipSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			set[ip] = true
		}
	}
	return set
}
