package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(cfg *Config) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLimiter(cfg)
	l.now = clock.now
	return l, clock
}

func TestLimiter_BurstThenRefill(t *testing.T) {
	l, clock := newTestLimiter(&Config{
		Enabled: true,
		Rules:   []Rule{{Method: "POST", Path: "/api/compile", Limit: 60, Window: time.Hour, Burst: 2}},
	})
	defer l.Stop()

	ok, info := l.Allow("1.2.3.4", "/api/compile", "POST")
	require.True(t, ok)
	assert.Equal(t, 60, info.Limit)
	assert.Equal(t, 1, info.Remaining)

	ok, info = l.Allow("1.2.3.4", "/api/compile", "POST")
	require.True(t, ok)
	assert.Equal(t, 0, info.Remaining)

	ok, info = l.Allow("1.2.3.4", "/api/compile", "POST")
	assert.False(t, ok)
	assert.False(t, info.Allowed)
	assert.Equal(t, time.Minute, info.RetryAfter)
	assert.True(t, info.ResetTime.After(clock.t))

	clock.advance(time.Minute)
	ok, _ = l.Allow("1.2.3.4", "/api/compile", "POST")
	assert.True(t, ok)
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer l.Stop()

	ok, _ := l.Allow("a", "/api/resumes", "GET")
	require.True(t, ok)
	ok, _ = l.Allow("a", "/api/resumes", "GET")
	assert.False(t, ok)

	ok, _ = l.Allow("b", "/api/resumes", "GET")
	assert.True(t, ok)
}

func TestLimiter_PrefixRuleSharesBucket(t *testing.T) {
	l, _ := newTestLimiter(&Config{
		Enabled: true,
		Rules:   []Rule{{Method: "POST", Path: "/api/resumes/", Limit: 1, Window: time.Hour}},
	})
	defer l.Stop()

	ok, _ := l.Allow("a", "/api/resumes/1/compile", "POST")
	require.True(t, ok)
	ok, _ = l.Allow("a", "/api/resumes/2/optimize", "POST")
	assert.False(t, ok)
}

func TestLimiter_ExemptAndLists(t *testing.T) {
	l, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Hour,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.2": true},
	})
	defer l.Stop()

	for i := 0; i < 3; i++ {
		ok, _ := l.Allow("c", "/health", "GET")
		assert.True(t, ok)
		ok, _ = l.Allow("c", "/api/chat", "OPTIONS")
		assert.True(t, ok)
		ok, _ = l.Allow("10.0.0.1", "/api/resumes", "GET")
		assert.True(t, ok)
	}

	ok, info := l.Allow("10.0.0.2", "/api/resumes", "GET")
	assert.False(t, ok)
	assert.Zero(t, info.Limit)
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false, DefaultLimit: 1, DefaultWindow: time.Hour})
	defer l.Stop()
	for i := 0; i < 5; i++ {
		ok, _ := l.Allow("a", "/api/resumes", "GET")
		assert.True(t, ok)
	}
}

func TestLimiter_EvictIdle(t *testing.T) {
	l, clock := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer l.Stop()

	l.Allow("old", "/api/resumes", "GET")
	clock.advance(2 * time.Hour)
	l.Allow("new", "/api/resumes", "GET")

	assert.Equal(t, 1, l.evictIdle(clock.t.Add(-idleTTL)))
	assert.Len(t, l.buckets, 1)
	assert.Contains(t, l.buckets, "new|*")
}

func TestLimiter_StopTwice(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, CleanupInterval: time.Millisecond})
	l.Stop()
	assert.NotPanics(t, l.Stop)
}

func TestConfig_RuleFor(t *testing.T) {
	cfg := &Config{DefaultLimit: 100, DefaultWindow: time.Minute, Rules: DefaultRules()}

	tests := []struct {
		method, path string
		wantPath     string
		wantLimit    int
	}{
		{"POST", "/api/chat", "/api/chat", 120},
		{"POST", "/api/resumes", "/api/resumes", 100},
		{"POST", "/api/resumes/abc/compile", "/api/resumes/", 60},
		{"DELETE", "/api/chat/conversations/abc", "/api/chat/conversations/", 100},
		{"GET", "/api/resumes", "", 100},
		{"GET", "/metrics", "/metrics", 0},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			r := cfg.ruleFor(tt.method, tt.path)
			assert.Equal(t, tt.wantPath, r.Path)
			assert.Equal(t, tt.wantLimit, r.Limit)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	env := map[string]string{
		"RATE_LIMIT_DEFAULT_LIMIT":    "50",
		"RATE_LIMIT_DEFAULT_WINDOW":   "30s",
		"RATE_LIMIT_WHITELIST":        "127.0.0.1, ::1",
		"RATE_LIMIT_BLACKLIST":        "",
		"RATE_LIMIT_CLEANUP_INTERVAL": "not-a-duration",
	}
	cfg := loadConfig(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 50, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.DefaultWindow)
	assert.Equal(t, 5*time.Minute, cfg.CleanupInterval)
	assert.Equal(t, map[string]bool{"127.0.0.1": true, "::1": true}, cfg.Whitelist)
	assert.Empty(t, cfg.Blacklist)
	assert.NotEmpty(t, cfg.Rules)

	disabled := loadConfig(func(k string) (string, bool) {
		if k == "RATE_LIMIT_ENABLED" {
			return "false", true
		}
		return "", false
	})
	assert.False(t, disabled.Enabled)
}
