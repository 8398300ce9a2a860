package fetch

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultCacheTTL is how long a fetched job description is reused.
const DefaultCacheTTL = 15 * time.Minute

const defaultMaxCacheEntries = 256

// JobDescription is the plain-text content of a job posting.
type JobDescription struct {
	URL       string    `json:"url"`
	Title     string    `json:"title,omitempty"`
	Text      string    `json:"text"`
	Platform  Platform  `json:"platform"`
	Rendered  bool      `json:"rendered"`
	FromCache bool      `json:"from_cache"`
	FetchedAt time.Time `json:"fetched_at"`
}

// FetcherConfig holds configuration for the job description fetcher.
type FetcherConfig struct {
	Options         *Options
	UseBrowser      bool
	BrowserTimeout  time.Duration
	CacheTTL        time.Duration
	MaxCacheEntries int
}

// Fetcher retrieves job postings and caches the extracted text in memory.
type Fetcher struct {
	options    *Options
	useBrowser bool
	cacheTTL   time.Duration
	maxEntries int
	logger     *zap.Logger

	render func(ctx context.Context, url string) (string, error)
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]JobDescription
}

// NewFetcher creates a fetcher. A zero CacheTTL uses DefaultCacheTTL; a
// negative one disables caching.
func NewFetcher(cfg FetcherConfig, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BrowserTimeout <= 0 {
		cfg.BrowserTimeout = DefaultTimeout
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.MaxCacheEntries <= 0 {
		cfg.MaxCacheEntries = defaultMaxCacheEntries
	}
	return &Fetcher{
		options:    cfg.Options,
		useBrowser: cfg.UseBrowser,
		cacheTTL:   cfg.CacheTTL,
		maxEntries: cfg.MaxCacheEntries,
		logger:     logger,
		render:     chromeRenderer{timeout: cfg.BrowserTimeout, logger: logger}.render,
		now:        time.Now,
		cache:      make(map[string]JobDescription),
	}
}

// JobDescription fetches urlStr and returns its main text. Pages with
// little static text are rendered in headless Chrome when enabled, and the
// richer of the two extractions wins.
func (f *Fetcher) JobDescription(ctx context.Context, urlStr string) (*JobDescription, error) {
	urlStr = strings.TrimSpace(urlStr)
	if err := ValidateURL(urlStr); err != nil {
		return nil, err
	}
	if jd, ok := f.cached(urlStr); ok {
		return jd, nil
	}

	rules := rulesFor(urlStr)
	html, err := getHTML(ctx, urlStr, f.options)
	if err != nil {
		return nil, err
	}
	title, text, err := extract(html, rules)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to parse HTML", Cause: err}
	}

	rendered := false
	if f.useBrowser && looksClientRendered(text) {
		f.logger.Info("job page looks client-rendered, using browser",
			zap.String("url", urlStr), zap.Int("chars", len(text)))
		if title2, text2, ok := f.renderAndExtract(ctx, urlStr, rules); ok && len(text2) > len(text) {
			text, rendered = text2, true
			if title2 != "" {
				title = title2
			}
		}
	}

	if text == "" {
		return nil, &Error{URL: urlStr, Message: "no job description text found"}
	}

	jd := JobDescription{
		URL:       urlStr,
		Title:     title,
		Text:      text,
		Platform:  rules.platform,
		Rendered:  rendered,
		FetchedAt: f.now().UTC(),
	}
	f.store(jd)
	return &jd, nil
}

func (f *Fetcher) renderAndExtract(ctx context.Context, urlStr string, rules *platformRules) (string, string, bool) {
	html, err := f.render(ctx, urlStr)
	if err != nil {
		f.logger.Warn("browser render failed", zap.String("url", urlStr), zap.Error(err))
		return "", "", false
	}
	title, text, err := extract(html, rules)
	if err != nil {
		f.logger.Warn("rendered page did not parse", zap.String("url", urlStr), zap.Error(err))
		return "", "", false
	}
	return title, text, true
}

func (f *Fetcher) cached(urlStr string) (*JobDescription, bool) {
	if f.cacheTTL < 0 {
		return nil, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	jd, ok := f.cache[urlStr]
	if !ok {
		return nil, false
	}
	if f.now().Sub(jd.FetchedAt) > f.cacheTTL {
		delete(f.cache, urlStr)
		return nil, false
	}
	jd.FromCache = true
	return &jd, true
}

func (f *Fetcher) store(jd JobDescription) {
	if f.cacheTTL < 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.cache) >= f.maxEntries {
		f.evictLocked()
	}
	f.cache[jd.URL] = jd
}

// evictLocked drops expired entries, then the oldest one if still full.
func (f *Fetcher) evictLocked() {
	now := f.now()
	var oldestURL string
	var oldest time.Time
	for u, jd := range f.cache {
		if now.Sub(jd.FetchedAt) > f.cacheTTL {
			delete(f.cache, u)
			continue
		}
		if oldestURL == "" || jd.FetchedAt.Before(oldest) {
			oldestURL, oldest = u, jd.FetchedAt
		}
	}
	if len(f.cache) >= f.maxEntries && oldestURL != "" {
		delete(f.cache, oldestURL)
	}
}

// Invalidate forgets any cached copy of urlStr.
func (f *Fetcher) Invalidate(urlStr string) {
	f.mu.Lock()
	delete(f.cache, strings.TrimSpace(urlStr))
	f.mu.Unlock()
}
