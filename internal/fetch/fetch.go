// Package fetch retrieves job postings by URL and reduces them to plain text
// for matching and optimization.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (compatible; ResumeBuilder/1.0)"
	// DefaultMaxBytes caps how much of a response body is read.
	DefaultMaxBytes = 5 << 20
)

// Error describes a failed fetch. Invalid is set when the URL itself was
// rejected rather than the remote side failing.
type Error struct {
	URL     string
	Message string
	Invalid bool
	Cause   error
}

func (e *Error) Error() string {
	msg := "fetch " + e.URL + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Options tunes the HTTP side of a fetch. Zero fields take the defaults.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	MaxBytes  int64
	Client    *http.Client
}

func (o *Options) resolve() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.UserAgent == "" {
		out.UserAgent = DefaultUserAgent
	}
	if out.MaxBytes <= 0 {
		out.MaxBytes = DefaultMaxBytes
	}
	if out.Client == nil {
		out.Client = &http.Client{Timeout: out.Timeout}
	}
	return out
}

// ValidateURL accepts absolute http and https URLs only.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	switch {
	case err != nil:
		return &Error{URL: rawURL, Message: "invalid URL", Invalid: true, Cause: err}
	case u.Scheme != "http" && u.Scheme != "https":
		return &Error{URL: rawURL, Message: "only http and https URLs are supported", Invalid: true}
	case u.Host == "":
		return &Error{URL: rawURL, Message: "URL has no host", Invalid: true}
	}
	return nil
}

// getHTML downloads rawURL and returns its body. Only 2xx responses with an
// HTML or plain text body are accepted.
func getHTML(ctx context.Context, rawURL string, opts *Options) (string, error) {
	if err := ValidateURL(rawURL); err != nil {
		return "", err
	}
	o := opts.resolve()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &Error{URL: rawURL, Message: "failed to build request", Invalid: true, Cause: err}
	}
	req.Header.Set("User-Agent", o.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,text/plain;q=0.5")
	for k, v := range o.Headers {
		req.Header.Set(k, v)
	}

	resp, err := o.Client.Do(req)
	if err != nil {
		return "", &Error{URL: rawURL, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return "", &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mediaType, _, _ := mime.ParseMediaType(ct)
		switch mediaType {
		case "text/html", "application/xhtml+xml", "text/plain":
		default:
			return "", &Error{URL: rawURL, Message: fmt.Sprintf("unsupported content type %q", mediaType)}
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, o.MaxBytes))
	if err != nil {
		return "", &Error{URL: rawURL, Message: "failed to read body", Cause: err}
	}
	return string(body), nil
}
