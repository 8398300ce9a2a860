package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url   string
		valid bool
	}{
		{"https://boards.greenhouse.io/acme/jobs/1", true},
		{"http://localhost:8080/job", true},
		{"ftp://example.com/job", false},
		{"file:///etc/passwd", false},
		{"/relative/path", false},
		{"https://", false},
		{"://broken", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			var fe *Error
			require.ErrorAs(t, err, &fe)
			assert.True(t, fe.Invalid)
		})
	}
}

func TestGetHTML(t *testing.T) {
	var gotUA, gotCustom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		gotCustom = r.Header.Get("X-Test")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	html, err := getHTML(context.Background(), srv.URL, &Options{Headers: map[string]string{"X-Test": "1"}})
	require.NoError(t, err)
	assert.Contains(t, html, "ok")
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, "1", gotCustom)
}

func TestGetHTML_Failures(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		wantMsg     string
	}{
		{"not found", http.StatusNotFound, "text/html", "HTTP status 404"},
		{"server error", http.StatusBadGateway, "text/html", "HTTP status 502"},
		{"pdf", http.StatusOK, "application/pdf", "unsupported content type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			}))
			defer srv.Close()

			_, err := getHTML(context.Background(), srv.URL, nil)
			var fe *Error
			require.ErrorAs(t, err, &fe)
			assert.False(t, fe.Invalid)
			assert.Contains(t, fe.Message, tt.wantMsg)
			assert.Contains(t, err.Error(), srv.URL)
		})
	}
}

func TestGetHTML_TruncatesLargeBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 1000)))
	}))
	defer srv.Close()

	html, err := getHTML(context.Background(), srv.URL, &Options{MaxBytes: 100})
	require.NoError(t, err)
	assert.Len(t, html, 100)
}

func TestGetHTML_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := getHTML(ctx, srv.URL, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestError_Message(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := &Error{URL: "https://x.test/job", Message: "request failed", Cause: cause}
	assert.Equal(t, "fetch https://x.test/job: request failed: dial tcp: refused", err.Error())
	assert.ErrorIs(t, err, cause)
}
