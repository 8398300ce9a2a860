package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/assistant"
	"github.com/jonathan/resume-builder/internal/compiler"
	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/fetch"
	"github.com/jonathan/resume-builder/internal/llm/llmtest"
	"github.com/jonathan/resume-builder/internal/optimizer"
	"github.com/jonathan/resume-builder/internal/resumes"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
	"github.com/jonathan/resume-builder/internal/storage/local"
	"github.com/jonathan/resume-builder/internal/types"
)

const testResumeLaTeX = `\documentclass{article}
\begin{document}
\section{Summary}
Backend engineer building APIs in Go.
\section{Skills}
Go, SQL, PostgreSQL, Docker
\end{document}
`

const optimizationReply = `{"optimized_content":"Go, SQL, PostgreSQL, Docker, Kubernetes","explanation":"Added Kubernetes from the posting","keywords_added":["Kubernetes"],"changes":["added Kubernetes"]}`

// stubCompiler fails on sources containing \undefined and otherwise returns
// a one-page placeholder.
type stubCompiler struct{}

func (stubCompiler) Compile(_ context.Context, source string) (*compiler.Result, error) {
	if strings.Contains(source, `\undefined`) {
		return nil, &compiler.CompilationError{
			Message:   "Undefined control sequence.",
			Line:      4,
			LogOutput: "! Undefined control sequence.\nl.4 \\undefined",
		}
	}
	return &compiler.Result{PDF: compiler.PlaceholderPDF("Resume"), Pages: 1, Placeholder: true}, nil
}

type stubFetcher struct {
	text string
	err  error
}

func (f *stubFetcher) JobDescription(_ context.Context, url string) (*fetch.JobDescription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &fetch.JobDescription{URL: url, Title: "Backend Engineer", Text: f.text}, nil
}

func newObjectStore(t *testing.T) *local.Store {
	t.Helper()
	objects, err := local.New(t.TempDir())
	require.NoError(t, err)
	return objects
}

type testEnv struct {
	t         *testing.T
	server    *Server
	handler   http.Handler
	store     *db.MemoryStore
	optimizer *llmtest.Client
	chat      *llmtest.Client
	fetcher   *stubFetcher
	token     string
}

type envOption func(cfg *config.Config, deps *Deps)

func withAuthMode(mode string) envOption {
	return func(cfg *config.Config, _ *Deps) { cfg.AuthMode = mode }
}

func withLimiter(l *ratelimit.Limiter) envOption {
	return func(_ *config.Config, deps *Deps) { deps.Limiter = l }
}

func withoutAI() envOption {
	return func(_ *config.Config, deps *Deps) {
		deps.Optimizer = nil
		deps.Assistant = nil
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	cfg := config.Default()
	cfg.JWTSecret = testJWTSecret
	cfg.BcryptCost = 10
	cfg.SupabaseJWTSecret = testSupabaseSecret

	env := &testEnv{
		t:         t,
		store:     db.NewMemoryStore(),
		optimizer: &llmtest.Client{Response: optimizationReply},
		chat:      &llmtest.Client{Response: "Lead each bullet with a measurable result."},
		fetcher:   &stubFetcher{text: "We need a backend engineer with Go, Kubernetes and PostgreSQL."},
	}
	opt := optimizer.New(env.optimizer, nil)
	deps := Deps{
		Store: env.store,
		Resumes: resumes.New(resumes.Deps{
			Store:     env.store,
			Objects:   newObjectStore(t),
			Compiler:  stubCompiler{},
			Optimizer: opt,
		}),
		Optimizer: opt,
		Assistant: assistant.New(env.chat, nil),
		Fetcher:   env.fetcher,
	}
	for _, o := range opts {
		o(&cfg, &deps)
	}

	s, err := New(&cfg, deps)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	env.server = s
	env.handler = s.Handler()
	return env
}

// login registers a fresh local account and keeps its token.
func (e *testEnv) login(username string) {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"password": "correct-horse-battery",
	})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp types.LoginResponse
	decode(e.t, rec, &resp)
	e.token = resp.Token
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(req)
}

func (e *testEnv) send(req *http.Request) *httptest.ResponseRecorder {
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createResume(latex string) types.Resume {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/resumes", map[string]string{"name": "Backend Resume", "latex": latex})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	var r types.Resume
	decode(e.t, rec, &r)
	return r
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	decode(t, rec, &body)
	msg, _ := body["error"].(string)
	return msg
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodGet, "/health", nil)

	rec := env.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "resume_builder_http_requests_total")
	assert.Contains(t, rec.Body.String(), `route="GET /health"`)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodOptions, "/api/resumes", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/api/resumes", "/api/auth/me", "/api/chat/conversations"} {
		rec := env.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Equal(t, "Unauthorized", errorMessage(t, rec))
	}
}

func TestPublicCatalogs(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/templates", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var templates []types.Template
	decode(t, rec, &templates)
	assert.NotEmpty(t, templates)

	rec = env.do(http.MethodGet, "/api/chat/personas", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var personas []types.Persona
	decode(t, rec, &personas)
	ids := make([]string, 0, len(personas))
	for _, p := range personas {
		ids = append(ids, p.ID)
	}
	assert.Contains(t, ids, "career_coach")
	assert.Contains(t, ids, "recruiter")
}

func TestMeEndpoint_LocalAccount(t *testing.T) {
	env := newTestEnv(t)
	env.login("jane")

	rec := env.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var user types.User
	decode(t, rec, &user)
	assert.Equal(t, "jane", user.Username)
	assert.False(t, user.External)
}

func TestResumeLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.login("jane")

	rec := env.do(http.MethodGet, "/api/resumes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = env.do(http.MethodPost, "/api/resumes", map[string]any{
		"name":     "From template",
		"template": "classic",
		"contact":  map[string]string{"full_name": "Jane Doe", "email": "jane@example.com"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created types.Resume
	decode(t, rec, &created)
	assert.Equal(t, "From template", created.Name)
	assert.Contains(t, created.LaTeX, "Jane Doe")
	assert.NotEmpty(t, created.Sections)

	path := "/api/resumes/" + created.ID.String()
	rec = env.do(http.MethodPut, path, map[string]string{"name": "Renamed", "latex": testResumeLaTeX})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated types.Resume
	decode(t, rec, &updated)
	assert.Equal(t, "Renamed", updated.Name)
	require.Len(t, updated.Sections, 2)
	assert.Equal(t, "Summary", updated.Sections[0].Name)

	rec = env.do(http.MethodGet, path+"/sections", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sections []types.ResumeSection
	decode(t, rec, &sections)
	assert.Len(t, sections, 2)

	rec = env.do(http.MethodPut, path+"/sections/Skills", map[string]string{"content": "Go, Rust"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &updated)
	assert.Contains(t, updated.LaTeX, "Go, Rust")
	assert.Contains(t, updated.LaTeX, "Backend engineer building APIs in Go.")

	rec = env.do(http.MethodPut, path+"/sections/Awards", map[string]string{"content": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/api/resumes", nil)
	var list []types.Resume
	decode(t, rec, &list)
	assert.Len(t, list, 1)

	rec = env.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResumeValidation(t *testing.T) {
	env := newTestEnv(t)
	env.login("jane")

	rec := env.do(http.MethodPost, "/api/resumes", map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "Name")

	rec = env.do(http.MethodPost, "/api/resumes", map[string]string{"name": "x", "template": "baroque"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/api/resumes/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResumeOwnership(t *testing.T) {
	env := newTestEnv(t)
	env.login("owner")
	r := env.createResume(testResumeLaTeX)

	env.login("intruder")
	for _, path := range []string{"", "/sections", "/tex", "/optimizations"} {
		rec := env.do(http.MethodGet, "/api/resumes/"+r.ID.String()+path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
	rec := env.do(http.MethodDelete, "/api/resumes/"+r.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompileAndDownload(t *testing.T) {
	env := newTestEnv(t)
	env.login("jane")
	r := env.createResume(testResumeLaTeX)
	path := "/api/resumes/" + r.ID.String()

	rec := env.do(http.MethodGet, path+"/pdf", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodPost, path+"/compile", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var compiled types.CompileResponse
	decode(t, rec, &compiled)
	assert.Equal(t, 1, compiled.Pages)
	assert.True(t, compiled.Placeholder)

	rec = env.do(http.MethodGet, path+"/pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Backend_Resume.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = env.do(http.MethodGet, path+"/tex", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, testResumeLaTeX, rec.Body.String())

	// no pandoc converter configured
	rec = env.do(http.MethodGet, path+"/docx", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCompileFailureReportsLine(t *testing.T) {
	env := newTestEnv(t)
	env.login("jane")
	broken := strings.Replace(testResumeLaTeX, "Go, SQL", `\undefined Go, SQL`, 1)
	r := env.createResume(broken)

	rec := env.do(http.MethodPost, "/api/resumes/"+r.ID.String()+"/compile", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body types.CompileErrorResponse
	decode(t, rec, &body)
	assert.Equal(t, "compilation failed", body.Error)
	assert.Equal(t, 4, body.Line)
	assert.Contains(t, body.Log, "Undefined control sequence")

	rec = env.do(http.MethodGet, "/api/resumes/"+r.ID.String(), nil)
	var got types.Resume
	decode(t, rec, &got)
	assert.Empty(t, got.PDFPath)
}

func TestAdhocCompile(t *testing.T) {
	env := newTestEnv(t)
	env.login("jane")

	rec := env.do(http.MethodPost, "/api/compile", map[string]string{"latex": testResumeLaTeX})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "1", rec.Header().Get("X-PDF-Pages"))
	assert.Equal(t, "true", rec.Header().Get("X-PDF-Placeholder"))

	rec = env.do(http.MethodPost, "/api/compile", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportResume(t *testing.T) {
	env := newTestEnv(t)
	env.login("jane")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "jane_doe.txt")
	require.NoError(t, err)
	_, err = io.WriteString(part, "Jane Doe\njane@example.com\n\nEXPERIENCE\nBuilt Go services.\n\nSKILLS\nGo, SQL\n")
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("template", "modern"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/resumes/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := env.send(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var r types.Resume
	decode(t, rec, &r)
	assert.Equal(t, "modern", r.Template)
	assert.Contains(t, r.LaTeX, `\begin{document}`)
	assert.NotEmpty(t, r.Sections)

	req = httptest.NewRequest(http.MethodPost, "/api/resumes/import", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "text/plain")
	rec = env.send(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptimizeResumeSection(t *testing.T) {
	env := newTestEnv(t)
	env.login("jane")
	r := env.createResume(testResumeLaTeX)
	path := "/api/resumes/" + r.ID.String()

	rec := env.do(http.MethodPost, path+"/optimize", map[string]any{
		"section":         "Skills",
		"job_description": "Kubernetes experience required",
		"apply":           true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp types.OptimizeResponse
	decode(t, rec, &resp)
	assert.True(t, resp.Applied)
	assert.Equal(t, []string{"Kubernetes"}, resp.Result.KeywordsAdded)
	require.NotNil(t, resp.Resume)
	assert.Contains(t, resp.Resume.LaTeX, "Kubernetes")

	rec = env.do(http.MethodGet, path+"/optimizations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var recs []types.OptimizationRecord
	decode(t, rec, &recs)
	require.Len(t, recs, 1)
	assert.Equal(t, "Skills", recs[0].SectionName)

	rec = env.do(http.MethodPost, path+"/optimize", map[string]any{"section": "Awards"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOptimizeText(t *testing.T) {
	env := newTestEnv(t)
	env.login("jane")

	rec := env.do(http.MethodPost, "/api/optimize", map[string]string{
		"section": "Skills",
		"content": "Go, SQL, PostgreSQL, Docker",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp types.OptimizeResponse
	decode(t, rec, &resp)
	assert.False(t, resp.Applied)
	assert.Contains(t, resp.Result.OptimizedContent, "Kubernetes")

	env.optimizer.Response = `{"explanation":"missing content"}`
	rec = env.do(http.MethodPost, "/api/optimize", map[string]string{"section": "Skills", "content": "Go"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAIEndpoints_NotConfigured(t *testing.T) {
	env := newTestEnv(t, withoutAI())
	env.login("jane")

	rec := env.do(http.MethodPost, "/api/optimize", map[string]string{"section": "Skills", "content": "Go"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = env.do(http.MethodPost, "/api/chat", map[string]string{"message": "hello"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = env.do(http.MethodGet, "/api/chat/conversations", nil)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestMatchEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.login("jane")

	rec := env.do(http.MethodPost, "/api/match", map[string]string{
		"resume_text":     "Go developer with PostgreSQL and Docker",
		"job_description": "Looking for Go, Kubernetes and PostgreSQL experience",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var match types.MatchResult
	decode(t, rec, &match)
	assert.Contains(t, match.MatchedSkills, "Go")
	assert.Greater(t, match.Score, 0)
	assert.Less(t, match.Score, 100)

	rec = env.do(http.MethodPost, "/api/match", map[string]string{"resume_text": "Go"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "job_description")

	rec = env.do(http.MethodPost, "/api/match", map[string]string{"job_description": "Go"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMatchEndpoint_FetchesJobURL(t *testing.T) {
	env := newTestEnv(t)
	env.login("jane")
	r := env.createResume(testResumeLaTeX)

	rec := env.do(http.MethodPost, "/api/match", map[string]string{
		"resume_id": r.ID.String(),
		"job_url":   "https://jobs.example.com/backend",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var match types.MatchResult
	decode(t, rec, &match)
	assert.Contains(t, match.MatchedSkills, "PostgreSQL")

	env.fetcher.err = &fetch.Error{URL: "https://jobs.example.com/gone", Message: "status 404"}
	rec = env.do(http.MethodPost, "/api/match", map[string]string{
		"resume_id": r.ID.String(),
		"job_url":   "https://jobs.example.com/gone",
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestATSCheckEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.login("jane")
	r := env.createResume(testResumeLaTeX)

	rec := env.do(http.MethodPost, "/api/ats-check", map[string]string{"resume_id": r.ID.String()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report types.ATSReport
	decode(t, rec, &report)
	assert.NotEmpty(t, report.Checks)
	assert.NotEmpty(t, report.Grade)
	assert.GreaterOrEqual(t, report.Score, 0)
	assert.LessOrEqual(t, report.Score, 100)
	assert.Nil(t, report.KeywordMatch)
}

func TestAnalyzeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.login("jane")
	req := map[string]any{
		"resume_text":     "Go developer with PostgreSQL and Docker",
		"job_description": "Looking for Go, Kubernetes and PostgreSQL experience",
		"include_ai":      true,
	}

	t.Run("insight included", func(t *testing.T) {
		env.optimizer.Response = `{"summary":"Strong Go background","strengths":["Go"],"next_steps":["Learn Kubernetes"]}`
		rec := env.do(http.MethodPost, "/api/analyze", req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp types.AnalysisResponse
		decode(t, rec, &resp)
		require.NotNil(t, resp.Match)
		require.NotNil(t, resp.ATS)
		require.NotNil(t, resp.Insight)
		assert.Equal(t, "Strong Go background", resp.Insight.Summary)
	})

	t.Run("insight failure is omitted", func(t *testing.T) {
		env.optimizer.Err = errors.New("quota exceeded")
		defer func() { env.optimizer.Err = nil }()
		rec := env.do(http.MethodPost, "/api/analyze", req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp types.AnalysisResponse
		decode(t, rec, &resp)
		assert.NotNil(t, resp.Match)
		assert.Nil(t, resp.Insight)
	})

	t.Run("ats only without job", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/analyze", map[string]string{"resume_text": "Go developer"})
		require.Equal(t, http.StatusOK, rec.Code)
		var resp types.AnalysisResponse
		decode(t, rec, &resp)
		assert.Nil(t, resp.Match)
		assert.NotNil(t, resp.ATS)
	})
}

func TestFetchJobDescriptionEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.login("jane")

	rec := env.do(http.MethodPost, "/api/job-description/fetch", map[string]string{"url": "https://jobs.example.com/1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp types.FetchJobResponse
	decode(t, rec, &resp)
	assert.Equal(t, "Backend Engineer", resp.Title)
	assert.Contains(t, resp.Text, "Kubernetes")

	rec = env.do(http.MethodPost, "/api/job-description/fetch", map[string]string{"url": "not a url"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.fetcher.err = &fetch.Error{URL: "ftp://x", Message: "unsupported scheme", Invalid: true}
	rec = env.do(http.MethodPost, "/api/job-description/fetch", map[string]string{"url": "https://jobs.example.com/2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatFlow(t *testing.T) {
	env := newTestEnv(t)
	env.login("jane")

	rec := env.do(http.MethodPost, "/api/chat", map[string]string{
		"persona": "recruiter",
		"message": "How should I open my summary?",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var first types.ChatResponse
	decode(t, rec, &first)
	assert.Equal(t, "recruiter", first.Persona)
	assert.Equal(t, types.ChatRoleAssistant, first.Reply.Role)
	assert.Equal(t, "Lead each bullet with a measurable result.", first.Reply.Content)

	rec = env.do(http.MethodPost, "/api/chat", map[string]string{
		"conversation_id": first.ConversationID.String(),
		"message":         "And the skills section?",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	path := "/api/chat/conversations/" + first.ConversationID.String()
	rec = env.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var conv types.ChatConversation
	decode(t, rec, &conv)
	require.Len(t, conv.Messages, 4)
	assert.Equal(t, "How should I open my summary?", conv.Messages[0].Content)
	assert.Equal(t, "How should I open my summary?", conv.Title)

	rec = env.do(http.MethodGet, "/api/chat/conversations", nil)
	var list []types.ChatConversation
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Messages)

	rec = env.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChat_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.login("jane")

	rec := env.do(http.MethodPost, "/api/chat", map[string]string{"persona": "pirate", "message": "ahoy"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/api/chat", map[string]string{"message": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	calls := len(env.chat.Calls())
	rec = env.do(http.MethodPost, "/api/chat", map[string]string{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, env.chat.Calls(), calls)

	rec = env.do(http.MethodPost, "/api/chat", map[string]string{
		"conversation_id": uuid.NewString(),
		"message":         "hello",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	env.chat.Err = errors.New("upstream down")
	rec = env.do(http.MethodPost, "/api/chat", map[string]string{"message": "hello"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", errorMessage(t, rec))

	rec = env.do(http.MethodGet, "/api/chat/conversations", nil)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestAuthModeNone(t *testing.T) {
	env := newTestEnv(t, withAuthMode(config.AuthNone))

	rec := env.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var user types.User
	decode(t, rec, &user)
	assert.Equal(t, uuid.Nil, user.ID)
	assert.True(t, user.External)

	r := env.createResume(testResumeLaTeX)
	assert.Equal(t, uuid.Nil, r.UserID)

	rec = env.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "jane", "password": "password123"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "none")
}

func TestAuthModeSupabase(t *testing.T) {
	env := newTestEnv(t, withAuthMode(config.AuthSupabase))
	userID := uuid.New()
	env.token = signSupabaseToken(t, testSupabaseSecret, jwt.MapClaims{
		"sub":   userID.String(),
		"aud":   "authenticated",
		"email": "jane@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	rec := env.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var user types.User
	decode(t, rec, &user)
	assert.Equal(t, userID, user.ID)
	assert.True(t, user.External)

	r := env.createResume(testResumeLaTeX)
	assert.Equal(t, userID, r.UserID)

	rec = env.do(http.MethodPost, "/api/auth/register", map[string]string{"username": "jane", "password": "password123"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	env.token = signSupabaseToken(t, "some-other-secret-with-at-least-32-bytes", jwt.MapClaims{
		"sub": userID.String(),
		"aud": "authenticated",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	rec = env.do(http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  2,
		DefaultWindow: time.Minute,
	})
	env := newTestEnv(t, withLimiter(limiter))

	for i := 0; i < 2; i++ {
		rec := env.do(http.MethodGet, "/api/templates", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := env.do(http.MethodGet, "/api/templates", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", errorMessage(t, rec))

	// health stays reachable
	rec = env.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNew_RequiresStoreAndResumes(t *testing.T) {
	cfg := config.Default()
	_, err := New(&cfg, Deps{})
	assert.Error(t, err)
}

func TestNew_SupabaseRequiresSecret(t *testing.T) {
	cfg := config.Default()
	cfg.AuthMode = config.AuthSupabase
	store := db.NewMemoryStore()
	_, err := New(&cfg, Deps{Store: store, Resumes: resumes.New(resumes.Deps{Store: store, Objects: newObjectStore(t)})})
	assert.Error(t, err)
}

func TestDownloadName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces", "Backend Resume", "Backend_Resume.pdf"},
		{"punctuation dropped", `Jane's "Best" CV/2026`, "Janes_Best_CV2026.pdf"},
		{"empty falls back", "  ", "resume.pdf"},
		{"only symbols", "***", "resume.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, downloadName(tt.in, ".pdf"))
		})
	}
}

func TestConversationTitle(t *testing.T) {
	assert.Equal(t, "Short question", conversationTitle("  Short question \n"))

	long := strings.Repeat("é", 80)
	title := conversationTitle(long)
	assert.True(t, strings.HasSuffix(title, "..."))
	assert.Equal(t, conversationTitleLength+3, len([]rune(title)))
}
