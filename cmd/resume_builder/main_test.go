package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/types"
)

// TestMain loads .env if available
func TestMain(m *testing.M) {
	_ = godotenv.Load()
	os.Exit(m.Run())
}

const cliResumeLaTeX = `\documentclass{article}
\begin{document}
\section{Summary}
Backend engineer building APIs in Go.
\section{Experience}
Built payment services in Go and PostgreSQL, cutting latency by 40\%.
\section{Skills}
Go, SQL, PostgreSQL, Docker
\end{document}
`

// runCLI executes the root command in-process. Flags are reset to their
// defaults first since cobra keeps values and Changed marks between runs.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMatchCommand(t *testing.T) {
	resume := writeFile(t, "resume.txt", "Jane Doe\nGo developer with PostgreSQL and Docker experience.\n")
	job := writeFile(t, "job.txt", "We are hiring a backend engineer: Go, Kubernetes, PostgreSQL.")

	out, err := runCLI(t, "match", "--resume", resume, "--job", job)
	require.NoError(t, err)
	assert.Contains(t, out, "SKILL MATCH")
	assert.Contains(t, out, "Kubernetes")

	out, err = runCLI(t, "match", "--resume", resume, "--job", job, "--json")
	require.NoError(t, err)
	var result types.MatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Contains(t, result.MatchedSkills, "Go")
	assert.Contains(t, result.MatchedSkills, "PostgreSQL")
}

func TestMatchCommand_RequiresJob(t *testing.T) {
	resume := writeFile(t, "resume.txt", "Go developer")

	_, err := runCLI(t, "match", "--resume", resume)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job description is required")
}

func TestMatchCommand_MissingResumeFlag(t *testing.T) {
	_, err := runCLI(t, "match", "--job", "job.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "resume" not set`)
}

func TestATSCheckCommand_LaTeX(t *testing.T) {
	resume := writeFile(t, "resume.tex", cliResumeLaTeX)

	out, err := runCLI(t, "ats-check", "--resume", resume, "--json")
	require.NoError(t, err)
	var report types.ATSReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.NotEmpty(t, report.Checks)
	assert.Nil(t, report.KeywordMatch)

	out, err = runCLI(t, "ats-check", "--resume", resume)
	require.NoError(t, err)
	assert.Contains(t, out, "ATS COMPATIBILITY")
}

func TestATSCheckCommand_UnsupportedFile(t *testing.T) {
	resume := writeFile(t, "resume.bin", string([]byte{0x00, 0x01, 0x02, 0xff}))

	_, err := runCLI(t, "ats-check", "--resume", resume)
	assert.Error(t, err)
}

func TestCompileCommand_Placeholder(t *testing.T) {
	t.Setenv("PDFLATEX_PATH", "definitely-not-a-real-pdflatex")
	in := writeFile(t, "resume.tex", cliResumeLaTeX)
	out := filepath.Join(t.TempDir(), "build", "resume.pdf")

	stdout, err := runCLI(t, "compile", "--in", in, "--out", out, "--placeholder")
	require.NoError(t, err)
	assert.Contains(t, stdout, "COMPILED")
	assert.Contains(t, stdout, "placeholder")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestCompileCommand_Errors(t *testing.T) {
	t.Setenv("PDFLATEX_PATH", "definitely-not-a-real-pdflatex")

	_, err := runCLI(t, "compile", "--in", filepath.Join(t.TempDir(), "missing.tex"))
	assert.Error(t, err)

	in := writeFile(t, "resume.tex", cliResumeLaTeX)
	_, err = runCLI(t, "compile", "--in", in)
	assert.Error(t, err)

	fragment := writeFile(t, "fragment.tex", `\section{Skills} Go`)
	_, err = runCLI(t, "compile", "--in", fragment, "--placeholder")
	assert.Error(t, err)
}
