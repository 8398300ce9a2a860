// Package compiler wraps the external LaTeX and pandoc toolchains: it
// compiles resume sources to PDF, parses pdflatex logs and converts to and
// from DOCX.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTimeout is the maximum time to wait for one LaTeX compilation.
	DefaultTimeout = 30 * time.Second

	// maxPasses bounds reruns requested by the log.
	maxPasses = 3

	jobName = "resume"
)

// auxExtensions are the pdflatex by-products removed after each run.
var auxExtensions = []string{".aux", ".log", ".out", ".toc", ".lof", ".lot", ".fls", ".synctex.gz"}

// Compiler runs pdflatex.
type Compiler struct {
	// Binary is the pdflatex executable; "pdflatex" when empty.
	Binary string
	// Timeout bounds each compilation; DefaultTimeout when zero.
	Timeout time.Duration
	// Passes is the minimum number of pdflatex runs.
	Passes int
	// AllowPlaceholder returns a placeholder PDF instead of an error when
	// the binary is missing.
	AllowPlaceholder bool
	Logger           *zap.Logger
}

// Result is a compiled document.
type Result struct {
	PDF         []byte
	Log         string
	Pages       int
	Warnings    []string
	Placeholder bool
	Duration    time.Duration
}

// NewCompiler returns a Compiler with default settings.
func NewCompiler(binary string, timeout time.Duration, allowPlaceholder bool, logger *zap.Logger) *Compiler {
	return &Compiler{
		Binary:           binary,
		Timeout:          timeout,
		Passes:           1,
		AllowPlaceholder: allowPlaceholder,
		Logger:           logger,
	}
}

// Available reports whether the pdflatex binary can be found.
func (c *Compiler) Available() bool {
	_, err := exec.LookPath(c.binary())
	return err == nil
}

// Compile typesets source and returns the PDF bytes. The working directory
// and every auxiliary file are removed before returning.
func (c *Compiler) Compile(ctx context.Context, source string) (*Result, error) {
	if strings.TrimSpace(source) == "" {
		return nil, &InputError{Message: "LaTeX source is empty"}
	}
	if !strings.Contains(source, `\begin{document}`) {
		return nil, &InputError{Message: `LaTeX source has no \begin{document}`}
	}

	binPath, err := exec.LookPath(c.binary())
	if err != nil {
		if c.AllowPlaceholder {
			compilations.WithLabelValues(outcomePlaceholder).Inc()
			c.logger().Warn("pdflatex unavailable, returning placeholder PDF", zap.String("binary", c.binary()))
			return &Result{
				PDF:         PlaceholderPDF("Resume"),
				Log:         fmt.Sprintf("%s not found in PATH; placeholder PDF generated", c.binary()),
				Pages:       1,
				Placeholder: true,
			}, nil
		}
		compilations.WithLabelValues(outcomeUnavailable).Inc()
		return nil, &ToolUnavailableError{Tool: c.binary(), Cause: err}
	}

	workDir, err := os.MkdirTemp("", "latex-compile-*")
	if err != nil {
		return nil, &CompilationError{Message: "failed to create temporary working directory", Cause: err}
	}
	defer func() {
		if err := CleanupCompilationArtifacts(workDir); err != nil {
			c.logger().Warn("failed to remove compile directory", zap.String("dir", workDir), zap.Error(err))
		}
	}()

	texPath := filepath.Join(workDir, jobName+".tex")
	if err := os.WriteFile(texPath, []byte(source), 0o600); err != nil {
		return nil, &CompilationError{Message: "failed to write LaTeX source", Cause: err}
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	passes := c.Passes
	if passes < 1 {
		passes = 1
	}

	var logOutput string
	var runErr error
	for pass := 1; pass <= maxPasses; pass++ {
		logOutput, runErr = c.run(ctx, binPath, workDir)
		if runErr != nil || (pass >= passes && !needsRerun(logOutput)) {
			break
		}
	}
	elapsed := time.Since(start)
	compileDuration.Observe(elapsed.Seconds())

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		compilations.WithLabelValues(outcomeTimeout).Inc()
		return nil, &CompilationError{
			Message:   fmt.Sprintf("compilation timed out after %s", timeout),
			LogOutput: logOutput,
			Cause:     ctx.Err(),
		}
	}

	pdfPath := filepath.Join(workDir, jobName+".pdf")
	pdfBytes, readErr := os.ReadFile(pdfPath)
	if runErr != nil || readErr != nil {
		compilations.WithLabelValues(outcomeFailed).Inc()
		compileErr := &CompilationError{
			Message:   "LaTeX compilation failed",
			LogOutput: logOutput,
			Cause:     runErr,
		}
		if first := FirstError(logOutput); first != nil {
			compileErr.Line = first.Line
			compileErr.Detail = first.Message
		} else if readErr != nil {
			compileErr.Detail = "PDF was not generated"
		}
		return nil, compileErr
	}

	pages, err := CountPages(pdfBytes)
	if err != nil {
		c.logger().Warn("failed to count PDF pages", zap.Error(err))
	}

	compilations.WithLabelValues(outcomeOK).Inc()
	c.logger().Debug("compiled LaTeX",
		zap.Duration("duration", elapsed),
		zap.Int("pages", pages),
		zap.Int("bytes", len(pdfBytes)))

	return &Result{
		PDF:      pdfBytes,
		Log:      logOutput,
		Pages:    pages,
		Warnings: ParseWarnings(logOutput),
		Duration: elapsed,
	}, nil
}

func (c *Compiler) run(ctx context.Context, binPath, workDir string) (string, error) {
	// -halt-on-error stops at the first error so the log points at it
	cmd := exec.CommandContext(ctx, binPath,
		"-interaction=nonstopmode",
		"-halt-on-error",
		"-file-line-error",
		"-output-directory", workDir,
		jobName+".tex")
	cmd.Dir = workDir

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String() + stderr.String(), err
}

func (c *Compiler) binary() string {
	if c.Binary == "" {
		return "pdflatex"
	}
	return c.Binary
}

func (c *Compiler) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// CleanupCompilationArtifacts removes a compile directory created by
// Compile, or only the auxiliary files of the resume job in any other
// directory.
func CleanupCompilationArtifacts(workDir string) error {
	if workDir == "" {
		return nil
	}

	if strings.HasPrefix(filepath.Base(workDir), "latex-compile-") {
		return os.RemoveAll(workDir)
	}

	for _, ext := range auxExtensions {
		_ = os.Remove(filepath.Join(workDir, jobName+ext))
	}
	return nil
}
