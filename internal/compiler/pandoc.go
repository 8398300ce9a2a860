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
)

// Pandoc converts documents between LaTeX and DOCX.
type Pandoc struct {
	Binary  string
	Timeout time.Duration
}

// Available reports whether the pandoc binary can be found.
func (p *Pandoc) Available() bool {
	_, err := exec.LookPath(p.binary())
	return err == nil
}

// ToDocx converts LaTeX source to a DOCX document.
func (p *Pandoc) ToDocx(ctx context.Context, source string) ([]byte, error) {
	if strings.TrimSpace(source) == "" {
		return nil, &InputError{Message: "LaTeX source is empty"}
	}

	var out []byte
	err := p.convert(ctx, "latex-to-docx", "input.tex", []byte(source), "output.docx",
		[]string{"-f", "latex", "-t", "docx"},
		func(path string) error {
			var err error
			out, err = os.ReadFile(path)
			return err
		})
	return out, err
}

// DocxToLaTeX converts a DOCX document to standalone LaTeX source.
func (p *Pandoc) DocxToLaTeX(ctx context.Context, docx []byte) (string, error) {
	if len(docx) == 0 {
		return "", &InputError{Message: "DOCX document is empty"}
	}

	var out string
	err := p.convert(ctx, "docx-to-latex", "input.docx", docx, "output.tex",
		[]string{"-f", "docx", "-t", "latex", "--standalone"},
		func(path string) error {
			data, err := os.ReadFile(path)
			out = string(data)
			return err
		})
	return out, err
}

func (p *Pandoc) convert(ctx context.Context, direction, inName string, input []byte, outName string, args []string, collect func(string) error) error {
	binPath, err := exec.LookPath(p.binary())
	if err != nil {
		conversions.WithLabelValues(direction, outcomeUnavailable).Inc()
		return &ToolUnavailableError{Tool: p.binary(), Cause: err}
	}

	workDir, err := os.MkdirTemp("", "pandoc-convert-*")
	if err != nil {
		return &ConversionError{Message: "failed to create temporary working directory", Cause: err}
	}
	defer os.RemoveAll(workDir)

	inPath := filepath.Join(workDir, inName)
	outPath := filepath.Join(workDir, outName)
	if err := os.WriteFile(inPath, input, 0o600); err != nil {
		return &ConversionError{Message: "failed to write input document", Cause: err}
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binPath, append(args, "-o", outPath, inPath)...)
	cmd.Dir = workDir
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		outcome := outcomeFailed
		msg := fmt.Sprintf("pandoc %s failed", direction)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			outcome = outcomeTimeout
			msg = fmt.Sprintf("pandoc %s timed out after %s", direction, timeout)
		}
		conversions.WithLabelValues(direction, outcome).Inc()
		return &ConversionError{Message: msg, LogOutput: stderr.String(), Cause: err}
	}

	if err := collect(outPath); err != nil {
		conversions.WithLabelValues(direction, outcomeFailed).Inc()
		return &ConversionError{Message: "failed to read converted document", Cause: err}
	}
	conversions.WithLabelValues(direction, outcomeOK).Inc()
	return nil
}

func (p *Pandoc) binary() string {
	if p.Binary == "" {
		return "pandoc"
	}
	return p.Binary
}
