package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jonathan/resume-builder/internal/extract"
	"github.com/jonathan/resume-builder/internal/latex"
)

// resumeFile is a resume read from disk. Source is set for LaTeX input.
type resumeFile struct {
	Text   string
	Source string
}

// readResume reads a resume in any supported upload format.
func readResume(ctx context.Context, path string) (*resumeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resume: %w", err)
	}
	kind, err := extract.DetectKind("", filepath.Base(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	text, err := extract.Text(ctx, kind, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if kind == extract.KindLaTeX {
		return &resumeFile{Text: latex.PlainText(text), Source: text}, nil
	}
	return &resumeFile{Text: text}, nil
}

// readJob returns the job description text from a file, or "" for no path.
func readJob(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read job description: %w", err)
	}
	return string(data), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
