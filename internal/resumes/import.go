package resumes

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/extract"
	"github.com/jonathan/resume-builder/internal/latex"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
)

const defaultImportName = "Imported resume"

// ImportInput is an uploaded resume file.
type ImportInput struct {
	FileName    string
	ContentType string
	Data        []byte
	Name        string
	Template    string
}

// Import turns an uploaded file into a new resume. LaTeX is kept verbatim,
// DOCX goes through pandoc when it is installed, and everything else is
// reduced to text, split into headed sections and rendered into a template.
func (s *Service) Import(ctx context.Context, userID uuid.UUID, in ImportInput) (*types.Resume, error) {
	if len(in.Data) == 0 {
		return nil, &ValidationError{Field: "file", Message: "is empty"}
	}
	kind, err := extract.DetectKind(in.ContentType, in.FileName, in.Data)
	if err != nil {
		return nil, &ValidationError{Field: "file", Message: err.Error()}
	}
	tmpl, err := validateTemplate(in.Template)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = nameFromFile(in.FileName)
	}

	source, err := s.importSource(ctx, kind, tmpl, in.Data)
	if err != nil {
		return nil, err
	}
	s.logger.Info("resume imported", zap.String("kind", string(kind)), zap.Int("bytes", len(in.Data)))
	return s.Create(ctx, userID, CreateInput{Name: name, Template: tmpl, LaTeX: source})
}

func (s *Service) importSource(ctx context.Context, kind extract.Kind, tmpl string, data []byte) (string, error) {
	if kind == extract.KindLaTeX && strings.Contains(string(data), `\begin{document}`) {
		return string(data), nil
	}

	if kind == extract.KindDOCX && s.converter != nil && s.converter.Available() {
		source, err := s.converter.DocxToLaTeX(ctx, data)
		if err == nil && strings.TrimSpace(source) != "" {
			return source, nil
		}
		s.logger.Warn("pandoc import failed, falling back to text extraction", zap.Error(err))
	}

	text, err := extract.Text(ctx, kind, data)
	if err != nil {
		if errors.Is(err, extract.ErrEmptyDocument) || errors.Is(err, extract.ErrUnsupportedType) {
			return "", &ValidationError{Field: "file", Message: err.Error()}
		}
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	if kind == extract.KindLaTeX {
		// a fragment without a document body: keep only its text
		text = latex.PlainText(text)
	}
	text = extract.CleanText(text)

	contact, sections := textSections(text)
	source, err := rendering.RenderText(tmpl, contact, sections)
	if err != nil {
		return "", &ValidationError{Field: "file", Message: err.Error()}
	}
	return source, nil
}

// textSections maps extracted text onto template sections. Lines before the
// first recognised heading supply the name and contact details; when the
// text has no headings at all, it becomes a single Resume section.
func textSections(text string) (types.Contact, []rendering.TextSection) {
	contact := extract.ContactFromText(text)
	var out []rendering.TextSection

	for _, sec := range extract.SplitSections(text) {
		if sec.Key == "" {
			if contact.FullName == "" {
				contact.FullName = guessName(sec.Lines)
			}
			continue
		}
		out = append(out, rendering.TextSection{Title: sec.Title, Lines: sec.Lines})
	}

	if len(out) == 0 {
		var lines []string
		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			out = append(out, rendering.TextSection{Title: "Resume", Lines: lines})
		}
	}
	return contact, out
}

// guessName takes the first short line without contact details as the
// candidate's name.
func guessName(lines []string) string {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.ContainsAny(line, "@|:/0123456789") {
			continue
		}
		if n := len(strings.Fields(line)); n >= 1 && n <= 4 {
			return line
		}
	}
	return ""
}

func nameFromFile(fileName string) string {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	base = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(base))
	if base == "" || base == "." {
		return defaultImportName
	}
	return base
}
