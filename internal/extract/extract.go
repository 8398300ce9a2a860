// Package extract pulls plain text out of uploaded resume files and splits
// it into headed sections.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Kind is a supported upload format.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindDOCX  Kind = "docx"
	KindText  Kind = "text"
	KindLaTeX Kind = "latex"

	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ErrUnsupportedType is returned for uploads that are not PDF, DOCX, TXT or TeX.
var ErrUnsupportedType = errors.New("unsupported file type")

// ErrEmptyDocument is returned when a file yields no text.
var ErrEmptyDocument = errors.New("document contains no extractable text")

var (
	paragraphEnd = regexp.MustCompile(`</w:p>|<w:br/>|<w:br />|<w:cr/>`)
	tabTag       = regexp.MustCompile(`<w:tab/>`)
	xmlTag       = regexp.MustCompile(`<[^>]+>`)
)

// DetectKind classifies an upload from its declared content type, file name
// and leading bytes.
func DetectKind(contentType, fileName string, data []byte) (Kind, error) {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	ext := strings.ToLower(filepath.Ext(fileName))

	switch {
	case clean == mimePDF || ext == ".pdf" || bytes.HasPrefix(data, []byte("%PDF-")):
		return KindPDF, nil
	case clean == mimeDOCX || ext == ".docx" || isDocxZip(data):
		return KindDOCX, nil
	case ext == ".tex" || clean == "application/x-tex" || clean == "text/x-tex":
		return KindLaTeX, nil
	case ext == ".txt" || ext == ".md" || strings.HasPrefix(clean, "text/"):
		return KindText, nil
	}

	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "text/") && utf8.Valid(data) {
		if bytes.Contains(data, []byte(`\documentclass`)) {
			return KindLaTeX, nil
		}
		return KindText, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedType, firstNonEmpty(clean, ext, "unknown"))
}

// Text extracts readable text from an upload. LaTeX sources are returned
// unchanged so callers can keep them as-is.
func Text(ctx context.Context, kind Kind, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}

	var (
		text string
		err  error
	)
	switch kind {
	case KindPDF:
		text, err = pdfText(data)
	case KindDOCX:
		text, err = docxText(data)
	case KindText, KindLaTeX:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: text is not valid UTF-8", ErrUnsupportedType)
		}
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, kind)
	}
	if err != nil {
		return "", err
	}

	if kind != KindLaTeX {
		text = CleanText(text)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	// page by page keeps line breaks that GetPlainText on the whole
	// document tends to lose
	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			text, textErr := page.GetPlainText(nil)
			if textErr != nil {
				return "", fmt.Errorf("failed to read pdf page %d: %w", i, textErr)
			}
			b.WriteString(text)
			b.WriteString("\n")
			continue
		}
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				words = append(words, word.S)
			}
			b.WriteString(strings.Join(words, " "))
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	raw := doc.Editable().GetContent()
	raw = paragraphEnd.ReplaceAllString(raw, "\n")
	raw = tabTag.ReplaceAllString(raw, " ")
	raw = xmlTag.ReplaceAllString(raw, "")
	return html.UnescapeString(raw), nil
}

func isDocxZip(data []byte) bool {
	if !bytes.HasPrefix(data, []byte("PK")) {
		return false
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return true
		}
	}
	return false
}

// ReadAll reads at most limit bytes from r, failing when r holds more.
func ReadAll(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds %d bytes", limit)
	}
	return data, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
