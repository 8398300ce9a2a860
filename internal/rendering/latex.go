package rendering

import (
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/jonathan/resume-builder/internal/types"
)

//go:embed templates/*.tex
var templateFS embed.FS

// DefaultTemplate is used when a resume is created without a template id.
const DefaultTemplate = "classic"

var catalog = []types.Template{
	{ID: "classic", Name: "Classic", Description: "Single column, centered header, plain section headings."},
	{ID: "modern", Name: "Modern", Description: "Ruled uppercase headings with a right-aligned contact block."},
	{ID: "compact", Name: "Compact", Description: "Narrow margins and tight lists for one-page resumes."},
}

var (
	parsedMu sync.Mutex
	parsed   = map[string]*template.Template{}
)

// TemplateData represents the data structure passed to the LaTeX template.
// Every string is already escaped.
type TemplateData struct {
	Name         string
	ContactLine  string
	ContactItems []string
	Sections     []SectionData
}

// SectionData is one rendered resume section. Items renders Lines as an
// itemize list instead of plain lines.
type SectionData struct {
	Title string
	Items bool
	Lines []string
}

// TextSection is unescaped section text, as produced by an import.
type TextSection struct {
	Title string
	Lines []string
}

// Templates lists the built-in templates.
func Templates() []types.Template {
	out := make([]types.Template, len(catalog))
	copy(out, catalog)
	return out
}

// HasTemplate reports whether id names a built-in template.
func HasTemplate(id string) bool {
	for _, t := range catalog {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Render executes the named template with data.
func Render(templateID string, data *TemplateData) (string, error) {
	if templateID == "" {
		templateID = DefaultTemplate
	}
	tmpl, err := parseTemplate(templateID)
	if err != nil {
		return "", err
	}

	var result strings.Builder
	if err := tmpl.Execute(&result, data); err != nil {
		return "", &TemplateError{ID: templateID, Err: err}
	}
	return result.String(), nil
}

// RenderStarter renders a new resume skeleton for contact, with the standard
// headings and placeholder lines for the user to replace.
func RenderStarter(templateID string, contact types.Contact) (string, error) {
	data := NewTemplateData(contact, []TextSection{
		{Title: "Summary", Lines: []string{"Two or three sentences on who you are and the role you want."}},
		{Title: "Experience", Lines: []string{
			"Job Title, Company (Start -- End)",
			"Action verb + what you built + measurable result",
		}},
		{Title: "Education", Lines: []string{"Degree, Institution (Year)"}},
		{Title: "Skills", Lines: []string{"Languages, frameworks, tools"}},
	})
	return Render(templateID, data)
}

// RenderText renders imported plain-text sections into a template.
func RenderText(templateID string, contact types.Contact, sections []TextSection) (string, error) {
	if len(sections) == 0 {
		return "", ErrNoContent
	}
	return Render(templateID, NewTemplateData(contact, sections))
}

// NewTemplateData escapes contact and section text into template data.
// Sections whose lines mostly start with a bullet glyph become lists.
func NewTemplateData(contact types.Contact, sections []TextSection) *TemplateData {
	data := &TemplateData{
		Name:     EscapeLaTeX(strings.TrimSpace(contact.FullName)),
		Sections: make([]SectionData, 0, len(sections)),
	}
	if data.Name == "" {
		data.Name = "Your Name"
	}

	for _, item := range []string{contact.Email, contact.Phone, contact.Location} {
		if item = strings.TrimSpace(item); item != "" {
			data.ContactItems = append(data.ContactItems, EscapeLaTeX(item))
		}
	}
	for _, link := range []string{contact.LinkedIn, contact.Website} {
		if link = strings.TrimSpace(link); link != "" {
			label := strings.TrimPrefix(strings.TrimPrefix(link, "https://"), "http://")
			data.ContactItems = append(data.ContactItems,
				fmt.Sprintf(`\href{%s}{%s}`, EscapeURL(link), EscapeLaTeX(label)))
		}
	}
	data.ContactLine = strings.Join(data.ContactItems, ` $|$ `)

	for _, sec := range sections {
		title := strings.TrimSpace(sec.Title)
		if title == "" {
			continue
		}
		out := SectionData{Title: EscapeLaTeX(title)}
		bullets := 0
		for _, line := range sec.Lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if stripped, ok := trimBullet(line); ok {
				bullets++
				line = stripped
			}
			out.Lines = append(out.Lines, EscapeLaTeX(line))
		}
		if len(out.Lines) == 0 {
			continue
		}
		out.Items = bullets*2 >= len(out.Lines) || title == "Experience"
		data.Sections = append(data.Sections, out)
	}
	return data
}

func trimBullet(line string) (string, bool) {
	for _, prefix := range []string{"•", "▪", "●", "◦", "- ", "* ", "– "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
		}
	}
	return line, false
}

func parseTemplate(templateID string) (*template.Template, error) {
	parsedMu.Lock()
	defer parsedMu.Unlock()

	if tmpl, ok := parsed[templateID]; ok {
		return tmpl, nil
	}
	if !HasTemplate(templateID) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, templateID)
	}

	content, err := templateFS.ReadFile("templates/" + templateID + ".tex")
	if err != nil {
		return nil, &TemplateError{ID: templateID, Err: err}
	}

	// << >> keeps LaTeX braces out of the action syntax
	tmpl, err := template.New(templateID).Delims("<<", ">>").Funcs(template.FuncMap{
		"escape": EscapeLaTeX,
	}).Parse(string(content))
	if err != nil {
		return nil, &TemplateError{ID: templateID, Err: err}
	}

	parsed[templateID] = tmpl
	return tmpl, nil
}
