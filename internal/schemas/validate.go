// Package schemas validates LLM JSON output against embedded JSON Schemas.
package schemas

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Embedded schema names.
const (
	Optimization = "optimization.json"
	Insight      = "insight.json"
)

//go:embed *.json
var schemaFiles embed.FS

var compiled sync.Map // name -> *gojsonschema.Schema

// FieldError is one failed constraint. Field is "(root)" for the document
// itself.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every constraint a document failed.
type ValidationError struct {
	Schema string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("%s: %d violation(s): %s", e.Schema, len(e.Fields), strings.Join(parts, "; "))
}

// LoadError is returned when the schema is missing or the document is not
// JSON at all.
type LoadError struct {
	Schema string
	Err    error
}

func (e *LoadError) Error() string { return fmt.Sprintf("%s: %v", e.Schema, e.Err) }

func (e *LoadError) Unwrap() error { return e.Err }

// Validate checks doc against the embedded schema called name.
func Validate(name, doc string) error {
	schema, err := load(name)
	if err != nil {
		return &LoadError{Schema: name, Err: err}
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return &LoadError{Schema: name, Err: err}
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Schema: name}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Fields = append(ve.Fields, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}

func load(name string) (*gojsonschema.Schema, error) {
	if s, ok := compiled.Load(name); ok {
		return s.(*gojsonschema.Schema), nil
	}
	raw, err := schemaFiles.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("schema not embedded: %w", err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	s, _ := compiled.LoadOrStore(name, schema)
	return s.(*gojsonschema.Schema), nil
}
