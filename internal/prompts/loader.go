// Package prompts loads the LLM prompt templates embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Prompt files.
const (
	OptimizeFile = "optimize.json"
	InsightFile  = "insight.json"
	ChatFile     = "chat.json"
)

//go:embed *.json
var promptFiles embed.FS

// files memoizes each parsed file. Embedded content never changes, so a
// parse error is as permanent as a success.
var files = map[string]func() (map[string]string, error){
	OptimizeFile: sync.OnceValues(func() (map[string]string, error) { return parse(OptimizeFile) }),
	InsightFile:  sync.OnceValues(func() (map[string]string, error) { return parse(InsightFile) }),
	ChatFile:     sync.OnceValues(func() (map[string]string, error) { return parse(ChatFile) }),
}

// Get returns the prompt stored under key in file.
func Get(file, key string) (string, error) {
	set, err := open(file)
	if err != nil {
		return "", err
	}
	prompt, ok := set[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, file)
	}
	return prompt, nil
}

// Render loads a prompt and fills its placeholders.
func Render(file, key string, data map[string]string) (string, error) {
	prompt, err := Get(file, key)
	if err != nil {
		return "", err
	}
	return Format(prompt, data), nil
}

// Format replaces {{.Key}} placeholders with values from data in a single
// pass. Unknown placeholders are left in place.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	oldnew := make([]string, 0, 2*len(data))
	for key, value := range data {
		oldnew = append(oldnew, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(oldnew...).Replace(template)
}

// Keys returns the sorted prompt keys in file.
func Keys(file string) ([]string, error) {
	set, err := open(file)
	if err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(set)), nil
}

func open(file string) (map[string]string, error) {
	load, ok := files[file]
	if !ok {
		return nil, fmt.Errorf("unknown prompt file %s", file)
	}
	return load()
}

func parse(file string) (map[string]string, error) {
	raw, err := promptFiles.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", file, err)
	}
	var set map[string]string
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", file, err)
	}
	return set, nil
}
