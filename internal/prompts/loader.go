// Package prompts holds the assessment prompt templates. Each embedded JSON file maps a
// prompt name to a template with {{.Key}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

var placeholderRe = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

// Set is one parsed prompt file.
type Set struct {
	name      string
	templates map[string]string
}

var (
	setsMu sync.Mutex
	sets   = make(map[string]*Set)
)

// Load parses an embedded prompt file. Parsed files are kept for the life of the process.
func Load(filename string) (*Set, error) {
	setsMu.Lock()
	defer setsMu.Unlock()

	if set, ok := sets[filename]; ok {
		return set, nil
	}

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	templates := make(map[string]string)
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	set := &Set{name: filename, templates: templates}
	sets[filename] = set
	return set, nil
}

// Render fills the named template of an embedded prompt file.
func Render(filename, key string, data map[string]string) (string, error) {
	set, err := Load(filename)
	if err != nil {
		return "", err
	}
	return set.Render(key, data)
}

// Keys lists the template names in the set, sorted.
func (s *Set) Keys() []string {
	keys := make([]string, 0, len(s.templates))
	for key := range s.templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Template returns the raw template text.
func (s *Set) Template(key string) (string, error) {
	tmpl, ok := s.templates[key]
	if !ok {
		return "", fmt.Errorf("prompt %q not found in %s", key, s.name)
	}
	return tmpl, nil
}

// Render substitutes data into the template. Every placeholder must have a value;
// extra values are ignored.
func (s *Set) Render(key string, data map[string]string) (string, error) {
	tmpl, err := s.Template(key)
	if err != nil {
		return "", err
	}

	var missing []string
	for _, name := range Placeholders(tmpl) {
		if _, ok := data[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %s/%s: missing values for %s", s.name, key, strings.Join(missing, ", "))
	}

	return placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		return data[placeholderRe.FindStringSubmatch(m)[1]]
	}), nil
}

// Placeholders lists the distinct {{.Key}} names in template, sorted.
func Placeholders(template string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	sort.Strings(names)
	return names
}
