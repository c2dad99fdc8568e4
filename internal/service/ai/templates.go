package ai

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMissingVariables signals a render call that left placeholders unresolved.
var ErrMissingVariables = errors.New("missing template variables")

// Template is a reusable prompt with {variable} placeholders.
type Template struct {
	ID   string
	Text string
}

// TemplateCatalog holds the prompt templates available to the generate endpoint.
type TemplateCatalog struct {
	templates map[string]Template
}

// NewTemplateCatalog returns the catalog preloaded with the built-in templates.
func NewTemplateCatalog() *TemplateCatalog {
	catalog := &TemplateCatalog{templates: make(map[string]Template)}
	catalog.add(Template{
		ID: "default",
		Text: strings.TrimSpace(`
You are a helpful AI assistant specialized in {domain}.
Your response must be formatted as {format}.
Always include these key points: {keyPoints}
User question: {input}`),
	})
	catalog.add(Template{
		ID: "creative",
		Text: strings.TrimSpace(`
Write a {genre} story in {style} style with these elements:
- Characters: {characters}
- Setting: {setting}
- Theme: {theme}`),
	})
	return catalog
}

func (c *TemplateCatalog) add(t Template) {
	c.templates[t.ID] = t
}

// Find looks up a template by identifier.
func (c *TemplateCatalog) Find(id string) (Template, bool) {
	t, ok := c.templates[id]
	return t, ok
}

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z][a-zA-Z0-9]*)\}`)

// Render substitutes variables into the template text. Every placeholder must
// be supplied; an unresolved one is a caller error.
func (t Template) Render(vars map[string]any) (string, error) {
	var missing []string
	rendered := placeholderPattern.ReplaceAllStringFunc(t.Text, func(match string) string {
		key := match[1 : len(match)-1]
		value, ok := vars[key]
		if !ok {
			missing = append(missing, key)
			return match
		}
		return fmt.Sprintf("%v", value)
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("%w: template %q needs %s", ErrMissingVariables, t.ID, strings.Join(missing, ", "))
	}
	return rendered, nil
}
