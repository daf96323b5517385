package llm

import "strings"

var fenceReplacer = strings.NewReplacer("```html", "", "```HTML", "", "```", "")

// CleanHTML removes markdown code fences a model wraps around HTML and trims
// surrounding whitespace.
func CleanHTML(content string) string {
	return strings.TrimSpace(fenceReplacer.Replace(content))
}
