// Package goldmark renders generated answers to ANSI-styled terminal output.
// Markdown is parsed with goldmark and styled with lipgloss. Citation markers
// such as [2] are highlighted so they can be matched to the listed sources.
package goldmark

import "github.com/fwojciec/streamquery"

// DefaultWidth is used when Render is called with a non-positive width.
const DefaultWidth = 80

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs, headings, quotes and list items are word-wrapped to width.
// Code blocks keep their lines as written.
func Render(source string, width int, theme streamquery.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = DefaultWidth
	}
	return newRenderer(theme, width).render([]byte(source))
}
