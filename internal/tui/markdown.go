package tui

import (
	"strings"

	"charm.land/glamour/v2"
)

// maxMarkdownWidth caps prose width on wide kiosk screens.
const maxMarkdownWidth = 80

// renderMarkdown renders markdown text with glamour.
// Falls back to the raw text if rendering fails.
func renderMarkdown(content string, width int) string {
	if width > maxMarkdownWidth {
		width = maxMarkdownWidth
	}
	if width < 10 {
		width = 10
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	return strings.Trim(rendered, "\n")
}
