// Package markdown renders task contents for the terminal.
package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/reflow/wordwrap"
)

var (
	rendererMu sync.Mutex
	renderers  = map[int]*glamour.TermRenderer{}
)

// Render formats markdown contents to fit width columns. Contents that fail to
// render are word-wrapped as plain text. Blank contents render as "".
func Render(width int, contents string) string {
	value := strings.TrimRight(strings.ReplaceAll(contents, "\r\n", "\n"), "\n")
	if strings.TrimSpace(value) == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	rendered := ""
	if r := renderer(width); r != nil {
		if out, err := r.Render(value); err == nil {
			rendered = out
		}
	}
	if strings.TrimSpace(rendered) == "" {
		rendered = wordwrap.String(value, width)
	}
	return strings.Trim(rendered, "\n")
}

func renderer(width int) *glamour.TermRenderer {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	if cached, ok := renderers[width]; ok {
		return cached
	}
	style := styles.ASCIIStyleConfig
	style.Item.BlockPrefix = "- "
	// The document margin would double the detail pane padding.
	var margin uint
	style.Document.Margin = &margin
	created, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderers[width] = created
	return created
}
