package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/kamiazya/scopes/pkg/gateway"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// CatalogMarkdown describes the tool catalog as markdown.
func CatalogMarkdown(tools []gateway.Tool) string {
	var b strings.Builder
	b.WriteString("# Tools\n\n")
	b.WriteString("Every tool also accepts an optional `idempotencyKey`.\n")

	for _, tool := range tools {
		fmt.Fprintf(&b, "\n## %s\n\n_%s_. %s\n", tool.Name, tool.Kind, tool.Description)
		if len(tool.Params) == 0 {
			continue
		}
		b.WriteString("\n| Argument | Type | Required | Default | Description |\n|---|---|---|---|---|\n")
		for _, p := range tool.Params {
			def := ""
			if p.Default != nil {
				def = fmt.Sprintf("`%v`", p.Default)
			}
			req := ""
			if p.Required {
				req = "yes"
			}
			fmt.Fprintf(&b, "| `%s` | %s | %s | %s | %s |\n", p.Name, p.Type, req, def, p.Description)
		}
	}
	return b.String()
}

// RenderCatalog writes the catalog, styled with glamour when styled is true.
func RenderCatalog(w io.Writer, tools []gateway.Tool, styled bool) error {
	md := CatalogMarkdown(tools)
	if styled {
		out, err := NewRenderer()(md)
		if err == nil {
			md = out
		}
	}
	_, err := io.WriteString(w, md)
	return err
}
