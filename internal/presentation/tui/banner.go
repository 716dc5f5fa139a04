package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the scopes banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text, color string
	}{
		{"  ___  ___ ___  _ __   ___  ___", "#818cf8"},
		{" / __|/ __/ _ \\| '_ \\ / _ \\/ __|", "#a78bfa"},
		{" \\__ \\ (_| (_) | |_) |  __/\\__ \\", "#c084fc"},
		{" |___/\\___\\___/| .__/ \\___||___/", "#e879f9"},
		{"               |_|  gateway " + strings.TrimSpace(version), "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
