package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/muesli/termenv"
)

// PrintResponse writes a status line and the indented content of resp.
// Colors follow the capabilities of w unless plain is set.
func PrintResponse(w io.Writer, resp domain.ToolResponse, plain bool) {
	opts := []termenv.OutputOption{}
	if plain {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	out := termenv.NewOutput(w, opts...)

	status := out.String("ok").Foreground(out.Color("#22c55e")).Bold()
	if resp.IsError {
		var body struct {
			Code int `json:"code"`
		}
		label := "error"
		if json.Unmarshal([]byte(resp.Content), &body) == nil && body.Code != 0 {
			label = fmt.Sprintf("error %d", body.Code)
		}
		status = out.String(label).Foreground(out.Color("#ef4444")).Bold()
	}
	fmt.Fprintln(w, status)

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, []byte(resp.Content), "", "  "); err == nil {
		fmt.Fprintln(w, pretty.String())
		return
	}
	fmt.Fprintln(w, resp.Content)
}
