package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kamiazya/scopes/internal/presentation/tui"
	"github.com/kamiazya/scopes/pkg/canonical"
	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/kamiazya/scopes/pkg/gateway"
)

// CallOptions describes one invocation from the command line.
type CallOptions struct {
	Tool           string
	Arguments      string // Raw JSON object
	IdempotencyKey string
	JSON           bool // Print the raw response object instead of a styled view
}

// Call invokes a tool and prints the response to w.
// A structured error envelope is printed, not returned.
func Call(ctx context.Context, gw *gateway.Gateway, opts CallOptions, w io.Writer, plain bool) (domain.ToolResponse, error) {
	args := domain.Arguments{}
	if raw := strings.TrimSpace(opts.Arguments); raw != "" {
		parsed, err := canonical.Parse(raw)
		if err != nil {
			return domain.ToolResponse{}, fmt.Errorf("error parsing arguments JSON: %w", err)
		}
		args = parsed
	}

	resp, err := gw.Invoke(ctx, domain.ToolRequest{ToolName: opts.Tool, Arguments: args, IdempotencyKey: opts.IdempotencyKey})
	if err != nil {
		return domain.ToolResponse{}, err
	}

	if opts.JSON {
		fmt.Fprintln(w, canonical.Encode(domain.Object{
			"isError": domain.Bool(resp.IsError),
			"content": domain.String(resp.Content),
		}))
		return resp, nil
	}
	tui.PrintResponse(w, resp, plain)
	return resp, nil
}
