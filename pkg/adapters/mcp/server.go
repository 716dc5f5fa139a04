package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kamiazya/scopes"
	"github.com/kamiazya/scopes/internal/logging"
	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/kamiazya/scopes/pkg/errmap"
	"github.com/kamiazya/scopes/pkg/gateway"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// IdempotencyKeyParam is the extra argument every tool accepts.
// It is removed from the arguments before they are canonicalized.
const IdempotencyKeyParam = "idempotencyKey"

// ToolsResourceURI exposes the tool catalog as a resource.
const ToolsResourceURI = "scopes://tools"

// Server exposes the gateway as an MCP Server.
type Server struct {
	gateway   *gateway.Gateway
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance with every gateway tool registered.
func NewServer(gw *gateway.Gateway, opts ...Option) *Server {
	s := &Server{
		gateway: gw,
		logger:  logging.NewNop(),
		mcpServer: server.NewMCPServer("scopes-mcp", strings.TrimSpace(scopes.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	for _, tool := range s.gateway.Tools() {
		s.mcpServer.AddTool(toolDefinition(tool), s.toolHandler(tool.Name))
	}
}

func toolDefinition(tool gateway.Tool) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(tool.Description),
		mcp.WithReadOnlyHintAnnotation(tool.Kind == gateway.KindQuery),
		mcp.WithIdempotentHintAnnotation(tool.Kind == gateway.KindQuery),
		mcp.WithDestructiveHintAnnotation(tool.Name == "scopes.delete" || tool.Name == "aliases.remove"),
	}

	for _, p := range tool.Params {
		propOpts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			propOpts = append(propOpts, mcp.Required())
		}
		switch p.Type {
		case gateway.TypeBoolean:
			if def, ok := p.Default.(bool); ok {
				propOpts = append(propOpts, mcp.DefaultBool(def))
			}
			opts = append(opts, mcp.WithBoolean(p.Name, propOpts...))
		case gateway.TypeInteger:
			if def, ok := p.Default.(int); ok {
				propOpts = append(propOpts, mcp.DefaultNumber(float64(def)))
			}
			opts = append(opts, mcp.WithNumber(p.Name, propOpts...))
		default:
			opts = append(opts, mcp.WithString(p.Name, propOpts...))
		}
	}

	opts = append(opts, mcp.WithString(IdempotencyKeyParam,
		mcp.Description("Optional key (8-128 of A-Z a-z 0-9 _ -). Retries with the same key and arguments return the first result."),
	))
	return mcp.NewTool(tool.Name, opts...)
}

func (s *Server) toolHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw := request.GetArguments()

		key := ""
		rest := make(map[string]any, len(raw))
		for k, v := range raw {
			if k == IdempotencyKeyParam {
				switch kv := v.(type) {
				case nil:
				case string:
					key = kv
				default:
					return contractResult(domain.WrongParameterType{
						Name: IdempotencyKeyParam, Expected: "string", Actual: jsonType(v),
					}), nil
				}
				continue
			}
			rest[k] = v
		}

		args, err := domain.ArgumentsFromMap(rest)
		if err != nil {
			return contractResult(domain.ValidationFailure{
				Field: "arguments", Value: "", Constraint: err.Error(),
			}), nil
		}

		resp, err := s.gateway.Invoke(ctx, domain.ToolRequest{ToolName: name, Arguments: args, IdempotencyKey: key})
		if err != nil {
			return nil, err
		}
		if resp.IsError {
			return mcp.NewToolResultError(resp.Content), nil
		}
		return mcp.NewToolResultText(resp.Content), nil
	}
}

func contractResult(err domain.ContractError) *mcp.CallToolResult {
	resp := gateway.Respond(errmap.MapContractError(err))
	return mcp.NewToolResultError(resp.Content)
}

func jsonType(v any) string {
	if val, err := domain.ValueFromAny(v); err == nil {
		return domain.TypeName(val)
	}
	return fmt.Sprintf("%T", v)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ToolsResourceURI, "Tool Catalog",
		mcp.WithResourceDescription("Tools exposed by the scopes gateway"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.gateway.Tools())
		if err != nil {
			return nil, fmt.Errorf("failed to encode tools: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ToolsResourceURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
