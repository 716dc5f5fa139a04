package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kamiazya/scopes"
	"github.com/kamiazya/scopes/internal/logging"
	"github.com/kamiazya/scopes/pkg/canonical"
	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/kamiazya/scopes/pkg/gateway"
)

// IdempotencyKeyHeader carries the key when the body does not.
const IdempotencyKeyHeader = "Idempotency-Key"

// MaxBodyBytes bounds the size of an invocation body.
const MaxBodyBytes = 1 << 20

// Server exposes the gateway over HTTP.
type Server struct {
	Gateway *gateway.Gateway
	Streams *StreamManager

	logger  *slog.Logger
	metrics http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStreams serves invocation events from sm on /v1/events.
// The gateway must be built with sm.Hooks() for events to flow.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// InvokeRequest is the body of POST /v1/tools/{name}.
type InvokeRequest struct {
	Arguments      json.RawMessage `json:"arguments,omitempty"`
	IdempotencyKey string          `json:"idempotencyKey,omitempty"`
}

// NewHandler creates a new HTTP handler for the gateway.
func NewHandler(gw *gateway.Gateway, opts ...Option) http.Handler {
	s := &Server{
		Gateway: gw,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(enableCORS)

	r.Get("/openapi.json", s.GetOpenAPI)
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/tools", s.ListTools)
		r.Post("/tools/{name}", s.InvokeTool)
		if s.Streams != nil {
			r.Get("/events", s.SubscribeEvents)
		}
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+IdempotencyKeyHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Scopes Gateway API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.json',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// ListTools handles the GET /v1/tools request.
func (s *Server) ListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, s.Gateway.Tools())
}

// InvokeTool handles the POST /v1/tools/{name} request.
// Envelopes, including error envelopes, are answered with 200.
func (s *Server) InvokeTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var body InvokeRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("InvokeTool: Invalid request body", "tool", name, "err", err)
		return
	}

	args := domain.Arguments{}
	if len(body.Arguments) > 0 && string(body.Arguments) != "null" {
		parsed, err := canonical.Parse(string(body.Arguments))
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid arguments: %v", err), http.StatusBadRequest)
			s.logger.Warn("InvokeTool: Invalid arguments", "tool", name, "err", err)
			return
		}
		args = parsed
	}

	key := body.IdempotencyKey
	if key == "" {
		key = strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	}

	resp, err := s.Gateway.Invoke(r.Context(), domain.ToolRequest{ToolName: name, Arguments: args, IdempotencyKey: key})
	if err != nil {
		http.Error(w, fmt.Sprintf("Invocation failed: %v", err), http.StatusInternalServerError)
		s.logger.Error("InvokeTool failed", "tool", name, "err", err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, resp)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]any{
		"app":     "scopes-gateway",
		"version": strings.TrimSpace(scopes.Version),
		"tools":   len(s.Gateway.Tools()),
	})
}

// GetOpenAPI handles the GET /openapi.json request.
func (s *Server) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	doc := OpenAPI(s.Gateway.Tools())
	writeJSON(w, s.logger, http.StatusOK, doc)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "err", err)
	}
}
