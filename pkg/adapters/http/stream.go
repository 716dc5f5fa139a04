package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/kamiazya/scopes/internal/logging"
	"github.com/kamiazya/scopes/pkg/domain"
)

// allTools is the subscription topic that receives every event.
const allTools = ""

// StreamManager fans completed invocation events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // tool name -> set of channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Hooks returns gateway hooks that broadcast every completed invocation.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnComplete: func(_ context.Context, e *domain.InvocationEvent) {
			bytes, err := json.Marshal(e)
			if err != nil {
				sm.logger.Warn("StreamManager: event encode failed", "err", err)
				return
			}
			sm.Broadcast(e.ToolName, string(bytes))
		},
	}
}

// Subscribe registers a channel for events of the given tools, or of every tool when none is given.
func (sm *StreamManager) Subscribe(tools ...string) (chan string, func()) {
	if len(tools) == 0 {
		tools = []string{allTools}
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	for _, tool := range tools {
		if _, ok := sm.subscribers[tool]; !ok {
			sm.subscribers[tool] = make(map[chan<- string]struct{})
		}
		sm.subscribers[tool][ch] = struct{}{}
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			for _, tool := range tools {
				if subs, ok := sm.subscribers[tool]; ok {
					delete(subs, ch)
					if len(subs) == 0 {
						delete(sm.subscribers, tool)
					}
				}
			}
			close(ch)
		})
	}
}

// Broadcast sends msg to subscribers of tool and to global subscribers.
// A message is dropped for a subscriber whose buffer is full.
func (sm *StreamManager) Broadcast(tool string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sent := make(map[chan<- string]struct{})
	for _, topic := range []string{tool, allTools} {
		for ch := range sm.subscribers[topic] {
			if _, dup := sent[ch]; dup {
				continue
			}
			sent[ch] = struct{}{}
			select {
			case ch <- msg:
			default:
				sm.logger.Warn("SSE: Client buffer full, dropping message", "tool", tool)
			}
		}
	}
}

// SubscribeEvents handles the GET /v1/events request (SSE).
// The optional tools query parameter is a comma separated filter.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	var tools []string
	if raw := r.URL.Query().Get("tools"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tools = append(tools, t)
			}
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(tools...)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE Client Disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
