package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kamiazya/scopes/pkg/adapters/memory"
	"github.com/kamiazya/scopes/pkg/domain"
	"github.com/kamiazya/scopes/pkg/gateway"
	"github.com/kamiazya/scopes/pkg/idempotency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateway(t *testing.T, hooks ...domain.LifecycleHooks) *gateway.Gateway {
	t.Helper()
	backend := memory.NewScopes()
	return gateway.New(idempotency.New(memory.NewResultStore()),
		gateway.WithTools(gateway.ScopeTools(backend, backend)...),
		gateway.WithHooks(hooks...),
	)
}

func post(t *testing.T, handler http.Handler, path, body string, header map[string]string) (*httptest.ResponseRecorder, domain.ToolResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var resp domain.ToolResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestInvokeTool_IdempotentCreate(t *testing.T) {
	handler := NewHandler(newGateway(t))
	body := `{"arguments":{"title":"Launch","customAlias":"launch"},"idempotencyKey":"http-key-0001"}`

	w1, first := post(t, handler, "/v1/tools/scopes.create", body, nil)
	w2, second := post(t, handler, "/v1/tools/scopes.create", body, nil)

	require.Equal(t, http.StatusOK, w1.Code)
	require.Equal(t, http.StatusOK, w2.Code)
	assert.False(t, first.IsError)
	assert.Equal(t, first.Content, second.Content)
}

func TestInvokeTool_HeaderKey(t *testing.T) {
	handler := NewHandler(newGateway(t))
	header := map[string]string{IdempotencyKeyHeader: "header-key-01"}

	_, first := post(t, handler, "/v1/tools/scopes.create", `{"arguments":{"title":"A"}}`, header)
	_, second := post(t, handler, "/v1/tools/scopes.create", `{"arguments":{"title":"A"}}`, header)
	assert.Equal(t, first.Content, second.Content)

	// Without the key, a second create makes a new scope.
	_, third := post(t, handler, "/v1/tools/scopes.create", `{"arguments":{"title":"A"}}`, nil)
	assert.NotEqual(t, first.Content, third.Content)
}

func TestInvokeTool_ErrorEnvelopeIs200(t *testing.T) {
	handler := NewHandler(newGateway(t))

	w, resp := post(t, handler, "/v1/tools/scopes.get", `{"arguments":{"alias":"nope"}}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.IsError)
	assert.Contains(t, resp.Content, `"code":-32001`)

	w, resp = post(t, handler, "/v1/tools/no.such", `{}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, resp.Content, `"code":-32601`)
}

func TestInvokeTool_BadBody(t *testing.T) {
	handler := NewHandler(newGateway(t))

	w, _ := post(t, handler, "/v1/tools/scopes.roots", `{"arguments":`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = post(t, handler, "/v1/tools/scopes.roots", `{"arguments":[1,2]}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvokeTool_EmptyBody(t *testing.T) {
	handler := NewHandler(newGateway(t))

	w, resp := post(t, handler, "/v1/tools/scopes.roots", ``, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, resp.IsError)
}

func TestListToolsAndInfo(t *testing.T) {
	handler := NewHandler(newGateway(t))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/tools", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var tools []gateway.Tool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tools))
	assert.Len(t, tools, 11)
	assert.Equal(t, "aliases.add", tools[0].Name)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/info", nil))
	assert.Contains(t, w.Body.String(), `"app":"scopes-gateway"`)
}

func TestMetricsMount(t *testing.T) {
	handler := NewHandler(newGateway(t), WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("metrics"))
	})))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, "metrics", w.Body.String())

	w = httptest.NewRecorder()
	NewHandler(newGateway(t)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOpenAPI(t *testing.T) {
	gw := newGateway(t)
	doc := OpenAPI(gw.Tools())
	require.NoError(t, doc.Validate(context.Background()))

	create := doc.Paths.Value("/v1/tools/scopes.create")
	require.NotNil(t, create)
	require.NotNil(t, create.Post)
	args := create.Post.RequestBody.Value.Content.Get("application/json").Schema.Value.Properties["arguments"].Value
	assert.Contains(t, args.Required, "title")

	w := httptest.NewRecorder()
	NewHandler(gw).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"/v1/tools/scopes.create"`)
}

func TestStreamManager_Filtering(t *testing.T) {
	sm := NewStreamManager(nil)

	all, cancelAll := sm.Subscribe()
	defer cancelAll()
	gets, cancelGets := sm.Subscribe("scopes.get")
	defer cancelGets()

	sm.Broadcast("scopes.create", "a")
	sm.Broadcast("scopes.get", "b")

	assert.Equal(t, "a", <-all)
	assert.Equal(t, "b", <-all)
	assert.Equal(t, "b", <-gets)
	assert.Empty(t, gets)

	cancelGets()
	cancelGets()
	_, open := <-gets
	assert.False(t, open)
}

func TestSubscribeEvents(t *testing.T) {
	sm := NewStreamManager(nil)
	handler := NewHandler(newGateway(t, sm.Hooks()), WithStreams(sm))
	srv := httptest.NewServer(handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/events?tools=scopes.create", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	post(t, handler, "/v1/tools/scopes.roots", `{}`, nil)
	post(t, handler, "/v1/tools/scopes.create", `{"arguments":{"title":"Watched"}}`, nil)

	for lines.Scan() {
		line := lines.Text()
		if !strings.HasPrefix(line, "data: {") {
			continue
		}
		var event domain.InvocationEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event))
		assert.Equal(t, "scopes.create", event.ToolName)
		assert.Equal(t, domain.OutcomeSuccess, event.Outcome)
		return
	}
	t.Fatal("no event received")
}
