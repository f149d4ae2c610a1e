package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootagent/rmk/internal/tools"
)

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "Echoes text." }
func (echoTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string"},
		},
		"required": []string{"text"},
	}
}

func (echoTool) Execute(_ context.Context, input map[string]any) (string, error) {
	return input["text"].(string), nil
}

type rpcResponse struct {
	Result struct {
		Tools []struct {
			Name        string         `json:"name"`
			Description string         `json:"description"`
			InputSchema map[string]any `json:"inputSchema"`
		} `json:"tools"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	} `json:"result"`
}

func call(t *testing.T, s *Server, request string) rpcResponse {
	t.Helper()
	reply := s.MCP().HandleMessage(context.Background(), json.RawMessage(request))
	raw, err := json.Marshal(reply)
	require.NoError(t, err)

	var resp rpcResponse
	require.NoError(t, json.Unmarshal(raw, &resp), string(raw))
	return resp
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(tools.NewRegistry(echoTool{}, &tools.ThinkTool{}), "test")
	require.NoError(t, err)
	return s
}

func TestListTools(t *testing.T) {
	s := newTestServer(t)
	resp := call(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)

	require.Len(t, resp.Result.Tools, 2)
	names := map[string]bool{}
	for _, tool := range resp.Result.Tools {
		names[tool.Name] = true
		assert.Equal(t, "object", tool.InputSchema["type"])
	}
	assert.True(t, names["echo"])
	assert.True(t, names["think"])
}

func TestCallTool(t *testing.T) {
	s := newTestServer(t)

	resp := call(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"echo","arguments":{"text":"hi"}}}`)
	require.Len(t, resp.Result.Content, 1)
	assert.Equal(t, "text", resp.Result.Content[0].Type)
	assert.Equal(t, "hi", resp.Result.Content[0].Text)
	assert.False(t, resp.Result.IsError)
}

func TestCallToolInvalidArguments(t *testing.T) {
	s := newTestServer(t)

	resp := call(t, s, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"echo","arguments":{}}}`)
	require.Len(t, resp.Result.Content, 1)
	assert.True(t, resp.Result.IsError)
	assert.Equal(t, "Invalid arguments for tool echo: missing required field: text", resp.Result.Content[0].Text)
}
