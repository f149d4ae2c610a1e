package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/ollama/ollama/api"
	rmkerr "github.com/rootagent/rmk/internal/errors"
	"github.com/rootagent/rmk/internal/logging"
)

// ErrOllamaUnavailable is returned by CheckHealth when the server does not answer.
var ErrOllamaUnavailable = errors.New("ollama unavailable - run 'ollama serve'")

// OllamaClient talks to a local Ollama server through its Go API package.
type OllamaClient struct {
	client *api.Client
	opts   Options
	log    *logging.Logger
	newID  func() string
}

// NewOllamaClient creates a client for the server at baseURL.
func NewOllamaClient(baseURL string, opts Options) (*OllamaClient, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url %q: %w", baseURL, err)
	}
	return &OllamaClient{
		client: api.NewClient(parsed, http.DefaultClient),
		opts:   opts,
		log:    logging.Global().WithPrefix("ollama"),
		newID:  func() string { return "call_" + uuid.NewString() },
	}, nil
}

// GetModel returns the configured model
func (c *OllamaClient) GetModel() string {
	return c.opts.Model
}

// CheckHealth pings the server.
func (c *OllamaClient) CheckHealth(ctx context.Context) error {
	if err := c.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrOllamaUnavailable, err)
	}
	return nil
}

// Chat sends the history and returns the assistant reply. Ollama does not
// assign tool call ids, so one is generated per call.
func (c *OllamaClient) Chat(ctx context.Context, messages []Message, tools []ToolDefinition) (*Message, error) {
	apiTools, err := toOllamaTools(tools)
	if err != nil {
		return nil, rmkerr.GatewayFailed("ollama", err)
	}

	stream := false
	req := &api.ChatRequest{
		Model:    c.opts.Model,
		Messages: toOllamaMessages(messages),
		Tools:    apiTools,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": c.opts.Temperature,
			"top_p":       c.opts.TopP,
			"num_predict": c.opts.MaxTokens,
		},
	}

	c.log.Event(logging.EventLLMRequest, logging.Model(c.opts.Model), logging.MessageCount(len(messages)), logging.Count(len(tools)))

	var content string
	var calls []api.ToolCall
	respFunc := func(resp api.ChatResponse) error {
		content += resp.Message.Content
		calls = append(calls, resp.Message.ToolCalls...)
		return nil
	}
	if err := c.client.Chat(ctx, req, respFunc); err != nil {
		c.log.Event(logging.EventLLMError, logging.Error(err))
		return nil, rmkerr.GatewayFailed("ollama", err)
	}

	out := &Message{Role: RoleAssistant, Content: content}
	for _, tc := range calls {
		args, err := json.Marshal(tc.Function.Arguments)
		if err != nil {
			args = []byte("{}")
		}
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        c.newID(),
			Name:      tc.Function.Name,
			Arguments: string(args),
		})
	}
	if out.Content == "" && !out.HasToolCalls() {
		return nil, rmkerr.InvalidResponse(c.opts.Model)
	}
	c.log.Event(logging.EventLLMResponse, logging.Count(len(out.ToolCalls)))
	return out, nil
}

func toOllamaMessages(messages []Message) []api.Message {
	out := make([]api.Message, 0, len(messages))
	for _, msg := range messages {
		m := api.Message{Role: string(msg.Role), Content: msg.Content}
		for _, tc := range msg.ToolCalls {
			var call api.ToolCall
			call.Function.Name = tc.Name
			_ = json.Unmarshal([]byte(tc.Arguments), &call.Function.Arguments)
			m.ToolCalls = append(m.ToolCalls, call)
		}
		out = append(out, m)
	}
	return out
}

// toOllamaTools converts definitions through their JSON form, which is the
// same function-tool shape Ollama's api.Tool decodes.
func toOllamaTools(tools []ToolDefinition) ([]api.Tool, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	out := make([]api.Tool, 0, len(tools))
	for _, tool := range tools {
		raw, err := json.Marshal(map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        tool.Name,
				"description": tool.Description,
				"parameters":  tool.Parameters,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("encode tool %s: %w", tool.Name, err)
		}
		var t api.Tool
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("decode tool %s: %w", tool.Name, err)
		}
		out = append(out, t)
	}
	return out, nil
}
