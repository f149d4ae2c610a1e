package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	rmkerr "github.com/rootagent/rmk/internal/errors"
	"github.com/rootagent/rmk/internal/logging"
)

// AnthropicClient wraps the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	opts   Options
	log    *logging.Logger
}

// NewAnthropicClient creates a new client. SDK retries are disabled.
func NewAnthropicClient(apiKey, baseURL string, opts Options) *AnthropicClient {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(reqOpts...)
	return &AnthropicClient{
		client: &client,
		opts:   opts,
		log:    logging.Global().WithPrefix("anthropic"),
	}
}

// GetModel returns the configured model
func (c *AnthropicClient) GetModel() string {
	return c.opts.Model
}

// Chat sends the history and returns the assistant reply.
func (c *AnthropicClient) Chat(ctx context.Context, messages []Message, tools []ToolDefinition) (*Message, error) {
	params := c.buildParams(messages, tools)

	c.log.Event(logging.EventLLMRequest, logging.Model(c.opts.Model), logging.MessageCount(len(messages)), logging.Count(len(tools)))
	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		c.log.Event(logging.EventLLMError, logging.Error(err))
		return nil, rmkerr.GatewayFailed("anthropic", err)
	}
	if msg == nil {
		return nil, rmkerr.InvalidResponse(c.opts.Model)
	}

	out := parseAnthropicResponse(msg)
	if out.Content == "" && !out.HasToolCalls() {
		return nil, rmkerr.InvalidResponse(c.opts.Model)
	}
	c.log.Event(logging.EventLLMResponse, logging.F("stop_reason", string(msg.StopReason)), logging.Count(len(out.ToolCalls)))
	return out, nil
}

func (c *AnthropicClient) buildParams(messages []Message, tools []ToolDefinition) anthropic.MessageNewParams {
	system, apiMessages := toAnthropicMessages(messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.opts.Model),
		MaxTokens: int64(c.opts.MaxTokens),
		Messages:  apiMessages,
	}
	if c.opts.Temperature > 0 {
		params.Temperature = anthropic.Float(c.opts.Temperature)
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Type: "text", Text: system}}
	}
	if len(tools) > 0 {
		params.Tools = toAnthropicTools(tools)
	}
	return params
}

// toAnthropicMessages lifts SYSTEM messages into the system prompt and folds
// consecutive TOOL messages into a single user turn of tool_result blocks, the
// shape the Messages API requires after a tool_use turn.
func toAnthropicMessages(messages []Message) (string, []anthropic.MessageParam) {
	var system []string
	var out []anthropic.MessageParam
	var pending []anthropic.ContentBlockParamUnion

	flush := func() {
		if len(pending) > 0 {
			out = append(out, anthropic.NewUserMessage(pending...))
			pending = nil
		}
	}

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			system = append(system, msg.Content)
		case RoleTool:
			pending = append(pending, anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, false))
		case RoleUser:
			flush()
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case RoleAssistant:
			flush()
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, parseArguments(tc.Arguments), tc.Name))
			}
			if len(blocks) == 0 {
				blocks = append(blocks, anthropic.NewTextBlock(""))
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		}
	}
	flush()

	return strings.Join(system, "\n\n"), out
}

func toAnthropicTools(tools []ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		schema := anthropic.ToolInputSchemaParam{}
		if props, ok := tool.Parameters["properties"]; ok {
			schema.Properties = props
		}
		if req, ok := tool.Parameters["required"].([]string); ok && len(req) > 0 {
			schema.Required = req
		}
		param := anthropic.ToolUnionParamOfTool(schema, tool.Name)
		param.OfTool.Description = anthropic.String(tool.Description)
		out = append(out, param)
	}
	return out
}

func parseAnthropicResponse(msg *anthropic.Message) *Message {
	out := &Message{Role: RoleAssistant}
	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			out.Content += b.Text
		case anthropic.ToolUseBlock:
			args := string(b.Input)
			if args == "" || !json.Valid(b.Input) {
				args = "{}"
			}
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:        b.ID,
				Name:      b.Name,
				Arguments: args,
			})
		}
	}
	return out
}
