package llm

import (
	"context"
	"encoding/json"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	rmkerr "github.com/rootagent/rmk/internal/errors"
	"github.com/rootagent/rmk/internal/logging"
)

// OpenAIClient talks to the OpenAI chat completions API or any compatible
// endpoint reachable through BASE_URL.
type OpenAIClient struct {
	client openai.Client
	opts   Options
	log    *logging.Logger
}

// NewOpenAIClient creates a client. baseURL and apiVersion are optional; the
// latter is sent as the api-version query parameter used by Azure deployments.
// SDK retries are disabled so a failed turn surfaces immediately.
func NewOpenAIClient(apiKey, baseURL, apiVersion string, opts Options) *OpenAIClient {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	if apiVersion != "" {
		reqOpts = append(reqOpts, option.WithQuery("api-version", apiVersion))
	}
	return &OpenAIClient{
		client: openai.NewClient(reqOpts...),
		opts:   opts,
		log:    logging.Global().WithPrefix("openai"),
	}
}

// GetModel returns the configured model
func (c *OpenAIClient) GetModel() string {
	return c.opts.Model
}

// Chat sends the history and returns the assistant reply.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message, tools []ToolDefinition) (*Message, error) {
	params := c.buildParams(messages, tools)

	c.log.Event(logging.EventLLMRequest, logging.Model(c.opts.Model), logging.MessageCount(len(messages)), logging.Count(len(tools)))
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		c.log.Event(logging.EventLLMError, logging.Error(err))
		return nil, rmkerr.GatewayFailed("openai", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, rmkerr.InvalidResponse(c.opts.Model)
	}

	choice := resp.Choices[0].Message
	out := &Message{Role: RoleAssistant, Content: choice.Content}
	for _, tc := range choice.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	if out.Content == "" && !out.HasToolCalls() {
		return nil, rmkerr.InvalidResponse(c.opts.Model)
	}
	c.log.Event(logging.EventLLMResponse, logging.Count(len(out.ToolCalls)))
	return out, nil
}

func (c *OpenAIClient) buildParams(messages []Message, tools []ToolDefinition) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.opts.Model),
		Messages: toOpenAIMessages(messages),
	}
	if c.opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.opts.MaxTokens))
	}
	if c.opts.Temperature > 0 {
		params.Temperature = openai.Float(c.opts.Temperature)
	}
	if c.opts.TopP > 0 {
		params.TopP = openai.Float(c.opts.TopP)
	}
	if len(tools) > 0 {
		params.Tools = toOpenAITools(tools)
	}
	return params
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case RoleUser:
			out = append(out, openai.UserMessage(msg.Content))
		case RoleTool:
			out = append(out, openai.ToolMessage(msg.Content, msg.ToolCallID))
		case RoleAssistant:
			if !msg.HasToolCalls() {
				out = append(out, openai.AssistantMessage(msg.Content))
				continue
			}
			asst := openai.ChatCompletionAssistantMessageParam{}
			if msg.Content != "" {
				asst.Content.OfString = openai.String(msg.Content)
			}
			for _, tc := range msg.ToolCalls {
				asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: tc.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      tc.Name,
							Arguments: tc.Arguments,
						},
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &asst})
		}
	}
	return out
}

func toOpenAITools(tools []ToolDefinition) []openai.ChatCompletionToolUnionParam {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		out = append(out, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        tool.Name,
			Description: openai.String(tool.Description),
			Parameters:  openai.FunctionParameters(tool.Parameters),
		}))
	}
	return out
}

// parseArguments decodes a serialized argument payload, falling back to an
// empty object so providers that need structured input still get valid JSON.
func parseArguments(args string) map[string]any {
	out := map[string]any{}
	if args == "" {
		return out
	}
	if err := json.Unmarshal([]byte(args), &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}
