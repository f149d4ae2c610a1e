package tools

import (
	"context"

	"github.com/rootagent/rmk/internal/logging"
)

// ThinkTool lets the model record reasoning without side effects.
type ThinkTool struct{}

func (t *ThinkTool) Name() string {
	return "think"
}

func (t *ThinkTool) Description() string {
	return "Used for self-think about something."
}

func (t *ThinkTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"thought": map[string]any{
				"type":        "string",
				"description": "Thinking and summary.",
			},
		},
		"required": []string{"thought"},
	}
}

func (t *ThinkTool) Execute(_ context.Context, input map[string]any) (string, error) {
	logging.Global().WithPrefix("think").Debug("thought", logging.Preview("thought", stringArg(input, "thought")))
	return "Thinking completed.", nil
}
