package tools

import (
	"context"
	"fmt"
	"strings"
)

// LineReader reads one line of human input after showing prompt.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// AskHumanTool blocks on the console for a human answer.
type AskHumanTool struct {
	Input LineReader
}

func (t *AskHumanTool) Name() string {
	return "ask_human"
}

func (t *AskHumanTool) Description() string {
	return "Ask human for help and get a response from human."
}

func (t *AskHumanTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The question to ask the human.",
			},
		},
		"required": []string{"question"},
	}
}

func (t *AskHumanTool) Execute(_ context.Context, input map[string]any) (string, error) {
	if t.Input == nil {
		return "", fmt.Errorf("no human input is attached")
	}
	answer, err := t.Input.ReadLine(fmt.Sprintf("rMonkey: %s\nYou: ", stringArg(input, "question")))
	if err != nil {
		return "", fmt.Errorf("read answer: %w", err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "No response provided by human.", nil
	}
	return answer, nil
}
