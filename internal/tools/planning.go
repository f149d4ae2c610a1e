package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PlanningTool keeps a Markdown plan file for long multi-step tasks.
type PlanningTool struct {
	// DefaultPath is used when the call omits path.
	DefaultPath string
}

func (t *PlanningTool) Name() string {
	return "planning"
}

func (t *PlanningTool) Description() string {
	return "This planning tool helps you view, create, manage, and break down highly complex tasks into manageable sub-tasks, making intricate problem-solving more efficient.\n" +
		"**Only employ this tool when you encounter a task that is exceptionally difficult and complex**"
}

func (t *PlanningTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"operation": map[string]any{
				"type":        "string",
				"description": "The operation to perform.",
				"enum":        []string{"view", "create", "update", "decompose"},
			},
			"path": map[string]any{
				"type":        "string",
				"description": "The absolute file path for storing the plan.",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "The Markdown-formatted overall plan to achieve the goal. Required for `create`.",
			},
			"diff_content": map[string]any{
				"type":        "string",
				"description": "To update the current plan in the `path`, provide the diff content as SEARCH/REPLACE blocks. Required for `update`.",
			},
			"subtasks": map[string]any{
				"type":        "array",
				"description": "The list of tasks or steps to be performed. Subtasks will be appended to the plan. Required for `decompose`.",
				"items":       map[string]any{"type": "string"},
			},
		},
		"required": []string{"operation"},
	}
}

func (t *PlanningTool) Execute(_ context.Context, input map[string]any) (string, error) {
	path := stringArg(input, "path")
	if path == "" {
		path = t.DefaultPath
	}
	if path == "" {
		return t.fail("`path` is required."), nil
	}

	op := stringArg(input, "operation")
	if op == "create" {
		content, ok := input["content"].(string)
		if !ok {
			return t.fail("`content` is need for the `create`."), nil
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return "", fmt.Errorf("create plan directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return "", fmt.Errorf("write plan: %w", err)
		}
		return "created plan.", nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return t.fail("File not found: " + path), nil
	}
	if err != nil {
		return "", fmt.Errorf("read plan: %w", err)
	}

	switch op {
	case "view":
		return string(data), nil
	case "update":
		diff, ok := input["diff_content"].(string)
		if !ok {
			return t.fail("`diff_content` is need for the `update`."), nil
		}
		updated, _, _ := ApplyDiff(string(data), diff)
		if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
			return t.fail(fmt.Sprintf("Error updating plan: %v", err)), nil
		}
		return "updated plan.", nil
	case "decompose":
		subtasks, ok := stringSliceArg(input, "subtasks")
		if !ok {
			return t.fail("`subtasks` is need for the `decompose`."), nil
		}
		entries := make([]string, len(subtasks))
		for i, s := range subtasks {
			entries[i] = fmt.Sprintf("[ ] Task-%d\n%s", i+1, s)
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return "", fmt.Errorf("open plan: %w", err)
		}
		defer f.Close()
		if _, err := f.WriteString("\n" + strings.Join(entries, "\n")); err != nil {
			return "", fmt.Errorf("append subtasks: %w", err)
		}
		return "subtasks is added to the plan.", nil
	default:
		return fmt.Sprintf("%s: %s is unsupported.", t.Name(), op), nil
	}
}

func (t *PlanningTool) fail(msg string) string {
	return t.Name() + ": " + msg
}
