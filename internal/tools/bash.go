package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// BashTool executes shell commands.
type BashTool struct {
	Shell       string // defaults to bash
	WorkDir     string // defaults to the process working directory
	OutputLimit int    // bytes kept from stdout; 0 means 50000
}

func (t *BashTool) Name() string {
	return "bash"
}

func (t *BashTool) Description() string {
	return "Execute a command in the terminal and return the output."
}

func (t *BashTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{
				"type":        "string",
				"description": "Command to execute in the bash shell.",
			},
		},
		"required": []string{"command"},
	}
}

// Execute runs the command. A non-zero exit is reported as text, not as an
// error, so the model sees the shell's stderr.
func (t *BashTool) Execute(ctx context.Context, input map[string]any) (string, error) {
	command := strings.TrimSpace(stringArg(input, "command"))
	if command == "" {
		return "No command provided.", nil
	}

	shell := t.Shell
	if shell == "" {
		shell = "bash"
	}
	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Dir = t.WorkDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("command interrupted: %w", ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "Error executing command: " + msg, nil
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "Command executed successfully with no output.", nil
	}

	limit := t.OutputLimit
	if limit <= 0 {
		limit = 50000
	}
	return truncateOutput(out, limit), nil
}
