package tools

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// CodeInterpreterTool evaluates Go snippets with the yaegi interpreter. Each
// call gets a fresh interpreter so no state leaks between calls.
type CodeInterpreterTool struct{}

func (t *CodeInterpreterTool) Name() string {
	return "code_interpreter"
}

func (t *CodeInterpreterTool) Description() string {
	return "Executes a Go code snippet and returns the printed output and the value of the last expression. " +
		"Statements may be given directly; a full `package main` program runs its main function."
}

func (t *CodeInterpreterTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"code": map[string]any{
				"type":        "string",
				"description": "The Go code to execute.",
			},
		},
		"required": []string{"code"},
	}
}

func (t *CodeInterpreterTool) Execute(ctx context.Context, input map[string]any) (string, error) {
	code := stringArg(input, "code")
	if strings.TrimSpace(code) == "" {
		return "No code provided.", nil
	}

	var out bytes.Buffer
	i := interp.New(interp.Options{Stdout: &out, Stderr: &out})
	if err := i.Use(stdlib.Symbols); err != nil {
		return "", fmt.Errorf("load stdlib symbols: %w", err)
	}

	v, err := i.EvalWithContext(ctx, code)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("code execution interrupted: %w", ctx.Err())
		}
		return "Error executing code: " + err.Error(), nil
	}

	result := strings.TrimRight(out.String(), "\n")
	if s, ok := describeValue(v); ok {
		if result != "" {
			result += "\n"
		}
		result += s
	}
	if result == "" {
		return "Code executed successfully with no output.", nil
	}
	return result, nil
}

func describeValue(v reflect.Value) (string, bool) {
	if !v.IsValid() || !v.CanInterface() {
		return "", false
	}
	switch v.Kind() {
	case reflect.Func:
		return "", false
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan:
		if v.IsNil() {
			return "", false
		}
	}
	return fmt.Sprint(v.Interface()), true
}
