package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	rmkerr "github.com/rootagent/rmk/internal/errors"
	"github.com/rootagent/rmk/internal/logging"
)

// Dispatcher runs tools by name from a serialized argument payload. Every
// outcome, including unknown tools, bad payloads, tool errors and panics, is
// returned as text so a failing call never aborts the conversation.
type Dispatcher struct {
	registry *Registry
	log      *logging.Logger
}

// NewDispatcher creates a dispatcher over registry.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		log:      logging.Global().WithPrefix("tools"),
	}
}

// WithLogger replaces the dispatcher's logger.
func (d *Dispatcher) WithLogger(log *logging.Logger) *Dispatcher {
	d.log = log
	return d
}

// Registry returns the registry the dispatcher resolves names in.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Execute runs the named tool and returns its text result.
func (d *Dispatcher) Execute(ctx context.Context, name, arguments string) string {
	result, err := d.execute(ctx, name, arguments)
	if err != nil {
		return formatError(err)
	}
	return result
}

// ExecuteDetailed is Execute plus a flag telling whether the text describes a
// failure. Callers use the flag for display only.
func (d *Dispatcher) ExecuteDetailed(ctx context.Context, name, arguments string) (string, bool) {
	result, err := d.execute(ctx, name, arguments)
	if err != nil {
		return formatError(err), true
	}
	return result, false
}

func (d *Dispatcher) execute(ctx context.Context, name, arguments string) (result string, err error) {
	tool, ok := d.registry.Get(name)
	if !ok {
		d.log.Event(logging.EventToolUnavailable, logging.ToolName(name))
		return "", rmkerr.ToolNotFound(name)
	}

	input, err := DecodeArguments(arguments)
	if err != nil {
		d.log.Warn("undecodable tool arguments", logging.ToolName(name), logging.Error(err))
		return "", rmkerr.InvalidArguments(name, err)
	}
	if err := ValidateInput(input, tool.InputSchema()); err != nil {
		return "", rmkerr.InvalidArguments(name, &schemaError{err})
	}

	start := time.Now()
	d.log.Event(logging.EventToolStart, logging.ToolName(name), logging.Preview("args", arguments))
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("tool panicked", logging.ToolName(name), logging.F("panic", r), logging.F("stack", string(debug.Stack())))
			err = rmkerr.ToolExecutionFailed(name, fmt.Errorf("panic: %v", r))
		}
		d.log.Metrics().RecordToolCall(name, time.Since(start), err != nil)
		if err != nil {
			d.log.Event(logging.EventToolError, logging.ToolName(name), logging.Error(err), logging.DurationSince(start))
		} else {
			d.log.Event(logging.EventToolComplete, logging.ToolName(name), logging.DurationSince(start))
		}
	}()

	out, execErr := tool.Execute(ctx, input)
	if execErr != nil {
		return "", rmkerr.ToolExecutionFailed(name, execErr)
	}
	return out, nil
}

// DecodeArguments decodes a serialized JSON object. An empty payload or JSON
// null decodes to an empty map; anything other than an object is an error.
func DecodeArguments(arguments string) (map[string]any, error) {
	if strings.TrimSpace(arguments) == "" {
		return map[string]any{}, nil
	}
	var input map[string]any
	if err := json.Unmarshal([]byte(arguments), &input); err != nil {
		return nil, err
	}
	if input == nil {
		input = map[string]any{}
	}
	return input, nil
}

// schemaError marks an argument object that decoded but failed validation,
// so its reason is shown to the model.
type schemaError struct{ err error }

func (e *schemaError) Error() string { return e.err.Error() }
func (e *schemaError) Unwrap() error { return e.err }

// formatError turns a dispatch failure into the text the model sees.
func formatError(err error) string {
	var re *rmkerr.RmkError
	if !errors.As(err, &re) {
		return "Error: " + err.Error()
	}
	switch re.Code {
	case rmkerr.CodeToolNotFound:
		return re.Message
	case rmkerr.CodeInvalidArguments:
		var se *schemaError
		if errors.As(re.Cause, &se) {
			return strings.TrimSuffix(re.Message, ".") + ": " + se.Error()
		}
		return re.Message
	default:
		if re.Cause != nil {
			return "Error: " + re.Cause.Error()
		}
		return "Error: " + re.Message
	}
}
