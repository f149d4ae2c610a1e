package agent

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// HeadlessOutput implements AgentOutput for pipe/headless mode. Progress is
// suppressed and warnings go to stderr; only the final answer, printed by
// the caller, reaches stdout.
type HeadlessOutput struct {
	Err io.Writer // defaults to os.Stderr
}

func (h *HeadlessOutput) User(string)                     {}
func (h *HeadlessOutput) Assistant(string)                {}
func (h *HeadlessOutput) ToolCall(string, string)         {}
func (h *HeadlessOutput) ToolResult(string, string, bool) {}

func (h *HeadlessOutput) Warning(msg string) {
	w := h.Err
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintln(w, "Warning:", msg)
}

// JSONOutput captures the run and emits a single JSON object at the end.
type JSONOutput struct {
	notes     []string
	toolCalls []jsonToolCall
	warnings  []string
}

type jsonToolCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
	Result    string `json:"result,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
}

type jsonResult struct {
	SessionID string         `json:"session_id,omitempty"`
	Text      string         `json:"text"`
	Notes     []string       `json:"notes,omitempty"`
	ToolCalls []jsonToolCall `json:"tool_calls,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
	Error     string         `json:"error,omitempty"`
}

var _ AgentOutput = (*JSONOutput)(nil)

func (j *JSONOutput) User(string)           {}
func (j *JSONOutput) Assistant(text string) { j.notes = append(j.notes, text) }
func (j *JSONOutput) Warning(msg string)    { j.warnings = append(j.warnings, msg) }

func (j *JSONOutput) ToolCall(name, arguments string) {
	j.toolCalls = append(j.toolCalls, jsonToolCall{Name: name, Arguments: arguments})
}

// ToolResult attaches a result to the most recent call with that name.
func (j *JSONOutput) ToolResult(name, result string, isError bool) {
	for i := len(j.toolCalls) - 1; i >= 0; i-- {
		if j.toolCalls[i].Name == name && j.toolCalls[i].Result == "" {
			j.toolCalls[i].Result = result
			j.toolCalls[i].IsError = isError
			return
		}
	}
	j.toolCalls = append(j.toolCalls, jsonToolCall{Name: name, Result: result, IsError: isError})
}

// Flush writes the collected run as one indented JSON object.
func (j *JSONOutput) Flush(w io.Writer, sessionID, text string, runErr error) error {
	res := jsonResult{
		SessionID: sessionID,
		Text:      text,
		Notes:     j.notes,
		ToolCalls: j.toolCalls,
		Warnings:  j.warnings,
	}
	if runErr != nil {
		res.Error = runErr.Error()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}
