// Package memory holds the conversation history of one agent and the policy
// that keeps it bounded.
package memory

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rootagent/rmk/internal/llm"
	"github.com/rootagent/rmk/internal/logging"
)

// DefaultMaxMessages bounds the history when no maximum is given.
const DefaultMaxMessages = 100

// Memory is an ordered, bounded conversation history. It is owned by a single
// agent and is not safe for concurrent use.
type Memory struct {
	messages    []llm.Message
	maxMessages int
	log         *logging.Logger
}

// New creates an empty memory. maxMessages <= 0 selects DefaultMaxMessages.
func New(maxMessages int) *Memory {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return &Memory{
		maxMessages: maxMessages,
		log:         logging.Global().WithPrefix("memory"),
	}
}

// WithLogger replaces the memory's logger.
func (m *Memory) WithLogger(log *logging.Logger) *Memory {
	m.log = log
	return m
}

// MaxMessages returns the configured bound.
func (m *Memory) MaxMessages() int {
	return m.maxMessages
}

// Add appends messages in order. It does not truncate.
func (m *Memory) Add(msgs ...llm.Message) {
	for _, msg := range msgs {
		m.messages = append(m.messages, msg.Clone())
	}
}

// View returns a copy of the history in order.
func (m *Memory) View() []llm.Message {
	out := make([]llm.Message, len(m.messages))
	for i, msg := range m.messages {
		out[i] = msg.Clone()
	}
	return out
}

// PersistedView returns the history as plain records with unset optional
// fields omitted.
func (m *Memory) PersistedView() []map[string]any {
	out := make([]map[string]any, 0, len(m.messages))
	for _, msg := range m.messages {
		out = append(out, Record(msg))
	}
	return out
}

// Record converts one message to its persisted shape.
func Record(msg llm.Message) map[string]any {
	rec := map[string]any{"role": string(msg.Role)}
	if msg.ID != "" {
		rec["id"] = msg.ID
	}
	if msg.Content != "" {
		rec["content"] = msg.Content
	}
	if len(msg.ToolCalls) > 0 {
		calls := make([]map[string]any, len(msg.ToolCalls))
		for i, c := range msg.ToolCalls {
			calls[i] = map[string]any{"id": c.ID, "name": c.Name, "arguments": c.Arguments}
		}
		rec["tool_calls"] = calls
	}
	if msg.ToolCallID != "" {
		rec["tool_call_id"] = msg.ToolCallID
	}
	return rec
}

// Len returns the number of messages held.
func (m *Memory) Len() int {
	return len(m.messages)
}

// Last returns the newest message, or false when empty.
func (m *Memory) Last() (llm.Message, bool) {
	if len(m.messages) == 0 {
		return llm.Message{}, false
	}
	return m.messages[len(m.messages)-1].Clone(), true
}

// Clear drops every message.
func (m *Memory) Clear() {
	m.messages = nil
}

// Truncate evicts the oldest messages until Len() <= MaxMessages and returns
// how many were dropped. A leading SYSTEM message is always kept and counts
// toward the bound. The retained window never starts with a TOOL message,
// since its ASSISTANT call would be gone, so the result can be shorter than
// the bound. The newest tool batch is never split: when skipping orphaned
// results would empty the window, the ASSISTANT call that owns the trailing
// batch is kept with all of its results, preceded by the newest USER
// message, even if that exceeds the bound.
func (m *Memory) Truncate() int {
	n := len(m.messages)
	if n <= m.maxMessages {
		return 0
	}

	var head []llm.Message
	body := m.messages
	budget := m.maxMessages
	if body[0].Role == llm.RoleSystem {
		head = body[:1]
		body = body[1:]
		budget--
	}

	cut := len(body) - budget
	var prompt []llm.Message
	if cut < len(body) {
		for cut < len(body) && body[cut].Role == llm.RoleTool {
			cut++
		}
		if cut == len(body) {
			cut = trailingBatch(body)
			if u := lastUser(body[:cut]); u >= 0 {
				prompt = body[u : u+1]
				if u == cut-1 {
					cut, prompt = u, nil
				}
			}
		}
	}

	kept := make([]llm.Message, 0, len(head)+len(prompt)+len(body)-cut)
	kept = append(kept, head...)
	kept = append(kept, prompt...)
	kept = append(kept, body[cut:]...)
	m.messages = kept

	dropped := n - len(kept)
	if dropped == 0 {
		m.log.Warn("open tool batch exceeds memory bound",
			logging.MessageCount(n), logging.F("max_messages", m.maxMessages))
		return 0
	}
	m.log.Event(logging.EventMemoryTruncate, logging.F("before", n), logging.F("after", len(kept)), logging.Count(dropped))
	m.log.Metrics().RecordTruncation()
	return dropped
}

// trailingBatch returns the index of the ASSISTANT message that owns the TOOL
// messages ending body.
func trailingBatch(body []llm.Message) int {
	i := len(body)
	for i > 0 && body[i-1].Role == llm.RoleTool {
		i--
	}
	if i > 0 && body[i-1].Role == llm.RoleAssistant {
		i--
	}
	return i
}

func lastUser(msgs []llm.Message) int {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == llm.RoleUser {
			return i
		}
	}
	return -1
}

// Save writes the history as JSON Lines, one message per line.
func (m *Memory) Save(w io.Writer) error {
	return WriteJSONL(w, m.messages)
}

// Load replaces the history with messages read from JSON Lines.
func (m *Memory) Load(r io.Reader) error {
	msgs, err := ReadJSONL(r)
	if err != nil {
		return err
	}
	m.messages = msgs
	return nil
}

// WriteJSONL encodes msgs one object per line.
func WriteJSONL(w io.Writer, msgs []llm.Message) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for i, msg := range msgs {
		if err := enc.Encode(msg); err != nil {
			return fmt.Errorf("encode message %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// ReadJSONL decodes JSON Lines into messages. Blank lines are skipped; an
// unknown role is an error.
func ReadJSONL(r io.Reader) ([]llm.Message, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var msgs []llm.Message
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		var msg llm.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if !msg.Role.Valid() {
			return nil, fmt.Errorf("line %d: unknown role %q", line, msg.Role)
		}
		msgs = append(msgs, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	return msgs, nil
}
