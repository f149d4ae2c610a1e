package logging

import (
	"time"

	"go.uber.org/zap"
)

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// F creates a new Field with the given key and value.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// SessionID creates a session ID field.
func SessionID(id string) Field {
	return F("session_id", id)
}

// ToolName creates a tool name field.
func ToolName(name string) Field {
	return F("tool", name)
}

// ToolCallID creates a tool call ID field.
func ToolCallID(id string) Field {
	return F("tool_call_id", id)
}

// Duration creates a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return F("duration_ms", d.Milliseconds())
}

// DurationSince creates a duration field from a start time.
func DurationSince(start time.Time) Field {
	return Duration(time.Since(start))
}

// Model creates a model name field.
func Model(name string) Field {
	return F("model", name)
}

// Provider creates a provider name field.
func Provider(name string) Field {
	return F("provider", name)
}

// Mode creates a mode field.
func Mode(mode string) Field {
	return F("mode", mode)
}

// Path creates a file path field.
func Path(p string) Field {
	return F("path", p)
}

// Error creates an error field.
func Error(err error) Field {
	if err == nil {
		return F("error", nil)
	}
	return F("error", err.Error())
}

// Count creates a count field.
func Count(n int) Field {
	return F("count", n)
}

// From creates a "from" field for state transitions.
func From(value string) Field {
	return F("from", value)
}

// To creates a "to" field for state transitions.
func To(value string) Field {
	return F("to", value)
}

// MessageCount creates a message count field.
func MessageCount(n int) Field {
	return F("msg_count", n)
}

// Turn creates a turn number field.
func Turn(n int) Field {
	return F("turn", n)
}

// Preview creates a field holding at most 200 bytes of s.
func Preview(key, s string) Field {
	if len(s) > 200 {
		s = s[:197] + "..."
	}
	return F(key, s)
}

func toZap(fields []Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
