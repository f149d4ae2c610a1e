package session

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootagent/rmk/internal/config"
	rmkerr "github.com/rootagent/rmk/internal/errors"
	"github.com/rootagent/rmk/internal/llm"
)

func trajectory() []llm.Message {
	return []llm.Message{
		llm.SystemMessage("You are a powerful AI agent."),
		llm.UserMessage("Say hi\nfrom bash"),
		llm.AssistantMessage("", llm.ToolCall{ID: "call_1", Name: "bash", Arguments: `{"command":"echo hi"}`}),
		llm.ToolMessage("call_1", "hi"),
		llm.AssistantMessage("hi"),
	}
}

func TestNewID(t *testing.T) {
	at := time.Date(2025, 1, 2, 15, 4, 5, 0, time.Local)
	id := newIDAt(at)

	assert.Regexp(t, regexp.MustCompile(`^20250102150405-[0-9a-f]{32}$`), id)
	assert.NotEqual(t, id, newIDAt(at), "ids from the same second must differ")

	created, ok := IDTime(id)
	require.True(t, ok)
	assert.True(t, created.Equal(at))

	_, ok = IDTime("nope")
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	info := Summarize("20250102150405-abc", trajectory())
	assert.Equal(t, 5, info.MsgCount)
	assert.Equal(t, "Say hi from bash", info.Preview)
	assert.Equal(t, 2025, info.CreatedAt.Year())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"this is a longer string", 10, "this is..."},
		{"line1\nline2", 20, "line1 line2"},
		{"  spaced  ", 20, "spaced"},
	}

	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.expected)
		}
	}
}

func TestFormatRelativeTime(t *testing.T) {
	assert.Equal(t, "just now", FormatRelativeTime(time.Now()))
	assert.Equal(t, "5m ago", FormatRelativeTime(time.Now().Add(-5*time.Minute-time.Second)))
	assert.Equal(t, "2h ago", FormatRelativeTime(time.Now().Add(-2*time.Hour-time.Second)))
	assert.Equal(t, "3d ago", FormatRelativeTime(time.Now().Add(-3*24*time.Hour-time.Second)))
}

func sinks(t *testing.T) map[string]Sink {
	t.Helper()
	sqlite, err := NewSQLiteSink(filepath.Join(t.TempDir(), "db", "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Sink{
		"jsonl":  NewJSONLSink(filepath.Join(t.TempDir(), "traj")),
		"sqlite": sqlite,
	}
}

func TestSinkRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, sink := range sinks(t) {
		t.Run(name, func(t *testing.T) {
			id := NewID()
			want := trajectory()
			require.NoError(t, sink.Save(ctx, id, want))

			got, err := sink.Load(ctx, id)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}

			// Saving again replaces the previous copy.
			require.NoError(t, sink.Save(ctx, id, want[:2]))
			got, err = sink.Load(ctx, id)
			require.NoError(t, err)
			assert.Len(t, got, 2)
		})
	}
}

func TestSinkList(t *testing.T) {
	ctx := context.Background()
	for name, sink := range sinks(t) {
		t.Run(name, func(t *testing.T) {
			ids, err := sink.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, ids)

			older := newIDAt(time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local))
			newer := newIDAt(time.Date(2025, 5, 1, 9, 0, 0, 0, time.Local))
			require.NoError(t, sink.Save(ctx, older, trajectory()))
			require.NoError(t, sink.Save(ctx, newer, trajectory()))

			ids, err = sink.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{newer, older}, ids)
		})
	}
}

func TestSinkLoadMissing(t *testing.T) {
	for name, sink := range sinks(t) {
		t.Run(name, func(t *testing.T) {
			_, err := sink.Load(context.Background(), "20000101000000-missing")
			assert.True(t, rmkerr.HasCode(err, rmkerr.CodeSessionNotFound), "got %v", err)
		})
	}
}

func TestJSONLSinkFileLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "traj")
	sink := NewJSONLSink(dir)
	ctx := context.Background()

	id := NewID()
	require.NoError(t, sink.Save(ctx, id, trajectory()))

	data, err := os.ReadFile(filepath.Join(dir, id+".jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `{"role":"tool","content":"hi","tool_call_id":"call_1"}`)

	current, err := sink.Load(ctx, "current")
	require.NoError(t, err)
	assert.Len(t, current, 5)

	ids, err := sink.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids, "current link must not be listed")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.jsonl"), []byte("{oops}\n"), 0644))
	_, err = sink.Load(ctx, "bad")
	assert.True(t, rmkerr.HasCode(err, rmkerr.CodeSessionLoadFailed), "got %v", err)
}

func TestNewSink(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.TrajDir = t.TempDir()
	sink, err := NewSink(cfg)
	require.NoError(t, err)
	assert.IsType(t, &JSONLSink{}, sink)

	cfg.Store = config.StoreSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "s.db")
	sink, err = NewSink(cfg)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteSink{}, sink)
	require.NoError(t, sink.Close())

	cfg.Store = "redis"
	_, err = NewSink(cfg)
	assert.Error(t, err)
}
