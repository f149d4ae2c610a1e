// Package session names conversations and persists their trajectories.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rootagent/rmk/internal/config"
	"github.com/rootagent/rmk/internal/llm"
)

const idTimeLayout = "20060102150405"

// Sink stores and retrieves whole trajectories by session id.
type Sink interface {
	Save(ctx context.Context, sessionID string, msgs []llm.Message) error
	Load(ctx context.Context, sessionID string) ([]llm.Message, error)
	// List returns stored session ids, newest first.
	List(ctx context.Context) ([]string, error)
	Close() error
}

// NewID returns a fresh session id: a second-resolution local timestamp and a
// hyphen-free uuid, e.g. 20250102150405-0f8fad5bd9cb469fa16570867728950e.
func NewID() string {
	return newIDAt(time.Now())
}

func newIDAt(t time.Time) string {
	return t.Format(idTimeLayout) + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IDTime extracts the creation time encoded in a session id.
func IDTime(id string) (time.Time, bool) {
	if len(id) < len(idTimeLayout) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(idTimeLayout, id[:len(idTimeLayout)], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Info summarizes a stored session for listing.
type Info struct {
	ID        string
	CreatedAt time.Time
	Preview   string // first user message
	MsgCount  int
}

// Summarize builds the listing entry for one trajectory.
func Summarize(id string, msgs []llm.Message) Info {
	info := Info{ID: id, MsgCount: len(msgs)}
	info.CreatedAt, _ = IDTime(id)
	for _, msg := range msgs {
		if msg.Role == llm.RoleUser {
			info.Preview = truncate(msg.Content, 50)
			break
		}
	}
	return info
}

// NewSink opens the store selected by cfg.Store.
func NewSink(cfg *config.Config) (Sink, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		return NewSQLiteSink(cfg.SQLitePath)
	case config.StoreJSONL, "":
		return NewJSONLSink(cfg.TrajDir), nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// truncate truncates a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)

	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatRelativeTime formats a time as a human-readable relative string
func FormatRelativeTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		if t.Year() == now.Year() {
			return t.Format("Jan 2")
		}
		return t.Format("Jan 2, 2006")
	}
}
