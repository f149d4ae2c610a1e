package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rootagent/rmk/internal/llm"
	"github.com/rootagent/rmk/internal/session"
	"github.com/rootagent/rmk/internal/ui"
)

var sessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored sessions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sink, err := session.NewSink(cfg)
		if err != nil {
			return err
		}
		defer sink.Close()

		ids, err := sink.List(cmd.Context())
		if err != nil {
			return err
		}
		out := ui.NewOutputHandler()
		if len(ids) == 0 {
			out.Info("No stored sessions.")
			return nil
		}
		if sessionsLimit > 0 && len(ids) > sessionsLimit {
			ids = ids[:sessionsLimit]
		}

		for _, id := range ids {
			msgs, err := sink.Load(cmd.Context(), id)
			if err != nil {
				out.Warning(fmt.Sprintf("%s: %v", id, err))
				continue
			}
			info := session.Summarize(id, msgs)
			when := "unknown"
			if !info.CreatedAt.IsZero() {
				when = session.FormatRelativeTime(info.CreatedAt)
			}
			out.KeyValue(info.ID, fmt.Sprintf("%s, %d messages  %s", when, info.MsgCount, info.Preview))
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print a stored trajectory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sink, err := session.NewSink(cfg)
		if err != nil {
			return err
		}
		defer sink.Close()

		id := args[0]
		if id == "last" {
			ids, err := sink.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				return fmt.Errorf("no stored sessions")
			}
			id = ids[0]
		}
		msgs, err := sink.Load(cmd.Context(), id)
		if err != nil {
			return err
		}

		out := ui.NewOutputHandler()
		out.Header(id)
		for _, msg := range msgs {
			printMessage(out, msg)
		}
		return nil
	},
}

func printMessage(out *ui.OutputHandler, msg llm.Message) {
	switch msg.Role {
	case llm.RoleSystem:
		out.Dim("[system] " + firstLine(msg.Content))
	case llm.RoleUser:
		out.User(msg.Content)
	case llm.RoleAssistant:
		if msg.Content != "" {
			out.Markdown(msg.Content)
		}
		for _, call := range msg.ToolCalls {
			out.ToolCall(call.Name, call.Arguments)
		}
	case llm.RoleTool:
		out.ToolResult(msg.ToolCallID, msg.Content, false)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

func init() {
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 20, "Show at most n sessions (0 for all)")
}
