package main

import (
	"github.com/spf13/cobra"

	"github.com/rootagent/rmk/internal/agent"
	"github.com/rootagent/rmk/internal/logging"
	"github.com/rootagent/rmk/internal/mcpserver"
)

var mcpMode string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve a profile's tools over MCP on stdio",
	Long: `Serve the tools of a profile as a Model Context Protocol server on
stdin/stdout. ask_human is not served because stdin carries the protocol.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := agent.ProfileFor(mcpMode)
		if err != nil {
			return err
		}

		names := make([]string, 0, len(profile.ToolNames))
		for _, name := range profile.ToolNames {
			if name != "ask_human" {
				names = append(names, name)
			}
		}
		profile.ToolNames = names

		registry, err := profile.Registry(agent.ToolDeps{Config: cfg})
		if err != nil {
			return err
		}
		srv, err := mcpserver.New(registry, Version)
		if err != nil {
			return err
		}

		logging.Global().WithPrefix("mcp").Info("serving tools on stdio",
			logging.Mode(mcpMode), logging.Count(registry.Len()))
		return srv.ServeStdio()
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpMode, "mode", string(agent.ModeAgent), "Profile whose tools are served")
}
