package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rootagent/rmk/internal/config"
	"github.com/rootagent/rmk/internal/logging"
)

var Version = "dev"

var (
	cfg    *config.Config
	appLog *logging.Logger

	configPath   string
	modelFlag    string
	providerFlag string
	maxTurnsFlag int
	debugFlag    bool
)

var rootCmd = &cobra.Command{
	Use:   "rmk [ask|agent|dev]",
	Short: "Root Monkey, an autonomous coding agent",
	Long: `rmk drives a language model through a tool-using loop.

Modes:
  ask    answer questions, no tools
  agent  software engineer with planning, editor, bash, code interpreter and think
  dev    Root Monkey: agent tools plus ask_human and project rules (default)

Without --task an interactive prompt starts; /exit or /quit leaves it.`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgs:         []string{"ask", "agent", "dev"},
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runAgent,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Annotations: map[string]string{
		"skipSetup": "true",
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rmk version %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: rmk.yaml, .rmk/config.yaml, ~/.config/rmk/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model name override")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "Provider override (openai, anthropic, ollama)")
	rootCmd.PersistentFlags().IntVar(&maxTurnsFlag, "max-turns", 0, "Gateway calls allowed per prompt")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Debug logging on stderr")

	rootCmd.Flags().StringVarP(&taskFlag, "task", "t", "", "Run one task and exit; a file path or the task text")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show each step and wait for Enter before every tool call")
	rootCmd.Flags().BoolVar(&jsonFlag, "json", false, "With --task, print the result as JSON")
	rootCmd.Flags().StringVarP(&resumeFlag, "resume", "r", "", "Continue a stored session (id or \"last\")")

	rootCmd.AddCommand(versionCmd, sessionsCmd, showCmd, mcpCmd)
}

func main() {
	err := rootCmd.Execute()
	if appLog != nil {
		_ = appLog.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration, applies flag overrides and starts logging.
func setup(cmd *cobra.Command, args []string) error {
	if cmd.Annotations["skipSetup"] == "true" {
		return nil
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if modelFlag != "" {
		loaded.Model = modelFlag
	}
	if providerFlag != "" {
		loaded.Provider = providerFlag
	}
	if maxTurnsFlag > 0 {
		loaded.MaxTurns = maxTurnsFlag
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	logCfg := logging.ConfigFromEnv()
	if os.Getenv("RMK_LOG_DIR") == "" {
		logCfg.LogDir = cfg.LogDir
	}
	if debugFlag {
		logCfg = logCfg.WithLevel(logging.LevelDebug)
	}
	appLog, err = logging.Init(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	appLog.Event(logging.EventSessionStart,
		logging.F("command", cmd.Name()),
		logging.Provider(cfg.Provider),
		logging.Model(cfg.GetModel()),
		logging.Path(cfg.ConfigPath()),
	)
	return nil
}
