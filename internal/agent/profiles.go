package agent

import (
	"fmt"
	"strings"

	"github.com/rootagent/rmk/internal/config"
	"github.com/rootagent/rmk/internal/tools"
)

// Mode selects an agent profile.
type Mode string

const (
	ModeAsk   Mode = "ask"
	ModeAgent Mode = "agent"
	ModeDev   Mode = "dev"
)

// Profile is a named system prompt plus an ordered tool list.
type Profile struct {
	Mode        Mode
	Name        string
	Description string
	System      string
	ToolNames   []string
	// SystemRules adds the platform block and project rules to the system
	// message.
	SystemRules bool
}

var profiles = []Profile{
	{
		Mode:        ModeAsk,
		Name:        "AskAgent",
		Description: "Answers questions without tools.",
		System:      "You are a powerful AI agent.",
	},
	{
		Mode:        ModeAgent,
		Name:        "SWEAgent",
		Description: "An autonomous AI software engineer.",
		System:      "You are an autonomous AI software engineer.",
		ToolNames:   []string{"planning", "text_file_editor", "bash", "code_interpreter", "think"},
	},
	{
		Mode:        ModeDev,
		Name:        "RootMonkey",
		Description: "Root Monkey, an autonomous AI agent system.",
		System:      "As an autonomous AI agent, I am known as Root Monkey (rmk).",
		ToolNames:   []string{"planning", "text_file_editor", "bash", "think", "ask_human"},
		SystemRules: true,
	},
}

// Profiles returns every profile in display order.
func Profiles() []Profile {
	return append([]Profile(nil), profiles...)
}

// ProfileFor returns the profile for mode.
func ProfileFor(mode string) (Profile, error) {
	for _, p := range profiles {
		if string(p.Mode) == strings.ToLower(strings.TrimSpace(mode)) {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("unknown mode %q (expected ask, agent or dev)", mode)
}

// ToolDeps carries what tool constructors need from the caller.
type ToolDeps struct {
	Config *config.Config
	Input  tools.LineReader
}

// NewTool builds a tool by name.
func NewTool(name string, deps ToolDeps) (tools.Tool, error) {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	switch name {
	case "planning":
		return &tools.PlanningTool{DefaultPath: cfg.PlanFile}, nil
	case "text_file_editor":
		return &tools.EditorTool{}, nil
	case "bash":
		return &tools.BashTool{Shell: cfg.Shell, OutputLimit: cfg.ToolOutputLimit}, nil
	case "code_interpreter":
		return &tools.CodeInterpreterTool{}, nil
	case "think":
		return &tools.ThinkTool{}, nil
	case "ask_human":
		return &tools.AskHumanTool{Input: deps.Input}, nil
	}
	return nil, fmt.Errorf("unknown tool %q", name)
}

// Registry builds the profile's tools in order.
func (p Profile) Registry(deps ToolDeps) (*tools.Registry, error) {
	r := tools.NewRegistry()
	for _, name := range p.ToolNames {
		t, err := NewTool(name, deps)
		if err != nil {
			return nil, err
		}
		r.Register(t)
	}
	return r, nil
}
