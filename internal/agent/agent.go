package agent

import (
	"context"
	"time"

	rmkerr "github.com/rootagent/rmk/internal/errors"
	"github.com/rootagent/rmk/internal/llm"
	"github.com/rootagent/rmk/internal/logging"
	"github.com/rootagent/rmk/internal/memory"
	"github.com/rootagent/rmk/internal/session"
	"github.com/rootagent/rmk/internal/tools"
)

// DefaultMaxTurns bounds the gateway calls one Run may make.
const DefaultMaxTurns = 30

const continuePrompt = "Press Enter to continue with the tool call..."

// cancelledResult answers tool calls that were never dispatched because the
// run was cancelled, so a stored trajectory stays resumable.
const cancelledResult = "Tool call cancelled."

// State is the position of the agent loop.
type State int

const (
	StateAwaitingModel State = iota
	StateHandlingTools
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingModel:
		return "awaiting_model"
	case StateHandlingTools:
		return "handling_tools"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// Config holds agent configuration
type Config struct {
	LLM   llm.LLMClient
	Tools *tools.Registry

	// System is the profile prompt. SystemRules, when non-empty, is appended
	// inside a <system> block.
	System      string
	SystemRules string

	// SessionID names the trajectory; a fresh id is generated when empty.
	SessionID   string
	MaxTurns    int
	MaxMessages int

	Output  AgentOutput
	Input   AgentInput
	Verbose bool

	// Sink, when set, receives the trajectory on Save.
	Sink session.Sink
}

// Agent drives one conversation: it alternates gateway calls with tool
// dispatch until the model answers without requesting tools.
type Agent struct {
	llm        llm.LLMClient
	registry   *tools.Registry
	dispatcher *tools.Dispatcher
	memory     *memory.Memory
	sink       session.Sink
	output     AgentOutput
	input      AgentInput
	log        *logging.Logger

	system    string
	sessionID string
	maxTurns  int
	verbose   bool
	state     State
}

// New creates a new agent
func New(cfg Config) *Agent {
	registry := cfg.Tools
	if registry == nil {
		registry = tools.NewRegistry()
	}
	output := cfg.Output
	if output == nil {
		output = discardOutput{}
	}
	id := cfg.SessionID
	if id == "" {
		id = session.NewID()
	}
	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	log := logging.Global().WithPrefix("agent").With(logging.SessionID(id))

	a := &Agent{
		llm:        cfg.LLM,
		registry:   registry,
		dispatcher: tools.NewDispatcher(registry),
		memory:     memory.New(cfg.MaxMessages),
		sink:       cfg.Sink,
		output:     output,
		input:      cfg.Input,
		log:        log,
		system:     SystemContent(cfg.System, cfg.SystemRules),
		sessionID:  id,
		maxTurns:   maxTurns,
		verbose:    cfg.Verbose,
	}
	a.seedSystem()
	return a
}

// SystemContent composes the system message text.
func SystemContent(system, rules string) string {
	if rules == "" {
		return system
	}
	return system + "\n\n<system>\n" + rules + "\n</system>"
}

// SessionID returns the trajectory id.
func (a *Agent) SessionID() string { return a.sessionID }

// State returns the loop state after the last transition.
func (a *Agent) State() State { return a.state }

// Memory exposes the conversation history.
func (a *Agent) Memory() *memory.Memory { return a.memory }

// Restore replaces the history with msgs and adopts id, so the next Run
// continues a stored trajectory.
func (a *Agent) Restore(id string, msgs []llm.Message) {
	if id != "" {
		a.sessionID = id
		a.log = logging.Global().WithPrefix("agent").With(logging.SessionID(id))
	}
	a.memory.Clear()
	if len(msgs) == 0 || msgs[0].Role != llm.RoleSystem {
		a.seedSystem()
	}
	a.memory.Add(msgs...)
	a.memory.Truncate()
}

func (a *Agent) seedSystem() {
	if a.system != "" {
		a.memory.Add(llm.SystemMessage(a.system))
	}
}

// Save hands the current history to the sink. It is a no-op without one.
func (a *Agent) Save(ctx context.Context) error {
	if a.sink == nil {
		return nil
	}
	return a.sink.Save(ctx, a.sessionID, a.memory.View())
}

// Run appends prompt to the conversation and loops until the model replies
// without tool calls, returning that reply's content. Gateway failures end
// the run immediately; tool failures are fed back to the model as text.
// Every return leaves the agent in StateDone.
func (a *Agent) Run(ctx context.Context, prompt string) (string, error) {
	defer a.setState(StateDone)
	start := time.Now()
	logging.Global().Metrics().RecordRun()
	a.log.Event(logging.EventAgentRun,
		logging.Model(a.llm.GetModel()),
		logging.Preview("prompt", prompt),
		logging.MessageCount(a.memory.Len()),
	)

	if a.memory.Len() == 0 {
		a.seedSystem()
	}
	if a.verbose {
		a.output.User(prompt)
	}
	a.memory.Add(llm.UserMessage(prompt))
	a.memory.Truncate()

	remaining := a.maxTurns
	turn := 0
	a.setState(StateAwaitingModel)

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if remaining == 0 {
			err := rmkerr.MaxTurnsReached(a.maxTurns)
			a.log.Warn("turn budget exhausted", logging.Turn(turn), logging.Error(err))
			return "", err
		}
		remaining--
		turn++

		reply, err := a.chat(ctx, turn)
		if err != nil {
			return "", err
		}
		a.memory.Add(*reply)
		a.memory.Truncate()

		if !reply.HasToolCalls() {
			a.log.Event(logging.EventAgentDone,
				logging.Turn(turn),
				logging.MessageCount(a.memory.Len()),
				logging.DurationSince(start),
			)
			return reply.Content, nil
		}

		if reply.Content != "" {
			a.output.Assistant(reply.Content)
		}

		a.setState(StateHandlingTools)
		results, err := a.handleTools(ctx, reply.ToolCalls)
		a.memory.Add(results...)
		a.memory.Truncate()
		if err != nil {
			return "", err
		}
		a.setState(StateAwaitingModel)
	}
}

func (a *Agent) chat(ctx context.Context, turn int) (*llm.Message, error) {
	msgs := a.memory.View()
	defs := a.registry.GetDefinitions()
	a.log.Event(logging.EventLLMRequest,
		logging.Turn(turn),
		logging.MessageCount(len(msgs)),
		logging.Count(len(defs)),
	)

	start := time.Now()
	reply, err := a.llm.Chat(ctx, msgs, defs)
	if err == nil && reply == nil {
		err = rmkerr.InvalidResponse(a.llm.GetModel())
	}
	logging.Global().Metrics().RecordTurn(err)
	if err != nil {
		a.log.Event(logging.EventLLMError, logging.Turn(turn), logging.Error(err))
		return nil, err
	}

	a.log.Event(logging.EventLLMResponse,
		logging.Turn(turn),
		logging.Count(len(reply.ToolCalls)),
		logging.DurationSince(start),
	)
	out := reply.Clone()
	out.Role = llm.RoleAssistant
	return &out, nil
}

// handleTools runs calls in the order the model listed them and returns one
// TOOL message per call. On cancellation the calls not yet run are answered
// with cancelledResult and the context error is returned with them.
func (a *Agent) handleTools(ctx context.Context, calls []llm.ToolCall) ([]llm.Message, error) {
	results := make([]llm.Message, 0, len(calls))
	for i, call := range calls {
		a.output.ToolCall(call.Name, call.Arguments)
		if a.verbose && a.input != nil {
			if _, err := a.input.ReadLine(continuePrompt); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					for _, rest := range calls[i:] {
						results = append(results, llm.ToolMessage(rest.ID, cancelledResult))
					}
					return results, ctxErr
				}
				a.log.Debug("continue prompt failed", logging.Error(err))
			}
		}

		result, failed := a.dispatcher.ExecuteDetailed(ctx, call.Name, call.Arguments)
		a.output.ToolResult(call.Name, result, failed)
		results = append(results, llm.ToolMessage(call.ID, result))
	}
	return results, nil
}

func (a *Agent) setState(s State) {
	if a.state == s {
		return
	}
	a.log.Event(logging.EventAgentState, logging.From(a.state.String()), logging.To(s.String()))
	a.state = s
}
