package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockLLMClient implements LLMClient for testing.
type MockLLMClient struct {
	// ChatFunc, when set, decides every reply.
	ChatFunc func(ctx context.Context, messages []Message, tools []ToolDefinition) (*Message, error)

	model string
	mu    sync.Mutex

	// Replies are consumed in order when ChatFunc is nil.
	replies []*Message

	// ChatCalls records a snapshot of every invocation.
	ChatCalls []ChatCall
}

// ChatCall records the arguments of a Chat invocation.
type ChatCall struct {
	Messages []Message
	Tools    []ToolDefinition
}

// NewMockLLMClient creates a mock client with sensible defaults.
func NewMockLLMClient(replies ...*Message) *MockLLMClient {
	return &MockLLMClient{
		model:   "mock-model",
		replies: replies,
	}
}

// Chat records the call, then answers from ChatFunc, the reply queue, or a
// default text reply.
func (m *MockLLMClient) Chat(ctx context.Context, messages []Message, tools []ToolDefinition) (*Message, error) {
	snapshot := make([]Message, len(messages))
	for i, msg := range messages {
		snapshot[i] = msg.Clone()
	}

	m.mu.Lock()
	m.ChatCalls = append(m.ChatCalls, ChatCall{Messages: snapshot, Tools: tools})
	fn := m.ChatFunc
	var next *Message
	queued := len(m.replies) > 0
	if fn == nil && queued {
		next = m.replies[0]
		m.replies = m.replies[1:]
	}
	calls := len(m.ChatCalls)
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages, tools)
	}
	if next != nil {
		reply := next.Clone()
		return &reply, nil
	}
	if queued {
		return nil, fmt.Errorf("mock reply %d is nil", calls)
	}
	return &Message{Role: RoleAssistant, Content: "mock response"}, nil
}

// SetModel sets the model name.
func (m *MockLLMClient) SetModel(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.model = model
}

// GetModel returns the current model name.
func (m *MockLLMClient) GetModel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model
}

// CallCount returns how many times Chat ran.
func (m *MockLLMClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ChatCalls)
}
