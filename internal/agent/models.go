// Package agent runs the tool-calling chat loop that powers Swellbot.
//
// The agent holds a system prompt and a tool registry, sends the
// conversation to an OpenAI-compatible chat-completions provider, executes
// any tool calls the model requests, and feeds the results back until the
// model produces a plain text answer.
package agent

import (
	"context"
	"errors"
)

// Agent errors.
var (
	// ErrNoProvider indicates no LLM provider was configured.
	ErrNoProvider = errors.New("no llm provider configured")
	// ErrToolLoopExceeded indicates the model kept requesting tools past the
	// iteration budget.
	ErrToolLoopExceeded = errors.New("tool iteration budget exceeded")
)

// Role identifies who authored a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// ToolCalls is set on assistant messages that request tool execution.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool-role message to the call it answers.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// ToolCall is a model-requested tool invocation.
type ToolCall struct {
	ID        string // provider-assigned call ID
	Name      string // tool name
	Arguments string // raw JSON arguments
}

// ToolDefinition describes a tool to the model in OpenAI function format.
type ToolDefinition struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction is the function schema inside a ToolDefinition.
type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ChatRequest is a single call to the chat-completions provider.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Tools       []ToolDefinition
	Temperature float64
	MaxTokens   int
}

// ChatResponse is the provider's reply.
type ChatResponse struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason string
	Usage        Usage
}

// Usage reports token consumption for one provider call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// StreamChunk is one increment of a streamed reply.
type StreamChunk struct {
	Content string
	Done    bool
}

// Provider is an OpenAI-compatible chat-completions backend.
type Provider interface {
	// Chat sends the request and waits for the full response.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	// ChatStream sends the request and invokes onChunk for each content
	// increment, returning the aggregated response.
	ChatStream(ctx context.Context, req ChatRequest, onChunk func(StreamChunk)) (*ChatResponse, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}
