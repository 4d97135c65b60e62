package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// DefaultMaxToolIterations bounds how many tool rounds one run may take.
const DefaultMaxToolIterations = 5

// Config holds configuration for an Agent.
type Config struct {
	// Provider is the chat-completions backend (required).
	Provider Provider

	// Model is the model identifier sent to the provider.
	Model string

	// SystemPrompt is prepended to every conversation.
	SystemPrompt string

	// Tools the agent may call (optional).
	Tools *Registry

	// MaxToolIterations bounds tool rounds per run (default 5).
	MaxToolIterations int

	// Temperature for the provider (default 0, deterministic tool use).
	Temperature float64

	// Logger for agent operations.
	Logger zerolog.Logger
}

// Agent answers user messages, calling registered tools when the model asks.
type Agent struct {
	provider      Provider
	model         string
	systemPrompt  string
	tools         *Registry
	maxIterations int
	temperature   float64
	logger        zerolog.Logger
}

// New creates an agent.
func New(cfg Config) *Agent {
	maxIterations := cfg.MaxToolIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxToolIterations
	}
	tools := cfg.Tools
	if tools == nil {
		tools = NewRegistry()
	}
	return &Agent{
		provider:      cfg.Provider,
		model:         cfg.Model,
		systemPrompt:  cfg.SystemPrompt,
		tools:         tools,
		maxIterations: maxIterations,
		temperature:   cfg.Temperature,
		logger:        cfg.Logger,
	}
}

// Run answers the question given the prior conversation history and returns
// the assistant's final text.
func (a *Agent) Run(ctx context.Context, history []Message, question string) (string, error) {
	resp, err := a.run(ctx, history, question)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// RunStream answers the question, invoking onChunk with increments of the
// final assistant text. Tool rounds are executed non-streaming; only the
// model's closing answer is streamed (several OpenAI-compatible backends
// cannot combine tool calls with streaming).
func (a *Agent) RunStream(ctx context.Context, history []Message, question string, onChunk func(string)) (string, error) {
	if a.provider == nil {
		return "", ErrNoProvider
	}

	messages := a.seedMessages(history, question)

	if a.tools.Len() == 0 {
		resp, err := a.provider.ChatStream(ctx, a.request(messages, nil), func(c StreamChunk) {
			if c.Content != "" && onChunk != nil {
				onChunk(c.Content)
			}
		})
		if err != nil {
			return "", fmt.Errorf("streaming chat: %w", err)
		}
		return resp.Content, nil
	}

	resp, err := a.toolLoop(ctx, messages)
	if err != nil {
		return "", err
	}
	if onChunk != nil && resp.Content != "" {
		onChunk(resp.Content)
	}
	return resp.Content, nil
}

func (a *Agent) run(ctx context.Context, history []Message, question string) (*ChatResponse, error) {
	if a.provider == nil {
		return nil, ErrNoProvider
	}
	return a.toolLoop(ctx, a.seedMessages(history, question))
}

// toolLoop calls the provider until the model stops requesting tools.
func (a *Agent) toolLoop(ctx context.Context, messages []Message) (*ChatResponse, error) {
	defs := a.tools.Definitions()

	for iteration := 0; iteration < a.maxIterations; iteration++ {
		resp, err := a.provider.Chat(ctx, a.request(messages, defs))
		if err != nil {
			return nil, fmt.Errorf("chat completion: %w", err)
		}

		if len(resp.ToolCalls) == 0 {
			return resp, nil
		}

		messages = append(messages, Message{
			Role:      RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, tc := range resp.ToolCalls {
			output := a.executeTool(ctx, tc)
			messages = append(messages, Message{
				Role:       RoleTool,
				Content:    output,
				ToolCallID: tc.ID,
			})
		}
	}

	return nil, ErrToolLoopExceeded
}

// executeTool runs one tool call. Failures are reported back to the model as
// tool output so the run can recover instead of aborting.
func (a *Agent) executeTool(ctx context.Context, tc ToolCall) string {
	tool, ok := a.tools.Get(tc.Name)
	if !ok {
		a.logger.Warn().Str("tool", tc.Name).Msg("model requested unknown tool")
		return fmt.Sprintf("Error: unknown tool %q", tc.Name)
	}

	args := map[string]any{}
	if tc.Arguments != "" {
		if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
			a.logger.Warn().Err(err).Str("tool", tc.Name).Msg("bad tool arguments")
			return fmt.Sprintf("Error: invalid arguments for %s: %s", tc.Name, err)
		}
	}

	a.logger.Debug().Str("tool", tc.Name).Str("call_id", tc.ID).Msg("executing tool")

	output, err := tool.Execute(ctx, args)
	if err != nil {
		a.logger.Error().Err(err).Str("tool", tc.Name).Msg("tool execution failed")
		return fmt.Sprintf("Error executing %s: %s", tc.Name, err)
	}
	return output
}

func (a *Agent) seedMessages(history []Message, question string) []Message {
	messages := make([]Message, 0, len(history)+2)
	if a.systemPrompt != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: a.systemPrompt})
	}
	messages = append(messages, history...)
	return append(messages, Message{Role: RoleUser, Content: question})
}

func (a *Agent) request(messages []Message, defs []ToolDefinition) ChatRequest {
	return ChatRequest{
		Model:       a.model,
		Messages:    messages,
		Tools:       defs,
		Temperature: a.temperature,
	}
}
