package knowledge

import (
	"context"
	"fmt"
)

// ToolName is the identifier the agent uses to invoke knowledge search.
const ToolName = "search_knowledge_base"

// Tool exposes the knowledge service as an agent tool.
type Tool struct {
	service *Service
}

// NewTool creates a knowledge search tool backed by the given service.
func NewTool(service *Service) *Tool {
	return &Tool{service: service}
}

// Name returns the tool identifier.
func (t *Tool) Name() string {
	return ToolName
}

// Description returns the tool description shown to the model.
func (t *Tool) Description() string {
	return "Search the surf knowledge base for information about surf spots, " +
		"local conditions, hazards, and general surfing advice. " +
		"Use this for questions not answered by the live forecast."
}

// Parameters returns the JSON schema for the tool arguments.
func (t *Tool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query, e.g. 'best beginner breaks near Sydney'",
			},
		},
		"required": []string{"query"},
	}
}

// Execute runs a knowledge base search. Failures are reported as tool
// output so the model can relay them instead of aborting the turn.
func (t *Tool) Execute(ctx context.Context, args map[string]any) (string, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return "Error searching knowledge base: no query provided", nil
	}

	docs, err := t.service.Search(ctx, query, 0)
	if err != nil {
		return fmt.Sprintf("Error searching knowledge base: %s", err), nil
	}
	if len(docs) == 0 {
		return "No relevant information found in the knowledge base.", nil
	}
	return FormatDocuments(docs), nil
}
