package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"datalens/ports"
)

// MockClient produces deterministic replies without network access. It drives
// the same tool loop as the real providers: the first round picks a tool from
// keywords in the user message, the round after the tool result closes with a
// summary, so the loop always terminates.
type MockClient struct{}

// NewMockClient creates the offline client
func NewMockClient() *MockClient { return &MockClient{} }

// ChatCompletion answers from keywords in the conversation
func (c *MockClient) ChatCompletion(ctx context.Context, req ports.ChatRequest) (*ports.ChatResponse, error) {
	usage := &ports.UsageData{Model: "mock", Provider: "mock"}

	if len(req.Messages) > 0 {
		last := req.Messages[len(req.Messages)-1]
		if last.Role == "tool" {
			return &ports.ChatResponse{Content: summarizeToolResult(last.Name, last.Content), Usage: usage}, nil
		}
	}

	prompt := strings.ToLower(lastUserContent(req.Messages))
	if call, ok := pickTool(prompt, req.Tools); ok {
		return &ports.ChatResponse{ToolCalls: []ports.ToolCallRequest{call}, Usage: usage}, nil
	}

	return &ports.ChatResponse{
		Content: "I can explore this dataset for you: ask about summary statistics, correlations, missing values, distributions, a specific column, or a forecast.",
		Usage:   usage,
	}, nil
}

func lastUserContent(messages []ports.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}

// pickTool matches the prompt against the tool set. Rules are ordered:
// forecast wins over column mentions so "forecast the sales column" does the
// right thing.
func pickTool(prompt string, tools []ports.ToolDefinition) (ports.ToolCallRequest, bool) {
	available := make(map[string]bool, len(tools))
	for _, t := range tools {
		available[t.Name] = true
	}

	build := func(name string, args map[string]interface{}) (ports.ToolCallRequest, bool) {
		if !available[name] {
			return ports.ToolCallRequest{}, false
		}
		raw, err := json.Marshal(args)
		if err != nil {
			return ports.ToolCallRequest{}, false
		}
		return ports.ToolCallRequest{ID: "call-mock-1", Name: name, Arguments: raw}, true
	}

	switch {
	case strings.Contains(prompt, "forecast") || strings.Contains(prompt, "predict"):
		args := map[string]interface{}{"periods": 30}
		if target := quotedToken(prompt); target != "" {
			args["target_column"] = target
		}
		return build("forecast_data", args)
	case strings.Contains(prompt, "correlat"):
		return build("perform_eda", map[string]interface{}{"type": "correlation"})
	case strings.Contains(prompt, "missing"):
		return build("perform_eda", map[string]interface{}{"type": "missing"})
	case strings.Contains(prompt, "distribut") || strings.Contains(prompt, "histogram"):
		return build("perform_eda", map[string]interface{}{"type": "distribution"})
	case strings.Contains(prompt, "column"):
		return build("get_column_info", map[string]interface{}{})
	case strings.Contains(prompt, "summar") || strings.Contains(prompt, "describe") ||
		strings.Contains(prompt, "explore") || strings.Contains(prompt, "statistic") ||
		strings.Contains(prompt, "analy") || strings.Contains(prompt, "eda"):
		return build("perform_eda", map[string]interface{}{"type": "summary"})
	}
	return ports.ToolCallRequest{}, false
}

// quotedToken extracts the first token wrapped in quotes or backticks
func quotedToken(s string) string {
	for _, quote := range []string{`"`, "'", "`"} {
		start := strings.Index(s, quote)
		if start < 0 {
			continue
		}
		rest := s[start+1:]
		end := strings.Index(rest, quote)
		if end > 0 {
			return rest[:end]
		}
	}
	return ""
}

func summarizeToolResult(name, result string) string {
	if name == "" {
		name = "the analysis tool"
	}
	return fmt.Sprintf("Analysis complete. Results from %s:\n\n```json\n%s\n```", name, result)
}
