package llm

import (
	"context"
	"encoding/json"
	"testing"

	"datalens/domain/chat"
	"datalens/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMockClient_ToolLoop verifies the two-round shape: pick a tool, then
// summarize its result.
func TestMockClient_ToolLoop(t *testing.T) {
	client := NewMockClient()
	ctx := context.Background()

	first, err := client.ChatCompletion(ctx, ports.ChatRequest{
		Messages: []ports.ChatMessage{{Role: "user", Content: "show me the correlations"}},
		Tools:    edaTools(),
	})
	require.NoError(t, err)
	require.Len(t, first.ToolCalls, 1)
	assert.Equal(t, "perform_eda", first.ToolCalls[0].Name)
	assert.JSONEq(t, `{"type":"correlation"}`, string(first.ToolCalls[0].Arguments))

	second, err := client.ChatCompletion(ctx, ports.ChatRequest{
		Messages: []ports.ChatMessage{
			{Role: "user", Content: "show me the correlations"},
			{Role: "assistant", ToolCalls: first.ToolCalls},
			{Role: "tool", Name: "perform_eda", Content: `{"analysis_type":"correlation"}`},
		},
		Tools: edaTools(),
	})
	require.NoError(t, err)
	assert.Empty(t, second.ToolCalls, "the round after a tool result must terminate")
	assert.Contains(t, second.Content, "perform_eda")
	assert.Contains(t, second.Content, `"analysis_type"`)
}

// TestMockClient_KeywordRouting verifies prompt keywords select tools.
func TestMockClient_KeywordRouting(t *testing.T) {
	client := NewMockClient()
	ctx := context.Background()

	tests := []struct {
		name     string
		prompt   string
		wantTool string
	}{
		{"forecast with quoted target", `forecast the "sales" column`, "forecast_data"},
		{"missing values", "are there missing values?", "perform_eda"},
		{"distribution", "plot the distribution", "perform_eda"},
		{"column info", "what columns does this have", "get_column_info"},
		{"summary", "describe the dataset", "perform_eda"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := client.ChatCompletion(ctx, ports.ChatRequest{
				Messages: []ports.ChatMessage{{Role: "user", Content: tt.prompt}},
				Tools:    edaTools(),
			})
			require.NoError(t, err)
			require.Len(t, resp.ToolCalls, 1)
			assert.Equal(t, tt.wantTool, resp.ToolCalls[0].Name)
		})
	}
}

// TestMockClient_ForecastArguments verifies quoted targets reach the args.
func TestMockClient_ForecastArguments(t *testing.T) {
	client := NewMockClient()

	resp, err := client.ChatCompletion(context.Background(), ports.ChatRequest{
		Messages: []ports.ChatMessage{{Role: "user", Content: `forecast "revenue" for me`}},
		Tools:    edaTools(),
	})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)

	var args map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.ToolCalls[0].Arguments, &args))
	assert.Equal(t, "revenue", args["target_column"])
	assert.Equal(t, float64(30), args["periods"])
}

// TestMockClient_PlainReply verifies prompts with no tool keywords get a
// help message, not a tool call.
func TestMockClient_PlainReply(t *testing.T) {
	client := NewMockClient()

	resp, err := client.ChatCompletion(context.Background(), ports.ChatRequest{
		Messages: []ports.ChatMessage{{Role: "user", Content: "good morning"}},
		Tools:    edaTools(),
	})
	require.NoError(t, err)
	assert.Empty(t, resp.ToolCalls)
	assert.NotEmpty(t, resp.Content)
}

// TestNewClient_ProviderSelection verifies the factory fallbacks.
func TestNewClient_ProviderSelection(t *testing.T) {
	assert.IsType(t, &MockClient{}, NewClient(Config{Provider: chat.ProviderMock}))
	assert.IsType(t, &MockClient{}, NewClient(Config{Provider: chat.ProviderOpenAI}))
	assert.IsType(t, &MockClient{}, NewClient(Config{Provider: "unknown"}))
	assert.IsType(t, &MockClient{}, NewClient(Config{}))
	assert.IsType(t, &OpenAIClient{}, NewClient(Config{Provider: chat.ProviderOpenAI, APIKey: "k"}))
	assert.IsType(t, &GeminiClient{}, NewClient(Config{Provider: chat.ProviderGemini, APIKey: "k"}))
}
