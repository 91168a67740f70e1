package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"datalens/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGeminiClient_ChatCompletion verifies the generateContent call and the
// synthesized tool call ids.
func TestGeminiClient_ChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var reqBody geminiRequestBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		require.Len(t, reqBody.Tools, 1)
		assert.Len(t, reqBody.Tools[0].FunctionDeclarations, 3)
		require.NotNil(t, reqBody.SystemInstruction)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [
				{"text": "Let me check."},
				{"functionCall": {"name": "perform_eda", "args": {"type": "missing"}}}
			]}}],
			"usageMetadata": {"promptTokenCount": 10, "candidatesTokenCount": 5, "totalTokenCount": 15}
		}`))
	}))
	defer server.Close()

	client := NewGeminiClient(Config{APIKey: "test-key", BaseURL: server.URL})
	resp, err := client.ChatCompletion(context.Background(), ports.ChatRequest{
		Messages: []ports.ChatMessage{
			{Role: "system", Content: "you are a data analyst"},
			{Role: "user", Content: "any missing values?"},
		},
		Tools: edaTools(),
	})
	require.NoError(t, err)

	assert.Equal(t, "Let me check.", resp.Content)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "perform_eda-1", resp.ToolCalls[0].ID)
	assert.Equal(t, "perform_eda", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"type":"missing"}`, string(resp.ToolCalls[0].Arguments))

	require.NotNil(t, resp.Usage)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
	assert.Equal(t, "gemini", resp.Usage.Provider)
}

// TestEncodeGeminiContents verifies the role mapping.
func TestEncodeGeminiContents(t *testing.T) {
	messages := []ports.ChatMessage{
		{Role: "system", Content: "stay factual"},
		{Role: "user", Content: "hello"},
		{Role: "assistant", ToolCalls: []ports.ToolCallRequest{
			{ID: "call_1", Name: "get_column_info", Arguments: json.RawMessage(`{}`)},
		}},
		{Role: "tool", Name: "get_column_info", Content: `{"total_rows": 5}`},
	}

	contents, system := encodeGeminiContents(messages)
	require.NotNil(t, system)
	assert.Equal(t, "stay factual", system.Parts[0].Text)

	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	require.NotNil(t, contents[1].Parts[0].FunctionCall)
	assert.Equal(t, "get_column_info", contents[1].Parts[0].FunctionCall.Name)

	assert.Equal(t, "user", contents[2].Role)
	require.NotNil(t, contents[2].Parts[0].FunctionResponse)
	assert.Equal(t, "get_column_info", contents[2].Parts[0].FunctionResponse.Name)
}

// TestGeminiClient_NoCandidates verifies empty replies error out.
func TestGeminiClient_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client := NewGeminiClient(Config{APIKey: "test-key", BaseURL: server.URL})
	_, err := client.ChatCompletion(context.Background(), ports.ChatRequest{
		Messages: []ports.ChatMessage{{Role: "user", Content: "hi"}},
	})
	assert.ErrorContains(t, err, "no candidates")
}
