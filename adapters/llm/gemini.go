package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "datalens/internal/errors"
	"datalens/ports"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	defaultGeminiModel   = "gemini-1.5-flash"
)

// GeminiClient implements ports.LLMClient against the generateContent API
type GeminiClient struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
}

// NewGeminiClient creates a Gemini client with the given config
func NewGeminiClient(cfg Config) *GeminiClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &GeminiClient{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      &http.Client{Timeout: timeout},
	}
}

type geminiFunctionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

type geminiFunctionResponse struct {
	Name     string                 `json:"name"`
	Response map[string]interface{} `json:"response"`
}

type geminiPart struct {
	Text             string                  `json:"text,omitempty"`
	FunctionCall     *geminiFunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *geminiFunctionResponse `json:"functionResponse,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiFunctionDeclaration struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDeclaration `json:"functionDeclarations"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiRequestBody struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Tools             []geminiTool            `json:"tools,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponseBody struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// ChatCompletion sends one generateContent request. Gemini has no tool call
// ids; synthesized ones keep the tool loop bookkeeping uniform.
func (c *GeminiClient) ChatCompletion(ctx context.Context, req ports.ChatRequest) (*ports.ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	reqBody := geminiRequestBody{
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxTokens,
		},
	}
	reqBody.Contents, reqBody.SystemInstruction = encodeGeminiContents(req.Messages)

	if len(req.Tools) > 0 {
		tool := geminiTool{}
		for _, t := range req.Tools {
			tool.FunctionDeclarations = append(tool.FunctionDeclarations, geminiFunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			})
		}
		reqBody.Tools = []geminiTool{tool}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.ExternalServiceError("gemini", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.ExternalServiceError("gemini", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.ExternalServiceError("gemini",
			fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(body)))
	}

	var apiResp geminiResponseBody
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(apiResp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	out := &ports.ChatResponse{
		Usage: &ports.UsageData{
			PromptTokens:     apiResp.UsageMetadata.PromptTokenCount,
			CompletionTokens: apiResp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      apiResp.UsageMetadata.TotalTokenCount,
			Model:            model,
			Provider:         "gemini",
		},
	}
	for i, part := range apiResp.Candidates[0].Content.Parts {
		if part.FunctionCall != nil {
			out.ToolCalls = append(out.ToolCalls, ports.ToolCallRequest{
				ID:        fmt.Sprintf("%s-%d", part.FunctionCall.Name, i),
				Name:      part.FunctionCall.Name,
				Arguments: part.FunctionCall.Args,
			})
			continue
		}
		out.Content += part.Text
	}
	return out, nil
}

// encodeGeminiContents maps provider-independent messages onto Gemini roles:
// assistant becomes model, system messages collect into systemInstruction,
// and tool results travel as functionResponse parts.
func encodeGeminiContents(messages []ports.ChatMessage) ([]geminiContent, *geminiContent) {
	var contents []geminiContent
	var system *geminiContent

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			if system == nil {
				system = &geminiContent{}
			}
			system.Parts = append(system.Parts, geminiPart{Text: msg.Content})
		case "assistant":
			content := geminiContent{Role: "model"}
			if msg.Content != "" {
				content.Parts = append(content.Parts, geminiPart{Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				content.Parts = append(content.Parts, geminiPart{
					FunctionCall: &geminiFunctionCall{Name: tc.Name, Args: tc.Arguments},
				})
			}
			contents = append(contents, content)
		case "tool":
			contents = append(contents, geminiContent{
				Role: "user",
				Parts: []geminiPart{{
					FunctionResponse: &geminiFunctionResponse{
						Name:     msg.Name,
						Response: map[string]interface{}{"content": rawOrQuoted(msg.Content)},
					},
				}},
			})
		default:
			contents = append(contents, geminiContent{
				Role:  "user",
				Parts: []geminiPart{{Text: msg.Content}},
			})
		}
	}
	return contents, system
}

// rawOrQuoted embeds valid JSON verbatim and falls back to a plain string
// for tool results that are not JSON (error text).
func rawOrQuoted(s string) interface{} {
	if json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	return s
}
