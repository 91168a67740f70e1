// Package assistant implements the conversational layer over the analysis
// tools: conversation records, the LLM tool-dispatch loop, and the chunked
// event stream consumed by the web client.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"datalens/domain/chat"
	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/internal"
	"datalens/ports"
)

const (
	// maxToolRounds bounds the dispatch loop so a model that keeps asking
	// for tools cannot spin forever.
	maxToolRounds = 4

	// historyLimit caps how many stored turns are replayed to the model.
	historyLimit = 20

	defaultTitle  = "New conversation"
	titleMaxRunes = 50

	toolLimitReply = "I reached the tool call limit before finishing the analysis. The tool results gathered so far are attached."
)

// ClientFactory builds an LLM client for the active settings. Injected so
// tests can script completions.
type ClientFactory func(s *chat.Settings) ports.LLMClient

// Service owns conversations and produces assistant replies
type Service struct {
	conversations ports.ConversationRepository
	datasets      ports.DatasetRepository
	settings      ports.SettingsRepository
	newClient     ClientFactory
	tools         *Toolset
	logger        *internal.Logger
}

// NewService creates the assistant service
func NewService(
	conversations ports.ConversationRepository,
	datasets ports.DatasetRepository,
	settings ports.SettingsRepository,
	newClient ClientFactory,
	tools *Toolset,
	logger *internal.Logger,
) *Service {
	return &Service{
		conversations: conversations,
		datasets:      datasets,
		settings:      settings,
		newClient:     newClient,
		tools:         tools,
		logger:        logger.WithComponent("Assistant"),
	}
}

// StartConversation opens a conversation about a ready dataset
func (s *Service) StartConversation(ctx context.Context, datasetID core.DatasetID, title string) (*chat.Conversation, error) {
	ds, err := s.datasets.GetByID(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	if ds.Status != dataset.StatusReady {
		return nil, core.NewValidationError("dataset", fmt.Sprintf("dataset %s is not ready (status %s)", ds.ID, ds.Status))
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultTitle
	}

	now := core.Now()
	conv := &chat.Conversation{
		ID:        core.ConversationID(core.NewID()),
		DatasetID: datasetID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.conversations.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}
	s.logger.Info("Started conversation %s on dataset %s", conv.ID, datasetID)
	return conv, nil
}

// ListConversations returns every conversation, most recently active first
func (s *Service) ListConversations(ctx context.Context) ([]*chat.Conversation, error) {
	return s.conversations.ListConversations(ctx)
}

// GetConversation returns one conversation's metadata
func (s *Service) GetConversation(ctx context.Context, id core.ConversationID) (*chat.Conversation, error) {
	return s.conversations.GetConversation(ctx, id)
}

// DeleteConversation removes a conversation and its messages
func (s *Service) DeleteConversation(ctx context.Context, id core.ConversationID) error {
	return s.conversations.DeleteConversation(ctx, id)
}

// Messages returns a conversation's transcript in append order
func (s *Service) Messages(ctx context.Context, id core.ConversationID) ([]*chat.Message, error) {
	return s.conversations.GetMessages(ctx, id)
}

// Send runs one user message through the tool loop and returns the persisted
// assistant reply with its tool-call records attached.
func (s *Service) Send(ctx context.Context, convID core.ConversationID, content string) (*chat.Message, error) {
	return s.run(ctx, convID, content, func(chat.StreamChunk) {})
}

// Stream runs one user message through the tool loop, emitting chunks as the
// reply is produced. The channel closes after the final done chunk. Errors
// that occur before the loop starts are returned directly so the HTTP layer
// can map them to a status code.
func (s *Service) Stream(ctx context.Context, convID core.ConversationID, content string) (<-chan chat.StreamChunk, error) {
	if _, err := s.conversations.GetConversation(ctx, convID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, core.NewValidationError("message", "message content is required")
	}

	out := make(chan chat.StreamChunk, 16)
	go func() {
		defer close(out)
		emit := func(c chat.StreamChunk) {
			select {
			case out <- c:
			case <-ctx.Done():
			}
		}
		if _, err := s.run(ctx, convID, content, emit); err != nil {
			emit(chat.StreamChunk{Type: chat.ChunkError, Error: err.Error()})
		}
		emit(chat.StreamChunk{Type: chat.ChunkDone})
	}()
	return out, nil
}

// run is the tool-dispatch loop: append the user message, replay history to
// the model with the tool schemas, execute any requested tools against the
// conversation's dataset, feed results back, and persist the final reply.
func (s *Service) run(ctx context.Context, convID core.ConversationID, content string, emit func(chat.StreamChunk)) (*chat.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, core.NewValidationError("message", "message content is required")
	}

	conv, err := s.conversations.GetConversation(ctx, convID)
	if err != nil {
		return nil, err
	}
	ds, err := s.datasets.GetByID(ctx, conv.DatasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation dataset: %w", err)
	}
	history, err := s.conversations.GetMessages(ctx, convID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	client := s.newClient(settings)

	userMsg := &chat.Message{
		ID:        core.MessageID(core.NewID()),
		Role:      chat.RoleUser,
		Content:   content,
		CreatedAt: core.Now(),
	}
	if err := s.conversations.AppendMessage(ctx, convID, userMsg); err != nil {
		return nil, err
	}
	s.retitleFromFirstMessage(ctx, conv, history, content)

	transcript := buildTranscript(ds, history, content)

	var (
		replyContent string
		toolRecords  []chat.ToolCall
		answered     bool
	)
	for round := 0; round < maxToolRounds; round++ {
		resp, err := client.ChatCompletion(ctx, ports.ChatRequest{
			Model:    settings.Model,
			Messages: transcript,
			Tools:    s.tools.Definitions(),
		})
		if err != nil {
			return nil, fmt.Errorf("chat completion failed: %w", err)
		}
		if resp.Usage != nil {
			s.logger.Debug("Completion used %d tokens via %s", resp.Usage.TotalTokens, resp.Usage.Provider)
		}

		if len(resp.ToolCalls) == 0 {
			replyContent = resp.Content
			answered = true
			if replyContent != "" {
				emit(chat.StreamChunk{Type: chat.ChunkContent, Content: replyContent})
			}
			break
		}

		transcript = append(transcript, ports.ChatMessage{
			Role:      string(chat.RoleAssistant),
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			record, resultMsg := s.invokeTool(ctx, conv.DatasetID.String(), call)
			toolRecords = append(toolRecords, record)
			transcript = append(transcript, resultMsg)

			chunk := chat.StreamChunk{
				Type:     chat.ChunkToolCall,
				Tool:     record.Name,
				ToolArgs: record.Arguments,
				Result:   record.Result,
				Status:   "complete",
			}
			if record.Error != "" {
				chunk.Status = "failed"
				chunk.Error = record.Error
			}
			emit(chunk)
		}
	}

	if !answered {
		s.logger.Warn("Conversation %s hit the tool round limit", convID)
		replyContent = toolLimitReply
		emit(chat.StreamChunk{Type: chat.ChunkContent, Content: replyContent})
	}

	reply := &chat.Message{
		ID:        core.MessageID(core.NewID()),
		Role:      chat.RoleAssistant,
		Content:   replyContent,
		ToolCalls: toolRecords,
		CreatedAt: core.Now(),
	}
	if err := s.conversations.AppendMessage(ctx, convID, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// invokeTool executes one requested tool and shapes both the persistent
// record and the tool message fed back to the model. Tool failures are
// reported to the model as an error payload instead of aborting the loop,
// so it can recover or explain.
func (s *Service) invokeTool(ctx context.Context, datasetID string, call ports.ToolCallRequest) (chat.ToolCall, ports.ChatMessage) {
	started := time.Now()
	result, err := s.tools.Run(ctx, datasetID, call)

	record := chat.ToolCall{
		ID:         call.ID,
		Name:       call.Name,
		Arguments:  call.Arguments,
		DurationMS: time.Since(started).Milliseconds(),
	}
	var feedback string
	if err != nil {
		record.Error = err.Error()
		payload, _ := json.Marshal(map[string]string{"error": err.Error()})
		feedback = string(payload)
		s.logger.Warn("Tool %s failed: %v", call.Name, err)
	} else {
		record.Result = result
		feedback = string(result)
		s.logger.Debug("Tool %s completed in %dms", call.Name, record.DurationMS)
	}

	return record, ports.ChatMessage{
		Role:       string(chat.RoleTool),
		Content:    feedback,
		ToolCallID: call.ID,
		Name:       call.Name,
	}
}

// retitleFromFirstMessage names a still-untitled conversation after its
// first user message. Best effort; a failed title update never blocks the
// reply.
func (s *Service) retitleFromFirstMessage(ctx context.Context, conv *chat.Conversation, history []*chat.Message, content string) {
	if len(history) > 0 || conv.Title != defaultTitle {
		return
	}
	conv.Title = truncateTitle(content)
	if err := s.conversations.UpdateConversation(ctx, conv); err != nil {
		s.logger.Warn("Failed to retitle conversation %s: %v", conv.ID, err)
	}
}

func truncateTitle(content string) string {
	runes := []rune(strings.TrimSpace(content))
	if len(runes) <= titleMaxRunes {
		return string(runes)
	}
	return strings.TrimSpace(string(runes[:titleMaxRunes])) + "..."
}

// buildTranscript assembles the request messages: system prompt with the
// dataset schema, recent user/assistant turns, then the new message. Tool
// records from past turns are not replayed.
func buildTranscript(ds *dataset.Dataset, history []*chat.Message, content string) []ports.ChatMessage {
	msgs := make([]ports.ChatMessage, 0, len(history)+2)
	msgs = append(msgs, ports.ChatMessage{Role: string(chat.RoleSystem), Content: systemPrompt(ds)})

	start := 0
	if len(history) > historyLimit {
		start = len(history) - historyLimit
	}
	for _, m := range history[start:] {
		if m.Role != chat.RoleUser && m.Role != chat.RoleAssistant {
			continue
		}
		if m.Content == "" {
			continue
		}
		msgs = append(msgs, ports.ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	return append(msgs, ports.ChatMessage{Role: string(chat.RoleUser), Content: content})
}

func systemPrompt(ds *dataset.Dataset) string {
	var b strings.Builder
	b.WriteString("You are an expert data analyst assistant. You have access to tools for:\n")
	b.WriteString("1. Exploratory Data Analysis - statistics, correlations, distributions, and missing values\n")
	b.WriteString("2. Forecasting - extrapolate a numeric column with a linear trend or moving average\n")
	b.WriteString("3. Column Information - names, types, and sample values for every column\n\n")
	fmt.Fprintf(&b, "The user is working with the dataset %q (%d rows, %d columns):\n", ds.Name, ds.Rows, len(ds.Columns))
	for _, col := range ds.Columns {
		fmt.Fprintf(&b, "- %s (%s)\n", col.Name, col.Type)
	}
	b.WriteString("\nUse the tools to ground your answers in the actual data. Provide clear explanations of your findings and be proactive in suggesting relevant analyses.")
	return b.String()
}
