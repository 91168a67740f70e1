package ports

import (
	"context"

	"datalens/domain/chat"
	"datalens/domain/core"
)

// ConversationRepository defines the interface for chat persistence
type ConversationRepository interface {
	// Conversation operations
	CreateConversation(ctx context.Context, conv *chat.Conversation) error
	GetConversation(ctx context.Context, id core.ConversationID) (*chat.Conversation, error)
	ListConversations(ctx context.Context) ([]*chat.Conversation, error)
	UpdateConversation(ctx context.Context, conv *chat.Conversation) error
	DeleteConversation(ctx context.Context, id core.ConversationID) error

	// Message operations
	AppendMessage(ctx context.Context, convID core.ConversationID, msg *chat.Message) error
	GetMessages(ctx context.Context, convID core.ConversationID) ([]*chat.Message, error)
}
