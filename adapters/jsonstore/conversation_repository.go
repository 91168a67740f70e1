package jsonstore

import (
	"context"
	"sort"

	"datalens/domain/chat"
	"datalens/domain/core"
	"datalens/ports"
)

// conversationRepository implements the ConversationRepository interface
type conversationRepository struct {
	store *Store
}

// NewConversationRepository creates a conversation repository backed by the store
func NewConversationRepository(store *Store) ports.ConversationRepository {
	return &conversationRepository{store: store}
}

// CreateConversation inserts a new conversation with no messages
func (r *conversationRepository) CreateConversation(ctx context.Context, conv *chat.Conversation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.guard(); err != nil {
		return err
	}

	id := conv.ID.String()
	if _, exists := r.store.state.Conversations[id]; exists {
		return core.ErrDuplicateID
	}

	cp := *conv
	r.store.state.Conversations[id] = &conversationRecord{Conversation: &cp}
	r.store.markDirty()
	return nil
}

// GetConversation retrieves a conversation by its ID
func (r *conversationRepository) GetConversation(ctx context.Context, id core.ConversationID) (*chat.Conversation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, exists := r.store.state.Conversations[id.String()]
	if !exists {
		return nil, core.NewNotFoundError("conversation", id.String())
	}
	cp := *rec.Conversation
	return &cp, nil
}

// ListConversations returns every conversation, most recently active first
func (r *conversationRepository) ListConversations(ctx context.Context) ([]*chat.Conversation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	list := make([]*chat.Conversation, 0, len(r.store.state.Conversations))
	for _, rec := range r.store.state.Conversations {
		cp := *rec.Conversation
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})
	return list, nil
}

// UpdateConversation replaces a conversation's metadata. Messages are
// untouched.
func (r *conversationRepository) UpdateConversation(ctx context.Context, conv *chat.Conversation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.guard(); err != nil {
		return err
	}

	rec, exists := r.store.state.Conversations[conv.ID.String()]
	if !exists {
		return core.NewNotFoundError("conversation", conv.ID.String())
	}

	cp := *conv
	rec.Conversation = &cp
	r.store.markDirty()
	return nil
}

// DeleteConversation removes a conversation and its messages
func (r *conversationRepository) DeleteConversation(ctx context.Context, id core.ConversationID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.guard(); err != nil {
		return err
	}

	if _, exists := r.store.state.Conversations[id.String()]; !exists {
		return core.NewNotFoundError("conversation", id.String())
	}

	delete(r.store.state.Conversations, id.String())
	r.store.markDirty()
	return nil
}

// AppendMessage adds a message to a conversation and bumps its activity time
func (r *conversationRepository) AppendMessage(ctx context.Context, convID core.ConversationID, msg *chat.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.guard(); err != nil {
		return err
	}

	rec, exists := r.store.state.Conversations[convID.String()]
	if !exists {
		return core.NewNotFoundError("conversation", convID.String())
	}

	cp := *msg
	rec.Messages = append(rec.Messages, &cp)
	rec.Conversation.UpdatedAt = msg.CreatedAt
	r.store.markDirty()
	return nil
}

// GetMessages returns a conversation's messages in append order
func (r *conversationRepository) GetMessages(ctx context.Context, convID core.ConversationID) ([]*chat.Message, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, exists := r.store.state.Conversations[convID.String()]
	if !exists {
		return nil, core.NewNotFoundError("conversation", convID.String())
	}
	return append([]*chat.Message(nil), rec.Messages...), nil
}
