// Package msgtui implements the terminal messaging UI: a conversation list,
// a polling message thread, and a new-conversation picker.
package msgtui

import (
	"context"

	"github.com/campushustle/hustle-tui/internal/api"
)

// Client is the backend surface the UI depends on. *api.Client satisfies it;
// tests substitute a fake.
type Client interface {
	ListConversations(ctx context.Context) ([]api.Conversation, error)
	ListMessages(ctx context.Context, conversationID int64) ([]api.Message, error)
	SendMessage(ctx context.Context, req api.SendMessageRequest) (api.Message, error)
	CreateConversation(ctx context.Context, req api.CreateConversationRequest) (api.Conversation, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]api.UserSearchResult, error)
	MarkMessageRead(ctx context.Context, messageID int64) error
	UnreadCount(ctx context.Context) (int, error)
}
