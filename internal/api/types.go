package api

import "time"

// Message types produced by the backend.
const (
	MessageTypeText   = "text"
	MessageTypeFile   = "file"
	MessageTypeSystem = "system"
)

// User types known to the marketplace.
const (
	UserTypeProvider  = "provider"
	UserTypeRequester = "requester"
)

// UserSummary is the participant/sender projection embedded in conversations
// and messages.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	UserType string `json:"user_type,omitempty"`
}

// UserProfile carries the public profile fields returned by user search.
type UserProfile struct {
	ProviderMode string  `json:"provider_mode,omitempty"` // "online" or "offline"
	HustleScore  float64 `json:"hustle_score,omitempty"`
}

// UserSearchResult is a user row from /users/search/. Ephemeral: exists only
// while the new-conversation picker is open.
type UserSearchResult struct {
	ID       int64        `json:"id"`
	Username string       `json:"username"`
	UserType string       `json:"user_type,omitempty"`
	Profile  *UserProfile `json:"profile,omitempty"`
}

// Online reports whether the user advertises online availability.
func (u UserSearchResult) Online() bool {
	return u.Profile != nil && u.Profile.ProviderMode == "online"
}

// ProjectRef is the project a conversation may be attached to.
type ProjectRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title,omitempty"`
}

// Message is a single message in a conversation. Messages are immutable once
// created; ordering is by CreatedAt ascending within a conversation.
type Message struct {
	ID             int64       `json:"id"`
	ConversationID int64       `json:"conversation"`
	Sender         UserSummary `json:"sender"`
	MessageType    string      `json:"message_type"`
	Content        string      `json:"content"`
	IsRead         bool        `json:"is_read"`
	ReadAt         *time.Time  `json:"read_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Conversation is a participant set plus message history, identified by a
// server-assigned id. The client never mutates one except to splice a freshly
// created conversation into the head of the list.
type Conversation struct {
	ID            int64         `json:"id"`
	Subject       string        `json:"subject"`
	Participants  []UserSummary `json:"participants"`
	Project       *ProjectRef   `json:"project,omitempty"`
	LastMessage   *Message      `json:"last_message,omitempty"`
	UnreadCount   int           `json:"unread_count"`
	LastMessageAt *time.Time    `json:"last_message_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// OtherParticipant returns the first participant that is not selfID. Falls
// back to the zero UserSummary for malformed conversations.
func (c Conversation) OtherParticipant(selfID int64) UserSummary {
	for _, p := range c.Participants {
		if p.ID != selfID {
			return p
		}
	}
	return UserSummary{}
}

// DisplayName returns the subject, or a participant-derived fallback.
func (c Conversation) DisplayName(selfID int64) string {
	if c.Subject != "" {
		return c.Subject
	}
	if other := c.OtherParticipant(selfID); other.Username != "" {
		return other.Username
	}
	return "Conversation"
}

// SendMessageRequest is the POST /messages/ payload.
type SendMessageRequest struct {
	ConversationID int64  `json:"conversation"`
	Content        string `json:"content"`
	MessageType    string `json:"message_type"`
}

// CreateConversationRequest is the POST /conversations/ payload.
type CreateConversationRequest struct {
	ParticipantIDs []int64 `json:"participant_ids"`
	Subject        string  `json:"subject"`
	ProjectID      *int64  `json:"project_id,omitempty"`
}

// LoginResult is the POST /users/login/ response.
type LoginResult struct {
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
	User    UserSummary `json:"user"`
}
