package msgtui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/campushustle/hustle-tui/internal/api"
)

// fakeClient records calls and serves canned data.
type fakeClient struct {
	mu sync.Mutex

	conversations []api.Conversation
	messages      map[int64][]api.Message
	searchResults []api.UserSearchResult
	created       api.Conversation
	unread        int

	listConvErr error
	listMsgErr  error
	sendErr     error
	createErr   error
	searchErr   error

	listConvCalls int
	listMsgCalls  int
	sendCalls     int
	createCalls   int
	searchCalls   int

	sentRequests   []api.SendMessageRequest
	createRequests []api.CreateConversationRequest
	searchQueries  []string
	markedRead     []int64
}

func (f *fakeClient) ListConversations(context.Context) ([]api.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listConvCalls++
	if f.listConvErr != nil {
		return nil, f.listConvErr
	}
	return f.conversations, nil
}

func (f *fakeClient) ListMessages(_ context.Context, conversationID int64) ([]api.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listMsgCalls++
	if f.listMsgErr != nil {
		return nil, f.listMsgErr
	}
	return f.messages[conversationID], nil
}

func (f *fakeClient) SendMessage(_ context.Context, req api.SendMessageRequest) (api.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	f.sentRequests = append(f.sentRequests, req)
	if f.sendErr != nil {
		return api.Message{}, f.sendErr
	}
	return api.Message{ID: int64(1000 + f.sendCalls), ConversationID: req.ConversationID, Content: req.Content, CreatedAt: time.Now()}, nil
}

func (f *fakeClient) CreateConversation(_ context.Context, req api.CreateConversationRequest) (api.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.createRequests = append(f.createRequests, req)
	if f.createErr != nil {
		return api.Conversation{}, f.createErr
	}
	return f.created, nil
}

func (f *fakeClient) SearchUsers(_ context.Context, query string, limit int) ([]api.UserSearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	f.searchQueries = append(f.searchQueries, query)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResults, nil
}

func (f *fakeClient) MarkMessageRead(_ context.Context, messageID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markedRead = append(f.markedRead, messageID)
	return nil
}

func (f *fakeClient) UnreadCount(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unread, nil
}

// execCmd runs a command tree and returns every message it produces.
func execCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, execCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// feedNonTicks executes a command and feeds everything except poll ticks
// back into the model, recursively, so tests settle instead of looping
// forever on the tick chain.
func feedNonTicks(m *threadModel, cmd tea.Cmd) {
	for _, msg := range execCmd(cmd) {
		switch msg.(type) {
		case threadTickMsg, unreadTickMsg:
			continue
		}
		feedNonTicks(m, m.Update(msg))
	}
}
