package msgtui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/campushustle/hustle-tui/internal/api"
	"github.com/campushustle/hustle-tui/internal/logging"
	"github.com/campushustle/hustle-tui/internal/msgtui/styles"
)

type newChatState int

const (
	chatClosed newChatState = iota
	chatSearchEmpty
	chatSearching
	chatResultsShown
	chatUserSelected
	chatSubmitting
)

type newChatFocus int

const (
	focusSearch newChatFocus = iota
	focusSubject
	focusMessage
)

// searchDebounceMsg fires when the debounce window for a search keystroke
// elapses. Only the newest seq is honored.
type searchDebounceMsg struct {
	seq int
}

// searchResultMsg carries a completed user search.
type searchResultMsg struct {
	seq     int
	results []api.UserSearchResult
	err     error
}

// conversationCreatedMsg reports the outcome of the create-and-send submit.
// The app consumes it to splice the conversation into the list and open it.
// When the conversation was created but the first message failed to send,
// initialMessage carries the draft so it is not lost.
type conversationCreatedMsg struct {
	conversation   api.Conversation
	initialMessage string
	err            error
}

// newChatModel is the new-conversation modal: debounced user search, a
// recipient pick, and an initial message that creates the conversation.
//
// searchSeq plays the same staleness role as the thread's seq: every
// keystroke bumps it, and debounce timers and search responses tagged with an
// older seq are dropped.
type newChatModel struct {
	client Client
	log    zerolog.Logger
	selfID int64

	debounce time.Duration
	minChars int
	limit    int

	state     newChatState
	focus     newChatFocus
	searchSeq int

	searchInput  textinput.Model
	subjectInput textinput.Model
	messageInput textinput.Model

	results   []api.UserSearchResult
	cursor    int
	selected  *api.UserSearchResult
	submitErr error

	theme styles.Theme
	width int
}

func newNewChatModel(client Client, selfID int64, debounce time.Duration, minChars, limit int, theme styles.Theme) newChatModel {
	searchInput := textinput.New()
	searchInput.Placeholder = "Search users..."
	searchInput.Prompt = "@ "
	searchInput.CharLimit = 100

	subjectInput := textinput.New()
	subjectInput.Placeholder = "Subject (optional)"
	subjectInput.Prompt = "# "
	subjectInput.CharLimit = 200

	messageInput := textinput.New()
	messageInput.Placeholder = "First message..."
	messageInput.Prompt = "> "
	messageInput.CharLimit = 2000

	return newChatModel{
		client:       client,
		log:          logging.Component("newchat"),
		selfID:       selfID,
		debounce:     debounce,
		minChars:     minChars,
		limit:        limit,
		state:        chatClosed,
		searchInput:  searchInput,
		subjectInput: subjectInput,
		messageInput: messageInput,
		theme:        theme,
	}
}

// Open resets the modal to an empty search.
func (m *newChatModel) Open() {
	m.searchSeq++
	m.state = chatSearchEmpty
	m.focus = focusSearch
	m.results = nil
	m.cursor = 0
	m.selected = nil
	m.submitErr = nil
	m.searchInput.Reset()
	m.subjectInput.Reset()
	m.messageInput.Reset()
	m.searchInput.Focus()
	m.subjectInput.Blur()
	m.messageInput.Blur()
}

// Close abandons the modal. The seq bump orphans any pending debounce timer
// or search request.
func (m *newChatModel) Close() {
	m.searchSeq++
	m.state = chatClosed
	m.results = nil
	m.selected = nil
	m.submitErr = nil
}

// IsOpen reports whether the modal is visible.
func (m *newChatModel) IsOpen() bool {
	return m.state != chatClosed
}

// Submitting reports whether a create is in flight.
func (m *newChatModel) Submitting() bool {
	return m.state == chatSubmitting
}

// onQueryChanged reacts to a search keystroke: short queries clear results
// immediately, longer ones arm the debounce timer.
func (m *newChatModel) onQueryChanged() tea.Cmd {
	m.searchSeq++
	m.selected = nil
	m.cursor = 0

	query := strings.TrimSpace(m.searchInput.Value())
	if len([]rune(query)) < m.minChars {
		m.results = nil
		m.state = chatSearchEmpty
		return nil
	}

	m.state = chatSearching
	seq := m.searchSeq
	return tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return searchDebounceMsg{seq: seq}
	})
}

func (m *newChatModel) searchCmd(query string, seq int) tea.Cmd {
	client := m.client
	limit := m.limit
	return func() tea.Msg {
		results, err := client.SearchUsers(context.Background(), query, limit)
		return searchResultMsg{seq: seq, results: results, err: err}
	}
}

// Submit creates the conversation with the chosen user and sends the first
// message. Requires a selected user and non-blank message.
func (m *newChatModel) Submit() tea.Cmd {
	if m.state == chatSubmitting || m.selected == nil {
		return nil
	}
	message := strings.TrimSpace(m.messageInput.Value())
	if message == "" {
		return nil
	}

	subject := strings.TrimSpace(m.subjectInput.Value())
	if subject == "" {
		subject = "Chat with " + m.selected.Username
	}

	m.state = chatSubmitting
	m.submitErr = nil

	client := m.client
	participantID := m.selected.ID
	return func() tea.Msg {
		ctx := context.Background()
		conv, err := client.CreateConversation(ctx, api.CreateConversationRequest{
			ParticipantIDs: []int64{participantID},
			Subject:        subject,
		})
		if err != nil {
			return conversationCreatedMsg{err: err}
		}
		if _, err := client.SendMessage(ctx, api.SendMessageRequest{
			ConversationID: conv.ID,
			Content:        message,
			MessageType:    api.MessageTypeText,
		}); err != nil {
			// The conversation exists; surface it anyway so the user can
			// retry the message from the thread.
			return conversationCreatedMsg{conversation: conv, initialMessage: message, err: err}
		}
		return conversationCreatedMsg{conversation: conv}
	}
}

func (m *newChatModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case searchDebounceMsg:
		if msg.seq != m.searchSeq || m.state == chatClosed {
			return nil
		}
		query := strings.TrimSpace(m.searchInput.Value())
		if len([]rune(query)) < m.minChars {
			return nil
		}
		return m.searchCmd(query, msg.seq)

	case searchResultMsg:
		if msg.seq != m.searchSeq || m.state == chatClosed {
			return nil
		}
		if msg.err != nil {
			// Search failures degrade to an empty result list.
			m.log.Debug().Err(msg.err).Msg("user search failed")
			m.results = nil
			m.state = chatResultsShown
			return nil
		}
		m.results = msg.results
		m.cursor = 0
		m.state = chatResultsShown
		return nil

	case conversationCreatedMsg:
		if m.state != chatSubmitting {
			return nil
		}
		if msg.err != nil && msg.conversation.ID == 0 {
			// Create failed outright; keep the modal open with inputs intact.
			m.state = chatUserSelected
			m.submitErr = msg.err
			m.log.Warn().Err(msg.err).Msg("conversation create failed")
			return nil
		}
		return nil
	}
	return nil
}

func (m *newChatModel) HandleKey(msg tea.KeyMsg) tea.Cmd {
	if m.state == chatSubmitting {
		return nil
	}

	switch msg.Type {
	case tea.KeyTab:
		m.cycleFocus(1)
		return nil
	case tea.KeyShiftTab:
		m.cycleFocus(-1)
		return nil
	case tea.KeyUp:
		if m.focus == focusSearch && m.cursor > 0 {
			m.cursor--
		}
		return nil
	case tea.KeyDown:
		if m.focus == focusSearch && m.cursor < len(m.results)-1 {
			m.cursor++
		}
		return nil
	case tea.KeyEnter:
		switch m.focus {
		case focusSearch:
			m.selectCursor()
			return nil
		case focusSubject:
			m.cycleFocus(1)
			return nil
		case focusMessage:
			return m.Submit()
		}
		return nil
	}

	switch m.focus {
	case focusSearch:
		before := m.searchInput.Value()
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		if m.searchInput.Value() != before {
			return tea.Batch(cmd, m.onQueryChanged())
		}
		return cmd
	case focusSubject:
		var cmd tea.Cmd
		m.subjectInput, cmd = m.subjectInput.Update(msg)
		return cmd
	default:
		var cmd tea.Cmd
		m.messageInput, cmd = m.messageInput.Update(msg)
		return cmd
	}
}

func (m *newChatModel) selectCursor() {
	if m.state != chatResultsShown || m.cursor < 0 || m.cursor >= len(m.results) {
		return
	}
	picked := m.results[m.cursor]
	m.selected = &picked
	m.state = chatUserSelected
	m.focus = focusMessage
	m.searchInput.Blur()
	m.messageInput.Focus()
}

func (m *newChatModel) cycleFocus(dir int) {
	order := []newChatFocus{focusSearch, focusSubject, focusMessage}
	for i, f := range order {
		if f == m.focus {
			m.focus = order[(i+dir+len(order))%len(order)]
			break
		}
	}
	m.searchInput.Blur()
	m.subjectInput.Blur()
	m.messageInput.Blur()
	switch m.focus {
	case focusSearch:
		m.searchInput.Focus()
	case focusSubject:
		m.subjectInput.Focus()
	case focusMessage:
		m.messageInput.Focus()
	}
}

func (m *newChatModel) SetSize(width int) {
	m.width = width
	inputWidth := max(width-8, 10)
	m.searchInput.Width = inputWidth
	m.subjectInput.Width = inputWidth
	m.messageInput.Width = inputWidth
}

func (m *newChatModel) View() string {
	theme := m.theme
	var b strings.Builder

	b.WriteString(theme.AccentStyle().Bold(true).Render("New conversation"))
	b.WriteString("\n\n")

	b.WriteString(m.searchInput.View())
	b.WriteString("\n")

	switch m.state {
	case chatSearchEmpty:
		b.WriteString(theme.MutedStyle().Render(fmt.Sprintf("Type at least %d characters to search.", m.minChars)))
		b.WriteString("\n")
	case chatSearching:
		b.WriteString(theme.MutedStyle().Render("Searching..."))
		b.WriteString("\n")
	case chatResultsShown:
		if len(m.results) == 0 {
			b.WriteString(theme.MutedStyle().Render("No users found."))
			b.WriteString("\n")
		}
	}

	for i, result := range m.results {
		marker := "  "
		if i == m.cursor && m.focus == focusSearch {
			marker = "> "
		}
		row := marker + result.Username
		if result.UserType != "" {
			row += theme.MutedStyle().Render(" (" + result.UserType + ")")
		}
		if result.Online() {
			row += " " + lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Status.Online)).Render("●")
		}
		if m.selected != nil && m.selected.ID == result.ID {
			row += theme.AccentStyle().Render(" ✓")
		}
		if i == m.cursor && m.focus == focusSearch {
			row = theme.SelectedStyle().Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	if m.selected != nil {
		b.WriteString("\n")
		b.WriteString(theme.MutedStyle().Render("To: ") + theme.AccentStyle().Render(m.selected.Username))
		b.WriteString("\n")
		b.WriteString(m.subjectInput.View())
		b.WriteString("\n")
		b.WriteString(m.messageInput.View())
		b.WriteString("\n")
	}

	if m.state == chatSubmitting {
		b.WriteString(theme.MutedStyle().Render("Creating conversation..."))
		b.WriteString("\n")
	}
	if m.submitErr != nil {
		b.WriteString(theme.ErrorStyle().Render("Could not start conversation: " + m.submitErr.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.MutedStyle().Render("enter select/send · tab next field · esc cancel"))
	return b.String()
}
