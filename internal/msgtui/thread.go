package msgtui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/rs/zerolog"

	"github.com/campushustle/hustle-tui/internal/api"
	"github.com/campushustle/hustle-tui/internal/logging"
	"github.com/campushustle/hustle-tui/internal/msgtui/styles"
)

type threadState int

const (
	threadIdle threadState = iota
	threadLoading
	threadReady
)

// threadLoadedMsg carries a completed history fetch. conversationID and seq
// identify the fetch that produced it; anything stale is dropped on arrival.
type threadLoadedMsg struct {
	conversationID int64
	seq            int
	messages       []api.Message
	err            error
}

// threadTickMsg drives the poll loop. Each open thread owns one tick chain,
// tagged with the seq it was started under.
type threadTickMsg struct {
	seq int
}

// sendResultMsg carries the outcome of a message send.
type sendResultMsg struct {
	conversationID int64
	seq            int
	message        api.Message
	err            error
}

// markReadDoneMsg reports a best-effort read receipt.
type markReadDoneMsg struct {
	messageID int64
	err       error
}

// threadModel is the message thread pane: history for one conversation,
// refreshed on a fixed poll interval, plus the compose input.
//
// seq is the staleness token. It is bumped on every open and close, and every
// async result carries the seq it was issued under. A result whose seq no
// longer matches belongs to a conversation the user already left and is
// discarded without touching state.
type threadModel struct {
	client       Client
	log          zerolog.Logger
	selfID       int64
	pollInterval time.Duration

	conversationID int64
	title          string
	seq            int
	state          threadState
	refreshing     bool
	// pendingRefresh queues one follow-up fetch for a send that confirmed
	// while a poll fetch was already in flight; that fetch may pre-date the
	// new message.
	pendingRefresh bool
	sending        bool

	messages     []api.Message
	loadErr      error
	sendErr      error
	lastMarkedID int64

	input    textinput.Model
	viewport viewport.Model
	colors   *styles.UserColorMapper
	theme    styles.Theme

	width  int
	height int
}

func newThreadModel(client Client, selfID int64, pollInterval time.Duration, theme styles.Theme, colors *styles.UserColorMapper) threadModel {
	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.CharLimit = 2000
	input.Prompt = "> "

	return threadModel{
		client:       client,
		log:          logging.Component("thread"),
		selfID:       selfID,
		pollInterval: pollInterval,
		state:        threadIdle,
		input:        input,
		viewport:     viewport.New(0, 0),
		colors:       colors,
		theme:        theme,
	}
}

// Open points the thread at a conversation and starts its poll loop. Any
// in-flight work for the previous conversation is orphaned by the seq bump.
func (m *threadModel) Open(conv api.Conversation) tea.Cmd {
	m.seq++
	m.conversationID = conv.ID
	m.title = conv.DisplayName(m.selfID)
	m.state = threadLoading
	m.refreshing = true
	m.pendingRefresh = false
	m.sending = false
	m.messages = nil
	m.loadErr = nil
	m.sendErr = nil
	m.lastMarkedID = 0
	m.input.Reset()

	m.log.Debug().Int64("conversation_id", conv.ID).Msg("thread opened")
	return tea.Batch(m.fetchCmd(), m.tickCmd())
}

// Close returns the thread to idle. The seq bump kills the poll chain and
// orphans any in-flight fetch or send.
func (m *threadModel) Close() {
	if m.state == threadIdle {
		return
	}
	m.log.Debug().Int64("conversation_id", m.conversationID).Msg("thread closed")
	m.seq++
	m.conversationID = 0
	m.title = ""
	m.state = threadIdle
	m.refreshing = false
	m.pendingRefresh = false
	m.sending = false
	m.messages = nil
	m.loadErr = nil
	m.sendErr = nil
	m.input.Reset()
}

// Active reports whether a conversation is open.
func (m *threadModel) Active() bool {
	return m.state != threadIdle
}

// ConversationID returns the open conversation, or 0 when idle.
func (m *threadModel) ConversationID() int64 {
	return m.conversationID
}

func (m *threadModel) fetchCmd() tea.Cmd {
	client := m.client
	conversationID := m.conversationID
	seq := m.seq
	return func() tea.Msg {
		messages, err := client.ListMessages(context.Background(), conversationID)
		return threadLoadedMsg{conversationID: conversationID, seq: seq, messages: messages, err: err}
	}
}

func (m *threadModel) tickCmd() tea.Cmd {
	seq := m.seq
	return tea.Tick(m.pollInterval, func(time.Time) tea.Msg {
		return threadTickMsg{seq: seq}
	})
}

// Send submits the compose input. Blank input and overlapping sends are
// rejected locally without a request.
func (m *threadModel) Send() tea.Cmd {
	if m.state == threadIdle || m.sending {
		return nil
	}
	content := strings.TrimSpace(m.input.Value())
	if content == "" {
		return nil
	}

	m.sending = true
	m.sendErr = nil

	client := m.client
	conversationID := m.conversationID
	seq := m.seq
	return func() tea.Msg {
		message, err := client.SendMessage(context.Background(), api.SendMessageRequest{
			ConversationID: conversationID,
			Content:        content,
			MessageType:    api.MessageTypeText,
		})
		return sendResultMsg{conversationID: conversationID, seq: seq, message: message, err: err}
	}
}

func (m *threadModel) markReadCmd(messageID int64) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.MarkMessageRead(context.Background(), messageID)
		return markReadDoneMsg{messageID: messageID, err: err}
	}
}

func (m *threadModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case threadTickMsg:
		if msg.seq != m.seq {
			// A tick from a previous conversation. Dropping it ends that
			// poll chain.
			return nil
		}
		cmds := []tea.Cmd{m.tickCmd()}
		if !m.refreshing {
			m.refreshing = true
			cmds = append(cmds, m.fetchCmd())
		}
		return tea.Batch(cmds...)

	case threadLoadedMsg:
		if msg.conversationID != m.conversationID || msg.seq != m.seq {
			return nil
		}
		m.refreshing = false
		var cmds []tea.Cmd
		if m.pendingRefresh {
			m.pendingRefresh = false
			m.refreshing = true
			cmds = append(cmds, m.fetchCmd())
		}
		if msg.err != nil {
			m.loadErr = msg.err
			m.log.Warn().Err(msg.err).Int64("conversation_id", m.conversationID).Msg("thread refresh failed")
			return tea.Batch(cmds...)
		}
		m.loadErr = nil
		m.applyMessages(msg.messages)
		if id := m.newestUnreadIncoming(); id != 0 && id != m.lastMarkedID {
			m.lastMarkedID = id
			cmds = append(cmds, m.markReadCmd(id))
		}
		return tea.Batch(cmds...)

	case sendResultMsg:
		if msg.conversationID != m.conversationID || msg.seq != m.seq {
			return nil
		}
		m.sending = false
		if msg.err != nil {
			// Keep the draft so the user can retry.
			m.sendErr = msg.err
			m.log.Warn().Err(msg.err).Int64("conversation_id", m.conversationID).Msg("send failed")
			return nil
		}
		m.sendErr = nil
		m.input.Reset()
		if m.refreshing {
			// The in-flight fetch may pre-date this message; queue another.
			m.pendingRefresh = true
			return nil
		}
		m.refreshing = true
		return m.fetchCmd()

	case markReadDoneMsg:
		if msg.err != nil {
			m.log.Debug().Err(msg.err).Int64("message_id", msg.messageID).Msg("mark read failed")
		}
		return nil
	}
	return nil
}

// HandleKey feeds a key into the compose input or the history viewport.
func (m *threadModel) HandleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		return m.Send()
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// Focus gives keyboard focus to the compose input.
func (m *threadModel) Focus() {
	m.input.Focus()
}

// Blur removes keyboard focus from the compose input.
func (m *threadModel) Blur() {
	m.input.Blur()
}

func (m *threadModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-4, 10)
	// Reserve rows for the header, compose line and any error line.
	m.viewport.Width = width
	m.viewport.Height = max(height-4, 1)
	m.renderHistory()
}

// applyMessages replaces the history wholesale with the server's view,
// ordered oldest first.
func (m *threadModel) applyMessages(messages []api.Message) {
	sorted := make([]api.Message, len(messages))
	copy(sorted, messages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	atBottom := m.viewport.AtBottom() || len(m.messages) == 0
	m.messages = sorted
	m.state = threadReady
	m.renderHistory()
	if atBottom {
		m.viewport.GotoBottom()
	}
}

// newestUnreadIncoming returns the id of the most recent unread message from
// another participant, or 0.
func (m *threadModel) newestUnreadIncoming() int64 {
	for i := len(m.messages) - 1; i >= 0; i-- {
		msg := m.messages[i]
		if msg.Sender.ID != m.selfID && !msg.IsRead {
			return msg.ID
		}
	}
	return 0
}

func (m *threadModel) renderHistory() {
	if m.viewport.Width <= 0 {
		return
	}
	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(msg))
	}
	m.viewport.SetContent(b.String())
}

func (m *threadModel) renderMessage(msg api.Message) string {
	theme := m.theme
	wrapWidth := max(m.viewport.Width-2, 20)

	var senderStyle lipgloss.Style
	sender := msg.Sender.Username
	switch {
	case msg.MessageType == api.MessageTypeSystem:
		senderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Message.System))
		sender = "system"
	case msg.Sender.ID == m.selfID:
		senderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Message.Own)).Bold(true)
		sender = "you"
	default:
		senderStyle = m.colors.Foreground(sender)
	}

	header := fmt.Sprintf("%s  %s",
		senderStyle.Render(sender),
		theme.MutedStyle().Render(formatThreadTime(msg.CreatedAt)))
	body := wordwrap.String(msg.Content, wrapWidth)
	return header + "\n" + body + "\n"
}

func (m *threadModel) View(focused bool) string {
	theme := m.theme
	if m.state == threadIdle {
		return theme.MutedStyle().Render("Select a conversation to start messaging.")
	}

	var b strings.Builder

	header := theme.AccentStyle().Bold(true).Render(m.title)
	if m.refreshing && m.state == threadReady {
		header += theme.MutedStyle().Render("  refreshing...")
	}
	b.WriteString(header)
	b.WriteString("\n")

	switch {
	case m.state == threadLoading && m.loadErr != nil:
		b.WriteString(theme.ErrorStyle().Render("Failed to load messages: " + m.loadErr.Error()))
	case m.state == threadLoading:
		b.WriteString(theme.MutedStyle().Render("Loading messages..."))
	case len(m.messages) == 0:
		b.WriteString(theme.MutedStyle().Render("No messages yet. Say hello."))
	default:
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")

	if m.loadErr != nil && m.state == threadReady {
		b.WriteString(theme.ErrorStyle().Render("Refresh failed: " + m.loadErr.Error()))
		b.WriteString("\n")
	}
	if m.sendErr != nil {
		b.WriteString(theme.ErrorStyle().Render("Send failed: " + m.sendErr.Error()))
		b.WriteString("\n")
	}

	compose := m.input.View()
	if m.sending {
		compose += theme.MutedStyle().Render("  sending...")
	}
	if focused {
		b.WriteString(compose)
	} else {
		b.WriteString(theme.MutedStyle().Render(compose))
	}

	return b.String()
}
