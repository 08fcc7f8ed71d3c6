package msgtui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"
	"github.com/rs/zerolog"

	"github.com/campushustle/hustle-tui/internal/api"
	"github.com/campushustle/hustle-tui/internal/logging"
	"github.com/campushustle/hustle-tui/internal/msgtui/styles"
)

type listState int

const (
	listLoading listState = iota
	listReady
	listFailed
)

// conversationsLoadedMsg carries a completed conversation list fetch.
type conversationsLoadedMsg struct {
	seq           int
	conversations []api.Conversation
	err           error
}

// convListModel is the conversation list pane. It loads once on startup and
// again on manual reload; the filter is applied locally and never refetches.
type convListModel struct {
	client Client
	log    zerolog.Logger
	selfID int64

	seq           int
	state         listState
	conversations []api.Conversation
	loadErr       error

	cursor      int
	filtering   bool
	filterInput textinput.Model

	theme  styles.Theme
	width  int
	height int
}

func newConvListModel(client Client, selfID int64, theme styles.Theme) convListModel {
	filterInput := textinput.New()
	filterInput.Placeholder = "filter..."
	filterInput.Prompt = "/ "
	filterInput.CharLimit = 100

	return convListModel{
		client:      client,
		log:         logging.Component("convlist"),
		selfID:      selfID,
		state:       listLoading,
		filterInput: filterInput,
		theme:       theme,
	}
}

// Reload drops into the loading state and refetches the list. The previous
// list stays on screen until the fetch settles.
func (m *convListModel) Reload() tea.Cmd {
	m.seq++
	m.state = listLoading
	m.loadErr = nil

	client := m.client
	seq := m.seq
	return func() tea.Msg {
		conversations, err := client.ListConversations(context.Background())
		return conversationsLoadedMsg{seq: seq, conversations: conversations, err: err}
	}
}

func (m *convListModel) Update(msg tea.Msg) tea.Cmd {
	loaded, ok := msg.(conversationsLoadedMsg)
	if !ok || loaded.seq != m.seq {
		return nil
	}
	if loaded.err != nil {
		m.state = listFailed
		m.loadErr = loaded.err
		m.log.Warn().Err(loaded.err).Msg("conversation list load failed")
		return nil
	}
	m.state = listReady
	m.loadErr = nil
	m.conversations = loaded.conversations
	m.clampCursor()
	m.log.Debug().Int("count", len(loaded.conversations)).Msg("conversation list loaded")
	return nil
}

// Query returns the current filter text.
func (m *convListModel) Query() string {
	return m.filterInput.Value()
}

// Visible returns the conversations matching the filter, in list order. An
// empty filter returns the full list untouched.
func (m *convListModel) Visible() []api.Conversation {
	query := strings.ToLower(strings.TrimSpace(m.Query()))
	if query == "" {
		return m.conversations
	}
	var visible []api.Conversation
	for _, conv := range m.conversations {
		if m.matches(conv, query) {
			visible = append(visible, conv)
		}
	}
	return visible
}

// matches reports whether a conversation's subject or any participant
// username contains the lowercased query.
func (m *convListModel) matches(conv api.Conversation, query string) bool {
	if strings.Contains(strings.ToLower(conv.Subject), query) {
		return true
	}
	for _, p := range conv.Participants {
		if strings.Contains(strings.ToLower(p.Username), query) {
			return true
		}
	}
	return false
}

// Selected returns the conversation under the cursor.
func (m *convListModel) Selected() (api.Conversation, bool) {
	visible := m.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return api.Conversation{}, false
	}
	return visible[m.cursor], true
}

// Unshift splices a fresh conversation onto the head of the list and selects
// it. No refetch; the server copy arrives with the next reload.
func (m *convListModel) Unshift(conv api.Conversation) {
	m.conversations = append([]api.Conversation{conv}, m.conversations...)
	m.filtering = false
	m.filterInput.Reset()
	m.cursor = 0
	if m.state != listReady {
		m.state = listReady
		m.loadErr = nil
	}
}

// SelectConversation moves the cursor to the conversation with the given id.
func (m *convListModel) SelectConversation(id int64) {
	for i, conv := range m.Visible() {
		if conv.ID == id {
			m.cursor = i
			return
		}
	}
}

// DismissError clears a failed-load banner, keeping whatever list is shown.
func (m *convListModel) DismissError() {
	if m.state == listFailed {
		m.loadErr = nil
		m.state = listReady
	}
}

func (m *convListModel) HandleKey(msg tea.KeyMsg) tea.Cmd {
	if m.filtering {
		switch msg.Type {
		case tea.KeyEsc:
			m.filtering = false
			m.filterInput.Reset()
			m.clampCursor()
			return nil
		case tea.KeyEnter:
			m.filtering = false
			m.filterInput.Blur()
			return nil
		}
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		m.clampCursor()
		return cmd
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.Visible())-1 {
			m.cursor++
		}
	case "/":
		m.filtering = true
		m.filterInput.Focus()
	case "esc":
		if m.Query() != "" {
			m.filterInput.Reset()
			m.clampCursor()
		} else {
			m.DismissError()
		}
	}
	return nil
}

func (m *convListModel) clampCursor() {
	if visible := len(m.Visible()); m.cursor >= visible {
		m.cursor = max(visible-1, 0)
	}
}

func (m *convListModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.filterInput.Width = max(width-4, 10)
}

func (m *convListModel) View(focused bool, openID int64) string {
	theme := m.theme
	var b strings.Builder

	b.WriteString(theme.AccentStyle().Bold(true).Render("Conversations"))
	b.WriteString("\n")

	if m.filtering || m.Query() != "" {
		b.WriteString(m.filterInput.View())
		b.WriteString("\n")
	}

	switch m.state {
	case listLoading:
		if len(m.conversations) == 0 {
			b.WriteString(theme.MutedStyle().Render("Loading conversations..."))
			return b.String()
		}
		b.WriteString(theme.MutedStyle().Render("Reloading..."))
		b.WriteString("\n")
	case listFailed:
		b.WriteString(theme.ErrorStyle().Render("Failed to load: " + m.loadErr.Error()))
		b.WriteString("\n")
		b.WriteString(theme.MutedStyle().Render("esc to dismiss, R to retry"))
		b.WriteString("\n")
	}

	visible := m.Visible()
	if len(visible) == 0 && m.state == listReady {
		if m.Query() != "" {
			b.WriteString(theme.MutedStyle().Render("No conversations match."))
		} else {
			b.WriteString(theme.MutedStyle().Render("No conversations yet. Press n to start one."))
		}
		return b.String()
	}

	now := time.Now()
	for i, conv := range visible {
		b.WriteString(m.renderRow(conv, i == m.cursor && focused, conv.ID == openID, now))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *convListModel) renderRow(conv api.Conversation, selected, open bool, now time.Time) string {
	theme := m.theme
	width := max(m.width-2, 20)

	marker := "  "
	if selected {
		marker = "> "
	} else if open {
		marker = "* "
	}

	name := conv.DisplayName(m.selfID)
	if conv.UnreadCount > 0 {
		name += " " + theme.UnreadStyle().Render(fmt.Sprintf("(%d)", conv.UnreadCount))
	}

	var when string
	if conv.LastMessageAt != nil {
		when = formatMessageTime(*conv.LastMessageAt, now)
	}

	header := marker + name
	if when != "" {
		header += "  " + theme.MutedStyle().Render(when)
	}

	preview := ""
	if conv.LastMessage != nil {
		preview = strings.ReplaceAll(conv.LastMessage.Content, "\n", " ")
		preview = truncate.String(preview, uint(max(width-4, 10)))
	}

	row := header
	if preview != "" {
		row += "\n    " + theme.MutedStyle().Render(preview)
	}

	if selected {
		return theme.SelectedStyle().Render(header) + strings.TrimPrefix(row, header)
	}
	return row
}
