package msgtui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/campushustle/hustle-tui/internal/config"
	"github.com/campushustle/hustle-tui/internal/logging"
	"github.com/campushustle/hustle-tui/internal/msgtui/styles"
)

type focusPane int

const (
	paneList focusPane = iota
	paneThread
)

// Options configures the messaging UI.
type Options struct {
	Client       Client
	SelfID       int64
	Username     string
	PollInterval time.Duration
	Debounce     time.Duration
	MinChars     int
	SearchLimit  int
	Theme        styles.Theme
}

// OptionsFromConfig builds UI options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config, client Client, selfID int64, username string) Options {
	return Options{
		Client:       client,
		SelfID:       selfID,
		Username:     username,
		PollInterval: cfg.Messaging.PollInterval,
		Debounce:     cfg.Messaging.SearchDebounce,
		MinChars:     cfg.Messaging.SearchMinChars,
		SearchLimit:  cfg.Messaging.SearchLimit,
		Theme:        styles.Lookup(cfg.TUI.Theme),
	}
}

// Model is the root messaging UI: conversation list on the left, message
// thread on the right, new-conversation modal on top.
type Model struct {
	client   Client
	log      zerolog.Logger
	username string
	theme    styles.Theme

	list   convListModel
	thread threadModel
	modal  newChatModel

	focus        focusPane
	unreadTotal  int
	pollInterval time.Duration
	spin         spinner.Model

	width  int
	height int
}

// NewModel assembles the root model and its panes.
func NewModel(opts Options) Model {
	colors := styles.NewUserColorMapper()
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(opts.Theme.Base.Accent))
	return Model{
		client:       opts.Client,
		log:          logging.Component("app"),
		username:     opts.Username,
		theme:        opts.Theme,
		list:         newConvListModel(opts.Client, opts.SelfID, opts.Theme),
		thread:       newThreadModel(opts.Client, opts.SelfID, opts.PollInterval, opts.Theme, colors),
		modal:        newNewChatModel(opts.Client, opts.SelfID, opts.Debounce, opts.MinChars, opts.SearchLimit, opts.Theme),
		focus:        paneList,
		pollInterval: opts.PollInterval,
		spin:         spin,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.list.Reload(),
		unreadFetchCmd(m.client),
		unreadTickCmd(m.pollInterval),
		m.spin.Tick,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listWidth := msg.Width / 3
		m.list.SetSize(listWidth, msg.Height-2)
		m.thread.SetSize(msg.Width-listWidth-3, msg.Height-2)
		m.modal.SetSize(min(msg.Width-4, 70))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case conversationCreatedMsg:
		if msg.conversation.ID != 0 {
			m.modal.Close()
			m.list.Unshift(msg.conversation)
			m.focus = paneThread
			m.thread.Focus()
			cmd := m.thread.Open(msg.conversation)
			if msg.err != nil {
				// The conversation exists but the first message never went
				// out; hand the draft and the failure to the thread so the
				// user can retry from there.
				m.thread.input.SetValue(msg.initialMessage)
				m.thread.sendErr = msg.err
			}
			return m, cmd
		}
		return m, m.modal.Update(msg)

	case unreadTickMsg:
		return m, tea.Batch(unreadTickCmd(m.pollInterval), unreadFetchCmd(m.client))

	case unreadLoadedMsg:
		if msg.err == nil {
			m.unreadTotal = msg.count
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	// Async results route to every pane; seq guards make stale ones inert.
	return m, tea.Batch(
		m.list.Update(msg),
		m.thread.Update(msg),
		m.modal.Update(msg),
	)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.modal.IsOpen() {
		if msg.Type == tea.KeyEsc && !m.modal.Submitting() {
			m.modal.Close()
			return m, nil
		}
		return m, m.modal.HandleKey(msg)
	}

	switch m.focus {
	case paneList:
		if !m.list.filtering {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "n":
				m.modal.Open()
				return m, nil
			case "r", "R":
				return m, m.list.Reload()
			case "tab":
				if m.thread.Active() {
					m.focus = paneThread
					m.thread.Focus()
				}
				return m, nil
			case "enter":
				if conv, ok := m.list.Selected(); ok {
					m.focus = paneThread
					m.thread.Focus()
					return m, m.thread.Open(conv)
				}
				return m, nil
			}
		}
		return m, m.list.HandleKey(msg)

	case paneThread:
		switch msg.Type {
		case tea.KeyEsc:
			m.thread.Close()
			m.thread.Blur()
			m.focus = paneList
			return m, nil
		case tea.KeyTab:
			m.thread.Blur()
			m.focus = paneList
			return m, nil
		}
		return m, m.thread.HandleKey(msg)
	}
	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()

	if m.modal.IsOpen() {
		modal := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(m.theme.Borders.ActivePane)).
			Padding(1, 2).
			Width(min(m.width-4, 74)).
			Render(m.modal.View())
		return header + "\n" + lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, modal)
	}

	listWidth := m.width / 3
	listBorder := m.paneStyle(m.focus == paneList).Width(listWidth).Height(m.height - 4)
	threadBorder := m.paneStyle(m.focus == paneThread).Width(m.width - listWidth - 5).Height(m.height - 4)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		listBorder.Render(m.list.View(m.focus == paneList, m.thread.ConversationID())),
		threadBorder.Render(m.thread.View(m.focus == paneThread)),
	)

	return header + "\n" + body + "\n" + m.renderFooter()
}

func (m Model) paneStyle(active bool) lipgloss.Style {
	borderColor := m.theme.Borders.InactivePane
	if active {
		borderColor = m.theme.Borders.ActivePane
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Padding(0, 1)
}

func (m Model) renderHeader() string {
	theme := m.theme
	left := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Chrome.Header)).Bold(true).Render("hustle messages")
	user := theme.MutedStyle().Render("@" + m.username)
	parts := []string{left, user}
	if m.unreadTotal > 0 {
		parts = append(parts, theme.UnreadStyle().Render(fmt.Sprintf("%d unread", m.unreadTotal)))
	}
	if m.list.state == listLoading || m.thread.refreshing {
		parts = append(parts, m.spin.View())
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	theme := m.theme
	var help string
	switch {
	case m.modal.IsOpen():
		help = "enter select/send · tab field · esc cancel"
	case m.focus == paneThread:
		help = "enter send · pgup/pgdn scroll · tab list · esc close"
	default:
		help = "enter open · n new · / filter · r reload · tab thread · q quit"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Chrome.Footer)).Render(help)
}

// Run starts the messaging UI and blocks until it exits.
func Run(opts Options) error {
	program := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run messaging ui: %w", err)
	}
	return nil
}
