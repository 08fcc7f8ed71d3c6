package msgtui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// unreadTickMsg drives the app-lifetime unread badge poll.
type unreadTickMsg struct{}

// unreadLoadedMsg carries the total unread count for the status bar.
type unreadLoadedMsg struct {
	count int
	err   error
}

func unreadTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return unreadTickMsg{}
	})
}

func unreadFetchCmd(client Client) tea.Cmd {
	return func() tea.Msg {
		count, err := client.UnreadCount(context.Background())
		return unreadLoadedMsg{count: count, err: err}
	}
}
