package msgtui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatMessageTime(t *testing.T) {
	now := time.Date(2026, 3, 7, 15, 30, 0, 0, time.Local) // a Saturday

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"zero time", time.Time{}, ""},
		{"earlier today", time.Date(2026, 3, 7, 9, 5, 0, 0, time.Local), "09:05"},
		{"yesterday", time.Date(2026, 3, 6, 23, 0, 0, 0, time.Local), "Yesterday"},
		{"three days ago", time.Date(2026, 3, 4, 12, 0, 0, 0, time.Local), "Wednesday"},
		{"last week", time.Date(2026, 2, 20, 12, 0, 0, 0, time.Local), "Feb 20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, formatMessageTime(tt.at, now))
		})
	}
}

func TestFormatThreadTime(t *testing.T) {
	require.Equal(t, "", formatThreadTime(time.Time{}))
	at := time.Date(2026, 3, 7, 9, 5, 0, 0, time.Local)
	require.Equal(t, "Mar 7 09:05", formatThreadTime(at))
}
