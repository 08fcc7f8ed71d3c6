package msgtui

import "time"

// formatMessageTime renders a timestamp relative to now: clock time for
// today, "Yesterday" for one day back, the weekday inside a week, and a
// short date beyond that.
func formatMessageTime(t time.Time, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	local := t.Local()
	nowLocal := now.Local()

	today := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, nowLocal.Location())
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	daysAgo := int(today.Sub(day).Hours() / 24)

	switch {
	case daysAgo <= 0:
		return local.Format("15:04")
	case daysAgo == 1:
		return "Yesterday"
	case daysAgo < 7:
		return local.Format("Monday")
	default:
		return local.Format("Jan 2")
	}
}

// formatThreadTime renders a full timestamp for the thread gutter.
func formatThreadTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("Jan 2 15:04")
}
