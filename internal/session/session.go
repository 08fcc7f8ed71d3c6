// Package session holds the authenticated session context passed explicitly
// to the API client, plus its on-disk store. The token is set at login and
// cleared at logout; nothing reads it from ambient globals.
package session

import (
	"strings"
	"time"
)

// Session is the current user's authenticated context.
type Session struct {
	AccessToken  string
	RefreshToken string
	UserID       int64
	Username     string
	SavedAt      time.Time
}

// Valid reports whether the session carries enough to authenticate requests.
func (s Session) Valid() bool {
	return strings.TrimSpace(s.AccessToken) != "" && s.UserID > 0
}
