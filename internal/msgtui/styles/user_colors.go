package styles

import (
	"hash/fnv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// UserColorPalette is a curated ANSI 256 palette for stable per-user identity
// colors. Red/green slots are avoided so they stay free for status colors.
var UserColorPalette = []string{
	"33", "39", "45", "69", "75", "81", "87", "99",
	"111", "117", "123", "147", "153", "159", "183", "189",
}

// UserColorMapper resolves deterministic per-username styles and caches them.
type UserColorMapper struct {
	palette []string

	mu         sync.RWMutex
	fgCache    map[string]lipgloss.Style
	colorCache map[string]string
}

// NewUserColorMapper returns a deterministic mapper with the default palette.
func NewUserColorMapper() *UserColorMapper {
	paletteCopy := make([]string, len(UserColorPalette))
	copy(paletteCopy, UserColorPalette)

	return &UserColorMapper{
		palette:    paletteCopy,
		fgCache:    make(map[string]lipgloss.Style, 16),
		colorCache: make(map[string]string, 16),
	}
}

// Foreground returns a cached foreground style for a username.
func (m *UserColorMapper) Foreground(username string) lipgloss.Style {
	key := normalizeUsername(username)

	m.mu.RLock()
	if style, ok := m.fgCache[key]; ok {
		m.mu.RUnlock()
		return style
	}
	m.mu.RUnlock()

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.ColorCode(key))).Bold(true)

	m.mu.Lock()
	m.fgCache[key] = style
	m.mu.Unlock()

	return style
}

// ColorCode returns the ANSI-256 color code selected for a username.
func (m *UserColorMapper) ColorCode(username string) string {
	key := normalizeUsername(username)

	m.mu.RLock()
	if colorCode, ok := m.colorCache[key]; ok {
		m.mu.RUnlock()
		return colorCode
	}
	m.mu.RUnlock()

	idx := hashToPalette(key, len(m.palette))
	colorCode := m.palette[idx]

	m.mu.Lock()
	m.colorCache[key] = colorCode
	m.mu.Unlock()

	return colorCode
}

func normalizeUsername(username string) string {
	normalized := strings.ToLower(strings.TrimSpace(username))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}

func hashToPalette(key string, paletteLen int) int {
	if paletteLen == 0 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(paletteLen))
}
