package theme

import (
	"fmt"
	"strings"
)

// Mode is the user's appearance preference.
type Mode string

const (
	Light  Mode = "light"
	Dark   Mode = "dark"
	System Mode = "system"
)

// Modes returns every mode in toggle order.
func Modes() []Mode {
	return []Mode{Light, Dark, System}
}

// ParseMode parses a mode name, ignoring case and surrounding space.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown theme mode %q (want light, dark or system)", s)
	}
	return m, nil
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case Light, Dark, System:
		return true
	default:
		return false
	}
}

// Next returns the mode after m in toggle order, wrapping around.
func (m Mode) Next() Mode {
	switch m {
	case Light:
		return Dark
	case Dark:
		return System
	default:
		return Light
	}
}

func (m Mode) String() string {
	return string(m)
}

// Scheme names the rendered appearance.
func Scheme(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}
