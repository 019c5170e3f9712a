package ui

import (
	"errors"
	"fmt"

	"github.com/five82/oneearth/internal/metrics"
	"github.com/five82/oneearth/internal/schema"
	"github.com/five82/oneearth/internal/theme"
)

const notSet = "(not set)"

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.palette.Styles().WithBackground(m.palette.Surface)
	bg := NewBgStyle(m.palette.Surface)

	parts := []string{
		bg.Render("oneearth", styles.Logo),
		m.renderStatus(styles, bg),
		bg.Render("API says:", styles.MutedText) + bg.Render(" "+m.bannerText(), styles.Text),
	}
	if m.width >= 80 {
		parts = append(parts, bg.Render("theme "+m.themeLabel(), styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

func (m Model) renderStatus(styles Styles, bg BgStyle) string {
	snap := m.snapshot
	switch {
	case snap.Pending():
		return bg.Render("● CONNECTING", styles.WarningText.Bold(true))
	case snap.IsOffline():
		return bg.Join([]string{
			bg.Render("● OFFLINE", styles.DangerText),
			bg.Render("Retrying...", styles.WarningText.Bold(true)),
		}, "  ")
	case snap.Unavailable():
		return bg.Render("● RETRYING", styles.WarningText.Bold(true))
	default:
		return bg.Render("● LIVE", styles.SuccessText)
	}
}

// bannerText is the /api/hello message, or why it is missing.
func (m Model) bannerText() string {
	switch {
	case m.snapshot.HelloErr != nil:
		return "API unreachable"
	case m.snapshot.Hello == "":
		return "..."
	default:
		return m.snapshot.Hello
	}
}

func (m Model) themeLabel() string {
	mode := m.themes.Mode()
	if mode == theme.System {
		return fmt.Sprintf("%s (%s)", mode, m.themes.ColorScheme())
	}
	return mode.String()
}

// renderFooter lists the endpoints the dashboard talks to.
func (m Model) renderFooter() string {
	styles := m.palette.Styles().WithBackground(m.palette.Surface)
	bg := NewBgStyle(m.palette.Surface)

	site := m.siteURL
	if site == "" {
		site = notSet
	}
	health := m.healthURL
	if health == "" {
		health = notSet
	}

	parts := []string{
		bg.Render("api", styles.FaintText) + bg.Render(" "+m.origin, styles.MutedText),
		bg.Render("health", styles.FaintText) + bg.Render(" "+health, styles.MutedText),
		bg.Render("site", styles.FaintText) + bg.Render(" "+site, styles.MutedText),
	}
	return styles.Footer.Width(m.width).Render(bg.Join(parts, "  "))
}

// describeError gives a one-line reason for an exhausted query.
func describeError(err error) string {
	if err == nil {
		return ""
	}
	var schemaErr *schema.SchemaError
	switch {
	case metrics.IsValidation(err) && errors.As(err, &schemaErr):
		at := schemaErr.Path
		if at == "" {
			at = "document root"
		}
		return "invalid response at " + at + ": " + schemaErr.Reason
	case metrics.IsNetwork(err):
		var netErr *metrics.NetworkError
		if errors.As(err, &netErr) && netErr.StatusCode != 0 {
			return fmt.Sprintf("server returned HTTP %d", netErr.StatusCode)
		}
		return "network error: " + rootCause(err).Error()
	default:
		return err.Error()
	}
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
