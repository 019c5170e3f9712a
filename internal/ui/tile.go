package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/five82/oneearth/internal/present"
)

const (
	tileTitle    = "Atmospheric CO2"
	maxTileWidth = 64
	minTileWidth = 24
)

// renderTile renders the CO2 readout with its sparkline.
func (m Model) renderTile() string {
	styles := m.palette.Styles()
	width := tileWidth(m.width)
	inner := width - 4 // border and padding

	snap := m.snapshot
	lines := []string{styles.MutedText.Render(tileTitle)}

	switch {
	case snap.Pending():
		lines = append(lines, m.spinner.View()+" "+styles.MutedText.Render("Loading..."))

	case snap.Unavailable() || !snap.Latest.HasData || !snap.Series.HasData:
		lines = append(lines, styles.WarningText.Render("Data unavailable, retrying..."))
		err := snap.Latest.Err
		if err == nil {
			err = snap.Series.Err
		}
		if reason := describeError(err); reason != "" {
			lines = append(lines, styles.FaintText.Render(truncate(reason, inner)))
		}

	default:
		readout := present.ReadoutOf(snap.Latest.Data)
		lines = append(lines,
			styles.MutedText.Render("Last updated: "+readout.Updated),
			styles.Reading.Render(readout.Value),
			styles.Chart.Render(renderSparkline(present.Values(snap.Series.Data), inner)),
		)
		if caption := m.rangeCaption(); caption != "" {
			lines = append(lines, styles.FaintText.Render(truncate(caption, inner)))
		}
		if fetched := snap.Latest.FetchedAt; !fetched.IsZero() {
			lines = append(lines, styles.FaintText.Render("fetched "+humanize.RelTime(fetched, m.now(), "ago", "from now")))
		}
	}

	lines = append(lines, styles.FaintText.Render(present.Attribution))
	return styles.Tile.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func (m Model) rangeCaption() string {
	lo, hi, ok := present.Range(m.snapshot.Series.Data)
	if !ok {
		return ""
	}
	caption := fmt.Sprintf("%s to %s", present.FormatValue(lo), present.FormatValue(hi))
	if m.days > 0 {
		caption += fmt.Sprintf(" over %d days", m.days)
	}
	return caption
}

func tileWidth(screen int) int {
	w := screen - 2
	return max(minTileWidth, min(w, maxTileWidth))
}
