package ui

import (
	"strings"
)

// Sparkline block characters representing 8 vertical levels (lowest to highest).
const sparklineBlocks = "▁▂▃▄▅▆▇█"

var sparklineBlockRunes = []rune(sparklineBlocks)

// renderSparkline maps values onto block levels between their min and max.
// Only the last width values are drawn, in the order given.
func renderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	var sb strings.Builder
	sb.Grow(len(values) * 3)

	levels := len(sparklineBlockRunes)
	span := hi - lo
	for _, v := range values {
		level := levels / 2
		if span > 0 {
			level = int((v - lo) / span * float64(levels-1))
			level = max(0, min(level, levels-1))
		}
		sb.WriteRune(sparklineBlockRunes[level])
	}
	return sb.String()
}
