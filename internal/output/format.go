package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// limit returns how many of rows to show; top <= 0 shows all.
func limit[T any](rows []T, top int) int {
	if top <= 0 || top > len(rows) {
		return len(rows)
	}
	return top
}

func writeMore(sb *strings.Builder, hidden int, what string) {
	if hidden > 0 {
		sb.WriteString(colorize(colorGray, fmt.Sprintf("... %s more %s (use --top 0 to show all)", humanize.Comma(int64(hidden)), what)))
		sb.WriteString("\n")
	}
}

// formatPercent renders a fraction as a percentage with one decimal.
func formatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// formatDuration renders durations at a precision that suits mining runs.
func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "0s"
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	default:
		return d.Round(time.Second).String()
	}
}

func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	if time.Since(t) < time.Minute {
		return "just now"
	}
	return humanize.Time(t)
}
