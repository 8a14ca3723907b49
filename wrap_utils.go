package mdv

import (
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

func truncateWithEllipsis(text string, limit int) string {
	if ansi.PrintableRuneWidth(text) <= limit {
		return text
	}
	if limit <= 0 {
		return ""
	}
	if limit == 1 {
		return "…"
	}
	return truncate.StringWithTail(text, uint(limit), "…")
}

// fitLabel shortens an image label to limit cells. URL-like labels lose
// their scheme before they are truncated.
func fitLabel(label string, limit int) string {
	if ansi.PrintableRuneWidth(label) <= limit {
		return label
	}
	if idx := strings.Index(label, "://"); idx != -1 {
		trimmed := label[idx+3:]
		if ansi.PrintableRuneWidth(trimmed) <= limit {
			return trimmed
		}
		label = trimmed
	}
	return truncateWithEllipsis(label, limit)
}
