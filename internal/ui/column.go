package ui

import "strings"

// ColumnString fits s into exactly width characters: shorter text is padded
// with spaces, longer text is cut and ends in "...". Widths below 4 leave no
// room for text, so only dots are shown.
func ColumnString(s string, width int) string {
	runes := []rune(s)
	switch {
	case len(runes) > width:
		if width <= 3 {
			return strings.Repeat(".", max(width, 0))
		}
		return string(runes[:width-3]) + "..."
	case len(runes) < width:
		return s + strings.Repeat(" ", width-len(runes))
	default:
		return s
	}
}
