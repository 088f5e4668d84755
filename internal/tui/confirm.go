package tui

import (
	"strings"
)

const prodMarker = "[PROD] "

func isProdPrompt(prompt string) bool {
	return strings.HasPrefix(prompt, prodMarker)
}

// renderProdConfirm boxes a confirmation aimed at a production namespace.
// Plain confirmations stay on the status line.
func renderProdConfirm(prompt string, width int) string {
	box := "PRODUCTION NAMESPACE\n\n" +
		strings.TrimPrefix(prompt, prodMarker) + "\n\n" +
		"[y] confirm   [n/esc] cancel"
	inner := bannerProdStyle.Width(min(max(width-8, 20), 64)).Render(box)
	return "\n" + confirmBoxStyle.Render(inner)
}
