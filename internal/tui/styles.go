package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("#326CE5") // Kubernetes blue
	colorAccent    = lipgloss.Color("#EE0000")
	colorSuccess   = lipgloss.Color("#04B575")
	colorWarning   = lipgloss.Color("#FFBD2E")
	colorError     = lipgloss.Color("#FF6B6B")
	colorMuted     = lipgloss.Color("#626262")
	colorHighlight = lipgloss.Color("#7D56F4")
	colorProdBg    = lipgloss.Color("#8B0000")
	colorBarBg     = lipgloss.Color("#333333")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	contextStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	namespaceStyle = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)

	statusBarStyle = lipgloss.NewStyle().
			Background(colorBarBg).
			Foreground(lipgloss.Color("#FFFFFF")).
			PaddingLeft(1).
			PaddingRight(1)

	selectedStyle = lipgloss.NewStyle().
			Background(colorBarBg).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorMuted).
			Underline(true)

	paneTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorMuted)

	focusedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(colorMuted)

	slotActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorHighlight).
			Underline(true)

	statusSuccessStyle = lipgloss.NewStyle().
				Foreground(colorSuccess).
				Bold(true)

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(colorError).
				Bold(true)

	completionActiveStyle = lipgloss.NewStyle().
				Background(colorHighlight).
				Foreground(lipgloss.Color("#FFFFFF"))

	bannerProdStyle = lipgloss.NewStyle().
			Background(colorProdBg).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			PaddingLeft(1).
			PaddingRight(1)

	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorWarning).
			Padding(1, 2)

	errorScreenStyle = lipgloss.NewStyle().
				Foreground(colorError).
				Bold(true).
				PaddingLeft(2).
				PaddingTop(1)

	yamlKeyStyle = lipgloss.NewStyle().Foreground(colorPrimary)

	forwardStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)
)

func colorizeStatus(status string) string {
	switch status {
	case "Running", "Active", "Ready", "Bound", "Available", "True":
		return lipgloss.NewStyle().Foreground(colorSuccess).Render(status)
	case "Succeeded", "Completed", "Complete", "Normal":
		return lipgloss.NewStyle().Foreground(colorSuccess).Render(status)
	case "Pending", "ContainerCreating", "Terminating", "Warning", "SchedulingDisabled":
		return lipgloss.NewStyle().Foreground(colorWarning).Render(status)
	case "Failed", "Error", "CrashLoopBackOff", "ImagePullBackOff", "NotReady", "Lost",
		"ErrImagePull", "OOMKilled", "Init:Error", "Init:CrashLoopBackOff", "False":
		return lipgloss.NewStyle().Foreground(colorError).Render(status)
	default:
		return lipgloss.NewStyle().Foreground(colorMuted).Render(status)
	}
}

// isStatusHeader reports whether a column holds a phase worth colouring.
func isStatusHeader(h string) bool {
	switch h {
	case "STATUS", "PHASE", "TYPE":
		return true
	}
	return false
}
