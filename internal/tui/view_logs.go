package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Taishi66/kdeck/internal/session"
)

// Compiled regexes for log line colorization.
var (
	reTimestamp  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}[\.\d]*`)
	reLogLevel   = regexp.MustCompile(`\b(INFO|WARN|WARNING|ERROR|FATAL|SEVERE|DEBUG|TRACE)\b`)
	reHTTPMethod = regexp.MustCompile(`\b(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)\b`)
	reHTTPStatus = regexp.MustCompile(`\b([2-5]\d{2})\b`)
)

// renderTableOverlay draws logs, exec output or other text that replaces
// the table.
func renderTableOverlay(o *session.TableOverlay, width, height int) string {
	var b strings.Builder
	header := fmt.Sprintf(" %s [%d lines]", o.Title, len(o.Lines))
	b.WriteString(headerStyle.Render(runewidth.Truncate(header, width, "…")))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(runewidth.Truncate(overlayHint(o), width, "…")))
	b.WriteString("\n")
	if len(o.Lines) == 0 {
		b.WriteString("  (empty)")
		return b.String()
	}
	color := func(s string) string { return s }
	if o.Kind == session.OverlayPodLogs || o.Kind == session.OverlayWorkloadLogs {
		color = colorizeLine
	}
	b.WriteString(renderTextLines(o.Lines, o.Offset, width, height-2, color, true))
	return b.String()
}

func overlayHint(o *session.TableOverlay) string {
	switch {
	case o.Source != nil && o.Source.Previous:
		return " j/k scroll  g/G top/end  p current logs  esc back"
	case o.Source != nil:
		return " j/k scroll  g/G top/end  p previous logs  esc back"
	}
	return " j/k scroll  g/G top/end  esc back"
}

// renderTextLines shows a window of lines that keeps cursor visible. Lines
// are cut to width before colouring so escape codes are never split.
func renderTextLines(lines []string, cursor, width, height int, color func(string) string, mark bool) string {
	height = max(height, 1)
	start := 0
	if cursor >= height {
		start = cursor - height + 1
	}
	end := min(start+height, len(lines))
	usable := max(width-2, 1)

	var b strings.Builder
	for i := start; i < end; i++ {
		gutter := "  "
		if mark && i == cursor {
			gutter = "› "
		}
		b.WriteString(gutter)
		b.WriteString(color(runewidth.Truncate(expandTabs(lines[i]), usable, "…")))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

func colorizeLine(line string) string {
	if line == "" {
		return ""
	}

	line = reTimestamp.ReplaceAllStringFunc(line, func(m string) string {
		return lipgloss.NewStyle().Foreground(colorMuted).Render(m)
	})

	line = reLogLevel.ReplaceAllStringFunc(line, func(m string) string {
		switch m {
		case "INFO":
			return lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Render(m)
		case "WARN", "WARNING":
			return lipgloss.NewStyle().Foreground(colorWarning).Bold(true).Render(m)
		case "ERROR", "FATAL", "SEVERE":
			return lipgloss.NewStyle().Foreground(colorError).Bold(true).Render(m)
		case "DEBUG", "TRACE":
			return lipgloss.NewStyle().Foreground(colorMuted).Render(m)
		}
		return m
	})

	line = reHTTPMethod.ReplaceAllStringFunc(line, func(m string) string {
		switch m {
		case "GET":
			return lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render(m)
		case "POST":
			return lipgloss.NewStyle().Foreground(colorWarning).Bold(true).Render(m)
		case "PUT", "PATCH":
			return lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Render(m)
		case "DELETE":
			return lipgloss.NewStyle().Foreground(colorError).Bold(true).Render(m)
		}
		return lipgloss.NewStyle().Foreground(colorMuted).Bold(true).Render(m)
	})

	line = reHTTPStatus.ReplaceAllStringFunc(line, func(m string) string {
		switch m[0] {
		case '2':
			return lipgloss.NewStyle().Foreground(colorSuccess).Render(m)
		case '3':
			return lipgloss.NewStyle().Foreground(colorPrimary).Render(m)
		case '4':
			return lipgloss.NewStyle().Foreground(colorWarning).Render(m)
		}
		return lipgloss.NewStyle().Foreground(colorError).Render(m)
	})

	return line
}
