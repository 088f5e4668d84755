package tui

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/Taishi66/kdeck/internal/session"
)

// renderStatus draws the line under the body: completion candidates while
// a command line is open, otherwise the session's status message.
func (m Model) renderStatus() string {
	if cands := m.sess.Completions(); len(cands) > 0 {
		return renderCompletions(cands, m.sess.CompletionIndex(), m.width)
	}
	st := m.sess.Status()
	if st.Text == "" {
		return ""
	}
	text := " " + runewidth.Truncate(st.Text, max(m.width-1, 1), "…")
	switch st.Level {
	case session.StatusSuccess:
		return statusSuccessStyle.Render(text)
	case session.StatusError:
		return statusErrorStyle.Render(text)
	}
	return text
}

// renderCompletions lays candidates out on one line, scrolled so the
// highlighted one stays visible.
func renderCompletions(cands []string, idx, width int) string {
	start := 0
	if idx > 0 {
		used := 1
		for i := idx; i >= 0; i-- {
			used += runewidth.StringWidth(cands[i]) + 2
			if used > width {
				start = i + 1
				break
			}
		}
	}
	var b strings.Builder
	b.WriteString(" ")
	used := 1
	for i := start; i < len(cands); i++ {
		w := runewidth.StringWidth(cands[i]) + 2
		if used+w > width {
			b.WriteString(mutedStyle.Render("…"))
			break
		}
		if i == idx {
			b.WriteString(completionActiveStyle.Render(cands[i]))
		} else {
			b.WriteString(mutedStyle.Render(cands[i]))
		}
		b.WriteString("  ")
		used += w
	}
	return b.String()
}

// renderPrompt draws the bottom bar: the open command line, or the mode and
// a short hint.
func (m Model) renderPrompt() string {
	var left string
	switch m.sess.Mode() {
	case session.ModeFilter:
		left = "/" + m.sess.Filter() + "█"
	case session.ModeCommand:
		left = ":" + m.sess.Input() + "█"
	case session.ModeJump:
		left = ">" + m.sess.Input() + "█"
	default:
		left = m.sess.Mode().String() + " | " + m.sess.ActiveKind().Title()
		if f := m.sess.Filter(); f != "" {
			left += " | /" + f
		}
		left += " | " + rowCount(len(m.sess.VisibleRows()), len(m.sess.Rows(m.sess.ActiveKind())))
		left += "   ? help  : command  > jump  / filter"
	}
	return statusBarStyle.Width(m.width).Render(runewidth.Truncate(left, max(m.width-2, 1), "…"))
}

func rowCount(visible, total int) string {
	if visible == total {
		return strconv.Itoa(total) + " rows"
	}
	return strconv.Itoa(visible) + "/" + strconv.Itoa(total) + " rows"
}
