package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Taishi66/kdeck/internal/domain"
	"github.com/Taishi66/kdeck/internal/session"
)

// Detail pane is shown beside the table only when the terminal is at least
// this wide.
const minSplitWidth = 90

// bodyHeight is what is left after the context bar, the tabs, the status
// line and the prompt.
func (m Model) bodyHeight() int {
	return max(m.height-4, 1)
}

func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}
	if m.sess == nil {
		return m.renderErrorScreen()
	}

	body := m.renderBody()
	lines := strings.Split(body, "\n")
	h := m.bodyHeight()
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}

	var b strings.Builder
	b.WriteString(m.renderContextBar())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderPrompt())
	return b.String()
}

func (m Model) renderBody() string {
	w, h := m.width, m.bodyHeight()
	switch {
	case m.sess.HelpOpen():
		return renderHelp(w)
	case m.sess.Confirmation() != nil && isProdPrompt(m.sess.Confirmation().Prompt):
		return renderProdConfirm(m.sess.Confirmation().Prompt, w)
	case m.sess.Picker() != nil:
		p := m.sess.Picker()
		return renderContainerPicker(p, m.sess.PortForwardsFor(p.Namespace, p.Pod), w)
	case m.sess.TableOverlay() != nil:
		return renderTableOverlay(m.sess.TableOverlay(), w, h)
	case m.sess.OverviewOpen():
		metrics, problem, ready := m.sess.Overview()
		return renderOverview(m.sess.Scope(), metrics, problem, ready)
	}

	detail := m.sess.DetailOverlay()
	showDetail := m.sess.DetailVisible() || detail != nil
	if !showDetail {
		return m.renderTable(w, h)
	}
	if w < minSplitWidth {
		if m.sess.Focus() == session.FocusDetail {
			return m.renderDetail(w, h)
		}
		return m.renderTable(w, h)
	}
	tw := w * 3 / 5
	table := lipgloss.NewStyle().Width(tw).MaxHeight(h).Render(m.renderTable(tw, h))
	pane := lipgloss.NewStyle().Width(w - tw - 1).MaxHeight(h).Render(m.renderDetail(w-tw-1, h))
	return lipgloss.JoinHorizontal(lipgloss.Top, table, " ", pane)
}

func (m Model) renderContextBar() string {
	cat := m.sess.Catalog()
	parts := []string{" " + titleStyle.Render("kdeck")}
	if cat.CurrentContext != "" {
		parts = append(parts, "ctx:"+contextStyle.Render(cat.CurrentContext))
	}
	if cat.CurrentCluster != "" {
		parts = append(parts, "cluster:"+cat.CurrentCluster)
	}
	if cat.CurrentUser != "" {
		parts = append(parts, "user:"+cat.CurrentUser)
	}
	parts = append(parts, "ns:"+namespaceStyle.Render(m.sess.Scope().String()))
	if n := len(m.sess.PortForwards()); n > 0 {
		parts = append(parts, forwardStyle.Render(fmt.Sprintf("⇄ %d", n)))
	}
	parts = append(parts, renderSlots(m.sess.Slots(), m.sess.ActiveSlot()))
	return strings.Join(parts, "  ")
}

func renderSlots(slots [session.SlotCount]bool, active int) string {
	var b strings.Builder
	b.WriteString("slots:")
	for i, used := range slots {
		switch {
		case i == active:
			b.WriteString(slotActiveStyle.Render(strconv.Itoa(i)))
		case used:
			b.WriteString(strconv.Itoa(i))
		default:
			continue
		}
	}
	return b.String()
}

// renderTabs shows every kind's alias with the active one spelled out. When
// the bar is wider than the screen it is windowed around the active tab.
func (m Model) renderTabs() string {
	tabs := m.sess.Tabs()
	active := m.sess.ActiveKind()
	labels := make([]string, len(tabs))
	at := 0
	for i, k := range tabs {
		if k == active {
			at = i
			labels[i] = "[" + k.Title() + "]"
			if k == domain.KindCustomResources {
				if cr := m.sess.CustomResource(); cr != nil {
					labels[i] = "[" + cr.Kind + "]"
				}
			}
		} else {
			labels[i] = k.Alias()
		}
	}
	lo, hi := windowAround(labels, at, m.width-2)

	parts := make([]string, 0, hi-lo)
	for i := lo; i < hi; i++ {
		if i == at {
			parts = append(parts, tabActiveStyle.Render(labels[i]))
		} else {
			parts = append(parts, tabInactiveStyle.Render(labels[i]))
		}
	}
	return " " + strings.Join(parts, " ")
}

// windowAround picks the widest run of labels containing at that fits in
// width, separated by one space.
func windowAround(labels []string, at, width int) (int, int) {
	if len(labels) == 0 {
		return 0, 0
	}
	lo, hi := at, at+1
	used := runewidth.StringWidth(labels[at])
	for {
		grew := false
		if hi < len(labels) && used+1+runewidth.StringWidth(labels[hi]) <= width {
			used += 1 + runewidth.StringWidth(labels[hi])
			hi++
			grew = true
		}
		if lo > 0 && used+1+runewidth.StringWidth(labels[lo-1]) <= width {
			lo--
			used += 1 + runewidth.StringWidth(labels[lo])
			grew = true
		}
		if !grew {
			return lo, hi
		}
	}
}

func renderOverview(scope domain.Scope, m domain.OverviewMetrics, problem string, ready bool) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(" Overview: " + scope.String()))
	b.WriteString("\n\n")
	switch {
	case !ready:
		b.WriteString("  loading...\n")
		return b.String()
	case problem != "":
		b.WriteString("  " + statusErrorStyle.Render(problem) + "\n")
		return b.String()
	}
	fmt.Fprintf(&b, "  Nodes        %d\n", m.Nodes)
	fmt.Fprintf(&b, "  Namespaces   %d\n", m.Namespaces)
	fmt.Fprintf(&b, "  Pods         %d running / %d total\n", m.RunningPods, m.Pods)
	if m.MetricsAvailable {
		fmt.Fprintf(&b, "  CPU          %dm\n", m.CPUMilli)
		fmt.Fprintf(&b, "  Memory       %s\n", formatBytes(m.MemoryBytes))
	} else {
		b.WriteString("  " + mutedStyle.Render("CPU and memory: metrics API unavailable") + "\n")
	}
	b.WriteString("\n  " + mutedStyle.Render("esc: close") + "\n")
	return b.String()
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func renderHelp(width int) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(" Keys"))
	b.WriteString("\n")
	cols := helpSections()
	colWidth := max(width/len(cols), 20)
	rows := 0
	for _, c := range cols {
		rows = max(rows, len(c))
	}
	for r := 0; r < rows; r++ {
		var line strings.Builder
		for _, c := range cols {
			cell := ""
			if r < len(c) {
				h := c[r].Help()
				cell = fmt.Sprintf(" %-7s %s", h.Key, h.Desc)
			}
			line.WriteString(runewidth.FillRight(runewidth.Truncate(cell, colWidth, "…"), colWidth))
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteString("\n")
	}
	b.WriteString(" 0-9     view slot\n\n")
	b.WriteString(headerStyle.Render(" Commands"))
	b.WriteString("\n")
	for _, l := range commandHelp {
		b.WriteString(" " + l + "\n")
	}
	b.WriteString("\n " + mutedStyle.Render("any key closes this help") + "\n")
	return b.String()
}

var commandHelp = []string{
	":ctx NAME  :cluster NAME  :user NAME     switch kubeconfig identity",
	":ns NAME|all  :po [ns/]name  :crd NAME   change scope, kind or custom resource",
	":delete  :restart  :scale N  :edit        act on the selected row",
	":logs [-p]  :exec CMD  :shell  :pf [L:]R  pod operations",
	":overview  :slot N  :refresh  :help  :q",
	">QUERY                                   jump to the first row matching QUERY",
}

func (m Model) renderErrorScreen() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(errorScreenStyle.Render("kdeck: cannot connect"))
	b.WriteString("\n\n")
	if m.startupErr != nil {
		b.WriteString(fmt.Sprintf("  %s\n", m.startupErr.Error()))
	}
	b.WriteString("\n")
	if m.connect != nil {
		b.WriteString("  [r] retry  [q] quit\n")
	} else {
		b.WriteString("  [q] quit\n")
	}
	return b.String()
}
