package tui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/Taishi66/kdeck/internal/domain"
	"github.com/Taishi66/kdeck/internal/session"
)

const (
	maxColumnWidth = 48
	columnGap      = 2
)

func paneTitle(text string, focused bool, width int) string {
	text = runewidth.Truncate(" "+text, width, "…")
	if focused {
		return focusedTitleStyle.Render(text)
	}
	return paneTitleStyle.Render(text)
}

// renderTable draws the active kind: a title, the column headers with the
// sort indicator, and the window of rows that keeps the selection visible.
func (m Model) renderTable(width, height int) string {
	kind := m.sess.ActiveKind()
	name := kind.Title()
	if cr := m.sess.CustomResource(); kind == domain.KindCustomResources && cr != nil {
		name = cr.Kind
	}
	focused := m.sess.Focus() == session.FocusTable && m.sess.DetailOverlay() == nil
	var b strings.Builder
	b.WriteString(paneTitle(fmt.Sprintf("%s (%s)", name, m.sess.Scope()), focused, width))
	b.WriteString("\n")

	if e := m.sess.TableError(); e != "" {
		b.WriteString(statusErrorStyle.Render(runewidth.Truncate("  "+e, width, "…")))
		return b.String()
	}
	headers := m.sess.Headers()
	if len(headers) == 0 && m.sess.RefreshedAt().IsZero() {
		b.WriteString("  loading...")
		return b.String()
	}

	rows := m.sess.VisibleRows()
	sort := m.sess.SortState()
	labels := make([]string, len(headers))
	for i, h := range headers {
		labels[i] = session.SortIndicator(h, i, sort)
	}
	widths := columnWidths(labels, rows)
	b.WriteString(headerStyle.Render(layoutRow(labels, widths, width, -1)))
	b.WriteString("\n")

	if len(rows) == 0 {
		if f := m.sess.Filter(); f != "" {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("  no rows match /%s", f)))
		} else {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("  no %s in %s", strings.ToLower(name), m.sess.Scope())))
		}
		return b.String()
	}

	statusCol := -1
	for i, h := range headers {
		if isStatusHeader(h) {
			statusCol = i
			break
		}
	}
	visible := max(height-2, 1)
	sel := m.sess.Selected()
	start := 0
	if sel >= visible {
		start = sel - visible + 1
	}
	end := min(start+visible, len(rows))
	for i := start; i < end; i++ {
		r := rows[i]
		colorCol := statusCol
		if i == sel {
			colorCol = -1
		}
		line := layoutRow(r.Columns, widths, width, colorCol)
		plainWidth := runewidth.StringWidth(layoutRow(r.Columns, widths, width, -1))
		if fwd := m.forwardsOf(kind, r.ID); len(fwd) > 0 {
			marker := " ⇄ " + strings.Join(fwd, ",")
			if mw := runewidth.StringWidth(marker); plainWidth+mw <= width {
				line += marker
				plainWidth += mw
			}
		}
		if i == sel {
			b.WriteString(selectedStyle.Render(line + strings.Repeat(" ", max(width-plainWidth, 0))))
		} else {
			b.WriteString(line)
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// columnWidths sizes every column to its widest cell, capped.
func columnWidths(headers []string, rows []domain.Row) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i := 0; i < len(widths) && i < len(r.Columns); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(r.Columns[i]))
		}
	}
	for i := range widths {
		widths[i] = min(widths[i], maxColumnWidth)
	}
	return widths
}

// layoutRow pads cells into columns and cuts the row at width. Column
// colour, when colorCol >= 0, is applied only to a cell that fits whole.
func layoutRow(cells []string, widths []int, width, colorCol int) string {
	var b strings.Builder
	used := 0
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if i > 0 {
			if used+columnGap >= width {
				break
			}
			b.WriteString(strings.Repeat(" ", columnGap))
			used += columnGap
		}
		room := width - used
		if room <= 0 {
			break
		}
		cut := runewidth.Truncate(cell, min(w, room), "…")
		pad := 0
		if i < len(widths)-1 {
			pad = min(w, room) - runewidth.StringWidth(cut)
		}
		if i == colorCol && cut == cell && cell != "" {
			b.WriteString(colorizeStatus(cell))
		} else {
			b.WriteString(cut)
		}
		b.WriteString(strings.Repeat(" ", max(pad, 0)))
		used += runewidth.StringWidth(cut) + max(pad, 0)
	}
	return b.String()
}

// renderDetail draws the describe overlay, or the selected row's detail.
func (m Model) renderDetail(width, height int) string {
	focused := m.sess.Focus() == session.FocusDetail || m.sess.DetailOverlay() != nil
	if o := m.sess.DetailOverlay(); o != nil {
		title := fmt.Sprintf("%s [%d lines]", o.Title, len(o.Lines))
		return paneTitle(title, focused, width) + "\n" +
			renderTextLines(o.Lines, o.Offset, width, height-1, colorizeYAML, true)
	}
	row, ok := m.sess.SelectedRow()
	if !ok {
		return paneTitle("Detail", focused, width)
	}
	lines := strings.Split(strings.TrimRight(row.Detail, "\n"), "\n")
	return paneTitle("Detail: "+row.ID.String(), focused, width) + "\n" +
		renderTextLines(lines, m.sess.DetailOffset(), width, height-1, colorizeYAML, focused)
}

func (m Model) forwardsOf(kind domain.Kind, id domain.RowIdentity) []string {
	if kind != domain.KindPods {
		return nil
	}
	return m.sess.PortForwardsFor(id.Namespace, id.Name)
}
