package session

import (
	"strings"

	"github.com/Taishi66/kdeck/internal/domain"
)

// --- Visible rows ---

// visible returns kind's rows in display order: filtered when kind is
// active, then sorted.
func (s *Session) visible(kind domain.Kind) []domain.Row {
	t := s.tables[kind]
	rows := t.Rows
	if kind == s.kind && s.filter != "" {
		f := strings.ToLower(s.filter)
		filtered := make([]domain.Row, 0, len(rows))
		for _, r := range rows {
			if rowMatches(r, f) {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}
	return sortRows(rows, t.Headers, s.sorts[kind])
}

func rowMatches(r domain.Row, f string) bool {
	if strings.Contains(strings.ToLower(r.ID.Name), f) || strings.Contains(strings.ToLower(r.ID.Namespace), f) {
		return true
	}
	for _, c := range r.Columns {
		if strings.Contains(strings.ToLower(c), f) {
			return true
		}
	}
	return false
}

// clampIndex applies the one clamping rule: min(i, n-1), and 0 when n == 0.
func clampIndex(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (s *Session) selectedIndex(kind domain.Kind) int {
	return clampIndex(s.tables[kind].Selected, len(s.visible(kind)))
}

func (s *Session) selectedRow() (domain.Row, bool) {
	rows := s.visible(s.kind)
	if len(rows) == 0 {
		return domain.Row{}, false
	}
	return rows[clampIndex(s.tables[s.kind].Selected, len(rows))], true
}

// reselect finds id in rows, preferring the occurrence nearest prev
// (earliest on ties), and otherwise clamps prev.
func reselect(rows []domain.Row, id *domain.RowIdentity, prev int) int {
	if id != nil {
		best, bestDist := -1, 0
		for i, r := range rows {
			if r.ID != *id {
				continue
			}
			dist := i - prev
			if dist < 0 {
				dist = -dist
			}
			if best < 0 || dist < bestDist {
				best, bestDist = i, dist
			}
		}
		if best >= 0 {
			return best
		}
	}
	return clampIndex(prev, len(rows))
}

// selectIdentity moves kind's selection onto id if it is visible.
func (s *Session) selectIdentity(kind domain.Kind, id domain.RowIdentity) bool {
	for i, r := range s.visible(kind) {
		if r.ID == id {
			s.tables[kind].Selected = i
			return true
		}
	}
	return false
}

func (s *Session) resetSelection() {
	s.tables[s.kind].Selected = 0
	s.detailOffset = 0
}

// --- Movement ---

// move dispatches by priority: picker, detail focus, table overlay, table.
func (s *Session) move(delta int) {
	switch {
	case s.picker != nil:
		s.picker.Selected = clampIndex(s.picker.Selected+delta, len(s.picker.Containers))
	case s.focus == FocusDetail:
		if s.detail != nil {
			s.detail.Offset = clampIndex(s.detail.Offset+delta, len(s.detail.Lines))
		} else {
			s.detailOffset = clampIndex(s.detailOffset+delta, len(s.rowDetailLines()))
		}
	case s.table != nil:
		s.table.Offset = clampIndex(s.table.Offset+delta, len(s.table.Lines))
	default:
		t := s.tables[s.kind]
		t.Selected = clampIndex(s.selectedIndex(s.kind)+delta, len(s.visible(s.kind)))
		s.detailOffset = 0
		delete(s.pendingSelect, s.kind)
	}
}

func (s *Session) moveTo(bottom bool) {
	const far = 1 << 30
	if bottom {
		s.move(far)
	} else {
		s.move(-far)
	}
}

func (s *Session) rowDetailLines() []string {
	row, ok := s.selectedRow()
	if !ok {
		return nil
	}
	return splitLines(row.Detail)
}

func (s *Session) toggleFocus() {
	if s.focus == FocusTable && (s.detailVisible || s.detail != nil) {
		s.focus = FocusDetail
		return
	}
	s.focus = FocusTable
}

// --- Kinds and tabs ---

// Tabs returns the kinds shown in the tab bar. Custom resources appear
// once one has been selected.
func (s *Session) Tabs() []domain.Kind {
	kinds := domain.AllKinds()
	if s.customID == "" {
		kinds = kinds[:len(kinds)-1]
	}
	return kinds
}

func (s *Session) cycleTab(dir int) Command {
	tabs := s.Tabs()
	idx := 0
	for i, k := range tabs {
		if k == s.kind {
			idx = i
		}
	}
	idx = (idx + dir + len(tabs)) % len(tabs)
	s.switchKind(tabs[idx])
	return RefreshActive{}
}

func (s *Session) switchKind(k domain.Kind) {
	s.kind = k
	s.filter = ""
	s.detailOffset = 0
	clear(s.pendingSelect)
	s.closeOverlays()
}

func (s *Session) closeOverlays() {
	s.picker = nil
	s.table = nil
	s.detail = nil
	s.overviewOpen = false
	s.focus = FocusTable
}

// --- Flow stack ---

func (s *Session) flow() FlowState {
	sel := make(map[domain.Kind]int, len(s.tables))
	for k, t := range s.tables {
		sel[k] = t.Selected
	}
	return FlowState{Kind: s.kind, Scope: s.scope, Filter: s.filter, CustomID: s.customID, Selected: sel}
}

func (s *Session) restoreFlow(f FlowState) {
	s.kind = f.Kind
	s.scope = f.Scope
	s.filter = f.Filter
	s.customID = f.CustomID
	for k, v := range f.Selected {
		if t, ok := s.tables[k]; ok {
			t.Selected = v
		}
	}
	s.detailOffset = 0
}

func (s *Session) pushFlow() {
	s.back = append(s.back, s.flow())
}

// --- Enter / back ---

func (s *Session) enter() Command {
	if s.picker != nil {
		c, ok := s.picker.SelectedContainer()
		if !ok {
			return nil
		}
		return FetchLogs{
			Kind:      domain.KindPods,
			ID:        domain.RowIdentity{Namespace: s.picker.Namespace, Name: s.picker.Pod},
			Container: c.Name,
		}
	}
	if s.table != nil || s.detail != nil {
		return nil
	}
	row, ok := s.selectedRow()
	if !ok {
		s.info("nothing selected")
		return nil
	}
	if !s.kind.Supports(domain.CapDrillDown) {
		s.info("%s has no drill-down", s.kind.Title())
		return nil
	}

	// The pod drill-down pushes its flow once the picker opens.
	switch {
	case s.kind == domain.KindNamespaces:
		s.pushFlow()
		s.scope = domain.Named(row.ID.Name)
		s.switchKind(domain.KindPods)
		s.resetSelection()
		return RefreshAll{}
	case s.kind == domain.KindPods:
		return FetchContainers{Namespace: row.ID.Namespace, Pod: row.ID.Name}
	default:
		s.pushFlow()
		s.switchKind(domain.KindPods)
		s.filter = row.ID.Name
		s.resetSelection()
		return RefreshActive{}
	}
}

// stepBack dismisses the innermost layer: picker, table overlay (restoring
// its picker), overview, detail overlay, then the flow stack.
func (s *Session) stepBack() Command {
	switch {
	case s.picker != nil:
		s.picker = nil
		return nil
	case s.table != nil:
		s.picker = s.table.Picker
		s.table = nil
		return nil
	case s.overviewOpen:
		s.overviewOpen = false
		return nil
	case s.detail != nil:
		s.detail = nil
		s.focus = FocusTable
		return nil
	case len(s.back) > 0:
		prevScope := s.scope
		f := s.back[len(s.back)-1]
		s.back = s.back[:len(s.back)-1]
		s.closeOverlays()
		s.restoreFlow(f)
		if s.scope != prevScope {
			return RefreshAll{}
		}
		return RefreshActive{}
	}
	s.info("already at root")
	return nil
}
