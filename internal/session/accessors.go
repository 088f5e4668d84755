package session

import (
	"time"

	"github.com/Taishi66/kdeck/internal/domain"
)

// Read-only views for the presenter and the orchestrator. Slices are
// shared with the session and must not be modified.

func (s *Session) Mode() Mode              { return s.mode }
func (s *Session) Input() string           { return s.input }
func (s *Session) Completions() []string   { return s.completions }
func (s *Session) CompletionIndex() int    { return s.completionIdx }
func (s *Session) HelpOpen() bool          { return s.mode == ModeHelp }
func (s *Session) ActiveKind() domain.Kind { return s.kind }
func (s *Session) Scope() domain.Scope     { return s.scope }
func (s *Session) Filter() string          { return s.filter }

// Headers returns the active kind's column headers.
func (s *Session) Headers() []string { return s.tables[s.kind].Headers }

// VisibleRows returns the active kind's rows after filter and sort.
func (s *Session) VisibleRows() []domain.Row { return s.visible(s.kind) }

// Selected returns the clamped selection index of the active kind.
func (s *Session) Selected() int { return s.selectedIndex(s.kind) }

func (s *Session) SelectedRow() (domain.Row, bool) { return s.selectedRow() }

func (s *Session) TableError() string { return s.tables[s.kind].Err }

func (s *Session) RefreshedAt() time.Time { return s.tables[s.kind].RefreshedAt }

// Rows returns kind's unfiltered rows.
func (s *Session) Rows(kind domain.Kind) []domain.Row {
	if t, ok := s.tables[kind]; ok {
		return t.Rows
	}
	return nil
}

func (s *Session) Picker() *ContainerPicker        { return s.picker }
func (s *Session) TableOverlay() *TableOverlay     { return s.table }
func (s *Session) DetailOverlay() *DetailOverlay   { return s.detail }
func (s *Session) Focus() Focus                    { return s.focus }
func (s *Session) DetailVisible() bool             { return s.detailVisible }
func (s *Session) DetailOffset() int               { return s.detailOffset }
func (s *Session) Confirmation() *Confirmation     { return s.pending }
func (s *Session) Status() Status                  { return s.status }
func (s *Session) Catalog() domain.IdentityCatalog { return s.catalog }
func (s *Session) ActiveSlot() int                 { return s.activeSlot }
func (s *Session) SortState() SortState            { return s.sorts[s.kind] }

// OverviewOpen reports whether the overview panel is shown, with its data
// once it has arrived.
func (s *Session) OverviewOpen() bool { return s.overviewOpen }

func (s *Session) Overview() (m domain.OverviewMetrics, errText string, ready bool) {
	return s.overview, s.overviewErr, s.overviewReady
}

// Slots reports which view slots are materialized.
func (s *Session) Slots() [SlotCount]bool {
	var out [SlotCount]bool
	for i, v := range s.slots {
		out[i] = v != nil || i == s.activeSlot
	}
	return out
}

func (s *Session) PortForwards() []domain.PortForwardSession { return s.forwards }

// PortForwardsFor lists the mappings active on one pod, for the picker.
func (s *Session) PortForwardsFor(namespace, pod string) []string {
	var out []string
	for _, f := range s.forwards {
		if f.Kind == domain.KindPods && f.Namespace == namespace && f.Name == pod {
			out = append(out, f.Mapping())
		}
	}
	return out
}

func (s *Session) CustomKinds() []domain.CustomResourceDescriptor { return s.customKinds }

func (s *Session) CustomResourceID() string { return s.customID }

// CustomResource returns the descriptor of the selected custom resource.
func (s *Session) CustomResource() *domain.CustomResourceDescriptor {
	if s.customID == "" {
		return nil
	}
	for i := range s.customKinds {
		if s.customKinds[i].ID() == s.customID {
			d := s.customKinds[i]
			return &d
		}
	}
	return nil
}
