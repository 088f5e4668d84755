package session

import "github.com/Taishi66/kdeck/internal/domain"

// SetTable replaces kind's rows and re-anchors the selection on the row
// that was selected before, or on a row requested by a qualified jump. A
// jump target is tried on the next refresh of its kind only.
func (s *Session) SetTable(kind domain.Kind, snap domain.TableSnapshot) {
	t, ok := s.tables[kind]
	if !ok {
		return
	}
	var keep *domain.RowIdentity
	prev := s.selectedIndex(kind)
	if rows := s.visible(kind); len(rows) > 0 {
		id := rows[prev].ID
		keep = &id
	}
	if id, pending := s.pendingSelect[kind]; pending {
		keep = &id
		delete(s.pendingSelect, kind)
	}

	t.Headers = snap.Headers
	t.Rows = snap.Rows
	t.RefreshedAt = snap.RefreshedAt
	t.Err = ""
	t.Selected = reselect(s.visible(kind), keep, prev)
}

// SetTableError puts kind in the error state: rows cleared, error shown.
func (s *Session) SetTableError(kind domain.Kind, err error) {
	t, ok := s.tables[kind]
	if !ok {
		return
	}
	t.Rows = nil
	t.Selected = 0
	t.Err = err.Error()
	if kind == s.kind {
		s.fail("%s: %v", kind.Title(), err)
	}
}

// TableTimedOut keeps kind's cached rows and says so.
func (s *Session) TableTimedOut(kind domain.Kind) {
	s.fail("%s timed out, showing cached", kind.Title())
}

// SetContainers opens the container picker for a pod and records the
// drill-down on the flow stack.
func (s *Session) SetContainers(namespace, pod string, containers []domain.ContainerInfo) {
	if len(containers) == 0 {
		s.info("pod %s/%s has no containers", namespace, pod)
		return
	}
	if s.picker == nil {
		s.pushFlow()
	}
	s.table = nil
	s.detail = nil
	s.focus = FocusTable
	s.picker = &ContainerPicker{Namespace: namespace, Pod: pod, Containers: containers}
}

// SetOverlay shows text in a table overlay. The picker it replaces, or the
// one remembered by the overlay it replaces, is kept for dismissal. Log
// overlays open scrolled to the end.
func (s *Session) SetOverlay(kind OverlayKind, title, text string, src *FetchLogs) {
	remembered := s.picker
	if remembered == nil && s.table != nil {
		remembered = s.table.Picker
	}
	o := &TableOverlay{Kind: kind, Title: title, Lines: splitLines(text), Picker: remembered}
	if src != nil {
		c := *src
		o.Source = &c
	}
	if kind == OverlayPodLogs || kind == OverlayWorkloadLogs {
		o.Offset = clampIndex(len(o.Lines)-1, len(o.Lines))
	}
	s.picker = nil
	s.detail = nil
	s.focus = FocusTable
	s.table = o
}

// FillDetail puts describe output into the overlay opened for kind and id.
// It reports false, leaving the session untouched, when that overlay is no
// longer showing.
func (s *Session) FillDetail(kind domain.Kind, id domain.RowIdentity, text string) bool {
	if s.detail == nil || s.detail.Kind != kind || s.detail.ID != id {
		return false
	}
	s.detail.Lines = splitLines(text)
	s.detail.Offset = 0
	return true
}

func (s *Session) SetOverview(m domain.OverviewMetrics) {
	s.overview = m
	s.overviewErr = ""
	s.overviewReady = true
}

func (s *Session) SetOverviewError(err error) {
	s.overviewErr = err.Error()
	s.overviewReady = true
}

func (s *Session) SetCatalog(c domain.IdentityCatalog) { s.catalog = c }

// SetCustomKinds stores discovered custom resources. An active custom
// resource that disappeared is dropped.
func (s *Session) SetCustomKinds(kinds []domain.CustomResourceDescriptor) {
	s.customKinds = kinds
	if s.customID != "" && s.CustomResource() == nil {
		s.leaveCustomResources()
	}
	if len(kinds) == 0 {
		s.info("no custom resources found")
	} else {
		s.info("%d custom resources", len(kinds))
	}
}

// IdentityChanged drops everything tied to the previous connection.
func (s *Session) IdentityChanged() {
	s.customKinds = nil
	s.leaveCustomResources()
	s.overviewReady = false
}

func (s *Session) leaveCustomResources() {
	s.customID = ""
	s.tables[domain.KindCustomResources] = &domain.TableSnapshot{}
	if s.kind == domain.KindCustomResources {
		s.switchKind(domain.KindPods)
	}
}

// AddPortForward records a forward and returns the sessions with the same
// mapping it supersedes, which the caller must stop.
func (s *Session) AddPortForward(pf domain.PortForwardSession) []domain.PortForwardSession {
	var superseded []domain.PortForwardSession
	kept := s.forwards[:0]
	for _, f := range s.forwards {
		if f.SameMapping(pf) {
			superseded = append(superseded, f)
			continue
		}
		kept = append(kept, f)
	}
	s.forwards = append(kept, pf)
	s.setStatus(StatusSuccess, "forwarding %s %s/%s %s (pid %d)",
		pf.Kind.Title(), pf.Namespace, pf.Name, pf.Mapping(), pf.PID)
	return superseded
}

// SupersededBy lists the live forwards pf would replace.
func (s *Session) SupersededBy(pf domain.PortForwardSession) []domain.PortForwardSession {
	var out []domain.PortForwardSession
	for _, f := range s.forwards {
		if f.SameMapping(pf) {
			out = append(out, f)
		}
	}
	return out
}

// RemovePortForward forgets the forward owned by pid.
func (s *Session) RemovePortForward(pid int) (domain.PortForwardSession, bool) {
	for i, f := range s.forwards {
		if f.PID == pid {
			s.forwards = append(s.forwards[:i], s.forwards[i+1:]...)
			return f, true
		}
	}
	return domain.PortForwardSession{}, false
}

// SetStatus reports an orchestrator outcome.
func (s *Session) SetStatus(level StatusLevel, format string, args ...any) {
	s.setStatus(level, format, args...)
}

// ClearStatus clears the status line if it is still message seq.
func (s *Session) ClearStatus(seq uint64) {
	if s.status.Seq == seq && s.status.Text != "" {
		s.status = Status{Seq: s.status.Seq}
	}
}

// SetPageSize sets the page movement step from the visible table height.
func (s *Session) SetPageSize(n int) {
	if n < 1 {
		n = 1
	}
	s.pageSize = n
}
