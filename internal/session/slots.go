package session

func (s *Session) capture() *ViewState {
	back := make([]FlowState, len(s.back))
	for i, f := range s.back {
		f.Selected = copySelections(f.Selected)
		back[i] = f
	}
	return &ViewState{
		Flow:          s.flow(),
		Focus:         s.focus,
		DetailVisible: s.detailVisible,
		DetailOffset:  s.detailOffset,
		Overview:      s.overviewOpen,
		Picker:        s.picker.clone(),
		Table:         s.table.clone(),
		Detail:        s.detail.clone(),
		Back:          back,
	}
}

func (s *Session) restore(v *ViewState) {
	s.restoreFlow(v.Flow)
	s.focus = v.Focus
	s.detailVisible = v.DetailVisible
	s.detailOffset = v.DetailOffset
	s.overviewOpen = v.Overview
	s.picker = v.Picker.clone()
	s.table = v.Table.clone()
	s.detail = v.Detail.clone()
	s.back = make([]FlowState, len(v.Back))
	for i, f := range v.Back {
		f.Selected = copySelections(f.Selected)
		s.back[i] = f
	}
}

// switchSlot stores the live state in the active slot, then restores the
// target slot or starts it fresh from the current tab and namespace.
func (s *Session) switchSlot(n int) Command {
	if n < 0 || n >= SlotCount {
		s.fail("no view slot %d", n)
		return nil
	}
	if n == s.activeSlot {
		s.info("already on slot %d", n)
		return nil
	}

	s.slots[s.activeSlot] = s.capture()
	if stored := s.slots[n]; stored != nil {
		s.restore(stored)
		s.info("slot %d", n)
	} else {
		s.filter = ""
		s.detailOffset = 0
		s.closeOverlays()
		s.back = nil
		s.slots[n] = s.capture()
		s.info("slot %d (new)", n)
	}
	s.activeSlot = n
	return RefreshActive{}
}

// deleteSlot drops the active slot and falls back to slot 1, else the
// lowest materialized slot. The last slot cannot be deleted.
func (s *Session) deleteSlot() Command {
	fallback := -1
	if s.activeSlot != 1 && s.slots[1] != nil {
		fallback = 1
	} else {
		for i, v := range s.slots {
			if i != s.activeSlot && v != nil {
				fallback = i
				break
			}
		}
	}
	if fallback < 0 {
		s.fail("cannot delete the last view slot")
		return nil
	}

	deleted := s.activeSlot
	s.slots[deleted] = nil
	s.restore(s.slots[fallback])
	s.activeSlot = fallback
	s.info("slot %d deleted, now on slot %d", deleted, fallback)
	return RefreshActive{}
}
