package session

import (
	"github.com/Taishi66/kdeck/internal/cmdline"
	"github.com/Taishi66/kdeck/internal/domain"
)

// applyText handles the filter, command and jump line editors.
func (s *Session) applyText(a Action) Command {
	switch a.Kind {
	case ActInsert:
		if a.Rune == 0 {
			return nil
		}
		if s.mode == ModeFilter {
			s.filter += string(a.Rune)
			s.resetSelection()
			return nil
		}
		s.input += string(a.Rune)
		s.refreshCompletions()
	case ActBackspace:
		if s.mode == ModeFilter {
			s.filter = dropLastRune(s.filter)
			s.resetSelection()
			return nil
		}
		s.input = dropLastRune(s.input)
		s.refreshCompletions()
	case ActCancel:
		if s.mode == ModeFilter {
			s.filter = ""
			s.resetSelection()
		}
		s.closeLine()
	case ActSubmit:
		mode, line := s.mode, s.input
		s.closeLine()
		switch mode {
		case ModeCommand:
			return s.submitCommand(line)
		case ModeJump:
			return s.submitJump(line)
		}
	case ActCompleteNext:
		s.cycleCompletion(1)
	case ActCompletePrev:
		s.cycleCompletion(-1)
	}
	return nil
}

func dropLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}

func (s *Session) openLine(mode Mode, prefill string) {
	s.mode = mode
	s.input = prefill
	s.refreshCompletions()
}

func (s *Session) closeLine() {
	s.mode = ModeNormal
	s.input = ""
	s.completions = nil
	s.completionIdx = -1
}

func (s *Session) lineMode() cmdline.Mode {
	if s.mode == ModeJump {
		return cmdline.ModeJump
	}
	return cmdline.ModeCommand
}

func (s *Session) refreshCompletions() {
	s.completions = cmdline.Complete(s.lineMode(), s.input, s.vocabulary())
	s.completionIdx = -1
}

// cycleCompletion steps through the frozen candidate list, copying the
// chosen candidate into the line.
func (s *Session) cycleCompletion(dir int) {
	n := len(s.completions)
	if n == 0 {
		return
	}
	switch {
	case s.completionIdx < 0 && dir < 0:
		s.completionIdx = n - 1
	case s.completionIdx < 0:
		s.completionIdx = 0
	default:
		s.completionIdx = (s.completionIdx + dir + n) % n
	}
	s.input = s.completions[s.completionIdx]
}

func (s *Session) vocabulary() cmdline.Vocabulary {
	rows := make(map[domain.Kind][]domain.RowIdentity, len(s.tables))
	for k, t := range s.tables {
		ids := make([]domain.RowIdentity, 0, min(len(t.Rows), cmdline.MaxRowsPerKind))
		for _, r := range t.Rows {
			if len(ids) == cmdline.MaxRowsPerKind {
				break
			}
			ids = append(ids, r.ID)
		}
		rows[k] = ids
	}
	return cmdline.Vocabulary{Catalog: s.catalog, Rows: rows, CustomKinds: s.customKinds}
}
