// Package session holds the cockpit's navigable state. Apply is the only
// input-driven mutator; the orchestrator reports asynchronous results
// through the setters, and the presenter reads the accessors.
package session

import (
	"fmt"

	"github.com/Taishi66/kdeck/internal/domain"
)

const defaultPageSize = 20

// Options seed a new Session.
type Options struct {
	Kind               domain.Kind
	Scope              domain.Scope
	ProdPatterns       []string
	ReadonlyNamespaces []string
	Shell              string
}

// Session is the cockpit state machine. It is not safe for concurrent use;
// the orchestrator owns it from a single goroutine.
type Session struct {
	opts Options

	mode          Mode
	input         string
	completions   []string
	completionIdx int

	kind          domain.Kind
	scope         domain.Scope
	filter        string
	customID      string
	customKinds   []domain.CustomResourceDescriptor
	tables        map[domain.Kind]*domain.TableSnapshot
	sorts         map[domain.Kind]SortState
	pendingSelect map[domain.Kind]domain.RowIdentity

	focus         Focus
	detailVisible bool
	detailOffset  int
	overviewOpen  bool
	overview      domain.OverviewMetrics
	overviewErr   string
	overviewReady bool

	picker *ContainerPicker
	table  *TableOverlay
	detail *DetailOverlay
	back   []FlowState

	slots      [SlotCount]*ViewState
	activeSlot int

	pending  *Confirmation
	status   Status
	catalog  domain.IdentityCatalog
	forwards []domain.PortForwardSession
	pageSize int
}

// New creates a session with an empty table for every kind, parked on
// view slot 1.
func New(opts Options) *Session {
	if !opts.Kind.Valid() || opts.Kind == domain.KindCustomResources {
		opts.Kind = domain.KindPods
	}
	if opts.Shell == "" {
		opts.Shell = "/bin/sh"
	}
	s := &Session{
		opts:          opts,
		kind:          opts.Kind,
		scope:         opts.Scope,
		completionIdx: -1,
		tables:        make(map[domain.Kind]*domain.TableSnapshot),
		sorts:         make(map[domain.Kind]SortState),
		pendingSelect: make(map[domain.Kind]domain.RowIdentity),
		detailVisible: true,
		activeSlot:    1,
		pageSize:      defaultPageSize,
	}
	for _, k := range domain.AllKinds() {
		s.tables[k] = &domain.TableSnapshot{}
		s.sorts[k] = SortState{Column: -1, Ascending: true}
	}
	s.slots[s.activeSlot] = s.capture()
	return s
}

// Apply translates one action into state changes and at most one Command.
func (s *Session) Apply(a Action) Command {
	if s.pending != nil {
		return s.applyConfirm(a)
	}
	switch s.mode {
	case ModeHelp:
		s.mode = ModeNormal
		return nil
	case ModeFilter, ModeCommand, ModeJump:
		return s.applyText(a)
	}
	return s.applyNormal(a)
}

func (s *Session) applyConfirm(a Action) Command {
	switch a.Kind {
	case ActConfirm:
		cmd := s.pending.Command
		s.pending = nil
		return cmd
	case ActDeny, ActCancel:
		s.pending = nil
		s.info("cancelled")
		return nil
	}
	s.info("%s [y/n]", s.pending.Prompt)
	return nil
}

func (s *Session) applyNormal(a Action) Command {
	switch a.Kind {
	case ActMoveUp:
		s.move(-1)
	case ActMoveDown:
		s.move(1)
	case ActPageUp:
		s.move(-s.pageSize)
	case ActPageDown:
		s.move(s.pageSize)
	case ActTop:
		s.moveTo(false)
	case ActBottom:
		s.moveTo(true)
	case ActEnter:
		return s.enter()
	case ActBack:
		return s.stepBack()
	case ActNextTab:
		return s.cycleTab(1)
	case ActPrevTab:
		return s.cycleTab(-1)
	case ActToggleFocus:
		s.toggleFocus()
	case ActToggleDetail:
		s.detailVisible = !s.detailVisible
		if !s.detailVisible && s.detail == nil {
			s.focus = FocusTable
		}
	case ActOpenFilter:
		s.mode = ModeFilter
	case ActOpenCommand:
		s.openLine(ModeCommand, "")
	case ActOpenJump:
		s.openLine(ModeJump, "")
	case ActSlot:
		return s.switchSlot(a.Slot)
	case ActDeleteSlot:
		return s.deleteSlot()
	case ActRefresh:
		return RefreshActive{}
	case ActDelete:
		return s.prepareDelete()
	case ActRestart:
		return s.prepareRestart()
	case ActScaleUp:
		return s.prepareScaleDelta(1)
	case ActScaleDown:
		return s.prepareScaleDelta(-1)
	case ActLogs:
		return s.prepareLogs(false)
	case ActPreviousLogs:
		return s.prepareLogs(true)
	case ActShell:
		return s.prepareShell()
	case ActEdit:
		return s.prepareEdit()
	case ActPortForward:
		return s.preparePortForward()
	case ActDescribe:
		return s.prepareDescribe()
	case ActCopy:
		return s.prepareCopy()
	case ActCycleSort:
		s.cycleSort()
	case ActOverview:
		return s.openOverview()
	case ActHelp:
		s.mode = ModeHelp
	case ActQuit:
		return Quit{}
	}
	return nil
}

// --- Status ---

func (s *Session) setStatus(level StatusLevel, format string, args ...any) {
	s.status = Status{Text: fmt.Sprintf(format, args...), Level: level, Seq: s.status.Seq + 1}
}

func (s *Session) info(format string, args ...any) { s.setStatus(StatusInfo, format, args...) }

func (s *Session) fail(format string, args ...any) { s.setStatus(StatusError, format, args...) }
