package session

// Mode is the input mode deciding what an Action means.
type Mode int

const (
	ModeNormal Mode = iota
	ModeFilter
	ModeCommand
	ModeJump
	ModeHelp
)

func (m Mode) String() string {
	switch m {
	case ModeFilter:
		return "FILTER"
	case ModeCommand:
		return "COMMAND"
	case ModeJump:
		return "JUMP"
	case ModeHelp:
		return "HELP"
	default:
		return "NORMAL"
	}
}

// ActionKind enumerates user intents.
type ActionKind int

const (
	ActNone ActionKind = iota

	// Movement
	ActMoveUp
	ActMoveDown
	ActPageUp
	ActPageDown
	ActTop
	ActBottom

	// Navigation
	ActEnter
	ActBack
	ActNextTab
	ActPrevTab
	ActToggleFocus
	ActToggleDetail
	ActOpenFilter
	ActOpenCommand
	ActOpenJump
	ActSlot
	ActDeleteSlot

	// Operations on the selected row
	ActRefresh
	ActDelete
	ActRestart
	ActScaleUp
	ActScaleDown
	ActLogs
	ActPreviousLogs
	ActShell
	ActEdit
	ActPortForward
	ActDescribe
	ActCopy
	ActCycleSort

	ActOverview
	ActHelp
	ActQuit

	// Text entry
	ActInsert
	ActBackspace
	ActSubmit
	ActCancel
	ActCompleteNext
	ActCompletePrev

	// Confirmation
	ActConfirm
	ActDeny
)

// Action is one user intent. Rune is set for ActInsert, Slot for ActSlot.
type Action struct {
	Kind ActionKind
	Rune rune
	Slot int
}

// Act builds an Action without payload.
func Act(k ActionKind) Action { return Action{Kind: k} }

// Insert builds a text insertion.
func Insert(r rune) Action { return Action{Kind: ActInsert, Rune: r} }

// Slot builds a slot switch.
func Slot(n int) Action { return Action{Kind: ActSlot, Slot: n} }
