package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Taishi66/kdeck/internal/session"
)

type keyMap struct {
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	Enter        key.Binding
	Back         key.Binding
	NextTab      key.Binding
	PrevTab      key.Binding
	ToggleFocus  key.Binding
	ToggleDetail key.Binding
	Filter       key.Binding
	Command      key.Binding
	Jump         key.Binding
	DeleteSlot   key.Binding
	Refresh      key.Binding
	Delete       key.Binding
	Restart      key.Binding
	ScaleUp      key.Binding
	ScaleDn      key.Binding
	Logs         key.Binding
	Previous     key.Binding
	Shell        key.Binding
	Edit         key.Binding
	PortForward  key.Binding
	Describe     key.Binding
	Copy         key.Binding
	Sort         key.Binding
	Overview     key.Binding
	Help         key.Binding
	Quit         key.Binding
	ForceQuit    key.Binding
}

var keys = keyMap{
	Up:           key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
	Down:         key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	Top:          key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	Bottom:       key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	PageUp:       key.NewBinding(key.WithKeys("ctrl+u", "pgup"), key.WithHelp("C-u", "page up")),
	PageDown:     key.NewBinding(key.WithKeys("ctrl+d", "pgdown"), key.WithHelp("C-d", "page down")),
	Enter:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drill down")),
	Back:         key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
	NextTab:      key.NewBinding(key.WithKeys("tab", "L"), key.WithHelp("tab", "next kind")),
	PrevTab:      key.NewBinding(key.WithKeys("shift+tab", "H"), key.WithHelp("S-tab", "previous kind")),
	ToggleFocus:  key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "focus table/detail")),
	ToggleDetail: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "toggle detail")),
	Filter:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Command:      key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
	Jump:         key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "jump")),
	DeleteSlot:   key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "delete slot")),
	Refresh:      key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh")),
	Delete:       key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Restart:      key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "restart")),
	ScaleUp:      key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "scale up")),
	ScaleDn:      key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "scale down")),
	Logs:         key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "logs")),
	Previous:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous logs")),
	Shell:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shell")),
	Edit:         key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	PortForward:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "port-forward")),
	Describe:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "describe")),
	Copy:         key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy name")),
	Sort:         key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "sort")),
	Overview:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "overview")),
	Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:         key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQuit:    key.NewBinding(key.WithKeys("ctrl+c")),
}

// normalBindings pairs each normal-mode binding with its action, in match
// order.
var normalBindings = []struct {
	binding *key.Binding
	action  session.ActionKind
}{
	{&keys.Up, session.ActMoveUp},
	{&keys.Down, session.ActMoveDown},
	{&keys.Top, session.ActTop},
	{&keys.Bottom, session.ActBottom},
	{&keys.PageUp, session.ActPageUp},
	{&keys.PageDown, session.ActPageDown},
	{&keys.Enter, session.ActEnter},
	{&keys.Back, session.ActBack},
	{&keys.NextTab, session.ActNextTab},
	{&keys.PrevTab, session.ActPrevTab},
	{&keys.ToggleFocus, session.ActToggleFocus},
	{&keys.ToggleDetail, session.ActToggleDetail},
	{&keys.Filter, session.ActOpenFilter},
	{&keys.Command, session.ActOpenCommand},
	{&keys.Jump, session.ActOpenJump},
	{&keys.DeleteSlot, session.ActDeleteSlot},
	{&keys.Refresh, session.ActRefresh},
	{&keys.Delete, session.ActDelete},
	{&keys.Restart, session.ActRestart},
	{&keys.ScaleUp, session.ActScaleUp},
	{&keys.ScaleDn, session.ActScaleDown},
	{&keys.Logs, session.ActLogs},
	{&keys.Previous, session.ActPreviousLogs},
	{&keys.Shell, session.ActShell},
	{&keys.Edit, session.ActEdit},
	{&keys.PortForward, session.ActPortForward},
	{&keys.Describe, session.ActDescribe},
	{&keys.Copy, session.ActCopy},
	{&keys.Sort, session.ActCycleSort},
	{&keys.Overview, session.ActOverview},
	{&keys.Help, session.ActHelp},
	{&keys.Quit, session.ActQuit},
}

// actionsFor translates a key press into session actions for the current
// mode. Pasted text arrives as one message and yields one insert per rune.
func actionsFor(mode session.Mode, confirming bool, msg tea.KeyMsg) []session.Action {
	switch {
	case confirming:
		switch msg.String() {
		case "y", "Y":
			return []session.Action{session.Act(session.ActConfirm)}
		case "n", "N":
			return []session.Action{session.Act(session.ActDeny)}
		case "esc":
			return []session.Action{session.Act(session.ActCancel)}
		}
		return []session.Action{session.Act(session.ActNone)}

	case mode == session.ModeHelp:
		return []session.Action{session.Act(session.ActNone)}

	case mode == session.ModeFilter || mode == session.ModeCommand || mode == session.ModeJump:
		return textActions(mode, msg)
	}

	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		if r := msg.Runes[0]; r >= '0' && r <= '9' {
			return []session.Action{session.Slot(int(r - '0'))}
		}
	}
	for _, nb := range normalBindings {
		if key.Matches(msg, *nb.binding) {
			return []session.Action{session.Act(nb.action)}
		}
	}
	return nil
}

func textActions(mode session.Mode, msg tea.KeyMsg) []session.Action {
	switch msg.Type {
	case tea.KeyEnter:
		return []session.Action{session.Act(session.ActSubmit)}
	case tea.KeyEsc:
		return []session.Action{session.Act(session.ActCancel)}
	case tea.KeyBackspace, tea.KeyCtrlH:
		return []session.Action{session.Act(session.ActBackspace)}
	case tea.KeySpace:
		return []session.Action{session.Insert(' ')}
	case tea.KeyTab, tea.KeyDown:
		if mode != session.ModeFilter {
			return []session.Action{session.Act(session.ActCompleteNext)}
		}
	case tea.KeyShiftTab, tea.KeyUp:
		if mode != session.ModeFilter {
			return []session.Action{session.Act(session.ActCompletePrev)}
		}
	case tea.KeyRunes:
		out := make([]session.Action, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			out = append(out, session.Insert(r))
		}
		return out
	}
	return nil
}

// helpSections lists the bindings shown on the help screen.
func helpSections() [][]key.Binding {
	return [][]key.Binding{
		{keys.Up, keys.Down, keys.Top, keys.Bottom, keys.PageUp, keys.PageDown, keys.Enter, keys.Back},
		{keys.NextTab, keys.PrevTab, keys.ToggleFocus, keys.ToggleDetail, keys.Filter, keys.Command, keys.Jump, keys.DeleteSlot},
		{keys.Refresh, keys.Delete, keys.Restart, keys.ScaleUp, keys.ScaleDn, keys.Logs, keys.Previous, keys.Shell},
		{keys.Edit, keys.PortForward, keys.Describe, keys.Copy, keys.Sort, keys.Overview, keys.Help, keys.Quit},
	}
}
