package session

import (
	"strings"

	"github.com/Taishi66/kdeck/internal/domain"
)

// SlotCount is the number of addressable view slots.
const SlotCount = 10

// Focus is the pane receiving movement.
type Focus int

const (
	FocusTable Focus = iota
	FocusDetail
)

// StatusLevel colours the status line.
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusSuccess
	StatusError
)

// Status is the one-line message under the table. Seq increases on every
// change so the orchestrator can expire exactly the message it scheduled.
type Status struct {
	Text  string
	Level StatusLevel
	Seq   uint64
}

// FlowState is the navigation snapshot pushed before a drill-down.
type FlowState struct {
	Kind     domain.Kind
	Scope    domain.Scope
	Filter   string
	CustomID string
	Selected map[domain.Kind]int
}

// ContainerPicker lists the containers of one pod.
type ContainerPicker struct {
	Namespace  string
	Pod        string
	Containers []domain.ContainerInfo
	Selected   int
}

// SelectedContainer returns the highlighted container, if any.
func (p *ContainerPicker) SelectedContainer() (domain.ContainerInfo, bool) {
	if p == nil || p.Selected < 0 || p.Selected >= len(p.Containers) {
		return domain.ContainerInfo{}, false
	}
	return p.Containers[p.Selected], true
}

func (p *ContainerPicker) clone() *ContainerPicker {
	if p == nil {
		return nil
	}
	c := *p
	c.Containers = append([]domain.ContainerInfo(nil), p.Containers...)
	return &c
}

// OverlayKind tags the content of a table overlay.
type OverlayKind int

const (
	OverlayOutput OverlayKind = iota
	OverlayPodLogs
	OverlayWorkloadLogs
	OverlayShell
)

// TableOverlay is full-pane scrollable text replacing the table. Picker is
// the container picker it superseded, restored on dismissal. Source is set
// for log overlays so previous/current can be toggled.
type TableOverlay struct {
	Kind   OverlayKind
	Title  string
	Lines  []string
	Offset int
	Picker *ContainerPicker
	Source *FetchLogs
}

func (o *TableOverlay) clone() *TableOverlay {
	if o == nil {
		return nil
	}
	c := *o
	c.Picker = o.Picker.clone()
	if o.Source != nil {
		src := *o.Source
		c.Source = &src
	}
	return &c
}

// DetailOverlay is full-pane text replacing the per-row detail. Kind and ID
// name the object a describe overlay was opened for.
type DetailOverlay struct {
	Title  string
	Lines  []string
	Offset int
	Kind   domain.Kind
	ID     domain.RowIdentity
}

func (o *DetailOverlay) clone() *DetailOverlay {
	if o == nil {
		return nil
	}
	c := *o
	return &c
}

// ViewState is everything one view slot restores.
type ViewState struct {
	Flow          FlowState
	Focus         Focus
	DetailVisible bool
	DetailOffset  int
	Overview      bool
	Picker        *ContainerPicker
	Table         *TableOverlay
	Detail        *DetailOverlay
	Back          []FlowState
}

// Confirmation gates a destructive command behind a yes/no prompt.
type Confirmation struct {
	Prompt  string
	Command Command
}

// SortState orders a kind's rows by one column. Column < 0 keeps the
// backend order.
type SortState struct {
	Column    int
	Ascending bool
}

func splitLines(text string) []string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return []string{}
	}
	return strings.Split(text, "\n")
}

func copySelections(m map[domain.Kind]int) map[domain.Kind]int {
	out := make(map[domain.Kind]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
