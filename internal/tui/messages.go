package tui

import (
	"github.com/Taishi66/kdeck/internal/domain"
	"github.com/Taishi66/kdeck/internal/session"
)

type tickMsg struct{}

// tableMsg is one finished table fetch. gen and scope tell whether the
// result still belongs to what is on screen.
type tableMsg struct {
	kind  domain.Kind
	scope domain.Scope
	crID  string
	gen   int
	snap  domain.TableSnapshot
	err   error
}

// tableBatchMsg carries the background kinds fetched by one RefreshAll.
type tableBatchMsg []tableMsg

type catalogMsg struct {
	gen     int
	catalog domain.IdentityCatalog
	err     error
}

type containersMsg struct {
	namespace, pod string
	containers     []domain.ContainerInfo
	err            error
}

type logsMsg struct {
	src   session.FetchLogs
	kind  session.OverlayKind
	title string
	text  string
	err   error
}

type detailMsg struct {
	kind domain.Kind
	id   domain.RowIdentity
	text string
	err  error
}

type overviewMsg struct {
	metrics domain.OverviewMetrics
	err     error
}

type customKindsMsg struct {
	gen   int
	kinds []domain.CustomResourceDescriptor
	err   error
}

type mutationMsg struct {
	verb string
	kind domain.Kind
	what string
	err  error
}

type identityMsg struct {
	what, name string
	err        error
}

// handoffDoneMsg reports the end of a process that owned the terminal.
type handoffDoneMsg struct {
	what string
	err  error
}

type execOutputMsg struct {
	title  string
	output string
	err    error
}

type portForwardExitedMsg struct {
	pid int
	err error
}

type watchMsg struct {
	event domain.WatchEvent
}

type statusExpiredMsg struct {
	seq uint64
}

type copiedMsg struct {
	text string
	err  error
}

type connectedMsg struct {
	src domain.DataSource
	err error
}
