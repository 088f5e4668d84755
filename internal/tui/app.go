// Package tui runs the cockpit: a bubbletea program that feeds key presses
// to the session, executes the commands it returns against the data source,
// and renders the session's state.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Taishi66/kdeck/internal/config"
	"github.com/Taishi66/kdeck/internal/domain"
	"github.com/Taishi66/kdeck/internal/logging"
	"github.com/Taishi66/kdeck/internal/session"
	"github.com/Taishi66/kdeck/internal/watch"
)

const statusLifetime = 5 * time.Second

// after schedules a timed message. Tests replace it.
var after = tea.Tick

// Options configure a Model.
type Options struct {
	Source domain.DataSource
	Config *config.AppConfig
	// StartupErr shows the connection error screen instead of the cockpit.
	StartupErr error
	// Connect rebuilds the data source when retrying from the error screen.
	Connect func() (domain.DataSource, error)
}

// runState is shared by every copy of the Model. Only Update touches it.
type runState struct {
	inflight map[domain.Kind]int
	again    map[domain.Kind]bool
	forwards map[int]*forward
}

// Model is the orchestrator. Update is the single consumer of every event
// source; background work reports back through messages.
type Model struct {
	src  domain.DataSource
	cfg  *config.AppConfig
	sess *session.Session
	hub  *watch.Hub
	run  *runState

	startupErr error
	connect    func() (domain.DataSource, error)

	width  int
	height int
	// gen counts identity switches. Results from an older generation are
	// dropped.
	gen int
}

// New builds the orchestrator around a data source.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if opts.StartupErr != nil || opts.Source == nil {
		return Model{cfg: cfg, startupErr: opts.StartupErr, connect: opts.Connect}
	}

	scope := domain.AllNamespaces()
	if !cfg.Startup.AllNamespaces && cfg.Startup.Namespace != "" {
		scope = domain.Named(cfg.Startup.Namespace)
	}
	sess := session.New(session.Options{
		Kind:               domain.KindPods,
		Scope:              scope,
		ProdPatterns:       cfg.ProdPatterns,
		ReadonlyNamespaces: cfg.ReadonlyNamespaces,
		Shell:              cfg.Exec.Shell,
	})

	return Model{
		src:  opts.Source,
		cfg:  cfg,
		sess: sess,
		hub: watch.NewHub(opts.Source, watchedKinds(), watch.Options{
			Throttle: cfg.Watch.Throttle,
			Backoff:  cfg.Watch.Backoff,
		}),
		run: &runState{
			inflight: make(map[domain.Kind]int),
			again:    make(map[domain.Kind]bool),
			forwards: make(map[int]*forward),
		},
		connect: opts.Connect,
	}
}

func watchedKinds() []domain.Kind {
	var kinds []domain.Kind
	for _, k := range domain.AllKinds() {
		if k != domain.KindCustomResources {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func (m Model) Init() tea.Cmd {
	if m.sess == nil {
		return nil
	}
	m.hub.Start()
	logging.Info("orchestrator", "started in %s", m.sess.Scope())
	return tea.Batch(m.refreshAll(), m.tick(), m.listenWatch())
}

func (m Model) tick() tea.Cmd {
	return after(config.ClampRefresh(m.cfg.RefreshInterval), func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m Model) listenWatch() tea.Cmd {
	ch := m.hub.Events()
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return nil
		}
		return watchMsg{event: evt}
	}
}

func expireStatus(seq uint64) tea.Cmd {
	return after(statusLifetime, func(time.Time) tea.Msg {
		return statusExpiredMsg{seq: seq}
	})
}

// --- Update ---

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.sess == nil {
		return m.updateStartup(msg)
	}
	seq := m.sess.Status().Seq
	next, cmd := m.update(msg)
	if st := next.sess.Status(); st.Seq != seq && st.Text != "" {
		cmd = tea.Batch(cmd, expireStatus(st.Seq))
	}
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sess.SetPageSize(m.bodyHeight() - 1)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		return m, tea.Batch(m.tick(), m.refreshKind(m.sess.ActiveKind()))

	case watchMsg:
		cmds := []tea.Cmd{m.listenWatch()}
		if watch.ShouldRefresh(msg.event, m.sess.ActiveKind()) {
			logging.Debug("orchestrator", "%s %s %s", msg.event.Type, msg.event.Kind, msg.event.ID)
			cmds = append(cmds, m.refreshKind(m.sess.ActiveKind()))
		}
		return m, tea.Batch(cmds...)

	case tableMsg:
		return m, m.applyTable(msg)

	case tableBatchMsg:
		cmds := make([]tea.Cmd, 0, len(msg))
		for _, r := range msg {
			cmds = append(cmds, m.applyTable(r))
		}
		return m, tea.Batch(cmds...)

	case catalogMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			logging.Warn("orchestrator", msg.err, "identity catalog")
			return m, nil
		}
		m.sess.SetCatalog(msg.catalog)
		return m, nil

	case containersMsg:
		if msg.err != nil {
			m.sess.SetStatus(session.StatusError, "containers of %s: %s", msg.pod, errText(msg.err))
			return m, nil
		}
		m.sess.SetContainers(msg.namespace, msg.pod, msg.containers)
		return m, nil

	case logsMsg:
		if msg.err != nil {
			m.sess.SetStatus(session.StatusError, "logs: %s", errText(msg.err))
			return m, nil
		}
		m.sess.SetOverlay(msg.kind, msg.title, msg.text, &msg.src)
		return m, nil

	case detailMsg:
		if msg.err != nil {
			if m.sess.FillDetail(msg.kind, msg.id, "error: "+errText(msg.err)) {
				m.sess.SetStatus(session.StatusError, "describe: %s", errText(msg.err))
			}
			return m, nil
		}
		m.sess.FillDetail(msg.kind, msg.id, msg.text)
		return m, nil

	case overviewMsg:
		if msg.err != nil {
			m.sess.SetOverviewError(msg.err)
			return m, nil
		}
		m.sess.SetOverview(msg.metrics)
		return m, nil

	case customKindsMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			m.sess.SetStatus(session.StatusError, "custom resources: %s", errText(msg.err))
			return m, nil
		}
		m.sess.SetCustomKinds(msg.kinds)
		return m, nil

	case mutationMsg:
		if msg.err != nil {
			logging.Warn("orchestrator", msg.err, "%s %s", msg.verb, msg.what)
			m.sess.SetStatus(session.StatusError, "%s %s: %s", msg.verb, msg.what, errText(msg.err))
			return m, nil
		}
		logging.Info("orchestrator", "%s %s", msg.verb, msg.what)
		m.sess.SetStatus(session.StatusSuccess, "%s %s", pastTense(msg.verb), msg.what)
		return m, m.refreshKind(msg.kind)

	case identityMsg:
		return m.identitySwitched(msg)

	case handoffDoneMsg:
		if msg.err != nil {
			logging.Warn("orchestrator", msg.err, "%s", msg.what)
			m.sess.SetStatus(session.StatusError, "%s: %v", msg.what, msg.err)
		} else {
			m.sess.SetStatus(session.StatusSuccess, "%s finished", msg.what)
		}
		return m, m.refreshKind(m.sess.ActiveKind())

	case execOutputMsg:
		m.sess.SetOverlay(session.OverlayShell, msg.title, msg.output, nil)
		if msg.err != nil {
			m.sess.SetStatus(session.StatusError, "exec: %v", msg.err)
		}
		return m, nil

	case portForwardExitedMsg:
		m.forwardExited(msg)
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.sess.SetStatus(session.StatusError, "copy: %v", msg.err)
			return m, nil
		}
		m.sess.SetStatus(session.StatusSuccess, "copied %s", msg.text)
		return m, nil

	case statusExpiredMsg:
		m.sess.ClearStatus(msg.seq)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, m.quit()
	}
	var cmds []tea.Cmd
	for _, a := range actionsFor(m.sess.Mode(), m.sess.Confirmation() != nil, msg) {
		if c := m.sess.Apply(a); c != nil {
			cmds = append(cmds, m.execute(c))
		}
	}
	return m, tea.Batch(cmds...)
}

// identitySwitched reconciles a context, cluster or user switch. A
// successful switch invalidates every in-flight result and restarts the
// watch streams on the new connection.
func (m Model) identitySwitched(msg identityMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		logging.Warn("orchestrator", msg.err, "switch %s to %s", msg.what, msg.name)
		m.sess.SetStatus(session.StatusError, "switch %s: %s", msg.what, errText(msg.err))
		return m, nil
	}
	m.gen++
	m.sess.IdentityChanged()
	m.sess.SetStatus(session.StatusSuccess, "%s: %s", msg.what, msg.name)
	logging.Info("orchestrator", "switched %s to %s", msg.what, msg.name)

	hub := m.hub
	restart := func() tea.Msg {
		hub.Restart()
		return nil
	}
	return m, tea.Batch(restart, m.refreshAll())
}

// quit stops the watch streams and every live port-forward.
func (m Model) quit() tea.Cmd {
	m.hub.Stop()
	for pid := range m.run.forwards {
		m.stopForward(pid)
	}
	logging.Info("orchestrator", "quit")
	return tea.Quit
}

// --- Startup error screen ---

func (m Model) updateStartup(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if m.connect == nil {
				return m, nil
			}
			connect := m.connect
			return m, func() tea.Msg {
				src, err := connect()
				return connectedMsg{src: src, err: err}
			}
		}
	case connectedMsg:
		if msg.err != nil {
			m.startupErr = msg.err
			return m, nil
		}
		next := New(Options{Source: msg.src, Config: m.cfg, Connect: m.connect})
		next.width, next.height = m.width, m.height
		next.sess.SetPageSize(next.bodyHeight() - 1)
		return next, next.Init()
	}
	return m, nil
}
