package tui

import (
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Taishi66/kdeck/internal/config"
	"github.com/Taishi66/kdeck/internal/domain"
	"github.com/Taishi66/kdeck/internal/session"
)

// --- helpers ---

var podHeaders = []string{"NAMESPACE", "NAME", "READY", "STATUS", "RESTARTS", "NODE", "AGE"}

func podTable(ns string, names ...string) domain.TableSnapshot {
	rows := make([]domain.Row, 0, len(names))
	for _, n := range names {
		rows = append(rows, domain.Row{
			ID:      domain.RowIdentity{Namespace: ns, Name: n},
			Columns: []string{ns, n, "1/1", "Running", "0", "node-1", "5m"},
			Detail:  "Pod: " + n + "\nNode: node-1",
		})
	}
	return domain.TableSnapshot{Headers: podHeaders, Rows: rows, RefreshedAt: time.Now()}
}

func newMock() *domain.MockDataSource {
	return &domain.MockDataSource{
		Tables: map[domain.Kind]domain.TableSnapshot{
			domain.KindPods: podTable("dev", "web-1", "web-2", "worker-1"),
		},
		Catalog: domain.IdentityCatalog{
			Contexts:       []string{"dev-ctx", "prod-ctx"},
			CurrentContext: "dev-ctx",
		},
		LogContent: "2024-01-01 INFO starting\n2024-01-01 INFO ready",
		LogTarget:  domain.LogTarget{Namespace: "dev", Pod: "web-1", Container: "main"},
	}
}

// newTestModel builds a sized model whose timers never fire.
func newTestModel(t *testing.T, src *domain.MockDataSource) Model {
	t.Helper()
	prev := after
	after = func(time.Duration, func(time.Time) tea.Msg) tea.Cmd { return nil }
	t.Cleanup(func() { after = prev })

	m := New(Options{Source: src, Config: config.DefaultConfig()})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return next.(Model)
}

// loaded returns a model with every table fetched once.
func loaded(t *testing.T, src *domain.MockDataSource) Model {
	t.Helper()
	m := newTestModel(t, src)
	return drive(t, m, m.refreshAll())
}

// drive runs cmd and feeds every resulting message back into Update until
// nothing is left. Commands that block, like the watch listener, are
// abandoned.
func drive(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 500 {
			t.Fatal("command loop did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg, ok := runCmd(c)
		if !ok || msg == nil {
			continue
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		next, more := m.Update(msg)
		m = next.(Model)
		queue = append(queue, more)
	}
	return m
}

func runCmd(c tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(500 * time.Millisecond):
		return nil, false
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends keys one by one, running whatever each produces.
func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, cmd := m.Update(keyMsg(k))
		m = drive(t, next.(Model), cmd)
	}
	return m
}

// command types a ":" command line and submits it.
func command(t *testing.T, m Model, line string) Model {
	t.Helper()
	keys := []string{":"}
	for _, r := range line {
		keys = append(keys, string(r))
	}
	return press(t, m, append(keys, "enter")...)
}

func selectedName(m Model) string {
	row, ok := m.sess.SelectedRow()
	if !ok {
		return ""
	}
	return row.ID.Name
}

// --- Startup ---

func TestInitLoadsTablesAndCatalog(t *testing.T) {
	src := newMock()
	src.Tables[domain.KindDeployments] = domain.TableSnapshot{
		Headers: []string{"NAMESPACE", "NAME", "READY"},
		Rows:    []domain.Row{{ID: domain.RowIdentity{Namespace: "dev", Name: "api"}, Columns: []string{"dev", "api", "1/1"}}},
	}
	m := newTestModel(t, src)
	m = drive(t, m, m.Init())
	t.Cleanup(m.hub.Stop)

	if got := len(m.sess.VisibleRows()); got != 3 {
		t.Errorf("visible pods = %d, want 3", got)
	}
	if got := len(m.sess.Rows(domain.KindDeployments)); got != 1 {
		t.Errorf("background deployments = %d, want 1", got)
	}
	if m.sess.Catalog().CurrentContext != "dev-ctx" {
		t.Errorf("catalog not loaded: %+v", m.sess.Catalog())
	}
	if n := src.Calls(domain.KindCustomResources); n != 0 {
		t.Errorf("custom resources fetched %d times without a selection", n)
	}
	if len(m.run.inflight) != 0 {
		t.Errorf("inflight not cleared: %v", m.run.inflight)
	}
}

func TestStartupScope(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Startup.Namespace = "dev"
	m := New(Options{Source: newMock(), Config: cfg})
	if m.sess.Scope() != domain.Named("dev") {
		t.Errorf("scope = %v, want dev", m.sess.Scope())
	}

	cfg.Startup.AllNamespaces = true
	m = New(Options{Source: newMock(), Config: cfg})
	if !m.sess.Scope().IsAll() {
		t.Errorf("-A should win over -n, got %v", m.sess.Scope())
	}
}

func TestStartupErrorScreenRetry(t *testing.T) {
	src := newMock()
	attempts := 0
	connect := func() (domain.DataSource, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("still down")
		}
		return src, nil
	}
	prev := after
	after = func(time.Duration, func(time.Time) tea.Msg) tea.Cmd { return nil }
	t.Cleanup(func() { after = prev })

	m := New(Options{StartupErr: errors.New("no kubeconfig found"), Connect: connect})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(Model)
	if !strings.Contains(m.View(), "no kubeconfig found") {
		t.Fatalf("error screen missing message:\n%s", m.View())
	}

	m = press(t, m, "r")
	if m.sess != nil || !strings.Contains(m.View(), "still down") {
		t.Fatalf("failed retry should stay on the error screen:\n%s", m.View())
	}

	m = press(t, m, "r")
	if m.sess == nil {
		t.Fatal("successful retry should start the cockpit")
	}
	t.Cleanup(m.hub.Stop)
	if got := len(m.sess.VisibleRows()); got != 3 {
		t.Errorf("rows after reconnect = %d, want 3", got)
	}
}

// --- Refresh reconciliation ---

func TestRefreshTimeoutKeepsCachedRows(t *testing.T) {
	src := newMock()
	m := loaded(t, src)
	m.cfg.Timeouts.Table = 20 * time.Millisecond
	src.BlockFetch = true

	m = drive(t, m, m.refreshKind(domain.KindPods))

	if got := len(m.sess.VisibleRows()); got != 3 {
		t.Errorf("rows after timeout = %d, want 3 cached rows", got)
	}
	if m.sess.TableError() != "" {
		t.Errorf("timeout must not set the table error, got %q", m.sess.TableError())
	}
	st := m.sess.Status()
	if st.Level != session.StatusError || !strings.Contains(st.Text, "timed out, showing cached") {
		t.Errorf("status = %+v", st)
	}
}

func TestRefreshFailureClearsRows(t *testing.T) {
	src := newMock()
	m := loaded(t, src)
	src.FetchTableErr = &domain.APIError{Type: domain.ErrForbidden, Message: "pods is forbidden"}

	m = drive(t, m, m.refreshKind(domain.KindPods))

	if got := len(m.sess.VisibleRows()); got != 0 {
		t.Errorf("rows after failure = %d, want 0", got)
	}
	if !strings.Contains(m.sess.TableError(), "pods is forbidden") {
		t.Errorf("table error = %q", m.sess.TableError())
	}
	if !strings.Contains(m.View(), "pods is forbidden") {
		t.Error("error should be rendered in place of the table")
	}
}

func TestRefreshInFlightIsNotDuplicated(t *testing.T) {
	src := newMock()
	m := newTestModel(t, src)

	first := m.refreshKind(domain.KindPods)
	if second := m.refreshKind(domain.KindPods); second != nil {
		t.Fatal("second refresh of an in-flight kind should not start")
	}
	m = drive(t, m, first)

	if n := src.Calls(domain.KindPods); n != 2 {
		t.Errorf("FetchTable(pods) calls = %d, want 2 (original + follow-up)", n)
	}
	if _, busy := m.run.inflight[domain.KindPods]; busy {
		t.Error("pods still marked in flight")
	}
}

func TestStaleScopeResultIsDropped(t *testing.T) {
	src := newMock()
	m := loaded(t, src)
	before := src.Calls(domain.KindPods)

	next, cmd := m.Update(tableMsg{
		kind:  domain.KindPods,
		scope: domain.Named("old"),
		snap:  podTable("old", "ghost"),
	})
	m = drive(t, next.(Model), cmd)

	for _, r := range m.sess.VisibleRows() {
		if r.ID.Name == "ghost" {
			t.Fatal("row from a stale scope was applied")
		}
	}
	if src.Calls(domain.KindPods) != before+1 {
		t.Errorf("active kind should be refetched for the current scope")
	}
}

func TestStaleGenerationResultIsDropped(t *testing.T) {
	src := newMock()
	m := loaded(t, src)
	m.gen = 3

	next, _ := m.Update(tableMsg{kind: domain.KindPods, scope: m.sess.Scope(), gen: 2, snap: podTable("dev", "ghost")})
	m = next.(Model)
	if selectedName(m) == "ghost" || len(m.sess.VisibleRows()) != 3 {
		t.Error("result from an older connection was applied")
	}
}

func TestTickRefreshesOnlyActiveKind(t *testing.T) {
	src := newMock()
	m := loaded(t, src)
	pods, deps := src.Calls(domain.KindPods), src.Calls(domain.KindDeployments)

	next, cmd := m.Update(tickMsg{})
	drive(t, next.(Model), cmd)

	if src.Calls(domain.KindPods) != pods+1 {
		t.Error("tick should refresh the active kind")
	}
	if src.Calls(domain.KindDeployments) != deps {
		t.Error("tick must not poll background kinds")
	}
}

func TestWatchEventRefreshGate(t *testing.T) {
	tests := []struct {
		name    string
		kind    domain.Kind
		refresh bool
	}{
		{"active kind", domain.KindPods, true},
		{"namespaces", domain.KindNamespaces, true},
		{"background kind", domain.KindConfigMaps, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newMock()
			m := loaded(t, src)
			before := src.Calls(domain.KindPods)

			next, cmd := m.Update(watchMsg{event: domain.WatchEvent{Type: domain.EventModified, Kind: tt.kind}})
			drive(t, next.(Model), cmd)

			if got := src.Calls(domain.KindPods) > before; got != tt.refresh {
				t.Errorf("refreshed = %v, want %v", got, tt.refresh)
			}
		})
	}
}

// --- Navigation through keys ---

func TestKeysMoveAndFilter(t *testing.T) {
	m := loaded(t, newMock())

	m = press(t, m, "j", "j")
	if selectedName(m) != "worker-1" {
		t.Errorf("selected = %q, want worker-1", selectedName(m))
	}

	m = press(t, m, "/", "w", "e", "b")
	if m.sess.Mode() != session.ModeFilter || len(m.sess.VisibleRows()) != 2 {
		t.Errorf("live filter: mode %v, %d rows", m.sess.Mode(), len(m.sess.VisibleRows()))
	}
	m = press(t, m, "enter")
	if m.sess.Mode() != session.ModeNormal || m.sess.Filter() != "web" {
		t.Errorf("after submit: mode %v, filter %q", m.sess.Mode(), m.sess.Filter())
	}
}

func TestCtrlCQuitsFromAnyMode(t *testing.T) {
	m := loaded(t, newMock())
	m = press(t, m, ":")
	_, cmd := m.Update(keyMsg("ctrl+c"))
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should produce tea.QuitMsg")
	}
}

func TestQuitCommandStopsForwards(t *testing.T) {
	m := loaded(t, newMock())
	sleeper, err := startForward(exec.Command("sleep", "30"))
	if err != nil {
		t.Skipf("cannot start sleep: %v", err)
	}
	m.run.forwards[sleeper.cmd.Process.Pid] = sleeper

	_, cmd := m.Update(keyMsg("q"))
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should quit")
	}
	if len(m.run.forwards) != 0 {
		t.Error("forwards not stopped on quit")
	}
	select {
	case <-sleeper.done:
		if sleeper.err == nil {
			t.Error("forward process should have been killed")
		}
	default:
		t.Error("forward process not reaped on quit")
	}
}

// --- Mutations ---

func TestDeleteNeedsConfirmation(t *testing.T) {
	src := newMock()
	m := loaded(t, src)

	m = press(t, m, "d", "n")
	if len(src.Deleted) != 0 {
		t.Fatal("denied delete must not reach the backend")
	}

	m = press(t, m, "d", "y")
	if len(src.Deleted) != 1 || src.Deleted[0].Name != "web-1" {
		t.Fatalf("deleted = %v", src.Deleted)
	}
	st := m.sess.Status()
	if st.Level != session.StatusSuccess || !strings.Contains(st.Text, "deleted") {
		t.Errorf("status = %+v", st)
	}
}

func TestMutationFailureIsStatus(t *testing.T) {
	src := newMock()
	src.DeleteErr = &domain.APIError{Type: domain.ErrConflict, Message: "conflict: the resource was modified, try again"}
	m := loaded(t, src)

	m = press(t, m, "d", "y")
	st := m.sess.Status()
	if st.Level != session.StatusError || !strings.Contains(st.Text, "conflict") {
		t.Errorf("status = %+v", st)
	}
	if len(m.sess.VisibleRows()) != 3 {
		t.Error("a failed mutation must not touch the table")
	}
}

func TestProdConfirmationIsBoxed(t *testing.T) {
	src := newMock()
	src.Tables[domain.KindPods] = podTable("shop-prod", "api-1")
	m := loaded(t, src)

	m = press(t, m, "d")
	if c := m.sess.Confirmation(); c == nil || !isProdPrompt(c.Prompt) {
		t.Fatalf("confirmation = %+v", c)
	}
	if !strings.Contains(m.View(), "PRODUCTION NAMESPACE") {
		t.Error("prod confirmation should render the warning box")
	}
}

// --- Identity switching ---

func TestContextSwitchRestartsEverything(t *testing.T) {
	src := newMock()
	m := loaded(t, src)
	before := src.Calls(domain.KindPods)

	m = command(t, m, "ctx prod-ctx")
	t.Cleanup(m.hub.Stop)

	if src.SwitchedContext != "prod-ctx" {
		t.Fatalf("switched context = %q", src.SwitchedContext)
	}
	if m.gen != 1 {
		t.Errorf("generation = %d, want 1", m.gen)
	}
	if src.Calls(domain.KindPods) <= before {
		t.Error("identity switch should refresh every table")
	}
	if st := m.sess.Status(); st.Level != session.StatusSuccess || !strings.Contains(st.Text, "prod-ctx") {
		t.Errorf("status = %+v", st)
	}
}

func TestContextSwitchFailureKeepsConnection(t *testing.T) {
	src := newMock()
	src.SwitchErr = &domain.APIError{Type: domain.ErrNotFound, Message: `unknown context "nope"`}
	m := loaded(t, src)

	m = command(t, m, "ctx nope")
	if m.gen != 0 {
		t.Error("failed switch must not bump the generation")
	}
	if st := m.sess.Status(); st.Level != session.StatusError || !strings.Contains(st.Text, "unknown context") {
		t.Errorf("status = %+v", st)
	}
}

// --- Pod operations ---

func TestLogsResolveTargetAndOpenOverlay(t *testing.T) {
	src := newMock()
	m := loaded(t, src)

	m = press(t, m, "l")

	req := src.LastLogRequest
	if req.Pod != "web-1" || req.Container != "main" || req.Previous || req.TailLines != m.cfg.LogTailLines {
		t.Errorf("log request = %+v", req)
	}
	o := m.sess.TableOverlay()
	if o == nil || o.Kind != session.OverlayPodLogs || len(o.Lines) != 2 {
		t.Fatalf("overlay = %+v", o)
	}
	if !strings.Contains(o.Title, "dev/web-1/main") {
		t.Errorf("title = %q", o.Title)
	}

	m = press(t, m, "p")
	if !src.LastLogRequest.Previous {
		t.Error("p inside a log overlay should fetch the previous logs")
	}
}

func TestLogsFailureIsStatus(t *testing.T) {
	src := newMock()
	src.FetchLogsErr = errors.New("container not started")
	m := loaded(t, src)

	m = press(t, m, "l")
	if m.sess.TableOverlay() != nil {
		t.Error("no overlay on failure")
	}
	if st := m.sess.Status(); !strings.Contains(st.Text, "container not started") {
		t.Errorf("status = %+v", st)
	}
}

func TestEnterOpensContainerPicker(t *testing.T) {
	src := newMock()
	src.Containers = []domain.ContainerInfo{
		{Name: "main", Image: "nginx:1", Ready: true, State: "running", Ports: []int32{8080}},
		{Name: "sidecar", Image: "envoy:1", Ready: true, State: "running"},
	}
	m := loaded(t, src)

	m = press(t, m, "enter")
	if p := m.sess.Picker(); p == nil || len(p.Containers) != 2 {
		t.Fatalf("picker = %+v", m.sess.Picker())
	}
	view := m.View()
	if !strings.Contains(view, "Containers of dev/web-1") || !strings.Contains(view, "sidecar") {
		t.Errorf("picker not rendered:\n%s", view)
	}

	m = press(t, m, "j", "enter")
	if src.LastLogRequest.Container != "sidecar" {
		t.Errorf("logs requested for %q, want sidecar", src.LastLogRequest.Container)
	}
	m = press(t, m, "esc")
	if m.sess.Picker() == nil {
		t.Error("closing the log overlay should return to the picker")
	}
}

func TestExecShowsOutput(t *testing.T) {
	m := loaded(t, newMock())

	m = command(t, m, "exec ls -la")

	o := m.sess.TableOverlay()
	if o == nil || o.Kind != session.OverlayShell {
		t.Fatalf("overlay = %+v", o)
	}
	if len(o.Lines) != 1 || o.Lines[0] != "ls -la" {
		t.Errorf("output = %q", o.Lines)
	}
}

func TestExecBuildFailure(t *testing.T) {
	src := newMock()
	m := loaded(t, src)
	src.BuildErr = errors.New("neither 'kubectl' nor 'oc' found in PATH")

	m = command(t, m, "exec ls")
	if st := m.sess.Status(); st.Level != session.StatusError || !strings.Contains(st.Text, "kubectl") {
		t.Errorf("status = %+v", st)
	}
}

func TestShellBuildFailureIsStatus(t *testing.T) {
	src := newMock()
	src.BuildErr = errors.New("no kubectl")
	m := loaded(t, src)

	m = press(t, m, "s")
	if st := m.sess.Status(); st.Level != session.StatusError || !strings.Contains(st.Text, "shell: no kubectl") {
		t.Errorf("status = %+v", st)
	}
}

func TestHandoffDoneRefreshesAndReports(t *testing.T) {
	src := newMock()
	m := loaded(t, src)
	before := src.Calls(domain.KindPods)

	next, cmd := m.Update(handoffDoneMsg{what: "edit dev/web-1", err: errors.New("exit status 1")})
	m = drive(t, next.(Model), cmd)

	if st := m.sess.Status(); st.Level != session.StatusError || st.Text != "edit dev/web-1: exit status 1" {
		t.Errorf("status = %+v", st)
	}
	if src.Calls(domain.KindPods) != before+1 {
		t.Error("returning from a handoff should refresh the active kind")
	}
}

// --- Port-forwards ---

func TestPortForwardLifecycle(t *testing.T) {
	m := loaded(t, newMock())

	m = command(t, m, "pf 18080:80")

	if fwd := m.sess.PortForwards(); len(fwd) != 0 {
		t.Fatalf("forward should have exited and been removed, got %+v", fwd)
	}
	if len(m.run.forwards) != 0 {
		t.Errorf("process table not cleaned: %v", m.run.forwards)
	}
	if st := m.sess.Status(); !strings.Contains(st.Text, "dev/web-1 18080:80 exited") {
		t.Errorf("status = %+v", st)
	}
}

func TestPortForwardSupersedeIsSilent(t *testing.T) {
	m := loaded(t, newMock())
	pf := session.PortForward{Kind: domain.KindPods, ID: domain.RowIdentity{Namespace: "dev", Name: "web-1"}, LocalPort: 8080, RemotePort: 80}

	first := m.execute(pf)
	second := m.execute(pf)
	if len(m.sess.PortForwards()) != 1 || len(m.run.forwards) != 1 {
		t.Fatalf("same mapping should replace the old forward: %+v", m.sess.PortForwards())
	}
	live := m.sess.PortForwards()[0].PID

	m = drive(t, m, first)
	if len(m.sess.PortForwards()) != 1 || m.sess.PortForwards()[0].PID != live {
		t.Error("exit of a superseded forward must not remove the live one")
	}
	m = drive(t, m, second)
	if len(m.sess.PortForwards()) != 0 {
		t.Error("live forward should be removed on exit")
	}
}

func TestPortForwardReplacementWaitsForOldProcess(t *testing.T) {
	src := newMock()
	src.ForwardArgv = []string{"sleep", "30"}
	m := loaded(t, src)
	t.Cleanup(func() { m.quit() })
	pf := session.PortForward{Kind: domain.KindPods, ID: domain.RowIdentity{Namespace: "dev", Name: "web-1"}, LocalPort: 8080, RemotePort: 80}

	if m.execute(pf) == nil {
		t.Skip("cannot start sleep")
	}
	oldPID := m.sess.PortForwards()[0].PID
	old := m.run.forwards[oldPID]

	if m.execute(pf) == nil {
		t.Fatalf("replacement did not start: %+v", m.sess.Status())
	}
	select {
	case <-old.done:
	default:
		t.Fatal("old forward still running when its replacement started")
	}
	if _, ok := m.run.forwards[oldPID]; ok {
		t.Error("old forward still registered")
	}
	fwd := m.sess.PortForwards()
	if len(fwd) != 1 || fwd[0].PID == oldPID {
		t.Errorf("forwards = %+v", fwd)
	}
	if st := m.sess.Status(); st.Level != session.StatusSuccess {
		t.Errorf("status = %+v", st)
	}
}

func TestPortForwardExitStatus(t *testing.T) {
	exitErr := exec.Command("sh", "-c", "exit 3").Run()
	tests := []struct {
		name  string
		err   error
		level session.StatusLevel
		want  string
	}{
		{"clean exit", nil, session.StatusInfo, "exited"},
		{"non-zero exit", exitErr, session.StatusError, "exited with code 3"},
		{"wait failure", errors.New("wait: no child processes"), session.StatusError, "failed: wait: no child processes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loaded(t, newMock())
			m.sess.AddPortForward(domain.PortForwardSession{Kind: domain.KindPods, Namespace: "dev", Name: "web-1", LocalPort: 8080, RemotePort: 80, PID: 4242})

			next, _ := m.Update(portForwardExitedMsg{pid: 4242, err: tt.err})
			m = next.(Model)

			st := m.sess.Status()
			if st.Level != tt.level || !strings.Contains(st.Text, tt.want) {
				t.Errorf("status = %+v, want %q", st, tt.want)
			}
			if len(m.sess.PortForwards()) != 0 {
				t.Error("session not removed")
			}
		})
	}
}

// --- Other results ---

func TestDescribeFillsDetailOverlay(t *testing.T) {
	src := newMock()
	src.Details = map[domain.RowIdentity]string{
		{Namespace: "dev", Name: "web-1"}: "apiVersion: v1\nkind: Pod\n",
	}
	m := loaded(t, src)

	m = press(t, m, "y")
	o := m.sess.DetailOverlay()
	if o == nil || len(o.Lines) != 2 || o.Lines[1] != "kind: Pod" {
		t.Fatalf("detail overlay = %+v", o)
	}
	if !strings.Contains(m.View(), "kind") {
		t.Error("detail overlay not rendered")
	}
}

func TestDetailResultAfterDismissIsIgnored(t *testing.T) {
	m := loaded(t, newMock())
	next, _ := m.Update(detailMsg{text: "late"})
	m = next.(Model)
	if m.sess.DetailOverlay() != nil {
		t.Error("a late describe result must not reopen the overlay")
	}
}

func TestDetailResultForEarlierRowIsIgnored(t *testing.T) {
	m := loaded(t, newMock())
	// Describe web-1 and web-2 without running either fetch.
	next, _ := m.Update(keyMsg("y"))
	m = press(t, next.(Model), "esc", "j")
	next, _ = m.Update(keyMsg("y"))
	m = next.(Model)

	web1 := domain.RowIdentity{Namespace: "dev", Name: "web-1"}
	web2 := domain.RowIdentity{Namespace: "dev", Name: "web-2"}
	next, _ = m.Update(detailMsg{kind: domain.KindPods, id: web1, text: "kind: web-1"})
	m = next.(Model)
	o := m.sess.DetailOverlay()
	if o == nil || o.ID != web2 || strings.Join(o.Lines, "\n") != "loading..." {
		t.Fatalf("stale describe result landed in overlay %+v", o)
	}

	next, _ = m.Update(detailMsg{kind: domain.KindPods, id: web2, text: "kind: web-2"})
	m = next.(Model)
	if o := m.sess.DetailOverlay(); o == nil || strings.Join(o.Lines, "\n") != "kind: web-2" {
		t.Errorf("detail overlay = %+v", o)
	}
}

func TestOverviewAndDiscovery(t *testing.T) {
	src := newMock()
	src.Overview = domain.OverviewMetrics{Nodes: 3, Pods: 10, RunningPods: 9, MemoryBytes: 3 << 30, MetricsAvailable: true}
	src.CustomKinds = []domain.CustomResourceDescriptor{{Group: "cert-manager.io", Version: "v1", Kind: "Certificate", Plural: "certificates", Namespaced: true}}
	m := loaded(t, src)

	m = press(t, m, "o")
	view := m.View()
	if !strings.Contains(view, "9 running / 10 total") || !strings.Contains(view, "3.0GiB") {
		t.Errorf("overview not rendered:\n%s", view)
	}
	m = press(t, m, "esc")

	m = command(t, m, "crd")
	if len(m.sess.CustomKinds()) != 1 {
		t.Fatalf("custom kinds = %+v", m.sess.CustomKinds())
	}
	m = command(t, m, "crd certificates")
	if m.sess.ActiveKind() != domain.KindCustomResources || src.Calls(domain.KindCustomResources) == 0 {
		t.Errorf("custom resource table not fetched (kind %v)", m.sess.ActiveKind())
	}
}

func TestStatusExpiry(t *testing.T) {
	m := loaded(t, newMock())
	m.sess.SetStatus(session.StatusInfo, "first")
	seq := m.sess.Status().Seq
	m.sess.SetStatus(session.StatusInfo, "second")

	next, _ := m.Update(statusExpiredMsg{seq: seq})
	m = next.(Model)
	if m.sess.Status().Text != "second" {
		t.Error("expiry of an older message must not clear a newer one")
	}
	next, _ = m.Update(statusExpiredMsg{seq: m.sess.Status().Seq})
	m = next.(Model)
	if m.sess.Status().Text != "" {
		t.Error("status should be cleared")
	}
}

func TestStatusChangeSchedulesExpiry(t *testing.T) {
	m := loaded(t, newMock())
	scheduled := 0
	after = func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
		if d == statusLifetime {
			scheduled++
		}
		return nil
	}

	m.Update(copiedMsg{text: "web-1"})
	m.Update(tickMsg{})
	if scheduled != 1 {
		t.Errorf("expiry scheduled %d times, want 1", scheduled)
	}
}

func TestCopiedMessage(t *testing.T) {
	m := loaded(t, newMock())
	next, _ := m.Update(copiedMsg{text: "web-1"})
	m = next.(Model)
	if st := m.sess.Status(); st.Level != session.StatusSuccess || st.Text != "copied web-1" {
		t.Errorf("status = %+v", st)
	}
}
