package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Taishi66/kdeck/internal/domain"
	"github.com/Taishi66/kdeck/internal/logging"
	"github.com/Taishi66/kdeck/internal/session"
)

const (
	logsTimeout     = 10 * time.Second
	mutationTimeout = 10 * time.Second
	execTimeout     = 30 * time.Second
)

// execute turns a session command into side effects. Every branch either
// returns a tea.Cmd whose result is reconciled in Update or sets a status
// message straight away.
func (m Model) execute(c session.Command) tea.Cmd {
	switch c := c.(type) {
	case session.RefreshActive:
		return m.refreshKind(m.sess.ActiveKind())
	case session.RefreshAll:
		return m.refreshAll()
	case session.RefreshKind:
		return m.refreshKind(c.Kind)

	case session.FetchContainers:
		return m.fetchContainers(c)
	case session.FetchLogs:
		return m.fetchLogs(c)
	case session.FetchDetail:
		return m.fetchDetail(c)
	case session.FetchOverview:
		return m.fetchOverview(c)
	case session.DiscoverCustomResources:
		return m.discover()

	case session.Delete:
		src := m.src
		return m.mutate("delete", c.Kind, c.ID, func(ctx context.Context) error {
			return src.Delete(ctx, c.Kind, c.ID, c.CR)
		})
	case session.Restart:
		src := m.src
		return m.mutate("restart", c.Kind, c.ID, func(ctx context.Context) error {
			return src.Restart(ctx, c.Kind, c.ID)
		})
	case session.Scale:
		src := m.src
		return m.mutate(fmt.Sprintf("scale to %d", c.Replicas), c.Kind, c.ID, func(ctx context.Context) error {
			return src.Scale(ctx, c.Kind, c.ID, c.Replicas)
		})

	case session.Exec:
		return m.runExec(c)
	case session.Shell:
		cmd, err := m.src.BuildShellCmd(c.Namespace, c.Pod, c.Container, m.cfg.Exec.Shell)
		if err != nil {
			m.sess.SetStatus(session.StatusError, "shell: %v", err)
			return nil
		}
		return handTerminal("shell "+c.Namespace+"/"+c.Pod, cmd)
	case session.Edit:
		cmd, err := m.src.BuildEditCmd(c.Kind, c.ID, m.cfg.ResolveEditor(getenv))
		if err != nil {
			m.sess.SetStatus(session.StatusError, "edit: %s", errText(err))
			return nil
		}
		return handTerminal("edit "+c.ID.String(), cmd)
	case session.PortForward:
		return m.startPortForward(c)

	case session.SwitchContext:
		return m.switchIdentity("context", c.Name, m.src.SwitchContext)
	case session.SwitchCluster:
		return m.switchIdentity("cluster", c.Name, m.src.SwitchCluster)
	case session.SwitchUser:
		return m.switchIdentity("user", c.Name, m.src.SwitchUser)

	case session.Copy:
		return copyText(c.Text)
	case session.Quit:
		return m.quit()
	}
	logging.Warn("orchestrator", nil, "unhandled command %T", c)
	return nil
}

func (m Model) fetchContainers(c session.FetchContainers) tea.Cmd {
	src, timeout := m.src, m.cfg.Timeouts.Table
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		containers, err := src.FetchContainers(ctx, c.Namespace, c.Pod)
		return containersMsg{namespace: c.Namespace, pod: c.Pod, containers: containers, err: err}
	}
}

// fetchLogs resolves the pod and container behind the row, then fetches
// the tail of its log.
func (m Model) fetchLogs(c session.FetchLogs) tea.Cmd {
	src, tail := m.src, m.cfg.LogTailLines
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), logsTimeout)
		defer cancel()

		target := domain.LogTarget{Namespace: c.ID.Namespace, Pod: c.ID.Name, Container: c.Container}
		if c.Kind != domain.KindPods || c.Container == "" {
			resolved, err := src.ResolveLogTarget(ctx, c.Kind, c.ID)
			if err != nil {
				return logsMsg{src: c, err: err}
			}
			target = resolved
		}
		text, err := src.FetchLogs(ctx, domain.LogRequest{
			Namespace: target.Namespace,
			Pod:       target.Pod,
			Container: target.Container,
			Previous:  c.Previous,
			TailLines: tail,
		})
		kind := session.OverlayPodLogs
		if c.Kind != domain.KindPods {
			kind = session.OverlayWorkloadLogs
		}
		return logsMsg{src: c, kind: kind, title: logsTitle(c, target), text: text, err: err}
	}
}

func logsTitle(c session.FetchLogs, t domain.LogTarget) string {
	title := "logs " + t.Namespace + "/" + t.Pod
	if t.Container != "" {
		title += "/" + t.Container
	}
	if c.Kind != domain.KindPods {
		title += " (" + strings.ToLower(c.Kind.Title()) + " " + c.ID.Name + ")"
	}
	if c.Previous {
		title += " (previous)"
	}
	return title
}

func (m Model) fetchDetail(c session.FetchDetail) tea.Cmd {
	src, timeout := m.src, m.cfg.Timeouts.Table
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		text, err := src.FetchDetail(ctx, c.Kind, c.ID, c.CR)
		return detailMsg{kind: c.Kind, id: c.ID, text: text, err: err}
	}
}

func (m Model) fetchOverview(c session.FetchOverview) tea.Cmd {
	src, timeout := m.src, m.cfg.Timeouts.Overview
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		metrics, err := src.FetchOverview(ctx, c.Scope)
		return overviewMsg{metrics: metrics, err: err}
	}
}

func (m Model) discover() tea.Cmd {
	src, timeout, gen := m.src, m.cfg.Timeouts.Discovery, m.gen
	m.sess.SetStatus(session.StatusInfo, "discovering custom resources...")
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		kinds, err := src.DiscoverCustomResourceKinds(ctx)
		return customKindsMsg{gen: gen, kinds: kinds, err: err}
	}
}

func (m Model) mutate(verb string, kind domain.Kind, id domain.RowIdentity, do func(context.Context) error) tea.Cmd {
	what := strings.ToLower(kind.Title()) + " " + id.String()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		return mutationMsg{verb: verb, kind: kind, what: what, err: do(ctx)}
	}
}

func (m Model) switchIdentity(what, name string, switchTo func(string) error) tea.Cmd {
	m.sess.SetStatus(session.StatusInfo, "switching %s to %s...", what, name)
	return func() tea.Msg {
		return identityMsg{what: what, name: name, err: switchTo(name)}
	}
}

// runExec runs a one-shot command in a container and shows its combined
// output in an overlay.
func (m Model) runExec(c session.Exec) tea.Cmd {
	src := m.src
	title := fmt.Sprintf("exec %s/%s: %s", c.Namespace, c.Pod, strings.Join(c.Argv, " "))
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), execTimeout)
		defer cancel()
		cmd, err := src.BuildExecCmd(ctx, c.Namespace, c.Pod, c.Container, c.Argv)
		if err != nil {
			return execOutputMsg{title: title, err: err}
		}
		out, err := cmd.CombinedOutput()
		return execOutputMsg{title: title, output: string(out), err: err}
	}
}
