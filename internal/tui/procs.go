package tui

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Taishi66/kdeck/internal/domain"
	"github.com/Taishi66/kdeck/internal/logging"
	"github.com/Taishi66/kdeck/internal/session"
)

// handoff runs a child process on the real terminal. Run always reports
// success to bubbletea so the terminal is restored through the normal path
// and the restore error reaches the callback; the child's own error is kept
// aside and joined with it.
type handoff struct {
	cmd *exec.Cmd
	err error
}

func (h *handoff) Run() error {
	h.err = h.cmd.Run()
	return nil
}

func (h *handoff) SetStdin(r io.Reader) {
	if h.cmd.Stdin == nil {
		h.cmd.Stdin = r
	}
}

func (h *handoff) SetStdout(w io.Writer) {
	if h.cmd.Stdout == nil {
		h.cmd.Stdout = w
	}
}

func (h *handoff) SetStderr(w io.Writer) {
	if h.cmd.Stderr == nil {
		h.cmd.Stderr = w
	}
}

// handTerminal suspends the cockpit, runs cmd to completion and restores
// the screen. Child failure and restore failure are reported together.
func handTerminal(what string, cmd *exec.Cmd) tea.Cmd {
	h := &handoff{cmd: cmd}
	logging.Info("orchestrator", "%s: %s", what, cmd.String())
	return tea.Exec(h, func(restoreErr error) tea.Msg {
		return handoffDoneMsg{what: what, err: joinHandoff(h.err, restoreErr)}
	})
}

func joinHandoff(childErr, restoreErr error) error {
	if restoreErr != nil {
		restoreErr = fmt.Errorf("restore terminal: %w", restoreErr)
	}
	return errors.Join(childErr, restoreErr)
}

// forwardReapTimeout bounds how long a stopped forward may take to exit.
const forwardReapTimeout = 2 * time.Second

// forward is a running port-forward process. done closes once it has been
// reaped; err is its Wait result.
type forward struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

func startForward(cmd *exec.Cmd) (*forward, error) {
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	f := &forward{cmd: cmd, done: make(chan struct{})}
	go func() {
		f.err = cmd.Wait()
		close(f.done)
	}()
	return f, nil
}

// startPortForward stops the forwards holding the same mapping, spawns the
// new one in the background, registers it and returns a supervisor that
// reports its exit.
func (m Model) startPortForward(c session.PortForward) tea.Cmd {
	cmd, err := m.src.BuildPortForwardCmd(c.Kind, c.ID, c.LocalPort, c.RemotePort)
	if err != nil {
		m.sess.SetStatus(session.StatusError, "port-forward: %s", errText(err))
		return nil
	}
	pf := domain.PortForwardSession{
		Kind:       c.Kind,
		Namespace:  c.ID.Namespace,
		Name:       c.ID.Name,
		LocalPort:  c.LocalPort,
		RemotePort: c.RemotePort,
	}
	// The old process must release the local port first.
	for _, old := range m.sess.SupersededBy(pf) {
		m.stopForward(old.PID)
	}
	f, err := startForward(cmd)
	if err != nil {
		logging.Warn("orchestrator", err, "port-forward %s", c.ID)
		m.sess.SetStatus(session.StatusError, "port-forward: %v", err)
		return nil
	}
	pf.PID = cmd.Process.Pid
	m.run.forwards[pf.PID] = f
	m.sess.AddPortForward(pf)
	logging.Info("orchestrator", "port-forward %s %d:%d pid %d", c.ID, c.LocalPort, c.RemotePort, pf.PID)
	pid := pf.PID
	return func() tea.Msg {
		<-f.done
		return portForwardExitedMsg{pid: pid, err: f.err}
	}
}

// stopForward kills a forward and waits for it to be reaped. Its session
// entry goes too, so the exit that follows is silent.
func (m Model) stopForward(pid int) {
	m.sess.RemovePortForward(pid)
	f, ok := m.run.forwards[pid]
	if !ok {
		return
	}
	delete(m.run.forwards, pid)
	if err := f.cmd.Process.Kill(); err != nil {
		logging.Debug("orchestrator", "kill pid %d: %v", pid, err)
	}
	select {
	case <-f.done:
	case <-time.After(forwardReapTimeout):
		logging.Warn("orchestrator", nil, "pid %d still running after kill", pid)
	}
}

// forwardExited reports the end of a forward. Forwards stopped on purpose
// are already unregistered and end silently.
func (m Model) forwardExited(msg portForwardExitedMsg) {
	delete(m.run.forwards, msg.pid)
	pf, ok := m.sess.RemovePortForward(msg.pid)
	if !ok {
		return
	}
	target := pf.Namespace + "/" + pf.Name + " " + pf.Mapping()
	var exitErr *exec.ExitError
	switch {
	case msg.err == nil:
		m.sess.SetStatus(session.StatusInfo, "port-forward %s exited", target)
	case errors.As(msg.err, &exitErr):
		m.sess.SetStatus(session.StatusError, "port-forward %s exited with code %d", target, exitErr.ExitCode())
	default:
		m.sess.SetStatus(session.StatusError, "port-forward %s failed: %v", target, msg.err)
	}
	logging.Info("orchestrator", "port-forward pid %d ended: %v", msg.pid, msg.err)
}

// copyText writes to the system clipboard. Without a clipboard tool the
// OSC52 escape asks the terminal to do it.
func copyText(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			logging.Debug("orchestrator", "clipboard unavailable: %v, using OSC52", err)
			if _, werr := fmt.Fprintf(os.Stderr, "\033]52;c;%s\a", encodeBase64(text)); werr != nil {
				return copiedMsg{text: text, err: errors.Join(err, werr)}
			}
		}
		return copiedMsg{text: text}
	}
}

func encodeBase64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}
