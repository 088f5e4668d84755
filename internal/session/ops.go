package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Taishi66/kdeck/internal/cmdline"
	"github.com/Taishi66/kdeck/internal/config"
	"github.com/Taishi66/kdeck/internal/domain"
)

// scaleConfirmAbove is the replica count beyond which scaling asks first.
const scaleConfirmAbove = 10

// target returns the selected row of the active kind if the kind supports
// capability c. Failures leave a status message and no side effects.
func (s *Session) target(c domain.Capability, op string) (domain.RowIdentity, bool) {
	if c != 0 && !s.kind.Supports(c) {
		s.fail("%v", domain.Unsupported(s.kind, op))
		return domain.RowIdentity{}, false
	}
	row, ok := s.selectedRow()
	if !ok {
		s.fail("%s: nothing selected", op)
		return domain.RowIdentity{}, false
	}
	return row.ID, true
}

func (s *Session) namespaceOf(id domain.RowIdentity) string {
	if id.Namespace != "" {
		return id.Namespace
	}
	return s.scope.Namespace()
}

// writable rejects mutations in read-only namespaces.
func (s *Session) writable(id domain.RowIdentity, op string) bool {
	ns := s.namespaceOf(id)
	if config.IsReadonlyNamespace(ns, s.opts.ReadonlyNamespaces) {
		s.fail("%s refused: namespace %s is read-only", op, ns)
		return false
	}
	return true
}

func (s *Session) confirm(ns, prompt string, cmd Command) {
	if ns != "" && config.IsProdNamespace(ns, s.opts.ProdPatterns) {
		prompt = "[PROD] " + prompt
	}
	s.pending = &Confirmation{Prompt: prompt, Command: cmd}
	s.info("%s [y/n]", prompt)
}

func (s *Session) describe(id domain.RowIdentity) string {
	return fmt.Sprintf("%s %s", strings.ToLower(s.kind.Title()), id)
}

func (s *Session) prepareDelete() Command {
	id, ok := s.target(domain.CapDelete, "delete")
	if !ok || !s.writable(id, "delete") {
		return nil
	}
	s.confirm(s.namespaceOf(id), "Delete "+s.describe(id)+"?",
		Delete{Kind: s.kind, ID: id, CR: s.customResource()})
	return nil
}

func (s *Session) prepareRestart() Command {
	id, ok := s.target(domain.CapRestart, "restart")
	if !ok || !s.writable(id, "restart") {
		return nil
	}
	s.confirm(s.namespaceOf(id), "Restart "+s.describe(id)+"?", Restart{Kind: s.kind, ID: id})
	return nil
}

func (s *Session) prepareScaleDelta(delta int32) Command {
	id, ok := s.target(domain.CapScale, "scale")
	if !ok || !s.writable(id, "scale") {
		return nil
	}
	row, _ := s.selectedRow()
	current, ok := desiredReplicas(s.tables[s.kind].Headers, row)
	if !ok {
		s.fail("scale: cannot read the replica count of %s", id)
		return nil
	}
	return s.scaleTo(id, max(current+delta, 0))
}

func (s *Session) prepareScale(arg string) Command {
	if arg == "" {
		s.fail("usage: scale N")
		return nil
	}
	replicas, err := cmdline.ParseReplicas(arg)
	if err != nil {
		s.fail("scale: %v", err)
		return nil
	}
	id, ok := s.target(domain.CapScale, "scale")
	if !ok || !s.writable(id, "scale") {
		return nil
	}
	return s.scaleTo(id, replicas)
}

func (s *Session) scaleTo(id domain.RowIdentity, replicas int32) Command {
	cmd := Scale{Kind: s.kind, ID: id, Replicas: replicas}
	if replicas > scaleConfirmAbove {
		s.confirm(s.namespaceOf(id), fmt.Sprintf("Scale %s to %d replicas?", s.describe(id), replicas), cmd)
		return nil
	}
	s.info("scaling %s to %d", id, replicas)
	return cmd
}

// desiredReplicas reads the desired count from a DESIRED column or the
// right side of a READY "ready/desired" column.
func desiredReplicas(headers []string, row domain.Row) (int32, bool) {
	cell := func(name string) (string, bool) {
		for i, h := range headers {
			if h == name && i < len(row.Columns) {
				return row.Columns[i], true
			}
		}
		return "", false
	}
	if v, ok := cell("DESIRED"); ok {
		n, err := strconv.ParseInt(v, 10, 32)
		return int32(n), err == nil
	}
	if v, ok := cell("READY"); ok {
		if _, desired, found := strings.Cut(v, "/"); found {
			n, err := strconv.ParseInt(desired, 10, 32)
			return int32(n), err == nil
		}
	}
	return 0, false
}

func (s *Session) prepareLogs(previous bool) Command {
	if s.table != nil && s.table.Source != nil {
		src := *s.table.Source
		if previous {
			src.Previous = !src.Previous
		}
		return src
	}
	if s.picker != nil {
		c, ok := s.picker.SelectedContainer()
		if !ok {
			return nil
		}
		return FetchLogs{
			Kind:      domain.KindPods,
			ID:        domain.RowIdentity{Namespace: s.picker.Namespace, Name: s.picker.Pod},
			Container: c.Name,
			Previous:  previous,
		}
	}
	id, ok := s.target(domain.CapLogs, "logs")
	if !ok {
		return nil
	}
	return FetchLogs{Kind: s.kind, ID: id, Previous: previous}
}

// podTarget resolves the pod and container for exec-style operations, from
// the picker when it is open.
func (s *Session) podTarget(op string) (ns, pod, container string, ok bool) {
	if s.picker != nil {
		c, found := s.picker.SelectedContainer()
		if !found {
			return "", "", "", false
		}
		ns, pod, container = s.picker.Namespace, s.picker.Pod, c.Name
	} else {
		id, found := s.target(domain.CapExec, op)
		if !found {
			return "", "", "", false
		}
		ns, pod = s.namespaceOf(id), id.Name
	}
	if !s.writable(domain.RowIdentity{Namespace: ns, Name: pod}, op) {
		return "", "", "", false
	}
	return ns, pod, container, true
}

func (s *Session) prepareShell() Command {
	ns, pod, container, ok := s.podTarget("shell")
	if !ok {
		return nil
	}
	return Shell{Namespace: ns, Pod: pod, Container: container}
}

func (s *Session) prepareExec(argv []string) Command {
	if len(argv) == 0 {
		s.fail("usage: exec CMD [ARGS...]")
		return nil
	}
	ns, pod, container, ok := s.podTarget("exec")
	if !ok {
		return nil
	}
	return Exec{Namespace: ns, Pod: pod, Container: container, Argv: argv}
}

func (s *Session) prepareEdit() Command {
	id, ok := s.target(domain.CapEdit, "edit")
	if !ok || !s.writable(id, "edit") {
		return nil
	}
	return Edit{Kind: s.kind, ID: id}
}

func (s *Session) preparePortForward() Command {
	if s.picker != nil {
		c, ok := s.picker.SelectedContainer()
		if !ok {
			return nil
		}
		if len(c.Ports) == 0 {
			s.fail("container %s declares no ports", c.Name)
			return nil
		}
		p := int(c.Ports[0])
		return PortForward{
			Kind:       domain.KindPods,
			ID:         domain.RowIdentity{Namespace: s.picker.Namespace, Name: s.picker.Pod},
			LocalPort:  p,
			RemotePort: p,
		}
	}
	if _, ok := s.target(domain.CapPortForward, "port-forward"); !ok {
		return nil
	}
	s.openLine(ModeCommand, "pf ")
	return nil
}

func (s *Session) preparePortForwardTo(local, remote int) Command {
	id, ok := s.target(domain.CapPortForward, "port-forward")
	if !ok {
		return nil
	}
	return PortForward{Kind: s.kind, ID: id, LocalPort: local, RemotePort: remote}
}

func (s *Session) prepareDescribe() Command {
	id, ok := s.target(0, "describe")
	if !ok {
		return nil
	}
	s.picker, s.table = nil, nil
	s.detail = &DetailOverlay{Title: s.describe(id), Lines: []string{"loading..."}, Kind: s.kind, ID: id}
	s.focus = FocusDetail
	return FetchDetail{Kind: s.kind, ID: id, CR: s.customResource()}
}

func (s *Session) prepareCopy() Command {
	id, ok := s.target(0, "copy")
	if !ok {
		return nil
	}
	return Copy{Text: id.Name}
}

func (s *Session) openOverview() Command {
	s.overviewOpen = true
	return FetchOverview{Scope: s.scope}
}

func (s *Session) customResource() *domain.CustomResourceDescriptor {
	if s.kind != domain.KindCustomResources {
		return nil
	}
	return s.CustomResource()
}
