package session

import (
	"strings"

	"github.com/Taishi66/kdeck/internal/cmdline"
	"github.com/Taishi66/kdeck/internal/domain"
)

// submitCommand dispatches a ":" line.
func (s *Session) submitCommand(input string) Command {
	line := cmdline.Parse(cmdline.ModeCommand, input)
	if cmd, handled := s.submitShared(line); handled {
		return cmd
	}
	switch line.Verb {
	case cmdline.VerbDelete:
		return s.prepareDelete()
	case cmdline.VerbRestart:
		return s.prepareRestart()
	case cmdline.VerbScale:
		return s.prepareScale(line.Arg(0))
	case cmdline.VerbExec:
		return s.prepareExec(line.Args)
	case cmdline.VerbShell:
		return s.prepareShell()
	case cmdline.VerbEdit:
		return s.prepareEdit()
	case cmdline.VerbPortForward:
		if line.Arg(0) == "" {
			s.fail("usage: pf [LOCAL:]REMOTE")
			return nil
		}
		local, remote, err := cmdline.ParsePortMapping(line.Arg(0))
		if err != nil {
			s.fail("pf: %v", err)
			return nil
		}
		return s.preparePortForwardTo(local, remote)
	case cmdline.VerbLogs:
		previous := line.Arg(0) == "-p" || line.Arg(0) == "--previous"
		return s.prepareLogs(previous)
	case cmdline.VerbOverview:
		return s.openOverview()
	case cmdline.VerbHelp:
		s.mode = ModeHelp
		return nil
	case cmdline.VerbSlot:
		n, ok := slotNumber(line.Arg(0))
		if !ok {
			s.fail("usage: slot 0-9")
			return nil
		}
		return s.switchSlot(n)
	case cmdline.VerbNone:
		return nil
	}
	s.fail("unknown command %q", line.Word)
	return nil
}

// submitJump dispatches a ">" line: identity and kind switches, or a
// search across every cached table.
func (s *Session) submitJump(input string) Command {
	line := cmdline.Parse(cmdline.ModeJump, input)
	if cmd, handled := s.submitShared(line); handled {
		return cmd
	}
	if line.Verb == cmdline.VerbNone {
		return nil
	}
	return s.search(line.Query)
}

// submitShared handles the vocabulary common to both line modes.
func (s *Session) submitShared(line cmdline.Line) (Command, bool) {
	switch line.Verb {
	case cmdline.VerbQuit:
		return Quit{}, true
	case cmdline.VerbRefresh:
		s.info("refreshing")
		return RefreshAll{}, true
	case cmdline.VerbContext:
		return s.identitySwitch("ctx", line.Arg(0), func(n string) Command { return SwitchContext{Name: n} }), true
	case cmdline.VerbCluster:
		return s.identitySwitch("cluster", line.Arg(0), func(n string) Command { return SwitchCluster{Name: n} }), true
	case cmdline.VerbUser:
		return s.identitySwitch("user", line.Arg(0), func(n string) Command { return SwitchUser{Name: n} }), true
	case cmdline.VerbNamespace:
		return s.setNamespace(line.Arg(0)), true
	case cmdline.VerbKind:
		return s.jumpToKind(line.Kind, line.Arg(0)), true
	case cmdline.VerbCRD:
		return s.selectCustomResource(line.Arg(0)), true
	}
	return nil, false
}

func (s *Session) identitySwitch(verb, name string, build func(string) Command) Command {
	if name == "" {
		s.fail("usage: %s NAME", verb)
		return nil
	}
	s.info("switching %s to %s", verb, name)
	return build(name)
}

// setNamespace with no argument opens the namespace list; "all" or "-"
// clears the scope.
func (s *Session) setNamespace(arg string) Command {
	s.back = nil
	if arg == "" {
		s.switchKind(domain.KindNamespaces)
		return RefreshActive{}
	}
	if arg == "all" || arg == "-" || arg == "*" {
		s.scope = domain.AllNamespaces()
	} else {
		s.scope = domain.Named(arg)
	}
	s.filter = ""
	s.closeOverlays()
	s.resetSelection()
	s.info("namespace: %s", s.scope)
	return RefreshAll{}
}

// jumpToKind switches the active kind. A qualified "ns/name" argument
// selects that row; a bare argument becomes the filter.
func (s *Session) jumpToKind(k domain.Kind, arg string) Command {
	if k == domain.KindCustomResources && s.customID == "" {
		s.fail("no custom resource selected, use crd NAME")
		return nil
	}
	s.back = nil
	s.switchKind(k)
	if arg == "" {
		return RefreshActive{}
	}
	id, qualified := cmdline.ParseTarget(arg)
	if !qualified {
		s.filter = arg
		s.resetSelection()
		return RefreshActive{}
	}
	if !k.Namespaced() {
		id.Namespace = ""
	}
	s.pendingSelect[k] = id
	s.selectIdentity(k, id)
	if id.Namespace != "" && !s.scope.IsAll() && s.scope.Namespace() != id.Namespace {
		s.scope = domain.Named(id.Namespace)
		return RefreshAll{}
	}
	return RefreshActive{}
}

// selectCustomResource lists the discovered kinds or activates one.
func (s *Session) selectCustomResource(arg string) Command {
	if arg == "" {
		if len(s.customKinds) == 0 {
			s.info("discovering custom resources")
			return DiscoverCustomResources{}
		}
		lines := make([]string, 0, len(s.customKinds))
		for _, d := range s.customKinds {
			lines = append(lines, d.ID()+"  "+d.Kind)
		}
		s.picker = nil
		s.table = &TableOverlay{Kind: OverlayOutput, Title: "Custom resources", Lines: lines}
		return nil
	}
	for _, d := range s.customKinds {
		if !d.Matches(arg) {
			continue
		}
		if s.customID != d.ID() {
			s.tables[domain.KindCustomResources] = &domain.TableSnapshot{}
			s.customID = d.ID()
		}
		s.back = nil
		s.switchKind(domain.KindCustomResources)
		s.info("custom resource: %s", d.ID())
		return RefreshActive{}
	}
	if len(s.customKinds) == 0 {
		s.info("discovering custom resources")
		return DiscoverCustomResources{}
	}
	s.fail("unknown custom resource %q", arg)
	return nil
}

// search selects the first row, in kind order, whose name or namespace
// contains query.
func (s *Session) search(query string) Command {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	for _, k := range s.Tabs() {
		for _, r := range s.tables[k].Rows {
			if !strings.Contains(strings.ToLower(r.ID.Name), q) && !strings.Contains(strings.ToLower(r.ID.Namespace), q) {
				continue
			}
			s.back = nil
			s.switchKind(k)
			s.selectIdentity(k, r.ID)
			s.info("%s %s", strings.ToLower(k.Title()), r.ID)
			return RefreshActive{}
		}
	}
	s.fail("no match for %q", query)
	return nil
}

func slotNumber(arg string) (int, bool) {
	if len(arg) != 1 || arg[0] < '0' || arg[0] > '9' {
		return 0, false
	}
	return int(arg[0] - '0'), true
}
