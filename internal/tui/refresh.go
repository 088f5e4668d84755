package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/Taishi66/kdeck/internal/domain"
	"github.com/Taishi66/kdeck/internal/logging"
)

// refreshFanOut bounds the concurrent table fetches of one RefreshAll.
const refreshFanOut = 6

type tableRequest struct {
	kind  domain.Kind
	scope domain.Scope
	cr    *domain.CustomResourceDescriptor
	gen   int
}

func (r tableRequest) fetch(src domain.TableReader, timeout time.Duration) tableMsg {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	snap, err := src.FetchTable(ctx, r.kind, r.scope, r.cr)
	msg := tableMsg{kind: r.kind, scope: r.scope, gen: r.gen, snap: snap, err: err}
	if r.cr != nil {
		msg.crID = r.cr.ID()
	}
	return msg
}

// claim marks kind in flight for the current generation. A kind already in
// flight is flagged to be fetched again once its result arrives.
func (m Model) claim(kind domain.Kind) (tableRequest, bool) {
	cr := m.sess.CustomResource()
	if kind == domain.KindCustomResources && cr == nil {
		return tableRequest{}, false
	}
	if gen, busy := m.run.inflight[kind]; busy && gen == m.gen {
		m.run.again[kind] = true
		return tableRequest{}, false
	}
	m.run.inflight[kind] = m.gen
	req := tableRequest{kind: kind, scope: m.sess.Scope(), gen: m.gen}
	if kind == domain.KindCustomResources {
		req.cr = cr
	}
	return req, true
}

// refreshKind fetches one table unless that kind is already in flight.
func (m Model) refreshKind(kind domain.Kind) tea.Cmd {
	req, ok := m.claim(kind)
	if !ok {
		return nil
	}
	src, timeout := m.src, m.cfg.Timeouts.Table
	return func() tea.Msg {
		return req.fetch(src, timeout)
	}
}

// refreshAll fetches the active kind on its own, so it renders first, and
// every other kind through a bounded fan-out. The identity catalog is
// reloaded alongside.
func (m Model) refreshAll() tea.Cmd {
	active := m.sess.ActiveKind()
	cmds := []tea.Cmd{m.refreshKind(active), m.fetchCatalog()}

	var reqs []tableRequest
	for _, k := range domain.AllKinds() {
		if k == active {
			continue
		}
		if req, ok := m.claim(k); ok {
			reqs = append(reqs, req)
		}
	}
	if len(reqs) > 0 {
		src, timeout := m.src, m.cfg.Timeouts.Table
		cmds = append(cmds, func() tea.Msg {
			results := make(tableBatchMsg, len(reqs))
			var g errgroup.Group
			g.SetLimit(refreshFanOut)
			for i, req := range reqs {
				g.Go(func() error {
					results[i] = req.fetch(src, timeout)
					return nil
				})
			}
			_ = g.Wait()
			return results
		})
	}
	return tea.Batch(cmds...)
}

func (m Model) fetchCatalog() tea.Cmd {
	src, gen := m.src, m.gen
	return func() tea.Msg {
		cat, err := src.Identities()
		return catalogMsg{gen: gen, catalog: cat, err: err}
	}
}

// applyTable reconciles a finished fetch. Results from an older identity
// are dropped. Results for a scope or custom resource no longer shown are
// dropped and refetched when their kind is on screen. A timeout keeps the
// cached rows; any other failure replaces them with the error.
func (m Model) applyTable(r tableMsg) tea.Cmd {
	if gen, ok := m.run.inflight[r.kind]; ok && gen == r.gen {
		delete(m.run.inflight, r.kind)
	}
	if r.gen != m.gen {
		return nil
	}
	again := m.run.again[r.kind]
	delete(m.run.again, r.kind)

	if r.scope != m.sess.Scope() || (r.kind == domain.KindCustomResources && r.crID != m.sess.CustomResourceID()) {
		if again || r.kind == m.sess.ActiveKind() {
			return m.refreshKind(r.kind)
		}
		return nil
	}

	switch {
	case r.err == nil:
		m.sess.SetTable(r.kind, r.snap)
	case errors.Is(r.err, context.DeadlineExceeded):
		logging.Debug("orchestrator", "%s timed out", r.kind)
		if r.kind == m.sess.ActiveKind() {
			m.sess.TableTimedOut(r.kind)
		}
	default:
		logging.Warn("orchestrator", r.err, "fetch %s", r.kind)
		m.sess.SetTableError(r.kind, errors.New(errText(r.err)))
	}
	if again {
		return m.refreshKind(r.kind)
	}
	return nil
}
