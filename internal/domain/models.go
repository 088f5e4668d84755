package domain

import (
	"fmt"
	"strings"
	"time"
)

// Scope is the namespace filter sent to the data source.
type Scope struct {
	name string
}

// AllNamespaces returns the scope spanning every namespace.
func AllNamespaces() Scope { return Scope{} }

// Named returns a single-namespace scope. An empty name means all namespaces.
func Named(name string) Scope { return Scope{name: strings.TrimSpace(name)} }

// IsAll reports whether the scope spans every namespace.
func (s Scope) IsAll() bool { return s.name == "" }

// Namespace returns the namespace name, or "" for all namespaces (the
// client-go convention for cluster-wide list calls).
func (s Scope) Namespace() string { return s.name }

func (s Scope) String() string {
	if s.IsAll() {
		return "all"
	}
	return s.name
}

// RowIdentity is the only stable identity of a row across refreshes.
// Namespace is empty for cluster-scoped objects.
type RowIdentity struct {
	Namespace string
	Name      string
}

func (id RowIdentity) String() string {
	if id.Namespace == "" {
		return id.Name
	}
	return id.Namespace + "/" + id.Name
}

// Row is one line of a resource table.
type Row struct {
	ID      RowIdentity
	Columns []string
	Detail  string
}

// TableSnapshot is the cached table of one resource kind.
// Err non-empty implies Rows is empty.
type TableSnapshot struct {
	Headers     []string
	Rows        []Row
	Selected    int
	RefreshedAt time.Time
	Err         string
}

// ContainerInfo describes one container of a pod.
type ContainerInfo struct {
	Name  string
	Image string
	Ready bool
	State string
	Ports []int32
}

// LogRequest selects the log stream to fetch.
type LogRequest struct {
	Namespace string
	Pod       string
	Container string
	Previous  bool
	TailLines int64
}

// LogTarget is the concrete pod and container backing a resource's logs.
type LogTarget struct {
	Namespace string
	Pod       string
	Container string
}

// CustomResourceDescriptor describes a discovered custom resource kind.
type CustomResourceDescriptor struct {
	Group      string
	Version    string
	Kind       string
	Plural     string
	Namespaced bool
}

// ID is the descriptor's stable identifier, "plural.group".
func (d CustomResourceDescriptor) ID() string {
	if d.Group == "" {
		return d.Plural
	}
	return d.Plural + "." + d.Group
}

// Matches reports whether a token names this descriptor by id, kind or plural.
func (d CustomResourceDescriptor) Matches(token string) bool {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		return false
	}
	return t == strings.ToLower(d.ID()) || t == strings.ToLower(d.Kind) || t == strings.ToLower(d.Plural)
}

// OverviewMetrics summarises the cluster for the overview overlay.
type OverviewMetrics struct {
	Nodes            int
	Namespaces       int
	Pods             int
	RunningPods      int
	CPUMilli         int64
	MemoryBytes      int64
	MetricsAvailable bool
}

// IdentityCatalog lists the kubeconfig identities available for switching.
type IdentityCatalog struct {
	Contexts       []string
	Clusters       []string
	Users          []string
	CurrentContext string
	CurrentCluster string
	CurrentUser    string
}

// PortForwardSession is one running port-forward process.
type PortForwardSession struct {
	Kind       Kind
	Namespace  string
	Name       string
	LocalPort  int
	RemotePort int
	PID        int
}

// Mapping renders the session's port mapping as "local:remote".
func (p PortForwardSession) Mapping() string {
	return fmt.Sprintf("%d:%d", p.LocalPort, p.RemotePort)
}

// SameMapping reports whether two sessions forward the same target and ports.
func (p PortForwardSession) SameMapping(o PortForwardSession) bool {
	return p.Kind == o.Kind && p.Namespace == o.Namespace && p.Name == o.Name &&
		p.LocalPort == o.LocalPort && p.RemotePort == o.RemotePort
}

// WatchEventType mirrors the watch event verbs of the resource API.
type WatchEventType string

const (
	EventAdded    WatchEventType = "ADDED"
	EventModified WatchEventType = "MODIFIED"
	EventDeleted  WatchEventType = "DELETED"
	EventError    WatchEventType = "ERROR"
)

// WatchEvent is a change notification for one resource kind.
type WatchEvent struct {
	Type WatchEventType
	Kind Kind
	ID   RowIdentity
}
