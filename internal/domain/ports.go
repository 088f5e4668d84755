package domain

import (
	"context"
	"os/exec"
)

// TableReader fetches tabular snapshots and per-row text.
type TableReader interface {
	FetchTable(ctx context.Context, kind Kind, scope Scope, cr *CustomResourceDescriptor) (TableSnapshot, error)
	FetchDetail(ctx context.Context, kind Kind, id RowIdentity, cr *CustomResourceDescriptor) (string, error)
}

// PodReader provides the pod-level reads behind logs and the container picker.
type PodReader interface {
	FetchLogs(ctx context.Context, req LogRequest) (string, error)
	FetchContainers(ctx context.Context, namespace, pod string) ([]ContainerInfo, error)
	ResolveLogTarget(ctx context.Context, kind Kind, id RowIdentity) (LogTarget, error)
}

// Mutator changes cluster state.
type Mutator interface {
	Delete(ctx context.Context, kind Kind, id RowIdentity, cr *CustomResourceDescriptor) error
	Restart(ctx context.Context, kind Kind, id RowIdentity) error
	Scale(ctx context.Context, kind Kind, id RowIdentity, replicas int32) error
}

// ClusterReader provides discovery and summary reads.
type ClusterReader interface {
	DiscoverCustomResourceKinds(ctx context.Context) ([]CustomResourceDescriptor, error)
	FetchOverview(ctx context.Context, scope Scope) (OverviewMetrics, error)
}

// IdentityManager exposes the kubeconfig identity catalog and switching.
type IdentityManager interface {
	Identities() (IdentityCatalog, error)
	SwitchContext(name string) error
	SwitchCluster(name string) error
	SwitchUser(name string) error
}

// Watcher opens a change-notification stream for one kind across all
// namespaces. The channel closes when the stream ends or ctx is done.
type Watcher interface {
	Watch(ctx context.Context, kind Kind) (<-chan WatchEvent, error)
}

// ProcessBuilder prepares the external processes the cockpit launches.
type ProcessBuilder interface {
	BuildShellCmd(namespace, pod, container, shell string) (*exec.Cmd, error)
	BuildExecCmd(ctx context.Context, namespace, pod, container string, argv []string) (*exec.Cmd, error)
	BuildEditCmd(kind Kind, id RowIdentity, editor string) (*exec.Cmd, error)
	BuildPortForwardCmd(kind Kind, id RowIdentity, localPort, remotePort int) (*exec.Cmd, error)
}

// DataSource is the primary port combining every backend operation.
// The orchestrator depends on this interface, not on concrete implementations.
type DataSource interface {
	TableReader
	PodReader
	Mutator
	ClusterReader
	IdentityManager
	Watcher
	ProcessBuilder
}
