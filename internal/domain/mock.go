package domain

import (
	"context"
	"os/exec"
	"sync"
)

// MockDataSource implements DataSource for testing.
type MockDataSource struct {
	mu sync.Mutex

	Tables      map[Kind]TableSnapshot
	Details     map[RowIdentity]string
	LogContent  string
	Containers  []ContainerInfo
	LogTarget   LogTarget
	CustomKinds []CustomResourceDescriptor
	Overview    OverviewMetrics
	Catalog     IdentityCatalog
	WatchChans  map[Kind]chan WatchEvent

	// Error injection
	FetchTableErr  error
	FetchDetailErr error
	FetchLogsErr   error
	ContainersErr  error
	LogTargetErr   error
	DeleteErr      error
	RestartErr     error
	ScaleErr       error
	DiscoverErr    error
	OverviewErr    error
	SwitchErr      error
	WatchErr       error
	BuildErr       error

	// Blocks FetchTable until ctx is done, to exercise timeouts.
	BlockFetch bool
	// Argv of the port-forward process; "sleep 0" when empty.
	ForwardArgv []string

	// Call tracking
	FetchTableCalls map[Kind]int
	Deleted         []RowIdentity
	Restarted       []RowIdentity
	ScaledTo        int32
	SwitchedContext string
	SwitchedCluster string
	SwitchedUser    string
	LastLogRequest  LogRequest
}

// Compile-time check.
var _ DataSource = (*MockDataSource)(nil)

func (m *MockDataSource) FetchTable(ctx context.Context, kind Kind, _ Scope, _ *CustomResourceDescriptor) (TableSnapshot, error) {
	m.mu.Lock()
	if m.FetchTableCalls == nil {
		m.FetchTableCalls = make(map[Kind]int)
	}
	m.FetchTableCalls[kind]++
	block := m.BlockFetch
	err := m.FetchTableErr
	table := m.Tables[kind]
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return TableSnapshot{}, ctx.Err()
	}
	if err != nil {
		return TableSnapshot{}, err
	}
	return table, nil
}

// Calls returns how many times FetchTable ran for kind.
func (m *MockDataSource) Calls(kind Kind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FetchTableCalls[kind]
}

func (m *MockDataSource) FetchDetail(_ context.Context, _ Kind, id RowIdentity, _ *CustomResourceDescriptor) (string, error) {
	if m.FetchDetailErr != nil {
		return "", m.FetchDetailErr
	}
	return m.Details[id], nil
}

func (m *MockDataSource) FetchLogs(_ context.Context, req LogRequest) (string, error) {
	m.LastLogRequest = req
	if m.FetchLogsErr != nil {
		return "", m.FetchLogsErr
	}
	return m.LogContent, nil
}

func (m *MockDataSource) FetchContainers(_ context.Context, _, _ string) ([]ContainerInfo, error) {
	if m.ContainersErr != nil {
		return nil, m.ContainersErr
	}
	return m.Containers, nil
}

func (m *MockDataSource) ResolveLogTarget(_ context.Context, _ Kind, _ RowIdentity) (LogTarget, error) {
	if m.LogTargetErr != nil {
		return LogTarget{}, m.LogTargetErr
	}
	return m.LogTarget, nil
}

func (m *MockDataSource) Delete(_ context.Context, _ Kind, id RowIdentity, _ *CustomResourceDescriptor) error {
	m.Deleted = append(m.Deleted, id)
	return m.DeleteErr
}

func (m *MockDataSource) Restart(_ context.Context, _ Kind, id RowIdentity) error {
	m.Restarted = append(m.Restarted, id)
	return m.RestartErr
}

func (m *MockDataSource) Scale(_ context.Context, _ Kind, _ RowIdentity, replicas int32) error {
	m.ScaledTo = replicas
	return m.ScaleErr
}

func (m *MockDataSource) DiscoverCustomResourceKinds(_ context.Context) ([]CustomResourceDescriptor, error) {
	if m.DiscoverErr != nil {
		return nil, m.DiscoverErr
	}
	return m.CustomKinds, nil
}

func (m *MockDataSource) FetchOverview(_ context.Context, _ Scope) (OverviewMetrics, error) {
	if m.OverviewErr != nil {
		return OverviewMetrics{}, m.OverviewErr
	}
	return m.Overview, nil
}

func (m *MockDataSource) Identities() (IdentityCatalog, error) {
	return m.Catalog, nil
}

func (m *MockDataSource) SwitchContext(name string) error {
	m.SwitchedContext = name
	return m.SwitchErr
}

func (m *MockDataSource) SwitchCluster(name string) error {
	m.SwitchedCluster = name
	return m.SwitchErr
}

func (m *MockDataSource) SwitchUser(name string) error {
	m.SwitchedUser = name
	return m.SwitchErr
}

func (m *MockDataSource) Watch(_ context.Context, kind Kind) (<-chan WatchEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WatchErr != nil {
		return nil, m.WatchErr
	}
	ch, ok := m.WatchChans[kind]
	if !ok {
		return nil, nil
	}
	return ch, nil
}

func (m *MockDataSource) BuildShellCmd(_, _, _, shell string) (*exec.Cmd, error) {
	if m.BuildErr != nil {
		return nil, m.BuildErr
	}
	return exec.Command("true", shell), nil
}

func (m *MockDataSource) BuildExecCmd(ctx context.Context, _, _, _ string, argv []string) (*exec.Cmd, error) {
	if m.BuildErr != nil {
		return nil, m.BuildErr
	}
	return exec.CommandContext(ctx, "echo", argv...), nil
}

func (m *MockDataSource) BuildEditCmd(_ Kind, _ RowIdentity, _ string) (*exec.Cmd, error) {
	if m.BuildErr != nil {
		return nil, m.BuildErr
	}
	return exec.Command("true"), nil
}

func (m *MockDataSource) BuildPortForwardCmd(_ Kind, _ RowIdentity, _, _ int) (*exec.Cmd, error) {
	if m.BuildErr != nil {
		return nil, m.BuildErr
	}
	if len(m.ForwardArgv) > 0 {
		return exec.Command(m.ForwardArgv[0], m.ForwardArgv[1:]...), nil
	}
	return exec.Command("sleep", "0"), nil
}
