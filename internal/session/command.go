package session

import "github.com/Taishi66/kdeck/internal/domain"

// Command is work the session cannot do itself. A nil Command means none.
type Command interface {
	command()
}

type (
	// RefreshActive refetches the active kind's table.
	RefreshActive struct{}
	// RefreshAll refetches every table plus the identity catalog.
	RefreshAll struct{}
	// RefreshKind refetches one kind's table.
	RefreshKind struct{ Kind domain.Kind }

	FetchContainers struct{ Namespace, Pod string }
	// FetchLogs resolves the log target of a row, then fetches its logs.
	FetchLogs struct {
		Kind      domain.Kind
		ID        domain.RowIdentity
		Container string
		Previous  bool
	}
	FetchDetail struct {
		Kind domain.Kind
		ID   domain.RowIdentity
		CR   *domain.CustomResourceDescriptor
	}
	FetchOverview           struct{ Scope domain.Scope }
	DiscoverCustomResources struct{}

	Delete struct {
		Kind domain.Kind
		ID   domain.RowIdentity
		CR   *domain.CustomResourceDescriptor
	}
	Restart struct {
		Kind domain.Kind
		ID   domain.RowIdentity
	}
	Scale struct {
		Kind     domain.Kind
		ID       domain.RowIdentity
		Replicas int32
	}

	// Exec runs a command in a container and captures its output.
	Exec struct {
		Namespace, Pod, Container string
		Argv                      []string
	}
	// Shell hands the terminal to an interactive shell.
	Shell struct{ Namespace, Pod, Container string }
	// Edit hands the terminal to the editor.
	Edit struct {
		Kind domain.Kind
		ID   domain.RowIdentity
	}
	PortForward struct {
		Kind                  domain.Kind
		ID                    domain.RowIdentity
		LocalPort, RemotePort int
	}

	SwitchContext struct{ Name string }
	SwitchCluster struct{ Name string }
	SwitchUser    struct{ Name string }

	Copy struct{ Text string }
	Quit struct{}
)

func (RefreshActive) command()           {}
func (RefreshAll) command()              {}
func (RefreshKind) command()             {}
func (FetchContainers) command()         {}
func (FetchLogs) command()               {}
func (FetchDetail) command()             {}
func (FetchOverview) command()           {}
func (DiscoverCustomResources) command() {}
func (Delete) command()                  {}
func (Restart) command()                 {}
func (Scale) command()                   {}
func (Exec) command()                    {}
func (Shell) command()                   {}
func (Edit) command()                    {}
func (PortForward) command()             {}
func (SwitchContext) command()           {}
func (SwitchCluster) command()           {}
func (SwitchUser) command()              {}
func (Copy) command()                    {}
func (Quit) command()                    {}
