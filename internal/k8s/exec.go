package k8s

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/Taishi66/kdeck/internal/domain"
)

// LookPathFunc allows overriding exec.LookPath for testing.
var LookPathFunc = exec.LookPath

// BuildShellCmd builds an interactive shell into a pod container.
func (c *Client) BuildShellCmd(namespace, pod, container, shell string) (*exec.Cmd, error) {
	tool, err := findExecTool()
	if err != nil {
		return nil, err
	}
	args := c.baseArgs("exec", "-it", "-n", namespace, pod)
	if container != "" {
		args = append(args, "-c", container)
	}
	args = append(args, "--", shell)
	return exec.Command(tool, args...), nil
}

// BuildExecCmd builds a non-interactive command run inside a pod container.
// Its combined output is meant to be captured, not attached to the terminal.
func (c *Client) BuildExecCmd(ctx context.Context, namespace, pod, container string, argv []string) (*exec.Cmd, error) {
	if len(argv) == 0 {
		return nil, errors.New("exec needs a command")
	}
	tool, err := findExecTool()
	if err != nil {
		return nil, err
	}
	args := c.baseArgs("exec", "-n", namespace, pod)
	if container != "" {
		args = append(args, "-c", container)
	}
	args = append(args, "--")
	args = append(args, argv...)
	return exec.CommandContext(ctx, tool, args...), nil
}

// BuildEditCmd opens an object in the user's editor through kubectl edit.
func (c *Client) BuildEditCmd(kind domain.Kind, id domain.RowIdentity, editor string) (*exec.Cmd, error) {
	if !kind.Supports(domain.CapEdit) {
		return nil, domain.Unsupported(kind, "edit")
	}
	resource, err := resourceArg(kind)
	if err != nil {
		return nil, err
	}
	tool, err := findExecTool()
	if err != nil {
		return nil, err
	}
	args := c.baseArgs("edit", resource+"/"+id.Name)
	if kind.Namespaced() {
		args = append(args, "-n", id.Namespace)
	}
	cmd := exec.Command(tool, args...)
	if editor != "" {
		cmd.Env = append(os.Environ(), "KUBE_EDITOR="+editor)
	}
	return cmd, nil
}

// BuildPortForwardCmd builds a background port-forward process.
func (c *Client) BuildPortForwardCmd(kind domain.Kind, id domain.RowIdentity, localPort, remotePort int) (*exec.Cmd, error) {
	if !kind.Supports(domain.CapPortForward) {
		return nil, domain.Unsupported(kind, "port-forward")
	}
	if localPort <= 0 || localPort > 65535 || remotePort <= 0 || remotePort > 65535 {
		return nil, fmt.Errorf("invalid port mapping %d:%d", localPort, remotePort)
	}
	resource, err := resourceArg(kind)
	if err != nil {
		return nil, err
	}
	tool, err := findExecTool()
	if err != nil {
		return nil, err
	}
	args := c.baseArgs("port-forward", "-n", id.Namespace, resource+"/"+id.Name,
		strconv.Itoa(localPort)+":"+strconv.Itoa(remotePort))
	return exec.Command(tool, args...), nil
}

// baseArgs pins the subprocess to the context the cockpit is showing.
func (c *Client) baseArgs(args ...string) []string {
	if ctx := c.ContextName(); ctx != "" {
		return append([]string{"--context", ctx}, args...)
	}
	return args
}

// resourceArg renders kind as a fully qualified kubectl resource name.
func resourceArg(kind domain.Kind) (string, error) {
	h, ok := handlers[kind]
	if !ok {
		return "", domain.Unsupported(kind, "kubectl")
	}
	if h.gvr.Group == "" {
		return h.gvr.Resource, nil
	}
	return h.gvr.Resource + "." + h.gvr.Group, nil
}

func findExecTool() (string, error) {
	if path, err := LookPathFunc("kubectl"); err == nil {
		return path, nil
	}
	if path, err := LookPathFunc("oc"); err == nil {
		return path, nil
	}
	return "", errors.New("neither 'kubectl' nor 'oc' found in PATH")
}
