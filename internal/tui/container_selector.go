package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/Taishi66/kdeck/internal/session"
)

// renderContainerPicker lists a pod's containers with their state and the
// port-forwards already running on the pod.
func renderContainerPicker(p *session.ContainerPicker, forwards []string, width int) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf(" Containers of %s/%s", p.Namespace, p.Pod)))
	b.WriteString("\n\n")
	for i, c := range p.Containers {
		ports := make([]string, len(c.Ports))
		for j, port := range c.Ports {
			ports[j] = strconv.Itoa(int(port))
		}
		ready := "not ready"
		if c.Ready {
			ready = "ready"
		}
		line := fmt.Sprintf("%-24s %-10s %-10s %-12s %s", c.Name, c.State, ready, strings.Join(ports, ","), c.Image)
		line = runewidth.Truncate(line, max(width-4, 1), "…")
		if i == p.Selected {
			b.WriteString("  > " + selectedStyle.Render(line) + "\n")
		} else {
			b.WriteString("    " + line + "\n")
		}
	}
	if len(forwards) > 0 {
		b.WriteString("\n  " + forwardStyle.Render("⇄ "+strings.Join(forwards, "  ")) + "\n")
	}
	b.WriteString("\n  " + mutedStyle.Render("j/k move  enter/l logs  p previous  s shell  f forward first port  esc back") + "\n")
	return b.String()
}
