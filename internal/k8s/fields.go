package k8s

import (
	"fmt"
	"sort"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const none = "-"

// orDash returns s, or "-" when s is empty.
func orDash(s string) string {
	if s == "" {
		return none
	}
	return s
}

// firstNonEmpty returns the first non-empty value, or "-".
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return none
}

// replicas resolves a desired replica count: spec value, else 1 (the API
// server default).
func replicas(spec *int32) int32 {
	if spec == nil {
		return 1
	}
	return *spec
}

// containerImage resolves a container's image: the running image reported
// in status, then the image declared in spec, then "-".
func containerImage(name string, spec []corev1.Container, status []corev1.ContainerStatus) string {
	var fromStatus, fromSpec string
	for _, cs := range status {
		if cs.Name == name {
			fromStatus = cs.Image
			break
		}
	}
	for _, c := range spec {
		if c.Name == name {
			fromSpec = c.Image
			break
		}
	}
	return firstNonEmpty(fromStatus, fromSpec)
}

// templateImage resolves a workload's image from its first pod template
// container, then "-".
func templateImage(tpl corev1.PodTemplateSpec) string {
	if len(tpl.Spec.Containers) == 0 {
		return none
	}
	return orDash(tpl.Spec.Containers[0].Image)
}

// eventTime resolves when an event happened: last timestamp, then the
// series-aware event time, then the first timestamp, then creation.
func eventTime(evt corev1.Event) time.Time {
	switch {
	case !evt.LastTimestamp.IsZero():
		return evt.LastTimestamp.Time
	case !evt.EventTime.IsZero():
		return evt.EventTime.Time
	case !evt.FirstTimestamp.IsZero():
		return evt.FirstTimestamp.Time
	default:
		return evt.CreationTimestamp.Time
	}
}

// nodeRoles resolves node roles from node-role.kubernetes.io/* labels, then
// the legacy kubernetes.io/role label, then "<none>".
func nodeRoles(labels map[string]string) string {
	var roles []string
	for k := range labels {
		if role, ok := strings.CutPrefix(k, "node-role.kubernetes.io/"); ok && role != "" {
			roles = append(roles, role)
		}
	}
	if len(roles) == 0 {
		if role := labels["kubernetes.io/role"]; role != "" {
			return role
		}
		return "<none>"
	}
	sort.Strings(roles)
	return strings.Join(roles, ",")
}

// nodeReady resolves a node's status from its Ready condition.
func nodeReady(node corev1.Node) string {
	status := "Unknown"
	for _, cond := range node.Status.Conditions {
		if cond.Type == corev1.NodeReady {
			if cond.Status == corev1.ConditionTrue {
				status = "Ready"
			} else {
				status = "NotReady"
			}
			break
		}
	}
	if node.Spec.Unschedulable {
		status += ",SchedulingDisabled"
	}
	return status
}

// quantity renders a resource quantity from a list, or "-".
func quantity(list corev1.ResourceList, name corev1.ResourceName) string {
	q, ok := list[name]
	if !ok {
		return none
	}
	return q.String()
}

func selectorString(sel *metav1.LabelSelector) string {
	if sel == nil {
		return "<none>"
	}
	s := metav1.FormatLabelSelector(sel)
	if s == "" {
		return "<none>"
	}
	return s
}

func containerState(cs corev1.ContainerStatus) string {
	switch {
	case cs.State.Running != nil:
		return "running"
	case cs.State.Waiting != nil:
		return "waiting"
	case cs.State.Terminated != nil:
		return "terminated"
	default:
		return "unknown"
	}
}

func podStatus(pod corev1.Pod) string {
	if pod.DeletionTimestamp != nil {
		return "Terminating"
	}
	// Check container statuses for more specific states
	for _, cs := range pod.Status.ContainerStatuses {
		if cs.State.Waiting != nil && cs.State.Waiting.Reason != "" {
			return cs.State.Waiting.Reason // CrashLoopBackOff, ImagePullBackOff, etc.
		}
		if cs.State.Terminated != nil && cs.State.Terminated.Reason != "" {
			return cs.State.Terminated.Reason
		}
	}
	for _, cs := range pod.Status.InitContainerStatuses {
		if cs.State.Waiting != nil && cs.State.Waiting.Reason != "" {
			return "Init:" + cs.State.Waiting.Reason
		}
		if cs.State.Terminated != nil && cs.State.Terminated.ExitCode != 0 {
			return "Init:Error"
		}
	}
	return string(pod.Status.Phase)
}

func podReadyCount(pod corev1.Pod) (int, int) {
	total := len(pod.Spec.Containers)
	ready := 0
	for _, cs := range pod.Status.ContainerStatuses {
		if cs.Ready {
			ready++
		}
	}
	return ready, total
}

func podRestarts(pod corev1.Pod) int32 {
	var restarts int32
	for _, cs := range pod.Status.ContainerStatuses {
		restarts += cs.RestartCount
	}
	return restarts
}

func formatAge(t time.Time) string {
	if t.IsZero() {
		return none
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		days := int(d.Hours() / 24)
		if days > 365 {
			return fmt.Sprintf("%dy%dd", days/365, days%365)
		}
		return fmt.Sprintf("%dd", days)
	}
}

// detail renders key/value pairs one per line, skipping empty values.
func detail(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", pairs[i], pairs[i+1])
	}
	return strings.TrimRight(b.String(), "\n")
}

func labelsString(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+labels[k])
	}
	return strings.Join(parts, ",")
}
