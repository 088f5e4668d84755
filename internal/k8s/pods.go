package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/Taishi66/kdeck/internal/domain"
)

// FetchLogs returns the tail of a container's log.
func (c *Client) FetchLogs(ctx context.Context, req domain.LogRequest) (string, error) {
	cur := c.get()
	opts := &corev1.PodLogOptions{
		Previous: req.Previous,
	}
	if req.TailLines > 0 {
		tail := req.TailLines
		opts.TailLines = &tail
	}
	if req.Container != "" {
		opts.Container = req.Container
	}
	result, err := cur.typed.CoreV1().Pods(req.Namespace).GetLogs(req.Pod, opts).Do(ctx).Raw()
	if err != nil {
		return "", classifyError(err, cur.serverURL)
	}
	return string(result), nil
}

// FetchContainers lists the containers of a pod with their state and ports.
func (c *Client) FetchContainers(ctx context.Context, namespace, pod string) ([]domain.ContainerInfo, error) {
	cur := c.get()
	p, err := cur.typed.CoreV1().Pods(namespace).Get(ctx, pod, metav1.GetOptions{})
	if err != nil {
		return nil, classifyError(err, cur.serverURL)
	}
	return podContainers(p), nil
}

func podContainers(pod *corev1.Pod) []domain.ContainerInfo {
	statusMap := make(map[string]corev1.ContainerStatus, len(pod.Status.ContainerStatuses))
	for _, cs := range pod.Status.ContainerStatuses {
		statusMap[cs.Name] = cs
	}
	containers := make([]domain.ContainerInfo, 0, len(pod.Spec.Containers))
	for _, c := range pod.Spec.Containers {
		ci := domain.ContainerInfo{
			Name:  c.Name,
			Image: containerImage(c.Name, pod.Spec.Containers, pod.Status.ContainerStatuses),
			State: "unknown",
		}
		if cs, ok := statusMap[c.Name]; ok {
			ci.Ready = cs.Ready
			ci.State = containerState(cs)
		}
		for _, p := range c.Ports {
			ci.Ports = append(ci.Ports, p.ContainerPort)
		}
		containers = append(containers, ci)
	}
	return containers
}

// ResolveLogTarget maps a row to the pod and container whose logs represent
// it. Pods resolve to themselves; workloads resolve to one of the pods their
// selector matches, preferring a running one.
func (c *Client) ResolveLogTarget(ctx context.Context, kind domain.Kind, id domain.RowIdentity) (domain.LogTarget, error) {
	if !kind.Supports(domain.CapLogs) {
		return domain.LogTarget{}, domain.Unsupported(kind, "logs")
	}
	cur := c.get()

	if kind == domain.KindPods {
		pod, err := cur.typed.CoreV1().Pods(id.Namespace).Get(ctx, id.Name, metav1.GetOptions{})
		if err != nil {
			return domain.LogTarget{}, classifyError(err, cur.serverURL)
		}
		return logTargetFor(pod), nil
	}

	selector, err := c.workloadSelector(ctx, cur, kind, id)
	if err != nil {
		return domain.LogTarget{}, err
	}
	pods, err := cur.typed.CoreV1().Pods(id.Namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return domain.LogTarget{}, classifyError(err, cur.serverURL)
	}
	pod := pickPod(pods.Items)
	if pod == nil {
		return domain.LogTarget{}, &domain.APIError{
			Type:    domain.ErrNotFound,
			Message: fmt.Sprintf("no pods found for %s %s", kind.Title(), id),
		}
	}
	return logTargetFor(pod), nil
}

func logTargetFor(pod *corev1.Pod) domain.LogTarget {
	t := domain.LogTarget{Namespace: pod.Namespace, Pod: pod.Name}
	if len(pod.Spec.Containers) > 0 {
		t.Container = pod.Spec.Containers[0].Name
	}
	return t
}

// pickPod returns the first running pod, else the first pod, else nil.
func pickPod(pods []corev1.Pod) *corev1.Pod {
	for i := range pods {
		if pods[i].Status.Phase == corev1.PodRunning {
			return &pods[i]
		}
	}
	if len(pods) > 0 {
		return &pods[0]
	}
	return nil
}

func (c *Client) workloadSelector(ctx context.Context, cur *clients, kind domain.Kind, id domain.RowIdentity) (string, error) {
	var (
		sel *metav1.LabelSelector
		err error
	)
	apps := cur.typed.AppsV1()
	switch kind {
	case domain.KindDeployments:
		d, e := apps.Deployments(id.Namespace).Get(ctx, id.Name, metav1.GetOptions{})
		err = e
		if err == nil {
			sel = d.Spec.Selector
		}
	case domain.KindStatefulSets:
		s, e := apps.StatefulSets(id.Namespace).Get(ctx, id.Name, metav1.GetOptions{})
		err = e
		if err == nil {
			sel = s.Spec.Selector
		}
	case domain.KindDaemonSets:
		d, e := apps.DaemonSets(id.Namespace).Get(ctx, id.Name, metav1.GetOptions{})
		err = e
		if err == nil {
			sel = d.Spec.Selector
		}
	case domain.KindReplicaSets:
		r, e := apps.ReplicaSets(id.Namespace).Get(ctx, id.Name, metav1.GetOptions{})
		err = e
		if err == nil {
			sel = r.Spec.Selector
		}
	case domain.KindJobs:
		j, e := cur.typed.BatchV1().Jobs(id.Namespace).Get(ctx, id.Name, metav1.GetOptions{})
		err = e
		if err == nil {
			sel = j.Spec.Selector
		}
	default:
		return "", domain.Unsupported(kind, "logs")
	}
	if err != nil {
		return "", classifyError(err, cur.serverURL)
	}
	if sel == nil {
		return "", &domain.APIError{
			Type:    domain.ErrNotFound,
			Message: fmt.Sprintf("%s %s has no pod selector", kind.Title(), id),
		}
	}
	return metav1.FormatLabelSelector(sel), nil
}
