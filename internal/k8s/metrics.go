package k8s

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/Taishi66/kdeck/internal/domain"
	"github.com/Taishi66/kdeck/internal/logging"
)

// FetchOverview summarises the cluster. Node CPU and memory come from
// metrics-server; when it is missing the counts are still returned with
// MetricsAvailable unset.
func (c *Client) FetchOverview(ctx context.Context, scope domain.Scope) (domain.OverviewMetrics, error) {
	cur := c.get()
	var m domain.OverviewMetrics

	nodes, err := cur.typed.CoreV1().Nodes().List(ctx, listOpts)
	if err != nil {
		return m, classifyError(err, cur.serverURL)
	}
	m.Nodes = len(nodes.Items)

	namespaces, err := cur.typed.CoreV1().Namespaces().List(ctx, listOpts)
	if err != nil {
		return m, classifyError(err, cur.serverURL)
	}
	m.Namespaces = len(namespaces.Items)

	pods, err := cur.typed.CoreV1().Pods(scope.Namespace()).List(ctx, listOpts)
	if err != nil {
		return m, classifyError(err, cur.serverURL)
	}
	m.Pods = len(pods.Items)
	for _, p := range pods.Items {
		if p.Status.Phase == corev1.PodRunning {
			m.RunningPods++
		}
	}

	usage, err := cur.metrics.MetricsV1beta1().NodeMetricses().List(ctx, metav1.ListOptions{})
	if err != nil {
		if ctx.Err() != nil {
			return m, ctx.Err()
		}
		logging.Debug("k8s", "node metrics unavailable: %v", err)
		return m, nil
	}
	m.MetricsAvailable = true
	for _, nm := range usage.Items {
		if cpu, ok := nm.Usage[corev1.ResourceCPU]; ok {
			m.CPUMilli += cpu.MilliValue()
		}
		if mem, ok := nm.Usage[corev1.ResourceMemory]; ok {
			m.MemoryBytes += mem.Value()
		}
	}
	return m, nil
}
