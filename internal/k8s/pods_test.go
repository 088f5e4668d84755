package k8s

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/Taishi66/kdeck/internal/domain"
)

func TestFormatAge(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"seconds", 30 * time.Second, "30s"},
		{"minutes", 5 * time.Minute, "5m"},
		{"hours", 3 * time.Hour, "3h"},
		{"days", 48 * time.Hour, "2d"},
		{"year+", 400 * 24 * time.Hour, "1y35d"},
		{"zero", 0, "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := time.Now().Add(-tt.duration)
			got := formatAge(ts)
			if got != tt.want {
				t.Errorf("formatAge(now - %v) = %q, want %q", tt.duration, got, tt.want)
			}
		})
	}
}

func TestPodStatus(t *testing.T) {
	tests := []struct {
		name string
		pod  corev1.Pod
		want string
	}{
		{
			"running pod",
			corev1.Pod{
				Status: corev1.PodStatus{
					Phase: corev1.PodRunning,
					ContainerStatuses: []corev1.ContainerStatus{
						{Ready: true, State: corev1.ContainerState{Running: &corev1.ContainerStateRunning{}}},
					},
				},
			},
			"Running",
		},
		{
			"crashloop",
			corev1.Pod{
				Status: corev1.PodStatus{
					Phase: corev1.PodRunning,
					ContainerStatuses: []corev1.ContainerStatus{
						{State: corev1.ContainerState{Waiting: &corev1.ContainerStateWaiting{Reason: "CrashLoopBackOff"}}},
					},
				},
			},
			"CrashLoopBackOff",
		},
		{
			"image pull backoff",
			corev1.Pod{
				Status: corev1.PodStatus{
					Phase: corev1.PodPending,
					ContainerStatuses: []corev1.ContainerStatus{
						{State: corev1.ContainerState{Waiting: &corev1.ContainerStateWaiting{Reason: "ImagePullBackOff"}}},
					},
				},
			},
			"ImagePullBackOff",
		},
		{
			"init container error",
			corev1.Pod{
				Status: corev1.PodStatus{
					Phase: corev1.PodPending,
					InitContainerStatuses: []corev1.ContainerStatus{
						{State: corev1.ContainerState{Terminated: &corev1.ContainerStateTerminated{ExitCode: 1}}},
					},
				},
			},
			"Init:Error",
		},
		{
			"completed pod",
			corev1.Pod{
				Status: corev1.PodStatus{
					Phase: corev1.PodSucceeded,
					ContainerStatuses: []corev1.ContainerStatus{
						{State: corev1.ContainerState{Terminated: &corev1.ContainerStateTerminated{Reason: "Completed"}}},
					},
				},
			},
			"Completed",
		},
		{
			"pending no statuses",
			corev1.Pod{
				Status: corev1.PodStatus{
					Phase: corev1.PodPending,
				},
			},
			"Pending",
		},
		{
			"OOMKilled",
			corev1.Pod{
				Status: corev1.PodStatus{
					Phase: corev1.PodRunning,
					ContainerStatuses: []corev1.ContainerStatus{
						{State: corev1.ContainerState{Terminated: &corev1.ContainerStateTerminated{Reason: "OOMKilled"}}},
					},
				},
			},
			"OOMKilled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := podStatus(tt.pod)
			if got != tt.want {
				t.Errorf("podStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPodReadyCount(t *testing.T) {
	tests := []struct {
		name      string
		pod       corev1.Pod
		wantReady int
		wantTotal int
	}{
		{
			"all ready",
			corev1.Pod{
				Spec: corev1.PodSpec{Containers: []corev1.Container{{Name: "a"}, {Name: "b"}}},
				Status: corev1.PodStatus{ContainerStatuses: []corev1.ContainerStatus{
					{Ready: true}, {Ready: true},
				}},
			},
			2, 2,
		},
		{
			"partial ready",
			corev1.Pod{
				Spec: corev1.PodSpec{Containers: []corev1.Container{{Name: "a"}, {Name: "b"}, {Name: "c"}}},
				Status: corev1.PodStatus{ContainerStatuses: []corev1.ContainerStatus{
					{Ready: true}, {Ready: false}, {Ready: true},
				}},
			},
			2, 3,
		},
		{
			"no containers",
			corev1.Pod{},
			0, 0,
		},
		{
			"containers but no statuses yet",
			corev1.Pod{
				Spec: corev1.PodSpec{Containers: []corev1.Container{{Name: "a"}}},
			},
			0, 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ready, total := podReadyCount(tt.pod)
			if ready != tt.wantReady || total != tt.wantTotal {
				t.Errorf("podReadyCount() = (%d, %d), want (%d, %d)", ready, total, tt.wantReady, tt.wantTotal)
			}
		})
	}
}

func TestPodRow(t *testing.T) {
	pod := corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:              "my-pod-abc123",
			Namespace:         "default",
			CreationTimestamp: metav1.Time{Time: time.Now().Add(-2 * time.Hour)},
		},
		Spec: corev1.PodSpec{
			NodeName:   "node-1",
			Containers: []corev1.Container{{Name: "main"}},
		},
		Status: corev1.PodStatus{
			Phase: corev1.PodRunning,
			ContainerStatuses: []corev1.ContainerStatus{
				{
					Ready:        true,
					RestartCount: 3,
					State:        corev1.ContainerState{Running: &corev1.ContainerStateRunning{}},
				},
			},
		},
	}

	row := podRow(&pod)
	want := []string{"default", "my-pod-abc123", "1/1", "Running", "3", "node-1", "2h"}
	if len(row.Columns) != len(want) {
		t.Fatalf("Columns = %v, want %v", row.Columns, want)
	}
	for i := range want {
		if row.Columns[i] != want[i] {
			t.Errorf("Columns[%d] = %q, want %q", i, row.Columns[i], want[i])
		}
	}
	if row.ID != (domain.RowIdentity{Namespace: "default", Name: "my-pod-abc123"}) {
		t.Errorf("ID = %v", row.ID)
	}
	if !strings.Contains(row.Detail, "Node: node-1") {
		t.Errorf("Detail = %q, missing node", row.Detail)
	}
}

func TestContainerImageFallback(t *testing.T) {
	spec := []corev1.Container{{Name: "a", Image: "spec-a"}, {Name: "b", Image: "spec-b"}, {Name: "c"}}
	status := []corev1.ContainerStatus{{Name: "a", Image: "status-a"}, {Name: "b"}}

	tests := []struct {
		name string
		want string
	}{
		{"a", "status-a"},
		{"b", "spec-b"},
		{"c", "-"},
		{"missing", "-"},
	}
	for _, tt := range tests {
		if got := containerImage(tt.name, spec, status); got != tt.want {
			t.Errorf("containerImage(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestFetchContainers(t *testing.T) {
	p := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "dev"},
		Spec: corev1.PodSpec{Containers: []corev1.Container{
			{Name: "app", Image: "app:1", Ports: []corev1.ContainerPort{{ContainerPort: 8080}}},
			{Name: "sidecar", Image: "proxy:1"},
		}},
		Status: corev1.PodStatus{ContainerStatuses: []corev1.ContainerStatus{
			{Name: "app", Ready: true, Image: "app:1@sha", State: corev1.ContainerState{Running: &corev1.ContainerStateRunning{}}},
		}},
	}
	c, _ := newFakeClient(p)

	got, err := c.FetchContainers(context.Background(), "dev", "web")
	if err != nil {
		t.Fatalf("FetchContainers() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("containers = %d, want 2", len(got))
	}
	if got[0].Image != "app:1@sha" || !got[0].Ready || got[0].State != "running" {
		t.Errorf("app = %+v", got[0])
	}
	if len(got[0].Ports) != 1 || got[0].Ports[0] != 8080 {
		t.Errorf("app ports = %v", got[0].Ports)
	}
	if got[1].Image != "proxy:1" || got[1].State != "unknown" {
		t.Errorf("sidecar = %+v", got[1])
	}
}

func TestFetchLogs(t *testing.T) {
	c, _ := newFakeClient(pod("dev", "web", corev1.PodRunning, nil))
	logs, err := c.FetchLogs(context.Background(), domain.LogRequest{Namespace: "dev", Pod: "web", TailLines: 10})
	if err != nil {
		t.Fatalf("FetchLogs() error = %v", err)
	}
	// The fake clientset always answers with a fixed body.
	if logs != "fake logs" {
		t.Errorf("logs = %q", logs)
	}
}

func TestResolveLogTarget_Pod(t *testing.T) {
	c, _ := newFakeClient(pod("dev", "web", corev1.PodRunning, nil))
	got, err := c.ResolveLogTarget(context.Background(), domain.KindPods, domain.RowIdentity{Namespace: "dev", Name: "web"})
	if err != nil {
		t.Fatalf("ResolveLogTarget() error = %v", err)
	}
	want := domain.LogTarget{Namespace: "dev", Pod: "web", Container: "main"}
	if got != want {
		t.Errorf("ResolveLogTarget() = %+v, want %+v", got, want)
	}
}

func TestResolveLogTarget_DeploymentPrefersRunningPod(t *testing.T) {
	labels := map[string]string{"app": "web"}
	dep := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "dev"},
		Spec:       appsv1.DeploymentSpec{Selector: &metav1.LabelSelector{MatchLabels: labels}},
	}
	c, _ := newFakeClient(
		dep,
		pod("dev", "web-pending", corev1.PodPending, labels),
		pod("dev", "web-running", corev1.PodRunning, labels),
		pod("dev", "other", corev1.PodRunning, map[string]string{"app": "other"}),
	)

	got, err := c.ResolveLogTarget(context.Background(), domain.KindDeployments, domain.RowIdentity{Namespace: "dev", Name: "web"})
	if err != nil {
		t.Fatalf("ResolveLogTarget() error = %v", err)
	}
	if got.Pod != "web-running" {
		t.Errorf("Pod = %q, want web-running", got.Pod)
	}
}

func TestResolveLogTarget_NoPods(t *testing.T) {
	dep := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "dev"},
		Spec:       appsv1.DeploymentSpec{Selector: &metav1.LabelSelector{MatchLabels: map[string]string{"app": "web"}}},
	}
	c, _ := newFakeClient(dep)
	_, err := c.ResolveLogTarget(context.Background(), domain.KindDeployments, domain.RowIdentity{Namespace: "dev", Name: "web"})
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Type != domain.ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestResolveLogTarget_Unsupported(t *testing.T) {
	c, _ := newFakeClient()
	_, err := c.ResolveLogTarget(context.Background(), domain.KindConfigMaps, domain.RowIdentity{Namespace: "dev", Name: "cfg"})
	if !domain.IsUnsupported(err) {
		t.Fatalf("expected unsupported, got %v", err)
	}
}
