package k8s

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	fakeapiext "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset/fake"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	fakedynamic "k8s.io/client-go/dynamic/fake"
	fakeK8s "k8s.io/client-go/kubernetes/fake"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	k8sTesting "k8s.io/client-go/testing"
	fakemetrics "k8s.io/metrics/pkg/client/clientset/versioned/fake"

	"github.com/Taishi66/kdeck/internal/domain"
)

type fakeSet struct {
	typed   *fakeK8s.Clientset
	dynamic *fakedynamic.FakeDynamicClient
	crd     *fakeapiext.Clientset
	metrics *fakemetrics.Clientset
}

// newFakeClient seeds the typed and dynamic fakes with the same objects.
func newFakeClient(objects ...runtime.Object) (*Client, fakeSet) {
	scheme := runtime.NewScheme()
	_ = clientgoscheme.AddToScheme(scheme)

	dynObjects := make([]runtime.Object, 0, len(objects))
	for _, o := range objects {
		dynObjects = append(dynObjects, o.DeepCopyObject())
	}

	fs := fakeSet{
		typed:   fakeK8s.NewSimpleClientset(objects...),
		dynamic: fakedynamic.NewSimpleDynamicClient(scheme, dynObjects...),
		crd:     fakeapiext.NewSimpleClientset(),
		metrics: fakemetrics.NewSimpleClientset(),
	}
	c := newClientFrom(&clients{
		typed:     fs.typed,
		dynamic:   fs.dynamic,
		crd:       fs.crd,
		metrics:   fs.metrics,
		context:   "test-ctx",
		serverURL: "https://fake:6443",
	})
	return c, fs
}

func pod(ns, name string, phase corev1.PodPhase, labels map[string]string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: ns, Labels: labels},
		Spec:       corev1.PodSpec{Containers: []corev1.Container{{Name: "main", Image: "nginx:1"}}},
		Status:     corev1.PodStatus{Phase: phase},
	}
}

func TestEveryBuiltinKindHasHandler(t *testing.T) {
	for _, k := range domain.AllKinds() {
		if k == domain.KindCustomResources {
			continue
		}
		h, ok := handlers[k]
		if !ok {
			t.Errorf("no handler for %v", k)
			continue
		}
		if len(h.headers) == 0 || h.list == nil || h.gvr.Resource == "" {
			t.Errorf("incomplete handler for %v", k)
		}
		if k.Namespaced() && h.headers[0] != "NAMESPACE" {
			t.Errorf("%v: first header = %q, want NAMESPACE", k, h.headers[0])
		}
	}
}

func TestFetchTable_EveryKindOnEmptyCluster(t *testing.T) {
	c, _ := newFakeClient()
	for _, k := range domain.AllKinds() {
		if k == domain.KindCustomResources {
			continue
		}
		table, err := c.FetchTable(context.Background(), k, domain.AllNamespaces(), nil)
		if err != nil {
			t.Errorf("FetchTable(%v) error = %v", k, err)
			continue
		}
		if len(table.Rows) != 0 || table.RefreshedAt.IsZero() {
			t.Errorf("FetchTable(%v) = %d rows, refreshed %v", k, len(table.Rows), table.RefreshedAt)
		}
	}
}

func TestFetchTable_PodsScopedAndSorted(t *testing.T) {
	c, _ := newFakeClient(
		pod("dev", "web-b", corev1.PodRunning, nil),
		pod("dev", "web-a", corev1.PodRunning, nil),
		pod("prod", "api", corev1.PodRunning, nil),
	)

	table, err := c.FetchTable(context.Background(), domain.KindPods, domain.Named("dev"), nil)
	if err != nil {
		t.Fatalf("FetchTable() error = %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
	if table.Rows[0].ID.Name != "web-a" || table.Rows[1].ID.Name != "web-b" {
		t.Errorf("rows not sorted: %v, %v", table.Rows[0].ID, table.Rows[1].ID)
	}
	if got := len(table.Rows[0].Columns); got != len(table.Headers) {
		t.Errorf("columns = %d, headers = %d", got, len(table.Headers))
	}

	all, err := c.FetchTable(context.Background(), domain.KindPods, domain.AllNamespaces(), nil)
	if err != nil {
		t.Fatalf("FetchTable(all) error = %v", err)
	}
	if len(all.Rows) != 3 {
		t.Errorf("all namespaces rows = %d, want 3", len(all.Rows))
	}
}

func TestFetchTable_ClusterScopedIgnoresNamespace(t *testing.T) {
	c, _ := newFakeClient(
		&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "node-1"}},
		&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "node-2"}},
	)
	table, err := c.FetchTable(context.Background(), domain.KindNodes, domain.Named("dev"), nil)
	if err != nil {
		t.Fatalf("FetchTable() error = %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
	if table.Rows[0].ID.Namespace != "" {
		t.Errorf("node identity should be cluster scoped, got %v", table.Rows[0].ID)
	}
}

func TestFetchTable_EventsNewestFirst(t *testing.T) {
	old := metav1.NewTime(time.Now().Add(-time.Hour))
	recent := metav1.NewTime(time.Now().Add(-time.Minute))
	c, _ := newFakeClient(
		&corev1.Event{ObjectMeta: metav1.ObjectMeta{Name: "a-old", Namespace: "dev"}, LastTimestamp: old, Reason: "Pulled"},
		&corev1.Event{ObjectMeta: metav1.ObjectMeta{Name: "b-new", Namespace: "dev"}, LastTimestamp: recent, Reason: "Killing"},
	)
	table, err := c.FetchTable(context.Background(), domain.KindEvents, domain.Named("dev"), nil)
	if err != nil {
		t.Fatalf("FetchTable() error = %v", err)
	}
	if len(table.Rows) != 2 || table.Rows[0].ID.Name != "b-new" {
		t.Errorf("events should be newest first, got %+v", table.Rows)
	}
}

func TestFetchTable_ErrorIsClassified(t *testing.T) {
	c, fs := newFakeClient()
	fs.typed.PrependReactor("list", "pods", func(k8sTesting.Action) (bool, runtime.Object, error) {
		return true, nil, &k8serrors.StatusError{ErrStatus: metav1.Status{Code: http.StatusForbidden, Message: "pods is forbidden"}}
	})

	_, err := c.FetchTable(context.Background(), domain.KindPods, domain.AllNamespaces(), nil)
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Type != domain.ErrForbidden {
		t.Fatalf("expected forbidden APIError, got %v", err)
	}
}

func TestFetchTable_CustomResourcesNeedDescriptor(t *testing.T) {
	c, _ := newFakeClient()
	_, err := c.FetchTable(context.Background(), domain.KindCustomResources, domain.AllNamespaces(), nil)
	if err == nil {
		t.Fatal("expected error without a descriptor")
	}
}

func TestDeploymentRow(t *testing.T) {
	dep := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "dev"},
		Spec: appsv1.DeploymentSpec{
			Template: corev1.PodTemplateSpec{Spec: corev1.PodSpec{Containers: []corev1.Container{{Name: "c", Image: "web:2"}}}},
		},
		Status: appsv1.DeploymentStatus{ReadyReplicas: 1, AvailableReplicas: 1},
	}
	row := deploymentRow(dep)
	// Replicas unset defaults to 1.
	if row.Columns[2] != "1/1" {
		t.Errorf("READY = %q, want 1/1", row.Columns[2])
	}
	if row.Columns[5] != "web:2" {
		t.Errorf("IMAGE = %q, want web:2", row.Columns[5])
	}
	if row.ID != (domain.RowIdentity{Namespace: "dev", Name: "web"}) {
		t.Errorf("ID = %v", row.ID)
	}
}

func TestJobStatus(t *testing.T) {
	tests := []struct {
		name string
		job  batchv1.Job
		want string
	}{
		{"complete", batchv1.Job{Status: batchv1.JobStatus{Conditions: []batchv1.JobCondition{{Type: batchv1.JobComplete, Status: "True"}}}}, "Complete"},
		{"failed", batchv1.Job{Status: batchv1.JobStatus{Conditions: []batchv1.JobCondition{{Type: batchv1.JobFailed, Status: "True"}}}}, "Failed"},
		{"running", batchv1.Job{Status: batchv1.JobStatus{Active: 2}}, "Running"},
		{"pending", batchv1.Job{}, "Pending"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := jobStatus(&tt.job); got != tt.want {
				t.Errorf("jobStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNodeRoles(t *testing.T) {
	tests := []struct {
		labels map[string]string
		want   string
	}{
		{map[string]string{"node-role.kubernetes.io/worker": "", "node-role.kubernetes.io/infra": ""}, "infra,worker"},
		{map[string]string{"kubernetes.io/role": "master"}, "master"},
		{nil, "<none>"},
	}
	for _, tt := range tests {
		if got := nodeRoles(tt.labels); got != tt.want {
			t.Errorf("nodeRoles(%v) = %q, want %q", tt.labels, got, tt.want)
		}
	}
}

func TestDetailSkipsEmptyValues(t *testing.T) {
	got := detail("Pod", "web", "Node", "", "IP", "10.0.0.1")
	want := "Pod: web\nIP: 10.0.0.1"
	if got != want {
		t.Errorf("detail() = %q, want %q", got, want)
	}
}
