package k8s

import (
	"context"
	"testing"
	"time"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/watch"
	k8sTesting "k8s.io/client-go/testing"

	"github.com/Taishi66/kdeck/internal/domain"
)

func object(ns, name string) *unstructured.Unstructured {
	u := &unstructured.Unstructured{}
	u.SetAPIVersion("apps/v1")
	u.SetKind("Deployment")
	u.SetNamespace(ns)
	u.SetName(name)
	return u
}

func startWatch(t *testing.T, kind domain.Kind, resource string) (<-chan domain.WatchEvent, *watch.FakeWatcher, context.CancelFunc) {
	t.Helper()
	c, fs := newFakeClient()
	fakeWatcher := watch.NewFake()
	fs.dynamic.PrependWatchReactor(resource, k8sTesting.DefaultWatchReactor(fakeWatcher, nil))

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := c.Watch(ctx, kind)
	if err != nil {
		cancel()
		t.Fatalf("Watch() error = %v", err)
	}
	return ch, fakeWatcher, cancel
}

func receive(t *testing.T, ch <-chan domain.WatchEvent) domain.WatchEvent {
	t.Helper()
	select {
	case evt, ok := <-ch:
		if !ok {
			t.Fatal("channel closed unexpectedly")
		}
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watch event")
	}
	return domain.WatchEvent{}
}

func TestWatch_MapsEventTypes(t *testing.T) {
	ch, fw, cancel := startWatch(t, domain.KindDeployments, "deployments")
	defer cancel()

	go fw.Add(object("dev", "web"))
	evt := receive(t, ch)
	if evt.Type != domain.EventAdded || evt.Kind != domain.KindDeployments {
		t.Errorf("event = %+v, want ADDED Deployments", evt)
	}
	if evt.ID != (domain.RowIdentity{Namespace: "dev", Name: "web"}) {
		t.Errorf("ID = %v", evt.ID)
	}

	go fw.Modify(object("dev", "web"))
	if evt := receive(t, ch); evt.Type != domain.EventModified {
		t.Errorf("Type = %q, want MODIFIED", evt.Type)
	}

	go fw.Delete(object("dev", "web"))
	if evt := receive(t, ch); evt.Type != domain.EventDeleted {
		t.Errorf("Type = %q, want DELETED", evt.Type)
	}
}

func TestWatch_ErrorEndsStream(t *testing.T) {
	ch, fw, cancel := startWatch(t, domain.KindPods, "pods")
	defer cancel()

	go fw.Error(object("", "status"))
	if evt := receive(t, ch); evt.Type != domain.EventError {
		t.Errorf("Type = %q, want ERROR", evt.Type)
	}
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to close after error event")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after error event")
	}
}

func TestWatch_ClosesWhenServerStops(t *testing.T) {
	ch, fw, cancel := startWatch(t, domain.KindPods, "pods")
	defer cancel()

	fw.Stop()
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after server stop")
	}
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	ch, _, cancel := startWatch(t, domain.KindNamespaces, "namespaces")
	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestWatch_CustomResourcesUnsupported(t *testing.T) {
	c, _ := newFakeClient()
	_, err := c.Watch(context.Background(), domain.KindCustomResources)
	if !domain.IsUnsupported(err) {
		t.Fatalf("expected unsupported, got %v", err)
	}
}
