package k8s

import (
	"context"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/watch"

	"github.com/Taishi66/kdeck/internal/domain"
)

// Watch streams change notifications for kind across all namespaces. The
// returned channel closes when the server ends the stream or ctx is done.
func (c *Client) Watch(ctx context.Context, kind domain.Kind) (<-chan domain.WatchEvent, error) {
	h, ok := handlers[kind]
	if !ok {
		return nil, domain.Unsupported(kind, "watch")
	}
	cur := c.get()
	watcher, err := cur.dynamic.Resource(h.gvr).Watch(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, classifyError(err, cur.serverURL)
	}

	ch := make(chan domain.WatchEvent)
	go func() {
		defer close(ch)
		defer watcher.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.ResultChan():
				if !ok {
					return
				}
				evt := domain.WatchEvent{Type: eventType(event.Type), Kind: kind}
				if u, ok := event.Object.(*unstructured.Unstructured); ok {
					evt.ID = domain.RowIdentity{Namespace: u.GetNamespace(), Name: u.GetName()}
				}
				select {
				case ch <- evt:
				case <-ctx.Done():
					return
				}
				if evt.Type == domain.EventError {
					return
				}
			}
		}
	}()
	return ch, nil
}

func eventType(t watch.EventType) domain.WatchEventType {
	switch t {
	case watch.Added:
		return domain.EventAdded
	case watch.Modified:
		return domain.EventModified
	case watch.Deleted:
		return domain.EventDeleted
	default:
		return domain.EventError
	}
}
