package k8s

import (
	"context"
	"fmt"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	"github.com/Taishi66/kdeck/internal/domain"
)

const restartedAtAnnotation = "kubectl.kubernetes.io/restartedAt"

// now is overridden in tests.
var now = time.Now

// Delete removes an object with background propagation.
func (c *Client) Delete(ctx context.Context, kind domain.Kind, id domain.RowIdentity, cr *domain.CustomResourceDescriptor) error {
	if !kind.Supports(domain.CapDelete) {
		return domain.Unsupported(kind, "delete")
	}
	cur := c.get()
	gvr, namespaced, err := gvrFor(kind, cr)
	if err != nil {
		return err
	}
	policy := metav1.DeletePropagationBackground
	opts := metav1.DeleteOptions{PropagationPolicy: &policy}
	if namespaced {
		err = cur.dynamic.Resource(gvr).Namespace(id.Namespace).Delete(ctx, id.Name, opts)
	} else {
		err = cur.dynamic.Resource(gvr).Delete(ctx, id.Name, opts)
	}
	return classifyError(err, cur.serverURL)
}

// Restart triggers a rolling restart by stamping the pod template, the same
// way `kubectl rollout restart` does.
func (c *Client) Restart(ctx context.Context, kind domain.Kind, id domain.RowIdentity) error {
	if !kind.Supports(domain.CapRestart) {
		return domain.Unsupported(kind, "restart")
	}
	cur := c.get()
	gvr, _, err := gvrFor(kind, nil)
	if err != nil {
		return err
	}
	patch := fmt.Sprintf(`{"spec":{"template":{"metadata":{"annotations":{%q:%q}}}}}`,
		restartedAtAnnotation, now().Format(time.RFC3339))
	_, err = cur.dynamic.Resource(gvr).Namespace(id.Namespace).Patch(ctx, id.Name, types.MergePatchType, []byte(patch), metav1.PatchOptions{})
	return classifyError(err, cur.serverURL)
}

// Scale sets the replica count through the scale subresource.
func (c *Client) Scale(ctx context.Context, kind domain.Kind, id domain.RowIdentity, replicas int32) error {
	if !kind.Supports(domain.CapScale) {
		return domain.Unsupported(kind, "scale")
	}
	if replicas < 0 {
		replicas = 0
	}
	cur := c.get()
	apps := cur.typed.AppsV1()
	ns := id.Namespace

	var err error
	switch kind {
	case domain.KindDeployments:
		scale, e := apps.Deployments(ns).GetScale(ctx, id.Name, metav1.GetOptions{})
		if e != nil {
			return classifyError(e, cur.serverURL)
		}
		scale.Spec.Replicas = replicas
		_, err = apps.Deployments(ns).UpdateScale(ctx, id.Name, scale, metav1.UpdateOptions{})
	case domain.KindStatefulSets:
		scale, e := apps.StatefulSets(ns).GetScale(ctx, id.Name, metav1.GetOptions{})
		if e != nil {
			return classifyError(e, cur.serverURL)
		}
		scale.Spec.Replicas = replicas
		_, err = apps.StatefulSets(ns).UpdateScale(ctx, id.Name, scale, metav1.UpdateOptions{})
	case domain.KindReplicaSets:
		scale, e := apps.ReplicaSets(ns).GetScale(ctx, id.Name, metav1.GetOptions{})
		if e != nil {
			return classifyError(e, cur.serverURL)
		}
		scale.Spec.Replicas = replicas
		_, err = apps.ReplicaSets(ns).UpdateScale(ctx, id.Name, scale, metav1.UpdateOptions{})
	default:
		return domain.Unsupported(kind, "scale")
	}
	return classifyError(err, cur.serverURL)
}
