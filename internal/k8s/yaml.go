package k8s

import (
	"context"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"

	"github.com/Taishi66/kdeck/internal/domain"
)

// FetchDetail returns the object's full manifest as YAML, without managed
// fields.
func (c *Client) FetchDetail(ctx context.Context, kind domain.Kind, id domain.RowIdentity, cr *domain.CustomResourceDescriptor) (string, error) {
	cur := c.get()
	gvr, namespaced, err := gvrFor(kind, cr)
	if err != nil {
		return "", err
	}

	var obj *unstructured.Unstructured
	if namespaced {
		obj, err = cur.dynamic.Resource(gvr).Namespace(id.Namespace).Get(ctx, id.Name, metav1.GetOptions{})
	} else {
		obj, err = cur.dynamic.Resource(gvr).Get(ctx, id.Name, metav1.GetOptions{})
	}
	if err != nil {
		return "", classifyError(err, cur.serverURL)
	}
	return manifestYAML(obj)
}

func manifestYAML(obj *unstructured.Unstructured) (string, error) {
	obj.SetManagedFields(nil)
	data, err := yaml.Marshal(obj.Object)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
