package k8s

import (
	"context"
	"sort"
	"time"

	apiextv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/Taishi66/kdeck/internal/domain"
)

// DiscoverCustomResourceKinds lists installed CRDs, one descriptor per CRD
// at its storage version.
func (c *Client) DiscoverCustomResourceKinds(ctx context.Context) ([]domain.CustomResourceDescriptor, error) {
	cur := c.get()
	l, err := cur.crd.ApiextensionsV1().CustomResourceDefinitions().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, classifyError(err, cur.serverURL)
	}

	out := make([]domain.CustomResourceDescriptor, 0, len(l.Items))
	for i := range l.Items {
		if d, ok := descriptorFor(&l.Items[i]); ok {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

// descriptorFor resolves the version to address a CRD by: the storage
// version, then the first served version. CRDs serving nothing are skipped.
func descriptorFor(crd *apiextv1.CustomResourceDefinition) (domain.CustomResourceDescriptor, bool) {
	version := ""
	for _, v := range crd.Spec.Versions {
		if v.Served && v.Storage {
			version = v.Name
			break
		}
	}
	if version == "" {
		for _, v := range crd.Spec.Versions {
			if v.Served {
				version = v.Name
				break
			}
		}
	}
	if version == "" {
		return domain.CustomResourceDescriptor{}, false
	}
	return domain.CustomResourceDescriptor{
		Group:      crd.Spec.Group,
		Version:    version,
		Kind:       crd.Spec.Names.Kind,
		Plural:     crd.Spec.Names.Plural,
		Namespaced: crd.Spec.Scope == apiextv1.NamespaceScoped,
	}, true
}

func (c *Client) fetchCustomTable(ctx context.Context, cur *clients, scope domain.Scope, cr *domain.CustomResourceDescriptor) (domain.TableSnapshot, error) {
	gvr, namespaced, err := gvrFor(domain.KindCustomResources, cr)
	if err != nil {
		return domain.TableSnapshot{}, err
	}

	var l *unstructured.UnstructuredList
	if namespaced {
		l, err = cur.dynamic.Resource(gvr).Namespace(scope.Namespace()).List(ctx, listOpts)
	} else {
		l, err = cur.dynamic.Resource(gvr).List(ctx, listOpts)
	}
	if err != nil {
		return domain.TableSnapshot{}, classifyError(err, cur.serverURL)
	}

	headers := []string{"NAME", "AGE"}
	if namespaced {
		headers = []string{"NAMESPACE", "NAME", "AGE"}
	}
	rows := rowsFrom(l.Items, func(u *unstructured.Unstructured) domain.Row {
		age := formatAge(u.GetCreationTimestamp().Time)
		cols := []string{u.GetName(), age}
		if namespaced {
			cols = []string{u.GetNamespace(), u.GetName(), age}
		}
		return domain.Row{
			ID:      domain.RowIdentity{Namespace: u.GetNamespace(), Name: u.GetName()},
			Columns: cols,
			Detail:  detail(cr.Kind, u.GetName(), "Namespace", u.GetNamespace(), "API", u.GetAPIVersion(), "Labels", labelsString(u.GetLabels())),
		}
	})
	sortRows(rows)
	return domain.TableSnapshot{Headers: headers, Rows: rows, RefreshedAt: time.Now()}, nil
}
