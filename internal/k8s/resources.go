package k8s

import (
	"context"
	"sort"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/kubernetes"

	"github.com/Taishi66/kdeck/internal/domain"
)

var listOpts = metav1.ListOptions{Limit: 500}

type listFunc func(ctx context.Context, cs kubernetes.Interface, ns string) ([]domain.Row, error)

// kindHandler binds a kind to its API resource and table shape.
type kindHandler struct {
	gvr       schema.GroupVersionResource
	headers   []string
	list      listFunc
	keepOrder bool // rows arrive pre-sorted
}

var (
	coreV1       = schema.GroupVersion{Version: "v1"}
	appsV1       = schema.GroupVersion{Group: "apps", Version: "v1"}
	batchV1      = schema.GroupVersion{Group: "batch", Version: "v1"}
	networkingV1 = schema.GroupVersion{Group: "networking.k8s.io", Version: "v1"}
	storageV1    = schema.GroupVersion{Group: "storage.k8s.io", Version: "v1"}
	rbacV1       = schema.GroupVersion{Group: "rbac.authorization.k8s.io", Version: "v1"}
	autoscaleV2  = schema.GroupVersion{Group: "autoscaling", Version: "v2"}
)

var handlers = map[domain.Kind]kindHandler{
	domain.KindNamespaces: {
		gvr:     coreV1.WithResource("namespaces"),
		headers: []string{"NAME", "STATUS", "AGE"},
		list:    listNamespaces,
	},
	domain.KindPods: {
		gvr:     coreV1.WithResource("pods"),
		headers: []string{"NAMESPACE", "NAME", "READY", "STATUS", "RESTARTS", "NODE", "AGE"},
		list:    listPods,
	},
	domain.KindDeployments: {
		gvr:     appsV1.WithResource("deployments"),
		headers: []string{"NAMESPACE", "NAME", "READY", "UP-TO-DATE", "AVAILABLE", "IMAGE", "AGE"},
		list:    listDeployments,
	},
	domain.KindStatefulSets: {
		gvr:     appsV1.WithResource("statefulsets"),
		headers: []string{"NAMESPACE", "NAME", "READY", "IMAGE", "AGE"},
		list:    listStatefulSets,
	},
	domain.KindDaemonSets: {
		gvr:     appsV1.WithResource("daemonsets"),
		headers: []string{"NAMESPACE", "NAME", "DESIRED", "CURRENT", "READY", "AGE"},
		list:    listDaemonSets,
	},
	domain.KindReplicaSets: {
		gvr:     appsV1.WithResource("replicasets"),
		headers: []string{"NAMESPACE", "NAME", "DESIRED", "CURRENT", "READY", "AGE"},
		list:    listReplicaSets,
	},
	domain.KindJobs: {
		gvr:     batchV1.WithResource("jobs"),
		headers: []string{"NAMESPACE", "NAME", "COMPLETIONS", "STATUS", "AGE"},
		list:    listJobs,
	},
	domain.KindCronJobs: {
		gvr:     batchV1.WithResource("cronjobs"),
		headers: []string{"NAMESPACE", "NAME", "SCHEDULE", "SUSPEND", "ACTIVE", "LAST", "AGE"},
		list:    listCronJobs,
	},
	domain.KindServices: {
		gvr:     coreV1.WithResource("services"),
		headers: []string{"NAMESPACE", "NAME", "TYPE", "CLUSTER-IP", "PORTS", "AGE"},
		list:    listServices,
	},
	domain.KindIngresses: {
		gvr:     networkingV1.WithResource("ingresses"),
		headers: []string{"NAMESPACE", "NAME", "CLASS", "HOSTS", "AGE"},
		list:    listIngresses,
	},
	domain.KindEndpoints: {
		gvr:     coreV1.WithResource("endpoints"),
		headers: []string{"NAMESPACE", "NAME", "ENDPOINTS", "AGE"},
		list:    listEndpoints,
	},
	domain.KindConfigMaps: {
		gvr:     coreV1.WithResource("configmaps"),
		headers: []string{"NAMESPACE", "NAME", "DATA", "AGE"},
		list:    listConfigMaps,
	},
	domain.KindSecrets: {
		gvr:     coreV1.WithResource("secrets"),
		headers: []string{"NAMESPACE", "NAME", "TYPE", "DATA", "AGE"},
		list:    listSecrets,
	},
	domain.KindPersistentVolumeClaims: {
		gvr:     coreV1.WithResource("persistentvolumeclaims"),
		headers: []string{"NAMESPACE", "NAME", "STATUS", "VOLUME", "CAPACITY", "AGE"},
		list:    listPVCs,
	},
	domain.KindPersistentVolumes: {
		gvr:     coreV1.WithResource("persistentvolumes"),
		headers: []string{"NAME", "CAPACITY", "STATUS", "CLAIM", "STORAGECLASS", "AGE"},
		list:    listPVs,
	},
	domain.KindStorageClasses: {
		gvr:     storageV1.WithResource("storageclasses"),
		headers: []string{"NAME", "PROVISIONER", "RECLAIM", "AGE"},
		list:    listStorageClasses,
	},
	domain.KindNodes: {
		gvr:     coreV1.WithResource("nodes"),
		headers: []string{"NAME", "STATUS", "ROLES", "VERSION", "AGE"},
		list:    listNodes,
	},
	domain.KindEvents: {
		gvr:       coreV1.WithResource("events"),
		headers:   []string{"NAMESPACE", "TYPE", "REASON", "OBJECT", "MESSAGE", "AGE"},
		list:      listEvents,
		keepOrder: true,
	},
	domain.KindServiceAccounts: {
		gvr:     coreV1.WithResource("serviceaccounts"),
		headers: []string{"NAMESPACE", "NAME", "SECRETS", "AGE"},
		list:    listServiceAccounts,
	},
	domain.KindRoles: {
		gvr:     rbacV1.WithResource("roles"),
		headers: []string{"NAMESPACE", "NAME", "RULES", "AGE"},
		list:    listRoles,
	},
	domain.KindRoleBindings: {
		gvr:     rbacV1.WithResource("rolebindings"),
		headers: []string{"NAMESPACE", "NAME", "ROLE", "SUBJECTS", "AGE"},
		list:    listRoleBindings,
	},
	domain.KindClusterRoles: {
		gvr:     rbacV1.WithResource("clusterroles"),
		headers: []string{"NAME", "RULES", "AGE"},
		list:    listClusterRoles,
	},
	domain.KindClusterRoleBindings: {
		gvr:     rbacV1.WithResource("clusterrolebindings"),
		headers: []string{"NAME", "ROLE", "SUBJECTS", "AGE"},
		list:    listClusterRoleBindings,
	},
	domain.KindNetworkPolicies: {
		gvr:     networkingV1.WithResource("networkpolicies"),
		headers: []string{"NAMESPACE", "NAME", "POD-SELECTOR", "AGE"},
		list:    listNetworkPolicies,
	},
	domain.KindHorizontalPodAutoscalers: {
		gvr:     autoscaleV2.WithResource("horizontalpodautoscalers"),
		headers: []string{"NAMESPACE", "NAME", "REFERENCE", "MIN", "MAX", "REPLICAS", "AGE"},
		list:    listHPAs,
	},
}

// gvrFor resolves the API resource of kind, or of the custom resource cr
// when kind is CustomResources.
func gvrFor(kind domain.Kind, cr *domain.CustomResourceDescriptor) (schema.GroupVersionResource, bool, error) {
	if kind == domain.KindCustomResources {
		if cr == nil {
			return schema.GroupVersionResource{}, false, &domain.APIError{
				Type:    domain.ErrNotFound,
				Message: "no custom resource selected, use :crd NAME",
			}
		}
		return schema.GroupVersionResource{Group: cr.Group, Version: cr.Version, Resource: cr.Plural}, cr.Namespaced, nil
	}
	h, ok := handlers[kind]
	if !ok {
		return schema.GroupVersionResource{}, false, domain.Unsupported(kind, "get")
	}
	return h.gvr, kind.Namespaced(), nil
}

// FetchTable lists kind within scope and renders it as a table.
func (c *Client) FetchTable(ctx context.Context, kind domain.Kind, scope domain.Scope, cr *domain.CustomResourceDescriptor) (domain.TableSnapshot, error) {
	cur := c.get()
	if kind == domain.KindCustomResources {
		return c.fetchCustomTable(ctx, cur, scope, cr)
	}
	h, ok := handlers[kind]
	if !ok {
		return domain.TableSnapshot{}, domain.Unsupported(kind, "list")
	}

	ns := scope.Namespace()
	if !kind.Namespaced() {
		ns = ""
	}
	rows, err := h.list(ctx, cur.typed, ns)
	if err != nil {
		return domain.TableSnapshot{}, classifyError(err, cur.serverURL)
	}
	if !h.keepOrder {
		sortRows(rows)
	}
	return domain.TableSnapshot{Headers: h.headers, Rows: rows, RefreshedAt: time.Now()}, nil
}

func sortRows(rows []domain.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].ID, rows[j].ID
		if a.Namespace != b.Namespace {
			return a.Namespace < b.Namespace
		}
		return a.Name < b.Name
	})
}

func rowsFrom[T any](items []T, conv func(*T) domain.Row) []domain.Row {
	rows := make([]domain.Row, 0, len(items))
	for i := range items {
		rows = append(rows, conv(&items[i]))
	}
	return rows
}

func identity(meta metav1.ObjectMeta) domain.RowIdentity {
	return domain.RowIdentity{Namespace: meta.Namespace, Name: meta.Name}
}
