package k8s

import (
	"context"
	"strconv"
	"strings"

	networkingv1 "k8s.io/api/networking/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	storagev1 "k8s.io/api/storage/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/Taishi66/kdeck/internal/domain"
)

func listIngresses(ctx context.Context, cs kubernetes.Interface, ns string) ([]domain.Row, error) {
	l, err := cs.NetworkingV1().Ingresses(ns).List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, ingressRow), nil
}

// ingressClass resolves the class from spec, then the legacy annotation.
func ingressClass(ing *networkingv1.Ingress) string {
	if ing.Spec.IngressClassName != nil && *ing.Spec.IngressClassName != "" {
		return *ing.Spec.IngressClassName
	}
	return orDash(ing.Annotations["kubernetes.io/ingress.class"])
}

func ingressRow(ing *networkingv1.Ingress) domain.Row {
	hosts := make([]string, 0, len(ing.Spec.Rules))
	for _, r := range ing.Spec.Rules {
		hosts = append(hosts, firstNonEmpty(r.Host, "*"))
	}
	return domain.Row{
		ID: identity(ing.ObjectMeta),
		Columns: []string{
			ing.Namespace,
			ing.Name,
			ingressClass(ing),
			orDash(strings.Join(hosts, ",")),
			formatAge(ing.CreationTimestamp.Time),
		},
		Detail: detail("Ingress", ing.Name, "Namespace", ing.Namespace, "Hosts", strings.Join(hosts, ", ")),
	}
}

func listStorageClasses(ctx context.Context, cs kubernetes.Interface, _ string) ([]domain.Row, error) {
	l, err := cs.StorageV1().StorageClasses().List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, storageClassRow), nil
}

func storageClassRow(sc *storagev1.StorageClass) domain.Row {
	reclaim := "Delete"
	if sc.ReclaimPolicy != nil {
		reclaim = string(*sc.ReclaimPolicy)
	}
	return domain.Row{
		ID:      domain.RowIdentity{Name: sc.Name},
		Columns: []string{sc.Name, sc.Provisioner, reclaim, formatAge(sc.CreationTimestamp.Time)},
		Detail:  detail("StorageClass", sc.Name, "Provisioner", sc.Provisioner),
	}
}

func listRoles(ctx context.Context, cs kubernetes.Interface, ns string) ([]domain.Row, error) {
	l, err := cs.RbacV1().Roles(ns).List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, roleRow), nil
}

func roleRow(r *rbacv1.Role) domain.Row {
	return domain.Row{
		ID:      identity(r.ObjectMeta),
		Columns: []string{r.Namespace, r.Name, strconv.Itoa(len(r.Rules)), formatAge(r.CreationTimestamp.Time)},
		Detail:  detail("Role", r.Name, "Namespace", r.Namespace),
	}
}

func listClusterRoles(ctx context.Context, cs kubernetes.Interface, _ string) ([]domain.Row, error) {
	l, err := cs.RbacV1().ClusterRoles().List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, clusterRoleRow), nil
}

func clusterRoleRow(r *rbacv1.ClusterRole) domain.Row {
	return domain.Row{
		ID:      domain.RowIdentity{Name: r.Name},
		Columns: []string{r.Name, strconv.Itoa(len(r.Rules)), formatAge(r.CreationTimestamp.Time)},
		Detail:  detail("ClusterRole", r.Name),
	}
}

func subjectsString(subjects []rbacv1.Subject) string {
	parts := make([]string, 0, len(subjects))
	for _, s := range subjects {
		if s.Namespace != "" {
			parts = append(parts, s.Kind+":"+s.Namespace+"/"+s.Name)
		} else {
			parts = append(parts, s.Kind+":"+s.Name)
		}
	}
	return orDash(strings.Join(parts, ","))
}

func listRoleBindings(ctx context.Context, cs kubernetes.Interface, ns string) ([]domain.Row, error) {
	l, err := cs.RbacV1().RoleBindings(ns).List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, roleBindingRow), nil
}

func roleBindingRow(rb *rbacv1.RoleBinding) domain.Row {
	role := rb.RoleRef.Kind + "/" + rb.RoleRef.Name
	return domain.Row{
		ID:      identity(rb.ObjectMeta),
		Columns: []string{rb.Namespace, rb.Name, role, subjectsString(rb.Subjects), formatAge(rb.CreationTimestamp.Time)},
		Detail:  detail("RoleBinding", rb.Name, "Namespace", rb.Namespace, "Role", role),
	}
}

func listClusterRoleBindings(ctx context.Context, cs kubernetes.Interface, _ string) ([]domain.Row, error) {
	l, err := cs.RbacV1().ClusterRoleBindings().List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, clusterRoleBindingRow), nil
}

func clusterRoleBindingRow(rb *rbacv1.ClusterRoleBinding) domain.Row {
	role := rb.RoleRef.Kind + "/" + rb.RoleRef.Name
	return domain.Row{
		ID:      domain.RowIdentity{Name: rb.Name},
		Columns: []string{rb.Name, role, subjectsString(rb.Subjects), formatAge(rb.CreationTimestamp.Time)},
		Detail:  detail("ClusterRoleBinding", rb.Name, "Role", role),
	}
}

func listNetworkPolicies(ctx context.Context, cs kubernetes.Interface, ns string) ([]domain.Row, error) {
	l, err := cs.NetworkingV1().NetworkPolicies(ns).List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, networkPolicyRow), nil
}

func networkPolicyRow(np *networkingv1.NetworkPolicy) domain.Row {
	sel := selectorString(&np.Spec.PodSelector)
	types := make([]string, 0, len(np.Spec.PolicyTypes))
	for _, t := range np.Spec.PolicyTypes {
		types = append(types, string(t))
	}
	return domain.Row{
		ID:      identity(np.ObjectMeta),
		Columns: []string{np.Namespace, np.Name, sel, formatAge(np.CreationTimestamp.Time)},
		Detail:  detail("NetworkPolicy", np.Name, "Namespace", np.Namespace, "PolicyTypes", strings.Join(types, ", ")),
	}
}
