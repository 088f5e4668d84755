package k8s

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/Taishi66/kdeck/internal/domain"
)

func listNamespaces(ctx context.Context, cs kubernetes.Interface, _ string) ([]domain.Row, error) {
	l, err := cs.CoreV1().Namespaces().List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, namespaceRow), nil
}

func namespaceRow(ns *corev1.Namespace) domain.Row {
	return domain.Row{
		ID:      domain.RowIdentity{Name: ns.Name},
		Columns: []string{ns.Name, string(ns.Status.Phase), formatAge(ns.CreationTimestamp.Time)},
		Detail:  detail("Namespace", ns.Name, "Status", string(ns.Status.Phase), "Labels", labelsString(ns.Labels)),
	}
}

func listPods(ctx context.Context, cs kubernetes.Interface, ns string) ([]domain.Row, error) {
	l, err := cs.CoreV1().Pods(ns).List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, podRow), nil
}

func podRow(pod *corev1.Pod) domain.Row {
	ready, total := podReadyCount(*pod)
	status := podStatus(*pod)
	names := make([]string, 0, len(pod.Spec.Containers))
	for _, c := range pod.Spec.Containers {
		names = append(names, c.Name)
	}
	return domain.Row{
		ID: identity(pod.ObjectMeta),
		Columns: []string{
			pod.Namespace,
			pod.Name,
			fmt.Sprintf("%d/%d", ready, total),
			status,
			strconv.Itoa(int(podRestarts(*pod))),
			orDash(pod.Spec.NodeName),
			formatAge(pod.CreationTimestamp.Time),
		},
		Detail: detail(
			"Pod", pod.Name,
			"Namespace", pod.Namespace,
			"Status", status,
			"Node", pod.Spec.NodeName,
			"IP", pod.Status.PodIP,
			"Containers", strings.Join(names, ", "),
			"Labels", labelsString(pod.Labels),
		),
	}
}

func listServices(ctx context.Context, cs kubernetes.Interface, ns string) ([]domain.Row, error) {
	l, err := cs.CoreV1().Services(ns).List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, serviceRow), nil
}

func serviceRow(svc *corev1.Service) domain.Row {
	ports := make([]string, 0, len(svc.Spec.Ports))
	for _, p := range svc.Spec.Ports {
		ports = append(ports, fmt.Sprintf("%d/%s", p.Port, p.Protocol))
	}
	return domain.Row{
		ID: identity(svc.ObjectMeta),
		Columns: []string{
			svc.Namespace,
			svc.Name,
			string(svc.Spec.Type),
			orDash(svc.Spec.ClusterIP),
			orDash(strings.Join(ports, ",")),
			formatAge(svc.CreationTimestamp.Time),
		},
		Detail: detail(
			"Service", svc.Name,
			"Namespace", svc.Namespace,
			"Type", string(svc.Spec.Type),
			"Selector", labelsString(svc.Spec.Selector),
		),
	}
}

func listEndpoints(ctx context.Context, cs kubernetes.Interface, ns string) ([]domain.Row, error) {
	l, err := cs.CoreV1().Endpoints(ns).List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, endpointsRow), nil
}

func endpointsRow(ep *corev1.Endpoints) domain.Row {
	var addrs []string
	for _, subset := range ep.Subsets {
		for _, a := range subset.Addresses {
			for _, p := range subset.Ports {
				addrs = append(addrs, fmt.Sprintf("%s:%d", a.IP, p.Port))
			}
		}
	}
	shown := addrs
	if len(shown) > 3 {
		shown = append(shown[:3:3], fmt.Sprintf("+%d more", len(addrs)-3))
	}
	return domain.Row{
		ID:      identity(ep.ObjectMeta),
		Columns: []string{ep.Namespace, ep.Name, orDash(strings.Join(shown, ",")), formatAge(ep.CreationTimestamp.Time)},
		Detail:  detail("Endpoints", ep.Name, "Namespace", ep.Namespace, "Addresses", strings.Join(addrs, ", ")),
	}
}

func listConfigMaps(ctx context.Context, cs kubernetes.Interface, ns string) ([]domain.Row, error) {
	l, err := cs.CoreV1().ConfigMaps(ns).List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, configMapRow), nil
}

func configMapRow(cm *corev1.ConfigMap) domain.Row {
	keys := make([]string, 0, len(cm.Data))
	for k := range cm.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return domain.Row{
		ID:      identity(cm.ObjectMeta),
		Columns: []string{cm.Namespace, cm.Name, strconv.Itoa(len(cm.Data) + len(cm.BinaryData)), formatAge(cm.CreationTimestamp.Time)},
		Detail:  detail("ConfigMap", cm.Name, "Namespace", cm.Namespace, "Keys", strings.Join(keys, ", ")),
	}
}

func listSecrets(ctx context.Context, cs kubernetes.Interface, ns string) ([]domain.Row, error) {
	l, err := cs.CoreV1().Secrets(ns).List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, secretRow), nil
}

func secretRow(s *corev1.Secret) domain.Row {
	return domain.Row{
		ID:      identity(s.ObjectMeta),
		Columns: []string{s.Namespace, s.Name, string(s.Type), strconv.Itoa(len(s.Data)), formatAge(s.CreationTimestamp.Time)},
		Detail:  detail("Secret", s.Name, "Namespace", s.Namespace, "Type", string(s.Type)),
	}
}

func listPVCs(ctx context.Context, cs kubernetes.Interface, ns string) ([]domain.Row, error) {
	l, err := cs.CoreV1().PersistentVolumeClaims(ns).List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, pvcRow), nil
}

func pvcRow(pvc *corev1.PersistentVolumeClaim) domain.Row {
	var class string
	if pvc.Spec.StorageClassName != nil {
		class = *pvc.Spec.StorageClassName
	}
	return domain.Row{
		ID: identity(pvc.ObjectMeta),
		Columns: []string{
			pvc.Namespace,
			pvc.Name,
			string(pvc.Status.Phase),
			orDash(pvc.Spec.VolumeName),
			quantity(pvc.Status.Capacity, corev1.ResourceStorage),
			formatAge(pvc.CreationTimestamp.Time),
		},
		Detail: detail("PersistentVolumeClaim", pvc.Name, "Namespace", pvc.Namespace, "StorageClass", class),
	}
}

func listPVs(ctx context.Context, cs kubernetes.Interface, _ string) ([]domain.Row, error) {
	l, err := cs.CoreV1().PersistentVolumes().List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, pvRow), nil
}

func pvRow(pv *corev1.PersistentVolume) domain.Row {
	claim := none
	if ref := pv.Spec.ClaimRef; ref != nil {
		claim = ref.Namespace + "/" + ref.Name
	}
	return domain.Row{
		ID: domain.RowIdentity{Name: pv.Name},
		Columns: []string{
			pv.Name,
			quantity(pv.Spec.Capacity, corev1.ResourceStorage),
			string(pv.Status.Phase),
			claim,
			orDash(pv.Spec.StorageClassName),
			formatAge(pv.CreationTimestamp.Time),
		},
		Detail: detail("PersistentVolume", pv.Name, "Reclaim", string(pv.Spec.PersistentVolumeReclaimPolicy)),
	}
}

func listNodes(ctx context.Context, cs kubernetes.Interface, _ string) ([]domain.Row, error) {
	l, err := cs.CoreV1().Nodes().List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, nodeRow), nil
}

func nodeRow(node *corev1.Node) domain.Row {
	return domain.Row{
		ID: domain.RowIdentity{Name: node.Name},
		Columns: []string{
			node.Name,
			nodeReady(*node),
			nodeRoles(node.Labels),
			orDash(node.Status.NodeInfo.KubeletVersion),
			formatAge(node.CreationTimestamp.Time),
		},
		Detail: detail(
			"Node", node.Name,
			"OS", node.Status.NodeInfo.OSImage,
			"Runtime", node.Status.NodeInfo.ContainerRuntimeVersion,
			"CPU", quantity(node.Status.Allocatable, corev1.ResourceCPU),
			"Memory", quantity(node.Status.Allocatable, corev1.ResourceMemory),
		),
	}
}

func listEvents(ctx context.Context, cs kubernetes.Interface, ns string) ([]domain.Row, error) {
	l, err := cs.CoreV1().Events(ns).List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	// Newest first.
	sort.SliceStable(l.Items, func(i, j int) bool {
		return eventTime(l.Items[i]).After(eventTime(l.Items[j]))
	})
	return rowsFrom(l.Items, eventRow), nil
}

func eventRow(evt *corev1.Event) domain.Row {
	obj := fmt.Sprintf("%s/%s", evt.InvolvedObject.Kind, evt.InvolvedObject.Name)
	return domain.Row{
		ID: identity(evt.ObjectMeta),
		Columns: []string{
			evt.Namespace,
			evt.Type,
			evt.Reason,
			obj,
			evt.Message,
			formatAge(eventTime(*evt)),
		},
		Detail: detail(
			"Object", obj,
			"Reason", evt.Reason,
			"Count", strconv.Itoa(int(evt.Count)),
			"Message", evt.Message,
		),
	}
}

func listServiceAccounts(ctx context.Context, cs kubernetes.Interface, ns string) ([]domain.Row, error) {
	l, err := cs.CoreV1().ServiceAccounts(ns).List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, serviceAccountRow), nil
}

func serviceAccountRow(sa *corev1.ServiceAccount) domain.Row {
	return domain.Row{
		ID:      identity(sa.ObjectMeta),
		Columns: []string{sa.Namespace, sa.Name, strconv.Itoa(len(sa.Secrets)), formatAge(sa.CreationTimestamp.Time)},
		Detail:  detail("ServiceAccount", sa.Name, "Namespace", sa.Namespace),
	}
}
