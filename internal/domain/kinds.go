package domain

import "strings"

// Kind identifies one of the resource kinds the cockpit can display.
type Kind int

const (
	KindNamespaces Kind = iota
	KindPods
	KindDeployments
	KindStatefulSets
	KindDaemonSets
	KindReplicaSets
	KindJobs
	KindCronJobs
	KindServices
	KindIngresses
	KindEndpoints
	KindConfigMaps
	KindSecrets
	KindPersistentVolumeClaims
	KindPersistentVolumes
	KindStorageClasses
	KindNodes
	KindEvents
	KindServiceAccounts
	KindRoles
	KindRoleBindings
	KindClusterRoles
	KindClusterRoleBindings
	KindNetworkPolicies
	KindHorizontalPodAutoscalers
	KindCustomResources

	kindCount
)

// Capability is a bit set of operations a kind supports.
type Capability uint16

const (
	CapDelete Capability = 1 << iota
	CapRestart
	CapScale
	CapLogs
	CapExec
	CapEdit
	CapPortForward
	CapDrillDown
)

type kindInfo struct {
	title      string
	alias      string
	synonyms   []string
	namespaced bool
	caps       Capability
}

const (
	capsBasic    = CapDelete | CapEdit
	capsWorkload = CapDelete | CapEdit | CapLogs | CapDrillDown
)

var kindTable = [kindCount]kindInfo{
	KindNamespaces:               {"Namespaces", "ns", []string{"namespace", "project", "projects"}, false, capsBasic | CapDrillDown},
	KindPods:                     {"Pods", "po", []string{"pod"}, true, capsBasic | CapLogs | CapExec | CapPortForward | CapDrillDown},
	KindDeployments:              {"Deployments", "deploy", []string{"deployment", "dep"}, true, capsWorkload | CapRestart | CapScale | CapPortForward},
	KindStatefulSets:             {"StatefulSets", "sts", []string{"statefulset"}, true, capsWorkload | CapRestart | CapScale},
	KindDaemonSets:               {"DaemonSets", "ds", []string{"daemonset"}, true, capsWorkload | CapRestart},
	KindReplicaSets:              {"ReplicaSets", "rs", []string{"replicaset"}, true, capsWorkload | CapScale},
	KindJobs:                     {"Jobs", "job", nil, true, capsWorkload},
	KindCronJobs:                 {"CronJobs", "cj", []string{"cronjob"}, true, capsBasic},
	KindServices:                 {"Services", "svc", []string{"service"}, true, capsBasic | CapPortForward | CapDrillDown},
	KindIngresses:                {"Ingresses", "ing", []string{"ingress"}, true, capsBasic},
	KindEndpoints:                {"Endpoints", "ep", []string{"endpoint"}, true, capsBasic},
	KindConfigMaps:               {"ConfigMaps", "cm", []string{"configmap"}, true, capsBasic},
	KindSecrets:                  {"Secrets", "sec", []string{"secret"}, true, capsBasic},
	KindPersistentVolumeClaims:   {"PersistentVolumeClaims", "pvc", []string{"persistentvolumeclaim", "claims"}, true, capsBasic},
	KindPersistentVolumes:        {"PersistentVolumes", "pv", []string{"persistentvolume", "volumes"}, false, capsBasic},
	KindStorageClasses:           {"StorageClasses", "sc", []string{"storageclass"}, false, capsBasic},
	KindNodes:                    {"Nodes", "no", []string{"node"}, false, capsBasic},
	KindEvents:                   {"Events", "ev", []string{"event"}, true, 0},
	KindServiceAccounts:          {"ServiceAccounts", "sa", []string{"serviceaccount"}, true, capsBasic},
	KindRoles:                    {"Roles", "role", nil, true, capsBasic},
	KindRoleBindings:             {"RoleBindings", "rb", []string{"rolebinding"}, true, capsBasic},
	KindClusterRoles:             {"ClusterRoles", "cr", []string{"clusterrole"}, false, capsBasic},
	KindClusterRoleBindings:      {"ClusterRoleBindings", "crb", []string{"clusterrolebinding"}, false, capsBasic},
	KindNetworkPolicies:          {"NetworkPolicies", "netpol", []string{"networkpolicy", "np"}, true, capsBasic},
	KindHorizontalPodAutoscalers: {"HorizontalPodAutoscalers", "hpa", []string{"horizontalpodautoscaler", "autoscalers"}, true, capsBasic},
	KindCustomResources:          {"CustomResources", "custom", []string{"customresource"}, true, CapDelete},
}

// AllKinds returns every kind in enumeration order.
func AllKinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Valid reports whether k is a member of the enumeration.
func (k Kind) Valid() bool { return k >= 0 && k < kindCount }

func (k Kind) info() kindInfo {
	if !k.Valid() {
		return kindInfo{}
	}
	return kindTable[k]
}

func (k Kind) String() string { return k.info().title }

// Title is the display title shown in the tab bar.
func (k Kind) Title() string { return k.info().title }

// Alias is the short token accepted by the command line.
func (k Kind) Alias() string { return k.info().alias }

// Namespaced reports whether rows of this kind live inside a namespace.
func (k Kind) Namespaced() bool { return k.info().namespaced }

// Supports reports whether the kind has every capability in c.
func (k Kind) Supports(c Capability) bool {
	return c != 0 && k.info().caps&c == c
}

// Tokens returns every token that resolves to this kind, lowercased.
func (k Kind) Tokens() []string {
	info := k.info()
	if info.title == "" {
		return nil
	}
	out := []string{strings.ToLower(info.title), info.alias}
	return append(out, info.synonyms...)
}

// Matches reports whether a free-form token names this kind. Matching is
// case-insensitive and tolerates a trailing "s".
func (k Kind) Matches(token string) bool {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		return false
	}
	for _, candidate := range k.Tokens() {
		if t == candidate || t+"s" == candidate || t == candidate+"s" {
			return true
		}
	}
	return false
}

// ParseKind resolves a token to the first matching kind in enumeration order.
func ParseKind(token string) (Kind, bool) {
	for _, k := range AllKinds() {
		if k.Matches(token) {
			return k, true
		}
	}
	return 0, false
}

// IsWorkload reports whether pods are owned through a label selector by this kind.
func (k Kind) IsWorkload() bool {
	switch k {
	case KindDeployments, KindStatefulSets, KindDaemonSets, KindReplicaSets, KindJobs:
		return true
	}
	return false
}
