package k8s

import (
	"context"
	"fmt"
	"strconv"

	appsv1 "k8s.io/api/apps/v1"
	autoscalingv2 "k8s.io/api/autoscaling/v2"
	batchv1 "k8s.io/api/batch/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/Taishi66/kdeck/internal/domain"
)

func listDeployments(ctx context.Context, cs kubernetes.Interface, ns string) ([]domain.Row, error) {
	l, err := cs.AppsV1().Deployments(ns).List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, deploymentRow), nil
}

func deploymentRow(dep *appsv1.Deployment) domain.Row {
	want := replicas(dep.Spec.Replicas)
	image := templateImage(dep.Spec.Template)
	return domain.Row{
		ID: identity(dep.ObjectMeta),
		Columns: []string{
			dep.Namespace,
			dep.Name,
			fmt.Sprintf("%d/%d", dep.Status.ReadyReplicas, want),
			strconv.Itoa(int(dep.Status.UpdatedReplicas)),
			strconv.Itoa(int(dep.Status.AvailableReplicas)),
			image,
			formatAge(dep.CreationTimestamp.Time),
		},
		Detail: detail(
			"Deployment", dep.Name,
			"Namespace", dep.Namespace,
			"Replicas", strconv.Itoa(int(want)),
			"Strategy", string(dep.Spec.Strategy.Type),
			"Selector", selectorString(dep.Spec.Selector),
			"Image", image,
		),
	}
}

func listStatefulSets(ctx context.Context, cs kubernetes.Interface, ns string) ([]domain.Row, error) {
	l, err := cs.AppsV1().StatefulSets(ns).List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, statefulSetRow), nil
}

func statefulSetRow(sts *appsv1.StatefulSet) domain.Row {
	want := replicas(sts.Spec.Replicas)
	image := templateImage(sts.Spec.Template)
	return domain.Row{
		ID: identity(sts.ObjectMeta),
		Columns: []string{
			sts.Namespace,
			sts.Name,
			fmt.Sprintf("%d/%d", sts.Status.ReadyReplicas, want),
			image,
			formatAge(sts.CreationTimestamp.Time),
		},
		Detail: detail(
			"StatefulSet", sts.Name,
			"Namespace", sts.Namespace,
			"Service", sts.Spec.ServiceName,
			"Selector", selectorString(sts.Spec.Selector),
			"Image", image,
		),
	}
}

func listDaemonSets(ctx context.Context, cs kubernetes.Interface, ns string) ([]domain.Row, error) {
	l, err := cs.AppsV1().DaemonSets(ns).List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, daemonSetRow), nil
}

func daemonSetRow(ds *appsv1.DaemonSet) domain.Row {
	return domain.Row{
		ID: identity(ds.ObjectMeta),
		Columns: []string{
			ds.Namespace,
			ds.Name,
			strconv.Itoa(int(ds.Status.DesiredNumberScheduled)),
			strconv.Itoa(int(ds.Status.CurrentNumberScheduled)),
			strconv.Itoa(int(ds.Status.NumberReady)),
			formatAge(ds.CreationTimestamp.Time),
		},
		Detail: detail(
			"DaemonSet", ds.Name,
			"Namespace", ds.Namespace,
			"Selector", selectorString(ds.Spec.Selector),
			"Image", templateImage(ds.Spec.Template),
		),
	}
}

func listReplicaSets(ctx context.Context, cs kubernetes.Interface, ns string) ([]domain.Row, error) {
	l, err := cs.AppsV1().ReplicaSets(ns).List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, replicaSetRow), nil
}

func replicaSetRow(rs *appsv1.ReplicaSet) domain.Row {
	owner := ""
	if len(rs.OwnerReferences) > 0 {
		owner = rs.OwnerReferences[0].Kind + "/" + rs.OwnerReferences[0].Name
	}
	return domain.Row{
		ID: identity(rs.ObjectMeta),
		Columns: []string{
			rs.Namespace,
			rs.Name,
			strconv.Itoa(int(replicas(rs.Spec.Replicas))),
			strconv.Itoa(int(rs.Status.Replicas)),
			strconv.Itoa(int(rs.Status.ReadyReplicas)),
			formatAge(rs.CreationTimestamp.Time),
		},
		Detail: detail(
			"ReplicaSet", rs.Name,
			"Namespace", rs.Namespace,
			"Owner", owner,
			"Selector", selectorString(rs.Spec.Selector),
		),
	}
}

func listJobs(ctx context.Context, cs kubernetes.Interface, ns string) ([]domain.Row, error) {
	l, err := cs.BatchV1().Jobs(ns).List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, jobRow), nil
}

// jobStatus resolves a job's state: Complete or Failed condition, then
// Running when pods are active, then Pending.
func jobStatus(job *batchv1.Job) string {
	for _, cond := range job.Status.Conditions {
		if cond.Status != "True" {
			continue
		}
		switch cond.Type {
		case batchv1.JobComplete:
			return "Complete"
		case batchv1.JobFailed:
			return "Failed"
		}
	}
	if job.Status.Active > 0 {
		return "Running"
	}
	return "Pending"
}

func jobRow(job *batchv1.Job) domain.Row {
	completions := replicas(job.Spec.Completions)
	return domain.Row{
		ID: identity(job.ObjectMeta),
		Columns: []string{
			job.Namespace,
			job.Name,
			fmt.Sprintf("%d/%d", job.Status.Succeeded, completions),
			jobStatus(job),
			formatAge(job.CreationTimestamp.Time),
		},
		Detail: detail(
			"Job", job.Name,
			"Namespace", job.Namespace,
			"Active", strconv.Itoa(int(job.Status.Active)),
			"Failed", strconv.Itoa(int(job.Status.Failed)),
			"Image", templateImage(job.Spec.Template),
		),
	}
}

func listCronJobs(ctx context.Context, cs kubernetes.Interface, ns string) ([]domain.Row, error) {
	l, err := cs.BatchV1().CronJobs(ns).List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, cronJobRow), nil
}

func cronJobRow(cj *batchv1.CronJob) domain.Row {
	suspend := "False"
	if cj.Spec.Suspend != nil && *cj.Spec.Suspend {
		suspend = "True"
	}
	last := none
	if cj.Status.LastScheduleTime != nil {
		last = formatAge(cj.Status.LastScheduleTime.Time)
	}
	return domain.Row{
		ID: identity(cj.ObjectMeta),
		Columns: []string{
			cj.Namespace,
			cj.Name,
			cj.Spec.Schedule,
			suspend,
			strconv.Itoa(len(cj.Status.Active)),
			last,
			formatAge(cj.CreationTimestamp.Time),
		},
		Detail: detail("CronJob", cj.Name, "Namespace", cj.Namespace, "Schedule", cj.Spec.Schedule),
	}
}

func listHPAs(ctx context.Context, cs kubernetes.Interface, ns string) ([]domain.Row, error) {
	l, err := cs.AutoscalingV2().HorizontalPodAutoscalers(ns).List(ctx, listOpts)
	if err != nil {
		return nil, err
	}
	return rowsFrom(l.Items, hpaRow), nil
}

func hpaRow(hpa *autoscalingv2.HorizontalPodAutoscaler) domain.Row {
	ref := hpa.Spec.ScaleTargetRef.Kind + "/" + hpa.Spec.ScaleTargetRef.Name
	return domain.Row{
		ID: identity(hpa.ObjectMeta),
		Columns: []string{
			hpa.Namespace,
			hpa.Name,
			ref,
			strconv.Itoa(int(replicas(hpa.Spec.MinReplicas))),
			strconv.Itoa(int(hpa.Spec.MaxReplicas)),
			strconv.Itoa(int(hpa.Status.CurrentReplicas)),
			formatAge(hpa.CreationTimestamp.Time),
		},
		Detail: detail("HorizontalPodAutoscaler", hpa.Name, "Namespace", hpa.Namespace, "Target", ref),
	}
}
