package k8s

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	apiextclient "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	metricsclient "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/Taishi66/kdeck/internal/domain"
)

// clients is one consistent set of API clients built from a single
// kubeconfig selection. It is replaced wholesale on identity switches.
type clients struct {
	typed     kubernetes.Interface
	dynamic   dynamic.Interface
	crd       apiextclient.Interface
	metrics   metricsclient.Interface
	context   string
	serverURL string
}

// buildClients creates every clientset from a rest config. Tests override it.
var buildClients = func(cfg *rest.Config) (*clients, error) {
	typed, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, err
	}
	dyn, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, err
	}
	crd, err := apiextclient.NewForConfig(cfg)
	if err != nil {
		return nil, err
	}
	metrics, err := metricsclient.NewForConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &clients{typed: typed, dynamic: dyn, crd: crd, metrics: metrics, serverURL: cfg.Host}, nil
}

// Client is the client-go backed implementation of domain.DataSource.
type Client struct {
	mu        sync.RWMutex
	cur       *clients
	rules     *clientcmd.ClientConfigLoadingRules
	overrides *clientcmd.ConfigOverrides
}

// Compile-time check that Client implements domain.DataSource.
var _ domain.DataSource = (*Client)(nil)

// NewClient creates a client from the default kubeconfig loading rules
// ($KUBECONFIG, then ~/.kube/config). A non-empty context overrides the
// kubeconfig's current context.
func NewClient(contextName string) (*Client, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if len(rules.GetLoadingPrecedence()) == 1 {
		if _, err := os.Stat(rules.GetLoadingPrecedence()[0]); os.IsNotExist(err) {
			return nil, &domain.APIError{
				Type:    domain.ErrNoKubeconfig,
				Message: fmt.Sprintf("no kubeconfig found at %s", rules.GetLoadingPrecedence()[0]),
				Err:     err,
			}
		}
	}
	c := &Client{
		rules:     rules,
		overrides: &clientcmd.ConfigOverrides{CurrentContext: contextName},
	}
	if err := c.Reconnect(); err != nil {
		return nil, err
	}
	return c, nil
}

// newClientFrom wraps pre-built clients. Used by tests with fake clientsets.
func newClientFrom(cur *clients) *Client {
	return &Client{cur: cur, overrides: &clientcmd.ConfigOverrides{}}
}

// Reconnect reloads the kubeconfig from disk with the current overrides and
// recreates every clientset.
func (c *Client) Reconnect() error {
	c.mu.RLock()
	rules, overrides := c.rules, *c.overrides
	c.mu.RUnlock()
	if rules == nil {
		return &domain.APIError{Type: domain.ErrNoKubeconfig, Message: "client has no kubeconfig"}
	}

	kubeConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &overrides)
	rawConfig, err := kubeConfig.RawConfig()
	if err != nil {
		return &domain.APIError{
			Type:    domain.ErrBadKubeconfig,
			Message: fmt.Sprintf("invalid kubeconfig: %v", err),
			Err:     err,
		}
	}

	contextName := rawConfig.CurrentContext
	if overrides.CurrentContext != "" {
		contextName = overrides.CurrentContext
	}
	if contextName == "" {
		return &domain.APIError{
			Type:    domain.ErrNoContext,
			Message: "no current context in kubeconfig; use :ctx NAME",
		}
	}

	restConfig, err := kubeConfig.ClientConfig()
	if err != nil {
		return &domain.APIError{
			Type:    domain.ErrBadKubeconfig,
			Message: fmt.Sprintf("cannot build client config: %v", err),
			Err:     err,
		}
	}

	// Optimize for snappy TUI
	restConfig.QPS = 50
	restConfig.Burst = 100
	restConfig.Timeout = 10 * time.Second

	next, err := buildClients(restConfig)
	if err != nil {
		return &domain.APIError{
			Type:    domain.ErrUnknown,
			Message: fmt.Sprintf("cannot create clients: %v", err),
			Err:     err,
		}
	}
	next.context = contextName

	c.mu.Lock()
	c.cur = next
	c.mu.Unlock()
	return nil
}

// get returns the current client set.
func (c *Client) get() *clients {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cur
}

// ContextName returns the active kubeconfig context.
func (c *Client) ContextName() string {
	if cur := c.get(); cur != nil {
		return cur.context
	}
	return ""
}

// ServerURL returns the API server of the active context.
func (c *Client) ServerURL() string {
	if cur := c.get(); cur != nil {
		return cur.serverURL
	}
	return ""
}

// TestConnection makes a lightweight API call to verify connectivity.
func (c *Client) TestConnection(ctx context.Context) error {
	cur := c.get()
	_, err := cur.typed.Discovery().ServerVersion()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return classifyError(err, cur.serverURL)
}

// classifyError converts a raw K8s error into a domain.APIError.
// Context cancellation and deadlines pass through unchanged so callers can
// tell a timeout from a failure.
func classifyError(err error, serverURL string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return err
	}

	var statusErr *k8serrors.StatusError
	if errors.As(err, &statusErr) {
		code := statusErr.Status().Code
		switch {
		case code == http.StatusUnauthorized:
			msg := "session expired, log in again and refresh"
			if serverURL != "" {
				msg = fmt.Sprintf("session expired for %s, log in again and refresh", serverURL)
			}
			return &domain.APIError{Type: domain.ErrTokenExpired, Message: msg, Err: err}
		case code == http.StatusForbidden:
			return &domain.APIError{Type: domain.ErrForbidden, Message: statusErr.Status().Message, Err: err}
		case code == http.StatusNotFound:
			return &domain.APIError{Type: domain.ErrNotFound, Message: statusErr.Status().Message, Err: err}
		case code == http.StatusConflict:
			return &domain.APIError{
				Type:    domain.ErrConflict,
				Message: "conflict: the resource was modified, try again",
				Err:     err,
			}
		case code == http.StatusTooManyRequests:
			return &domain.APIError{Type: domain.ErrRateLimited, Message: "too many requests, slow down", Err: err}
		case code >= 500:
			return &domain.APIError{
				Type:    domain.ErrServerError,
				Message: fmt.Sprintf("server error (%d), try again", code),
				Err:     err,
			}
		}
	}

	errStr := err.Error()
	if strings.Contains(errStr, "x509") || strings.Contains(errStr, "certificate") || strings.Contains(errStr, "tls") {
		return &domain.APIError{
			Type:    domain.ErrTLS,
			Message: fmt.Sprintf("invalid TLS certificate for %s", serverURL),
			Err:     err,
		}
	}

	if strings.Contains(errStr, "dial tcp") || strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return &domain.APIError{
			Type:    domain.ErrUnreachable,
			Message: fmt.Sprintf("cluster unreachable: %s: %v", serverURL, err),
			Err:     err,
		}
	}

	return &domain.APIError{Type: domain.ErrUnknown, Message: errStr, Err: err}
}
