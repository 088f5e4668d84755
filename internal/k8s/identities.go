package k8s

import (
	"fmt"
	"sort"

	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"

	"github.com/Taishi66/kdeck/internal/domain"
)

func (c *Client) rawConfig() (clientcmdapi.Config, clientcmd.ConfigOverrides, error) {
	c.mu.RLock()
	rules, overrides := c.rules, *c.overrides
	c.mu.RUnlock()
	if rules == nil {
		return clientcmdapi.Config{}, overrides, &domain.APIError{Type: domain.ErrNoKubeconfig, Message: "client has no kubeconfig"}
	}
	raw, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &overrides).RawConfig()
	if err != nil {
		return raw, overrides, &domain.APIError{Type: domain.ErrBadKubeconfig, Message: fmt.Sprintf("invalid kubeconfig: %v", err), Err: err}
	}
	return raw, overrides, nil
}

// Identities lists kubeconfig contexts, clusters and users, and the ones
// currently in effect after overrides.
func (c *Client) Identities() (domain.IdentityCatalog, error) {
	raw, overrides, err := c.rawConfig()
	if err != nil {
		return domain.IdentityCatalog{}, err
	}

	cat := domain.IdentityCatalog{
		Contexts:       sortedKeys(raw.Contexts),
		Clusters:       sortedKeys(raw.Clusters),
		Users:          sortedKeys(raw.AuthInfos),
		CurrentContext: raw.CurrentContext,
	}
	if overrides.CurrentContext != "" {
		cat.CurrentContext = overrides.CurrentContext
	}
	if ctx, ok := raw.Contexts[cat.CurrentContext]; ok {
		cat.CurrentCluster = ctx.Cluster
		cat.CurrentUser = ctx.AuthInfo
	}
	if overrides.Context.Cluster != "" {
		cat.CurrentCluster = overrides.Context.Cluster
	}
	if overrides.Context.AuthInfo != "" {
		cat.CurrentUser = overrides.Context.AuthInfo
	}
	return cat, nil
}

// SwitchContext makes name the active context and drops any cluster or
// user override.
func (c *Client) SwitchContext(name string) error {
	return c.switchTo("context", name, func(raw clientcmdapi.Config) bool {
		_, ok := raw.Contexts[name]
		return ok
	}, func(o *clientcmd.ConfigOverrides) {
		o.CurrentContext = name
		o.Context.Cluster = ""
		o.Context.AuthInfo = ""
	})
}

// SwitchCluster points the active context at another cluster entry.
func (c *Client) SwitchCluster(name string) error {
	return c.switchTo("cluster", name, func(raw clientcmdapi.Config) bool {
		_, ok := raw.Clusters[name]
		return ok
	}, func(o *clientcmd.ConfigOverrides) {
		o.Context.Cluster = name
	})
}

// SwitchUser points the active context at another user entry.
func (c *Client) SwitchUser(name string) error {
	return c.switchTo("user", name, func(raw clientcmdapi.Config) bool {
		_, ok := raw.AuthInfos[name]
		return ok
	}, func(o *clientcmd.ConfigOverrides) {
		o.Context.AuthInfo = name
	})
}

// switchTo validates name, applies the override and rebuilds every client.
// On failure the previous overrides are restored.
func (c *Client) switchTo(what, name string, exists func(clientcmdapi.Config) bool, apply func(*clientcmd.ConfigOverrides)) error {
	raw, _, err := c.rawConfig()
	if err != nil {
		return err
	}
	if !exists(raw) {
		return &domain.APIError{Type: domain.ErrNotFound, Message: fmt.Sprintf("unknown %s %q", what, name)}
	}

	c.mu.Lock()
	prev := *c.overrides
	next := prev
	apply(&next)
	c.overrides = &next
	c.mu.Unlock()

	if err := c.Reconnect(); err != nil {
		c.mu.Lock()
		c.overrides = &prev
		c.mu.Unlock()
		return err
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
