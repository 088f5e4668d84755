package cache

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/Taishi66/kdeck/internal/config"
	"github.com/Taishi66/kdeck/internal/domain"
)

const (
	keyCustomKinds = "crd"
	keyIdentities  = "identities"
	keyOverview    = "overview/"
)

// CachedGateway decorates a DataSource with TTL-based caching for the
// slow-changing reads: custom resource discovery, the identity catalog and
// the overview. Tables, logs and mutations always reach the delegate.
type CachedGateway struct {
	domain.DataSource

	cfg   config.CacheConfig
	store *gocache.Cache
}

var _ domain.DataSource = (*CachedGateway)(nil)

func NewCachedGateway(delegate domain.DataSource, cfg config.CacheConfig) *CachedGateway {
	return &CachedGateway{
		DataSource: delegate,
		cfg:        cfg,
		store:      gocache.New(gocache.NoExpiration, time.Minute),
	}
}

// Invalidate drops every cached entry.
func (c *CachedGateway) Invalidate() {
	c.store.Flush()
}

// --- Cached reads ---

func (c *CachedGateway) DiscoverCustomResourceKinds(ctx context.Context) ([]domain.CustomResourceDescriptor, error) {
	if v, ok := c.store.Get(keyCustomKinds); ok {
		return v.([]domain.CustomResourceDescriptor), nil
	}
	result, err := c.DataSource.DiscoverCustomResourceKinds(ctx)
	if err != nil {
		return nil, err
	}
	c.store.Set(keyCustomKinds, result, c.cfg.CustomResourcesTTL)
	return result, nil
}

func (c *CachedGateway) Identities() (domain.IdentityCatalog, error) {
	if v, ok := c.store.Get(keyIdentities); ok {
		return v.(domain.IdentityCatalog), nil
	}
	result, err := c.DataSource.Identities()
	if err != nil {
		return domain.IdentityCatalog{}, err
	}
	c.store.Set(keyIdentities, result, c.cfg.IdentitiesTTL)
	return result, nil
}

func (c *CachedGateway) FetchOverview(ctx context.Context, scope domain.Scope) (domain.OverviewMetrics, error) {
	key := keyOverview + scope.String()
	if v, ok := c.store.Get(key); ok {
		return v.(domain.OverviewMetrics), nil
	}
	result, err := c.DataSource.FetchOverview(ctx, scope)
	if err != nil {
		return domain.OverviewMetrics{}, err
	}
	c.store.Set(key, result, c.cfg.OverviewTTL)
	return result, nil
}

// --- Identity switches (pass-through + invalidate all) ---

func (c *CachedGateway) SwitchContext(name string) error {
	defer c.Invalidate()
	return c.DataSource.SwitchContext(name)
}

func (c *CachedGateway) SwitchCluster(name string) error {
	defer c.Invalidate()
	return c.DataSource.SwitchCluster(name)
}

func (c *CachedGateway) SwitchUser(name string) error {
	defer c.Invalidate()
	return c.DataSource.SwitchUser(name)
}

// --- Mutations (pass-through + invalidate overview) ---

func (c *CachedGateway) Delete(ctx context.Context, kind domain.Kind, id domain.RowIdentity, cr *domain.CustomResourceDescriptor) error {
	err := c.DataSource.Delete(ctx, kind, id, cr)
	if err == nil {
		c.invalidateOverview()
	}
	return err
}

func (c *CachedGateway) Scale(ctx context.Context, kind domain.Kind, id domain.RowIdentity, replicas int32) error {
	err := c.DataSource.Scale(ctx, kind, id, replicas)
	if err == nil {
		c.invalidateOverview()
	}
	return err
}

func (c *CachedGateway) invalidateOverview() {
	for key := range c.store.Items() {
		if strings.HasPrefix(key, keyOverview) {
			c.store.Delete(key)
		}
	}
}
