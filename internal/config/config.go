package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const appName = "kdeck"

// MinRefreshInterval is the lowest accepted ticker interval.
const MinRefreshInterval = 500 * time.Millisecond

var DefaultProdPatterns = []string{"prod", "production", "prd", "live"}

// AppConfig holds all configuration for kdeck.
type AppConfig struct {
	RefreshInterval    time.Duration  `yaml:"refresh_interval"`
	ProdPatterns       []string       `yaml:"prod_patterns"`
	ReadonlyNamespaces []string       `yaml:"readonly_namespaces"`
	Editor             string         `yaml:"editor"`
	LogTailLines       int64          `yaml:"log_tail_lines"`
	Cache              CacheConfig    `yaml:"cache"`
	Timeouts           TimeoutConfig  `yaml:"timeouts"`
	Watch              WatchConfig    `yaml:"watch"`
	Exec               ExecConfig     `yaml:"exec"`
	Logging            LoggingConfig  `yaml:"logging"`
	Startup            StartupOptions `yaml:"-"`
}

// CacheConfig holds TTL settings for slow-changing reads.
type CacheConfig struct {
	CustomResourcesTTL time.Duration `yaml:"custom_resources"`
	IdentitiesTTL      time.Duration `yaml:"identities"`
	OverviewTTL        time.Duration `yaml:"overview"`
}

// TimeoutConfig time-boxes each kind of refresh.
type TimeoutConfig struct {
	Table     time.Duration `yaml:"table"`
	Overview  time.Duration `yaml:"overview"`
	Discovery time.Duration `yaml:"discovery"`
}

// WatchConfig tunes the change-notification streams.
type WatchConfig struct {
	Throttle time.Duration `yaml:"throttle"`
	Backoff  time.Duration `yaml:"backoff"`
}

// ExecConfig holds exec/shell settings.
type ExecConfig struct {
	Shell string `yaml:"shell"`
}

// LoggingConfig selects the log file and verbosity.
type LoggingConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// StartupOptions come from command-line flags only.
type StartupOptions struct {
	Namespace     string
	AllNamespaces bool
	Context       string
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		RefreshInterval: 1500 * time.Millisecond,
		ProdPatterns:    DefaultProdPatterns,
		LogTailLines:    200,
		Cache: CacheConfig{
			CustomResourcesTTL: 30 * time.Second,
			IdentitiesTTL:      10 * time.Second,
			OverviewTTL:        5 * time.Second,
		},
		Timeouts: TimeoutConfig{
			Table:     4 * time.Second,
			Overview:  2 * time.Second,
			Discovery: 5 * time.Second,
		},
		Watch: WatchConfig{
			Throttle: 350 * time.Millisecond,
			Backoff:  900 * time.Millisecond,
		},
		Exec: ExecConfig{
			Shell: "/bin/sh",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/kdeck/config.yaml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

// DefaultLogPath returns $XDG_STATE_HOME/kdeck/kdeck.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, appName, appName+".log")
}

// LoadConfig loads from the default path.
func LoadConfig() (*AppConfig, error) {
	return LoadConfigFrom(DefaultPath())
}

// LoadConfigFrom loads config from a specific file path.
// Returns defaults if the file does not exist.
func LoadConfigFrom(path string) (*AppConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults back-fills zero values and clamps the refresh interval.
func (c *AppConfig) applyDefaults() {
	d := DefaultConfig()
	if len(c.ProdPatterns) == 0 {
		c.ProdPatterns = d.ProdPatterns
	}
	if c.RefreshInterval == 0 {
		c.RefreshInterval = d.RefreshInterval
	}
	c.RefreshInterval = ClampRefresh(c.RefreshInterval)
	if c.LogTailLines <= 0 {
		c.LogTailLines = d.LogTailLines
	}
	if c.Cache.CustomResourcesTTL == 0 {
		c.Cache.CustomResourcesTTL = d.Cache.CustomResourcesTTL
	}
	if c.Cache.IdentitiesTTL == 0 {
		c.Cache.IdentitiesTTL = d.Cache.IdentitiesTTL
	}
	if c.Cache.OverviewTTL == 0 {
		c.Cache.OverviewTTL = d.Cache.OverviewTTL
	}
	if c.Timeouts.Table == 0 {
		c.Timeouts.Table = d.Timeouts.Table
	}
	if c.Timeouts.Overview == 0 {
		c.Timeouts.Overview = d.Timeouts.Overview
	}
	if c.Timeouts.Discovery == 0 {
		c.Timeouts.Discovery = d.Timeouts.Discovery
	}
	if c.Watch.Throttle == 0 {
		c.Watch.Throttle = d.Watch.Throttle
	}
	if c.Watch.Backoff == 0 {
		c.Watch.Backoff = d.Watch.Backoff
	}
	if c.Exec.Shell == "" {
		c.Exec.Shell = d.Exec.Shell
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
}

// ClampRefresh enforces the minimum refresh interval.
func ClampRefresh(d time.Duration) time.Duration {
	if d < MinRefreshInterval {
		return MinRefreshInterval
	}
	return d
}

// ResolveEditor picks the editor handed to kubectl edit: config, then
// $KUBE_EDITOR, then $EDITOR, then vi.
func (c *AppConfig) ResolveEditor(getenv func(string) string) string {
	if c.Editor != "" {
		return c.Editor
	}
	for _, key := range []string{"KUBE_EDITOR", "EDITOR"} {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
	}
	return "vi"
}

// IsReadonlyNamespace checks if a namespace matches any readonly pattern.
// Supports glob matching (e.g. "openshift-*").
func IsReadonlyNamespace(namespace string, patterns []string) bool {
	if namespace == "" || len(patterns) == 0 {
		return false
	}
	for _, p := range patterns {
		matched, err := filepath.Match(p, namespace)
		if err == nil && matched {
			return true
		}
	}
	return false
}

// IsProdNamespace checks if a namespace name matches production patterns.
// Matching is done by segment (split on -._) to avoid false positives
// like "product-api" matching "prod".
func IsProdNamespace(namespace string, patterns []string) bool {
	if len(patterns) == 0 {
		patterns = DefaultProdPatterns
	}
	segments := splitSegments(strings.ToLower(namespace))

	for _, p := range patterns {
		p = strings.ToLower(p)
		for _, seg := range segments {
			if seg == p {
				return true
			}
		}
	}
	return false
}

func splitSegments(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '.' || r == '_'
	})
}
