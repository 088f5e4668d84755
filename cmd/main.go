package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Taishi66/kdeck/internal/cache"
	"github.com/Taishi66/kdeck/internal/config"
	"github.com/Taishi66/kdeck/internal/domain"
	"github.com/Taishi66/kdeck/internal/k8s"
	"github.com/Taishi66/kdeck/internal/logging"
	"github.com/Taishi66/kdeck/internal/tui"
)

var version = "dev"

// flags holds the command-line overrides of the config file.
type flags struct {
	configPath    string
	namespace     string
	allNamespaces bool
	context       string
	refresh       time.Duration
	logLevel      string
	logFile       string
}

func main() {
	if err := newRootCmd(&flags{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kdeck",
		Short: "Terminal cockpit for Kubernetes clusters",
		Long: `kdeck browses every resource kind of a cluster from one keyboard-driven
screen: tables, logs, shells, port-forwards and context switching.`,
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(f, cmd.Flags().Changed)
		},
	}
	cmd.SetVersionTemplate(`{{printf "kdeck %s\n" .Version}}`)

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	fl.StringVarP(&f.namespace, "namespace", "n", "", "start in this namespace")
	fl.BoolVarP(&f.allNamespaces, "all-namespaces", "A", false, "start across all namespaces")
	fl.StringVar(&f.context, "context", "", "kubeconfig context to use")
	fl.DurationVar(&f.refresh, "refresh", 0, "table refresh interval (minimum 500ms)")
	fl.StringVar(&f.logLevel, "log-level", "", "log verbosity: debug, info, warn, error")
	fl.StringVar(&f.logFile, "log-file", "", "log file (default "+config.DefaultLogPath()+")")
	return cmd
}

// loadConfig reads the config file and applies the flags set on the
// command line over it.
func loadConfig(f *flags, changed func(string) bool) (*config.AppConfig, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadConfigFrom(f.configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return nil, err
	}

	cfg.Startup = config.StartupOptions{
		Namespace:     f.namespace,
		AllNamespaces: f.allNamespaces,
		Context:       f.context,
	}
	if changed("refresh") {
		cfg.RefreshInterval = config.ClampRefresh(f.refresh)
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.logFile != "" {
		cfg.Logging.File = f.logFile
	}
	return cfg, nil
}

func run(f *flags, changed func(string) bool) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("kdeck needs an interactive terminal")
	}
	cfg, err := loadConfig(f, changed)
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logPath := cfg.Logging.File
	if logPath == "" {
		logPath = config.DefaultLogPath()
	}
	if err := logging.Init(logPath, level); err != nil {
		return err
	}
	defer logging.Close()
	logging.Info("main", "kdeck %s starting", version)

	connect := func() (domain.DataSource, error) {
		client, err := k8s.NewClient(cfg.Startup.Context)
		if err != nil {
			return nil, err
		}
		return cache.NewCachedGateway(client, cfg.Cache), nil
	}

	opts := tui.Options{Config: cfg, Connect: connect}
	if src, err := connect(); err != nil {
		logging.Error("main", err, "connect")
		opts.StartupErr = err
	} else {
		opts.Source = src
	}

	if _, err := tea.NewProgram(tui.New(opts), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
