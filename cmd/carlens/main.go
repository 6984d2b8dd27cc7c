package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"carlens/internal/config"
	"carlens/internal/domain"
	"carlens/internal/eventbus"
	"carlens/internal/logging"
	"carlens/internal/session"
	"carlens/internal/ui"
)

// options holds the global flags
type options struct {
	configPath string
	verbose    bool
	records    string
	accessKey  string
	logFile    string
}

// app is the state shared by every command once the root pre-run finished
type app struct {
	opts   options
	cfgSvc config.ConfigService
	cfg    *config.Config
	log    *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "carlens",
		Short: "Browse vehicle models and photos by car make",
		Long: `carlens looks up the models (or vehicle types) of a car make in the NHTSA
vPIC catalog and a matching photo on Unsplash, side by side.

Run without arguments to start the interactive browser.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// The TUI owns the terminal, so it logs to a file
			logFile := ""
			if cmd.Parent() == nil {
				logFile = a.opts.logFile
				if logFile == "" {
					logFile = logging.DefaultFile
				}
			}
			return a.init(logFile)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.opts.configPath, "config", "c", "", "Config file (default: user config dir)")
	flags.BoolVarP(&a.opts.verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&a.opts.records, "records", "", "Records to look up: models or types")
	flags.StringVar(&a.opts.accessKey, "access-key", "", "Unsplash access key (or set "+config.EnvAccessKey+")")
	flags.StringVar(&a.opts.logFile, "log-file", "", "Log file for the interactive browser (default: "+logging.DefaultFile+")")

	root.AddCommand(newLookupCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newConfigCmd(a))
	return root
}

// init loads the config, applies flag overrides and builds the logger
func (a *app) init(logFile string) error {
	if a.opts.configPath != "" {
		a.cfgSvc = config.NewConfigServiceAt(a.opts.configPath)
	} else {
		a.cfgSvc = config.NewConfigService()
	}

	cfg, err := a.cfgSvc.Load()
	if err != nil {
		return fmt.Errorf("load config %s: %w", a.cfgSvc.Path(), err)
	}
	if a.opts.records != "" {
		cfg.Records = domain.RecordsKind(a.opts.records)
	}
	if a.opts.accessKey != "" {
		cfg.UnsplashAccessKey = a.opts.accessKey
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(logging.Options{File: logFile, Verbose: a.opts.verbose})
	if err != nil {
		return err
	}
	a.log = logger
	return nil
}

func (a *app) runTUI(ctx context.Context) error {
	agg, closeCaches, err := buildAggregator(a.cfg, a.log)
	if err != nil {
		return err
	}
	defer closeCaches()

	bus := eventbus.New(a.log)
	defer bus.Close()
	bus.Subscribe(eventbus.EventStateChanged, func(e eventbus.DomainEvent) {
		if ev, ok := e.(session.StateChangedEvent); ok {
			a.log.Debug("state changed",
				zap.Uint64("token", uint64(ev.State.Token)),
				zap.String("make", ev.State.Manufacturer),
				zap.Stringer("outcome", ev.State.Outcome()))
		}
	})

	store := session.NewStore(bus, a.log)
	defer store.Close()

	model := ui.NewModel(ctx, a.cfg, store, agg, a.log)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetProgram(p)

	a.log.Info("starting ui", zap.String("records", string(a.cfg.Records)))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run ui: %w", err)
	}
	a.log.Info("ui exited")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
