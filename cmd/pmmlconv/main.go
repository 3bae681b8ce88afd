package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/pmmlconv/pkg/config"
	"github.com/ajitpratap0/pmmlconv/pkg/converter/registry"
	"github.com/ajitpratap0/pmmlconv/pkg/logger"
	"github.com/ajitpratap0/pmmlconv/pkg/metrics"
	"github.com/ajitpratap0/pmmlconv/pkg/observability"
	"github.com/ajitpratap0/pmmlconv/pkg/regression"
)

var version = "0.1.0"

// app carries state shared by every command of one invocation
type app struct {
	configFile  string
	logLevel    string
	metricsAddr string
	trace       bool

	cfg           *config.Config
	log           *zap.Logger
	metricsServer *metrics.Server
	shutdownTrace observability.ShutdownFunc
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "pmmlconv",
		Short: "pmmlconv - convert trained estimators to PMML 4.2",
		Long: `pmmlconv converts trained models into PMML 4.2 documents.
Categorical inputs are encoded through lookup tables in the transformation
dictionary so that the model element only sees numeric fields.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Path to a YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the configuration")
	root.PersistentFlags().StringVar(&a.metricsAddr, "metrics-addr", "", "Serve /metrics and /healthz on this address while running")
	root.PersistentFlags().BoolVar(&a.trace, "trace", false, "Export trace spans to stderr")

	root.AddCommand(newVersionCommand())
	root.AddCommand(newListCommand(a))
	root.AddCommand(newConvertCommand(a))
	root.AddCommand(newBatchCommand(a))
	root.AddCommand(newInferCommand(a))
	return root
}

// setup loads configuration and starts the ambient services
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Observability.LogLevel = a.logLevel
	}
	if a.metricsAddr != "" {
		cfg.Observability.EnableMetrics = true
		cfg.Observability.MetricsAddr = a.metricsAddr
	}
	if a.trace {
		cfg.Observability.EnableTracing = true
	}
	a.cfg = cfg

	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return err
	}
	a.log = logger.With(zap.String("component", "pmmlconv-cli"), zap.String("command", cmd.Name()))

	if cfg.Observability.EnableTracing {
		shutdown, err := observability.Init(cfg.TracingConfig(version))
		if err != nil {
			return err
		}
		a.shutdownTrace = shutdown
	}

	if cfg.Observability.EnableMetrics {
		s := metrics.NewServer(cfg.Observability.MetricsAddr, a.log)
		if err := s.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		a.metricsServer = s
	}
	return nil
}

func (a *app) teardown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			a.log.Warn("failed to stop metrics server", zap.Error(err))
		}
	}
	if a.shutdownTrace != nil {
		if err := a.shutdownTrace(ctx); err != nil {
			a.log.Warn("failed to flush traces", zap.Error(err))
		}
	}
	_ = logger.Sync()
	return nil
}

// registry builds the sealed converter catalog for the loaded configuration
func (a *app) registry() (*registry.Registry, error) {
	opts, err := a.cfg.ConverterOptions(a.log)
	if err != nil {
		return nil, err
	}
	reg := registry.NewRegistry(a.log)
	if err := regression.Register(reg, opts); err != nil {
		return nil, err
	}
	reg.Seal()
	return reg, nil
}
