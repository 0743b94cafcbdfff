package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/angeloszaimis/mathapi/config"
	"github.com/angeloszaimis/mathapi/internal/handler"
	"github.com/angeloszaimis/mathapi/internal/healthcheck"
	"github.com/angeloszaimis/mathapi/internal/httpserver"
	"github.com/angeloszaimis/mathapi/internal/metrics"
	"github.com/angeloszaimis/mathapi/pkg/logger"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	cmd := &cobra.Command{
		Use:          "mathapi",
		Short:        "Serve factorial, fibonacci and mean computations over HTTP",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWith(v, configFile)
			if err != nil {
				return err
			}

			log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(cfg, log)
			if err != nil {
				log.Error("Failed to create server", slog.Any("err", err))
				return err
			}

			if err := a.run(ctx); err != nil {
				log.Error("Server stopped with error", slog.Any("err", err))
				return err
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "path to a config file (default ./config/config.yaml or ./config.yaml)")
	if err := bindFlags(v, cmd.Flags()); err != nil {
		panic(err)
	}

	return cmd
}

// bindFlags registers the overridable settings on flags and binds each one
// to its config key.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	flags.String("address", "", "public listen address")
	flags.String("admin-address", "", "admin listen address")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("environment", "", "environment (dev, staging, prod)")

	bindings := map[string]string{
		"server.address":     "address",
		"admin.address":      "admin-address",
		"logging.level":      "log-level",
		"server.environment": "environment",
	}

	for key, name := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return err
		}
	}

	return nil
}

type app struct {
	log       *slog.Logger
	collector *metrics.Collector
	probe     *healthcheck.Probe
	public    *httpserver.Server
	admin     *httpserver.Server
}

func newApp(cfg *config.Config, log *slog.Logger) (*app, error) {
	collector := metrics.NewCollector(cfg.Metrics.BufferSize, log)
	probe := healthcheck.NewProbe(log)

	mathHandler := handler.NewMathHandler(log, limitsFromConfig(cfg), collector)
	timeouts := timeoutsFromConfig(cfg)

	public, err := httpserver.New(cfg.Server.Address, setupPublicRouter(mathHandler, log), timeouts)
	if err != nil {
		return nil, err
	}

	a := &app{
		log:       log,
		collector: collector,
		probe:     probe,
		public:    public,
	}

	if cfg.Admin.Enabled {
		a.admin, err = httpserver.New(cfg.Admin.Address, setupAdminRouter(collector, probe), timeouts)
		if err != nil {
			return nil, err
		}
	}

	return a, nil
}

// run serves until ctx is cancelled or a listener fails, then shuts every
// server down and drains the metrics collector.
func (a *app) run(ctx context.Context) error {
	if err := a.public.Listen(); err != nil {
		return err
	}

	collectorCtx, stopCollector := context.WithCancel(context.Background())
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		a.collector.Run(collectorCtx)
		return nil
	})

	eg.Go(func() error {
		a.log.Info("Serving math API", slog.String("address", a.public.Addr()))
		a.probe.SetReady(true)
		return a.public.Serve()
	})

	if a.admin != nil {
		eg.Go(func() error {
			if err := a.admin.Listen(); err != nil {
				return err
			}
			a.log.Info("Serving admin endpoints", slog.String("address", a.admin.Addr()))
			return a.admin.Serve()
		})
	}

	eg.Go(func() error {
		defer stopCollector()

		<-egCtx.Done()
		a.log.Info("Shutting down gracefully...")
		a.probe.SetReady(false)

		err := a.public.Shutdown(context.Background())
		if a.admin != nil {
			err = errors.Join(err, a.admin.Shutdown(context.Background()))
		}
		if err != nil {
			a.log.Error("Error during shutdown", slog.Any("err", err))
		}
		return err
	})

	return eg.Wait()
}

func limitsFromConfig(cfg *config.Config) handler.Limits {
	return handler.Limits{
		MaxFactorial: cfg.Limits.MaxFactorial,
		MaxFibonacci: cfg.Limits.MaxFibonacci,
		MaxBodyBytes: cfg.Limits.MaxBodyBytes,
	}
}

func timeoutsFromConfig(cfg *config.Config) httpserver.Timeouts {
	return httpserver.Timeouts{
		Read:     config.Duration(cfg.Server.ReadTimeout),
		Write:    config.Duration(cfg.Server.WriteTimeout),
		Idle:     config.Duration(cfg.Server.IdleTimeout),
		Shutdown: config.Duration(cfg.Server.ShutdownTimeout),
	}
}
