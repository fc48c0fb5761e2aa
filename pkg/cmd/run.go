package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/ardeshir/lttng-tools/pkg/app"
	"github.com/ardeshir/lttng-tools/pkg/config"
	"github.com/ardeshir/lttng-tools/pkg/consumerd"
	"github.com/ardeshir/lttng-tools/pkg/fdbudget"
	"github.com/ardeshir/lttng-tools/pkg/precheck"
	"github.com/ardeshir/lttng-tools/pkg/sessiond"
	"github.com/ardeshir/lttng-tools/pkg/telemetry"
	"github.com/ardeshir/lttng-tools/pkg/wire"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

var metricsListen string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the session daemon",
	Run: func(cmd *cobra.Command, args []string) {
		logger := initLogger()
		defer syncLogger(logger)

		if err := runRunCmd(logger); err != nil {
			logger.Fatal("session daemon exited", zap.Error(err))
		}
	},
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config",
		getEnvOr("SESSIOND_CONFIG", ""),
		"Configuration file path")
	runCmd.Flags().StringVar(&metricsListen, "metrics-listen",
		getEnvOr("METRICS_LISTEN", "0.0.0.0:9100"),
		"IP:PORT for the Prometheus /metrics endpoint")
}

func runRunCmd(logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, unix.SIGINT, unix.SIGTERM)
	go func() {
		<-sig
		logger.Info("shutdown signal received")
		cancel()
	}()

	// SIGHUP-triggered reload is handled inside LocalConfigProvider
	// itself (or is a no-op for the embedded default); run.go does not
	// need its own signal handler for it, only for shutdown below.
	cfg, _, err := loadConfig(ctx, logger)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if err := runPrechecks(cfg); err != nil {
		return fmt.Errorf("startup preconditions: %w", err)
	}

	fdBudget := fdbudget.New(fdbudget.APPS, cfg.FDBudget.AppsLimit)
	registry := app.NewRegistry(logger, fdBudget, cfg.Protocol.Major)

	consumers := &consumerd.Sockets{}
	if cfg.Consumer.Socket64Path != "" {
		if err := consumers.Dial(logger, 64, "unix", cfg.Consumer.Socket64Path); err != nil {
			logger.Warn("could not dial 64-bit consumer", zap.Error(err))
		}
	}
	if cfg.Consumer.Socket32Path != "" {
		if err := consumers.Dial(logger, 32, "unix", cfg.Consumer.Socket32Path); err != nil {
			logger.Warn("could not dial 32-bit consumer", zap.Error(err))
		}
	}

	sd, err := sessiond.New(logger, cfg, registry, consumers, fdBudget)
	if err != nil {
		return fmt.Errorf("constructing session daemon: %w", err)
	}

	registerTelemetry(registry, fdBudget)

	metricsSrv := startMetricsServer(logger, metricsListen)
	defer metricsSrv.Close()

	ln, err := listenApps(cfg.Apps.Path)
	if err != nil {
		return fmt.Errorf("listening on apps socket: %w", err)
	}
	defer ln.Close()

	go acceptApps(ctx, logger, ln, fdBudget, sd)

	logger.Info("session daemon ready",
		zap.String("apps_socket", cfg.Apps.Path),
		zap.String("metrics_listen", metricsListen))

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// loadConfig starts the configured provider and returns the first
// loaded configuration, matching qtap's own choice between a
// file-backed provider and the embedded default.
func loadConfig(ctx context.Context, logger *zap.Logger) (*config.Config, *config.ConfigManager, error) {
	var provider config.ConfigProvider
	if configPath != "" {
		provider = config.NewLocalConfigProvider(logger, configPath)
	} else {
		logger.Warn("no config file provided, using embedded default config")
		provider = config.NewDefaultConfigProvider(logger)
	}

	configManager := config.NewConfigManager(logger, provider)
	if err := configManager.Run(ctx); err != nil {
		return nil, nil, err
	}

	cfg := configManager.GetConfig()
	if cfg == nil {
		return nil, nil, errors.New("no configuration loaded")
	}
	return cfg, configManager, nil
}

// runPrechecks verifies the environment before the daemon accepts any
// registration, per the startup preconditions the command layer owns.
func runPrechecks(cfg *config.Config) error {
	tracePath := cfg.Consumer.TracePath
	if tracePath != "" {
		if err := precheck.TraceDirWritable(tracePath); err != nil {
			return err
		}
		if err := precheck.ChownCapable(tracePath, os.Getuid(), os.Getgid()); err != nil {
			return err
		}
	}
	if cfg.Consumer.Socket64Path != "" {
		if err := precheck.ConsumerSocketDir(cfg.Consumer.Socket64Path); err != nil {
			return err
		}
	}
	if cfg.Consumer.Socket32Path != "" {
		if err := precheck.ConsumerSocketDir(cfg.Consumer.Socket32Path); err != nil {
			return err
		}
	}
	return nil
}

// registerTelemetry installs the process-wide observable gauges
// described by the metrics section of the ambient stack: registered
// app count and FD-budget pressure, both sampled on scrape rather than
// pushed, since neither changes fast enough to need push semantics.
func registerTelemetry(registry *app.Registry, fdBudget *fdbudget.Budget) {
	telemetry.ObservableGauge("sessiond_apps_registered", func() float64 {
		n := 0
		registry.Iter(func(*app.App) bool {
			n++
			return true
		})
		return float64(n)
	}, telemetry.WithDescription("Number of applications currently registered"))

	telemetry.ObservableGauge("sessiond_fdbudget_reserved", func() float64 {
		return float64(fdBudget.Reserved())
	}, telemetry.WithDescription("Reserved descriptors in the APPS FD budget class"))

	telemetry.ObservableGauge("sessiond_fdbudget_limit", func() float64 {
		return float64(fdBudget.Limit())
	}, telemetry.WithDescription("Configured limit of the APPS FD budget class"))
}

func startMetricsServer(logger *zap.Logger, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	return srv
}

// listenApps opens the private unix socket applications connect to
// with their registration message, removing a stale socket file left
// behind by a previous, uncleanly terminated run.
func listenApps(path string) (net.Listener, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("removing stale apps socket: %w", err)
	}
	return net.Listen("unix", path)
}

// acceptApps is the registration accept loop: each connection is read
// for exactly one RegisterMsg, reserved against the APPS FD budget,
// handed to the registry, then held open for the lifetime of the
// application so its eventual close drives unregister.
func acceptApps(ctx context.Context, logger *zap.Logger, ln net.Listener, fdBudget *fdbudget.Budget, sd *sessiond.Sessiond) {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("accepting app connection", zap.Error(err))
			return
		}
		go handleApp(ctx, logger, conn, fdBudget, sd)
	}
}

// appHeartbeatInterval governs how often handleApp probes a registered
// application's liveness. The transport has no spontaneous hang-up
// signal of its own (every read only happens inside a daemon-issued
// RPC), so liveness is detected by re-issuing the already-validated
// version query rather than by a second, racing reader on the socket.
const appHeartbeatInterval = 5 * time.Second

func handleApp(ctx context.Context, logger *zap.Logger, conn net.Conn, fdBudget *fdbudget.Budget, sd *sessiond.Sessiond) {
	var msg wire.RegisterMsg
	if err := wire.ReadFixed(conn, &msg); err != nil {
		logger.Debug("reading registration message", zap.Error(err))
		conn.Close()
		return
	}

	if err := fdBudget.Reserve(1); err != nil {
		logger.Warn("refusing registration, FD budget exhausted", zap.Error(err))
		conn.Close()
		return
	}

	a, err := sd.Register(msg, conn)
	if err != nil {
		logger.Warn("registration rejected", zap.Int32("pid", msg.Pid), zap.Error(err))
		return
	}

	if _, _, compatible, err := sd.ValidateVersion(a); err != nil {
		logger.Warn("version validation failed", zap.Int32("pid", a.Pid), zap.Error(err))
	} else if compatible {
		if err := sd.GlobalUpdate(conn); err != nil {
			logger.Error("global update failed", zap.Int32("pid", a.Pid), zap.Error(err))
		}
	} else {
		logger.Warn("incompatible application protocol", zap.Int32("pid", a.Pid), zap.Uint32("major", msg.Major))
	}

	ticker := time.NewTicker(appHeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, _, err := a.Tracer.Version(); err != nil {
				if !wire.IsBenignPeerDeath(err) {
					logger.Debug("application heartbeat failed", zap.Int32("pid", a.Pid), zap.Error(err))
				}
				if err := sd.Unregister(conn); err != nil {
					logger.Debug("unregistering application", zap.Int32("pid", a.Pid), zap.Error(err))
				}
				return
			}
		}
	}
}
