package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/syslog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ovs-container-lab/ovsd/pkg/bus"
	"github.com/ovs-container-lab/ovsd/pkg/config"
	"github.com/ovs-container-lab/ovsd/pkg/driver"
	"github.com/ovs-container-lab/ovsd/pkg/link"
	"github.com/ovs-container-lab/ovsd/pkg/notify"
	"github.com/ovs-container-lab/ovsd/pkg/ovs"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	lsyslog "github.com/sirupsen/logrus/hooks/syslog"
	"github.com/spf13/pflag"
)

const (
	daemonName    = "ovsd"
	daemonVersion = "0.1.0"
)

func main() {
	cfg, err := config.Parse(daemonName, os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", daemonName, err)
		os.Exit(1)
	}

	if cfg.ShowVersion {
		fmt.Printf("%s version %s\n", daemonName, daemonVersion)
		os.Exit(0)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", daemonName, err)
		os.Exit(1)
	}

	signal.Ignore(syscall.SIGPIPE)
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGUSR2)
	defer stop()

	logger.Infof("Starting %s version %s", daemonName, daemonVersion)

	invoker := ovs.NewExecInvoker(cfg.VsctlPath, logger)
	if err := invoker.Ping(); err != nil {
		logger.WithError(err).Warn("ovs-vsctl is not usable yet")
	}

	notifier, err := notify.New(cfg.NetifdSocket, logger)
	if err != nil {
		logger.Fatalf("Failed to create notifier: %v", err)
	}

	d := driver.New(ovs.NewClient(invoker, logger), notifier, link.NetlinkInspector{}, logger)
	server := bus.NewServer(driver.ObjectName, d, cfg.Socket, logger)

	if cfg.MetricsAddress != "" {
		go serveMetrics(ctx, cfg.MetricsAddress, logger)
	}

	if err := server.Run(ctx); err != nil {
		logger.Fatalf("Failed to serve: %v", err)
	}

	logger.Info("Signal caught, shutting down")
	notifier.Close()
}

// newLogger logs to syslog unless stderr was requested
func newLogger(cfg *config.Config) (*logrus.Logger, error) {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetLevel(level)

	if cfg.Stderr {
		logger.SetOutput(os.Stderr)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		return logger, nil
	}

	hook, err := lsyslog.NewSyslogHook("", "", syslog.LOG_DAEMON, daemonName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to syslog: %w", err)
	}
	logger.AddHook(hook)
	logger.SetOutput(io.Discard)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return logger, nil
}

func serveMetrics(ctx context.Context, addr string, logger *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("Serving metrics on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Error("Metrics server failed")
	}
}
