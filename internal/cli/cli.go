// ============================================================================
// treetask CLI - Command Line Interface
// ============================================================================
//
// Package: internal/cli
// File: cli.go
// Purpose: Cobra-based command line interface for running treetask as a
//          standalone daemon - mainly useful for exercising the scheduler's
//          metrics and dispatch fairness without embedding it in a larger
//          program.
//
// Command Structure:
//   treetaskd
//   ├── run                       # Start the Service and metrics server
//   │   └── --config, -c          # Specify config file
//   ├── bench                     # Run one synthetic fan-out workload
//   │   └── --config, -c
//   └── --version
//
// Signal Handling:
//   run captures SIGINT/SIGTERM, interrupts nothing (there is no
//   persistent Task tree to protect) and simply stops accepting new work
//   via Service.Shutdown once any in-flight bench run has drained.
//
// ============================================================================

package cli

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/chuliyu/treetask"
	"github.com/chuliyu/treetask/internal/config"
	"github.com/chuliyu/treetask/internal/metrics"
)

var configFile string

// BuildCLI assembles the treetaskd root command and its subcommands.
func BuildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "treetaskd",
		Short:   "treetaskd runs a hierarchical task scheduler as a standalone process",
		Version: "1.0.0",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "configs/default.yaml", "config file path")

	rootCmd.AddCommand(buildRunCommand())
	rootCmd.AddCommand(buildBenchCommand())

	return rootCmd
}

func buildRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the Service and, if enabled, the metrics and benchmark loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon()
		},
	}
}

func buildBenchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bench",
		Short: "Run one synthetic fan-out workload and report how long it took",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			svc := treetask.NewService(cfg.Service.ThreadsPerWeight)
			defer svc.Shutdown()
			d := runBenchmark(svc)
			log.Printf("benchmark completed in %s\n", d)
			return nil
		},
	}
}

func runDaemon() error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector()
		go func() {
			if err := metrics.StartServer(cfg.Metrics.Port); err != nil {
				slog.Default().Error("metrics server stopped", "error", err)
			}
		}()
	}

	var svc *treetask.Service
	if collector != nil {
		svc = treetask.NewServiceWithMetrics(cfg.Service.ThreadsPerWeight, collector)
	} else {
		svc = treetask.NewService(cfg.Service.ThreadsPerWeight)
	}

	var benchTicker *cron.Cron
	if cfg.Bench.Enabled {
		benchTicker = cron.New()
		if _, err := benchTicker.AddFunc(cfg.Bench.Cron, func() {
			d := runBenchmark(svc)
			slog.Default().Info("scheduled benchmark completed", "duration", d)
		}); err != nil {
			return fmt.Errorf("schedule benchmark: %w", err)
		}
		benchTicker.Start()
	}

	slog.Default().Info("treetaskd started", "threads_per_weight", cfg.Service.ThreadsPerWeight, "metrics", cfg.Metrics.Enabled)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Default().Info("received shutdown signal, draining")
	if benchTicker != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		stopCtx := benchTicker.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
		}
	}
	svc.WaitUntilEverythingIsDone()
	svc.Shutdown()
	slog.Default().Info("treetaskd stopped")
	return nil
}

// runBenchmark submits a small fan-out tree across all three weight
// classes and blocks until every task has finished, returning how long
// that took. It exists purely to give an operator something to point a
// metrics dashboard at.
func runBenchmark(svc *treetask.Service) time.Duration {
	const numRoots = 50
	const childrenPerRoot = 20
	weights := []treetask.Weight{treetask.Light, treetask.Middle, treetask.Heavy}

	var completed int64
	start := time.Now()

	for i := 0; i < numRoots; i++ {
		i := i
		svc.Task(weights[i%3], func() {
			self, _ := svc.CurrentTask()
			for c := 0; c < childrenPerRoot; c++ {
				svc.ChildTask(self, weights[c%3], func() {
					atomic.AddInt64(&completed, 1)
				}).Start()
			}
		}).Start()
	}

	svc.WaitUntilEverythingIsDone()
	return time.Since(start)
}
