package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sales-dashboard/src/charts"
	"sales-dashboard/src/interfaces"
	livesync "sales-dashboard/src/live_sync"
	"sales-dashboard/src/logger"
	"sales-dashboard/src/network"
	"sales-dashboard/src/server"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

const (
	shutdownTimeout = 5 * time.Second
	cleanupInterval = time.Hour
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Keep the dashboard in sync and serve it locally (default)",
		Action: runAgent,
	}
}

// -----------------------------------------------------------------------------

// runAgent wires the sync controller to the view server and blocks until
// SIGINT/SIGTERM.
func runAgent(ctx context.Context, cmd *cli.Command) error {
	conf, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	appLogger := logger.NewLogger(conf, conf.Name)
	defer appLogger.Sync()

	sessionID := uuid.NewString()
	appLogger.Info("Starting %s (session %s, backend %s)", conf.Name, sessionID, conf.Backend.BaseURL)

	// 1. Journal
	journal, err := setupJournal(conf, appLogger)
	if err != nil {
		return err
	}
	if journal != nil {
		defer journal.Close()
	}

	// 2. Display surfaces
	srv := server.NewViewServer(conf, logger.NewLogger(conf, "ViewServer"))
	sink := charts.NewChartSink(srv, conf.View.ChartWidth, conf.View.ChartHeight, logger.NewLogger(conf, "Charts"))

	// 3. Health
	reporter, err := setupHealth(conf)
	if err != nil {
		return err
	}
	var listeners []interfaces.IStatusListener
	if reporter != nil {
		listeners = append(listeners, reporter)
	}

	// 4. Sync controller
	ctrl := livesync.NewController(conf, livesync.Deps{
		Source:    network.NewBackendClient(conf, sessionID, logger.NewLogger(conf, "Backend")),
		Dialer:    network.NewChannelDialer(conf, sessionID, logger.NewLogger(conf, "Channel")),
		Display:   srv,
		Charts:    sink,
		Journal:   journal,
		Listeners: listeners,
	}, sessionID, logger.NewLogger(conf, "SyncController"))
	srv.SetSyncControl(ctrl)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Servers
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("View server failed: %v", err)
			stop()
		}
	}()
	if reporter != nil {
		go func() {
			if err := reporter.Serve(); err != nil {
				appLogger.Error("gRPC health server failed: %v", err)
			}
		}()
	}
	if journal != nil {
		go cleanupLoop(ctx, journal, appLogger)
	}

	// 6. Main loop
	err = ctrl.Run(ctx)

	appLogger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if stopErr := srv.Stop(shutdownCtx); stopErr != nil {
		appLogger.Warning("View server shutdown: %v", stopErr)
	}
	if reporter != nil {
		reporter.Stop()
	}
	return err
}

// -----------------------------------------------------------------------------

func cleanupLoop(ctx context.Context, journal interfaces.IDatabase, appLogger *logger.Logger) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := journal.CleanupOldData(); err != nil {
				appLogger.Warning("Journal cleanup failed: %v", err)
				continue
			}
			if n, err := journal.CountSnapshots(); err == nil {
				appLogger.Info("Journal holds %d snapshots", n)
			}
		}
	}
}
