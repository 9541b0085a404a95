package main

import (
	"fmt"

	"sales-dashboard/src/config"
	"sales-dashboard/src/grpc_control"
	"sales-dashboard/src/interfaces"
	"sales-dashboard/src/logger"
	"sales-dashboard/src/storage"

	"github.com/urfave/cli/v3"
)

// -----------------------------------------------------------------------------

// loadConfig reads the YAML file and applies command-line overrides
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	conf, err := config.NewConfig(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if url := cmd.String("base-url"); url != "" {
		conf.Backend.BaseURL = url
	}
	if level := cmd.String("log-level"); level != "" {
		conf.LogLevel = level
	}

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid overrides: %w", err)
	}
	return conf, nil
}

// -----------------------------------------------------------------------------

// setupJournal opens the snapshot journal, or returns nil when storage is off
func setupJournal(conf *config.Config, appLogger *logger.Logger) (interfaces.IDatabase, error) {
	journal, err := storage.NewJournal(conf, logger.NewLogger(conf, "Journal"))
	if err != nil {
		return nil, err
	}
	if journal == nil {
		appLogger.Info("Snapshot journal disabled")
		return nil, nil
	}

	if err := journal.Initialize(); err != nil {
		return nil, err
	}
	if err := journal.CleanupOldData(); err != nil {
		appLogger.Warning("Journal cleanup failed: %v", err)
	}

	appLogger.Info("Snapshot journal enabled (%s)", conf.Storage.DBType)
	return journal, nil
}

// -----------------------------------------------------------------------------

// setupHealth binds the gRPC health server, or returns nil when grpc_port is 0
func setupHealth(conf *config.Config) (*grpc_control.HealthReporter, error) {
	if conf.GrpcPort == 0 {
		return nil, nil
	}

	reporter := grpc_control.NewHealthReporter(conf, logger.NewLogger(conf, "Health"))
	if err := reporter.Listen(); err != nil {
		return nil, err
	}
	return reporter, nil
}
