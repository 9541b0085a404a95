package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"sales-dashboard/src/logger"

	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "sales-simulator",
		Usage: "Local dashboard backend fed by a CSV of random sales",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address",
				Value: "127.0.0.1:8000",
			},
			&cli.StringFlag{
				Name:  "csv",
				Usage: "CSV file with timestamp,produto,vendas,estoque rows",
				Value: "./data/sample_data.csv",
			},
			&cli.BoolFlag{
				Name:  "write",
				Usage: "append random rows to the CSV",
				Value: true,
			},
			&cli.DurationFlag{
				Name:  "min-delay",
				Usage: "shortest pause between generated rows",
				Value: 3 * time.Second,
			},
			&cli.DurationFlag{
				Name:  "max-delay",
				Usage: "longest pause between generated rows",
				Value: 8 * time.Second,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "DEBUG, INFO, WARNING or ERROR",
				Value: "INFO",
			},
		},
		Action: runSimulator,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// -----------------------------------------------------------------------------

func runSimulator(ctx context.Context, cmd *cli.Command) error {
	appLogger := logger.NewLogger(cmd.String("log-level"), "Simulator")
	defer appLogger.Sync()

	csvPath := cmd.String("csv")
	if err := os.MkdirAll(filepath.Dir(csvPath), 0755); err != nil {
		return err
	}

	// 1. Store
	store := NewSalesStore(csvPath, logger.NewLogger(cmd.String("log-level"), "SalesStore"))
	if _, err := store.Reload(true); err != nil && !os.IsNotExist(err) {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Watcher and writer
	backend := NewBackend(store, logger.NewLogger(cmd.String("log-level"), "Backend"))
	go func() {
		if err := watchCSV(ctx, store, 5*time.Second, appLogger); err != nil {
			appLogger.Error("Watcher stopped: %v", err)
		}
	}()
	if cmd.Bool("write") {
		writer := NewRowWriter(csvPath, store.LastStock(), cmd.Duration("min-delay"), cmd.Duration("max-delay"), appLogger)
		go writer.Run(ctx)
	}

	// 3. HTTP
	httpServer := &http.Server{Addr: cmd.String("addr"), Handler: backend.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	appLogger.Info("Simulator listening on http://%s (csv %s)", httpServer.Addr, csvPath)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
