package main

import (
	"context"
	"fmt"
	"time"

	"sales-dashboard/src/analysis"
	"sales-dashboard/src/console"
	livesync "sales-dashboard/src/live_sync"
	"sales-dashboard/src/logger"
	"sales-dashboard/src/network"
	"sales-dashboard/src/render"
	"sales-dashboard/src/server"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

func snapshotCommand() *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Pull the current snapshot and history once and print them",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "skip-history",
				Usage: "do not pull the history batch",
			},
		},
		Action: printSnapshot,
	}
}

// -----------------------------------------------------------------------------

func printSnapshot(ctx context.Context, cmd *cli.Command) error {
	conf, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	appLogger := logger.NewLogger(conf, conf.Name)
	defer appLogger.Sync()

	client := network.NewBackendClient(conf, uuid.NewString(), logger.NewLogger(conf, "Backend"))

	ctx, cancel := context.WithTimeout(ctx, conf.RequestTimeout()*time.Duration(conf.Backend.MaxRetries+2))
	defer cancel()

	acc, err := client.FetchSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot pull failed: %w", err)
	}

	// The view server doubles as an in-memory display; it is never started here
	view := server.NewViewServer(conf, logger.NewLogger(conf, "ViewServer"))
	render.NewSnapshotRenderer(view).Render(acc.Snapshot)
	view.SetStatus(livesync.StatusPolling, livesync.ClassOK)
	fmt.Print(console.RenderView(view.CurrentView()))

	if cmd.Bool("skip-history") {
		return nil
	}

	points, err := client.FetchHistory(ctx, conf.Backend.HistoryLimit)
	if err != nil {
		return fmt.Errorf("history pull failed: %w", err)
	}

	set, ok := (&analysis.SeriesBuilder{}).Build(points)
	if !ok {
		fmt.Println("Histórico: sem dados")
		return nil
	}
	fmt.Printf("Histórico: %d pontos, %d instantes, %d produtos\n", len(points), len(set.Labels), len(set.Products))
	for _, prod := range set.Products {
		sales := set.Sales[prod]
		total := 0.0
		for _, v := range sales {
			total += v
		}
		fmt.Printf("  %-20s vendas=%s\n", prod, render.FormatNumber(total))
	}
	return nil
}
