package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

const version = "1.0.0"

func main() {
	app := &cli.Command{
		Name:    "sales-dashboard",
		Usage:   "Live sales and stock dashboard agent",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Value:   "../../config/default.yaml",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "override backend.base_url",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override log_level (DEBUG, INFO, WARNING, ERROR)",
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			snapshotCommand(),
			writeConfigCommand(),
		},
		Action: runAgent,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
