package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func writeConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "write-config",
		Usage: "Write the effective configuration (file plus overrides) as YAML",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "out",
				Aliases:  []string{"o"},
				Usage:    "destination file",
				Required: true,
			},
		},
		Action: writeConfig,
	}
}

// -----------------------------------------------------------------------------

func writeConfig(ctx context.Context, cmd *cli.Command) error {
	conf, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := conf.Save(cmd.String("out")); err != nil {
		return err
	}
	fmt.Printf("Configuration written to %s\n", cmd.String("out"))
	return nil
}
