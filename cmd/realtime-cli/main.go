package main

import (
	"context"
	"os"

	"content-realtime-api/internal/logging"

	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "realtime-cli",
		Usage: "Talk to the realtime event server from a terminal",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level := "info"
			if c.Bool("debug") {
				level = "debug"
			}
			logging.Init(logging.Config{Level: level, Format: "console"})
			return ctx, nil
		},
		Commands: []*cli.Command{
			TokenCommand(),
			WatchCommand(),
			SendCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logging.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
