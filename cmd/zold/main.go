package main

import (
	"fmt"
	"os"

	"zold-node/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

// Version information (set via ldflags during build)
var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "zold",
		Usage: "Manage local zold wallets and sync them with a node",
		Description: `Wallets live in the --home directory as <id>.json files.

Create one with "zold init", pay from it with "zold pay", then "zold push" it to
a node so the payee can "zold pull" the credit.`,
		Version: version,
		Commands: []*cli.Command{
			keygenCommand(),
			initCommand(),
			listCommand(),
			showCommand(),
			balanceCommand(),
			invoiceCommand(),
			payCommand(),
			pushCommand(),
			pullCommand(),
		},
		// Global flags available to all commands
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "home",
				Usage:   "Directory holding wallet files",
				EnvVars: []string{"ZOLD_HOME"},
				Value:   ".",
			},
			&cli.StringFlag{
				Name:    "node",
				Usage:   "Base URL of the node to push to and pull from",
				EnvVars: []string{"ZOLD_NODE"},
				Value:   "http://localhost:4096",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log requests to stderr",
			},
		},
	}
}

func homeOf(c *cli.Context) home {
	return home{dir: c.String("home")}
}

func cliLogger(c *cli.Context) zerolog.Logger {
	level := "error"
	if c.Bool("verbose") {
		level = "debug"
	}
	return logger.NewWithWriter(level, c.App.ErrWriter)
}
