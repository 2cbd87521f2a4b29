// Command fitcircle serves the FitCircle API and inspects the local store
// and the document store from the command line.
//
// @title        FitCircle API
// @version      1.0
// @description  Local application state, live document bindings and their websocket streams.
// @BasePath     /api/v1
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/tbourn/go-fitcircle/internal/config"
	"github.com/tbourn/go-fitcircle/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	if err := newRoot().Run(context.Background(), args); err != nil {
		fmt.Fprintln(os.Stderr, "fitcircle:", err)
		os.Exit(1)
	}
}

func newRoot() *cli.Command {
	return &cli.Command{
		Name:    "fitcircle",
		Usage:   "FitCircle API server and store tools",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "dotenv file loaded before configuration (missing is fine)"},
		},
		Commands: []*cli.Command{
			serveCommand(),
			stateCommand(),
			logoutCommand(),
			getCommand(),
			watchCommand(),
			putCommand(),
		},
	}
}

// loadConfig reads the dotenv file named by --env-file, then the
// environment, and installs the global logger.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	if f := cmd.String("env-file"); f != "" {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return config.Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty)
	log.Debug().Str("version", version).Str("remote_backend", cfg.RemoteBackend).Str("state_backend", cfg.StateBackend).Msg("configuration loaded")
	return cfg, nil
}
