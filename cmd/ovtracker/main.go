package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/ovtracker-map/internal/common/config"
	"github.com/ovtracker-map/internal/common/logger"
)

const usage = `usage: ovtracker <command> [flags]

commands:
  geocode   resolve new stop names from the trips CSV into the stop store
  stats     print trip statistics for a filter as JSON
  serve     serve statistics to the map front-end over HTTP
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// .env is optional; the environment wins over it
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	loggerConfig := logger.DefaultConfig()
	loggerConfig.Level = logger.ParseLogLevel(cfg.Logging.Level)
	loggerConfig.FilePath = cfg.Logging.FilePath
	loggerConfig.File = cfg.Logging.FilePath != ""
	log := logger.FromConfig(loggerConfig)

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "geocode":
		err = runGeocode(ctx, cfg, log, args)
	case "stats":
		err = runStats(ctx, cfg, log, args)
	case "serve":
		err = runServe(ctx, cfg, log, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal("Command failed", "command", cmd, "error", err)
	}
}
