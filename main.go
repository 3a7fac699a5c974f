package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/aniping/aniping/internal/cli"
	"github.com/aniping/aniping/internal/config"
	"github.com/aniping/aniping/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// Optional .env file for local overrides.
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// No arguments: run the interactive menu.
	if len(os.Args) < 2 {
		cfg := config.NewConfig()
		entrypoint.RunMenu(cfg, log)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "serve":
		cfg := config.NewConfig()
		entrypoint.Run(cfg, log, Version)

	case "menu":
		cfg := config.NewConfig()
		entrypoint.RunMenu(cfg, log)

	case "init":
		cmd := cli.NewInitCommand()
		if err := cmd.ParseFlags(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := cmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "ingest":
		cmd := cli.NewIngestCommand()
		if err := cmd.ParseFlags(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := cmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [command] [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  menu    Run the interactive terminal shell (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  serve   Start the HTTP API server with background workers\n")
	fmt.Fprintf(os.Stderr, "  init    Create (or reset with -reset) the local database\n")
	fmt.Fprintf(os.Stderr, "  ingest  Fetch one anime record into the local catalog\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
