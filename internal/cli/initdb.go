package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aniping/aniping/internal/database"
)

// InitCommand creates (or resets) the local SQLite database.
type InitCommand struct {
	DatabasePath string
	Reset        bool
}

// NewInitCommand creates a new InitCommand.
func NewInitCommand() *InitCommand {
	return &InitCommand{}
}

// ParseFlags parses command line flags.
func (cmd *InitCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", "./aniping.db", "Path to the local database file")
	fs.BoolVar(&cmd.Reset, "reset", false, "Drop the existing database file and start fresh")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s init [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create the local database and its schema. Running it against an\n")
		fmt.Fprintf(os.Stderr, "existing database is harmless; existing rows are kept.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s init\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s init -db ~/aniping/aniping.db\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s init -reset\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the init command.
func (cmd *InitCommand) Run() error {
	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	cmd.DatabasePath = absDBPath

	var db *database.Database
	if cmd.Reset {
		fmt.Printf("Resetting database at %s\n", cmd.DatabasePath)
		db, err = database.Reset(cmd.DatabasePath)
	} else {
		db, err = database.New(cmd.DatabasePath)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	fmt.Printf("Database ready at %s\n", cmd.DatabasePath)
	return nil
}
