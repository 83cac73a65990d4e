package main

import (
	"fmt"
	"os"
	"strconv"

	"foosilator/config"
	"foosilator/logging"
	"foosilator/migrations"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Invalid configuration:", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.IsDevelopment())

	if len(os.Args) < 2 {
		printUsage()
		return
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	migrator, err := migrations.NewDefaultMigrator(db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare migrator")
	}

	switch command := os.Args[1]; command {
	case "migrate":
		if err := migrator.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
	case "rollback":
		steps := 1
		if len(os.Args) > 2 {
			if s, err := strconv.Atoi(os.Args[2]); err == nil {
				steps = s
			}
		}
		if err := migrator.Rollback(steps); err != nil {
			log.Fatal().Err(err).Msg("Rollback failed")
		}
	case "status":
		showStatus(migrator)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/migrate migrate          - Run pending migrations")
	fmt.Println("  go run ./cmd/migrate rollback [steps] - Rollback migration batches (default: 1)")
	fmt.Println("  go run ./cmd/migrate status           - Show migration status")
}

func showStatus(migrator *migrations.Migrator) {
	applied, err := migrator.Status()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read migration status")
	}
	pending, err := migrator.Pending()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read pending migrations")
	}

	if len(applied) == 0 {
		fmt.Println("No migrations have been run yet.")
	} else {
		fmt.Println("Batch | Name")
		fmt.Println("------|-----")
		for _, m := range applied {
			fmt.Printf("%-5d | %s\n", m.Batch, m.Name)
		}
	}

	for _, name := range pending {
		fmt.Printf("%-5s | %s\n", "-", name)
	}
}
