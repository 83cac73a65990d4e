package main

import (
	"context"
	"fmt"
	"os"

	"foosilator/config"
	"foosilator/fixtures"
	"foosilator/logging"
	"foosilator/packages/core/utils"

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

	ctx := context.Background()
	f := fixtures.NewFixtures(db, utils.NewEloEngine(cfg.KFactor), cfg.DefaultRating)

	switch command := os.Args[1]; command {
	case "generate":
		if err := f.GenerateTestData(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to generate fixtures")
		}
	case "clear":
		if err := f.ClearAllData(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to clear fixtures")
		}
	case "regenerate":
		if err := f.ClearAllData(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to clear fixtures")
		}
		if err := f.GenerateTestData(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to generate fixtures")
		}
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/fixtures generate    - Generate a demo league with players and matches")
	fmt.Println("  go run ./cmd/fixtures clear       - Clear all data")
	fmt.Println("  go run ./cmd/fixtures regenerate  - Clear and regenerate all data")
}
