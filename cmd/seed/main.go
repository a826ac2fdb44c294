package main

import (
	"fmt"
	"os"

	"github.com/abzalbek/gigdesk-ledger/internal/config"
	"github.com/abzalbek/gigdesk-ledger/internal/db"
	"github.com/abzalbek/gigdesk-ledger/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	if err := db.Seed(database); err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
	}
	log.Info().Msg("sample data loaded")
}
