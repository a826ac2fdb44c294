package main

import (
	"fmt"
	"os"

	"github.com/abzalbek/gigdesk-ledger/internal/config"
	"github.com/abzalbek/gigdesk-ledger/internal/db"
	"github.com/abzalbek/gigdesk-ledger/internal/excel"
	httphandler "github.com/abzalbek/gigdesk-ledger/internal/http"
	"github.com/abzalbek/gigdesk-ledger/internal/http/middleware"
	"github.com/abzalbek/gigdesk-ledger/internal/logger"
	"github.com/abzalbek/gigdesk-ledger/internal/pdf"
	"github.com/abzalbek/gigdesk-ledger/internal/repository"
	"github.com/abzalbek/gigdesk-ledger/internal/service"
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

	ledgerRepo := repository.NewLedgerRepository(database)
	queryRepo := repository.NewQueryRepository(database)
	reportRepo := repository.NewReportRepository(database)

	paymentService := service.NewPaymentService(ledgerRepo, cfg)
	ledgerService := service.NewLedgerService(queryRepo)
	reportService := service.NewReportService(reportRepo, excel.NewGenerator(), pdf.NewGenerator(), cfg)

	handler := httphandler.NewHandler(ledgerService, paymentService, reportService, log)
	profileMiddleware := middleware.Profile(queryRepo)
	router := httphandler.NewRouter(handler, profileMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting ledger service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
