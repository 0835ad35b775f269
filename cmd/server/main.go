package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"stockfolio/internal/analytics"
	"stockfolio/internal/config"
	"stockfolio/internal/handlers"
	"stockfolio/internal/logging"
	"stockfolio/internal/service"
	"stockfolio/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "text").Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	r := store.New(cfg.TransactionsPath, cfg.OutputPath, cfg.MirrorPath, logger)
	priceSvc := service.NewYahooPriceService(cfg.Yahoo(), logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	priceSvc.Start(ctx, cfg.PriceUpdateInterval, r.HeldCodes)

	engine := analytics.New(priceSvc, logging.Engine(logger, cfg.EngineDebug))
	h := handlers.NewHandler(r, engine, logger)

	rg := gin.Default()
	h.Routes(rg)

	logger.Infof("server starting on :%s, ledger %s", cfg.Port, cfg.TransactionsPath)
	if err := rg.Run(fmt.Sprintf(":%s", cfg.Port)); err != nil {
		logger.Fatalf("server stopped: %v", err)
	}
}
