package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"stockfolio/internal/analytics"
	"stockfolio/internal/config"
	"stockfolio/internal/logging"
	"stockfolio/internal/service"
	"stockfolio/internal/store"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&generateCmd{}, "")
	commander.Register(&summaryCmd{}, "")
	commander.Register(&seedCmd{}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// app wires the shared dependencies of the subcommands.
type app struct {
	cfg    *config.Config
	log    *logrus.Logger
	repo   *store.Repo
	engine *analytics.Engine
}

func newApp(ledgerPath, outPath string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if ledgerPath != "" {
		cfg.TransactionsPath = ledgerPath
	}
	if outPath != "" {
		cfg.OutputPath = outPath
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	prices := service.NewYahooPriceService(cfg.Yahoo(), log)
	return &app{
		cfg:    cfg,
		log:    log,
		repo:   store.New(cfg.TransactionsPath, cfg.OutputPath, cfg.MirrorPath, log),
		engine: analytics.New(prices, logging.Engine(log, cfg.EngineDebug)),
	}, nil
}
