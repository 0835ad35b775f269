package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"stockfolio/internal/store"
)

type generateCmd struct {
	ledgerFile string
	outFile    string
}

func (*generateCmd) Name() string     { return "generate" }
func (*generateCmd) Synopsis() string { return "compute the portfolio snapshot and write it as JSON" }
func (*generateCmd) Usage() string {
	return `stockfolio generate [-l <ledger.csv>] [-o <data.json>]

  Reads the transaction ledger, prices the open holdings and writes the
  snapshot to the output path (and its mirror when the mirror directory exists).
`
}

func (c *generateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerFile, "l", "", "Ledger CSV. Defaults to TRANSACTIONS_CSV.")
	f.StringVar(&c.outFile, "o", "", "Output JSON. Defaults to OUTPUT_PATH.")
}

func (c *generateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(c.ledgerFile, c.outFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return subcommands.ExitUsageError
	}

	trxs, err := a.repo.Transactions(ctx)
	if err != nil {
		a.log.Errorf("read ledger: %v", err)
		return subcommands.ExitFailure
	}

	report := a.engine.Build(ctx, trxs)
	written, err := a.repo.SaveSnapshot(report.Render(time.Now()))
	for _, p := range written {
		fmt.Printf("Portfolio data saved to %s\n", p)
	}
	if err != nil {
		a.log.Errorf("save snapshot: %v", err)
		return subcommands.ExitFailure
	}

	a.log.WithField("grand_total", store.FormatIDR(report.Portfolio.GrandTotal)).
		Infof("%d holdings, %d activity entries", len(report.Portfolio.Items), len(report.Activity))
	return subcommands.ExitSuccess
}
