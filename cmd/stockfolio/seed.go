package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"stockfolio/internal/models"
	"stockfolio/internal/parser"
)

type seedCmd struct {
	outFile string
	force   bool
}

func (*seedCmd) Name() string     { return "seed" }
func (*seedCmd) Synopsis() string { return "write a demo transaction ledger" }
func (*seedCmd) Usage() string {
	return `stockfolio seed [-o <ledger.csv>] [-f]

  Writes a small demo ledger (top-ups, trades and a dividend) so the other
  commands have something to work on. Existing files are kept unless -f is set.
`
}

func (c *seedCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outFile, "o", "", "Ledger CSV to create. Defaults to TRANSACTIONS_CSV.")
	f.BoolVar(&c.force, "f", false, "Overwrite an existing ledger.")
}

func (c *seedCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(c.outFile, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return subcommands.ExitUsageError
	}
	path := a.repo.LedgerPath()

	if _, err := os.Stat(path); err == nil && !c.force {
		a.log.Errorf("%s already exists, use -f to overwrite", path)
		return subcommands.ExitFailure
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		a.log.Errorf("create ledger directory: %v", err)
		return subcommands.ExitFailure
	}

	f, err := os.Create(path)
	if err != nil {
		a.log.Errorf("create ledger: %v", err)
		return subcommands.ExitFailure
	}
	defer f.Close()

	trxs := demoLedger()
	if err := parser.WriteTransactions(f, trxs); err != nil {
		a.log.Errorf("write ledger: %v", err)
		return subcommands.ExitFailure
	}
	a.log.Infof("seeded %d transactions into %s", len(trxs), path)
	return subcommands.ExitSuccess
}

func demoLedger() []models.TransactionRecord {
	trade := func(date, code string, lot, price int64, sell bool) models.TransactionRecord {
		amt := decimal.NewFromInt(lot * price * models.SharesPerLot)
		if !sell {
			amt = amt.Neg()
		}
		return models.TransactionRecord{Date: date, Kind: models.KindTransaction, Code: code, Amount: amt, Lot: lot, Price: price}
	}
	cash := func(date string, kind models.Kind, code string, amount int64) models.TransactionRecord {
		return models.TransactionRecord{Date: date, Kind: kind, Code: code, Amount: decimal.NewFromInt(amount)}
	}

	return []models.TransactionRecord{
		cash("02/01/2024", models.KindTopUp, "", 25_000_000),
		trade("03/01/2024", "BBCA", 10, 9_400, false),
		trade("05/01/2024", "TLKM", 20, 3_950, false),
		trade("12/02/2024", "ASII", 15, 5_300, false),
		cash("01/03/2024", models.KindTopUp, "", 12_500_000),
		trade("04/03/2024", "BBCA", 5, 9_850, false),
		cash("20/03/2024", models.KindDividend, "BBCA", 358_125),
		trade("15/04/2024", "TLKM", 20, 3_600, true),
		cash("24/05/2024", models.KindDividend, "ASII", 159_000),
		trade("10/06/2024", "BMRI", 8, 6_125, false),
		trade("22/07/2024", "ASII", 5, 4_950, true),
	}
}
