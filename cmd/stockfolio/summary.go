package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"stockfolio/internal/analytics"
	"stockfolio/internal/store"
)

type summaryCmd struct {
	ledgerFile string
	plain      bool
	html       bool
	feed       int
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolio snapshot in the terminal" }
func (*summaryCmd) Usage() string {
	return `stockfolio summary [-l <ledger.csv>] [-plain | -html] [-n <entries>]

  Computes the snapshot without writing it and renders holdings, profit,
  funds and the most recent activity.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerFile, "l", "", "Ledger CSV. Defaults to TRANSACTIONS_CSV.")
	f.BoolVar(&c.plain, "plain", false, "Print raw markdown.")
	f.BoolVar(&c.html, "html", false, "Print an HTML fragment.")
	f.IntVar(&c.feed, "n", 10, "Number of activity entries to show.")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(c.ledgerFile, "")
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
	md := renderMarkdown(report, report.Render(time.Now()), c.feed)

	switch {
	case c.plain:
		fmt.Print(md)
		return subcommands.ExitSuccess
	case c.html:
		out, err := markdownToHTML(md)
		if err != nil {
			a.log.Errorf("render html: %v", err)
			return subcommands.ExitFailure
		}
		fmt.Print(out)
		return subcommands.ExitSuccess
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Print(md)
		return subcommands.ExitSuccess
	}
	out, err := r.Render(md)
	if err != nil {
		a.log.Warnf("render markdown: %v", err)
		out = md
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}

var markupReplacer = strings.NewReplacer("<strong>", "**", "</strong>", "**")

func renderMarkdown(report analytics.Report, snap analytics.Snapshot, feed int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Portfolio %s\n\n", snap.LastUpdate)

	b.WriteString("| Code | Lots | Avg price | Latest | Profit | Ratio |\n")
	b.WriteString("|:-----|-----:|----------:|-------:|-------:|------:|\n")
	for i, it := range snap.Portfolio {
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %s%% | %s%% |\n",
			it.Code, report.Portfolio.Items[i].TotalLot, it.AvgPrice, it.LatestPrice, it.Profit, it.Ratio)
	}
	fmt.Fprintf(&b, "\nTotal value: **%s**\n\n", store.FormatIDR(report.Portfolio.GrandTotal))

	b.WriteString("## Returns\n\n")
	fmt.Fprintf(&b, "- Dividend: %s%%\n", snap.Profit.Dividend)
	fmt.Fprintf(&b, "- Unrealized: %s%%\n", snap.Profit.UnrealizedPL)
	fmt.Fprintf(&b, "- Realized: %s%%\n", snap.Profit.RealizedPL)
	fmt.Fprintf(&b, "- Total: %s%%\n", snap.Profit.TotalProfit)
	fmt.Fprintf(&b, "- Invested: %s%%, cash: %s%%\n\n", snap.Funds.TotalInvested, snap.Funds.TotalCash)

	b.WriteString("## Activity\n\n")
	for i, a := range snap.Activity {
		if feed >= 0 && i >= feed {
			break
		}
		fmt.Fprintf(&b, "- %s: %s\n", a.Time, markupReplacer.Replace(a.Description))
	}
	return b.String()
}

func markdownToHTML(md string) (string, error) {
	var buf strings.Builder
	gm := goldmark.New(goldmark.WithExtensions(extension.Table))
	if err := gm.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
