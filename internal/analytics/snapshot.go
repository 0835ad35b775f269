package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"stockfolio/internal/ledger"
	"stockfolio/internal/models"
)

// LastUpdateLayout formats Snapshot.LastUpdate as "15:04 02/01/2006".
const LastUpdateLayout = "15:04 " + models.DateLayout

// ItemView is the published form of a PortfolioItem.
type ItemView struct {
	Code        string `json:"code"`
	AvgPrice    int64  `json:"avg_price"`
	LatestPrice int64  `json:"latest_price"`
	Profit      string `json:"profit"`
	Ratio       string `json:"ratio"`
}

// ProfitView is the published form of ProfitMetrics.
type ProfitView struct {
	Dividend     string `json:"dividend"`
	UnrealizedPL string `json:"unrealized_pl"`
	RealizedPL   string `json:"realized_pl"`
	TotalProfit  string `json:"total_profit"`
}

// FundView is the published form of FundMetrics.
type FundView struct {
	TotalInvested string `json:"totalInvested"`
	TotalCash     string `json:"totalCash"`
}

// Snapshot is the published portfolio document.
type Snapshot struct {
	Portfolio  []ItemView      `json:"portfolio"`
	GrandTotal json.Number     `json:"grand_total"`
	Profit     ProfitView      `json:"profit"`
	Funds      FundView        `json:"funds"`
	Activity   []ActivityEntry `json:"activity"`
	LastUpdate string          `json:"last_update"`
}

// Report bundles the numeric results a Snapshot is rendered from.
type Report struct {
	Portfolio Portfolio
	Profit    ProfitMetrics
	Funds     FundMetrics
	Activity  []ActivityEntry
}

// Build runs every aggregation over trxs. The ledger is replayed once and
// shared by the profit and activity steps.
func (e *Engine) Build(ctx context.Context, trxs []models.TransactionRecord) Report {
	l := ledger.Replay(trxs, e.log)
	p := e.BuildPortfolio(ctx, trxs)
	r := Report{
		Portfolio: p,
		Profit:    e.buildProfit(trxs, p, l),
		Funds:     e.BuildFunds(trxs, p),
		Activity:  e.buildActivity(trxs, l),
	}
	e.log.WithFields(logrus.Fields{
		"items":        len(p.Items),
		"grand_total":  p.GrandTotal.String(),
		"dividend":     formatPct(r.Profit.DividendPct),
		"total_profit": formatPct(r.Profit.TotalProfitPct),
		"activity":     len(r.Activity),
	}).Debug("snapshot summary")
	return r
}

// Snapshot builds the report and renders it.
func (e *Engine) Snapshot(ctx context.Context, trxs []models.TransactionRecord) Snapshot {
	return e.Build(ctx, trxs).Render(e.now())
}

// Render formats the report for publishing, stamping it with at.
func (r Report) Render(at time.Time) Snapshot {
	items := make([]ItemView, 0, len(r.Portfolio.Items))
	for _, it := range r.Portfolio.Items {
		items = append(items, ItemView{
			Code:        it.Code,
			AvgPrice:    it.AvgPrice,
			LatestPrice: it.LatestPrice,
			Profit:      formatPct(it.ProfitPct),
			Ratio:       formatPct(it.RatioPct),
		})
	}
	activity := r.Activity
	if activity == nil {
		activity = []ActivityEntry{}
	}
	return Snapshot{
		Portfolio:  items,
		GrandTotal: json.Number(r.Portfolio.GrandTotal.String()),
		Profit: ProfitView{
			Dividend:     formatPct(r.Profit.DividendPct),
			UnrealizedPL: formatPct(r.Profit.UnrealizedPct),
			RealizedPL:   formatPct(r.Profit.RealizedPct),
			TotalProfit:  formatPct(r.Profit.TotalProfitPct),
		},
		Funds: FundView{
			TotalInvested: formatPct(r.Funds.InvestedPct),
			TotalCash:     formatPct(r.Funds.CashPct),
		},
		Activity:   activity,
		LastUpdate: at.Format(LastUpdateLayout),
	}
}
