package analytics

import (
	"github.com/shopspring/decimal"

	"stockfolio/internal/ledger"
	"stockfolio/internal/models"
)

// ProfitMetrics holds the money amounts and the percentages derived from them.
type ProfitMetrics struct {
	Dividend     decimal.Decimal
	TopUp        decimal.Decimal
	RealizedPL   decimal.Decimal
	UnrealizedPL decimal.Decimal

	DividendPct    decimal.Decimal
	UnrealizedPct  decimal.Decimal
	RealizedPct    decimal.Decimal
	TotalProfitPct decimal.Decimal
}

// BuildProfit computes dividend, realized and unrealized returns. Every
// percentage is relative to the capital topped up, except unrealized which is
// relative to the value of the open holdings.
func (e *Engine) BuildProfit(trxs []models.TransactionRecord, p Portfolio) ProfitMetrics {
	return e.buildProfit(trxs, p, ledger.Replay(trxs, e.log))
}

func (e *Engine) buildProfit(trxs []models.TransactionRecord, p Portfolio, l *ledger.Ledger) ProfitMetrics {
	m := ProfitMetrics{
		Dividend:     sumKind(trxs, models.KindDividend),
		TopUp:        sumKind(trxs, models.KindTopUp),
		RealizedPL:   l.Realized(),
		UnrealizedPL: decimal.Zero,
	}
	for _, it := range p.Items {
		m.UnrealizedPL = m.UnrealizedPL.Add(it.UnrealizedPL())
	}

	m.DividendPct = percentOf(m.Dividend, m.TopUp)
	m.UnrealizedPct = percentOf(m.UnrealizedPL, p.TotalValue())
	m.RealizedPct = percentOf(m.RealizedPL, m.TopUp)
	m.TotalProfitPct = percentOf(m.UnrealizedPL.Add(m.RealizedPL).Add(m.Dividend), m.TopUp)
	return m
}
