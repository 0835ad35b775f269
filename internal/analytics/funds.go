package analytics

import (
	"github.com/shopspring/decimal"

	"stockfolio/internal/models"
)

// FundMetrics splits the capital topped up between holdings and cash.
type FundMetrics struct {
	TopUp       decimal.Decimal
	InvestedPct decimal.Decimal
	CashPct     decimal.Decimal
}

// BuildFunds splits the capital topped up into invested and idle cash.
func (e *Engine) BuildFunds(trxs []models.TransactionRecord, p Portfolio) FundMetrics {
	topup := sumKind(trxs, models.KindTopUp)
	return FundMetrics{
		TopUp:       topup,
		InvestedPct: percentOf(p.GrandTotal, topup),
		CashPct:     percentOf(topup.Sub(p.GrandTotal), topup),
	}
}
