// Package analytics derives the portfolio snapshot from a transaction ledger:
// holdings valuation, profit and fund ratios, and the activity feed.
package analytics

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"stockfolio/internal/logging"
	"stockfolio/internal/models"
	"stockfolio/internal/service"
)

var (
	hundred      = decimal.NewFromInt(100)
	sharesPerLot = decimal.NewFromInt(models.SharesPerLot)
)

// Engine computes snapshots. It keeps no state between calls.
type Engine struct {
	prices service.PriceProvider
	log    logrus.FieldLogger
	now    func() time.Time
}

// New returns an Engine pricing holdings with prices. A nil log discards
// engine output.
func New(prices service.PriceProvider, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logging.Discard()
	}
	return &Engine{prices: prices, log: log, now: time.Now}
}

// percentOf returns part/whole×100, or zero when whole is not positive.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// formatPct renders a percentage with exactly two decimals.
func formatPct(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// sumKind totals the amounts of every record of kind.
func sumKind(trxs []models.TransactionRecord, kind models.Kind) decimal.Decimal {
	total := decimal.Zero
	for _, t := range trxs {
		if t.Kind == kind {
			total = total.Add(t.Amount)
		}
	}
	return total
}
