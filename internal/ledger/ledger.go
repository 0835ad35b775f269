// Package ledger tracks weighted-average cost basis per holding.
//
// Cost is kept at per-share price times lots; the shares-per-lot multiplier is
// applied only when a money value is produced (realized P/L, holding value).
package ledger

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"stockfolio/internal/logging"
	"stockfolio/internal/models"
)

var sharesPerLot = decimal.NewFromInt(models.SharesPerLot)

// HoldingState is the running position of one holding.
type HoldingState struct {
	Lots int64           `json:"lots"`
	Cost decimal.Decimal `json:"cost"`
}

// AvgPrice is the average per-share purchase price, zero when nothing is held.
func (s HoldingState) AvgPrice() decimal.Decimal {
	if s.Lots <= 0 {
		return decimal.Zero
	}
	return s.Cost.Div(decimal.NewFromInt(s.Lots))
}

// Value is the money value of the position at its average cost.
func (s HoldingState) Value() decimal.Decimal {
	if s.Lots <= 0 {
		return decimal.Zero
	}
	// avg × lots × 100 without the rounding of the intermediate average
	return s.Cost.Mul(sharesPerLot)
}

// Ledger replays trades in the order they are applied. It is not safe for
// concurrent use.
type Ledger struct {
	log      logrus.FieldLogger
	codes    []string
	holdings map[string]*HoldingState
	history  map[string]History
	realized decimal.Decimal
}

func New(log logrus.FieldLogger) *Ledger {
	if log == nil {
		log = logging.Discard()
	}
	return &Ledger{
		log:      log,
		holdings: map[string]*HoldingState{},
		history:  map[string]History{},
	}
}

// Replay applies every record of trxs in order.
func Replay(trxs []models.TransactionRecord, log logrus.FieldLogger) *Ledger {
	l := New(log)
	for _, trx := range trxs {
		l.Apply(trx)
	}
	return l
}

// Apply folds one record into the ledger and returns the realized P/L it
// produced. Records that are not trades are ignored and report applied=false.
func (l *Ledger) Apply(trx models.TransactionRecord) (realized decimal.Decimal, applied bool) {
	if !trx.IsTrade() {
		return decimal.Zero, false
	}
	st, ok := l.holdings[trx.Code]
	if !ok {
		st = &HoldingState{Cost: decimal.Zero}
		l.holdings[trx.Code] = st
		l.codes = append(l.codes, trx.Code)
	}

	realized = decimal.Zero
	switch {
	case trx.IsBuy():
		st.Lots += trx.Lot
		st.Cost = st.Cost.Add(decimal.NewFromInt(trx.Lot * trx.Price))
	case trx.IsSell() && trx.Lot > 0:
		realized = l.sell(st, trx)
	}

	l.history[trx.Code] = append(l.history[trx.Code], Snapshot{Date: trx.Date, Lots: st.Lots, Cost: st.Cost})

	entry := l.log.WithFields(logrus.Fields{
		"code": trx.Code,
		"date": trx.Date,
		"lots": st.Lots,
		"cost": st.Cost.String(),
	})
	if st.Lots > 0 {
		entry = entry.WithFields(logrus.Fields{
			"avg_cost":    st.AvgPrice().String(),
			"total_value": st.Value().String(),
		})
	}
	entry.Debug("holding updated")
	return realized, true
}

func (l *Ledger) sell(st *HoldingState, trx models.TransactionRecord) decimal.Decimal {
	if st.Lots <= 0 {
		l.log.WithFields(logrus.Fields{"code": trx.Code, "date": trx.Date, "lot": trx.Lot}).
			Debug("sell ignored, nothing held")
		return decimal.Zero
	}
	sold := trx.Lot
	if sold > st.Lots {
		l.log.WithFields(logrus.Fields{"code": trx.Code, "date": trx.Date, "lot": trx.Lot, "held": st.Lots}).
			Warn("sell exceeds held lots, clamping to position")
		sold = st.Lots
	}
	avgBuy := st.AvgPrice()
	soldLots := decimal.NewFromInt(sold)
	pnl := decimal.NewFromInt(trx.Price).Sub(avgBuy).Mul(soldLots).Mul(sharesPerLot)
	l.realized = l.realized.Add(pnl)

	// proportional reduction, equal to avgBuy × sold
	reduction := st.Cost.Mul(soldLots).Div(decimal.NewFromInt(st.Lots))
	st.Lots -= sold
	if st.Lots == 0 {
		st.Cost = decimal.Zero
	} else {
		st.Cost = st.Cost.Sub(reduction)
	}
	return pnl
}

// Realized is the total realized P/L over every sell applied so far.
func (l *Ledger) Realized() decimal.Decimal { return l.realized }

// State returns the current position of code.
func (l *Ledger) State(code string) HoldingState {
	if st, ok := l.holdings[code]; ok {
		return *st
	}
	return HoldingState{Cost: decimal.Zero}
}

// History returns the snapshots recorded for code, oldest first.
func (l *Ledger) History(code string) History { return l.history[code] }

// Codes lists every traded code in first-seen order.
func (l *Ledger) Codes() []string {
	out := make([]string, len(l.codes))
	copy(out, l.codes)
	return out
}
