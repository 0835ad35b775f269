package analytics

import (
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"

	"stockfolio/internal/ledger"
	"stockfolio/internal/models"
)

const noYield = "0%"

// codes are embedded in the feed markup unescaped
var feedText = bluemonday.StrictPolicy()

type ActivityEntry struct {
	Time        string `json:"time"`
	Description string `json:"description"`
}

// BuildActivity returns the activity feed, most recent first. Each dividend
// is described with its yield on the holding value in effect when it was
// paid.
func (e *Engine) BuildActivity(trxs []models.TransactionRecord) []ActivityEntry {
	return e.buildActivity(trxs, ledger.Replay(trxs, e.log))
}

func (e *Engine) buildActivity(trxs []models.TransactionRecord, l *ledger.Ledger) []ActivityEntry {
	out := make([]ActivityEntry, 0, len(trxs))
	for i := len(trxs) - 1; i >= 0; i-- {
		t := trxs[i]
		code := feedText.Sanitize(t.Code)
		var desc string
		switch t.Kind {
		case models.KindTopUp:
			desc = "melakukan <strong>topup</strong> modal"
		case models.KindTransaction:
			if t.IsBuy() {
				desc = fmt.Sprintf("melakukan <strong>pembelian</strong> saham <strong>%s</strong>", code)
			} else {
				desc = fmt.Sprintf("melakukan <strong>penjualan</strong> saham <strong>%s</strong>", code)
			}
		case models.KindDividend:
			desc = fmt.Sprintf("mendapatkan <strong>dividen</strong> dari <strong>%s</strong> sebesar %s", code, e.dividendYield(t, l))
		}
		out = append(out, ActivityEntry{Time: t.Date, Description: desc})
	}
	return out
}

// dividendYield attributes a dividend to the last held position on or before
// its date, falling back to the largest position ever held.
func (e *Engine) dividendYield(t models.TransactionRecord, l *ledger.Ledger) string {
	if t.Code == "" {
		return noYield
	}
	h := l.History(t.Code)
	if len(h) == 0 {
		return noYield
	}

	var (
		snap  ledger.Snapshot
		found bool
	)
	if day, ok := t.Day(); ok {
		snap, found = h.HeldOn(day)
	}
	if !found {
		snap, found = h.Peak()
	}
	fields := logrus.Fields{"code": t.Code, "date": t.Date, "amount": t.Amount.String()}
	if !found {
		e.log.WithFields(fields).Debug("dividend yield unresolved, holding never owned")
		return noYield
	}

	st := snap.State()
	value := st.Value()
	if !value.IsPositive() {
		e.log.WithFields(fields).WithField("lots", st.Lots).Debug("dividend yield unresolved, no holding value")
		return noYield
	}
	yield := t.Amount.Div(value).Mul(hundred)
	e.log.WithFields(fields).WithFields(logrus.Fields{
		"lots":        st.Lots,
		"avg_price":   st.AvgPrice().String(),
		"stock_value": value.String(),
		"yield":       yield.String(),
		"state_date":  snap.Date,
	}).Debug("dividend yield")
	return formatPct(yield) + "%"
}
