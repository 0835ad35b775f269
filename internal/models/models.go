package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SharesPerLot is the number of shares in one trading lot.
const SharesPerLot = 100

// DateLayout is the layout of ledger dates (day/month/year).
const DateLayout = "02/01/2006"

// Kind is the type column of a ledger line.
type Kind string

const (
	KindTransaction Kind = "transaction"
	KindDividend    Kind = "dividen"
	KindTopUp       Kind = "topup"
)

// ParseKind maps a ledger type column onto a Kind. Both the ledger's own
// "dividen" spelling and "dividend" are accepted.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "transaction":
		return KindTransaction, nil
	case "dividen", "dividend":
		return KindDividend, nil
	case "topup", "top-up":
		return KindTopUp, nil
	default:
		return "", fmt.Errorf("unknown transaction type: %q", s)
	}
}

// TransactionRecord is one normalized ledger line.
type TransactionRecord struct {
	Date   string          `json:"date"`
	Kind   Kind            `json:"type"`
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
	Lot    int64           `json:"lot"`
	Price  int64           `json:"price"`
}

// IsTrade reports whether the record moves lots of a holding.
func (t TransactionRecord) IsTrade() bool {
	return t.Kind == KindTransaction && t.Code != ""
}

// IsBuy reports whether the record is a cash outflow.
func (t TransactionRecord) IsBuy() bool { return t.Amount.IsNegative() }

// IsSell reports whether the record is a cash inflow.
func (t TransactionRecord) IsSell() bool { return t.Amount.IsPositive() }

// Day resolves Date to midnight UTC. Out-of-range components roll over the
// way time.Date normalizes them. ok is false for anything that is not three
// numeric parts separated by '/'.
func (t TransactionRecord) Day() (day time.Time, ok bool) {
	return ParseDay(t.Date)
}

// ParseDay resolves a dd/mm/yyyy string, see TransactionRecord.Day.
func ParseDay(s string) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, false
		}
		n[i] = v
	}
	return time.Date(n[2], time.Month(n[1]), n[0], 0, 0, 0, 0, time.UTC), true
}
