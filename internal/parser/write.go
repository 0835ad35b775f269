package parser

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"stockfolio/internal/models"
)

// WriteTransactions writes trxs as a ledger CSV readable by DecodeTransactions.
func WriteTransactions(out io.Writer, trxs []models.TransactionRecord) error {
	w := csv.NewWriter(out)
	if err := w.Write(Header); err != nil {
		return err
	}
	for _, t := range trxs {
		row := []string{t.Date, string(t.Kind), t.Code, FormatAmount(t.Amount), "", ""}
		if t.Kind == models.KindTransaction {
			row[4] = strconv.FormatInt(t.Lot, 10)
			row[5] = strconv.FormatInt(t.Price, 10)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// FormatAmount renders d in the ledger convention, e.g. "(1.250.000,50)".
func FormatAmount(d decimal.Decimal) string {
	abs := d.Abs()
	whole := abs.Truncate(0)
	s := groupThousands(whole.String())
	if frac := abs.Sub(whole); !frac.IsZero() {
		s += "," + strings.TrimPrefix(frac.String(), "0.")
	}
	if d.IsNegative() {
		return "(" + s + ")"
	}
	return s
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
