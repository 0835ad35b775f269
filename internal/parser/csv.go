package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"stockfolio/internal/logging"
	"stockfolio/internal/models"
)

// Header is the column layout of a transaction ledger. Columns are read by
// position; the first row is always treated as a header.
var Header = []string{"date", "type", "code", "amount", "lot", "price"}

var ErrShortRow = errors.New("row has too few fields")

// ReadTransactions reads a ledger CSV file. Failing to open or read the file
// is an error; malformed rows are logged and skipped.
func ReadTransactions(path string, log logrus.FieldLogger) ([]models.TransactionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transactions: %w", err)
	}
	defer f.Close()
	return DecodeTransactions(f, log)
}

func DecodeTransactions(in io.Reader, log logrus.FieldLogger) ([]models.TransactionRecord, error) {
	if log == nil {
		log = logging.Discard()
	}
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var out []models.TransactionRecord
	skipped := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				log.Warnf("line %d: %v, row skipped", perr.Line, err)
				skipped++
				continue
			}
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := r.FieldPos(0)

		trx, err := parseRow(rec)
		if err != nil {
			log.Warnf("line %d: %v, row skipped", line, err)
			skipped++
			continue
		}
		if _, ok := trx.Day(); !ok {
			log.Warnf("line %d: unparseable date %q, yield attribution disabled for this row", line, trx.Date)
		}
		out = append(out, trx)
	}
	if skipped > 0 {
		log.Warnf("%d malformed transaction rows skipped", skipped)
	}
	return out, nil
}

func parseRow(rec []string) (models.TransactionRecord, error) {
	if len(rec) < len(Header) {
		return models.TransactionRecord{}, fmt.Errorf("%w: got %d want %d", ErrShortRow, len(rec), len(Header))
	}
	kind, err := models.ParseKind(rec[1])
	if err != nil {
		return models.TransactionRecord{}, err
	}
	amount, err := ParseAmount(rec[3])
	if err != nil {
		return models.TransactionRecord{}, fmt.Errorf("amount: %w", err)
	}
	lot, err := parseCount(rec[4])
	if err != nil {
		return models.TransactionRecord{}, fmt.Errorf("lot: %w", err)
	}
	price, err := parseCount(rec[5])
	if err != nil {
		return models.TransactionRecord{}, fmt.Errorf("price: %w", err)
	}
	return models.TransactionRecord{
		Date:   strings.TrimSpace(rec[0]),
		Kind:   kind,
		Code:   strings.TrimSpace(rec[2]),
		Amount: amount,
		Lot:    lot,
		Price:  price,
	}, nil
}

// ParseAmount parses a ledger amount: '.' separates thousands, ',' marks
// decimals and parentheses mean a negative value. Empty means zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	neg := false
	if strings.HasPrefix(s, "(") || strings.HasSuffix(s, ")") {
		neg = true
		s = strings.Trim(s, "() ")
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// parseCount parses a non-negative whole number, tolerating '.' thousands
// separators.
func parseCount(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ".", "")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %d", v)
	}
	return v, nil
}
