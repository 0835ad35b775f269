package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"stockfolio/internal/analytics"
	"stockfolio/internal/ledger"
	"stockfolio/internal/models"
	"stockfolio/internal/parser"
)

// Repo reads the transaction ledger and publishes snapshots as JSON files.
type Repo struct {
	ledgerPath string
	outPath    string
	mirrorPath string
	log        *logrus.Logger
}

// New returns a Repo over the ledger at ledgerPath. Snapshots are written to
// outPath, and also to mirrorPath when its directory already exists.
func New(ledgerPath, outPath, mirrorPath string, log *logrus.Logger) *Repo {
	return &Repo{ledgerPath: ledgerPath, outPath: outPath, mirrorPath: mirrorPath, log: log}
}

func (r *Repo) LedgerPath() string { return r.ledgerPath }

// Transactions loads the whole ledger in file order.
func (r *Repo) Transactions(ctx context.Context) ([]models.TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	trxs, err := parser.ReadTransactions(r.ledgerPath, r.log)
	if err != nil {
		return nil, err
	}
	r.log.Debugf("loaded %d transactions from %s", len(trxs), r.ledgerPath)
	return trxs, nil
}

// HeldCodes lists the codes with lots currently held.
func (r *Repo) HeldCodes(ctx context.Context) ([]string, error) {
	trxs, err := r.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	l := ledger.Replay(trxs, nil)
	res := []string{}
	for _, code := range l.Codes() {
		if l.State(code).Lots > 0 {
			res = append(res, code)
		}
	}
	return res, nil
}

// SaveSnapshot writes snap and returns the paths written.
func (r *Repo) SaveSnapshot(snap analytics.Snapshot) ([]string, error) {
	b, err := Encode(snap)
	if err != nil {
		return nil, err
	}
	if err := writeFile(r.outPath, b, true); err != nil {
		return nil, err
	}
	written := []string{r.outPath}

	if r.mirrorPath != "" {
		if _, err := os.Stat(filepath.Dir(r.mirrorPath)); err == nil {
			if err := writeFile(r.mirrorPath, b, false); err != nil {
				return written, err
			}
			written = append(written, r.mirrorPath)
		} else if !errors.Is(err, os.ErrNotExist) {
			r.log.Warnf("mirror directory for %s: %v", r.mirrorPath, err)
		}
	}
	return written, nil
}

// Encode renders snap as indented JSON, leaving the feed's markup unescaped.
func Encode(snap analytics.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatIDR renders an amount in rupiah for humans.
func FormatIDR(d decimal.Decimal) string {
	return money.New(d.Shift(2).IntPart(), money.IDR).Display()
}

func writeFile(path string, b []byte, mkdir bool) error {
	if mkdir {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
