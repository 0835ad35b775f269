package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"stockfolio/internal/models"
)

// Snapshot is the position of a holding right after one of its trades.
type Snapshot struct {
	Date string          `json:"date"`
	Lots int64           `json:"lots"`
	Cost decimal.Decimal `json:"cost"`
}

// State returns the snapshot as a HoldingState.
func (s Snapshot) State() HoldingState { return HoldingState{Lots: s.Lots, Cost: s.Cost} }

// History is the ordered list of snapshots of one holding.
type History []Snapshot

// HeldOn returns the last snapshot dated on or before day where lots were
// held. The scan stops at the first snapshot dated after day; snapshots with
// malformed dates are skipped.
func (h History) HeldOn(day time.Time) (Snapshot, bool) {
	var found Snapshot
	ok := false
	for _, s := range h {
		ts, valid := models.ParseDay(s.Date)
		if !valid {
			continue
		}
		if ts.After(day) {
			break
		}
		if s.Lots > 0 {
			found, ok = s, true
		}
	}
	return found, ok
}

// Peak returns the snapshot with the largest lot count, earliest on ties.
func (h History) Peak() (Snapshot, bool) {
	var peak Snapshot
	ok := false
	for _, s := range h {
		if s.Lots > 0 && (!ok || s.Lots > peak.Lots) {
			peak, ok = s, true
		}
	}
	return peak, ok
}
