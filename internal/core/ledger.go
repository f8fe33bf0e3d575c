package core

// ledger.go holds the reconciliation state: expected SKUs, their running
// actual counts, and the per-SKU scan history.
//
// A Ledger is not safe for concurrent use. Service serializes access.

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTimestampLayout formats ScanEvent timestamps.
const DefaultTimestampLayout = "2006-01-02 15:04:05"

// Ledger applies scan events against the expected SKU set.
type Ledger struct {
	skus    []SkuRecord
	index   map[string]int // sku -> position in skus
	history []ScanEvent    // newest first

	lastScanned string

	now    func() time.Time
	layout string
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithClock overrides the time source used for scan timestamps.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

// WithTimestampLayout overrides the scan timestamp layout.
func WithTimestampLayout(layout string) LedgerOption {
	return func(l *Ledger) {
		if layout != "" {
			l.layout = layout
		}
	}
}

// NewLedger creates a ledger seeded from a (possibly restored) state.
func NewLedger(state LedgerState, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		now:    time.Now,
		layout: DefaultTimestampLayout,
	}
	for _, opt := range opts {
		opt(l)
	}

	st := state.Clone()
	l.setSkus(st.SkuData)
	l.history = st.ScannedData
	return l
}

func (l *Ledger) setSkus(records []SkuRecord) {
	l.skus = make([]SkuRecord, 0, len(records))
	l.index = make(map[string]int, len(records))
	for _, rec := range records {
		if _, dup := l.index[rec.SKU]; dup {
			continue
		}
		l.index[rec.SKU] = len(l.skus)
		l.skus = append(l.skus, rec)
	}
}

// Replace installs a new expected set. Actual counts start at zero and the
// scan history is cleared.
func (l *Ledger) Replace(records []SkuRecord) {
	fresh := make([]SkuRecord, len(records))
	for i, rec := range records {
		rec.ActualQuantity = 0
		fresh[i] = rec
	}
	l.setSkus(fresh)
	l.history = nil
	l.lastScanned = ""
}

// ApplyScan records one scan. On any error the ledger is unchanged.
func (l *Ledger) ApplyScan(raw string) (ScanOutcome, error) {
	bc, err := InterpretBarcode(raw)
	if err != nil {
		return ScanOutcome{}, err
	}

	sku := bc.SKU()
	pos, ok := l.index[sku]
	if !ok {
		return ScanOutcome{}, fmt.Errorf("%w: %s", ErrNoMatch, sku)
	}

	out := ScanOutcome{
		SKU:     sku,
		Barcode: bc.Raw,
	}
	if l.lastScanned != "" && l.lastScanned != sku {
		out.SkuChanged = true
		out.PreviousSKU = l.lastScanned
	}

	ts := l.now().Format(l.layout)
	rec := &l.skus[pos]

	if i := l.historyIndex(sku); i >= 0 {
		ev := &l.history[i]
		ev.ActualQuantity++
		ev.Timestamp = ts
		out.Event = *ev
	} else {
		ev := ScanEvent{
			Barcode:          bc.Raw,
			Timestamp:        ts,
			SKU:              sku,
			ExpectedQuantity: rec.ExpectedQuantity,
			ActualQuantity:   1,
		}
		l.history = append([]ScanEvent{ev}, l.history...)
		out.Event = ev
	}

	rec.ActualQuantity++
	out.Record = *rec

	l.lastScanned = sku
	out.LastScanned = sku
	return out, nil
}

func (l *Ledger) historyIndex(sku string) int {
	for i := range l.history {
		if l.history[i].SKU == sku {
			return i
		}
	}
	return -1
}

// Clear zeroes every actual count and empties the history. Expected
// quantities are kept.
func (l *Ledger) Clear() {
	for i := range l.skus {
		l.skus[i].ActualQuantity = 0
	}
	l.history = nil
	l.lastScanned = ""
}

// clone returns an independent copy, used to roll back a transaction whose
// save failed.
func (l *Ledger) clone() *Ledger {
	st := l.State()
	c := &Ledger{
		history:     st.ScannedData,
		lastScanned: l.lastScanned,
		now:         l.now,
		layout:      l.layout,
	}
	c.setSkus(st.SkuData)
	return c
}

// LastScanned returns the SKU of the most recent accepted scan.
func (l *Ledger) LastScanned() string {
	return l.lastScanned
}

// Lookup returns the expected record for sku.
func (l *Ledger) Lookup(sku string) (SkuRecord, bool) {
	pos, ok := l.index[sku]
	if !ok {
		return SkuRecord{}, false
	}
	return l.skus[pos], true
}

// State returns a copy of the current ledger state.
func (l *Ledger) State() LedgerState {
	return LedgerState{SkuData: l.skus, ScannedData: l.history}.Clone()
}

// Stats computes aggregate progress over the expected set.
func (l *Ledger) Stats() Stats {
	return ComputeStats(l.skus)
}

// ComputeStats aggregates progress over records.
func ComputeStats(records []SkuRecord) Stats {
	st := Stats{TotalSkus: len(records)}
	for _, rec := range records {
		st.ExpectedTotal += rec.ExpectedQuantity
		st.ActualTotal += rec.ActualQuantity
	}
	st.OverallProgress = percent(float64(st.ActualTotal), st.ExpectedTotal)
	return st
}

// HistoryFilter narrows the scan history. Empty fields match everything;
// matching is a case-insensitive substring test.
type HistoryFilter struct {
	Style string
	Color string
	Size  string
}

// FilterHistory returns history entries matching f, newest first.
func (l *Ledger) FilterHistory(f HistoryFilter) []ScanEvent {
	out := make([]ScanEvent, 0, len(l.history))
	for _, ev := range l.history {
		rec, ok := l.Lookup(ev.SKU)
		if !ok {
			if f == (HistoryFilter{}) {
				out = append(out, ev)
			}
			continue
		}
		if containsFold(rec.StyleNo, f.Style) &&
			containsFold(rec.Color, f.Color) &&
			containsFold(rec.Size, f.Size) {
			out = append(out, ev)
		}
	}
	return out
}

func containsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
