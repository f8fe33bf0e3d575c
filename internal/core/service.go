package core

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Service owns the receiving session: the ledger, the reset confirmation
// flow, and persistence. Every method is one serialized transaction, so the
// HTTP server and the console scanner can share a Service.
type Service struct {
	mu     sync.Mutex
	store  Store
	ledger *Ledger
	reset  ResetFlow

	sessionID   string
	now         func() time.Time
	exportLabel string
	sheetName   string
}

// ServiceConfig tunes a Service. Zero values select the defaults.
type ServiceConfig struct {
	ExportLabel     string           // middle part of the export file name
	SheetName       string           // export worksheet name
	TimestampLayout string           // scan event timestamp layout
	Now             func() time.Time // clock, for tests
}

// NewService restores the persisted session from store.
func NewService(ctx context.Context, store Store, cfg ServiceConfig) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("new service: nil store")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	state, err := LoadState(ctx, store)
	if err != nil {
		return nil, err
	}

	s := &Service{
		store:       store,
		ledger:      NewLedger(state, WithClock(now), WithTimestampLayout(cfg.TimestampLayout)),
		sessionID:   uuid.New().String(),
		now:         now,
		exportLabel: cfg.ExportLabel,
		sheetName:   cfg.SheetName,
	}

	st := s.ledger.Stats()
	s.audit(ctx, ActionRestore,
		"skus", st.TotalSkus,
		"scanned", len(state.ScannedData),
	)
	return s, nil
}

// SessionID identifies this process's session in logs.
func (s *Service) SessionID() string {
	return s.sessionID
}

// Upload reads an expected-inventory file and replaces the expected set.
// A file that cannot be read leaves the ledger untouched.
func (s *Service) Upload(ctx context.Context, fileName string, r io.Reader) (UploadResult, error) {
	rows, err := ReadRows(fileName, r)
	if err != nil {
		return UploadResult{}, err
	}
	return s.UploadRows(ctx, fileName, rows)
}

// UploadRows replaces the expected set with the records parsed from rows.
func (s *Service) UploadRows(ctx context.Context, fileName string, rows []Row) (UploadResult, error) {
	records := ParseRows(rows)

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.commit(ctx, func(l *Ledger) error {
		l.Replace(records)
		return nil
	})
	if err != nil {
		return UploadResult{}, err
	}

	st := ComputeStats(records)
	res := UploadResult{
		FileName:      fileName,
		RowsRead:      len(rows),
		SkuCount:      st.TotalSkus,
		ExpectedTotal: st.ExpectedTotal,
	}
	s.audit(ctx, ActionUpload,
		"file", fileName,
		"rows", res.RowsRead,
		"skus", res.SkuCount,
		"expected_total", res.ExpectedTotal,
	)
	return res, nil
}

// Scan applies one barcode. Rejected scans change nothing.
func (s *Service) Scan(ctx context.Context, raw string) (ScanOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out ScanOutcome
	err := s.commit(ctx, func(l *Ledger) error {
		var err error
		out, err = l.ApplyScan(raw)
		return err
	})
	if err != nil {
		s.audit(ctx, ActionScan, "barcode", raw, "rejected", err.Error())
		return ScanOutcome{}, err
	}

	s.audit(ctx, ActionScan,
		"sku", out.SKU,
		"actual", out.Record.ActualQuantity,
		"expected", out.Record.ExpectedQuantity,
		"sku_changed", out.SkuChanged,
	)
	return out, nil
}

// Stats returns aggregate progress.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Stats()
}

// State returns a copy of the ledger state.
func (s *Service) State() LedgerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.State()
}

// History returns scan events matching f, newest first.
func (s *Service) History(f HistoryFilter) []ScanEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.FilterHistory(f)
}

// LastScanned returns the SKU of the most recent accepted scan.
func (s *Service) LastScanned() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.LastScanned()
}

// Report builds report rows without finalizing.
func (s *Service) Report() []ReportRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BuildReport(s.ledger.State())
}

// ExportFileName returns today's export file name.
func (s *Service) ExportFileName() string {
	return ReportFileName(s.now().UTC(), s.exportLabel)
}

// Export writes the report workbook to w and then finalizes the session.
// If writing fails the ledger is untouched.
func (s *Service) Export(ctx context.Context, w io.Writer) (ExportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := BuildReport(s.ledger.State())
	if err := WriteReport(w, s.sheetName, rows); err != nil {
		return ExportResult{}, fmt.Errorf("export: %w", err)
	}

	res := ExportResult{
		ExportID: uuid.New().String(),
		FileName: s.ExportFileName(),
		Rows:     len(rows),
	}

	if err := s.finalizeLocked(ctx); err != nil {
		return res, err
	}

	s.audit(ctx, ActionExport,
		"export_id", res.ExportID,
		"file", res.FileName,
		"rows", res.Rows,
	)
	return res, nil
}

// FinalizeAfterExport clears scan events and zeroes actual counts while
// keeping the expected set.
func (s *Service) FinalizeAfterExport(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalizeLocked(ctx)
}

// RequestReset opens the first reset confirmation.
func (s *Service) RequestReset() (ResetPhase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.reset.Request()
	return s.reset.Phase(), err
}

// ConfirmReset accepts the first confirmation.
func (s *Service) ConfirmReset() (ResetPhase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.reset.Confirm()
	return s.reset.Phase(), err
}

// FinalizeReset accepts the final confirmation and clears the session.
func (s *Service) FinalizeReset(ctx context.Context) (ResetPhase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reset.Finalize(); err != nil {
		return s.reset.Phase(), err
	}
	if err := s.finalizeLocked(ctx); err != nil {
		// Stay at the final confirmation so the operator can retry.
		s.reset.phase = ResetFinalConfirmRequested
		return s.reset.Phase(), err
	}

	s.audit(ctx, ActionReset, "skus", len(s.ledger.skus))
	return s.reset.Phase(), nil
}

// CancelReset abandons the reset flow.
func (s *Service) CancelReset() ResetPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset.Cancel()
	return s.reset.Phase()
}

// ResetPhase returns the current reset confirmation phase.
func (s *Service) ResetPhase() ResetPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reset.Phase()
}

// finalizeLocked clears scans and actual counts and persists the cleared
// state over the stored entries. Caller holds s.mu.
func (s *Service) finalizeLocked(ctx context.Context) error {
	return s.commit(ctx, func(l *Ledger) error {
		l.Clear()
		return nil
	})
}

// commit runs fn against the ledger and persists the result. If fn or the
// save fails, the ledger is restored. Caller holds s.mu.
func (s *Service) commit(ctx context.Context, fn func(*Ledger) error) error {
	prev := s.ledger.clone()

	if err := fn(s.ledger); err != nil {
		s.ledger = prev
		return err
	}
	if err := SaveState(ctx, s.store, s.ledger.State()); err != nil {
		s.ledger = prev
		return err
	}
	return nil
}
