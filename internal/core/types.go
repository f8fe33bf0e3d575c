package core

import "context"

// Store is the durable key/value port used to persist ledger state.
// Satisfied by every backend in internal/storage.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// PutAll writes every entry or none of them.
	PutAll(ctx context.Context, entries map[string][]byte) error
}

// Persisted entry names. Kept identical to the browser build so exported
// state files remain interchangeable.
const (
	KeyScannedData = "scannedData"
	KeySkuData     = "skuData"
)

// SkuRecord is one line of expected inventory keyed by STYLE-COLOR-SIZE.
type SkuRecord struct {
	SKU              string  `json:"sku"`
	StyleNo          string  `json:"styleNo"`
	Color            string  `json:"color"`
	Size             string  `json:"size"`
	ExpectedQuantity float64 `json:"expectedQuantity"`
	ActualQuantity   int     `json:"actualQuantity"`
}

// ScanEvent is the history entry for one scanned SKU. Repeat scans of the
// same SKU update the entry instead of appending a new one.
type ScanEvent struct {
	Barcode          string  `json:"barcode"`
	Timestamp        string  `json:"timestamp"`
	SKU              string  `json:"sku"`
	ExpectedQuantity float64 `json:"expectedQuantity"`
	ActualQuantity   int     `json:"actualQuantity"`
}

// LedgerState is the unit of persistence: every expected SKU plus the
// scan history.
type LedgerState struct {
	SkuData     []SkuRecord `json:"skuData"`
	ScannedData []ScanEvent `json:"scannedData"`
}

// Clone returns a deep copy so callers can't mutate ledger internals.
func (s LedgerState) Clone() LedgerState {
	out := LedgerState{
		SkuData:     make([]SkuRecord, len(s.SkuData)),
		ScannedData: make([]ScanEvent, len(s.ScannedData)),
	}
	copy(out.SkuData, s.SkuData)
	copy(out.ScannedData, s.ScannedData)
	return out
}

// Stats are aggregate progress figures, recomputed on demand.
type Stats struct {
	TotalSkus       int     `json:"totalSkus"`
	ExpectedTotal   float64 `json:"expectedTotal"`
	ActualTotal     int     `json:"actualTotal"`
	OverallProgress float64 `json:"overallProgress"`
}

// ScanOutcome describes an accepted scan.
type ScanOutcome struct {
	SKU         string    `json:"sku"`
	Barcode     string    `json:"barcode"`
	SkuChanged  bool      `json:"skuChanged"` // previous scan was a different SKU
	PreviousSKU string    `json:"previousSku,omitempty"`
	LastScanned string    `json:"lastScanned"` // SKU to highlight in the history view
	Event       ScanEvent `json:"event"`
	Record      SkuRecord `json:"record"`
}

// ResultLabel classifies a report row by progress.
type ResultLabel string

const (
	ResultShort    ResultLabel = "short"
	ResultComplete ResultLabel = "complete"
	ResultExcess   ResultLabel = "excess"
)

// Korean returns the label written to exported sheets.
func (r ResultLabel) Korean() string {
	switch r {
	case ResultComplete:
		return "완료"
	case ResultExcess:
		return "초과"
	default:
		return "부족"
	}
}

// ReportRow is one line of the reconciliation report.
type ReportRow struct {
	StyleNo          string      `json:"styleNo"`
	Color            string      `json:"color"`
	Size             string      `json:"size"`
	ExpectedQuantity float64     `json:"expectedQuantity"`
	ActualQuantity   int         `json:"actualQuantity"`
	Progress         string      `json:"progress"` // one decimal, e.g. "30.0%"
	Result           ResultLabel `json:"result"`
}

// UploadResult summarizes an ingest.
type UploadResult struct {
	FileName      string  `json:"fileName"`
	RowsRead      int     `json:"rowsRead"`
	SkuCount      int     `json:"skuCount"`
	ExpectedTotal float64 `json:"expectedTotal"`
}

// ExportResult summarizes a finalized export.
type ExportResult struct {
	ExportID string `json:"exportId"`
	FileName string `json:"fileName"`
	Rows     int    `json:"rows"`
}
