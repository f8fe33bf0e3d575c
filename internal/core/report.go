package core

import (
	"time"
)

// Export sheet layout.
const (
	ReportSheetName = "검수 내역"
	ReportLabel     = "입고 스캔정보"
)

// ReportHeaders are the exported column titles, in order.
var ReportHeaders = []string{"스타일NO.", "색상", "사이즈", "예정수량", "스캔수량", "진행률", "결과"}

// Classify maps a progress percentage to a result label.
func Classify(progress float64) ResultLabel {
	switch {
	case progress < 100:
		return ResultShort
	case progress == 100:
		return ResultComplete
	default:
		return ResultExcess
	}
}

// BuildReport projects the ledger state into report rows, one per expected
// SKU in ledger order.
func BuildReport(state LedgerState) []ReportRow {
	rows := make([]ReportRow, 0, len(state.SkuData))
	for _, rec := range state.SkuData {
		p := percent(float64(rec.ActualQuantity), rec.ExpectedQuantity)
		rows = append(rows, ReportRow{
			StyleNo:          rec.StyleNo,
			Color:            rec.Color,
			Size:             rec.Size,
			ExpectedQuantity: rec.ExpectedQuantity,
			ActualQuantity:   rec.ActualQuantity,
			Progress:         FormatPercent(p),
			Result:           Classify(p),
		})
	}
	return rows
}

// ReportFileName returns the export file name for the given day,
// {YYYYMMDD}_입고 스캔정보_{YYYYMMDD}.xlsx.
func ReportFileName(day time.Time, label string) string {
	if label == "" {
		label = ReportLabel
	}
	d := day.Format("20060102")
	return d + "_" + label + "_" + d + ".xlsx"
}
