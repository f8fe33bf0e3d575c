package core

// ingest.go turns expected-inventory rows into SkuRecords.
//
// Each source row lists one style/color with a quantity per size column.
// A row fans out into one record per size with a positive quantity, and
// rows sharing style, color and size merge by summing their quantities.

import (
	"github.com/shopspring/decimal"
)

// Column headers of the expected-inventory sheet.
const (
	ColumnStyleNo = "Styles NO"
	ColumnColor   = "Color"
)

// SizeColumns are the recognized size columns, in output order.
var SizeColumns = []string{"XS", "S", "M", "L", "XL", "2XL"}

// Row is one spreadsheet row keyed by header name.
type Row map[string]string

// ParseRows builds the expected SKU set from spreadsheet rows.
//
// Rows without a style number or color are skipped. Records are returned in
// the order their SKU first appears, with ActualQuantity zero.
func ParseRows(rows []Row) []SkuRecord {
	var (
		order  []string
		totals = make(map[string]decimal.Decimal)
		byKey  = make(map[string]SkuRecord)
	)

	for _, row := range rows {
		styleNo := CleanCell(row[ColumnStyleNo])
		color := CleanCell(row[ColumnColor])
		if styleNo == "" || color == "" {
			continue
		}

		for _, size := range SizeColumns {
			qty := ParseQuantity(row[size])
			if !qty.IsPositive() {
				continue
			}

			sku := MakeSKU(styleNo, color, size)
			if _, seen := byKey[sku]; !seen {
				order = append(order, sku)
				byKey[sku] = SkuRecord{
					SKU:     sku,
					StyleNo: styleNo,
					Color:   color,
					Size:    size,
				}
			}
			totals[sku] = totals[sku].Add(qty)
		}
	}

	records := make([]SkuRecord, 0, len(order))
	for _, sku := range order {
		rec := byKey[sku]
		rec.ExpectedQuantity = totals[sku].InexactFloat64()
		records = append(records, rec)
	}
	return records
}
