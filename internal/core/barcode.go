package core

import (
	"fmt"
	"strings"
)

// barcodeSeparator splits the printed label format STYLE/COLOR/SIZE.
const barcodeSeparator = "/"

// skuSeparator joins the canonical SKU key STYLE-COLOR-SIZE.
const skuSeparator = "-"

// Barcode is a decoded scan.
type Barcode struct {
	Raw     string
	StyleNo string
	Color   string
	Size    string
}

// SKU returns the canonical key for the barcode.
func (b Barcode) SKU() string {
	return MakeSKU(b.StyleNo, b.Color, b.Size)
}

// MakeSKU builds the canonical SKU key.
func MakeSKU(styleNo, color, size string) string {
	return styleNo + skuSeparator + color + skuSeparator + size
}

// InterpretBarcode decodes a raw scan. Surrounding whitespace is ignored.
//
// Returns ErrInvalidInput for an empty scan and ErrMalformedFormat unless the
// input splits into exactly three non-empty segments.
func InterpretBarcode(raw string) (Barcode, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Barcode{}, ErrInvalidInput
	}

	parts := strings.Split(raw, barcodeSeparator)
	if len(parts) != 3 {
		return Barcode{}, fmt.Errorf("%w: %q has %d segments, want STYLE/COLOR/SIZE", ErrMalformedFormat, raw, len(parts))
	}
	for _, p := range parts {
		if p == "" {
			return Barcode{}, fmt.Errorf("%w: %q has an empty segment", ErrMalformedFormat, raw)
		}
	}

	return Barcode{
		Raw:     raw,
		StyleNo: parts[0],
		Color:   parts[1],
		Size:    parts[2],
	}, nil
}
