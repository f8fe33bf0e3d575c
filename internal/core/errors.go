package core

import "errors"

// Rejection errors. None of them leave the ledger partially updated.
var (
	// ErrInvalidInput is returned for an empty barcode.
	ErrInvalidInput = errors.New("invalid barcode input")

	// ErrMalformedFormat is returned when a barcode is not STYLE/COLOR/SIZE.
	ErrMalformedFormat = errors.New("malformed barcode format")

	// ErrNoMatch is returned when the scanned SKU is not expected.
	ErrNoMatch = errors.New("no matching sku")

	// ErrParseFailure is returned when an uploaded spreadsheet can't be read.
	ErrParseFailure = errors.New("spreadsheet parse failure")

	// ErrInvalidResetTransition is returned when a reset step is taken out of order.
	ErrInvalidResetTransition = errors.New("invalid reset transition")

	// ErrSoundPlayback is reported by frontends that fail to play a cue.
	// It never affects ledger state.
	ErrSoundPlayback = errors.New("sound playback failure")
)

// IsRejection reports whether err is a per-scan rejection.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrMalformedFormat) ||
		errors.Is(err, ErrNoMatch)
}
