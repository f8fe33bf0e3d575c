package core

// streaming.go cleans up CSV exports before they reach encoding/csv.
//
// Spreadsheet programs on Windows prepend a UTF-8 BOM, and legacy exports
// occasionally carry stray non-UTF-8 bytes. Both would otherwise end up in
// the "Styles NO" header or in SKU keys.

import (
	"bufio"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader drops a leading UTF-8 BOM.
type BOMSkippingReader struct {
	r       *bufio.Reader
	checked bool
}

// NewBOMSkippingReader wraps r.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{r: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (b *BOMSkippingReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head, err := b.r.Peek(len(utf8BOM))
		if err == nil && string(head) == string(utf8BOM) {
			if _, err := b.r.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return b.r.Read(p)
}

// UTF8Sanitizer replaces invalid UTF-8 bytes with '?'. Multi-byte runes
// split across reads are carried over to the next read.
type UTF8Sanitizer struct {
	r       io.Reader
	pending []byte
	eof     bool
}

// NewUTF8Sanitizer wraps r.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{r: r}
}

// Read implements io.Reader.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) < utf8.UTFMax {
		return 0, io.ErrShortBuffer
	}

	n := copy(p, s.pending)
	s.pending = s.pending[:0]

	var err error
	if !s.eof {
		var m int
		m, err = s.r.Read(p[n:])
		n += m
		if err == io.EOF {
			s.eof = true
		}
	}
	if n == 0 {
		if s.eof {
			return 0, io.EOF
		}
		return 0, err
	}

	w := 0
	for i := 0; i < n; {
		if p[i] < utf8.RuneSelf {
			p[w] = p[i]
			w++
			i++
			continue
		}

		if !s.eof && !utf8.FullRune(p[i:n]) {
			s.pending = append(s.pending, p[i:n]...)
			break
		}

		r, size := utf8.DecodeRune(p[i:n])
		if r == utf8.RuneError && size == 1 {
			p[w] = '?'
			w++
			i++
			continue
		}
		copy(p[w:], p[i:i+size])
		w += size
		i += size
	}

	if err == io.EOF && len(s.pending) > 0 {
		err = nil
	}
	if err == io.EOF {
		return w, nil
	}
	return w, err
}

// WrapCSVInput applies BOM skipping then UTF-8 sanitization.
func WrapCSVInput(r io.Reader) io.Reader {
	return NewUTF8Sanitizer(NewBOMSkippingReader(r))
}
