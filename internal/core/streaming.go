package core

// streaming.go provides the readers that sit between a CSV file and the line
// scanner:
//
//   - BOMSkippingReader: removes the UTF-8 BOM written by spreadsheet tools
//   - StreamingUTF8Sanitizer: replaces invalid UTF-8 bytes with '?' for text
//     that is only displayed, such as the column preview
//   - CountingReader: tracks bytes consumed for import logging
//
// Import and export read raw bytes so both see the same part number. Import
// rejects keys that are not valid UTF-8 and cleans attribute values with
// sanitizeText; export echoes unmatched lines byte for byte.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader wraps an io.Reader and skips a leading UTF-8 BOM.
type BOMSkippingReader struct {
	r       *bufio.Reader
	checked bool
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{r: bufio.NewReader(r)}
}

// Read implements io.Reader. The BOM check happens on the first call.
func (b *BOMSkippingReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head, err := b.r.Peek(len(utf8BOM))
		if err != nil && err != io.EOF {
			return 0, err
		}
		if bytes.Equal(head, utf8BOM) {
			b.r.Discard(len(utf8BOM)) //nolint:errcheck
		}
	}
	return b.r.Read(p)
}

// StreamingUTF8Sanitizer replaces invalid UTF-8 bytes with '?' on the fly.
// Multi-byte sequences split across reads are carried to the next call.
type StreamingUTF8Sanitizer struct {
	reader  io.Reader
	pending []byte
}

// NewStreamingUTF8Sanitizer creates a new streaming UTF-8 sanitizer.
func NewStreamingUTF8Sanitizer(r io.Reader) *StreamingUTF8Sanitizer {
	return &StreamingUTF8Sanitizer{
		reader:  r,
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

// Read implements io.Reader.
func (s *StreamingUTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) < utf8.UTFMax {
		// Too small to hold a carried sequence plus progress.
		return s.readSmall(p)
	}

	offset := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.reader.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	return s.sanitize(p[:n], err == io.EOF), err
}

func (s *StreamingUTF8Sanitizer) readSmall(p []byte) (int, error) {
	buf := make([]byte, utf8.UTFMax*4)
	n, err := s.Read(buf)
	if n > len(p) {
		s.pending = append(s.pending[:0], buf[len(p):n]...)
		n = len(p)
	}
	copy(p, buf[:n])
	return n, err
}

// sanitize rewrites data in place and returns the number of bytes kept.
// Unless atEOF, an incomplete trailing sequence is moved to pending.
func (s *StreamingUTF8Sanitizer) sanitize(data []byte, atEOF bool) int {
	write := 0
	for read := 0; read < len(data); {
		if data[read] < utf8.RuneSelf {
			data[write] = data[read]
			write++
			read++
			continue
		}

		if !atEOF && !utf8.FullRune(data[read:]) {
			s.pending = append(s.pending, data[read:]...)
			return write
		}

		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			data[write] = '?'
			write++
			read++
			continue
		}

		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// sanitizeText applies the sanitizer rule to a single value.
func sanitizeText(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	b := []byte(s)
	n := (&StreamingUTF8Sanitizer{}).sanitize(b, true)
	return string(b[:n])
}

// wrapForImport strips the BOM and counts bytes.
func wrapForImport(r io.Reader) *CountingReader {
	return NewCountingReader(NewBOMSkippingReader(r))
}
