package source

// reader.go wraps raw document bodies before JSON decoding.
//
// Documents exported from spreadsheets and Windows tools often start with a
// UTF-8 byte order mark and may carry stray invalid bytes. The wrappers here
// drop the BOM, replace invalid UTF-8 with '?' and enforce a size cap, all
// without buffering the whole body.

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// errTooLarge is returned once a body exceeds its size cap.
var errTooLarge = errors.New("malformed dataset: document exceeds size limit")

// newBodyReader applies BOM skipping, UTF-8 sanitizing and the size cap.
func newBodyReader(r io.Reader, maxBytes int64) io.Reader {
	if maxBytes > 0 {
		r = &cappedReader{r: r, remaining: maxBytes}
	}
	return newSanitizer(skipBOM(r))
}

// skipBOM returns a reader positioned after a leading UTF-8 BOM, if any.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// cappedReader fails with errTooLarge instead of silently truncating.
type cappedReader struct {
	r         io.Reader
	remaining int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.remaining <= 0 {
		// Probe for one more byte to tell "exactly at cap" from "over cap".
		var probe [1]byte
		n, err := c.r.Read(probe[:])
		if n > 0 {
			return 0, errTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > c.remaining {
		p = p[:c.remaining]
	}
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	return n, err
}

// sanitizer replaces invalid UTF-8 bytes with '?' as data streams through.
// A multi-byte sequence split across reads is held back until complete.
type sanitizer struct {
	r       io.Reader
	pending []byte
}

func newSanitizer(r io.Reader) *sanitizer {
	return &sanitizer{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

func (s *sanitizer) Read(p []byte) (int, error) {
	if len(p) < utf8.UTFMax {
		return 0, fmt.Errorf("sanitizer: buffer of %d bytes is too small", len(p))
	}

	offset := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.r.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	data := p[:n]
	if isASCII(data) {
		return n, err
	}
	return s.clean(data, err == io.EOF), err
}

// clean rewrites data in place and returns the number of bytes to deliver.
func (s *sanitizer) clean(data []byte, atEOF bool) int {
	write := 0
	for read := 0; read < len(data); {
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

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
