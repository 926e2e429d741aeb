package sheet

// reader.go cleans up an upstream CSV stream before it reaches encoding/csv.
//
// Spreadsheet exports occasionally carry a UTF-8 byte order mark or stray
// non-UTF-8 bytes (cells pasted from legacy encodings). Left alone, the BOM
// ends up glued to the first column name and invalid bytes turn into U+FFFD
// during JSON encoding. The two readers here fix both on the fly:
//
//   - bomReader drops a leading 0xEF 0xBB 0xBF
//   - utf8Sanitizer replaces invalid bytes with '?'
//
// Use cleanReader to apply both in the correct order.

import (
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// bomReader skips the UTF-8 BOM if the stream starts with one.
type bomReader struct {
	r       io.Reader
	checked bool
	head    []byte // bytes read during the BOM check that still need returning
}

func newBOMReader(r io.Reader) *bomReader {
	return &bomReader{r: r}
}

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true

		var buf [3]byte
		n, err := io.ReadFull(b.r, buf[:])
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return 0, err
		}
		if n < 3 || !bytes.Equal(buf[:], utf8BOM) {
			b.head = append([]byte(nil), buf[:n]...)
		}
	}

	if len(b.head) > 0 {
		n := copy(p, b.head)
		b.head = b.head[n:]
		return n, nil
	}

	return b.r.Read(p)
}

// utf8Sanitizer replaces invalid UTF-8 bytes with '?' while streaming.
// A multi-byte sequence split across two upstream reads is carried over
// rather than being mistaken for garbage. Sanitized bytes are staged in out,
// so callers may read with a buffer of any size.
type utf8Sanitizer struct {
	r       io.Reader
	buf     []byte
	pending []byte // incomplete trailing sequence from the last chunk
	out     []byte // sanitized bytes not yet handed to the caller
	err     error
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{r: r, buf: make([]byte, 4096)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for len(s.out) == 0 {
		if s.err != nil {
			return 0, s.err
		}

		n, err := s.r.Read(s.buf)
		s.err = err
		if n == 0 && err == nil {
			return 0, nil
		}

		chunk := append(s.pending, s.buf[:n]...)
		s.pending = nil
		s.out = s.sanitize(chunk, err != nil)
	}

	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

// sanitize returns data with invalid bytes replaced. Unless final, a
// truncated trailing sequence is held back in pending for the next chunk.
func (s *utf8Sanitizer) sanitize(data []byte, final bool) []byte {
	if isASCII(data) {
		return data
	}

	clean := make([]byte, 0, len(data))
	for read := 0; read < len(data); {
		if !final && !utf8.FullRune(data[read:]) {
			s.pending = append([]byte(nil), data[read:]...)
			break
		}

		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			clean = append(clean, '?')
		} else {
			clean = append(clean, data[read:read+size]...)
		}
		read += size
	}
	return clean
}

func isASCII(data []byte) bool {
	for _, c := range data {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// cleanReader strips a BOM first, then sanitizes what remains.
func cleanReader(r io.Reader) io.Reader {
	return newUTF8Sanitizer(newBOMReader(r))
}
