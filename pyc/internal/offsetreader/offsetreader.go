// Package offsetreader wraps an io.Reader to track how many bytes have been
// consumed, so callers further up the stack can report the byte offset a
// decode error was detected at. Modeled on wagon's wasm/internal/readpos.
package offsetreader

import "io"

// Reader wraps R and counts bytes read through it in Offset.
type Reader struct {
	R      io.Reader
	Offset int64
}

func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.R.Read(p)
	r.Offset += int64(n)
	return n, err
}
