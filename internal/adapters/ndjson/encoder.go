// Package ndjson writes records as newline-delimited JSON.
package ndjson

import (
	"encoding/json"
	"io"
	"sync"

	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/zerr"
)

// ContentType is the media type of an NDJSON stream.
const ContentType = "application/x-ndjson"

type flusher interface {
	Flush()
}

// Encoder writes one record per line and flushes after each one when the
// underlying writer supports it.
type Encoder struct {
	mu  sync.Mutex
	w   io.Writer
	enc *json.Encoder
}

// NewEncoder creates a new Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Encoder{w: w, enc: enc}
}

// Encode writes rec followed by a newline.
func (e *Encoder) Encode(rec domain.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.enc.Encode(rec); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to encode record"), "index", rec.Index)
	}
	if f, ok := e.w.(flusher); ok {
		f.Flush()
	}
	return nil
}
