// Package fingerprint computes content digests of graph inputs.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/planar/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Fingerprinter = (*Fingerprinter)(nil)

const byteOrderMark = "\uFEFF"

// Fingerprinter implements ports.Fingerprinter with SHA-256.
type Fingerprinter struct{}

// New creates a new Fingerprinter.
func New() *Fingerprinter {
	return &Fingerprinter{}
}

// Fingerprint returns the digest of the normalized input.
func (f *Fingerprinter) Fingerprint(input string) (domain.Fingerprint, error) {
	if !utf8.ValidString(input) {
		return "", zerr.Wrap(domain.ErrInvalidInput, "input is not valid UTF-8")
	}
	if i := strings.IndexByte(input, 0); i >= 0 {
		return "", zerr.With(zerr.Wrap(domain.ErrInvalidInput, "input contains a NUL byte"), "offset", i)
	}

	h := sha256.New()
	_, _ = h.Write([]byte(domain.FingerprintVersion))
	_, _ = h.Write([]byte{0}) // Separator
	_, _ = h.Write([]byte(Normalize(input)))

	return domain.Fingerprint(hex.EncodeToString(h.Sum(nil))), nil
}

// Normalize applies the textual normalizations the parser is insensitive to:
// a leading byte order mark, line ending style and surrounding whitespace.
func Normalize(input string) string {
	s := strings.TrimPrefix(input, byteOrderMark)
	if strings.ContainsRune(s, '\r') {
		s = strings.ReplaceAll(s, "\r\n", "\n")
		s = strings.ReplaceAll(s, "\r", "\n")
	}
	return strings.TrimSpace(s)
}
