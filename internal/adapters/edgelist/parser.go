// Package edgelist parses textual edge lists into graphs.
package edgelist

import (
	"strings"
	"unicode"

	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/planar/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.GraphParser = (*Parser)(nil)

const byteOrderMark = "\uFEFF"

// Parser implements ports.GraphParser.
//
// Records are separated by commas, semicolons or line breaks. A record is a
// pair of node tokens joined by '-', ':' or whitespace. A '#' comments out
// the rest of its line.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse returns the graph described by input. A leading byte order mark is
// ignored, matching the fingerprint normalization.
func (p *Parser) Parse(input string) (*domain.Graph, error) {
	input = strings.TrimPrefix(input, byteOrderMark)
	b := domain.NewGraphBuilder()

	position := 0
	for line := range strings.Lines(input) {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for _, record := range strings.FieldsFunc(line, isRecordSeparator) {
			position++
			record = strings.TrimSpace(record)
			if record == "" {
				continue
			}

			source, target, err := splitRecord(record)
			if err != nil {
				return nil, zerr.With(zerr.With(err, "record", record), "position", position)
			}
			b.AddEdge(source, target)
		}
	}

	return b.Build(), nil
}

func isRecordSeparator(r rune) bool {
	return r == ',' || r == ';' || r == '\n' || r == '\r'
}

// splitRecord splits one record into its two endpoint tokens.
func splitRecord(record string) (string, string, error) {
	var parts []string
	switch {
	case strings.ContainsRune(record, '-'):
		parts = strings.Split(record, "-")
	case strings.ContainsRune(record, ':'):
		parts = strings.Split(record, ":")
	default:
		parts = strings.Fields(record)
	}

	if len(parts) != 2 {
		return "", "", zerr.Wrap(domain.ErrParse, "expected exactly two node tokens")
	}

	source := strings.TrimSpace(parts[0])
	target := strings.TrimSpace(parts[1])
	if source == "" || target == "" {
		return "", "", zerr.Wrap(domain.ErrParse, "empty node token")
	}
	if strings.IndexFunc(source, unicode.IsSpace) >= 0 || strings.IndexFunc(target, unicode.IsSpace) >= 0 {
		return "", "", zerr.Wrap(domain.ErrParse, "node token contains whitespace")
	}

	return source, target, nil
}
