package fingerprint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/planar/internal/adapters/fingerprint"
	"go.trai.ch/planar/internal/core/domain"
)

func TestFingerprint_Deterministic(t *testing.T) {
	t.Parallel()

	f := fingerprint.New()

	a, err := f.Fingerprint("A-B,B-C,C-A")
	require.NoError(t, err)
	b, err := f.Fingerprint("A-B,B-C,C-A")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a.String(), 64)
}

func TestFingerprint_Normalization(t *testing.T) {
	t.Parallel()

	f := fingerprint.New()
	base, err := f.Fingerprint("A-B\nB-C")
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
		same  bool
	}{
		{name: "crlf", input: "A-B\r\nB-C", same: true},
		{name: "bare cr", input: "A-B\rB-C", same: true},
		{name: "surrounding whitespace", input: "  A-B\nB-C \n", same: true},
		{name: "byte order mark", input: "\uFEFFA-B\nB-C", same: true},
		{name: "different edge order", input: "B-C\nA-B", same: false},
		{name: "different nodes", input: "A-B\nB-D", same: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := f.Fingerprint(tt.input)
			require.NoError(t, err)
			if tt.same {
				assert.Equal(t, base, got)
			} else {
				assert.NotEqual(t, base, got)
			}
		})
	}
}

func TestFingerprint_InvalidInput(t *testing.T) {
	t.Parallel()

	f := fingerprint.New()

	_, err := f.Fingerprint("A-B,\xff\xfe")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.Fingerprint("A-B\x00C-D")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFingerprint_Empty(t *testing.T) {
	t.Parallel()

	f := fingerprint.New()
	a, err := f.Fingerprint("")
	require.NoError(t, err)
	b, err := f.Fingerprint("   \n")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
