package sav

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWriteNumericBiasedInstructionBytes pins down the biased-integer
// branch (instruction bytes 1..251) per the encoder's value+bias rule:
// a value whose value+bias lands in [1,251] must be written as exactly
// that instruction byte, and must decode back to the original value.
func TestWriteNumericBiasedInstructionBytes(t *testing.T) {
	cases := []struct {
		value   float64
		wantByte byte
	}{
		{0, 100},
		{100, 200},
		{150, 250},
		{-99, 1},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		w := newCompressWriter(&buf)
		require.NoError(t, w.WriteNumeric(c.value, false))
		require.NoError(t, w.Close())

		instrs := buf.Bytes()[:8]
		assert.Equal(t, c.wantByte, instrs[0], "value %v", c.value)

		r := newCompressReader(bytes.NewReader(buf.Bytes()))
		raw, sysmis, eof, err := r.ReadElement()
		require.NoError(t, err)
		assert.False(t, sysmis)
		assert.False(t, eof)
		assert.Equal(t, c.value, bitsToFloat(raw))
	}
}

func TestWriteNumericOutOfBiasRangeFallsBackToRaw(t *testing.T) {
	var buf bytes.Buffer
	w := newCompressWriter(&buf)
	require.NoError(t, w.WriteNumeric(200, false))
	require.NoError(t, w.Close())

	instrs := buf.Bytes()[:8]
	assert.Equal(t, byte(instrRaw), instrs[0])

	r := newCompressReader(bytes.NewReader(buf.Bytes()))
	raw, _, _, err := r.ReadElement()
	require.NoError(t, err)
	assert.Equal(t, 200.0, bitsToFloat(raw))
}

func TestWriteNumericSysmisInstruction(t *testing.T) {
	var buf bytes.Buffer
	w := newCompressWriter(&buf)
	require.NoError(t, w.WriteNumeric(0, true))
	require.NoError(t, w.Close())

	r := newCompressReader(bytes.NewReader(buf.Bytes()))
	_, sysmis, _, err := r.ReadElement()
	require.NoError(t, err)
	assert.True(t, sysmis)
}

func bitsToFloat(raw [8]byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(raw[:]))
}
