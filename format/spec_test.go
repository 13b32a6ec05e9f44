package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWidthAndDecimals(t *testing.T) {
	sp, err := Parse("F8.2")
	require.NoError(t, err)
	assert.Equal(t, F, sp.Type)
	assert.Equal(t, 8, sp.Width)
	assert.Equal(t, 2, sp.Decimals)
}

func TestParseWidthOnly(t *testing.T) {
	sp, err := Parse("A16")
	require.NoError(t, err)
	assert.Equal(t, A, sp.Type)
	assert.Equal(t, 16, sp.Width)
	assert.Equal(t, 0, sp.Decimals)
}

func TestParseIsCaseInsensitiveAndTrims(t *testing.T) {
	sp, err := Parse("  f8.2  ")
	require.NoError(t, err)
	assert.Equal(t, F, sp.Type)
}

func TestParseUnknownNameErrors(t *testing.T) {
	_, err := Parse("BOGUS8")
	assert.Error(t, err)
}

func TestParseMissingWidthErrors(t *testing.T) {
	_, err := Parse("F")
	assert.Error(t, err)
}

func TestMustParsePanicsOnError(t *testing.T) {
	assert.Panics(t, func() { MustParse("NOPE") })
}

func TestSpecStringRoundTrip(t *testing.T) {
	assert.Equal(t, "F8.2", Spec{Type: F, Width: 8, Decimals: 2}.String())
	assert.Equal(t, "A16", Spec{Type: A, Width: 16}.String())
}

func TestCheckInputRejectsOutputOnlyFormat(t *testing.T) {
	err := CheckInput(Spec{Type: CCA, Width: 8, Decimals: 0})
	assert.Error(t, err)
}

func TestCheckInputRejectsBadWidth(t *testing.T) {
	err := CheckInput(Spec{Type: F, Width: 0, Decimals: 0})
	assert.Error(t, err)
}

func TestCheckInputRejectsOddWidthForEvenWidthType(t *testing.T) {
	err := CheckInput(Spec{Type: IB, Width: 3, Decimals: 0})
	assert.Error(t, err)
}

func TestCheckInputAcceptsValidSpec(t *testing.T) {
	assert.NoError(t, CheckInput(Spec{Type: F, Width: 8, Decimals: 2}))
}

func TestCheckOutputRejectsNarrowWidthForDecimals(t *testing.T) {
	err := CheckOutput(Spec{Type: F, Width: 2, Decimals: 5})
	assert.Error(t, err)
}

func TestCheckStringRejectsNarrowAFormat(t *testing.T) {
	err := CheckString(Spec{Type: A, Width: 4}, 10)
	assert.Error(t, err)
}

func TestCheckStringAcceptsWideEnoughAFormat(t *testing.T) {
	assert.NoError(t, CheckString(Spec{Type: A, Width: 10}, 10))
}

func TestConvertItoOForF(t *testing.T) {
	out := ConvertItoO(Spec{Type: F, Width: 2, Decimals: 5})
	assert.Equal(t, F, out.Type)
	assert.Equal(t, 7, out.Width)
}

func TestConvertItoOForIBDefaultsWhenNoDecimals(t *testing.T) {
	out := ConvertItoO(Spec{Type: IB, Width: 4, Decimals: 0})
	assert.Equal(t, F, out.Type)
	assert.Equal(t, 8, out.Width)
	assert.Equal(t, 2, out.Decimals)
}

func TestConvertItoOForAHexHalvesWidth(t *testing.T) {
	out := ConvertItoO(Spec{Type: AHEX, Width: 20})
	assert.Equal(t, 10, out.Width)
}

func TestVarWidthNumericIsZero(t *testing.T) {
	assert.Equal(t, 0, VarWidth(Spec{Type: F, Width: 8}))
}

func TestVarWidthStringMatchesWidth(t *testing.T) {
	assert.Equal(t, 16, VarWidth(Spec{Type: A, Width: 16}))
}

func TestIsStringReportsStringTypes(t *testing.T) {
	assert.True(t, IsString(A))
	assert.True(t, IsString(AHEX))
	assert.False(t, IsString(F))
}
