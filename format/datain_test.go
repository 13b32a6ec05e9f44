package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataInParsesPlainNumber(t *testing.T) {
	res, err := DataIn([]byte("  123.45"), Spec{Type: F, Width: 8, Decimals: 2}, BigEndian, 0)
	require.NoError(t, err)
	assert.InDelta(t, 123.45, res.Num, 1e-9)
}

func TestDataInBlankIsSysmis(t *testing.T) {
	res, err := DataIn([]byte("        "), Spec{Type: F, Width: 8, Decimals: 2}, BigEndian, 0)
	require.NoError(t, err)
	assert.Equal(t, -math.MaxFloat64, res.Num)
}

func TestDataInImpliedDecimalsWithoutExplicitPoint(t *testing.T) {
	res, err := DataIn([]byte("12345"), Spec{Type: F, Width: 8, Decimals: 2}, BigEndian, 0)
	require.NoError(t, err)
	assert.InDelta(t, 123.45, res.Num, 1e-9)
}

func TestDataInCommaGroupingIgnored(t *testing.T) {
	res, err := DataIn([]byte("1,234"), Spec{Type: COMMA, Width: 8, Decimals: 0}, BigEndian, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1234, res.Num, 1e-9)
}

func TestDataInDollarStripsSign(t *testing.T) {
	res, err := DataIn([]byte("$100"), Spec{Type: DOLLAR, Width: 8, Decimals: 0}, BigEndian, 0)
	require.NoError(t, err)
	assert.InDelta(t, 100, res.Num, 1e-9)
}

func TestDataInRejectsMultipleDecimalPoints(t *testing.T) {
	_, err := DataIn([]byte("1.2.3"), Spec{Type: F, Width: 8, Decimals: 0}, BigEndian, 0)
	assert.Error(t, err)
}

func TestDataInParsesStringFormatPadded(t *testing.T) {
	res, err := DataIn([]byte("ab"), Spec{Type: A, Width: 5}, BigEndian, 0)
	require.NoError(t, err)
	assert.Equal(t, "ab   ", string(res.Str))
	assert.True(t, res.IsText)
}

func TestDataInAHexDecodesPairs(t *testing.T) {
	res, err := DataIn([]byte("4142"), Spec{Type: AHEX, Width: 4}, BigEndian, 0)
	require.NoError(t, err)
	assert.Equal(t, "AB", string(res.Str))
}

func TestDataInPIBHexParsesHexInteger(t *testing.T) {
	res, err := DataIn([]byte("FF"), Spec{Type: PIBHEX, Width: 2}, BigEndian, 0)
	require.NoError(t, err)
	assert.Equal(t, 255.0, res.Num)
}

func TestDataInIBBigEndianSigned(t *testing.T) {
	res, err := DataIn([]byte{0xFF, 0xFF}, Spec{Type: IB, Width: 2, Decimals: 0}, BigEndian, 0)
	require.NoError(t, err)
	assert.Equal(t, -1.0, res.Num)
}

func TestDataInIBLittleEndianReversesBytes(t *testing.T) {
	res, err := DataIn([]byte{0x01, 0x00}, Spec{Type: IB, Width: 2, Decimals: 0}, LittleEndian, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Num)
}

func TestDataInRBRoundTripsFloat64Bits(t *testing.T) {
	field := make([]byte, 8)
	bits := math.Float64bits(3.25)
	for i := 0; i < 8; i++ {
		field[i] = byte(bits >> (56 - 8*i))
	}
	res, err := DataIn(field, Spec{Type: RB, Width: 8}, BigEndian, 0)
	require.NoError(t, err)
	assert.Equal(t, 3.25, res.Num)
}

func TestDataInZParsesZonedDecimal(t *testing.T) {
	field := []byte{0xF1, 0xF2, 0xC3}
	res, err := DataIn(field, Spec{Type: Z, Width: 3, Decimals: 0}, BigEndian, 0)
	require.NoError(t, err)
	assert.Equal(t, 123.0, res.Num)
}

func TestDataInZNegativeSignNibble(t *testing.T) {
	field := []byte{0xF1, 0xF2, 0xD3}
	res, err := DataIn(field, Spec{Type: Z, Width: 3, Decimals: 0}, BigEndian, 0)
	require.NoError(t, err)
	assert.Equal(t, -123.0, res.Num)
}

func TestDataInDateParsesDMY(t *testing.T) {
	res, err := DataIn([]byte("25-12-2024"), Spec{Type: DATE, Width: 11}, BigEndian, 0)
	require.NoError(t, err)
	assert.True(t, res.Num > 0)
}

func TestDataInTimeParsesHoursMinutesSeconds(t *testing.T) {
	res, err := DataIn([]byte("01:02:03"), Spec{Type: TIME, Width: 8}, BigEndian, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1*3600+2*60+3, res.Num, 1e-9)
}

func TestDataInWkdayRecognizesPrefix(t *testing.T) {
	res, err := DataIn([]byte("Monday"), Spec{Type: WKDAY, Width: 9}, BigEndian, 0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Num)
}

func TestDataInMonthRecognizesPrefix(t *testing.T) {
	res, err := DataIn([]byte("February"), Spec{Type: MONTH, Width: 9}, BigEndian, 0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Num)
}

func TestDataInUnsupportedFormatErrors(t *testing.T) {
	_, err := DataIn([]byte("x"), Spec{Type: X, Width: 1}, BigEndian, 0)
	assert.Error(t, err)
}
