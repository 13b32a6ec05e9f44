package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataOutFormatsPlainFixedPoint(t *testing.T) {
	out := DataOut(Result{Num: 12.5}, Spec{Type: F, Width: 8, Decimals: 1}, '.', ',')
	assert.Equal(t, "    12.5", string(out))
}

func TestDataOutSysmisYieldsDotRightAligned(t *testing.T) {
	out := DataOut(Result{Num: -math.MaxFloat64}, Spec{Type: F, Width: 5, Decimals: 0}, '.', ',')
	assert.Equal(t, "    .", string(out))
}

func TestDataOutStringPadsToWidth(t *testing.T) {
	out := DataOut(Result{Str: []byte("hi"), IsText: true}, Spec{Type: A, Width: 5}, '.', ',')
	assert.Equal(t, "hi   ", string(out))
}

func TestDataOutAHexUppercasesHex(t *testing.T) {
	out := DataOut(Result{Str: []byte("AB"), IsText: true}, Spec{Type: AHEX, Width: 4}, '.', ',')
	assert.Equal(t, "4142", string(out))
}

func TestDataOutCommaGroupsThousands(t *testing.T) {
	out := DataOut(Result{Num: 1234}, Spec{Type: COMMA, Width: 8, Decimals: 0}, '.', ',')
	assert.Equal(t, "   1,234", string(out))
}

func TestDataOutDollarPrependsSign(t *testing.T) {
	out := DataOut(Result{Num: 100}, Spec{Type: DOLLAR, Width: 8, Decimals: 0}, '.', ',')
	assert.Equal(t, "    $100", string(out))
}

func TestDataOutOverflowYieldsStars(t *testing.T) {
	out := DataOut(Result{Num: 123456789}, Spec{Type: F, Width: 4, Decimals: 0}, '.', ',')
	assert.Equal(t, "****", string(out))
}

func TestDataOutNFormatZeroPads(t *testing.T) {
	out := DataOut(Result{Num: 5}, Spec{Type: N, Width: 4, Decimals: 0}, '.', ',')
	assert.Equal(t, "0005", string(out))
}

func TestDataOutNFormatNegativeYieldsStars(t *testing.T) {
	out := DataOut(Result{Num: -1}, Spec{Type: N, Width: 4, Decimals: 0}, '.', ',')
	assert.Equal(t, "****", string(out))
}

func TestDataOutRBRoundTripsFloat64Bits(t *testing.T) {
	out := DataOut(Result{Num: 3.25}, Spec{Type: RB, Width: 8}, '.', ',')
	assert.Equal(t, 3.25, math.Float64frombits(beUint64(out)))
}

func beUint64(b []byte) uint64 {
	var u uint64
	for _, c := range b {
		u = u<<8 | uint64(c)
	}
	return u
}

func TestDataOutWkdayName(t *testing.T) {
	out := DataOut(Result{Num: 1}, Spec{Type: WKDAY, Width: 9}, '.', ',')
	assert.Equal(t, "SUNDAY   ", string(out))
}

func TestDataOutMonthName(t *testing.T) {
	out := DataOut(Result{Num: 3}, Spec{Type: MONTH, Width: 9}, '.', ',')
	assert.Equal(t, "MARCH    ", string(out))
}

func TestDataOutDateFormatsDDMonYY(t *testing.T) {
	jd := float64(152384) * 86400 // 1999-10-01, per calendar package doc
	out := DataOut(Result{Num: jd}, Spec{Type: DATE, Width: 9}, '.', ',')
	assert.Equal(t, "01-OCT-99", string(out))
}

func TestNumToStringTrimsTrailingZeros(t *testing.T) {
	assert.Equal(t, "12.5", NumToString(12.50, 0, 2, true))
	assert.Equal(t, "12.50", NumToString(12.50, 0, 2, false))
}
