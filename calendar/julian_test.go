package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToJulianDocumentedFixedPoint(t *testing.T) {
	assert.Equal(t, 152384, ToJulian(1999, 10, 1))
}

func TestToJulianEpoch(t *testing.T) {
	assert.Equal(t, 0, ToJulian(1582, 10, 9))
}

func TestFromJulianRoundTrip(t *testing.T) {
	cases := []struct{ y, m, d int }{
		{1999, 10, 1},
		{2000, 2, 29},
		{1900, 1, 1},
		{2024, 12, 31},
		{1582, 10, 9},
	}
	for _, c := range cases {
		jd := ToJulian(c.y, c.m, c.d)
		y, m, d := FromJulian(jd)
		assert.Equal(t, c.y, y, "year for %v", c)
		assert.Equal(t, c.m, m, "month for %v", c)
		assert.Equal(t, c.d, d, "day for %v", c)
	}
}

func TestToJulianIsMonotonic(t *testing.T) {
	prev := ToJulian(2000, 1, 1)
	for i := 2; i <= 31; i++ {
		next := ToJulian(2000, 1, i)
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestDayOfYearFirstDay(t *testing.T) {
	jd := ToJulian(2024, 1, 1)
	assert.Equal(t, 1, DayOfYear(jd))
}

func TestDayOfYearLeapYearLastDay(t *testing.T) {
	jd := ToJulian(2024, 12, 31)
	assert.Equal(t, 366, DayOfYear(jd))
}

func TestWeekdayRange(t *testing.T) {
	jd := ToJulian(2024, 1, 1)
	w := Weekday(jd)
	assert.GreaterOrEqual(t, w, 1)
	assert.LessOrEqual(t, w, 7)
}
