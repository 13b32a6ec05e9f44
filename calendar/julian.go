// Package calendar converts between (year, month, day) and a Julian day
// count, using the Meeus/Covington formulas ported from
// original_source/lib/julcal/julcal.c. Day 0 is the midnight separating
// 8 Oct 1582 and 9 Oct 1582 (Gregorian); (1999,10,1) is day 152384.
package calendar

// julOffset mirrors JUL_OFFSET in julcal.c.
const julOffset = 2299160

// ToJulian returns the Julian day number for (y, m, d) as an offset from
// the epoch documented above.
func ToJulian(y, m, d int) int {
	m--
	y += floorDiv(m, 12)
	m -= floorDiv(m, 12) * 12

	if m < 0 {
		m += 12
		y--
	}
	if m < 2 {
		m += 13
		y--
	} else {
		m++
	}

	return (1461*(y+4716)/4 +
		153*(m+1)/5 +
		(d - 1) -
		1524 +
		3 -
		y/100 +
		y/400 -
		y/4000 -
		julOffset)
}

// FromJulian is the inverse of ToJulian.
func FromJulian(jd int) (y, m, d int) {
	jd += julOffset

	var a int
	{
		aa := jd - 1721120
		ab := 31 * floorDiv(aa, 1460969)
		aa = floorMod(aa, 1460969)
		ab += 3 * floorDiv(aa, 146097)
		aa = floorMod(aa, 146097)
		if aa == 146096 {
			ab += 3
		} else {
			ab += aa / 36524
		}
		a = jd + (ab - 2)
	}

	var ay, em int
	{
		b := a + 1524
		ay = (20*b - 2442) / 7305
		dd := 1461 * ay / 4
		ee := b - dd
		em = 10000 * ee / 306001
		d = ee - 306001*em/10000
	}

	mm := em - 1
	if mm > 12 {
		mm -= 12
	}
	m = mm
	if mm > 2 {
		y = ay - 4716
	} else {
		y = ay - 4715
	}
	return y, m, d
}

// DayOfYear returns the 1-based day-of-year for jd (original_source
// julian_to_jday).
func DayOfYear(jd int) int {
	y, _, _ := FromJulian(jd)
	return jd - ToJulian(y, 1, 1) + 1
}

// Weekday returns 1..7 with Sunday=1 for Julian day jd (original_source
// julian_to_wday: (jd - 3) % 7 + 1, adapted to floor-mod since Go's %
// keeps the sign of the dividend and jd may be negative).
func Weekday(jd int) int {
	return floorMod(jd-3, 7) + 1
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}
