package datalist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstgnz/pspp/format"
)

func TestFixedModeSingleRecord(t *testing.T) {
	input := "301990   \n402000   \n"
	fields := []FieldSpec{
		{Name: "age", Rec: 1, FirstCol: 1, LastCol: 2, Format: format.MustParse("F2.0")},
		{Name: "year", Rec: 1, FirstCol: 3, LastCol: 6, Format: format.MustParse("F4.0")},
	}
	r, err := New(strings.NewReader(input), Fixed, fields, 1)
	require.NoError(t, err)

	age, ok := r.Dict().Lookup("age")
	require.True(t, ok)
	year, ok := r.Dict().Lookup("year")
	require.True(t, ok)

	c1, err := r.ReadCase()
	require.NoError(t, err)
	require.False(t, c1.Null())
	assert.Equal(t, 30.0, c1.Num(age))
	assert.Equal(t, 1990.0, c1.Num(year))

	c2, err := r.ReadCase()
	require.NoError(t, err)
	assert.Equal(t, 40.0, c2.Num(age))
	assert.Equal(t, 2000.0, c2.Num(year))

	c3, err := r.ReadCase()
	require.NoError(t, err)
	assert.True(t, c3.Null())
}

func TestFixedModeMultiRecordPerCase(t *testing.T) {
	input := "10\n20\n"
	fields := []FieldSpec{
		{Name: "a", Rec: 1, FirstCol: 1, LastCol: 2, Format: format.MustParse("F2.0")},
		{Name: "b", Rec: 2, FirstCol: 1, LastCol: 2, Format: format.MustParse("F2.0")},
	}
	r, err := New(strings.NewReader(input), Fixed, fields, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, r.records)

	c, err := r.ReadCase()
	require.NoError(t, err)
	a, _ := r.Dict().Lookup("a")
	b, _ := r.Dict().Lookup("b")
	assert.Equal(t, 10.0, c.Num(a))
	assert.Equal(t, 20.0, c.Num(b))
}

func TestListModeOneRecordPerCase(t *testing.T) {
	input := "1 2 3\n4 5 6\n"
	fields := []FieldSpec{
		{Name: "x", Format: format.MustParse("F1.0")},
		{Name: "y", Format: format.MustParse("F1.0")},
		{Name: "z", Format: format.MustParse("F1.0")},
	}
	r, err := New(strings.NewReader(input), List, fields, 0)
	require.NoError(t, err)

	x, _ := r.Dict().Lookup("x")
	c1, err := r.ReadCase()
	require.NoError(t, err)
	assert.Equal(t, 1.0, c1.Num(x))

	c2, err := r.ReadCase()
	require.NoError(t, err)
	assert.Equal(t, 4.0, c2.Num(x))
}

func TestFreeModeTokensSpanRecords(t *testing.T) {
	input := "1 2\n3\n4 5 6\n"
	fields := []FieldSpec{
		{Name: "a", Format: format.MustParse("F1.0")},
		{Name: "b", Format: format.MustParse("F1.0")},
		{Name: "c", Format: format.MustParse("F1.0")},
	}
	r, err := New(strings.NewReader(input), Free, fields, 0)
	require.NoError(t, err)

	a, _ := r.Dict().Lookup("a")
	b, _ := r.Dict().Lookup("b")
	c, _ := r.Dict().Lookup("c")

	c1, err := r.ReadCase()
	require.NoError(t, err)
	assert.Equal(t, 1.0, c1.Num(a))
	assert.Equal(t, 2.0, c1.Num(b))
	assert.Equal(t, 3.0, c1.Num(c))

	c2, err := r.ReadCase()
	require.NoError(t, err)
	assert.Equal(t, 4.0, c2.Num(a))
	assert.Equal(t, 5.0, c2.Num(b))
	assert.Equal(t, 6.0, c2.Num(c))
}

func TestTokenizeDelimitedHonorsQuotes(t *testing.T) {
	tokens := tokenizeDelimited(`abc,"quoted value",def`)
	assert.Equal(t, []string{"abc", "quoted value", "def"}, tokens)
}

func TestTokenizeDelimitedWhitespaceSeparators(t *testing.T) {
	tokens := tokenizeDelimited("a   b\tc")
	assert.Equal(t, []string{"a", "b", "c"}, tokens)
}

func TestColumnSlicePadsShortLines(t *testing.T) {
	assert.Equal(t, "ab  ", columnSlice("ab", 1, 4))
}

func TestFieldSpecWidthForStringFormat(t *testing.T) {
	f := FieldSpec{Format: format.MustParse("A10")}
	assert.Equal(t, 10, f.Width())
}

func TestParseFormatGroupSimpleSequence(t *testing.T) {
	fields, err := ParseFormatGroup([]string{"a", "b"}, "F2.0, F4.0")
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "a", fields[0].Name)
	assert.Equal(t, 1, fields[0].FirstCol)
	assert.Equal(t, 2, fields[0].LastCol)
	assert.Equal(t, "b", fields[1].Name)
	assert.Equal(t, 3, fields[1].FirstCol)
	assert.Equal(t, 6, fields[1].LastCol)
}

func TestParseFormatGroupRepeatCount(t *testing.T) {
	fields, err := ParseFormatGroup([]string{"a", "b", "c"}, "3*F2.0")
	require.NoError(t, err)
	require.Len(t, fields, 3)
	assert.Equal(t, 1, fields[0].FirstCol)
	assert.Equal(t, 3, fields[1].FirstCol)
	assert.Equal(t, 5, fields[2].FirstCol)
}

func TestParseFormatGroupSkipAndTab(t *testing.T) {
	fields, err := ParseFormatGroup([]string{"a"}, "T5, F2.0")
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, 5, fields[0].FirstCol)
}

func TestParseFormatGroupSlashAdvancesRecord(t *testing.T) {
	fields, err := ParseFormatGroup([]string{"a", "b"}, "F2.0 / F2.0")
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, 1, fields[0].Rec)
	assert.Equal(t, 2, fields[1].Rec)
	assert.Equal(t, 1, fields[1].FirstCol)
}

func TestParseFormatGroupNested(t *testing.T) {
	fields, err := ParseFormatGroup([]string{"a", "b", "c", "d"}, "2*(F2.0, F3.0)")
	require.NoError(t, err)
	require.Len(t, fields, 4)
	assert.Equal(t, 1, fields[0].FirstCol)
	assert.Equal(t, 3, fields[1].FirstCol)
	assert.Equal(t, 6, fields[2].FirstCol)
	assert.Equal(t, 8, fields[3].FirstCol)
}

func TestParseFormatGroupMismatchedNameCount(t *testing.T) {
	_, err := ParseFormatGroup([]string{"a"}, "F2.0, F3.0")
	assert.Error(t, err)
}

func TestParseFormatGroupUnclosedParen(t *testing.T) {
	_, err := ParseFormatGroup([]string{"a"}, "(F2.0")
	assert.Error(t, err)
}

func TestRepeatingReaderFixedCount(t *testing.T) {
	spec := RepeatingSpec{
		StartsCol:   6,
		RecordWidth: 20,
		OccurFields: []FieldSpec{
			{Name: "val", FirstCol: 6, LastCol: 7, Format: format.MustParse("F2.0")},
		},
	}
	rr, err := NewRepeatingReader(strings.NewReader("ID001101214\n"), spec, nil, 3)
	require.NoError(t, err)

	val, ok := rr.Dict().Lookup("val")
	require.True(t, ok)

	cases, err := rr.ReadOccurrences()
	require.NoError(t, err)
	require.Len(t, cases, 3)
	assert.Equal(t, 10.0, cases[0].Num(val))
	assert.Equal(t, 12.0, cases[1].Num(val))
	assert.Equal(t, 14.0, cases[2].Num(val))
}

func TestRepeatingReaderCountFromField(t *testing.T) {
	spec := RepeatingSpec{
		StartsCol:   3,
		RecordWidth: 20,
		OccurFields: []FieldSpec{
			{Name: "val", FirstCol: 3, LastCol: 4, Format: format.MustParse("F2.0")},
		},
	}
	countField := &FieldSpec{Name: "n", FirstCol: 1, LastCol: 1, Format: format.MustParse("F1.0")}
	rr, err := NewRepeatingReader(strings.NewReader("20102\n"), spec, countField, 0)
	require.NoError(t, err)

	val, _ := rr.Dict().Lookup("val")
	cases, err := rr.ReadOccurrences()
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, 10.0, cases[0].Num(val))
	assert.Equal(t, 2.0, cases[1].Num(val))
}

func TestParseColumnRef(t *testing.T) {
	col, err := ParseColumnRef("STARTS=12")
	require.NoError(t, err)
	assert.Equal(t, 12, col)

	_, err = ParseColumnRef("malformed")
	assert.Error(t, err)
}
