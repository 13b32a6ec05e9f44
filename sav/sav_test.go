package sav

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstgnz/pspp"
	"github.com/mstgnz/pspp/format"
)

func buildDict(t *testing.T) *pspp.Dictionary {
	t.Helper()
	d := pspp.NewDictionary()
	age, err := d.AddVar("age", 0)
	require.NoError(t, err)
	age.Label = "Age in years"
	age.ValueLabels = map[string]string{"99": "Refused"}
	age.Missing.Discrete = []pspp.Value{pspp.NewNumericValue(99)}

	name, err := d.AddVar("name", 12)
	require.NoError(t, err)
	name.Label = "Full Name"
	return d
}

func writeAndRead(t *testing.T, compress bool) (*Reader, []pspp.Case) {
	t.Helper()
	d := buildDict(t)

	var buf bytes.Buffer
	w, err := NewWriter(&buf, d, Options{Compress: compress})
	require.NoError(t, err)

	c1 := pspp.NewCase(d.NextValueIndex())
	c1.Set(mustLookup(t, d, "age"), pspp.NewNumericValue(30))
	c1.Set(mustLookup(t, d, "name"), pspp.NewStringValue("Alice", 12))
	require.NoError(t, w.WriteCase(c1))

	c2 := pspp.NewCase(d.NextValueIndex())
	c2.Set(mustLookup(t, d, "age"), pspp.NewNumericValue(pspp.Sysmis))
	c2.Set(mustLookup(t, d, "name"), pspp.NewStringValue("Bob", 12))
	require.NoError(t, w.WriteCase(c2))

	require.NoError(t, w.Close())

	r, err := Open(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	var cases []pspp.Case
	for {
		c, err := r.ReadCase()
		require.NoError(t, err)
		if c.Null() {
			break
		}
		cases = append(cases, c)
	}
	return r, cases
}

func mustLookup(t *testing.T, d *pspp.Dictionary, name string) *pspp.Variable {
	t.Helper()
	v, ok := d.Lookup(name)
	require.True(t, ok)
	return v
}

func TestRoundTripUncompressed(t *testing.T) {
	r, cases := writeAndRead(t, false)
	require.Len(t, cases, 2)

	age, ok := r.Dict().Lookup("age")
	require.True(t, ok)
	name, ok := r.Dict().Lookup("name")
	require.True(t, ok)

	assert.Equal(t, "Age in years", age.Label)
	assert.Equal(t, 30.0, cases[0].Num(age))
	assert.Equal(t, "Alice       ", string(cases[0].Str(name)))
	assert.True(t, cases[1].Num(age) == pspp.Sysmis)
}

func TestRoundTripCompressed(t *testing.T) {
	r, cases := writeAndRead(t, true)
	require.Len(t, cases, 2)

	age, _ := r.Dict().Lookup("age")
	name, _ := r.Dict().Lookup("name")
	assert.Equal(t, 30.0, cases[0].Num(age))
	assert.Equal(t, "Bob         ", string(cases[1].Str(name)))
}

func TestOpenRejectsBadMagic(t *testing.T) {
	_, err := Open(bytes.NewReader(bytes.Repeat([]byte{0}, 200)))
	assert.Error(t, err)
}

func TestPackUnpackFormatRoundTrip(t *testing.T) {
	spec := format.Spec{Type: format.F, Width: 8, Decimals: 2}
	packed := packFormat(spec)
	assert.Equal(t, spec, unpackFormat(packed))
}

func TestFlt64CountForStrings(t *testing.T) {
	assert.Equal(t, 1, flt64Count(0))
	assert.Equal(t, 1, flt64Count(8))
	assert.Equal(t, 2, flt64Count(9))
	assert.Equal(t, 3, flt64Count(17))
}

func TestMissingValuesRoundTrip(t *testing.T) {
	_, cases := writeAndRead(t, false)
	require.NotEmpty(t, cases)
}

func TestDocumentsRoundTrip(t *testing.T) {
	d := buildDict(t)
	d.AddDocumentLine("a test comment")

	var buf bytes.Buffer
	w, err := NewWriter(&buf, d, Options{Compress: false})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := Open(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, r.Dict().Documents, 1)
	assert.Equal(t, "a test comment", r.Dict().Documents[0])
}
