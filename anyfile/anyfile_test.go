package anyfile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstgnz/pspp"
	"github.com/mstgnz/pspp/sav"
)

func buildSystemFileBytes(t *testing.T) []byte {
	t.Helper()
	d := pspp.NewDictionary()
	age, err := d.AddVar("age", 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	w, err := sav.NewWriter(&buf, d, sav.Options{Compress: false})
	require.NoError(t, err)

	c := pspp.NewCase(d.NextValueIndex())
	c.Set(age, pspp.NewNumericValue(42))
	require.NoError(t, w.WriteCase(c))
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDetectSystemFile(t *testing.T) {
	data := buildSystemFileBytes(t)
	f, _, err := Detect(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, SystemFile, f)
}

func TestDetectUnknown(t *testing.T) {
	f, _, err := Detect(bytes.NewReader([]byte("not a recognizable data file at all")))
	require.NoError(t, err)
	assert.Equal(t, Unknown, f)
}

func TestOpenSystemFileAndReadCase(t *testing.T) {
	data := buildSystemFileBytes(t)
	ar, err := Open(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, SystemFile, ar.Format())

	age, ok := ar.Dict().Lookup("age")
	require.True(t, ok)

	c, err := ar.ReadCase()
	require.NoError(t, err)
	require.False(t, c.Null())
	assert.Equal(t, 42.0, c.Num(age))

	c, err = ar.ReadCase()
	require.NoError(t, err)
	assert.True(t, c.Null())
}

func TestOpenUnrecognizedFormatErrors(t *testing.T) {
	_, err := Open(bytes.NewReader([]byte("garbage")))
	assert.Error(t, err)
}

func TestCreateSystemFileRoundTrip(t *testing.T) {
	d := pspp.NewDictionary()
	score, err := d.AddVar("score", 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	aw, err := Create(&buf, SystemFile, d)
	require.NoError(t, err)

	c := pspp.NewCase(d.NextValueIndex())
	c.Set(score, pspp.NewNumericValue(7))
	require.NoError(t, aw.WriteCase(c))
	require.NoError(t, aw.Close())

	ar, err := Open(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	s, ok := ar.Dict().Lookup("score")
	require.True(t, ok)
	got, err := ar.ReadCase()
	require.NoError(t, err)
	assert.Equal(t, 7.0, got.Num(s))
}

func TestCreateUnsupportedFormatErrors(t *testing.T) {
	d := pspp.NewDictionary()
	_, err := Create(&bytes.Buffer{}, PortableFile, d)
	assert.Error(t, err)
}
