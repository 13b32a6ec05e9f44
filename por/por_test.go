package por

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstgnz/pspp"
	"github.com/mstgnz/pspp/format"
)

// base30Encode renders n (>=0) in the base-30 alphabet used throughout the
// portable file's numeric token grammar (tokens.go's readFloat/readInt).
func base30Encode(n int) string {
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{base30Digits[n%30]}, b...)
		n /= 30
	}
	return string(b)
}

func encInt(n int) string { return base30Encode(n) + "/" }
func encStr(s string) string { return encInt(len(s)) + s }

// synthesizeHeader builds the 464-byte header/signature prefix every
// portable file opens with: 264 bytes of ignored filler, followed by 192
// bytes that-when read back through the translation table this package
// builds from them-produce an identity mapping for the ASCII range the
// body actually uses, followed by the literal "SPSSPORT" signature.
func synthesizeHeader() []byte {
	var buf bytes.Buffer
	buf.Write(bytes.Repeat([]byte("X"), 264))
	buf.WriteString(portableToLocal[64:256])
	buf.WriteString("SPSSPORT")
	return buf.Bytes()
}

// buildPortableFile assembles a minimal one-variable portable file with two
// cases: AGE=30 and AGE=system-missing.
func buildPortableFile() []byte {
	var body bytes.Buffer
	body.WriteByte('A')
	body.WriteString(encStr("20240101"))
	body.WriteString(encStr("120000"))
	body.WriteByte('4')
	body.WriteString(encInt(1))
	body.WriteString(encInt(161))
	body.WriteByte('7')
	body.WriteString(encInt(0)) // numeric, width 0
	body.WriteString(encStr("AGE"))
	for i := 0; i < 2; i++ { // print then write format, both F8.2
		body.WriteString(encInt(5))
		body.WriteString(encInt(8))
		body.WriteString(encInt(2))
	}
	body.WriteByte('F')
	body.WriteString(encInt(30))
	body.WriteString("*.") // system-missing: '*' plus one terminator byte
	body.WriteByte('Z')

	var full bytes.Buffer
	full.Write(synthesizeHeader())
	full.Write(body.Bytes())
	return full.Bytes()
}

func TestOpenParsesDictionaryAndInfo(t *testing.T) {
	r, err := Open(bytes.NewReader(buildPortableFile()))
	require.NoError(t, err)

	assert.Equal(t, "01 01 2024", r.Info.CreationDate)
	assert.Equal(t, "12:00:00", r.Info.CreationTime)

	v, ok := r.Dict().Lookup("AGE")
	require.True(t, ok)
	assert.True(t, v.IsNumeric())
	assert.Equal(t, format.F, v.PrintFormat.Type)
	assert.Equal(t, 8, v.PrintFormat.Width)
	assert.Equal(t, 2, v.PrintFormat.Decimals)
}

func TestReadCaseSequence(t *testing.T) {
	r, err := Open(bytes.NewReader(buildPortableFile()))
	require.NoError(t, err)
	age, ok := r.Dict().Lookup("AGE")
	require.True(t, ok)

	c1, err := r.ReadCase()
	require.NoError(t, err)
	require.False(t, c1.Null())
	assert.Equal(t, 30.0, c1.Num(age))

	c2, err := r.ReadCase()
	require.NoError(t, err)
	require.False(t, c2.Null())
	assert.True(t, c2.Data(age).IsSysmis())

	c3, err := r.ReadCase()
	require.NoError(t, err)
	assert.True(t, c3.Null())
}

func TestOpenRejectsBadSignature(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(bytes.Repeat([]byte("X"), 264))
	buf.WriteString(portableToLocal[64:256])
	buf.WriteString("NOTAVALID")
	_, err := Open(bytes.NewReader(buf.Bytes()))
	assert.Error(t, err)
}

func TestBase30ValueRoundTrip(t *testing.T) {
	for i := 0; i < len(base30Digits); i++ {
		assert.Equal(t, i, base30Value(base30Digits[i]))
	}
	assert.Equal(t, -1, base30Value('!'))
}

func TestTranslateFmtUnknownCodeFallsBackToF(t *testing.T) {
	assert.Equal(t, int(format.F), translateFmt(9999))
}

func TestTranslateFmtKnownCode(t *testing.T) {
	assert.Equal(t, int(format.DATE), translateFmt(20))
}
