package zip

import (
	"bytes"
	"compress/flate"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstgnz/pspp/telemetry"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Add("dict.xml", []byte("hello dictionary")))
	require.NoError(t, w.Add("data.bin", []byte("some binary payload")))
	require.NoError(t, w.Close())

	r, err := OpenReader(BytesReaderAt(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"dict.xml", "data.bin"}, r.Names())

	got, err := r.Open("dict.xml")
	require.NoError(t, err)
	assert.Equal(t, "hello dictionary", string(got))

	got, err = r.Open("data.bin")
	require.NoError(t, err)
	assert.Equal(t, "some binary payload", string(got))
}

func TestOpenMissingMemberErrors(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Add("a.txt", []byte("x")))
	require.NoError(t, w.Close())

	r, err := OpenReader(BytesReaderAt(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	_, err = r.Open("missing.txt")
	assert.Error(t, err)
}

func TestOpenReaderRejectsGarbage(t *testing.T) {
	garbage := []byte("not a zip file at all")
	_, err := OpenReader(BytesReaderAt(garbage), int64(len(garbage)))
	assert.Error(t, err)
}

func TestOpenDetectsCorruptedMember(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Add("dict.xml", []byte("hello dictionary")))
	require.NoError(t, w.Close())

	raw := buf.Bytes()
	i := bytes.Index(raw, []byte("hello dictionary"))
	require.GreaterOrEqual(t, i, 0)
	corrupted := append([]byte(nil), raw...)
	corrupted[i] ^= 0xFF // flips a content byte without touching the stored CRC

	r, err := OpenReader(BytesReaderAt(corrupted), int64(len(corrupted)))
	require.NoError(t, err)

	m := telemetry.New()
	r.UseMetrics(m)

	_, err = r.Open("dict.xml")
	assert.Error(t, err)
	assert.EqualValues(t, 1, m.Snapshot().ZIPCRCFailures)
}

func TestInflateRawDecodesDeflateStream(t *testing.T) {
	var compressed bytes.Buffer
	fw, err := flate.NewWriter(&compressed, flate.DefaultCompression)
	require.NoError(t, err)
	original := []byte("a string long enough to exercise deflate's dictionary window nicely")
	_, err = fw.Write(original)
	require.NoError(t, err)
	require.NoError(t, fw.Close())

	out, err := inflateRaw(compressed.Bytes(), len(original))
	require.NoError(t, err)
	assert.Equal(t, original, out)
}
