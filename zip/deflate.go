package zip

import (
	"bytes"
	"compress/flate"
	"fmt"
	"io"
)

// inflateRaw decompresses a raw DEFLATE stream (no zlib/gzip wrapper, per
// the ZIP format) to exactly expectedSize bytes, mirroring
// original_source inflate.c's wrapper around zlib's raw inflate mode.
func inflateRaw(compressed []byte, expectedSize int) ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(compressed))
	defer fr.Close()
	out := make([]byte, expectedSize)
	if _, err := io.ReadFull(fr, out); err != nil {
		return nil, fmt.Errorf("zip: inflate: %w", err)
	}
	return out, nil
}
