// Package zlibcodec wraps zlib (DEFLATE with a zlib header) compression
// for the engine pipeline.
package zlibcodec

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// Compress deflates data with a zlib wrapper.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("zlibcodec: write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zlibcodec: close: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress inflates data, which must decompress to exactly
// expectedLength bytes.
func Decompress(data []byte, expectedLength int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlibcodec: new reader: %w", err)
	}
	defer zr.Close()

	out := make([]byte, 0, expectedLength)
	buf := bytes.NewBuffer(out)
	if _, err := io.Copy(buf, zr); err != nil {
		return nil, fmt.Errorf("zlibcodec: inflate: %w", err)
	}
	if buf.Len() != expectedLength {
		return nil, fmt.Errorf("zlibcodec: inflated %d bytes, expected %d", buf.Len(), expectedLength)
	}

	return buf.Bytes(), nil
}
