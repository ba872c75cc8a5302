// Package engine implements the steganography pipeline: compress,
// encrypt, serialize a header, then bit-stripe the result across a
// key-derived, optionally Sobel-filtered, sequence of pixel/channel
// sites. Extract runs the inverse.
package engine

import (
	"fmt"

	"github.com/op/go-logging"

	stegano "github.com/zanicar/steganographer"
	"github.com/zanicar/steganographer/aescbc"
	"github.com/zanicar/steganographer/header"
	"github.com/zanicar/steganographer/keyschedule"
	"github.com/zanicar/steganographer/raster"
	"github.com/zanicar/steganographer/site"
	"github.com/zanicar/steganographer/zlibcodec"
)

var log = logging.MustGetLogger("engine")

var _ stegano.Engine = (*Engine)(nil)

// Engine owns a loaded image and its cached edge mask, and drives the
// embed/extract pipeline against them. An Engine is not safe for
// concurrent Embed/Extract calls against the same loaded image.
type Engine struct {
	img  *raster.Image
	edge *raster.EdgeMask
}

// New returns an Engine with no image loaded.
func New() *Engine {
	return &Engine{}
}

// Load reads an image from path, converts it to 24-bit RGB, and computes
// its Sobel edge mask. Ownership of any previously loaded image is
// released.
func (e *Engine) Load(path string) error {
	img, err := raster.Load(path)
	if err != nil {
		return err
	}
	e.img = img
	e.edge = raster.ComputeEdgeMask(img)
	return nil
}

// Save writes the currently loaded image to path as PNG.
func (e *Engine) Save(path string) error {
	if e.img == nil {
		return stegano.ErrNoImage
	}
	return e.img.Save(path)
}

// DumpEdgeMask writes the cached Sobel edge mask to path as a grayscale
// PNG, for visual debugging of Sobel mode.
func (e *Engine) DumpEdgeMask(path string) error {
	if e.edge == nil {
		return stegano.ErrNoImage
	}
	return e.edge.SavePNG(path)
}

// Embed conceals data in the loaded image: compress, encrypt, prefix with
// a header, then write it bit by bit across the key-derived site
// sequence. On CapacityExhausted the image is left in an undefined state
// and must be discarded by the caller (it is not saved by Embed).
func (e *Engine) Embed(password, data []byte, sobel bool) error {
	if e.img == nil {
		return stegano.ErrNoImage
	}
	width, height := e.img.Dimensions()
	if width == 0 || height == 0 {
		return stegano.ErrNoImage
	}
	if len(data) == 0 {
		return stegano.ErrEmptyPayload
	}

	compressed, err := zlibcodec.Compress(data)
	if err != nil {
		return fmt.Errorf("engine: compress: %w", err)
	}

	ciphertext, iv, err := aescbc.Encrypt(compressed, password)
	if err != nil {
		return fmt.Errorf("engine: encrypt: %w", err)
	}

	hdr := &header.Header{
		LengthUncompressed: uint64(len(data)),
		LengthEncrypted:    uint64(len(ciphertext)),
	}
	copy(hdr.IV[:], iv[:])

	log.Infof("message size: uncompressed=%d compressed=%d encrypted=%d", len(data), len(compressed), len(ciphertext))

	stream := append(hdr.Marshal(), ciphertext...)

	streams := keyschedule.Derive(password)
	selector := site.NewSelector(e.img, e.edge, streams.Perm, streams.Channel, sobel)

	for _, b := range stream {
		for bit := uint(0); bit < 8; bit++ {
			x, y, c, err := selector.Next()
			if err != nil {
				return err
			}
			e.img.SetChannelLSB(x, y, c, (b>>bit)&0x01)
		}
	}

	return nil
}

// Extract reveals data previously embedded in the loaded image with the
// same password and Sobel mode.
func (e *Engine) Extract(password []byte, sobel bool) ([]byte, error) {
	if e.img == nil {
		return nil, stegano.ErrNoImage
	}
	width, height := e.img.Dimensions()
	if width == 0 || height == 0 {
		return nil, stegano.ErrNoImage
	}

	streams := keyschedule.Derive(password)
	selector := site.NewSelector(e.img, e.edge, streams.Perm, streams.Channel, sobel)

	headerBytes, err := e.readBytes(selector, header.Size)
	if err != nil {
		return nil, err
	}
	hdr, err := header.Unmarshal(headerBytes)
	if err != nil {
		return nil, fmt.Errorf("engine: %w: %v", stegano.ErrInvalidHeader, err)
	}

	totalPixels := e.img.TotalPixels()
	if 8*(uint64(header.Size)+hdr.LengthEncrypted) > uint64(totalPixels) {
		return nil, stegano.ErrInvalidHeader
	}

	ciphertext, err := e.readBytes(selector, int(hdr.LengthEncrypted))
	if err != nil {
		return nil, err
	}

	var iv [16]byte
	copy(iv[:], hdr.IV[:16])
	compressed, err := aescbc.Decrypt(ciphertext, password, iv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", stegano.ErrDecryptFailed, err)
	}

	payload, err := zlibcodec.Decompress(compressed, int(hdr.LengthUncompressed))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", stegano.ErrDecompressFailed, err)
	}

	return payload, nil
}

// readBytes reads n bytes from the selector's site sequence, LSB first
// within each byte.
func (e *Engine) readBytes(selector *site.Selector, n int) ([]byte, error) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		var b byte
		for bit := uint(0); bit < 8; bit++ {
			x, y, c, err := selector.Next()
			if err != nil {
				return nil, err
			}
			if e.img.GetChannelLSB(x, y, c) != 0 {
				b |= 1 << bit
			}
		}
		out[i] = b
	}
	return out, nil
}
