// Package raster owns the 24-bit RGB pixel grid a steganogram is written
// into and read from, and the Sobel edge classification used by Sobel
// mode. Decode accepts any registered format via image.Decode; encode
// always writes image/png for a lossless result.
package raster

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // registers the JPEG decoder for image.Decode
	"image/png"
	"os"
)

// Image is a mutable 24-bit RGB pixel grid, addressed by linear index
// i = x + y*W. Coordinate accesses are bounds-checked; an out-of-range
// access is a programming error and panics.
type Image struct {
	w, h int
	pix  []uint8 // len w*h*3, channel order R,G,B
}

// Load decodes the image at path (any format image.Decode recognizes) and
// converts it to a flat 24-bit RGB buffer, discarding alpha.
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("raster: open: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("raster: decode: %w", err)
	}

	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	im := &Image{w: w, h: h, pix: make([]uint8, w*h*3)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			off := (x + y*w) * 3
			im.pix[off+0] = uint8(r / 256)
			im.pix[off+1] = uint8(g / 256)
			im.pix[off+2] = uint8(b / 256)
		}
	}
	return im, nil
}

// Save writes the image to path in PNG format — the only format used for
// output, since steganographic payloads survive only lossless re-encoding.
func (im *Image) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("raster: create: %w", err)
	}
	defer f.Close()

	out := image.NewRGBA(image.Rect(0, 0, im.w, im.h))
	for y := 0; y < im.h; y++ {
		for x := 0; x < im.w; x++ {
			off := (x + y*im.w) * 3
			out.Set(x, y, color.RGBA{
				R: im.pix[off+0],
				G: im.pix[off+1],
				B: im.pix[off+2],
				A: 255,
			})
		}
	}
	if err := png.Encode(f, out); err != nil {
		return fmt.Errorf("raster: encode: %w", err)
	}
	return nil
}

// Dimensions returns the image's width and height in pixels.
func (im *Image) Dimensions() (width, height int) {
	return im.w, im.h
}

// TotalPixels returns W*H.
func (im *Image) TotalPixels() int {
	return im.w * im.h
}

func (im *Image) checkBounds(x, y int) {
	if x < 0 || x >= im.w || y < 0 || y >= im.h {
		panic(fmt.Sprintf("raster: coordinate (%d,%d) out of bounds for %dx%d image", x, y, im.w, im.h))
	}
}

// GetChannelLSB returns the least-significant bit of channel c (0=R,
// 1=G, 2=B) at (x, y).
func (im *Image) GetChannelLSB(x, y int, c uint8) uint8 {
	im.checkBounds(x, y)
	off := (x + y*im.w) * 3
	return im.pix[off+int(c)] & 0x01
}

// SetChannelLSB sets the least-significant bit of channel c (0=R, 1=G,
// 2=B) at (x, y) to bit (0 or 1), leaving the other 7 bits untouched.
func (im *Image) SetChannelLSB(x, y int, c uint8, bit uint8) {
	im.checkBounds(x, y)
	off := (x + y*im.w) * 3
	if bit&0x01 != 0 {
		im.pix[off+int(c)] |= 0x01
	} else {
		im.pix[off+int(c)] &^= 0x01
	}
}

// grayAt returns the integer-averaged grayscale value at (x, y), used by
// the Sobel operator.
func (im *Image) grayAt(x, y int) int {
	off := (x + y*im.w) * 3
	return (int(im.pix[off+0]) + int(im.pix[off+1]) + int(im.pix[off+2])) / 3
}
