package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

var sobelGx = [3][3]int{{1, 0, -1}, {2, 0, -2}, {1, 0, -1}}
var sobelGy = [3][3]int{{1, 2, 1}, {0, 0, 0}, {-1, -2, -1}}

// edgeThreshold is the |Sx|+|Sy| cutoff above which a pixel is classified
// as an edge.
const edgeThreshold = 160

// EdgeMask is an immutable Sobel edge classification over an Image,
// computed once at load time: one byte per pixel, either 0 (non-edge) or
// 255 (edge).
type EdgeMask struct {
	w, h int
	mask []uint8
}

// ComputeEdgeMask runs the Sobel operator over im and caches the result.
func ComputeEdgeMask(im *Image) *EdgeMask {
	e := &EdgeMask{w: im.w, h: im.h, mask: make([]uint8, im.w*im.h)}
	for y := 0; y < im.h; y++ {
		for x := 0; x < im.w; x++ {
			e.mask[x+y*im.w] = sobelAt(im, x, y)
		}
	}
	return e
}

// At returns the edge classification (0 or 255) for linear pixel index i.
func (e *EdgeMask) At(i int) uint8 {
	return e.mask[i]
}

// Len returns the number of pixels covered by the mask (equal to W*H).
func (e *EdgeMask) Len() int {
	return len(e.mask)
}

// SavePNG writes the edge mask as an 8-bit grayscale PNG, mirroring the
// original implementation's sobel.png debug dump. Left opt-in (wired
// behind an explicit CLI flag) rather than written on every Load.
func (e *EdgeMask) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("raster: create: %w", err)
	}
	defer f.Close()

	out := image.NewGray(image.Rect(0, 0, e.w, e.h))
	for y := 0; y < e.h; y++ {
		for x := 0; x < e.w; x++ {
			out.SetGray(x, y, color.Gray{Y: e.mask[x+y*e.w]})
		}
	}
	if err := png.Encode(f, out); err != nil {
		return fmt.Errorf("raster: encode: %w", err)
	}
	return nil
}

// sobelAt computes the Sobel edge classification at (x, y). Border pixels
// are defined to be non-edge.
func sobelAt(im *Image, x, y int) uint8 {
	if x == 0 || x >= im.w-1 || y == 0 || y >= im.h-1 {
		return 0
	}
	sumX, sumY := 0, 0
	for m := -1; m <= 1; m++ {
		for n := -1; n <= 1; n++ {
			g := im.grayAt(x+n, y+m)
			sumX += g * sobelGx[m+1][n+1]
			sumY += g * sobelGy[m+1][n+1]
		}
	}
	if abs(sumX)+abs(sumY) > edgeThreshold {
		return 255
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ChangesSobel returns true iff flipping the LSB of channel c at (x, y)
// would change the Sobel classification of any pixel in the 3x3
// neighborhood centered on (x, y), compared against the stored mask e.
// It mutates im temporarily and restores it before returning.
func ChangesSobel(im *Image, e *EdgeMask, x, y int, c uint8) bool {
	old := im.GetChannelLSB(x, y, c)
	im.SetChannelLSB(x, y, c, old^0x01)

	changed := false
	for i := x - 1; i <= x+1 && !changed; i++ {
		for j := y - 1; j <= y+1 && !changed; j++ {
			if i >= 0 && j >= 0 && i < im.w && j < im.h {
				if sobelAt(im, i, j) != e.At(i+j*im.w) {
					changed = true
				}
			}
		}
	}

	im.SetChannelLSB(x, y, c, old)
	return changed
}
