// Package site produces the ordered sequence of (x, y, channel) write
// sites an embed or extract call walks, from a key-permuted candidate
// list of pixel indices, honoring the Sobel-mode exclusion constraints
// when enabled.
package site

import (
	stegano "github.com/zanicar/steganographer"
	"github.com/zanicar/steganographer/mt19937"
	"github.com/zanicar/steganographer/raster"
)

// Selector walks a key-permuted sequence of write sites. A Selector is
// single-use: construct one per embed/extract call.
type Selector struct {
	img   *raster.Image
	edge  *raster.EdgeMask
	sobel bool

	width      int
	candidates []int
	position   int

	chosen  []bool
	channel *mt19937.Source
}

// NewSelector builds the candidate list (all pixels, or only edge pixels
// when sobel is true) and permutes it in place via Fisher-Yates driven by
// perm. channel drives the per-bit R/G/B draw.
func NewSelector(img *raster.Image, edge *raster.EdgeMask, perm, channel *mt19937.Source, sobel bool) *Selector {
	width, _ := img.Dimensions()
	total := img.TotalPixels()

	candidates := make([]int, 0, total)
	for i := 0; i < total; i++ {
		if !sobel || edge.At(i) == 255 {
			candidates = append(candidates, i)
		}
	}
	fisherYatesShuffle(candidates, perm)

	return &Selector{
		img:        img,
		edge:       edge,
		sobel:      sobel,
		width:      width,
		candidates: candidates,
		position:   0,
		chosen:     make([]bool, total),
		channel:    channel,
	}
}

// fisherYatesShuffle permutes list in place, driven by g.
func fisherYatesShuffle(list []int, g *mt19937.Source) {
	for i := len(list) - 1; i > 0; i-- {
		j := int(g.Uint32() % uint32(i+1))
		list[i], list[j] = list[j], list[i]
	}
}

// Next draws a channel and advances the cursor until it finds a valid
// site, returning it. Position 0 of the candidate list is never used,
// since the cursor is advanced before every test. A channel is drawn
// exactly once per call regardless of how many candidates are rejected,
// so the channel stream stays in lockstep between embed and extract.
func (s *Selector) Next() (x, y int, c uint8, err error) {
	c = s.channel.Intn3()

	for {
		s.position++
		if s.position >= len(s.candidates) {
			return 0, 0, 0, stegano.ErrCapacityExhausted
		}

		idx := s.candidates[s.position]
		x = idx % s.width
		y = idx / s.width

		valid := true
		if s.sobel {
			valid = !raster.ChangesSobel(s.img, s.edge, x, y, c)
			if valid {
				valid = !s.boxOccupied(x, y)
			}
			if valid {
				s.chosen[idx] = true
			}
		}

		if valid {
			return x, y, c, nil
		}
	}
}

// boxOccupied reports whether any pixel in the 5x5 box centered on
// (x, y), clamped to image bounds, is already marked chosen.
func (s *Selector) boxOccupied(x, y int) bool {
	width, height := s.img.Dimensions()
	for i := x - 2; i <= x+2; i++ {
		for j := y - 2; j <= y+2; j++ {
			if i >= 0 && j >= 0 && i < width && j < height {
				if s.chosen[i+j*width] {
					return true
				}
			}
		}
	}
	return false
}
