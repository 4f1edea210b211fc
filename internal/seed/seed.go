// Package seed places the initial cluster centers for the segmentation.
package seed

import (
	"math"

	"github.com/mkarpov/superpix/internal/lab"
)

// Seed is one evolving cluster center: a CIELAB color plus a spatial
// position. Positions are float64 because centroids move off the pixel
// grid as soon as the first assignment pass completes.
type Seed struct {
	L, A, B float64
	X, Y    float64
}

// Place spreads seeds for the requested superpixel count k over a
// hexagonally offset grid: rows sit step apart with a half-step row
// offset, and every odd row is shifted another half step horizontally to
// avoid axis-aligned bias. The resulting count approximates k; grid
// quantization may produce fewer (or on sub-pixel steps, more) seeds.
func Place(img *lab.Image, k int) []Seed {
	w, h := img.Width, img.Height
	step := math.Sqrt(float64(w*h) / float64(k))
	xoff := int(step / 2)
	yoff := int(step / 2)

	var seeds []Seed
	row := 0
	for y := 0; ; y++ {
		py := int(float64(y)*step + float64(yoff))
		if py > h-1 {
			break
		}
		shift := xoff << (row & 1)
		for x := 0; ; x++ {
			px := int(float64(x)*step + float64(shift))
			if px > w-1 {
				break
			}
			i := py*w + px
			seeds = append(seeds, Seed{
				L: img.L[i],
				A: img.A[i],
				B: img.B[i],
				X: float64(px),
				Y: float64(py),
			})
		}
		row++
	}

	return seeds
}

// Perturb moves each seed to whichever of its 8 neighbors has the
// strictly smallest edge magnitude, so seeds do not start exactly on a
// strong edge. Ties keep the current position.
func Perturb(seeds []Seed, img *lab.Image, edges []float64) {
	dx8 := [8]int{-1, -1, 0, 1, 1, 1, 0, -1}
	dy8 := [8]int{0, -1, -1, -1, 0, 1, 1, 1}

	w, h := img.Width, img.Height
	for n := range seeds {
		ox, oy := int(seeds[n].X), int(seeds[n].Y)
		orig := oy*w + ox
		best := orig
		for i := 0; i < 8; i++ {
			nx, ny := ox+dx8[i], oy+dy8[i]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			ni := ny*w + nx
			if edges[ni] < edges[best] {
				best = ni
			}
		}
		if best != orig {
			seeds[n].X = float64(best % w)
			seeds[n].Y = float64(best / w)
			seeds[n].L = img.L[best]
			seeds[n].A = img.A[best]
			seeds[n].B = img.B[best]
		}
	}
}
