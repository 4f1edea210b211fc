// Package gradient computes a CIELAB edge-magnitude map. It is only used
// to nudge initial cluster seeds away from strong edges.
package gradient

import (
	"github.com/mkarpov/superpix/internal/lab"
	"github.com/mkarpov/superpix/internal/parallel"
)

// Map returns the edge magnitude for every pixel: the sum of squared
// horizontal and vertical Lab differences between opposite neighbors.
// Border pixels keep magnitude 0.
func Map(img *lab.Image, workers int) []float64 {
	w, h := img.Width, img.Height
	edges := make([]float64, w*h)
	if w < 3 || h < 3 {
		return edges
	}

	l, a, b := img.L, img.A, img.B
	parallel.Rows(h-2, workers, func(sy, ey int) {
		for y := sy + 1; y <= ey; y++ {
			for x := 1; x < w-1; x++ {
				i := y*w + x

				dl := l[i-1] - l[i+1]
				da := a[i-1] - a[i+1]
				db := b[i-1] - b[i+1]
				dx := dl*dl + da*da + db*db

				dl = l[i-w] - l[i+w]
				da = a[i-w] - a[i+w]
				db = b[i-w] - b[i+w]
				dy := dl*dl + da*da + db*db

				edges[i] = dx + dy
			}
		}
	})

	return edges
}
