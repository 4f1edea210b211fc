// Package cluster implements the iterative locally windowed assignment
// engine. Each pass assigns every pixel to the nearest seed under a hybrid
// color+spatial distance, then recomputes centroids from the assigned
// pixels. The color term is normalized per cluster by the maximum color
// distance observed during the previous pass, which removes the usual
// user-supplied compactness weight.
package cluster

import (
	"math"
	"sync"

	"github.com/mkarpov/superpix/internal/lab"
	"github.com/mkarpov/superpix/internal/parallel"
	"github.com/mkarpov/superpix/internal/seed"
)

// initialMaxColorDist seeds the compactness normalizer before any color
// distance has been observed. During the first pass the running maximum
// restarts from maxColorDistFloor instead, so the normalizer adapts down
// for clusters in flat regions.
const (
	initialMaxColorDist = 10.0 * 10.0
	maxColorDistFloor   = 1.0
)

// accumulator holds one worker's running per-cluster statistics for a
// single pass. Workers never share accumulators; they are merged in
// worker index order after the pass.
type accumulator struct {
	sumL, sumA, sumB []float64
	sumX, sumY       []float64
	count            []int
	maxColor         []float64
}

func newAccumulator(numk int) *accumulator {
	return &accumulator{
		sumL:     make([]float64, numk),
		sumA:     make([]float64, numk),
		sumB:     make([]float64, numk),
		sumX:     make([]float64, numk),
		sumY:     make([]float64, numk),
		count:    make([]int, numk),
		maxColor: make([]float64, numk),
	}
}

func (a *accumulator) reset() {
	for n := range a.count {
		a.sumL[n] = 0
		a.sumA[n] = 0
		a.sumB[n] = 0
		a.sumX[n] = 0
		a.sumY[n] = 0
		a.count[n] = 0
		a.maxColor[n] = 0
	}
}

// Assign runs the fixed number of clustering passes over img, writing the
// winning cluster index for every pixel into labels and updating seeds in
// place. step is the seed grid interval; the search window half-size is
// derived from it with a floor so tiny steps do not produce degenerate
// windows. labels must hold Width*Height entries.
func Assign(img *lab.Image, seeds []seed.Seed, step, iterations, workers int, labels []int) {
	h := img.Height
	numk := len(seeds)
	if numk == 0 {
		return
	}

	offset := step
	if step < 10 {
		offset = int(float64(step) * 1.5)
	}
	invSpatial := 1.0 / float64(step*step)

	for i := range labels {
		labels[i] = -1
	}

	maxColor := make([]float64, numk)
	for n := range maxColor {
		maxColor[n] = initialMaxColorDist
	}
	prevMax := make([]float64, numk)

	bands := parallel.Split(h, workers)
	accs := make([]*accumulator, len(bands))
	for i := range accs {
		accs[i] = newAccumulator(numk)
	}

	for it := 0; it < iterations; it++ {
		copy(prevMax, maxColor)

		var wg sync.WaitGroup
		for wi, band := range bands {
			wg.Add(1)
			go func(acc *accumulator, sy, ey int) {
				defer wg.Done()
				acc.reset()
				sweepBand(img, seeds, labels, acc, prevMax, offset, invSpatial, sy, ey)
			}(accs[wi], band[0], band[1])
		}
		wg.Wait()

		// Merge worker accumulators in worker index order, then fold the
		// means back into the seeds. A cluster that received no pixels
		// keeps its previous centroid and normalizer.
		for n := 0; n < numk; n++ {
			observed := 0.0
			var sl, sa, sb, sx, sy float64
			cnt := 0
			for _, acc := range accs {
				if acc.maxColor[n] > observed {
					observed = acc.maxColor[n]
				}
				sl += acc.sumL[n]
				sa += acc.sumA[n]
				sb += acc.sumB[n]
				sx += acc.sumX[n]
				sy += acc.sumY[n]
				cnt += acc.count[n]
			}

			if it == 0 {
				maxColor[n] = math.Max(maxColorDistFloor, observed)
			} else {
				maxColor[n] = math.Max(maxColor[n], observed)
			}

			if cnt > 0 {
				inv := 1.0 / float64(cnt)
				seeds[n].L = sl * inv
				seeds[n].A = sa * inv
				seeds[n].B = sb * inv
				seeds[n].X = sx * inv
				seeds[n].Y = sy * inv
			}
		}
	}
}

// sweepBand processes one worker's row band for a single pass: windowed
// distance competition per row, then accumulation of the row into the
// worker-local per-cluster statistics.
func sweepBand(img *lab.Image, seeds []seed.Seed, labels []int, acc *accumulator, prevMax []float64, offset int, invSpatial float64, sy, ey int) {
	w := img.Width
	numk := len(seeds)

	bestDist := make([]float64, w)
	colorDist := make([]float64, w)

	for y := sy; y < ey; y++ {
		rowBase := y * w
		for x := 0; x < w; x++ {
			bestDist[x] = math.MaxFloat64
			colorDist[x] = 0
		}

		for n := 0; n < numk; n++ {
			s := &seeds[n]

			// Skip clusters whose window does not reach this row.
			if !(int(s.Y-float64(offset)) <= y && y < int(s.Y+float64(offset))) {
				continue
			}

			x1 := int(s.X - float64(offset))
			if x1 < 0 {
				x1 = 0
			}
			x2 := int(s.X + float64(offset))
			if x2 > w {
				x2 = w
			}

			invMax := 1.0 / prevMax[n]
			sl, sa, sb, sx := s.L, s.A, s.B, s.X
			dy := (float64(y) - s.Y) * (float64(y) - s.Y)

			for x := x1; x < x2; x++ {
				i := rowBase + x

				dl := img.L[i] - sl
				da := img.A[i] - sa
				db := img.B[i] - sb
				cd := dl*dl + da*da + db*db

				dx := float64(x) - sx
				d := cd*invMax + (dx*dx+dy)*invSpatial

				if d < bestDist[x] {
					bestDist[x] = d
					colorDist[x] = cd
					labels[i] = n
				}
			}
		}

		for x := 0; x < w; x++ {
			i := rowBase + x
			n := labels[i]
			if n < 0 {
				// No window covered this pixel yet; it joins a cluster
				// on a later pass.
				continue
			}
			if colorDist[x] > acc.maxColor[n] {
				acc.maxColor[n] = colorDist[x]
			}
			acc.sumL[n] += img.L[i]
			acc.sumA[n] += img.A[i]
			acc.sumB[n] += img.B[i]
			acc.sumX[n] += float64(x)
			acc.sumY[n] += float64(y)
			acc.count[n]++
		}
	}
}
