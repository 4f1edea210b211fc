package superpix_test

import (
	"image"
	"image/color"
	"testing"

	superpix "github.com/mkarpov/superpix"
)

// halvesImage builds a w×h image whose left half is one color and right
// half another.
func halvesImage(w, h int, left, right color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.SetRGBA(x, y, left)
			} else {
				img.SetRGBA(x, y, right)
			}
		}
	}
	return img
}

var (
	red  = color.RGBA{255, 0, 0, 255}
	blue = color.RGBA{0, 0, 255, 255}
	gray = color.RGBA{128, 128, 128, 255}
)

// assertWellFormed checks the output contract every segmentation must
// satisfy: labels in range, every label used, every label one
// 4-connected region.
func assertWellFormed(t *testing.T, res *superpix.Result) {
	t.Helper()
	if res.NumLabels < 1 {
		t.Fatalf("NumLabels = %d, want >= 1", res.NumLabels)
	}
	used := make([]bool, res.NumLabels)
	for i, l := range res.Labels {
		if l < 0 || l >= res.NumLabels {
			t.Fatalf("label[%d] = %d outside [0,%d)", i, l, res.NumLabels)
		}
		used[l] = true
	}
	for l, u := range used {
		if !u {
			t.Errorf("label %d never assigned", l)
		}
	}

	// One BFS component per label.
	w, h := res.Width, res.Height
	dx4 := [4]int{-1, 0, 1, 0}
	dy4 := [4]int{0, -1, 0, 1}
	seen := make([]bool, len(res.Labels))
	components := make([]int, res.NumLabels)
	var stack [][2]int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if seen[idx] {
				continue
			}
			l := res.Labels[idx]
			components[l]++
			seen[idx] = true
			stack = append(stack[:0], [2]int{x, y})
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for n := 0; n < 4; n++ {
					nx, ny := p[0]+dx4[n], p[1]+dy4[n]
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					ni := ny*w + nx
					if !seen[ni] && res.Labels[ni] == l {
						seen[ni] = true
						stack = append(stack, [2]int{nx, ny})
					}
				}
			}
		}
	}
	for l, c := range components {
		if c != 1 {
			t.Errorf("label %d spans %d components, want 1", l, c)
		}
	}
}

func TestSegment_UniformImageSingleLabel(t *testing.T) {
	img := halvesImage(8, 8, gray, gray)
	res, err := superpix.Segment(img, superpix.Options{Superpixels: 1, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	if res.NumLabels != 1 {
		t.Fatalf("NumLabels = %d, want 1", res.NumLabels)
	}
	for i, l := range res.Labels {
		if l != 0 {
			t.Errorf("label[%d] = %d, want 0", i, l)
		}
	}
}

func TestSegment_TwoColorHalvesExact(t *testing.T) {
	// On a 4x2 image the seed grid delivers exactly one seed per half, so
	// the result is the two halves with sequential labels.
	img := halvesImage(4, 2, red, blue)
	res, err := superpix.Segment(img, superpix.Options{Superpixels: 2, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	if res.NumLabels != 2 {
		t.Fatalf("NumLabels = %d, want 2", res.NumLabels)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			want := 0
			if x >= 2 {
				want = 1
			}
			if res.LabelAt(x, y) != want {
				t.Errorf("label(%d,%d) = %d, want %d", x, y, res.LabelAt(x, y), want)
			}
		}
	}
}

func TestSegment_LabelsRespectColorBoundary(t *testing.T) {
	// The seed grid may deliver more seeds than halves, so the exact label
	// count is open, but no region may straddle the color edge.
	img := halvesImage(4, 4, red, blue)
	res, err := superpix.Segment(img, superpix.Options{Superpixels: 2, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	if res.NumLabels < 2 {
		t.Fatalf("NumLabels = %d, want >= 2", res.NumLabels)
	}
	assertWellFormed(t, res)

	side := make([]int, res.NumLabels) // 0 unseen, 1 left, 2 right
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			s := 1
			if x >= 2 {
				s = 2
			}
			l := res.LabelAt(x, y)
			if side[l] != 0 && side[l] != s {
				t.Fatalf("label %d straddles the color boundary", l)
			}
			side[l] = s
		}
	}
}

func TestSegment_IsolatedPixelMergesIntoNeighbor(t *testing.T) {
	// A lone off-color pixel clusters with the far-away matching color,
	// producing a disconnected 1-pixel fragment that the connectivity pass
	// must fold into a surrounding region.
	img := halvesImage(8, 8, red, blue)
	img.SetRGBA(6, 4, red)

	res, err := superpix.Segment(img, superpix.Options{Superpixels: 2, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	assertWellFormed(t, res)

	l := res.LabelAt(6, 4)
	count := 0
	for _, v := range res.Labels {
		if v == l {
			count++
		}
	}
	if count == 1 {
		t.Errorf("pixel (6,4) kept a 1-pixel region with label %d", l)
	}
	neighbors := []int{res.LabelAt(5, 4), res.LabelAt(7, 4), res.LabelAt(6, 3), res.LabelAt(6, 5)}
	adjacent := false
	for _, n := range neighbors {
		if n == l {
			adjacent = true
		}
	}
	if !adjacent {
		t.Errorf("pixel (6,4) label %d does not match any 4-neighbor %v", l, neighbors)
	}
}

func TestSegment_RequestBeyondGridUnderDelivers(t *testing.T) {
	// When the grid step exceeds the image, only one seed fits and the
	// whole image becomes one region regardless of the requested count.
	img := halvesImage(16, 16, gray, gray)
	res, err := superpix.Segment(img, superpix.Options{Superpixels: 2, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	if res.NumLabels != 1 {
		t.Fatalf("NumLabels = %d, want 1", res.NumLabels)
	}
}

func TestSegment_DeterministicForFixedWorkerCount(t *testing.T) {
	img := halvesImage(24, 16, red, blue)
	for _, workers := range []int{1, 3} {
		opts := superpix.Options{Superpixels: 6, Workers: workers}
		a, err := superpix.Segment(img, opts)
		if err != nil {
			t.Fatal(err)
		}
		b, err := superpix.Segment(img, opts)
		if err != nil {
			t.Fatal(err)
		}
		if a.NumLabels != b.NumLabels {
			t.Fatalf("workers=%d: NumLabels differ between runs: %d vs %d", workers, a.NumLabels, b.NumLabels)
		}
		for i := range a.Labels {
			if a.Labels[i] != b.Labels[i] {
				t.Fatalf("workers=%d: labels[%d] differ between runs", workers, i)
			}
		}
	}
}

func TestSegment_MultiWorkerOutputWellFormed(t *testing.T) {
	img := halvesImage(32, 24, red, blue)
	for _, workers := range []int{1, 2, 4} {
		res, err := superpix.Segment(img, superpix.Options{Superpixels: 8, Workers: workers})
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		assertWellFormed(t, res)
	}
}

func TestSegment_EdgeGuidedSeeds(t *testing.T) {
	img := halvesImage(16, 16, red, blue)
	res, err := superpix.Segment(img, superpix.Options{Superpixels: 4, EdgeGuidedSeeds: true, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	assertWellFormed(t, res)
}

func TestSegment_NilImage(t *testing.T) {
	if _, err := superpix.Segment(nil, superpix.DefaultOptions()); err == nil {
		t.Error("expected error for nil image")
	}
}

func TestSegmentPacked_Validation(t *testing.T) {
	pix := make([]uint32, 16)
	labels := make([]int, 16)
	tests := []struct {
		name   string
		pix    []uint32
		w, h   int
		labels []int
		opts   superpix.Options
	}{
		{name: "zero width", pix: pix, w: 0, h: 4, labels: labels, opts: superpix.Options{Superpixels: 2}},
		{name: "negative height", pix: pix, w: 4, h: -1, labels: labels, opts: superpix.Options{Superpixels: 2}},
		{name: "short pixel buffer", pix: pix[:8], w: 4, h: 4, labels: labels, opts: superpix.Options{Superpixels: 2}},
		{name: "short label buffer", pix: pix, w: 4, h: 4, labels: labels[:8], opts: superpix.Options{Superpixels: 2}},
		{name: "zero superpixels", pix: pix, w: 4, h: 4, labels: labels, opts: superpix.Options{}},
		{name: "negative superpixels", pix: pix, w: 4, h: 4, labels: labels, opts: superpix.Options{Superpixels: -3}},
		{name: "more superpixels than pixels", pix: pix, w: 4, h: 4, labels: labels, opts: superpix.Options{Superpixels: 17}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := superpix.SegmentPacked(tt.pix, tt.w, tt.h, tt.labels, tt.opts); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSegmentPacked_WritesCallerBuffer(t *testing.T) {
	w, h := 4, 2
	pix := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < 2 {
				pix[y*w+x] = 0xFF0000
			} else {
				pix[y*w+x] = 0x0000FF
			}
		}
	}
	labels := make([]int, w*h)
	for i := range labels {
		labels[i] = -99
	}

	n, err := superpix.SegmentPacked(pix, w, h, labels, superpix.Options{Superpixels: 2, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("numlabels = %d, want 2", n)
	}
	for i, l := range labels {
		if l < 0 || l >= n {
			t.Errorf("labels[%d] = %d not overwritten into [0,%d)", i, l, n)
		}
	}
}
