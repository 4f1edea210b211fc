// Package superpix partitions raster images into superpixels: spatially
// compact, color-coherent, 4-connected regions, each with a unique integer
// label.
//
// The segmenter is the zero-parameter variant of the SLIC algorithm: seeds
// are placed on a hexagonally offset grid, pixels are assigned to seeds
// over a fixed number of locally windowed clustering passes using a
// per-cluster adaptive compactness weight, and a connectivity pass repairs
// the raw assignment so every label is one connected region of adequate
// size.
//
// Usage as a library:
//
//	img, _ := superpix.LoadImage("photo.png")
//	res, _ := superpix.Segment(img, superpix.DefaultOptions())
//	fmt.Println(res.NumLabels)
//
// Callers that already hold a packed pixel buffer can use SegmentPacked
// directly with their own label buffer.
package superpix

import (
	"fmt"
	"image"
	"math"

	"github.com/mkarpov/superpix/internal/cluster"
	"github.com/mkarpov/superpix/internal/connectivity"
	"github.com/mkarpov/superpix/internal/gradient"
	"github.com/mkarpov/superpix/internal/imaging"
	"github.com/mkarpov/superpix/internal/lab"
	"github.com/mkarpov/superpix/internal/seed"
)

// DefaultIterations is the fixed number of clustering passes. The
// algorithm runs no convergence check; it converges well before this
// bound on realistic images.
const DefaultIterations = 10

// Options configures a segmentation run.
type Options struct {
	// Superpixels is the requested region count K. The actual number of
	// output labels may be smaller: seed placement is quantized to a
	// grid, and undersized regions are merged into neighbors.
	Superpixels int

	// Iterations is the number of clustering passes. 0 means
	// DefaultIterations.
	Iterations int

	// EdgeGuidedSeeds moves each initial seed to the local minimum of the
	// color gradient in its 8-neighborhood, so seeds do not start on
	// strong edges.
	EdgeGuidedSeeds bool

	// Workers is the goroutine count for the data-parallel passes.
	// 0 or negative selects GOMAXPROCS. Results are deterministic for a
	// fixed worker count; across different worker counts the label
	// geometry may differ slightly because floating-point reduction
	// order changes.
	Workers int
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Superpixels: 200,
		Iterations:  DefaultIterations,
	}
}

// Result holds a finished segmentation.
type Result struct {
	Width, Height int

	// Labels holds one label per pixel in row-major order, each in
	// [0, NumLabels).
	Labels []int

	// NumLabels is the number of distinct labels.
	NumLabels int
}

// LabelAt returns the label of the pixel at (x, y).
func (r *Result) LabelAt(x, y int) int {
	return r.Labels[y*r.Width+x]
}

// LoadImage reads an image from disk. Supports PNG, JPEG, and WEBP.
func LoadImage(path string) (image.Image, error) {
	return imaging.Load(path)
}

// SavePNG writes an image to disk as PNG.
func SavePNG(path string, img image.Image) error {
	return imaging.SavePNG(path, img)
}

// Segment computes a superpixel segmentation of img.
func Segment(img image.Image, opts Options) (*Result, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}

	pix, w, h := lab.Pack(img)
	labels := make([]int, w*h)
	n, err := SegmentPacked(pix, w, h, labels, opts)
	if err != nil {
		return nil, err
	}
	return &Result{Width: w, Height: h, Labels: labels, NumLabels: n}, nil
}

// SegmentPacked segments a packed-pixel buffer (one 0xRRGGBB integer per
// pixel, row-major, top to bottom), writing one label per pixel into the
// caller-provided labels buffer and returning the number of distinct
// labels. The internal stages assume validated inputs, so all
// precondition checks live here.
func SegmentPacked(pix []uint32, width, height int, labels []int, opts Options) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	size := width * height
	if len(pix) != size {
		return 0, fmt.Errorf("pixel buffer holds %d entries, want %d", len(pix), size)
	}
	if len(labels) != size {
		return 0, fmt.Errorf("label buffer holds %d entries, want %d", len(labels), size)
	}
	k := opts.Superpixels
	if k <= 0 {
		return 0, fmt.Errorf("superpixel count must be positive, got %d", k)
	}
	if k > size {
		return 0, fmt.Errorf("superpixel count %d exceeds pixel count %d", k, size)
	}
	iters := opts.Iterations
	if iters <= 0 {
		iters = DefaultIterations
	}

	img := lab.FromPacked(pix, width, height, opts.Workers)

	seeds := seed.Place(img, k)
	if opts.EdgeGuidedSeeds {
		edges := gradient.Map(img, opts.Workers)
		seed.Perturb(seeds, img, edges)
	}

	// A small constant is added so degenerately small steps still open a
	// usable search window.
	step := int(math.Sqrt(float64(size)/float64(k)) + 2.0)
	cluster.Assign(img, seeds, step, iters, opts.Workers, labels)

	return connectivity.Enforce(labels, width, height, k, opts.Workers), nil
}
