// Package lab converts packed sRGB pixel buffers into flat CIELAB planes.
//
// The segmentation core measures color differences in CIELAB because
// Euclidean distance there tracks perceived difference far better than in
// RGB. The conversion is a pure pointwise transform, parallelized across
// row bands.
package lab

import (
	"image"
	"math"
	"sync"

	"github.com/mkarpov/superpix/internal/parallel"
)

// Image holds a converted image as row-major float64 CIELAB planes.
// Pixel i sits at (i%Width, i/Width).
type Image struct {
	Width, Height int
	L, A, B       []float64
}

// CIE constants and the reference white used by the conversion.
const (
	cieEpsilon = 0.008856
	cieKappa   = 903.3

	refWhiteX = 0.950456
	refWhiteY = 1.0
	refWhiteZ = 1.088754
)

// sRGB linearization lookup tables, one entry per 8-bit channel value.
// Values at or below the 0.04045 breakpoint (channel value 10) use the
// linear segment, the rest the gamma curve.
var (
	lutOnce   sync.Once
	linearLUT [256]float64
	gammaLUT  [256]float64
)

func initLUT() {
	for i := 0; i < 256; i++ {
		t := float64(i) / 255.0
		linearLUT[i] = t / 12.92
		gammaLUT[i] = math.Pow((t+0.055)/1.055, 2.4)
	}
}

func linearize(c uint32) float64 {
	if c <= 10 {
		return linearLUT[c]
	}
	return gammaLUT[c]
}

func labF(t float64) float64 {
	if t > cieEpsilon {
		return math.Cbrt(t)
	}
	return (cieKappa*t + 16.0) / 116.0
}

// FromPacked converts a packed 0xRRGGBB buffer into CIELAB planes.
// The buffer must hold exactly width*height entries.
func FromPacked(pix []uint32, width, height, workers int) *Image {
	lutOnce.Do(initLUT)

	img := &Image{
		Width:  width,
		Height: height,
		L:      make([]float64, width*height),
		A:      make([]float64, width*height),
		B:      make([]float64, width*height),
	}

	parallel.Rows(height, workers, func(sy, ey int) {
		for i := sy * width; i < ey*width; i++ {
			r := linearize((pix[i] >> 16) & 0xFF)
			g := linearize((pix[i] >> 8) & 0xFF)
			b := linearize(pix[i] & 0xFF)

			x := r*0.4124564 + g*0.3575761 + b*0.1804375
			y := r*0.2126729 + g*0.7151522 + b*0.0721750
			z := r*0.0193339 + g*0.1191920 + b*0.9503041

			fx := labF(x / refWhiteX)
			fy := labF(y / refWhiteY)
			fz := labF(z / refWhiteZ)

			img.L[i] = 116.0*fy - 16.0
			img.A[i] = 500.0 * (fx - fy)
			img.B[i] = 200.0 * (fy - fz)
		}
	})

	return img
}

// Pack flattens an image.Image into the packed 0xRRGGBB row-major layout
// consumed by FromPacked. Alpha is dropped.
func Pack(img image.Image) ([]uint32, int, int) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pix := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			pix[y*w+x] = (r>>8)<<16 | (g>>8)<<8 | b>>8
		}
	}
	return pix, w, h
}
