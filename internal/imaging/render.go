package imaging

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// goldenAngle spaces palette hues so that consecutive labels land far
// apart on the hue circle.
const goldenAngle = 137.50776405003785

// Palette returns n visually distinct label colors. The palette is
// deterministic: label i always maps to the same color.
func Palette(n int) []color.RGBA {
	out := make([]color.RGBA, n)
	for i := range out {
		hue := math.Mod(float64(i)*goldenAngle, 360)
		r, g, b := colorful.Hsv(hue, 0.65, 0.95).RGB255()
		out[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return out
}

// LabelImage renders a label map as a flat-colored image using the
// deterministic palette.
func LabelImage(labels []int, width, height, numLabels int) *image.RGBA {
	pal := Palette(numLabels)
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			out.SetRGBA(x, y, pal[labels[y*width+x]])
		}
	}
	return out
}

// Overlay draws superpixel boundaries over the source image. A pixel is a
// boundary pixel when its right or bottom neighbor carries a different
// label, so every region edge is drawn exactly one pixel wide.
func Overlay(src image.Image, labels []int, width, height int, contour color.RGBA) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if x+1 < width && labels[i] != labels[i+1] {
				out.SetRGBA(x, y, contour)
				continue
			}
			if y+1 < height && labels[i] != labels[i+width] {
				out.SetRGBA(x, y, contour)
			}
		}
	}
	return out
}

// SavePPM writes the label map as a binary PPM: the P6 header followed by
// one triple per pixel carrying the label's low, middle, and high bytes.
// The format is meant for visual inspection of raw labels, not for
// round-tripping.
func SavePPM(path string, labels []int, width, height int) error {
	f, err := os.Create(ExpandPath(path))
	if err != nil {
		return fmt.Errorf("creating label file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "P6\n%d %d\n255\n", width, height)
	for _, l := range labels {
		w.WriteByte(byte(l))
		w.WriteByte(byte(l >> 8))
		w.WriteByte(byte(l >> 16))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing label file: %w", err)
	}
	return nil
}
