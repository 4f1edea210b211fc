// Package cli parses and validates the superpix command-line flags.
package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Render mode constants.
const (
	RenderOverlay = "overlay" // draw superpixel boundaries over the source image
	RenderLabels  = "labels"  // flat-color each superpixel with a palette color
)

// Config holds the parsed CLI arguments.
type Config struct {
	InPath          string
	OutPath         string
	LabelsPath      string
	Render          string
	Superpixels     int
	Iterations      int
	EdgeGuidedSeeds bool
	Workers         int
	ServeAddr       string
	Verbose         bool
}

// Parse parses CLI arguments and returns a validated Config.
func Parse() (Config, error) {
	inPath := flag.String("in", "", "Path to input image (required, supports PNG, JPEG, WEBP)")
	outPath := flag.String("out", "", "Path to output image (required unless --serve, must be .png)")
	labelsPath := flag.String("labels", "", "Optional path for a raw label dump (.ppm)")
	render := flag.String("render", RenderOverlay, "Output rendering: overlay or labels")
	k := flag.Int("k", 200, "Requested superpixel count")
	iterations := flag.Int("iterations", 10, "Clustering passes")
	edgeSeeds := flag.Bool("edge-seeds", false, "Nudge initial seeds away from strong color edges")
	workers := flag.Int("workers", 0, "Worker goroutines for parallel passes (0 = all CPUs)")
	serve := flag.String("serve", "", "Serve segmentation previews over HTTP on this address instead of writing files (e.g. :8080)")
	verbose := flag.Bool("verbose", false, "Log per-stage timing")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: superpix [options]\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n  superpix --in=photo.png --out=segments.png --k=400 --edge-seeds\n")
	}

	flag.Parse()

	if *inPath == "" {
		return Config{}, fmt.Errorf("--in is required")
	}
	if *serve == "" {
		if *outPath == "" {
			return Config{}, fmt.Errorf("--out is required")
		}
		if ext := strings.ToLower(filepath.Ext(*outPath)); ext != ".png" {
			return Config{}, fmt.Errorf("--out must be a .png file, got %q", ext)
		}
	}
	if *labelsPath != "" {
		if ext := strings.ToLower(filepath.Ext(*labelsPath)); ext != ".ppm" {
			return Config{}, fmt.Errorf("--labels must be a .ppm file, got %q", ext)
		}
	}
	if *render != RenderOverlay && *render != RenderLabels {
		return Config{}, fmt.Errorf("--render must be %q or %q, got %q", RenderOverlay, RenderLabels, *render)
	}
	if *k <= 0 {
		return Config{}, fmt.Errorf("--k must be positive, got %d", *k)
	}
	if *iterations <= 0 {
		return Config{}, fmt.Errorf("--iterations must be positive, got %d", *iterations)
	}

	return Config{
		InPath:          *inPath,
		OutPath:         *outPath,
		LabelsPath:      *labelsPath,
		Render:          *render,
		Superpixels:     *k,
		Iterations:      *iterations,
		EdgeGuidedSeeds: *edgeSeeds,
		Workers:         *workers,
		ServeAddr:       *serve,
		Verbose:         *verbose,
	}, nil
}
