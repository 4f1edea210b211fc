// Package pipeline runs the file-to-file segmentation flow of the CLI:
// load an image, segment it, and write the rendered outputs.
package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"golang.org/x/sync/errgroup"

	superpix "github.com/mkarpov/superpix"
	"github.com/mkarpov/superpix/internal/cli"
	"github.com/mkarpov/superpix/internal/imaging"
)

// Run executes the full pipeline for the given configuration.
func Run(cfg cli.Config, log *superpix.Logger) error {
	log = log.WithK(cfg.Superpixels)

	start := time.Now()
	img, err := imaging.Load(cfg.InPath)
	if err != nil {
		return fmt.Errorf("loading image: %w", err)
	}
	bounds := img.Bounds()
	log = log.WithImage(bounds.Dx(), bounds.Dy())
	log.LogStage("load", time.Since(start))

	start = time.Now()
	res, err := superpix.Segment(img, superpix.Options{
		Superpixels:     cfg.Superpixels,
		Iterations:      cfg.Iterations,
		EdgeGuidedSeeds: cfg.EdgeGuidedSeeds,
		Workers:         cfg.Workers,
	})
	if err != nil {
		return fmt.Errorf("segmenting: %w", err)
	}
	log.LogSegmentation(res.NumLabels, time.Since(start))

	// The rendered image and the optional label dump are independent;
	// write them concurrently.
	var g errgroup.Group
	g.Go(func() error {
		var out image.Image
		switch cfg.Render {
		case cli.RenderLabels:
			out = imaging.LabelImage(res.Labels, res.Width, res.Height, res.NumLabels)
		default:
			out = imaging.Overlay(img, res.Labels, res.Width, res.Height, color.RGBA{A: 255})
		}
		if err := imaging.SavePNG(cfg.OutPath, out); err != nil {
			return fmt.Errorf("saving output: %w", err)
		}
		log.Info("output written", "path", cfg.OutPath, "render", cfg.Render)
		return nil
	})
	if cfg.LabelsPath != "" {
		g.Go(func() error {
			if err := imaging.SavePPM(cfg.LabelsPath, res.Labels, res.Width, res.Height); err != nil {
				return fmt.Errorf("saving label dump: %w", err)
			}
			log.Info("label dump written", "path", cfg.LabelsPath)
			return nil
		})
	}
	return g.Wait()
}
