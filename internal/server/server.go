// Package server exposes segmentation previews of one source image over
// HTTP, for visual inspection during parameter tuning. It is a debug
// surface, not a service API.
package server

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	superpix "github.com/mkarpov/superpix"
	"github.com/mkarpov/superpix/internal/cli"
	"github.com/mkarpov/superpix/internal/imaging"
)

// Server serves segmentation previews for a single loaded image.
type Server struct {
	img image.Image
	log *superpix.Logger
}

// New creates a preview server for img.
func New(img image.Image, log *superpix.Logger) *Server {
	return &Server{img: img, log: log}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/segment", s.handleSegment)
	return r
}

// handleSegment segments the source image with query-supplied parameters
// and responds with a rendered PNG.
//
// Query parameters: k (superpixel count, default 200), iterations,
// edge-seeds (0/1), render (overlay or labels).
func (s *Server) handleSegment(w http.ResponseWriter, r *http.Request) {
	opts := superpix.DefaultOptions()
	if v := r.URL.Query().Get("k"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid k %q", v), http.StatusBadRequest)
			return
		}
		opts.Superpixels = k
	}
	if v := r.URL.Query().Get("iterations"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid iterations %q", v), http.StatusBadRequest)
			return
		}
		opts.Iterations = n
	}
	opts.EdgeGuidedSeeds = r.URL.Query().Get("edge-seeds") == "1"

	render := r.URL.Query().Get("render")
	if render == "" {
		render = cli.RenderOverlay
	}
	if render != cli.RenderOverlay && render != cli.RenderLabels {
		http.Error(w, fmt.Sprintf("invalid render %q", render), http.StatusBadRequest)
		return
	}

	start := time.Now()
	res, err := superpix.Segment(s.img, opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.log.WithK(opts.Superpixels).LogSegmentation(res.NumLabels, time.Since(start))

	var out image.Image
	if render == cli.RenderLabels {
		out = imaging.LabelImage(res.Labels, res.Width, res.Height, res.NumLabels)
	} else {
		out = imaging.Overlay(s.img, res.Labels, res.Width, res.Height, color.RGBA{A: 255})
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, out); err != nil {
		s.log.Error("encoding response", "error", err)
	}
}

// ListenAndServe runs the server on addr until ctx is canceled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Routes()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("preview server listening", "addr", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
