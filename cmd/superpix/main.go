package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	superpix "github.com/mkarpov/superpix"
	"github.com/mkarpov/superpix/internal/cli"
	"github.com/mkarpov/superpix/internal/imaging"
	"github.com/mkarpov/superpix/internal/pipeline"
	"github.com/mkarpov/superpix/internal/server"
)

func main() {
	cfg, err := cli.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	log := superpix.NewTextLogger(level)

	if cfg.ServeAddr != "" {
		img, err := imaging.Load(cfg.InPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := server.New(img, log).ListenAndServe(ctx, cfg.ServeAddr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := pipeline.Run(cfg, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
