package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"popart/internal/batch"
	"popart/internal/config"
	"popart/internal/logging"
	"popart/pkg/palette"
	"popart/pkg/preset"
	"popart/pkg/rembg"
)

func main() {
	var configPath, presetName, palSpec, removerURL string
	var jobs int
	var force, verbose bool
	var timeout time.Duration

	flag.StringVar(&configPath, "config", "", "config file (default "+config.DefaultFile+" if present)")
	flag.StringVar(&presetName, "preset", "", "render only this preset instead of all of them")
	flag.StringVar(&palSpec, "palette", "", "palette name or three hex colors '#bg,#mid,#hi'")
	flag.StringVar(&removerURL, "remover", "", "background remover server URL (empty = alpha-channel fallback)")
	flag.DurationVar(&timeout, "timeout", 0, "background remover request timeout")
	flag.IntVar(&jobs, "jobs", 0, "parallel workers (0 = number of CPUs)")
	flag.BoolVar(&force, "force", false, "regenerate outputs even when they look fresh")
	flag.BoolVar(&verbose, "v", false, "verbose logging")

	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	applyFlagOverrides(cfg, presetName, palSpec, removerURL, timeout, jobs, force)
	if flag.NArg() > 0 {
		cfg.WorkDir = flag.Arg(0)
	}
	if flag.NArg() > 1 {
		cfg.OutputDir = flag.Arg(1)
	}
	if flag.NArg() > 2 {
		log.Fatalf("usage: %s [flags] [work_folder [output_folder]]", filepath.Base(os.Args[0]))
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	pal, err := palette.Resolve(cfg.Palette)
	if err != nil {
		log.Fatalf("Invalid palette: %v", err)
	}

	presets := preset.All()
	if cfg.Preset != "" {
		p, err := preset.ByName(cfg.Preset)
		if err != nil {
			log.Fatalf("Invalid preset: %v", err)
		}
		presets = []preset.Preset{p}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := &batch.Runner{
		Remover: rembg.New(cfg.RemoverURL, cfg.RemoverTimeout),
		Palette: pal,
		Presets: presets,
		OutDir:  cfg.ResolvedOutputDir(),
		Jobs:    cfg.ResolvedJobs(),
		Force:   cfg.Force,
		Log:     logger,
	}

	logger.Info().
		Str("work_folder", cfg.WorkDir).
		Str("output_folder", runner.OutDir).
		Str("palette", pal.Name).
		Int("presets", len(presets)).
		Int("jobs", runner.Jobs).
		Msg("starting batch run")

	start := time.Now()
	report, err := runner.Run(ctx, cfg.WorkDir)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn().Msg("interrupted, stopping after the current image")
		} else {
			log.Fatalf("Batch run failed: %v", err)
		}
	}

	fmt.Printf("Done! Generated: %d, Skipped: %d\n", report.Generated, report.Skipped)
	if report.Failed > 0 {
		fmt.Printf("Errors: %d (see the log above)\n", report.Failed)
	}
	fmt.Printf("Presets: %s\n", presetSummary(presets))
	logger.Debug().Dur("took", time.Since(start)).Msg("batch run finished")
}

// presetSummary lists the rendered preset names grouped by family, in the
// table's order.
func presetSummary(presets []preset.Preset) string {
	var families []string
	byFamily := map[string][]string{}
	for _, p := range presets {
		if _, ok := byFamily[p.Family]; !ok {
			families = append(families, p.Family)
		}
		byFamily[p.Family] = append(byFamily[p.Family], p.Name)
	}
	parts := make([]string, 0, len(families))
	for _, f := range families {
		parts = append(parts, f+": "+strings.Join(byFamily[f], ", "))
	}
	return strings.Join(parts, "; ")
}

// applyFlagOverrides copies flag values over the loaded config, but only
// for flags the user actually set, so config-file values survive.
func applyFlagOverrides(cfg *config.Config, presetName, palSpec, removerURL string, timeout time.Duration, jobs int, force bool) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "preset":
			cfg.Preset = presetName
		case "palette":
			cfg.Palette = palSpec
		case "remover":
			cfg.RemoverURL = removerURL
		case "timeout":
			cfg.RemoverTimeout = timeout
		case "jobs":
			cfg.Jobs = jobs
		case "force":
			cfg.Force = force
		}
	})
}
