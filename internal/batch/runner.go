package batch

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"popart/pkg/effect"
	"popart/pkg/imgio"
	"popart/pkg/palette"
	"popart/pkg/preset"
	"popart/pkg/rembg"
)

// Runner renders every configured preset for every image in a work
// folder, skipping outputs that are already up to date.
type Runner struct {
	Remover rembg.Remover
	Palette palette.Palette
	Presets []preset.Preset
	OutDir  string
	Jobs    int
	Force   bool
	Log     zerolog.Logger
}

// Report tallies one run.
type Report struct {
	Generated int
	Skipped   int
	Failed    int
}

// job is one input image with the presets that still need rendering.
type job struct {
	input Input
	todo  []preset.Preset
}

// Run executes the batch. Images are processed in parallel, one image's
// pipeline staying sequential; a canceled context stops the run between
// images, never in the middle of one. A broken input is logged and
// tallied, it does not abort the rest of the batch.
func (r *Runner) Run(ctx context.Context, workDir string) (Report, error) {
	presets := r.Presets
	if len(presets) == 0 {
		presets = preset.All()
	}
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}

	inputs, err := Discover(workDir, names, r.Log)
	if err != nil {
		return Report{}, err
	}
	if len(inputs) == 0 {
		r.Log.Info().Str("folder", workDir).Msg("no image files found")
		return Report{}, nil
	}

	manifest, err := LoadManifest(r.OutDir)
	if err != nil {
		r.Log.Warn().Err(err).Msg("manifest unreadable, treating all outputs as stale")
	}

	var report Report
	var jobs []job
	for _, input := range inputs {
		var todo []preset.Preset
		for _, p := range presets {
			name := p.OutputName(input.Stem)
			outputPath := filepath.Join(r.OutDir, name)
			if !r.Force && !isStale(input, outputPath, p.Fingerprint(r.Palette), manifest.Fingerprint(name)) {
				report.Skipped++
				continue
			}
			todo = append(todo, p)
		}
		if len(todo) > 0 {
			jobs = append(jobs, job{input: input, todo: todo})
		}
	}
	if len(jobs) == 0 {
		return report, nil
	}

	var mu sync.Mutex
	workers := pool.New().WithMaxGoroutines(r.workerCount())
	for _, j := range jobs {
		workers.Go(func() {
			if ctx.Err() != nil {
				return
			}
			generated, failed := r.processImage(ctx, j, manifest)
			mu.Lock()
			report.Generated += generated
			report.Failed += failed
			mu.Unlock()
		})
	}
	workers.Wait()

	if err := manifest.Save(); err != nil {
		r.Log.Warn().Err(err).Msg("failed to save manifest")
	}
	return report, ctx.Err()
}

func (r *Runner) workerCount() int {
	if r.Jobs > 0 {
		return r.Jobs
	}
	return runtime.NumCPU()
}

func (r *Runner) processImage(ctx context.Context, j job, manifest *Manifest) (generated, failed int) {
	log := r.Log.With().Str("image", j.input.Stem).Logger()

	raw, err := os.ReadFile(j.input.Path)
	if err != nil {
		log.Error().Err(err).Msg("failed to read input")
		return 0, len(j.todo)
	}

	// One removal per image, shared by all presets.
	cutoutBytes, err := r.Remover.Remove(ctx, raw)
	if err != nil {
		log.Error().Err(err).Msg("background removal failed")
		return 0, len(j.todo)
	}
	cutout, err := imgio.Decode(cutoutBytes)
	if err != nil {
		log.Error().Err(err).Msg("remover returned an undecodable image")
		return 0, len(j.todo)
	}

	for _, g := range groupByKey(j.todo) {
		prep, err := g.pre.Prepare(cutout)
		if err != nil {
			log.Error().Err(err).Str("group", g.pre.Key()).Msg("pre-processing failed")
			failed += len(g.presets)
			continue
		}
		for _, p := range g.presets {
			out := effect.Stylize(p.Pre, prep, p.Thresholds, r.Palette)
			name := p.OutputName(j.input.Stem)
			if err := imgio.SavePNG(out, filepath.Join(r.OutDir, name)); err != nil {
				log.Error().Err(err).Str("preset", p.Name).Msg("failed to write output")
				failed++
				continue
			}
			manifest.Record(name, p.Fingerprint(r.Palette))
			generated++
			log.Info().Str("preset", p.Name).Msg("generated")
		}
	}
	return generated, failed
}

type group struct {
	pre     effect.Preprocessor
	presets []preset.Preset
}

// groupByKey batches presets that share pre-processing parameters so the
// expensive prepare step runs once per group, in stable order.
func groupByKey(todo []preset.Preset) []group {
	index := make(map[string]int)
	var groups []group
	for _, p := range todo {
		key := p.GroupKey()
		if i, ok := index[key]; ok {
			groups[i].presets = append(groups[i].presets, p)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, group{pre: p.Pre, presets: []preset.Preset{p}})
	}
	return groups
}
