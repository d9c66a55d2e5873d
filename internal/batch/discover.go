// Package batch walks a work folder, figures out which outputs are
// missing or out of date, and renders them with bounded parallelism.
// A run is five phases: discover inputs, check staleness, group presets
// that share pre-processing, process, report.
package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"popart/pkg/imgio"
	"popart/pkg/palette"
)

// Input is one source image found in the work folder.
type Input struct {
	Path    string
	Stem    string
	ModTime time.Time
}

// Discover lists the image files in the work folder, non-recursively.
// Files whose names look like generated outputs are ignored, and when two
// files share a stem with different extensions only the first is kept:
// output names are keyed by stem, so twins would overwrite each other.
func Discover(workDir string, presetNames []string, log zerolog.Logger) ([]Input, error) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read work folder %s: %w", workDir, err)
	}

	var inputs []Input
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !imgio.IsImageFile(entry.Name()) {
			continue
		}
		stem := imgio.Stem(entry.Name())
		if isGeneratedName(stem, presetNames) {
			continue
		}
		if first, dup := seen[stem]; dup {
			log.Warn().
				Str("file", entry.Name()).
				Str("kept", first).
				Msg("duplicate stem, skipping")
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		seen[stem] = entry.Name()
		inputs = append(inputs, Input{
			Path:    filepath.Join(workDir, entry.Name()),
			Stem:    stem,
			ModTime: info.ModTime(),
		})
	}
	return inputs, nil
}

// isGeneratedName reports whether a stem matches the naming scheme of
// rendered outputs, so re-running over a folder that also holds outputs
// never feeds them back in. Older builds appended the palette name after
// the preset, hence the suffix peeling.
func isGeneratedName(stem string, presetNames []string) bool {
	if strings.HasSuffix(stem, "_posterized") {
		return true
	}
	for _, name := range presetNames {
		if strings.HasSuffix(stem, "_"+name) {
			return true
		}
	}
	for _, pal := range palette.Names() {
		if base, ok := strings.CutSuffix(stem, "_"+pal); ok {
			return isGeneratedName(base, presetNames)
		}
	}
	return false
}
