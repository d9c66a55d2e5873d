package batch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"popart/pkg/imgio"
)

// manifestName is the fingerprint record kept next to the outputs.
const manifestName = ".popart-manifest.json"

// Manifest maps output file names to the fingerprint of the preset and
// palette that rendered them. An output whose recorded fingerprint no
// longer matches was rendered with different parameters and counts as
// stale even if its timestamp looks fresh.
type Manifest struct {
	path string

	mu      sync.Mutex
	Outputs map[string]string `json:"outputs"`
}

// NewManifest returns an empty manifest rooted at the output folder.
func NewManifest(outputDir string) *Manifest {
	return &Manifest{
		path:    filepath.Join(outputDir, manifestName),
		Outputs: make(map[string]string),
	}
}

// LoadManifest reads the manifest from the output folder. A missing file
// yields an empty manifest; unreadable content is an error so the caller
// can decide to start over.
func LoadManifest(outputDir string) (*Manifest, error) {
	m := NewManifest(outputDir)

	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return m, fmt.Errorf("failed to read manifest: %w", err)
	}
	if err := json.Unmarshal(data, m); err != nil {
		return NewManifest(outputDir), fmt.Errorf("failed to parse manifest: %w", err)
	}
	if m.Outputs == nil {
		m.Outputs = make(map[string]string)
	}
	return m, nil
}

// Fingerprint returns the recorded fingerprint for an output file name,
// or "" when none was recorded.
func (m *Manifest) Fingerprint(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Outputs[name]
}

// Record notes the fingerprint an output was just rendered with.
func (m *Manifest) Record(name, fingerprint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outputs[name] = fingerprint
}

// Save writes the manifest back to the output folder.
func (m *Manifest) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := imgio.EnsureDir(filepath.Dir(m.path)); err != nil {
		return err
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
