package project

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/piwi3910/SlabGen/internal/model"
)

// ManifestVersion is written into every manifest.
const ManifestVersion = "1.0.0"

// Manifest records the runs of one invocation: what was requested, which
// settings applied and which files were written.
type Manifest struct {
	Version   string            `json:"version"`
	CreatedAt string            `json:"created_at"`
	Runs      []model.RunResult `json:"runs"`
}

// NewManifest wraps runs in a manifest stamped with the current time.
func NewManifest(runs ...model.RunResult) Manifest {
	if runs == nil {
		runs = []model.RunResult{}
	}
	return Manifest{
		Version:   ManifestVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Runs:      runs,
	}
}

// Files returns every file listed in the manifest.
func (m Manifest) Files() []string {
	var files []string
	for _, r := range m.Runs {
		files = append(files, r.Files()...)
	}
	return files
}

// SaveManifest writes a manifest to path as indented JSON.
func SaveManifest(path string, m Manifest) error {
	if err := writeJSON(path, m); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// LoadManifest reads a manifest written by SaveManifest.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if m.Version == "" {
		return Manifest{}, fmt.Errorf("invalid manifest: missing version field")
	}
	if m.Runs == nil {
		m.Runs = []model.RunResult{}
	}
	return m, nil
}
