package convert

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
)

// ManifestFile is the name of the manifest written next to the sections.
const ManifestFile = "manifest.json"

const manifestVersion = "1.0.0"

// OutputManifest records the files produced by the last conversion run.
type OutputManifest struct {
	Version   string                   `json:"version"`
	RunID     string                   `json:"run_id"`
	Source    string                   `json:"source,omitempty"`
	UpdatedAt time.Time                `json:"updated_at"`
	Files     map[string]*OutputRecord `json:"files"`
}

// OutputRecord describes one written section file.
type OutputRecord struct {
	File      string `json:"file"`
	Numeral   string `json:"numeral"`
	SectionID string `json:"section_id,omitempty"`
	BLAKE3    string `json:"blake3"`
	Lines     int    `json:"lines"`
}

// NewOutputManifest creates an empty manifest.
func NewOutputManifest() *OutputManifest {
	return &OutputManifest{
		Version:   manifestVersion,
		UpdatedAt: time.Now(),
		Files:     make(map[string]*OutputRecord),
	}
}

// LoadManifest reads a manifest from disk. A missing file yields an empty manifest.
func LoadManifest(manifestPath string) (*OutputManifest, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return NewOutputManifest(), nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	manifest := &OutputManifest{}
	if err := json.Unmarshal(data, manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if manifest.Files == nil {
		manifest.Files = make(map[string]*OutputRecord)
	}

	return manifest, nil
}

// SaveManifest writes the manifest to disk.
func (manifest *OutputManifest) SaveManifest(manifestPath string) error {
	manifest.UpdatedAt = time.Now()

	if err := os.MkdirAll(filepath.Dir(manifestPath), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

// Record adds or replaces the record for a file.
func (manifest *OutputManifest) Record(record *OutputRecord) {
	manifest.Files[record.File] = record
}

// Unchanged reports whether the manifest holds digest for file.
func (manifest *OutputManifest) Unchanged(file, digest string) bool {
	record, exists := manifest.Files[file]
	return exists && record.BLAKE3 == digest
}

// Digest returns the hex BLAKE3-256 digest of data.
func Digest(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}
