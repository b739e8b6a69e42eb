// Package manifest records what a prepare run deployed: the resolved configuration,
// where it came from, and the identity of the resulting tree.
package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitebase/internal/deploy"
	"git.home.luguber.info/inful/sitebase/internal/foundation/errors"
)

// Filename is the manifest's name inside the prepared tree.
const Filename = "sitebase-manifest.json"

// DeploymentManifest represents a complete record of one prepare run.
type DeploymentManifest struct {
	ID         string                  `json:"id"`
	Timestamp  time.Time               `json:"timestamp"`
	Deployment deploy.DeploymentConfig `json:"deployment"`
	Inputs     Inputs                  `json:"inputs"`
	Outputs    Outputs                 `json:"outputs"`
	Tool       string                  `json:"tool"`
	Duration   int64                   `json:"duration_ms"` // run time up to writing the manifest
}

// Inputs captures what the run was derived from.
type Inputs struct {
	ConfigHash string `json:"config_hash"`
	GitCommit  string `json:"git_commit,omitempty"`
	RemoteURL  string `json:"remote_url,omitempty"`
}

// Outputs captures the state of the tree after processing.
type Outputs struct {
	Files         int      `json:"files"`
	ContentHash   string   `json:"content_hash"`
	RefsRewritten int      `json:"refs_rewritten"`
	Finalized     []string `json:"finalized,omitempty"`
}

// ToJSON serializes the manifest to JSON.
func (m *DeploymentManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*DeploymentManifest, error) {
	var m DeploymentManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Hash identifies the deployment independent of when it ran: two runs with the same
// hash deployed the same tree under the same configuration.
func (m *DeploymentManifest) Hash() (string, error) {
	hashInput := struct {
		BasePath    string        `json:"base_path"`
		Preset      deploy.Preset `json:"preset"`
		SPA         bool          `json:"spa"`
		ConfigHash  string        `json:"config_hash"`
		GitCommit   string        `json:"git_commit"`
		ContentHash string        `json:"content_hash"`
	}{
		BasePath:    m.Deployment.BasePath,
		Preset:      m.Deployment.Preset,
		SPA:         m.Deployment.SPA,
		ConfigHash:  m.Inputs.ConfigHash,
		GitCommit:   m.Inputs.GitCommit,
		ContentHash: m.Outputs.ContentHash,
	}
	data, err := json.Marshal(hashInput)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}

// Write stores the manifest as Filename in dir.
func (m *DeploymentManifest) Write(dir string) (string, error) {
	data, err := m.ToJSON()
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryInternal, "encode manifest").Build()
	}
	p := filepath.Join(dir, Filename)
	if err := os.WriteFile(p, append(data, '\n'), 0o644); err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "write manifest").
			WithContext("path", p).Build()
	}
	return p, nil
}

// Read loads the manifest from dir.
func Read(dir string) (*DeploymentManifest, error) {
	p := filepath.Join(dir, Filename)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundError("manifest not found").WithContext("path", p).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read manifest").
			WithContext("path", p).Build()
	}
	m, err := FromJSON(data)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid manifest").
			WithContext("path", p).Build()
	}
	return m, nil
}
