package training

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Manifest describes one exported model artifact.
type Manifest struct {
	ModelID      string            `json:"model_id"`
	Mode         string            `json:"mode"`
	ScorerType   string            `json:"scorer_type"`
	Format       string            `json:"format"` // gob or json
	FeatureNames []string          `json:"feature_names"`
	Calibration  CalibrationParams `json:"calibration"`
	ExportedAt   time.Time         `json:"exported_at"`
}

// ArtifactStore persists trained scorers to disk. The primary export
// format is gob; when that fails the scorer is exported as JSON instead
// and the fallback is logged as a warning, not treated as fatal.
type ArtifactStore struct {
	dir string
	log zerolog.Logger
}

// NewArtifactStore creates a store rooted at dir, creating it if needed.
func NewArtifactStore(dir string, log zerolog.Logger) (*ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create models dir: %w", err)
	}
	return &ArtifactStore{
		dir: dir,
		log: log.With().Str("component", "training.artifacts").Logger(),
	}, nil
}

// Save exports a scorer plus its feature schema and calibration params.
// Returns the artifact path and the format actually used.
func (s *ArtifactStore) Save(modelID, mode string, scorer Scorer, cal CalibrationParams, featureNames []string) (string, string, error) {
	format := "gob"
	path := filepath.Join(s.dir, modelID+".gob")

	data, err := scorer.MarshalBinary()
	if err != nil {
		s.log.Warn().Err(err).
			Str("model_id", modelID).
			Msg("gob export failed, falling back to json")

		format = "json"
		path = filepath.Join(s.dir, modelID+".json")
		data, err = json.Marshal(scorer)
		if err != nil {
			return "", "", fmt.Errorf("fallback json export failed: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", "", fmt.Errorf("write artifact: %w", err)
	}

	// Ordered feature-name list next to the artifact.
	featuresPath := filepath.Join(s.dir, modelID+"_features.json")
	featuresData, err := json.Marshal(featureNames)
	if err != nil {
		return "", "", fmt.Errorf("marshal feature names: %w", err)
	}
	if err := os.WriteFile(featuresPath, featuresData, 0o644); err != nil {
		return "", "", fmt.Errorf("write feature names: %w", err)
	}

	manifest := Manifest{
		ModelID:      modelID,
		Mode:         mode,
		ScorerType:   scorer.Type(),
		Format:       format,
		FeatureNames: featureNames,
		Calibration:  cal,
		ExportedAt:   time.Now().UTC(),
	}
	manifestPath := filepath.Join(s.dir, modelID+"_manifest.json")
	manifestData, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, manifestData, 0o644); err != nil {
		return "", "", fmt.Errorf("write manifest: %w", err)
	}

	return path, format, nil
}

// Load reads a persisted scorer and its manifest by model id.
func (s *ArtifactStore) Load(modelID string) (Scorer, *Manifest, error) {
	manifestData, err := os.ReadFile(filepath.Join(s.dir, modelID+"_manifest.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		return nil, nil, fmt.Errorf("parse manifest: %w", err)
	}

	scorer, err := NewScorerOfType(manifest.ScorerType)
	if err != nil {
		return nil, nil, err
	}

	artifactPath := filepath.Join(s.dir, modelID+"."+manifest.Format)
	data, err := os.ReadFile(artifactPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read artifact: %w", err)
	}

	switch manifest.Format {
	case "gob":
		err = scorer.UnmarshalBinary(data)
	case "json":
		err = json.Unmarshal(data, scorer)
	default:
		err = fmt.Errorf("unknown artifact format %q", manifest.Format)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("decode artifact: %w", err)
	}

	return scorer, &manifest, nil
}
