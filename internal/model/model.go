// Package model loads the two serialized LightGBM classifiers and their
// label mappings, and exposes deterministic block-type and heading-level
// classification over 4-dim feature vectors.
//
// Artifacts are produced by the offline training step: the boosters in
// LightGBM text format, the label encoders re-exported as JSON arrays
// (class name per encoded index). Everything is loaded once and treated as
// immutable, so concurrent readers need no locking.
package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitryikh/leaves"
)

const (
	blockModelFile  = "block_model.txt"
	levelModelFile  = "level_model.txt"
	blockLabelsFile = "block_labels.json"
	levelLabelsFile = "level_labels.json"
)

// NumFeatures is the fixed feature vector width both models expect.
const NumFeatures = 4

// Artifacts holds both read-only classifier models.
type Artifacts struct {
	Block *BlockClassifier
	Level *LevelClassifier
}

// Load reads both boosters and label mappings from dir.
func Load(dir string) (*Artifacts, error) {
	blockModel, err := loadBooster(filepath.Join(dir, blockModelFile))
	if err != nil {
		return nil, fmt.Errorf("block model: %w", err)
	}
	levelModel, err := loadBooster(filepath.Join(dir, levelModelFile))
	if err != nil {
		return nil, fmt.Errorf("level model: %w", err)
	}

	var blockNames, levelNames []string
	if err := loadLabels(filepath.Join(dir, blockLabelsFile), &blockNames); err != nil {
		return nil, fmt.Errorf("block labels: %w", err)
	}
	if err := loadLabels(filepath.Join(dir, levelLabelsFile), &levelNames); err != nil {
		return nil, fmt.Errorf("level labels: %w", err)
	}

	blockLabels := make([]BlockType, len(blockNames))
	for i, name := range blockNames {
		t, err := ParseBlockType(name)
		if err != nil {
			return nil, fmt.Errorf("block labels: %w", err)
		}
		blockLabels[i] = t
	}
	levelLabels := make([]Level, len(levelNames))
	for i, name := range levelNames {
		l, err := ParseLevel(name)
		if err != nil {
			return nil, fmt.Errorf("level labels: %w", err)
		}
		levelLabels[i] = l
	}

	block, err := NewBlockClassifier(blockModel, blockLabels)
	if err != nil {
		return nil, fmt.Errorf("block model: %w", err)
	}
	level, err := NewLevelClassifier(levelModel, levelLabels)
	if err != nil {
		return nil, fmt.Errorf("level model: %w", err)
	}
	return &Artifacts{Block: block, Level: level}, nil
}

func loadBooster(path string) (*leaves.Ensemble, error) {
	ensemble, err := leaves.LGEnsembleFromFile(path, true)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return ensemble, nil
}

func loadLabels(path string, into *[]string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if len(*into) == 0 {
		return fmt.Errorf("%s: empty label mapping", filepath.Base(path))
	}
	return nil
}
