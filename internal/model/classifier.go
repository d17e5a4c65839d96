package model

import (
	"fmt"

	"github.com/docstruct/docstruct/internal/feature"
)

// Scorer abstracts the booster so classification logic is testable without
// model files on disk. *leaves.Ensemble satisfies it.
type Scorer interface {
	NOutputGroups() int
	Predict(fvals []float64, nEstimators int, predictions []float64) error
}

// BlockClassifier maps a feature vector to a BlockType. Stateless per
// call; the underlying booster is never mutated.
type BlockClassifier struct {
	model  Scorer
	labels []BlockType
}

func NewBlockClassifier(model Scorer, labels []BlockType) (*BlockClassifier, error) {
	if model.NOutputGroups() != len(labels) {
		return nil, fmt.Errorf("model emits %d classes, label mapping has %d", model.NOutputGroups(), len(labels))
	}
	return &BlockClassifier{model: model, labels: labels}, nil
}

// Classify returns exactly one block type for the vector.
func (c *BlockClassifier) Classify(v feature.Vector) (BlockType, error) {
	idx, err := predictClass(c.model, v)
	if err != nil {
		return BlockOther, err
	}
	return c.labels[idx], nil
}

// LevelClassifier maps a feature vector to a heading Level. Invoked only
// on blocks already classified as headings; it does not enforce
// hierarchical consistency across blocks.
type LevelClassifier struct {
	model  Scorer
	labels []Level
}

func NewLevelClassifier(model Scorer, labels []Level) (*LevelClassifier, error) {
	if model.NOutputGroups() != len(labels) {
		return nil, fmt.Errorf("model emits %d classes, label mapping has %d", model.NOutputGroups(), len(labels))
	}
	return &LevelClassifier{model: model, labels: labels}, nil
}

// Classify returns exactly one heading level for the vector.
func (c *LevelClassifier) Classify(v feature.Vector) (Level, error) {
	idx, err := predictClass(c.model, v)
	if err != nil {
		return 0, err
	}
	return c.labels[idx], nil
}

func predictClass(m Scorer, v feature.Vector) (int, error) {
	fvals := v.Values()
	if len(fvals) != NumFeatures {
		return 0, fmt.Errorf("feature vector has %d values, want %d", len(fvals), NumFeatures)
	}
	preds := make([]float64, m.NOutputGroups())
	if err := m.Predict(fvals, 0, preds); err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}
	return argmax(preds), nil
}

// argmax returns the index of the largest score; ties resolve to the
// lowest index so classification stays deterministic.
func argmax(scores []float64) int {
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return best
}
