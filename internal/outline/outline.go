package outline

import (
	"github.com/docstruct/docstruct/internal/feature"
	"github.com/docstruct/docstruct/internal/model"
)

// Entry is one heading in the resolved outline.
type Entry struct {
	Level model.Level `json:"level"`
	Text  string      `json:"text"`
	Page  int         `json:"page"`
}

// Record is the per-document output: a title plus the ordered outline.
type Record struct {
	Title   string  `json:"title"`
	Outline []Entry `json:"outline"`
}

// Fallback is the minimal valid record emitted when a document cannot be
// processed.
func Fallback() Record {
	return Record{Outline: []Entry{}}
}

// Candidate pairs a block with its stage-1 label and, for headings, the
// stage-2 level.
type Candidate struct {
	Block feature.Block
	Type  model.BlockType
	Level model.Level
}
