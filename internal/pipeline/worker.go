package pipeline

import (
	"context"
	"io"
	"log/slog"

	"github.com/docstruct/docstruct/internal/feature"
	"github.com/docstruct/docstruct/internal/model"
	"github.com/docstruct/docstruct/internal/outline"
	"github.com/docstruct/docstruct/internal/spansource"
)

// Worker runs the linear per-document pass: span extraction, feature
// extraction, two-stage classification, outline assembly.
type Worker struct {
	models *model.Artifacts
	log    *slog.Logger
}

func NewWorker(models *model.Artifacts, log *slog.Logger) *Worker {
	return &Worker{models: models, log: log}
}

// Extract produces the outline record for one document. On error the
// returned record is the fallback and the error carries the failed stage.
func (w *Worker) Extract(ctx context.Context, r io.Reader, filename string) (outline.Record, error) {
	log := w.log.With("doc", filename)

	src, err := spansource.ForFile(filename)
	if err != nil {
		return outline.Fallback(), stageErr(filename, StageLoad, err)
	}
	doc, err := src.Load(r, filename)
	if err != nil {
		return outline.Fallback(), stageErr(filename, StageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return outline.Fallback(), stageErr(filename, StageLoad, err)
	}

	blocks, vectors := feature.Extract(doc)
	log.Debug("extracted blocks", "pages", len(doc.Pages), "blocks", len(blocks))

	// Other-labeled blocks stay in the candidate list: the title fallback
	// considers every block on the first page, not just headings.
	cands := make([]outline.Candidate, 0, len(blocks))
	for i, b := range blocks {
		if err := ctx.Err(); err != nil {
			return outline.Fallback(), stageErr(filename, StageClassify, err)
		}
		blockType, err := w.models.Block.Classify(vectors[i])
		if err != nil {
			return outline.Fallback(), stageErr(filename, StageClassify, err)
		}
		cand := outline.Candidate{Block: b, Type: blockType}
		if blockType == model.BlockHeading {
			level, err := w.models.Level.Classify(vectors[i])
			if err != nil {
				return outline.Fallback(), stageErr(filename, StageClassify, err)
			}
			cand.Level = level
		}
		cands = append(cands, cand)
	}

	rec := outline.Assemble(cands)
	if err := outline.Validate(rec); err != nil {
		return outline.Fallback(), stageErr(filename, StageSerialize, err)
	}
	log.Debug("assembled outline", "entries", len(rec.Outline), "title", rec.Title)
	return rec, nil
}
