package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/docstruct/docstruct/internal/model"
)

// ruleScorer mimics a trained booster with the thresholds the synthetic
// training data encodes: big text is a title, bold medium text a heading.
type ruleScorer struct {
	level bool
}

func (s ruleScorer) NOutputGroups() int { return 3 }

func (s ruleScorer) Predict(fvals []float64, _ int, preds []float64) error {
	size, bold := fvals[0], fvals[1]
	if s.level {
		switch {
		case size >= 17:
			preds[0] = 1 // H1
		case size >= 14:
			preds[1] = 1 // H2
		default:
			preds[2] = 1 // H3
		}
		return nil
	}
	switch {
	case size >= 20:
		preds[0] = 1 // Title
	case size >= 12 && bold == 1:
		preds[1] = 1 // heading
	default:
		preds[2] = 1 // other
	}
	return nil
}

func testArtifacts(t *testing.T) *model.Artifacts {
	t.Helper()
	block, err := model.NewBlockClassifier(ruleScorer{}, []model.BlockType{model.BlockTitle, model.BlockHeading, model.BlockOther})
	if err != nil {
		t.Fatalf("block classifier: %v", err)
	}
	level, err := model.NewLevelClassifier(ruleScorer{level: true}, []model.Level{model.H1, model.H2, model.H3})
	if err != nil {
		t.Fatalf("level classifier: %v", err)
	}
	return &model.Artifacts{Block: block, Level: level}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const sampleMarkdown = `# Alpha

Introductory paragraph with plain body text.

## Beta

More body text under the second section.

### Gamma
`

func TestWorker_MarkdownOutline(t *testing.T) {
	w := NewWorker(testArtifacts(t), discardLogger())

	rec, err := w.Extract(context.Background(), strings.NewReader(sampleMarkdown), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No title prediction fires for 18pt text, so the largest first-page
	// block becomes the title without swallowing its heading entry.
	if rec.Title != "Alpha" {
		t.Errorf("expected fallback title %q, got %q", "Alpha", rec.Title)
	}
	if len(rec.Outline) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(rec.Outline), rec.Outline)
	}
	wantLevels := []model.Level{model.H1, model.H2, model.H3}
	wantTexts := []string{"Alpha", "Beta", "Gamma"}
	for i := range wantLevels {
		if rec.Outline[i].Level != wantLevels[i] || rec.Outline[i].Text != wantTexts[i] {
			t.Errorf("entry %d: expected %s %q, got %s %q",
				i, wantLevels[i], wantTexts[i], rec.Outline[i].Level, rec.Outline[i].Text)
		}
		if rec.Outline[i].Page != 1 {
			t.Errorf("entry %d: expected page 1, got %d", i, rec.Outline[i].Page)
		}
	}
}

func TestWorker_Deterministic(t *testing.T) {
	w := NewWorker(testArtifacts(t), discardLogger())

	first, err := w.Extract(context.Background(), strings.NewReader(sampleMarkdown), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		rec, err := w.Extract(context.Background(), strings.NewReader(sampleMarkdown), "doc.md")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Title != first.Title || len(rec.Outline) != len(first.Outline) {
			t.Fatalf("output changed between runs: %+v vs %+v", first, rec)
		}
		for i := range rec.Outline {
			if rec.Outline[i] != first.Outline[i] {
				t.Fatalf("entry %d changed between runs", i)
			}
		}
	}
}

func TestWorker_UnsupportedExtensionIsLoadError(t *testing.T) {
	w := NewWorker(testArtifacts(t), discardLogger())

	rec, err := w.Extract(context.Background(), strings.NewReader("x"), "doc.xyz")
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageLoad {
		t.Errorf("expected load stage error, got %v", err)
	}
	if rec.Title != "" || len(rec.Outline) != 0 {
		t.Errorf("expected fallback record, got %+v", rec)
	}
}

func TestWorker_CanceledContextAborts(t *testing.T) {
	w := NewWorker(testArtifacts(t), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec, err := w.Extract(ctx, strings.NewReader(sampleMarkdown), "doc.md")
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
	if len(rec.Outline) != 0 {
		t.Errorf("expected fallback record, got %+v", rec)
	}
}

func TestWorker_ClassifierFailureIsClassifyError(t *testing.T) {
	boom := errors.New("model invocation failed")
	block, err := model.NewBlockClassifier(failingScorer{err: boom}, []model.BlockType{model.BlockTitle, model.BlockHeading, model.BlockOther})
	if err != nil {
		t.Fatalf("block classifier: %v", err)
	}
	level, err := model.NewLevelClassifier(ruleScorer{level: true}, []model.Level{model.H1, model.H2, model.H3})
	if err != nil {
		t.Fatalf("level classifier: %v", err)
	}
	w := NewWorker(&model.Artifacts{Block: block, Level: level}, discardLogger())

	rec, extractErr := w.Extract(context.Background(), strings.NewReader(sampleMarkdown), "doc.md")
	var se *StageError
	if !errors.As(extractErr, &se) || se.Stage != StageClassify {
		t.Errorf("expected classify stage error, got %v", extractErr)
	}
	if len(rec.Outline) != 0 {
		t.Errorf("expected fallback record, got %+v", rec)
	}
}

type failingScorer struct{ err error }

func (s failingScorer) NOutputGroups() int { return 3 }

func (s failingScorer) Predict([]float64, int, []float64) error { return s.err }
