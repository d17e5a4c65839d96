package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/docstruct/docstruct/internal/model"
	"github.com/docstruct/docstruct/internal/outline"
	"github.com/docstruct/docstruct/internal/spansource"
)

// Runner processes every supported document in a directory across a
// bounded worker pool, writing one record per document. Documents are
// fully independent; a failing or timed-out document emits its fallback
// record without affecting the rest of the batch.
type Runner struct {
	models  *model.Artifacts
	writer  *outline.Writer
	log     *slog.Logger
	stats   *Stats
	workers int
	timeout time.Duration
}

func NewRunner(models *model.Artifacts, writer *outline.Writer, log *slog.Logger, stats *Stats, workers int, timeout time.Duration) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{
		models:  models,
		writer:  writer,
		log:     log,
		stats:   stats,
		workers: workers,
		timeout: timeout,
	}
}

// BatchResult summarizes one directory run.
type BatchResult struct {
	Processed int // documents picked up
	Succeeded int // full outline records written
	Fallbacks int // fallback records written after a per-document failure
	Failed    int // documents that produced no output at all
}

// Run processes inputDir and returns the batch summary. It fails hard
// only when not a single document produced an output record.
func (r *Runner) Run(ctx context.Context, inputDir string) (BatchResult, error) {
	var result BatchResult

	files, err := listDocuments(inputDir)
	if err != nil {
		return result, err
	}
	if len(files) == 0 {
		r.log.Warn("no supported documents found", "dir", inputDir)
		return result, nil
	}

	queue := make(chan string, len(files))
	for _, f := range files {
		queue <- f
	}
	close(queue)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := NewWorker(r.models, r.log)
			for path := range queue {
				if ctx.Err() != nil {
					return
				}
				outcome := r.processOne(ctx, w, path)
				mu.Lock()
				result.Processed++
				switch outcome {
				case outcomeOK:
					result.Succeeded++
				case outcomeFallback:
					result.Fallbacks++
				case outcomeNoOutput:
					result.Failed++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if result.Processed > 0 && result.Failed == result.Processed {
		return result, fmt.Errorf("batch failed: none of %d documents produced output", result.Processed)
	}
	return result, nil
}

type outcome int

const (
	outcomeOK outcome = iota
	outcomeFallback
	outcomeNoOutput
)

func (r *Runner) processOne(ctx context.Context, w *Worker, path string) outcome {
	name := filepath.Base(path)
	log := r.log.With("doc", name)
	start := time.Now()

	rec, err := r.extractWithTimeout(ctx, w, path, name)
	fellBack := false
	if err != nil {
		stage := StageLoad
		var se *StageError
		if errors.As(err, &se) {
			stage = se.Stage
		}
		log.Error("document failed, emitting fallback record", "stage", string(stage), "error", err)
		rec = outline.Fallback()
		fellBack = true
	}

	if r.stats != nil {
		r.stats.Record(time.Since(start).Milliseconds())
	}

	outPath, err := r.writer.Write(trimExt(name), rec)
	if err != nil {
		log.Error("write failed", "stage", string(StageSerialize), "error", err)
		return outcomeNoOutput
	}

	log.Info("document processed",
		"output", outPath,
		"entries", len(rec.Outline),
		"fallback", fellBack,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if fellBack {
		return outcomeFallback
	}
	return outcomeOK
}

// extractWithTimeout bounds one document's processing. On timeout the
// document is abandoned and its fallback is emitted; a stuck extraction
// never stalls the rest of the batch.
func (r *Runner) extractWithTimeout(ctx context.Context, w *Worker, path, name string) (outline.Record, error) {
	docCtx := ctx
	cancel := context.CancelFunc(func() {})
	if r.timeout > 0 {
		docCtx, cancel = context.WithTimeout(ctx, r.timeout)
	}
	defer cancel()

	f, err := os.Open(path)
	if err != nil {
		return outline.Fallback(), stageErr(name, StageLoad, err)
	}
	defer f.Close()

	type extraction struct {
		rec outline.Record
		err error
	}
	done := make(chan extraction, 1)
	go func() {
		rec, err := w.Extract(docCtx, f, name)
		done <- extraction{rec: rec, err: err}
	}()

	select {
	case res := <-done:
		return res.rec, res.err
	case <-docCtx.Done():
		return outline.Fallback(), stageErr(name, StageLoad, docCtx.Err())
	}
}

func listDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !spansource.IsSupportedExtension(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
