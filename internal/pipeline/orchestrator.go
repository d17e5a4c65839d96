package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/docstruct/docstruct/internal/config"
	"github.com/docstruct/docstruct/internal/model"
	"github.com/docstruct/docstruct/internal/outline"
)

// Orchestrator serves the HTTP mode: jobs submitted through the API are
// queued and processed by a fixed pool of workers sharing the read-only
// model artifacts.
type Orchestrator struct {
	jobs   *JobStore
	queue  chan *Job
	models *model.Artifacts
	log    *slog.Logger
	cfg    config.Config
	stats  *Stats

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOrchestrator(cfg config.Config, models *model.Artifacts, stats *Stats, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:   NewJobStore(cfg.JobTTL),
		queue:  make(chan *Job, cfg.MaxQueueSize),
		models: models,
		log:    log,
		cfg:    cfg,
		stats:  stats,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.models, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.process(workerCtx, w, job)
				}
			}
		}()
	}

	// Job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pool.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Outline runs the pipeline synchronously for one in-memory document,
// for the blocking API endpoint. Failures yield the fallback record and
// the stage-tagged error.
func (o *Orchestrator) Outline(ctx context.Context, data []byte, filename string) (outline.Record, error) {
	docCtx := ctx
	cancel := context.CancelFunc(func() {})
	if o.cfg.DocTimeout > 0 {
		docCtx, cancel = context.WithTimeout(ctx, o.cfg.DocTimeout)
	}
	defer cancel()

	start := time.Now()
	w := NewWorker(o.models, o.log)
	rec, err := w.Extract(docCtx, bytes.NewReader(data), filename)
	if o.stats != nil {
		o.stats.Record(time.Since(start).Milliseconds())
	}
	return rec, err
}

func (o *Orchestrator) process(ctx context.Context, w *Worker, job *Job) {
	job.SetStatus(StatusProcessing)
	log := o.log.With("job_id", job.ID, "doc", job.Filename)

	docCtx := ctx
	cancel := context.CancelFunc(func() {})
	if o.cfg.DocTimeout > 0 {
		docCtx, cancel = context.WithTimeout(ctx, o.cfg.DocTimeout)
	}
	defer cancel()

	start := time.Now()
	rec, err := w.Extract(docCtx, bytes.NewReader(job.FileData()), job.Filename)
	if o.stats != nil {
		o.stats.Record(time.Since(start).Milliseconds())
	}
	if err != nil {
		stage := StageLoad
		var se *StageError
		if errors.As(err, &se) {
			stage = se.Stage
		}
		log.Error("job failed, recording fallback", "stage", string(stage), "error", err)
		job.Finish(outline.Fallback(), err.Error())
		return
	}
	log.Info("job completed", "entries", len(rec.Outline))
	job.Finish(rec, "")
}
