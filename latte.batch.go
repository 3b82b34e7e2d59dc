package latte

import (
	"context"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BatchJob is one document in a batch render: base data merged with
// per-document overrides. ID is echoed back in the result for correlation.
type BatchJob struct {
	ID        string
	Overrides map[string]any
}

// BatchResult is the outcome of one batch job.
type BatchResult struct {
	ID     string
	Output string
	Err    error
}

// BatchSummary aggregates a completed batch run.
type BatchSummary struct {
	Total     int
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

// DocsPerSecond returns the batch throughput.
func (s *BatchSummary) DocsPerSecond() float64 {
	secs := s.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.Total) / secs
}

// BatchRenderer renders many documents from one template using a bounded
// worker pool. The template is parsed once and shared; rendering is
// deterministic per job, so results depend only on each job's merged data.
type BatchRenderer struct {
	engine  *Engine
	workers int
	logger  *zap.Logger
}

// NewBatchRenderer creates a batch renderer. workers <= 0 defaults to the
// number of CPUs.
func NewBatchRenderer(engine *Engine, workers int) *BatchRenderer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &BatchRenderer{
		engine:  engine,
		workers: workers,
		logger:  engine.logger,
	}
}

// Render renders one document per job. Results are returned in job order;
// individual failures are recorded per job and do not stop the batch.
func (b *BatchRenderer) Render(ctx context.Context, source string, base map[string]any, jobs []BatchJob) ([]BatchResult, *BatchSummary, error) {
	tmpl, err := b.engine.Parse(source)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	b.logger.Info(LogMsgBatchStart,
		zap.Int(LogFieldCount, len(jobs)),
		zap.Int(LogFieldWorkers, b.workers))

	results := make([]BatchResult, len(jobs))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				job := jobs[i]
				out, err := tmpl.Render(ctx, mergeData(base, job.Overrides))
				results[i] = BatchResult{ID: job.ID, Output: out, Err: err}
			}
		}()
	}

feed:
	for i := range jobs {
		select {
		case indexes <- i:
		case <-ctx.Done():
			// Stop feeding; mark unstarted jobs and drain in-flight ones.
			for j := i; j < len(jobs); j++ {
				results[j] = BatchResult{ID: jobs[j].ID, Err: ctx.Err()}
			}
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	summary := &BatchSummary{
		Total:   len(jobs),
		Elapsed: time.Since(start),
	}
	for i := range results {
		if results[i].Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}

	b.logger.Info(LogMsgBatchComplete,
		zap.Int(LogFieldSucceeded, summary.Succeeded),
		zap.Int(LogFieldFailed, summary.Failed),
		zap.Duration(LogFieldDuration, summary.Elapsed))

	if err := ctx.Err(); err != nil {
		return results, summary, err
	}
	return results, summary, nil
}

// mergeData layers per-job overrides over the base data. The merge is
// shallow: an override replaces the base value for its top-level key.
func mergeData(base, overrides map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(overrides))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}
