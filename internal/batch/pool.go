package batch

import (
	"context"
	"sync"
	"time"

	"carecontent/batchgen/internal/logx"
)

// TaskRunner is what the pool drives; Executor is the production
// implementation.
type TaskRunner interface {
	Execute(ctx context.Context, task GenerationTask) GenerationResult
}

// Progress is emitted after every task completion.
type Progress struct {
	Done    int
	Total   int
	Elapsed time.Duration
	// ETA is the remaining-time estimate from the mean observed task
	// duration; zero until at least one task has finished.
	ETA time.Duration
}

// ProgressFunc receives progress notifications. Called from the collecting
// goroutine only, never concurrently.
type ProgressFunc func(p Progress)

// Pool runs tasks through a fixed number of worker goroutines. Tasks are
// attempted exactly once; failures are recorded, not retried, and never stop
// the run.
type Pool struct {
	Workers    int
	Runner     TaskRunner
	OnProgress ProgressFunc
}

// Run drains the full task list and returns one result per task, re-sorted
// into task order. Internally results arrive in completion order; sorting
// here keeps the manifest deterministic for identical inputs.
func (p Pool) Run(ctx context.Context, tasks []GenerationTask) ([]GenerationResult, error) {
	if p.Workers <= 0 {
		return nil, configErrorf("worker count must be positive, got %d", p.Workers)
	}

	start := time.Now()
	taskCh := make(chan GenerationTask)
	resultCh := make(chan GenerationResult)

	var wg sync.WaitGroup
	for w := 0; w < p.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				resultCh <- p.Runner.Execute(ctx, task)
			}
		}()
	}

	go func() {
		for _, task := range tasks {
			taskCh <- task
		}
		close(taskCh)
		wg.Wait()
		close(resultCh)
	}()

	byID := make(map[string]GenerationResult, len(tasks))
	done := 0
	for result := range resultCh {
		done++
		byID[result.TaskID] = result
		elapsed := time.Since(start)
		eta := time.Duration(0)
		if done > 0 && done < len(tasks) {
			mean := elapsed / time.Duration(done)
			eta = mean * time.Duration(len(tasks)-done)
		}
		logx.Debug("task resolved",
			"task", result.TaskID,
			"success", result.Success,
			"done", done,
			"total", len(tasks),
		)
		if p.OnProgress != nil {
			p.OnProgress(Progress{Done: done, Total: len(tasks), Elapsed: elapsed, ETA: eta})
		}
	}

	results := make([]GenerationResult, 0, len(tasks))
	for _, task := range tasks {
		results = append(results, byID[task.ID])
	}
	return results, nil
}
