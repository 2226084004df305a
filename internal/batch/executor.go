package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"carecontent/batchgen/internal/fsx"
	"carecontent/batchgen/internal/logx"
)

// GenerateOutcome is what the underlying generator hands back on success.
type GenerateOutcome struct {
	// Metadata is opaque key-value data attached to the produced item
	// (captions, hashtags, ...).
	Metadata map[string]any
}

// Generator produces one piece of content at task.OutputPath. Implementations
// live outside the scheduler; tests stub this out.
type Generator interface {
	Generate(ctx context.Context, task GenerationTask) (*GenerateOutcome, error)
}

// Executor runs exactly one task and converts whatever happens into a
// GenerationResult. It is the failure boundary: no error, panic, or timeout
// escapes Execute.
type Executor struct {
	Gen Generator
	// Timeout bounds a single generation call. Zero disables the bound.
	Timeout time.Duration
}

// Execute runs one task. The parent directory of the output path is created
// up front; the underlying media tooling fails in opaque ways when it is
// missing.
func (e Executor) Execute(ctx context.Context, task GenerationTask) (result GenerationResult) {
	start := time.Now()
	result = GenerationResult{
		TaskID:      task.ID,
		ContentType: task.ContentType,
		OutputPath:  task.OutputPath,
	}
	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Error = fmt.Sprintf("generator panic: %v", r)
			result.FileSize = 0
			result.Duration = time.Since(start)
		}
	}()

	if err := fsx.EnsureDir(filepath.Dir(task.OutputPath)); err != nil {
		result.Error = fmt.Sprintf("create output directory: %v", err)
		result.Duration = time.Since(start)
		return result
	}

	genCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	outcome, err := e.Gen.Generate(genCtx, task)
	result.Duration = time.Since(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(genCtx.Err(), context.DeadlineExceeded) {
			result.Error = fmt.Sprintf("generation timed out after %s", e.Timeout)
		} else {
			result.Error = err.Error()
		}
		logx.Debug("task failed", "task", task.ID, "err", result.Error)
		return result
	}

	size, err := fsx.FileSize(task.OutputPath)
	if err != nil {
		result.Error = fmt.Sprintf("generator reported success but output is missing: %v", err)
		return result
	}

	result.Success = true
	result.FileSize = size
	if outcome != nil {
		result.Metadata = outcome.Metadata
	}
	return result
}
