package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	fn func(ctx context.Context, task GenerationTask) (*GenerateOutcome, error)
}

func (s stubGenerator) Generate(ctx context.Context, task GenerationTask) (*GenerateOutcome, error) {
	return s.fn(ctx, task)
}

func writeOutput(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestExecutor_Success(t *testing.T) {
	task := GenerationTask{
		ID:          "tips-001",
		ContentType: "tips",
		OutputPath:  filepath.Join(t.TempDir(), "tips", "tips-001.mp4"),
	}
	gen := stubGenerator{fn: func(ctx context.Context, task GenerationTask) (*GenerateOutcome, error) {
		writeOutput(t, task.OutputPath, "fake video bytes")
		return &GenerateOutcome{Metadata: map[string]any{"captions": "Caregiving tip #1"}}, nil
	}}

	result := Executor{Gen: gen}.Execute(context.Background(), task)

	require.True(t, result.Success)
	assert.Empty(t, result.Error)
	assert.Equal(t, "tips-001", result.TaskID)
	assert.Equal(t, int64(len("fake video bytes")), result.FileSize)
	assert.Equal(t, "Caregiving tip #1", result.Metadata["captions"])
	assert.GreaterOrEqual(t, result.Duration, time.Duration(0))
}

func TestExecutor_CreatesParentDirectory(t *testing.T) {
	// The output path nests two levels that do not exist yet; the generator
	// itself only writes the file.
	task := GenerationTask{
		ID:         "story-001",
		OutputPath: filepath.Join(t.TempDir(), "2026-01-29", "story", "story-001.mp4"),
	}
	gen := stubGenerator{fn: func(ctx context.Context, task GenerationTask) (*GenerateOutcome, error) {
		info, err := os.Stat(filepath.Dir(task.OutputPath))
		require.NoError(t, err, "parent directory must exist before the generator runs")
		require.True(t, info.IsDir())
		writeOutput(t, task.OutputPath, "x")
		return nil, nil
	}}

	result := Executor{Gen: gen}.Execute(context.Background(), task)
	require.True(t, result.Success)
}

func TestExecutor_DirectoryFailureIsTaskFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	writeOutput(t, blocker, "a file where a directory should go")

	invoked := false
	gen := stubGenerator{fn: func(ctx context.Context, task GenerationTask) (*GenerateOutcome, error) {
		invoked = true
		return nil, nil
	}}
	task := GenerationTask{ID: "tips-001", OutputPath: filepath.Join(blocker, "deeper", "out.mp4")}

	result := Executor{Gen: gen}.Execute(context.Background(), task)

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "create output directory")
	assert.False(t, invoked, "generator must not run when the directory cannot be created")
}

func TestExecutor_GeneratorErrorBecomesResult(t *testing.T) {
	gen := stubGenerator{fn: func(ctx context.Context, task GenerationTask) (*GenerateOutcome, error) {
		return nil, errors.New("ffmpeg exited with status 1")
	}}
	task := GenerationTask{ID: "tips-002", OutputPath: filepath.Join(t.TempDir(), "out.mp4")}

	result := Executor{Gen: gen}.Execute(context.Background(), task)

	require.False(t, result.Success)
	assert.Equal(t, "ffmpeg exited with status 1", result.Error)
	assert.Zero(t, result.FileSize)
}

func TestExecutor_TimeoutBecomesFailedResult(t *testing.T) {
	gen := stubGenerator{fn: func(ctx context.Context, task GenerationTask) (*GenerateOutcome, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	task := GenerationTask{ID: "tips-003", OutputPath: filepath.Join(t.TempDir(), "out.mp4")}

	result := Executor{Gen: gen, Timeout: 30 * time.Millisecond}.Execute(context.Background(), task)

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "timed out")
}

func TestExecutor_MissingOutputIsFailure(t *testing.T) {
	gen := stubGenerator{fn: func(ctx context.Context, task GenerationTask) (*GenerateOutcome, error) {
		return &GenerateOutcome{}, nil
	}}
	task := GenerationTask{ID: "tips-004", OutputPath: filepath.Join(t.TempDir(), "out.mp4")}

	result := Executor{Gen: gen}.Execute(context.Background(), task)

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "output is missing")
}

func TestExecutor_PanicIsContained(t *testing.T) {
	gen := stubGenerator{fn: func(ctx context.Context, task GenerationTask) (*GenerateOutcome, error) {
		panic("template index out of range")
	}}
	task := GenerationTask{ID: "tips-005", OutputPath: filepath.Join(t.TempDir(), "out.mp4")}

	var result GenerationResult
	require.NotPanics(t, func() {
		result = Executor{Gen: gen}.Execute(context.Background(), task)
	})
	require.False(t, result.Success)
	assert.Contains(t, result.Error, "generator panic")
}
