package batch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expandFixture() ExpandParams {
	return ExpandParams{
		Types:     []string{"tips", "validation"},
		OutputDir: "/var/lib/batchgen/out",
		StartDate: time.Date(2026, 1, 29, 0, 0, 0, 0, time.UTC),
		Stamp:     time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC),
	}
}

func TestExpand_TaskCounts(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ExpandParams)
		want   int
	}{
		{
			name: "bulk single type",
			mutate: func(p *ExpandParams) {
				p.Mode = ModeBulk
				p.ContentType = "validation"
				p.Count = 10
			},
			want: 10,
		},
		{
			name: "bulk all types",
			mutate: func(p *ExpandParams) {
				p.Mode = ModeAll
				p.Count = 5
			},
			want: 10,
		},
		{
			name: "daily",
			mutate: func(p *ExpandParams) {
				p.Mode = ModeDaily
				p.Days = 3
			},
			want: 6,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := expandFixture()
			tc.mutate(&p)
			tasks, err := Expand(p)
			require.NoError(t, err)
			require.Len(t, tasks, tc.want)
		})
	}
}

func TestExpand_OutputPathsUnique(t *testing.T) {
	p := expandFixture()
	p.Mode = ModeAll
	p.Count = 25

	tasks, err := Expand(p)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, task := range tasks {
		require.Falsef(t, seen[task.OutputPath], "duplicate output path %s", task.OutputPath)
		seen[task.OutputPath] = true
	}
}

func TestExpand_RejectsBadInput(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ExpandParams)
	}{
		{"unknown type", func(p *ExpandParams) {
			p.Mode = ModeBulk
			p.ContentType = "unknown_type"
			p.Count = 1
		}},
		{"zero count bulk", func(p *ExpandParams) {
			p.Mode = ModeBulk
			p.ContentType = "tips"
			p.Count = 0
		}},
		{"negative count all", func(p *ExpandParams) {
			p.Mode = ModeAll
			p.Count = -3
		}},
		{"zero days", func(p *ExpandParams) {
			p.Mode = ModeDaily
			p.Days = 0
		}},
		{"unknown mode", func(p *ExpandParams) {
			p.Mode = RunMode("weekly")
		}},
		{"no types", func(p *ExpandParams) {
			p.Mode = ModeAll
			p.Count = 1
			p.Types = nil
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := expandFixture()
			tc.mutate(&p)
			tasks, err := Expand(p)
			require.Error(t, err)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Nil(t, tasks)
		})
	}
}

func TestExpand_DailyEncodesDatesAndTypes(t *testing.T) {
	p := expandFixture()
	p.Mode = ModeDaily
	p.Days = 3

	tasks, err := Expand(p)
	require.NoError(t, err)
	require.Len(t, tasks, 6)

	wantDates := []string{"2026-01-29", "2026-01-30", "2026-01-31"}
	seen := map[string]bool{}
	for _, task := range tasks {
		require.NotEmpty(t, task.DayLabel)
		assert.Contains(t, wantDates, task.DayLabel)
		assert.Contains(t, task.OutputPath, task.DayLabel)
		assert.Contains(t, task.OutputPath, task.ContentType)
		seen[task.DayLabel+"/"+task.ContentType] = true
	}
	// Every (date, type) pair appears exactly once.
	assert.Len(t, seen, 6)
}

func TestExpand_BulkPathsEncodeTypeAndSequence(t *testing.T) {
	p := expandFixture()
	p.Mode = ModeBulk
	p.ContentType = "validation"
	p.Count = 3

	tasks, err := Expand(p)
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	for i, task := range tasks {
		assert.Equal(t, i, task.SequenceIndex)
		assert.Contains(t, task.OutputPath, "validation")
		assert.Contains(t, task.OutputPath, "20260823-103000")
	}
	assert.Equal(t, "validation-001", tasks[0].ID)
	assert.Equal(t, "validation-003", tasks[2].ID)
}

func TestExpand_IdempotentStructure(t *testing.T) {
	p := expandFixture()
	p.Mode = ModeAll
	p.Count = 4

	first, err := Expand(p)
	require.NoError(t, err)

	// Only the embedded run timestamp may differ between two expansions of
	// the same intent.
	p.Stamp = p.Stamp.Add(90 * time.Minute)
	second, err := Expand(p)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].ContentType, second[i].ContentType)
		assert.Equal(t, first[i].SequenceIndex, second[i].SequenceIndex)
		assert.NotEqual(t, first[i].OutputPath, second[i].OutputPath)
	}
}
