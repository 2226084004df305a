package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carecontent/batchgen/internal/batch"
	"carecontent/batchgen/internal/config"
)

func TestBuildCommand_ExpandsPlaceholders(t *testing.T) {
	cfg := config.Config{
		TypeCommands: map[string]string{
			"tips": "render.sh --type {type} --out {output} --seq {index} --date {date}",
		},
	}
	g := New(cfg)

	command, err := g.buildCommand(batch.GenerationTask{
		ID:            "tips-003",
		ContentType:   "tips",
		OutputPath:    "/srv/out/2026-01-29/tips con espacio.mp4",
		SequenceIndex: 2,
		DayLabel:      "2026-01-29",
	})
	require.NoError(t, err)

	assert.Equal(t,
		"render.sh --type 'tips' --out '/srv/out/2026-01-29/tips con espacio.mp4' --seq 2 --date '2026-01-29'",
		command)
}

func TestBuildCommand_EscapesQuotes(t *testing.T) {
	cfg := config.Config{
		TypeCommands: map[string]string{"story": "tell.sh {output}"},
	}
	g := New(cfg)

	command, err := g.buildCommand(batch.GenerationTask{
		ContentType: "story",
		OutputPath:  "/out/it's-ok.mp4",
	})
	require.NoError(t, err)
	assert.Equal(t, `tell.sh '/out/it'"'"'s-ok.mp4'`, command)
}

func TestBuildCommand_UnconfiguredTypeFails(t *testing.T) {
	g := New(config.Config{TypeCommands: map[string]string{}})

	_, err := g.buildCommand(batch.GenerationTask{ContentType: "tips"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no generator command configured")
}
