// Package generator is the default content-generation collaborator: it
// shells out to a per-content-type command configured in the [types] section
// and picks up any caption metadata the command leaves next to the output
// file. The scheduler itself only sees the batch.Generator interface.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"carecontent/batchgen/internal/batch"
	"carecontent/batchgen/internal/config"
	"carecontent/batchgen/internal/execx"
	"carecontent/batchgen/internal/fsx"
	"carecontent/batchgen/internal/logx"
)

type ScriptGenerator struct {
	commands map[string]string
	hostname string
}

func New(cfg config.Config) *ScriptGenerator {
	return &ScriptGenerator{
		commands: cfg.TypeCommands,
		hostname: cfg.Hostname,
	}
}

func (g *ScriptGenerator) Generate(ctx context.Context, task batch.GenerationTask) (*batch.GenerateOutcome, error) {
	command, err := g.buildCommand(task)
	if err != nil {
		return nil, err
	}

	logx.Info("generate", "task", task.ID, "type", task.ContentType, "host", g.hostname)
	if _, err := execx.Run(ctx, command); err != nil {
		return nil, err
	}
	if !fsx.FileExists(task.OutputPath) {
		return nil, fmt.Errorf("command produced no output at %s", task.OutputPath)
	}

	outcome := &batch.GenerateOutcome{}
	if meta, ok := readSidecar(task.OutputPath + ".json"); ok {
		outcome.Metadata = meta
	}
	return outcome, nil
}

// buildCommand expands the configured template for the task's content type.
// Placeholders: {output}, {type}, {index}, {date}. Values are shell-escaped.
func (g *ScriptGenerator) buildCommand(task batch.GenerationTask) (string, error) {
	template := g.commands[task.ContentType]
	if template == "" {
		return "", fmt.Errorf("no generator command configured for type %q", task.ContentType)
	}
	replacer := strings.NewReplacer(
		"{output}", execx.ShellEscape(task.OutputPath),
		"{type}", execx.ShellEscape(task.ContentType),
		"{index}", strconv.Itoa(task.SequenceIndex),
		"{date}", execx.ShellEscape(task.DayLabel),
	)
	return replacer.Replace(template), nil
}

// readSidecar decodes a caption/metadata JSON file a generator command may
// have written alongside the video. Missing sidecars are normal; malformed
// ones are logged and skipped rather than failing the item.
func readSidecar(path string) (map[string]any, bool) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var meta map[string]any
	if err := json.Unmarshal(payload, &meta); err != nil {
		logx.Warn("sidecar metadata decode failed", "path", path, "err", err)
		return nil, false
	}
	return meta, true
}
