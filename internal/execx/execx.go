package execx

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"carecontent/batchgen/internal/logx"
)

// Run executes a shell command and returns its combined output. The caller's
// context bounds the command's lifetime; cancellation kills the process group.
func Run(ctx context.Context, command string) (string, error) {
	logx.Logf("run: %s", command)

	cmd := exec.CommandContext(ctx, "bash", "-lc", command)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return output.String(), fmt.Errorf("command aborted: %w", ctxErr)
		}
		if logx.Verbose && output.Len() > 0 {
			out := output.String()
			logx.Logf("output (error):\n%s", strings.TrimRight(out, "\n"))
		}
		return output.String(), fmt.Errorf("command failed: %w", err)
	}
	if logx.Verbose && output.Len() > 0 {
		out := output.String()
		logx.Logf("output:\n%s", strings.TrimRight(out, "\n"))
	}
	return output.String(), nil
}

// ShellEscape single-quotes a value for safe interpolation into a bash command.
func ShellEscape(value string) string {
	if value == "" {
		return "''"
	}
	escaped := strings.ReplaceAll(value, "'", "'\"'\"'")
	return "'" + escaped + "'"
}
