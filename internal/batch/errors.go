package batch

import "fmt"

// ConfigError marks invalid run parameters detected before any task is
// dispatched (bad mode combination, unknown content type, non-positive
// count/days/workers). The CLI maps it to a non-zero exit code.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return e.msg }

// ConfigErrorf builds a ConfigError; the CLI uses it for pre-dispatch
// validation (mode combinations) that lives outside this package.
func ConfigErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

func configErrorf(format string, args ...any) *ConfigError {
	return ConfigErrorf(format, args...)
}

// PersistError marks a failure to write run bookkeeping (the manifest file).
// Unlike per-task failures it is fatal: a run whose manifest is lost cannot
// feed downstream scheduling.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
