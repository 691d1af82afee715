package splitby

import "fmt"

// ConfigError reports an invalid configuration: a missing or invalid
// delimiter pattern, a bad selection token, or incompatible flags.
// Configuration errors are detected before any record is processed.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// RecordError reports a per-record validation failure (strict bounds,
// strict range order, strict UTF-8, strict return, or index overflow),
// attributed to the first failing record in sequence order.
type RecordError struct {
	// Sequence is the failing record's 0-based sequence number.
	Sequence int
	// Unit is "line" or "record" depending on the input mode, or ""
	// when the whole input is one record.
	Unit string
	// Err is the underlying validation failure.
	Err error
}

func (e *RecordError) Error() string {
	if e.Unit == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s %d: %v", e.Unit, e.Sequence+1, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// IOError reports a failure to open the input file or create the
// output file. The command maps it to exit code 2, distinct from all
// other error classes.
type IOError struct {
	Op   string // "open" or "create"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
