// Package task defines the shared data model of a splitby run: the
// compiled, immutable instructions every stage reads, the records the
// reader produces, and the result chunks the workers hand to the
// ordered writer.
package task

import (
	"github.com/kolkov/splitby/internal/matcher"
	"github.com/kolkov/splitby/internal/selection"
)

// InputMode selects how raw input is split into records.
type InputMode int

const (
	// PerLine treats each \n-terminated line as one record.
	PerLine InputMode = iota
	// WholeString treats the entire input as one record.
	WholeString
	// ZeroTerminated splits records on NUL bytes.
	ZeroTerminated
)

// Terminator returns the record terminator byte for the mode, or
// ok=false when records are emitted without one.
func (m InputMode) Terminator() (byte, bool) {
	switch m {
	case PerLine:
		return '\n', true
	case ZeroTerminated:
		return 0, true
	default:
		return 0, false
	}
}

// RecordUnit names one record of the mode for error messages, or ""
// when the whole input is a single record.
func (m InputMode) RecordUnit() string {
	switch m {
	case PerLine:
		return "line"
	case ZeroTerminated:
		return "record"
	default:
		return ""
	}
}

// SelectionMode selects the atomic unit selections address.
type SelectionMode int

const (
	// Fields addresses delimiter-separated fields.
	Fields SelectionMode = iota
	// Bytes addresses raw bytes.
	Bytes
	// Characters addresses grapheme clusters.
	Characters
)

// JoinKind enumerates the join policies between emitted elements.
type JoinKind int

const (
	// JoinLiteral inserts a fixed byte string.
	JoinLiteral JoinKind = iota
	// JoinAuto preserves delimiters: after-previous, then before-next,
	// then the record's first delimiter, then a space.
	JoinAuto
	// JoinAfterPrevious uses the delimiter after the previous field.
	JoinAfterPrevious
	// JoinBeforeNext uses the delimiter before the next field.
	JoinBeforeNext
	// JoinFirst uses the first delimiter seen in the record.
	JoinFirst
	// JoinLast uses the last delimiter seen in the record.
	JoinLast
	// JoinSpace inserts a single space.
	JoinSpace
	// JoinNone inserts nothing.
	JoinNone
)

// Join is a parsed join policy. Bytes is set for JoinLiteral only.
type Join struct {
	Kind  JoinKind
	Bytes []byte
}

// Instructions is the compiled, process-wide configuration. It is
// constructed once before the pipeline starts and shared read-only by
// every stage; nothing mutates it afterwards.
type Instructions struct {
	InputMode     InputMode
	SelectionMode SelectionMode

	// Selections in user-supplied order; empty means "everything".
	Selections []selection.Selection

	// Engine is the compiled delimiter matcher. Set in fields mode only.
	Engine matcher.Engine

	// Join between emitted elements; nil means the auto policy in
	// fields mode and no join elsewhere.
	Join *Join

	// Placeholder substitutes for out-of-range positions; nil disables.
	Placeholder []byte

	Invert    bool
	SkipEmpty bool
	Count     bool

	StrictBounds     bool
	StrictReturn     bool
	StrictRangeOrder bool
	StrictUTF8       bool

	TrimNewline bool
	Align       bool

	// Workers is the number of processing goroutines (>= 1).
	Workers int

	// BatchQuota is the reader's batch size in bytes.
	BatchQuota int

	// FlushThreshold is the writer's buffered-output flush size.
	FlushThreshold int
}

// Record is one unit of input, tagged with its position in the stream.
type Record struct {
	// Seq is unique and assigned in input order by the single reader.
	Seq int

	Bytes []byte

	// HasTerminator records whether the input carried the record's
	// terminator, so the writer can reproduce a missing final one.
	HasTerminator bool

	// FieldWidths is the per-output-position alignment table, shared
	// across all records of an aligned run. Nil unless aligning.
	FieldWidths []int
}

// Output is one processed record ready for the writer.
type Output struct {
	Bytes         []byte
	HasTerminator bool
}

// ResultChunk carries the outcome of one record batch. Outputs holds
// the successfully processed prefix; if a record failed, Err is set
// and ErrSeq names it. Exactly one chunk exists per batch.
type ResultChunk struct {
	StartSeq int
	Outputs  []Output
	Err      error
	ErrSeq   int
}
