package pipeline

import (
	"bufio"
	"fmt"
	"io"

	"github.com/kolkov/splitby/internal/task"
)

// DefaultFlushThreshold is the writer's buffered-output size.
const DefaultFlushThreshold = 64 * 1024

// RecordError is a per-record validation failure, surfaced once the
// record reaches the front of the ordering queue.
type RecordError struct {
	// Seq is the failing record's sequence number (0-based).
	Seq int
	// Unit names the record kind for messages ("line", "record"), or
	// "" in whole-string mode.
	Unit string
	Err  error
}

func (e *RecordError) Error() string {
	if e.Unit == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s %d: %v", e.Unit, e.Seq+1, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// WriteResults drains result chunks, restores input order, and writes
// each record followed by the mode's terminator. Results may arrive
// out of order; a pending buffer keyed by sequence number holds them
// until the cursor reaches them. A failed record aborts the run after
// everything before it has been written, so output is a prefix of a
// serial run's output.
func WriteResults(ins *task.Instructions, results <-chan task.ResultChunk, output io.Writer) error {
	terminator, hasTerminator := ins.InputMode.Terminator()

	threshold := ins.FlushThreshold
	if threshold <= 0 {
		threshold = DefaultFlushThreshold
	}
	out := bufio.NewWriterSize(output, threshold)

	// abort drains remaining results so workers and reader are never
	// blocked on a full channel after the writer stops consuming.
	abort := func(err error) error {
		go func() {
			for range results {
			}
		}()
		return err
	}

	pending := make(map[int]task.ResultChunk)
	nextSeq := 0
	// With trim-newline the terminator of each record is withheld
	// until the next record proves it was not the last one.
	owedTerminator := false

	emit := func(o task.Output) error {
		if owedTerminator {
			if err := out.WriteByte(terminator); err != nil {
				return err
			}
			owedTerminator = false
		}
		if _, err := out.Write(o.Bytes); err != nil {
			return err
		}
		if hasTerminator && o.HasTerminator {
			if ins.TrimNewline {
				owedTerminator = true
			} else if err := out.WriteByte(terminator); err != nil {
				return err
			}
		}
		return nil
	}

	flushReady := func() error {
		for {
			chunk, ok := pending[nextSeq]
			if !ok {
				return nil
			}
			delete(pending, nextSeq)
			for _, o := range chunk.Outputs {
				if err := emit(o); err != nil {
					return err
				}
				nextSeq++
			}
			if chunk.Err != nil {
				if err := out.Flush(); err != nil {
					return err
				}
				return &RecordError{
					Seq:  chunk.ErrSeq,
					Unit: ins.InputMode.RecordUnit(),
					Err:  chunk.Err,
				}
			}
		}
	}

	for chunk := range results {
		pending[chunk.StartSeq] = chunk
		if err := flushReady(); err != nil {
			return abort(err)
		}
	}
	if err := flushReady(); err != nil {
		return err
	}

	if len(pending) > 0 {
		return fmt.Errorf("result stream ended early: missing record %d", nextSeq)
	}

	if nextSeq == 0 {
		if ins.Count {
			if _, err := out.WriteString("0"); err != nil {
				return err
			}
		}
		if ins.StrictReturn {
			if err := out.Flush(); err != nil {
				return err
			}
			return fmt.Errorf("strict return check failed: no input received")
		}
		if ins.StrictBounds && len(ins.Selections) > 0 {
			return fmt.Errorf(
				"index (%d) out of bounds, must be between 1 and 0",
				ins.Selections[0].Start)
		}
	}

	return out.Flush()
}
