package splitby

import (
	"errors"
	"io"
	"sync"

	"github.com/kolkov/splitby/internal/pipeline"
	"github.com/kolkov/splitby/internal/task"
)

// Version is the library version, also reported by the command.
const Version = "1.0.0"

const channelCapacity = 1024

// Run executes the full pipeline: read records from input, process
// them on a worker pool, and write the selected output in input order.
// It returns a *ConfigError for invalid instructions and a
// *RecordError when a strict policy rejects a record; in the latter
// case everything before the failing record has already been written.
func Run(ins *Instructions, input io.Reader, output io.Writer) error {
	compiled, err := ins.compile()
	if err != nil {
		return err
	}
	return run(compiled, input, output)
}

func run(ins *task.Instructions, input io.Reader, output io.Writer) error {
	records := make(chan []*task.Record, channelCapacity)
	results := make(chan task.ResultChunk, channelCapacity)
	readerErr := make(chan error, 1)

	go func() {
		readerErr <- pipeline.ReadInput(ins, input, records)
		close(records)
	}()

	var workers sync.WaitGroup
	for i := 0; i < ins.Workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			pipeline.ProcessRecords(ins, records, results)
		}()
	}
	go func() {
		workers.Wait()
		close(results)
	}()

	werr := pipeline.WriteResults(ins, results, output)
	rerr := <-readerErr

	// A read failure explains any downstream anomaly, so it wins.
	if rerr != nil {
		return rerr
	}
	if werr != nil {
		var recErr *pipeline.RecordError
		if errors.As(werr, &recErr) {
			return &RecordError{Sequence: recErr.Seq, Unit: recErr.Unit, Err: recErr.Err}
		}
		return werr
	}
	return nil
}
