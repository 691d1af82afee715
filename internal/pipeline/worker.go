package pipeline

import (
	"errors"

	"github.com/kolkov/splitby/internal/extract"
	"github.com/kolkov/splitby/internal/task"
)

// ProcessRecords is one worker: it drains record batches, runs the
// extractor for the configured mode, and sends each batch's results
// tagged with the batch's starting sequence number. A failing record
// ends its batch's outputs but not the worker: later records still
// produce results, so the writer can flush everything ahead of the
// failure and surface the first error in sequence order.
func ProcessRecords(ins *task.Instructions, records <-chan []*task.Record, results chan<- task.ResultChunk) {
	for batch := range records {
		if len(batch) == 0 {
			continue
		}

		chunk := task.ResultChunk{
			StartSeq: batch[0].Seq,
			Outputs:  make([]task.Output, 0, len(batch)),
		}
		for _, rec := range batch {
			payload, err := extract.Process(ins, rec)
			if err == nil && ins.StrictReturn && !ins.Count && len(payload) == 0 {
				err = errors.New("strict return error: empty field")
			}
			if err != nil {
				chunk.Err = err
				chunk.ErrSeq = rec.Seq
				break
			}
			chunk.Outputs = append(chunk.Outputs, task.Output{
				Bytes:         payload,
				HasTerminator: rec.HasTerminator,
			})
		}
		results <- chunk
	}
}
