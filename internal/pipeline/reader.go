// Package pipeline connects the reader, the worker pool, and the
// ordered writer with bounded channels. One reader goroutine assigns
// sequence numbers in input order, workers process record batches
// concurrently, and the writer restores input order before any byte
// reaches the sink.
package pipeline

import (
	"bufio"
	"io"

	"github.com/kolkov/splitby/internal/extract"
	"github.com/kolkov/splitby/internal/task"
)

// DefaultBatchQuota is the reader's batch size in bytes: records are
// grouped until a batch reaches the quota, amortizing channel traffic.
const DefaultBatchQuota = 128 * 1024

// ReadInput splits input into records per the configured input mode
// and sends them downstream in sequence-numbered batches. The caller
// closes the channel after ReadInput returns.
func ReadInput(ins *task.Instructions, input io.Reader, records chan<- []*task.Record) error {
	quota := ins.BatchQuota
	if quota <= 0 {
		quota = DefaultBatchQuota
	}

	if ins.InputMode == task.WholeString {
		payload, err := io.ReadAll(input)
		if err != nil {
			return err
		}
		records <- []*task.Record{{Bytes: payload}}
		return nil
	}

	if ins.Align {
		return readAligned(ins, input, records, quota)
	}

	br := bufio.NewReaderSize(input, 64*1024)
	seq := 0
	var batch []*task.Record
	batchBytes := 0

	flush := func() {
		if len(batch) == 0 {
			return
		}
		records <- batch
		batch = nil
		batchBytes = 0
	}

	for {
		rec, err := readRecord(br, ins.InputMode, seq)
		if rec != nil {
			batch = append(batch, rec)
			batchBytes += len(rec.Bytes)
			if batchBytes >= quota {
				flush()
			}
			seq++
		}
		if err == io.EOF {
			flush()
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// readRecord reads one record, stripping its terminator. At end of
// stream a final unterminated segment is still a record, but the empty
// tail after a terminating delimiter is not. Returns (nil, io.EOF)
// when no record remains.
func readRecord(br *bufio.Reader, mode task.InputMode, seq int) (*task.Record, error) {
	delim := byte('\n')
	if mode == task.ZeroTerminated {
		delim = 0
	}

	chunk, err := br.ReadBytes(delim)
	if len(chunk) == 0 {
		if err == nil {
			err = io.EOF
		}
		return nil, err
	}

	hasTerminator := chunk[len(chunk)-1] == delim
	if hasTerminator {
		chunk = chunk[:len(chunk)-1]
		if mode == task.PerLine && len(chunk) > 0 && chunk[len(chunk)-1] == '\r' {
			chunk = chunk[:len(chunk)-1]
		}
	}

	rec := &task.Record{Seq: seq, Bytes: chunk, HasTerminator: hasTerminator}
	if err == io.EOF {
		// The record itself is valid; report EOF on the next call.
		err = nil
	}
	return rec, err
}

// readAligned buffers the entire input, scans the per-position field
// widths, attaches the shared width table to every record, and then
// feeds batches downstream. Alignment cannot stream: the widths depend
// on every record.
func readAligned(ins *task.Instructions, input io.Reader, records chan<- []*task.Record, quota int) error {
	br := bufio.NewReaderSize(input, 64*1024)
	var all []*task.Record
	seq := 0
	for {
		rec, err := readRecord(br, ins.InputMode, seq)
		if rec != nil {
			all = append(all, rec)
			seq++
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}

	widths, err := extract.ScanFieldWidths(ins, all)
	if err != nil {
		return err
	}

	var batch []*task.Record
	batchBytes := 0
	for _, rec := range all {
		rec.FieldWidths = widths
		batch = append(batch, rec)
		batchBytes += len(rec.Bytes)
		if batchBytes >= quota {
			records <- batch
			batch = nil
			batchBytes = 0
		}
	}
	if len(batch) > 0 {
		records <- batch
	}
	return nil
}
