package extract

import (
	"github.com/kolkov/splitby/internal/task"
	"github.com/kolkov/splitby/internal/width"
)

// ScanFieldWidths computes the per-output-position maximum display
// widths across all records, for aligned output. Records whose
// selections fail to resolve are skipped here; the worker pass reports
// the error.
func ScanFieldWidths(ins *task.Instructions, records []*task.Record) ([]int, error) {
	var maxWidths []int

	for _, rec := range records {
		text, err := decodeText(rec.Bytes, ins.StrictUTF8)
		if err != nil {
			return nil, err
		}
		fields, err := splitFields(ins, text)
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			continue
		}

		ranges, err := resolveSelections(ins, len(fields))
		if err != nil {
			continue
		}
		positions := emitPositions(ins, ranges, len(fields))

		for k, pos := range positions {
			var w int
			if pos < len(fields) {
				w = width.Display(fields[pos].text)
			} else {
				w = width.Display(string(ins.Placeholder))
			}
			for k >= len(maxWidths) {
				maxWidths = append(maxWidths, 0)
			}
			if w > maxWidths[k] {
				maxWidths[k] = w
			}
		}
	}
	return maxWidths, nil
}
