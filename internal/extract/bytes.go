package extract

import (
	"errors"

	"github.com/kolkov/splitby/internal/task"
)

// ProcessBytes extracts the selected bytes from one record. There is
// no delimiter concept: between selections only a literal join (or
// nothing) is inserted, and the payload needs no decoding.
func ProcessBytes(ins *task.Instructions, rec *task.Record) ([]byte, error) {
	n := len(rec.Bytes)

	if ins.Count {
		return formatCount(n), nil
	}
	if n == 0 {
		if ins.StrictReturn {
			return nil, errors.New("strict returns error: empty record")
		}
		if ins.StrictBounds && len(ins.Selections) > 0 {
			return nil, errors.New("strict bounds error: empty record")
		}
		return nil, nil
	}

	ranges, err := resolveSelections(ins, n)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, n)
	for si, r := range ranges {
		if si > 0 && ins.Join != nil && ins.Join.Kind == task.JoinLiteral {
			out = append(out, ins.Join.Bytes...)
		}
		for i := r.Start; i <= r.End; i++ {
			if i < n {
				out = append(out, rec.Bytes[i])
			} else if ins.Placeholder != nil && !ins.Invert {
				out = append(out, ins.Placeholder...)
			}
		}
	}

	if ins.StrictReturn && len(out) == 0 {
		return nil, errors.New("strict returns error: no valid output")
	}
	return out, nil
}
