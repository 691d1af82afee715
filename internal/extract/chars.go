package extract

import (
	"errors"

	"github.com/rivo/uniseg"

	"github.com/kolkov/splitby/internal/task"
)

// ProcessChars extracts the selected characters from one record.
// Characters are grapheme clusters, not code points: a base letter
// plus combining marks counts as one selectable unit.
func ProcessChars(ins *task.Instructions, rec *task.Record) ([]byte, error) {
	text, err := decodeText(rec.Bytes, ins.StrictUTF8)
	if err != nil {
		return nil, err
	}

	var clusters []string
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		clusters = append(clusters, g.Str())
	}

	if ins.Count {
		return formatCount(len(clusters)), nil
	}
	if len(clusters) == 0 {
		if ins.StrictReturn {
			return nil, errors.New("strict return error: empty record")
		}
		if ins.StrictBounds && len(ins.Selections) > 0 {
			return nil, errors.New("strict bounds error: empty record")
		}
		return nil, nil
	}

	ranges, err := resolveSelections(ins, len(clusters))
	if err != nil {
		return nil, err
	}
	positions := emitPositions(ins, ranges, len(clusters))

	out := make([]byte, 0, len(rec.Bytes))
	for k, pos := range positions {
		if pos < len(clusters) {
			out = append(out, clusters[pos]...)
		} else {
			out = append(out, ins.Placeholder...)
		}
		if k < len(positions)-1 && ins.Join != nil && ins.Join.Kind == task.JoinLiteral {
			out = append(out, ins.Join.Bytes...)
		}
	}

	if ins.StrictReturn && len(out) == 0 {
		return nil, errors.New("strict returns error: no valid output")
	}
	return out, nil
}
