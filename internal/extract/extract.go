// Package extract implements the three extraction strategies: fields
// split by a delimiter pattern, raw bytes, and grapheme clusters. All
// three share one index-resolution routine, so bounds, range-order,
// and negative-index handling are identical across modes.
package extract

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/kolkov/splitby/internal/selection"
	"github.com/kolkov/splitby/internal/task"
)

// Process dispatches a record to the extractor for the configured
// selection mode and returns the output bytes for the record.
func Process(ins *task.Instructions, rec *task.Record) ([]byte, error) {
	switch ins.SelectionMode {
	case task.Bytes:
		return ProcessBytes(ins, rec)
	case task.Characters:
		return ProcessChars(ins, rec)
	default:
		if ins.Engine == nil {
			return nil, errors.New("internal error: missing regex engine")
		}
		return ProcessFields(ins, rec)
	}
}

// decodeText interprets record bytes as UTF-8. Valid input converts
// without modification; invalid input either fails the record (strict)
// or has each invalid byte replaced with U+FFFD (lossy).
func decodeText(b []byte, strict bool) (string, error) {
	if utf8.Valid(b) {
		return string(b), nil
	}
	if strict {
		return "", errors.New("input is not valid UTF-8")
	}
	var out []byte
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			out = append(out, "�"...)
		} else {
			out = append(out, b[:size]...)
		}
		b = b[size:]
	}
	return string(out), nil
}

// resolveSelections runs the shared validation for a record with the
// given element count and applies inversion. An empty selection list
// means the full range. Placeholder positions are disabled under
// invert: the complement is computed over real elements only.
func resolveSelections(ins *task.Instructions, count int) ([]selection.Range, error) {
	if len(ins.Selections) == 0 {
		if count == 0 {
			return nil, nil
		}
		return []selection.Range{{Start: 0, End: count - 1}}, nil
	}

	policy := selection.Policy{
		Placeholder:      ins.Placeholder != nil && !ins.Invert,
		StrictBounds:     ins.StrictBounds,
		StrictRangeOrder: ins.StrictRangeOrder,
	}
	ranges, err := selection.NormaliseAll(ins.Selections, count, policy)
	if err != nil {
		return nil, err
	}
	if ins.Invert {
		return selection.Invert(ranges, count), nil
	}
	return ranges, nil
}

// emitPositions flattens resolved ranges into the ordered list of
// element positions to output. Positions at or past count stand for
// placeholder output and survive only when a placeholder is configured
// and invert is off.
func emitPositions(ins *task.Instructions, ranges []selection.Range, count int) []int {
	positions := make([]int, 0, count)
	for _, r := range ranges {
		for i := r.Start; i <= r.End; i++ {
			if i < count || (ins.Placeholder != nil && !ins.Invert) {
				positions = append(positions, i)
			}
		}
	}
	return positions
}

func formatCount(n int) []byte {
	return []byte(fmt.Sprintf("%d", n))
}
