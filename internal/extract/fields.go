package extract

import (
	"errors"

	"github.com/kolkov/splitby/internal/task"
	"github.com/kolkov/splitby/internal/width"
)

// field is one delimiter-separated segment together with the delimiter
// text immediately following it. The final field of a record carries
// an empty delimiter.
type field struct {
	text  string
	delim string
}

// splitFields partitions decoded record text into fields at delimiter
// matches. In whole-string mode a trailing delimiter does not produce
// an extra empty final field.
func splitFields(ins *task.Instructions, text string) ([]field, error) {
	spans, err := ins.Engine.FindAllIndex(text)
	if err != nil {
		return nil, err
	}

	fields := make([]field, 0, len(spans)+1)
	cursor := 0
	for _, sp := range spans {
		fields = append(fields, field{
			text:  text[cursor:sp[0]],
			delim: text[sp[0]:sp[1]],
		})
		cursor = sp[1]
	}
	final := text[cursor:]
	if final != "" || ins.InputMode != task.WholeString {
		fields = append(fields, field{text: final})
	}

	if ins.SkipEmpty {
		kept := fields[:0]
		for _, f := range fields {
			if f.text != "" {
				kept = append(kept, f)
			}
		}
		fields = kept
	}
	return fields, nil
}

// ProcessFields extracts the selected fields from one record,
// preserving or substituting delimiters per the join policy.
func ProcessFields(ins *task.Instructions, rec *task.Record) ([]byte, error) {
	text, err := decodeText(rec.Bytes, ins.StrictUTF8)
	if err != nil {
		return nil, err
	}

	fields, err := splitFields(ins, text)
	if err != nil {
		return nil, err
	}

	if ins.Count {
		return formatCount(len(fields)), nil
	}
	if len(fields) == 0 {
		return nil, nil
	}

	ranges, err := resolveSelections(ins, len(fields))
	if err != nil {
		return nil, err
	}
	positions := emitPositions(ins, ranges, len(fields))

	var firstDelim, lastDelim string
	for _, f := range fields {
		if f.delim != "" {
			if firstDelim == "" {
				firstDelim = f.delim
			}
			lastDelim = f.delim
		}
	}

	out := make([]byte, 0, len(rec.Bytes))
	strictReturnPassed := false
	for k, pos := range positions {
		var cell string
		if pos < len(fields) {
			cell = fields[pos].text
			if cell != "" {
				out = append(out, cell...)
				strictReturnPassed = true
			}
		} else {
			cell = string(ins.Placeholder)
			out = append(out, ins.Placeholder...)
			strictReturnPassed = true
		}

		if k == len(positions)-1 {
			break
		}
		join := chooseJoin(ins, fields, pos, positions[k+1], firstDelim, lastDelim)
		out = append(out, join...)

		// Pad so the next field starts at the aligned column.
		if rec.FieldWidths != nil && k < len(rec.FieldWidths) {
			for pad := rec.FieldWidths[k] - width.Display(cell); pad > 0; pad-- {
				out = append(out, ' ')
			}
		}
	}

	if ins.StrictReturn && !strictReturnPassed {
		return nil, errors.New("strict returns error: no valid output")
	}
	return out, nil
}

// chooseJoin picks the bytes inserted between the element at position
// cur and the next emitted element at position next. The auto policy
// preserves delimiters by priority: delimiter after the previous field,
// delimiter before the next field, first delimiter in the record, then
// a single space (a newline when the whole input is one record).
func chooseJoin(ins *task.Instructions, fields []field, cur, next int, firstDelim, lastDelim string) string {
	var curDelim, beforeNext string
	if cur < len(fields) {
		curDelim = fields[cur].delim
	}
	if next > 0 && next-1 < len(fields) {
		beforeNext = fields[next-1].delim
	}

	fallback := func(delim string) string {
		if delim != "" {
			return delim
		}
		return " "
	}

	if ins.Join != nil {
		switch ins.Join.Kind {
		case task.JoinLiteral:
			return string(ins.Join.Bytes)
		case task.JoinAfterPrevious:
			return fallback(curDelim)
		case task.JoinBeforeNext:
			return fallback(beforeNext)
		case task.JoinFirst:
			return fallback(firstDelim)
		case task.JoinLast:
			return fallback(lastDelim)
		case task.JoinSpace:
			return " "
		case task.JoinNone:
			return ""
		}
	}

	switch {
	case curDelim != "":
		return curDelim
	case beforeNext != "":
		return beforeNext
	case firstDelim != "":
		return firstDelim
	case ins.InputMode == task.WholeString:
		return "\n"
	default:
		return " "
	}
}
