package splitby

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/kolkov/splitby/internal/matcher"
	"github.com/kolkov/splitby/internal/selection"
	"github.com/kolkov/splitby/internal/task"
)

// InputMode selects how raw input is split into records.
type InputMode int

const (
	// PerLine processes the input line by line (default).
	PerLine InputMode = iota
	// WholeString processes the entire input as a single record.
	WholeString
	// ZeroTerminated processes NUL-terminated records.
	ZeroTerminated
)

// SelectionMode selects what a selection index addresses.
type SelectionMode int

const (
	// Fields selects delimiter-separated fields (default).
	Fields SelectionMode = iota
	// Bytes selects raw bytes.
	Bytes
	// Characters selects grapheme clusters.
	Characters
)

// Selection is one user-supplied selection: 1-based signed endpoints,
// with Start == End for a single index. Negative indices count from
// the end (-1 is the last element).
type Selection struct {
	Start int
	End   int
}

// Instructions holds the configuration for a run. The zero value
// selects per-line fields mode; a Delimiter is then required. The
// struct is read-only once Run starts.
type Instructions struct {
	InputMode     InputMode
	SelectionMode SelectionMode

	// Selections in supplied order; empty selects everything.
	Selections []Selection

	// Delimiter is the regex pattern splitting fields. Required in
	// fields mode, ignored otherwise.
	Delimiter string

	// Join is inserted between emitted elements. In fields mode it may
	// be an @-keyword (@auto, @after-previous, @before-next, @first,
	// @last, @space, @none), a 0x-prefixed hex byte string, or a
	// literal. Nil keeps the default behavior: delimiter preservation
	// in fields mode, nothing in bytes and characters modes.
	Join *string

	// Placeholder substitutes for out-of-range selections instead of
	// omitting them. Accepts a 0x-prefixed hex byte string or a
	// literal; an empty value means a single space in characters mode.
	Placeholder *string

	Invert    bool
	SkipEmpty bool
	Count     bool

	StrictBounds bool
	StrictReturn bool
	StrictUTF8   bool

	// StrictRangeOrder errors on ranges whose end precedes their
	// start. Nil means enabled, the default.
	StrictRangeOrder *bool

	// TrimNewline drops the terminator of the very last record.
	TrimNewline bool

	// Align pads fields so columns line up across records. Per-line
	// fields mode only; forces the whole input to be buffered.
	Align bool

	// Workers is the number of processing goroutines; 0 picks a
	// default from the available parallelism.
	Workers int

	// BatchQuota and FlushThreshold tune the reader batch size and the
	// writer flush size in bytes; 0 picks the defaults.
	BatchQuota     int
	FlushThreshold int
}

// ParseSelections parses a comma- or whitespace-separated selection
// list such as "1,3-5,last".
func ParseSelections(s string) ([]Selection, error) {
	parsed, err := selection.ParseList(s)
	if err != nil {
		return nil, &ConfigError{Message: err.Error()}
	}
	sels := make([]Selection, len(parsed))
	for i, sel := range parsed {
		sels[i] = Selection{Start: sel.Start, End: sel.End}
	}
	return sels, nil
}

// IsSelectionToken reports whether s matches the selection grammar:
// a single index, a range "a-b", or keyword endpoints like "first" and
// "last". Used to tell selections apart from an implicit delimiter.
func IsSelectionToken(s string) bool {
	return selection.IsToken(s)
}

// ParseHex decodes a 0x-prefixed hex byte string ("0x2C20" -> ", ").
// Returns ok=false when s is not hex, in which case callers fall back
// to treating s as a literal.
func ParseHex(s string) ([]byte, bool) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return nil, false
	}
	digits := s[2:]
	if len(digits) == 0 || len(digits)%2 != 0 {
		return nil, false
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i < len(digits); i += 2 {
		hi, ok1 := hexDigit(digits[i])
		lo, ok2 := hexDigit(digits[i+1])
		if !ok1 || !ok2 {
			return nil, false
		}
		out = append(out, hi<<4|lo)
	}
	return out, true
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

var joinKeywords = map[string]task.JoinKind{
	"@auto":           task.JoinAuto,
	"@after-previous": task.JoinAfterPrevious,
	"@before-next":    task.JoinBeforeNext,
	"@first":          task.JoinFirst,
	"@last":           task.JoinLast,
	"@space":          task.JoinSpace,
	"@none":           task.JoinNone,
}

// compile validates the public configuration and builds the immutable
// instructions the pipeline stages share.
func (ins *Instructions) compile() (*task.Instructions, error) {
	compiled := &task.Instructions{
		Invert:         ins.Invert,
		SkipEmpty:      ins.SkipEmpty,
		Count:          ins.Count,
		StrictBounds:   ins.StrictBounds,
		StrictReturn:   ins.StrictReturn,
		StrictUTF8:     ins.StrictUTF8,
		TrimNewline:    ins.TrimNewline,
		Align:          ins.Align,
		BatchQuota:     ins.BatchQuota,
		FlushThreshold: ins.FlushThreshold,
	}

	switch ins.InputMode {
	case PerLine:
		compiled.InputMode = task.PerLine
	case WholeString:
		compiled.InputMode = task.WholeString
	case ZeroTerminated:
		compiled.InputMode = task.ZeroTerminated
	default:
		return nil, &ConfigError{Message: fmt.Sprintf("invalid input mode: %d", ins.InputMode)}
	}
	switch ins.SelectionMode {
	case Fields:
		compiled.SelectionMode = task.Fields
	case Bytes:
		compiled.SelectionMode = task.Bytes
	case Characters:
		compiled.SelectionMode = task.Characters
	default:
		return nil, &ConfigError{Message: fmt.Sprintf("invalid selection mode: %d", ins.SelectionMode)}
	}

	compiled.StrictRangeOrder = ins.StrictRangeOrder == nil || *ins.StrictRangeOrder

	compiled.Selections = make([]selection.Selection, len(ins.Selections))
	for i, sel := range ins.Selections {
		if sel.Start == 0 || sel.End == 0 {
			return nil, &ConfigError{Message: "selections are 1-based, 0 is an invalid index"}
		}
		compiled.Selections[i] = selection.Selection{Start: sel.Start, End: sel.End}
	}

	if compiled.SelectionMode == task.Fields {
		if ins.Delimiter == "" {
			return nil, &ConfigError{Message: "delimiter is required in fields mode (use -d or --delimiter)"}
		}
		engine, err := matcher.Compile(ins.Delimiter)
		if err != nil {
			return nil, &ConfigError{Message: err.Error()}
		}
		compiled.Engine = engine
	}

	if ins.Join != nil {
		join, err := parseJoin(*ins.Join, compiled.SelectionMode)
		if err != nil {
			return nil, err
		}
		compiled.Join = join
	}

	if ins.Placeholder != nil {
		value := *ins.Placeholder
		if bytes, ok := ParseHex(value); ok {
			compiled.Placeholder = bytes
		} else if value == "" && compiled.SelectionMode == task.Characters {
			compiled.Placeholder = []byte(" ")
		} else {
			compiled.Placeholder = []byte(value)
		}
	}

	if ins.Align {
		if compiled.InputMode != task.PerLine {
			return nil, &ConfigError{Message: "--align is only supported in per-line mode"}
		}
		if compiled.SelectionMode != task.Fields {
			return nil, &ConfigError{Message: "--align is only supported in fields mode"}
		}
	}

	compiled.Workers = ins.Workers
	if compiled.Workers <= 0 {
		compiled.Workers = runtime.NumCPU() - 1
		if compiled.Workers < 1 {
			compiled.Workers = 1
		}
	}

	return compiled, nil
}

func parseJoin(value string, mode task.SelectionMode) (*task.Join, error) {
	if strings.HasPrefix(value, "@") {
		if mode != task.Fields {
			return nil, &ConfigError{
				Message: "join flags (@auto, @after-previous, etc.) are only supported in fields mode",
			}
		}
		kind, ok := joinKeywords[value]
		if !ok {
			return nil, &ConfigError{Message: fmt.Sprintf("invalid join mode: %s", value)}
		}
		return &task.Join{Kind: kind}, nil
	}
	if mode == task.Bytes {
		return nil, &ConfigError{Message: "join is not supported in byte mode"}
	}
	if bytes, ok := ParseHex(value); ok {
		return &task.Join{Kind: task.JoinLiteral, Bytes: bytes}, nil
	}
	return &task.Join{Kind: task.JoinLiteral, Bytes: []byte(value)}, nil
}
