package extract

import (
	"strings"
	"testing"

	"github.com/kolkov/splitby/internal/matcher"
	"github.com/kolkov/splitby/internal/selection"
	"github.com/kolkov/splitby/internal/task"
)

func fieldIns(t *testing.T, delim string, sels ...selection.Selection) *task.Instructions {
	t.Helper()
	engine, err := matcher.Compile(delim)
	if err != nil {
		t.Fatalf("Compile(%q) error: %v", delim, err)
	}
	return &task.Instructions{
		SelectionMode:    task.Fields,
		Engine:           engine,
		Selections:       sels,
		StrictRangeOrder: true,
	}
}

func sel(start, end int) selection.Selection {
	return selection.Selection{Start: start, End: end}
}

func runFields(t *testing.T, ins *task.Instructions, input string) string {
	t.Helper()
	out, err := ProcessFields(ins, &task.Record{Bytes: []byte(input)})
	if err != nil {
		t.Fatalf("ProcessFields(%q) error: %v", input, err)
	}
	return string(out)
}

func TestProcessFields(t *testing.T) {
	tests := []struct {
		name  string
		delim string
		sels  []selection.Selection
		input string
		want  string
	}{
		{"single field", ",", []selection.Selection{sel(2, 2)}, "boo,hoo,foo", "hoo"},
		{"two fields keep delimiter", ",", []selection.Selection{sel(1, 1), sel(3, 3)}, "boo,hoo,foo", "boo,foo"},
		{"order follows selections", ",", []selection.Selection{sel(3, 3), sel(1, 1)}, "boo,hoo,foo", "foo,boo"},
		{"range", ",", []selection.Selection{sel(1, 2)}, "boo,hoo,foo", "boo,hoo"},
		{"range joins inside", " ", []selection.Selection{sel(1, 3)}, "boo hoo foo", "boo hoo foo"},
		{"no selections emits everything", ",", nil, "boo,hoo,foo", "boo,hoo,foo"},
		{"negative index", ",", []selection.Selection{sel(-1, -1)}, "boo,hoo,foo", "foo"},
		{"negative range", ",", []selection.Selection{sel(-2, -1)}, "boo,hoo,foo", "hoo,foo"},
		{"first-last", ",", []selection.Selection{sel(1, -1)}, "boo,hoo,foo", "boo,hoo,foo"},
		{"out of range dropped", ",", []selection.Selection{sel(2, 2), sel(9, 9)}, "boo,hoo,foo", "hoo"},
		{"end clamped", ",", []selection.Selection{sel(2, 9)}, "boo,hoo,foo", "hoo,foo"},
		{"duplicate positions", ",", []selection.Selection{sel(1, 1), sel(1, 1)}, "boo,hoo", "boo,boo"},
		{"regex delimiter", `\s+`, []selection.Selection{sel(2, 2)}, "boo   hoo\tfoo", "hoo"},
		{"empty fields preserved", ",", []selection.Selection{sel(2, 2)}, "a,,b", ""},
		{"leading delimiter", ",", []selection.Selection{sel(1, 1)}, ",a,b", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins := fieldIns(t, tt.delim, tt.sels...)
			if got := runFields(t, ins, tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// The auto policy preserves the record's real delimiters: delimiter
// after the previous field, then before the next, then the record's
// first.
func TestAutoJoinDelimiterPreservation(t *testing.T) {
	tests := []struct {
		name  string
		sels  []selection.Selection
		input string
		want  string
	}{
		{"after previous wins", []selection.Selection{sel(1, 1), sel(3, 3)}, "a-b_c", "a-c"},
		{"mixed delimiters kept in ranges", []selection.Selection{sel(1, 3)}, "a-b_c", "a-b_c"},
		{"before next when previous missing", []selection.Selection{sel(3, 3), sel(2, 2)}, "a-b_c", "c_b"},
		{"first delimiter when both missing", []selection.Selection{sel(3, 3), sel(1, 1)}, "a-b_c", "c-a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins := fieldIns(t, "[-_]", tt.sels...)
			if got := runFields(t, ins, tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJoinModes(t *testing.T) {
	literal := func(s string) *task.Join {
		return &task.Join{Kind: task.JoinLiteral, Bytes: []byte(s)}
	}
	tests := []struct {
		name string
		join *task.Join
		want string
	}{
		{"literal", literal(" | "), "boo | foo"},
		{"literal empty", literal(""), "boofoo"},
		{"auto", &task.Join{Kind: task.JoinAuto}, "boo,foo"},
		{"after previous", &task.Join{Kind: task.JoinAfterPrevious}, "boo,foo"},
		{"before next", &task.Join{Kind: task.JoinBeforeNext}, "boo,foo"},
		{"first", &task.Join{Kind: task.JoinFirst}, "boo,foo"},
		{"last", &task.Join{Kind: task.JoinLast}, "boo,foo"},
		{"space", &task.Join{Kind: task.JoinSpace}, "boo foo"},
		{"none", &task.Join{Kind: task.JoinNone}, "boofoo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins := fieldIns(t, ",", sel(1, 1), sel(3, 3))
			ins.Join = tt.join
			if got := runFields(t, ins, "boo,hoo,foo"); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJoinFirstAndLastDiffer(t *testing.T) {
	ins := fieldIns(t, "[-_]", sel(1, 1), sel(3, 3))
	ins.Join = &task.Join{Kind: task.JoinFirst}
	if got := runFields(t, ins, "a-b_c"); got != "a-c" {
		t.Errorf("@first: got %q, want %q", got, "a-c")
	}
	ins.Join = &task.Join{Kind: task.JoinLast}
	if got := runFields(t, ins, "a-b_c"); got != "a_c" {
		t.Errorf("@last: got %q, want %q", got, "a_c")
	}
}

func TestSkipEmpty(t *testing.T) {
	ins := fieldIns(t, ",", sel(2, 2))
	ins.SkipEmpty = true
	if got := runFields(t, ins, "a,,b"); got != "b" {
		t.Errorf("got %q, want %q", got, "b")
	}

	ins = fieldIns(t, ",")
	ins.SkipEmpty = true
	ins.Count = true
	if got := runFields(t, ins, "a,,b,,"); got != "2" {
		t.Errorf("count got %q, want %q", got, "2")
	}
}

func TestCount(t *testing.T) {
	ins := fieldIns(t, ",")
	ins.Count = true
	tests := []struct {
		input string
		want  string
	}{
		{"a,b,c", "3"},
		{"abc", "1"},
		{"", "1"}, // one empty field
		{"a,", "2"},
	}
	for _, tt := range tests {
		if got := runFields(t, ins, tt.input); got != tt.want {
			t.Errorf("count(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPlaceholder(t *testing.T) {
	tests := []struct {
		name        string
		sels        []selection.Selection
		placeholder string
		input       string
		want        string
	}{
		{"out of range filled", []selection.Selection{sel(1, 1), sel(5, 5)}, ",", "apple,banana", "apple,,"},
		{"between real fields", []selection.Selection{sel(1, 1), sel(4, 4), sel(2, 2)}, "?", "boo hoo foo", "boo ? hoo"},
		{"range past end", []selection.Selection{sel(2, 4)}, "?", "a,b,c", "b,c,?"},
		{"entirely out of range yields one", []selection.Selection{sel(7, 9)}, "?", "a,b,c", "?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delim := ","
			if strings.Contains(tt.input, " ") {
				delim = " "
			}
			ins := fieldIns(t, delim, tt.sels...)
			ins.Placeholder = []byte(tt.placeholder)
			if got := runFields(t, ins, tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInvert(t *testing.T) {
	tests := []struct {
		name  string
		sels  []selection.Selection
		input string
		want  string
	}{
		{"drop middle", []selection.Selection{sel(2, 2)}, "a,b,c", "a,c"},
		{"drop range", []selection.Selection{sel(1, 2)}, "a,b,c,d", "c,d"},
		{"drop everything", []selection.Selection{sel(1, -1)}, "a,b,c", ""},
		{"complement is sorted", []selection.Selection{sel(3, 3), sel(1, 1)}, "a,b,c,d", "b,d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins := fieldIns(t, ",", tt.sels...)
			ins.Invert = true
			if got := runFields(t, ins, tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// Placeholders never fire under invert: the complement covers real
// fields only.
func TestInvertDisablesPlaceholder(t *testing.T) {
	ins := fieldIns(t, ",", sel(9, 9))
	ins.Invert = true
	ins.Placeholder = []byte("?")
	if got := runFields(t, ins, "a,b,c"); got != "a,b,c" {
		t.Errorf("got %q, want %q", got, "a,b,c")
	}
}

func TestStrictPolicies(t *testing.T) {
	t.Run("strict bounds", func(t *testing.T) {
		ins := fieldIns(t, ",", sel(9, 9))
		ins.StrictBounds = true
		_, err := ProcessFields(ins, &task.Record{Bytes: []byte("a,b,c")})
		if err == nil {
			t.Fatal("out-of-range selection succeeded under strict bounds")
		}
		want := "strict bounds error: index (9) out of bounds, must be between 1 and 3"
		if err.Error() != want {
			t.Errorf("error = %q, want %q", err, want)
		}
	})

	t.Run("strict range order", func(t *testing.T) {
		ins := fieldIns(t, ",", sel(3, 1))
		_, err := ProcessFields(ins, &task.Record{Bytes: []byte("a,b,c")})
		if err == nil || !strings.Contains(err.Error(), "less than start index") {
			t.Errorf("want range order error, got %v", err)
		}
	})

	t.Run("range order off drops selection", func(t *testing.T) {
		ins := fieldIns(t, ",", sel(3, 1), sel(2, 2))
		ins.StrictRangeOrder = false
		if got := runFields(t, ins, "a,b,c"); got != "b" {
			t.Errorf("got %q, want %q", got, "b")
		}
	})

	t.Run("strict return", func(t *testing.T) {
		ins := fieldIns(t, ",", sel(9, 9))
		ins.StrictReturn = true
		_, err := ProcessFields(ins, &task.Record{Bytes: []byte("a,b,c")})
		if err == nil || !strings.Contains(err.Error(), "strict returns error") {
			t.Errorf("want strict return error, got %v", err)
		}
	})

	t.Run("strict return satisfied by placeholder", func(t *testing.T) {
		ins := fieldIns(t, ",", sel(9, 9))
		ins.StrictReturn = true
		ins.Placeholder = []byte("?")
		if got := runFields(t, ins, "a,b,c"); got != "?" {
			t.Errorf("got %q, want %q", got, "?")
		}
	})

	t.Run("strict utf8", func(t *testing.T) {
		ins := fieldIns(t, ",", sel(1, 1))
		ins.StrictUTF8 = true
		_, err := ProcessFields(ins, &task.Record{Bytes: []byte{'a', 0xff, 'b'}})
		if err == nil || !strings.Contains(err.Error(), "not valid UTF-8") {
			t.Errorf("want UTF-8 error, got %v", err)
		}
	})
}

func TestLossyDecodeReplacesInvalidBytes(t *testing.T) {
	ins := fieldIns(t, ",", sel(1, 1))
	out, err := ProcessFields(ins, &task.Record{Bytes: []byte{'a', 0xff, 'b'}})
	if err != nil {
		t.Fatalf("ProcessFields error: %v", err)
	}
	if string(out) != "a�b" {
		t.Errorf("got %q, want %q", out, "a�b")
	}
}

func TestWholeStringTrailingField(t *testing.T) {
	ins := fieldIns(t, "\n")
	ins.InputMode = task.WholeString
	ins.Count = true
	// A trailing delimiter does not create an empty final field in
	// whole-string mode.
	if got := runFields(t, ins, "a\nb\n"); got != "2" {
		t.Errorf("count = %q, want %q", got, "2")
	}

	ins = fieldIns(t, "\n", sel(1, 1), sel(2, 2))
	ins.InputMode = task.WholeString
	if got := runFields(t, ins, "a\nb\n"); got != "a\nb" {
		t.Errorf("got %q, want %q", got, "a\nb")
	}
}

// In whole-string mode the auto join falls back to a newline, not a
// space, when the record has no delimiter at all.
func TestWholeStringNewlineFallback(t *testing.T) {
	ins := fieldIns(t, ",", sel(1, 1), sel(5, 5))
	ins.InputMode = task.WholeString
	ins.Placeholder = []byte("?")
	if got := runFields(t, ins, "abc"); got != "abc\n?" {
		t.Errorf("got %q, want %q", got, "abc\n?")
	}

	// The same seam in per-line mode falls back to a space.
	ins.InputMode = task.PerLine
	if got := runFields(t, ins, "abc"); got != "abc ?" {
		t.Errorf("got %q, want %q", got, "abc ?")
	}
}

func TestAlignPadding(t *testing.T) {
	ins := fieldIns(t, ",")
	rec := &task.Record{Bytes: []byte("a,bb,c"), FieldWidths: []int{3, 2, 1}}
	out, err := ProcessFields(ins, rec)
	if err != nil {
		t.Fatalf("ProcessFields error: %v", err)
	}
	// Each join is followed by padding up to the column width.
	if string(out) != "a,  bb,c" {
		t.Errorf("got %q, want %q", out, "a,  bb,c")
	}
}

func TestScanFieldWidths(t *testing.T) {
	ins := fieldIns(t, ",")
	records := []*task.Record{
		{Bytes: []byte("a,bb,c")},
		{Bytes: []byte("xxx,y,zz")},
	}
	widths, err := ScanFieldWidths(ins, records)
	if err != nil {
		t.Fatalf("ScanFieldWidths error: %v", err)
	}
	want := []int{3, 2, 2}
	if len(widths) != len(want) {
		t.Fatalf("widths = %v, want %v", widths, want)
	}
	for i := range want {
		if widths[i] != want[i] {
			t.Errorf("widths[%d] = %d, want %d", i, widths[i], want[i])
		}
	}
}
