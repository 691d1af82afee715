// Package selection parses user-supplied selection tokens and resolves
// them into 0-based index ranges against a concrete element count.
//
// Selections are 1-based on the way in: 1 is the first element, -1 the
// last. Keywords start/first and end/last map to 1 and -1. A token is
// either a single index or a range like "2-5", "start-3", "-3--1".
package selection

import (
	"fmt"
	"math"
)

// Selection is a raw, user-facing selection: 1-based signed endpoints.
// A single index is represented as Start == End.
type Selection struct {
	Start int
	End   int
}

// Range is a resolved selection: 0-based inclusive endpoints. With the
// placeholder policy active, End (and Start) may lie past the last
// element; the extractor substitutes placeholder output for those
// positions.
type Range struct {
	Start int
	End   int
}

// Policy controls how resolution treats degenerate selections.
type Policy struct {
	// Placeholder keeps out-of-range positions alive so a placeholder
	// value can be emitted for them instead of dropping the selection.
	Placeholder bool

	// StrictBounds turns out-of-range endpoints into errors instead of
	// clamping them.
	StrictBounds bool

	// StrictRangeOrder turns end-before-start ranges into errors
	// instead of silently empty selections.
	StrictRangeOrder bool
}

// maxSafeLength is the largest element count for which negative indices
// can be resolved without risking signed overflow in the arithmetic
// below. Matches the historical 32-bit index capacity.
const maxSafeLength = math.MaxInt32

// ResolveIndex converts a 1-based signed index into a 0-based index for
// a sequence of the given length. Positive indices count from the
// front, non-positive from the back (-1 is the last element).
func ResolveIndex(raw, length int) (int, error) {
	if raw > 0 {
		return raw - 1, nil
	}
	if length > maxSafeLength {
		return 0, fmt.Errorf(
			"input too large: %d elements exceeds maximum of %d, negative indices cannot be resolved for inputs this large",
			length, maxSafeLength)
	}
	return length + raw, nil
}

// Normalise resolves one selection against length elements. The second
// return value reports whether the selection survived: degenerate
// selections (inverted order, fully out of range) are dropped rather
// than errored when the relevant strict policy is off.
func Normalise(sel Selection, length int, p Policy) (Range, bool, error) {
	// Zero is never a valid index, regardless of strictness.
	if sel.Start == 0 || sel.End == 0 {
		return Range{}, false, fmt.Errorf("selections are 1-based, 0 is an invalid index")
	}

	start, err := ResolveIndex(sel.Start, length)
	if err != nil {
		return Range{}, false, err
	}
	end, err := ResolveIndex(sel.End, length)
	if err != nil {
		return Range{}, false, err
	}

	// Order check comes before bounds checks.
	if start > end {
		if p.StrictRangeOrder {
			return Range{}, false, fmt.Errorf(
				"end index (%d) is less than start index (%d) in selection %d-%d",
				sel.End, sel.Start, sel.Start, sel.End)
		}
		return Range{}, false, nil
	}

	if p.StrictBounds {
		if length == 0 {
			return Range{}, false, fmt.Errorf("strict bounds error: no valid fields to select")
		}
		if start < 0 || start >= length {
			if sel.Start == sel.End {
				return Range{}, false, fmt.Errorf(
					"strict bounds error: index (%d) out of bounds, must be between 1 and %d",
					sel.Start, length)
			}
			return Range{}, false, fmt.Errorf(
				"strict bounds error: start index (%d) out of bounds, must be between 1 and %d",
				sel.Start, length)
		}
		if end < 0 || end >= length {
			return Range{}, false, fmt.Errorf(
				"strict bounds error: end index (%d) out of bounds, must be between 1 and %d",
				sel.End, length)
		}
		return Range{Start: start, End: end}, true, nil
	}

	// One-sided clamping. With a placeholder, positions past the end
	// stay in the range so the extractor can substitute for them; a
	// range entirely outside the valid span collapses to a single
	// out-of-range position, yielding exactly one placeholder.
	if p.Placeholder {
		if end < 0 || start >= length {
			return Range{Start: length, End: length}, true, nil
		}
		if start < 0 {
			start = 0
		}
		return Range{Start: start, End: end}, true, nil
	}
	if end < 0 || start >= length {
		return Range{}, false, nil
	}
	if start < 0 {
		start = 0
	}
	if max := length - 1; end > max {
		end = max
	}
	return Range{Start: start, End: end}, true, nil
}

// NormaliseAll resolves a selection list, dropping selections that
// Normalise drops and failing on the first error.
func NormaliseAll(sels []Selection, length int, p Policy) ([]Range, error) {
	ranges := make([]Range, 0, len(sels))
	for _, sel := range sels {
		r, ok, err := Normalise(sel, length, p)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

// Invert replaces resolved ranges with their complement over
// [0, length): the ranges are sorted, overlapping ones merged, and the
// gaps (including the span before the first range and after the last)
// become the new selection list.
func Invert(ranges []Range, length int) []Range {
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	for i := 1; i < len(sorted); i++ {
		j := i
		for j > 0 && (sorted[j-1].Start > sorted[j].Start ||
			(sorted[j-1].Start == sorted[j].Start && sorted[j-1].End > sorted[j].End)) {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
			j--
		}
	}

	merged := make([]Range, 0, len(sorted))
	for _, r := range sorted {
		if n := len(merged); n > 0 && r.Start <= merged[n-1].End {
			if r.End > merged[n-1].End {
				merged[n-1].End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}

	inverted := make([]Range, 0, len(merged)+1)
	next := 0
	for _, r := range merged {
		if r.Start > next {
			inverted = append(inverted, Range{Start: next, End: r.Start - 1})
		}
		next = r.End + 1
	}
	if next < length {
		inverted = append(inverted, Range{Start: next, End: length - 1})
	}
	return inverted
}
