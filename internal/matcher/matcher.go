// Package matcher compiles delimiter patterns, choosing an engine per
// pattern: the linear-time coregex engine when it accepts the pattern,
// falling back to the backtracking regexp2 engine for constructs such
// as lookaround and backreferences. Both engines expose the same
// find-all-spans contract over a decoded record.
package matcher

import (
	"errors"
	"fmt"

	"github.com/coregx/coregex"
	"github.com/dlclark/regexp2"
)

// Span is a half-open [start, end) byte range of one delimiter match.
type Span [2]int

// Engine finds all non-overlapping delimiter matches in a record.
// Implementations are immutable after compilation and safe for
// concurrent use by multiple workers.
type Engine interface {
	// Pattern returns the original pattern text.
	Pattern() string

	// FindAllIndex returns the byte spans of every match in text, in
	// order. A backtracking engine may fail at match time; the linear
	// engine never does.
	FindAllIndex(text string) ([]Span, error)
}

// Compile builds an Engine for pattern. The simple engine is tried
// first; patterns it rejects are handed to the backtracking engine.
// An empty pattern is a configuration error, not a match-everywhere
// regex.
func Compile(pattern string) (Engine, error) {
	if pattern == "" {
		return nil, errors.New("empty string is not a valid delimiter")
	}
	re, err := coregex.Compile(pattern)
	if err == nil {
		return &simpleEngine{pattern: pattern, re: re}, nil
	}
	fancy, ferr := regexp2.Compile(pattern, regexp2.None)
	if ferr != nil {
		return nil, fmt.Errorf("failed to compile regex: %v", ferr)
	}
	return &fancyEngine{pattern: pattern, re: fancy}, nil
}

// simpleEngine wraps the linear-time coregex engine.
type simpleEngine struct {
	pattern string
	re      *coregex.Regexp
}

func (e *simpleEngine) Pattern() string { return e.pattern }

func (e *simpleEngine) FindAllIndex(text string) ([]Span, error) {
	matches := e.re.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return nil, nil
	}
	spans := make([]Span, len(matches))
	for i, m := range matches {
		spans[i] = Span{m[0], m[1]}
	}
	return spans, nil
}

// fancyEngine wraps regexp2 for patterns the simple engine rejects.
type fancyEngine struct {
	pattern string
	re      *regexp2.Regexp
}

func (e *fancyEngine) Pattern() string { return e.pattern }

func (e *fancyEngine) FindAllIndex(text string) ([]Span, error) {
	m, err := e.re.FindStringMatch(text)
	if err != nil {
		return nil, fmt.Errorf("regex matching error: %v", err)
	}
	if m == nil {
		return nil, nil
	}

	// regexp2 reports rune offsets; spans must be byte offsets into
	// the original text.
	byteOff := make([]int, 0, len(text)+1)
	for i := range text {
		byteOff = append(byteOff, i)
	}
	byteOff = append(byteOff, len(text))

	var spans []Span
	for m != nil {
		start, end := m.Index, m.Index+m.Length
		if end >= len(byteOff) {
			end = len(byteOff) - 1
		}
		spans = append(spans, Span{byteOff[start], byteOff[end]})
		m, err = e.re.FindNextMatch(m)
		if err != nil {
			return nil, fmt.Errorf("regex matching error: %v", err)
		}
	}
	return spans, nil
}
