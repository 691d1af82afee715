package selection

import (
	"fmt"
	"strconv"
	"strings"
)

// keyword endpoints: start/first address the first element, end/last
// the last. Matching is case-insensitive.
var keywords = map[string]int{
	"start": 1,
	"first": 1,
	"end":   -1,
	"last":  -1,
}

// splitEndpoint consumes one endpoint from the front of token and
// returns its value and the remainder. An endpoint is a keyword or a
// signed integer.
func splitEndpoint(token string) (int, string, bool) {
	lowered := strings.ToLower(token)
	for word, value := range keywords {
		if strings.HasPrefix(lowered, word) {
			return value, token[len(word):], true
		}
	}

	i := 0
	if i < len(token) && token[i] == '-' {
		i++
	}
	digits := i
	for i < len(token) && token[i] >= '0' && token[i] <= '9' {
		i++
	}
	if i == digits {
		return 0, "", false
	}
	value, err := strconv.Atoi(token[:i])
	if err != nil {
		return 0, "", false
	}
	return value, token[i:], true
}

// Parse parses one selection token: a single index, a range "a-b", or
// keyword endpoints ("first-last", "start-2"). Zero indices are
// rejected here, before any record is read.
func Parse(token string) (Selection, error) {
	trimmed := strings.TrimSpace(token)
	invalid := func() (Selection, error) {
		return Selection{}, fmt.Errorf("invalid selection: '%s'", token)
	}
	if trimmed == "" {
		return invalid()
	}

	start, rest, ok := splitEndpoint(trimmed)
	if !ok {
		return invalid()
	}
	end := start
	if rest != "" {
		if rest[0] != '-' {
			return invalid()
		}
		end, rest, ok = splitEndpoint(rest[1:])
		if !ok || rest != "" {
			return invalid()
		}
	}
	if start == 0 || end == 0 {
		return Selection{}, fmt.Errorf("selections are 1-based, 0 is an invalid index")
	}
	return Selection{Start: start, End: end}, nil
}

// IsToken reports whether s matches the selection grammar, without
// validating the index values themselves.
func IsToken(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	_, rest, ok := splitEndpoint(trimmed)
	if !ok {
		return false
	}
	if rest == "" {
		return true
	}
	if rest[0] != '-' {
		return false
	}
	_, rest, ok = splitEndpoint(rest[1:])
	return ok && rest == ""
}

// ParseList parses a comma- or whitespace-separated list of selection
// tokens. Empty parts are skipped.
func ParseList(s string) ([]Selection, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
	sels := make([]Selection, 0, len(parts))
	for _, part := range parts {
		sel, err := Parse(part)
		if err != nil {
			return nil, err
		}
		sels = append(sels, sel)
	}
	return sels, nil
}
