// Package width measures the display width of record text for aligned
// output. Width is counted in terminal columns over grapheme clusters,
// with ANSI escape sequences stripped so colored fields align the same
// as plain ones.
package width

import (
	"github.com/coregx/coregex"
	"github.com/rivo/uniseg"
)

var ansiEscape = mustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func mustCompile(pattern string) *coregex.Regexp {
	re, err := coregex.Compile(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

// Display returns the display width of s in terminal columns.
func Display(s string) int {
	if len(s) == 0 {
		return 0
	}
	return uniseg.StringWidth(ansiEscape.ReplaceAllString(s, ""))
}
