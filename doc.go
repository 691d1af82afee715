// Package splitby extracts fields, bytes, or characters from a stream
// of records.
//
// Input is split into records (lines, one whole blob, or NUL-terminated
// chunks), each record is partitioned by a regex delimiter (or by byte
// or grapheme-cluster granularity), and the user's selection of
// elements is written back in original record order despite parallel
// processing.
//
// The package exposes the same engine the splitby command uses:
//
//	ins := &splitby.Instructions{
//		Delimiter:  ",",
//		Selections: []splitby.Selection{{Start: 2, End: 2}},
//	}
//	err := splitby.Run(ins, strings.NewReader("boo,hoo,foo\n"), os.Stdout)
//	// output: "hoo\n"
package splitby
