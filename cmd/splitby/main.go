// splitby - extract fields, bytes, or characters from input records.
//
// Uses manual argument parsing rather than the "flag" package so that
// bare selections ("splitby , 1 3-5"), implicit delimiters, and
// --flag=value forms can all be classified the way users expect.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kolkov/splitby"
)

// version is set by GoReleaser at build time via -ldflags.
// For development builds, it will be "dev".
var version = "dev"

const (
	shortUsage = "usage: splitby [options] <delimiter> <selections>"
	longUsage  = `Options:
  -h, --help        Print help text
  -v, --version     Print version number
  -i, --input=<FILE>              Provide an input file
  -o, --output=<FILE>             Write output to a file
  -d, --delimiter=<REGEX>         Specify the delimiter to use
  -j, --join=<STRING|HEX|KEYWORD> Join each selection with string or hex or delimiter
  -p, --placeholder=<STRING|HEX>  Inserts placeholder for invalid selections
  --per-line                      Processes the input line by line (default)
  -w, --whole-string              Processes the input as a single string, rather than each line separately
  -z, --zero-terminated           Processes the input as zero-terminated strings
  -f, --fields                    Select fields split by delimiter (default)
  -b, --bytes                     Select bytes from the input
  -c, --characters                Select characters from the input
  -a, --align=<MODE>              Align output columns (left|none)
  --count                         Return the number of results after splitting
  --invert                        Inverts the chosen selection
  -e, --skip-empty                Skips empty fields when indexing or counting
  -E, --no-skip-empty             Does not skip empty fields when indexing or counting
  --trim-newline                  Drops the trailing newline of the last record
  --strict                        Shorthand for all strict features
  --no-strict                     Does not enforce strict features
  --strict-bounds                 Emit error if range is out of bounds
  --no-strict-bounds              Does not emit error if range is out of bounds
  --strict-return                 Emit error if there is no result
  --no-strict-return              Does not emit error if there is no result
  --strict-range-order            Emit error if start of a range is greater than the end
  --no-strict-range-order         Does not emit error if start of a range is greater than the end
  --strict-utf8                   Emit error on invalid UTF-8 sequences
  --no-strict-utf8                Does not emit error on invalid UTF-8 sequences
`
)

//nolint:gocyclo,funlen // CLI argument parsing is inherently complex
func main() {
	ins := &splitby.Instructions{}
	var inputPath, outputPath string
	haveDelimiter := false

	boolOf := func(v bool) *bool { return &v }

	// value consumers: flag name -> setter, shared by the "-d x" and
	// "--delimiter=x" forms.
	setValue := map[string]func(string){
		"-i": func(v string) { inputPath = v },
		"-o": func(v string) { outputPath = v },
		"-d": func(v string) { ins.Delimiter = v; haveDelimiter = true },
		"-j": func(v string) { ins.Join = &v },
		"-p": func(v string) { ins.Placeholder = &v },
	}
	longForm := map[string]string{
		"--input":       "-i",
		"--output":      "-o",
		"--delimiter":   "-d",
		"--join":        "-j",
		"--placeholder": "-p",
	}

	setAlign := func(mode string) {
		switch mode {
		case "left", "":
			ins.Align = true
		case "none":
			ins.Align = false
		default:
			errorExitf("invalid align mode: %s", mode)
		}
	}

	args := os.Args[1:]
	flagsFinished := false
	for i := 0; i < len(args); i++ {
		arg := args[i]

		// Negative selections ("-3", "-3--1,-2") also start with a
		// dash; classify them before flag parsing.
		if !flagsFinished && strings.HasPrefix(arg, "-") && arg != "-" && !selectionLike(arg) {
			if arg == "--" {
				flagsFinished = true
				continue
			}

			name, value, hasValue := strings.Cut(arg, "=")
			if short, ok := longForm[name]; ok {
				name = short
			}
			if set, ok := setValue[name]; ok {
				if !hasValue {
					if i+1 >= len(args) {
						// The placeholder value is optional; a bare
						// trailing flag means an empty placeholder.
						if name == "-p" {
							set("")
							continue
						}
						errorExitf("flag needs an argument: %s", arg)
					}
					i++
					value = args[i]
				}
				set(trimQuotes(value))
				continue
			}

			switch name {
			case "-h", "--help":
				fmt.Printf("splitby %s\n\n%s\n%s", version, shortUsage, longUsage)
				os.Exit(0)
			case "-v", "--version":
				fmt.Printf("splitby version %s\n", version)
				os.Exit(0)
			case "--per-line":
				ins.InputMode = splitby.PerLine
			case "-w", "--whole-string":
				ins.InputMode = splitby.WholeString
			case "-z", "--zero-terminated":
				ins.InputMode = splitby.ZeroTerminated
			case "-f", "--fields":
				ins.SelectionMode = splitby.Fields
			case "-b", "--bytes":
				ins.SelectionMode = splitby.Bytes
			case "-c", "--characters":
				ins.SelectionMode = splitby.Characters
			case "-a", "--align":
				switch {
				case hasValue:
					setAlign(trimQuotes(value))
				case i+1 < len(args) && isAlignMode(args[i+1]):
					i++
					setAlign(args[i])
				default:
					ins.Align = true
				}
			case "--count":
				ins.Count = true
			case "--invert":
				ins.Invert = true
			case "-e", "--skip-empty":
				ins.SkipEmpty = true
			case "-E", "--no-skip-empty":
				ins.SkipEmpty = false
			case "--trim-newline":
				ins.TrimNewline = true
			case "--strict":
				ins.StrictBounds = true
				ins.StrictReturn = true
				ins.StrictUTF8 = true
				ins.StrictRangeOrder = boolOf(true)
			case "--no-strict":
				ins.StrictBounds = false
				ins.StrictReturn = false
				ins.StrictUTF8 = false
				ins.StrictRangeOrder = boolOf(false)
			case "--strict-bounds":
				ins.StrictBounds = true
			case "--no-strict-bounds":
				ins.StrictBounds = false
			case "--strict-return":
				ins.StrictReturn = true
			case "--no-strict-return":
				ins.StrictReturn = false
			case "--strict-range-order":
				ins.StrictRangeOrder = boolOf(true)
			case "--no-strict-range-order":
				ins.StrictRangeOrder = boolOf(false)
			case "--strict-utf8":
				ins.StrictUTF8 = true
			case "--no-strict-utf8":
				ins.StrictUTF8 = false
			default:
				errorExitf("invalid flag: %s", arg)
			}
			continue
		}

		// Positionals: a selection token, a selection list, or (once)
		// an implicit delimiter.
		if splitby.IsSelectionToken(arg) {
			sels, err := splitby.ParseSelections(arg)
			if err != nil {
				errorExit(err)
			}
			ins.Selections = append(ins.Selections, sels...)
			continue
		}
		if strings.ContainsAny(arg, ", ") && selectionLike(arg) {
			sels, err := splitby.ParseSelections(arg)
			if err != nil {
				errorExit(err)
			}
			ins.Selections = append(ins.Selections, sels...)
			continue
		}
		if !haveDelimiter {
			ins.Delimiter = trimQuotes(arg)
			haveDelimiter = true
			continue
		}
		errorExitf("invalid argument: %s", arg)
	}

	applyEnvironment(ins)

	input := io.Reader(os.Stdin)
	if inputPath != "" {
		file, err := os.Open(inputPath)
		if err != nil {
			ioExit(&splitby.IOError{Op: "open", Path: inputPath, Err: err})
		}
		defer file.Close()
		input = file
	}

	output := io.Writer(os.Stdout)
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			ioExit(&splitby.IOError{Op: "create", Path: outputPath, Err: err})
		}
		defer file.Close()
		output = file
	}

	if err := splitby.Run(ins, input, output); err != nil {
		var ioErr *splitby.IOError
		if errors.As(err, &ioErr) {
			ioExit(ioErr)
		}
		errorExit(err)
	}
}

// isAlignMode reports whether s names an align mode, so "-a left" can
// consume its value while "-a , 1" leaves the delimiter alone.
func isAlignMode(s string) bool {
	switch s {
	case "left", "right", "squash", "none":
		return true
	}
	return false
}

// selectionLike reports whether arg is a selection token, or a comma-
// or space-separated list whose first non-empty token is one. A list
// whose first token is a selection commits the whole arg to being a
// selection list.
func selectionLike(arg string) bool {
	if splitby.IsSelectionToken(arg) {
		return true
	}
	for _, token := range strings.FieldsFunc(arg, func(r rune) bool {
		return r == ',' || r == ' '
	}) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		return splitby.IsSelectionToken(token)
	}
	return false
}

// trimQuotes strips one pair of matching surrounding quotes, so shell
// leftovers like '"," ' behave the same as a bare value.
func trimQuotes(value string) string {
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}

// applyEnvironment reads the tuning variables: SPLITBY_SINGLE_CORE
// forces one worker, SPLITBY_BATCH_QUOTA and SPLITBY_OUTPUT_FLUSH set
// the reader batch and writer flush sizes in bytes.
func applyEnvironment(ins *splitby.Instructions) {
	if _, ok := os.LookupEnv("SPLITBY_SINGLE_CORE"); ok {
		ins.Workers = 1
	}
	if v := os.Getenv("SPLITBY_BATCH_QUOTA"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ins.BatchQuota = n
		}
	}
	if v := os.Getenv("SPLITBY_OUTPUT_FLUSH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ins.FlushThreshold = n
		}
	}
}

// errorExitf prints a formatted error message and exits with code 1
func errorExitf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// errorExit prints the error and exits with code 1
func errorExit(err error) {
	fmt.Fprintf(os.Stderr, "%v\n", err)
	os.Exit(1)
}

// ioExit prints an I/O error and exits with code 2
func ioExit(err error) {
	fmt.Fprintf(os.Stderr, "%v\n", err)
	os.Exit(2)
}
