// Package jsonfix repairs hand-edited JSON index files: doubled commas,
// trailing commas and stray empty object pairs are removed before the
// document is validated and re-indented.
package jsonfix

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
)

// ErrUnrepairable is wrapped by every RepairError.
var ErrUnrepairable = errors.New("JSON could not be repaired")

// contextRadius is the number of bytes shown either side of a parse error.
const contextRadius = 50

var (
	trailingBracePattern   = regexp.MustCompile(`,\s*}`)
	trailingBracketPattern = regexp.MustCompile(`,\s*]`)
	emptyPairPattern       = regexp.MustCompile(`\{\s*\}\s*\{\s*\}`)
)

// RepairError reports where the cleaned document still fails to parse.
type RepairError struct {
	// Offset is the byte offset of the error in the cleaned document.
	Offset int64

	// Context is the cleaned text surrounding Offset.
	Context string

	Err error
}

func (e *RepairError) Error() string {
	return fmt.Sprintf("still invalid at offset %d: %v (context: %q)", e.Offset, e.Err, e.Context)
}

// Unwrap exposes both ErrUnrepairable and the underlying parse error.
func (e *RepairError) Unwrap() []error {
	return []error{ErrUnrepairable, e.Err}
}

// Fixes counts the edits applied by Repair.
type Fixes struct {
	DoubledCommas  int `json:"doubled_commas"`
	TrailingCommas int `json:"trailing_commas"`
	EmptyPairs     int `json:"empty_pairs"`
}

// Total returns the number of edits.
func (f Fixes) Total() int {
	return f.DoubledCommas + f.TrailingCommas + f.EmptyPairs
}

// Result is a repaired document.
type Result struct {
	Data  []byte
	Fixes Fixes
}

// Repair cleans data and returns it re-indented with two spaces. Object key
// order is preserved.
func Repair(data []byte) (*Result, error) {
	cleaned, fixes := clean(data)

	var out bytes.Buffer
	if err := json.Indent(&out, cleaned, "", "  "); err != nil {
		return nil, newRepairError(cleaned, err)
	}
	out.WriteByte('\n')

	return &Result{Data: out.Bytes(), Fixes: fixes}, nil
}

// RepairFile repairs the file at path and writes the result to outPath, or
// back to path when outPath is empty. Nothing is written on failure.
func RepairFile(path, outPath string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	result, err := Repair(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if outPath == "" {
		outPath = path
	}
	if err := os.WriteFile(outPath, result.Data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	return result, nil
}

func clean(data []byte) ([]byte, Fixes) {
	var fixes Fixes

	fixes.DoubledCommas = bytes.Count(data, []byte(",,"))
	data = bytes.ReplaceAll(data, []byte(",,"), []byte(","))

	data, fixes.TrailingCommas = replaceCounting(trailingBracePattern, data, "}")
	var n int
	data, n = replaceCounting(trailingBracketPattern, data, "]")
	fixes.TrailingCommas += n

	data, fixes.EmptyPairs = replaceCounting(emptyPairPattern, data, "")

	// removing an empty pair can expose a new trailing comma
	data, n = replaceCounting(trailingBracketPattern, data, "]")
	fixes.TrailingCommas += n

	return data, fixes
}

func replaceCounting(pattern *regexp.Regexp, data []byte, repl string) ([]byte, int) {
	count := len(pattern.FindAllIndex(data, -1))
	if count == 0 {
		return data, 0
	}
	return pattern.ReplaceAll(data, []byte(repl)), count
}

func newRepairError(cleaned []byte, err error) *RepairError {
	var offset int64
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		offset = syntaxErr.Offset
	} else {
		offset = int64(len(cleaned))
	}

	start := max(int64(0), offset-contextRadius)
	end := min(int64(len(cleaned)), offset+contextRadius)
	return &RepairError{
		Offset:  offset,
		Context: string(cleaned[start:end]),
		Err:     err,
	}
}
