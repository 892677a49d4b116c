// Package corrections validates proposed revisions of run-range correction
// tables against their committed baseline.
//
// Ownership boundary:
// - correction table and value shape
// - interval consistency checking
// - violation and verdict reporting
package corrections

import (
	"encoding/json"
	"math/big"
	"strconv"

	"github.com/google/go-cmp/cmp"
)

// Table maps correction keys to decoded JSON values. Numbers are held as
// json.Number so no precision is lost before comparison.
type Table map[string]any

var valueOptions = cmp.Options{
	cmp.Comparer(equalNumbers),
}

// EqualValues reports whether two decoded correction values are the same.
// Numbers compare by value, so 1 and 1.0 are equal.
func EqualValues(a, b any) bool {
	return cmp.Equal(normalize(a), normalize(b), valueOptions)
}

func equalNumbers(a, b json.Number) bool {
	if a == b {
		return true
	}
	x, okX := new(big.Rat).SetString(string(a))
	y, okY := new(big.Rat).SetString(string(b))
	if !okX || !okY {
		return false
	}
	return x.Cmp(y) == 0
}

// normalize maps the numeric types produced by non-json decoders onto
// json.Number so tables built in code compare the same as decoded ones.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = normalize(inner)
		}
		return out
	case Table:
		return normalize(map[string]any(t))
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = normalize(inner)
		}
		return out
	case float64:
		return json.Number(strconv.FormatFloat(t, 'g', -1, 64))
	case int:
		return json.Number(strconv.Itoa(t))
	case int64:
		return json.Number(strconv.FormatInt(t, 10))
	default:
		return v
	}
}
