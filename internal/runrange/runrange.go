// Package runrange parses and formats run-range correction keys.
//
// Ownership boundary:
// - correction key text format
// - inclusive run interval arithmetic
package runrange

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrMalformedKey = errors.New("runrange: malformed key")
	ErrInvalidRange = errors.New("runrange: start after end")
)

const (
	// Width is the zero-padded digit count of each side of a key.
	Width = 6
	// Wildcard marks an unbounded side of a key.
	Wildcard = "*"
	// OpenEnd is the end of a range that extends into the unbounded future.
	OpenEnd uint64 = math.MaxUint64

	separator = "-"
)

// RunRange is an inclusive interval of run identifiers.
type RunRange struct {
	Start uint64
	End   uint64
}

// Parse converts a key like "001110-004020" or "004000-*" into a RunRange.
func Parse(key string) (RunRange, error) {
	if strings.Count(key, separator) != 1 {
		return RunRange{}, fmt.Errorf("%w: %q needs exactly one %q", ErrMalformedKey, key, separator)
	}
	rawStart, rawEnd, _ := strings.Cut(key, separator)

	start, err := parseSide(rawStart, 0)
	if err != nil {
		return RunRange{}, fmt.Errorf("%w: %q start: %v", ErrMalformedKey, key, err)
	}
	end, err := parseSide(rawEnd, OpenEnd)
	if err != nil {
		return RunRange{}, fmt.Errorf("%w: %q end: %v", ErrMalformedKey, key, err)
	}
	if start > end {
		return RunRange{}, fmt.Errorf("%w: %q", ErrInvalidRange, key)
	}
	return RunRange{Start: start, End: end}, nil
}

func parseSide(raw string, wildcard uint64) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == Wildcard {
		return wildcard, nil
	}
	if raw == "" {
		return 0, errors.New("empty run number")
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-numeric run number %q", raw)
		}
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if v == OpenEnd {
		return 0, fmt.Errorf("run number %q collides with open-end sentinel", raw)
	}
	return v, nil
}

// Format renders r back into key form.
func Format(r RunRange) string {
	end := Wildcard
	if !r.Open() {
		end = pad(r.End)
	}
	return pad(r.Start) + separator + end
}

func pad(v uint64) string {
	return fmt.Sprintf("%0*d", Width, v)
}

// Open reports whether r extends into the unbounded future.
func (r RunRange) Open() bool {
	return r.End == OpenEnd
}

// Overlaps reports whether r and o share at least one run.
func (r RunRange) Overlaps(o RunRange) bool {
	return r.Start <= o.End && r.End >= o.Start
}

// Less orders ranges by start, then by end.
func (r RunRange) Less(o RunRange) bool {
	if r.Start != o.Start {
		return r.Start < o.Start
	}
	return r.End < o.End
}

func (r RunRange) String() string {
	return Format(r)
}
