package runrange

import (
	"errors"
	"testing"

	"github.com/danmuck/amfiles/internal/testutil/testlog"
)

func TestParseBoundedAndWildcardKeys(t *testing.T) {
	testlog.Start(t)

	cases := []struct {
		key  string
		want RunRange
	}{
		{key: "001110-004020", want: RunRange{Start: 1110, End: 4020}},
		{key: "000000-001000", want: RunRange{Start: 0, End: 1000}},
		{key: "004000-*", want: RunRange{Start: 4000, End: OpenEnd}},
		{key: "*-000500", want: RunRange{Start: 0, End: 500}},
		{key: "*-*", want: RunRange{Start: 0, End: OpenEnd}},
		{key: "12-12", want: RunRange{Start: 12, End: 12}},
	}
	for _, tc := range cases {
		got, err := Parse(tc.key)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.key, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: got %+v want %+v", tc.key, got, tc.want)
		}
	}
}

func TestParseRejectsMalformedKeys(t *testing.T) {
	testlog.Start(t)

	for _, key := range []string{"", "001000", "1-2-3", "abc-001000", "000100-x", "-000100", "000100-", "0x10-20"} {
		if _, err := Parse(key); !errors.Is(err, ErrMalformedKey) {
			t.Fatalf("parse %q: expected ErrMalformedKey, got %v", key, err)
		}
	}
}

func TestParseRejectsInvertedRange(t *testing.T) {
	testlog.Start(t)

	if _, err := Parse("002000-001000"); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestFormatPadsAndRendersWildcard(t *testing.T) {
	testlog.Start(t)

	if got := Format(RunRange{Start: 1110, End: 4020}); got != "001110-004020" {
		t.Fatalf("unexpected key: %q", got)
	}
	if got := Format(RunRange{Start: 4000, End: OpenEnd}); got != "004000-*" {
		t.Fatalf("unexpected open key: %q", got)
	}
	for _, key := range []string{"001110-004020", "004000-*", "000000-000000"} {
		r, err := Parse(key)
		if err != nil {
			t.Fatalf("parse %q: %v", key, err)
		}
		if Format(r) != key {
			t.Fatalf("format(parse(%q)) = %q", key, Format(r))
		}
	}
}

func TestOverlapsIncludesSharedBoundaries(t *testing.T) {
	testlog.Start(t)

	a := RunRange{Start: 0, End: 1000}
	if !a.Overlaps(RunRange{Start: 1000, End: 2000}) {
		t.Fatalf("expected shared boundary run to overlap")
	}
	if a.Overlaps(RunRange{Start: 1001, End: 2000}) {
		t.Fatalf("expected adjacent ranges not to overlap")
	}
	open := RunRange{Start: 4000, End: OpenEnd}
	if !open.Overlaps(RunRange{Start: 4500, End: 5000}) {
		t.Fatalf("expected open range to cover bounded range")
	}
	if !open.Overlaps(RunRange{Start: 9000, End: OpenEnd}) {
		t.Fatalf("expected two open ranges to overlap")
	}
}

func TestLessOrdersByStartThenEnd(t *testing.T) {
	testlog.Start(t)

	if !(RunRange{Start: 1, End: 9}).Less(RunRange{Start: 2, End: 3}) {
		t.Fatalf("expected start to dominate ordering")
	}
	if !(RunRange{Start: 1, End: 3}).Less(RunRange{Start: 1, End: OpenEnd}) {
		t.Fatalf("expected bounded end before open end")
	}
	if (RunRange{Start: 1, End: 3}).Less(RunRange{Start: 1, End: 3}) {
		t.Fatalf("expected equal ranges to be unordered")
	}
}
