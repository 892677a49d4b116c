package corrections

import (
	"errors"
	"fmt"
	"sort"

	"github.com/danmuck/amfiles/internal/runrange"
	"github.com/rs/zerolog/log"
)

type entry struct {
	key   string
	rng   runrange.RunRange
	value any
}

// Check validates proposed against the committed baseline.
//
// Keys of both tables must parse, the proposed table must not assign different
// values to overlapping ranges, every committed range a proposed range
// touches must keep its value, and ranges that add new coverage must start
// after the latest committed run consumed so far.
func Check(baseline, proposed Table) Verdict {
	var v Verdict
	base := parseBaseline(baseline, &v)
	prop := parseProposed(proposed, &v)

	checkSelfConsistency(prop, &v)
	if len(base) > 0 {
		reconcile(base, prop, &v)
	}
	return v
}

func parseBaseline(t Table, v *Verdict) []entry {
	return parseTable(t, "committed", v)
}

func parseProposed(t Table, v *Verdict) []entry {
	return parseTable(t, "proposed", v)
}

// parseTable records every key that fails to parse as a violation tagged
// with origin and leaves it out of the returned entries.
func parseTable(t Table, origin string, v *Verdict) []entry {
	out := make([]entry, 0, len(t))
	for _, key := range sortedKeys(t) {
		rng, err := runrange.Parse(key)
		if err != nil {
			kind := KindMalformedKey
			if errors.Is(err, runrange.ErrInvalidRange) {
				kind = KindInvalidRange
			}
			log.Debug().Str("key", key).Str("table", origin).Err(err).Msg("corrections: unparseable key")
			v.Add(kind, fmt.Sprintf("%s table: %v", origin, err), key)
			continue
		}
		out = append(out, entry{key: key, rng: rng, value: t[key]})
	}
	sortEntries(out)
	return out
}

func sortEntries(entries []entry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.rng != b.rng {
			return a.rng.Less(b.rng)
		}
		return a.key < b.key
	})
}

func sortedKeys(t Table) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// checkSelfConsistency sweeps the sorted proposed entries keeping the set of
// earlier ranges that still reach the current start.
func checkSelfConsistency(prop []entry, v *Verdict) {
	active := make([]entry, 0, 4)
	for _, p := range prop {
		kept := active[:0]
		for _, a := range active {
			if a.rng.End >= p.rng.Start {
				kept = append(kept, a)
			}
		}
		active = kept

		for _, a := range active {
			if EqualValues(a.value, p.value) {
				continue
			}
			v.Add(KindSelfConsistency,
				fmt.Sprintf("proposed table is not self-consistent: %s=%v overlaps %s=%v", a.key, a.value, p.key, p.value),
				a.key, p.key)
		}
		active = append(active, p)
	}
}

// reconcile sweeps proposed entries against the sorted baseline. The cursor
// only moves past committed ranges that end before the current proposed
// start, so a committed range split across several proposed ranges is
// compared against each of them. The high-water mark is the committed range
// with the greatest end consumed so far, passed or reconciled.
func reconcile(base, prop []entry, v *Verdict) {
	var highWater *entry
	consume := func(b *entry) {
		if highWater == nil || b.rng.End > highWater.rng.End {
			highWater = b
		}
	}

	cursor := 0
	for _, p := range prop {
		for cursor < len(base) && base[cursor].rng.End < p.rng.Start {
			consume(&base[cursor])
			cursor++
		}

		touched := false
		for i := cursor; i < len(base) && base[i].rng.Start <= p.rng.End; i++ {
			b := &base[i]
			if !b.rng.Overlaps(p.rng) {
				continue
			}
			touched = true
			consume(b)
			if EqualValues(b.value, p.value) {
				continue
			}
			v.Add(KindPastModification,
				fmt.Sprintf("proposed range %s modifies existing committed range %s from %v to %v", p.key, b.key, b.value, p.value),
				p.key, b.key)
		}

		// Ranges that reconcile against nothing add new coverage and must not
		// reach back behind history already consumed.
		if !touched && highWater != nil && p.rng.Start <= highWater.rng.End {
			v.Add(KindOverlap,
				fmt.Sprintf("proposed range %s starts before the end of committed range %s", p.key, highWater.key),
				p.key, highWater.key)
		}
	}
}
