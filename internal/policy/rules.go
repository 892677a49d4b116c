// Package policy decides which rule set applies to a correction file and
// aggregates verdicts over a batch of changed files.
//
// Ownership boundary:
// - file classification (ordinary vs global)
// - global-file rules and directory naming rules
// - batch evaluation and reporting
package policy

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/danmuck/amfiles/internal/corrections"
)

const (
	DefaultGlobalMarker = "_global"
	DefaultOnlineTag    = "ONLINE"
	DefaultDevMarker    = "_dev"
)

// Class selects the rule set for a correction file.
type Class string

const (
	ClassOrdinary Class = "ordinary"
	ClassGlobal   Class = "global"
)

// Rules holds the filename and value markers the policy keys on.
type Rules struct {
	GlobalMarker string
	OnlineTag    string
	DevMarker    string
}

func DefaultRules() Rules {
	return Rules{
		GlobalMarker: DefaultGlobalMarker,
		OnlineTag:    DefaultOnlineTag,
		DevMarker:    DefaultDevMarker,
	}
}

func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if strings.TrimSpace(r.GlobalMarker) != "" {
		d.GlobalMarker = r.GlobalMarker
	}
	if strings.TrimSpace(r.OnlineTag) != "" {
		d.OnlineTag = r.OnlineTag
	}
	if strings.TrimSpace(r.DevMarker) != "" {
		d.DevMarker = r.DevMarker
	}
	return d
}

// Classify picks the rule set from the file name.
func (r Rules) Classify(path string) Class {
	r = r.withDefaults()
	if strings.Contains(filepath.Base(path), r.GlobalMarker) {
		return ClassGlobal
	}
	return ClassOrdinary
}

// Online reports whether path carries the always-mutable tag.
func (r Rules) Online(path string) bool {
	return strings.Contains(path, r.withDefaults().OnlineTag)
}

// Dev reports whether path names a development variant.
func (r Rules) Dev(path string) bool {
	return strings.Contains(path, r.withDefaults().DevMarker)
}

// Evaluate validates proposed against baseline with the rule set of class.
func (r Rules) Evaluate(class Class, path string, baseline, proposed corrections.Table) corrections.Verdict {
	if class == ClassGlobal {
		return r.evaluateGlobal(path, baseline, proposed)
	}
	return corrections.Check(baseline, proposed)
}

// Global files are flat snapshots: keys are labels rather than run ranges,
// so committed keys are compared exactly instead of by overlap.
func (r Rules) evaluateGlobal(path string, baseline, proposed corrections.Table) corrections.Verdict {
	r = r.withDefaults()
	var v corrections.Verdict
	if r.Online(path) {
		return v
	}

	keys := make([]string, 0, len(proposed))
	for k := range proposed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if containsMarker(proposed[key], r.DevMarker) {
			v.Add(corrections.KindDevMarker,
				fmt.Sprintf("global correction %s has a %q value outside an %s file", path, r.DevMarker, r.OnlineTag),
				key)
		}
	}

	if r.Dev(path) {
		return v
	}
	for _, key := range keys {
		committed, ok := baseline[key]
		if !ok || corrections.EqualValues(committed, proposed[key]) {
			continue
		}
		v.Add(corrections.KindGlobalModification,
			fmt.Sprintf("global correction %s changes committed %s from %v to %v", path, key, committed, proposed[key]),
			key)
	}
	return v
}

func containsMarker(value any, marker string) bool {
	switch t := value.(type) {
	case string:
		return strings.Contains(t, marker)
	case map[string]any:
		for _, inner := range t {
			if containsMarker(inner, marker) {
				return true
			}
		}
	case []any:
		for _, inner := range t {
			if containsMarker(inner, marker) {
				return true
			}
		}
	}
	return false
}

// Evaluate applies the default rules.
func Evaluate(class Class, path string, baseline, proposed corrections.Table) corrections.Verdict {
	return DefaultRules().Evaluate(class, path, baseline, proposed)
}

// Classify applies the default rules.
func Classify(path string) Class {
	return DefaultRules().Classify(path)
}
