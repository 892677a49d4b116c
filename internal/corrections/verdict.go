package corrections

import (
	"fmt"
	"strings"
)

// Kind names the rule a Violation breaks.
type Kind string

const (
	KindMalformedKey       Kind = "MalformedKey"
	KindInvalidRange       Kind = "InvalidRange"
	KindMalformedFile      Kind = "MalformedFile"
	KindOverlap            Kind = "OverlapViolation"
	KindPastModification   Kind = "PastModificationViolation"
	KindSelfConsistency    Kind = "SelfConsistencyViolation"
	KindNaming             Kind = "NamingViolation"
	KindDevMarker          Kind = "DevMarkerViolation"
	KindGlobalModification Kind = "GlobalModificationViolation"
	KindRemoval            Kind = "RemovalViolation"
)

// Violation is one failed check with the keys it concerns.
type Violation struct {
	Kind    Kind
	Keys    []string
	Message string
}

func (v Violation) String() string {
	if len(v.Keys) == 0 {
		return fmt.Sprintf("%s: %s", v.Kind, v.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", v.Kind, strings.Join(v.Keys, ", "), v.Message)
}

// Verdict collects every violation found for one table or file.
type Verdict struct {
	Violations []Violation
}

// Pass reports whether no violation was recorded.
func (v Verdict) Pass() bool {
	return len(v.Violations) == 0
}

// Add records a violation.
func (v *Verdict) Add(kind Kind, msg string, keys ...string) {
	v.Violations = append(v.Violations, Violation{Kind: kind, Keys: keys, Message: msg})
}

// Merge appends every violation of o.
func (v *Verdict) Merge(o Verdict) {
	v.Violations = append(v.Violations, o.Violations...)
}

// Names reports whether any violation names key.
func (v Verdict) Names(key string) bool {
	for _, violation := range v.Violations {
		for _, k := range violation.Keys {
			if k == key {
				return true
			}
		}
	}
	return false
}

// Has reports whether any violation is of kind.
func (v Verdict) Has(kind Kind) bool {
	for _, violation := range v.Violations {
		if violation.Kind == kind {
			return true
		}
	}
	return false
}
