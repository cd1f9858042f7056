package screening

import (
	"strings"

	stypes "github.com/turtacn/hivscreen/pkg/types/screening"
)

// ActivityClass is a raw screening outcome from the NCI AIDS antiviral screen.
type ActivityClass string

const (
	// ActivityInactive is a confirmed inactive compound.
	ActivityInactive ActivityClass = "CI"
	// ActivityModerate is a confirmed moderately active compound.
	ActivityModerate ActivityClass = "CM"
	// ActivityActive is a confirmed active compound.
	ActivityActive ActivityClass = "CA"
)

// DefaultActiveClasses are the outcomes that collapse to label 1.
var DefaultActiveClasses = []string{string(ActivityActive), string(ActivityModerate)}

// ActivitySet is the set of raw outcomes treated as active.
type ActivitySet map[ActivityClass]struct{}

// NewActivitySet builds an ActivitySet from outcome codes.  Codes are
// normalised to upper case; an empty input yields the default set.
func NewActivitySet(codes ...string) ActivitySet {
	if len(codes) == 0 {
		codes = DefaultActiveClasses
	}
	set := make(ActivitySet, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" {
			set[ActivityClass(c)] = struct{}{}
		}
	}
	return set
}

// Collapse maps a raw outcome to the binary label.  CI is always inactive;
// other codes are active when present in the set.  ok is false for an empty
// or unrecognised outcome.
func (s ActivitySet) Collapse(activity string) (label int, ok bool) {
	class := ActivityClass(strings.ToUpper(strings.TrimSpace(activity)))
	if class == "" {
		return 0, false
	}
	if _, active := s[class]; active {
		return stypes.LabelActive, true
	}
	if class == ActivityInactive {
		return stypes.LabelInactive, true
	}
	return 0, false
}
