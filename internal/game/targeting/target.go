// Package targeting declares target requirements and checks chosen targets
// against the projected state.
package targeting

import (
	"errors"
	"fmt"

	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

// Kind says what sort of thing a requirement targets.
type Kind string

const (
	KindPlayer    Kind = "PLAYER"
	KindPermanent Kind = "PERMANENT"
	// KindAny targets a player or a creature ("any target").
	KindAny   Kind = "ANY"
	KindSpell Kind = "SPELL"
	KindCard  Kind = "CARD"
)

var (
	ErrTooFewTargets   = errors.New("not enough targets")
	ErrTooManyTargets  = errors.New("too many targets")
	ErrDuplicateTarget = errors.New("duplicate target")
	ErrWrongKind       = errors.New("target is of the wrong kind")
	ErrNotFound        = errors.New("target no longer exists")
	ErrFilter          = errors.New("target does not match")
	ErrUntargetable    = errors.New("target cannot be targeted")
	ErrBadRequirement  = errors.New("invalid target requirement")
)

// Requirement declares the targets a spell or ability needs.
type Requirement struct {
	Description string
	Kind        Kind
	// Count is the greatest number of targets.
	Count int
	// MinCount is the least number of targets; nil means Count.
	MinCount *int
	// Optional allows choosing no targets at all.
	Optional bool
	// Filter restricts objects; Player restricts players relative to the chooser.
	Filter state.Filter
	Player state.Relation
	// Zone is where KindCard targets are; it defaults to graveyards.
	Zone state.Zone
}

// Single is a requirement for exactly one target.
func Single(kind Kind, description string, f state.Filter) Requirement {
	return Requirement{Description: description, Kind: kind, Count: 1, Filter: f}
}

// Min returns the declared minimum number of targets.
func (r Requirement) Min() int {
	if r.MinCount != nil {
		return *r.MinCount
	}
	return r.Count
}

// EffectiveMin is the number of targets that must be chosen: zero when optional.
func (r Requirement) EffectiveMin() int {
	if r.Optional {
		return 0
	}
	return r.Min()
}

// Check verifies 0 <= minCount <= count.
func (r Requirement) Check() error {
	if r.Count < 1 {
		return fmt.Errorf("%w: %q has count %d", ErrBadRequirement, r.Description, r.Count)
	}
	if m := r.Min(); m < 0 || m > r.Count {
		return fmt.Errorf("%w: %q has min %d outside [0, %d]", ErrBadRequirement, r.Description, m, r.Count)
	}
	return nil
}

func (r Requirement) cardZone() state.Zone {
	if r.Zone == 0 {
		return state.ZoneGraveyard
	}
	return r.Zone
}
