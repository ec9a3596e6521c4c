package state

import (
	"fmt"

	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
)

// ChosenTarget is a target chosen for a spell or ability.
type ChosenTarget interface {
	isChosenTarget()
	String() string
}

// PlayerTarget targets a player.
type PlayerTarget struct{ Player PlayerID }

// PermanentTarget targets a permanent on the battlefield.
type PermanentTarget struct{ Ref EntityRef }

// CardTarget targets a card in a zone other than the battlefield or stack.
type CardTarget struct {
	Ref  EntityRef
	Zone ZoneKey
}

// SpellTarget targets a spell or ability on the stack.
type SpellTarget struct{ Ref EntityRef }

func (PlayerTarget) isChosenTarget()    {}
func (PermanentTarget) isChosenTarget() {}
func (CardTarget) isChosenTarget()      {}
func (SpellTarget) isChosenTarget()     {}

func (t PlayerTarget) String() string    { return "player " + string(t.Player) }
func (t PermanentTarget) String() string { return "permanent " + t.Ref.String() }
func (t CardTarget) String() string      { return fmt.Sprintf("card %s in %s", t.Ref, t.Zone) }
func (t SpellTarget) String() string     { return "spell " + t.Ref.String() }

// TargetEntity returns the object a target names, if it names one.
func TargetEntity(t ChosenTarget) (EntityRef, bool) {
	switch t := t.(type) {
	case PermanentTarget:
		return t.Ref, true
	case CardTarget:
		return t.Ref, true
	case SpellTarget:
		return t.Ref, true
	}
	return EntityRef{}, false
}

// SameTarget reports whether two targets name the same player or object.
func SameTarget(a, b ChosenTarget) bool {
	if pa, ok := a.(PlayerTarget); ok {
		pb, ok := b.(PlayerTarget)
		return ok && pa.Player == pb.Player
	}
	ea, okA := TargetEntity(a)
	eb, okB := TargetEntity(b)
	return okA && okB && ea.ID == eb.ID
}

// TargetOn is a shorthand for a permanent target at its current incarnation.
func (s GameState) TargetOn(id ecs.EntityID) PermanentTarget {
	return PermanentTarget{Ref: s.Ref(id)}
}
