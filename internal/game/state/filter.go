package state

import "github.com/wingedsheep/argentum-engine/internal/game/mana"

// Relation restricts a player relative to the player an ability belongs to.
type Relation uint8

const (
	AnyPlayer Relation = iota
	You
	Opponent
)

// Holds reports whether player stands in relation r to controller.
func (r Relation) Holds(player, controller PlayerID) bool {
	switch r {
	case You:
		return player == controller
	case Opponent:
		return player != controller
	}
	return true
}

// TapState restricts whether a permanent is tapped.
type TapState uint8

const (
	AnyTapState TapState = iota
	TappedOnly
	UntappedOnly
)

// Filter is a declarative predicate over objects. Empty fields match anything;
// list fields match when the object has any listed entry, except Keywords which
// must all be present.
type Filter struct {
	Types      []CardType
	NotTypes   []CardType
	Subtypes   []string
	Supertypes []Supertype
	Colors     mana.Colors
	NotColors  mana.Colors
	Keywords   []Keyword
	Controller Relation
	Tapped     TapState
	// Other excludes the object the ability belongs to.
	Other     bool
	Attacking bool
	// MaxPower, when positive, is the greatest power that matches.
	MaxPower int
	Token    bool
	Nontoken bool
}

// Creatures matches any creature.
func Creatures() Filter { return Filter{Types: []CardType{TypeCreature}} }

// CreaturesYouControl matches creatures controlled by the ability's controller.
func CreaturesYouControl() Filter {
	return Filter{Types: []CardType{TypeCreature}, Controller: You}
}
