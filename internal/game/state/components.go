package state

import (
	"github.com/wingedsheep/argentum-engine/internal/game/counters"
	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
)

const (
	KindCard      ecs.ComponentKind = "card"
	KindPermanent ecs.ComponentKind = "permanent"
	KindCounters  ecs.ComponentKind = "counters"
	KindStack     ecs.ComponentKind = "stack"
	KindCombat    ecs.ComponentKind = "combat"
)

// CardComponent identifies the card an object is.
type CardComponent struct {
	Ref   CardRef
	Owner PlayerID
	Token bool
	// Copy marks a copy of a spell, which ceases to exist instead of changing zones.
	Copy bool
}

// PermanentComponent is battlefield status. It is dropped when the object leaves.
type PermanentComponent struct {
	// Controller is who put the permanent onto the battlefield; layer 2 effects may override it.
	Controller    PlayerID
	Tapped        bool
	SummoningSick bool
	Damage        int
	// DeathtouchDamage is set when any damage this turn came from a source with deathtouch.
	DeathtouchDamage bool
	// AttachedTo is the permanent an Aura enchants, at the incarnation it had
	// when the Aura became attached.
	AttachedTo  EntityRef
	EnteredAt   Timestamp
	EnteredTurn int
}

// CountersComponent holds the counters on a permanent.
type CountersComponent struct {
	Counters counters.Counters
}

// StackItemKind distinguishes what a stack object is.
type StackItemKind uint8

const (
	StackSpell StackItemKind = iota + 1
	StackActivated
	StackTriggered
)

func (k StackItemKind) String() string {
	switch k {
	case StackSpell:
		return "spell"
	case StackActivated:
		return "activated"
	case StackTriggered:
		return "triggered"
	}
	return "unknown"
}

// StackComponent is stack status: everything chosen when the object was put on the stack.
type StackComponent struct {
	ItemKind   StackItemKind
	Controller PlayerID
	// Source is the permanent or card an ability came from. Zero for spells.
	Source EntityRef
	// Ref is the card whose ability or spell text resolves.
	Ref          CardRef
	AbilityIndex int
	// Targets holds the chosen targets per target requirement, in requirement order.
	Targets [][]ChosenTarget
	Modes   []int
	X       int
	Trigger *Event
	PutAt   Timestamp
}

// CombatComponent is combat status of an attacking or blocking creature.
type CombatComponent struct {
	Attacking bool
	Defender  PlayerID
	Blocked   bool
	// Blockers are the creatures blocking this attacker in damage assignment order.
	Blockers []ecs.EntityID
	// Blocking is the attacker this creature blocks.
	Blocking ecs.EntityID
	// DealtFirstStrike is set after the creature dealt first strike combat damage.
	DealtFirstStrike bool
}

func (CardComponent) Kind() ecs.ComponentKind      { return KindCard }
func (PermanentComponent) Kind() ecs.ComponentKind { return KindPermanent }
func (CountersComponent) Kind() ecs.ComponentKind  { return KindCounters }
func (StackComponent) Kind() ecs.ComponentKind     { return KindStack }
func (CombatComponent) Kind() ecs.ComponentKind    { return KindCombat }
