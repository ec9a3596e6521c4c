package card

import (
	"github.com/wingedsheep/argentum-engine/internal/game/condition"
	"github.com/wingedsheep/argentum-engine/internal/game/counters"
	"github.com/wingedsheep/argentum-engine/internal/game/mana"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

// Effect is one instruction of a script. The rules engine interprets every variant.
type Effect interface {
	isEffect()
}

// Subject names the players or objects an effect acts on.
type Subject interface {
	isSubject()
}

// Target is every still-legal target chosen for requirement Index.
type Target struct{ Index int }

// Self is the source of the ability, or the spell itself.
type Self struct{}

// You is the controller of the spell or ability.
type You struct{}

// EachOpponent is every opponent of the controller still in the game.
type EachOpponent struct{}

// EachPlayer is every player still in the game.
type EachPlayer struct{}

// AllMatching is every permanent matching the filter at resolution.
type AllMatching struct{ Filter state.Filter }

// Triggering is the object named by the event that triggered the ability.
type Triggering struct{}

// ControllerOf is the controller of the first target of requirement Index.
type ControllerOf struct{ Index int }

func (Target) isSubject()       {}
func (Self) isSubject()         {}
func (You) isSubject()          {}
func (EachOpponent) isSubject() {}
func (EachPlayer) isSubject()   {}
func (AllMatching) isSubject()  {}
func (Triggering) isSubject()   {}
func (ControllerOf) isSubject() {}

// Amount is a number computed at resolution: Fixed plus X (when set) plus a count.
type Amount struct {
	Fixed int
	X     bool
	Count *state.Count
	// EventAmount adds the amount of the triggering event, such as damage dealt.
	EventAmount bool
}

// N is a fixed amount.
func N(n int) Amount { return Amount{Fixed: n} }

// X is the value chosen for X.
func X() Amount { return Amount{X: true} }

// DealDamage deals damage from the source.
type DealDamage struct {
	To     Subject
	Amount Amount
}

// Destroy destroys permanents. Indestructible permanents survive.
type Destroy struct{ What Subject }

// Exile moves objects to exile.
type Exile struct{ What Subject }

// ReturnToHand moves objects to their owner's hand.
type ReturnToHand struct{ What Subject }

// ReturnToBattlefield moves cards from a graveyard onto the battlefield under the
// controller's control.
type ReturnToBattlefield struct{ What Subject }

// DrawCards makes players draw.
type DrawCards struct {
	Who    Subject
	Amount Amount
}

// Discard makes players discard cards of their choice.
type Discard struct {
	Who    Subject
	Amount Amount
}

type GainLife struct {
	Who    Subject
	Amount Amount
}

type LoseLife struct {
	Who    Subject
	Amount Amount
}

// AddCounters puts counters on permanents.
type AddCounters struct {
	What   Subject
	Type   counters.Type
	Amount Amount
}

type Tap struct{ What Subject }
type Untap struct{ What Subject }

// AddMana adds mana to the controller's pool.
type AddMana struct{ Mana mana.Pool }

// CreateToken puts tokens onto the battlefield under the controller's control.
type CreateToken struct {
	Token  state.CardRef
	Amount Amount
	Tapped bool
}

// Surveil looks at the top cards of the controller's library and puts any of
// them into the graveyard. Per rule 701.42.
type Surveil struct{ Amount Amount }

// Scry looks at the top cards and puts any of them on the bottom.
type Scry struct{ Amount Amount }

// Mill puts the top cards of libraries into graveyards.
type Mill struct {
	Who    Subject
	Amount Amount
}

// CounterSpell counters target spells or abilities.
type CounterSpell struct{ What Subject }

// ApplyContinuous creates a floating continuous effect. A filter subject is locked
// to the objects it matches at resolution. Per rule 611.2c. A SetController
// without a player gives control to the controller of the spell or ability.
type ApplyContinuous struct {
	What     Subject
	Mod      state.Modification
	Duration state.Duration
}

// PreventDamage prevents the next Amount damage to the subject this turn; zero
// prevents all of it.
type PreventDamage struct {
	To     Subject
	Amount int
}

// Sequence performs effects in order.
type Sequence struct{ Effects []Effect }

// Conditional performs Then when If holds and Else otherwise.
type Conditional struct {
	If   condition.Condition
	Then Effect
	Else Effect
}

// May asks the controller whether to perform Effect.
type May struct {
	Prompt string
	Effect Effect
}

// Shifted offsets the target indexes of Effect; used for modes.
type Shifted struct {
	Offset int
	Effect Effect
}

func (DealDamage) isEffect()          {}
func (Destroy) isEffect()             {}
func (Exile) isEffect()               {}
func (ReturnToHand) isEffect()        {}
func (ReturnToBattlefield) isEffect() {}
func (DrawCards) isEffect()           {}
func (Discard) isEffect()             {}
func (GainLife) isEffect()            {}
func (LoseLife) isEffect()            {}
func (AddCounters) isEffect()         {}
func (Tap) isEffect()                 {}
func (Untap) isEffect()               {}
func (AddMana) isEffect()             {}
func (CreateToken) isEffect()         {}
func (Surveil) isEffect()             {}
func (Scry) isEffect()                {}
func (Mill) isEffect()                {}
func (CounterSpell) isEffect()        {}
func (ApplyContinuous) isEffect()     {}
func (PreventDamage) isEffect()       {}
func (Sequence) isEffect()            {}
func (Conditional) isEffect()         {}
func (May) isEffect()                 {}
func (Shifted) isEffect()             {}

// Then builds a sequence.
func Then(effects ...Effect) Sequence { return Sequence{Effects: effects} }
