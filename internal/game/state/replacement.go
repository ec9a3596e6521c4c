package state

import "github.com/wingedsheep/argentum-engine/internal/game/counters"

// ReplacementRule is what a replacement effect does to the event it watches for.
// Per rule 614.
type ReplacementRule interface{ isReplacementRule() }

// PreventDamage prevents damage dealt to the affected object or player.
// Amount zero prevents all of it; otherwise the effect is a shield that is used up.
type PreventDamage struct{ Amount int }

// ExileInsteadOfGraveyard sends an object that would go to a graveyard into exile.
type ExileInsteadOfGraveyard struct{}

// EntersTapped makes a permanent enter the battlefield tapped.
type EntersTapped struct{}

// EntersWithCounters makes a permanent enter with counters on it.
type EntersWithCounters struct {
	Type  counters.Type
	Count int
}

func (PreventDamage) isReplacementRule()           {}
func (ExileInsteadOfGraveyard) isReplacementRule() {}
func (EntersTapped) isReplacementRule()            {}
func (EntersWithCounters) isReplacementRule()      {}

// ReplacementAbility is a replacement effect printed on a card. AffectSelf
// abilities also apply to the card as it enters the battlefield.
type ReplacementAbility struct {
	Affected Affected
	Rule     ReplacementRule
}

// ReplacementEffect is a floating replacement effect created by a spell or ability.
type ReplacementEffect struct {
	Source     EntityRef
	Controller PlayerID
	Timestamp  Timestamp
	// Affected selects objects; Player selects a player instead when set.
	Affected Affected
	Player   PlayerID
	Rule     ReplacementRule
	Duration Duration
	// Remaining is what is left of a damage prevention shield.
	Remaining int
	Turn      int
}
