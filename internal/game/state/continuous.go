package state

import "github.com/wingedsheep/argentum-engine/internal/game/mana"

// Layer is one of the seven layers continuous effects apply in. Per rule 613.
type Layer int

const (
	LayerCopy Layer = iota + 1
	LayerControl
	LayerText
	LayerType
	LayerColor
	LayerAbility
	LayerPowerToughness
)

// Sublayer orders power/toughness effects within layer 7.
type Sublayer int

const (
	SublayerNone Sublayer = iota
	SublayerCDA
	SublayerSet
	SublayerModify
	SublayerCounters
	SublayerSwitch
)

// Affected says which objects a continuous effect applies to.
type Affected interface{ isAffected() }

// AffectSelf applies to the effect's source.
type AffectSelf struct{}

// AffectEntities applies to a fixed set of objects, locked in when the effect began.
type AffectEntities struct {
	Refs []EntityRef
}

// AffectAttached applies to the permanent the source is attached to.
type AffectAttached struct{}

// AffectFilter applies to every battlefield permanent matching the filter,
// re-evaluated each time the state is projected.
type AffectFilter struct {
	Filter Filter
}

func (AffectSelf) isAffected()     {}
func (AffectEntities) isAffected() {}
func (AffectAttached) isAffected() {}
func (AffectFilter) isAffected()   {}

// Modification is what a continuous effect does to the objects it affects.
type Modification interface {
	Layer() Layer
	Sublayer() Sublayer
}

// CopyOf makes the object a copy of the printed values of another card.
type CopyOf struct{ Ref CardRef }

// SetController changes who controls the object.
type SetController struct{ Player PlayerID }

// ChangeText replaces one word (a color or subtype) with another in the object's text and subtypes.
type ChangeText struct{ From, To string }

// AddTypes adds card types and subtypes.
type AddTypes struct {
	Types    []CardType
	Subtypes []string
}

// SetTypes replaces card types and subtypes.
type SetTypes struct {
	Types    []CardType
	Subtypes []string
}

// RemoveTypes removes card types and subtypes.
type RemoveTypes struct {
	Types    []CardType
	Subtypes []string
}

// SetColors replaces the object's colors.
type SetColors struct{ Colors mana.Colors }

// AddColors adds to the object's colors.
type AddColors struct{ Colors mana.Colors }

// AddKeywords grants keyword abilities.
type AddKeywords struct{ Keywords []Keyword }

// RemoveKeywords removes keyword abilities.
type RemoveKeywords struct{ Keywords []Keyword }

// LoseAllAbilities removes every ability of the object.
type LoseAllAbilities struct{}

// CountPT is a characteristic-defining ability: power and toughness each equal
// the number of matching objects, plus fixed offsets.
type CountPT struct {
	Count     Count
	PowerPlus int
	ToughPlus int
}

// Count describes a number of objects to count.
type Count struct {
	// Zone is the zone to count in. Battlefield counts permanents matching Filter;
	// other zones count cards matching Filter owned by players matching Owner.
	Zone   Zone
	Filter Filter
	Owner  Relation
}

// SetPT sets base power and toughness.
type SetPT struct{ Power, Toughness int }

// ModifyPT adds to power and toughness.
type ModifyPT struct{ Power, Toughness int }

// SwitchPT exchanges power and toughness.
type SwitchPT struct{}

func (CopyOf) Layer() Layer           { return LayerCopy }
func (SetController) Layer() Layer    { return LayerControl }
func (ChangeText) Layer() Layer       { return LayerText }
func (AddTypes) Layer() Layer         { return LayerType }
func (SetTypes) Layer() Layer         { return LayerType }
func (RemoveTypes) Layer() Layer      { return LayerType }
func (SetColors) Layer() Layer        { return LayerColor }
func (AddColors) Layer() Layer        { return LayerColor }
func (AddKeywords) Layer() Layer      { return LayerAbility }
func (RemoveKeywords) Layer() Layer   { return LayerAbility }
func (LoseAllAbilities) Layer() Layer { return LayerAbility }
func (CountPT) Layer() Layer          { return LayerPowerToughness }
func (SetPT) Layer() Layer            { return LayerPowerToughness }
func (ModifyPT) Layer() Layer         { return LayerPowerToughness }
func (SwitchPT) Layer() Layer         { return LayerPowerToughness }

func (CopyOf) Sublayer() Sublayer           { return SublayerNone }
func (SetController) Sublayer() Sublayer    { return SublayerNone }
func (ChangeText) Sublayer() Sublayer       { return SublayerNone }
func (AddTypes) Sublayer() Sublayer         { return SublayerNone }
func (SetTypes) Sublayer() Sublayer         { return SublayerNone }
func (RemoveTypes) Sublayer() Sublayer      { return SublayerNone }
func (SetColors) Sublayer() Sublayer        { return SublayerNone }
func (AddColors) Sublayer() Sublayer        { return SublayerNone }
func (AddKeywords) Sublayer() Sublayer      { return SublayerNone }
func (RemoveKeywords) Sublayer() Sublayer   { return SublayerNone }
func (LoseAllAbilities) Sublayer() Sublayer { return SublayerNone }
func (CountPT) Sublayer() Sublayer          { return SublayerCDA }
func (SetPT) Sublayer() Sublayer            { return SublayerSet }
func (ModifyPT) Sublayer() Sublayer         { return SublayerModify }
func (SwitchPT) Sublayer() Sublayer         { return SublayerSwitch }

// Duration says how long a floating continuous effect lasts.
type Duration uint8

const (
	// UntilEndOfTurn effects end during the cleanup step.
	UntilEndOfTurn Duration = iota + 1
	// UntilEndOfCombat effects end in the end of combat step.
	UntilEndOfCombat
	// UntilYourNextTurn effects end when their controller's next turn begins.
	UntilYourNextTurn
	// WhileSourceOnBattlefield effects end as soon as the source leaves the battlefield.
	WhileSourceOnBattlefield
	// Indefinitely effects never end on their own.
	Indefinitely
)

// StaticAbility is a continuous effect printed on a permanent. It applies while the
// permanent is on the battlefield, with the permanent's timestamp.
type StaticAbility struct {
	Affected Affected
	Mod      Modification
}

// ContinuousEffect is an effect that modifies characteristics. Static abilities
// produce them on every projection; spells and abilities create floating ones that
// are stored in the game state until their duration ends.
type ContinuousEffect struct {
	Source     EntityRef
	Controller PlayerID
	Timestamp  Timestamp
	Affected   Affected
	Mod        Modification
	Duration   Duration
	// Turn is the turn number the effect began in.
	Turn int
}

// AffectsOnly returns an AffectEntities for the given objects.
func AffectsOnly(refs ...EntityRef) AffectEntities {
	return AffectEntities{Refs: refs}
}
