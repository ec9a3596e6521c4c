package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedsheep/argentum-engine/internal/game/state"
	"github.com/wingedsheep/argentum-engine/internal/game/targeting"
)

func charm() *Definition {
	return &Definition{
		Ref:             "charm",
		Characteristics: state.Characteristics{Name: "Charm", Types: []state.CardType{state.TypeInstant}},
		Spell: &Script{
			ModeCount: 1,
			Modes: []Mode{
				{Description: "gain 3 life", Effect: GainLife{Who: You{}, Amount: N(3)}},
				{
					Description: "2 damage to target creature",
					Targets:     []targeting.Requirement{targeting.Single(targeting.KindPermanent, "target creature", state.Creatures())},
					Effect:      DealDamage{To: Target{Index: 0}, Amount: N(2)},
				},
			},
		},
	}
}

func TestDefinition_Validate(t *testing.T) {
	assert.NoError(t, charm().Validate())

	d := charm()
	d.Spell = nil
	assert.ErrorIs(t, d.Validate(), ErrInvalidDefinition)

	d = charm()
	d.Spell.Modes[1].Targets[0].Count = 0
	assert.ErrorIs(t, d.Validate(), ErrInvalidDefinition)

	d = charm()
	d.Triggered = []TriggeredAbility{{Description: "broken"}}
	assert.ErrorIs(t, d.Validate(), ErrInvalidDefinition)

	assert.ErrorIs(t, (&Definition{Ref: "x"}).Validate(), ErrInvalidDefinition)
}

func TestScript_Modes(t *testing.T) {
	s := charm().Spell
	require.True(t, s.Modal())

	assert.Empty(t, s.Requirements([]int{0}))
	assert.Len(t, s.Requirements([]int{1}), 1)

	body, ok := s.Body([]int{1}).(Sequence)
	require.True(t, ok)
	require.Len(t, body.Effects, 1)
	assert.Equal(t, Shifted{Offset: 0, Effect: DealDamage{To: Target{Index: 0}, Amount: N(2)}}, body.Effects[0])

	assert.NoError(t, s.CheckModes([]int{0}))
	assert.Error(t, s.CheckModes(nil))
	assert.Error(t, s.CheckModes([]int{2}))
	assert.Error(t, s.CheckModes([]int{0, 1}))
}

func TestScript_NonModal(t *testing.T) {
	s := Script{Effect: DrawCards{Who: You{}, Amount: N(1)}}
	assert.Equal(t, s.Effect, s.Body(nil))
	assert.NoError(t, s.CheckModes(nil))
	assert.Error(t, s.CheckModes([]int{0}))
}

func TestParseTriggerEvent(t *testing.T) {
	e, ok := ParseTriggerEvent("dies")
	require.True(t, ok)
	assert.Equal(t, OnDies, e)
	assert.Equal(t, "dies", e.String())
	_, ok = ParseTriggerEvent("explodes")
	assert.False(t, ok)
}
