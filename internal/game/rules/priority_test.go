package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/mana"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

func TestPassPriority(t *testing.T) {
	tb := newTable(t)

	tb.apply(alice, PassPriority{})
	assert.Equal(t, bob, tb.st.Turn().Priority)
	assert.Equal(t, state.StepMain1, tb.st.Turn().Step)

	tb.apply(bob, PassPriority{})
	assert.Equal(t, state.StepBeginCombat, tb.st.Turn().Step)
	assert.Equal(t, alice, tb.st.Turn().Priority, "the active player receives priority first")
}

func TestPassPriority_WithoutPriority(t *testing.T) {
	tb := newTable(t)
	before := tb.st

	err := tb.try(bob, PassPriority{})
	require.ErrorIs(t, err, ErrNoPriority)
	assert.True(t, IsIllegalAction(err))
	assert.Equal(t, before.Turn(), tb.st.Turn())
}

func TestCastSpell_PaysAutomatically(t *testing.T) {
	tb := newTable(t)
	forest := tb.lands(alice, "Forest", 1)[0]
	islands := tb.lands(alice, "Island", 2)
	bears := tb.hand(alice, "grizzly-bears")

	tb.apply(alice, CastSpell{Card: bears})
	assert.Equal(t, state.ZoneStack, tb.zone(bears))
	assert.Equal(t, alice, tb.st.Turn().Priority, "the caster keeps priority")
	assert.True(t, tb.tapped(forest))
	assert.NotEqual(t, tb.tapped(islands[0]), tb.tapped(islands[1]), "exactly one island pays the generic mana")
	pl, _ := tb.st.Player(alice)
	assert.True(t, pl.Pool.IsEmpty())

	tb.passRound()
	assert.Equal(t, state.ZoneBattlefield, tb.zone(bears))
	perm, _ := tb.st.Permanent(bears)
	assert.True(t, perm.SummoningSick)
	assert.Equal(t, alice, perm.Controller)
}

func TestCastSpell_Rejected(t *testing.T) {
	for _, tc := range []struct {
		name  string
		setup func(tb *table) CastSpell
		want  error
	}{
		{
			name: "cannot pay",
			setup: func(tb *table) CastSpell {
				tb.lands(alice, "Plains", 2)
				return CastSpell{Card: tb.hand(alice, "serra-angel")}
			},
			want: ErrCannotPay,
		},
		{
			name: "not in hand",
			setup: func(tb *table) CastSpell {
				tb.lands(alice, "Forest", 2)
				return CastSpell{Card: tb.hand(bob, "grizzly-bears")}
			},
			want: ErrNotInHand,
		},
		{
			name: "land",
			setup: func(tb *table) CastSpell {
				return CastSpell{Card: tb.hand(alice, "basic-Forest")}
			},
			want: ErrNotAllowed,
		},
		{
			name: "missing target",
			setup: func(tb *table) CastSpell {
				tb.lands(alice, "Mountain", 1)
				return CastSpell{Card: tb.hand(alice, "lightning-bolt")}
			},
			want: ErrBadTargets,
		},
		{
			name: "illegal target",
			setup: func(tb *table) CastSpell {
				tb.lands(alice, "Forest", 1)
				land := tb.permanent(bob, "basic-Plains")
				return CastSpell{Card: tb.hand(alice, "giant-growth"), Targets: one(tb.target(land))}
			},
			want: ErrBadTargets,
		},
		{
			name: "sorcery speed with a spell on the stack",
			setup: func(tb *table) CastSpell {
				tb.lands(alice, "Mountain", 1)
				tb.lands(alice, "Forest", 2)
				bolt := tb.hand(alice, "lightning-bolt")
				tb.apply(alice, CastSpell{Card: bolt, Targets: one(state.PlayerTarget{Player: bob})})
				return CastSpell{Card: tb.hand(alice, "grizzly-bears")}
			},
			want: ErrTiming,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tb := newTable(t)
			a := tc.setup(tb)
			before := tb.st

			err := tb.try(alice, a)
			require.ErrorIs(t, err, tc.want)
			assert.True(t, IsIllegalAction(err))
			assert.Equal(t, before.StackOrder(), tb.st.StackOrder())
			for _, id := range tb.st.Battlefield() {
				wasTapped, _ := before.Permanent(id)
				assert.Equal(t, wasTapped.Tapped, tb.tapped(id), "payment is rolled back")
			}
		})
	}
}

func TestCastSpell_LightningBolt(t *testing.T) {
	tb := newTable(t)
	tb.lands(alice, "Mountain", 1)
	bolt := tb.hand(alice, "lightning-bolt")

	tb.apply(alice, CastSpell{Card: bolt, Targets: one(state.PlayerTarget{Player: bob})})
	tb.passRound()
	assert.Equal(t, 17, tb.life(bob))
	assert.Equal(t, state.ZoneGraveyard, tb.zone(bolt))
	assert.True(t, tb.st.StackEmpty())
	assert.Equal(t, 1, tb.st.Stats().SpellsCast[alice])
}

func TestPlayLand(t *testing.T) {
	tb := newTable(t)
	first := tb.hand(alice, "basic-Forest")
	second := tb.hand(alice, "basic-Forest")

	tb.apply(alice, PlayLand{Card: first})
	assert.Equal(t, state.ZoneBattlefield, tb.zone(first))
	assert.Equal(t, alice, tb.st.Turn().Priority)
	pl, _ := tb.st.Player(alice)
	assert.Equal(t, 1, pl.LandsPlayed)

	err := tb.try(alice, PlayLand{Card: second})
	require.ErrorIs(t, err, ErrNotAllowed)
	assert.Equal(t, state.ZoneHand, tb.zone(second))
}

func TestPlayLand_OutsideMainPhase(t *testing.T) {
	tb := newTable(t)
	forest := tb.hand(alice, "basic-Forest")
	turn := tb.st.Turn()
	turn.Step = state.StepUpkeep
	tb.st = tb.st.WithTurn(turn)

	err := tb.try(alice, PlayLand{Card: forest})
	require.ErrorIs(t, err, ErrTiming)
}

func TestCastSpell_SorceryWaitsForEmptyStack(t *testing.T) {
	tb := newTable(t)
	tb.lands(alice, "Mountain", 1)
	tb.lands(alice, "Forest", 2)
	tb.apply(alice, CastSpell{Card: tb.hand(alice, "lightning-bolt"), Targets: one(state.PlayerTarget{Player: bob})})
	bears := tb.hand(alice, "grizzly-bears")

	before := tb.st
	err := tb.try(alice, CastSpell{Card: bears})
	require.ErrorIs(t, err, ErrTiming)
	assert.Equal(t, before.StackOrder(), tb.st.StackOrder())
	assert.Equal(t, before.Hand(alice), tb.st.Hand(alice))

	tb.passRound()
	require.True(t, tb.st.StackEmpty())
	require.Equal(t, state.StepMain1, tb.st.Turn().Step)
	require.Equal(t, alice, tb.st.Turn().Priority)

	tb.apply(alice, CastSpell{Card: bears})
	assert.Equal(t, []ecs.EntityID{bears}, tb.st.StackOrder())
}

func TestActivateAbility_ManaAbilityDoesNotUseTheStack(t *testing.T) {
	tb := newTable(t)
	elves := tb.permanent(alice, "llanowar-elves")

	tb.apply(alice, ActivateAbility{Source: elves})
	assert.True(t, tb.st.StackEmpty())
	assert.True(t, tb.tapped(elves))
	assert.Equal(t, alice, tb.st.Turn().Priority)
	pl, _ := tb.st.Player(alice)
	assert.Equal(t, 1, pl.Pool.Get(mana.Green))

	err := tb.try(alice, ActivateAbility{Source: elves})
	require.ErrorIs(t, err, ErrCannotPay)
}

func TestActivateAbility_SummoningSick(t *testing.T) {
	tb := newTable(t)
	elves := tb.permanent(alice, "llanowar-elves")
	tb.update(elves, func(p *state.PermanentComponent) { p.SummoningSick = true })

	err := tb.try(alice, ActivateAbility{Source: elves})
	require.Error(t, err)
	assert.True(t, IsIllegalAction(err))
	assert.False(t, tb.tapped(elves))
}

func TestConcede(t *testing.T) {
	tb := newTable(t)
	tb.apply(bob, Concede{})

	assert.True(t, tb.st.IsOver())
	assert.Equal(t, alice, tb.st.Winner())
	pl, _ := tb.st.Player(bob)
	assert.True(t, pl.Conceded)

	err := tb.try(alice, PassPriority{})
	require.ErrorIs(t, err, ErrGameOver)
	assert.Empty(t, tb.r.LegalActions(tb.st, alice))
}

func TestLegalActions(t *testing.T) {
	tb := newTable(t)
	tb.lands(alice, "Forest", 1)
	tb.lands(alice, "Mountain", 1)
	forest := tb.hand(alice, "basic-Forest")
	bears := tb.hand(alice, "grizzly-bears")
	angel := tb.hand(alice, "serra-angel")

	actions := tb.r.LegalActions(tb.st, alice)
	assert.Contains(t, actions, PassPriority{})
	assert.Contains(t, actions, PlayLand{Card: forest})
	assert.Equal(t, Concede{}, actions[len(actions)-1])

	var casts []CastSpell
	for _, a := range actions {
		if c, ok := a.(CastSpell); ok {
			casts = append(casts, c)
		}
	}
	require.Len(t, casts, 1)
	assert.Equal(t, bears, casts[0].Card)
	assert.NotEqual(t, angel, casts[0].Card)

	for _, a := range actions {
		_, err := tb.r.Apply(tb.st, alice, a)
		assert.NoError(t, err, "%s", a.Name())
	}

	assert.Equal(t, []Action{Concede{}}, tb.r.LegalActions(tb.st, bob), "bob has no priority")
}
