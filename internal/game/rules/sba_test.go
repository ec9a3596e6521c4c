package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedsheep/argentum-engine/internal/game/counters"
	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

func TestCheckStateBasedActions_Players(t *testing.T) {
	for _, tc := range []struct {
		name string
		fn   func(*state.Player)
	}{
		{name: "zero life", fn: func(p *state.Player) { p.Life = 0 }},
		{name: "negative life", fn: func(p *state.Player) { p.Life = -3 }},
		{name: "drew from empty library", fn: func(p *state.Player) { p.DrewFromEmpty = true }},
		{name: "ten poison counters", fn: func(p *state.Player) { p.Poison = 10 }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tb := newTable(t)
			tb.player(alice, tc.fn)

			st, acted, err := tb.r.CheckStateBasedActions(tb.st)
			require.NoError(t, err)
			assert.True(t, acted)
			pl, _ := st.Player(alice)
			assert.True(t, pl.Lost)
			assert.True(t, st.IsOver())
			assert.Equal(t, bob, st.Winner())
		})
	}
}

func TestCheckStateBasedActions_Permanents(t *testing.T) {
	for _, tc := range []struct {
		name  string
		setup func(tb *table) ecs.EntityID
		want  state.Zone
	}{
		{
			name:  "zero toughness",
			setup: func(tb *table) ecs.EntityID { return tb.permanent(alice, "spike-feeder") },
			want:  state.ZoneGraveyard,
		},
		{
			name: "lethal damage",
			setup: func(tb *table) ecs.EntityID {
				id := tb.permanent(alice, "grizzly-bears")
				tb.update(id, func(p *state.PermanentComponent) { p.Damage = 2 })
				return id
			},
			want: state.ZoneGraveyard,
		},
		{
			name: "damage from deathtouch",
			setup: func(tb *table) ecs.EntityID {
				id := tb.permanent(alice, "serra-angel")
				tb.update(id, func(p *state.PermanentComponent) { p.Damage, p.DeathtouchDamage = 1, true })
				return id
			},
			want: state.ZoneGraveyard,
		},
		{
			name: "indestructible survives lethal damage",
			setup: func(tb *table) ecs.EntityID {
				id := tb.permanent(alice, "grizzly-bears")
				tb.update(id, func(p *state.PermanentComponent) { p.Damage = 5 })
				var ts state.Timestamp
				ts, tb.st = tb.st.NextTimestamp()
				tb.st = tb.st.AddFloating(state.ContinuousEffect{
					Controller: alice, Timestamp: ts, Duration: state.UntilEndOfTurn,
					Affected: state.AffectsOnly(tb.st.Ref(id)),
					Mod:      state.AddKeywords{Keywords: []state.Keyword{state.Indestructible}},
				})
				return id
			},
			want: state.ZoneBattlefield,
		},
		{
			name: "damage below toughness",
			setup: func(tb *table) ecs.EntityID {
				id := tb.permanent(alice, "serra-angel")
				tb.update(id, func(p *state.PermanentComponent) { p.Damage = 3 })
				return id
			},
			want: state.ZoneBattlefield,
		},
		{
			name:  "unattached aura",
			setup: func(tb *table) ecs.EntityID { return tb.permanent(alice, "holy-strength") },
			want:  state.ZoneGraveyard,
		},
		{
			name: "aura on a creature",
			setup: func(tb *table) ecs.EntityID {
				return tb.attach("holy-strength", tb.permanent(bob, "grizzly-bears"))
			},
			want: state.ZoneBattlefield,
		},
		{
			name: "land aura on a land",
			setup: func(tb *table) ecs.EntityID {
				return tb.attach("fertile-ground", tb.lands(alice, "Forest", 1)[0])
			},
			want: state.ZoneBattlefield,
		},
		{
			name: "creature aura on a land",
			setup: func(tb *table) ecs.EntityID {
				return tb.attach("holy-strength", tb.lands(alice, "Forest", 1)[0])
			},
			want: state.ZoneGraveyard,
		},
		{
			name: "land aura on a creature",
			setup: func(tb *table) ecs.EntityID {
				return tb.attach("fertile-ground", tb.permanent(alice, "grizzly-bears"))
			},
			want: state.ZoneGraveyard,
		},
		{
			name: "host left and returned",
			setup: func(tb *table) ecs.EntityID {
				bears := tb.permanent(alice, "grizzly-bears")
				aura := tb.attach("holy-strength", bears)
				var err error
				tb.st, err = tb.st.MoveEntity(bears, state.Battlefield, state.Owned(state.ZoneGraveyard, alice), state.Top())
				require.NoError(tb.t, err)
				tb.st, err = tb.st.MoveEntity(bears, state.Owned(state.ZoneGraveyard, alice), state.Battlefield, state.Top())
				require.NoError(tb.t, err)
				return aura
			},
			want: state.ZoneGraveyard,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tb := newTable(t)
			id := tc.setup(tb)
			st, _, err := tb.r.CheckStateBasedActions(tb.st)
			require.NoError(t, err)
			tb.st = st
			assert.Equal(t, tc.want, tb.zone(id))
		})
	}
}

func TestCheckStateBasedActions_SimultaneousDeaths(t *testing.T) {
	tb := newTable(t)
	bears := tb.permanent(alice, "grizzly-bears")
	angel := tb.permanent(bob, "serra-angel")
	tb.update(bears, func(p *state.PermanentComponent) { p.Damage = 2 })
	tb.update(angel, func(p *state.PermanentComponent) { p.Damage = 4 })

	st, acted, err := tb.r.CheckStateBasedActions(tb.st)
	require.NoError(t, err)
	assert.True(t, acted)
	tb.st = st
	assert.Equal(t, state.ZoneGraveyard, tb.zone(bears))
	assert.Equal(t, state.ZoneGraveyard, tb.zone(angel))
	assert.Equal(t, 2, tb.st.Stats().CreaturesDied)

	_, acted, err = tb.r.CheckStateBasedActions(tb.st)
	require.NoError(t, err)
	assert.False(t, acted, "a second check finds nothing to do")
}

func TestCheckStateBasedActions_CountersAnnihilate(t *testing.T) {
	tb := newTable(t)
	bears := tb.permanent(alice, "grizzly-bears")
	var err error
	tb.st, err = tb.st.Set(bears, state.CountersComponent{Counters: counters.New().Add(counters.P1P1, 2).Add(counters.M1M1, 1)})
	require.NoError(t, err)

	st, _, err := tb.r.CheckStateBasedActions(tb.st)
	require.NoError(t, err)
	ctrs := st.Counters(bears)
	assert.Equal(t, 1, ctrs.Count(counters.P1P1))
	assert.Zero(t, ctrs.Count(counters.M1M1))
}

func TestCheckStateBasedActions_TokenLeavesBattlefield(t *testing.T) {
	tb := newTable(t)
	token := tb.create(state.Owned(state.ZoneGraveyard, alice), state.Top(), state.CardComponent{Ref: "token-soldier", Owner: alice, Token: true})

	st, acted, err := tb.r.CheckStateBasedActions(tb.st)
	require.NoError(t, err)
	assert.True(t, acted)
	_, ok := st.Locate(token)
	assert.False(t, ok)
	assert.False(t, st.Store().Exists(token))
}

func TestCheckStateBasedActions_LegendRule(t *testing.T) {
	tb := newTable(t)
	first := tb.permanent(alice, "isamaru")
	second := tb.permanent(alice, "isamaru")
	tb.permanent(bob, "isamaru")

	st, acted, err := tb.r.CheckStateBasedActions(tb.st)
	require.NoError(t, err)
	assert.True(t, acted)
	tb.st = st
	pending := tb.st.Pending()
	require.NotNil(t, pending)
	assert.Equal(t, state.DecisionLegendRule, pending.Request.Kind)
	assert.Equal(t, alice, pending.Request.Player)
	require.Len(t, pending.Request.Options, 2, "bob's copy is not affected")

	tb.decide(alice, 1)
	assert.Equal(t, state.ZoneGraveyard, tb.zone(first))
	assert.Equal(t, state.ZoneBattlefield, tb.zone(second))
	assert.Nil(t, tb.st.Pending())
}

// attach puts an Aura onto the battlefield under alice, enchanting host.
func (tb *table) attach(aura state.CardRef, host ecs.EntityID) ecs.EntityID {
	id := tb.permanent(alice, aura)
	tb.update(id, func(p *state.PermanentComponent) { p.AttachedTo = tb.st.Ref(host) })
	return id
}
