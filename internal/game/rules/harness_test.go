package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wingedsheep/argentum-engine/internal/game/card"
	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/mana"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
	"github.com/wingedsheep/argentum-engine/internal/game/targeting"
	"github.com/wingedsheep/argentum-engine/internal/registry"
)

const (
	alice state.PlayerID = "alice"
	bob   state.PlayerID = "bob"
)

// testCards are cards only the rules tests use.
func testCards() registry.Static {
	instant := func(ref, name, cost string, s card.Script) *card.Definition {
		c := mana.MustParseCost(cost)
		return &card.Definition{
			Ref: state.CardRef(ref),
			Characteristics: state.Characteristics{
				Name: name, ManaCost: c, Colors: c.Colors(), Types: []state.CardType{state.TypeInstant},
			},
			Spell: &s,
		}
	}
	landAura := &card.Definition{
		Ref: "fertile-ground",
		Characteristics: state.Characteristics{
			Name: "Fertile Ground", ManaCost: mana.MustParseCost("{1}{G}"), Colors: mana.ColorGreen,
			Types: []state.CardType{state.TypeEnchantment}, Subtypes: []string{"Aura"},
		},
		Spell: &card.Script{Targets: []targeting.Requirement{{
			Description: "target land", Kind: targeting.KindPermanent, Count: 1,
			Filter: state.Filter{Types: []state.CardType{state.TypeLand}},
		}}},
	}
	twoCreatures := targeting.Requirement{Description: "two target creatures", Kind: targeting.KindPermanent, Count: 2, Filter: state.Creatures()}
	return registry.Static{SetCode: "TST", Defs: []*card.Definition{
		landAura,
		instant("twin-bolt", "Twin Bolt", "{R}", card.Script{
			Targets: []targeting.Requirement{twoCreatures},
			Effect:  card.DealDamage{To: card.Target{Index: 0}, Amount: card.N(2)},
		}),
		instant("twin-bolt-strict", "Strict Twin Bolt", "{R}", card.Script{
			Targets: []targeting.Requirement{twoCreatures},
			Effect:  card.DealDamage{To: card.Target{Index: 0}, Amount: card.N(2)},
			Fizzle:  card.AllOrNothing,
		}),
		instant("peek", "Peek", "{U}", card.Script{Effect: card.Surveil{Amount: card.N(2)}}),
		instant("glimpse", "Glimpse", "{U}", card.Script{Effect: card.Scry{Amount: card.N(2)}}),
	}}
}

// table is a two player game in alice's first main phase with alice holding priority.
type table struct {
	t  *testing.T
	r  *Rules
	st state.GameState
}

func newTable(t *testing.T) *table {
	t.Helper()
	reg, err := registry.New(zaptest.NewLogger(t), registry.Starter(), testCards())
	require.NoError(t, err)
	st := state.New("rules-test", []state.PlayerID{alice, bob}, 20, 7)
	st = st.WithTurn(state.TurnPosition{Number: 2, Active: alice, Step: state.StepMain1, Priority: alice, Starting: alice})
	return &table{t: t, r: New(reg, zaptest.NewLogger(t), Options{}), st: st}
}

func (tb *table) create(key state.ZoneKey, pos state.Position, cs ...ecs.Component) ecs.EntityID {
	tb.t.Helper()
	id, st, err := tb.st.Create(key, pos, cs...)
	require.NoError(tb.t, err)
	tb.st = st
	return id
}

func (tb *table) hand(p state.PlayerID, ref state.CardRef) ecs.EntityID {
	return tb.create(state.Owned(state.ZoneHand, p), state.Top(), state.CardComponent{Ref: ref, Owner: p})
}

// library puts cards into p's library; the first one ends up on top.
func (tb *table) library(p state.PlayerID, refs ...state.CardRef) []ecs.EntityID {
	ids := make([]ecs.EntityID, len(refs))
	for i, ref := range refs {
		ids[i] = tb.create(state.Owned(state.ZoneLibrary, p), state.Bottom(), state.CardComponent{Ref: ref, Owner: p})
	}
	return ids
}

// permanent puts a permanent onto the battlefield under p, free of summoning sickness.
func (tb *table) permanent(p state.PlayerID, ref state.CardRef) ecs.EntityID {
	var ts state.Timestamp
	ts, tb.st = tb.st.NextTimestamp()
	return tb.create(state.Battlefield, state.Top(),
		state.CardComponent{Ref: ref, Owner: p},
		state.PermanentComponent{Controller: p, EnteredAt: ts, EnteredTurn: 1})
}

func (tb *table) lands(p state.PlayerID, name string, n int) []ecs.EntityID {
	ids := make([]ecs.EntityID, n)
	for i := range ids {
		ids[i] = tb.permanent(p, state.CardRef("basic-"+name))
	}
	return ids
}

func (tb *table) update(id ecs.EntityID, fn func(*state.PermanentComponent)) {
	tb.t.Helper()
	perm, ok := tb.st.Permanent(id)
	require.True(tb.t, ok)
	fn(&perm)
	st, err := tb.st.Set(id, perm)
	require.NoError(tb.t, err)
	tb.st = st
}

func (tb *table) apply(p state.PlayerID, a Action) {
	tb.t.Helper()
	st, err := tb.r.Apply(tb.st, p, a)
	require.NoError(tb.t, err, "%s by %s", a.Name(), p)
	tb.st = st
}

func (tb *table) try(p state.PlayerID, a Action) error {
	st, err := tb.r.Apply(tb.st, p, a)
	tb.st = st
	return err
}

// passRound passes priority until every player passed once in succession.
func (tb *table) passRound() {
	tb.t.Helper()
	for range len(inGame(tb.st)) {
		p := tb.st.Turn().Priority
		require.NotEmpty(tb.t, p, "nobody has priority")
		tb.apply(p, PassPriority{})
		if tb.st.Pending() != nil {
			return
		}
	}
}

func (tb *table) decide(p state.PlayerID, choices ...int) {
	tb.t.Helper()
	pending := tb.st.Pending()
	require.NotNil(tb.t, pending)
	tb.apply(p, MakeDecision{DecisionID: pending.Request.ID, Choices: choices})
}

func (tb *table) zone(id ecs.EntityID) state.Zone {
	loc, ok := tb.st.Locate(id)
	if !ok {
		return 0
	}
	return loc.Key.Zone
}

func (tb *table) life(p state.PlayerID) int {
	pl, _ := tb.st.Player(p)
	return pl.Life
}

func (tb *table) damage(id ecs.EntityID) int {
	perm, _ := tb.st.Permanent(id)
	return perm.Damage
}

func (tb *table) tapped(id ecs.EntityID) bool {
	perm, _ := tb.st.Permanent(id)
	return perm.Tapped
}

func (tb *table) target(id ecs.EntityID) state.ChosenTarget {
	return state.PermanentTarget{Ref: tb.st.Ref(id)}
}

func one(ts ...state.ChosenTarget) [][]state.ChosenTarget {
	return [][]state.ChosenTarget{ts}
}

func (tb *table) player(p state.PlayerID, fn func(*state.Player)) {
	tb.t.Helper()
	pl, ok := tb.st.Player(p)
	require.True(tb.t, ok)
	fn(&pl)
	tb.st = tb.st.WithPlayer(pl)
}
