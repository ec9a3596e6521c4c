package watchers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

type catalog map[state.CardRef]state.Characteristics

func (c catalog) Characteristics(ref state.CardRef) (state.Characteristics, bool) {
	ch, ok := c[ref]
	return ch, ok
}

var cards = catalog{
	"bear":  {Name: "Bear", Types: []state.CardType{state.TypeCreature}},
	"relic": {Name: "Relic", Types: []state.CardType{state.TypeArtifact}},
}

func TestObserve(t *testing.T) {
	st := state.New("t", []state.PlayerID{"alice", "bob"}, 20, 7)
	grave := state.Owned(state.ZoneGraveyard, "alice")

	st = Observe(st, Default(), []state.Event{
		{Type: state.EventSpellCast, Controller: "alice"},
		{Type: state.EventSpellCast, Controller: "alice"},
		{Type: state.EventSpellCast, Controller: "bob"},
		{Type: state.EventZoneChange, Ref: "bear", From: state.Battlefield, To: grave},
		{Type: state.EventZoneChange, Ref: "relic", From: state.Battlefield, To: grave},
		{Type: state.EventZoneChange, Ref: "bear", From: state.Owned(state.ZoneHand, "alice"), To: grave},
		{Type: state.EventLifeGained, Player: "bob", Amount: 3},
		{Type: state.EventAttackerDeclared},
	}, cards)

	stats := st.Stats()
	assert.Equal(t, 2, stats.SpellsCast["alice"])
	assert.Equal(t, 1, stats.SpellsCast["bob"])
	assert.Equal(t, 1, stats.CreaturesDied, "only creatures going from the battlefield count")
	assert.Equal(t, 3, stats.LifeGained["bob"])
	assert.Equal(t, 1, stats.AttackersCount)
}

func TestObserve_NoEvents(t *testing.T) {
	st := state.New("t", []state.PlayerID{"alice"}, 20, 7)
	assert.Equal(t, st.Stats(), Observe(st, Default(), nil, cards).Stats())
}

func TestDefault_Keys(t *testing.T) {
	keys := map[string]bool{}
	for _, w := range Default() {
		keys[w.Key()] = true
	}
	assert.Len(t, keys, 4)
}
