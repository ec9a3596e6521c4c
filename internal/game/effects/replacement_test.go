package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wingedsheep/argentum-engine/internal/game/counters"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

func TestPreventDamage_ShieldIsUsedUp(t *testing.T) {
	bear, s := addPermanent(t, newState(), "Bear", "alice")
	ts, s := s.NextTimestamp()
	s = s.AddReplacement(state.ReplacementEffect{
		Source: s.Ref(bear), Timestamp: ts, Affected: state.AffectsOnly(s.Ref(bear)),
		Rule: state.PreventDamage{Amount: 3}, Remaining: 3, Duration: state.UntilEndOfTurn,
	})

	left, s := Project(s, testCatalog).PreventDamage(s, Recipient{Entity: bear}, 2)
	assert.Equal(t, 0, left)
	assert.Len(t, s.Replacements(), 1)
	assert.Equal(t, 1, s.Replacements()[0].Remaining)

	left, s = Project(s, testCatalog).PreventDamage(s, Recipient{Entity: bear}, 4)
	assert.Equal(t, 3, left)
	assert.Empty(t, s.Replacements())
}

func TestPreventDamage_Player(t *testing.T) {
	s := newState()
	ts, s := s.NextTimestamp()
	s = s.AddReplacement(state.ReplacementEffect{
		Timestamp: ts, Player: "bob", Rule: state.PreventDamage{}, Duration: state.UntilEndOfTurn,
	})
	p := Project(s, testCatalog)

	left, _ := p.PreventDamage(s, Recipient{Player: "bob"}, 5)
	assert.Equal(t, 0, left)
	left, _ = p.PreventDamage(s, Recipient{Player: "alice"}, 5)
	assert.Equal(t, 5, left)
}

func TestDestination_ExileInsteadOfGraveyard(t *testing.T) {
	bear, s := addPermanent(t, newState(), "Bear", "alice")
	grave := state.Owned(state.ZoneGraveyard, "alice")
	assert.Equal(t, grave, Project(s, testCatalog).Destination(bear, grave))

	rest, s := addPermanent(t, s, "Rest", "bob")
	p := Project(s, testCatalog)
	assert.Equal(t, state.Exile, p.Destination(bear, grave))
	assert.Equal(t, state.Owned(state.ZoneGraveyard, "bob"), p.Destination(rest, state.Owned(state.ZoneGraveyard, "bob")))
	assert.Equal(t, state.Owned(state.ZoneHand, "alice"), p.Destination(bear, state.Owned(state.ZoneHand, "alice")))
}

func TestEntryModifiers(t *testing.T) {
	s := newState()
	id, s, err := s.Create(state.Owned(state.ZoneHand, "alice"), state.Top(), state.CardComponent{Ref: "Warden", Owner: "alice"})
	assert.NoError(t, err)

	tapped, ctrs := Project(s, testCatalog).EntryModifiers(id, "alice")
	assert.True(t, tapped)
	assert.Equal(t, 2, ctrs.Count(counters.P1P1))

	bear, s, err := s.Create(state.Owned(state.ZoneHand, "alice"), state.Top(), state.CardComponent{Ref: "Bear", Owner: "alice"})
	assert.NoError(t, err)
	tapped, ctrs = Project(s, testCatalog).EntryModifiers(bear, "alice")
	assert.False(t, tapped)
	assert.True(t, ctrs.IsEmpty())
}
