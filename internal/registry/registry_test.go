package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wingedsheep/argentum-engine/internal/game/card"
	"github.com/wingedsheep/argentum-engine/internal/game/condition"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
	"github.com/wingedsheep/argentum-engine/internal/game/targeting"
)

func TestStarterSet_Loads(t *testing.T) {
	r, err := New(zaptest.NewLogger(t), Starter())
	require.NoError(t, err)

	assert.Greater(t, r.Len(), 40)
	assert.Equal(t, []string{StarterCode}, r.Sets())

	bolt, ok := r.LookupByName("lightning bolt")
	require.True(t, ok)
	assert.Equal(t, state.CardRef("lightning-bolt"), bolt.Ref)
	assert.Equal(t, StarterCode, bolt.Set)
	require.NotNil(t, bolt.Spell)
	assert.Equal(t, targeting.KindAny, bolt.Spell.Targets[0].Kind)

	forest, ok := r.LookupByID("basic-Forest")
	require.True(t, ok)
	assert.True(t, forest.IsLand())
	assert.True(t, forest.HasSupertype(state.SupertypeBasic))
	require.Len(t, forest.Activated, 1)
	assert.True(t, forest.Activated[0].IsMana)

	ch, ok := r.Characteristics("serra-angel")
	require.True(t, ok)
	assert.True(t, ch.HasKeyword(state.Flying))
	assert.Equal(t, 5, ch.ManaCost.ManaValue(0))

	_, ok = r.Characteristics("nope")
	assert.False(t, ok)
}

func TestNew_Duplicate(t *testing.T) {
	_, err := New(nil, Starter(), Starter())
	assert.ErrorIs(t, err, ErrDuplicateCard)
}

func TestNew_InvalidCard(t *testing.T) {
	bad := Static{SetCode: "BAD", Defs: []*card.Definition{{Ref: "x"}}}
	_, err := New(nil, bad)
	assert.ErrorIs(t, err, card.ErrInvalidDefinition)
}

func TestResolve(t *testing.T) {
	r, err := New(nil, Starter())
	require.NoError(t, err)

	refs, err := r.Resolve("Forest", "grizzly-bears", "Lightning Bolt")
	require.NoError(t, err)
	assert.Equal(t, []state.CardRef{"basic-Forest", "grizzly-bears", "lightning-bolt"}, refs)

	_, err = r.Resolve("Black Lotus")
	assert.ErrorIs(t, err, ErrUnknownCard)
}

func TestFile_Loads(t *testing.T) {
	f := &File{Path: filepath.Join("testdata", "extra.yaml")}
	r, err := New(zaptest.NewLogger(t), Starter(), f)
	require.NoError(t, err)
	assert.Equal(t, []string{StarterCode, "EXT"}, r.Sets())

	shock, ok := r.LookupByName("Shock")
	require.True(t, ok)
	assert.Equal(t, card.DealDamage{To: card.Target{Index: 0}, Amount: card.N(2)}, shock.Spell.Effect)

	consider, ok := r.LookupByName("Consider")
	require.True(t, ok)
	assert.Equal(t, card.Then(card.Surveil{Amount: card.N(1)}, card.DrawCards{Who: card.You{}, Amount: card.N(1)}), consider.Spell.Effect)

	giant, ok := r.LookupByName("Hill Giant")
	require.True(t, ok)
	assert.Equal(t, []string{"Giant"}, giant.Subtypes)
	assert.Equal(t, 3, giant.Power)

	mystic, ok := r.LookupByName("Elvish Mystic")
	require.True(t, ok)
	assert.True(t, mystic.Activated[0].IsMana)
	assert.True(t, mystic.Activated[0].Cost.Tap)

	marshal, ok := r.LookupByName("Benalish Marshal")
	require.True(t, ok)
	require.Len(t, marshal.Statics, 1)
	assert.Equal(t, state.ModifyPT{Power: 1, Toughness: 1}, marshal.Statics[0].Mod)

	rats, ok := r.LookupByName("Ravenous Rats")
	require.True(t, ok)
	require.Len(t, rats.Triggered, 1)
	assert.Equal(t, card.OnEnterBattlefield, rats.Triggered[0].Trigger.Event)
	assert.Equal(t, state.Opponent, rats.Triggered[0].Targets[0].Player)

	cove, ok := r.LookupByName("Tranquil Cove")
	require.True(t, ok)
	assert.Equal(t, []state.ReplacementAbility{{Affected: state.AffectSelf{}, Rule: state.EntersTapped{}}}, cove.Replacements)
	assert.Len(t, cove.Activated, 2)
}

func TestFile_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) *File {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return &File{Path: p}
	}

	tests := []struct {
		name string
		body string
	}{
		{"no set code", "cards: []"},
		{"bad effect", "set: X\ncards:\n  - {ref: a, name: A, type_line: Instant, effects: [{do: explode}]}"},
		{"bad keyword", "set: X\ncards:\n  - {ref: a, name: A, type_line: Creature, keywords: [banding]}"},
		{"bad cost", "set: X\ncards:\n  - {ref: a, name: A, mana_cost: \"{Q}\", type_line: Creature}"},
		{"bad target", "set: X\ncards:\n  - {ref: a, name: A, type_line: Instant, targets: [{kind: planet}], effects: [{do: destroy}]}"},
		{"bad trigger", "set: X\ncards:\n  - {ref: a, name: A, type_line: Creature, triggered: [{\"on\": sneeze}]}"},
		{"not yaml", "set: [unterminated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(nil, write(tt.name+".yaml", tt.body))
			assert.Error(t, err)
		})
	}

	_, err := New(nil, &File{Path: filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}

func TestCondEntry(t *testing.T) {
	c := &condEntry{Kind: "all", All: []condEntry{
		{Kind: "your_turn"},
		{Kind: "life", Player: "opponent", Op: "<=", Value: 5},
		{Kind: "not", Not: &condEntry{Kind: "stack_empty"}},
		{Kind: "step", Step: "main1"},
	}}
	got, err := c.condition()
	require.NoError(t, err)
	assert.Equal(t, condition.And{Conditions: []condition.Condition{
		condition.IsYourTurn{},
		condition.LifeCompare{Player: state.Opponent, Op: condition.AtMost, Value: 5},
		condition.Not{Condition: condition.StackEmpty{}},
		condition.StepIs{Step: state.StepMain1},
	}}, got)

	_, err = (&condEntry{Kind: "moon_phase"}).condition()
	assert.Error(t, err)
}
