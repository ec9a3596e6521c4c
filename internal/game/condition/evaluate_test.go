package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/effects"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

type catalog map[state.CardRef]state.Characteristics

func (c catalog) Characteristics(ref state.CardRef) (state.Characteristics, bool) {
	ch, ok := c[ref]
	return ch, ok
}

var cards = catalog{
	"Bear":   {Name: "Bear", Types: []state.CardType{state.TypeCreature}, Power: 2, Toughness: 2, HasPT: true},
	"Forest": {Name: "Forest", Types: []state.CardType{state.TypeLand}},
}

func setup(t *testing.T) (state.GameState, ecs.EntityID) {
	t.Helper()
	s := state.New("t", []state.PlayerID{"alice", "bob"}, 20, 7)
	s = s.WithTurn(state.TurnPosition{Number: 3, Active: "alice", Step: state.StepMain1, Priority: "alice"})
	bear, s, err := s.Create(state.Battlefield, state.Top(),
		state.CardComponent{Ref: "Bear", Owner: "alice"},
		state.PermanentComponent{Controller: "alice", Tapped: true})
	require.NoError(t, err)
	_, s, err = s.Create(state.Battlefield, state.Top(),
		state.CardComponent{Ref: "Forest", Owner: "bob"},
		state.PermanentComponent{Controller: "bob"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, s, err = s.Create(state.Owned(state.ZoneGraveyard, "bob"), state.Top(), state.CardComponent{Ref: "Bear", Owner: "bob"})
		require.NoError(t, err)
	}
	bob, _ := s.Player("bob")
	bob.Life = 5
	s = s.WithPlayer(bob)
	return s, bear
}

func TestEvaluate(t *testing.T) {
	s, bear := setup(t)
	p := effects.Project(s, cards)

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"nil", nil, true},
		{"your life", LifeCompare{Player: state.You, Op: AtLeast, Value: 20}, true},
		{"opponent low", LifeCompare{Player: state.Opponent, Op: AtMost, Value: 5}, true},
		{"opponent high", LifeCompare{Player: state.Opponent, Op: MoreThan, Value: 5}, false},
		{"controls creature", ControlsCount{Filter: state.CreaturesYouControl(), Op: Exactly, Value: 1}, true},
		{"opponent controls creature", ControlsCount{Filter: state.Filter{Types: []state.CardType{state.TypeCreature}, Controller: state.Opponent}, Op: AtLeast, Value: 1}, false},
		{"threshold", ZoneCount{Count: state.Count{Zone: state.ZoneGraveyard, Owner: state.Opponent}, Op: AtLeast, Value: 3}, true},
		{"own graveyard", ZoneCount{Count: state.Count{Zone: state.ZoneGraveyard, Owner: state.You}, Op: AtLeast, Value: 1}, false},
		{"source tapped", SourceIs{State: SourceTapped}, true},
		{"source untapped", SourceIs{State: SourceUntapped}, false},
		{"source attacking", SourceIs{State: SourceAttacking}, false},
		{"your turn", IsYourTurn{}, true},
		{"main step", StepIs{Step: state.StepMain1}, true},
		{"stack empty", StackEmpty{}, true},
		{"in combat", InCombat{}, false},
		{"no spells", SpellsCastThisTurn{Player: state.AnyPlayer, Op: Exactly, Value: 0}, true},
		{"no deaths", CreaturesDiedThisTurn{Op: AtLeast, Value: 1}, false},
		{"and", And{Conditions: []Condition{IsYourTurn{}, StackEmpty{}}}, true},
		{"and fails", And{Conditions: []Condition{ZoneCount{Count: state.Count{Zone: state.ZoneGraveyard}, Op: AtLeast, Value: 1}, InCombat{}}}, false},
		{"or", Or{Conditions: []Condition{InCombat{}, IsYourTurn{}}}, true},
		{"not", Not{Condition: InCombat{}}, true},
		{"empty and", And{}, true},
		{"empty or", Or{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.cond, p, bear, "alice"), Describe(tt.cond))
		})
	}
}

func TestEvaluate_TurnStats(t *testing.T) {
	s, bear := setup(t)
	stats := s.Stats()
	stats.SpellsCast["bob"] = 2
	stats.CreaturesDied = 1
	s = s.WithStats(stats)
	p := effects.Project(s, cards)

	assert.True(t, Evaluate(SpellsCastThisTurn{Player: state.Opponent, Op: AtLeast, Value: 2}, p, bear, "alice"))
	assert.False(t, Evaluate(SpellsCastThisTurn{Player: state.You, Op: AtLeast, Value: 1}, p, bear, "alice"))
	assert.True(t, Evaluate(CreaturesDiedThisTurn{Op: Exactly, Value: 1}, p, bear, "alice"))
}

func TestEvaluate_SourceGone(t *testing.T) {
	s, bear := setup(t)
	s, err := s.Destroy(bear)
	require.NoError(t, err)
	assert.False(t, Evaluate(SourceIs{State: SourceOnBattlefield}, effects.Project(s, cards), bear, "alice"))
}

func TestCheapestFirst(t *testing.T) {
	cs := []Condition{ZoneCount{}, IsYourTurn{}, LifeCompare{}}
	got := cheapestFirst(cs)
	assert.IsType(t, IsYourTurn{}, got[0])
	assert.IsType(t, ZoneCount{}, got[2])
	assert.IsType(t, ZoneCount{}, cs[0], "input is not reordered")
}

func TestParseOp(t *testing.T) {
	op, err := ParseOp("<=")
	require.NoError(t, err)
	assert.Equal(t, AtMost, op)
	_, err = ParseOp("!=")
	assert.Error(t, err)
}
