package targeting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/effects"
	"github.com/wingedsheep/argentum-engine/internal/game/mana"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

type catalog map[state.CardRef]state.Characteristics

func (c catalog) Characteristics(ref state.CardRef) (state.Characteristics, bool) {
	ch, ok := c[ref]
	return ch, ok
}

func creature(name string, ks ...state.Keyword) state.Characteristics {
	return state.Characteristics{
		Name: name, Types: []state.CardType{state.TypeCreature},
		Power: 2, Toughness: 2, HasPT: true, Keywords: ks,
	}
}

var cards = catalog{
	"Bear":     creature("Bear"),
	"Veil":     creature("Veil", state.Hexproof),
	"Cloak":    creature("Cloak", state.Shroud),
	"Paladin":  creature("Paladin", state.ProtectionFrom(mana.ColorRed)),
	"Relic":    {Name: "Relic", Types: []state.CardType{state.TypeArtifact}},
	"Shock":    {Name: "Shock", Colors: mana.ColorRed, Types: []state.CardType{state.TypeInstant}},
	"Giant":    {Name: "Giant", Colors: mana.ColorGreen, Types: []state.CardType{state.TypeSorcery}},
	"Skeleton": creature("Skeleton"),
}

type fixture struct {
	s   state.GameState
	ids map[string]ecs.EntityID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{s: state.New("t", []state.PlayerID{"alice", "bob"}, 20, 7), ids: map[string]ecs.EntityID{}}
	f.permanent(t, "Bear", "bob")
	f.permanent(t, "Veil", "bob")
	f.permanent(t, "Cloak", "alice")
	f.permanent(t, "Paladin", "bob")
	f.permanent(t, "Relic", "bob")
	id, s, err := f.s.Create(state.Stack, state.Top(), state.CardComponent{Ref: "Giant", Owner: "bob"},
		state.StackComponent{ItemKind: state.StackSpell, Controller: "bob", Ref: "Giant"})
	require.NoError(t, err)
	f.s, f.ids["Giant"] = s, id
	id, s, err = f.s.Create(state.Owned(state.ZoneGraveyard, "alice"), state.Top(), state.CardComponent{Ref: "Skeleton", Owner: "alice"})
	require.NoError(t, err)
	f.s, f.ids["Skeleton"] = s, id
	return f
}

func (f *fixture) permanent(t *testing.T, ref state.CardRef, controller state.PlayerID) {
	t.Helper()
	ts, s := f.s.NextTimestamp()
	id, s, err := s.Create(state.Battlefield, state.Top(),
		state.CardComponent{Ref: ref, Owner: controller},
		state.PermanentComponent{Controller: controller, EnteredAt: ts})
	require.NoError(t, err)
	f.s, f.ids[string(ref)] = s, id
}

func (f *fixture) on(name string) state.PermanentTarget { return f.s.TargetOn(f.ids[name]) }

func redSource() Source { return Source{Controller: "alice", Colors: mana.ColorRed} }

func TestValidate_AnyTarget(t *testing.T) {
	f := newFixture(t)
	p := effects.Project(f.s, cards)
	req := Single(KindAny, "any target", state.Filter{})

	assert.NoError(t, Validate([]state.ChosenTarget{state.PlayerTarget{Player: "bob"}}, req, p, redSource()))
	assert.NoError(t, Validate([]state.ChosenTarget{f.on("Bear")}, req, p, redSource()))
	assert.ErrorIs(t, Validate([]state.ChosenTarget{f.on("Relic")}, req, p, redSource()), ErrFilter)
	assert.ErrorIs(t, Validate(nil, req, p, redSource()), ErrTooFewTargets)
	assert.ErrorIs(t, Validate([]state.ChosenTarget{f.on("Bear"), f.on("Veil")}, req, p, redSource()), ErrTooManyTargets)
}

func TestCanTarget_Keywords(t *testing.T) {
	f := newFixture(t)
	p := effects.Project(f.s, cards)

	tests := []struct {
		name string
		src  Source
		tgt  string
		ok   bool
	}{
		{"hexproof blocks opponents", redSource(), "Veil", false},
		{"hexproof allows controller", Source{Controller: "bob"}, "Veil", true},
		{"shroud blocks everyone", Source{Controller: "alice"}, "Cloak", false},
		{"protection from red", redSource(), "Paladin", false},
		{"protection ignores other colors", Source{Controller: "alice", Colors: mana.ColorBlue}, "Paladin", true},
		{"plain creature", redSource(), "Bear", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTarget(f.on(tt.tgt), p, tt.src)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrUntargetable)
			}
		})
	}
}

func TestValidate_UpToCount(t *testing.T) {
	f := newFixture(t)
	p := effects.Project(f.s, cards)
	zero := 0
	req := Requirement{Description: "up to two target creatures", Kind: KindPermanent, Count: 2, MinCount: &zero, Filter: state.Creatures()}

	assert.NoError(t, Validate(nil, req, p, redSource()))
	assert.NoError(t, Validate([]state.ChosenTarget{f.on("Bear")}, req, p, redSource()))
	assert.ErrorIs(t, Validate([]state.ChosenTarget{f.on("Bear"), f.on("Bear")}, req, p, redSource()), ErrDuplicateTarget)
}

func TestValidate_Optional(t *testing.T) {
	f := newFixture(t)
	p := effects.Project(f.s, cards)
	req := Single(KindPermanent, "target creature", state.Creatures())
	req.Optional = true
	assert.Equal(t, 0, req.EffectiveMin())
	assert.NoError(t, Validate(nil, req, p, redSource()))
}

func TestRequirement_Check(t *testing.T) {
	three := 3
	assert.ErrorIs(t, Requirement{Count: 0}.Check(), ErrBadRequirement)
	assert.ErrorIs(t, Requirement{Count: 2, MinCount: &three}.Check(), ErrBadRequirement)
	assert.NoError(t, Requirement{Count: 3, MinCount: &three}.Check())
}

func TestLegal_StaleIncarnation(t *testing.T) {
	f := newFixture(t)
	target := f.on("Bear")
	s, err := f.s.MoveEntity(f.ids["Bear"], state.Battlefield, state.Owned(state.ZoneHand, "bob"), state.Top())
	require.NoError(t, err)
	s, err = s.MoveEntity(f.ids["Bear"], state.Owned(state.ZoneHand, "bob"), state.Battlefield, state.Top())
	require.NoError(t, err)
	s, err = s.Set(f.ids["Bear"], state.PermanentComponent{Controller: "bob"})
	require.NoError(t, err)

	p := effects.Project(s, cards)
	req := Single(KindPermanent, "target creature", state.Creatures())
	assert.ErrorIs(t, Legal(req, target, p, redSource()), ErrNotFound)
	assert.NoError(t, Legal(req, s.TargetOn(f.ids["Bear"]), p, redSource()))
}

func TestLegal_SpellsAndCards(t *testing.T) {
	f := newFixture(t)
	p := effects.Project(f.s, cards)

	spell := state.SpellTarget{Ref: f.s.Ref(f.ids["Giant"])}
	assert.NoError(t, Legal(Single(KindSpell, "target spell", state.Filter{}), spell, p, redSource()))
	assert.ErrorIs(t, Legal(Single(KindSpell, "target creature spell", state.Creatures()), spell, p, redSource()), ErrFilter)
	assert.ErrorIs(t, Legal(Single(KindPermanent, "target permanent", state.Filter{}), spell, p, redSource()), ErrWrongKind)

	grave := state.CardTarget{Ref: f.s.Ref(f.ids["Skeleton"]), Zone: state.Owned(state.ZoneGraveyard, "alice")}
	yours := Requirement{Description: "target creature card in your graveyard", Kind: KindCard, Count: 1, Filter: state.Creatures(), Player: state.You}
	assert.NoError(t, Legal(yours, grave, p, redSource()))
	assert.ErrorIs(t, Legal(yours, grave, p, Source{Controller: "bob"}), ErrFilter)
}

func TestCandidates(t *testing.T) {
	f := newFixture(t)
	p := effects.Project(f.s, cards)

	got := Candidates(Single(KindAny, "any target", state.Filter{}), p, redSource())
	want := []state.ChosenTarget{
		state.PlayerTarget{Player: "alice"},
		state.PlayerTarget{Player: "bob"},
		f.on("Bear"),
	}
	// Veil has hexproof, Cloak shroud, Paladin protection from red. Relic is no creature.
	assert.ElementsMatch(t, want, got)

	opp := Requirement{Description: "target opponent", Kind: KindPlayer, Count: 1, Player: state.Opponent}
	assert.Equal(t, []state.ChosenTarget{state.PlayerTarget{Player: "bob"}}, Candidates(opp, p, redSource()))
}
