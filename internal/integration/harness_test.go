package integration

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wingedsheep/argentum-engine/internal/game"
	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/rules"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
	"github.com/wingedsheep/argentum-engine/internal/registry"
)

const (
	alice state.PlayerID = "alice"
	bob   state.PlayerID = "bob"
)

// match is a game driven through the public engine API.
type match struct {
	t      *testing.T
	engine *game.Engine
	st     state.GameState
}

func newEngine(t *testing.T) *game.Engine {
	t.Helper()
	reg, err := registry.New(zaptest.NewLogger(t), registry.Starter())
	require.NoError(t, err)
	return game.NewEngine(reg, zaptest.NewLogger(t), game.DefaultConfig())
}

// newMatch starts an unshuffled game: the first seven cards of each deck are the
// opening hand and the rest is the library, top first.
func newMatch(t *testing.T, aliceDeck, bobDeck []state.CardRef) *match {
	t.Helper()
	e := newEngine(t)
	st, err := e.NewGame(game.Setup{
		GameID:  "integration",
		Players: []game.PlayerSetup{{ID: alice, Deck: aliceDeck}, {ID: bob, Deck: bobDeck}},
	})
	require.NoError(t, err)
	return &match{t: t, engine: e, st: st}
}

func repeat(ref state.CardRef, n int) []state.CardRef {
	out := make([]state.CardRef, n)
	for i := range out {
		out[i] = ref
	}
	return out
}

func deck(parts ...[]state.CardRef) []state.CardRef {
	var out []state.CardRef
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func (m *match) submit(p state.PlayerID, a rules.Action) {
	m.t.Helper()
	st, err := m.engine.SubmitAction(m.st, p, a)
	require.NoError(m.t, err, "%s by %s", a.Name(), p)
	m.st = st
}

func (m *match) pass() {
	m.t.Helper()
	m.submit(m.st.Turn().Priority, rules.PassPriority{})
}

// passUntil passes priority until the given turn and step is reached.
func (m *match) passUntil(turn int, step state.Step) {
	m.t.Helper()
	for i := 0; ; i++ {
		require.Less(m.t, i, 500, "never reached turn %d %s", turn, step)
		t := m.st.Turn()
		if t.Number == turn && t.Step == step && m.st.Pending() == nil {
			return
		}
		if p := m.st.Pending(); p != nil {
			m.submit(p.Request.Player, rules.MakeDecision{DecisionID: p.Request.ID, Choices: firstChoices(p.Request)})
			continue
		}
		m.pass()
	}
}

func firstChoices(req state.DecisionRequest) []int {
	if req.Kind == state.DecisionOrderTriggers {
		out := make([]int, len(req.Options))
		for i, o := range req.Options {
			out[i] = o.ID
		}
		return out
	}
	out := make([]int, 0, req.Min)
	for i := 0; i < req.Min; i++ {
		out = append(out, req.Options[i].ID)
	}
	return out
}

// permanent puts a card onto the battlefield under p without casting it.
func (m *match) permanent(p state.PlayerID, ref state.CardRef) ecs.EntityID {
	m.t.Helper()
	var ts state.Timestamp
	ts, m.st = m.st.NextTimestamp()
	id, st, err := m.st.Create(state.Battlefield, state.Top(),
		state.CardComponent{Ref: ref, Owner: p},
		state.PermanentComponent{Controller: p, EnteredAt: ts})
	require.NoError(m.t, err)
	m.st = st
	return id
}

// inHand returns the first card in p's hand with ref.
func (m *match) inHand(p state.PlayerID, ref state.CardRef) ecs.EntityID {
	m.t.Helper()
	for _, id := range m.st.Hand(p) {
		if c, _ := m.st.Card(id); c.Ref == ref {
			return id
		}
	}
	m.t.Fatalf("%s has no %s in hand", p, ref)
	return 0
}

// cast finds the legal cast of card whose targets satisfy match.
func (m *match) cast(p state.PlayerID, card ecs.EntityID, ok func(rules.CastSpell) bool) {
	m.t.Helper()
	for _, a := range m.engine.LegalActions(m.st, p) {
		if c, isCast := a.(rules.CastSpell); isCast && c.Card == card && ok(c) {
			m.submit(p, c)
			return
		}
	}
	m.t.Fatalf("%s cannot cast %d", p, card)
}

func targets(want state.ChosenTarget) func(rules.CastSpell) bool {
	return func(c rules.CastSpell) bool {
		return len(c.Targets) == 1 && len(c.Targets[0]) == 1 && c.Targets[0][0] == want
	}
}

func (m *match) life(p state.PlayerID) int {
	pl, _ := m.st.Player(p)
	return pl.Life
}

func (m *match) zone(id ecs.EntityID) state.Zone {
	loc, ok := m.st.Locate(id)
	if !ok {
		return 0
	}
	return loc.Key.Zone
}
