package integration

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wingedsheep/argentum-engine/internal/game"
	"github.com/wingedsheep/argentum-engine/internal/game/rules"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

func TestTurnProgressionAfterPassChain(t *testing.T) {
	m := newMatch(t, mountains(40), repeat("basic-Forest", 40))
	assert.Equal(t, 1, m.st.Turn().Number)
	assert.Equal(t, state.StepUpkeep, m.st.Turn().Step)

	m.passUntil(1, state.StepEnd)
	assert.Len(t, m.st.Hand(alice), 7, "the starting player skips the first draw")

	m.passUntil(2, state.StepMain1)
	turn := m.st.Turn()
	assert.Equal(t, bob, turn.Active)
	assert.Equal(t, bob, turn.Priority)
	assert.Len(t, m.st.Hand(bob), 8)
	assert.Len(t, m.st.Library(bob), 32)
}

// aggro plays lands, casts creatures and burn at the opponent and attacks with
// everything.
func aggro(e *game.Engine, st state.GameState) (state.PlayerID, rules.Action) {
	if p := st.Pending(); p != nil {
		var ds []rules.MakeDecision
		for _, a := range e.LegalActions(st, p.Request.Player) {
			if d, ok := a.(rules.MakeDecision); ok {
				ds = append(ds, d)
			}
		}
		if p.Request.Kind == state.DecisionDeclareAttackers {
			return p.Request.Player, slices.MaxFunc(ds, func(a, b rules.MakeDecision) int { return len(a.Choices) - len(b.Choices) })
		}
		return p.Request.Player, ds[0]
	}
	player := st.Turn().Priority
	actions := e.LegalActions(st, player)
	for _, a := range actions {
		if _, ok := a.(rules.PlayLand); ok {
			return player, a
		}
	}
	for _, a := range actions {
		c, ok := a.(rules.CastSpell)
		if !ok {
			continue
		}
		if len(c.Targets) == 0 {
			return player, a
		}
		if pt, ok := c.Targets[0][0].(state.PlayerTarget); ok && pt.Player != player {
			return player, a
		}
	}
	return player, rules.PassPriority{}
}

func aggroDeck() []state.CardRef {
	return deck(
		repeat("basic-Mountain", 8), repeat("basic-Forest", 8),
		repeat("raging-goblin", 4), repeat("grizzly-bears", 8),
		repeat("boggart-brute", 4), repeat("lightning-bolt", 8),
	)
}

func playOut(t *testing.T, e *game.Engine, seed uint64) state.GameState {
	t.Helper()
	st, err := e.NewGame(game.Setup{
		GameID:  "full-game",
		Players: []game.PlayerSetup{{ID: alice, Deck: aggroDeck()}, {ID: bob, Deck: aggroDeck()}},
		Seed:    seed,
		Shuffle: true,
	})
	require.NoError(t, err)
	for i := 0; i < 5000 && !st.IsOver(); i++ {
		player, action := aggro(e, st)
		st, err = e.SubmitAction(st, player, action)
		require.NoError(t, err, "%s by %s", action.Name(), player)
	}
	return st
}

func TestFullGame_EndsAndReplays(t *testing.T) {
	e := newEngine(t)
	recorder := game.NewReplayRecorder(zaptest.NewLogger(t), t.TempDir())
	e.SetRecorder(recorder)

	final := playOut(t, e, 2024)
	require.True(t, final.IsOver(), "game did not finish")
	winner := final.Winner()
	assert.Contains(t, []state.PlayerID{alice, bob}, winner)
	loser := alice
	if winner == alice {
		loser = bob
	}
	pl, _ := final.Player(loser)
	assert.True(t, pl.Lost)

	require.NoError(t, recorder.SaveReplay(final.ID()))
	replay, err := recorder.LoadReplay(final.ID())
	require.NoError(t, err)

	replayed, err := e.Play(replay)
	require.NoError(t, err)
	want, err := game.StateChecksum(final)
	require.NoError(t, err)
	got, err := game.StateChecksum(replayed)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, winner, replayed.Winner())
}

func TestFullGame_Deterministic(t *testing.T) {
	e := newEngine(t)
	a, err := game.StateChecksum(playOut(t, e, 77))
	require.NoError(t, err)
	b, err := game.StateChecksum(playOut(t, e, 77))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
