package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/wingedsheep/argentum-engine/internal/game/rules"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
	"github.com/wingedsheep/argentum-engine/internal/registry"
)

// playedGame returns a game a few priority passes in, with a land on the
// battlefield and cards moved between zones.
func playedGame(t *testing.T, e *Engine) state.GameState {
	t.Helper()
	st, err := e.NewGame(twoPlayers(11))
	require.NoError(t, err)
	for st.Turn().Step != state.StepMain1 {
		st, err = e.SubmitAction(st, actor(st), rules.PassPriority{})
		require.NoError(t, err)
	}
	for _, a := range e.LegalActions(st, alice) {
		if _, ok := a.(rules.PlayLand); ok {
			st, err = e.SubmitAction(st, alice, a)
			require.NoError(t, err)
			break
		}
	}
	return st
}

func TestChecksum_Deterministic(t *testing.T) {
	st := playedGame(t, newTestEngine(t))

	want, err := StateChecksum(st)
	require.NoError(t, err)
	for range 10 {
		got, err := StateChecksum(st)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestChecksum_DetectsChanges(t *testing.T) {
	st := playedGame(t, newTestEngine(t))
	base, err := StateChecksum(st)
	require.NoError(t, err)

	p, _ := st.Player(bob)
	p.Life--
	changed, err := StateChecksum(st.WithPlayer(p))
	require.NoError(t, err)
	assert.NotEqual(t, base, changed)

	hand := st.Hand(alice)
	moved, err := st.MoveEntity(hand[0], state.Owned(state.ZoneHand, alice), state.Owned(state.ZoneGraveyard, alice), state.Top())
	require.NoError(t, err)
	changed, err = StateChecksum(moved)
	require.NoError(t, err)
	assert.NotEqual(t, base, changed)
}

func TestSnapshot_Roundtrip(t *testing.T) {
	e := newTestEngine(t)
	st := playedGame(t, e)

	data, err := TakeSnapshot(st).Encode()
	require.NoError(t, err)
	decoded, err := DecodeSnapshot(data)
	require.NoError(t, err)
	restored, err := RestoreSnapshot(decoded)
	require.NoError(t, err)

	want, err := StateChecksum(st)
	require.NoError(t, err)
	got, err := StateChecksum(restored)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// The restored game plays on exactly like the original.
	next, err := e.SubmitAction(st, actor(st), rules.PassPriority{})
	require.NoError(t, err)
	restoredNext, err := e.SubmitAction(restored, actor(restored), rules.PassPriority{})
	require.NoError(t, err)
	want, err = StateChecksum(next)
	require.NoError(t, err)
	got, err = StateChecksum(restoredNext)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSnapshot_Rejected(t *testing.T) {
	s := TakeSnapshot(playedGame(t, newTestEngine(t)))
	s.Version = 99
	_, err := RestoreSnapshot(s)
	require.ErrorIs(t, err, ErrSnapshotVersion)

	_, err = DecodeSnapshot([]byte("not a snapshot"))
	require.Error(t, err)
}

func TestValidateSerializationRoundtrip(t *testing.T) {
	require.NoError(t, ValidateSerializationRoundtrip(TakeSnapshot(playedGame(t, newTestEngine(t)))))
}

// Any sequence of legal actions keeps the state consistent and serializable.
func TestRandomPlay_KeepsInvariants(t *testing.T) {
	reg, err := registry.New(nil, registry.Starter())
	require.NoError(t, err)
	e := NewEngine(reg, nil, DefaultConfig())

	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		st, err := e.NewGame(twoPlayers(seed))
		if err != nil {
			t.Fatalf("new game: %v", err)
		}
		steps := rapid.IntRange(1, 25).Draw(t, "steps")
		for i := 0; i < steps && !st.IsOver(); i++ {
			player := actor(st)
			actions := playable(e.LegalActions(st, player))
			if len(actions) == 0 {
				break
			}
			action := rapid.SampledFrom(actions).Draw(t, "action")
			if st, err = e.SubmitAction(st, player, action); err != nil {
				t.Fatalf("step %d: %s by %s rejected: %v", i, action.Name(), player, err)
			}
			if err := state.CheckInvariants(st); err != nil {
				t.Fatalf("step %d: %v", i, err)
			}
			if err := ValidateSerializationRoundtrip(TakeSnapshot(st)); err != nil {
				t.Fatalf("step %d: %v", i, err)
			}
		}
	})
}
