package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wingedsheep/argentum-engine/internal/game/rules"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

func filledReplay(n int) *Replay {
	replay := NewReplay("game-123", nil)
	for i := 0; i < n; i++ {
		player := alice
		if i%2 == 1 {
			player = bob
		}
		replay.Record(ReplayEntry{Player: player, Action: rules.PassPriority{}, Checksum: string(rune('a' + i))})
	}
	return replay
}

func TestNewReplay(t *testing.T) {
	replay := NewReplay("game-123", nil)
	assert.Equal(t, "game-123", replay.GameID)
	assert.Equal(t, 0, replay.CurrentIndex)
	assert.Equal(t, 0, replay.Size())
	assert.Nil(t, replay.Next())
	assert.Nil(t, replay.Skip(3))
}

func TestReplayNavigation(t *testing.T) {
	replay := filledReplay(5)
	assert.Equal(t, 5, replay.Size())

	replay.Start()
	assert.Equal(t, 0, replay.CurrentIndex)

	entry := replay.Next()
	require.NotNil(t, entry)
	assert.Equal(t, "a", entry.Checksum)
	assert.Equal(t, 1, replay.CurrentIndex)

	entry = replay.Next()
	require.NotNil(t, entry)
	assert.Equal(t, "b", entry.Checksum)
	assert.Equal(t, bob, entry.Player)

	entry = replay.Previous()
	require.NotNil(t, entry)
	assert.Equal(t, "b", entry.Checksum)
	assert.Equal(t, 1, replay.CurrentIndex)

	replay.Previous()
	assert.Nil(t, replay.Previous())
	assert.Equal(t, 0, replay.CurrentIndex)

	for range 5 {
		require.NotNil(t, replay.Next())
	}
	assert.Nil(t, replay.Next())
}

func TestReplaySkip(t *testing.T) {
	replay := filledReplay(10)

	entry := replay.Skip(3)
	require.NotNil(t, entry)
	assert.Equal(t, "d", entry.Checksum)

	entry = replay.Skip(-2)
	require.NotNil(t, entry)
	assert.Equal(t, "b", entry.Checksum)

	entry = replay.Skip(100)
	require.NotNil(t, entry)
	assert.Equal(t, 9, replay.CurrentIndex)

	entry = replay.Skip(-100)
	require.NotNil(t, entry)
	assert.Equal(t, 0, replay.CurrentIndex)
}

func TestReplayEntryAt(t *testing.T) {
	replay := filledReplay(3)
	require.NotNil(t, replay.EntryAt(2))
	assert.Equal(t, "c", replay.EntryAt(2).Checksum)
	assert.Nil(t, replay.EntryAt(3))
	assert.Nil(t, replay.EntryAt(-1))
}

// recordedGame plays a short game with recording on and returns the engine,
// recorder and final state.
func recordedGame(t *testing.T) (*Engine, *ReplayRecorder, state.GameState) {
	t.Helper()
	e := newTestEngine(t)
	rr := NewReplayRecorder(zaptest.NewLogger(t), t.TempDir())
	e.SetRecorder(rr)

	st, err := e.NewGame(twoPlayers(5))
	require.NoError(t, err)
	for range 30 {
		player := actor(st)
		actions := playable(e.LegalActions(st, player))
		require.NotEmpty(t, actions)
		st, err = e.SubmitAction(st, player, actions[len(actions)-1])
		require.NoError(t, err)
		if st.IsOver() {
			break
		}
	}
	return e, rr, st
}

func TestReplayRecorder(t *testing.T) {
	_, rr, st := recordedGame(t)

	assert.True(t, rr.IsRecording(st.ID()))
	replay, ok := rr.GetReplay(st.ID())
	require.True(t, ok)
	assert.NotNil(t, replay.Initial)
	assert.Equal(t, 0, replay.Initial.Turn.Number)
	assert.NotZero(t, replay.Size())

	last := replay.EntryAt(replay.Size() - 1)
	want, err := StateChecksum(st)
	require.NoError(t, err)
	assert.Equal(t, want, last.Checksum)

	rr.StopRecording(st.ID())
	assert.False(t, rr.IsRecording(st.ID()))
	size := replay.Size()
	rr.Record(st.ID(), alice, rules.PassPriority{}, st)
	assert.Equal(t, size, replay.Size())

	rr.ClearReplay(st.ID())
	_, ok = rr.GetReplay(st.ID())
	assert.False(t, ok)
	require.ErrorIs(t, rr.SaveReplay(st.ID()), ErrNoReplay)
}

func TestReplayRecorder_IgnoresUnknownGames(t *testing.T) {
	rr := NewReplayRecorder(nil, t.TempDir())
	rr.Record("nobody", alice, rules.PassPriority{}, state.GameState{})
	_, ok := rr.GetReplay("nobody")
	assert.False(t, ok)
}

func TestReplaySaveAndPlay(t *testing.T) {
	e, rr, st := recordedGame(t)
	replay, ok := rr.GetReplay(st.ID())
	require.True(t, ok)
	size := replay.Size()

	require.NoError(t, rr.SaveReplay(st.ID()))
	_, ok = rr.GetReplay(st.ID())
	assert.False(t, ok)

	loaded, err := rr.LoadReplay(st.ID())
	require.NoError(t, err)
	assert.Equal(t, st.ID(), loaded.GameID)
	assert.Equal(t, size, loaded.Size())

	final, err := e.Play(loaded)
	require.NoError(t, err)
	want, err := StateChecksum(st)
	require.NoError(t, err)
	got, err := StateChecksum(final)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReplayPlay_DetectsDivergence(t *testing.T) {
	e, rr, st := recordedGame(t)
	replay, ok := rr.GetReplay(st.ID())
	require.True(t, ok)

	replay.Entries[0].Checksum = "tampered"
	_, err := e.Play(replay)
	require.ErrorIs(t, err, ErrReplayDiverged)

	replay.Entries[0].Checksum = ""
	replay.Entries[0].Player = "mallory"
	_, err = e.Play(replay)
	require.ErrorIs(t, err, ErrReplayDiverged)
}

func TestReplaySave_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "replays")
	replay := filledReplay(2)
	replay.Initial = &Snapshot{Version: snapshotVersion, GameID: "game-123"}

	require.NoError(t, replay.SaveToFile(dir))
	_, err := os.Stat(filepath.Join(dir, "game-123.replay"))
	require.NoError(t, err)

	loaded, err := LoadReplayFromFile(dir, "game-123")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Size())
	assert.Equal(t, "b", loaded.EntryAt(1).Checksum)
}

func TestReplayLoad_MissingFile(t *testing.T) {
	_, err := LoadReplayFromFile(t.TempDir(), "nonexistent")
	require.Error(t, err)
}
