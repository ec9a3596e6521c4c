package game

import (
	"compress/gzip"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wingedsheep/argentum-engine/internal/game/rules"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

const replayVersion = 1

var (
	ErrNoReplay       = errors.New("no replay for game")
	ErrReplayDiverged = errors.New("replay diverged")
)

// ReplayEntry is one accepted action and the checksum of the state it produced.
type ReplayEntry struct {
	Player   state.PlayerID
	Action   rules.Action
	Checksum string
}

// Replay is a recorded game: the state before the first turn and every accepted
// action in order. Playing the actions from the initial snapshot reproduces the
// game exactly.
type Replay struct {
	GameID       string
	Initial      *Snapshot
	Entries      []ReplayEntry
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay creates an empty replay starting from initial.
func NewReplay(gameID string, initial *Snapshot) *Replay {
	return &Replay{GameID: gameID, Initial: initial}
}

// Record appends an entry.
func (r *Replay) Record(entry ReplayEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Entries = append(r.Entries, entry)
}

// Start resets playback to the beginning.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CurrentIndex = 0
}

// Next returns the next entry and advances, or nil at the end.
func (r *Replay) Next() *ReplayEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex < len(r.Entries) {
		e := r.Entries[r.CurrentIndex]
		r.CurrentIndex++
		return &e
	}
	return nil
}

// Previous steps back and returns that entry, or nil at the beginning.
func (r *Replay) Previous() *ReplayEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex > 0 {
		r.CurrentIndex--
		e := r.Entries[r.CurrentIndex]
		return &e
	}
	return nil
}

// Skip moves by count entries, clamped to the recorded range, and returns the
// entry there.
func (r *Replay) Skip(count int) *ReplayEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.Entries) == 0 {
		return nil
	}
	r.CurrentIndex = max(0, min(r.CurrentIndex+count, len(r.Entries)-1))
	e := r.Entries[r.CurrentIndex]
	return &e
}

// Size returns the number of recorded actions.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.Entries)
}

// EntryAt returns the entry at index, or nil when out of range.
func (r *Replay) EntryAt(index int) *ReplayEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index >= 0 && index < len(r.Entries) {
		e := r.Entries[index]
		return &e
	}
	return nil
}

// replayMetadata heads a saved replay file.
type replayMetadata struct {
	GameID     string
	SavedAt    time.Time
	Version    int
	EntryCount int
}

func replayPath(directory, gameID string) string {
	return filepath.Join(directory, fmt.Sprintf("%s.replay", gameID))
}

// SaveToFile writes the replay to <directory>/<game id>.replay, gzip-compressed.
func (r *Replay) SaveToFile(directory string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(replayPath(directory, r.GameID))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	zw := gzip.NewWriter(file)
	enc := gob.NewEncoder(zw)
	meta := replayMetadata{GameID: r.GameID, SavedAt: time.Now(), Version: replayVersion, EntryCount: len(r.Entries)}
	if err := enc.Encode(&meta); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := enc.Encode(r.Initial); err != nil {
		return fmt.Errorf("failed to encode initial snapshot: %w", err)
	}
	for i := range r.Entries {
		if err := enc.Encode(&r.Entries[i]); err != nil {
			return fmt.Errorf("failed to encode entry %d: %w", i, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to flush replay: %w", err)
	}
	return file.Close()
}

// LoadReplayFromFile reads a replay written by SaveToFile.
func LoadReplayFromFile(directory, gameID string) (*Replay, error) {
	file, err := os.Open(replayPath(directory, gameID))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	zr, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer zr.Close()

	dec := gob.NewDecoder(zr)
	var meta replayMetadata
	if err := dec.Decode(&meta); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if meta.Version != replayVersion {
		return nil, fmt.Errorf("unsupported replay version: %d", meta.Version)
	}
	var initial Snapshot
	if err := dec.Decode(&initial); err != nil {
		return nil, fmt.Errorf("failed to decode initial snapshot: %w", err)
	}
	replay := NewReplay(meta.GameID, &initial)
	for i := 0; i < meta.EntryCount; i++ {
		var e ReplayEntry
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to decode entry %d: %w", i, err)
		}
		replay.Entries = append(replay.Entries, e)
	}
	return replay, nil
}

// Play re-runs a replay from its initial snapshot and checks every resulting
// state against the recorded checksum. It returns the final state.
func (e *Engine) Play(r *Replay) (state.GameState, error) {
	st, err := RestoreSnapshot(r.Initial)
	if err != nil {
		return state.GameState{}, err
	}
	if st, err = e.rules.Start(st); err != nil {
		return state.GameState{}, err
	}
	for i, entry := range r.Entries {
		if st, err = e.rules.Apply(st, entry.Player, entry.Action); err != nil {
			return st, fmt.Errorf("%w: action %d (%s by %s): %w", ErrReplayDiverged, i, entry.Action.Name(), entry.Player, err)
		}
		sum, err := StateChecksum(st)
		if err != nil {
			return st, err
		}
		if entry.Checksum != "" && sum != entry.Checksum {
			return st, fmt.Errorf("%w: action %d (%s by %s) produced a different state", ErrReplayDiverged, i, entry.Action.Name(), entry.Player)
		}
	}
	e.logger.Debug("Replay verified", zap.String("game", r.GameID), zap.Int("actions", len(r.Entries)))
	return st, nil
}

// ReplayRecorder keeps the replays of running games.
type ReplayRecorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay
	enabled map[string]bool
	saveDir string
}

// NewReplayRecorder creates a recorder saving to saveDir.
func NewReplayRecorder(logger *zap.Logger, saveDir string) *ReplayRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReplayRecorder{
		logger:  logger,
		replays: make(map[string]*Replay),
		enabled: make(map[string]bool),
		saveDir: saveDir,
	}
}

// StartRecording begins a replay of a game from its initial snapshot.
func (rr *ReplayRecorder) StartRecording(gameID string, initial *Snapshot) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.replays[gameID] = NewReplay(gameID, initial)
	rr.enabled[gameID] = true
	rr.logger.Info("Started replay recording", zap.String("game", gameID))
}

// StopRecording stops recording a game; its replay is kept.
func (rr *ReplayRecorder) StopRecording(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.enabled[gameID] = false
	rr.logger.Info("Stopped replay recording", zap.String("game", gameID))
}

// Record appends an accepted action and the state it produced.
func (rr *ReplayRecorder) Record(gameID string, player state.PlayerID, action rules.Action, st state.GameState) {
	rr.mu.RLock()
	enabled := rr.enabled[gameID]
	replay := rr.replays[gameID]
	rr.mu.RUnlock()

	if !enabled || replay == nil {
		return
	}
	sum, err := StateChecksum(st)
	if err != nil {
		rr.logger.Warn("Failed to checksum state", zap.String("game", gameID), zap.Error(err))
	}
	replay.Record(ReplayEntry{Player: player, Action: action, Checksum: sum})
	rr.logger.Debug("Recorded action",
		zap.String("game", gameID),
		zap.String("action", action.Name()),
		zap.Int("entries", replay.Size()))
}

// GetReplay returns the replay of a game.
func (rr *ReplayRecorder) GetReplay(gameID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	replay, ok := rr.replays[gameID]
	return replay, ok
}

// SaveReplay writes a game's replay to disk and forgets it.
func (rr *ReplayRecorder) SaveReplay(gameID string) error {
	rr.mu.Lock()
	replay, ok := rr.replays[gameID]
	if !ok {
		rr.mu.Unlock()
		return fmt.Errorf("%w %s", ErrNoReplay, gameID)
	}
	delete(rr.replays, gameID)
	delete(rr.enabled, gameID)
	rr.mu.Unlock()

	if err := replay.SaveToFile(rr.saveDir); err != nil {
		return fmt.Errorf("failed to save replay: %w", err)
	}
	rr.logger.Info("Saved replay",
		zap.String("game", gameID),
		zap.Int("entries", replay.Size()),
		zap.String("directory", rr.saveDir))
	return nil
}

// LoadReplay reads a saved replay.
func (rr *ReplayRecorder) LoadReplay(gameID string) (*Replay, error) {
	replay, err := LoadReplayFromFile(rr.saveDir, gameID)
	if err != nil {
		return nil, err
	}
	rr.logger.Info("Loaded replay", zap.String("game", gameID), zap.Int("entries", replay.Size()))
	return replay, nil
}

// ClearReplay forgets a game's replay without saving it.
func (rr *ReplayRecorder) ClearReplay(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	delete(rr.replays, gameID)
	delete(rr.enabled, gameID)
}

// IsRecording reports whether a game is being recorded.
func (rr *ReplayRecorder) IsRecording(gameID string) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	return rr.enabled[gameID]
}
