package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

const snapshotVersion = 1

var ErrSnapshotVersion = errors.New("unsupported snapshot version")

// Snapshot is the complete, serializable content of a game state. Restoring a
// snapshot gives back a state that plays identically to the original.
type Snapshot struct {
	Version      int
	GameID       string
	NextEntity   ecs.EntityID
	Entities     []ecs.Record
	Zones        []state.ZoneRecord
	Players      []state.Player
	Turn         state.TurnPosition
	Timestamp    state.Timestamp
	Floating     []state.ContinuousEffect
	Replacements []state.ReplacementEffect
	Triggers     []state.PendingTrigger
	Events       []state.Event
	Stats        StatsRecord
	Pending      *state.PendingDecision
	Over         bool
	Winner       state.PlayerID
	Decisions    uint64
}

// StatsRecord is the turn statistics with per-player counts sorted by player, so
// equal statistics always encode identically.
type StatsRecord struct {
	SpellsCast     []PlayerCount
	CreaturesDied  int
	LifeGained     []PlayerCount
	AttackersCount int
}

// PlayerCount is a count for one player.
type PlayerCount struct {
	Player state.PlayerID
	Count  int
}

func countsOf(m map[state.PlayerID]int) []PlayerCount {
	out := make([]PlayerCount, 0, len(m))
	for p, n := range m {
		if n != 0 {
			out = append(out, PlayerCount{Player: p, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Player < out[j].Player })
	return out
}

func countsMap(cs []PlayerCount) map[state.PlayerID]int {
	m := make(map[state.PlayerID]int, len(cs))
	for _, c := range cs {
		m[c.Player] = c.Count
	}
	return m
}

// TakeSnapshot captures st.
func TakeSnapshot(st state.GameState) *Snapshot {
	p := st.Export()
	return &Snapshot{
		Version:      snapshotVersion,
		GameID:       p.ID,
		NextEntity:   p.NextEntity,
		Entities:     p.Entities,
		Zones:        p.Zones,
		Players:      p.Players,
		Turn:         p.Turn,
		Timestamp:    p.Timestamp,
		Floating:     p.Floating,
		Replacements: p.Replacements,
		Triggers:     p.Triggers,
		Events:       p.Events,
		Stats: StatsRecord{
			SpellsCast:     countsOf(p.Stats.SpellsCast),
			CreaturesDied:  p.Stats.CreaturesDied,
			LifeGained:     countsOf(p.Stats.LifeGained),
			AttackersCount: p.Stats.AttackersCount,
		},
		Pending:   p.Pending,
		Over:      p.Over,
		Winner:    p.Winner,
		Decisions: p.Decisions,
	}
}

// RestoreSnapshot rebuilds the game state captured by s. The result is checked
// against the state invariants.
func RestoreSnapshot(s *Snapshot) (state.GameState, error) {
	if s.Version != snapshotVersion {
		return state.GameState{}, fmt.Errorf("%w: %d", ErrSnapshotVersion, s.Version)
	}
	st, err := state.Import(state.Parts{
		ID:           s.GameID,
		NextEntity:   s.NextEntity,
		Entities:     s.Entities,
		Zones:        s.Zones,
		Players:      s.Players,
		Turn:         s.Turn,
		Timestamp:    s.Timestamp,
		Floating:     s.Floating,
		Replacements: s.Replacements,
		Triggers:     s.Triggers,
		Events:       s.Events,
		Stats: state.TurnStats{
			SpellsCast:     countsMap(s.Stats.SpellsCast),
			CreaturesDied:  s.Stats.CreaturesDied,
			LifeGained:     countsMap(s.Stats.LifeGained),
			AttackersCount: s.Stats.AttackersCount,
		},
		Pending:   s.Pending,
		Over:      s.Over,
		Winner:    s.Winner,
		Decisions: s.Decisions,
	})
	if err != nil {
		return state.GameState{}, fmt.Errorf("restore snapshot of game %s: %w", s.GameID, err)
	}
	return st, nil
}

// Encode serializes the snapshot with gob. The encoding is canonical: equal
// snapshots encode to equal bytes.
func (s *Snapshot) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot deserializes a snapshot produced by Encode.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &s, nil
}

// Checksum is the hex SHA-256 of the snapshot's encoding. Gob numbers types as a
// process first encodes them, so checksums are compared within one process;
// stored snapshots are checked against the checksum of their stored bytes.
func (s *Snapshot) Checksum() (string, error) {
	data, err := s.Encode()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// StateChecksum is the checksum of st's snapshot.
func StateChecksum(st state.GameState) (string, error) {
	return TakeSnapshot(st).Checksum()
}

// ValidateSerializationRoundtrip encodes, decodes and restores s, and checks that
// the restored state snapshots to the same checksum.
func ValidateSerializationRoundtrip(s *Snapshot) error {
	want, err := s.Checksum()
	if err != nil {
		return err
	}
	data, err := s.Encode()
	if err != nil {
		return err
	}
	decoded, err := DecodeSnapshot(data)
	if err != nil {
		return err
	}
	st, err := RestoreSnapshot(decoded)
	if err != nil {
		return err
	}
	got, err := StateChecksum(st)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("checksum mismatch: original=%s, restored=%s", want, got)
	}
	return nil
}
