package state

import (
	"errors"
	"fmt"

	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
)

// ErrInvariant marks a state that legal engine operations can never produce.
var ErrInvariant = errors.New("invariant violation")

// CheckInvariants verifies that every entity occupies exactly one zone, that the
// zone lists agree with the location index, and that no counter, damage or
// stack bookkeeping is out of range.
func CheckInvariants(s GameState) error {
	seen := make(map[ecs.EntityID]ZoneKey)
	for _, key := range s.zones.Keys() {
		for _, id := range s.zones.Contents(key) {
			if prev, dup := seen[id]; dup {
				return fmt.Errorf("%w: %s in both %s and %s", ErrInvariant, id, prev, key)
			}
			seen[id] = key
			loc, ok := s.zones.Locate(id)
			if !ok || loc.Key != key {
				return fmt.Errorf("%w: %s listed in %s but located in %v", ErrInvariant, id, key, loc.Key)
			}
			if !s.store.Exists(id) {
				return fmt.Errorf("%w: %s in %s has been destroyed", ErrInvariant, id, key)
			}
		}
	}
	if s.zones.Len() != len(seen) {
		return fmt.Errorf("%w: %d located entities, %d listed", ErrInvariant, s.zones.Len(), len(seen))
	}
	for _, id := range s.store.Entities() {
		key, ok := seen[id]
		if !ok {
			return fmt.Errorf("%w: %s is in no zone", ErrInvariant, id)
		}
		for _, c := range s.Counters(id).All() {
			if c.Count <= 0 {
				return fmt.Errorf("%w: %s has %d %s counters", ErrInvariant, id, c.Count, c.Type)
			}
		}
		if p, ok := s.Permanent(id); ok {
			if key.Zone != ZoneBattlefield {
				return fmt.Errorf("%w: %s has battlefield status in %s", ErrInvariant, id, key)
			}
			if p.Damage < 0 {
				return fmt.Errorf("%w: %s has negative damage", ErrInvariant, id)
			}
		}
		if _, ok := s.StackItem(id); ok && key.Zone != ZoneStack {
			return fmt.Errorf("%w: %s has stack status in %s", ErrInvariant, id, key)
		}
	}
	for _, p := range s.Players() {
		if p.Poison < 0 || p.Pool.Total() < 0 {
			return fmt.Errorf("%w: player %s has negative resources", ErrInvariant, p.ID)
		}
	}
	return nil
}
