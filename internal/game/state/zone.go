package state

import (
	"fmt"

	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
)

// PlayerID identifies a player.
type PlayerID string

// CardRef names a card definition in the registry.
type CardRef string

// Timestamp orders effects and objects. It only ever increases within a game.
type Timestamp uint64

// Zone is a place an object can be.
type Zone uint8

const (
	ZoneLibrary Zone = iota + 1
	ZoneHand
	ZoneBattlefield
	ZoneGraveyard
	ZoneExile
	ZoneStack
	ZoneCommand
)

var zoneNames = map[Zone]string{
	ZoneLibrary:     "LIBRARY",
	ZoneHand:        "HAND",
	ZoneBattlefield: "BATTLEFIELD",
	ZoneGraveyard:   "GRAVEYARD",
	ZoneExile:       "EXILE",
	ZoneStack:       "STACK",
	ZoneCommand:     "COMMAND",
}

func (z Zone) String() string {
	if name, ok := zoneNames[z]; ok {
		return name
	}
	return fmt.Sprintf("ZONE_%d", int(z))
}

// Ordered reports whether position within the zone matters to the rules.
func (z Zone) Ordered() bool {
	return z == ZoneLibrary || z == ZoneStack
}

// Shared reports whether there is one zone for all players rather than one each.
func (z Zone) Shared() bool {
	switch z {
	case ZoneBattlefield, ZoneStack, ZoneExile, ZoneCommand:
		return true
	}
	return false
}

// ZoneKey identifies one concrete zone: a shared zone, or a player's own zone.
type ZoneKey struct {
	Zone  Zone
	Owner PlayerID
}

// Shared returns the key of a shared zone.
func Shared(z Zone) ZoneKey { return ZoneKey{Zone: z} }

// Owned returns the key of a player's zone. For shared zones the owner is dropped.
func Owned(z Zone, owner PlayerID) ZoneKey {
	if z.Shared() {
		return ZoneKey{Zone: z}
	}
	return ZoneKey{Zone: z, Owner: owner}
}

var (
	Battlefield = Shared(ZoneBattlefield)
	Stack       = Shared(ZoneStack)
	Exile       = Shared(ZoneExile)
	Command     = Shared(ZoneCommand)
)

func (k ZoneKey) String() string {
	if k.Owner == "" {
		return k.Zone.String()
	}
	return fmt.Sprintf("%s(%s)", k.Zone, k.Owner)
}

// Position says where an entity goes in the destination zone.
type Position struct {
	bottom bool
	index  int
}

// Top is the top of the zone (the next card drawn, the next object to resolve).
func Top() Position { return Position{} }

// Bottom is the bottom of the zone.
func Bottom() Position { return Position{bottom: true} }

// At is the i-th position counted from the top. Out-of-range indexes clamp.
func At(i int) Position { return Position{index: i} }

// EntityRef is an entity together with the incarnation it had when referenced.
// A zone change makes the object a new one and the reference stale.
type EntityRef struct {
	ID          ecs.EntityID
	Incarnation uint32
}

func (r EntityRef) String() string { return fmt.Sprintf("%s/%d", r.ID, r.Incarnation) }

// Location is where an entity currently is.
type Location struct {
	Key         ZoneKey
	Incarnation uint32
}
