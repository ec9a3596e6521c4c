package state

import (
	"errors"
	"fmt"
	"sort"

	iradix "github.com/hashicorp/go-immutable-radix/v2"

	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
)

var (
	// ErrNotInZone is returned when a move names a source zone the entity is not in.
	ErrNotInZone = errors.New("entity not in zone")
	// ErrAlreadyPlaced is returned when placing an entity that already has a zone.
	ErrAlreadyPlaced = errors.New("entity already in a zone")
)

// Zones records the single zone each entity occupies and the order of each zone,
// top first. It is immutable; lists are copied on write and the location index is
// a persistent tree.
type Zones struct {
	loc   *iradix.Tree[Location]
	lists map[ZoneKey][]ecs.EntityID
}

// NewZones returns an empty zone layout.
func NewZones() Zones {
	return Zones{loc: iradix.New[Location](), lists: map[ZoneKey][]ecs.EntityID{}}
}

func entityKey(id ecs.EntityID) []byte {
	var b [8]byte
	for i := 7; i >= 0; i-- {
		b[i] = byte(id)
		id >>= 8
	}
	return b[:]
}

// Locate returns where id is.
func (z Zones) Locate(id ecs.EntityID) (Location, bool) {
	if z.loc == nil {
		return Location{}, false
	}
	return z.loc.Get(entityKey(id))
}

// Contents returns the entities in a zone, top first. The slice must not be modified.
func (z Zones) Contents(key ZoneKey) []ecs.EntityID {
	return z.lists[key]
}

// Count returns the number of entities in a zone.
func (z Zones) Count(key ZoneKey) int {
	return len(z.lists[key])
}

// TopN returns up to n entities from the top of a zone.
func (z Zones) TopN(key ZoneKey, n int) []ecs.EntityID {
	list := z.lists[key]
	if n > len(list) {
		n = len(list)
	}
	return append([]ecs.EntityID(nil), list[:n]...)
}

// IndexOf returns the position of id in its zone counted from the top, or -1.
func (z Zones) IndexOf(id ecs.EntityID) int {
	loc, ok := z.Locate(id)
	if !ok {
		return -1
	}
	for i, e := range z.lists[loc.Key] {
		if e == id {
			return i
		}
	}
	return -1
}

// Keys returns every non-empty zone in a stable order.
func (z Zones) Keys() []ZoneKey {
	keys := make([]ZoneKey, 0, len(z.lists))
	for k := range z.lists {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Zone != keys[j].Zone {
			return keys[i].Zone < keys[j].Zone
		}
		return keys[i].Owner < keys[j].Owner
	})
	return keys
}

// Len returns the number of located entities.
func (z Zones) Len() int {
	if z.loc == nil {
		return 0
	}
	return z.loc.Len()
}

func (z Zones) withList(key ZoneKey, list []ecs.EntityID) Zones {
	lists := make(map[ZoneKey][]ecs.EntityID, len(z.lists)+1)
	for k, l := range z.lists {
		lists[k] = l
	}
	if len(list) == 0 {
		delete(lists, key)
	} else {
		lists[key] = list
	}
	z.lists = lists
	return z
}

func insertAt(list []ecs.EntityID, id ecs.EntityID, pos Position) []ecs.EntityID {
	i := pos.index
	if pos.bottom || i > len(list) {
		i = len(list)
	}
	if i < 0 {
		i = 0
	}
	out := make([]ecs.EntityID, 0, len(list)+1)
	out = append(out, list[:i]...)
	out = append(out, id)
	return append(out, list[i:]...)
}

func without(list []ecs.EntityID, id ecs.EntityID) []ecs.EntityID {
	out := make([]ecs.EntityID, 0, len(list))
	for _, e := range list {
		if e != id {
			out = append(out, e)
		}
	}
	return out
}

// Place puts an entity that has no zone yet into key.
func (z Zones) Place(id ecs.EntityID, key ZoneKey, pos Position) (Zones, error) {
	if z.loc == nil {
		z = NewZones()
	}
	if _, ok := z.Locate(id); ok {
		return z, fmt.Errorf("place %s in %s: %w", id, key, ErrAlreadyPlaced)
	}
	z.loc, _, _ = z.loc.Insert(entityKey(id), Location{Key: key})
	return z.withList(key, insertAt(z.lists[key], id, pos)), nil
}

// Move takes id out of from and puts it into to at pos. The entity becomes a new
// object: its incarnation increases. Moving into the zone it already occupies
// changes nothing; the caller still raises the zone change event.
func (z Zones) Move(id ecs.EntityID, from, to ZoneKey, pos Position) (Zones, error) {
	loc, ok := z.Locate(id)
	if !ok || loc.Key != from {
		return z, fmt.Errorf("move %s from %s: %w", id, from, ErrNotInZone)
	}
	if from == to {
		return z, nil
	}
	z = z.withList(from, without(z.lists[from], id))
	z = z.withList(to, insertAt(z.lists[to], id, pos))
	z.loc, _, _ = z.loc.Insert(entityKey(id), Location{Key: to, Incarnation: loc.Incarnation + 1})
	return z, nil
}

// Reposition moves id to pos within the zone it is in. It stays the same object.
func (z Zones) Reposition(id ecs.EntityID, pos Position) (Zones, error) {
	loc, ok := z.Locate(id)
	if !ok {
		return z, fmt.Errorf("reposition %s: %w", id, ErrNotInZone)
	}
	return z.withList(loc.Key, insertAt(without(z.lists[loc.Key], id), id, pos)), nil
}

// Remove takes id out of the zone layout entirely.
func (z Zones) Remove(id ecs.EntityID) (Zones, error) {
	loc, ok := z.Locate(id)
	if !ok {
		return z, fmt.Errorf("remove %s: %w", id, ErrNotInZone)
	}
	z = z.withList(loc.Key, without(z.lists[loc.Key], id))
	z.loc, _, _ = z.loc.Delete(entityKey(id))
	return z, nil
}

// ZoneRecord is one zone's contents with incarnations, as used by snapshots.
type ZoneRecord struct {
	Key          ZoneKey
	Entities     []ecs.EntityID
	Incarnations []uint32
}

// Dump lists every zone top first.
func (z Zones) Dump() []ZoneRecord {
	var out []ZoneRecord
	for _, k := range z.Keys() {
		rec := ZoneRecord{Key: k}
		for _, id := range z.lists[k] {
			loc, _ := z.Locate(id)
			rec.Entities = append(rec.Entities, id)
			rec.Incarnations = append(rec.Incarnations, loc.Incarnation)
		}
		out = append(out, rec)
	}
	return out
}

// RestoreZones rebuilds a layout from records produced by Dump.
func RestoreZones(records []ZoneRecord) (Zones, error) {
	z := NewZones()
	for _, rec := range records {
		if len(rec.Entities) != len(rec.Incarnations) {
			return Zones{}, fmt.Errorf("restore zone %s: %d entities, %d incarnations", rec.Key, len(rec.Entities), len(rec.Incarnations))
		}
		for i, id := range rec.Entities {
			if _, ok := z.Locate(id); ok {
				return Zones{}, fmt.Errorf("restore zone %s: %w", rec.Key, ErrAlreadyPlaced)
			}
			z.loc, _, _ = z.loc.Insert(entityKey(id), Location{Key: rec.Key, Incarnation: rec.Incarnations[i]})
		}
		z = z.withList(rec.Key, append([]ecs.EntityID(nil), rec.Entities...))
	}
	return z, nil
}
