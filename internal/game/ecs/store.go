package ecs

import (
	"fmt"
	"sort"

	iradix "github.com/hashicorp/go-immutable-radix/v2"
)

// Store is an immutable arena of entities plus one persistent table per component kind,
// keyed by big-endian entity id so iteration follows creation order.
type Store struct {
	next   EntityID
	alive  *iradix.Tree[struct{}]
	tables map[ComponentKind]*iradix.Tree[Component]
}

// NewStore returns an empty store.
func NewStore() Store {
	return Store{
		next:   1,
		alive:  iradix.New[struct{}](),
		tables: map[ComponentKind]*iradix.Tree[Component]{},
	}
}

func (s Store) withTable(kind ComponentKind, tbl *iradix.Tree[Component]) Store {
	tables := make(map[ComponentKind]*iradix.Tree[Component], len(s.tables)+1)
	for k, t := range s.tables {
		tables[k] = t
	}
	if tbl == nil || tbl.Len() == 0 {
		delete(tables, kind)
	} else {
		tables[kind] = tbl
	}
	s.tables = tables
	return s
}

// Create allocates a new entity with the given components.
func (s Store) Create(components ...Component) (EntityID, Store) {
	if s.alive == nil {
		s = NewStore()
	}
	id := s.next
	s.next++
	s.alive, _, _ = s.alive.Insert(key(id), struct{}{})
	for _, c := range components {
		s = s.put(id, c)
	}
	return id, s
}

func (s Store) put(id EntityID, c Component) Store {
	tbl, ok := s.tables[c.Kind()]
	if !ok {
		tbl = iradix.New[Component]()
	}
	tbl, _, _ = tbl.Insert(key(id), c)
	return s.withTable(c.Kind(), tbl)
}

// Exists reports whether id names a live entity.
func (s Store) Exists(id EntityID) bool {
	if s.alive == nil {
		return false
	}
	_, ok := s.alive.Get(key(id))
	return ok
}

// With attaches c to id, replacing any component of the same kind.
func (s Store) With(id EntityID, c Component) (Store, error) {
	if !s.Exists(id) {
		return s, fmt.Errorf("set %s on %s: %w", c.Kind(), id, ErrNotFound)
	}
	return s.put(id, c), nil
}

// Without detaches the component of the given kind. Detaching a kind the entity
// does not carry is a no-op.
func (s Store) Without(id EntityID, kind ComponentKind) (Store, error) {
	if !s.Exists(id) {
		return s, fmt.Errorf("remove %s from %s: %w", kind, id, ErrNotFound)
	}
	tbl, ok := s.tables[kind]
	if !ok {
		return s, nil
	}
	tbl, _, removed := tbl.Delete(key(id))
	if !removed {
		return s, nil
	}
	return s.withTable(kind, tbl), nil
}

// Destroy discards id and all its components. The id is never handed out again.
func (s Store) Destroy(id EntityID) (Store, error) {
	if !s.Exists(id) {
		return s, fmt.Errorf("destroy %s: %w", id, ErrNotFound)
	}
	for _, kind := range s.kinds() {
		if tbl, _, removed := s.tables[kind].Delete(key(id)); removed {
			s = s.withTable(kind, tbl)
		}
	}
	s.alive, _, _ = s.alive.Delete(key(id))
	return s, nil
}

// Lookup returns the component of the given kind attached to id.
func (s Store) Lookup(id EntityID, kind ComponentKind) (Component, bool) {
	tbl, ok := s.tables[kind]
	if !ok {
		return nil, false
	}
	return tbl.Get(key(id))
}

// Components returns every component attached to id, ordered by kind.
func (s Store) Components(id EntityID) []Component {
	var out []Component
	for _, kind := range s.kinds() {
		if c, ok := s.tables[kind].Get(key(id)); ok {
			out = append(out, c)
		}
	}
	return out
}

// Entities returns every live entity in ascending id order.
func (s Store) Entities() []EntityID {
	if s.alive == nil {
		return nil
	}
	out := make([]EntityID, 0, s.alive.Len())
	s.alive.Root().Walk(func(k []byte, _ struct{}) bool {
		out = append(out, idFromKey(k))
		return false
	})
	return out
}

// Len returns the number of live entities.
func (s Store) Len() int {
	if s.alive == nil {
		return 0
	}
	return s.alive.Len()
}

// NextID returns the id the next Create call will allocate.
func (s Store) NextID() EntityID {
	if s.next == 0 {
		return 1
	}
	return s.next
}

func (s Store) kinds() []ComponentKind {
	kinds := make([]ComponentKind, 0, len(s.tables))
	for k := range s.tables {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Record is one entity and its components, as used by snapshots.
type Record struct {
	ID         EntityID
	Components []Component
}

// Dump lists every live entity with its components.
func (s Store) Dump() []Record {
	ids := s.Entities()
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, Record{ID: id, Components: s.Components(id)})
	}
	return out
}

// Restore rebuilds a store from records produced by Dump.
// next must be greater than every recorded id.
func Restore(next EntityID, records []Record) (Store, error) {
	s := NewStore()
	for _, r := range records {
		if r.ID == 0 || r.ID >= next {
			return Store{}, fmt.Errorf("restore: entity %s outside allocated range (next %s)", r.ID, next)
		}
		if s.Exists(r.ID) {
			return Store{}, fmt.Errorf("restore: duplicate entity %s", r.ID)
		}
		s.alive, _, _ = s.alive.Insert(key(r.ID), struct{}{})
		for _, c := range r.Components {
			s = s.put(r.ID, c)
		}
	}
	s.next = next
	return s, nil
}
