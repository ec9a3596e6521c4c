package ecs

// ComponentKind names a component table.
type ComponentKind string

// Component is a value attached to an entity. Each concrete type reports a fixed kind,
// and an entity holds at most one component of each kind.
// Kind must work on the zero value so Get can find the table for a type.
type Component interface {
	Kind() ComponentKind
}

// Get returns the component of type T attached to id.
func Get[T Component](s Store, id EntityID) (T, bool) {
	var zero T
	c, ok := s.Lookup(id, zero.Kind())
	if !ok {
		return zero, false
	}
	t, ok := c.(T)
	return t, ok
}

// Has reports whether id carries a component of type T.
func Has[T Component](s Store, id EntityID) bool {
	_, ok := Get[T](s, id)
	return ok
}

// Remove detaches the component of type T from id.
func Remove[T Component](s Store, id EntityID) (Store, error) {
	var zero T
	return s.Without(id, zero.Kind())
}

// Each calls fn for every entity carrying a component of type T, in ascending id order.
// Iteration stops when fn returns false.
func Each[T Component](s Store, fn func(EntityID, T) bool) {
	var zero T
	tbl, ok := s.tables[zero.Kind()]
	if !ok {
		return
	}
	tbl.Root().Walk(func(k []byte, c Component) bool {
		t, ok := c.(T)
		if !ok {
			return false
		}
		return !fn(idFromKey(k), t)
	})
}

// All returns every entity carrying a component of type T, in ascending id order.
func All[T Component](s Store) []EntityID {
	var out []EntityID
	Each(s, func(id EntityID, _ T) bool {
		out = append(out, id)
		return true
	})
	return out
}
