// Package ecs is an immutable entity/component store. Entities are opaque ids;
// components are values attached to them and replaced wholesale on change.
// Every mutation returns a new Store that shares unchanged structure with the old one.
package ecs

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// EntityID identifies an entity. IDs are never reused; zero means "no entity".
type EntityID uint64

func (id EntityID) IsZero() bool { return id == 0 }

func (id EntityID) String() string { return fmt.Sprintf("#%d", uint64(id)) }

// ErrNotFound is returned when an operation names an entity that does not exist.
var ErrNotFound = errors.New("entity not found")

func key(id EntityID) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return b[:]
}

func idFromKey(k []byte) EntityID {
	return EntityID(binary.BigEndian.Uint64(k))
}
