package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
)

func TestZones_PlaceAndMove(t *testing.T) {
	lib := Owned(ZoneLibrary, "alice")
	grave := Owned(ZoneGraveyard, "alice")

	z := NewZones()
	z, err := z.Place(1, lib, Bottom())
	require.NoError(t, err)
	z, err = z.Place(2, lib, Bottom())
	require.NoError(t, err)
	z, err = z.Place(3, lib, Top())
	require.NoError(t, err)
	assert.Equal(t, []ecs.EntityID{3, 1, 2}, z.Contents(lib))

	moved, err := z.Move(3, lib, grave, Top())
	require.NoError(t, err)
	assert.Equal(t, []ecs.EntityID{1, 2}, moved.Contents(lib))
	assert.Equal(t, []ecs.EntityID{3}, moved.Contents(grave))
	assert.Equal(t, []ecs.EntityID{3, 1, 2}, z.Contents(lib), "input must not change")

	loc, ok := moved.Locate(3)
	require.True(t, ok)
	assert.Equal(t, grave, loc.Key)
	assert.Equal(t, uint32(1), loc.Incarnation)
}

func TestZones_MoveFromWrongZone(t *testing.T) {
	hand := Owned(ZoneHand, "alice")
	z, err := NewZones().Place(1, hand, Top())
	require.NoError(t, err)

	_, err = z.Move(1, Battlefield, Exile, Top())
	assert.ErrorIs(t, err, ErrNotInZone)

	_, err = z.Move(9, hand, Exile, Top())
	assert.ErrorIs(t, err, ErrNotInZone)

	_, err = z.Place(1, Exile, Top())
	assert.ErrorIs(t, err, ErrAlreadyPlaced)
}

func TestZones_MoveToSameZoneIsNoop(t *testing.T) {
	lib := Owned(ZoneLibrary, "alice")
	z, _ := NewZones().Place(1, lib, Top())
	z, _ = z.Place(2, lib, Top())

	same, err := z.Move(1, lib, lib, Top())
	require.NoError(t, err)
	assert.Equal(t, z.Contents(lib), same.Contents(lib))
	loc, _ := same.Locate(1)
	assert.Equal(t, uint32(0), loc.Incarnation)
}

func TestZones_Reposition(t *testing.T) {
	lib := Owned(ZoneLibrary, "alice")
	z := NewZones()
	for id := ecs.EntityID(1); id <= 3; id++ {
		z, _ = z.Place(id, lib, Bottom())
	}
	moved, err := z.Reposition(1, Bottom())
	require.NoError(t, err)
	assert.Equal(t, []ecs.EntityID{2, 3, 1}, moved.Contents(lib))
	loc, _ := moved.Locate(1)
	assert.Equal(t, uint32(0), loc.Incarnation, "repositioning keeps the object")

	_, err = z.Reposition(9, Top())
	assert.ErrorIs(t, err, ErrNotInZone)
}

func TestZones_InsertAtIndex(t *testing.T) {
	lib := Owned(ZoneLibrary, "bob")
	z := NewZones()
	for id := ecs.EntityID(1); id <= 3; id++ {
		z, _ = z.Place(id, lib, Bottom())
	}
	z, err := z.Place(4, lib, At(1))
	require.NoError(t, err)
	assert.Equal(t, []ecs.EntityID{1, 4, 2, 3}, z.Contents(lib))
	assert.Equal(t, 1, z.IndexOf(4))

	z, err = z.Place(5, lib, At(99))
	require.NoError(t, err)
	assert.Equal(t, 4, z.IndexOf(5))
	assert.Equal(t, []ecs.EntityID{1, 4}, z.TopN(lib, 2))
}

func TestZones_DumpRestore(t *testing.T) {
	z := NewZones()
	z, _ = z.Place(1, Owned(ZoneLibrary, "a"), Top())
	z, _ = z.Place(2, Battlefield, Top())
	z, _ = z.Move(2, Battlefield, Owned(ZoneGraveyard, "a"), Top())

	restored, err := RestoreZones(z.Dump())
	require.NoError(t, err)
	assert.Equal(t, z.Dump(), restored.Dump())
	loc, _ := restored.Locate(2)
	assert.Equal(t, uint32(1), loc.Incarnation)
}

// Every live entity stays in exactly one zone whatever sequence of operations runs.
func TestGameState_EveryEntityInExactlyOneZone(t *testing.T) {
	players := []PlayerID{"alice", "bob"}
	zoneKinds := []Zone{ZoneLibrary, ZoneHand, ZoneBattlefield, ZoneGraveyard, ZoneExile, ZoneStack, ZoneCommand}

	rapid.Check(t, func(t *rapid.T) {
		s := New("g", players, 20, 7)
		var ids []ecs.EntityID
		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			owner := rapid.SampledFrom(players).Draw(t, "owner")
			key := Owned(rapid.SampledFrom(zoneKinds).Draw(t, "zone"), owner)
			switch op := rapid.IntRange(0, 3).Draw(t, "op"); {
			case op == 0 || len(ids) == 0:
				id, next, err := s.Create(key, Top(), CardComponent{Ref: "x", Owner: owner})
				if err != nil {
					t.Fatalf("create: %v", err)
				}
				s = next
				ids = append(ids, id)
			case op == 3:
				idx := rapid.IntRange(0, len(ids)-1).Draw(t, "destroy")
				next, err := s.Destroy(ids[idx])
				if err != nil {
					t.Fatalf("destroy: %v", err)
				}
				s = next
				ids = append(ids[:idx:idx], ids[idx+1:]...)
			default:
				id := rapid.SampledFrom(ids).Draw(t, "move")
				loc, _ := s.Locate(id)
				pos := At(rapid.IntRange(0, 5).Draw(t, "pos"))
				next, err := s.MoveEntity(id, loc.Key, key, pos)
				if err != nil {
					t.Fatalf("move: %v", err)
				}
				s = next
			}
			if err := CheckInvariants(s); err != nil {
				t.Fatalf("after step %d: %v", i, err)
			}
		}
		if s.Store().Len() != len(ids) {
			t.Fatalf("store has %d entities, expected %d", s.Store().Len(), len(ids))
		}
	})
}
