// Package effects computes the projected view of a game: every object's
// characteristics after continuous effects, applied layer by layer.
package effects

import (
	"slices"

	"github.com/wingedsheep/argentum-engine/internal/game/counters"
	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

// Catalog supplies the printed characteristics of cards.
type Catalog interface {
	Characteristics(ref state.CardRef) (state.Characteristics, bool)
}

// Object is a game object as the rules see it.
type Object struct {
	state.Characteristics
	ID         ecs.EntityID
	Ref        state.EntityRef
	Card       state.CardRef
	Zone       state.ZoneKey
	Owner      state.PlayerID
	Controller state.PlayerID
	Token      bool
	Tapped     bool
	Attacking  bool
	Blocking   bool
	Damage     int
	Counters   counters.Counters
	AttachedTo ecs.EntityID
	EnteredAt  state.Timestamp
	// SummoningSick is set when the controller has not controlled the permanent
	// continuously since their most recent turn began.
	SummoningSick bool
}

// Projection is the state with all continuous effects applied. It is computed
// from a GameState on demand and never modified afterwards.
type Projection struct {
	st      state.GameState
	catalog Catalog
	objects map[ecs.EntityID]*Object
	order   []ecs.EntityID
}

// State returns the raw state the projection was computed from.
func (p *Projection) State() state.GameState { return p.st }

// Catalog returns the catalog used for printed characteristics.
func (p *Projection) Catalog() Catalog { return p.catalog }

// Object returns the projected view of id. Battlefield permanents carry every
// continuous effect; objects in other zones have their printed characteristics.
func (p *Projection) Object(id ecs.EntityID) (Object, bool) {
	if o, ok := p.objects[id]; ok {
		return *o, true
	}
	return baseObject(p.st, p.catalog, id)
}

// Battlefield returns every permanent in ascending id order.
func (p *Projection) Battlefield() []Object {
	out := make([]Object, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, *p.objects[id])
	}
	return out
}

// Controller returns who controls id: the projected controller of a permanent,
// the controller of a stack object, or the owner of a card elsewhere.
func (p *Projection) Controller(id ecs.EntityID) state.PlayerID {
	o, _ := p.Object(id)
	return o.Controller
}

// Matching returns the permanents matching f from the point of view of an ability
// of source controlled by controller.
func (p *Projection) Matching(f state.Filter, source ecs.EntityID, controller state.PlayerID) []Object {
	var out []Object
	for _, id := range p.order {
		if o := p.objects[id]; Matches(f, *o, source, controller) {
			out = append(out, *o)
		}
	}
	return out
}

// Count evaluates a count description for controller.
func (p *Projection) Count(c state.Count, source ecs.EntityID, controller state.PlayerID) int {
	return count(p.st, p.catalog, p.objects, p.order, c, source, controller)
}

func count(st state.GameState, cat Catalog, objects map[ecs.EntityID]*Object, order []ecs.EntityID, c state.Count, source ecs.EntityID, controller state.PlayerID) int {
	if c.Zone == 0 || c.Zone == state.ZoneBattlefield {
		n := 0
		for _, id := range order {
			if Matches(c.Filter, *objects[id], source, controller) {
				n++
			}
		}
		return n
	}
	n := 0
	for _, pl := range st.PlayerOrder() {
		if !c.Owner.Holds(pl, controller) {
			continue
		}
		for _, id := range st.Zones().Contents(state.Owned(c.Zone, pl)) {
			if o, ok := baseObject(st, cat, id); ok && Matches(c.Filter, o, source, controller) {
				n++
			}
		}
	}
	return n
}

// baseObject builds an object with printed characteristics and raw status.
func baseObject(st state.GameState, cat Catalog, id ecs.EntityID) (Object, bool) {
	loc, ok := st.Locate(id)
	if !ok {
		return Object{}, false
	}
	o := Object{ID: id, Ref: state.EntityRef{ID: id, Incarnation: loc.Incarnation}, Zone: loc.Key}
	if card, ok := st.Card(id); ok {
		o.Card = card.Ref
		o.Owner = card.Owner
		o.Controller = card.Owner
		o.Token = card.Token
		if chars, ok := cat.Characteristics(card.Ref); ok {
			o.Characteristics = chars.Clone()
		}
	}
	if item, ok := st.StackItem(id); ok {
		o.Controller = item.Controller
		if o.Card == "" {
			o.Card = item.Ref
			if chars, ok := cat.Characteristics(item.Ref); ok {
				o.Name = chars.Name
				o.Colors = chars.Colors
			}
		}
	}
	if perm, ok := st.Permanent(id); ok {
		o.Controller = perm.Controller
		o.Tapped = perm.Tapped
		o.Damage = perm.Damage
		if st.IsCurrent(perm.AttachedTo) {
			o.AttachedTo = perm.AttachedTo.ID
		}
		o.EnteredAt = perm.EnteredAt
		o.SummoningSick = perm.SummoningSick
	}
	if combat, ok := st.Combat(id); ok {
		o.Attacking = combat.Attacking
		o.Blocking = combat.Blocking != 0
	}
	o.Counters = st.Counters(id)
	return o, true
}

func (p *Projection) clone() *Projection {
	cp := &Projection{st: p.st, catalog: p.catalog, order: p.order, objects: make(map[ecs.EntityID]*Object, len(p.objects))}
	for id, o := range p.objects {
		oc := *o
		oc.Characteristics = o.Characteristics.Clone()
		cp.objects[id] = &oc
	}
	return cp
}

// Project computes the projected view of st.
func Project(st state.GameState, catalog Catalog) *Projection {
	p := &Projection{st: st, catalog: catalog, objects: map[ecs.EntityID]*Object{}}
	for _, id := range st.Battlefield() {
		o, ok := baseObject(st, catalog, id)
		if !ok {
			continue
		}
		p.objects[id] = &o
		p.order = append(p.order, id)
	}
	slices.Sort(p.order)
	p.applyLayers()
	return p
}
