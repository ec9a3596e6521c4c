package rules

import (
	"go.uber.org/zap"

	"github.com/wingedsheep/argentum-engine/internal/game/card"
	"github.com/wingedsheep/argentum-engine/internal/game/condition"
	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/effects"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
	"github.com/wingedsheep/argentum-engine/internal/game/targeting"
)

// Push puts an ability on top of the stack and returns its stack object.
// Spells are put on the stack by casting them.
func (r *Rules) Push(st state.GameState, item state.StackComponent) (ecs.EntityID, state.GameState, error) {
	ts, st := st.NextTimestamp()
	item.PutAt = ts
	id, st, err := st.Create(state.Stack, state.Top(), item)
	if err != nil {
		return 0, st, invariant("push", err)
	}
	r.logger.Debug("Pushed onto stack",
		zap.String("game", st.ID()),
		zap.Uint64("entity", uint64(id)),
		zap.String("kind", item.ItemKind.String()),
		zap.String("card", string(item.Ref)))
	return id, st, nil
}

// script returns what a stack object does when it resolves, and its
// intervening-if condition for triggered abilities.
func (r *Rules) script(item state.StackComponent) (*card.Script, condition.Condition, error) {
	def, err := r.definition(item.Ref)
	if err != nil {
		return nil, nil, err
	}
	switch item.ItemKind {
	case state.StackActivated:
		if item.AbilityIndex < 0 || item.AbilityIndex >= len(def.Activated) {
			return nil, nil, ErrNoSuchAbility
		}
		s := def.Activated[item.AbilityIndex].Script
		return &s, nil, nil
	case state.StackTriggered:
		if item.AbilityIndex < 0 || item.AbilityIndex >= len(def.Triggered) {
			return nil, nil, ErrNoSuchAbility
		}
		t := def.Triggered[item.AbilityIndex]
		return &t.Script, t.If, nil
	}
	return def.Spell, nil, nil
}

// stackSource is the object a stack item targets from: the spell itself, or the
// source of an ability.
func stackSource(id ecs.EntityID, item state.StackComponent) ecs.EntityID {
	if item.ItemKind == state.StackSpell {
		return id
	}
	return item.Source.ID
}

// targetingSource describes a stack item as a targeting source. An ability
// whose source is gone uses the source's printed colors.
func (r *Rules) targetingSource(p *effects.Projection, id ecs.EntityID, item state.StackComponent) targeting.Source {
	src := targeting.SourceOf(p, stackSource(id, item), item.Controller)
	if item.ItemKind != state.StackSpell && !p.State().IsCurrent(item.Source) {
		if chars, ok := r.catalog.Characteristics(item.Ref); ok {
			src.Colors = chars.Colors
		}
	}
	return src
}

// ResolveTop resolves the top object of the stack. Its targets are checked
// again first: if every target became illegal the object is removed without
// effect and nothing paid is refunded. Per rule 608.2b.
// Resolving with an empty stack is a protocol violation.
func (r *Rules) ResolveTop(st state.GameState) (state.GameState, error) {
	id, ok := st.TopOfStack()
	if !ok {
		return st, protocol("resolve", ErrEmptyStack, "")
	}
	item, ok := st.StackItem(id)
	if !ok {
		return st, invariant("resolve", state.ErrInvariant)
	}
	script, intervening, err := r.script(item)
	if err != nil {
		return st, invariant("resolve", err)
	}
	p := r.Project(st)
	r.logger.Debug("Resolving",
		zap.String("game", st.ID()),
		zap.Uint64("entity", uint64(id)),
		zap.String("kind", item.ItemKind.String()),
		zap.String("card", string(item.Ref)))

	res := &Resolution{
		Item:       id,
		Kind:       item.ItemKind,
		Ref:        item.Ref,
		Source:     item.Source,
		Controller: item.Controller,
		X:          item.X,
		Event:      item.Trigger,
	}
	if item.ItemKind == state.StackSpell {
		res.Source = st.Ref(id)
	}
	if script == nil {
		return r.finish(st, res)
	}

	reqs := script.Requirements(item.Modes)
	src := r.targetingSource(p, id, item)
	legal, chosen, kept := make([][]state.ChosenTarget, len(reqs)), 0, 0
	for i, req := range reqs {
		if i >= len(item.Targets) {
			break
		}
		for _, t := range item.Targets[i] {
			chosen++
			if targeting.Legal(req, t, p, src) == nil {
				legal[i] = append(legal[i], t)
				kept++
			}
		}
	}
	res.Targets = legal
	if chosen > 0 && (kept == 0 || (script.Fizzle == card.AllOrNothing && kept < chosen)) {
		return r.fizzle(st, id, item)
	}
	if intervening != nil && !condition.Evaluate(intervening, p, item.Source.ID, item.Controller) {
		r.logger.Debug("Intervening condition no longer holds", zap.Uint64("entity", uint64(id)))
		return r.remove(st, id, item)
	}
	if body := script.Body(item.Modes); body != nil {
		res.Frames = []Frame{{Effect: body}}
	}
	return r.execute(st, *res)
}

// fizzle removes a stack object whose targets all became illegal.
func (r *Rules) fizzle(st state.GameState, id ecs.EntityID, item state.StackComponent) (state.GameState, error) {
	r.logger.Debug("Fizzled", zap.String("game", st.ID()), zap.Uint64("entity", uint64(id)), zap.String("card", string(item.Ref)))
	st = r.emit(st, state.Event{Type: state.EventFizzled, Entity: st.Ref(id), Ref: item.Ref, Controller: item.Controller})
	return r.remove(st, id, item)
}

// remove takes a stack object off the stack without resolving it: spells go to
// their owner's graveyard, abilities cease to exist.
func (r *Rules) remove(st state.GameState, id ecs.EntityID, item state.StackComponent) (state.GameState, error) {
	var err error
	if item.ItemKind == state.StackSpell {
		st, err = r.moveTo(st, id, state.ZoneGraveyard, state.Top(), "")
	} else {
		st, err = st.Destroy(id)
	}
	if err != nil {
		return st, invariant("resolve", err)
	}
	return grantPriority(st), nil
}

// finish completes a resolution: a permanent spell enters the battlefield, any
// other spell goes to its owner's graveyard and an ability ceases to exist.
// Per rule 608.2n and 608.3.
func (r *Rules) finish(st state.GameState, res *Resolution) (state.GameState, error) {
	if res.Item == 0 {
		// Mana abilities never were on the stack; priority stays where it was.
		return st, nil
	}
	ref := st.Ref(res.Item)
	if st.InZone(res.Item, state.ZoneStack) {
		var err error
		switch {
		case res.Kind != state.StackSpell:
			st, err = st.Destroy(res.Item)
		default:
			st, err = r.finishSpell(st, res)
		}
		if err != nil {
			return st, invariant("resolve", err)
		}
	}
	st = r.emit(st, state.Event{Type: state.EventResolved, Entity: ref, Ref: res.Ref, Controller: res.Controller})
	return grantPriority(st), nil
}

func (r *Rules) finishSpell(st state.GameState, res *Resolution) (state.GameState, error) {
	c, _ := st.Card(res.Item)
	if c.Copy {
		return st.Destroy(res.Item)
	}
	def, err := r.definition(c.Ref)
	if err != nil {
		return st, err
	}
	if !def.IsPermanent() {
		return r.moveTo(st, res.Item, state.ZoneGraveyard, state.Top(), "")
	}
	// An Aura spell enters attached to its target. Per rule 303.4f.
	var attach state.EntityRef
	if def.HasSubtype("Aura") {
		for _, ts := range res.Targets {
			for _, t := range ts {
				if pt, ok := t.(state.PermanentTarget); ok && st.IsCurrent(pt.Ref) {
					attach = pt.Ref
				}
			}
		}
	}
	if st, err = r.moveTo(st, res.Item, state.ZoneBattlefield, state.Top(), res.Controller); err != nil {
		return st, err
	}
	if attach.ID != 0 {
		perm, _ := st.Permanent(res.Item)
		perm.AttachedTo = attach
		st, err = st.Set(res.Item, perm)
	}
	return st, err
}
