package rules

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/effects"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

const poisonLimit = 10

// CheckStateBasedActions performs state-based actions until none apply. Each
// pass looks at one projection and performs everything that applies to it at
// once. Per rule 704.3. The legend rule, which needs a player's choice, is only
// asked once nothing else applies.
func (r *Rules) CheckStateBasedActions(st state.GameState) (state.GameState, bool, error) {
	acted := false
	for i := 0; i < r.opts.MaxIterations; i++ {
		if st.IsOver() || st.Pending() != nil {
			return st, acted, nil
		}
		next, did, err := r.statePass(st)
		if err != nil {
			return st, acted, err
		}
		st = next
		if !did {
			return r.pruneFloating(st), acted, nil
		}
		acted = true
	}
	return st, acted, invariant("state-based actions", ErrDidNotSettle)
}

// statePass performs one batch of state-based actions.
func (r *Rules) statePass(st state.GameState) (state.GameState, bool, error) {
	did := false

	// Per rule 704.5a-c.
	for _, pl := range st.Players() {
		if !pl.InGame() {
			continue
		}
		reason := ""
		switch {
		case pl.Life <= 0:
			reason = "life"
		case pl.DrewFromEmpty:
			reason = "drew from empty library"
		case pl.Poison >= poisonLimit:
			reason = "poison"
		}
		if reason == "" {
			continue
		}
		pl.Lost = true
		st = st.WithPlayer(pl)
		st = r.emit(st, state.Event{Type: state.EventPlayerLost, Player: pl.ID})
		r.logger.Info("Player lost", zap.String("game", st.ID()), zap.String("player", string(pl.ID)), zap.String("reason", reason))
		did = true
	}
	if remaining := inGame(st); len(remaining) <= 1 {
		winner := state.PlayerID("")
		if len(remaining) == 1 {
			winner = remaining[0]
		}
		r.logger.Info("Game over", zap.String("game", st.ID()), zap.String("winner", string(winner)))
		return st.WithWinner(winner), true, nil
	}

	// Per rule 704.5d-e: tokens and spell copies that left their zone cease to exist.
	var gone []ecs.EntityID
	for _, id := range st.Store().Entities() {
		c, ok := st.Card(id)
		if !ok {
			continue
		}
		if (c.Token && !st.InZone(id, state.ZoneBattlefield)) || (c.Copy && !st.InZone(id, state.ZoneStack)) {
			gone = append(gone, id)
		}
	}
	for _, id := range gone {
		var err error
		if st, err = st.Destroy(id); err != nil {
			return st, did, invariant("state-based actions", err)
		}
		did = true
	}

	p := r.Project(st)
	var toGraveyard, destroyed []ecs.EntityID
	var countered []ecs.EntityID
	legends := map[string][]ecs.EntityID{}
	for _, o := range p.Battlefield() {
		if o.IsCreature() {
			// Per rule 704.5f-h.
			switch {
			case o.Toughness <= 0:
				toGraveyard = append(toGraveyard, o.ID)
				continue
			case o.Damage > 0 && o.Damage >= o.Toughness, o.Damage > 0 && r.deathtouched(st, o.ID):
				if !o.HasKeyword(state.Indestructible) {
					destroyed = append(destroyed, o.ID)
					continue
				}
			}
		}
		// Per rule 704.5m.
		if o.HasSubtype("Aura") && !r.legallyAttached(p, o) {
			toGraveyard = append(toGraveyard, o.ID)
			continue
		}
		// Per rule 704.5q.
		if _, changed := o.Counters.Annihilate(); changed {
			countered = append(countered, o.ID)
		}
		if o.IsLegendary() {
			key := fmt.Sprintf("%s\x00%s", o.Controller, o.Name)
			legends[key] = append(legends[key], o.ID)
		}
	}
	var err error
	for _, id := range countered {
		ctrs, _ := st.Counters(id).Annihilate()
		if ctrs.IsEmpty() {
			st, err = st.Unset(id, state.KindCounters)
		} else {
			st, err = st.Set(id, state.CountersComponent{Counters: ctrs})
		}
		if err != nil {
			return st, did, invariant("state-based actions", err)
		}
		did = true
	}
	for _, id := range append(toGraveyard, destroyed...) {
		if !st.InZone(id, state.ZoneBattlefield) {
			continue
		}
		if st, err = r.moveTo(st, id, state.ZoneGraveyard, state.Top(), ""); err != nil {
			return st, did, invariant("state-based actions", err)
		}
		did = true
	}
	if did {
		return st, true, nil
	}

	// Per rule 704.5j.
	keys := make([]string, 0, len(legends))
	for k, ids := range legends {
		if len(ids) > 1 {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return st, false, nil
	}
	sort.Strings(keys)
	ids := legends[keys[0]]
	owner := p.Controller(ids[0])
	opts := make([]state.Option, len(ids))
	for i, id := range ids {
		o, _ := p.Object(id)
		opts[i] = state.Option{ID: i, Label: o.Name, Entity: id}
	}
	st = r.ask(st, state.DecisionRequest{
		Player:  owner,
		Kind:    state.DecisionLegendRule,
		Prompt:  "Choose the legendary permanent to keep",
		Options: opts,
		Min:     1,
		Max:     1,
	}, LegendRule{Candidates: ids})
	return st, true, nil
}

func (r *Rules) deathtouched(st state.GameState, id ecs.EntityID) bool {
	perm, ok := st.Permanent(id)
	return ok && perm.DeathtouchDamage
}

// legallyAttached reports whether an Aura is attached to a permanent on the
// battlefield that its enchant restriction allows and that is not protected
// from it. A host that left the battlefield since is not the same permanent.
func (r *Rules) legallyAttached(p *effects.Projection, aura effects.Object) bool {
	if aura.AttachedTo == 0 {
		return false
	}
	h, ok := p.Object(aura.AttachedTo)
	if !ok || h.Zone.Zone != state.ZoneBattlefield {
		return false
	}
	if !effects.Matches(r.enchantFilter(aura.Card), h, aura.ID, aura.Controller) {
		return false
	}
	return !h.ProtectedFrom(aura.Colors)
}

// enchantFilter is what an Aura may enchant: what its spell targets, or
// creatures for an Aura without a target.
func (r *Rules) enchantFilter(ref state.CardRef) state.Filter {
	def, err := r.definition(ref)
	if err != nil || def.Spell == nil || len(def.Spell.Targets) == 0 {
		return state.Creatures()
	}
	return def.Spell.Targets[0].Filter
}

// pruneFloating drops floating effects that last while their source is on the
// battlefield once the source has left.
func (r *Rules) pruneFloating(st state.GameState) state.GameState {
	fx := st.Floating()
	kept := fx[:0:0]
	for _, e := range fx {
		if e.Duration == state.WhileSourceOnBattlefield && !(st.IsCurrent(e.Source) && st.InZone(e.Source.ID, state.ZoneBattlefield)) {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) == len(fx) {
		return st
	}
	return st.WithFloating(kept)
}
