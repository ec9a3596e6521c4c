package effects

import (
	"slices"
	"sort"

	"github.com/wingedsheep/argentum-engine/internal/game/counters"
	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

// Recipient is a player or an object something happens to.
type Recipient struct {
	Player state.PlayerID
	Entity ecs.EntityID
}

// replacement is a replacement effect taking part in one event.
type replacement struct {
	rule       state.ReplacementRule
	source     state.EntityRef
	controller state.PlayerID
	timestamp  state.Timestamp
	affected   state.Affected
	player     state.PlayerID
	// floating is the index into the state's floating replacements, or -1 for printed ones.
	floating  int
	remaining int
}

// replacements lists every replacement effect in timestamp order: printed
// abilities of permanents that still have their abilities, then floating effects.
func (p *Projection) replacements() []replacement {
	return p.replacementsWith(p.st.Replacements())
}

func (p *Projection) replacementsWith(floating []state.ReplacementEffect) []replacement {
	var out []replacement
	for _, id := range p.order {
		o := p.objects[id]
		if o.LostAbilities {
			continue
		}
		for _, ra := range o.Replacements {
			out = append(out, replacement{
				rule: ra.Rule, source: o.Ref, controller: o.Controller,
				timestamp: o.EnteredAt, affected: ra.Affected, floating: -1,
			})
		}
	}
	for i, r := range floating {
		out = append(out, replacement{
			rule: r.Rule, source: r.Source, controller: r.Controller, timestamp: r.Timestamp,
			affected: r.Affected, player: r.Player, floating: i, remaining: r.Remaining,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].timestamp < out[j].timestamp })
	return out
}

func (p *Projection) replacementApplies(r replacement, to Recipient) bool {
	if to.Player != "" {
		return r.player == to.Player
	}
	if r.player != "" || r.affected == nil {
		return false
	}
	o, ok := p.Object(to.Entity)
	if !ok {
		return false
	}
	switch a := r.affected.(type) {
	case state.AffectSelf:
		return r.source.ID == to.Entity
	case state.AffectAttached:
		src, ok := p.objects[r.source.ID]
		return ok && src.AttachedTo == to.Entity
	case state.AffectEntities:
		return slices.Contains(a.Refs, o.Ref)
	case state.AffectFilter:
		return Matches(a.Filter, o, r.source.ID, r.controller)
	}
	return false
}

// PreventDamage applies damage prevention to amount damage about to be dealt to
// recipient. It returns the damage left and the state with used-up shields removed.
// Per rule 615, each prevention effect applies once, in timestamp order.
func (p *Projection) PreventDamage(st state.GameState, to Recipient, amount int) (int, state.GameState) {
	if amount <= 0 {
		return amount, st
	}
	floating := slices.Clone(st.Replacements())
	used := map[int]bool{}
	for _, r := range p.replacementsWith(floating) {
		rule, ok := r.rule.(state.PreventDamage)
		if !ok || !p.replacementApplies(r, to) {
			continue
		}
		if rule.Amount == 0 {
			amount = 0
			break
		}
		shield := rule.Amount
		if r.floating >= 0 {
			shield = r.remaining
		}
		prevented := min(shield, amount)
		amount -= prevented
		if r.floating >= 0 {
			floating[r.floating].Remaining -= prevented
			if floating[r.floating].Remaining <= 0 {
				used[r.floating] = true
			}
		}
		if amount == 0 {
			break
		}
	}
	kept := floating[:0:0]
	for i, r := range floating {
		if !used[i] {
			kept = append(kept, r)
		}
	}
	return amount, st.WithReplacements(kept)
}

// Destination returns the zone an object actually goes to when it would move to `to`.
func (p *Projection) Destination(id ecs.EntityID, to state.ZoneKey) state.ZoneKey {
	if to.Zone != state.ZoneGraveyard {
		return to
	}
	for _, r := range p.replacements() {
		if _, ok := r.rule.(state.ExileInsteadOfGraveyard); ok && p.replacementApplies(r, Recipient{Entity: id}) {
			return state.Exile
		}
	}
	return to
}

// EntryModifiers reports how an object about to enter the battlefield under
// controller enters: tapped, and with which counters. Its own printed replacement
// abilities apply along with those of permanents already on the battlefield.
func (p *Projection) EntryModifiers(id ecs.EntityID, controller state.PlayerID) (bool, counters.Counters) {
	var tapped bool
	var ctrs counters.Counters
	o, ok := p.Object(id)
	if !ok {
		return false, ctrs
	}
	o.Controller = controller
	applyRule := func(rule state.ReplacementRule) {
		switch r := rule.(type) {
		case state.EntersTapped:
			tapped = true
		case state.EntersWithCounters:
			ctrs = ctrs.Add(r.Type, r.Count)
		}
	}
	for _, ra := range o.Replacements {
		if _, self := ra.Affected.(state.AffectSelf); self {
			applyRule(ra.Rule)
		}
	}
	for _, r := range p.replacements() {
		if f, ok := r.affected.(state.AffectFilter); ok && r.source.ID != id && Matches(f.Filter, o, r.source.ID, r.controller) {
			applyRule(r.rule)
		}
	}
	return tapped, ctrs
}
