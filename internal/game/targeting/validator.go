package targeting

import (
	"fmt"

	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/effects"
	"github.com/wingedsheep/argentum-engine/internal/game/mana"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

// Source is the spell or ability doing the targeting.
type Source struct {
	ID         ecs.EntityID
	Controller state.PlayerID
	Colors     mana.Colors
}

// SourceOf describes a stack object or permanent as a targeting source, using
// its projected colors.
func SourceOf(p *effects.Projection, id ecs.EntityID, controller state.PlayerID) Source {
	src := Source{ID: id, Controller: controller}
	if o, ok := p.Object(id); ok {
		src.Colors = o.Colors
	}
	return src
}

// Matches reports whether the candidate satisfies the requirement's kind, zone and
// filter, ignoring whether the source may target it.
func Matches(r Requirement, t state.ChosenTarget, p *effects.Projection, src Source) bool {
	return matches(r, t, p, src) == nil
}

func matches(r Requirement, t state.ChosenTarget, p *effects.Projection, src Source) error {
	st := p.State()
	switch t := t.(type) {
	case state.PlayerTarget:
		if r.Kind != KindPlayer && r.Kind != KindAny {
			return fmt.Errorf("%s: %w", t, ErrWrongKind)
		}
		pl, ok := st.Player(t.Player)
		if !ok || !pl.InGame() {
			return fmt.Errorf("%s: %w", t, ErrNotFound)
		}
		if !r.Player.Holds(t.Player, src.Controller) {
			return fmt.Errorf("%s: %w", t, ErrFilter)
		}
		return nil
	case state.PermanentTarget:
		if r.Kind != KindPermanent && r.Kind != KindAny {
			return fmt.Errorf("%s: %w", t, ErrWrongKind)
		}
		if !st.IsCurrent(t.Ref) || !st.InZone(t.Ref.ID, state.ZoneBattlefield) {
			return fmt.Errorf("%s: %w", t, ErrNotFound)
		}
		o, _ := p.Object(t.Ref.ID)
		if r.Kind == KindAny && !o.IsCreature() {
			return fmt.Errorf("%s: %w", t, ErrFilter)
		}
		if !effects.Matches(r.Filter, o, src.ID, src.Controller) {
			return fmt.Errorf("%s: %w", t, ErrFilter)
		}
		return nil
	case state.SpellTarget:
		if r.Kind != KindSpell {
			return fmt.Errorf("%s: %w", t, ErrWrongKind)
		}
		if !st.IsCurrent(t.Ref) || !st.InZone(t.Ref.ID, state.ZoneStack) || t.Ref.ID == src.ID {
			return fmt.Errorf("%s: %w", t, ErrNotFound)
		}
		o, _ := p.Object(t.Ref.ID)
		if !effects.Matches(r.Filter, o, src.ID, src.Controller) {
			return fmt.Errorf("%s: %w", t, ErrFilter)
		}
		return nil
	case state.CardTarget:
		if r.Kind != KindCard {
			return fmt.Errorf("%s: %w", t, ErrWrongKind)
		}
		loc, ok := st.Locate(t.Ref.ID)
		if !ok || loc.Incarnation != t.Ref.Incarnation || loc.Key != t.Zone || loc.Key.Zone != r.cardZone() {
			return fmt.Errorf("%s: %w", t, ErrNotFound)
		}
		o, _ := p.Object(t.Ref.ID)
		if !r.Player.Holds(o.Owner, src.Controller) || !effects.Matches(r.Filter, o, src.ID, src.Controller) {
			return fmt.Errorf("%s: %w", t, ErrFilter)
		}
		return nil
	}
	return fmt.Errorf("%v: %w", t, ErrWrongKind)
}

// CanTarget reports whether src may target t at all: shroud, hexproof against
// opponents and protection from the source's colors. Per rule 702.11, 702.18, 702.16.
func CanTarget(t state.ChosenTarget, p *effects.Projection, src Source) error {
	pt, ok := t.(state.PermanentTarget)
	if !ok {
		return nil
	}
	o, ok := p.Object(pt.Ref.ID)
	if !ok {
		return fmt.Errorf("%s: %w", t, ErrNotFound)
	}
	switch {
	case o.HasKeyword(state.Shroud):
		return fmt.Errorf("%s has shroud: %w", o.Name, ErrUntargetable)
	case o.HasKeyword(state.Hexproof) && o.Controller != src.Controller:
		return fmt.Errorf("%s has hexproof: %w", o.Name, ErrUntargetable)
	case o.ProtectedFrom(src.Colors):
		return fmt.Errorf("%s has protection from %s: %w", o.Name, src.Colors, ErrUntargetable)
	}
	return nil
}

// Legal checks a single target against the requirement and the source.
func Legal(r Requirement, t state.ChosenTarget, p *effects.Projection, src Source) error {
	if err := matches(r, t, p, src); err != nil {
		return err
	}
	return CanTarget(t, p, src)
}

// Validate checks a complete choice of targets for one requirement: the count is
// within [effectiveMin, count], no target repeats, and each target is legal for
// the source controlled by the chooser.
func Validate(chosen []state.ChosenTarget, r Requirement, p *effects.Projection, src Source) error {
	if err := r.Check(); err != nil {
		return err
	}
	if len(chosen) < r.EffectiveMin() {
		return fmt.Errorf("%q: %w (need %d, got %d)", r.Description, ErrTooFewTargets, r.EffectiveMin(), len(chosen))
	}
	if len(chosen) > r.Count {
		return fmt.Errorf("%q: %w (max %d, got %d)", r.Description, ErrTooManyTargets, r.Count, len(chosen))
	}
	for i, t := range chosen {
		for _, prev := range chosen[:i] {
			if state.SameTarget(prev, t) {
				return fmt.Errorf("%q: %w: %s", r.Description, ErrDuplicateTarget, t)
			}
		}
		if err := Legal(r, t, p, src); err != nil {
			return fmt.Errorf("%q: %w", r.Description, err)
		}
	}
	return nil
}

// Candidates lists every legal target for the requirement in a stable order:
// players in turn order, then objects by id.
func Candidates(r Requirement, p *effects.Projection, src Source) []state.ChosenTarget {
	st := p.State()
	var pool []state.ChosenTarget
	if r.Kind == KindPlayer || r.Kind == KindAny {
		for _, pl := range st.PlayerOrder() {
			pool = append(pool, state.PlayerTarget{Player: pl})
		}
	}
	switch r.Kind {
	case KindPermanent, KindAny:
		for _, o := range p.Battlefield() {
			pool = append(pool, state.PermanentTarget{Ref: o.Ref})
		}
	case KindSpell:
		for _, id := range st.StackOrder() {
			pool = append(pool, state.SpellTarget{Ref: st.Ref(id)})
		}
	case KindCard:
		for _, pl := range st.PlayerOrder() {
			key := state.Owned(r.cardZone(), pl)
			for _, id := range st.Zones().Contents(key) {
				pool = append(pool, state.CardTarget{Ref: st.Ref(id), Zone: key})
			}
		}
	}
	var out []state.ChosenTarget
	for _, t := range pool {
		if Legal(r, t, p, src) == nil {
			out = append(out, t)
		}
	}
	return out
}
