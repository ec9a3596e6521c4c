package rules

import (
	"go.uber.org/zap"

	"github.com/wingedsheep/argentum-engine/internal/game/card"
	"github.com/wingedsheep/argentum-engine/internal/game/condition"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
	"github.com/wingedsheep/argentum-engine/internal/game/targeting"
)

// activate activates an ability of a permanent the player controls. Mana
// abilities resolve at once without using the stack (rule 605.3); every other
// ability goes on the stack (rule 602.2).
func (r *Rules) activate(st state.GameState, player state.PlayerID, a ActivateAbility) (state.GameState, error) {
	op := a.Name()
	p := r.Project(st)
	o, ok := p.Object(a.Source)
	if !ok || o.Zone.Zone != state.ZoneBattlefield {
		return st, illegal(op, ErrNotAllowed, "%s is not a permanent", a.Source)
	}
	if o.Controller != player {
		return st, illegal(op, ErrNotAllowed, "%s does not control %s", player, o.Name)
	}
	if o.LostAbilities {
		return st, illegal(op, ErrNoSuchAbility, "%s has no abilities", o.Name)
	}
	def, err := r.definition(o.Card)
	if err != nil {
		return st, invariant(op, err)
	}
	if a.Index < 0 || a.Index >= len(def.Activated) {
		return st, illegal(op, ErrNoSuchAbility, "%s has no ability %d", o.Name, a.Index)
	}
	ab := def.Activated[a.Index]
	if !ab.IsMana && ab.Timing == card.TimingSorcery && !sorceryTiming(st, player) {
		return st, illegal(op, ErrTiming, "%s can only be activated at sorcery speed", ab.Description)
	}
	if ab.Condition != nil && !condition.Evaluate(ab.Condition, p, o.ID, player) {
		return st, illegal(op, ErrNotAllowed, "%s: %s", o.Name, condition.Describe(ab.Condition))
	}
	if err := ab.CheckModes(a.Modes); err != nil {
		return st, illegal(op, ErrNotAllowed, "%s: %v", o.Name, err)
	}
	if !checkX(ab.Cost, a.X) {
		return st, illegal(op, ErrNotAllowed, "X=%d for %s", a.X, ab.Description)
	}
	if err := checkTargets(p, ab.Script, a.Modes, a.Targets, targeting.SourceOf(p, o.ID, player)); err != nil {
		return st, illegal(op, ErrBadTargets, "%s: %v", o.Name, err)
	}

	ref := o.Ref
	if st, err = r.payCosts(st, player, o, ab.Cost, a.X); err != nil {
		return st, err
	}
	if ab.IsMana {
		res := Resolution{Kind: state.StackActivated, Ref: o.Card, Source: ref, Controller: player, Targets: a.Targets, X: a.X}
		if body := ab.Body(a.Modes); body != nil {
			res.Frames = []Frame{{Effect: body}}
		}
		st, _, err = r.runFrames(st, res)
		return st, err
	}

	id, st, err := r.Push(st, state.StackComponent{
		ItemKind:     state.StackActivated,
		Controller:   player,
		Source:       ref,
		Ref:          o.Card,
		AbilityIndex: a.Index,
		Targets:      a.Targets,
		Modes:        a.Modes,
		X:            a.X,
	})
	if err != nil {
		return st, err
	}
	r.logger.Debug("Ability activated",
		zap.String("game", st.ID()),
		zap.String("player", string(player)),
		zap.String("card", string(o.Card)),
		zap.Int("index", a.Index))
	st = r.emit(st, state.Event{Type: state.EventAbilityActivated, Entity: st.Ref(id), Ref: o.Card, Controller: player, Source: o.ID})
	t := st.Turn()
	t.Passes = 0
	return st.WithTurn(t), nil
}
