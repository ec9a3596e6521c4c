package rules

import (
	"go.uber.org/zap"

	"github.com/wingedsheep/argentum-engine/internal/game/card"
	"github.com/wingedsheep/argentum-engine/internal/game/effects"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
	"github.com/wingedsheep/argentum-engine/internal/game/targeting"
)

// sorceryTiming reports whether player could cast a sorcery now: it is their
// main phase and the stack is empty. Per rule 307.1.
func sorceryTiming(st state.GameState, player state.PlayerID) bool {
	t := st.Turn()
	return t.Active == player && t.Step.IsMain() && st.StackEmpty()
}

// checkTargets validates the targets chosen for a script's chosen modes.
func checkTargets(p *effects.Projection, s card.Script, modes []int, chosen [][]state.ChosenTarget, src targeting.Source) error {
	reqs := s.Requirements(modes)
	if len(chosen) > len(reqs) {
		return targeting.ErrTooManyTargets
	}
	for i, req := range reqs {
		var ts []state.ChosenTarget
		if i < len(chosen) {
			ts = chosen[i]
		}
		if err := targeting.Validate(ts, req, p, src); err != nil {
			return err
		}
	}
	return nil
}

// checkX rejects a value for X when the cost has no {X}, and negative values.
func checkX(cost card.Cost, x int) bool {
	return x >= 0 && (cost.Mana.X > 0 || x == 0)
}

// castSpell casts a spell from the player's hand with targets, modes and X
// chosen up front, and pays its mana cost. Per rule 601.2.
func (r *Rules) castSpell(st state.GameState, player state.PlayerID, a CastSpell) (state.GameState, error) {
	op := a.Name()
	if loc, ok := st.Locate(a.Card); !ok || loc.Key != state.Owned(state.ZoneHand, player) {
		return st, illegal(op, ErrNotInHand, "%s", a.Card)
	}
	c, _ := st.Card(a.Card)
	def, err := r.definition(c.Ref)
	if err != nil {
		return st, invariant(op, err)
	}
	if def.IsLand() {
		return st, illegal(op, ErrNotAllowed, "%s is a land", def.Name)
	}
	if !def.HasType(state.TypeInstant) && !def.HasKeyword(state.Flash) && !sorceryTiming(st, player) {
		return st, illegal(op, ErrTiming, "%s can only be cast at sorcery speed", def.Name)
	}
	var script card.Script
	if def.Spell != nil {
		script = *def.Spell
	}
	if err := script.CheckModes(a.Modes); err != nil {
		return st, illegal(op, ErrNotAllowed, "%s: %v", def.Name, err)
	}
	if !checkX(card.Cost{Mana: def.ManaCost}, a.X) {
		return st, illegal(op, ErrNotAllowed, "X=%d for %s", a.X, def.Name)
	}
	p := r.Project(st)
	if err := checkTargets(p, script, a.Modes, a.Targets, targeting.SourceOf(p, a.Card, player)); err != nil {
		return st, illegal(op, ErrBadTargets, "%s: %v", def.Name, err)
	}

	if st, err = r.payMana(st, player, def.ManaCost, a.X, 0); err != nil {
		return st, err
	}
	if st, err = r.moveTo(st, a.Card, state.ZoneStack, state.Top(), player); err != nil {
		return st, invariant(op, err)
	}
	ts, st := st.NextTimestamp()
	st, err = st.Set(a.Card, state.StackComponent{
		ItemKind:   state.StackSpell,
		Controller: player,
		Ref:        c.Ref,
		Targets:    a.Targets,
		Modes:      a.Modes,
		X:          a.X,
		PutAt:      ts,
	})
	if err != nil {
		return st, invariant(op, err)
	}
	r.logger.Debug("Spell cast",
		zap.String("game", st.ID()),
		zap.String("player", string(player)),
		zap.String("card", string(c.Ref)))
	st = r.emit(st, state.Event{Type: state.EventSpellCast, Entity: st.Ref(a.Card), Ref: c.Ref, Controller: player, Player: player})
	t := st.Turn()
	t.Passes = 0
	return st.WithTurn(t), nil
}
