package rules

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/wingedsheep/argentum-engine/internal/game/mana"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

// baseTurnSequence is the turn structure without a first strike damage step.
var baseTurnSequence = []state.Step{
	state.StepUntap,
	state.StepUpkeep,
	state.StepDraw,
	state.StepMain1,
	state.StepBeginCombat,
	state.StepDeclareAttackers,
	state.StepDeclareBlockers,
	state.StepCombatDamage,
	state.StepEndCombat,
	state.StepMain2,
	state.StepEnd,
	state.StepCleanup,
}

// buildTurnSequence returns the steps of a turn, with a first strike damage step
// before the combat damage step when hasFirstStrike is set. Per rule 510.4.
func buildTurnSequence(hasFirstStrike bool) []state.Step {
	sequence := slices.Clone(baseTurnSequence)
	if !hasFirstStrike {
		return sequence
	}
	damageIdx := slices.Index(sequence, state.StepCombatDamage)
	return slices.Insert(sequence, damageIdx, state.StepFirstStrikeDamage)
}

// grantsPriority reports whether players get priority during a step.
// Per rules 502.4 and 514.3.
func grantsPriority(s state.Step) bool {
	return s != state.StepUntap && s != state.StepCleanup
}

// Start begins the first turn of a game whose players, libraries and hands are
// set up, and runs it until the starting player has priority.
func (r *Rules) Start(st state.GameState) (state.GameState, error) {
	t := st.Turn()
	if t.Number != 0 {
		return st, protocol("start", ErrNotAllowed, "game already started")
	}
	t.Number = 1
	if t.Starting == "" {
		t.Starting = t.Active
	}
	st = st.WithTurn(t)
	r.logger.Info("Game started", zap.String("game", st.ID()), zap.String("starting", string(t.Starting)))
	st, err := r.beginStep(st, state.StepUntap)
	if err != nil {
		return st, err
	}
	return r.run(st)
}

// advance ends the current step and begins the next one, or the next turn after
// cleanup. A cleanup step in which players received priority is followed by
// another one. Mana pools empty between steps. Per rule 500.4.
func (r *Rules) advance(st state.GameState) (state.GameState, error) {
	t := st.Turn()
	st = r.endStep(st, t.Step)

	seq := buildTurnSequence(t.FirstStrike)
	i := slices.Index(seq, t.Step)
	if i < 0 {
		return st, invariant("advance", fmt.Errorf("step %s is not part of the turn", t.Step))
	}
	if i == len(seq)-1 {
		// Per rule 514.3a.
		if t.CleanupAgain {
			return r.beginStep(st, state.StepCleanup)
		}
		return r.beginTurn(st)
	}
	next := seq[i+1]
	// Per rule 508.8 without attackers the blockers and damage steps are skipped.
	if t.Step == state.StepDeclareAttackers && !r.anyAttackers(st) {
		next = state.StepEndCombat
	}
	return r.beginStep(st, next)
}

// endStep performs what happens as a step ends.
func (r *Rules) endStep(st state.GameState, step state.Step) state.GameState {
	for _, pl := range st.Players() {
		if pl.Pool.Total() > 0 {
			pl.Pool = mana.Pool{}
			st = st.WithPlayer(pl)
		}
	}
	if step == state.StepEndCombat {
		// Per rule 511.3 creatures leave combat as the end of combat step ends.
		st = r.removeFromCombat(st)
		st = expire(st, func(d state.Duration, _ state.PlayerID, _ int) bool { return d == state.UntilEndOfCombat })
	}
	return st
}

// beginTurn makes the next player in turn order the active player. Per rule 500.
func (r *Rules) beginTurn(st state.GameState) (state.GameState, error) {
	t := st.Turn()
	active := st.NextPlayer(t.Active)
	st = st.WithTurn(state.TurnPosition{Number: t.Number + 1, Active: active, Step: state.StepUntap, Starting: t.Starting})
	st = st.WithStats(state.TurnStats{})
	for _, pl := range st.Players() {
		pl.LandsPlayed = 0
		st = st.WithPlayer(pl)
	}
	// Per rule 611.2b effects lasting until a player's next turn end as it begins.
	st = expire(st, func(d state.Duration, controller state.PlayerID, _ int) bool {
		return d == state.UntilYourNextTurn && controller == active
	})
	r.logger.Debug("Turn began", zap.String("game", st.ID()), zap.Int("turn", t.Number+1), zap.String("active", string(active)))
	return r.beginStep(st, state.StepUntap)
}

// beginStep enters a step and performs its turn-based actions.
func (r *Rules) beginStep(st state.GameState, step state.Step) (state.GameState, error) {
	t := st.Turn()
	t.Step = step
	t.Priority = ""
	t.Passes = 0
	t.CleanupAgain = false
	if step == state.StepUntap {
		t.FirstStrike = false
	}
	st = st.WithTurn(t)
	active := t.Active

	var err error
	switch step {
	case state.StepUntap:
		// Per rule 502.3.
		return r.untapStep(st)
	case state.StepDraw:
		// Per rule 103.8a the starting player skips the draw of their first turn.
		if !(t.Number == 1 && active == t.Starting) {
			if st, err = r.draw(st, active, 1); err != nil {
				return st, invariant("draw step", err)
			}
		}
	case state.StepDeclareAttackers:
		next, asked := r.askAttackers(st)
		if asked {
			return next, nil
		}
		return grantPriority(next), nil
	case state.StepDeclareBlockers:
		next, asked := r.askBlockers(st, r.defenders(st))
		if asked {
			return next, nil
		}
		return grantPriority(r.markFirstStrike(next)), nil
	case state.StepFirstStrikeDamage:
		if st, err = r.combatDamage(st, true); err != nil {
			return st, err
		}
	case state.StepCombatDamage:
		if st, err = r.combatDamage(st, false); err != nil {
			return st, err
		}
	case state.StepCleanup:
		return r.cleanupStep(st)
	}
	st = r.emit(st, state.Event{Type: state.EventStepBegan, Step: step, Player: active})
	return grantPriority(st), nil
}

func (r *Rules) untapStep(st state.GameState) (state.GameState, error) {
	active := st.Turn().Active
	p := r.Project(st)
	for _, o := range p.Battlefield() {
		if o.Controller != active {
			continue
		}
		perm, _ := st.Permanent(o.ID)
		if !perm.Tapped && !perm.SummoningSick {
			continue
		}
		perm.Tapped = false
		perm.SummoningSick = false
		var err error
		if st, err = st.Set(o.ID, perm); err != nil {
			return st, invariant("untap step", err)
		}
	}
	return st, nil
}

// cleanupStep discards down to hand size, then removes damage and ends
// "until end of turn" effects. Per rule 514.
func (r *Rules) cleanupStep(st state.GameState) (state.GameState, error) {
	active := st.Turn().Active
	pl, _ := st.Player(active)
	hand := st.Hand(active)
	if excess := len(hand) - pl.MaxHandSize; pl.MaxHandSize > 0 && excess > 0 {
		return r.ask(st, state.DecisionRequest{
			Player:  active,
			Kind:    state.DecisionDiscard,
			Prompt:  fmt.Sprintf("Discard %d card(s) down to your maximum hand size", excess),
			Options: cardOptions(st, hand),
			Min:     excess,
			Max:     excess,
		}, CleanupDiscard{}), nil
	}
	return r.finishCleanup(st)
}

func (r *Rules) resumeCleanup(st state.GameState, req state.DecisionRequest, choices []int) (state.GameState, error) {
	for _, c := range choices {
		var err error
		if st, err = r.discard(st, req.Options[c].Entity); err != nil {
			return st, invariant("cleanup", err)
		}
	}
	return r.finishCleanup(st)
}

// finishCleanup removes damage and ends turn-long effects. If that leads to
// state-based actions or triggers, players get priority. Per rule 514.3a.
func (r *Rules) finishCleanup(st state.GameState) (state.GameState, error) {
	for _, id := range st.Battlefield() {
		perm, _ := st.Permanent(id)
		if perm.Damage == 0 && !perm.DeathtouchDamage {
			continue
		}
		perm.Damage = 0
		perm.DeathtouchDamage = false
		var err error
		if st, err = st.Set(id, perm); err != nil {
			return st, invariant("cleanup", err)
		}
	}
	st = expire(st, func(d state.Duration, _ state.PlayerID, _ int) bool {
		return d == state.UntilEndOfTurn || d == state.UntilEndOfCombat
	})
	st, changed, err := r.settle(st)
	if err != nil || st.Pending() != nil || st.IsOver() {
		return st, err
	}
	if changed {
		return grantPriority(st), nil
	}
	return st, nil
}

// expire removes floating continuous and replacement effects for which ends
// reports true.
func expire(st state.GameState, ends func(d state.Duration, controller state.PlayerID, turn int) bool) state.GameState {
	var fx []state.ContinuousEffect
	for _, e := range st.Floating() {
		if !ends(e.Duration, e.Controller, e.Turn) {
			fx = append(fx, e)
		}
	}
	var rs []state.ReplacementEffect
	for _, e := range st.Replacements() {
		if !ends(e.Duration, e.Controller, e.Turn) {
			rs = append(rs, e)
		}
	}
	return st.WithFloating(fx).WithReplacements(rs)
}
