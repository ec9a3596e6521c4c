package rules

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/effects"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

// canAttack reports whether a permanent may be declared as an attacker.
// Per rule 508.1a and 302.6.
func canAttack(o effects.Object, active state.PlayerID) bool {
	if o.Controller != active || !o.IsCreature() || o.Tapped || o.HasKeyword(state.Defender) {
		return false
	}
	return !o.SummoningSick || o.HasKeyword(state.Haste)
}

// canBlock reports whether blocker may block attacker. Per rules 702.9b, 702.17b
// and 702.16b.
func canBlock(blocker, attacker effects.Object) bool {
	if !blocker.IsCreature() || blocker.Tapped {
		return false
	}
	if attacker.HasKeyword(state.Flying) && !blocker.HasKeyword(state.Flying) && !blocker.HasKeyword(state.Reach) {
		return false
	}
	return !attacker.ProtectedFrom(blocker.Colors)
}

func (r *Rules) anyAttackers(st state.GameState) bool {
	for _, id := range ecs.All[state.CombatComponent](st.Store()) {
		if c, _ := st.Combat(id); c.Attacking {
			return true
		}
	}
	return false
}

// askAttackers asks the active player to declare attackers. Nothing is asked
// when no creature can attack.
func (r *Rules) askAttackers(st state.GameState) (state.GameState, bool) {
	active := st.Turn().Active
	p := r.Project(st)
	var opts []state.Option
	attackers := 0
	for _, o := range p.Battlefield() {
		if !canAttack(o, active) {
			continue
		}
		attackers++
		for _, d := range st.Opponents(active) {
			opts = append(opts, state.Option{ID: len(opts), Label: fmt.Sprintf("%s attacks %s", o.Name, d), Entity: o.ID, Player: d})
		}
	}
	if len(opts) == 0 {
		return st, false
	}
	return r.ask(st, state.DecisionRequest{
		Player:  active,
		Kind:    state.DecisionDeclareAttackers,
		Prompt:  "Declare attackers",
		Options: opts,
		Min:     0,
		Max:     attackers,
	}, AwaitAttackers{}), true
}

// declareAttackers turns the chosen options into attacking creatures.
// Per rule 508.1.
func (r *Rules) declareAttackers(st state.GameState, req state.DecisionRequest, choices []int) (state.GameState, error) {
	const op = "declare attackers"
	p := r.Project(st)
	seen := map[ecs.EntityID]bool{}
	for _, c := range choices {
		id := req.Options[c].Entity
		if seen[id] {
			return st, illegal(op, ErrIllegalAttack, "%s attacks twice", id)
		}
		seen[id] = true
	}
	active := st.Turn().Active
	for _, c := range choices {
		opt := req.Options[c]
		o, ok := p.Object(opt.Entity)
		if !ok || !canAttack(o, active) {
			return st, illegal(op, ErrIllegalAttack, "%s cannot attack", opt.Entity)
		}
		var err error
		if !o.HasKeyword(state.Vigilance) {
			if st, err = r.setTapped(st, o.ID, true); err != nil {
				return st, invariant(op, err)
			}
		}
		if st, err = st.Set(o.ID, state.CombatComponent{Attacking: true, Defender: opt.Player}); err != nil {
			return st, invariant(op, err)
		}
		st = r.emit(st, state.Event{Type: state.EventAttackerDeclared, Entity: st.Ref(o.ID), Ref: o.Card, Controller: active, Player: opt.Player})
		r.logger.Debug("Attacker declared", zap.String("game", st.ID()), zap.Uint64("entity", uint64(o.ID)), zap.String("defender", string(opt.Player)))
	}
	return grantPriority(st), nil
}

// declareAttackersAction answers the attackers decision with explicit attacks.
func (r *Rules) declareAttackersAction(st state.GameState, player state.PlayerID, a DeclareAttackers) (state.GameState, error) {
	pending := st.Pending()
	if _, ok := pending.Continuation.(AwaitAttackers); !ok {
		return st, protocol(a.Name(), ErrDecisionPending, "%s", pending.Request.Kind)
	}
	choices := make([]int, 0, len(a.Attacks))
	for _, atk := range a.Attacks {
		id, ok := optionFor(pending.Request, atk.Attacker, atk.Defender, 0)
		if !ok {
			return st, illegal(a.Name(), ErrIllegalAttack, "%s cannot attack %s", atk.Attacker, atk.Defender)
		}
		choices = append(choices, id)
	}
	return r.decide(st, player, pending.Request.ID, choices)
}

// defenders returns the players being attacked, in APNAP order.
func (r *Rules) defenders(st state.GameState) []state.PlayerID {
	attacked := map[state.PlayerID]bool{}
	for _, id := range ecs.All[state.CombatComponent](st.Store()) {
		if c, _ := st.Combat(id); c.Attacking {
			attacked[c.Defender] = true
		}
	}
	var out []state.PlayerID
	for _, p := range st.APNAP() {
		if attacked[p] {
			out = append(out, p)
		}
	}
	return out
}

// askBlockers asks the first of the defending players who has a possible block
// to declare blockers.
func (r *Rules) askBlockers(st state.GameState, defenders []state.PlayerID) (state.GameState, bool) {
	p := r.Project(st)
	for i, d := range defenders {
		var attackers []effects.Object
		for _, o := range p.Battlefield() {
			if c, ok := st.Combat(o.ID); ok && c.Attacking && c.Defender == d {
				attackers = append(attackers, o)
			}
		}
		var opts []state.Option
		blockers := 0
		for _, b := range p.Battlefield() {
			if b.Controller != d {
				continue
			}
			can := false
			for _, a := range attackers {
				if canBlock(b, a) {
					opts = append(opts, state.Option{ID: len(opts), Label: fmt.Sprintf("%s blocks %s", b.Name, a.Name), Entity: b.ID, Paired: a.ID})
					can = true
				}
			}
			if can {
				blockers++
			}
		}
		if len(opts) == 0 {
			continue
		}
		return r.ask(st, state.DecisionRequest{
			Player:  d,
			Kind:    state.DecisionDeclareBlockers,
			Prompt:  "Declare blockers",
			Options: opts,
			Min:     0,
			Max:     blockers,
		}, AwaitBlockers{Rest: append([]state.PlayerID(nil), defenders[i+1:]...)}), true
	}
	return st, false
}

// declareBlockers turns the chosen options into blocks. Per rule 509.1.
func (r *Rules) declareBlockers(st state.GameState, req state.DecisionRequest, c AwaitBlockers, choices []int) (state.GameState, error) {
	const op = "declare blockers"
	p := r.Project(st)
	seen := map[ecs.EntityID]bool{}
	perAttacker := map[ecs.EntityID]int{}
	for _, ch := range choices {
		opt := req.Options[ch]
		if seen[opt.Entity] {
			return st, illegal(op, ErrIllegalBlock, "%s blocks twice", opt.Entity)
		}
		seen[opt.Entity] = true
		perAttacker[opt.Paired]++
	}
	// Per rule 702.110b a creature with menace can't be blocked except by two or more creatures.
	for atk, n := range perAttacker {
		if o, ok := p.Object(atk); ok && o.HasKeyword(state.Menace) && n < 2 {
			return st, illegal(op, ErrIllegalBlock, "%s has menace", o.Name)
		}
	}
	var err error
	for _, ch := range choices {
		opt := req.Options[ch]
		b, _ := p.Object(opt.Entity)
		a, _ := p.Object(opt.Paired)
		if !canBlock(b, a) {
			return st, illegal(op, ErrIllegalBlock, "%s cannot block %s", b.Name, a.Name)
		}
		if st, err = st.Set(b.ID, state.CombatComponent{Blocking: a.ID}); err != nil {
			return st, invariant(op, err)
		}
		ac, _ := st.Combat(a.ID)
		ac.Blocked = true
		ac.Blockers = append(append([]ecs.EntityID(nil), ac.Blockers...), b.ID)
		if st, err = st.Set(a.ID, ac); err != nil {
			return st, invariant(op, err)
		}
		st = r.emit(st, state.Event{Type: state.EventBlockerDeclared, Entity: st.Ref(b.ID), Ref: b.Card, Controller: b.Controller, Source: a.ID})
	}
	if next, asked := r.askBlockers(st, c.Rest); asked {
		return next, nil
	}
	return grantPriority(r.markFirstStrike(st)), nil
}

// declareBlockersAction answers the blockers decision with explicit blocks.
func (r *Rules) declareBlockersAction(st state.GameState, player state.PlayerID, a DeclareBlockers) (state.GameState, error) {
	pending := st.Pending()
	if _, ok := pending.Continuation.(AwaitBlockers); !ok {
		return st, protocol(a.Name(), ErrDecisionPending, "%s", pending.Request.Kind)
	}
	choices := make([]int, 0, len(a.Blocks))
	for _, b := range a.Blocks {
		id, ok := optionFor(pending.Request, b.Blocker, "", b.Attacker)
		if !ok {
			return st, illegal(a.Name(), ErrIllegalBlock, "%s cannot block %s", b.Blocker, b.Attacker)
		}
		choices = append(choices, id)
	}
	return r.decide(st, player, pending.Request.ID, choices)
}

// markFirstStrike adds the first strike damage step to this combat when any
// attacking or blocking creature has first strike or double strike.
func (r *Rules) markFirstStrike(st state.GameState) state.GameState {
	p := r.Project(st)
	for _, o := range p.Battlefield() {
		if !o.Attacking && !o.Blocking {
			continue
		}
		if o.HasKeyword(state.FirstStrike) || o.HasKeyword(state.DoubleStrike) {
			t := st.Turn()
			t.FirstStrike = true
			return st.WithTurn(t)
		}
	}
	return st
}

type combatHit struct {
	src    damageSource
	to     effects.Recipient
	amount int
}

// combatDamage assigns and deals combat damage. Blocked attackers assign lethal
// damage to their blockers in order, and trample assigns the rest to the player.
// Per rules 510.1 and 702.19.
func (r *Rules) combatDamage(st state.GameState, firstStrike bool) (state.GameState, error) {
	p := r.Project(st)
	hasFirstStrikeStep := st.Turn().FirstStrike
	deals := func(o effects.Object, c state.CombatComponent) bool {
		fs, ds := o.HasKeyword(state.FirstStrike), o.HasKeyword(state.DoubleStrike)
		switch {
		case firstStrike:
			return fs || ds
		case !hasFirstStrikeStep:
			return true
		}
		return ds || !c.DealtFirstStrike
	}
	// lethal is the damage that counts as lethal to a blocker, given what was
	// already marked on it and assigned to it in this step.
	assigned := map[ecs.EntityID]int{}
	lethal := func(b effects.Object, deathtouch bool) int {
		if deathtouch {
			return max(1-assigned[b.ID], 0)
		}
		return max(b.Toughness-b.Damage-assigned[b.ID], 0)
	}

	var hits []combatHit
	var dealt []ecs.EntityID
	for _, o := range p.Battlefield() {
		c, ok := st.Combat(o.ID)
		if !ok || !deals(o, c) || o.Power <= 0 {
			continue
		}
		src := r.sourceInfo(p, o.ID, o.Card, o.Controller)
		switch {
		case c.Attacking:
			trample := o.HasKeyword(state.Trample)
			var blockers []effects.Object
			for _, b := range c.Blockers {
				if bo, ok := p.Object(b); ok && bo.Zone.Zone == state.ZoneBattlefield {
					blockers = append(blockers, bo)
				}
			}
			remaining := o.Power
			for i, b := range blockers {
				amt := min(lethal(b, src.Deathtouch), remaining)
				if i == len(blockers)-1 && !trample {
					amt = remaining
				}
				if amt > 0 {
					hits = append(hits, combatHit{src: src, to: effects.Recipient{Entity: b.ID}, amount: amt})
					assigned[b.ID] += amt
					remaining -= amt
				}
			}
			if remaining > 0 && (!c.Blocked || trample) {
				hits = append(hits, combatHit{src: src, to: effects.Recipient{Player: c.Defender}, amount: remaining})
			}
		case c.Blocking != 0:
			if ac, ok := st.Combat(c.Blocking); ok && ac.Attacking {
				hits = append(hits, combatHit{src: src, to: effects.Recipient{Entity: c.Blocking}, amount: o.Power})
			}
		default:
			continue
		}
		dealt = append(dealt, o.ID)
	}

	var err error
	for _, h := range hits {
		if st, err = r.dealDamage(st, h.src, h.to, h.amount, true); err != nil {
			return st, invariant("combat damage", err)
		}
	}
	if firstStrike {
		for _, id := range dealt {
			c, ok := st.Combat(id)
			if !ok {
				continue
			}
			c.DealtFirstStrike = true
			if st, err = st.Set(id, c); err != nil {
				return st, invariant("combat damage", err)
			}
		}
	}
	return st, nil
}

// removeFromCombat ends combat for every creature.
func (r *Rules) removeFromCombat(st state.GameState) state.GameState {
	for _, id := range ecs.All[state.CombatComponent](st.Store()) {
		if next, err := st.Unset(id, state.KindCombat); err == nil {
			st = next
		}
	}
	return st
}
