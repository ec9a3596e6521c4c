package rules

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wingedsheep/argentum-engine/internal/game/card"
	"github.com/wingedsheep/argentum-engine/internal/game/condition"
	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/effects"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
	"github.com/wingedsheep/argentum-engine/internal/game/targeting"
)

// triggerSource is an object whose triggered abilities may trigger.
type triggerSource struct {
	id         ecs.EntityID
	ref        state.EntityRef
	card       state.CardRef
	controller state.PlayerID
	// lki is the object as it last existed on the battlefield.
	lki state.EntityRef
	// left is set for objects that just left the battlefield; only their
	// leaves-the-battlefield abilities look back. Per rule 603.10a.
	left bool
}

// collectTriggers matches the recorded events against every triggered ability
// and records the abilities that triggered. The events are consumed.
func (r *Rules) collectTriggers(st state.GameState) state.GameState {
	events := st.Events()
	if len(events) == 0 {
		return st
	}
	st = st.WithEvents(nil)
	p := r.Project(st)

	var sources []triggerSource
	for _, o := range p.Battlefield() {
		if !o.LostAbilities {
			sources = append(sources, triggerSource{id: o.ID, ref: o.Ref, card: o.Card, controller: o.Controller, lki: o.Ref})
		}
	}
	for _, e := range events {
		if e.Left(state.ZoneBattlefield) {
			ref := e.NewEntity
			if ref.ID == 0 {
				ref = e.Entity
			}
			sources = append(sources, triggerSource{id: e.Entity.ID, ref: ref, card: e.Ref, controller: e.Controller, lki: e.Entity, left: true})
		}
	}

	var found []state.PendingTrigger
	for _, e := range events {
		for _, s := range sources {
			def, ok := r.catalog.Definition(s.card)
			if !ok {
				continue
			}
			for i, t := range def.Triggered {
				if s.left && t.Trigger.Event != card.OnDies && t.Trigger.Event != card.OnLeaveBattlefield {
					continue
				}
				if !r.triggeredBy(p, t.Trigger, s, e) {
					continue
				}
				// Per rule 603.4 an intervening-if condition must hold when the event happens.
				if t.If != nil && !condition.Evaluate(t.If, p, s.id, s.controller) {
					continue
				}
				found = append(found, state.PendingTrigger{
					Source:       s.ref,
					Ref:          s.card,
					AbilityIndex: i,
					Controller:   s.controller,
					Event:        e,
				})
			}
		}
	}
	if len(found) > 0 {
		r.logger.Debug("Abilities triggered", zap.String("game", st.ID()), zap.Int("count", len(found)))
	}
	return st.AddTriggers(found...)
}

// triggeredBy reports whether event e triggers an ability with spec on source s.
func (r *Rules) triggeredBy(p *effects.Projection, spec card.TriggerSpec, s triggerSource, e state.Event) bool {
	objectIs := func(id ecs.EntityID) bool {
		if spec.Self {
			return id == s.id
		}
		o, ok := p.Object(id)
		return ok && effects.Matches(spec.Filter, o, s.id, s.controller)
	}
	lastKnownIs := func() bool {
		if spec.Self {
			return e.Entity == s.lki
		}
		chars, _ := r.catalog.Characteristics(e.Ref)
		o := effects.Object{Characteristics: chars, ID: e.Entity.ID, Ref: e.Entity, Card: e.Ref, Controller: e.Controller, Owner: e.Player}
		return effects.Matches(spec.Filter, o, s.id, s.controller)
	}
	playerIs := func(pl state.PlayerID) bool { return spec.Player.Holds(pl, s.controller) }
	step := func(want state.Step) bool {
		return e.Type == state.EventStepBegan && e.Step == want && playerIs(e.Player)
	}

	switch spec.Event {
	case card.OnEnterBattlefield:
		return e.Entered(state.ZoneBattlefield) && objectIs(e.NewEntity.ID)
	case card.OnDies:
		return e.Died() && lastKnownIs()
	case card.OnLeaveBattlefield:
		return e.Left(state.ZoneBattlefield) && lastKnownIs()
	case card.OnUpkeep:
		return step(state.StepUpkeep)
	case card.OnDrawStep:
		return step(state.StepDraw)
	case card.OnEndStep:
		return step(state.StepEnd)
	case card.OnAttack:
		return e.Type == state.EventAttackerDeclared && objectIs(e.Entity.ID)
	case card.OnCombatDamageToPlayer:
		return e.Type == state.EventDamage && e.Combat && e.Player != "" && playerIs(e.Player) && objectIs(e.Source)
	case card.OnSpellCast:
		return e.Type == state.EventSpellCast && playerIs(e.Player) && objectIs(e.Entity.ID)
	case card.OnGainLife:
		return e.Type == state.EventLifeGained && playerIs(e.Player)
	}
	return false
}

// placeTriggers puts the recorded triggered abilities on the stack: the active
// player's first, then the others' in turn order, so the last player's resolve
// first. A player with several triggers chooses their order. Per rule 603.3b.
func (r *Rules) placeTriggers(st state.GameState) (state.GameState, error) {
	pending := st.Triggers()
	st = st.WithTriggers(nil)
	return r.orderNext(st, nil, pending)
}

func (r *Rules) orderNext(st state.GameState, placed, rest []state.PendingTrigger) (state.GameState, error) {
	for _, pl := range st.APNAP() {
		var mine, others []state.PendingTrigger
		for _, t := range rest {
			if t.Controller == pl {
				mine = append(mine, t)
			} else {
				others = append(others, t)
			}
		}
		if len(mine) == 0 {
			continue
		}
		if len(mine) > 1 {
			opts := make([]state.Option, len(mine))
			for i, t := range mine {
				opts[i] = state.Option{ID: i, Label: r.triggerLabel(t), Entity: t.Source.ID}
			}
			return r.ask(st, state.DecisionRequest{
				Player:  pl,
				Kind:    state.DecisionOrderTriggers,
				Prompt:  "Order your triggered abilities; the first one goes on the stack first",
				Options: opts,
				Min:     len(mine),
				Max:     len(mine),
			}, OrderTriggers{Placed: placed, Choosing: mine, Rest: others}), nil
		}
		placed = append(placed, mine...)
		rest = others
	}
	// Triggers of players who left the game are dropped.
	return r.putTriggers(st, placed)
}

func (r *Rules) resumeOrder(st state.GameState, c OrderTriggers, choices []int) (state.GameState, error) {
	placed := append([]state.PendingTrigger(nil), c.Placed...)
	for _, i := range choices {
		placed = append(placed, c.Choosing[i])
	}
	return r.orderNext(st, placed, c.Rest)
}

func (r *Rules) triggerLabel(t state.PendingTrigger) string {
	if def, ok := r.catalog.Definition(t.Ref); ok && t.AbilityIndex < len(def.Triggered) {
		if d := def.Triggered[t.AbilityIndex].Description; d != "" {
			return fmt.Sprintf("%s: %s", def.Name, d)
		}
		return def.Name
	}
	return string(t.Ref)
}

// putTriggers puts triggers on the stack in order, stopping when one of them
// needs its controller to choose targets.
func (r *Rules) putTriggers(st state.GameState, queue []state.PendingTrigger) (state.GameState, error) {
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		var asked bool
		var err error
		if st, asked, err = r.putTrigger(st, t, nil, queue); err != nil || asked {
			return st, err
		}
	}
	return st, nil
}

// putTrigger chooses targets for a triggered ability and puts it on the stack.
// A requirement with exactly as many candidates as it needs is filled without
// asking. An ability that cannot get enough targets is removed. Per rule 603.3d.
func (r *Rules) putTrigger(st state.GameState, t state.PendingTrigger, targets [][]state.ChosenTarget, queue []state.PendingTrigger) (state.GameState, bool, error) {
	def, err := r.definition(t.Ref)
	if err != nil || t.AbilityIndex >= len(def.Triggered) {
		return st, false, invariant("trigger", fmt.Errorf("%w: %s/%d", ErrNoSuchAbility, t.Ref, t.AbilityIndex))
	}
	ab := def.Triggered[t.AbilityIndex]
	modes := defaultModes(ab.Script)
	reqs := ab.Requirements(modes)
	p := r.Project(st)
	src := targeting.Source{ID: t.Source.ID, Controller: t.Controller, Colors: def.Colors}
	if o, ok := p.Object(t.Source.ID); ok && st.IsCurrent(t.Source) {
		src.Colors = o.Colors
	}
	for i := len(targets); i < len(reqs); i++ {
		req := reqs[i]
		cands := targeting.Candidates(req, p, src)
		need := req.EffectiveMin()
		switch {
		case len(cands) < need:
			r.logger.Debug("Trigger removed for lack of targets", zap.String("card", string(t.Ref)))
			return st, false, nil
		case len(cands) == 0:
			targets = append(targets, nil)
			continue
		case len(cands) == need && need == req.Count:
			targets = append(targets, cands)
			continue
		}
		opts := make([]state.Option, len(cands))
		for j, c := range cands {
			opts[j] = targetOption(j, c)
		}
		return r.ask(st, state.DecisionRequest{
			Player:  t.Controller,
			Kind:    state.DecisionChooseTargets,
			Prompt:  fmt.Sprintf("%s: choose %s", r.triggerLabel(t), req.Description),
			Options: opts,
			Min:     need,
			Max:     min(req.Count, len(cands)),
			Source:  t.Source.ID,
		}, TriggerTargets{Trigger: t, Targets: targets, Candidates: cands, Queue: queue}), true, nil
	}

	ev := t.Event
	id, st, err := r.Push(st, state.StackComponent{
		ItemKind:     state.StackTriggered,
		Controller:   t.Controller,
		Source:       t.Source,
		Ref:          t.Ref,
		AbilityIndex: t.AbilityIndex,
		Targets:      targets,
		Modes:        modes,
		Trigger:      &ev,
	})
	if err != nil {
		return st, false, err
	}
	tp := st.Turn()
	tp.Passes = 0
	st = st.WithTurn(tp)
	return r.emit(st, state.Event{Type: state.EventTriggerPutOnStack, Entity: st.Ref(id), Ref: t.Ref, Controller: t.Controller}), false, nil
}

func (r *Rules) resumeTriggerTargets(st state.GameState, c TriggerTargets, choices []int) (state.GameState, error) {
	chosen := make([]state.ChosenTarget, 0, len(choices))
	for _, i := range choices {
		chosen = append(chosen, c.Candidates[i])
	}
	targets := append(append([][]state.ChosenTarget(nil), c.Targets...), chosen)
	st, asked, err := r.putTrigger(st, c.Trigger, targets, c.Queue)
	if err != nil || asked {
		return st, err
	}
	return r.putTriggers(st, c.Queue)
}

// defaultModes picks the first modes of a modal triggered ability.
func defaultModes(s card.Script) []int {
	if !s.Modal() {
		return nil
	}
	n := max(s.ModeCount, 1)
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func targetOption(id int, t state.ChosenTarget) state.Option {
	o := state.Option{ID: id, Label: fmt.Sprint(t)}
	switch t := t.(type) {
	case state.PlayerTarget:
		o.Player = t.Player
	default:
		if ref, ok := state.TargetEntity(t); ok {
			o.Entity = ref.ID
		}
	}
	return o
}
