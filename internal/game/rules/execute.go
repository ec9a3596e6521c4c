package rules

import (
	"fmt"
	"slices"

	"github.com/wingedsheep/argentum-engine/internal/game/card"
	"github.com/wingedsheep/argentum-engine/internal/game/condition"
	"github.com/wingedsheep/argentum-engine/internal/game/counters"
	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/effects"
	"github.com/wingedsheep/argentum-engine/internal/game/mana"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

// Resolution is a spell or ability part way through resolving. It is plain data
// so a resolution waiting for a player's choice can be stored in the game state.
type Resolution struct {
	// Item is the stack object; zero for mana abilities, which skip the stack.
	Item       ecs.EntityID
	Kind       state.StackItemKind
	Ref        state.CardRef
	Source     state.EntityRef
	Controller state.PlayerID
	// Targets are the targets still legal when resolution began.
	Targets [][]state.ChosenTarget
	X       int
	Event   *state.Event
	// Frames is the work left to do; the last frame runs next.
	Frames []Frame
	Await  *Await
}

func (Resolution) ContinuationKind() string { return "resolution" }

// Frame is an effect still to perform, with the offset of its target indexes.
type Frame struct {
	Effect card.Effect
	Offset int
}

// AwaitKind is the kind of choice a resolution waits for.
type AwaitKind uint8

const (
	AwaitMay AwaitKind = iota + 1
	AwaitSurveil
	AwaitScry
	AwaitDiscard
)

// Await is the choice a suspended resolution needs.
type Await struct {
	Kind AwaitKind
	// Frame runs when a "you may" is accepted.
	Frame Frame
	// Cards are the cards offered; option i is Cards[i].
	Cards []ecs.EntityID
	// Players still have to discard after the current one.
	Players []state.PlayerID
	Count   int
}

// execute runs a resolution to its end, or until it needs a decision.
func (r *Rules) execute(st state.GameState, res Resolution) (state.GameState, error) {
	st, done, err := r.runFrames(st, res)
	if err != nil || !done {
		return st, err
	}
	return r.finish(st, &res)
}

// runFrames performs the resolution's remaining effects in order. It reports
// false when it stopped to ask a player something.
func (r *Rules) runFrames(st state.GameState, res Resolution) (state.GameState, bool, error) {
	res.Frames = slices.Clone(res.Frames)
	push := func(e card.Effect, offset int) {
		if e != nil {
			res.Frames = append(res.Frames, Frame{Effect: e, Offset: offset})
		}
	}
	for steps := 0; len(res.Frames) > 0; steps++ {
		if steps > r.opts.MaxIterations {
			return st, false, invariant("resolve", ErrDidNotSettle)
		}
		f := res.Frames[len(res.Frames)-1]
		res.Frames = res.Frames[:len(res.Frames)-1]

		switch e := f.Effect.(type) {
		case card.Sequence:
			for i := len(e.Effects) - 1; i >= 0; i-- {
				push(e.Effects[i], f.Offset)
			}
		case card.Shifted:
			push(e.Effect, f.Offset+e.Offset)
		case card.Conditional:
			if condition.Evaluate(e.If, r.Project(st), res.Source.ID, res.Controller) {
				push(e.Then, f.Offset)
			} else {
				push(e.Else, f.Offset)
			}
		case card.May:
			prompt := e.Prompt
			if prompt == "" {
				prompt = "Do you want to?"
			}
			res.Await = &Await{Kind: AwaitMay, Frame: Frame{Effect: e.Effect, Offset: f.Offset}}
			return r.ask(st, state.DecisionRequest{
				Player:  res.Controller,
				Kind:    state.DecisionYesNo,
				Prompt:  prompt,
				Options: []state.Option{{ID: 0, Label: "No"}, {ID: 1, Label: "Yes"}},
				Min:     1,
				Max:     1,
				Source:  res.Source.ID,
			}, res), false, nil
		case card.Surveil, card.Scry:
			kind, prompt, n := AwaitSurveil, "Choose cards to put into your graveyard", 0
			if s, ok := e.(card.Scry); ok {
				kind, prompt, n = AwaitScry, "Choose cards to put on the bottom of your library", r.amount(st, res, s.Amount)
			} else {
				n = r.amount(st, res, e.(card.Surveil).Amount)
			}
			top := st.Zones().TopN(state.Owned(state.ZoneLibrary, res.Controller), n)
			if len(top) == 0 {
				continue
			}
			res.Await = &Await{Kind: kind, Cards: top}
			return r.ask(st, state.DecisionRequest{
				Player:  res.Controller,
				Kind:    state.DecisionChooseCards,
				Prompt:  prompt,
				Options: cardOptions(st, top),
				Min:     0,
				Max:     len(top),
				Source:  res.Source.ID,
			}, res), false, nil
		case card.Discard:
			n := r.amount(st, res, e.Amount)
			var asked bool
			var err error
			st, asked, err = r.nextDiscard(st, res, r.players(st, res, e.Who, f.Offset), n)
			if err != nil || asked {
				return st, false, err
			}
		default:
			var err error
			if st, err = r.perform(st, res, f); err != nil {
				return st, false, invariant("resolve", err)
			}
		}
	}
	return st, true, nil
}

// resume continues a resolution with the answer to its pending choice.
func (r *Rules) resume(st state.GameState, res Resolution, player state.PlayerID, choices []int) (state.GameState, error) {
	await := res.Await
	res.Await = nil
	if await == nil {
		return st, invariant("resume", ErrUnknownContinuation)
	}
	chosen := func() []ecs.EntityID {
		var out []ecs.EntityID
		for _, c := range choices {
			out = append(out, await.Cards[c])
		}
		return out
	}
	var err error
	switch await.Kind {
	case AwaitMay:
		if len(choices) == 1 && choices[0] == 1 {
			res.Frames = append(slices.Clone(res.Frames), await.Frame)
		}
	case AwaitSurveil:
		// Per rule 701.42a the rest stay on top in their original order.
		for _, id := range chosen() {
			if st, err = r.moveTo(st, id, state.ZoneGraveyard, state.Top(), ""); err != nil {
				return st, invariant("surveil", err)
			}
		}
	case AwaitScry:
		// Per rule 701.18a the cards stay in the library.
		for _, id := range chosen() {
			if st, err = st.Reposition(id, state.Bottom()); err != nil {
				return st, invariant("scry", err)
			}
		}
	case AwaitDiscard:
		for _, id := range chosen() {
			if st, err = r.discard(st, id); err != nil {
				return st, invariant("discard", err)
			}
		}
		var asked bool
		if st, asked, err = r.nextDiscard(st, res, await.Players, await.Count); err != nil || asked {
			return st, err
		}
	default:
		return st, invariant("resume", fmt.Errorf("%w: await %d", ErrUnknownContinuation, await.Kind))
	}
	return r.execute(st, res)
}

// nextDiscard makes players discard n cards each, asking the first player who
// has a real choice. It reports whether it asked.
func (r *Rules) nextDiscard(st state.GameState, res Resolution, players []state.PlayerID, n int) (state.GameState, bool, error) {
	for i, pl := range players {
		hand := st.Hand(pl)
		if n <= 0 || len(hand) == 0 {
			continue
		}
		if len(hand) <= n {
			for _, id := range hand {
				var err error
				if st, err = r.discard(st, id); err != nil {
					return st, false, invariant("discard", err)
				}
			}
			continue
		}
		res.Await = &Await{Kind: AwaitDiscard, Cards: hand, Players: slices.Clone(players[i+1:]), Count: n}
		return r.ask(st, state.DecisionRequest{
			Player:  pl,
			Kind:    state.DecisionDiscard,
			Prompt:  fmt.Sprintf("Discard %d card(s)", n),
			Options: cardOptions(st, hand),
			Min:     n,
			Max:     n,
			Source:  res.Source.ID,
		}, res), true, nil
	}
	return st, false, nil
}

func (r *Rules) discard(st state.GameState, id ecs.EntityID) (state.GameState, error) {
	return r.moveTo(st, id, state.ZoneGraveyard, state.Top(), "")
}

func cardOptions(st state.GameState, ids []ecs.EntityID) []state.Option {
	out := make([]state.Option, len(ids))
	for i, id := range ids {
		c, _ := st.Card(id)
		out[i] = state.Option{ID: i, Label: string(c.Ref), Entity: id}
	}
	return out
}

func (r *Rules) amount(st state.GameState, res Resolution, a card.Amount) int {
	n := a.Fixed
	if a.X {
		n += res.X
	}
	if a.Count != nil {
		n += r.Project(st).Count(*a.Count, res.Source.ID, res.Controller)
	}
	if a.EventAmount && res.Event != nil {
		n += res.Event.Amount
	}
	return max(n, 0)
}

func (res Resolution) targets(i int) []state.ChosenTarget {
	if i < 0 || i >= len(res.Targets) {
		return nil
	}
	return res.Targets[i]
}

// objects returns the objects a subject names that still exist as the same objects.
func (r *Rules) objects(st state.GameState, res Resolution, s card.Subject, offset int) []ecs.EntityID {
	var out []ecs.EntityID
	add := func(ref state.EntityRef) {
		if ref.ID != 0 && st.IsCurrent(ref) {
			out = append(out, ref.ID)
		}
	}
	switch s := s.(type) {
	case card.Target:
		for _, t := range res.targets(offset + s.Index) {
			if ref, ok := state.TargetEntity(t); ok {
				add(ref)
			}
		}
	case card.Self:
		add(res.Source)
	case card.AllMatching:
		for _, o := range r.Project(st).Matching(s.Filter, res.Source.ID, res.Controller) {
			out = append(out, o.ID)
		}
	case card.Triggering:
		if e := res.Event; e != nil {
			if e.NewEntity.ID != 0 && st.IsCurrent(e.NewEntity) {
				add(e.NewEntity)
			} else {
				add(e.Entity)
			}
		}
	}
	return out
}

// players returns the players a subject names who are still in the game.
func (r *Rules) players(st state.GameState, res Resolution, s card.Subject, offset int) []state.PlayerID {
	var out []state.PlayerID
	add := func(p state.PlayerID) {
		if pl, ok := st.Player(p); ok && pl.InGame() && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	switch s := s.(type) {
	case card.Target:
		for _, t := range res.targets(offset + s.Index) {
			if pt, ok := t.(state.PlayerTarget); ok {
				add(pt.Player)
			}
		}
	case card.You:
		add(res.Controller)
	case card.EachOpponent:
		for _, p := range st.Opponents(res.Controller) {
			add(p)
		}
	case card.EachPlayer:
		for _, p := range st.APNAP() {
			add(p)
		}
	case card.ControllerOf:
		ts := res.targets(offset + s.Index)
		if len(ts) == 0 {
			break
		}
		switch t := ts[0].(type) {
		case state.PlayerTarget:
			add(t.Player)
		default:
			if ref, ok := state.TargetEntity(t); ok && st.IsCurrent(ref) {
				add(r.Project(st).Controller(ref.ID))
			}
		}
	case card.Triggering:
		if e := res.Event; e != nil {
			if e.Player != "" {
				add(e.Player)
			} else {
				add(e.Controller)
			}
		}
	}
	return out
}

// recipients returns the players and objects a subject names, players first.
func (r *Rules) recipients(st state.GameState, res Resolution, s card.Subject, offset int) []effects.Recipient {
	var out []effects.Recipient
	if t, ok := s.(card.Target); ok {
		for _, c := range res.targets(offset + t.Index) {
			if pt, ok := c.(state.PlayerTarget); ok {
				if pl, found := st.Player(pt.Player); found && pl.InGame() {
					out = append(out, effects.Recipient{Player: pt.Player})
				}
			} else if ref, ok := state.TargetEntity(c); ok && st.IsCurrent(ref) {
				out = append(out, effects.Recipient{Entity: ref.ID})
			}
		}
		return out
	}
	for _, p := range r.players(st, res, s, offset) {
		out = append(out, effects.Recipient{Player: p})
	}
	for _, id := range r.objects(st, res, s, offset) {
		out = append(out, effects.Recipient{Entity: id})
	}
	return out
}

// sourceID is the object that acts for the resolution: the spell itself or the
// ability's source.
func (res Resolution) sourceID() ecs.EntityID {
	if res.Kind == state.StackSpell {
		return res.Item
	}
	return res.Source.ID
}

// perform carries out one primitive effect.
func (r *Rules) perform(st state.GameState, res Resolution, f Frame) (state.GameState, error) {
	var err error
	onBattlefield := func(s card.Subject) []ecs.EntityID {
		var out []ecs.EntityID
		for _, id := range r.objects(st, res, s, f.Offset) {
			if st.InZone(id, state.ZoneBattlefield) {
				out = append(out, id)
			}
		}
		return out
	}
	moveAll := func(ids []ecs.EntityID, to state.Zone, pos state.Position, controller state.PlayerID) error {
		for _, id := range ids {
			if !st.InZone(id, to) || to == state.ZoneLibrary {
				if st, err = r.moveTo(st, id, to, pos, controller); err != nil {
					return err
				}
			}
		}
		return nil
	}

	switch e := f.Effect.(type) {
	case card.DealDamage:
		n := r.amount(st, res, e.Amount)
		src := r.sourceInfo(r.Project(st), res.sourceID(), res.Ref, res.Controller)
		for _, to := range r.recipients(st, res, e.To, f.Offset) {
			if st, err = r.dealDamage(st, src, to, n, false); err != nil {
				return st, err
			}
		}
	case card.Destroy:
		p := r.Project(st)
		var doomed []ecs.EntityID
		for _, id := range onBattlefield(e.What) {
			if o, ok := p.Object(id); ok && !o.HasKeyword(state.Indestructible) {
				doomed = append(doomed, id)
			}
		}
		err = moveAll(doomed, state.ZoneGraveyard, state.Top(), "")
	case card.Exile:
		err = moveAll(r.objects(st, res, e.What, f.Offset), state.ZoneExile, state.Top(), "")
	case card.ReturnToHand:
		err = moveAll(r.objects(st, res, e.What, f.Offset), state.ZoneHand, state.Top(), "")
	case card.ReturnToBattlefield:
		err = moveAll(r.objects(st, res, e.What, f.Offset), state.ZoneBattlefield, state.Top(), res.Controller)
	case card.DrawCards:
		n := r.amount(st, res, e.Amount)
		for _, pl := range r.players(st, res, e.Who, f.Offset) {
			if st, err = r.draw(st, pl, n); err != nil {
				return st, err
			}
		}
	case card.GainLife:
		n := r.amount(st, res, e.Amount)
		for _, pl := range r.players(st, res, e.Who, f.Offset) {
			st = r.gainLife(st, pl, n)
		}
	case card.LoseLife:
		n := r.amount(st, res, e.Amount)
		for _, pl := range r.players(st, res, e.Who, f.Offset) {
			st = r.loseLife(st, pl, n)
		}
	case card.AddCounters:
		n := r.amount(st, res, e.Amount)
		for _, id := range onBattlefield(e.What) {
			if st, err = r.addCounters(st, id, e.Type, n); err != nil {
				return st, err
			}
		}
	case card.Tap:
		for _, id := range onBattlefield(e.What) {
			if st, err = r.setTapped(st, id, true); err != nil {
				return st, err
			}
		}
	case card.Untap:
		for _, id := range onBattlefield(e.What) {
			if st, err = r.setTapped(st, id, false); err != nil {
				return st, err
			}
		}
	case card.AddMana:
		st = r.addMana(st, res.Controller, e.Mana)
	case card.CreateToken:
		for range r.amount(st, res, e.Amount) {
			if st, err = r.createToken(st, e.Token, res.Controller, e.Tapped); err != nil {
				return st, err
			}
		}
	case card.Mill:
		n := r.amount(st, res, e.Amount)
		for _, pl := range r.players(st, res, e.Who, f.Offset) {
			top := st.Zones().TopN(state.Owned(state.ZoneLibrary, pl), n)
			if err = moveAll(top, state.ZoneGraveyard, state.Top(), ""); err != nil {
				return st, err
			}
		}
	case card.CounterSpell:
		for _, id := range r.objects(st, res, e.What, f.Offset) {
			item, ok := st.StackItem(id)
			if !ok || id == res.Item {
				continue
			}
			ref := st.Ref(id)
			if item.ItemKind == state.StackSpell {
				st, err = r.moveTo(st, id, state.ZoneGraveyard, state.Top(), "")
			} else {
				st, err = st.Destroy(id)
			}
			if err != nil {
				return st, err
			}
			st = r.emit(st, state.Event{Type: state.EventSpellCountered, Entity: ref, Ref: item.Ref, Controller: item.Controller, Source: res.sourceID()})
		}
	case card.ApplyContinuous:
		st = r.applyContinuous(st, res, e, f.Offset)
	case card.PreventDamage:
		for _, to := range r.recipients(st, res, e.To, f.Offset) {
			shield := state.ReplacementEffect{
				Source:     res.Source,
				Controller: res.Controller,
				Player:     to.Player,
				Rule:       state.PreventDamage{Amount: e.Amount},
				Duration:   state.UntilEndOfTurn,
				Remaining:  e.Amount,
				Turn:       st.Turn().Number,
			}
			if to.Entity != 0 {
				shield.Affected = state.AffectsOnly(st.Ref(to.Entity))
			}
			shield.Timestamp, st = st.NextTimestamp()
			st = st.AddReplacement(shield)
		}
	default:
		return st, fmt.Errorf("unsupported effect %T", f.Effect)
	}
	return st, err
}

// applyContinuous creates a floating continuous effect. The affected set is
// locked in when the effect is created. Per rule 611.2c.
func (r *Rules) applyContinuous(st state.GameState, res Resolution, e card.ApplyContinuous, offset int) state.GameState {
	var refs []state.EntityRef
	for _, id := range r.objects(st, res, e.What, offset) {
		if st.InZone(id, state.ZoneBattlefield) {
			refs = append(refs, st.Ref(id))
		}
	}
	if len(refs) == 0 {
		return st
	}
	mod := e.Mod
	if sc, ok := mod.(state.SetController); ok && sc.Player == "" {
		mod = state.SetController{Player: res.Controller}
	}
	ts, st := st.NextTimestamp()
	return st.AddFloating(state.ContinuousEffect{
		Source:     res.Source,
		Controller: res.Controller,
		Timestamp:  ts,
		Affected:   state.AffectsOnly(refs...),
		Mod:        mod,
		Duration:   e.Duration,
		Turn:       st.Turn().Number,
	})
}

func (r *Rules) addCounters(st state.GameState, id ecs.EntityID, t counters.Type, n int) (state.GameState, error) {
	if n <= 0 {
		return st, nil
	}
	st, err := st.Set(id, state.CountersComponent{Counters: st.Counters(id).Add(t, n)})
	if err != nil {
		return st, err
	}
	return r.emit(st, state.Event{Type: state.EventCountersAdded, Entity: st.Ref(id), Amount: n}), nil
}

func (r *Rules) setTapped(st state.GameState, id ecs.EntityID, tapped bool) (state.GameState, error) {
	perm, ok := st.Permanent(id)
	if !ok || perm.Tapped == tapped {
		return st, nil
	}
	perm.Tapped = tapped
	st, err := st.Set(id, perm)
	if err != nil {
		return st, err
	}
	ev := state.EventUntapped
	if tapped {
		ev = state.EventTapped
	}
	return r.emit(st, state.Event{Type: ev, Entity: st.Ref(id)}), nil
}

func (r *Rules) addMana(st state.GameState, player state.PlayerID, m mana.Pool) state.GameState {
	st = updatePlayer(st, player, func(p *state.Player) {
		for _, t := range mana.AllTypes {
			p.Pool = p.Pool.Add(t, m.Get(t))
		}
	})
	return r.emit(st, state.Event{Type: state.EventManaAdded, Player: player, Amount: m.Total()})
}
