package rules

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/effects"
	"github.com/wingedsheep/argentum-engine/internal/game/mana"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

// moveTo moves an object to a zone as a new object. Owned zones are always the
// owner's. Replacement effects may change the destination, and an object entering
// the battlefield does so under controller (the owner when empty).
// Per rule 400.7 the object loses everything it had in its old zone.
func (r *Rules) moveTo(st state.GameState, id ecs.EntityID, to state.Zone, pos state.Position, controller state.PlayerID) (state.GameState, error) {
	loc, ok := st.Locate(id)
	if !ok {
		return st, fmt.Errorf("move %s: %w", id, state.ErrNotInZone)
	}
	c, ok := st.Card(id)
	if !ok {
		// Abilities on the stack are not cards; leaving the stack ends them.
		return st.Destroy(id)
	}
	p := r.Project(st)
	old := st.Ref(id)
	lastController := p.Controller(id)

	dest := p.Destination(id, state.Owned(to, c.Owner))
	leaving := loc.Key.Zone
	var err error
	if leaving == state.ZoneBattlefield && dest.Zone != state.ZoneBattlefield {
		st, err = r.leaveBattlefield(st, id)
		if err != nil {
			return st, err
		}
	}
	if leaving == state.ZoneStack && dest.Zone != state.ZoneStack {
		if st, err = st.Unset(id, state.KindStack); err != nil {
			return st, err
		}
	}
	if st, err = st.MoveEntity(id, loc.Key, dest, pos); err != nil {
		return st, err
	}
	if dest.Zone == state.ZoneBattlefield && leaving != state.ZoneBattlefield {
		if controller == "" {
			controller = c.Owner
		}
		if st, err = r.enterBattlefield(st, id, controller); err != nil {
			return st, err
		}
	}
	r.logger.Debug("Zone change",
		zap.String("game", st.ID()),
		zap.Uint64("entity", uint64(id)),
		zap.String("card", string(c.Ref)),
		zap.String("from", loc.Key.String()),
		zap.String("to", dest.String()))
	return r.emit(st, state.Event{
		Type:       state.EventZoneChange,
		Entity:     old,
		Ref:        c.Ref,
		Controller: lastController,
		Player:     c.Owner,
		From:       loc.Key,
		To:         dest,
		NewEntity:  st.Ref(id),
	}), nil
}

// leaveBattlefield strips battlefield status from id and detaches everything
// that refers to it.
func (r *Rules) leaveBattlefield(st state.GameState, id ecs.EntityID) (state.GameState, error) {
	var err error
	for _, kind := range []ecs.ComponentKind{state.KindPermanent, state.KindCounters, state.KindCombat} {
		if st, err = st.Unset(id, kind); err != nil {
			return st, err
		}
	}
	for _, other := range st.Battlefield() {
		if other == id {
			continue
		}
		if perm, ok := st.Permanent(other); ok && perm.AttachedTo.ID == id {
			perm.AttachedTo = state.EntityRef{}
			if st, err = st.Set(other, perm); err != nil {
				return st, err
			}
		}
		if cmb, ok := st.Combat(other); ok {
			changed := false
			if cmb.Blocking == id {
				cmb.Blocking = 0
				changed = true
			}
			if i := indexOf(cmb.Blockers, id); i >= 0 {
				cmb.Blockers = append(cmb.Blockers[:i:i], cmb.Blockers[i+1:]...)
				changed = true
			}
			if changed {
				if st, err = st.Set(other, cmb); err != nil {
					return st, err
				}
			}
		}
	}
	return st, nil
}

// enterBattlefield gives a new permanent its battlefield status, applying the
// replacement effects that modify how it enters.
func (r *Rules) enterBattlefield(st state.GameState, id ecs.EntityID, controller state.PlayerID) (state.GameState, error) {
	tapped, ctrs := r.Project(st).EntryModifiers(id, controller)
	ts, st := st.NextTimestamp()
	st, err := st.Set(id, state.PermanentComponent{
		Controller:    controller,
		Tapped:        tapped,
		SummoningSick: true,
		EnteredAt:     ts,
		EnteredTurn:   st.Turn().Number,
	})
	if err != nil {
		return st, err
	}
	if !ctrs.IsEmpty() {
		st, err = st.Set(id, state.CountersComponent{Counters: ctrs})
	}
	return st, err
}

// createToken puts a token onto the battlefield.
func (r *Rules) createToken(st state.GameState, ref state.CardRef, controller state.PlayerID, tapped bool) (state.GameState, error) {
	id, st, err := st.Create(state.Battlefield, state.Top(), state.CardComponent{Ref: ref, Owner: controller, Token: true})
	if err != nil {
		return st, err
	}
	if st, err = r.enterBattlefield(st, id, controller); err != nil {
		return st, err
	}
	if tapped {
		perm, _ := st.Permanent(id)
		perm.Tapped = true
		if st, err = st.Set(id, perm); err != nil {
			return st, err
		}
	}
	tok := st.Ref(id)
	return r.emit(st,
		state.Event{Type: state.EventTokenCreated, Entity: tok, Ref: ref, Controller: controller, Player: controller},
		state.Event{Type: state.EventZoneChange, Entity: tok, Ref: ref, Controller: controller, Player: controller, To: state.Battlefield, NewEntity: tok},
	), nil
}

// draw makes a player draw n cards. Drawing from an empty library is recorded
// for the state-based action check. Per rule 704.5b.
func (r *Rules) draw(st state.GameState, player state.PlayerID, n int) (state.GameState, error) {
	for range n {
		lib := st.Library(player)
		if len(lib) == 0 {
			st = updatePlayer(st, player, func(p *state.Player) { p.DrewFromEmpty = true })
			continue
		}
		var err error
		if st, err = r.moveTo(st, lib[0], state.ZoneHand, state.Top(), ""); err != nil {
			return st, err
		}
		st = r.emit(st, state.Event{Type: state.EventCardDrawn, Player: player, Entity: st.Ref(lib[0])})
	}
	return st, nil
}

func (r *Rules) gainLife(st state.GameState, player state.PlayerID, amount int) state.GameState {
	if amount <= 0 {
		return st
	}
	st = updatePlayer(st, player, func(p *state.Player) { p.Life += amount })
	return r.emit(st, state.Event{Type: state.EventLifeGained, Player: player, Amount: amount})
}

func (r *Rules) loseLife(st state.GameState, player state.PlayerID, amount int) state.GameState {
	if amount <= 0 {
		return st
	}
	st = updatePlayer(st, player, func(p *state.Player) { p.Life -= amount })
	return r.emit(st, state.Event{Type: state.EventLifeLost, Player: player, Amount: amount})
}

// damageSource is what a source of damage looks like at the moment it deals damage.
type damageSource struct {
	ID         ecs.EntityID
	Controller state.PlayerID
	Colors     mana.Colors
	Deathtouch bool
	Lifelink   bool
}

// sourceInfo describes id as a damage source, falling back to the printed card
// when the object no longer exists.
func (r *Rules) sourceInfo(p *effects.Projection, id ecs.EntityID, ref state.CardRef, controller state.PlayerID) damageSource {
	src := damageSource{ID: id, Controller: controller}
	chars, ok := state.Characteristics{}, false
	if o, found := p.Object(id); found {
		chars, ok = o.Characteristics, true
	} else if ref != "" {
		chars, ok = r.catalog.Characteristics(ref)
	}
	if ok {
		src.Colors = chars.Colors
		src.Deathtouch = chars.HasKeyword(state.Deathtouch)
		src.Lifelink = chars.HasKeyword(state.Lifelink)
	}
	return src
}

// dealDamage deals damage to a player or permanent after protection and
// prevention. Per rules 120.3 and 702.16e.
func (r *Rules) dealDamage(st state.GameState, src damageSource, to effects.Recipient, amount int, combat bool) (state.GameState, error) {
	if amount <= 0 {
		return st, nil
	}
	p := r.Project(st)
	if to.Entity != 0 {
		o, ok := p.Object(to.Entity)
		if !ok || o.Zone.Zone != state.ZoneBattlefield {
			return st, nil
		}
		if o.ProtectedFrom(src.Colors) {
			return r.emit(st, state.Event{Type: state.EventDamagePrevented, Entity: o.Ref, Source: src.ID, Amount: amount}), nil
		}
	} else if pl, ok := st.Player(to.Player); !ok || !pl.InGame() {
		return st, nil
	}
	dealt, st := p.PreventDamage(st, to, amount)
	if dealt < amount {
		st = r.emit(st, state.Event{Type: state.EventDamagePrevented, Entity: st.Ref(to.Entity), Player: to.Player, Source: src.ID, Amount: amount - dealt})
	}
	if dealt <= 0 {
		return st, nil
	}
	if to.Entity != 0 {
		perm, _ := st.Permanent(to.Entity)
		perm.Damage += dealt
		if src.Deathtouch {
			perm.DeathtouchDamage = true
		}
		var err error
		if st, err = st.Set(to.Entity, perm); err != nil {
			return st, err
		}
		st = r.emit(st, state.Event{Type: state.EventDamage, Entity: st.Ref(to.Entity), Source: src.ID, Controller: src.Controller, Amount: dealt, Combat: combat})
	} else {
		st = updatePlayer(st, to.Player, func(p *state.Player) { p.Life -= dealt })
		st = r.emit(st, state.Event{Type: state.EventDamage, Player: to.Player, Source: src.ID, Controller: src.Controller, Amount: dealt, Combat: combat})
	}
	if src.Lifelink {
		st = r.gainLife(st, src.Controller, dealt)
	}
	return st, nil
}

func indexOf(ids []ecs.EntityID, id ecs.EntityID) int {
	for i, x := range ids {
		if x == id {
			return i
		}
	}
	return -1
}
