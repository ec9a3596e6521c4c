package rules

import (
	"go.uber.org/zap"

	"github.com/wingedsheep/argentum-engine/internal/game/card"
	"github.com/wingedsheep/argentum-engine/internal/game/counters"
	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/effects"
	"github.com/wingedsheep/argentum-engine/internal/game/mana"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

// manaSource is an untapped permanent with a mana ability whose only cost is {T}.
type manaSource struct {
	id   ecs.EntityID
	mana mana.Pool
}

// missing counts the mana symbols of cost that pool cannot pay.
func missing(cost mana.Cost, pool mana.Pool, x int) int {
	short := 0
	left := pool
	for _, t := range mana.AllTypes {
		need := cost.Colored[t]
		if have := left.Amounts[t]; have < need {
			short += need - have
			left.Amounts[t] = 0
		} else {
			left.Amounts[t] -= need
		}
	}
	generic := cost.Generic + cost.X*x
	for _, h := range cost.Hybrid {
		paid := false
		for _, t := range h.Options {
			if left.Amounts[t] > 0 {
				left.Amounts[t]--
				paid = true
				break
			}
		}
		switch {
		case paid:
		case h.GenericAlt > 0:
			generic += h.GenericAlt
		default:
			short++
		}
	}
	if rest := left.Total(); rest < generic {
		short += generic - rest
	}
	return short
}

// manaSources lists the player's permanents that can tap for mana right now,
// leaving out exclude.
func (r *Rules) manaSources(p *effects.Projection, player state.PlayerID, exclude ecs.EntityID) []manaSource {
	var out []manaSource
	for _, o := range p.Battlefield() {
		if o.ID == exclude || o.Controller != player || o.Tapped || o.LostAbilities {
			continue
		}
		if o.IsCreature() && o.SummoningSick && !o.HasKeyword(state.Haste) {
			continue
		}
		def, err := r.definition(o.Card)
		if err != nil {
			continue
		}
		for _, ab := range def.Activated {
			add, ok := ab.Effect.(card.AddMana)
			if !ab.IsMana || !ok || !ab.Cost.Tap || !ab.Cost.Mana.IsZero() ||
				ab.Cost.SacrificeSelf || ab.Cost.PayLife > 0 || ab.Cost.RemoveCounters > 0 || ab.Condition != nil {
				continue
			}
			out = append(out, manaSource{id: o.ID, mana: add.Mana})
			break
		}
	}
	return out
}

// payMana pays cost from the player's mana pool, first tapping mana sources as
// needed. Sources are picked greedily, each time the one that leaves the fewest
// symbols unpaid. On failure nothing is tapped or spent.
func (r *Rules) payMana(st state.GameState, player state.PlayerID, cost mana.Cost, x int, exclude ecs.EntityID) (state.GameState, error) {
	const op = "pay mana"
	orig := st
	pl, _ := st.Player(player)
	pool := pl.Pool
	sources := r.manaSources(r.Project(st), player, exclude)
	var tap []manaSource
	for short := missing(cost, pool, x); short > 0; short = missing(cost, pool, x) {
		best, bestShort := -1, short
		for i, s := range sources {
			if n := missing(cost, addPools(pool, s.mana), x); n < bestShort {
				best, bestShort = i, n
			}
		}
		if best < 0 {
			return orig, illegal(op, ErrCannotPay, "%s short by %d for %s", player, short, cost)
		}
		tap = append(tap, sources[best])
		pool = addPools(pool, sources[best].mana)
		sources = append(sources[:best:best], sources[best+1:]...)
	}

	var err error
	for _, s := range tap {
		if st, err = r.setTapped(st, s.id, true); err != nil {
			return orig, invariant(op, err)
		}
		st = r.addMana(st, player, s.mana)
	}
	pl, _ = st.Player(player)
	paid, err := mana.Pay(cost, pl.Pool, x)
	if err != nil {
		return orig, illegal(op, ErrCannotPay, "%v", err)
	}
	pl.Pool = paid
	if len(tap) > 0 {
		r.logger.Debug("Tapped mana sources", zap.String("game", st.ID()), zap.String("player", string(player)), zap.Int("sources", len(tap)))
	}
	return st.WithPlayer(pl), nil
}

func addPools(a, b mana.Pool) mana.Pool {
	for _, t := range mana.AllTypes {
		a = a.Add(t, b.Get(t))
	}
	return a
}

// payCosts checks and pays every cost of an activated ability of src. Per rule 602.2b.
func (r *Rules) payCosts(st state.GameState, player state.PlayerID, src effects.Object, cost card.Cost, x int) (state.GameState, error) {
	const op = "pay costs"
	orig := st
	if cost.Tap {
		if src.Tapped {
			return st, illegal(op, ErrCannotPay, "%s is tapped", src.Name)
		}
		// Per rule 302.6.
		if src.IsCreature() && src.SummoningSick && !src.HasKeyword(state.Haste) {
			return st, illegal(op, ErrCannotPay, "%s has summoning sickness", src.Name)
		}
	}
	if cost.PayLife > 0 {
		if pl, _ := st.Player(player); pl.Life < cost.PayLife {
			return st, illegal(op, ErrCannotPay, "%s cannot pay %d life", player, cost.PayLife)
		}
	}
	ctype := counters.Type(cost.CounterType)
	if cost.RemoveCounters > 0 && st.Counters(src.ID).Count(ctype) < cost.RemoveCounters {
		return st, illegal(op, ErrCannotPay, "%s has fewer than %d %s counters", src.Name, cost.RemoveCounters, ctype)
	}

	var exclude ecs.EntityID
	if cost.Tap {
		exclude = src.ID
	}
	var err error
	if !cost.Mana.IsZero() {
		if st, err = r.payMana(st, player, cost.Mana, x, exclude); err != nil {
			return orig, err
		}
	}
	if cost.Tap {
		if st, err = r.setTapped(st, src.ID, true); err != nil {
			return orig, invariant(op, err)
		}
	}
	if cost.PayLife > 0 {
		st = r.loseLife(st, player, cost.PayLife)
	}
	if cost.RemoveCounters > 0 {
		left, _ := st.Counters(src.ID).Remove(ctype, cost.RemoveCounters)
		if st, err = st.Set(src.ID, state.CountersComponent{Counters: left}); err != nil {
			return orig, invariant(op, err)
		}
	}
	if cost.SacrificeSelf {
		if st, err = r.moveTo(st, src.ID, state.ZoneGraveyard, state.Top(), ""); err != nil {
			return orig, invariant(op, err)
		}
	}
	return st, nil
}
