package condition

import (
	"slices"

	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/effects"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

// Evaluate reports whether c holds for an ability of source controlled by
// controller. A nil condition always holds.
func Evaluate(c Condition, p *effects.Projection, source ecs.EntityID, controller state.PlayerID) bool {
	st := p.State()
	switch c := c.(type) {
	case nil:
		return true
	case LifeCompare:
		for _, pl := range st.Players() {
			if pl.InGame() && c.Player.Holds(pl.ID, controller) && c.Op.Compare(pl.Life, c.Value) {
				return true
			}
		}
		return false
	case ControlsCount:
		return c.Op.Compare(len(p.Matching(c.Filter, source, controller)), c.Value)
	case ZoneCount:
		return c.Op.Compare(p.Count(c.Count, source, controller), c.Value)
	case SourceIs:
		return sourceIs(c.State, p, source)
	case IsYourTurn:
		return st.Turn().Active == controller
	case StepIs:
		return st.Turn().Step == c.Step
	case StackEmpty:
		return st.StackEmpty()
	case InCombat:
		return st.Turn().Step.IsCombat()
	case SpellsCastThisTurn:
		n := 0
		for pl, cast := range st.Stats().SpellsCast {
			if c.Player.Holds(pl, controller) {
				n += cast
			}
		}
		return c.Op.Compare(n, c.Value)
	case CreaturesDiedThisTurn:
		return c.Op.Compare(st.Stats().CreaturesDied, c.Value)
	case And:
		for _, sub := range cheapestFirst(c.Conditions) {
			if !Evaluate(sub, p, source, controller) {
				return false
			}
		}
		return true
	case Or:
		for _, sub := range cheapestFirst(c.Conditions) {
			if Evaluate(sub, p, source, controller) {
				return true
			}
		}
		return false
	case Not:
		return !Evaluate(c.Condition, p, source, controller)
	}
	return false
}

func sourceIs(s SourceState, p *effects.Projection, source ecs.EntityID) bool {
	if !p.State().InZone(source, state.ZoneBattlefield) {
		return false
	}
	o, ok := p.Object(source)
	if !ok {
		return false
	}
	switch s {
	case SourceTapped:
		return o.Tapped
	case SourceUntapped:
		return !o.Tapped
	case SourceAttacking:
		return o.Attacking
	case SourceBlocking:
		return o.Blocking
	}
	return true
}

// cost ranks conditions by how much work evaluating them takes.
func cost(c Condition) int {
	switch c := c.(type) {
	case nil, IsYourTurn, StepIs, StackEmpty, InCombat:
		return 0
	case LifeCompare, SourceIs, SpellsCastThisTurn, CreaturesDiedThisTurn:
		return 1
	case ControlsCount, ZoneCount:
		return 4
	case Not:
		return cost(c.Condition)
	case And:
		return costSum(c.Conditions)
	case Or:
		return costSum(c.Conditions)
	}
	return 8
}

func costSum(cs []Condition) int {
	n := 0
	for _, c := range cs {
		n += cost(c)
	}
	return n
}

func cheapestFirst(cs []Condition) []Condition {
	out := slices.Clone(cs)
	slices.SortStableFunc(out, func(a, b Condition) int { return cost(a) - cost(b) })
	return out
}
