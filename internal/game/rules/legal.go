package rules

import (
	"slices"

	"github.com/wingedsheep/argentum-engine/internal/game/card"
	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/effects"
	"github.com/wingedsheep/argentum-engine/internal/game/mana"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
	"github.com/wingedsheep/argentum-engine/internal/game/targeting"
)

// maxCandidates caps how many choice combinations are enumerated per decision,
// spell or ability.
const maxCandidates = 64

// maxX caps the values of X offered for spells and abilities.
const maxX = 10

// LegalActions lists the actions player can take now. Every action returned is
// accepted by Apply on st. Concede is always included while the player is in
// the game.
func (r *Rules) LegalActions(st state.GameState, player state.PlayerID) []Action {
	if st.IsOver() {
		return nil
	}
	if pl, ok := st.Player(player); !ok || !pl.InGame() {
		return nil
	}
	var cands []Action
	if pending := st.Pending(); pending != nil {
		if pending.Request.Player == player {
			for _, choices := range decisionChoices(pending.Request) {
				cands = append(cands, MakeDecision{DecisionID: pending.Request.ID, Choices: choices})
			}
		}
	} else if st.Turn().Priority == player {
		cands = append(cands, PassPriority{})
		for _, id := range st.Hand(player) {
			c, _ := st.Card(id)
			if chars, ok := r.catalog.Characteristics(c.Ref); ok && chars.IsLand() {
				cands = append(cands, PlayLand{Card: id})
				continue
			}
			cands = append(cands, r.castCandidates(st, player, id)...)
		}
		cands = append(cands, r.activateCandidates(st, player)...)
	}

	var out []Action
	for _, a := range cands {
		if _, err := r.apply(st, player, a); err == nil {
			out = append(out, a)
		}
	}
	return append(out, Concede{})
}

func (r *Rules) castCandidates(st state.GameState, player state.PlayerID, id ecs.EntityID) []Action {
	c, _ := st.Card(id)
	def, err := r.definition(c.Ref)
	if err != nil {
		return nil
	}
	var s card.Script
	if def.Spell != nil {
		s = *def.Spell
	}
	p := r.Project(st)
	src := targeting.SourceOf(p, id, player)
	var out []Action
	for _, modes := range modeChoices(s) {
		for _, targets := range targetChoices(p, s.Requirements(modes), src) {
			for _, x := range xChoices(def.ManaCost, r.potentialMana(p, player)) {
				out = append(out, CastSpell{Card: id, Targets: targets, Modes: modes, X: x})
			}
		}
	}
	return out
}

func (r *Rules) activateCandidates(st state.GameState, player state.PlayerID) []Action {
	p := r.Project(st)
	avail := r.potentialMana(p, player)
	var out []Action
	for _, o := range p.Battlefield() {
		if o.Controller != player || o.LostAbilities {
			continue
		}
		def, err := r.definition(o.Card)
		if err != nil {
			continue
		}
		src := targeting.SourceOf(p, o.ID, player)
		for i, ab := range def.Activated {
			for _, modes := range modeChoices(ab.Script) {
				for _, targets := range targetChoices(p, ab.Requirements(modes), src) {
					for _, x := range xChoices(ab.Cost.Mana, avail) {
						out = append(out, ActivateAbility{Source: o.ID, Index: i, Targets: targets, Modes: modes, X: x})
					}
				}
			}
		}
	}
	return out
}

// potentialMana is the mana the player has or can get by tapping sources.
func (r *Rules) potentialMana(p *effects.Projection, player state.PlayerID) int {
	pl, _ := p.State().Player(player)
	n := pl.Pool.Total()
	for _, s := range r.manaSources(p, player, 0) {
		n += s.mana.Total()
	}
	return n
}

func xChoices(cost mana.Cost, avail int) []int {
	if cost.X == 0 {
		return []int{0}
	}
	top := min(avail/cost.X, maxX)
	out := make([]int, 0, top+1)
	for x := 0; x <= top; x++ {
		out = append(out, x)
	}
	return out
}

func modeChoices(s card.Script) [][]int {
	if !s.Modal() {
		return [][]int{nil}
	}
	return combinations(len(s.Modes), max(s.ModeCount, 1), maxCandidates)
}

// targetChoices enumerates target choices for each requirement in turn.
func targetChoices(p *effects.Projection, reqs []targeting.Requirement, src targeting.Source) [][][]state.ChosenTarget {
	out := [][][]state.ChosenTarget{nil}
	for _, req := range reqs {
		cands := targeting.Candidates(req, p, src)
		var next [][][]state.ChosenTarget
	prefixes:
		for _, prefix := range out {
			for k := req.EffectiveMin(); k <= min(req.Count, len(cands)); k++ {
				for _, idx := range combinations(len(cands), k, maxCandidates) {
					pick := make([]state.ChosenTarget, len(idx))
					for i, j := range idx {
						pick[i] = cands[j]
					}
					next = append(next, append(slices.Clone(prefix), pick))
					if len(next) >= maxCandidates {
						break prefixes
					}
				}
			}
		}
		out = next
	}
	return out
}

// decisionChoices enumerates responses to a decision request.
func decisionChoices(req state.DecisionRequest) [][]int {
	ids := make([]int, len(req.Options))
	for i, o := range req.Options {
		ids[i] = o.ID
	}
	if req.Kind == state.DecisionOrderTriggers {
		return permutations(ids, maxCandidates)
	}
	var out [][]int
	for k := req.Min; k <= min(req.Max, len(ids)); k++ {
		for _, idx := range combinations(len(ids), k, maxCandidates-len(out)) {
			choice := make([]int, len(idx))
			for i, j := range idx {
				choice[i] = ids[j]
			}
			out = append(out, choice)
		}
		if len(out) >= maxCandidates {
			break
		}
	}
	return out
}

// combinations returns up to limit k-element index subsets of [0, n) in
// lexicographic order.
func combinations(n, k, limit int) [][]int {
	if k < 0 || k > n || limit <= 0 {
		return nil
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	var out [][]int
	for {
		out = append(out, slices.Clone(idx))
		if len(out) >= limit {
			return out
		}
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// permutations returns up to limit orderings of ids.
func permutations(ids []int, limit int) [][]int {
	var out [][]int
	var walk func(prefix, rest []int)
	walk = func(prefix, rest []int) {
		if len(out) >= limit {
			return
		}
		if len(rest) == 0 {
			out = append(out, slices.Clone(prefix))
			return
		}
		for i := range rest {
			next := append(slices.Clone(rest[:i]), rest[i+1:]...)
			walk(append(prefix, rest[i]), next)
		}
	}
	walk(nil, ids)
	return out
}
