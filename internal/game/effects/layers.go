package effects

import (
	"slices"
	"sort"
	"strings"

	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

// activeEffect is a continuous effect taking part in one projection.
type activeEffect struct {
	fx state.ContinuousEffect
	// static effects come from a static ability of a permanent and follow
	// that permanent's current controller and abilities.
	static bool
	seq    int
}

type phase struct {
	layer    state.Layer
	sublayer state.Sublayer
}

// Per rule 613.4, layer 7 is split into sublayers; counters (7d) are not effects
// and are applied between modify and switch.
var phases = []phase{
	{state.LayerControl, state.SublayerNone},
	{state.LayerText, state.SublayerNone},
	{state.LayerType, state.SublayerNone},
	{state.LayerColor, state.SublayerNone},
	{state.LayerAbility, state.SublayerNone},
	{state.LayerPowerToughness, state.SublayerCDA},
	{state.LayerPowerToughness, state.SublayerSet},
	{state.LayerPowerToughness, state.SublayerModify},
	{state.LayerPowerToughness, state.SublayerCounters},
	{state.LayerPowerToughness, state.SublayerSwitch},
}

func (p *Projection) applyLayers() {
	floating := activeFloating(p.st)

	// Layer 1 first: copy effects replace the printed values, and with them
	// the static abilities gathered for the later layers.
	copies := append(filterPhase(p.gatherStatics(), phase{layer: state.LayerCopy}), filterPhase(floating, phase{layer: state.LayerCopy})...)
	p.applyPhase(copies)

	all := append(p.gatherStatics(), floating...)
	for _, ph := range phases {
		if ph.sublayer == state.SublayerCounters {
			p.applyCounters()
			continue
		}
		p.applyPhase(filterPhase(all, ph))
	}
}

func (p *Projection) gatherStatics() []activeEffect {
	var out []activeEffect
	seq := 0
	for _, id := range p.order {
		o := p.objects[id]
		for _, sa := range o.Statics {
			out = append(out, activeEffect{
				fx: state.ContinuousEffect{
					Source:     o.Ref,
					Controller: o.Controller,
					Timestamp:  o.EnteredAt,
					Affected:   sa.Affected,
					Mod:        sa.Mod,
				},
				static: true,
				seq:    seq,
			})
			seq++
		}
	}
	return out
}

// activeFloating returns the floating effects that currently apply.
func activeFloating(st state.GameState) []activeEffect {
	var out []activeEffect
	for i, fx := range st.Floating() {
		if fx.Duration == state.WhileSourceOnBattlefield {
			if !st.IsCurrent(fx.Source) || !st.InZone(fx.Source.ID, state.ZoneBattlefield) {
				continue
			}
		}
		out = append(out, activeEffect{fx: fx, seq: 1<<20 + i})
	}
	return out
}

func filterPhase(effects []activeEffect, ph phase) []activeEffect {
	var out []activeEffect
	for _, e := range effects {
		if e.fx.Mod.Layer() == ph.layer && e.fx.Mod.Sublayer() == ph.sublayer {
			out = append(out, e)
		}
	}
	return out
}

// applyPhase applies effects of one layer or sublayer in timestamp order, except
// that an effect that depends on another waits for it. Per rule 613.8.
func (p *Projection) applyPhase(effects []activeEffect) {
	sort.SliceStable(effects, func(i, j int) bool {
		if effects[i].fx.Timestamp != effects[j].fx.Timestamp {
			return effects[i].fx.Timestamp < effects[j].fx.Timestamp
		}
		return effects[i].seq < effects[j].seq
	})
	remaining := effects
	for len(remaining) > 0 {
		next := 0
		if len(remaining) > 1 {
			next = p.firstIndependent(remaining)
		}
		p.apply(remaining[next])
		remaining = slices.Delete(slices.Clone(remaining), next, next+1)
	}
}

// firstIndependent returns the earliest effect that depends on no other remaining
// effect. When every effect waits on another there is a dependency loop and
// timestamp order decides.
func (p *Projection) firstIndependent(effects []activeEffect) int {
	for i, a := range effects {
		independent := true
		for j, b := range effects {
			if i != j && p.dependsOn(a, b) {
				independent = false
				break
			}
		}
		if independent {
			return i
		}
	}
	return 0
}

// dependsOn reports whether applying b would change whether a exists or what it applies to.
func (p *Projection) dependsOn(a, b activeEffect) bool {
	trial := p.clone()
	trial.apply(b)
	if p.exists(a) != trial.exists(a) {
		return true
	}
	return !slices.Equal(p.affected(a), trial.affected(a))
}

// exists reports whether the effect still applies. Static abilities stop once
// their source has lost its abilities before the ability layer they act in.
func (p *Projection) exists(e activeEffect) bool {
	if !e.static {
		return true
	}
	src, ok := p.objects[e.fx.Source.ID]
	if !ok {
		return false
	}
	if e.fx.Mod.Layer() >= state.LayerAbility && src.LostAbilities {
		return false
	}
	return true
}

func (p *Projection) controllerOf(e activeEffect) state.PlayerID {
	if e.static {
		if src, ok := p.objects[e.fx.Source.ID]; ok {
			return src.Controller
		}
	}
	return e.fx.Controller
}

// affected returns the objects the effect applies to right now, in id order.
func (p *Projection) affected(e activeEffect) []ecs.EntityID {
	if !p.exists(e) {
		return nil
	}
	src := e.fx.Source
	switch a := e.fx.Affected.(type) {
	case state.AffectSelf:
		if o, ok := p.objects[src.ID]; ok && o.Ref == src {
			return []ecs.EntityID{src.ID}
		}
	case state.AffectAttached:
		if o, ok := p.objects[src.ID]; ok && o.Ref == src {
			if _, ok := p.objects[o.AttachedTo]; ok {
				return []ecs.EntityID{o.AttachedTo}
			}
		}
	case state.AffectEntities:
		var out []ecs.EntityID
		for _, ref := range a.Refs {
			if o, ok := p.objects[ref.ID]; ok && o.Ref == ref {
				out = append(out, ref.ID)
			}
		}
		slices.Sort(out)
		return slices.Compact(out)
	case state.AffectFilter:
		var out []ecs.EntityID
		ctrl := p.controllerOf(e)
		for _, id := range p.order {
			if Matches(a.Filter, *p.objects[id], src.ID, ctrl) {
				out = append(out, id)
			}
		}
		return out
	}
	return nil
}

func (p *Projection) apply(e activeEffect) {
	for _, id := range p.affected(e) {
		p.modify(p.objects[id], e)
	}
}

func (p *Projection) modify(o *Object, e activeEffect) {
	switch m := e.fx.Mod.(type) {
	case state.CopyOf:
		if base, ok := p.catalog.Characteristics(m.Ref); ok {
			o.Characteristics = base.Clone()
		}
	case state.SetController:
		o.Controller = m.Player
	case state.ChangeText:
		changeText(o, m.From, m.To)
	case state.AddTypes:
		for _, t := range m.Types {
			if !o.HasType(t) {
				o.Types = append(o.Types, t)
			}
		}
		for _, s := range m.Subtypes {
			if !o.HasSubtype(s) {
				o.Subtypes = append(o.Subtypes, s)
			}
		}
	case state.SetTypes:
		o.Types = slices.Clone(m.Types)
		o.Subtypes = slices.Clone(m.Subtypes)
	case state.RemoveTypes:
		o.Types = slices.DeleteFunc(o.Types, func(t state.CardType) bool { return slices.Contains(m.Types, t) })
		o.Subtypes = slices.DeleteFunc(o.Subtypes, func(s string) bool {
			return slices.ContainsFunc(m.Subtypes, func(r string) bool { return strings.EqualFold(r, s) })
		})
	case state.SetColors:
		o.Colors = m.Colors
	case state.AddColors:
		o.Colors |= m.Colors
	case state.AddKeywords:
		o.AddKeywords(m.Keywords...)
	case state.RemoveKeywords:
		o.RemoveKeywords(m.Keywords...)
	case state.LoseAllAbilities:
		o.Keywords = nil
		o.LostAbilities = true
	case state.CountPT:
		n := count(p.st, p.catalog, p.objects, p.order, m.Count, e.fx.Source.ID, p.controllerOf(e))
		o.Power, o.Toughness, o.HasPT = n+m.PowerPlus, n+m.ToughPlus, true
	case state.SetPT:
		o.Power, o.Toughness, o.HasPT = m.Power, m.Toughness, true
	case state.ModifyPT:
		o.Power += m.Power
		o.Toughness += m.Toughness
	case state.SwitchPT:
		o.Power, o.Toughness = o.Toughness, o.Power
	}
}

func (p *Projection) applyCounters() {
	for _, id := range p.order {
		o := p.objects[id]
		if !o.HasPT {
			continue
		}
		dp, dt := o.Counters.Boost()
		o.Power += dp
		o.Toughness += dt
	}
}

func changeText(o *Object, from, to string) {
	o.Text = strings.ReplaceAll(o.Text, from, to)
	for i, s := range o.Subtypes {
		if strings.EqualFold(s, from) {
			o.Subtypes[i] = to
		}
	}
	for i, k := range o.Keywords {
		if _, ok := k.ProtectionColors(); ok {
			o.Keywords[i] = state.Keyword(strings.ReplaceAll(string(k), strings.ToLower(from), strings.ToLower(to)))
		}
	}
}
