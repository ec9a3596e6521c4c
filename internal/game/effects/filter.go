package effects

import (
	"slices"

	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

// Matches reports whether o satisfies f, judged for an ability of source
// controlled by controller.
func Matches(f state.Filter, o Object, source ecs.EntityID, controller state.PlayerID) bool {
	if f.Other && o.ID == source {
		return false
	}
	if len(f.Types) > 0 && !slices.ContainsFunc(f.Types, o.HasType) {
		return false
	}
	if slices.ContainsFunc(f.NotTypes, o.HasType) {
		return false
	}
	if len(f.Subtypes) > 0 && !slices.ContainsFunc(f.Subtypes, o.HasSubtype) {
		return false
	}
	if len(f.Supertypes) > 0 && !slices.ContainsFunc(f.Supertypes, o.HasSupertype) {
		return false
	}
	if f.Colors != 0 && !o.Colors.Shares(f.Colors) {
		return false
	}
	if o.Colors.Shares(f.NotColors) {
		return false
	}
	for _, k := range f.Keywords {
		if !o.HasKeyword(k) {
			return false
		}
	}
	if !f.Controller.Holds(o.Controller, controller) {
		return false
	}
	switch f.Tapped {
	case state.TappedOnly:
		if !o.Tapped {
			return false
		}
	case state.UntappedOnly:
		if o.Tapped {
			return false
		}
	}
	if f.Attacking && !o.Attacking {
		return false
	}
	if f.MaxPower > 0 && o.Power > f.MaxPower {
		return false
	}
	if f.Token && !o.Token {
		return false
	}
	if f.Nontoken && o.Token {
		return false
	}
	return true
}
