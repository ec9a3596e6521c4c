// Package card holds card definitions: printed characteristics plus the script
// of abilities the rules engine interprets.
package card

import (
	"errors"
	"fmt"
	"slices"

	"github.com/wingedsheep/argentum-engine/internal/game/condition"
	"github.com/wingedsheep/argentum-engine/internal/game/mana"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
	"github.com/wingedsheep/argentum-engine/internal/game/targeting"
)

var ErrInvalidDefinition = errors.New("invalid card definition")

// Definition is the read-only description of a card.
type Definition struct {
	Ref    state.CardRef
	Set    string
	Rarity string
	state.Characteristics

	// Spell is what happens when an instant or sorcery resolves. Permanent spells
	// usually have none.
	Spell     *Script
	Activated []ActivatedAbility
	Triggered []TriggeredAbility
}

// FizzlePolicy decides what happens when some targets became illegal.
type FizzlePolicy uint8

const (
	// PartialSkip removes the item only if every target is illegal; otherwise the
	// illegal targets are skipped. Per rule 608.2b.
	PartialSkip FizzlePolicy = iota
	// AllOrNothing removes the item when any target is illegal.
	AllOrNothing
)

// Mode is one choice of a modal spell or ability.
type Mode struct {
	Description string
	Targets     []targeting.Requirement
	Effect      Effect
}

// Script is the resolvable part of a spell or ability.
type Script struct {
	Targets []targeting.Requirement
	Effect  Effect
	// Modes, when present, replace Targets and Effect. ModeCount modes are chosen.
	Modes     []Mode
	ModeCount int
	Fizzle    FizzlePolicy
}

// Requirements returns the target requirements for the chosen modes, in order.
func (s Script) Requirements(modes []int) []targeting.Requirement {
	if len(s.Modes) == 0 {
		return s.Targets
	}
	var out []targeting.Requirement
	for _, m := range modes {
		if m >= 0 && m < len(s.Modes) {
			out = append(out, s.Modes[m].Targets...)
		}
	}
	return out
}

// Body returns the effect for the chosen modes and, for each chosen mode, the
// offset of its first target requirement.
func (s Script) Body(modes []int) Effect {
	if len(s.Modes) == 0 {
		return s.Effect
	}
	var seq Sequence
	offset := 0
	for _, m := range modes {
		if m < 0 || m >= len(s.Modes) {
			continue
		}
		mode := s.Modes[m]
		seq.Effects = append(seq.Effects, Shifted{Offset: offset, Effect: mode.Effect})
		offset += len(mode.Targets)
	}
	return seq
}

// Modal reports whether modes must be chosen.
func (s Script) Modal() bool { return len(s.Modes) > 0 }

// CheckModes validates a choice of modes.
func (s Script) CheckModes(modes []int) error {
	if !s.Modal() {
		if len(modes) > 0 {
			return fmt.Errorf("modes chosen for a non-modal ability")
		}
		return nil
	}
	want := max(s.ModeCount, 1)
	if len(modes) != want {
		return fmt.Errorf("choose %d mode(s), got %d", want, len(modes))
	}
	seen := map[int]bool{}
	for _, m := range modes {
		if m < 0 || m >= len(s.Modes) || seen[m] {
			return fmt.Errorf("invalid mode %d", m)
		}
		seen[m] = true
	}
	return nil
}

// Timing restricts when an ability may be activated.
type Timing uint8

const (
	TimingInstant Timing = iota
	TimingSorcery
)

// Cost is the cost of activating an ability.
type Cost struct {
	Mana          mana.Cost
	Tap           bool
	SacrificeSelf bool
	PayLife       int
	// RemoveCounters removes counters of the given type from the source.
	RemoveCounters int
	CounterType    string
}

// ActivatedAbility is "[Cost]: [Effect]".
type ActivatedAbility struct {
	Description string
	Cost        Cost
	Script
	Timing Timing
	// Condition restricts when the ability may be activated.
	Condition condition.Condition
	// Mana abilities resolve immediately and do not use the stack. Per rule 605.3.
	IsMana bool
}

// TriggerEvent names what a triggered ability waits for.
type TriggerEvent uint8

const (
	OnEnterBattlefield TriggerEvent = iota + 1
	OnDies
	OnLeaveBattlefield
	OnUpkeep
	OnEndStep
	OnAttack
	OnCombatDamageToPlayer
	OnSpellCast
	OnDrawStep
	OnGainLife
)

var triggerNames = map[TriggerEvent]string{
	OnEnterBattlefield:     "enters",
	OnDies:                 "dies",
	OnLeaveBattlefield:     "leaves",
	OnUpkeep:               "upkeep",
	OnEndStep:              "end_step",
	OnAttack:               "attacks",
	OnCombatDamageToPlayer: "combat_damage_to_player",
	OnSpellCast:            "spell_cast",
	OnDrawStep:             "draw_step",
	OnGainLife:             "gain_life",
}

func (e TriggerEvent) String() string { return triggerNames[e] }

// ParseTriggerEvent reads a trigger event name.
func ParseTriggerEvent(s string) (TriggerEvent, bool) {
	for e, name := range triggerNames {
		if name == s {
			return e, true
		}
	}
	return 0, false
}

// TriggerSpec says which events trigger an ability.
type TriggerSpec struct {
	Event TriggerEvent
	// Self restricts object events to the source itself. Otherwise Filter picks
	// which objects count, relative to the source.
	Self   bool
	Filter state.Filter
	// Player restricts player events (step triggers, spell cast, life gain).
	Player state.Relation
}

// TriggeredAbility is "When/Whenever/At [event], [effect]".
type TriggeredAbility struct {
	Description string
	Trigger     TriggerSpec
	// If is an intervening-if condition, checked when the ability triggers and
	// again on resolution. Per rule 603.4.
	If condition.Condition
	Script
}

// Validate checks the definition for structural mistakes.
func (d *Definition) Validate() error {
	if d.Ref == "" || d.Name == "" {
		return fmt.Errorf("%w: missing ref or name", ErrInvalidDefinition)
	}
	scripts := []Script{}
	if d.Spell != nil {
		scripts = append(scripts, *d.Spell)
	}
	for _, a := range d.Activated {
		scripts = append(scripts, a.Script)
	}
	for _, t := range d.Triggered {
		if t.Trigger.Event == 0 {
			return fmt.Errorf("%w: %s has a trigger without event", ErrInvalidDefinition, d.Ref)
		}
		scripts = append(scripts, t.Script)
	}
	for _, s := range scripts {
		reqs := slices.Clone(s.Targets)
		for _, m := range s.Modes {
			reqs = append(reqs, m.Targets...)
		}
		for _, r := range reqs {
			if err := r.Check(); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, d.Ref, err)
			}
		}
		if s.Modal() && (s.ModeCount > len(s.Modes)) {
			return fmt.Errorf("%w: %s chooses %d of %d modes", ErrInvalidDefinition, d.Ref, s.ModeCount, len(s.Modes))
		}
	}
	if d.HasType(state.TypeInstant) || d.HasType(state.TypeSorcery) {
		if d.Spell == nil {
			return fmt.Errorf("%w: %s has no spell ability", ErrInvalidDefinition, d.Ref)
		}
	}
	return nil
}
