// Package watchers folds game events into per-turn statistics that conditions
// such as "if a creature died this turn" read.
package watchers

import (
	"github.com/wingedsheep/argentum-engine/internal/game/effects"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

// Watcher observes one kind of event.
type Watcher interface {
	Key() string
	Watch(stats *state.TurnStats, e state.Event, catalog effects.Catalog)
}

// SpellsCastWatcher counts spells cast per player.
type SpellsCastWatcher struct{}

func (SpellsCastWatcher) Key() string { return "SpellsCastWatcher" }

func (SpellsCastWatcher) Watch(stats *state.TurnStats, e state.Event, _ effects.Catalog) {
	if e.Type != state.EventSpellCast || e.Controller == "" {
		return
	}
	stats.SpellsCast[e.Controller]++
}

// CreaturesDiedWatcher counts creatures put into a graveyard from the battlefield.
type CreaturesDiedWatcher struct{}

func (CreaturesDiedWatcher) Key() string { return "CreaturesDiedWatcher" }

func (CreaturesDiedWatcher) Watch(stats *state.TurnStats, e state.Event, catalog effects.Catalog) {
	if !e.Died() {
		return
	}
	if ch, ok := catalog.Characteristics(e.Ref); ok && ch.IsCreature() {
		stats.CreaturesDied++
	}
}

// LifeGainedWatcher sums life gained per player.
type LifeGainedWatcher struct{}

func (LifeGainedWatcher) Key() string { return "LifeGainedWatcher" }

func (LifeGainedWatcher) Watch(stats *state.TurnStats, e state.Event, _ effects.Catalog) {
	if e.Type == state.EventLifeGained {
		stats.LifeGained[e.Player] += e.Amount
	}
}

// AttackersWatcher counts creatures declared as attackers.
type AttackersWatcher struct{}

func (AttackersWatcher) Key() string { return "AttackersWatcher" }

func (AttackersWatcher) Watch(stats *state.TurnStats, e state.Event, _ effects.Catalog) {
	if e.Type == state.EventAttackerDeclared {
		stats.AttackersCount++
	}
}

// Default returns the watchers every game runs.
func Default() []Watcher {
	return []Watcher{SpellsCastWatcher{}, CreaturesDiedWatcher{}, LifeGainedWatcher{}, AttackersWatcher{}}
}

// Observe folds events into the turn statistics of st.
func Observe(st state.GameState, ws []Watcher, events []state.Event, catalog effects.Catalog) state.GameState {
	if len(events) == 0 {
		return st
	}
	stats := st.Stats()
	for _, e := range events {
		for _, w := range ws {
			w.Watch(&stats, e, catalog)
		}
	}
	return st.WithStats(stats)
}
