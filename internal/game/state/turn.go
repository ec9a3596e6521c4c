package state

import "fmt"

// Phase groups steps of a turn.
type Phase int

const (
	PhaseBeginning Phase = iota
	PhasePrecombatMain
	PhaseCombat
	PhasePostcombatMain
	PhaseEnding
)

var phaseNames = map[Phase]string{
	PhaseBeginning:      "BEGINNING",
	PhasePrecombatMain:  "PRECOMBAT_MAIN",
	PhaseCombat:         "COMBAT",
	PhasePostcombatMain: "POSTCOMBAT_MAIN",
	PhaseEnding:         "ENDING",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// Step is one step of a turn.
type Step int

const (
	StepUntap Step = iota
	StepUpkeep
	StepDraw
	StepMain1
	StepBeginCombat
	StepDeclareAttackers
	StepDeclareBlockers
	StepFirstStrikeDamage
	StepCombatDamage
	StepEndCombat
	StepMain2
	StepEnd
	StepCleanup
)

var stepNames = map[Step]string{
	StepUntap:             "UNTAP",
	StepUpkeep:            "UPKEEP",
	StepDraw:              "DRAW",
	StepMain1:             "MAIN1",
	StepBeginCombat:       "BEGIN_COMBAT",
	StepDeclareAttackers:  "DECLARE_ATTACKERS",
	StepDeclareBlockers:   "DECLARE_BLOCKERS",
	StepFirstStrikeDamage: "FIRST_STRIKE_DAMAGE",
	StepCombatDamage:      "COMBAT_DAMAGE",
	StepEndCombat:         "END_COMBAT",
	StepMain2:             "MAIN2",
	StepEnd:               "END",
	StepCleanup:           "CLEANUP",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STEP_%d", int(s))
}

// Phase returns the phase the step belongs to.
func (s Step) Phase() Phase {
	switch {
	case s <= StepDraw:
		return PhaseBeginning
	case s == StepMain1:
		return PhasePrecombatMain
	case s <= StepEndCombat:
		return PhaseCombat
	case s == StepMain2:
		return PhasePostcombatMain
	default:
		return PhaseEnding
	}
}

// IsMain reports whether the step is a main phase.
func (s Step) IsMain() bool { return s == StepMain1 || s == StepMain2 }

// IsCombat reports whether the step is part of the combat phase.
func (s Step) IsCombat() bool { return s.Phase() == PhaseCombat }

// TurnPosition is where the game is within the turn structure.
type TurnPosition struct {
	Number int
	Active PlayerID
	Step   Step
	// Priority is the player who may act now; empty while no one has priority.
	Priority PlayerID
	// Passes counts consecutive priority passes with no intervening action.
	Passes int
	// FirstStrike is set when the current combat includes a first strike damage step.
	FirstStrike bool
	// Starting is the player who took the first turn.
	Starting PlayerID
	// CleanupAgain is set when players received priority during the cleanup
	// step, which is then followed by another cleanup step.
	CleanupAgain bool
}

// TurnStats counts things that happened this turn, for conditions and watchers.
type TurnStats struct {
	SpellsCast     map[PlayerID]int
	CreaturesDied  int
	LifeGained     map[PlayerID]int
	AttackersCount int
}

func (s TurnStats) clone() TurnStats {
	out := TurnStats{CreaturesDied: s.CreaturesDied, AttackersCount: s.AttackersCount}
	out.SpellsCast = make(map[PlayerID]int, len(s.SpellsCast))
	for k, v := range s.SpellsCast {
		out.SpellsCast[k] = v
	}
	out.LifeGained = make(map[PlayerID]int, len(s.LifeGained))
	for k, v := range s.LifeGained {
		out.LifeGained[k] = v
	}
	return out
}
