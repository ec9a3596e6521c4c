// Package condition evaluates boolean game conditions used by conditional
// effects, intervening-if triggers and activation restrictions.
package condition

import (
	"encoding/gob"
	"fmt"
	"strings"

	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

// Condition is a predicate over the projected state.
type Condition interface {
	isCondition()
}

// Op compares an observed number with a fixed value.
type Op uint8

const (
	AtLeast Op = iota
	AtMost
	Exactly
	MoreThan
	LessThan
)

var opSymbols = map[Op]string{AtLeast: ">=", AtMost: "<=", Exactly: "==", MoreThan: ">", LessThan: "<"}

func (o Op) String() string { return opSymbols[o] }

// ParseOp reads an operator written as a symbol.
func ParseOp(s string) (Op, error) {
	for op, sym := range opSymbols {
		if sym == s {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown comparison %q", s)
}

// Compare applies the operator.
func (o Op) Compare(have, want int) bool {
	switch o {
	case AtMost:
		return have <= want
	case Exactly:
		return have == want
	case MoreThan:
		return have > want
	case LessThan:
		return have < want
	}
	return have >= want
}

// LifeCompare holds when the life total of a player in the relation compares
// true. With Opponent it holds if any opponent qualifies.
type LifeCompare struct {
	Player state.Relation
	Op     Op
	Value  int
}

// ControlsCount compares the number of permanents matching Filter.
type ControlsCount struct {
	Filter state.Filter
	Op     Op
	Value  int
}

// ZoneCount compares a count of objects in a zone.
type ZoneCount struct {
	Count state.Count
	Op    Op
	Value int
}

// SourceState is a status the source object can be in.
type SourceState uint8

const (
	SourceOnBattlefield SourceState = iota
	SourceTapped
	SourceUntapped
	SourceAttacking
	SourceBlocking
)

// SourceIs holds when the source is in the given state.
type SourceIs struct{ State SourceState }

// IsYourTurn holds during the controller's turn.
type IsYourTurn struct{}

// StepIs holds during the given step.
type StepIs struct{ Step state.Step }

// StackEmpty holds when nothing is on the stack.
type StackEmpty struct{}

// InCombat holds during the combat phase.
type InCombat struct{}

// SpellsCastThisTurn compares the number of spells cast this turn by players in
// the relation.
type SpellsCastThisTurn struct {
	Player state.Relation
	Op     Op
	Value  int
}

// CreaturesDiedThisTurn compares the number of creatures that died this turn.
type CreaturesDiedThisTurn struct {
	Op    Op
	Value int
}

type And struct{ Conditions []Condition }
type Or struct{ Conditions []Condition }
type Not struct{ Condition Condition }

func (LifeCompare) isCondition()           {}
func (ControlsCount) isCondition()         {}
func (ZoneCount) isCondition()             {}
func (SourceIs) isCondition()              {}
func (IsYourTurn) isCondition()            {}
func (StepIs) isCondition()                {}
func (StackEmpty) isCondition()            {}
func (InCombat) isCondition()              {}
func (SpellsCastThisTurn) isCondition()    {}
func (CreaturesDiedThisTurn) isCondition() {}
func (And) isCondition()                   {}
func (Or) isCondition()                    {}
func (Not) isCondition()                   {}

func (IsYourTurn) GobEncode() ([]byte, error) { return nil, nil }
func (*IsYourTurn) GobDecode([]byte) error    { return nil }
func (StackEmpty) GobEncode() ([]byte, error) { return nil, nil }
func (*StackEmpty) GobDecode([]byte) error    { return nil }
func (InCombat) GobEncode() ([]byte, error)   { return nil, nil }
func (*InCombat) GobDecode([]byte) error      { return nil }

func init() {
	gob.Register(LifeCompare{})
	gob.Register(ControlsCount{})
	gob.Register(ZoneCount{})
	gob.Register(SourceIs{})
	gob.Register(IsYourTurn{})
	gob.Register(StepIs{})
	gob.Register(StackEmpty{})
	gob.Register(InCombat{})
	gob.Register(SpellsCastThisTurn{})
	gob.Register(CreaturesDiedThisTurn{})
	gob.Register(And{})
	gob.Register(Or{})
	gob.Register(Not{})
}

// Describe renders a condition for logs and decision prompts.
func Describe(c Condition) string {
	switch c := c.(type) {
	case nil:
		return "always"
	case LifeCompare:
		return fmt.Sprintf("life(%s) %s %d", relation(c.Player), c.Op, c.Value)
	case ControlsCount:
		return fmt.Sprintf("permanents %s %d", c.Op, c.Value)
	case ZoneCount:
		return fmt.Sprintf("cards in %s %s %d", c.Count.Zone, c.Op, c.Value)
	case SourceIs:
		return fmt.Sprintf("source is %s", [...]string{"on battlefield", "tapped", "untapped", "attacking", "blocking"}[c.State])
	case IsYourTurn:
		return "your turn"
	case StepIs:
		return "step is " + c.Step.String()
	case StackEmpty:
		return "stack empty"
	case InCombat:
		return "in combat"
	case SpellsCastThisTurn:
		return fmt.Sprintf("spells cast(%s) %s %d", relation(c.Player), c.Op, c.Value)
	case CreaturesDiedThisTurn:
		return fmt.Sprintf("creatures died %s %d", c.Op, c.Value)
	case And:
		return join(c.Conditions, " and ")
	case Or:
		return join(c.Conditions, " or ")
	case Not:
		return "not " + Describe(c.Condition)
	}
	return fmt.Sprintf("%T", c)
}

func join(cs []Condition, sep string) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = Describe(c)
	}
	return "(" + strings.Join(parts, sep) + ")"
}

func relation(r state.Relation) string {
	switch r {
	case state.You:
		return "you"
	case state.Opponent:
		return "opponent"
	}
	return "any"
}
