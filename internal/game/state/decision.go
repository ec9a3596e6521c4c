package state

import "github.com/wingedsheep/argentum-engine/internal/game/ecs"

// DecisionKind says what a player is being asked.
type DecisionKind string

const (
	DecisionChooseTargets    DecisionKind = "CHOOSE_TARGETS"
	DecisionChooseMode       DecisionKind = "CHOOSE_MODE"
	DecisionOrderTriggers    DecisionKind = "ORDER_TRIGGERS"
	DecisionYesNo            DecisionKind = "YES_NO"
	DecisionChooseCards      DecisionKind = "CHOOSE_CARDS"
	DecisionLegendRule       DecisionKind = "LEGEND_RULE"
	DecisionDeclareAttackers DecisionKind = "DECLARE_ATTACKERS"
	DecisionDeclareBlockers  DecisionKind = "DECLARE_BLOCKERS"
	DecisionDiscard          DecisionKind = "DISCARD"
)

// Option is one choice offered by a decision request.
type Option struct {
	ID     int
	Label  string
	Entity ecs.EntityID
	Player PlayerID
	// Paired is the second object of a pair option, such as the attacker a blocker blocks.
	Paired ecs.EntityID
}

// DecisionRequest describes input the engine needs from a player before it can continue.
type DecisionRequest struct {
	ID      string
	Player  PlayerID
	Kind    DecisionKind
	Prompt  string
	Options []Option
	// Min and Max bound how many options the response chooses. For ORDER_TRIGGERS the
	// response lists every option in the order chosen.
	Min, Max int
	Source   ecs.EntityID
}

// HasOption reports whether id is one of the offered options.
func (r DecisionRequest) HasOption(id int) bool {
	for _, o := range r.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

// Continuation is the suspended remainder of the engine's work, resumed when the
// matching decision response arrives. Implementations are plain data.
type Continuation interface {
	ContinuationKind() string
}

// PendingDecision is an outstanding request together with what to do with the answer.
type PendingDecision struct {
	Request      DecisionRequest
	Continuation Continuation
}
