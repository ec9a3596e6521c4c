package rules

import (
	"encoding/gob"
	"slices"

	"go.uber.org/zap"

	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

// OrderTriggers waits for a player to order their simultaneous triggers.
type OrderTriggers struct {
	// Placed are triggers already in stack order; Choosing are the deciding
	// player's triggers; Rest belong to later players in APNAP order.
	Placed   []state.PendingTrigger
	Choosing []state.PendingTrigger
	Rest     []state.PendingTrigger
}

// TriggerTargets waits for the controller of a triggered ability to choose
// targets for one of its requirements.
type TriggerTargets struct {
	Trigger    state.PendingTrigger
	Targets    [][]state.ChosenTarget
	Candidates []state.ChosenTarget
	// Queue holds the triggers still to be put on the stack after this one.
	Queue []state.PendingTrigger
}

// LegendRule waits for a player to choose which legendary permanent to keep.
type LegendRule struct {
	Candidates []ecs.EntityID
}

// AwaitAttackers waits for the active player to declare attackers.
type AwaitAttackers struct{}

// AwaitBlockers waits for a defending player to declare blockers. Rest are the
// defending players who declare after them.
type AwaitBlockers struct {
	Rest []state.PlayerID
}

// CleanupDiscard waits for the active player to discard down to hand size.
type CleanupDiscard struct{}

func (OrderTriggers) ContinuationKind() string  { return "order_triggers" }
func (TriggerTargets) ContinuationKind() string { return "trigger_targets" }
func (LegendRule) ContinuationKind() string     { return "legend_rule" }
func (AwaitAttackers) ContinuationKind() string { return "declare_attackers" }
func (AwaitBlockers) ContinuationKind() string  { return "declare_blockers" }
func (CleanupDiscard) ContinuationKind() string { return "cleanup_discard" }

func (AwaitAttackers) GobEncode() ([]byte, error) { return nil, nil }
func (*AwaitAttackers) GobDecode([]byte) error    { return nil }
func (CleanupDiscard) GobEncode() ([]byte, error) { return nil, nil }
func (*CleanupDiscard) GobDecode([]byte) error    { return nil }

func init() {
	gob.Register(Resolution{})
	gob.Register(OrderTriggers{})
	gob.Register(TriggerTargets{})
	gob.Register(LegendRule{})
	gob.Register(AwaitAttackers{})
	gob.Register(AwaitBlockers{})
	gob.Register(CleanupDiscard{})
}

// validChoices checks a response against the request: the right number of
// distinct offered options, or a full ordering for ORDER_TRIGGERS.
func validChoices(req state.DecisionRequest, choices []int) bool {
	if req.Kind == state.DecisionOrderTriggers && len(choices) != len(req.Options) {
		return false
	}
	if len(choices) < req.Min || len(choices) > req.Max {
		return false
	}
	seen := make(map[int]bool, len(choices))
	for _, c := range choices {
		if seen[c] || !req.HasOption(c) {
			return false
		}
		seen[c] = true
	}
	return true
}

// decide answers the pending decision. A response to a different request or
// from the wrong player is a protocol violation; a response the request does not
// allow is an illegal action.
func (r *Rules) decide(st state.GameState, player state.PlayerID, id string, choices []int) (state.GameState, error) {
	const op = "decide"
	pending := st.Pending()
	if pending == nil {
		return st, protocol(op, ErrNoDecision, "")
	}
	req := pending.Request
	if req.ID != id {
		return st, protocol(op, ErrDecisionMismatch, "got %q, want %q", id, req.ID)
	}
	if req.Player != player {
		return st, protocol(op, ErrWrongPlayer, "%s answered a decision for %s", player, req.Player)
	}
	if !validChoices(req, choices) {
		return st, illegal(op, ErrInvalidChoice, "%v for %s", choices, req.Kind)
	}
	r.logger.Debug("Decision made",
		zap.String("game", st.ID()),
		zap.String("decision", id),
		zap.String("player", string(player)),
		zap.Ints("choices", choices))

	next := st.WithPending(nil)
	var err error
	switch c := pending.Continuation.(type) {
	case Resolution:
		next, err = r.resume(next, c, player, choices)
	case OrderTriggers:
		next, err = r.resumeOrder(next, c, choices)
	case TriggerTargets:
		next, err = r.resumeTriggerTargets(next, c, choices)
	case LegendRule:
		next, err = r.resumeLegendRule(next, c, choices)
	case AwaitAttackers:
		next, err = r.declareAttackers(next, req, choices)
	case AwaitBlockers:
		next, err = r.declareBlockers(next, req, c, choices)
	case CleanupDiscard:
		next, err = r.resumeCleanup(next, req, choices)
	default:
		return st, invariant(op, ErrUnknownContinuation)
	}
	if err != nil {
		return st, err
	}
	return next, nil
}

// resumeLegendRule keeps the chosen permanent and puts the others into their
// owners' graveyards. Per rule 704.5j.
func (r *Rules) resumeLegendRule(st state.GameState, c LegendRule, choices []int) (state.GameState, error) {
	keep := c.Candidates[choices[0]]
	var err error
	for _, id := range c.Candidates {
		if id == keep || !st.InZone(id, state.ZoneBattlefield) {
			continue
		}
		if st, err = r.moveTo(st, id, state.ZoneGraveyard, state.Top(), ""); err != nil {
			return st, invariant("legend rule", err)
		}
	}
	return st, nil
}

// optionFor finds the option for an entity pair.
func optionFor(req state.DecisionRequest, entity ecs.EntityID, player state.PlayerID, paired ecs.EntityID) (int, bool) {
	i := slices.IndexFunc(req.Options, func(o state.Option) bool {
		return o.Entity == entity && o.Player == player && o.Paired == paired
	})
	if i < 0 {
		return 0, false
	}
	return req.Options[i].ID, true
}
