package rules

import (
	"encoding/gob"

	"go.uber.org/zap"

	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

// Action is something a player submits to the engine.
type Action interface {
	isAction()
	// Name is the action's name in logs and replays.
	Name() string
}

// PassPriority passes priority to the next player.
type PassPriority struct{}

// PlayLand plays a land from hand. Per rule 305.
type PlayLand struct {
	Card ecs.EntityID
}

// CastSpell casts a spell from hand with its choices made up front.
type CastSpell struct {
	Card ecs.EntityID
	// Targets holds the chosen targets per requirement of the chosen modes.
	Targets [][]state.ChosenTarget
	Modes   []int
	X       int
}

// ActivateAbility activates the Index-th activated ability of a permanent.
type ActivateAbility struct {
	Source  ecs.EntityID
	Index   int
	Targets [][]state.ChosenTarget
	Modes   []int
	X       int
}

// Attack is one attacking creature and the player it attacks.
type Attack struct {
	Attacker ecs.EntityID
	Defender state.PlayerID
}

// DeclareAttackers answers the pending attackers decision.
type DeclareAttackers struct {
	Attacks []Attack
}

// Block is one blocking creature and the attacker it blocks.
type Block struct {
	Blocker  ecs.EntityID
	Attacker ecs.EntityID
}

// DeclareBlockers answers the pending blockers decision.
type DeclareBlockers struct {
	Blocks []Block
}

// MakeDecision answers the pending decision request with the chosen option ids.
type MakeDecision struct {
	DecisionID string
	Choices    []int
}

// Concede makes the player leave the game. It is allowed at any time.
type Concede struct{}

func (PassPriority) isAction()     {}
func (PlayLand) isAction()         {}
func (CastSpell) isAction()        {}
func (ActivateAbility) isAction()  {}
func (DeclareAttackers) isAction() {}
func (DeclareBlockers) isAction()  {}
func (MakeDecision) isAction()     {}
func (Concede) isAction()          {}

func (PassPriority) Name() string     { return "PASS_PRIORITY" }
func (PlayLand) Name() string         { return "PLAY_LAND" }
func (CastSpell) Name() string        { return "CAST_SPELL" }
func (ActivateAbility) Name() string  { return "ACTIVATE_ABILITY" }
func (DeclareAttackers) Name() string { return "DECLARE_ATTACKERS" }
func (DeclareBlockers) Name() string  { return "DECLARE_BLOCKERS" }
func (MakeDecision) Name() string     { return "MAKE_DECISION" }
func (Concede) Name() string          { return "CONCEDE" }

func (PassPriority) GobEncode() ([]byte, error) { return nil, nil }
func (*PassPriority) GobDecode([]byte) error    { return nil }
func (Concede) GobEncode() ([]byte, error)      { return nil, nil }
func (*Concede) GobDecode([]byte) error         { return nil }

func init() {
	gob.Register(PassPriority{})
	gob.Register(PlayLand{})
	gob.Register(CastSpell{})
	gob.Register(ActivateAbility{})
	gob.Register(DeclareAttackers{})
	gob.Register(DeclareBlockers{})
	gob.Register(MakeDecision{})
	gob.Register(Concede{})
}

// Apply performs action for player and runs the game forward until a player
// has priority, a decision is pending or the game is over. On error the returned
// state is st unchanged.
func (r *Rules) Apply(st state.GameState, player state.PlayerID, action Action) (state.GameState, error) {
	next, err := r.apply(st, player, action)
	if err != nil {
		r.logger.Debug("Action rejected",
			zap.String("game", st.ID()),
			zap.String("player", string(player)),
			zap.String("action", action.Name()),
			zap.Error(err))
		return st, err
	}
	return next, nil
}

func (r *Rules) apply(st state.GameState, player state.PlayerID, action Action) (state.GameState, error) {
	op := action.Name()
	if st.IsOver() {
		return st, illegal(op, ErrGameOver, "")
	}
	pl, ok := st.Player(player)
	if !ok || !pl.InGame() {
		return st, protocol(op, ErrNotAllowed, "%s is not playing", player)
	}
	if _, ok := action.(Concede); ok {
		return r.concede(st, player)
	}

	if pending := st.Pending(); pending != nil {
		var err error
		switch a := action.(type) {
		case MakeDecision:
			st, err = r.decide(st, player, a.DecisionID, a.Choices)
		case DeclareAttackers:
			st, err = r.declareAttackersAction(st, player, a)
		case DeclareBlockers:
			st, err = r.declareBlockersAction(st, player, a)
		default:
			return st, protocol(op, ErrDecisionPending, "%s", pending.Request.Kind)
		}
		if err != nil {
			return st, err
		}
		return r.run(st)
	}

	switch action.(type) {
	case MakeDecision, DeclareAttackers, DeclareBlockers:
		return st, protocol(op, ErrNoDecision, "")
	}
	if st.Turn().Priority != player {
		return st, illegal(op, ErrNoPriority, "%s", player)
	}

	var err error
	switch a := action.(type) {
	case PassPriority:
		st, err = r.passPriority(st, player)
	case PlayLand:
		st, err = r.playLand(st, player, a)
	case CastSpell:
		st, err = r.castSpell(st, player, a)
	case ActivateAbility:
		st, err = r.activate(st, player, a)
	default:
		return st, protocol(op, ErrUnknownAction, "%T", action)
	}
	if err != nil {
		return st, err
	}
	return r.run(st)
}

// concede takes the player out of the game. Per rule 104.3a.
func (r *Rules) concede(st state.GameState, player state.PlayerID) (state.GameState, error) {
	st = updatePlayer(st, player, func(p *state.Player) { p.Conceded = true })
	st = r.emit(st, state.Event{Type: state.EventPlayerLost, Player: player})
	r.logger.Info("Player conceded", zap.String("game", st.ID()), zap.String("player", string(player)))
	if st.Turn().Priority == player {
		t := st.Turn()
		t.Priority = st.NextPlayer(player)
		st = st.WithTurn(t)
	}
	if p := st.Pending(); p != nil && p.Request.Player == player {
		st = st.WithPending(nil)
		st = grantPriority(st)
	}
	return r.run(st)
}
