// Package rules is the rules engine: it turns a game state and a player action
// into the next game state. It casts and resolves spells, runs the turn
// structure and priority, checks state-based actions, puts triggered abilities on
// the stack and suspends on player decisions.
package rules

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wingedsheep/argentum-engine/internal/game/card"
	"github.com/wingedsheep/argentum-engine/internal/game/effects"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
	"github.com/wingedsheep/argentum-engine/internal/game/watchers"
)

// Catalog supplies card definitions. It must be fully populated before any game
// starts and must not change afterwards.
type Catalog interface {
	effects.Catalog
	Definition(ref state.CardRef) (*card.Definition, bool)
}

// Options tunes the engine.
type Options struct {
	// MaxIterations bounds every loop that runs until nothing changes: state-based
	// actions, trigger placement and step advancement.
	MaxIterations int
}

const defaultMaxIterations = 1000

// Rules applies the game rules. It holds no game state and is safe for
// concurrent use by many games.
type Rules struct {
	catalog  Catalog
	logger   *zap.Logger
	opts     Options
	watchers []watchers.Watcher
}

// New creates a rules engine over catalog.
func New(catalog Catalog, logger *zap.Logger, opts Options) *Rules {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = defaultMaxIterations
	}
	return &Rules{
		catalog:  catalog,
		logger:   logger,
		opts:     opts,
		watchers: watchers.Default(),
	}
}

// Catalog returns the card catalog the engine was built with.
func (r *Rules) Catalog() Catalog { return r.catalog }

// Project computes the projected view of st.
func (r *Rules) Project(st state.GameState) *effects.Projection {
	return effects.Project(st, r.catalog)
}

func (r *Rules) definition(ref state.CardRef) (*card.Definition, error) {
	def, ok := r.catalog.Definition(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCard, ref)
	}
	return def, nil
}

// emit records events and folds them into the turn statistics right away, so
// conditions checked later in the same resolution see them.
func (r *Rules) emit(st state.GameState, evs ...state.Event) state.GameState {
	st = st.Emit(evs...)
	return watchers.Observe(st, r.watchers, evs, r.catalog)
}

// ask suspends the game on a decision. The request gets a deterministic id
// derived from the game id and a per-game sequence number, so replays produce
// the same ids.
func (r *Rules) ask(st state.GameState, req state.DecisionRequest, cont state.Continuation) state.GameState {
	seq, st := st.NextDecisionSeq()
	req.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s/decision/%d", st.ID(), seq))).String()
	r.logger.Debug("Decision requested",
		zap.String("game", st.ID()),
		zap.String("decision", req.ID),
		zap.String("kind", string(req.Kind)),
		zap.String("player", string(req.Player)),
		zap.Int("options", len(req.Options)))
	return st.WithPending(&state.PendingDecision{Request: req, Continuation: cont})
}

// inGame returns the players still in the game in turn order.
func inGame(st state.GameState) []state.PlayerID {
	var out []state.PlayerID
	for _, p := range st.PlayerOrder() {
		if pl, ok := st.Player(p); ok && pl.InGame() {
			out = append(out, p)
		}
	}
	return out
}

// grantPriority gives priority to the active player, or to the next player in
// turn order if the active player has left the game.
func grantPriority(st state.GameState) state.GameState {
	t := st.Turn()
	t.Passes = 0
	t.Priority = t.Active
	if t.Step == state.StepCleanup {
		t.CleanupAgain = true
	}
	if pl, ok := st.Player(t.Active); !ok || !pl.InGame() {
		t.Priority = st.NextPlayer(t.Active)
	}
	return st.WithTurn(t)
}

func updatePlayer(st state.GameState, id state.PlayerID, fn func(*state.Player)) state.GameState {
	p, ok := st.Player(id)
	if !ok {
		return st
	}
	fn(&p)
	return st.WithPlayer(p)
}
