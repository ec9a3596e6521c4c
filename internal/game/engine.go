// Package game is the entry point to the rules engine. An Engine creates games
// and applies player actions to them. It holds no game state: every call takes a
// GameState and returns the next one, so callers decide where games live.
package game

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wingedsheep/argentum-engine/internal/game/rules"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

var (
	ErrTooFewPlayers   = errors.New("at least 2 players are required")
	ErrDuplicatePlayer = errors.New("duplicate player")
	ErrUnknownCard     = errors.New("unknown card")
)

// Config holds the game rules parameters an Engine starts games with.
type Config struct {
	StartingLife     int
	StartingHandSize int
	MaxHandSize      int
	// MaxIterations bounds state-based action and trigger loops.
	MaxIterations int
	// CheckInvariants makes SubmitAction verify every resulting state and panic
	// when it is inconsistent.
	CheckInvariants bool
}

// DefaultConfig returns the standard two-player constructed settings.
func DefaultConfig() Config {
	return Config{
		StartingLife:     20,
		StartingHandSize: 7,
		MaxHandSize:      7,
		MaxIterations:    1000,
		CheckInvariants:  true,
	}
}

// PlayerSetup is one player and the deck they bring.
type PlayerSetup struct {
	ID   state.PlayerID
	Deck []state.CardRef
}

// Setup describes a new game. Players take turns in the given order and the
// first one starts.
type Setup struct {
	// GameID is generated when empty.
	GameID  string
	Players []PlayerSetup
	// Seed drives the library shuffle, so equal setups produce equal games.
	Seed    uint64
	Shuffle bool
}

// Engine runs games under one card catalog. It is safe for concurrent use as long
// as each game state is only advanced by one caller at a time.
type Engine struct {
	rules    *rules.Rules
	catalog  rules.Catalog
	logger   *zap.Logger
	cfg      Config
	recorder *ReplayRecorder
}

// NewEngine creates an engine over catalog.
func NewEngine(catalog rules.Catalog, logger *zap.Logger, cfg Config) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		rules:   rules.New(catalog, logger.Named("rules"), rules.Options{MaxIterations: cfg.MaxIterations}),
		catalog: catalog,
		logger:  logger,
		cfg:     cfg,
	}
}

// SetRecorder makes the engine record every game it creates and every accepted
// action into rr.
func (e *Engine) SetRecorder(rr *ReplayRecorder) {
	e.recorder = rr
}

// Rules returns the rules engine games are played with.
func (e *Engine) Rules() *rules.Rules { return e.rules }

// NewGame creates a game from setup: libraries are built from the decks,
// shuffled when asked, opening hands are drawn and the first turn runs until the
// starting player has priority.
func (e *Engine) NewGame(setup Setup) (state.GameState, error) {
	if len(setup.Players) < 2 {
		return state.GameState{}, ErrTooFewPlayers
	}
	gameID := setup.GameID
	if gameID == "" {
		gameID = uuid.NewString()
	}

	ids := make([]state.PlayerID, 0, len(setup.Players))
	seen := map[state.PlayerID]bool{}
	for _, p := range setup.Players {
		if p.ID == "" || seen[p.ID] {
			return state.GameState{}, fmt.Errorf("%w: %q", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = true
		ids = append(ids, p.ID)
	}

	st := state.New(gameID, ids, e.cfg.StartingLife, e.cfg.MaxHandSize)
	rng := rand.New(rand.NewPCG(setup.Seed, setup.Seed^0x9e3779b97f4a7c15))
	for _, p := range setup.Players {
		deck := append([]state.CardRef(nil), p.Deck...)
		if setup.Shuffle {
			rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
		}
		var err error
		if st, err = e.buildLibrary(st, p.ID, deck); err != nil {
			return state.GameState{}, err
		}
		if st, err = drawOpeningHand(st, p.ID, e.cfg.StartingHandSize); err != nil {
			return state.GameState{}, err
		}
	}

	initial := st
	st, err := e.rules.Start(st)
	if err != nil {
		return state.GameState{}, err
	}
	e.verify(st, "new game")
	if e.recorder != nil {
		e.recorder.StartRecording(gameID, TakeSnapshot(initial))
	}

	e.logger.Info("Game created",
		zap.String("game", gameID),
		zap.Int("players", len(ids)),
		zap.Bool("shuffled", setup.Shuffle))
	return st, nil
}

func (e *Engine) buildLibrary(st state.GameState, p state.PlayerID, deck []state.CardRef) (state.GameState, error) {
	for _, ref := range deck {
		if _, ok := e.catalog.Definition(ref); !ok {
			return st, fmt.Errorf("%w: %s in the deck of %s", ErrUnknownCard, ref, p)
		}
		var err error
		_, st, err = st.Create(state.Owned(state.ZoneLibrary, p), state.Bottom(), state.CardComponent{Ref: ref, Owner: p})
		if err != nil {
			return st, fmt.Errorf("build library of %s: %w", p, err)
		}
	}
	return st, nil
}

func drawOpeningHand(st state.GameState, p state.PlayerID, n int) (state.GameState, error) {
	lib := st.Library(p)
	for i := 0; i < n && i < len(lib); i++ {
		var err error
		if st, err = st.MoveEntity(lib[i], state.Owned(state.ZoneLibrary, p), state.Owned(state.ZoneHand, p), state.Top()); err != nil {
			return st, fmt.Errorf("opening hand of %s: %w", p, err)
		}
	}
	return st, nil
}

// SubmitAction applies action for player. Rejected actions return st unchanged
// with an error the rules package classifies (see rules.IsIllegalAction and
// rules.IsProtocolViolation).
func (e *Engine) SubmitAction(st state.GameState, player state.PlayerID, action rules.Action) (state.GameState, error) {
	next, err := e.rules.Apply(st, player, action)
	if err != nil {
		return st, err
	}
	e.verify(next, action.Name())
	if e.recorder != nil {
		e.recorder.Record(next.ID(), player, action, next)
	}
	if next.IsOver() && !st.IsOver() {
		e.logger.Info("Game finished",
			zap.String("game", next.ID()),
			zap.String("winner", string(next.Winner())),
			zap.Int("turn", next.Turn().Number))
	}
	return next, nil
}

// verify checks the state invariants when enabled and panics on a violation.
func (e *Engine) verify(st state.GameState, op string) {
	if !e.cfg.CheckInvariants {
		return
	}
	if err := state.CheckInvariants(st); err != nil {
		e.logger.Error("State invariant violated",
			zap.String("game", st.ID()),
			zap.String("op", op),
			zap.Error(err))
		panic(&rules.EngineError{Kind: rules.InvariantViolation, Op: op, Err: err})
	}
}

// PendingDecision returns the request the game is waiting on, if any.
func (e *Engine) PendingDecision(st state.GameState) *state.DecisionRequest {
	p := st.Pending()
	if p == nil {
		return nil
	}
	req := p.Request
	return &req
}

// LegalActions lists the actions player may submit now.
func (e *Engine) LegalActions(st state.GameState, player state.PlayerID) []rules.Action {
	return e.rules.LegalActions(st, player)
}
