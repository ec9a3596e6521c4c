package rules

import (
	"go.uber.org/zap"

	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

// passPriority passes priority to the next player. When every player in the
// game has passed in succession, the top of the stack resolves, or the step ends
// if the stack is empty. Per rule 117.4.
func (r *Rules) passPriority(st state.GameState, player state.PlayerID) (state.GameState, error) {
	t := st.Turn()
	t.Passes++
	if t.Passes < len(inGame(st)) {
		t.Priority = st.NextPlayer(player)
		return st.WithTurn(t), nil
	}
	if !st.StackEmpty() {
		t.Priority = ""
		t.Passes = 0
		return r.ResolveTop(st.WithTurn(t))
	}
	t.Priority = ""
	t.Passes = 0
	return st.WithTurn(t), nil
}

// settle performs state-based actions and puts triggered abilities on the stack
// until neither has anything left to do, as happens each time a player would
// receive priority. Per rule 117.5. It reports whether anything happened.
func (r *Rules) settle(st state.GameState) (state.GameState, bool, error) {
	changed := false
	for i := 0; i < r.opts.MaxIterations; i++ {
		next, acted, err := r.CheckStateBasedActions(st)
		if err != nil {
			return st, changed, err
		}
		st = next
		changed = changed || acted
		if st.IsOver() || st.Pending() != nil {
			return st, changed, nil
		}
		st = r.collectTriggers(st)
		if len(st.Triggers()) == 0 {
			if !acted {
				return st, changed, nil
			}
			continue
		}
		changed = true
		if st, err = r.placeTriggers(st); err != nil {
			return st, changed, err
		}
		if st.Pending() != nil {
			return st, changed, nil
		}
	}
	return st, changed, invariant("settle", ErrDidNotSettle)
}

// run moves the game forward until a player has priority, a decision is
// pending or the game is over.
func (r *Rules) run(st state.GameState) (state.GameState, error) {
	for i := 0; i < r.opts.MaxIterations; i++ {
		if st.IsOver() || st.Pending() != nil {
			return st, nil
		}
		var err error
		if st, _, err = r.settle(st); err != nil {
			return st, err
		}
		if st.IsOver() || st.Pending() != nil {
			return st, nil
		}
		if p := st.Turn().Priority; p != "" {
			if pl, ok := st.Player(p); ok && pl.InGame() {
				return st, nil
			}
			t := st.Turn()
			t.Priority = st.NextPlayer(p)
			st = st.WithTurn(t)
			continue
		}
		if st, err = r.advance(st); err != nil {
			return st, err
		}
	}
	r.logger.Error("Game did not settle", zap.String("game", st.ID()))
	return st, invariant("run", ErrDidNotSettle)
}
