package rules

import (
	"go.uber.org/zap"

	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

// landsPerTurn is how many lands a player may play each turn. Per rule 305.2.
const landsPerTurn = 1

// playLand plays a land from hand. Playing a land is a special action: it does
// not use the stack. Per rule 305.1.
func (r *Rules) playLand(st state.GameState, player state.PlayerID, a PlayLand) (state.GameState, error) {
	op := a.Name()
	if loc, ok := st.Locate(a.Card); !ok || loc.Key != state.Owned(state.ZoneHand, player) {
		return st, illegal(op, ErrNotInHand, "%s", a.Card)
	}
	c, _ := st.Card(a.Card)
	chars, ok := r.catalog.Characteristics(c.Ref)
	if !ok {
		return st, invariant(op, ErrUnknownCard)
	}
	if !chars.IsLand() {
		return st, illegal(op, ErrNotAllowed, "%s is not a land", chars.Name)
	}
	if !sorceryTiming(st, player) {
		return st, illegal(op, ErrTiming, "lands are played in your main phase with an empty stack")
	}
	if pl, _ := st.Player(player); pl.LandsPlayed >= landsPerTurn {
		return st, illegal(op, ErrNotAllowed, "%s already played a land this turn", player)
	}
	st, err := r.moveTo(st, a.Card, state.ZoneBattlefield, state.Top(), player)
	if err != nil {
		return st, invariant(op, err)
	}
	st = updatePlayer(st, player, func(p *state.Player) { p.LandsPlayed++ })
	r.logger.Debug("Land played", zap.String("game", st.ID()), zap.String("player", string(player)), zap.String("card", string(c.Ref)))
	return r.emit(st, state.Event{Type: state.EventLandPlayed, Entity: st.Ref(a.Card), Ref: c.Ref, Controller: player, Player: player}), nil
}
