package state

import "github.com/wingedsheep/argentum-engine/internal/game/mana"

// Player is a player's public state.
type Player struct {
	ID          PlayerID
	Life        int
	Pool        mana.Pool
	Poison      int
	LandsPlayed int
	// DrewFromEmpty is set when the player attempted to draw from an empty library.
	DrewFromEmpty bool
	Lost          bool
	Conceded      bool
	MaxHandSize   int
}

// InGame reports whether the player is still playing.
func (p Player) InGame() bool { return !p.Lost && !p.Conceded }
