package main

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/wingedsheep/argentum-engine/internal/game"
	"github.com/wingedsheep/argentum-engine/internal/game/rules"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
	"github.com/wingedsheep/argentum-engine/internal/persist"
	"github.com/wingedsheep/argentum-engine/internal/registry"
)

// deckList is a 40 card red-green deck as card name and count.
var deckList = []struct {
	name  string
	count int
}{
	{"Mountain", 8},
	{"Forest", 9},
	{"Llanowar Elves", 3},
	{"Raging Goblin", 2},
	{"Grizzly Bears", 4},
	{"Boggart Brute", 3},
	{"Giant Spider", 2},
	{"Colossal Dreadmaw", 1},
	{"Lightning Bolt", 4},
	{"Giant Growth", 2},
	{"Mogg Fanatic", 2},
}

// demo plays both seats with a fixed policy: play a land, cast the first spell
// that does not target its own caster, attack with everything, never block.
type demo struct {
	engine *game.Engine
	store  *persist.SnapshotStore
	logger *zap.Logger
}

func (d *demo) setup(reg *registry.Registry, seed uint64) (game.Setup, error) {
	var names []string
	for _, e := range deckList {
		for range e.count {
			names = append(names, e.name)
		}
	}
	deck, err := reg.Resolve(names...)
	if err != nil {
		return game.Setup{}, fmt.Errorf("build demo deck: %w", err)
	}
	return game.Setup{
		Players: []game.PlayerSetup{{ID: "alice", Deck: deck}, {ID: "bob", Deck: deck}},
		Seed:    seed,
		Shuffle: true,
	}, nil
}

func (d *demo) play(ctx context.Context, st state.GameState, maxActions int) (state.GameState, error) {
	seq := 0
	turn := 0
	for i := 0; i < maxActions && !st.IsOver(); i++ {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		if t := st.Turn().Number; t != turn {
			turn = t
			if err := d.save(ctx, seq, st); err != nil {
				return st, err
			}
			seq++
		}

		player := actor(st)
		action := d.choose(st, player)
		next, err := d.engine.SubmitAction(st, player, action)
		if err != nil {
			return st, fmt.Errorf("%s by %s: %w", action.Name(), player, err)
		}
		st = next
	}
	if err := d.save(ctx, seq, st); err != nil {
		return st, err
	}

	fields := []zap.Field{
		zap.String("game", st.ID()),
		zap.Int("turn", st.Turn().Number),
		zap.Bool("over", st.IsOver()),
		zap.String("winner", string(st.Winner())),
	}
	for _, p := range st.Players() {
		fields = append(fields, zap.Int(string(p.ID)+"_life", p.Life))
	}
	d.logger.Info("Demo game finished", fields...)
	return st, nil
}

func (d *demo) save(ctx context.Context, seq int, st state.GameState) error {
	if d.store == nil {
		return nil
	}
	if _, err := d.store.Save(ctx, seq, game.TakeSnapshot(st)); err != nil {
		return err
	}
	return nil
}

func actor(st state.GameState) state.PlayerID {
	if p := st.Pending(); p != nil {
		return p.Request.Player
	}
	return st.Turn().Priority
}

func (d *demo) choose(st state.GameState, player state.PlayerID) rules.Action {
	actions := d.engine.LegalActions(st, player)
	if p := st.Pending(); p != nil {
		return chooseDecision(p.Request, actions)
	}
	for _, a := range actions {
		if _, ok := a.(rules.PlayLand); ok {
			return a
		}
	}
	for _, a := range actions {
		if c, ok := a.(rules.CastSpell); ok && !targetsPlayer(c, player) {
			return a
		}
	}
	return rules.PassPriority{}
}

// chooseDecision attacks with as many creatures as possible, declares no blocks
// and otherwise takes the first offered answer.
func chooseDecision(req state.DecisionRequest, actions []rules.Action) rules.Action {
	var decisions []rules.MakeDecision
	for _, a := range actions {
		if m, ok := a.(rules.MakeDecision); ok {
			decisions = append(decisions, m)
		}
	}
	if len(decisions) == 0 {
		return rules.Concede{}
	}
	switch req.Kind {
	case state.DecisionDeclareAttackers:
		return slices.MaxFunc(decisions, func(a, b rules.MakeDecision) int { return len(a.Choices) - len(b.Choices) })
	case state.DecisionDeclareBlockers:
		return slices.MinFunc(decisions, func(a, b rules.MakeDecision) int { return len(a.Choices) - len(b.Choices) })
	}
	return decisions[0]
}

func targetsPlayer(c rules.CastSpell, player state.PlayerID) bool {
	for _, group := range c.Targets {
		for _, t := range group {
			if pt, ok := t.(state.PlayerTarget); ok && pt.Player == player {
				return true
			}
		}
	}
	return false
}
