// Package state holds the immutable game state value and the data it is made of:
// components, zones, continuous and replacement effect descriptions, events and
// decision requests.
package state

import (
	"fmt"
	"slices"

	"github.com/wingedsheep/argentum-engine/internal/game/counters"
	"github.com/wingedsheep/argentum-engine/internal/game/ecs"
)

// GameState is an immutable snapshot of a game. Every method that changes something
// returns a new value; a GameState held by any caller stays valid forever.
type GameState struct {
	id           string
	store        ecs.Store
	zones        Zones
	players      map[PlayerID]Player
	order        []PlayerID
	turn         TurnPosition
	timestamp    Timestamp
	floating     []ContinuousEffect
	replacements []ReplacementEffect
	triggers     []PendingTrigger
	events       []Event
	stats        TurnStats
	pending      *PendingDecision
	over         bool
	winner       PlayerID
	decisions    uint64
}

// New creates the state of a game that has not started: players with their life
// totals and empty zones, turn 0.
func New(id string, players []PlayerID, startingLife, maxHandSize int) GameState {
	s := GameState{
		id:      id,
		store:   ecs.NewStore(),
		zones:   NewZones(),
		players: make(map[PlayerID]Player, len(players)),
		order:   slices.Clone(players),
	}
	for _, p := range players {
		s.players[p] = Player{ID: p, Life: startingLife, MaxHandSize: maxHandSize}
	}
	if len(players) > 0 {
		s.turn = TurnPosition{Active: players[0], Starting: players[0], Step: StepUntap}
	}
	s.stats = TurnStats{}.clone()
	return s
}

func (s GameState) ID() string           { return s.id }
func (s GameState) Store() ecs.Store     { return s.store }
func (s GameState) Zones() Zones         { return s.zones }
func (s GameState) Turn() TurnPosition   { return s.turn }
func (s GameState) Timestamp() Timestamp { return s.timestamp }
func (s GameState) IsOver() bool         { return s.over }
func (s GameState) Winner() PlayerID     { return s.winner }
func (s GameState) Stats() TurnStats     { return s.stats.clone() }

func (s GameState) WithStore(st ecs.Store) GameState  { s.store = st; return s }
func (s GameState) WithZones(z Zones) GameState       { s.zones = z; return s }
func (s GameState) WithTurn(t TurnPosition) GameState { s.turn = t; return s }
func (s GameState) WithStats(st TurnStats) GameState  { s.stats = st.clone(); return s }
func (s GameState) WithWinner(p PlayerID) GameState   { s.over, s.winner = true, p; return s }

// NextTimestamp allocates a new timestamp.
func (s GameState) NextTimestamp() (Timestamp, GameState) {
	s.timestamp++
	return s.timestamp, s
}

// NextDecisionSeq allocates a sequence number for a decision request.
func (s GameState) NextDecisionSeq() (uint64, GameState) {
	s.decisions++
	return s.decisions, s
}

// Player returns a player's public state.
func (s GameState) Player(id PlayerID) (Player, bool) {
	p, ok := s.players[id]
	return p, ok
}

// WithPlayer replaces a player's public state.
func (s GameState) WithPlayer(p Player) GameState {
	players := make(map[PlayerID]Player, len(s.players))
	for k, v := range s.players {
		players[k] = v
	}
	players[p.ID] = p
	s.players = players
	return s
}

// PlayerOrder returns every player in turn order.
func (s GameState) PlayerOrder() []PlayerID { return slices.Clone(s.order) }

// Players returns every player's state in turn order.
func (s GameState) Players() []Player {
	out := make([]Player, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.players[id])
	}
	return out
}

// APNAP returns the players still in the game, active player first then the rest in turn order.
func (s GameState) APNAP() []PlayerID {
	start := slices.Index(s.order, s.turn.Active)
	if start < 0 {
		start = 0
	}
	out := make([]PlayerID, 0, len(s.order))
	for i := range s.order {
		p := s.order[(start+i)%len(s.order)]
		if s.players[p].InGame() {
			out = append(out, p)
		}
	}
	return out
}

// NextPlayer returns the next player in turn order after p who is still in the game.
func (s GameState) NextPlayer(p PlayerID) PlayerID {
	i := slices.Index(s.order, p)
	for n := 1; n <= len(s.order); n++ {
		next := s.order[(i+n)%len(s.order)]
		if s.players[next].InGame() {
			return next
		}
	}
	return p
}

// Opponents returns the other players still in the game, in turn order.
func (s GameState) Opponents(p PlayerID) []PlayerID {
	var out []PlayerID
	for _, id := range s.order {
		if id != p && s.players[id].InGame() {
			out = append(out, id)
		}
	}
	return out
}

func (s GameState) Floating() []ContinuousEffect      { return s.floating }
func (s GameState) Replacements() []ReplacementEffect { return s.replacements }
func (s GameState) Triggers() []PendingTrigger        { return s.triggers }
func (s GameState) Events() []Event                   { return s.events }

func (s GameState) WithFloating(fx []ContinuousEffect) GameState {
	s.floating = fx
	return s
}

// AddFloating appends a floating continuous effect.
func (s GameState) AddFloating(fx ContinuousEffect) GameState {
	s.floating = append(slices.Clip(s.floating), fx)
	return s
}

func (s GameState) WithReplacements(rs []ReplacementEffect) GameState {
	s.replacements = rs
	return s
}

// AddReplacement appends a floating replacement effect.
func (s GameState) AddReplacement(r ReplacementEffect) GameState {
	s.replacements = append(slices.Clip(s.replacements), r)
	return s
}

func (s GameState) WithTriggers(ts []PendingTrigger) GameState {
	s.triggers = ts
	return s
}

// AddTriggers appends triggered abilities waiting to be put on the stack.
func (s GameState) AddTriggers(ts ...PendingTrigger) GameState {
	s.triggers = append(slices.Clip(s.triggers), ts...)
	return s
}

// WithEvents replaces the list of events not yet checked for triggers.
func (s GameState) WithEvents(evs []Event) GameState {
	s.events = evs
	return s
}

// Emit records events.
func (s GameState) Emit(evs ...Event) GameState {
	s.events = append(slices.Clip(s.events), evs...)
	return s
}

// Pending returns the outstanding decision, if any.
func (s GameState) Pending() *PendingDecision {
	if s.pending == nil {
		return nil
	}
	p := *s.pending
	return &p
}

// WithPending sets or clears the outstanding decision.
func (s GameState) WithPending(p *PendingDecision) GameState {
	if p != nil {
		cp := *p
		p = &cp
	}
	s.pending = p
	return s
}

// Ref returns an entity with its current incarnation.
func (s GameState) Ref(id ecs.EntityID) EntityRef {
	loc, _ := s.zones.Locate(id)
	return EntityRef{ID: id, Incarnation: loc.Incarnation}
}

// IsCurrent reports whether ref still names the same object.
func (s GameState) IsCurrent(ref EntityRef) bool {
	loc, ok := s.zones.Locate(ref.ID)
	return ok && loc.Incarnation == ref.Incarnation
}

// Locate returns where an entity is.
func (s GameState) Locate(id ecs.EntityID) (Location, bool) { return s.zones.Locate(id) }

// InZone reports whether id is in a zone of the given kind.
func (s GameState) InZone(id ecs.EntityID, z Zone) bool {
	loc, ok := s.zones.Locate(id)
	return ok && loc.Key.Zone == z
}

func (s GameState) Card(id ecs.EntityID) (CardComponent, bool) {
	return ecs.Get[CardComponent](s.store, id)
}

func (s GameState) Permanent(id ecs.EntityID) (PermanentComponent, bool) {
	return ecs.Get[PermanentComponent](s.store, id)
}

func (s GameState) StackItem(id ecs.EntityID) (StackComponent, bool) {
	return ecs.Get[StackComponent](s.store, id)
}

func (s GameState) Combat(id ecs.EntityID) (CombatComponent, bool) {
	return ecs.Get[CombatComponent](s.store, id)
}

// Counters returns the counters on id; no component means no counters.
func (s GameState) Counters(id ecs.EntityID) counters.Counters {
	c, _ := ecs.Get[CountersComponent](s.store, id)
	return c.Counters
}

// Set attaches or replaces a component.
func (s GameState) Set(id ecs.EntityID, c ecs.Component) (GameState, error) {
	st, err := s.store.With(id, c)
	if err != nil {
		return s, err
	}
	s.store = st
	return s, nil
}

// Unset removes the component of the given kind.
func (s GameState) Unset(id ecs.EntityID, kind ecs.ComponentKind) (GameState, error) {
	st, err := s.store.Without(id, kind)
	if err != nil {
		return s, err
	}
	s.store = st
	return s, nil
}

// Create makes a new entity with the given components and places it in a zone.
func (s GameState) Create(key ZoneKey, pos Position, components ...ecs.Component) (ecs.EntityID, GameState, error) {
	id, st := s.store.Create(components...)
	z, err := s.zones.Place(id, key, pos)
	if err != nil {
		return 0, s, err
	}
	s.store, s.zones = st, z
	return id, s, nil
}

// MoveEntity moves id from one zone to another. See Zones.Move.
func (s GameState) MoveEntity(id ecs.EntityID, from, to ZoneKey, pos Position) (GameState, error) {
	if !s.store.Exists(id) {
		return s, fmt.Errorf("move %s: %w", id, ecs.ErrNotFound)
	}
	z, err := s.zones.Move(id, from, to, pos)
	if err != nil {
		return s, err
	}
	s.zones = z
	return s, nil
}

// Reposition moves id within its zone, such as to the bottom of a library.
func (s GameState) Reposition(id ecs.EntityID, pos Position) (GameState, error) {
	z, err := s.zones.Reposition(id, pos)
	if err != nil {
		return s, err
	}
	s.zones = z
	return s, nil
}

// Destroy removes id from its zone and discards it.
func (s GameState) Destroy(id ecs.EntityID) (GameState, error) {
	st, err := s.store.Destroy(id)
	if err != nil {
		return s, err
	}
	z, err := s.zones.Remove(id)
	if err != nil {
		return s, err
	}
	s.store, s.zones = st, z
	return s, nil
}

// StackOrder returns the stack top first.
func (s GameState) StackOrder() []ecs.EntityID { return slices.Clone(s.zones.Contents(Stack)) }

// TopOfStack returns the object that resolves next.
func (s GameState) TopOfStack() (ecs.EntityID, bool) {
	st := s.zones.Contents(Stack)
	if len(st) == 0 {
		return 0, false
	}
	return st[0], true
}

// StackEmpty reports whether the stack is empty.
func (s GameState) StackEmpty() bool { return s.zones.Count(Stack) == 0 }

// Battlefield returns every permanent in ascending id order.
func (s GameState) Battlefield() []ecs.EntityID {
	out := slices.Clone(s.zones.Contents(Battlefield))
	slices.Sort(out)
	return out
}

func (s GameState) Library(p PlayerID) []ecs.EntityID {
	return slices.Clone(s.zones.Contents(Owned(ZoneLibrary, p)))
}

func (s GameState) Hand(p PlayerID) []ecs.EntityID {
	return slices.Clone(s.zones.Contents(Owned(ZoneHand, p)))
}

func (s GameState) Graveyard(p PlayerID) []ecs.EntityID {
	return slices.Clone(s.zones.Contents(Owned(ZoneGraveyard, p)))
}

// Parts is the complete content of a GameState, used to build snapshots.
type Parts struct {
	ID           string
	NextEntity   ecs.EntityID
	Entities     []ecs.Record
	Zones        []ZoneRecord
	Players      []Player
	Turn         TurnPosition
	Timestamp    Timestamp
	Floating     []ContinuousEffect
	Replacements []ReplacementEffect
	Triggers     []PendingTrigger
	Events       []Event
	Stats        TurnStats
	Pending      *PendingDecision
	Over         bool
	Winner       PlayerID
	Decisions    uint64
}

// Export returns every part of the state.
func (s GameState) Export() Parts {
	return Parts{
		ID:           s.id,
		NextEntity:   s.store.NextID(),
		Entities:     s.store.Dump(),
		Zones:        s.zones.Dump(),
		Players:      s.Players(),
		Turn:         s.turn,
		Timestamp:    s.timestamp,
		Floating:     slices.Clone(s.floating),
		Replacements: slices.Clone(s.replacements),
		Triggers:     slices.Clone(s.triggers),
		Events:       slices.Clone(s.events),
		Stats:        s.stats.clone(),
		Pending:      s.Pending(),
		Over:         s.over,
		Winner:       s.winner,
		Decisions:    s.decisions,
	}
}

// Import rebuilds a state from its parts and checks it for consistency.
func Import(p Parts) (GameState, error) {
	st, err := ecs.Restore(p.NextEntity, p.Entities)
	if err != nil {
		return GameState{}, err
	}
	z, err := RestoreZones(p.Zones)
	if err != nil {
		return GameState{}, err
	}
	s := GameState{
		id:           p.ID,
		store:        st,
		zones:        z,
		players:      make(map[PlayerID]Player, len(p.Players)),
		turn:         p.Turn,
		timestamp:    p.Timestamp,
		floating:     p.Floating,
		replacements: p.Replacements,
		triggers:     p.Triggers,
		events:       p.Events,
		stats:        p.Stats.clone(),
		pending:      p.Pending,
		over:         p.Over,
		winner:       p.Winner,
		decisions:    p.Decisions,
	}
	for _, pl := range p.Players {
		s.order = append(s.order, pl.ID)
		s.players[pl.ID] = pl
	}
	if err := CheckInvariants(s); err != nil {
		return GameState{}, err
	}
	return s, nil
}
