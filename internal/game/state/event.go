package state

import "github.com/wingedsheep/argentum-engine/internal/game/ecs"

// EventType indicates what happened.
type EventType string

const (
	EventZoneChange        EventType = "ZONE_CHANGE"
	EventDamage            EventType = "DAMAGE"
	EventLifeGained        EventType = "LIFE_GAINED"
	EventLifeLost          EventType = "LIFE_LOST"
	EventSpellCast         EventType = "SPELL_CAST"
	EventAbilityActivated  EventType = "ABILITY_ACTIVATED"
	EventStepBegan         EventType = "STEP_BEGAN"
	EventAttackerDeclared  EventType = "ATTACKER_DECLARED"
	EventBlockerDeclared   EventType = "BLOCKER_DECLARED"
	EventCardDrawn         EventType = "CARD_DRAWN"
	EventCountersAdded     EventType = "COUNTERS_ADDED"
	EventTapped            EventType = "TAPPED"
	EventUntapped          EventType = "UNTAPPED"
	EventTokenCreated      EventType = "TOKEN_CREATED"
	EventSpellCountered    EventType = "SPELL_COUNTERED"
	EventFizzled           EventType = "FIZZLED"
	EventPlayerLost        EventType = "PLAYER_LOST"
	EventDamagePrevented   EventType = "DAMAGE_PREVENTED"
	EventLandPlayed        EventType = "LAND_PLAYED"
	EventManaAdded         EventType = "MANA_ADDED"
	EventResolved          EventType = "RESOLVED"
	EventTriggerPutOnStack EventType = "TRIGGER_PUT_ON_STACK"
)

// Event records something that happened, for trigger matching and the game log.
// Fields not relevant to the event type are left zero.
type Event struct {
	Type EventType
	// Entity is the object the event happened to, with the incarnation it had before.
	Entity EntityRef
	// Ref and Controller are last known information about Entity.
	Ref        CardRef
	Controller PlayerID
	Player     PlayerID
	Source     ecs.EntityID
	From       ZoneKey
	To         ZoneKey
	Amount     int
	Combat     bool
	Step       Step
	// NewEntity is the object Entity became after a zone change.
	NewEntity EntityRef
}

// Left reports whether the event is an object leaving zone z.
func (e Event) Left(z Zone) bool {
	return e.Type == EventZoneChange && e.From.Zone == z && e.To.Zone != z
}

// Entered reports whether the event is an object entering zone z.
func (e Event) Entered(z Zone) bool {
	return e.Type == EventZoneChange && e.To.Zone == z && e.From.Zone != z
}

// Died reports whether the event is a permanent going from the battlefield to a graveyard.
func (e Event) Died() bool {
	return e.Type == EventZoneChange && e.From.Zone == ZoneBattlefield && e.To.Zone == ZoneGraveyard
}

// PendingTrigger is a triggered ability that triggered and waits to be put on the stack.
type PendingTrigger struct {
	Source       EntityRef
	Ref          CardRef
	AbilityIndex int
	Controller   PlayerID
	Event        Event
}
