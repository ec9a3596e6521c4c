package counters

// Type names a kind of counter. Boost counters are named by their deltas ("+1/+1").
type Type string

const (
	P1P1 Type = "+1/+1"
	M1M1 Type = "-1/-1"
	P1P0 Type = "+1/+0"
	P0P1 Type = "+0/+1"

	Loyalty Type = "loyalty"
	Charge  Type = "charge"
	Age     Type = "age"
	Time    Type = "time"
	Lore    Type = "lore"
	Oil     Type = "oil"
	Stun    Type = "stun"
	Shield  Type = "shield"
)

// IsBoost reports whether the type modifies power and toughness.
func (t Type) IsBoost() bool {
	_, _, ok := ParseBoost(t)
	return ok
}
