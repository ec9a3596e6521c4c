package mana

import (
	"fmt"
	"strings"
)

// Type represents a type of mana.
type Type uint8

const (
	White Type = iota
	Blue
	Black
	Red
	Green
	Colorless
)

// AllTypes lists every mana type in WUBRG order followed by colorless.
var AllTypes = []Type{White, Blue, Black, Red, Green, Colorless}

var typeSymbols = [...]string{"W", "U", "B", "R", "G", "C"}

func (t Type) String() string {
	if int(t) < len(typeSymbols) {
		return typeSymbols[t]
	}
	return fmt.Sprintf("Type(%d)", t)
}

// Color returns the color a mana type produces, or NoColor for colorless mana.
func (t Type) Color() Colors {
	if t == Colorless {
		return NoColor
	}
	return Colors(1 << t)
}

// ParseType parses a single mana symbol letter.
func ParseType(s string) (Type, error) {
	for i, sym := range typeSymbols {
		if strings.EqualFold(s, sym) {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("unknown mana type %q", s)
}

// Pool is a player's mana pool. It is a value: every operation returns a new pool.
type Pool struct {
	Amounts [6]int
}

// Add returns the pool with amount mana of type t added.
func (p Pool) Add(t Type, amount int) Pool {
	if amount > 0 {
		p.Amounts[t] += amount
	}
	return p
}

// Spend returns the pool with amount mana of type t removed.
// It reports false and returns the pool unchanged when there is not enough.
func (p Pool) Spend(t Type, amount int) (Pool, bool) {
	if amount <= 0 {
		return p, true
	}
	if p.Amounts[t] < amount {
		return p, false
	}
	p.Amounts[t] -= amount
	return p, true
}

// Get returns the amount of mana of type t.
func (p Pool) Get(t Type) int {
	return p.Amounts[t]
}

// Total returns the amount of mana of all types.
func (p Pool) Total() int {
	total := 0
	for _, n := range p.Amounts {
		total += n
	}
	return total
}

// IsEmpty reports whether the pool holds no mana.
func (p Pool) IsEmpty() bool {
	return p.Total() == 0
}

func (p Pool) String() string {
	var b strings.Builder
	for _, t := range AllTypes {
		for i := 0; i < p.Amounts[t]; i++ {
			b.WriteString("{" + t.String() + "}")
		}
	}
	if b.Len() == 0 {
		return "{}"
	}
	return b.String()
}
