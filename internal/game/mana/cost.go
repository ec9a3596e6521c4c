package mana

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Cost represents a parsed mana cost.
type Cost struct {
	Generic int
	// Colored holds the colored and colorless ({C}) symbols, indexed by Type.
	Colored [6]int
	// X counts {X} symbols.
	X      int
	Hybrid []Hybrid
}

// Hybrid is a hybrid symbol payable by either side, e.g. {W/U} or {2/B}.
// A generic side is represented by GenericAlt > 0 with no Alt type.
type Hybrid struct {
	Options    []Type
	GenericAlt int
}

var symbolPattern = regexp.MustCompile(`\{([^}]+)\}`)

// ParseCost parses a mana cost string (e.g. "{1}{G}", "{2}{R}{R}", "{X}{R}", "{W/U}").
func ParseCost(s string) (Cost, error) {
	var cost Cost
	s = strings.TrimSpace(s)
	if s == "" {
		return cost, nil
	}
	matches := symbolPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return cost, fmt.Errorf("invalid mana cost %q", s)
	}
	for _, m := range matches {
		symbol := strings.ToUpper(strings.TrimSpace(m[1]))
		switch {
		case symbol == "X":
			cost.X++
		case strings.Contains(symbol, "/"):
			h, err := parseHybrid(symbol)
			if err != nil {
				return Cost{}, err
			}
			cost.Hybrid = append(cost.Hybrid, h)
		default:
			if n, err := strconv.Atoi(symbol); err == nil {
				cost.Generic += n
				continue
			}
			t, err := ParseType(symbol)
			if err != nil {
				return Cost{}, fmt.Errorf("unknown mana symbol {%s}", symbol)
			}
			cost.Colored[t]++
		}
	}
	return cost, nil
}

// MustParseCost is ParseCost for literals known to be valid.
func MustParseCost(s string) Cost {
	c, err := ParseCost(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parseHybrid(symbol string) (Hybrid, error) {
	left, right, _ := strings.Cut(symbol, "/")
	var h Hybrid
	for _, side := range []string{left, right} {
		if n, err := strconv.Atoi(side); err == nil && n > 0 {
			h.GenericAlt = n
			continue
		}
		t, err := ParseType(side)
		if err != nil {
			return Hybrid{}, fmt.Errorf("unknown hybrid symbol {%s}", symbol)
		}
		h.Options = append(h.Options, t)
	}
	return h, nil
}

// ManaValue returns the converted mana value of the cost. X counts as x.
func (c Cost) ManaValue(x int) int {
	total := c.Generic + c.X*x
	for _, n := range c.Colored {
		total += n
	}
	for _, h := range c.Hybrid {
		if h.GenericAlt > 0 {
			total += h.GenericAlt
		} else {
			total++
		}
	}
	return total
}

// Colors returns the colors of the symbols in the cost.
func (c Cost) Colors() Colors {
	var out Colors
	for _, t := range AllTypes {
		if c.Colored[t] > 0 {
			out |= t.Color()
		}
	}
	for _, h := range c.Hybrid {
		for _, t := range h.Options {
			out |= t.Color()
		}
	}
	return out
}

// IsZero reports whether the cost requires no mana.
func (c Cost) IsZero() bool {
	return c.ManaValue(0) == 0 && c.X == 0
}

func (c Cost) String() string {
	var b strings.Builder
	for i := 0; i < c.X; i++ {
		b.WriteString("{X}")
	}
	if c.Generic > 0 {
		fmt.Fprintf(&b, "{%d}", c.Generic)
	}
	for _, h := range c.Hybrid {
		parts := make([]string, 0, 2)
		if h.GenericAlt > 0 {
			parts = append(parts, strconv.Itoa(h.GenericAlt))
		}
		for _, t := range h.Options {
			parts = append(parts, t.String())
		}
		b.WriteString("{" + strings.Join(parts, "/") + "}")
	}
	for _, t := range AllTypes {
		for i := 0; i < c.Colored[t]; i++ {
			b.WriteString("{" + t.String() + "}")
		}
	}
	if b.Len() == 0 {
		return "{0}"
	}
	return b.String()
}
