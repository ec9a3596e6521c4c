package mana

import "strings"

// Colors is a set of colors.
type Colors uint8

const (
	ColorWhite Colors = 1 << iota
	ColorBlue
	ColorBlack
	ColorRed
	ColorGreen

	NoColor Colors = 0
)

var colorNames = []struct {
	c    Colors
	name string
}{
	{ColorWhite, "white"},
	{ColorBlue, "blue"},
	{ColorBlack, "black"},
	{ColorRed, "red"},
	{ColorGreen, "green"},
}

// Has reports whether every color in other is in c.
func (c Colors) Has(other Colors) bool {
	return other != NoColor && c&other == other
}

// Shares reports whether c and other have at least one color in common.
func (c Colors) Shares(other Colors) bool {
	return c&other != 0
}

// Count returns the number of colors in the set.
func (c Colors) Count() int {
	n := 0
	for _, cn := range colorNames {
		if c&cn.c != 0 {
			n++
		}
	}
	return n
}

func (c Colors) String() string {
	if c == NoColor {
		return "colorless"
	}
	var parts []string
	for _, cn := range colorNames {
		if c&cn.c != 0 {
			parts = append(parts, cn.name)
		}
	}
	return strings.Join(parts, "/")
}

// ParseColors parses a list of color names ("red", "green") into a set.
func ParseColors(names []string) (Colors, bool) {
	var out Colors
	for _, n := range names {
		found := false
		for _, cn := range colorNames {
			if strings.EqualFold(n, cn.name) {
				out |= cn.c
				found = true
				break
			}
		}
		if !found {
			return NoColor, false
		}
	}
	return out, true
}
