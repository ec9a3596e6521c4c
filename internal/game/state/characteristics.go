package state

import (
	"slices"
	"strings"

	"github.com/wingedsheep/argentum-engine/internal/game/mana"
)

// CardType is a card type from the type line.
type CardType string

const (
	TypeArtifact     CardType = "Artifact"
	TypeCreature     CardType = "Creature"
	TypeEnchantment  CardType = "Enchantment"
	TypeInstant      CardType = "Instant"
	TypeLand         CardType = "Land"
	TypePlaneswalker CardType = "Planeswalker"
	TypeSorcery      CardType = "Sorcery"
)

// Supertype is a supertype from the type line.
type Supertype string

const (
	SupertypeBasic     Supertype = "Basic"
	SupertypeLegendary Supertype = "Legendary"
	SupertypeSnow      Supertype = "Snow"
)

// Keyword is a keyword ability.
type Keyword string

const (
	Flying         Keyword = "flying"
	Reach          Keyword = "reach"
	Vigilance      Keyword = "vigilance"
	Haste          Keyword = "haste"
	Defender       Keyword = "defender"
	FirstStrike    Keyword = "first strike"
	DoubleStrike   Keyword = "double strike"
	Trample        Keyword = "trample"
	Deathtouch     Keyword = "deathtouch"
	Lifelink       Keyword = "lifelink"
	Menace         Keyword = "menace"
	Hexproof       Keyword = "hexproof"
	Shroud         Keyword = "shroud"
	Indestructible Keyword = "indestructible"
	Flash          Keyword = "flash"
)

var keywords = []Keyword{
	Flying, Reach, Vigilance, Haste, Defender, FirstStrike, DoubleStrike, Trample,
	Deathtouch, Lifelink, Menace, Hexproof, Shroud, Indestructible, Flash,
}

// KnownKeyword reports whether k is a keyword the rules engine implements.
func KnownKeyword(k Keyword) bool {
	if _, ok := k.ProtectionColors(); ok {
		return true
	}
	return slices.Contains(keywords, k)
}

const protectionPrefix = "protection from "

// ProtectionFrom returns the protection keyword for the given colors.
func ProtectionFrom(c mana.Colors) Keyword {
	return Keyword(protectionPrefix + c.String())
}

// ProtectionColors returns the colors a protection keyword protects from.
func (k Keyword) ProtectionColors() (mana.Colors, bool) {
	rest, ok := strings.CutPrefix(string(k), protectionPrefix)
	if !ok {
		return mana.NoColor, false
	}
	return mana.ParseColors(strings.Split(rest, "/"))
}

// Characteristics are the rules-visible properties of an object: printed values
// for a card, or values after continuous effects in a projection.
type Characteristics struct {
	Name       string
	ManaCost   mana.Cost
	Colors     mana.Colors
	Supertypes []Supertype
	Types      []CardType
	Subtypes   []string
	Text       string
	Power      int
	Toughness  int
	HasPT      bool
	Keywords   []Keyword
	Statics    []StaticAbility
	// Replacements are printed replacement abilities.
	Replacements []ReplacementAbility
	// LostAbilities is set when an effect removed all abilities; the object's
	// activated, triggered and static abilities no longer function.
	LostAbilities bool
}

// Clone returns a copy that shares nothing mutable with c.
func (c Characteristics) Clone() Characteristics {
	c.Supertypes = slices.Clone(c.Supertypes)
	c.Types = slices.Clone(c.Types)
	c.Subtypes = slices.Clone(c.Subtypes)
	c.Keywords = slices.Clone(c.Keywords)
	c.Statics = slices.Clone(c.Statics)
	c.Replacements = slices.Clone(c.Replacements)
	c.ManaCost.Hybrid = slices.Clone(c.ManaCost.Hybrid)
	return c
}

func (c Characteristics) HasType(t CardType) bool       { return slices.Contains(c.Types, t) }
func (c Characteristics) HasSupertype(s Supertype) bool { return slices.Contains(c.Supertypes, s) }

// HasSubtype reports whether the object has the subtype, ignoring case.
func (c Characteristics) HasSubtype(s string) bool {
	return slices.ContainsFunc(c.Subtypes, func(x string) bool { return strings.EqualFold(x, s) })
}

func (c Characteristics) HasKeyword(k Keyword) bool { return slices.Contains(c.Keywords, k) }

func (c Characteristics) IsCreature() bool  { return c.HasType(TypeCreature) }
func (c Characteristics) IsLand() bool      { return c.HasType(TypeLand) }
func (c Characteristics) IsLegendary() bool { return c.HasSupertype(SupertypeLegendary) }

// IsPermanent reports whether an object with these types is a permanent card.
func (c Characteristics) IsPermanent() bool {
	return !c.HasType(TypeInstant) && !c.HasType(TypeSorcery) && len(c.Types) > 0
}

// ProtectedFrom reports whether protection keywords cover any of the given colors.
func (c Characteristics) ProtectedFrom(colors mana.Colors) bool {
	for _, k := range c.Keywords {
		if pc, ok := k.ProtectionColors(); ok && pc.Shares(colors) {
			return true
		}
	}
	return false
}

// AddKeywords appends keywords not already present.
func (c *Characteristics) AddKeywords(ks ...Keyword) {
	for _, k := range ks {
		if !c.HasKeyword(k) {
			c.Keywords = append(c.Keywords, k)
		}
	}
}

// RemoveKeywords drops the given keywords.
func (c *Characteristics) RemoveKeywords(ks ...Keyword) {
	c.Keywords = slices.DeleteFunc(c.Keywords, func(k Keyword) bool { return slices.Contains(ks, k) })
}

// TypeLine formats the supertypes, types and subtypes the way a card prints them.
func (c Characteristics) TypeLine() string {
	var parts []string
	for _, s := range c.Supertypes {
		parts = append(parts, string(s))
	}
	for _, t := range c.Types {
		parts = append(parts, string(t))
	}
	line := strings.Join(parts, " ")
	if len(c.Subtypes) > 0 {
		line += " - " + strings.Join(c.Subtypes, " ")
	}
	return line
}

// ParseTypeLine splits a type line like "Legendary Creature - Human Wizard".
func ParseTypeLine(line string) ([]Supertype, []CardType, []string) {
	line = strings.ReplaceAll(line, "\u2014", "-")
	left, right, _ := strings.Cut(line, "-")
	var supers []Supertype
	var types []CardType
	for _, w := range strings.Fields(left) {
		switch Supertype(w) {
		case SupertypeBasic, SupertypeLegendary, SupertypeSnow:
			supers = append(supers, Supertype(w))
			continue
		}
		types = append(types, CardType(w))
	}
	return supers, types, strings.Fields(right)
}
