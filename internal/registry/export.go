package registry

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wingedsheep/argentum-engine/internal/game/mana"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

// exportColumns is the minimum column count of a card export row.
const exportColumns = 23

// Column positions in a card export.
const (
	colName       = 0
	colSet        = 1
	colNumber     = 2
	colPower      = 4
	colToughness  = 5
	colRarity     = 9
	colTypes      = 10
	colSubtypes   = 11
	colSupertypes = 12
	colManaCost   = 13
	colRules      = 14
)

// Vanilla is a creature whose rules text is keywords only, so it can be played
// without a card script.
type Vanilla struct {
	Ref       string
	Name      string
	ManaCost  string
	TypeLine  string
	Rarity    string
	Power     int
	Toughness int
	Keywords  []string
}

// ImportStats counts what ParseCardExport did with each row.
type ImportStats struct {
	Rows      int
	Imported  int
	Skipped   int
	Malformed int
}

// ParseCardExport reads a CSV card export with a header row and keeps the
// vanilla creatures. Other cards need scripts and are skipped.
func ParseCardExport(r io.Reader) ([]Vanilla, ImportStats, error) {
	var stats ImportStats
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, stats, fmt.Errorf("read export: %w", err)
	}
	if len(records) < 2 {
		return nil, stats, fmt.Errorf("read export: no data rows")
	}

	seen := map[string]bool{}
	var out []Vanilla
	for _, rec := range records[1:] {
		stats.Rows++
		if len(rec) < exportColumns {
			stats.Malformed++
			continue
		}
		v, ok := vanillaOf(rec)
		if !ok || seen[v.Ref] {
			stats.Skipped++
			continue
		}
		seen[v.Ref] = true
		out = append(out, v)
		stats.Imported++
	}
	return out, stats, nil
}

func vanillaOf(rec []string) (Vanilla, bool) {
	types := titleWords(rec[colTypes])
	if !strings.Contains(" "+types+" ", " Creature ") {
		return Vanilla{}, false
	}
	power, err := strconv.Atoi(strings.TrimSpace(rec[colPower]))
	if err != nil {
		return Vanilla{}, false
	}
	toughness, err := strconv.Atoi(strings.TrimSpace(rec[colToughness]))
	if err != nil {
		return Vanilla{}, false
	}
	cost := strings.TrimSpace(rec[colManaCost])
	if _, err := mana.ParseCost(cost); err != nil {
		return Vanilla{}, false
	}
	ks, ok := keywordText(rec[colRules])
	if !ok {
		return Vanilla{}, false
	}

	typeLine := strings.TrimSpace(titleWords(rec[colSupertypes]) + " " + types)
	if subs := titleWords(rec[colSubtypes]); subs != "" {
		typeLine += " - " + subs
	}
	return Vanilla{
		Ref:       strings.ToLower(strings.TrimSpace(rec[colSet]) + "-" + strings.TrimSpace(rec[colNumber])),
		Name:      strings.TrimSpace(rec[colName]),
		ManaCost:  cost,
		TypeLine:  typeLine,
		Rarity:    strings.ToLower(strings.TrimSpace(rec[colRarity])),
		Power:     power,
		Toughness: toughness,
		Keywords:  ks,
	}, true
}

// titleWords normalizes "CREATURE, ARTIFACT" and similar to "Creature Artifact".
func titleWords(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '|' })
	for i, f := range fields {
		f = strings.ToLower(strings.ReplaceAll(f, "_", " "))
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	return strings.Join(fields, " ")
}

// keywordText splits rules text made only of known keywords. Any other text
// means the card needs a script.
func keywordText(rules string) ([]string, bool) {
	var out []string
	for _, part := range strings.FieldsFunc(rules, func(r rune) bool { return r == '\n' || r == ',' || r == ';' }) {
		k := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), ".")))
		if k == "" {
			continue
		}
		if !state.KnownKeyword(state.Keyword(k)) {
			return nil, false
		}
		out = append(out, k)
	}
	return out, true
}

// EncodeSet renders cards as a YAML set file that File can load.
func EncodeSet(code string, cards []Vanilla) ([]byte, error) {
	s := setFile{Set: code, Cards: make([]cardEntry, 0, len(cards))}
	for _, c := range cards {
		power, toughness := c.Power, c.Toughness
		s.Cards = append(s.Cards, cardEntry{
			Ref:       c.Ref,
			Name:      c.Name,
			ManaCost:  c.ManaCost,
			TypeLine:  c.TypeLine,
			Rarity:    c.Rarity,
			Power:     &power,
			Toughness: &toughness,
			Keywords:  c.Keywords,
		})
	}
	out, err := yaml.Marshal(&s)
	if err != nil {
		return nil, fmt.Errorf("encode set %s: %w", code, err)
	}
	return out, nil
}
