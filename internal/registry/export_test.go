package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

func exportRow(name, set, number, power, toughness, types, subtypes, supertypes, cost, rules string) string {
	cols := make([]string, exportColumns)
	cols[colName], cols[colSet], cols[colNumber] = name, set, number
	cols[colPower], cols[colToughness] = power, toughness
	cols[colRarity] = "COMMON"
	cols[colTypes], cols[colSubtypes], cols[colSupertypes] = types, subtypes, supertypes
	cols[colManaCost], cols[colRules] = cost, rules
	for i := range cols {
		cols[i] = `"` + cols[i] + `"`
	}
	return strings.Join(cols, ",")
}

func TestParseCardExport(t *testing.T) {
	export := strings.Join([]string{
		"header",
		exportRow("Grizzly Bears", "M10", "155", "2", "2", "CREATURE", "BEAR", "", "{1}{G}", ""),
		exportRow("Wind Drake", "M10", "80", "2", "2", "CREATURE", "DRAKE", "", "{2}{U}", "Flying"),
		exportRow("Isamaru, Hound of Konda", "CHK", "19", "2", "2", "CREATURE", "DOG", "LEGENDARY", "{W}", ""),
		exportRow("Lightning Bolt", "M10", "146", "", "", "INSTANT", "", "", "{R}", "Lightning Bolt deals 3 damage to any target."),
		exportRow("Prodigal Pyromancer", "M10", "151", "1", "1", "CREATURE", "HUMAN WIZARD", "", "{2}{R}", "{T}: deal 1 damage to any target."),
		exportRow("Tarmogoyf", "FUT", "153", "*", "1+*", "CREATURE", "LHURGOYF", "", "{1}{G}", ""),
		exportRow("Grizzly Bears", "M10", "155", "2", "2", "CREATURE", "BEAR", "", "{1}{G}", ""),
		`"short","row"`,
	}, "\n")

	cards, stats, err := ParseCardExport(strings.NewReader(export))
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Rows: 8, Imported: 3, Skipped: 4, Malformed: 1}, stats)
	require.Len(t, cards, 3)

	assert.Equal(t, Vanilla{
		Ref: "m10-155", Name: "Grizzly Bears", ManaCost: "{1}{G}", TypeLine: "Creature - Bear",
		Rarity: "common", Power: 2, Toughness: 2,
	}, cards[0])
	assert.Equal(t, []string{"flying"}, cards[1].Keywords)
	assert.Equal(t, "Legendary Creature - Dog", cards[2].TypeLine)
}

func TestParseCardExport_Empty(t *testing.T) {
	_, _, err := ParseCardExport(strings.NewReader("header\n"))
	require.Error(t, err)
}

func TestEncodeSet_LoadsBack(t *testing.T) {
	cards := []Vanilla{
		{Ref: "imp-1", Name: "Wind Drake", ManaCost: "{2}{U}", TypeLine: "Creature - Drake", Power: 2, Toughness: 2, Keywords: []string{"flying"}},
		{Ref: "imp-2", Name: "Isamaru, Hound of Konda", ManaCost: "{W}", TypeLine: "Legendary Creature - Dog", Power: 2, Toughness: 2},
	}
	data, err := EncodeSet("IMP", cards)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "imported.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	r, err := New(zaptest.NewLogger(t), &File{Path: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"IMP"}, r.Sets())

	drake, ok := r.LookupByID("imp-1")
	require.True(t, ok)
	assert.True(t, drake.HasKeyword(state.Flying))
	assert.Equal(t, 2, drake.Power)

	dog, ok := r.LookupByName("isamaru, hound of konda")
	require.True(t, ok)
	assert.True(t, dog.HasSupertype(state.SupertypeLegendary))
}
