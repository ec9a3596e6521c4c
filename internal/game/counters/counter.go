package counters

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Counter is a single named counter and how many of it there are.
type Counter struct {
	Type  Type
	Count int
}

// Counters is an immutable multiset of counters on a permanent.
// Every stored count is positive: removing the last counter of a type drops the type.
// The zero value is an empty set.
type Counters struct {
	counts map[Type]int
}

// New creates a Counters value from the given counters. Non-positive counts are ignored.
func New(cs ...Counter) Counters {
	var out Counters
	for _, c := range cs {
		out = out.Add(c.Type, c.Count)
	}
	return out
}

func (cs Counters) clone() map[Type]int {
	m := make(map[Type]int, len(cs.counts)+1)
	for t, n := range cs.counts {
		m[t] = n
	}
	return m
}

// Add returns a copy with amount counters of type t added.
// Adding zero or a negative amount returns the receiver unchanged.
func (cs Counters) Add(t Type, amount int) Counters {
	if amount <= 0 || t == "" {
		return cs
	}
	m := cs.clone()
	m[t] += amount
	return Counters{counts: m}
}

// Remove returns a copy with up to amount counters of type t removed, and how many were removed.
func (cs Counters) Remove(t Type, amount int) (Counters, int) {
	have := cs.counts[t]
	if amount <= 0 || have == 0 {
		return cs, 0
	}
	if amount > have {
		amount = have
	}
	m := cs.clone()
	if have == amount {
		delete(m, t)
	} else {
		m[t] = have - amount
	}
	return Counters{counts: m}, amount
}

// Count returns the number of counters of type t.
func (cs Counters) Count(t Type) int {
	return cs.counts[t]
}

// Has reports whether there is at least one counter of type t.
func (cs Counters) Has(t Type) bool {
	return cs.counts[t] > 0
}

// Total returns the number of counters of every type.
func (cs Counters) Total() int {
	total := 0
	for _, n := range cs.counts {
		total += n
	}
	return total
}

// IsEmpty reports whether no counters are present.
func (cs Counters) IsEmpty() bool {
	return len(cs.counts) == 0
}

// All returns every counter sorted by type name.
func (cs Counters) All() []Counter {
	out := make([]Counter, 0, len(cs.counts))
	for t, n := range cs.counts {
		out = append(out, Counter{Type: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Boost returns the combined power/toughness change from all boost counters.
func (cs Counters) Boost() (power, toughness int) {
	for t, n := range cs.counts {
		if p, tg, ok := ParseBoost(t); ok {
			power += p * n
			toughness += tg * n
		}
	}
	return power, toughness
}

// Annihilate removes +1/+1 and -1/-1 counters in pairs.
// Per rule 704.5q. Reports whether any pair was removed.
func (cs Counters) Annihilate() (Counters, bool) {
	pairs := min(cs.counts[P1P1], cs.counts[M1M1])
	if pairs == 0 {
		return cs, false
	}
	out, _ := cs.Remove(P1P1, pairs)
	out, _ = out.Remove(M1M1, pairs)
	return out, true
}

// Equal reports whether both sets hold the same counters.
func (cs Counters) Equal(other Counters) bool {
	if len(cs.counts) != len(other.counts) {
		return false
	}
	for t, n := range cs.counts {
		if other.counts[t] != n {
			return false
		}
	}
	return true
}

func (cs Counters) String() string {
	parts := make([]string, 0, len(cs.counts))
	for _, c := range cs.All() {
		parts = append(parts, fmt.Sprintf("%s x%d", c.Type, c.Count))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

type encodedCounters struct {
	List []Counter
}

// GobEncode encodes the counters in type order so equal sets encode identically.
func (cs Counters) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(encodedCounters{List: cs.All()}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode restores counters encoded by GobEncode.
func (cs *Counters) GobDecode(data []byte) error {
	var enc encodedCounters
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&enc); err != nil {
		return err
	}
	*cs = New(enc.List...)
	return nil
}

// BoostName formats a power/toughness boost as a counter type (e.g. "+1/+1", "-1/-1").
func BoostName(power, toughness int) Type {
	return Type(formatBoost(power) + "/" + formatBoost(toughness))
}

func formatBoost(v int) string {
	if v >= 0 {
		return "+" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}

// ParseBoost parses a boost counter type like "+1/+1" into its power/toughness deltas.
func ParseBoost(t Type) (power, toughness int, ok bool) {
	p, tg, found := strings.Cut(string(t), "/")
	if !found {
		return 0, 0, false
	}
	power, ok = parseBoostValue(p)
	if !ok {
		return 0, 0, false
	}
	toughness, ok = parseBoostValue(tg)
	return power, toughness, ok
}

func parseBoostValue(s string) (int, bool) {
	if len(s) < 2 || (s[0] != '+' && s[0] != '-') {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}
