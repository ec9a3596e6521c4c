// Package registry assembles card definitions from set providers and serves
// lookups to the rules engine.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/wingedsheep/argentum-engine/internal/game/card"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

var (
	ErrDuplicateCard = errors.New("duplicate card")
	ErrUnknownCard   = errors.New("unknown card")
)

// SetProvider supplies the cards of one set.
type SetProvider interface {
	Code() string
	Cards() ([]*card.Definition, error)
}

// Registry is an immutable collection of card definitions. It is safe for
// concurrent use once built.
type Registry struct {
	byID   map[state.CardRef]*card.Definition
	byName map[string]*card.Definition
	sets   []string
}

// New loads every provider in order. A card ref defined twice is an error.
func New(logger *zap.Logger, providers ...SetProvider) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		byID:   make(map[state.CardRef]*card.Definition),
		byName: make(map[string]*card.Definition),
	}
	for _, p := range providers {
		defs, err := p.Cards()
		if err != nil {
			return nil, fmt.Errorf("load set %s: %w", p.Code(), err)
		}
		for _, d := range defs {
			if d.Set == "" {
				d.Set = p.Code()
			}
			if err := d.Validate(); err != nil {
				return nil, fmt.Errorf("load set %s: %w", p.Code(), err)
			}
			if _, ok := r.byID[d.Ref]; ok {
				return nil, fmt.Errorf("load set %s: %w: %s", p.Code(), ErrDuplicateCard, d.Ref)
			}
			r.byID[d.Ref] = d
			key := strings.ToLower(d.Name)
			if _, ok := r.byName[key]; !ok {
				r.byName[key] = d
			}
		}
		r.sets = append(r.sets, p.Code())
		logger.Info("Loaded card set",
			zap.String("set", p.Code()),
			zap.Int("cards", len(defs)))
	}
	return r, nil
}

// LookupByID returns the definition for a card reference.
func (r *Registry) LookupByID(ref state.CardRef) (*card.Definition, bool) {
	d, ok := r.byID[ref]
	return d, ok
}

// LookupByName finds a card by name, ignoring case. With reprints the first
// loaded printing wins.
func (r *Registry) LookupByName(name string) (*card.Definition, bool) {
	d, ok := r.byName[strings.ToLower(name)]
	return d, ok
}

// Definition is LookupByID; it satisfies the rules engine's catalog.
func (r *Registry) Definition(ref state.CardRef) (*card.Definition, bool) { return r.LookupByID(ref) }

// Characteristics returns the printed characteristics of a card.
func (r *Registry) Characteristics(ref state.CardRef) (state.Characteristics, bool) {
	d, ok := r.byID[ref]
	if !ok {
		return state.Characteristics{}, false
	}
	return d.Characteristics, true
}

// Refs returns every card reference in sorted order.
func (r *Registry) Refs() []state.CardRef {
	out := make([]state.CardRef, 0, len(r.byID))
	for ref := range r.byID {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Sets returns the loaded set codes in load order.
func (r *Registry) Sets() []string { return append([]string(nil), r.sets...) }

// Len returns the number of cards.
func (r *Registry) Len() int { return len(r.byID) }

// Resolve maps card names to references, for deck lists.
func (r *Registry) Resolve(names ...string) ([]state.CardRef, error) {
	out := make([]state.CardRef, 0, len(names))
	for _, n := range names {
		d, ok := r.LookupByName(n)
		if !ok {
			if d, ok = r.LookupByID(state.CardRef(n)); !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownCard, n)
			}
		}
		out = append(out, d.Ref)
	}
	return out, nil
}

// Static is a provider backed by definitions built in code.
type Static struct {
	SetCode string
	Defs    []*card.Definition
}

func (s Static) Code() string                       { return s.SetCode }
func (s Static) Cards() ([]*card.Definition, error) { return s.Defs, nil }
