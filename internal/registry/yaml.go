package registry

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wingedsheep/argentum-engine/internal/game/card"
	"github.com/wingedsheep/argentum-engine/internal/game/condition"
	"github.com/wingedsheep/argentum-engine/internal/game/counters"
	"github.com/wingedsheep/argentum-engine/internal/game/mana"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
	"github.com/wingedsheep/argentum-engine/internal/game/targeting"
)

// File is a set provider reading a YAML set file.
type File struct {
	Path string
	code string
}

// Code returns the set code, reading the file header if needed.
func (f *File) Code() string {
	if f.code == "" {
		if s, err := f.load(); err == nil {
			f.code = s.Set
		}
	}
	if f.code == "" {
		return f.Path
	}
	return f.code
}

// Cards parses the file.
func (f *File) Cards() ([]*card.Definition, error) {
	s, err := f.load()
	if err != nil {
		return nil, err
	}
	f.code = s.Set
	return s.definitions()
}

func (f *File) load() (*setFile, error) {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read set: %w", err)
	}
	return parseSet(raw)
}

// parseSet decodes a YAML set document.
func parseSet(raw []byte) (*setFile, error) {
	var s setFile
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse set: %w", err)
	}
	if s.Set == "" {
		return nil, fmt.Errorf("parse set: missing set code")
	}
	return &s, nil
}

// --- YAML schema ---

type setFile struct {
	Set   string      `yaml:"set"`
	Cards []cardEntry `yaml:"cards"`
}

type cardEntry struct {
	Ref          string           `yaml:"ref"`
	Name         string           `yaml:"name"`
	ManaCost     string           `yaml:"mana_cost,omitempty"`
	TypeLine     string           `yaml:"type_line"`
	Colors       []string         `yaml:"colors,omitempty"`
	Text         string           `yaml:"text,omitempty"`
	Rarity       string           `yaml:"rarity,omitempty"`
	Power        *int             `yaml:"power,omitempty"`
	Toughness    *int             `yaml:"toughness,omitempty"`
	Keywords     []string         `yaml:"keywords,omitempty"`
	Targets      []targetEntry    `yaml:"targets,omitempty"`
	Effects      []effectEntry    `yaml:"effects,omitempty"`
	Modes        []modeEntry      `yaml:"modes,omitempty"`
	Fizzle       string           `yaml:"fizzle,omitempty"`
	Activated    []activatedEntry `yaml:"activated,omitempty"`
	Triggered    []triggeredEntry `yaml:"triggered,omitempty"`
	Statics      []staticEntry    `yaml:"statics,omitempty"`
	EntersTapped bool             `yaml:"enters_tapped,omitempty"`
	EntersWith   map[string]int   `yaml:"enters_with_counters,omitempty"`
}

type modeEntry struct {
	Description string        `yaml:"description"`
	Targets     []targetEntry `yaml:"targets"`
	Effects     []effectEntry `yaml:"effects"`
}

type filterEntry struct {
	Types      []string `yaml:"types"`
	NotTypes   []string `yaml:"not_types"`
	Subtypes   []string `yaml:"subtypes"`
	Colors     []string `yaml:"colors"`
	NotColors  []string `yaml:"not_colors"`
	Keywords   []string `yaml:"keywords"`
	Controller string   `yaml:"controller"`
	Tapped     string   `yaml:"tapped"`
	Other      bool     `yaml:"other"`
	Attacking  bool     `yaml:"attacking"`
	MaxPower   int      `yaml:"max_power"`
	Token      bool     `yaml:"token"`
	Nontoken   bool     `yaml:"nontoken"`
}

type targetEntry struct {
	Kind        string      `yaml:"kind"`
	Description string      `yaml:"description"`
	Count       int         `yaml:"count"`
	Min         *int        `yaml:"min"`
	Optional    bool        `yaml:"optional"`
	Filter      filterEntry `yaml:"filter"`
	Player      string      `yaml:"player"`
	Zone        string      `yaml:"zone"`
}

type effectEntry struct {
	Do       string        `yaml:"do"`
	Subject  string        `yaml:"subject"`
	Filter   *filterEntry  `yaml:"filter"`
	Amount   int           `yaml:"amount"`
	X        bool          `yaml:"x"`
	Counter  string        `yaml:"counter"`
	Token    string        `yaml:"token"`
	Tapped   bool          `yaml:"tapped"`
	Mana     string        `yaml:"mana"`
	Power    int           `yaml:"power"`
	Tough    int           `yaml:"toughness"`
	Keywords []string      `yaml:"keywords"`
	Duration string        `yaml:"duration"`
	Prompt   string        `yaml:"prompt"`
	Effects  []effectEntry `yaml:"effects"`
	Else     []effectEntry `yaml:"else"`
	If       *condEntry    `yaml:"if"`
}

type condEntry struct {
	Kind   string      `yaml:"kind"`
	Player string      `yaml:"player"`
	Op     string      `yaml:"op"`
	Value  int         `yaml:"value"`
	Filter filterEntry `yaml:"filter"`
	Zone   string      `yaml:"zone"`
	Step   string      `yaml:"step"`
	All    []condEntry `yaml:"all"`
	Any    []condEntry `yaml:"any"`
	Not    *condEntry  `yaml:"not"`
}

type costEntry struct {
	Mana           string `yaml:"mana"`
	Tap            bool   `yaml:"tap"`
	Sacrifice      bool   `yaml:"sacrifice"`
	Life           int    `yaml:"life"`
	RemoveCounters int    `yaml:"remove_counters"`
	Counter        string `yaml:"counter"`
}

type activatedEntry struct {
	Description string        `yaml:"description"`
	Cost        costEntry     `yaml:"cost"`
	Timing      string        `yaml:"timing"`
	If          *condEntry    `yaml:"if"`
	Targets     []targetEntry `yaml:"targets"`
	Effects     []effectEntry `yaml:"effects"`
}

type triggeredEntry struct {
	Description string        `yaml:"description"`
	On          string        `yaml:"on"`
	Self        bool          `yaml:"self"`
	Filter      filterEntry   `yaml:"filter"`
	Player      string        `yaml:"player"`
	If          *condEntry    `yaml:"if"`
	Targets     []targetEntry `yaml:"targets"`
	Effects     []effectEntry `yaml:"effects"`
}

type staticEntry struct {
	Affects   string      `yaml:"affects"`
	Filter    filterEntry `yaml:"filter"`
	Power     int         `yaml:"power"`
	Toughness int         `yaml:"toughness"`
	Keywords  []string    `yaml:"keywords"`
}

// --- conversion ---

func (s *setFile) definitions() ([]*card.Definition, error) {
	out := make([]*card.Definition, 0, len(s.Cards))
	for i := range s.Cards {
		d, err := s.Cards[i].definition(s.Set)
		if err != nil {
			return nil, fmt.Errorf("card %q: %w", s.Cards[i].Ref, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func (e *cardEntry) definition(set string) (*card.Definition, error) {
	cost, err := mana.ParseCost(e.ManaCost)
	if err != nil {
		return nil, err
	}
	supers, types, subs := state.ParseTypeLine(e.TypeLine)
	d := &card.Definition{
		Ref: state.CardRef(e.Ref), Set: set, Rarity: e.Rarity,
		Characteristics: state.Characteristics{
			Name: e.Name, ManaCost: cost, Colors: cost.Colors(), Text: e.Text,
			Supertypes: supers, Types: types, Subtypes: subs,
		},
	}
	if len(e.Colors) > 0 {
		c, ok := mana.ParseColors(e.Colors)
		if !ok {
			return nil, fmt.Errorf("bad colors %v", e.Colors)
		}
		d.Colors = c
	}
	if e.Power != nil || e.Toughness != nil {
		d.HasPT = true
		if e.Power != nil {
			d.Power = *e.Power
		}
		if e.Toughness != nil {
			d.Toughness = *e.Toughness
		}
	}
	if d.Keywords, err = keywords(e.Keywords); err != nil {
		return nil, err
	}
	if len(e.Effects) > 0 || len(e.Modes) > 0 || len(e.Targets) > 0 {
		s, err := script(e.Targets, e.Effects)
		if err != nil {
			return nil, err
		}
		for _, m := range e.Modes {
			ms, err := script(m.Targets, m.Effects)
			if err != nil {
				return nil, err
			}
			s.Modes = append(s.Modes, card.Mode{Description: m.Description, Targets: ms.Targets, Effect: ms.Effect})
		}
		if len(s.Modes) > 0 {
			s.ModeCount = 1
		}
		if e.Fizzle == "all_or_nothing" {
			s.Fizzle = card.AllOrNothing
		}
		d.Spell = &s
	}
	for _, a := range e.Activated {
		ab, err := a.ability()
		if err != nil {
			return nil, err
		}
		d.Activated = append(d.Activated, ab)
	}
	for _, t := range e.Triggered {
		ab, err := t.ability()
		if err != nil {
			return nil, err
		}
		d.Triggered = append(d.Triggered, ab)
	}
	for _, st := range e.Statics {
		abs, err := st.abilities()
		if err != nil {
			return nil, err
		}
		d.Statics = append(d.Statics, abs...)
	}
	if e.EntersTapped {
		d.Replacements = append(d.Replacements, state.ReplacementAbility{Affected: state.AffectSelf{}, Rule: state.EntersTapped{}})
	}
	for t, n := range e.EntersWith {
		d.Replacements = append(d.Replacements, state.ReplacementAbility{
			Affected: state.AffectSelf{}, Rule: state.EntersWithCounters{Type: counters.Type(t), Count: n},
		})
	}
	return d, nil
}

func script(ts []targetEntry, es []effectEntry) (card.Script, error) {
	var s card.Script
	for _, t := range ts {
		r, err := t.requirement()
		if err != nil {
			return s, err
		}
		s.Targets = append(s.Targets, r)
	}
	eff, err := effects(es)
	if err != nil {
		return s, err
	}
	s.Effect = eff
	return s, nil
}

func (a activatedEntry) ability() (card.ActivatedAbility, error) {
	s, err := script(a.Targets, a.Effects)
	if err != nil {
		return card.ActivatedAbility{}, err
	}
	c, err := mana.ParseCost(a.Cost.Mana)
	if err != nil {
		return card.ActivatedAbility{}, err
	}
	ab := card.ActivatedAbility{
		Description: a.Description,
		Cost: card.Cost{
			Mana: c, Tap: a.Cost.Tap, SacrificeSelf: a.Cost.Sacrifice, PayLife: a.Cost.Life,
			RemoveCounters: a.Cost.RemoveCounters, CounterType: a.Cost.Counter,
		},
		Script: s,
	}
	if a.Timing == "sorcery" {
		ab.Timing = card.TimingSorcery
	}
	if ab.Condition, err = a.If.condition(); err != nil {
		return ab, err
	}
	ab.IsMana = len(a.Targets) == 0 && onlyMana(a.Effects)
	return ab, nil
}

func onlyMana(es []effectEntry) bool {
	for _, e := range es {
		if e.Do != "add_mana" {
			return false
		}
	}
	return len(es) > 0
}

func (t triggeredEntry) ability() (card.TriggeredAbility, error) {
	ev, ok := card.ParseTriggerEvent(t.On)
	if !ok {
		return card.TriggeredAbility{}, fmt.Errorf("unknown trigger %q", t.On)
	}
	f, err := t.Filter.filter()
	if err != nil {
		return card.TriggeredAbility{}, err
	}
	s, err := script(t.Targets, t.Effects)
	if err != nil {
		return card.TriggeredAbility{}, err
	}
	cond, err := t.If.condition()
	if err != nil {
		return card.TriggeredAbility{}, err
	}
	return card.TriggeredAbility{
		Description: t.Description,
		Trigger:     card.TriggerSpec{Event: ev, Self: t.Self, Filter: f, Player: relation(t.Player)},
		If:          cond,
		Script:      s,
	}, nil
}

func (s staticEntry) abilities() ([]state.StaticAbility, error) {
	var aff state.Affected
	switch s.Affects {
	case "self":
		aff = state.AffectSelf{}
	case "attached":
		aff = state.AffectAttached{}
	case "filter", "":
		f, err := s.Filter.filter()
		if err != nil {
			return nil, err
		}
		aff = state.AffectFilter{Filter: f}
	default:
		return nil, fmt.Errorf("unknown static scope %q", s.Affects)
	}
	var out []state.StaticAbility
	if s.Power != 0 || s.Toughness != 0 {
		out = append(out, state.StaticAbility{Affected: aff, Mod: state.ModifyPT{Power: s.Power, Toughness: s.Toughness}})
	}
	if len(s.Keywords) > 0 {
		ks, err := keywords(s.Keywords)
		if err != nil {
			return nil, err
		}
		out = append(out, state.StaticAbility{Affected: aff, Mod: state.AddKeywords{Keywords: ks}})
	}
	return out, nil
}

func (t targetEntry) requirement() (targeting.Requirement, error) {
	f, err := t.Filter.filter()
	if err != nil {
		return targeting.Requirement{}, err
	}
	r := targeting.Requirement{
		Description: t.Description, Kind: targeting.Kind(strings.ToUpper(t.Kind)), Count: max(t.Count, 1),
		MinCount: t.Min, Optional: t.Optional, Filter: f, Player: relation(t.Player),
	}
	switch r.Kind {
	case targeting.KindAny, targeting.KindPlayer, targeting.KindPermanent, targeting.KindSpell, targeting.KindCard:
	default:
		return r, fmt.Errorf("unknown target kind %q", t.Kind)
	}
	if t.Zone != "" {
		z, ok := zones[t.Zone]
		if !ok {
			return r, fmt.Errorf("unknown zone %q", t.Zone)
		}
		r.Zone = z
	}
	if r.Description == "" {
		r.Description = "target " + strings.ToLower(t.Kind)
	}
	return r, r.Check()
}

var zones = map[string]state.Zone{
	"library": state.ZoneLibrary, "hand": state.ZoneHand, "graveyard": state.ZoneGraveyard,
	"battlefield": state.ZoneBattlefield, "stack": state.ZoneStack, "exile": state.ZoneExile,
}

var cardTypes = map[string]state.CardType{}

func init() {
	for _, t := range []state.CardType{
		state.TypeCreature, state.TypeLand, state.TypeArtifact, state.TypeEnchantment,
		state.TypeInstant, state.TypeSorcery, state.TypePlaneswalker,
	} {
		cardTypes[strings.ToLower(string(t))] = t
	}
}

func relation(s string) state.Relation {
	switch s {
	case "you":
		return state.You
	case "opponent":
		return state.Opponent
	}
	return state.AnyPlayer
}

func (f filterEntry) filter() (state.Filter, error) {
	out := state.Filter{
		Subtypes: f.Subtypes, Controller: relation(f.Controller), Other: f.Other,
		Attacking: f.Attacking, MaxPower: f.MaxPower, Token: f.Token, Nontoken: f.Nontoken,
	}
	for _, t := range f.Types {
		ct, ok := cardTypes[strings.ToLower(t)]
		if !ok {
			return out, fmt.Errorf("unknown card type %q", t)
		}
		out.Types = append(out.Types, ct)
	}
	for _, t := range f.NotTypes {
		ct, ok := cardTypes[strings.ToLower(t)]
		if !ok {
			return out, fmt.Errorf("unknown card type %q", t)
		}
		out.NotTypes = append(out.NotTypes, ct)
	}
	var ok bool
	if len(f.Colors) > 0 {
		if out.Colors, ok = mana.ParseColors(f.Colors); !ok {
			return out, fmt.Errorf("bad colors %v", f.Colors)
		}
	}
	if len(f.NotColors) > 0 {
		if out.NotColors, ok = mana.ParseColors(f.NotColors); !ok {
			return out, fmt.Errorf("bad colors %v", f.NotColors)
		}
	}
	var err error
	if out.Keywords, err = keywords(f.Keywords); err != nil {
		return out, err
	}
	switch f.Tapped {
	case "tapped":
		out.Tapped = state.TappedOnly
	case "untapped":
		out.Tapped = state.UntappedOnly
	}
	return out, nil
}

func keywords(names []string) ([]state.Keyword, error) {
	var out []state.Keyword
	for _, n := range names {
		k := state.Keyword(strings.ToLower(n))
		if !state.KnownKeyword(k) {
			return nil, fmt.Errorf("unknown keyword %q", n)
		}
		out = append(out, k)
	}
	return out, nil
}

func subject(s string, f *filterEntry) (card.Subject, error) {
	if f != nil {
		flt, err := f.filter()
		if err != nil {
			return nil, err
		}
		return card.AllMatching{Filter: flt}, nil
	}
	switch s {
	case "", "target":
		return card.Target{Index: 0}, nil
	case "self":
		return card.Self{}, nil
	case "you":
		return card.You{}, nil
	case "each_opponent":
		return card.EachOpponent{}, nil
	case "each_player":
		return card.EachPlayer{}, nil
	case "triggering":
		return card.Triggering{}, nil
	}
	var i int
	if _, err := fmt.Sscanf(s, "target%d", &i); err == nil {
		return card.Target{Index: i}, nil
	}
	if _, err := fmt.Sscanf(s, "controller_of_target%d", &i); err == nil {
		return card.ControllerOf{Index: i}, nil
	}
	return nil, fmt.Errorf("unknown subject %q", s)
}

var durations = map[string]state.Duration{
	"": state.UntilEndOfTurn, "end_of_turn": state.UntilEndOfTurn, "end_of_combat": state.UntilEndOfCombat,
	"your_next_turn": state.UntilYourNextTurn, "while_on_battlefield": state.WhileSourceOnBattlefield,
	"indefinitely": state.Indefinitely,
}

func effects(es []effectEntry) (card.Effect, error) {
	if len(es) == 0 {
		return nil, nil
	}
	var seq card.Sequence
	for _, e := range es {
		eff, err := e.effect()
		if err != nil {
			return nil, err
		}
		seq.Effects = append(seq.Effects, eff)
	}
	if len(seq.Effects) == 1 {
		return seq.Effects[0], nil
	}
	return seq, nil
}

func (e effectEntry) effect() (card.Effect, error) {
	subj, err := subject(e.Subject, e.Filter)
	if err != nil {
		return nil, err
	}
	amt := card.Amount{Fixed: e.Amount, X: e.X}
	switch e.Do {
	case "damage":
		return card.DealDamage{To: subj, Amount: amt}, nil
	case "destroy":
		return card.Destroy{What: subj}, nil
	case "exile":
		return card.Exile{What: subj}, nil
	case "bounce":
		return card.ReturnToHand{What: subj}, nil
	case "reanimate":
		return card.ReturnToBattlefield{What: subj}, nil
	case "draw":
		return card.DrawCards{Who: defaultYou(e.Subject, subj), Amount: amt}, nil
	case "discard":
		return card.Discard{Who: subj, Amount: amt}, nil
	case "gain_life":
		return card.GainLife{Who: defaultYou(e.Subject, subj), Amount: amt}, nil
	case "lose_life":
		return card.LoseLife{Who: subj, Amount: amt}, nil
	case "add_counters":
		return card.AddCounters{What: subj, Type: counters.Type(e.Counter), Amount: amt}, nil
	case "tap":
		return card.Tap{What: subj}, nil
	case "untap":
		return card.Untap{What: subj}, nil
	case "add_mana":
		var pool mana.Pool
		for _, sym := range strings.Split(strings.Trim(e.Mana, "{}"), "}{") {
			t, err := mana.ParseType(sym)
			if err != nil {
				return nil, err
			}
			pool = pool.Add(t, 1)
		}
		return card.AddMana{Mana: pool}, nil
	case "create_token":
		return card.CreateToken{Token: state.CardRef(e.Token), Amount: card.Amount{Fixed: max(e.Amount, 1), X: e.X}, Tapped: e.Tapped}, nil
	case "surveil":
		return card.Surveil{Amount: amt}, nil
	case "scry":
		return card.Scry{Amount: amt}, nil
	case "mill":
		return card.Mill{Who: subj, Amount: amt}, nil
	case "counter":
		return card.CounterSpell{What: subj}, nil
	case "prevent":
		return card.PreventDamage{To: subj, Amount: e.Amount}, nil
	case "pump":
		d, ok := durations[e.Duration]
		if !ok {
			return nil, fmt.Errorf("unknown duration %q", e.Duration)
		}
		var mods []card.Effect
		if e.Power != 0 || e.Tough != 0 {
			mods = append(mods, card.ApplyContinuous{What: subj, Mod: state.ModifyPT{Power: e.Power, Toughness: e.Tough}, Duration: d})
		}
		if len(e.Keywords) > 0 {
			ks, err := keywords(e.Keywords)
			if err != nil {
				return nil, err
			}
			mods = append(mods, card.ApplyContinuous{What: subj, Mod: state.AddKeywords{Keywords: ks}, Duration: d})
		}
		if len(mods) == 1 {
			return mods[0], nil
		}
		return card.Sequence{Effects: mods}, nil
	case "may":
		inner, err := effects(e.Effects)
		if err != nil {
			return nil, err
		}
		return card.May{Prompt: e.Prompt, Effect: inner}, nil
	case "if":
		cond, err := e.If.condition()
		if err != nil {
			return nil, err
		}
		then, err := effects(e.Effects)
		if err != nil {
			return nil, err
		}
		els, err := effects(e.Else)
		if err != nil {
			return nil, err
		}
		return card.Conditional{If: cond, Then: then, Else: els}, nil
	}
	return nil, fmt.Errorf("unknown effect %q", e.Do)
}

func defaultYou(raw string, s card.Subject) card.Subject {
	if raw == "" {
		return card.You{}
	}
	return s
}

var steps = map[string]state.Step{}

func init() {
	for s := state.StepUntap; s <= state.StepCleanup; s++ {
		steps[strings.ToLower(s.String())] = s
	}
}

func (c *condEntry) condition() (condition.Condition, error) {
	if c == nil {
		return nil, nil
	}
	op := condition.AtLeast
	if c.Op != "" {
		var err error
		if op, err = condition.ParseOp(c.Op); err != nil {
			return nil, err
		}
	}
	switch c.Kind {
	case "life":
		return condition.LifeCompare{Player: relation(c.Player), Op: op, Value: c.Value}, nil
	case "controls":
		f, err := c.Filter.filter()
		if err != nil {
			return nil, err
		}
		return condition.ControlsCount{Filter: f, Op: op, Value: c.Value}, nil
	case "zone_count":
		f, err := c.Filter.filter()
		if err != nil {
			return nil, err
		}
		z, ok := zones[c.Zone]
		if !ok {
			return nil, fmt.Errorf("unknown zone %q", c.Zone)
		}
		return condition.ZoneCount{Count: state.Count{Zone: z, Filter: f, Owner: relation(c.Player)}, Op: op, Value: c.Value}, nil
	case "your_turn":
		return condition.IsYourTurn{}, nil
	case "step":
		s, ok := steps[c.Step]
		if !ok {
			return nil, fmt.Errorf("unknown step %q", c.Step)
		}
		return condition.StepIs{Step: s}, nil
	case "stack_empty":
		return condition.StackEmpty{}, nil
	case "in_combat":
		return condition.InCombat{}, nil
	case "spells_cast":
		return condition.SpellsCastThisTurn{Player: relation(c.Player), Op: op, Value: c.Value}, nil
	case "creatures_died":
		return condition.CreaturesDiedThisTurn{Op: op, Value: c.Value}, nil
	case "all", "any":
		var subs []condition.Condition
		list := c.All
		if c.Kind == "any" {
			list = c.Any
		}
		for i := range list {
			sub, err := list[i].condition()
			if err != nil {
				return nil, err
			}
			subs = append(subs, sub)
		}
		if c.Kind == "any" {
			return condition.Or{Conditions: subs}, nil
		}
		return condition.And{Conditions: subs}, nil
	case "not":
		sub, err := c.Not.condition()
		if err != nil {
			return nil, err
		}
		return condition.Not{Condition: sub}, nil
	}
	return nil, fmt.Errorf("unknown condition %q", c.Kind)
}
