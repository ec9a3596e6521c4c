package registry

import (
	"github.com/wingedsheep/argentum-engine/internal/game/card"
	"github.com/wingedsheep/argentum-engine/internal/game/condition"
	"github.com/wingedsheep/argentum-engine/internal/game/counters"
	"github.com/wingedsheep/argentum-engine/internal/game/mana"
	"github.com/wingedsheep/argentum-engine/internal/game/state"
	"github.com/wingedsheep/argentum-engine/internal/game/targeting"
)

// StarterCode is the set code of the built-in starter set.
const StarterCode = "STA"

// Starter returns the built-in starter set: basic lands plus a spread of cards
// covering the mechanics the engine supports.
func Starter() Static {
	return Static{SetCode: StarterCode, Defs: starterCards()}
}

func def(ref, name, cost, typeLine string) *card.Definition {
	c := mana.MustParseCost(cost)
	supers, types, subs := state.ParseTypeLine(typeLine)
	return &card.Definition{
		Ref: state.CardRef(ref),
		Characteristics: state.Characteristics{
			Name: name, ManaCost: c, Colors: c.Colors(),
			Supertypes: supers, Types: types, Subtypes: subs,
		},
	}
}

func creature(ref, name, cost, typeLine string, power, toughness int, ks ...state.Keyword) *card.Definition {
	d := def(ref, name, cost, typeLine)
	d.Power, d.Toughness, d.HasPT = power, toughness, true
	d.Keywords = ks
	return d
}

func spell(ref, name, cost, typeLine string, s card.Script) *card.Definition {
	d := def(ref, name, cost, typeLine)
	d.Spell = &s
	return d
}

func tapForMana(t mana.Type) card.ActivatedAbility {
	return card.ActivatedAbility{
		Description: "{T}: Add {" + t.String() + "}.",
		Cost:        card.Cost{Tap: true},
		Script:      card.Script{Effect: card.AddMana{Mana: mana.Pool{}.Add(t, 1)}},
		IsMana:      true,
	}
}

func basic(name string, t mana.Type) *card.Definition {
	d := def(basicRef(name), name, "", "Basic Land - "+name)
	d.Activated = []card.ActivatedAbility{tapForMana(t)}
	return d
}

func basicRef(name string) string { return "basic-" + name }

func anyTarget() targeting.Requirement {
	return targeting.Single(targeting.KindAny, "any target", state.Filter{})
}

func targetCreature() targeting.Requirement {
	return targeting.Single(targeting.KindPermanent, "target creature", state.Creatures())
}

func targetPlayer() targeting.Requirement {
	return targeting.Single(targeting.KindPlayer, "target player", state.Filter{})
}

func untilEOT(what card.Subject, mod state.Modification) card.ApplyContinuous {
	return card.ApplyContinuous{What: what, Mod: mod, Duration: state.UntilEndOfTurn}
}

func starterCards() []*card.Definition {
	t0 := card.Target{Index: 0}
	var cards []*card.Definition

	cards = append(cards,
		basic("Plains", mana.White),
		basic("Island", mana.Blue),
		basic("Swamp", mana.Black),
		basic("Mountain", mana.Red),
		basic("Forest", mana.Green),
	)

	guildgate := def("dimir-guildgate", "Dimir Guildgate", "", "Land - Gate")
	guildgate.Replacements = []state.ReplacementAbility{{Affected: state.AffectSelf{}, Rule: state.EntersTapped{}}}
	guildgate.Activated = []card.ActivatedAbility{tapForMana(mana.Blue), tapForMana(mana.Black)}
	cards = append(cards, guildgate)

	cards = append(cards,
		spell("lightning-bolt", "Lightning Bolt", "{R}", "Instant", card.Script{
			Targets: []targeting.Requirement{anyTarget()},
			Effect:  card.DealDamage{To: t0, Amount: card.N(3)},
		}),
		spell("blaze", "Blaze", "{X}{R}", "Sorcery", card.Script{
			Targets: []targeting.Requirement{anyTarget()},
			Effect:  card.DealDamage{To: t0, Amount: card.X()},
		}),
		spell("giant-growth", "Giant Growth", "{G}", "Instant", card.Script{
			Targets: []targeting.Requirement{targetCreature()},
			Effect:  untilEOT(t0, state.ModifyPT{Power: 3, Toughness: 3}),
		}),
		spell("counterspell", "Counterspell", "{U}{U}", "Instant", card.Script{
			Targets: []targeting.Requirement{targeting.Single(targeting.KindSpell, "target spell", state.Filter{})},
			Effect:  card.CounterSpell{What: t0},
		}),
		spell("sinister-sabotage", "Sinister Sabotage", "{1}{U}{U}", "Instant", card.Script{
			Targets: []targeting.Requirement{targeting.Single(targeting.KindSpell, "target spell", state.Filter{})},
			Effect:  card.Then(card.CounterSpell{What: t0}, card.Surveil{Amount: card.N(1)}),
		}),
		spell("notion-rain", "Notion Rain", "{1}{U}{B}", "Sorcery", card.Script{
			Effect: card.Then(
				card.Surveil{Amount: card.N(2)},
				card.DrawCards{Who: card.You{}, Amount: card.N(2)},
				card.LoseLife{Who: card.You{}, Amount: card.N(2)},
			),
		}),
		spell("thought-scour", "Thought Scour", "{U}", "Instant", card.Script{
			Targets: []targeting.Requirement{targetPlayer()},
			Effect: card.Then(
				card.Mill{Who: t0, Amount: card.N(2)},
				card.DrawCards{Who: card.You{}, Amount: card.N(1)},
			),
		}),
		spell("murder", "Murder", "{1}{B}{B}", "Instant", card.Script{
			Targets: []targeting.Requirement{targetCreature()},
			Effect:  card.Destroy{What: t0},
		}),
		spell("doom-blade", "Doom Blade", "{1}{B}", "Instant", card.Script{
			Targets: []targeting.Requirement{targeting.Single(targeting.KindPermanent, "target nonblack creature",
				state.Filter{Types: []state.CardType{state.TypeCreature}, NotColors: mana.ColorBlack})},
			Effect: card.Destroy{What: t0},
		}),
		spell("unsummon", "Unsummon", "{U}", "Instant", card.Script{
			Targets: []targeting.Requirement{targetCreature()},
			Effect:  card.ReturnToHand{What: t0},
		}),
		spell("healing-salve", "Healing Salve", "{W}", "Instant", card.Script{
			ModeCount: 1,
			Modes: []card.Mode{
				{Description: "Target player gains 3 life.", Targets: []targeting.Requirement{targetPlayer()},
					Effect: card.GainLife{Who: t0, Amount: card.N(3)}},
				{Description: "Prevent the next 3 damage that would be dealt to any target this turn.",
					Targets: []targeting.Requirement{anyTarget()}, Effect: card.PreventDamage{To: t0, Amount: 3}},
			},
		}),
		spell("boros-charm", "Boros Charm", "{R}{W}", "Instant", card.Script{
			ModeCount: 1,
			Modes: []card.Mode{
				{Description: "Boros Charm deals 4 damage to target player.", Targets: []targeting.Requirement{targetPlayer()},
					Effect: card.DealDamage{To: t0, Amount: card.N(4)}},
				{Description: "Permanents you control gain indestructible until end of turn.",
					Effect: untilEOT(card.AllMatching{Filter: state.Filter{Controller: state.You}}, state.AddKeywords{Keywords: []state.Keyword{state.Indestructible}})},
				{Description: "Target creature gains double strike until end of turn.", Targets: []targeting.Requirement{targetCreature()},
					Effect: untilEOT(t0, state.AddKeywords{Keywords: []state.Keyword{state.DoubleStrike}})},
			},
		}),
		spell("raise-the-alarm", "Raise the Alarm", "{1}{W}", "Instant", card.Script{
			Effect: card.CreateToken{Token: "token-soldier", Amount: card.N(2)},
		}),
		spell("turn-to-frog", "Turn to Frog", "{1}{U}", "Instant", card.Script{
			Targets: []targeting.Requirement{targetCreature()},
			Effect: card.Then(
				untilEOT(t0, state.LoseAllAbilities{}),
				untilEOT(t0, state.SetTypes{Types: []state.CardType{state.TypeCreature}, Subtypes: []string{"Frog"}}),
				untilEOT(t0, state.SetColors{Colors: mana.ColorBlue}),
				untilEOT(t0, state.SetPT{Power: 1, Toughness: 1}),
			),
		}),
		spell("act-of-treason", "Act of Treason", "{2}{R}", "Sorcery", card.Script{
			Targets: []targeting.Requirement{targetCreature()},
			Effect: card.Then(
				card.ApplyContinuous{What: t0, Mod: state.SetController{}, Duration: state.UntilEndOfTurn},
				card.Untap{What: t0},
				untilEOT(t0, state.AddKeywords{Keywords: []state.Keyword{state.Haste}}),
			),
		}),
		spell("tragic-slip", "Tragic Slip", "{B}", "Instant", card.Script{
			Targets: []targeting.Requirement{targetCreature()},
			Effect: card.Conditional{
				If:   condition.CreaturesDiedThisTurn{Op: condition.AtLeast, Value: 1},
				Then: untilEOT(t0, state.ModifyPT{Power: -13, Toughness: -13}),
				Else: untilEOT(t0, state.ModifyPT{Power: -1, Toughness: -1}),
			},
		}),
	)

	cards = append(cards,
		creature("grizzly-bears", "Grizzly Bears", "{1}{G}", "Creature - Bear", 2, 2),
		creature("serra-angel", "Serra Angel", "{3}{W}{W}", "Creature - Angel", 4, 4, state.Flying, state.Vigilance),
		creature("typhoid-rats", "Typhoid Rats", "{B}", "Creature - Rat", 1, 1, state.Deathtouch),
		creature("colossal-dreadmaw", "Colossal Dreadmaw", "{4}{G}{G}", "Creature - Dinosaur", 6, 6, state.Trample),
		creature("vampire-nighthawk", "Vampire Nighthawk", "{1}{B}{B}", "Creature - Vampire Shaman", 2, 3, state.Flying, state.Deathtouch, state.Lifelink),
		creature("boggart-brute", "Boggart Brute", "{2}{R}", "Creature - Goblin Warrior", 3, 2, state.Menace),
		creature("white-knight", "White Knight", "{W}{W}", "Creature - Human Knight", 2, 2, state.FirstStrike, state.ProtectionFrom(mana.ColorBlack)),
		creature("gladecover-scout", "Gladecover Scout", "{G}", "Creature - Elf Scout", 1, 1, state.Hexproof),
		creature("wall-of-stone", "Wall of Stone", "{1}{R}{R}", "Creature - Wall", 0, 8, state.Defender),
		creature("giant-spider", "Giant Spider", "{3}{G}", "Creature - Spider", 2, 4, state.Reach),
		creature("raging-goblin", "Raging Goblin", "{R}", "Creature - Goblin Berserker", 1, 1, state.Haste),
		creature("isamaru", "Isamaru, Hound of Konda", "{W}", "Legendary Creature - Dog", 2, 2),
	)

	elves := creature("llanowar-elves", "Llanowar Elves", "{G}", "Creature - Elf Druid", 1, 1)
	elves.Activated = []card.ActivatedAbility{tapForMana(mana.Green)}

	fanatic := creature("mogg-fanatic", "Mogg Fanatic", "{R}", "Creature - Goblin", 1, 1)
	fanatic.Activated = []card.ActivatedAbility{{
		Description: "Sacrifice Mogg Fanatic: It deals 1 damage to any target.",
		Cost:        card.Cost{SacrificeSelf: true},
		Script:      card.Script{Targets: []targeting.Requirement{anyTarget()}, Effect: card.DealDamage{To: t0, Amount: card.N(1)}},
	}}

	feeder := creature("spike-feeder", "Spike Feeder", "{1}{G}{G}", "Creature - Spike", 0, 0)
	feeder.Replacements = []state.ReplacementAbility{{Affected: state.AffectSelf{}, Rule: state.EntersWithCounters{Type: counters.P1P1, Count: 2}}}
	feeder.Activated = []card.ActivatedAbility{{
		Description: "Remove a +1/+1 counter from Spike Feeder: You gain 2 life.",
		Cost:        card.Cost{RemoveCounters: 1, CounterType: string(counters.P1P1)},
		Script:      card.Script{Effect: card.GainLife{Who: card.You{}, Amount: card.N(2)}},
	}}

	visionary := creature("elvish-visionary", "Elvish Visionary", "{1}{G}", "Creature - Elf Shaman", 1, 1)
	visionary.Triggered = []card.TriggeredAbility{{
		Description: "When Elvish Visionary enters the battlefield, draw a card.",
		Trigger:     card.TriggerSpec{Event: card.OnEnterBattlefield, Self: true},
		Script:      card.Script{Effect: card.DrawCards{Who: card.You{}, Amount: card.N(1)}},
	}}

	gravedigger := creature("gravedigger", "Gravedigger", "{3}{B}", "Creature - Zombie", 2, 2)
	gravedigger.Triggered = []card.TriggeredAbility{{
		Description: "When Gravedigger enters the battlefield, you may return target creature card from your graveyard to your hand.",
		Trigger:     card.TriggerSpec{Event: card.OnEnterBattlefield, Self: true},
		Script: card.Script{
			Targets: []targeting.Requirement{{
				Description: "target creature card in your graveyard", Kind: targeting.KindCard, Count: 1,
				Optional: true, Filter: state.Creatures(), Player: state.You,
			}},
			Effect: card.May{Prompt: "Return the card to your hand?", Effect: card.ReturnToHand{What: t0}},
		},
	}}

	artist := creature("blood-artist", "Blood Artist", "{1}{B}", "Creature - Vampire", 0, 1)
	artist.Triggered = []card.TriggeredAbility{{
		Description: "Whenever Blood Artist or another creature dies, target player loses 1 life and you gain 1 life.",
		Trigger:     card.TriggerSpec{Event: card.OnDies, Filter: state.Creatures()},
		Script: card.Script{
			Targets: []targeting.Requirement{targetPlayer()},
			Effect:  card.Then(card.LoseLife{Who: t0, Amount: card.N(1)}, card.GainLife{Who: card.You{}, Amount: card.N(1)}),
		},
	}}

	pyromancer := creature("young-pyromancer", "Young Pyromancer", "{1}{R}", "Creature - Human Shaman", 2, 1)
	pyromancer.Triggered = []card.TriggeredAbility{{
		Description: "Whenever you cast an instant or sorcery spell, create a 1/1 red Elemental creature token.",
		Trigger: card.TriggerSpec{Event: card.OnSpellCast, Player: state.You,
			Filter: state.Filter{Types: []state.CardType{state.TypeInstant, state.TypeSorcery}}},
		Script: card.Script{Effect: card.CreateToken{Token: "token-elemental", Amount: card.N(1)}},
	}}

	magpie := creature("thieving-magpie", "Thieving Magpie", "{2}{U}{U}", "Creature - Bird", 1, 3, state.Flying)
	magpie.Triggered = []card.TriggeredAbility{{
		Description: "Whenever Thieving Magpie deals damage to an opponent, draw a card.",
		Trigger:     card.TriggerSpec{Event: card.OnCombatDamageToPlayer, Self: true, Player: state.Opponent},
		Script:      card.Script{Effect: card.DrawCards{Who: card.You{}, Amount: card.N(1)}},
	}}

	hellrider := creature("hellrider", "Hellrider", "{2}{R}{R}", "Creature - Devil", 3, 3, state.Haste)
	hellrider.Triggered = []card.TriggeredAbility{{
		Description: "Whenever a creature you control attacks, Hellrider deals 1 damage to the defending player.",
		Trigger:     card.TriggerSpec{Event: card.OnAttack, Filter: state.CreaturesYouControl()},
		Script:      card.Script{Effect: card.DealDamage{To: card.EachOpponent{}, Amount: card.N(1)}},
	}}

	pridemate := creature("ajanis-pridemate", "Ajani's Pridemate", "{1}{W}", "Creature - Cat Soldier", 2, 2)
	pridemate.Triggered = []card.TriggeredAbility{{
		Description: "Whenever you gain life, put a +1/+1 counter on Ajani's Pridemate.",
		Trigger:     card.TriggerSpec{Event: card.OnGainLife, Player: state.You},
		Script:      card.Script{Effect: card.AddCounters{What: card.Self{}, Type: counters.P1P1, Amount: card.N(1)}},
	}}

	arena := def("phyrexian-arena", "Phyrexian Arena", "{1}{B}{B}", "Enchantment")
	arena.Triggered = []card.TriggeredAbility{{
		Description: "At the beginning of your upkeep, you draw a card and you lose 1 life.",
		Trigger:     card.TriggerSpec{Event: card.OnUpkeep, Player: state.You},
		Script: card.Script{Effect: card.Then(
			card.DrawCards{Who: card.You{}, Amount: card.N(1)},
			card.LoseLife{Who: card.You{}, Amount: card.N(1)},
		)},
	}}

	vigil := def("dawn-vigil", "Dawn Vigil", "{2}{W}", "Enchantment")
	vigil.Triggered = []card.TriggeredAbility{{
		Description: "At the beginning of your end step, if you have 10 or less life, you gain 2 life.",
		Trigger:     card.TriggerSpec{Event: card.OnEndStep, Player: state.You},
		If:          condition.LifeCompare{Player: state.You, Op: condition.AtMost, Value: 10},
		Script:      card.Script{Effect: card.GainLife{Who: card.You{}, Amount: card.N(2)}},
	}}

	anthem := def("glorious-anthem", "Glorious Anthem", "{1}{W}{W}", "Enchantment")
	anthem.Statics = []state.StaticAbility{{
		Affected: state.AffectFilter{Filter: state.CreaturesYouControl()},
		Mod:      state.ModifyPT{Power: 1, Toughness: 1},
	}}

	rest := def("rest-in-peace", "Rest in Peace", "{1}{W}", "Enchantment")
	rest.Replacements = []state.ReplacementAbility{{
		Affected: state.AffectFilter{Filter: state.Filter{}},
		Rule:     state.ExileInsteadOfGraveyard{},
	}}

	greed := def("greed", "Greed", "{3}{B}", "Enchantment")
	greed.Activated = []card.ActivatedAbility{{
		Description: "{B}, Pay 2 life: Draw a card.",
		Cost:        card.Cost{Mana: mana.MustParseCost("{B}"), PayLife: 2},
		Script:      card.Script{Effect: card.DrawCards{Who: card.You{}, Amount: card.N(1)}},
	}}

	swarm := creature("crusader-of-odric", "Crusader of Odric", "{2}{W}", "Creature - Human Soldier", 0, 0)
	swarm.Statics = []state.StaticAbility{{
		Affected: state.AffectSelf{},
		Mod:      state.CountPT{Count: state.Count{Filter: state.CreaturesYouControl()}},
	}}

	holy := def("holy-strength", "Holy Strength", "{W}", "Enchantment - Aura")
	holy.Spell = &card.Script{Targets: []targeting.Requirement{targetCreature()}}
	holy.Statics = []state.StaticAbility{{Affected: state.AffectAttached{}, Mod: state.ModifyPT{Power: 1, Toughness: 2}}}

	soldier := creature("token-soldier", "Soldier", "", "Creature - Soldier", 1, 1)
	soldier.Colors = mana.ColorWhite
	elemental := creature("token-elemental", "Elemental", "", "Creature - Elemental", 1, 1)
	elemental.Colors = mana.ColorRed

	return append(cards, elves, fanatic, feeder, visionary, gravedigger, artist, pyromancer, magpie,
		hellrider, pridemate, arena, vigil, anthem, rest, greed, swarm, holy, soldier, elemental)
}
