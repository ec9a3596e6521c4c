package card

import "encoding/gob"

func (Self) GobEncode() ([]byte, error)         { return nil, nil }
func (*Self) GobDecode([]byte) error            { return nil }
func (You) GobEncode() ([]byte, error)          { return nil, nil }
func (*You) GobDecode([]byte) error             { return nil }
func (EachOpponent) GobEncode() ([]byte, error) { return nil, nil }
func (*EachOpponent) GobDecode([]byte) error    { return nil }
func (EachPlayer) GobEncode() ([]byte, error)   { return nil, nil }
func (*EachPlayer) GobDecode([]byte) error      { return nil }
func (Triggering) GobEncode() ([]byte, error)   { return nil, nil }
func (*Triggering) GobDecode([]byte) error      { return nil }

// Effects and subjects travel inside suspended resolutions stored in snapshots.
func init() {
	for _, v := range []any{
		Target{}, Self{}, You{}, EachOpponent{}, EachPlayer{}, AllMatching{}, Triggering{}, ControllerOf{},
		DealDamage{}, Destroy{}, Exile{}, ReturnToHand{}, ReturnToBattlefield{}, DrawCards{}, Discard{},
		GainLife{}, LoseLife{}, AddCounters{}, Tap{}, Untap{}, AddMana{}, CreateToken{}, Surveil{}, Scry{},
		Mill{}, CounterSpell{}, ApplyContinuous{}, PreventDamage{}, Sequence{}, Conditional{}, May{}, Shifted{},
	} {
		gob.Register(v)
	}
}
