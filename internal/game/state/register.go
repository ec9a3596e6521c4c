package state

import "encoding/gob"

// Concrete types stored behind interfaces must be registered for snapshot encoding.
func init() {
	for _, v := range []any{
		CardComponent{}, PermanentComponent{}, CountersComponent{}, StackComponent{}, CombatComponent{},
		PlayerTarget{}, PermanentTarget{}, CardTarget{}, SpellTarget{},
		AffectSelf{}, AffectEntities{}, AffectAttached{}, AffectFilter{},
		CopyOf{}, SetController{}, ChangeText{}, AddTypes{}, SetTypes{}, RemoveTypes{},
		SetColors{}, AddColors{}, AddKeywords{}, RemoveKeywords{}, LoseAllAbilities{},
		CountPT{}, SetPT{}, ModifyPT{}, SwitchPT{},
		PreventDamage{}, ExileInsteadOfGraveyard{}, EntersTapped{}, EntersWithCounters{},
	} {
		gob.Register(v)
	}
}

// Field-less types carry no data, but gob refuses structs without exported fields,
// so they encode as empty payloads.

func (AffectSelf) GobEncode() ([]byte, error)              { return nil, nil }
func (AffectAttached) GobEncode() ([]byte, error)          { return nil, nil }
func (LoseAllAbilities) GobEncode() ([]byte, error)        { return nil, nil }
func (SwitchPT) GobEncode() ([]byte, error)                { return nil, nil }
func (ExileInsteadOfGraveyard) GobEncode() ([]byte, error) { return nil, nil }
func (EntersTapped) GobEncode() ([]byte, error)            { return nil, nil }

func (*AffectSelf) GobDecode([]byte) error              { return nil }
func (*AffectAttached) GobDecode([]byte) error          { return nil }
func (*LoseAllAbilities) GobDecode([]byte) error        { return nil }
func (*SwitchPT) GobDecode([]byte) error                { return nil }
func (*ExileInsteadOfGraveyard) GobDecode([]byte) error { return nil }
func (*EntersTapped) GobDecode([]byte) error            { return nil }
