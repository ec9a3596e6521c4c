package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedsheep/argentum-engine/internal/game/state"
)

// legendTable has alice deciding which of her two Isamarus to keep.
func legendTable(t *testing.T) *table {
	tb := newTable(t)
	tb.permanent(alice, "isamaru")
	tb.permanent(alice, "isamaru")
	st, _, err := tb.r.CheckStateBasedActions(tb.st)
	require.NoError(t, err)
	tb.st = st
	require.NotNil(t, tb.st.Pending())
	return tb
}

func TestMakeDecision_Rejected(t *testing.T) {
	for _, tc := range []struct {
		name     string
		player   state.PlayerID
		action   func(req state.DecisionRequest) Action
		want     error
		protocol bool
	}{
		{
			name:   "wrong player",
			player: bob,
			action: func(req state.DecisionRequest) Action {
				return MakeDecision{DecisionID: req.ID, Choices: []int{0}}
			},
			want:     ErrWrongPlayer,
			protocol: true,
		},
		{
			name:   "stale decision id",
			player: alice,
			action: func(state.DecisionRequest) Action {
				return MakeDecision{DecisionID: "00000000-0000-0000-0000-000000000000", Choices: []int{0}}
			},
			want:     ErrDecisionMismatch,
			protocol: true,
		},
		{
			name:   "unknown option",
			player: alice,
			action: func(req state.DecisionRequest) Action {
				return MakeDecision{DecisionID: req.ID, Choices: []int{7}}
			},
			want: ErrInvalidChoice,
		},
		{
			name:   "too many choices",
			player: alice,
			action: func(req state.DecisionRequest) Action {
				return MakeDecision{DecisionID: req.ID, Choices: []int{0, 1}}
			},
			want: ErrInvalidChoice,
		},
		{
			name:   "no choice",
			player: alice,
			action: func(req state.DecisionRequest) Action {
				return MakeDecision{DecisionID: req.ID}
			},
			want: ErrInvalidChoice,
		},
		{
			name:     "pass while deciding",
			player:   alice,
			action:   func(state.DecisionRequest) Action { return PassPriority{} },
			want:     ErrDecisionPending,
			protocol: true,
		},
		{
			name:     "attackers for another decision",
			player:   alice,
			action:   func(state.DecisionRequest) Action { return DeclareAttackers{} },
			want:     ErrDecisionPending,
			protocol: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tb := legendTable(t)
			before := tb.st.Pending()

			err := tb.try(tc.player, tc.action(before.Request))
			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, tc.protocol, IsProtocolViolation(err))
			assert.Equal(t, !tc.protocol, IsIllegalAction(err))
			assert.Equal(t, before, tb.st.Pending(), "the decision stays pending")
		})
	}
}

func TestMakeDecision_NothingPending(t *testing.T) {
	tb := newTable(t)
	err := tb.try(alice, MakeDecision{DecisionID: "x", Choices: []int{0}})
	require.ErrorIs(t, err, ErrNoDecision)
	assert.True(t, IsProtocolViolation(err))
}

func TestMakeDecision_IDsAreDeterministic(t *testing.T) {
	a := legendTable(t)
	b := legendTable(t)
	assert.Equal(t, a.st.Pending().Request.ID, b.st.Pending().Request.ID)
}

func TestLegalActions_PendingDecision(t *testing.T) {
	tb := legendTable(t)
	req := tb.st.Pending().Request

	actions := tb.r.LegalActions(tb.st, alice)
	assert.Equal(t, []Action{
		MakeDecision{DecisionID: req.ID, Choices: []int{0}},
		MakeDecision{DecisionID: req.ID, Choices: []int{1}},
		Concede{},
	}, actions)
	assert.Equal(t, []Action{Concede{}}, tb.r.LegalActions(tb.st, bob))
}
