package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	all := []DecisionStatus{DecisionDraft, DecisionApproved, DecisionRejected}

	assert.True(t, CanTransition(DecisionDraft, DecisionApproved))
	assert.True(t, CanTransition(DecisionDraft, DecisionRejected))
	assert.False(t, CanTransition(DecisionDraft, DecisionDraft))

	for _, from := range []DecisionStatus{DecisionApproved, DecisionRejected} {
		for _, to := range all {
			assert.False(t, CanTransition(from, to), "%s -> %s (terminal state)", from, to)
		}
	}
}

func TestParseDecisionStatus(t *testing.T) {
	for _, s := range []string{"draft", "approved", "rejected"} {
		_, err := ParseDecisionStatus(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseDecisionStatus("pending")
	assert.Error(t, err)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Crew_Lead ")
	require.NoError(t, err)
	assert.Equal(t, RoleCrewLead, r)

	_, err = ParseRole("superuser")
	assert.Error(t, err)
}

func TestNormalizeEquipment(t *testing.T) {
	cases := map[string]string{
		"Mower":           "mower",
		" Hedge Trimmer ": "hedge_trimmer",
		"hedge-trimmer":   "hedge_trimmer",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeEquipment(in), in)
	}
}

func TestEquipmentCost(t *testing.T) {
	m := DefaultCostModel()

	cost, ok := m.EquipmentCost("Hedge Trimmer")
	assert.True(t, ok)
	assert.Equal(t, 5.0, cost)

	cost, ok = m.EquipmentCost("Jet Pack")
	assert.False(t, ok)
	assert.Zero(t, cost)
}
