package dispute

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisputeState_IsValid(t *testing.T) {
	tests := []struct {
		state   DisputeState
		isValid bool
	}{
		{DisputeStateNone, true},
		{DisputeStateNeedsResponse, true},
		{DisputeStateUnderReview, true},
		{DisputeStateWon, true},
		{DisputeStateLost, true},
		{DisputeState("BOGUS"), false},
		{DisputeState(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.state.IsValid())
		})
	}
}

func TestDisputeState_Rank(t *testing.T) {
	assert.Equal(t, 0, DisputeStateNone.Rank())
	assert.Equal(t, 1, DisputeStateNeedsResponse.Rank())
	assert.Equal(t, 2, DisputeStateUnderReview.Rank())
	assert.Equal(t, 3, DisputeStateWon.Rank())
	assert.Equal(t, 3, DisputeStateLost.Rank())
}

func TestDisputeState_IsTerminal(t *testing.T) {
	assert.True(t, DisputeStateWon.IsTerminal())
	assert.True(t, DisputeStateLost.IsTerminal())
	assert.False(t, DisputeStateNone.IsTerminal())
	assert.False(t, DisputeStateNeedsResponse.IsTerminal())
	assert.False(t, DisputeStateUnderReview.IsTerminal())
}

func TestDisputeState_LabelRoundtrip(t *testing.T) {
	states := []DisputeState{
		DisputeStateNone,
		DisputeStateNeedsResponse,
		DisputeStateUnderReview,
		DisputeStateWon,
		DisputeStateLost,
	}
	for _, s := range states {
		t.Run(string(s), func(t *testing.T) {
			assert.Equal(t, s, DisputeStateFromLabel(s.PersistedLabel()))
		})
	}
}

func TestDisputeStateFromLabel_Unknown(t *testing.T) {
	assert.Equal(t, DisputeStateNone, DisputeStateFromLabel("garbage"))
	assert.Equal(t, DisputeStateNone, DisputeStateFromLabel(""))
}

func TestCategory_IsExplicit(t *testing.T) {
	tests := []struct {
		category Category
		explicit bool
	}{
		{CategoryAuto, false},
		{CategoryInvalid, false},
		{CategoryRisk, true},
		{CategoryDisputeOpen, true},
		{CategoryDisputeSubmitted, true},
		{CategoryDisputeWon, true},
		{CategoryDisputeLost, true},
		{Category("BOGUS"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.explicit, tt.category.IsExplicit())
		})
	}
}

func TestCategory_IsSelectable(t *testing.T) {
	assert.True(t, CategoryAuto.IsSelectable())
	assert.True(t, CategoryRisk.IsSelectable())
	assert.False(t, CategoryInvalid.IsSelectable())
	assert.False(t, Category("BOGUS").IsSelectable())
}

func TestParsePaymentState(t *testing.T) {
	tests := []struct {
		raw  string
		want PaymentState
	}{
		{"paid", PaymentStatePaid},
		{"PAID", PaymentStatePaid},
		{" Pending ", PaymentStatePending},
		{"Partially Refunded", PaymentStatePartiallyRefunded},
		{"partially_refunded", PaymentStatePartiallyRefunded},
		{"voided", PaymentStateVoided},
		{"something else", PaymentStateUnknown},
		{"", PaymentStateUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePaymentState(tt.raw))
		})
	}
}

func TestParseFulfillmentState(t *testing.T) {
	tests := []struct {
		raw  string
		want FulfillmentState
	}{
		{"fulfilled", FulfillmentStateFulfilled},
		{"FULFILLED", FulfillmentStateFulfilled},
		{"partial", FulfillmentStatePartial},
		{"Partially Fulfilled", FulfillmentStatePartial},
		{"restocked", FulfillmentStateRestocked},
		{"unfulfilled", FulfillmentStateUnfulfilled},
		{"whatever", FulfillmentStateUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFulfillmentState(tt.raw))
		})
	}
}
