package dispute

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Explicit operator categories
// ============================================================================

func TestClassify_ExplicitCategory(t *testing.T) {
	tests := []struct {
		category    Category
		wantState   DisputeState
		wantRisk    bool
		injectedTag string
	}{
		{CategoryRisk, DisputeStateNone, true, "risk"},
		{CategoryDisputeOpen, DisputeStateNeedsResponse, true, "chargeback"},
		{CategoryDisputeSubmitted, DisputeStateUnderReview, true, "submitted"},
		{CategoryDisputeWon, DisputeStateWon, false, "won"},
		{CategoryDisputeLost, DisputeStateLost, false, "lost"},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			c := Classify(NewTagSet(), false, tt.category)
			assert.Equal(t, tt.category, c.Category)
			assert.Equal(t, tt.wantState, c.DisputeState)
			assert.Equal(t, tt.wantRisk, c.RiskFlag)
			assert.Equal(t, tt.injectedTag, c.InjectedTag)
		})
	}
}

func TestClassify_ExplicitOverridesTags(t *testing.T) {
	// tags scream "won" but the operator chose RISK
	c := Classify(NewTagSet("won"), false, CategoryRisk)
	assert.Equal(t, CategoryRisk, c.Category)
	assert.Equal(t, DisputeStateNone, c.DisputeState)
	assert.True(t, c.RiskFlag)
}

func TestClassify_TerminalKeepsRiskHint(t *testing.T) {
	won := Classify(NewTagSet(), true, CategoryDisputeWon)
	assert.True(t, won.RiskFlag)

	lost := Classify(NewTagSet(), false, CategoryDisputeLost)
	assert.False(t, lost.RiskFlag)
}

func TestClassify_MarkerTagIdempotent(t *testing.T) {
	order, err := NewCanonicalOrder("#1001")
	assert.NoError(t, err)
	order.Tags.Add("chargeback")

	order.ApplyClassification(Classify(order.Tags, false, CategoryDisputeOpen))
	order.ApplyClassification(Classify(order.Tags, false, CategoryDisputeOpen))

	assert.Equal(t, []string{"chargeback"}, order.Tags.Values())
}

// ============================================================================
// Tag auto-detection
// ============================================================================

func TestDetectCategory_Priority(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want Category
	}{
		{"won beats everything", []string{"chargeback", "fraud", "won"}, CategoryDisputeWon},
		{"lost beats submitted", []string{"submitted", "lost"}, CategoryDisputeLost},
		{"submitted beats open", []string{"chargeback", "submitted"}, CategoryDisputeSubmitted},
		{"under review counts as submitted", []string{"Under Review"}, CategoryDisputeSubmitted},
		{"chargeback beats risk", []string{"fraud", "chargeback"}, CategoryDisputeOpen},
		{"dispute counts as open", []string{"dispute filed"}, CategoryDisputeOpen},
		{"fraud alone", []string{"fraud"}, CategoryRisk},
		{"risk alone", []string{"possible risk"}, CategoryRisk},
		{"high alone", []string{"high"}, CategoryRisk},
		{"substring match", []string{"chargeback-pending"}, CategoryDisputeOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectCategory(NewTagSet(tt.tags...))
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectCategory_NoMatch(t *testing.T) {
	got, ok := DetectCategory(NewTagSet("vip", "wholesale"))
	assert.False(t, ok)
	assert.Equal(t, CategoryAuto, got)

	got, ok = DetectCategory(NewTagSet())
	assert.False(t, ok)
	assert.Equal(t, CategoryAuto, got)
}

func TestClassify_AutoDetection(t *testing.T) {
	c := Classify(NewTagSet("chargeback", "urgent"), false, CategoryAuto)
	assert.Equal(t, CategoryDisputeOpen, c.Category)
	assert.Equal(t, DisputeStateNeedsResponse, c.DisputeState)
	assert.True(t, c.RiskFlag)
	assert.Empty(t, c.InjectedTag)
}

func TestClassify_NoMatchBaseline(t *testing.T) {
	c := Classify(NewTagSet("vip"), false, CategoryAuto)
	assert.Equal(t, CategoryAuto, c.Category)
	assert.Equal(t, DisputeStateNone, c.DisputeState)
	assert.False(t, c.RiskFlag)
}

func TestClassify_NoMatchKeepsNativeRiskHint(t *testing.T) {
	c := Classify(NewTagSet("vip"), true, CategoryAuto)
	assert.Equal(t, CategoryAuto, c.Category)
	assert.Equal(t, DisputeStateNone, c.DisputeState)
	assert.True(t, c.RiskFlag)
}

func TestClassify_DetectedTerminalKeepsRiskHint(t *testing.T) {
	c := Classify(NewTagSet("won"), true, CategoryAuto)
	assert.Equal(t, CategoryDisputeWon, c.Category)
	assert.Equal(t, DisputeStateWon, c.DisputeState)
	assert.True(t, c.RiskFlag)
}
