package dispute

import "strings"

// Classification is the outcome of classifying one order
type Classification struct {
	Category     Category
	DisputeState DisputeState
	RiskFlag     bool
	InjectedTag  string
}

// categoryOutcome fixes the dispute state and risk flag a bucket implies
type categoryOutcome struct {
	DisputeState DisputeState
	RiskFlag     bool
	// keepRisk leaves the incoming risk hint untouched (terminal buckets
	// do not assert anything about risk)
	keepRisk bool
}

var categoryOutcomes = map[Category]categoryOutcome{
	CategoryRisk:             {DisputeState: DisputeStateNone, RiskFlag: true},
	CategoryDisputeOpen:      {DisputeState: DisputeStateNeedsResponse, RiskFlag: true},
	CategoryDisputeSubmitted: {DisputeState: DisputeStateUnderReview, RiskFlag: true},
	CategoryDisputeWon:       {DisputeState: DisputeStateWon, keepRisk: true},
	CategoryDisputeLost:      {DisputeState: DisputeStateLost, keepRisk: true},
}

// markerTags are injected into an order's tag set on explicit operator
// choices so later views (and later auto-detection runs) can see why the
// bucket was chosen
var markerTags = map[Category]string{
	CategoryRisk:             "risk",
	CategoryDisputeOpen:      "chargeback",
	CategoryDisputeSubmitted: "submitted",
	CategoryDisputeWon:       "won",
	CategoryDisputeLost:      "lost",
}

// tagRule maps a set of case-folded keywords to the bucket they identify
type tagRule struct {
	keywords []string
	category Category
}

// detectionRules are evaluated in order; the first matching rule wins.
// Terminal outcomes outrank in-progress disputes, which outrank bare risk
// signals: the rarer the state, the more specific the tag.
var detectionRules = []tagRule{
	{keywords: []string{"won"}, category: CategoryDisputeWon},
	{keywords: []string{"lost"}, category: CategoryDisputeLost},
	{keywords: []string{"submitted", "under review"}, category: CategoryDisputeSubmitted},
	{keywords: []string{"chargeback", "dispute"}, category: CategoryDisputeOpen},
	{keywords: []string{"fraud", "risk", "high"}, category: CategoryRisk},
}

// DetectCategory inspects case-folded tags against the fixed priority rules
func DetectCategory(tags *TagSet) (Category, bool) {
	for _, rule := range detectionRules {
		for _, kw := range rule.keywords {
			if tags.HasMatch(kw) {
				return rule.category, true
			}
		}
	}
	return CategoryAuto, false
}

// Classify decides bucket, dispute state and risk flag for one order.
// An explicit operator category is authoritative and fully determines the
// outcome; AUTO falls back to tag detection, and an order with no matching
// tag stays at baseline with the source's native risk hint.
// Classify is pure: the caller applies the result to the order.
func Classify(tags *TagSet, nativeRiskHint bool, operatorCategory Category) Classification {
	if operatorCategory.IsExplicit() {
		return Classification{
			Category:     operatorCategory,
			DisputeState: categoryOutcomes[operatorCategory].DisputeState,
			RiskFlag:     resolveRisk(operatorCategory, nativeRiskHint),
			InjectedTag:  markerTags[operatorCategory],
		}
	}

	if detected, ok := DetectCategory(tags); ok {
		return Classification{
			Category:     detected,
			DisputeState: categoryOutcomes[detected].DisputeState,
			RiskFlag:     resolveRisk(detected, nativeRiskHint),
		}
	}

	return Classification{
		Category:     CategoryAuto,
		DisputeState: DisputeStateNone,
		RiskFlag:     nativeRiskHint,
	}
}

// outcomeForCategory resolves the state/risk pair a concrete bucket implies,
// given the order's current risk flag for buckets that leave risk untouched
func outcomeForCategory(c Category, currentRisk bool) Classification {
	out := categoryOutcomes[c]
	return Classification{
		Category:     c,
		DisputeState: out.DisputeState,
		RiskFlag:     resolveRisk(c, currentRisk),
	}
}

func resolveRisk(c Category, hint bool) bool {
	out := categoryOutcomes[c]
	if out.keepRisk {
		return hint
	}
	return out.RiskFlag
}

// normalizeEnum folds and underscores a source-provided status string
func normalizeEnum(raw string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_")
}
