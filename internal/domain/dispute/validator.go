package dispute

import (
	"regexp"
	"strings"

	"github.com/riskledger/backend/internal/domain/shared"
)

// Validation failure reasons, surfaced verbatim to operators
const (
	ReasonInvalidOrderID = "Invalid Order ID"
	ReasonInvalidDate    = "Invalid Date"
	ReasonInvalidEmail   = "Invalid Email"
	ReasonMissingTags    = "Missing Tags"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[A-Za-z]{2,}$`)

// Validate checks structural well-formedness of an order. The returned slice
// is empty when the order is valid. explicitCategory waives the tag
// requirement: an operator choice stands in for missing tags.
func Validate(o *CanonicalOrder, explicitCategory bool) []string {
	var reasons []string
	if !containsDigit(o.OrderNo) {
		reasons = append(reasons, ReasonInvalidOrderID)
	}
	if o.OccurredAt.IsZero() {
		reasons = append(reasons, ReasonInvalidDate)
	}
	if email := strings.TrimSpace(o.Customer.Email); email != "" && !emailPattern.MatchString(email) {
		reasons = append(reasons, ReasonInvalidEmail)
	}
	if o.Tags.Len() == 0 && !explicitCategory {
		reasons = append(reasons, ReasonMissingTags)
	}
	return reasons
}

// Transition runs the quarantine state machine on a freshly classified order.
// previous is the last persisted snapshot for the same order number, nil on
// first sight. It runs after Classify and can override its outcome.
func Transition(incoming *CanonicalOrder, previous *CanonicalOrder, explicitCategory bool) {
	reasons := Validate(incoming, explicitCategory)

	if len(reasons) > 0 {
		remembered := incoming.Category
		if incoming.IsQuarantined() {
			// the transition already ran on this instance (the reconciler
			// retries whole chunks); INVALID is never a remembered category
			remembered = incoming.OriginalCategory
		}
		if previous != nil && previous.IsQuarantined() {
			// already in quarantine: the memory is frozen at the last
			// good value, never overwritten while still invalid
			remembered = previous.OriginalCategory
		}
		incoming.Quarantine(reasons, remembered)
		return
	}

	if previous != nil && previous.IsQuarantined() {
		recoverFromQuarantine(incoming, previous, explicitCategory)
	}

	incoming.OriginalCategory = incoming.Category
	incoming.ValidationErrors = nil
}

// recover restores a previously quarantined order: remembered category first,
// then tag detection, then the RISK bucket. A bad order is "needs another
// look", never "safe to ignore".
func recoverFromQuarantine(incoming *CanonicalOrder, previous *CanonicalOrder, explicitCategory bool) {
	if explicitCategory {
		// operator choice already applied by the classifier
		return
	}
	if previous.OriginalCategory.IsConcrete() {
		incoming.applyCategory(previous.OriginalCategory)
		return
	}
	if incoming.Category.IsConcrete() {
		// classifier found a usable category from tags this time
		return
	}
	incoming.applyCategory(CategoryRisk)
}

// Approve is the manual recovery path for a quarantined order. Unlike the
// automatic transition it refuses to guess: tags must disambiguate a
// category or the call fails.
func (o *CanonicalOrder) Approve() error {
	if !o.IsQuarantined() {
		return shared.NewDomainError("NOT_QUARANTINED", "Order is not quarantined")
	}
	detected, ok := DetectCategory(o.Tags)
	if !ok {
		return shared.NewDomainError("AMBIGUOUS_RECOVERY",
			"Cannot determine category from tags; add a disambiguating tag before approving")
	}
	o.applyCategory(detected)
	o.OriginalCategory = o.Category
	o.ValidationErrors = nil
	return nil
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
