package dispute

// DisputeState represents the chargeback lifecycle position of an order
type DisputeState string

const (
	DisputeStateNone          DisputeState = "NONE"
	DisputeStateNeedsResponse DisputeState = "NEEDS_RESPONSE"
	DisputeStateUnderReview   DisputeState = "UNDER_REVIEW"
	DisputeStateWon           DisputeState = "WON"
	DisputeStateLost          DisputeState = "LOST"
)

// IsValid checks if the state is a valid DisputeState
func (s DisputeState) IsValid() bool {
	switch s {
	case DisputeStateNone, DisputeStateNeedsResponse, DisputeStateUnderReview,
		DisputeStateWon, DisputeStateLost:
		return true
	}
	return false
}

// String returns the string representation of DisputeState
func (s DisputeState) String() string {
	return string(s)
}

// Rank returns the merge rank of the state. Merges never move a record to a
// lower rank, and the two terminal states share a rank so that whichever
// arrives first is kept.
func (s DisputeState) Rank() int {
	switch s {
	case DisputeStateNeedsResponse:
		return 1
	case DisputeStateUnderReview:
		return 2
	case DisputeStateWon, DisputeStateLost:
		return 3
	}
	return 0
}

// IsTerminal returns true for WON and LOST
func (s DisputeState) IsTerminal() bool {
	return s == DisputeStateWon || s == DisputeStateLost
}

// PersistedLabel returns the storage label for the state
func (s DisputeState) PersistedLabel() string {
	switch s {
	case DisputeStateNeedsResponse:
		return "open"
	case DisputeStateUnderReview:
		return "submitted"
	case DisputeStateWon:
		return "won"
	case DisputeStateLost:
		return "lost"
	}
	return "none"
}

// DisputeStateFromLabel parses a storage label back into a DisputeState
func DisputeStateFromLabel(label string) DisputeState {
	switch label {
	case "open":
		return DisputeStateNeedsResponse
	case "submitted":
		return DisputeStateUnderReview
	case "won":
		return DisputeStateWon
	case "lost":
		return DisputeStateLost
	}
	return DisputeStateNone
}

// Category is the operator-facing bucket an order belongs to
type Category string

const (
	CategoryAuto             Category = "AUTO"
	CategoryRisk             Category = "RISK"
	CategoryDisputeOpen      Category = "DISPUTE_OPEN"
	CategoryDisputeSubmitted Category = "DISPUTE_SUBMITTED"
	CategoryDisputeWon       Category = "DISPUTE_WON"
	CategoryDisputeLost      Category = "DISPUTE_LOST"
	CategoryInvalid          Category = "INVALID"
)

// IsValid checks if the category is one of the known buckets
func (c Category) IsValid() bool {
	switch c {
	case CategoryAuto, CategoryRisk, CategoryDisputeOpen, CategoryDisputeSubmitted,
		CategoryDisputeWon, CategoryDisputeLost, CategoryInvalid:
		return true
	}
	return false
}

// IsSelectable checks if the category is a valid operator selection
func (c Category) IsSelectable() bool {
	return c.IsValid() && c != CategoryInvalid
}

// IsExplicit returns true for operator-chosen buckets (everything except
// AUTO and INVALID)
func (c Category) IsExplicit() bool {
	return c.IsValid() && c != CategoryAuto && c != CategoryInvalid
}

// IsConcrete returns true when the category is usable as quarantine-recovery
// memory: a real bucket, not AUTO and not INVALID
func (c Category) IsConcrete() bool {
	return c.IsExplicit()
}

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

// RiskLabel marks a persisted record as high-risk. Empty means unflagged.
type RiskLabel string

const (
	RiskLabelNone RiskLabel = ""
	RiskLabelHigh RiskLabel = "high"
)

// PaymentState is the financial status reported by the source
type PaymentState string

const (
	PaymentStatePending           PaymentState = "pending"
	PaymentStateAuthorized        PaymentState = "authorized"
	PaymentStatePaid              PaymentState = "paid"
	PaymentStatePartiallyRefunded PaymentState = "partially_refunded"
	PaymentStateRefunded          PaymentState = "refunded"
	PaymentStateVoided            PaymentState = "voided"
	PaymentStateUnknown           PaymentState = "unknown"
)

// ParsePaymentState normalizes a source-provided financial status
func ParsePaymentState(raw string) PaymentState {
	switch normalizeEnum(raw) {
	case "pending":
		return PaymentStatePending
	case "authorized":
		return PaymentStateAuthorized
	case "paid":
		return PaymentStatePaid
	case "partially_refunded":
		return PaymentStatePartiallyRefunded
	case "refunded":
		return PaymentStateRefunded
	case "voided":
		return PaymentStateVoided
	}
	return PaymentStateUnknown
}

// FulfillmentState is the fulfillment status reported by the source
type FulfillmentState string

const (
	FulfillmentStateUnfulfilled FulfillmentState = "unfulfilled"
	FulfillmentStatePartial     FulfillmentState = "partial"
	FulfillmentStateFulfilled   FulfillmentState = "fulfilled"
	FulfillmentStateRestocked   FulfillmentState = "restocked"
	FulfillmentStateUnknown     FulfillmentState = "unknown"
)

// ParseFulfillmentState normalizes a source-provided fulfillment status
func ParseFulfillmentState(raw string) FulfillmentState {
	switch normalizeEnum(raw) {
	case "unfulfilled":
		return FulfillmentStateUnfulfilled
	case "partial", "partially_fulfilled":
		return FulfillmentStatePartial
	case "fulfilled":
		return FulfillmentStateFulfilled
	case "restocked":
		return FulfillmentStateRestocked
	}
	return FulfillmentStateUnknown
}
